// Package promptserver exposes the prompt library to MCP clients over stdio.
package promptserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/moasq/promptheus/internal/prompt"
	"github.com/moasq/promptheus/internal/storage"
)

// Library is the read side of the prompt store.
type Library interface {
	Search(f storage.Filter) ([]prompt.Prompt, error)
	Find(identifier string) (prompt.Prompt, error)
}

// Server serves the library's tools.
type Server struct {
	lib     Library
	version string
	logger  *zap.Logger
}

// New creates a server over lib.
func New(lib Library, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{lib: lib, version: version, logger: logger}
}

// Run starts the MCP server over stdio.
// It blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer().Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) mcpServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "promptheus",
			Version: s.version,
		},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_prompts",
		Description: "List saved prompts. Optionally filter by a text query (matched against description, content and tags), a tag, or a category. Returns each prompt's id, description, tags, category and template variables.",
	}, s.handleListPrompts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_prompt",
		Description: "Get one prompt by id, id prefix, or description, including its full content.",
	}, s.handleGetPrompt)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_prompt",
		Description: "Render a prompt with its <name> and <name=default> variables filled in. Variables not supplied fall back to their default, or to an empty string. Example: render_prompt(identifier: \"Deploy\", variables: {\"file\": \"app.yaml\"})",
	}, s.handleRenderPrompt)

	return server
}
