package promptserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/moasq/promptheus/internal/prompt"
	"github.com/moasq/promptheus/internal/storage"
)

type promptSummary struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category,omitempty"`
	Variables   []string `json:"variables"`
}

func summarize(p prompt.Prompt) promptSummary {
	vars := prompt.ParseVariables(p.Content)
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return promptSummary{
		ID:          p.ID,
		Description: p.Description,
		Tags:        tags,
		Category:    p.Category,
		Variables:   names,
	}
}

// listPromptsInput is the input for the list_prompts tool.
type listPromptsInput struct {
	Query    string `json:"query,omitempty" jsonschema:"Text to look for in description, content and tags"`
	Tag      string `json:"tag,omitempty" jsonschema:"Only prompts carrying this tag"`
	Category string `json:"category,omitempty" jsonschema:"Only prompts in this category"`
}

type listPromptsOutput struct {
	Prompts []promptSummary `json:"prompts"`
}

func (s *Server) handleListPrompts(ctx context.Context, req *mcp.CallToolRequest, input listPromptsInput) (*mcp.CallToolResult, listPromptsOutput, error) {
	prompts, err := s.lib.Search(storage.Filter{Query: input.Query, Tag: input.Tag, Category: input.Category})
	if err != nil {
		return nil, listPromptsOutput{}, err
	}
	out := listPromptsOutput{Prompts: make([]promptSummary, 0, len(prompts))}
	for _, p := range prompts {
		out.Prompts = append(out.Prompts, summarize(p))
	}
	s.logger.Debug("list_prompts", zap.String("query", input.Query), zap.Int("results", len(out.Prompts)))
	return nil, out, nil
}

// getPromptInput is the input for the get_prompt tool.
type getPromptInput struct {
	Identifier string `json:"identifier" jsonschema:"Prompt id, id prefix of at least 4 characters, or description"`
}

type getPromptOutput struct {
	Prompt    promptSummary `json:"prompt"`
	Content   string        `json:"content"`
	CreatedAt string        `json:"created_at"`
}

func (s *Server) handleGetPrompt(ctx context.Context, req *mcp.CallToolRequest, input getPromptInput) (*mcp.CallToolResult, getPromptOutput, error) {
	p, err := s.lib.Find(input.Identifier)
	if err != nil {
		return nil, getPromptOutput{}, fmt.Errorf("prompt %q: %w", input.Identifier, err)
	}
	return nil, getPromptOutput{
		Prompt:    summarize(p),
		Content:   p.Content,
		CreatedAt: p.CreatedAt.Format(prompt.TimeLayout),
	}, nil
}

// renderPromptInput is the input for the render_prompt tool.
type renderPromptInput struct {
	Identifier string            `json:"identifier" jsonschema:"Prompt id, id prefix of at least 4 characters, or description"`
	Variables  map[string]string `json:"variables,omitempty" jsonschema:"Values for the prompt's template variables"`
}

type renderPromptOutput struct {
	Content string `json:"content"`
	// Missing lists variables that had neither a value nor a default.
	Missing []string `json:"missing"`
}

func (s *Server) handleRenderPrompt(ctx context.Context, req *mcp.CallToolRequest, input renderPromptInput) (*mcp.CallToolResult, renderPromptOutput, error) {
	p, err := s.lib.Find(input.Identifier)
	if err != nil {
		return nil, renderPromptOutput{}, fmt.Errorf("prompt %q: %w", input.Identifier, err)
	}
	missing := []string{}
	for _, v := range prompt.ParseVariables(p.Content) {
		if _, ok := input.Variables[v.Name]; !ok && !v.HasDefault {
			missing = append(missing, v.Name)
		}
	}
	return nil, renderPromptOutput{
		Content: prompt.ReplaceVariables(p.Content, input.Variables),
		Missing: missing,
	}, nil
}
