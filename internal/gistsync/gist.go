package gistsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	githubAPIBase   = "https://api.github.com"
	gistDescription = "Promptheus snippets"
)

// ErrNoGist is returned by Get when no gist ID is configured yet.
var ErrNoGist = errors.New("no gist ID configured")

// Remote is the snippet file as stored in the gist.
type Remote struct {
	Content   string
	UpdatedAt time.Time
}

// Client reads and writes the remote snippet file.
type Client interface {
	Get(ctx context.Context) (Remote, error)
	// Upload writes content, creating the gist when none exists yet.
	// It returns the ID of a newly created gist, or "" for an update.
	Upload(ctx context.Context, content string) (string, error)
}

// GistOptions configures a GistClient.
type GistOptions struct {
	Token    string
	FileName string
	GistID   string
	Public   bool
	// BaseURL overrides the GitHub API endpoint.
	BaseURL string
	Logger  *zap.Logger
}

// GistClient talks to the GitHub gists API.
type GistClient struct {
	httpClient *http.Client
	baseURL    string
	fileName   string
	gistID     string
	public     bool
	logger     *zap.Logger
}

type gist struct {
	ID        string              `json:"id"`
	UpdatedAt string              `json:"updated_at"`
	Files     map[string]gistFile `json:"files"`
}

type gistFile struct {
	Filename  string `json:"filename,omitempty"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
	RawURL    string `json:"raw_url,omitempty"`
}

type gistRequest struct {
	Description string              `json:"description"`
	Public      *bool               `json:"public,omitempty"`
	Files       map[string]gistFile `json:"files"`
}

// NewGistClient creates a client authenticated with a personal access token.
func NewGistClient(ctx context.Context, opts GistOptions) (*GistClient, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, fmt.Errorf("GitHub access token not found: run `promptheus config token set` or set PROMPTHEUS_GITHUB_ACCESS_TOKEN")
	}
	if opts.FileName == "" {
		return nil, fmt.Errorf("gist file name is not configured")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = githubAPIBase
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
	httpClient.Timeout = 30 * time.Second

	return &GistClient{
		httpClient: httpClient,
		baseURL:    base,
		fileName:   opts.FileName,
		gistID:     opts.GistID,
		public:     opts.Public,
		logger:     logger,
	}, nil
}

// GistID returns the gist this client writes to.
func (c *GistClient) GistID() string {
	return c.gistID
}

// Get fetches the configured snippet file.
func (c *GistClient) Get(ctx context.Context) (Remote, error) {
	if c.gistID == "" {
		return Remote{}, ErrNoGist
	}
	var g gist
	if err := c.doJSON(ctx, http.MethodGet, "/gists/"+c.gistID, nil, &g); err != nil {
		return Remote{}, fmt.Errorf("failed to get gist: %w", err)
	}

	file, ok := g.Files[c.fileName]
	if !ok {
		return Remote{}, fmt.Errorf("file %q not found in gist %s", c.fileName, c.gistID)
	}
	if file.Truncated && file.RawURL != "" {
		content, err := c.fetchRaw(ctx, file.RawURL)
		if err != nil {
			return Remote{}, err
		}
		file.Content = content
	}
	updated, err := time.Parse(time.RFC3339, g.UpdatedAt)
	if err != nil {
		return Remote{}, fmt.Errorf("failed to parse gist timestamp %q: %w", g.UpdatedAt, err)
	}
	return Remote{Content: file.Content, UpdatedAt: updated}, nil
}

// Upload creates the gist on first use, then updates it in place.
func (c *GistClient) Upload(ctx context.Context, content string) (string, error) {
	req := gistRequest{
		Description: gistDescription,
		Files:       map[string]gistFile{c.fileName: {Content: content}},
	}

	if c.gistID == "" {
		public := c.public
		req.Public = &public
		var created gist
		if err := c.doJSON(ctx, http.MethodPost, "/gists", req, &created); err != nil {
			return "", fmt.Errorf("failed to create gist: %w", err)
		}
		if created.ID == "" {
			return "", fmt.Errorf("failed to create gist: response has no id")
		}
		c.gistID = created.ID
		c.logger.Debug("gist created", zap.String("id", created.ID))
		return created.ID, nil
	}

	if err := c.doJSON(ctx, http.MethodPatch, "/gists/"+c.gistID, req, nil); err != nil {
		return "", fmt.Errorf("failed to update gist: %w", err)
	}
	c.logger.Debug("gist updated", zap.String("id", c.gistID))
	return "", nil
}

func (c *GistClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "promptheus")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.logger.Debug("github request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API %s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(respData)))
	}
	if out == nil || len(respData) == 0 {
		return nil
	}
	if err := json.Unmarshal(respData, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *GistClient) fetchRaw(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch raw gist file returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read raw gist file: %w", err)
	}
	return string(data), nil
}
