package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/moasq/promptheus/internal/storage"
	"github.com/moasq/promptheus/internal/terminal"
)

// AppName names the configuration directory and the keychain service.
const AppName = "promptheus"

// Config holds the CLI configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Gist    *GistConfig   `toml:"gist,omitempty"`

	path string
}

// GeneralConfig holds settings shared by every command.
type GeneralConfig struct {
	PromptFile          string   `toml:"prompt_file"`
	Editor              string   `toml:"editor"`
	SelectCmd           string   `toml:"select_cmd"`
	DefaultTags         []string `toml:"default_tags"`
	AutoSync            bool     `toml:"auto_sync"`
	SortBy              string   `toml:"sort_by"`
	Color               bool     `toml:"color"`
	ContentPreview      bool     `toml:"content_preview"`
	SearchCaseSensitive bool     `toml:"search_case_sensitive"`
	Format              string   `toml:"format,omitempty"`
}

// GistConfig configures snippet sync. The access token lives in the
// secrets store, never in this file.
type GistConfig struct {
	FileName string `toml:"file_name"`
	GistID   string `toml:"gist_id"`
	Public   bool   `toml:"public"`
	AutoSync bool   `toml:"auto_sync"`
}

// Configured reports whether gist sync has been set up.
func (g *GistConfig) Configured() bool {
	return g != nil && (g.GistID != "" || g.FileName != "")
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Dir returns the promptheus configuration directory.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, AppName)
}

// DefaultPath returns the default config.toml location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Default returns a configuration with detected editor and finder.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			PromptFile:     filepath.Join(Dir(), "prompts.toml"),
			Editor:         DetectEditor(),
			SelectCmd:      DetectSelectCommand(),
			DefaultTags:    []string{},
			SortBy:         storage.SortRecency,
			Color:          true,
			ContentPreview: true,
		},
		Gist: &GistConfig{},
		path: DefaultPath(),
	}
}

// Load reads the configuration at path, writing defaults when the file
// does not exist yet. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	cfg.path = path
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.General.PromptFile = expandHome(cfg.General.PromptFile)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file this configuration was loaded from.
func (c *Config) Path() string {
	if c.path == "" {
		return DefaultPath()
	}
	return c.path
}

// Save writes the configuration back to its file.
func (c *Config) Save() error {
	path := c.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks the settings commands rely on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.General.Editor) == "" {
		return fmt.Errorf("editor cannot be empty")
	}
	if strings.TrimSpace(c.General.SelectCmd) == "" {
		return fmt.Errorf("select command cannot be empty")
	}
	switch c.General.SortBy {
	case storage.SortRecency, storage.SortTitle, storage.SortDescription, storage.SortUpdated:
	default:
		return fmt.Errorf("unknown sort_by %q (want recency, title, description or updated)", c.General.SortBy)
	}
	if c.Gist.Configured() {
		if c.Gist.FileName == "" {
			return fmt.Errorf("gist file name cannot be empty when gist sync is configured")
		}
		if !strings.EqualFold(filepath.Ext(c.Gist.FileName), ".toml") {
			return fmt.Errorf("gist file name %q should have a .toml extension", c.Gist.FileName)
		}
	}
	return nil
}

// DetectSelectCommand returns the first installed fuzzy finder, or the
// in-process finder when none is installed.
func DetectSelectCommand() string {
	for _, name := range []string{"fzf", "sk", "peco"} {
		if _, err := lookPath(name); err == nil {
			return name
		}
	}
	return terminal.BuiltinFinder
}

// DetectEditor returns $EDITOR or the first installed common editor.
func DetectEditor() string {
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}
	for _, name := range []string{"code", "nvim", "vim", "nano"} {
		if _, err := lookPath(name); err == nil {
			return name
		}
	}
	return "vi"
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
