package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func withLookPath(t *testing.T, installed ...string) {
	t.Helper()
	prev := lookPath
	lookPath = func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { lookPath = prev })
}

func TestDetectSelectCommand(t *testing.T) {
	tests := []struct {
		installed []string
		want      string
	}{
		{[]string{"fzf", "sk"}, "fzf"},
		{[]string{"peco", "sk"}, "sk"},
		{[]string{"peco"}, "peco"},
		{nil, "builtin"},
	}
	for _, tt := range tests {
		withLookPath(t, tt.installed...)
		if got := DetectSelectCommand(); got != tt.want {
			t.Errorf("DetectSelectCommand with %v = %q, want %q", tt.installed, got, tt.want)
		}
	}
}

func TestDetectEditor(t *testing.T) {
	t.Setenv("EDITOR", "")
	withLookPath(t, "nano", "vim")
	if got := DetectEditor(); got != "vim" {
		t.Fatalf("DetectEditor = %q, want vim", got)
	}

	withLookPath(t)
	if got := DetectEditor(); got != "vi" {
		t.Fatalf("DetectEditor fallback = %q, want vi", got)
	}

	t.Setenv("EDITOR", "hx")
	if got := DetectEditor(); got != "hx" {
		t.Fatalf("DetectEditor with $EDITOR = %q, want hx", got)
	}
}

func TestLoadWritesDefaults(t *testing.T) {
	withLookPath(t, "fzf")
	t.Setenv("EDITOR", "nvim")
	path := filepath.Join(t.TempDir(), "promptheus", "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.SelectCmd != "fzf" || cfg.General.Editor != "nvim" {
		t.Fatalf("defaults = %+v", cfg.General)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	for _, want := range []string{"[general]", "select_cmd = ", "fzf", "sort_by = ", "recency", "[gist]"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config file missing %q:\n%s", want, data)
		}
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff(cfg.General, again.General, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("reload mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadKeepsUserValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[general]
prompt_file = "/tmp/p.toml"
editor = "code"
select_cmd = "sk"
default_tags = ["work"]
sort_by = "title"
color = false

[gist]
file_name = "prompts.toml"
gist_id = "abc123"
auto_sync = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.Editor != "code" || cfg.General.SortBy != "title" || cfg.General.Color {
		t.Fatalf("general = %+v", cfg.General)
	}
	if diff := cmp.Diff([]string{"work"}, cfg.General.DefaultTags); diff != "" {
		t.Fatalf("default tags (-want +got):\n%s", diff)
	}
	if !cfg.Gist.Configured() || cfg.Gist.GistID != "abc123" || !cfg.Gist.AutoSync {
		t.Fatalf("gist = %+v", cfg.Gist)
	}
	if cfg.Path() != path {
		t.Fatalf("Path = %q", cfg.Path())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty editor", func(c *Config) { c.General.Editor = " " }, false},
		{"empty select", func(c *Config) { c.General.SelectCmd = "" }, false},
		{"bad sort", func(c *Config) { c.General.SortBy = "size" }, false},
		{"gist without name", func(c *Config) { c.Gist.GistID = "x" }, false},
		{"gist wrong ext", func(c *Config) { c.Gist.FileName = "p.json" }, false},
		{"gist ok", func(c *Config) { c.Gist.FileName = "p.TOML" }, true},
		{"no gist", func(c *Config) { c.Gist = nil }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.General.Editor = "vi"
			cfg.General.SelectCmd = "fzf"
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted broken TOML")
	}
}
