// Package export writes the prompt library to shareable formats and reads
// it back from them.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/moasq/promptheus/internal/prompt"
)

// Format is an export or import file format.
type Format string

const (
	HTML     Format = "html"
	JSON     Format = "json"
	YAML     Format = "yaml"
	Markdown Format = "markdown"
	TOML     Format = "toml"
)

// ExportFormats lists what Export can write.
var ExportFormats = []Format{HTML, JSON, YAML, Markdown, TOML}

// ImportFormats lists what Import can read.
var ImportFormats = []Format{TOML, JSON, YAML}

// ParseFormat accepts a format name or a common alias.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "html", "htm":
		return HTML, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "markdown", "md":
		return Markdown, nil
	case "toml":
		return TOML, nil
	}
	return "", fmt.Errorf("unknown format %q", name)
}

// DetectFormat guesses the format from a file extension, falling back to def.
func DetectFormat(path string, def Format) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return def
}

// Export writes prompts to w in format f.
func Export(w io.Writer, prompts []prompt.Prompt, f Format, generated time.Time) error {
	if prompts == nil {
		prompts = []prompt.Prompt{}
	}
	switch f {
	case HTML:
		return writeHTML(w, prompts, generated)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(prompt.Collection{Prompts: prompts})
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(prompt.Collection{Prompts: prompts}); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case Markdown:
		return writeMarkdown(w, prompts, generated)
	case TOML:
		return toml.NewEncoder(w).Encode(prompt.Collection{Prompts: withTags(prompts)})
	}
	return fmt.Errorf("cannot export to %q", f)
}

// Import reads prompts from data in format f. Prompts without a creation
// time are stamped now; IDs are always recomputed.
func Import(data []byte, f Format) ([]prompt.Prompt, error) {
	var c prompt.Collection
	if len(bytes.TrimSpace(data)) > 0 {
		var err error
		switch f {
		case TOML:
			err = toml.Unmarshal(data, &c)
		case JSON:
			err = json.Unmarshal(data, &c)
		case YAML:
			err = yaml.Unmarshal(data, &c)
		default:
			return nil, fmt.Errorf("cannot import from %q", f)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f, err)
		}
	}

	now := prompt.Now()
	out := make([]prompt.Prompt, 0, len(c.Prompts))
	for i, p := range c.Prompts {
		if strings.TrimSpace(p.Description) == "" {
			return nil, fmt.Errorf("prompt %d has no description", i+1)
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		p.UpdatedAt = p.CreatedAt.Time
		out = append(out, p)
	}
	prompt.AssignIDs(out)
	return out, nil
}

// Merge appends incoming prompts whose ID is not already present and
// reports how many were added.
func Merge(existing, incoming []prompt.Prompt) ([]prompt.Prompt, int) {
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.ID] = true
	}
	merged := append([]prompt.Prompt(nil), existing...)
	added := 0
	for _, p := range incoming {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		merged = append(merged, p)
		added++
	}
	prompt.AssignIDs(merged)
	return merged, added
}

func withTags(prompts []prompt.Prompt) []prompt.Prompt {
	out := make([]prompt.Prompt, len(prompts))
	copy(out, prompts)
	for i := range out {
		if out[i].Tags == nil {
			out[i].Tags = []string{}
		}
	}
	return out
}

func writeMarkdown(w io.Writer, prompts []prompt.Prompt, generated time.Time) error {
	var b strings.Builder
	b.WriteString("# Prompt Collection\n\n")
	fmt.Fprintf(&b, "_%d prompts, exported %s_\n", len(prompts), generated.Format(prompt.TimeLayout))

	for _, p := range prompts {
		fmt.Fprintf(&b, "\n## %s\n\n", p.Description)
		var meta []string
		if p.Category != "" {
			meta = append(meta, "**Category:** "+p.Category)
		}
		if len(p.Tags) > 0 {
			tags := make([]string, len(p.Tags))
			for i, t := range p.Tags {
				tags[i] = "`#" + t + "`"
			}
			meta = append(meta, "**Tags:** "+strings.Join(tags, " "))
		}
		meta = append(meta, "**Created:** "+p.CreatedAt.Format(prompt.TimeLayout))
		b.WriteString(strings.Join(meta, " · "))
		b.WriteString("\n\n")

		fence := "```"
		for strings.Contains(p.Content, fence) {
			fence += "`"
		}
		fmt.Fprintf(&b, "%s\n%s\n%s\n", fence, strings.TrimRight(p.Content, "\n"), fence)

		if vars := prompt.ParseVariables(p.Content); len(vars) > 0 {
			b.WriteString("\nVariables:\n")
			for _, v := range vars {
				if v.HasDefault {
					fmt.Fprintf(&b, "- `%s` (default `%s`)\n", v.Name, v.Default)
				} else {
					fmt.Fprintf(&b, "- `%s`\n", v.Name)
				}
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
