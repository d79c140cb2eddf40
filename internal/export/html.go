package export

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/moasq/promptheus/internal/prompt"
)

//go:embed templates/prompts.html.tmpl
var htmlTemplateText string

var htmlTemplate = template.Must(template.New("prompts").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(htmlTemplateText))

type htmlPage struct {
	Generated  string
	Prompts    []prompt.Prompt
	Tags       []string
	Categories []string
}

func writeHTML(w io.Writer, prompts []prompt.Prompt, generated time.Time) error {
	page := htmlPage{
		Generated: generated.Format(prompt.TimeLayout),
		Prompts:   prompts,
	}
	tags := map[string]bool{}
	cats := map[string]bool{}
	for _, p := range prompts {
		for _, t := range p.Tags {
			tags[t] = true
		}
		if p.Category != "" {
			cats[p.Category] = true
		}
	}
	page.Tags = sortedKeys(tags)
	page.Categories = sortedKeys(cats)

	if err := htmlTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
