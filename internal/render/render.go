// Package render prints prompts, tags and statistics for the list-style
// commands.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/moasq/promptheus/internal/prompt"
	"github.com/moasq/promptheus/internal/storage"
)

// ListFormat selects how List prints prompts.
type ListFormat string

const (
	FormatSimple   ListFormat = "simple"
	FormatDetailed ListFormat = "detailed"
	FormatTable    ListFormat = "table"
	FormatJSON     ListFormat = "json"
)

// ParseListFormat validates a --format value. Empty means simple.
func ParseListFormat(s string) (ListFormat, error) {
	switch f := ListFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatSimple, nil
	case FormatSimple, FormatDetailed, FormatTable, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown list format %q (want simple, detailed, table or json)", s)
}

const (
	separatorWidth   = 50
	maxTitleWidth    = 60
	maxTagWidth      = 25
	linePreviewRunes = 60
)

type styles struct {
	description lipgloss.Style
	tags        lipgloss.Style
	category    lipgloss.Style
	title       lipgloss.Style
	header      lipgloss.Style
	label       lipgloss.Style
	info        lipgloss.Style
	muted       lipgloss.Style
}

// Renderer writes styled output to one writer.
type Renderer struct {
	w       io.Writer
	preview bool
	r       *lipgloss.Renderer
	s       styles
}

// New creates a renderer. color=false strips every escape sequence;
// otherwise the profile is detected from w.
func New(w io.Writer, color, preview bool) *Renderer {
	lr := lipgloss.NewRenderer(w)
	if !color {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		w:       w,
		preview: preview,
		r:       lr,
		s: styles{
			description: lr.NewStyle().Foreground(lipgloss.Color("10")),
			tags:        lr.NewStyle().Foreground(lipgloss.Color("14")),
			category:    lr.NewStyle().Foreground(lipgloss.Color("13")),
			title:       lr.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
			header:      lr.NewStyle().Bold(true),
			label:       lr.NewStyle().Foreground(lipgloss.Color("6")),
			info:        lr.NewStyle().Foreground(lipgloss.Color("4")),
			muted:       lr.NewStyle().Faint(true),
		},
	}
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *Renderer) heading(title string) {
	r.printf("%s\n%s\n", r.s.title.Render(title), strings.Repeat("═", separatorWidth))
}

func (r *Renderer) field(label, value string) {
	r.printf("%12s: %s\n", r.s.label.Render(label), value)
}

// Empty reports that a listing has nothing to show.
func (r *Renderer) Empty(what string) {
	r.printf("%s\n", r.s.muted.Render("No "+what+" found."))
}

// List prints prompts in the requested format.
func (r *Renderer) List(prompts []prompt.Prompt, format ListFormat) error {
	if format == FormatJSON {
		if prompts == nil {
			prompts = []prompt.Prompt{}
		}
		data, err := json.MarshalIndent(prompts, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize prompts to JSON: %w", err)
		}
		r.printf("%s\n", data)
		return nil
	}
	if len(prompts) == 0 {
		r.Empty("prompts matching your criteria")
		return nil
	}

	switch format {
	case FormatDetailed:
		r.heading("Detailed Prompt List")
		for i, p := range prompts {
			r.printf("\n%d. %s\n", i+1, r.s.description.Render(p.Description))
			r.details(p, true)
			if i < len(prompts)-1 {
				r.printf("%s\n", strings.Repeat("─", separatorWidth))
			}
		}
	case FormatTable:
		r.count(len(prompts))
		r.printf("%s\n", r.table(prompts))
	default:
		r.count(len(prompts))
		r.printf("%s\n", strings.Repeat("─", separatorWidth))
		for _, p := range prompts {
			r.printf("%s\n", r.Line(p))
		}
	}
	return nil
}

func (r *Renderer) count(n int) {
	r.printf("%s (%s found)\n", r.s.header.Render("Prompts"), r.s.info.Render(fmt.Sprint(n)))
}

// Line renders the one-line summary used by the simple list.
func (r *Renderer) Line(p prompt.Prompt) string {
	var sb strings.Builder
	sb.WriteString(r.s.description.Render(p.Description))
	if r.preview && p.Content != "" {
		first, _, _ := strings.Cut(p.Content, "\n")
		sb.WriteString(": ")
		sb.WriteString(runewidth.Truncate(first, linePreviewRunes, "..."))
	}
	if len(p.Tags) > 0 {
		sb.WriteString(" ")
		sb.WriteString(r.s.tags.Render("#" + strings.Join(p.Tags, " #")))
	}
	if p.Category != "" {
		sb.WriteString(" ")
		sb.WriteString(r.s.category.Render("[" + p.Category + "]"))
	}
	return sb.String()
}

func (r *Renderer) table(prompts []prompt.Prompt) string {
	rows := make([][]string, 0, len(prompts))
	for _, p := range prompts {
		rows = append(rows, []string{
			runewidth.Truncate(p.Description, maxTitleWidth, "..."),
			runewidth.Truncate(strings.Join(p.Tags, ", "), maxTagWidth, "..."),
			p.Category,
			p.CreatedAt.Format(prompt.TimeLayout),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.s.muted).
		Headers("Description", "Tags", "Category", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := r.r.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Bold(true)
			}
			switch col {
			case 0:
				return base.Inherit(r.s.description)
			case 1:
				return base.Inherit(r.s.tags)
			case 3:
				return base.Inherit(r.s.muted)
			}
			return base
		}).
		String()
}

// Prompt prints the full detail view of one prompt.
func (r *Renderer) Prompt(p prompt.Prompt) {
	r.heading(p.Description)
	r.details(p, false)
}

func (r *Renderer) details(p prompt.Prompt, short bool) {
	r.field("ID", p.ShortID())
	if p.Category != "" {
		r.field("Category", r.s.category.Render(p.Category))
	}
	if len(p.Tags) > 0 {
		r.field("Tags", r.s.tags.Render("#"+strings.Join(p.Tags, " #")))
	}
	r.field("Created", r.s.muted.Render(p.CreatedAt.Format(prompt.TimeLayout)))
	if vars := prompt.ParseVariables(p.Content); len(vars) > 0 {
		names := make([]string, len(vars))
		for i, v := range vars {
			names[i] = v.Name
			if v.HasDefault {
				names[i] += "=" + v.Default
			}
		}
		r.field("Variables", strings.Join(names, ", "))
	}

	content := p.Content
	if short {
		lines := strings.Split(content, "\n")
		if len(lines) > 3 {
			content = strings.Join(lines[:3], "\n") + "\n" + r.s.muted.Render(fmt.Sprintf("... (%d more lines)", len(lines)-3))
		}
	}
	r.field("Content", "")
	for _, line := range strings.Split(content, "\n") {
		r.printf("  %s\n", line)
	}
	if p.Output != "" {
		r.field("Output", p.Output)
	}
}

// Tags prints the tag list.
func (r *Renderer) Tags(tags []string) {
	r.names("Available Tags", "tags", tags, r.s.tags, "#")
}

// Categories prints the category list.
func (r *Renderer) Categories(categories []string) {
	r.names("Available Categories", "categories", categories, r.s.category, "")
}

func (r *Renderer) names(title, what string, names []string, style lipgloss.Style, prefix string) {
	if len(names) == 0 {
		r.Empty(what)
		return
	}
	r.heading(fmt.Sprintf("%s (%d)", title, len(names)))
	for _, n := range names {
		r.printf("  %s\n", style.Render(prefix+n))
	}
}

// Stats prints library statistics and, when available, execution history.
func (r *Renderer) Stats(st storage.Stats, top []storage.PromptUsage, history []storage.DailyUsage) {
	r.heading("Prompt Statistics")
	r.field("Total prompts", r.s.info.Render(fmt.Sprint(st.TotalPrompts)))
	r.field("Total tags", r.s.info.Render(fmt.Sprint(st.TotalTags)))
	r.field("Categories", r.s.info.Render(fmt.Sprint(st.TotalCategories)))

	if len(st.TagCounts) > 0 {
		r.printf("\n%s:\n", r.s.header.Render("Most used tags"))
		for _, kv := range byCount(st.TagCounts, 10) {
			r.printf("  %s: %s\n", r.s.tags.Render(kv.key), r.s.info.Render(fmt.Sprint(kv.n)))
		}
	}
	if len(st.CategoryCounts) > 0 {
		r.printf("\n%s:\n", r.s.header.Render("Categories"))
		for _, kv := range byCount(st.CategoryCounts, 0) {
			r.printf("  %s: %s\n", r.s.category.Render(kv.key), r.s.info.Render(fmt.Sprint(kv.n)))
		}
	}
	if len(top) > 0 {
		r.printf("\n%s:\n", r.s.header.Render("Most executed"))
		for _, u := range top {
			r.printf("  %s: %s %s\n", r.s.description.Render(u.Description),
				r.s.info.Render(fmt.Sprint(u.Count)),
				r.s.muted.Render("(last "+u.LastUsed.Format("2006-01-02")+")"))
		}
	}
	if len(history) > 0 {
		r.printf("\n%s:\n", r.s.header.Render("Recent activity"))
		for _, d := range history {
			r.printf("  %s: %s\n", d.Date, r.s.info.Render(fmt.Sprint(d.Executions)))
		}
	}
}

type keyCount struct {
	key string
	n   int
}

// byCount sorts by count descending, then name. limit <= 0 keeps all.
func byCount(m map[string]int, limit int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, n := range m {
		out = append(out, keyCount{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].key < out[j].key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Variables lists the template variables the user is about to fill in.
func (r *Renderer) Variables(vars []prompt.Variable) {
	if len(vars) == 0 {
		return
	}
	r.printf("%s\n", r.s.header.Render("Variables:"))
	for _, v := range vars {
		if v.HasDefault {
			r.printf("  %s %s\n", r.s.label.Render(v.Name), r.s.muted.Render("(default: "+v.Default+")"))
		} else {
			r.printf("  %s\n", r.s.label.Render(v.Name))
		}
	}
}
