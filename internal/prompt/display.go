package prompt

import "strings"

const previewRunes = 100

// SelectionLine renders the string a finder or menu shows for p:
//
//	[description]: content #tag1 #tag2 [category]
//
// Content is cut to 100 runes when preview is set and left out otherwise.
func SelectionLine(p Prompt, preview bool) string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(p.Description)
	sb.WriteString("]:")
	if preview {
		sb.WriteString(" ")
		sb.WriteString(truncateRunes(p.Content, previewRunes))
	}
	for _, t := range p.Tags {
		sb.WriteString(" #")
		sb.WriteString(t)
	}
	if p.Category != "" {
		sb.WriteString(" [")
		sb.WriteString(p.Category)
		sb.WriteString("]")
	}
	return sb.String()
}

// SelectionLines renders SelectionLine for every prompt.
func SelectionLines(prompts []Prompt, preview bool) []string {
	lines := make([]string, len(prompts))
	for i, p := range prompts {
		lines[i] = SelectionLine(p, preview)
	}
	return lines
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
