package terminal

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const (
	previewHead = 5
	previewTail = 3
)

// Pager shows text full-screen and blocks until the user leaves it.
type Pager interface {
	Page(content string) error
}

// ExternalPager runs $PAGER, or less -R when unset.
type ExternalPager struct {
	Command string
}

// NewExternalPager returns a pager honouring $PAGER.
func NewExternalPager() ExternalPager {
	cmd := os.Getenv("PAGER")
	if strings.TrimSpace(cmd) == "" {
		cmd = "less -R"
	}
	return ExternalPager{Command: cmd}
}

// Page pipes content into the pager. Quitting the pager early is normal
// completion. When no pager can be started the content is printed.
func (p ExternalPager) Page(content string) error {
	fields := strings.Fields(p.Command)
	if len(fields) == 0 {
		fmt.Print(content)
		return nil
	}
	cmd := exec.Command(fields[0], fields[1:]...)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil, errors.As(err, &exitErr):
		return nil
	case errors.Is(err, exec.ErrNotFound):
		fmt.Print(content)
		if !strings.HasSuffix(content, "\n") {
			fmt.Println()
		}
		return nil
	}
	return systemError("run pager", err)
}

// lineCount counts lines the way a line iterator would: a trailing newline
// does not start a new line.
func lineCount(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// ShouldPaginate reports whether content is taller than two thirds of a
// terminal with the given height.
func ShouldPaginate(content string, height int) bool {
	return lineCount(content) > height*2/3
}

// DisplayContent prints content under title. Long content is shown as a
// head and tail preview and the user is offered the full text in pager.
func (c *Console) DisplayContent(content, title string, pager Pager) error {
	if title != "" {
		if err := c.write("\n" + Bold + title + Reset + "\n"); err != nil {
			return err
		}
	}

	if !ShouldPaginate(content, c.Size().Rows) {
		return c.write(ensureNewline(content))
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if err := c.write(previewText(lines)); err != nil {
		return err
	}

	ok, err := c.Confirm(fmt.Sprintf("View all %d lines in pager?", len(lines)))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return pager.Page(content)
}

func previewText(lines []string) string {
	if len(lines) <= previewHead+previewTail {
		return strings.Join(lines, "\n") + "\n"
	}
	var sb strings.Builder
	for _, l := range lines[:previewHead] {
		sb.WriteString(l + "\n")
	}
	hidden := len(lines) - previewHead - previewTail
	fmt.Fprintf(&sb, "%s... (%d more lines) ...%s\n", Dim, hidden, Reset)
	for _, l := range lines[len(lines)-previewTail:] {
		sb.WriteString(l + "\n")
	}
	return sb.String()
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
