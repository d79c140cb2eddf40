package terminal

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// InputBuffer is the state of a multi-line edit: committed lines plus the
// line currently being typed.
type InputBuffer struct {
	Lines   []string
	Current []rune
}

type eraseKind int

const (
	eraseNothing eraseKind = iota
	eraseRune
	eraseJoin
)

// Insert appends r to the current line.
func (b *InputBuffer) Insert(r rune) {
	b.Current = append(b.Current, r)
}

// Break commits the current line and starts an empty one.
func (b *InputBuffer) Break() {
	b.Lines = append(b.Lines, string(b.Current))
	b.Current = nil
}

// Backspace removes the last rune of the current line. On an empty current
// line it reopens the last committed line instead.
func (b *InputBuffer) Backspace() (eraseKind, rune) {
	if n := len(b.Current); n > 0 {
		r := b.Current[n-1]
		b.Current = b.Current[:n-1]
		return eraseRune, r
	}
	if n := len(b.Lines); n > 0 {
		b.Current = []rune(b.Lines[n-1])
		b.Lines = b.Lines[:n-1]
		return eraseJoin, 0
	}
	return eraseNothing, 0
}

// Paste ingests a pasted block. Every pasted line but the last is committed;
// the last is appended to the current line, after anything already typed.
// It returns the newly committed lines.
func (b *InputBuffer) Paste(text string) []string {
	parts := splitLines(text)
	if len(parts) == 0 {
		return nil
	}
	committed := parts[:len(parts)-1]
	b.Lines = append(b.Lines, committed...)
	b.Current = append(b.Current, []rune(parts[len(parts)-1])...)
	return committed
}

// Submit commits the current line and returns all lines joined by "\n".
func (b *InputBuffer) Submit() string {
	b.Break()
	return strings.Join(b.Lines, "\n")
}

// splitLines splits on LF, CRLF or CR and drops a trailing empty line.
// Control characters other than tab are removed.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	parts := strings.Split(text, "\n")
	for i, p := range parts {
		parts[i] = strings.Map(func(r rune) rune {
			if (r < 0x20 && r != '\t') || r == 0x7f {
				return -1
			}
			return r
		}, p)
	}
	return parts
}

// EditMultiline reads free text until Enter. Ctrl+J, Shift+Enter or
// Alt+Enter insert a line break; Escape or Ctrl+C cancel.
func (c *Console) EditMultiline(prompt string) (string, error) {
	if prompt != "" {
		if err := c.write(prompt + "\n"); err != nil {
			return "", err
		}
	}

	var result string
	err := WithGuard(c.term, true, func(*Guard) error {
		buf := &InputBuffer{}
		for {
			key, err := c.readKey()
			if err != nil {
				return err
			}
			done, err := c.applyEdit(buf, key)
			if err != nil {
				return err
			}
			if done {
				result = buf.Submit()
				return nil
			}
		}
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// applyEdit mutates buf for one key and echoes the change.
func (c *Console) applyEdit(buf *InputBuffer, key Key) (bool, error) {
	switch key.Kind {
	case KeyRune:
		buf.Insert(key.Rune)
		return false, c.write(string(key.Rune))

	case KeyLineBreak:
		buf.Break()
		return false, c.write("\r\n")

	case KeyEnter:
		return true, nil

	case KeyEscape, KeyInterrupt:
		return false, ErrCancelled

	case KeyBackspace:
		kind, r := buf.Backspace()
		switch kind {
		case eraseRune:
			before := string(buf.Current) + string(r)
			if c.visualRows(before) > 1 {
				return false, c.write(c.clearCurrent(before) + string(buf.Current))
			}
			w := runewidth.RuneWidth(r)
			if w == 0 {
				return false, nil
			}
			return false, c.write(strings.Repeat("\b", w) + "\033[K")
		case eraseJoin:
			line := string(buf.Current)
			return false, c.writef("\033[%dA\r\033[J%s", c.visualRows(line), line)
		}

	case KeyPaste:
		before := string(buf.Current)
		committed := buf.Paste(key.Text)
		var sb strings.Builder
		sb.WriteString(c.clearCurrent(before))
		for _, l := range committed {
			sb.WriteString(l)
			sb.WriteString("\r\n")
		}
		sb.WriteString(string(buf.Current))
		return false, c.write(sb.String())
	}
	return false, nil
}

// clearCurrent returns the sequence that moves to the first row of a current
// line showing line and clears everything below.
func (c *Console) clearCurrent(line string) string {
	if rows := c.visualRows(line); rows > 1 {
		return fmt.Sprintf("\033[%dA\r\033[J", rows-1)
	}
	return "\r\033[J"
}

// visualRows returns how many terminal rows line occupies.
func (c *Console) visualRows(line string) int {
	w := runewidth.StringWidth(line)
	cols := c.Size().Cols
	if w <= cols {
		return 1
	}
	return (w + cols - 1) / cols
}

// Autocomplete returns the remainder of the first suggestion that extends
// input, once at least two characters have been typed.
func Autocomplete(input string, suggestions []string) string {
	if len([]rune(input)) < 2 {
		return ""
	}
	for _, s := range suggestions {
		if s != input && strings.HasPrefix(s, input) {
			return s[len(input):]
		}
	}
	return ""
}

// ReadLine reads a single line, offering the first matching suggestion
// inline. Tab accepts the suggestion. The result is trimmed.
func (c *Console) ReadLine(prompt string, suggestions []string) (string, error) {
	var input []rune
	hint := ""

	redraw := func() error {
		var sb strings.Builder
		sb.WriteString("\r\033[K")
		sb.WriteString(prompt)
		sb.WriteString(string(input))
		if hint != "" {
			sb.WriteString(Dim + hint + Reset)
			fmt.Fprintf(&sb, "\033[%dD", runewidth.StringWidth(hint))
		}
		return c.write(sb.String())
	}

	err := WithGuard(c.term, false, func(*Guard) error {
		if err := redraw(); err != nil {
			return err
		}
		for {
			key, err := c.readKey()
			if err != nil {
				return err
			}
			switch key.Kind {
			case KeyRune:
				input = append(input, key.Rune)
			case KeyPaste:
				input = append(input, []rune(strings.Join(splitLines(key.Text), " "))...)
			case KeyBackspace:
				if len(input) == 0 {
					continue
				}
				input = input[:len(input)-1]
			case KeyTab:
				if hint == "" {
					continue
				}
				input = append(input, []rune(hint)...)
			case KeyEnter, KeyLineBreak:
				hint = ""
				return redraw()
			case KeyEscape, KeyInterrupt:
				return ErrCancelled
			default:
				continue
			}
			hint = Autocomplete(string(input), suggestions)
			if err := redraw(); err != nil {
				return err
			}
		}
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(input)), nil
}

// Confirm asks a yes/no question. An empty answer is no.
func (c *Console) Confirm(question string) (bool, error) {
	for {
		answer, err := c.ReadLine(question+" [y/N]: ", nil)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
		if err := c.write(Yellow + "Please answer y or n." + Reset + "\n"); err != nil {
			return false, err
		}
	}
}
