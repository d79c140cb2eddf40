package terminal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
)

const addNewLabel = "+ Add new…"

// Choice is the result of SelectWithCustom: either an index into the items
// or text the user typed for a new value.
type Choice struct {
	Index    int
	Custom   string
	IsCustom bool
}

type menuAction int

const (
	menuContinue menuAction = iota
	menuSubmit
	menuCancel
)

// menuState is the navigation state of one menu session, independent of
// rendering.
type menuState struct {
	items        []string
	cursor       int
	multi        bool
	selected     map[int]bool
	custom       bool
	customPrompt string
	capturing    bool
	input        []rune
}

func (m *menuState) rows() int {
	if m.custom {
		return len(m.items) + 1
	}
	return len(m.items)
}

func (m *menuState) handle(key Key) menuAction {
	if m.capturing {
		return m.handleCapture(key)
	}

	switch key.Kind {
	case KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case KeyDown:
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
	case KeyRune:
		switch {
		case key.Rune == 'q':
			return menuCancel
		case key.Rune == ' ' && m.multi:
			if m.selected[m.cursor] {
				delete(m.selected, m.cursor)
			} else {
				m.selected[m.cursor] = true
			}
		case key.Rune == 'k':
			return m.handle(Key{Kind: KeyUp})
		case key.Rune == 'j':
			return m.handle(Key{Kind: KeyDown})
		}
	case KeyEnter, KeyLineBreak:
		if m.custom && m.cursor == len(m.items) {
			m.capturing = true
			m.input = nil
			return menuContinue
		}
		return menuSubmit
	case KeyEscape, KeyInterrupt:
		return menuCancel
	}
	return menuContinue
}

func (m *menuState) handleCapture(key Key) menuAction {
	switch key.Kind {
	case KeyRune:
		m.input = append(m.input, key.Rune)
	case KeyPaste:
		if lines := splitLines(key.Text); len(lines) > 0 {
			m.input = append(m.input, []rune(lines[0])...)
		}
	case KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case KeyEnter, KeyLineBreak:
		if strings.TrimSpace(string(m.input)) != "" {
			return menuSubmit
		}
		m.capturing = false
	case KeyEscape:
		m.capturing = false
	case KeyInterrupt:
		return menuCancel
	}
	return menuContinue
}

func (m *menuState) selection() []int {
	out := make([]int, 0, len(m.selected))
	for i := range m.selected {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// SelectSingle lets the user pick one item with the arrow keys. It returns
// -1 without reading input when items is empty.
func (c *Console) SelectSingle(title string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, nil
	}
	st := &menuState{items: items}
	if err := c.runMenu(title, st); err != nil {
		return -1, err
	}
	return st.cursor, nil
}

// SelectMulti lets the user toggle any number of items with Space. The
// returned indices are ascending and may be empty.
func (c *Console) SelectMulti(title string, items []string) ([]int, error) {
	if len(items) == 0 {
		return nil, nil
	}
	st := &menuState{items: items, multi: true, selected: map[int]bool{}}
	if err := c.runMenu(title, st); err != nil {
		return nil, err
	}
	return st.selection(), nil
}

// SelectWithCustom is SelectSingle with a trailing row that switches into
// text entry for a new value.
func (c *Console) SelectWithCustom(title string, items []string, customPrompt string) (Choice, error) {
	if len(items) == 0 {
		return Choice{Index: -1}, nil
	}
	st := &menuState{items: items, custom: true, customPrompt: customPrompt}
	if err := c.runMenu(title, st); err != nil {
		return Choice{Index: -1}, err
	}
	if st.capturing {
		return Choice{Index: -1, Custom: strings.TrimSpace(string(st.input)), IsCustom: true}, nil
	}
	return Choice{Index: st.cursor}, nil
}

func (c *Console) runMenu(title string, st *menuState) error {
	return WithGuard(c.term, false, func(*Guard) error {
		if err := c.write("\033[?25l"); err != nil {
			return err
		}
		defer c.write("\033[?25h")

		scroll := 0
		drawn := 0
		for {
			size := c.Size()
			frame := renderMenu(title, st, size, &scroll)
			if err := c.write(redrawFrame(frame, drawn)); err != nil {
				return err
			}
			drawn = len(frame)

			key, err := c.readKey()
			if err != nil {
				return err
			}
			switch st.handle(key) {
			case menuSubmit:
				return c.write(clearFrame(drawn))
			case menuCancel:
				if err := c.write(clearFrame(drawn)); err != nil {
					return err
				}
				return ErrCancelled
			}
		}
	})
}

func redrawFrame(frame []string, drawn int) string {
	var sb strings.Builder
	sb.WriteString(clearFrame(drawn))
	for _, line := range frame {
		sb.WriteString(line)
		sb.WriteString("\r\n")
	}
	return sb.String()
}

func clearFrame(drawn int) string {
	if drawn == 0 {
		return "\r\033[J"
	}
	return fmt.Sprintf("\033[%dA\r\033[J", drawn)
}

// renderMenu builds the visible rows for the current state, scrolling the
// viewport to keep the highlighted row on screen.
func renderMenu(title string, st *menuState, size Size, scroll *int) []string {
	var frame []string
	line := max(size.Cols-3, 10)
	if title != "" {
		frame = append(frame, "  "+Bold+runewidth.Truncate(menuLabel(title), line, "…")+Reset)
	}

	maxVisible := st.rows()
	if maxVisible > size.Rows-4 {
		maxVisible = size.Rows - 4
	}
	if maxVisible < 3 {
		maxVisible = 3
	}
	if st.cursor < *scroll {
		*scroll = st.cursor
	} else if st.cursor >= *scroll+maxVisible {
		*scroll = st.cursor - maxVisible + 1
	}
	end := min(*scroll+maxVisible, st.rows())

	width := max(size.Cols-8, 10)
	for i := *scroll; i < end; i++ {
		frame = append(frame, renderRow(st, i, width))
	}

	var help string
	switch {
	case st.capturing:
		help = "Enter save  Esc back"
	case st.multi:
		help = "↑↓ navigate  Space toggle  Enter confirm  q cancel"
	case st.rows() > end-*scroll:
		help = fmt.Sprintf("↑↓ scroll (%d/%d)  Enter select  q cancel", st.cursor+1, st.rows())
	default:
		help = "↑↓ navigate  Enter select  q cancel"
	}
	return append(frame, "  "+Dim+runewidth.Truncate(help, line, "…")+Reset)
}

func renderRow(st *menuState, i, width int) string {
	var label string
	if i == len(st.items) {
		label = addNewLabel
		if st.capturing {
			label = st.customPrompt + string(st.input) + "▏"
		}
	} else {
		label = menuLabel(st.items[i])
	}
	label = runewidth.Truncate(label, width, "…")

	mark := ""
	if st.multi {
		mark = "[ ] "
		if st.selected[i] {
			mark = "[" + Green + "✓" + Reset + "] "
		}
	}

	if i == st.cursor {
		return fmt.Sprintf("  %s%s▸%s %s%s%s%s", Bold, Cyan, Reset, mark, Bold, label, Reset)
	}
	return "    " + mark + label
}

// menuLabel flattens a multi-line display string onto one row.
func menuLabel(item string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(item, "\n", " ⏎ ")), " ")
}
