package terminal

import (
	"fmt"
	"io"
)

// Console runs interactive components against a single Terminal. It owns the
// key decoder so bytes buffered by one component are seen by the next.
type Console struct {
	term Terminal
	keys *KeyReader
}

// NewConsole returns a Console over t.
func NewConsole(t Terminal) *Console {
	return &Console{term: t, keys: NewKeyReader(t)}
}

// Size probes the terminal dimensions.
func (c *Console) Size() Size {
	return ProbeSize(c.term)
}

// Writer returns the underlying terminal for plain output.
func (c *Console) Writer() io.Writer {
	return c.term
}

func (c *Console) readKey() (Key, error) {
	key, err := c.keys.ReadKey()
	if err != nil {
		return Key{}, systemError("read terminal input", err)
	}
	return key, nil
}

func (c *Console) write(s string) error {
	if _, err := io.WriteString(c.term, s); err != nil {
		return systemError("write terminal output", err)
	}
	return nil
}

func (c *Console) writef(format string, args ...any) error {
	return c.write(fmt.Sprintf(format, args...))
}
