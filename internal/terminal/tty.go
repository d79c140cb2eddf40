package terminal

import (
	"errors"
	"os"
	"syscall"
	"time"

	"golang.org/x/term"
)

// Terminal is the console surface the interactive components drive.
// Reads return raw key bytes once MakeRaw has succeeded.
type Terminal interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	MakeRaw() error
	Restore() error
	Size() (cols, rows int, err error)
}

var errNotTerminal = errors.New("stdin is not a terminal")

// TTY is the process terminal backed by stdin and stdout.
type TTY struct {
	in    *os.File
	out   *os.File
	state *term.State
}

// NewTTY returns a Terminal over os.Stdin and os.Stdout.
func NewTTY() *TTY {
	return &TTY{in: os.Stdin, out: os.Stdout}
}

func (t *TTY) Read(p []byte) (int, error)  { return t.in.Read(p) }
func (t *TTY) Write(p []byte) (int, error) { return t.out.Write(p) }

// IsTerminal reports whether stdin is attached to a terminal.
func (t *TTY) IsTerminal() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

// MakeRaw switches stdin to raw mode, remembering the previous state.
func (t *TTY) MakeRaw() error {
	fd := int(t.in.Fd())
	if !term.IsTerminal(fd) {
		return errNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	t.state = state
	return nil
}

// Restore puts stdin back into the mode it had before MakeRaw.
func (t *TTY) Restore() error {
	if t.state == nil {
		return nil
	}
	err := term.Restore(int(t.in.Fd()), t.state)
	t.state = nil
	return err
}

// Size returns the dimensions of the output terminal.
func (t *TTY) Size() (int, int, error) {
	return term.GetSize(int(t.out.Fd()))
}

// ReadTimeout reads whatever arrives on stdin within d. It returns 0 when
// the deadline passes with nothing to read.
func (t *TTY) ReadTimeout(p []byte, d time.Duration) (int, error) {
	fd := int(t.in.Fd())
	if err := syscall.SetNonblock(fd, true); err != nil {
		return 0, err
	}
	defer syscall.SetNonblock(fd, false)

	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		n, err := syscall.Read(fd, p)
		if n > 0 {
			return n, nil
		}
		if err == nil {
			return 0, nil
		}
		if !errors.Is(err, syscall.EAGAIN) && !errors.Is(err, syscall.EINTR) {
			return 0, err
		}
		time.Sleep(5 * time.Millisecond)
	}
	return 0, nil
}
