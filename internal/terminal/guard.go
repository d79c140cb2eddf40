package terminal

import (
	"errors"
	"io"
	"sync"
)

const (
	enableBracketedPaste  = "\033[?2004h"
	disableBracketedPaste = "\033[?2004l"
)

var errGuardActive = errors.New("terminal mode guard already held")

// ModeState describes the terminal flags owned by a Guard.
type ModeState struct {
	RawMode        bool
	BracketedPaste bool
}

var (
	activeMu sync.Mutex
	active   *Guard
)

// Guard holds the terminal in raw mode, optionally with bracketed paste,
// until Release is called. Only one Guard may be held at a time.
type Guard struct {
	term     Terminal
	state    ModeState
	released bool
}

// Acquire enables raw mode on t and, when bracketedPaste is set, asks the
// terminal to bracket pasted text. Failing to enable bracketed paste is not
// an error; the flag simply stays off.
func Acquire(t Terminal, bracketedPaste bool) (*Guard, error) {
	activeMu.Lock()
	defer activeMu.Unlock()

	if active != nil {
		return nil, systemError("acquire terminal", errGuardActive)
	}
	if err := t.MakeRaw(); err != nil {
		return nil, systemError("enable raw mode", err)
	}

	g := &Guard{term: t, state: ModeState{RawMode: true}}
	if bracketedPaste {
		if _, err := io.WriteString(t, enableBracketedPaste); err == nil {
			g.state.BracketedPaste = true
		}
	}
	active = g
	return g, nil
}

// State returns the flags the guard currently owns.
func (g *Guard) State() ModeState {
	activeMu.Lock()
	defer activeMu.Unlock()
	return g.state
}

// Release moves the cursor to a fresh line, disables bracketed paste if it
// was enabled, then restores the terminal. Errors are ignored and repeated
// calls do nothing.
func (g *Guard) Release() {
	if g == nil {
		return
	}
	activeMu.Lock()
	defer activeMu.Unlock()

	if g.released {
		return
	}
	g.released = true

	_, _ = io.WriteString(g.term, "\r\n")
	if g.state.BracketedPaste {
		_, _ = io.WriteString(g.term, disableBracketedPaste)
		g.state.BracketedPaste = false
	}
	_ = g.term.Restore()
	g.state.RawMode = false

	if active == g {
		active = nil
	}
}

// CurrentMode reports the flags of the guard currently held, if any.
func CurrentMode() ModeState {
	activeMu.Lock()
	defer activeMu.Unlock()
	if active == nil {
		return ModeState{}
	}
	return active.state
}

// WithGuard runs fn while holding a Guard on t. The terminal is restored on
// every exit path, including a panic in fn.
func WithGuard(t Terminal, bracketedPaste bool, fn func(g *Guard) error) error {
	g, err := Acquire(t, bracketedPaste)
	if err != nil {
		return err
	}
	defer g.Release()
	return fn(g)
}
