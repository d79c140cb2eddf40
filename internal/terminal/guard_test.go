package terminal

import (
	"errors"
	"testing"
)

func TestGuardAcquireAndRelease(t *testing.T) {
	ft := newFakeTerminal("")
	g, err := Acquire(ft, true)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got := g.State(); got != (ModeState{RawMode: true, BracketedPaste: true}) {
		t.Fatalf("State() = %+v, want raw and paste", got)
	}
	if got := CurrentMode(); !got.RawMode {
		t.Fatalf("CurrentMode() = %+v, want raw", got)
	}

	g.Release()

	if ft.raw {
		t.Fatal("terminal still raw after Release")
	}
	if got := CurrentMode(); got != (ModeState{}) {
		t.Fatalf("CurrentMode() after release = %+v", got)
	}
	want := enableBracketedPaste + "\r\n" + disableBracketedPaste
	if got := ft.out.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestGuardReleaseIsIdempotent(t *testing.T) {
	ft := newFakeTerminal("")
	g, err := Acquire(ft, false)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	g.Release()
	g.Release()
	if got := ft.out.String(); got != "\r\n" {
		t.Fatalf("output = %q, want a single CRLF", got)
	}
}

func TestWithGuardRestoresOnError(t *testing.T) {
	ft := newFakeTerminal("")
	boom := errors.New("boom")

	err := WithGuard(ft, true, func(g *Guard) error {
		if !g.State().BracketedPaste {
			t.Fatal("bracketed paste not enabled inside scope")
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if ft.raw {
		t.Fatal("raw mode still active")
	}
	if got := CurrentMode(); got.RawMode || got.BracketedPaste {
		t.Fatalf("mode after error = %+v, want both flags off", got)
	}
}

func TestWithGuardRestoresOnPanic(t *testing.T) {
	ft := newFakeTerminal("")
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()
		_ = WithGuard(ft, true, func(*Guard) error {
			panic("mid-edit")
		})
	}()
	if ft.raw {
		t.Fatal("raw mode still active after panic")
	}
	if got := CurrentMode(); got != (ModeState{}) {
		t.Fatalf("mode after panic = %+v", got)
	}
}

func TestAcquireFailureIsSystemError(t *testing.T) {
	ft := newFakeTerminal("")
	ft.rawErr = errors.New("not a tty")

	_, err := Acquire(ft, true)
	if !IsSystemError(err) {
		t.Fatalf("err = %v, want SystemError", err)
	}
	if IsCancelled(err) {
		t.Fatal("acquire failure reported as cancellation")
	}
	if got := CurrentMode(); got != (ModeState{}) {
		t.Fatalf("mode after failed acquire = %+v", got)
	}
}

func TestAcquireRejectsNesting(t *testing.T) {
	outer, err := Acquire(newFakeTerminal(""), false)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer outer.Release()

	if _, err := Acquire(newFakeTerminal(""), false); !IsSystemError(err) {
		t.Fatalf("nested Acquire err = %v, want SystemError", err)
	}
}

func TestProbeSizeFallback(t *testing.T) {
	ft := newFakeTerminal("")
	ft.sizeErr = errors.New("no size")
	if got := ProbeSize(ft); got != (Size{Rows: 24, Cols: 80}) {
		t.Fatalf("ProbeSize = %+v, want 24x80", got)
	}

	ft = newFakeTerminal("")
	ft.cols, ft.rows = 120, 40
	if got := ProbeSize(ft); got != (Size{Rows: 40, Cols: 120}) {
		t.Fatalf("ProbeSize = %+v", got)
	}
}

func TestSystemErrorMessage(t *testing.T) {
	err := systemError("read terminal input", errors.New("EOF"))
	if got, want := err.Error(), "system error: read terminal input: EOF"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
