package terminal

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInputBufferLineBreakAndSubmit(t *testing.T) {
	var b InputBuffer
	b.Insert('a')
	b.Break()
	b.Insert('b')
	got := b.Submit()

	if got != "a\nb" {
		t.Fatalf("Submit() = %q, want %q", got, "a\nb")
	}
	if diff := cmp.Diff([]string{"a", "b"}, b.Lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestInputBufferBackspaceReopensPreviousLine(t *testing.T) {
	var b InputBuffer
	b.Insert('a')
	b.Break()

	kind, _ := b.Backspace()
	if kind != eraseJoin {
		t.Fatalf("Backspace kind = %v, want join", kind)
	}
	if len(b.Lines) != 0 || string(b.Current) != "a" {
		t.Fatalf("after backspace: lines=%q current=%q", b.Lines, string(b.Current))
	}

	kind, r := b.Backspace()
	if kind != eraseRune || r != 'a' || len(b.Current) != 0 {
		t.Fatalf("second backspace: kind=%v rune=%q current=%q", kind, r, string(b.Current))
	}
	if kind, _ := b.Backspace(); kind != eraseNothing {
		t.Fatalf("backspace on empty buffer kind = %v", kind)
	}
}

func TestInputBufferPasteKeepsTypedPrefix(t *testing.T) {
	var b InputBuffer
	b.Insert('X')
	committed := b.Paste("line1\nline2\nline3")

	if diff := cmp.Diff([]string{"line1", "line2"}, b.Lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"line1", "line2"}, committed); diff != "" {
		t.Fatalf("committed mismatch (-want +got):\n%s", diff)
	}
	if got := string(b.Current); got != "Xline3" {
		t.Fatalf("current = %q, want %q", got, "Xline3")
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"one", []string{"one"}},
		{"one\r\ntwo\rthree\n", []string{"one", "two", "three"}},
		{"a\x07b\tc", []string{"ab\tc"}},
		{"\n", []string{""}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitLines(tt.in)); diff != "" {
			t.Errorf("splitLines(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestEditMultiline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ctrl j break", "a\nb\r", "a\nb"},
		{"shift enter break", "a\x1b[13;2ub\r", "a\nb"},
		{"alt enter break", "a\x1b\rb\r", "a\nb"},
		{"backspace joins lines", "a\n\x7fc\r", "ac"},
		{"backspace erases rune", "abc\x7f\r", "ab"},
		{"empty submit", "\r", ""},
		{"paste with prefix", "X\x1b[200~l1\nl2\nl3\x1b[201~\r", "l1\nl2\nXl3"},
		{"arrows ignored", "a\x1b[A\x1b[Db\r", "ab"},
	}
	for _, tt := range tests {
		for _, split := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/split=%v", tt.name, split), func(t *testing.T) {
				ft := newFakeTerminal(tt.input)
				ft.split = split
				got, err := NewConsole(ft).EditMultiline("Content:")
				if err != nil {
					t.Fatalf("EditMultiline: %v", err)
				}
				if got != tt.want {
					t.Fatalf("EditMultiline = %q, want %q", got, tt.want)
				}
				if ft.raw {
					t.Fatal("terminal left in raw mode")
				}
			})
		}
	}
}

func TestEditMultilineEnablesBracketedPaste(t *testing.T) {
	ft := newFakeTerminal("hi\r")
	if _, err := NewConsole(ft).EditMultiline(""); err != nil {
		t.Fatalf("EditMultiline: %v", err)
	}
	out := ft.out.String()
	if !strings.HasPrefix(out, enableBracketedPaste) {
		t.Fatalf("output %q does not start with bracketed paste enable", out)
	}
	if !strings.HasSuffix(out, "\r\n"+disableBracketedPaste) {
		t.Fatalf("output %q does not end with CRLF then paste disable", out)
	}
}

func TestEditMultilineCancel(t *testing.T) {
	for _, input := range []string{"ab\x1b", "ab\x03"} {
		ft := newFakeTerminal(input)
		ft.split = true
		_, err := NewConsole(ft).EditMultiline("")
		if !IsCancelled(err) {
			t.Fatalf("input %q: err = %v, want cancelled", input, err)
		}
		if IsSystemError(err) {
			t.Fatalf("input %q: cancellation reported as system error", input)
		}
		if ft.raw {
			t.Fatal("terminal left in raw mode")
		}
	}
}

func TestEditMultilineEOFIsSystemError(t *testing.T) {
	ft := newFakeTerminal("abc")
	_, err := NewConsole(ft).EditMultiline("")
	if !IsSystemError(err) {
		t.Fatalf("err = %v, want SystemError", err)
	}
	if ft.raw {
		t.Fatal("terminal left in raw mode")
	}
}

func TestAutocomplete(t *testing.T) {
	suggestions := []string{"golang", "google", "rust"}
	tests := []struct {
		input string
		want  string
	}{
		{"g", ""},
		{"go", "lang"},
		{"goo", "gle"},
		{"golang", ""},
		{"py", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Autocomplete(tt.input, suggestions); got != tt.want {
			t.Errorf("Autocomplete(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "  hello  \r", "hello"},
		{"tab accepts suggestion", "go\t\r", "golang"},
		{"tab without suggestion", "g\t\r", "g"},
		{"backspace", "gox\x7f\r", "go"},
		{"paste flattens lines", "\x1b[200~a\nb\x1b[201~\r", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := newFakeTerminal(tt.input)
			got, err := NewConsole(ft).ReadLine("> ", []string{"golang"})
			if err != nil {
				t.Fatalf("ReadLine: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ReadLine = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadLineCancel(t *testing.T) {
	_, err := NewConsole(newFakeTerminal("abc\x1b")).ReadLine("> ", nil)
	if !IsCancelled(err) {
		t.Fatalf("err = %v, want cancelled", err)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\r", true},
		{"YES\r", true},
		{"n\r", false},
		{"\r", false},
		{"maybe\ry\r", true},
	}
	for _, tt := range tests {
		got, err := NewConsole(newFakeTerminal(tt.input)).Confirm("Delete?")
		if err != nil {
			t.Fatalf("Confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestEditMultilineRedrawsWrappedLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		echo  string
	}{
		{"backspace across wrap", "abcdefghijk\x7f\r", "abcdefghij", "\033[1A\r\033[Jabcdefghij"},
		{"backspace within one row", "abc\x7f\r", "ab", "\b\033[K"},
		{"paste after wrapped prefix", "abcdefghijkl\x1b[200~x\ny\x1b[201~\r", "x\nabcdefghijkly", "\033[1A\r\033[Jx\r\nabcdefghijkly"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := newFakeTerminal(tt.input)
			ft.cols = 10
			got, err := NewConsole(ft).EditMultiline("")
			if err != nil {
				t.Fatalf("EditMultiline: %v", err)
			}
			if got != tt.want {
				t.Fatalf("EditMultiline = %q, want %q", got, tt.want)
			}
			if !strings.Contains(ft.out.String(), tt.echo) {
				t.Fatalf("output %q missing %q", ft.out.String(), tt.echo)
			}
		})
	}
}
