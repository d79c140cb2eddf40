package terminal

import (
	"bufio"
	"bytes"
	"io"
	"time"
)

// KeyKind identifies a decoded key press.
type KeyKind int

const (
	KeyNone KeyKind = iota
	KeyRune
	KeyEnter
	KeyLineBreak
	KeyBackspace
	KeyTab
	KeyEscape
	KeyInterrupt
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPaste
)

// Key is one decoded input event. Rune is set for KeyRune and Text for
// KeyPaste.
type Key struct {
	Kind KeyKind
	Rune rune
	Text string
}

var pasteEnd = []byte("\033[201~")

// escapeWait is how long an ESC waits for the rest of a sequence that the
// terminal delivered in more than one read.
const escapeWait = 50 * time.Millisecond

// TimedReader is implemented by inputs that can give up on a read after a
// deadline. Without it a KeyReader blocks for the byte after an ESC.
type TimedReader interface {
	ReadTimeout(p []byte, d time.Duration) (int, error)
}

// stream serves bytes fetched by a timed read before going back to src.
type stream struct {
	src     io.Reader
	pending []byte
}

func (s *stream) Read(p []byte) (int, error) {
	if len(s.pending) > 0 {
		n := copy(p, s.pending)
		s.pending = s.pending[n:]
		return n, nil
	}
	return s.src.Read(p)
}

// KeyReader decodes raw terminal bytes into key events.
//
// Enter is a carriage return. A line break is Ctrl+J, Shift+Enter in either
// of its CSI encodings, or Escape followed by Enter.
type KeyReader struct {
	in *stream
	r  *bufio.Reader
}

// NewKeyReader wraps r. A KeyReader must persist across reads from the same
// stream so that buffered bytes are not lost.
func NewKeyReader(r io.Reader) *KeyReader {
	in := &stream{src: r}
	return &KeyReader{in: in, r: bufio.NewReader(in)}
}

// ReadKey blocks until a key is decoded. Unrecognised control bytes and
// escape sequences are skipped.
func (k *KeyReader) ReadKey() (Key, error) {
	for {
		b, err := k.r.ReadByte()
		if err != nil {
			return Key{}, err
		}

		switch {
		case b == 0x1b:
			key, err := k.readEscape()
			if err != nil {
				return Key{}, err
			}
			if key.Kind == KeyNone {
				continue
			}
			return key, nil
		case b == '\r':
			return Key{Kind: KeyEnter}, nil
		case b == '\n':
			return Key{Kind: KeyLineBreak}, nil
		case b == 127 || b == 8:
			return Key{Kind: KeyBackspace}, nil
		case b == '\t':
			return Key{Kind: KeyTab}, nil
		case b == 3:
			return Key{Kind: KeyInterrupt}, nil
		case b < 0x20:
			continue
		}

		if err := k.r.UnreadByte(); err != nil {
			return Key{}, err
		}
		r, _, err := k.r.ReadRune()
		if err != nil {
			return Key{}, err
		}
		return Key{Kind: KeyRune, Rune: r}, nil
	}
}

// readEscape decodes what follows an ESC byte. A lone ESC is reported when
// no further byte arrives within escapeWait.
func (k *KeyReader) readEscape() (Key, error) {
	if k.r.Buffered() == 0 && !k.awaitFollowUp() {
		return Key{Kind: KeyEscape}, nil
	}
	next, err := k.r.Peek(1)
	if err != nil {
		return Key{Kind: KeyEscape}, nil
	}

	switch next[0] {
	case '[':
		k.r.ReadByte()
		return k.readCSI()
	case 'O':
		k.r.ReadByte()
		b, err := k.r.ReadByte()
		if err != nil {
			return Key{}, err
		}
		return arrowKey(b), nil
	case '\r', '\n':
		k.r.ReadByte()
		return Key{Kind: KeyLineBreak}, nil
	}
	return Key{Kind: KeyEscape}, nil
}

// awaitFollowUp reports whether more input is available after an ESC. Inputs
// without a timed read fall through to a blocking Peek.
func (k *KeyReader) awaitFollowUp() bool {
	tr, ok := k.in.src.(TimedReader)
	if !ok {
		return true
	}
	buf := make([]byte, 32)
	n, _ := tr.ReadTimeout(buf, escapeWait)
	if n == 0 {
		return false
	}
	k.in.pending = append(k.in.pending, buf[:n]...)
	return true
}

func (k *KeyReader) readCSI() (Key, error) {
	var params []byte
	for {
		b, err := k.r.ReadByte()
		if err != nil {
			return Key{}, err
		}
		if b >= 0x40 && b <= 0x7e {
			return k.decodeCSI(string(params), b)
		}
		params = append(params, b)
	}
}

func (k *KeyReader) decodeCSI(params string, final byte) (Key, error) {
	switch final {
	case 'A', 'B', 'C', 'D':
		return arrowKey(final), nil
	case 'u':
		switch params {
		case "13;2":
			return Key{Kind: KeyLineBreak}, nil
		case "13":
			return Key{Kind: KeyEnter}, nil
		}
	case '~':
		switch params {
		case "200":
			text, err := k.readPaste()
			if err != nil {
				return Key{}, err
			}
			return Key{Kind: KeyPaste, Text: text}, nil
		case "27;2;13":
			return Key{Kind: KeyLineBreak}, nil
		}
	}
	return Key{Kind: KeyNone}, nil
}

func (k *KeyReader) readPaste() (string, error) {
	var data []byte
	for {
		b, err := k.r.ReadByte()
		if err != nil {
			return "", err
		}
		data = append(data, b)
		if bytes.HasSuffix(data, pasteEnd) {
			return string(data[:len(data)-len(pasteEnd)]), nil
		}
	}
}

func arrowKey(b byte) Key {
	switch b {
	case 'A':
		return Key{Kind: KeyUp}
	case 'B':
		return Key{Kind: KeyDown}
	case 'C':
		return Key{Kind: KeyRight}
	case 'D':
		return Key{Kind: KeyLeft}
	}
	return Key{Kind: KeyNone}
}
