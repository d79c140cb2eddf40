package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ANSI attributes used by the raw-mode components and status lines.
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
)

// Status lines go to stdout, failures to stderr.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func mark(w io.Writer, color, symbol, msg string) {
	fmt.Fprintf(w, "%s%s%s%s %s\n", Bold, color, symbol, Reset, msg)
}

// Success reports a completed operation.
func Success(msg string) { mark(stdout, Green, "✓", msg) }

// Error reports a user-level problem such as an unknown prompt.
func Error(msg string) { mark(stdout, Red, "✗", msg) }

func Info(msg string)    { mark(stdout, Blue, "i", msg) }
func Warning(msg string) { mark(stdout, Yellow, "!", msg) }

// Header starts a titled block separated by a blank line.
func Header(msg string) {
	fmt.Fprintf(stdout, "\n%s%s%s\n", Bold, msg, Reset)
}

// Detail prints an indented label: value line.
func Detail(label, value string) {
	fmt.Fprintf(stdout, "  %s%s:%s %s\n", Dim, label, Reset, value)
}

func Hint(msg string) {
	fmt.Fprintf(stdout, "  %s%s%s\n", Dim, msg, Reset)
}

// Cancelled acknowledges a user cancellation. It is not a failure.
func Cancelled(what string) {
	fmt.Fprintf(stdout, "%s%s cancelled.%s\n", Dim, what, Reset)
}

// Failure reports the error a command ended with. Terminal and external
// process failures are labelled as system errors and name the failed step.
func Failure(err error) {
	var se *SystemError
	if !errors.As(err, &se) {
		fmt.Fprintf(stderr, "%sError:%s %v\n", Red, Reset, err)
		return
	}
	mark(stderr, Red, "✗", "System error: "+se.Err.Error())
	if se.Op != "" {
		fmt.Fprintf(stderr, "  %sfailed to %s%s\n", Dim, se.Op, Reset)
	}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a message while a network request is in flight.
type Spinner struct {
	message string
	out     io.Writer
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func NewSpinner(message string) *Spinner {
	return &Spinner{message: message, out: stdout, stop: make(chan struct{})}
}

// Start draws frames every 80ms until Stop.
func (s *Spinner) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.out, "\r%s%s %s%s", Cyan, spinnerFrames[i%len(spinnerFrames)], s.message, Reset)
			select {
			case <-s.stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the animation and clears its line. It is safe to call twice.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		s.wg.Wait()
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len([]rune(s.message))+2))
	})
}
