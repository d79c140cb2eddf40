package terminal

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

// Process is a spawned finder with a writable stdin.
type Process interface {
	io.Writer
	CloseStdin() error
	// Wait blocks until the process exits. A non-zero exit status is
	// reported through ProcessOutput.ExitCode, not as an error.
	Wait() (ProcessOutput, error)
}

// ProcessOutput is what a finished process left behind.
type ProcessOutput struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Spawner starts external executables.
type Spawner interface {
	Available(ctx context.Context, name string) bool
	Spawn(ctx context.Context, name string, args ...string) (Process, error)
}

// FindStatus classifies the outcome of a finder session.
type FindStatus int

const (
	// FindUnavailable means the finder could not be located or invoked;
	// callers should fall back to a built-in selector.
	FindUnavailable FindStatus = iota
	// FindNoSelection means the finder ran but nothing was chosen.
	FindNoSelection
	// FindSelected means Selection holds the chosen candidate.
	FindSelected
)

// FindResult is the outcome of FinderBridge.Find.
type FindResult struct {
	Status    FindStatus
	Selection string
	Key       string
}

// FinderBridge hands a candidate list to an external fuzzy finder such as
// fzf, sk or peco and reads back the chosen line.
//
// Candidates are written NUL-terminated so they may contain newlines. For
// finders that support it, the first output line names the key that ended
// the session and the rest is the selection.
type FinderBridge struct {
	spawner Spawner
	logger  *zap.Logger
}

// NewFinderBridge returns a bridge using sp to run finders.
func NewFinderBridge(sp Spawner, logger *zap.Logger) *FinderBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinderBridge{spawner: sp, logger: logger}
}

// Find runs selectorCommand over items. query, when non-empty, seeds the
// finder's search field.
func (f *FinderBridge) Find(ctx context.Context, items []string, selectorCommand, query string) (FindResult, error) {
	fields := strings.Fields(selectorCommand)
	if len(fields) == 0 {
		return FindResult{Status: FindUnavailable}, nil
	}
	name := fields[0]
	if !f.spawner.Available(ctx, name) {
		f.logger.Debug("finder not available", zap.String("command", name))
		return FindResult{Status: FindUnavailable}, nil
	}

	kind := finderKind(name)
	args := append(fields[1:len(fields):len(fields)], kind.args(query)...)
	f.logger.Debug("spawning finder", zap.String("command", name), zap.Strings("args", args))

	proc, err := f.spawner.Spawn(ctx, name, args...)
	if err != nil {
		return FindResult{}, systemError("spawn "+name, err)
	}

	if err := writeCandidates(proc, items); err != nil {
		_ = proc.CloseStdin()
		_, _ = proc.Wait()
		return FindResult{}, systemError("write to "+name, err)
	}
	if err := proc.CloseStdin(); err != nil {
		f.logger.Debug("closing finder stdin", zap.Error(err))
	}

	out, err := proc.Wait()
	if err != nil {
		return FindResult{}, systemError("wait for "+name, err)
	}
	if out.ExitCode != 0 {
		f.logger.Debug("finder exited without selection", zap.Int("exit_code", out.ExitCode))
		return FindResult{Status: FindNoSelection}, nil
	}

	key, selection, ok := parseFinderOutput(out.Stdout, kind.reportsKey())
	if !ok {
		return FindResult{Status: FindNoSelection}, nil
	}
	return FindResult{Status: FindSelected, Selection: selection, Key: key}, nil
}

// writeCandidates streams items NUL-terminated. A finder that exits before
// reading everything closes the pipe; that is not a failure.
func writeCandidates(w io.Writer, items []string) error {
	bw := bufio.NewWriter(w)
	for _, item := range items {
		if _, err := bw.WriteString(item); err != nil {
			return ignoreClosedPipe(err)
		}
		if err := bw.WriteByte(0); err != nil {
			return ignoreClosedPipe(err)
		}
	}
	return ignoreClosedPipe(bw.Flush())
}

func ignoreClosedPipe(err error) error {
	if err == nil || errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

// parseFinderOutput splits finder stdout into the terminating key and the
// selection. Without a key line the whole output is the selection.
func parseFinderOutput(stdout []byte, withKey bool) (key, selection string, ok bool) {
	out := string(stdout)
	if withKey {
		i := strings.IndexByte(out, '\n')
		if i < 0 {
			return "", "", false
		}
		key, out = out[:i], out[i+1:]
	}
	selection = strings.TrimRight(out, "\r\n\x00")
	if strings.TrimSpace(selection) == "" {
		return "", "", false
	}
	return key, selection, true
}

type finder int

const (
	finderOther finder = iota
	finderFzf
	finderSkim
	finderPeco
)

func finderKind(name string) finder {
	switch filepath.Base(name) {
	case "fzf":
		return finderFzf
	case "sk":
		return finderSkim
	case "peco":
		return finderPeco
	}
	return finderOther
}

func (k finder) reportsKey() bool {
	return k == finderFzf || k == finderSkim
}

// args returns the flags appended for a known finder.
func (k finder) args(query string) []string {
	switch k {
	case finderFzf, finderSkim:
		args := []string{
			"--read0",
			"--expect=enter",
			"--height=40%",
			"--layout=reverse",
			"--border",
			"--inline-info",
			"--prompt=Select prompt> ",
		}
		if query != "" {
			args = append(args, "--query="+query)
		}
		return args
	case finderPeco:
		args := []string{"--null"}
		if query != "" {
			args = append(args, "--query", query)
		}
		return args
	}
	return nil
}

// IndexOf returns the position of the first item equal to selection, or -1.
func IndexOf(items []string, selection string) int {
	for i, item := range items {
		if item == selection {
			return i
		}
	}
	return -1
}

// ExecSpawner runs finders as real child processes. The finder draws its
// interface on /dev/tty, so stdout and stderr are captured.
type ExecSpawner struct{}

// Available probes name with --version. A command that runs but exits
// non-zero still counts as available.
func (ExecSpawner) Available(ctx context.Context, name string) bool {
	err := exec.CommandContext(ctx, name, "--version").Run()
	if err == nil {
		return true
	}
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// Spawn starts name with piped stdin and captured output.
func (ExecSpawner) Spawn(ctx context.Context, name string, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	p := &execProcess{cmd: cmd, stdin: stdin}
	cmd.Stdout = &p.stdout
	cmd.Stderr = &p.stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func (p *execProcess) Write(b []byte) (int, error) { return p.stdin.Write(b) }

func (p *execProcess) CloseStdin() error { return p.stdin.Close() }

func (p *execProcess) Wait() (ProcessOutput, error) {
	err := p.cmd.Wait()
	out := ProcessOutput{Stdout: p.stdout.Bytes(), Stderr: p.stderr.Bytes()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, err
}
