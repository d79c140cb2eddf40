package terminal

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// EditorArgs builds the argument list that opens path at line in editor.
// line <= 0 opens the file at the top.
func EditorArgs(editor, path string, line int) []string {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		fields = []string{"vi"}
	}
	args := fields[1:len(fields):len(fields)]
	if line <= 0 {
		return append(args, path)
	}
	switch filepath.Base(fields[0]) {
	case "code", "code-insiders", "codium", "cursor":
		return append(args, "--goto", fmt.Sprintf("%s:%d", path, line))
	case "subl", "zed":
		return append(args, fmt.Sprintf("%s:%d", path, line))
	}
	return append(args, fmt.Sprintf("+%d", line), path)
}

// OpenInEditor runs editor on path attached to the current terminal and
// waits for it to exit.
func OpenInEditor(editor, path string, line int) error {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		fields = []string{"vi"}
	}
	cmd := exec.Command(fields[0], EditorArgs(editor, path, line)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return systemError("run editor "+fields[0], err)
	}
	return nil
}
