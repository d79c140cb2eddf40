package terminal

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	prevOut, prevErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() { stdout, stderr = prevOut, prevErr })
	return out, errOut
}

func TestFailureSeparatesSystemErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    []string
		notWant string
	}{
		{
			name:    "plain",
			err:     errors.New("gist sync is not configured"),
			want:    []string{"Error:", "gist sync is not configured"},
			notWant: "System error",
		},
		{
			name: "system",
			err:  systemError("read terminal input", errors.New("input/output error")),
			want: []string{"System error: input/output error", "failed to read terminal input"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := captureOutput(t)
			Failure(tt.err)
			if out.Len() != 0 {
				t.Fatalf("failure written to stdout: %q", out.String())
			}
			got := errOut.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("stderr %q missing %q", got, w)
				}
			}
			if tt.notWant != "" && strings.Contains(got, tt.notWant) {
				t.Errorf("stderr %q should not contain %q", got, tt.notWant)
			}
		})
	}
}

func TestStatusLines(t *testing.T) {
	out, _ := captureOutput(t)
	Success("saved")
	Warning("careful")
	Detail("ID", "abc")
	Cancelled("Delete")
	got := out.String()
	for _, want := range []string{"✓" + Reset + " saved", "!" + Reset + " careful", "ID:" + Reset + " abc", "Delete cancelled."} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestSpinnerStopWaitsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Syncing...")
	s.out = &buf
	s.Start()
	s.Stop()
	s.Stop()
	got := buf.String()
	if !strings.Contains(got, spinnerFrames[0]+" Syncing...") {
		t.Fatalf("no frame drawn: %q", got)
	}
	if !strings.HasSuffix(got, "\r"+strings.Repeat(" ", len("Syncing...")+2)+"\r") {
		t.Fatalf("line not cleared: %q", got)
	}
}
