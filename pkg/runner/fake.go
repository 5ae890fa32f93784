package runner

import (
	"fmt"
	"io"
	"strings"
)

// Fake is an in-memory Runner for tests. Responses are matched by substring
// against the executed command; unmatched commands return empty output.
type Fake struct {
	// Commands records every command executed, in order.
	Commands []string
	// Responses maps a command substring to its canned output.
	Responses map[string]string
	// Failures maps a command substring to an error message.
	Failures map[string]string
}

// NewFake creates a fake runner
func NewFake() *Fake {
	return &Fake{
		Responses: make(map[string]string),
		Failures:  make(map[string]string),
	}
}

// Run records the command and returns the canned response, if any.
func (f *Fake) Run(cmd string) (string, error) {
	f.Commands = append(f.Commands, cmd)

	for substr, msg := range f.Failures {
		if strings.Contains(cmd, substr) {
			return "", fmt.Errorf("command failed: %s", msg)
		}
	}
	for substr, out := range f.Responses {
		if strings.Contains(cmd, substr) {
			return out, nil
		}
	}
	return "", nil
}

// RunStream records the command and writes the canned response to stdout.
func (f *Fake) RunStream(cmd string, stdout, stderr io.Writer) error {
	out, err := f.Run(cmd)
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintln(stdout, out)
	}
	return nil
}

// Ran reports whether any executed command contains the given substring.
func (f *Fake) Ran(substr string) bool {
	for _, cmd := range f.Commands {
		if strings.Contains(cmd, substr) {
			return true
		}
	}
	return false
}
