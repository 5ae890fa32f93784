// Package runner abstracts shell command execution so that backends and the
// certificate engine can be exercised against a fake in tests.
package runner

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner executes shell commands on the local host.
type Runner interface {
	// Run executes a command through the shell and returns its combined output.
	Run(cmd string) (string, error)
	// RunStream executes a command, streaming stdout/stderr to the given writers.
	RunStream(cmd string, stdout, stderr io.Writer) error
}

// Local runs commands on the local host via the shell.
type Local struct {
	verbose bool
}

// NewLocal creates a local runner
func NewLocal(verbose bool) *Local {
	return &Local{verbose: verbose}
}

// Run executes a command and returns its combined output
func (l *Local) Run(cmd string) (string, error) {
	if l.verbose {
		fmt.Printf("  $ %s\n", cmd)
	}

	out, err := exec.Command("sh", "-c", cmd).CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		if output != "" {
			return output, fmt.Errorf("command failed: %s: %w", output, err)
		}
		return output, fmt.Errorf("command failed: %w", err)
	}
	return output, nil
}

// RunStream executes a command with output streamed to the given writers
func (l *Local) RunStream(cmd string, stdout, stderr io.Writer) error {
	if l.verbose {
		fmt.Printf("  $ %s\n", cmd)
	}

	c := exec.Command("sh", "-c", cmd)
	c.Stdout = stdout
	c.Stderr = stderr
	return c.Run()
}
