package nginx

import (
	"fmt"
	"os"

	"github.com/z9wen/toolsss/pkg/backend"
	"github.com/z9wen/toolsss/pkg/formatter"
	"github.com/z9wen/toolsss/pkg/utils"
)

// Gate applies configuration changes through the web server's syntax check:
// a reload only happens after the check passes. Every mutating operation in
// the tool goes through this gate.
type Gate struct {
	be  backend.Nginx
	out *formatter.Output
}

// NewGate creates a reload gate for the resolved web-server backend
func NewGate(be backend.Nginx, out *formatter.Output) *Gate {
	return &Gate{be: be, out: out}
}

// Test runs the syntax check and returns its output.
func (g *Gate) Test() (string, error) {
	return g.be.Test()
}

// Apply tests the current configuration and reloads only on success.
func (g *Gate) Apply() error {
	output, err := g.be.Test()
	if err != nil {
		return utils.NewError("nginx config test failed", err, output)
	}
	g.out.Verbose("config test passed")

	if err := g.be.Reload(); err != nil {
		return fmt.Errorf("failed to reload nginx: %w", err)
	}
	g.out.Verbose("nginx reloaded")
	return nil
}

// WriteConfig writes a vhost config file and applies it through the gate.
// The previous file content is snapshotted first; if the syntax check fails
// the snapshot is restored so the last-known-good config stays on disk.
func (g *Gate) WriteConfig(path, content string) error {
	prev, readErr := os.ReadFile(path)
	existed := readErr == nil

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	if err := g.Apply(); err != nil {
		if existed {
			if restoreErr := os.WriteFile(path, prev, 0644); restoreErr != nil {
				return fmt.Errorf("%w (restore of previous config also failed: %v)", err, restoreErr)
			}
			g.out.Warning("previous config restored at %s", path)
		} else {
			if removeErr := os.Remove(path); removeErr != nil {
				return fmt.Errorf("%w (cleanup of rejected config also failed: %v)", err, removeErr)
			}
			g.out.Warning("rejected config removed at %s", path)
		}
		return err
	}
	return nil
}
