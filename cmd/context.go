package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/z9wen/toolsss/pkg/audit"
	"github.com/z9wen/toolsss/pkg/backend"
	"github.com/z9wen/toolsss/pkg/config"
	"github.com/z9wen/toolsss/pkg/formatter"
	"github.com/z9wen/toolsss/pkg/nginx"
	"github.com/z9wen/toolsss/pkg/runner"
	"github.com/z9wen/toolsss/pkg/site"
)

// appContext bundles the collaborators every command needs. It is built once
// per invocation; backend resolution inside it is memoized.
type appContext struct {
	cfg      *config.Settings
	out      *formatter.Output
	run      runner.Runner
	resolver *backend.Resolver
	auditLog audit.Logger
}

func newAppContext() *appContext {
	cfg := config.Load()
	out := formatter.New(verbose, noColor)
	run := runner.NewLocal(verbose)

	var auditLog audit.Logger = audit.NoOpLogger{}
	if l, err := audit.NewFileLogger(cfg.StateDir); err == nil {
		auditLog = l
	}

	return &appContext{
		cfg:      cfg,
		out:      out,
		run:      run,
		resolver: backend.NewResolver(run, cfg, out),
		auditLog: auditLog,
	}
}

// siteStack resolves the web-server backend and builds the reload gate and
// site registry on top of its root paths.
func (a *appContext) siteStack() (backend.Nginx, *nginx.Gate, *site.Registry, error) {
	be, err := a.resolver.Nginx()
	if err != nil {
		return nil, nil, nil, err
	}
	gate := nginx.NewGate(be, a.out)
	registry := site.NewRegistry(be.Paths(), gate, a.out, backupRoot(a.cfg.StateDir))
	return be, gate, registry, nil
}

// newRegistryReadOnly builds a registry over an already-detected backend,
// for commands that only inspect state.
func newRegistryReadOnly(app *appContext, be backend.Nginx) (*site.Registry, error) {
	gate := nginx.NewGate(be, app.out)
	return site.NewRegistry(be.Paths(), gate, app.out, backupRoot(app.cfg.StateDir)), nil
}

func backupRoot(stateDir string) string {
	return stateDir + "/backups"
}

// promptLine asks the operator one question and returns the trimmed answer.
func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
