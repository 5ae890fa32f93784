package backend

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/z9wen/toolsss/pkg/runner"
)

// dockerNginx drives an nginx instance running as a managed container.
// Config, webroot, log and certificate directories live on the host and are
// bind-mounted into the container, so file mutation is always local.
type dockerNginx struct {
	run       runner.Runner
	container string
	root      string // host-side bind mount root
}

func (n *dockerNginx) Mode() Mode { return ModeDocker }

func (n *dockerNginx) Paths() Paths {
	return Paths{
		ConfDir:  filepath.Join(n.root, "conf.d"),
		WWWRoot:  filepath.Join(n.root, "www"),
		LogRoot:  filepath.Join(n.root, "logs"),
		CertRoot: filepath.Join(n.root, "certs"),
	}
}

func (n *dockerNginx) Test() (string, error) {
	return n.run.Run(fmt.Sprintf("docker exec %s nginx -t 2>&1", n.container))
}

func (n *dockerNginx) Reload() error {
	_, err := n.run.Run(fmt.Sprintf("docker exec %s nginx -s reload", n.container))
	return err
}

func (n *dockerNginx) Running() (bool, error) {
	out, err := n.run.Run(fmt.Sprintf("docker ps --filter name=^%s$ --format '{{.Names}}'", n.container))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == n.container, nil
}

// nativeNginx drives an nginx installed directly on the host.
type nativeNginx struct {
	run   runner.Runner
	paths Paths
}

func (n *nativeNginx) Mode() Mode { return ModeNative }

func (n *nativeNginx) Paths() Paths { return n.paths }

func (n *nativeNginx) Test() (string, error) {
	return n.run.Run("nginx -t 2>&1")
}

func (n *nativeNginx) Reload() error {
	_, err := n.run.Run("nginx -s reload")
	return err
}

func (n *nativeNginx) Running() (bool, error) {
	out, err := n.run.Run("pgrep -x nginx >/dev/null 2>&1 && echo running || true")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "running", nil
}
