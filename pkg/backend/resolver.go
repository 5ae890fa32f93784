package backend

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/z9wen/toolsss/pkg/config"
	"github.com/z9wen/toolsss/pkg/formatter"
	"github.com/z9wen/toolsss/pkg/runner"
)

// Resolver determines the active backend for the web server and the ACME
// client. Each is resolved at most once per process run; every later call
// returns the memoized choice. Resolving the web server as native rewrites
// the root paths used by all subsequent path computation.
type Resolver struct {
	run runner.Runner
	cfg *config.Settings
	out *formatter.Output

	// Prompt reads one line of operator input. Overridable in tests.
	Prompt func(label string) (string, error)

	// fileExists is stubbed in tests for native acme.sh detection.
	fileExists func(path string) bool

	nginx Nginx
	acme  Acme
}

// NewResolver creates a backend resolver
func NewResolver(run runner.Runner, cfg *config.Settings, out *formatter.Output) *Resolver {
	return &Resolver{
		run:    run,
		cfg:    cfg,
		out:    out,
		Prompt: promptStdin,
		fileExists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

func promptStdin(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Nginx resolves the web-server backend: a running managed container wins,
// then a host-native install, then an interactive install offer.
func (r *Resolver) Nginx() (Nginx, error) {
	if r.nginx != nil {
		return r.nginx, nil
	}

	docker := &dockerNginx{run: r.run, container: r.cfg.NginxContainer, root: r.cfg.DockerRoot}
	if running, err := docker.Running(); err == nil && running {
		r.out.Verbose("nginx backend: docker container %s", r.cfg.NginxContainer)
		r.nginx = docker
		return r.nginx, nil
	}

	if _, err := r.run.Run("command -v nginx"); err == nil {
		r.out.Verbose("nginx backend: native installation")
		r.nginx = &nativeNginx{run: r.run, paths: Paths{
			ConfDir:  r.cfg.NativeConfDir,
			WWWRoot:  r.cfg.NativeWWWRoot,
			LogRoot:  r.cfg.NativeLogRoot,
			CertRoot: r.cfg.NativeCertRoot,
		}}
		return r.nginx, nil
	}

	nginx, err := r.installNginx(docker)
	if err != nil {
		return nil, err
	}
	r.nginx = nginx
	return r.nginx, nil
}

// TryNginx detects the backend without offering installation.
func (r *Resolver) TryNginx() (Nginx, bool) {
	if r.nginx != nil {
		return r.nginx, true
	}

	docker := &dockerNginx{run: r.run, container: r.cfg.NginxContainer, root: r.cfg.DockerRoot}
	if running, err := docker.Running(); err == nil && running {
		r.nginx = docker
		return r.nginx, true
	}
	if _, err := r.run.Run("command -v nginx"); err == nil {
		r.nginx = &nativeNginx{run: r.run, paths: Paths{
			ConfDir:  r.cfg.NativeConfDir,
			WWWRoot:  r.cfg.NativeWWWRoot,
			LogRoot:  r.cfg.NativeLogRoot,
			CertRoot: r.cfg.NativeCertRoot,
		}}
		return r.nginx, true
	}
	return nil, false
}

func (r *Resolver) installNginx(docker *dockerNginx) (Nginx, error) {
	r.out.Warning("nginx is not available as a container or a native installation")
	r.out.Plain("How would you like to install it?")
	r.out.NumberedList(
		"Run nginx as a docker container (recommended)",
		"Install nginx natively via the system package manager",
		"Cancel",
	)

	choice, err := r.Prompt("Choice [1-3]: ")
	if err != nil {
		return nil, err
	}

	switch choice {
	case "1":
		if err := r.startNginxContainer(docker); err != nil {
			return nil, err
		}
		return docker, nil
	case "2":
		if err := r.installNativeNginx(); err != nil {
			return nil, err
		}
		return &nativeNginx{run: r.run, paths: Paths{
			ConfDir:  r.cfg.NativeConfDir,
			WWWRoot:  r.cfg.NativeWWWRoot,
			LogRoot:  r.cfg.NativeLogRoot,
			CertRoot: r.cfg.NativeCertRoot,
		}}, nil
	default:
		return nil, fmt.Errorf("no web server backend available: installation cancelled")
	}
}

func (r *Resolver) startNginxContainer(docker *dockerNginx) error {
	r.out.Step("Starting nginx container %s...", docker.container)

	paths := docker.Paths()
	for _, dir := range []string{paths.ConfDir, paths.WWWRoot, paths.LogRoot, paths.CertRoot} {
		if _, err := r.run.Run(fmt.Sprintf("mkdir -p %s", dir)); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	cmd := fmt.Sprintf(`docker run -d --name %s \
		-p 80:80 -p 443:443 \
		-v %s:/etc/nginx/conf.d \
		-v %s:%s \
		-v %s:%s \
		-v %s:%s \
		--restart unless-stopped \
		%s`,
		docker.container,
		paths.ConfDir,
		paths.WWWRoot, paths.WWWRoot,
		paths.LogRoot, paths.LogRoot,
		paths.CertRoot, paths.CertRoot,
		r.cfg.NginxImage)

	if _, err := r.run.Run(strings.Join(strings.Fields(cmd), " ")); err != nil {
		return fmt.Errorf("failed to start nginx container: %w", err)
	}

	if err := r.waitForContainer(docker.container); err != nil {
		return err
	}

	r.out.Success("nginx container started")
	return nil
}

func (r *Resolver) installNativeNginx() error {
	pm, err := DetectPackageManager(r.run)
	if err != nil {
		return err
	}

	r.out.Step("Installing nginx via the system package manager...")
	if err := pm.Update(); err != nil {
		return fmt.Errorf("failed to update package lists: %w", err)
	}
	if err := pm.Install("nginx"); err != nil {
		return fmt.Errorf("failed to install nginx: %w", err)
	}

	if _, err := r.run.Run("systemctl enable --now nginx 2>/dev/null || nginx"); err != nil {
		return fmt.Errorf("failed to start nginx: %w", err)
	}

	r.out.Success("nginx installed")
	return nil
}

// Acme resolves the ACME client backend: a running managed container wins,
// then a native install marker, then an interactive install offer.
func (r *Resolver) Acme() (Acme, error) {
	if r.acme != nil {
		return r.acme, nil
	}

	docker := &dockerAcme{run: r.run, container: r.cfg.AcmeContainer}
	if r.acmeContainerRunning() {
		r.out.Verbose("acme backend: docker container %s", r.cfg.AcmeContainer)
		r.acme = docker
		return r.acme, nil
	}

	if script := NativeAcmeScript(); r.fileExists(script) {
		r.out.Verbose("acme backend: native installation at %s", script)
		r.acme = &nativeAcme{run: r.run, script: script}
		return r.acme, nil
	}

	acme, err := r.installAcme(docker)
	if err != nil {
		return nil, err
	}
	r.acme = acme
	return r.acme, nil
}

// TryAcme detects the backend without offering installation.
func (r *Resolver) TryAcme() (Acme, bool) {
	if r.acme != nil {
		return r.acme, true
	}
	if r.acmeContainerRunning() {
		r.acme = &dockerAcme{run: r.run, container: r.cfg.AcmeContainer}
		return r.acme, true
	}
	if script := NativeAcmeScript(); r.fileExists(script) {
		r.acme = &nativeAcme{run: r.run, script: script}
		return r.acme, true
	}
	return nil, false
}

func (r *Resolver) acmeContainerRunning() bool {
	out, err := r.run.Run(fmt.Sprintf("docker ps --filter name=^%s$ --format '{{.Names}}'", r.cfg.AcmeContainer))
	return err == nil && strings.TrimSpace(out) == r.cfg.AcmeContainer
}

func (r *Resolver) installAcme(docker *dockerAcme) (Acme, error) {
	r.out.Warning("acme.sh is not available as a container or a native installation")
	r.out.Plain("How would you like to install it?")
	r.out.NumberedList(
		"Run acme.sh as a docker daemon (recommended)",
		"Install acme.sh natively (official install script)",
		"Cancel",
	)

	choice, err := r.Prompt("Choice [1-3]: ")
	if err != nil {
		return nil, err
	}

	switch choice {
	case "1":
		if err := r.startAcmeContainer(docker); err != nil {
			return nil, err
		}
		return docker, nil
	case "2":
		if err := r.installNativeAcme(); err != nil {
			return nil, err
		}
		return &nativeAcme{run: r.run, script: NativeAcmeScript()}, nil
	default:
		return nil, fmt.Errorf("no ACME client available: installation cancelled\n" +
			"  docker: docker run -d --name acme.sh -v /opt/sitemgr/acme:/acme.sh neilpang/acme.sh daemon\n" +
			"  native: curl https://get.acme.sh | sh")
	}
}

func (r *Resolver) startAcmeContainer(docker *dockerAcme) error {
	r.out.Step("Starting acme.sh daemon container %s...", docker.container)

	// Webroot and certificate paths are mounted at identical paths inside
	// the container: the HTTP challenge file has to land where the web
	// server serves it, and --install-cert has to materialize on the host.
	// Which paths those are depends on the resolved web-server backend.
	mounts := []string{fmt.Sprintf("-v %s/acme:/acme.sh", r.cfg.StateDir)}
	if be, ok := r.TryNginx(); ok && be.Mode() == ModeNative {
		paths := be.Paths()
		for _, dir := range []string{paths.WWWRoot, paths.CertRoot} {
			mounts = append(mounts, fmt.Sprintf("-v %s:%s", dir, dir))
		}
	} else {
		mounts = append(mounts, fmt.Sprintf("-v %s:%s", r.cfg.DockerRoot, r.cfg.DockerRoot))
	}

	cmd := fmt.Sprintf("docker run -d --name %s %s --net=host --restart unless-stopped %s daemon",
		docker.container, strings.Join(mounts, " "), r.cfg.AcmeImage)

	if _, err := r.run.Run(cmd); err != nil {
		return fmt.Errorf("failed to start acme.sh container: %w", err)
	}

	if err := r.waitForContainer(docker.container); err != nil {
		return err
	}

	r.out.Success("acme.sh daemon started")
	return nil
}

func (r *Resolver) installNativeAcme() error {
	email, err := r.Prompt("Account email for ACME registration: ")
	if err != nil {
		return err
	}
	if email == "" {
		return fmt.Errorf("account email is required for the native install")
	}

	r.out.Step("Installing acme.sh...")
	cmd := fmt.Sprintf("curl -fsSL https://get.acme.sh | sh -s email=%s", email)
	if _, err := r.run.Run(cmd); err != nil {
		return fmt.Errorf("failed to install acme.sh: %w", err)
	}

	r.out.Success("acme.sh installed")
	return nil
}

// waitForContainer polls until the named container reports running. This is
// an observation poll only; mutating ACME steps are never retried.
func (r *Resolver) waitForContainer(name string) error {
	check := func() error {
		out, err := r.run.Run(fmt.Sprintf("docker ps --filter name=^%s$ --format '{{.Names}}'", name))
		if err != nil {
			return err
		}
		if strings.TrimSpace(out) != name {
			return fmt.Errorf("container %s not running yet", name)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(check, b); err != nil {
		return fmt.Errorf("container %s did not become ready: %w", name, err)
	}
	return nil
}
