package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z9wen/toolsss/pkg/config"
	"github.com/z9wen/toolsss/pkg/formatter"
	"github.com/z9wen/toolsss/pkg/runner"
)

func testSettings() *config.Settings {
	return &config.Settings{
		NginxContainer: "nginx",
		NginxImage:     "nginx:stable",
		DockerRoot:     "/opt/sitemgr/nginx",
		NativeConfDir:  "/etc/nginx/conf.d",
		NativeWWWRoot:  "/var/www",
		NativeLogRoot:  "/var/log/nginx",
		NativeCertRoot: "/etc/nginx/certs",
		AcmeContainer:  "acme.sh",
		AcmeImage:      "neilpang/acme.sh:latest",
		StateDir:       "/opt/sitemgr",
	}
}

func newTestResolver(run *runner.Fake) *Resolver {
	r := NewResolver(run, testSettings(), formatter.New(false, true))
	r.fileExists = func(path string) bool { return false }
	return r
}

func TestNginxResolvesDockerWhenContainerRunning(t *testing.T) {
	run := runner.NewFake()
	run.Responses["docker ps --filter name=^nginx$"] = "nginx"

	r := newTestResolver(run)
	be, err := r.Nginx()
	require.NoError(t, err)

	assert.Equal(t, ModeDocker, be.Mode())
	assert.Equal(t, "/opt/sitemgr/nginx/conf.d", be.Paths().ConfDir)
	assert.Equal(t, "/opt/sitemgr/nginx/www", be.Paths().WWWRoot)
}

func TestNginxResolvesNativeWhenBinaryPresent(t *testing.T) {
	run := runner.NewFake()
	run.Failures["docker ps --filter name=^nginx$"] = "docker not installed"
	run.Responses["command -v nginx"] = "/usr/sbin/nginx"

	r := newTestResolver(run)
	be, err := r.Nginx()
	require.NoError(t, err)

	assert.Equal(t, ModeNative, be.Mode())
	assert.Equal(t, "/etc/nginx/conf.d", be.Paths().ConfDir)
	assert.Equal(t, "/var/www", be.Paths().WWWRoot)
	assert.Equal(t, "/var/log/nginx", be.Paths().LogRoot)
	assert.Equal(t, "/etc/nginx/certs", be.Paths().CertRoot)
}

func TestNginxPrefersDockerOverNative(t *testing.T) {
	run := runner.NewFake()
	run.Responses["docker ps --filter name=^nginx$"] = "nginx"
	run.Responses["command -v nginx"] = "/usr/sbin/nginx"

	r := newTestResolver(run)
	be, err := r.Nginx()
	require.NoError(t, err)
	assert.Equal(t, ModeDocker, be.Mode())
}

func TestNginxResolutionIsMemoized(t *testing.T) {
	run := runner.NewFake()
	run.Responses["docker ps --filter name=^nginx$"] = "nginx"

	r := newTestResolver(run)
	first, err := r.Nginx()
	require.NoError(t, err)

	detections := len(run.Commands)
	second, err := r.Nginx()
	require.NoError(t, err)

	assert.Same(t, first.(*dockerNginx), second.(*dockerNginx))
	assert.Len(t, run.Commands, detections)
}

func TestNginxInstallCancelled(t *testing.T) {
	run := runner.NewFake()
	run.Failures["docker ps"] = "docker not installed"
	run.Failures["command -v nginx"] = "not found"

	r := newTestResolver(run)
	r.Prompt = func(label string) (string, error) { return "3", nil }

	_, err := r.Nginx()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "installation cancelled")
}

func TestNginxInstallViaDocker(t *testing.T) {
	run := runner.NewFake()
	run.Failures["command -v nginx"] = "not found"

	r := newTestResolver(run)
	// Flip the detection response when the operator picks the docker
	// install, so the readiness poll sees the container.
	r.Prompt = func(label string) (string, error) {
		run.Responses["docker ps --filter name=^nginx$"] = "nginx"
		return "1", nil
	}

	be, err := r.Nginx()
	require.NoError(t, err)

	assert.Equal(t, ModeDocker, be.Mode())
	assert.True(t, run.Ran("docker run -d --name nginx"))
	assert.True(t, run.Ran("-p 80:80 -p 443:443"))
	assert.True(t, run.Ran("-v /opt/sitemgr/nginx/conf.d:/etc/nginx/conf.d"))
	assert.True(t, run.Ran("nginx:stable"))
}

func TestTryNginxDoesNotPrompt(t *testing.T) {
	run := runner.NewFake()
	run.Failures["docker ps"] = "docker not installed"
	run.Failures["command -v nginx"] = "not found"

	r := newTestResolver(run)
	r.Prompt = func(label string) (string, error) {
		t.Fatal("TryNginx must not prompt")
		return "", nil
	}

	_, ok := r.TryNginx()
	assert.False(t, ok)
}

func TestAcmeResolvesDockerWhenContainerRunning(t *testing.T) {
	run := runner.NewFake()
	run.Responses["docker ps --filter name=^acme.sh$"] = "acme.sh"

	r := newTestResolver(run)
	client, err := r.Acme()
	require.NoError(t, err)
	assert.Equal(t, ModeDocker, client.Mode())
}

func TestAcmeResolvesNativeFromInstallMarker(t *testing.T) {
	run := runner.NewFake()
	run.Failures["docker ps"] = "docker not installed"

	r := newTestResolver(run)
	r.fileExists = func(path string) bool { return path == NativeAcmeScript() }

	client, err := r.Acme()
	require.NoError(t, err)
	assert.Equal(t, ModeNative, client.Mode())

	_, err = client.Version()
	require.NoError(t, err)
	assert.True(t, run.Ran(NativeAcmeScript()+" --version"))
}

func TestAcmeInstallCancelledListsAlternatives(t *testing.T) {
	run := runner.NewFake()
	run.Failures["docker ps"] = "docker not installed"

	r := newTestResolver(run)
	r.Prompt = func(label string) (string, error) { return "3", nil }

	_, err := r.Acme()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "installation cancelled")
	assert.Contains(t, err.Error(), "get.acme.sh")
}

func TestAcmeInstallViaDocker(t *testing.T) {
	run := runner.NewFake()
	run.Responses["docker ps --filter name=^nginx$"] = "nginx"

	r := newTestResolver(run)
	r.Prompt = func(label string) (string, error) {
		run.Responses["docker ps --filter name=^acme.sh$"] = "acme.sh"
		return "1", nil
	}

	client, err := r.Acme()
	require.NoError(t, err)

	assert.Equal(t, ModeDocker, client.Mode())
	assert.True(t, run.Ran("docker run -d --name acme.sh"))
	assert.True(t, run.Ran("-v /opt/sitemgr/acme:/acme.sh"))
	assert.True(t, run.Ran("-v /opt/sitemgr/nginx:/opt/sitemgr/nginx"))
	assert.True(t, run.Ran("--net=host"))
	assert.True(t, run.Ran("neilpang/acme.sh:latest daemon"))
}

func TestAcmeInstallMountsNativeNginxPaths(t *testing.T) {
	run := runner.NewFake()
	run.Failures["docker ps --filter name=^nginx$"] = "docker not installed"
	run.Responses["command -v nginx"] = "/usr/sbin/nginx"

	r := newTestResolver(run)
	r.Prompt = func(label string) (string, error) {
		run.Responses["docker ps --filter name=^acme.sh$"] = "acme.sh"
		return "1", nil
	}

	// Native nginx serves /var/www and loads certs from /etc/nginx/certs,
	// so the acme.sh container must see those host paths unchanged.
	client, err := r.Acme()
	require.NoError(t, err)

	assert.Equal(t, ModeDocker, client.Mode())
	assert.True(t, run.Ran("-v /var/www:/var/www"))
	assert.True(t, run.Ran("-v /etc/nginx/certs:/etc/nginx/certs"))
	assert.False(t, run.Ran("-v /opt/sitemgr/nginx:/opt/sitemgr/nginx"))
}

func TestDockerAcmeForwardsCredentialEnv(t *testing.T) {
	t.Setenv("CF_Token", "secret-token")

	run := runner.NewFake()
	client := &dockerAcme{run: run, container: "acme.sh"}

	_, err := client.Exec("--list")
	require.NoError(t, err)

	assert.True(t, run.Ran("-e CF_Token"))
	// The value itself never appears on the command line.
	assert.False(t, run.Ran("secret-token"))
}

func TestDockerAcmeExecPreservesQuotedWhitespace(t *testing.T) {
	for _, key := range credentialEnv {
		t.Setenv(key, "")
	}

	run := runner.NewFake()
	client := &dockerAcme{run: run, container: "acme.sh"}

	_, err := client.Exec("--eab-hmac-key", "'two  spaces'")
	require.NoError(t, err)

	require.Len(t, run.Commands, 1)
	assert.Equal(t, "docker exec acme.sh acme.sh --eab-hmac-key 'two  spaces'", run.Commands[0])
}

func TestDetectPackageManager(t *testing.T) {
	run := runner.NewFake()
	run.Failures["command -v apt-get"] = "not found"
	run.Responses["command -v dnf"] = "/usr/bin/dnf"

	pm, err := DetectPackageManager(run)
	require.NoError(t, err)
	require.NoError(t, pm.Install("nginx"))
	assert.True(t, run.Ran("dnf install -y nginx"))
}

func TestDetectPackageManagerNoneFound(t *testing.T) {
	run := runner.NewFake()
	run.Failures["command -v"] = "not found"

	_, err := DetectPackageManager(run)
	assert.Error(t, err)
}
