package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/z9wen/toolsss/pkg/runner"
)

// credentialEnv lists the environment variables forwarded into the acme.sh
// container so DNS-validation plugins can see them. Values are never placed
// on the command line; docker picks them up from this process environment.
var credentialEnv = []string{"CF_Token", "CF_Account_ID", "CF_Email", "CF_Key"}

// dockerAcme drives acme.sh running as a managed daemon container.
type dockerAcme struct {
	run       runner.Runner
	container string
}

func (a *dockerAcme) Mode() Mode { return ModeDocker }

func (a *dockerAcme) Exec(args ...string) (string, error) {
	// Assembled token by token: re-splitting the finished string would
	// collapse whitespace inside shell-quoted argument values.
	parts := []string{"docker", "exec"}
	for _, key := range credentialEnv {
		if os.Getenv(key) != "" {
			parts = append(parts, "-e", key)
		}
	}
	parts = append(parts, a.container, "acme.sh")
	parts = append(parts, args...)
	return a.run.Run(strings.Join(parts, " "))
}

func (a *dockerAcme) List() (string, error) {
	return a.Exec("--list")
}

func (a *dockerAcme) Info(domain string) (string, error) {
	return a.Exec("--info", "-d", domain)
}

func (a *dockerAcme) Version() (string, error) {
	return a.Exec("--version")
}

// nativeAcme drives an acme.sh installed under the invoking user's home.
type nativeAcme struct {
	run    runner.Runner
	script string // ~/.acme.sh/acme.sh
}

// NativeAcmeScript returns the expected install location of the acme.sh
// script for the current user.
func NativeAcmeScript() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/root/.acme.sh/acme.sh"
	}
	return filepath.Join(home, ".acme.sh", "acme.sh")
}

func (a *nativeAcme) Mode() Mode { return ModeNative }

func (a *nativeAcme) Exec(args ...string) (string, error) {
	return a.run.Run(fmt.Sprintf("%s %s", a.script, strings.Join(args, " ")))
}

func (a *nativeAcme) List() (string, error) {
	return a.Exec("--list")
}

func (a *nativeAcme) Info(domain string) (string, error) {
	return a.Exec("--info", "-d", domain)
}

func (a *nativeAcme) Version() (string, error) {
	return a.Exec("--version")
}
