// Package secrets collects provider credentials for certificate operations.
// Values live only in the process environment for the duration of the run;
// nothing is ever written to disk.
package secrets

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/z9wen/toolsss/pkg/formatter"
)

// Environment variables consumed. The CF_* names are the ones the acme.sh
// Cloudflare DNS plugin reads directly.
const (
	EnvCFToken = "CF_Token"
	EnvCFEmail = "CF_Email"
	EnvCFKey   = "CF_Key"

	EnvEABKid  = "SITEMGR_EAB_KID"
	EnvEABHmac = "SITEMGR_EAB_HMAC_KEY"
)

// Collector obtains secrets from the environment first and falls back to
// interactive prompting. Both prompt functions are overridable in tests.
type Collector struct {
	out *formatter.Output

	// Prompt reads one visible line of input.
	Prompt func(label string) (string, error)
	// PromptSecret reads one line of input without echo.
	PromptSecret func(label string) (string, error)
}

// NewCollector creates a credential collector
func NewCollector(out *formatter.Output) *Collector {
	return &Collector{
		out:          out,
		Prompt:       promptLine,
		PromptSecret: promptHidden,
	}
}

func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptHidden reads a secret from the terminal without echo
func promptHidden(label string) (string, error) {
	fmt.Print(label)
	value, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(string(value)), nil
}

// EnsureDNS makes sure Cloudflare DNS credentials are present in the
// environment for a wildcard issuance. Idempotent: when credentials are
// already set it only reports which method is active.
func (c *Collector) EnsureDNS() error {
	if os.Getenv(EnvCFToken) != "" {
		c.out.Verbose("DNS credentials: API token (from environment)")
		return nil
	}
	if os.Getenv(EnvCFEmail) != "" && os.Getenv(EnvCFKey) != "" {
		c.out.Verbose("DNS credentials: account email + global key (from environment)")
		return nil
	}

	c.out.Info("Wildcard issuance validates via DNS and needs Cloudflare credentials.")
	c.out.NumberedList(
		"API token (recommended, scoped to DNS edit)",
		"Account email + global API key",
	)
	choice, err := c.Prompt("Authentication method [1-2]: ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		token, err := c.PromptSecret("Cloudflare API token: ")
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("API token must not be empty")
		}
		os.Setenv(EnvCFToken, token)
		c.out.Success("DNS credentials collected (API token)")
	case "2":
		email, err := c.Prompt("Cloudflare account email: ")
		if err != nil {
			return err
		}
		key, err := c.PromptSecret("Cloudflare global API key: ")
		if err != nil {
			return err
		}
		if email == "" || key == "" {
			return fmt.Errorf("account email and global key must not be empty")
		}
		os.Setenv(EnvCFEmail, email)
		os.Setenv(EnvCFKey, key)
		c.out.Success("DNS credentials collected (email + global key)")
	default:
		return fmt.Errorf("no DNS authentication method selected")
	}

	return nil
}

// EnsureEAB makes sure an External-Account-Binding key pair is present in
// the environment for providers that require one. Idempotent like EnsureDNS.
func (c *Collector) EnsureEAB(provider string) error {
	if os.Getenv(EnvEABKid) != "" && os.Getenv(EnvEABHmac) != "" {
		c.out.Verbose("EAB credentials present (from environment)")
		return nil
	}

	c.out.Info("Provider %s requires External Account Binding credentials.", provider)

	kid, err := c.Prompt("EAB key id: ")
	if err != nil {
		return err
	}
	hmac, err := c.PromptSecret("EAB HMAC key: ")
	if err != nil {
		return err
	}
	if kid == "" || hmac == "" {
		return fmt.Errorf("EAB key id and HMAC key must not be empty")
	}

	os.Setenv(EnvEABKid, kid)
	os.Setenv(EnvEABHmac, hmac)
	c.out.Success("EAB credentials collected")
	return nil
}

// EAB returns the EAB key pair currently in the environment.
func (c *Collector) EAB() (kid, hmac string) {
	return os.Getenv(EnvEABKid), os.Getenv(EnvEABHmac)
}
