package secrets

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z9wen/toolsss/pkg/formatter"
)

func newTestCollector() *Collector {
	return NewCollector(formatter.New(false, true))
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvCFToken, EnvCFEmail, EnvCFKey, EnvEABKid, EnvEABHmac} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestEnsureDNSUsesTokenFromEnvironment(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(EnvCFToken, "token-from-env")

	c := newTestCollector()
	c.Prompt = func(label string) (string, error) {
		t.Fatal("must not prompt when credentials are in the environment")
		return "", nil
	}
	c.PromptSecret = c.Prompt

	assert.NoError(t, c.EnsureDNS())
}

func TestEnsureDNSUsesEmailKeyPairFromEnvironment(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(EnvCFEmail, "ops@example.com")
	t.Setenv(EnvCFKey, "global-key")

	c := newTestCollector()
	c.Prompt = func(label string) (string, error) {
		t.Fatal("must not prompt when credentials are in the environment")
		return "", nil
	}
	c.PromptSecret = c.Prompt

	assert.NoError(t, c.EnsureDNS())
}

func TestEnsureDNSCollectsToken(t *testing.T) {
	clearCredentialEnv(t)

	c := newTestCollector()
	c.Prompt = func(label string) (string, error) { return "1", nil }
	c.PromptSecret = func(label string) (string, error) { return "prompted-token", nil }

	require.NoError(t, c.EnsureDNS())
	assert.Equal(t, "prompted-token", os.Getenv(EnvCFToken))
}

func TestEnsureDNSCollectsEmailAndKey(t *testing.T) {
	clearCredentialEnv(t)

	c := newTestCollector()
	c.Prompt = func(label string) (string, error) {
		if label == "Authentication method [1-2]: " {
			return "2", nil
		}
		return "ops@example.com", nil
	}
	c.PromptSecret = func(label string) (string, error) { return "global-key", nil }

	require.NoError(t, c.EnsureDNS())
	assert.Equal(t, "ops@example.com", os.Getenv(EnvCFEmail))
	assert.Equal(t, "global-key", os.Getenv(EnvCFKey))
}

func TestEnsureDNSRejectsEmptyToken(t *testing.T) {
	clearCredentialEnv(t)

	c := newTestCollector()
	c.Prompt = func(label string) (string, error) { return "1", nil }
	c.PromptSecret = func(label string) (string, error) { return "", nil }

	err := c.EnsureDNS()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
	assert.Empty(t, os.Getenv(EnvCFToken))
}

func TestEnsureDNSRejectsUnknownChoice(t *testing.T) {
	clearCredentialEnv(t)

	c := newTestCollector()
	c.Prompt = func(label string) (string, error) { return "x", nil }

	assert.Error(t, c.EnsureDNS())
}

func TestEnsureEABFromEnvironment(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(EnvEABKid, "kid")
	t.Setenv(EnvEABHmac, "hmac")

	c := newTestCollector()
	c.Prompt = func(label string) (string, error) {
		t.Fatal("must not prompt when credentials are in the environment")
		return "", nil
	}
	c.PromptSecret = c.Prompt

	require.NoError(t, c.EnsureEAB("zerossl"))

	kid, hmac := c.EAB()
	assert.Equal(t, "kid", kid)
	assert.Equal(t, "hmac", hmac)
}

func TestEnsureEABCollectsKeyPair(t *testing.T) {
	clearCredentialEnv(t)

	c := newTestCollector()
	c.Prompt = func(label string) (string, error) { return "kid-1", nil }
	c.PromptSecret = func(label string) (string, error) { return "hmac-1", nil }

	require.NoError(t, c.EnsureEAB("google"))

	kid, hmac := c.EAB()
	assert.Equal(t, "kid-1", kid)
	assert.Equal(t, "hmac-1", hmac)
}

func TestEnsureEABRejectsEmptyValues(t *testing.T) {
	clearCredentialEnv(t)

	c := newTestCollector()
	c.Prompt = func(label string) (string, error) { return "kid-1", nil }
	c.PromptSecret = func(label string) (string, error) { return "", nil }

	err := c.EnsureEAB("zerossl")
	require.Error(t, err)
	assert.Empty(t, os.Getenv(EnvEABKid))
}
