package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z9wen/toolsss/pkg/backend"
	"github.com/z9wen/toolsss/pkg/formatter"
	"github.com/z9wen/toolsss/pkg/nginx"
)

// passingNginx is a backend whose config test always passes.
type passingNginx struct {
	paths backend.Paths
}

func (p *passingNginx) Mode() backend.Mode     { return backend.ModeNative }
func (p *passingNginx) Paths() backend.Paths   { return p.paths }
func (p *passingNginx) Test() (string, error)  { return "syntax is ok", nil }
func (p *passingNginx) Reload() error          { return nil }
func (p *passingNginx) Running() (bool, error) { return true, nil }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	root := t.TempDir()
	paths := backend.Paths{
		ConfDir:  filepath.Join(root, "conf.d"),
		WWWRoot:  filepath.Join(root, "www"),
		LogRoot:  filepath.Join(root, "logs"),
		CertRoot: filepath.Join(root, "certs"),
	}
	require.NoError(t, os.MkdirAll(paths.ConfDir, 0755))

	out := formatter.New(false, true)
	gate := nginx.NewGate(&passingNginx{paths: paths}, out)
	return NewRegistry(paths, gate, out, filepath.Join(root, "backups"))
}

func TestCreateProvisionsSite(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("example.com", false))

	assert.DirExists(t, r.WebRoot("example.com"))
	assert.DirExists(t, r.LogDir("example.com"))
	assert.DirExists(t, r.CertDir("example.com"))
	assert.FileExists(t, filepath.Join(r.WebRoot("example.com"), "index.html"))

	content, err := os.ReadFile(r.ConfPath("example.com"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "server_name example.com;")
	assert.NotContains(t, string(content), "listen 443")

	assert.Equal(t, StateCreated, r.State("example.com"))
}

func TestCreateRejectsInvalidDomain(t *testing.T) {
	r := newTestRegistry(t)
	assert.Error(t, r.Create("not a domain", false))
	assert.Error(t, r.Create("nodot", false))
}

func TestCreateExistingRequiresOverwrite(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("example.com", false))

	err := r.Create("example.com", false)
	assert.ErrorIs(t, err, ErrConfigExists)
}

func TestCreateOverwriteIsIdempotent(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("example.com", false))

	firstPage, err := os.ReadFile(filepath.Join(r.WebRoot("example.com"), "index.html"))
	require.NoError(t, err)
	firstConf, err := os.ReadFile(r.ConfPath("example.com"))
	require.NoError(t, err)

	require.NoError(t, r.Create("example.com", true))

	secondPage, err := os.ReadFile(filepath.Join(r.WebRoot("example.com"), "index.html"))
	require.NoError(t, err)
	secondConf, err := os.ReadFile(r.ConfPath("example.com"))
	require.NoError(t, err)

	assert.Equal(t, firstPage, secondPage)
	assert.Equal(t, firstConf, secondConf)
}

func TestEnableDisableRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("example.com", false))

	original, err := os.ReadFile(r.ConfPath("example.com"))
	require.NoError(t, err)

	require.NoError(t, r.Disable("example.com"))
	assert.Equal(t, StateDisabled, r.State("example.com"))
	assert.NoFileExists(t, r.ConfPath("example.com"))

	require.NoError(t, r.Enable("example.com"))
	assert.Equal(t, StateCreated, r.State("example.com"))

	restored, err := os.ReadFile(r.ConfPath("example.com"))
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestEnableFailsWithoutDisabledConfig(t *testing.T) {
	r := newTestRegistry(t)
	assert.Error(t, r.Enable("example.com"))
}

func TestDisableFailsWithoutActiveConfig(t *testing.T) {
	r := newTestRegistry(t)
	assert.Error(t, r.Disable("example.com"))
}

func TestDeleteBacksUpAndRemoves(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("example.com", false))

	require.NoError(t, r.Delete("example.com"))

	assert.Equal(t, StateAbsent, r.State("example.com"))
	assert.NoDirExists(t, r.WebRoot("example.com"))
	assert.NoDirExists(t, r.LogDir("example.com"))
	assert.NoDirExists(t, r.CertDir("example.com"))

	backups, err := os.ReadDir(filepath.Join(filepath.Dir(r.paths.ConfDir), "backups"))
	require.NoError(t, err)
	require.Len(t, backups, 1)

	backupDir := filepath.Join(filepath.Dir(r.paths.ConfDir), "backups", backups[0].Name())
	assert.FileExists(t, filepath.Join(backupDir, "example.com.conf"))
	assert.FileExists(t, filepath.Join(backupDir, "www", "index.html"))
}

func TestDeleteAbsentSiteFails(t *testing.T) {
	r := newTestRegistry(t)
	assert.Error(t, r.Delete("example.com"))
}

func TestSecuredDerivedFromFullchainFile(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("example.com", false))
	assert.False(t, r.Secured("example.com"))

	require.NoError(t, os.WriteFile(r.FullchainPath("example.com"), []byte("chain"), 0644))
	assert.True(t, r.Secured("example.com"))
	assert.Equal(t, StateSecured, r.State("example.com"))
	assert.False(t, r.WildcardLinked("example.com"))
}

func TestWildcardLinkedDerivedFromSymlink(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("example.com", false))
	require.NoError(t, r.Create("api.example.com", false))

	require.NoError(t, os.WriteFile(r.FullchainPath("example.com"), []byte("chain"), 0644))
	require.NoError(t, os.Symlink(r.FullchainPath("example.com"), r.FullchainPath("api.example.com")))

	assert.True(t, r.Secured("api.example.com"))
	assert.True(t, r.WildcardLinked("api.example.com"))
}

func TestListEnumeratesSites(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("b.com", false))
	require.NoError(t, r.Create("a.com", false))
	require.NoError(t, r.Create("c.com", false))
	require.NoError(t, r.Disable("c.com"))
	require.NoError(t, os.WriteFile(r.FullchainPath("a.com"), []byte("chain"), 0644))

	sites, err := r.List(func(domain string) string {
		return "letsencrypt"
	})
	require.NoError(t, err)
	require.Len(t, sites, 3)

	assert.Equal(t, "a.com", sites[0].Domain)
	assert.True(t, sites[0].Enabled)
	assert.True(t, sites[0].Secured)
	assert.Equal(t, "letsencrypt", sites[0].Provider)

	assert.Equal(t, "b.com", sites[1].Domain)
	assert.False(t, sites[1].Secured)
	assert.Empty(t, sites[1].Provider)

	assert.Equal(t, "c.com", sites[2].Domain)
	assert.False(t, sites[2].Enabled)
}
