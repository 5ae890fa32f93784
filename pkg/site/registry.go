// Package site manages the on-disk set of site definitions. A site's
// lifecycle state is never stored anywhere: it is derived from filesystem
// facts alone (config file vs .disabled variant, full chain file presence),
// so the filesystem stays the single source of truth.
package site

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/z9wen/toolsss/pkg/backend"
	"github.com/z9wen/toolsss/pkg/formatter"
	"github.com/z9wen/toolsss/pkg/nginx"
	"github.com/z9wen/toolsss/pkg/utils"
)

// State is a site's derived lifecycle state.
type State string

const (
	StateAbsent   State = "absent"
	StateCreated  State = "created" // HTTP-only
	StateSecured  State = "secured" // HTTP + HTTPS
	StateDisabled State = "disabled"
)

// ErrConfigExists is returned by Create when a config for the domain already
// exists and overwrite was not requested.
var ErrConfigExists = errors.New("site config already exists")

// disabledSuffix is appended to a config file name to take it out of the
// server's include glob.
const disabledSuffix = ".disabled"

// Registry owns site lifecycle operations against the resolved backend paths.
type Registry struct {
	paths      backend.Paths
	gate       *nginx.Gate
	out        *formatter.Output
	backupRoot string
}

// NewRegistry creates a site registry
func NewRegistry(paths backend.Paths, gate *nginx.Gate, out *formatter.Output, backupRoot string) *Registry {
	return &Registry{
		paths:      paths,
		gate:       gate,
		out:        out,
		backupRoot: backupRoot,
	}
}

// Path helpers. All per-site paths derive from the backend root paths.

func (r *Registry) ConfPath(domain string) string {
	return filepath.Join(r.paths.ConfDir, domain+".conf")
}

func (r *Registry) DisabledConfPath(domain string) string {
	return r.ConfPath(domain) + disabledSuffix
}

func (r *Registry) WebRoot(domain string) string {
	return filepath.Join(r.paths.WWWRoot, domain)
}

func (r *Registry) LogDir(domain string) string {
	return filepath.Join(r.paths.LogRoot, domain)
}

func (r *Registry) CertDir(domain string) string {
	return filepath.Join(r.paths.CertRoot, domain)
}

func (r *Registry) FullchainPath(domain string) string {
	return filepath.Join(r.CertDir(domain), "fullchain.cer")
}

func (r *Registry) KeyPath(domain string) string {
	return filepath.Join(r.CertDir(domain), domain+".key")
}

// State derives the site's lifecycle state from filesystem facts.
func (r *Registry) State(domain string) State {
	if fileExists(r.ConfPath(domain)) {
		if r.Secured(domain) {
			return StateSecured
		}
		return StateCreated
	}
	if fileExists(r.DisabledConfPath(domain)) {
		return StateDisabled
	}
	return StateAbsent
}

// Secured reports whether a full certificate chain exists at the site's
// certificate path. This is the only definition of "has SSL" in the tool.
func (r *Registry) Secured(domain string) bool {
	return fileExists(r.FullchainPath(domain))
}

// WildcardLinked reports whether the site's chain file is a filesystem link
// into another domain's certificate directory.
func (r *Registry) WildcardLinked(domain string) bool {
	info, err := os.Lstat(r.FullchainPath(domain))
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// RenderInput assembles the renderer input for a site in its given TLS state.
func (r *Registry) RenderInput(domain string, extraNames []string, wildcard, secured, wildcardLinked bool) nginx.Site {
	return nginx.Site{
		Domain:         domain,
		ExtraNames:     extraNames,
		Wildcard:       wildcard,
		Secured:        secured,
		WildcardLinked: wildcardLinked,
		WebRoot:        r.WebRoot(domain),
		LogDir:         r.LogDir(domain),
		CertDir:        r.CertDir(domain),
	}
}

// Create provisions a new HTTP-only site: directories, a sample landing
// page, and the vhost config applied through the reload gate. When a config
// already exists, ErrConfigExists is returned unless overwrite is set; the
// caller owns the confirmation prompt.
func (r *Registry) Create(domain string, overwrite bool) error {
	if !utils.IsValidDomain(domain) {
		return fmt.Errorf("invalid domain name: %s", domain)
	}

	if fileExists(r.ConfPath(domain)) || fileExists(r.DisabledConfPath(domain)) {
		if !overwrite {
			return ErrConfigExists
		}
		r.out.Verbose("overwriting existing config for %s", domain)
	}

	for _, dir := range []string{r.WebRoot(domain), r.LogDir(domain), r.CertDir(domain)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(filepath.Join(r.WebRoot(domain), "index.html"), []byte(samplePage(domain)), 0644); err != nil {
		return fmt.Errorf("failed to write sample page: %w", err)
	}

	content := nginx.Render(r.RenderInput(domain, nil, false, false, false))
	if err := r.gate.WriteConfig(r.ConfPath(domain), content); err != nil {
		return err
	}

	return nil
}

// Enable renames a disabled config back to its active name.
func (r *Registry) Enable(domain string) error {
	src := r.DisabledConfPath(domain)
	if !fileExists(src) {
		return fmt.Errorf("no disabled config found for %s", domain)
	}
	if err := os.Rename(src, r.ConfPath(domain)); err != nil {
		return fmt.Errorf("failed to enable %s: %w", domain, err)
	}
	return r.gate.Apply()
}

// Disable renames an active config to its .disabled variant.
func (r *Registry) Disable(domain string) error {
	src := r.ConfPath(domain)
	if !fileExists(src) {
		return fmt.Errorf("no active config found for %s", domain)
	}
	if err := os.Rename(src, r.DisabledConfPath(domain)); err != nil {
		return fmt.Errorf("failed to disable %s: %w", domain, err)
	}
	return r.gate.Apply()
}

// Delete removes a site entirely after copying its config and document root
// into a timestamped backup directory. The caller owns the typed
// confirmation; by the time Delete runs the decision is final.
func (r *Registry) Delete(domain string) error {
	state := r.State(domain)
	if state == StateAbsent {
		return fmt.Errorf("site %s does not exist", domain)
	}

	backupDir := filepath.Join(r.backupRoot, fmt.Sprintf("%s-%s", domain, time.Now().Format("20060102-150405")))
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	confPath := r.ConfPath(domain)
	if state == StateDisabled {
		confPath = r.DisabledConfPath(domain)
	}
	if err := copyFile(confPath, filepath.Join(backupDir, filepath.Base(confPath))); err != nil {
		return fmt.Errorf("failed to back up config: %w", err)
	}
	if fileExists(r.WebRoot(domain)) {
		if err := copyDir(r.WebRoot(domain), filepath.Join(backupDir, "www")); err != nil {
			return fmt.Errorf("failed to back up document root: %w", err)
		}
	}
	r.out.Verbose("backup written to %s", backupDir)

	for _, path := range []string{r.ConfPath(domain), r.DisabledConfPath(domain)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	for _, dir := range []string{r.WebRoot(domain), r.LogDir(domain), r.CertDir(domain)} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}

	return r.gate.Apply()
}

// Info is one row of the site listing.
type Info struct {
	Domain         string
	Enabled        bool
	Secured        bool
	WildcardLinked bool
	Provider       string // best-effort annotation, may be empty
}

// List enumerates all active and disabled sites. The annotate callback, when
// non-nil, is asked for the issuing provider of each secured site; its
// failures are ignored.
func (r *Registry) List(annotate func(domain string) string) ([]Info, error) {
	entries, err := os.ReadDir(r.paths.ConfDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var sites []Info
	for _, entry := range entries {
		name := entry.Name()

		var domain string
		enabled := false
		switch {
		case strings.HasSuffix(name, ".conf"):
			domain = strings.TrimSuffix(name, ".conf")
			enabled = true
		case strings.HasSuffix(name, ".conf"+disabledSuffix):
			domain = strings.TrimSuffix(name, ".conf"+disabledSuffix)
		default:
			continue
		}

		info := Info{Domain: domain, Enabled: enabled}
		if enabled {
			info.Secured = r.Secured(domain)
			info.WildcardLinked = r.WildcardLinked(domain)
			if info.Secured && annotate != nil {
				info.Provider = annotate(domain)
			}
		}
		sites = append(sites, info)
	}

	sort.Slice(sites, func(i, j int) bool { return sites[i].Domain < sites[j].Domain })
	return sites, nil
}

// samplePage is deterministic on purpose: re-creating a site must yield a
// byte-identical landing page.
func samplePage(domain string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>%s</title>
</head>
<body>
    <h1>%s</h1>
    <p>This site is up and running.</p>
</body>
</html>
`, domain, domain)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}
		if info.Mode()&os.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		}
		return copyFile(path, target)
	})
}
