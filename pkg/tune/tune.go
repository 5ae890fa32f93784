// Package tune writes kernel tuning profiles for busy web servers as a
// sysctl.d drop-in and applies them.
package tune

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/z9wen/toolsss/pkg/runner"
)

// DropInPath is where the tuning profile is written.
const DropInPath = "/etc/sysctl.d/99-sitemgr.conf"

// Profile is a named set of sysctl key-value pairs.
type Profile struct {
	Name        string
	Description string
	Settings    map[string]string
}

// Profiles returns the available tuning profiles.
func Profiles() []Profile {
	return []Profile{
		{
			Name:        "bbr",
			Description: "BBR congestion control with fq queueing",
			Settings: map[string]string{
				"net.core.default_qdisc":          "fq",
				"net.ipv4.tcp_congestion_control": "bbr",
			},
		},
		{
			Name:        "buffers",
			Description: "Larger TCP buffers for high-bandwidth links",
			Settings: map[string]string{
				"net.core.rmem_max":        "67108864",
				"net.core.wmem_max":        "67108864",
				"net.ipv4.tcp_rmem":        "4096 87380 67108864",
				"net.ipv4.tcp_wmem":        "4096 65536 67108864",
				"net.ipv4.tcp_mtu_probing": "1",
			},
		},
		{
			Name:        "limits",
			Description: "Higher connection and file-descriptor limits",
			Settings: map[string]string{
				"fs.file-max":                  "1048576",
				"net.core.somaxconn":           "65535",
				"net.ipv4.tcp_max_syn_backlog": "65535",
				"net.ipv4.ip_local_port_range": "1024 65535",
			},
		},
	}
}

// FindProfile returns the profile with the given name.
func FindProfile(name string) (Profile, bool) {
	for _, p := range Profiles() {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// Render produces the drop-in file content for the given profiles.
// Keys are written in sorted order so repeated runs are byte-identical.
func Render(profiles []Profile) string {
	var b strings.Builder
	b.WriteString("# Managed by sitemgr. Manual edits will be overwritten.\n")

	for _, p := range profiles {
		b.WriteString(fmt.Sprintf("\n# %s: %s\n", p.Name, p.Description))

		keys := make([]string, 0, len(p.Settings))
		for k := range p.Settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("%s = %s\n", k, p.Settings[k]))
		}
	}
	return b.String()
}

// Apply writes the drop-in for the given profiles and loads it.
func Apply(run runner.Runner, profiles []Profile) error {
	if err := os.WriteFile(DropInPath, []byte(Render(profiles)), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", DropInPath, err)
	}

	if _, err := run.Run("sysctl --system"); err != nil {
		return fmt.Errorf("failed to apply sysctl settings: %w", err)
	}
	return nil
}
