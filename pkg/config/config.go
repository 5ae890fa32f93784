// Package config holds tool-wide settings resolved from sitemgr.yaml,
// environment variables (SITEMGR_ prefix) and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Settings carries all resolved configuration for a single invocation.
type Settings struct {
	// Nginx backend
	NginxContainer string // container name expected for the dockerized web server
	NginxImage     string // image used when offering a containerized install
	DockerRoot     string // host-side root for the dockerized nginx bind mounts

	// Native nginx layout
	NativeConfDir  string
	NativeWWWRoot  string
	NativeLogRoot  string
	NativeCertRoot string

	// ACME client backend
	AcmeContainer string
	AcmeImage     string
	DefaultCA     string

	// Misc
	StateDir   string // audit log and delete backups live here
	BackupDest string // rsync destination for the backup command
}

// SetDefaults registers every configuration default with viper.
// Called once from the root command before the config file is read.
func SetDefaults() {
	viper.SetDefault("nginx.container", "nginx")
	viper.SetDefault("nginx.image", "nginx:alpine")
	viper.SetDefault("nginx.docker_root", "/opt/sitemgr/nginx")
	viper.SetDefault("nginx.native_conf_dir", "/etc/nginx/conf.d")
	viper.SetDefault("nginx.native_www_root", "/var/www")
	viper.SetDefault("nginx.native_log_root", "/var/log/nginx")
	viper.SetDefault("nginx.native_cert_root", "/etc/nginx/certs")
	viper.SetDefault("acme.container", "acme.sh")
	viper.SetDefault("acme.image", "neilpang/acme.sh:latest")
	viper.SetDefault("acme.default_ca", "letsencrypt")
	viper.SetDefault("state_dir", defaultStateDir())
	viper.SetDefault("backup.destination", "")
}

// Load resolves the active settings from viper.
func Load() *Settings {
	return &Settings{
		NginxContainer: viper.GetString("nginx.container"),
		NginxImage:     viper.GetString("nginx.image"),
		DockerRoot:     viper.GetString("nginx.docker_root"),
		NativeConfDir:  viper.GetString("nginx.native_conf_dir"),
		NativeWWWRoot:  viper.GetString("nginx.native_www_root"),
		NativeLogRoot:  viper.GetString("nginx.native_log_root"),
		NativeCertRoot: viper.GetString("nginx.native_cert_root"),
		AcmeContainer:  viper.GetString("acme.container"),
		AcmeImage:      viper.GetString("acme.image"),
		DefaultCA:      viper.GetString("acme.default_ca"),
		StateDir:       viper.GetString("state_dir"),
		BackupDest:     viper.GetString("backup.destination"),
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/var/lib/sitemgr"
	}
	return filepath.Join(home, ".sitemgr")
}

// fileSettings mirrors the on-disk sitemgr.yaml layout.
type fileSettings struct {
	Nginx struct {
		Container     string `yaml:"container"`
		Image         string `yaml:"image"`
		DockerRoot    string `yaml:"docker_root"`
		NativeConfDir string `yaml:"native_conf_dir"`
	} `yaml:"nginx"`
	Acme struct {
		Container string `yaml:"container"`
		Image     string `yaml:"image"`
		DefaultCA string `yaml:"default_ca"`
	} `yaml:"acme"`
	Backup struct {
		Destination string `yaml:"destination"`
	} `yaml:"backup"`
	StateDir string `yaml:"state_dir"`
}

// WriteDefault writes a commented-out starter config file if none exists.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	var fs fileSettings
	fs.Nginx.Container = "nginx"
	fs.Nginx.Image = "nginx:alpine"
	fs.Nginx.DockerRoot = "/opt/sitemgr/nginx"
	fs.Nginx.NativeConfDir = "/etc/nginx/conf.d"
	fs.Acme.Container = "acme.sh"
	fs.Acme.Image = "neilpang/acme.sh:latest"
	fs.Acme.DefaultCA = "letsencrypt"
	fs.StateDir = defaultStateDir()

	data, err := yaml.Marshal(&fs)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
