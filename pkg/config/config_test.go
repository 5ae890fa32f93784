package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	s := Load()
	assert.Equal(t, "nginx", s.NginxContainer)
	assert.Equal(t, "nginx:alpine", s.NginxImage)
	assert.Equal(t, "/opt/sitemgr/nginx", s.DockerRoot)
	assert.Equal(t, "/etc/nginx/conf.d", s.NativeConfDir)
	assert.Equal(t, "/var/www", s.NativeWWWRoot)
	assert.Equal(t, "/var/log/nginx", s.NativeLogRoot)
	assert.Equal(t, "/etc/nginx/certs", s.NativeCertRoot)
	assert.Equal(t, "acme.sh", s.AcmeContainer)
	assert.Equal(t, "neilpang/acme.sh:latest", s.AcmeImage)
	assert.Equal(t, "letsencrypt", s.DefaultCA)
	assert.NotEmpty(t, s.StateDir)
	assert.Empty(t, s.BackupDest)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	dir := t.TempDir()
	content := []byte("nginx:\n  container: web\nacme:\n  default_ca: buypass\nbackup:\n  destination: backup@host:/backups\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sitemgr.yaml"), content, 0644))

	viper.SetConfigName("sitemgr")
	viper.AddConfigPath(dir)
	require.NoError(t, viper.ReadInConfig())

	s := Load()
	assert.Equal(t, "web", s.NginxContainer)
	assert.Equal(t, "buypass", s.DefaultCA)
	assert.Equal(t, "backup@host:/backups", s.BackupDest)
	// Untouched keys keep their defaults.
	assert.Equal(t, "nginx:alpine", s.NginxImage)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitemgr.yaml")
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var fs fileSettings
	require.NoError(t, yaml.Unmarshal(data, &fs))
	assert.Equal(t, "nginx", fs.Nginx.Container)
	assert.Equal(t, "letsencrypt", fs.Acme.DefaultCA)

	// Refuses to clobber an existing file.
	assert.Error(t, WriteDefault(path))
}
