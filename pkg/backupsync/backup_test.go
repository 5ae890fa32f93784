package backupsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z9wen/toolsss/pkg/backend"
	"github.com/z9wen/toolsss/pkg/runner"
)

var testPaths = backend.Paths{
	ConfDir:  "/opt/sitemgr/nginx/conf.d",
	WWWRoot:  "/opt/sitemgr/nginx/www",
	LogRoot:  "/opt/sitemgr/nginx/logs",
	CertRoot: "/opt/sitemgr/nginx/certs",
}

func TestSyncMirrorsSiteData(t *testing.T) {
	run := runner.NewFake()

	require.NoError(t, Sync(run, testPaths, "backup@host:/backups"))

	assert.True(t, run.Ran("rsync -a --delete /opt/sitemgr/nginx/www/ backup@host:/backups/www/"))
	assert.True(t, run.Ran("rsync -a --delete /opt/sitemgr/nginx/certs/ backup@host:/backups/certs/"))
	assert.True(t, run.Ran("rsync -a --delete /opt/sitemgr/nginx/conf.d/ backup@host:/backups/conf.d/"))
	// Logs are deliberately not mirrored.
	assert.False(t, run.Ran("/opt/sitemgr/nginx/logs/"))
}

func TestSyncRequiresDestination(t *testing.T) {
	run := runner.NewFake()

	err := Sync(run, testPaths, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backup destination")
	assert.Empty(t, run.Commands)
}

func TestSyncStopsOnFirstFailure(t *testing.T) {
	run := runner.NewFake()
	run.Failures["/www/"] = "connection refused"

	err := Sync(run, testPaths, "/mnt/backup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backup of /opt/sitemgr/nginx/www failed")
	assert.Len(t, run.Commands, 1)
}
