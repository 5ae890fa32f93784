package audit

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readActivities(t *testing.T, path string) []Activity {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var activities []Activity
	dec := json.NewDecoder(file)
	for dec.More() {
		var a Activity
		require.NoError(t, dec.Decode(&a))
		activities = append(activities, a)
	}
	return activities
}

func TestFileLoggerAppendsDailyFile(t *testing.T) {
	stateDir := t.TempDir()
	l, err := NewFileLogger(stateDir)
	require.NoError(t, err)

	ts := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	require.NoError(t, l.Log(&Activity{Type: ActivitySiteCreated, Domain: "example.com", Timestamp: ts}))
	require.NoError(t, l.Log(&Activity{Type: ActivityCertIssued, Domain: "example.com", Detail: "letsencrypt", Timestamp: ts}))

	path := filepath.Join(stateDir, "audit", "2026-08-29.jsonl")
	activities := readActivities(t, path)
	require.Len(t, activities, 2)

	assert.Equal(t, ActivitySiteCreated, activities[0].Type)
	assert.Equal(t, "example.com", activities[0].Domain)
	assert.Equal(t, ActivityCertIssued, activities[1].Type)
	assert.Equal(t, "letsencrypt", activities[1].Detail)
}

func TestFileLoggerFillsTimestamp(t *testing.T) {
	stateDir := t.TempDir()
	l, err := NewFileLogger(stateDir)
	require.NoError(t, err)

	a := &Activity{Type: ActivityReloaded}
	require.NoError(t, l.Log(a))
	assert.False(t, a.Timestamp.IsZero())
}

func TestRecordCapturesOperationError(t *testing.T) {
	stateDir := t.TempDir()
	l, err := NewFileLogger(stateDir)
	require.NoError(t, err)

	Record(l, ActivitySiteDeleted, "example.com", "", errors.New("reload failed"))

	path := filepath.Join(stateDir, "audit", time.Now().Format("2006-01-02")+".jsonl")
	activities := readActivities(t, path)
	require.Len(t, activities, 1)
	assert.Equal(t, "reload failed", activities[0].Error)
}

func TestRecordToleratesNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Record(nil, ActivitySiteCreated, "example.com", "", nil)
	})
}
