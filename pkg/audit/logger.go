// Package audit keeps a JSON-lines trail of every mutating operation, so a
// partially completed run can be reconstructed after the fact.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ActivityType classifies an audited operation.
type ActivityType string

const (
	ActivitySiteCreated  ActivityType = "site.created"
	ActivitySiteEnabled  ActivityType = "site.enabled"
	ActivitySiteDisabled ActivityType = "site.disabled"
	ActivitySiteDeleted  ActivityType = "site.deleted"
	ActivityCertIssued   ActivityType = "cert.issued"
	ActivityCertReused   ActivityType = "cert.wildcard_reused"
	ActivityReloaded     ActivityType = "nginx.reloaded"
	ActivityTuneApplied  ActivityType = "sysctl.tuned"
	ActivityBackupDone   ActivityType = "backup.completed"
)

// Activity is one audit record.
type Activity struct {
	Type      ActivityType `json:"type"`
	Domain    string       `json:"domain,omitempty"`
	Detail    string       `json:"detail,omitempty"`
	Error     string       `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Logger defines the audit sink.
type Logger interface {
	Log(activity *Activity) error
}

// FileLogger appends activities to daily JSON-lines files.
type FileLogger struct {
	basePath string
	mu       sync.Mutex
}

// NewFileLogger creates a file-based audit logger under the state directory
func NewFileLogger(stateDir string) (*FileLogger, error) {
	basePath := filepath.Join(stateDir, "audit")
	if err := os.MkdirAll(basePath, 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	return &FileLogger{basePath: basePath}, nil
}

// Log writes an activity to the current day's log file
func (l *FileLogger) Log(activity *Activity) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now()
	}

	fileName := filepath.Join(l.basePath, activity.Timestamp.Format("2006-01-02")+".jsonl")
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(activity); err != nil {
		return fmt.Errorf("failed to encode activity: %w", err)
	}
	return nil
}

// NoOpLogger discards all activities.
type NoOpLogger struct{}

// Log does nothing
func (NoOpLogger) Log(*Activity) error { return nil }

// Record is a convenience helper: it logs the outcome of an operation,
// ignoring audit failures (the audit trail never blocks the operation).
func Record(l Logger, t ActivityType, domain, detail string, opErr error) {
	if l == nil {
		return
	}
	a := &Activity{Type: t, Domain: domain, Detail: detail, Timestamp: time.Now()}
	if opErr != nil {
		a.Error = opErr.Error()
	}
	_ = l.Log(a)
}
