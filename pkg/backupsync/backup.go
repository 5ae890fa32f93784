// Package backupsync copies site data to a backup destination with rsync.
package backupsync

import (
	"fmt"

	"github.com/z9wen/toolsss/pkg/backend"
	"github.com/z9wen/toolsss/pkg/runner"
)

// Sync mirrors the document roots and certificate directories to the
// destination, which may be a local path or an rsync-style remote spec
// (user@host:/path).
func Sync(run runner.Runner, paths backend.Paths, destination string) error {
	if destination == "" {
		return fmt.Errorf("no backup destination configured (set backup.destination)")
	}

	for _, src := range []string{paths.WWWRoot, paths.CertRoot, paths.ConfDir} {
		cmd := fmt.Sprintf("rsync -a --delete %s/ %s/%s/", src, destination, lastSegment(src))
		if _, err := run.Run(cmd); err != nil {
			return fmt.Errorf("backup of %s failed: %w", src, err)
		}
	}
	return nil
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
