package release

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/polyship/polyship/internal/paths"
)

// Exclusive per-repository lock held for the duration of a run.
//
// Tags are reassignable pointers with no compare-and-swap primitive, so two
// interleaved runs against the same repository could lose an update when an
// older run's publish lands after a newer one's. The lock serializes runs
// per repository coordinate; runs against different repositories proceed
// concurrently.
type runLock struct {
	path string
}

// Acquires the lock for a repository, creating the lock directory if
// needed.
//
// The lock is a file created with O_EXCL and holding the owner's PID. A
// lock whose owning process is gone is reclaimed, so a crashed run does not
// block the repository forever.
func acquireLock(dir, repository string) (*runLock, error) {
	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRunActive, err)
	}

	path := filepath.Join(dir, repositorySlug(repository)+".lock")

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, paths.DefaultFileMode)
		if err == nil {
			fmt.Fprintf(f, "%d", os.Getpid())
			f.Close()
			return &runLock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("%w: %v", ErrRunActive, err)
		}

		if !lockStale(path) {
			return nil, fmt.Errorf("%w: %s", ErrRunActive, repository)
		}

		slog.Warn("reclaiming stale run lock", "path", path)
		os.Remove(path)
	}

	return nil, fmt.Errorf("%w: %s", ErrRunActive, repository)
}

// Releases the lock.
func (l *runLock) release() {
	os.Remove(l.path)
}

// Whether the lock's owning process is gone.
//
// An unreadable or malformed lock file counts as stale.
func lockStale(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return true
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return true
	}
	return proc.Signal(syscall.Signal(0)) != nil
}

// Converts a repository coordinate to a filesystem-safe slug.
func repositorySlug(repository string) string {
	slug := strings.ReplaceAll(repository, "/", "-")
	return strings.ReplaceAll(slug, ":", "-")
}
