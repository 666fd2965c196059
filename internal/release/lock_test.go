package release

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireLock(t *testing.T) {
	dir := t.TempDir()

	lock, err := acquireLock(dir, "ghcr.io/example/app")
	if err != nil {
		t.Fatalf("acquireLock failed: %v", err)
	}
	defer lock.release()

	if _, err := os.Stat(lock.path); err != nil {
		t.Fatalf("lock file missing: %v", err)
	}
}

func TestAcquireLockContention(t *testing.T) {
	dir := t.TempDir()

	lock, err := acquireLock(dir, "ghcr.io/example/app")
	if err != nil {
		t.Fatalf("acquireLock failed: %v", err)
	}
	defer lock.release()

	// This process is alive, so its lock is not stale.
	if _, err := acquireLock(dir, "ghcr.io/example/app"); !errors.Is(err, ErrRunActive) {
		t.Fatalf("err = %v, want ErrRunActive", err)
	}
}

func TestAcquireLockDifferentRepositories(t *testing.T) {
	dir := t.TempDir()

	a, err := acquireLock(dir, "ghcr.io/example/app")
	if err != nil {
		t.Fatalf("acquireLock failed: %v", err)
	}
	defer a.release()

	b, err := acquireLock(dir, "ghcr.io/example/other")
	if err != nil {
		t.Fatalf("second repository blocked: %v", err)
	}
	b.release()
}

func TestAcquireLockReleasedReacquirable(t *testing.T) {
	dir := t.TempDir()

	lock, err := acquireLock(dir, "ghcr.io/example/app")
	if err != nil {
		t.Fatalf("acquireLock failed: %v", err)
	}
	lock.release()

	again, err := acquireLock(dir, "ghcr.io/example/app")
	if err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
	again.release()
}

func TestAcquireLockReclaimsStale(t *testing.T) {
	dir := t.TempDir()

	// A malformed lock file counts as stale and is reclaimed.
	path := filepath.Join(dir, repositorySlug("ghcr.io/example/app")+".lock")
	if err := os.WriteFile(path, []byte("not a pid"), 0644); err != nil {
		t.Fatalf("plant stale lock: %v", err)
	}

	lock, err := acquireLock(dir, "ghcr.io/example/app")
	if err != nil {
		t.Fatalf("stale lock not reclaimed: %v", err)
	}
	lock.release()
}

func TestRepositorySlug(t *testing.T) {
	if slug := repositorySlug("ghcr.io/example/app"); slug != "ghcr.io-example-app" {
		t.Fatalf("slug = %q", slug)
	}
	if slug := repositorySlug("localhost:5000/app"); slug != "localhost-5000-app" {
		t.Fatalf("slug = %q", slug)
	}
}
