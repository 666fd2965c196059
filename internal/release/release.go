package release

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/polyship/polyship/internal/artifact"
	"github.com/polyship/polyship/internal/builder"
	"github.com/polyship/polyship/internal/paths"
	"github.com/polyship/polyship/internal/platform"
	"github.com/polyship/polyship/internal/tags"
)

// Publishes manifest lists and verifies their visibility.
//
// Implemented by the registry client; faked in tests. Publish must apply
// the full tag set in one call so the manifest and all its aliases become
// visible together.
type Publisher interface {
	Publish(ctx context.Context, entries []ocispec.Descriptor, tagSet []string) (digest.Digest, error)
	Verify(ctx context.Context, tag string, platforms int) error
}

// Controls one run.
type Options struct {
	Repository string            // Target repository coordinate.
	Targets    []platform.Target // Ordered platform targets to build.
	Tags       []string          // Resolved tag set; the first tag is primary.
	Builder    builder.Builder   // Per-platform image builder.
	Publisher  Publisher         // Registry publish/verify client.
	LockDir    string            // Directory for run locks. Empty uses the XDG runtime dir.
}

// Returned after a verified run.
type Result struct {
	RunID   uuid.UUID       // Identifier correlating the run's log records.
	Digest  digest.Digest   // Digest of the published manifest list.
	Tags    []string        // Tags the manifest list was published under.
	Digests []digest.Digest // Distinct content digests joined into the list.
}

// Executes one coordinated run end-to-end.
//
// Dispatches one build per target, waits for the full barrier, reconciles
// the collected digest set, publishes the manifest list under every
// resolved tag, and verifies the published reference. Every failure aborts
// the run; retries require a fresh run, there is no partial retry of a
// single platform. Failed runs leave previously published tags untouched.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.Targets) == 0 {
		return nil, ErrNoTargets
	}
	if len(opts.Tags) == 0 {
		return nil, ErrNoTags
	}

	lock, err := acquireLock(opts.lockDir(), opts.Repository)
	if err != nil {
		return nil, err
	}
	defer lock.release()

	run := newRun(opts.Repository, opts.Targets)
	slog.Info("run started",
		"run", run.ID,
		"repository", opts.Repository,
		"platforms", len(opts.Targets),
		"tags", opts.Tags,
	)

	// The store lives and dies with this run; entries are never reused by a
	// later run.
	store := artifact.NewStore()

	run.to(StateBuilding)
	results := dispatch(ctx, opts.Builder, opts.Targets, store)

	if err := buildFailures(results); err != nil {
		run.to(StateAnyFailed)
		return nil, err
	}
	run.to(StateAllSucceeded)

	run.to(StateMerging)
	entries, err := reconcile(store, results)
	if err != nil {
		run.to(StateMergeFailed)
		return nil, err
	}

	dgst, err := opts.Publisher.Publish(ctx, entries, opts.Tags)
	if err != nil {
		run.to(StateMergeFailed)
		return nil, err
	}
	run.to(StatePublished)

	if err := opts.Publisher.Verify(ctx, tags.Primary(opts.Tags), len(opts.Targets)); err != nil {
		run.to(StateVerificationFailed)
		return nil, err
	}
	run.to(StateVerified)

	slog.Info("run verified",
		"run", run.ID,
		"digest", dgst,
		"tags", opts.Tags,
	)

	return &Result{
		RunID:   run.ID,
		Digest:  dgst,
		Tags:    opts.Tags,
		Digests: store.Digests(),
	}, nil
}

// Returns the configured lock directory, defaulted to the XDG runtime dir.
func (o Options) lockDir() string {
	if o.LockDir != "" {
		return o.LockDir
	}
	return paths.Runtime()
}
