package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/polyship/polyship/internal/artifact"
	"github.com/polyship/polyship/internal/builder"
	"github.com/polyship/polyship/internal/platform"
)

// Terminal outcome of one build job.
type jobResult struct {
	target platform.Target
	desc   ocispec.Descriptor
	err    error
}

// Fans out one build job per target and blocks until every job reaches a
// terminal state.
//
// Jobs run with no shared mutable state; their only interaction point is
// the artifact store, which accepts writes in any order. There is no
// cancellation propagation between jobs: a failure does not abort siblings,
// so the barrier surfaces every platform's failure in one report instead of
// hiding later failures behind an early abort. Results are returned in
// configured target order.
func dispatch(ctx context.Context, b builder.Builder, targets []platform.Target, store *artifact.Store) []jobResult {
	results := make([]jobResult, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target platform.Target) {
			defer wg.Done()

			slog.Info("building platform", "platform", target)

			desc, err := b.Build(ctx, target)
			if err != nil {
				results[i] = jobResult{target: target, err: err}
				slog.Error("platform build failed", "platform", target, "error", err)
				return
			}

			store.Record(desc)
			results[i] = jobResult{target: target, desc: desc}

			slog.Info("platform built", "platform", target, "digest", desc.Digest)
		}(i, target)
	}
	wg.Wait()

	return results
}

// Aggregates job failures into a single error, or nil when every job
// succeeded.
func buildFailures(results []jobResult) error {
	var errs []error
	for _, res := range results {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("platform %s: %w", res.target, res.err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrBuild, errors.Join(errs...))
}

// Reconciles the artifact store against the jobs that reported success.
//
// The store keys by digest value, so two platforms producing bit-identical
// content collapse to one entry. The merge therefore checks the count of
// platforms that reported success, not merely the count of stored digests:
// fewer distinct digests than successful platforms means either nothing was
// collected or a content collision is masking a missing platform. Both are
// hard errors; nothing may be published.
func reconcile(store *artifact.Store, results []jobResult) ([]ocispec.Descriptor, error) {
	if store.Len() == 0 {
		return nil, fmt.Errorf("%w: nothing collected", ErrArtifactMissing)
	}

	for _, res := range results {
		if !store.Has(res.desc.Digest) {
			return nil, fmt.Errorf("%w: digest %s (platform %s) not in store", ErrArtifactMissing, res.desc.Digest, res.target)
		}
	}

	if succeeded := len(results); store.Len() < succeeded {
		return nil, fmt.Errorf("%w: %d distinct digests for %d successful platforms", ErrArtifactMissing, store.Len(), succeeded)
	}

	return store.Descriptors(), nil
}
