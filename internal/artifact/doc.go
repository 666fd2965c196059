// Package artifact collects the content digests produced by a run.
//
// A [Store] is scoped to exactly one run and keyed by digest value rather
// than by platform, so duplicate writes of the same content deduplicate
// naturally and the merge step can enumerate the full distinct set without
// per-platform bookkeeping. Recording is idempotent and commutative; the
// order in which platforms finish is irrelevant.
//
// Example usage:
//
//	store := artifact.NewStore()
//	store.Record(desc)
//	if store.Len() != len(targets) {
//	    return release.ErrArtifactMissing
//	}
//	entries := store.Descriptors()
package artifact
