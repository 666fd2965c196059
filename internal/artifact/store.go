package artifact

import (
	"sort"
	"sync"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// A write-once-per-key collection of digests scoped to one run.
//
// Build jobs write concurrently; the merge step reads after the dispatch
// barrier. Entries never survive their run: the store is created per run and
// garbage collected with it.
type Store struct {
	mu      sync.Mutex
	entries map[digest.Digest]ocispec.Descriptor
}

// Creates an empty store for a single run.
func NewStore() *Store {
	return &Store{
		entries: make(map[digest.Digest]ocispec.Descriptor),
	}
}

// Records a built descriptor under its own digest.
//
// Recording is idempotent: re-recording an existing digest is a no-op and
// the first descriptor wins. Returns true when the digest was not present
// before.
func (s *Store) Record(desc ocispec.Descriptor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[desc.Digest]; ok {
		return false
	}
	s.entries[desc.Digest] = desc
	return true
}

// Whether the given digest has been recorded.
func (s *Store) Has(dgst digest.Digest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[dgst]
	return ok
}

// Number of distinct digests recorded.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Returns every distinct recorded descriptor, ordered by digest value.
//
// The ordering carries no meaning; it only makes enumeration deterministic.
func (s *Store) Descriptors() []ocispec.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()

	descs := make([]ocispec.Descriptor, 0, len(s.entries))
	for _, desc := range s.entries {
		descs = append(descs, desc)
	}
	sort.Slice(descs, func(i, j int) bool {
		return descs[i].Digest < descs[j].Digest
	})
	return descs
}

// Returns every distinct recorded digest, ordered by value.
func (s *Store) Digests() []digest.Digest {
	descs := s.Descriptors()
	dgsts := make([]digest.Digest, len(descs))
	for i, desc := range descs {
		dgsts[i] = desc.Digest
	}
	return dgsts
}
