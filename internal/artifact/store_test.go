package artifact

import (
	"sync"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func desc(content string) ocispec.Descriptor {
	return ocispec.Descriptor{
		MediaType: ocispec.MediaTypeImageManifest,
		Digest:    digest.FromString(content),
		Size:      int64(len(content)),
	}
}

func TestRecord(t *testing.T) {
	s := NewStore()

	if !s.Record(desc("amd64")) {
		t.Fatal("first Record returned false")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if !s.Has(digest.FromString("amd64")) {
		t.Fatal("recorded digest not found")
	}
}

func TestRecordIdempotent(t *testing.T) {
	s := NewStore()

	d := desc("same content")
	s.Record(d)
	if s.Record(d) {
		t.Fatal("duplicate Record returned true")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d after duplicate record, want 1", s.Len())
	}
}

func TestRecordCollapsesIdenticalContent(t *testing.T) {
	// Two platforms producing bit-identical content collapse to one entry.
	s := NewStore()

	s.Record(desc("identical"))
	s.Record(desc("identical"))

	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (content-addressed dedup)", s.Len())
	}
}

func TestDescriptorsDeterministic(t *testing.T) {
	a := NewStore()
	a.Record(desc("one"))
	a.Record(desc("two"))
	a.Record(desc("three"))

	b := NewStore()
	b.Record(desc("three"))
	b.Record(desc("one"))
	b.Record(desc("two"))

	da, db := a.Descriptors(), b.Descriptors()
	if len(da) != 3 || len(db) != 3 {
		t.Fatalf("len = %d/%d, want 3/3", len(da), len(db))
	}
	for i := range da {
		if da[i].Digest != db[i].Digest {
			t.Fatalf("enumeration order differs at %d: %s vs %s", i, da[i].Digest, db[i].Digest)
		}
	}
	for i := 1; i < len(da); i++ {
		if da[i-1].Digest >= da[i].Digest {
			t.Fatalf("descriptors not ordered by digest at %d", i)
		}
	}
}

func TestDigests(t *testing.T) {
	s := NewStore()
	s.Record(desc("one"))
	s.Record(desc("two"))

	dgsts := s.Digests()
	if len(dgsts) != 2 {
		t.Fatalf("len = %d, want 2", len(dgsts))
	}
}

func TestRecordConcurrent(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Record(desc("shared"))
			s.Record(desc("unique"))
		}()
	}
	wg.Wait()

	if s.Len() != 2 {
		t.Fatalf("Len = %d after concurrent records, want 2", s.Len())
	}
}
