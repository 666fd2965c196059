package builder

import (
	"context"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/polyship/polyship/internal/platform"
)

// Builds one platform variant of the image.
//
// Implementations are invoked concurrently, once per target per run, and
// must not share mutable state between invocations. The returned descriptor
// carries the digest, size, media type, and platform of the built manifest;
// platform metadata reported here is trusted downstream and never
// recomputed.
type Builder interface {
	Build(ctx context.Context, target platform.Target) (ocispec.Descriptor, error)
}

// Filename of per-platform OCI archives consumed by the containerd backend.
const archiveFilename = "image.tar"

// Returns the intermediate tag a backend pushes per-platform content under.
//
// Scratch tags are fresh per run (prefixed with the run's short commit) and
// are never part of the resolved tag set, so a failed run cannot disturb a
// previously published tag.
func ScratchTag(prefix string, target platform.Target) string {
	return prefix + "-" + target.Slug()
}
