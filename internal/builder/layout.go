package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/polyship/polyship/internal/platform"
	"github.com/polyship/polyship/internal/registry"
)

// Publishes pre-built per-platform OCI layout directories.
//
// An earlier pipeline stage is expected to have exported one OCI layout per
// platform into {dir}/{platform-slug} (e.g. dist/linux-amd64). Build pushes
// the layout to the target repository under a scratch tag and reports the
// digest the registry assigned.
type LayoutBuilder struct {
	client *registry.Client // Registry client used for the content push.
	dir    string           // Directory holding per-platform layout directories.
	prefix string           // Scratch tag prefix, fresh per run.
}

// Creates a layout builder over the given layout directory.
func NewLayout(client *registry.Client, dir, prefix string) *LayoutBuilder {
	return &LayoutBuilder{
		client: client,
		dir:    dir,
		prefix: prefix,
	}
}

// Pushes the target's layout and returns the pushed manifest's descriptor.
func (b *LayoutBuilder) Build(ctx context.Context, target platform.Target) (ocispec.Descriptor, error) {
	layout := filepath.Join(b.dir, target.Slug())
	if _, err := os.Stat(layout); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: platform %s: %v", ErrArchive, target, err)
	}

	desc, err := b.client.PushLayout(ctx, layout, ScratchTag(b.prefix, target))
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	p := target.OCI()
	desc.Platform = &p

	slog.Debug("layout built", "platform", target, "digest", desc.Digest)
	return desc, nil
}
