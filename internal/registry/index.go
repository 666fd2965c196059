package registry

import (
	"fmt"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/regclient/regclient/types/descriptor"
	"github.com/regclient/regclient/types/mediatype"
	"github.com/regclient/regclient/types/oci"
	v1 "github.com/regclient/regclient/types/oci/v1"
	"github.com/regclient/regclient/types/platform"
)

// Assembles an OCI image index from per-platform manifest descriptors.
//
// Each entry becomes one index entry; platform metadata is taken from the
// descriptors as produced by the image builder, never recomputed here.
// Entries without platform metadata are rejected, since a manifest list
// entry that cannot be matched to a platform is useless to pullers.
func buildIndex(entries []ocispec.Descriptor) (v1.Index, error) {
	if len(entries) == 0 {
		return v1.Index{}, ErrNoEntry
	}

	manifests := make([]descriptor.Descriptor, 0, len(entries))
	for _, entry := range entries {
		if entry.Platform == nil {
			return v1.Index{}, fmt.Errorf("%w: entry %s has no platform", ErrNoEntry, entry.Digest)
		}
		manifests = append(manifests, convertDescriptor(entry))
	}

	return v1.Index{
		Versioned: oci.Versioned{SchemaVersion: 2},
		MediaType: mediatype.OCI1ManifestList,
		Manifests: manifests,
	}, nil
}

// Converts an OCI image-spec descriptor to regclient's descriptor type.
func convertDescriptor(entry ocispec.Descriptor) descriptor.Descriptor {
	desc := descriptor.Descriptor{
		MediaType: entry.MediaType,
		Digest:    entry.Digest,
		Size:      entry.Size,
	}
	if entry.Platform != nil {
		desc.Platform = &platform.Platform{
			OS:           entry.Platform.OS,
			Architecture: entry.Platform.Architecture,
			Variant:      entry.Platform.Variant,
		}
	}
	return desc
}
