package platform

import (
	"fmt"
	"strings"

	"github.com/containerd/platforms"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// A normalized os/arch(/variant) pair identifying one build variant.
//
// Targets are immutable once parsed; the ordered target list of a run is
// fixed at configuration time.
type Target struct {
	OS           string // Operating system (e.g., "linux").
	Architecture string // CPU architecture (e.g., "amd64").
	Variant      string // Architecture variant (e.g., "v7"), usually empty.
}

// Parses a platform string into a normalized [Target].
//
// Accepts the "os/arch[/variant]" form (e.g., "linux/amd64"). Aliases are
// normalized per containerd's rules, so "linux/aarch64" parses to
// "linux/arm64".
func Parse(s string) (Target, error) {
	p, err := platforms.Parse(s)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %q: %v", ErrInvalidTarget, s, err)
	}

	p = platforms.Normalize(p)

	return Target{
		OS:           p.OS,
		Architecture: p.Architecture,
		Variant:      p.Variant,
	}, nil
}

// Parses an ordered list of platform strings.
//
// The input order is preserved. Duplicate targets (after normalization) are
// rejected, since the published manifest list must contain exactly one entry
// per target.
func ParseAll(list []string) ([]Target, error) {
	targets := make([]Target, 0, len(list))
	seen := make(map[Target]struct{}, len(list))

	for _, s := range list {
		t, err := Parse(s)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[t]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTarget, t)
		}
		seen[t] = struct{}{}
		targets = append(targets, t)
	}

	return targets, nil
}

// Returns the canonical "os/arch[/variant]" string.
func (t Target) String() string {
	return platforms.FormatAll(t.OCI())
}

// Returns a filesystem- and tag-safe slug for the target.
//
// Slashes are replaced with dashes (e.g., "linux/amd64" becomes
// "linux-amd64").
func (t Target) Slug() string {
	return strings.ReplaceAll(t.String(), "/", "-")
}

// Returns the target as an OCI platform value.
func (t Target) OCI() ocispec.Platform {
	return ocispec.Platform{
		OS:           t.OS,
		Architecture: t.Architecture,
		Variant:      t.Variant,
	}
}

// Returns a matcher that accepts only this target.
func (t Target) Matcher() platforms.MatchComparer {
	return platforms.OnlyStrict(t.OCI())
}
