package builder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/core/content"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/containerd/v2/core/remotes"
	"github.com/containerd/containerd/v2/core/remotes/docker"
	"github.com/containerd/errdefs"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/polyship/polyship/internal/platform"
)

// Publishes per-platform OCI archives through a containerd daemon.
//
// An earlier pipeline stage is expected to have exported one OCI archive per
// platform to {dir}/{platform-slug}/image.tar. Build imports the archive
// into containerd's content store, resolves the manifest matching the
// target platform, and pushes it to the repository under a scratch tag.
type ContainerdBuilder struct {
	client   *containerd.Client // Containerd client for content and push operations.
	dir      string             // Directory holding per-platform archive directories.
	repo     string             // Repository coordinate pushed to.
	prefix   string             // Scratch tag prefix, fresh per run.
	resolver remotes.Resolver   // Resolver carrying registry credentials.
}

// Credentials for the containerd push resolver.
type Credentials struct {
	Username string // Registry user. Empty pushes anonymously.
	Password string // Password or token for the user.
	Insecure bool   // Allow plain HTTP registries.
}

// Creates a builder connected to the containerd socket at the given address.
//
// The namespace scopes imported content to this tool. The builder must be
// closed when no longer needed.
func NewContainerd(address, namespace, dir, repo, prefix string, creds Credentials) (*ContainerdBuilder, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchive, err)
	}

	return &ContainerdBuilder{
		client:   client,
		dir:      dir,
		repo:     repo,
		prefix:   prefix,
		resolver: dockerResolver(creds),
	}, nil
}

// Closes the containerd client connection.
func (b *ContainerdBuilder) Close() error {
	return b.client.Close()
}

// Imports the target's archive, resolves its platform manifest, and pushes
// it to the repository under a scratch tag.
func (b *ContainerdBuilder) Build(ctx context.Context, target platform.Target) (ocispec.Descriptor, error) {
	path := filepath.Join(b.dir, target.Slug(), archiveFilename)

	img, err := b.importArchive(ctx, path)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	desc, err := b.platformManifest(ctx, img.Target, target)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	pushRef := b.repo + ":" + ScratchTag(b.prefix, target)
	if err := b.client.Push(ctx, pushRef, desc, containerd.WithResolver(b.resolver)); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: push %s: %v", ErrArchive, pushRef, err)
	}

	p := target.OCI()
	desc.Platform = &p

	slog.Debug("archive pushed", "platform", target, "ref", pushRef, "digest", desc.Digest)
	return desc, nil
}

// Imports an OCI archive into the content store and records it under a
// deterministic tag.
//
// The archive must contain exactly one image. Multi-platform archives are
// supported (single OCI index with per-platform manifests); platform
// selection happens later via platformManifest.
func (b *ContainerdBuilder) importArchive(ctx context.Context, path string) (images.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return images.Image{}, fmt.Errorf("%w: %v", ErrArchive, err)
	}
	defer fh.Close()

	imported, err := b.client.Import(ctx, fh)
	if err != nil {
		return images.Image{}, fmt.Errorf("%w: %s: %v", ErrArchive, path, err)
	}

	if len(imported) == 0 {
		return images.Image{}, fmt.Errorf("%w: %s: empty archive", ErrArchive, path)
	} else if len(imported) > 1 {
		return images.Image{}, fmt.Errorf("%w: %s", ErrMultipleImages, path)
	}

	return b.tagImage(ctx, imported[0], archiveTag(path))
}

// Records an imported image under a deterministic name.
//
// Updates the record if it already exists, so re-running against the same
// archive path replaces rather than accumulates records. Removes the import
// record when its name differs from the tag.
func (b *ContainerdBuilder) tagImage(ctx context.Context, source images.Image, tag string) (images.Image, error) {
	is := b.client.ImageService()

	img := images.Image{
		Name:   tag,
		Target: source.Target,
	}

	if _, err := is.Create(ctx, img); err != nil {
		if !errdefs.IsAlreadyExists(err) {
			return images.Image{}, fmt.Errorf("%w: %v", ErrArchive, err)
		}
		if _, err := is.Update(ctx, img, "target"); err != nil {
			return images.Image{}, fmt.Errorf("%w: %v", ErrArchive, err)
		}
	}

	if source.Name != tag {
		if err := is.Delete(ctx, source.Name); err != nil && !errdefs.IsNotFound(err) {
			slog.Warn("failed to remove import record", "name", source.Name, "error", err)
		}
	}

	return img, nil
}

// Resolves the image root descriptor to the manifest for the target.
//
// If the root is an OCI image index, the index is read and walked to find
// the manifest matching the target platform. Some tools serve index entries
// without explicit platform metadata; descriptors lacking a platform field
// are probed by reading the image config, the same fallback containerd's
// images.Manifest uses internally.
func (b *ContainerdBuilder) platformManifest(ctx context.Context, root ocispec.Descriptor, target platform.Target) (ocispec.Descriptor, error) {
	if !images.IsIndexType(root.MediaType) {
		return root, nil
	}

	idx, err := b.readIndex(ctx, root)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	matcher := target.Matcher()

	for _, m := range idx.Manifests {
		if m.Platform != nil && matcher.Match(*m.Platform) {
			return m, nil
		}
	}
	for _, m := range idx.Manifests {
		if m.Platform != nil || !images.IsManifestType(m.MediaType) {
			continue
		}
		if p, ok := b.configPlatform(ctx, m); ok && matcher.Match(p) {
			return m, nil
		}
	}

	return ocispec.Descriptor{}, fmt.Errorf("%w: %s", ErrNoManifest, target)
}

// Reads the image config referenced by a manifest descriptor and returns the
// platform declared in the config.
//
// Returns false when the config cannot be read.
func (b *ContainerdBuilder) configPlatform(ctx context.Context, desc ocispec.Descriptor) (ocispec.Platform, bool) {
	manifest, err := b.readManifest(ctx, desc)
	if err != nil {
		return ocispec.Platform{}, false
	}
	config, err := b.readConfig(ctx, manifest.Config)
	if err != nil {
		return ocispec.Platform{}, false
	}
	return ocispec.Platform{
		OS:           config.OS,
		Architecture: config.Architecture,
		Variant:      config.Variant,
	}, true
}

// Loads an OCI image index from the content store.
func (b *ContainerdBuilder) readIndex(ctx context.Context, desc ocispec.Descriptor) (ocispec.Index, error) {
	data, err := content.ReadBlob(ctx, b.client.ContentStore(), desc)
	if err != nil {
		return ocispec.Index{}, fmt.Errorf("%w: %v", ErrArchive, err)
	}
	var idx ocispec.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return ocispec.Index{}, fmt.Errorf("%w: %v", ErrArchive, err)
	}
	return idx, nil
}

// Loads an OCI manifest from the content store.
func (b *ContainerdBuilder) readManifest(ctx context.Context, desc ocispec.Descriptor) (ocispec.Manifest, error) {
	data, err := content.ReadBlob(ctx, b.client.ContentStore(), desc)
	if err != nil {
		return ocispec.Manifest{}, err
	}
	var m ocispec.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return ocispec.Manifest{}, err
	}
	return m, nil
}

// Loads an OCI image config from the content store.
func (b *ContainerdBuilder) readConfig(ctx context.Context, desc ocispec.Descriptor) (ocispec.Image, error) {
	data, err := content.ReadBlob(ctx, b.client.ContentStore(), desc)
	if err != nil {
		return ocispec.Image{}, err
	}
	var img ocispec.Image
	if err := json.Unmarshal(data, &img); err != nil {
		return ocispec.Image{}, err
	}
	return img, nil
}

// Produces a containerd image name from an archive path.
//
// The path is hashed so the name is always a valid reference regardless of
// which characters the path contains.
func archiveTag(path string) string {
	h := sha256.Sum256([]byte(path))
	return fmt.Sprintf("import/%s:latest", hex.EncodeToString(h[:]))
}

// Builds a docker registry resolver carrying the configured credentials.
func dockerResolver(creds Credentials) remotes.Resolver {
	var opts []docker.RegistryOpt

	if creds.Username != "" {
		authorizer := docker.NewDockerAuthorizer(docker.WithAuthCreds(func(string) (string, string, error) {
			return creds.Username, creds.Password, nil
		}))
		opts = append(opts, docker.WithAuthorizer(authorizer))
	}
	if creds.Insecure {
		opts = append(opts, docker.WithPlainHTTP(docker.MatchAllHosts))
	}

	return docker.NewResolver(docker.ResolverOptions{
		Hosts: docker.ConfigureDefaultRegistries(opts...),
	})
}
