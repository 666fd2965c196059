package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/regclient/regclient"
	regconfig "github.com/regclient/regclient/config"
	"github.com/regclient/regclient/types/manifest"
	"github.com/regclient/regclient/types/ref"
)

// A registry client bound to one repository coordinate.
type Client struct {
	rc   *regclient.RegClient // Underlying registry client.
	repo string               // Repository coordinate all operations target.
}

// Holds registry client configuration.
type Options struct {
	Repository string // Target repository coordinate (e.g., "ghcr.io/org/app").
	Username   string // Registry user. Empty falls back to ambient docker credentials.
	Password   string // Password or token for the user.
	Insecure   bool   // Allow plain HTTP / skip TLS verification.
	UserAgent  string // User agent sent with registry requests.
}

// Creates a registry client for a single repository coordinate.
func New(opts Options) *Client {
	rcOpts := []regclient.Opt{
		regclient.WithDockerCreds(),
		regclient.WithDockerCerts(),
	}
	if opts.UserAgent != "" {
		rcOpts = append(rcOpts, regclient.WithUserAgent(opts.UserAgent))
	}

	if host := hostConfig(opts); host != nil {
		rcOpts = append(rcOpts, regclient.WithConfigHost(*host))
	}

	return &Client{
		rc:   regclient.New(rcOpts...),
		repo: opts.Repository,
	}
}

// Builds an explicit host entry when credentials or transport overrides are
// configured. Returns nil when ambient credentials suffice.
func hostConfig(opts Options) *regconfig.Host {
	if opts.Username == "" && !opts.Insecure {
		return nil
	}

	host := regconfig.Host{
		Name: registryHost(opts.Repository),
		User: opts.Username,
		Pass: opts.Password,
	}
	if opts.Insecure {
		host.TLS = regconfig.TLSInsecure
	}
	return &host
}

// Extracts the registry host from a repository coordinate.
func registryHost(repo string) string {
	host, _, found := strings.Cut(repo, "/")
	if !found {
		return repo
	}
	return host
}

// Releases connections held for the repository.
func (c *Client) Close(ctx context.Context) {
	r, err := ref.New(c.repo)
	if err != nil {
		return
	}
	if err := c.rc.Close(ctx, r); err != nil {
		slog.Debug("registry close failed", "repository", c.repo, "error", err)
	}
}

// Publishes a manifest list joining the given entries under every tag.
//
// This is the merge step's single registry call: the same index is put under
// each tag reference so the manifest and all its aliases become visible
// together. Existing tags are reassigned in place; the registry guarantees
// the reassignment is atomic per tag, the coordinator does not retry or roll
// back. Returns the digest of the published index.
func (c *Client) Publish(ctx context.Context, entries []ocispec.Descriptor, tagSet []string) (digest.Digest, error) {
	idx, err := buildIndex(entries)
	if err != nil {
		return "", err
	}

	m, err := manifest.New(manifest.WithOrig(idx))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPublish, err)
	}

	for _, tag := range tagSet {
		r, err := ref.New(c.repo + ":" + tag)
		if err != nil {
			return "", fmt.Errorf("%w: tag %q: %v", ErrPublish, tag, err)
		}
		if err := c.rc.ManifestPut(ctx, r, m); err != nil {
			return "", fmt.Errorf("%w: tag %q: %v", ErrPublish, tag, err)
		}
		slog.Info("manifest list published", "repository", c.repo, "tag", tag, "digest", m.GetDescriptor().Digest)
	}

	return m.GetDescriptor().Digest, nil
}

// Reads back the manifest for a tag and checks the expected platform count.
//
// A smoke test of visibility, not a correctness proof of image contents: the
// reference must resolve, be a manifest list, and carry exactly the expected
// number of entries.
func (c *Client) Verify(ctx context.Context, tag string, platforms int) error {
	r, err := ref.New(c.repo + ":" + tag)
	if err != nil {
		return fmt.Errorf("%w: tag %q: %v", ErrVerify, tag, err)
	}

	m, err := c.rc.ManifestGet(ctx, r)
	if err != nil {
		return fmt.Errorf("%w: tag %q not retrievable: %v", ErrVerify, tag, err)
	}

	indexer, ok := m.(manifest.Indexer)
	if !ok || !m.IsList() {
		return fmt.Errorf("%w: tag %q resolves to a single-platform manifest", ErrVerify, tag)
	}

	entries, err := indexer.GetManifestList()
	if err != nil {
		return fmt.Errorf("%w: tag %q: %v", ErrVerify, tag, err)
	}
	if len(entries) != platforms {
		return fmt.Errorf("%w: tag %q lists %d platforms, want %d", ErrVerify, tag, len(entries), platforms)
	}

	slog.Debug("published manifest verified", "repository", c.repo, "tag", tag, "platforms", len(entries))
	return nil
}

// Pushes a local OCI layout to the repository under the given tag.
//
// Used by the layout builder for per-platform content pushes before the
// merge. Returns the descriptor of the pushed image as reported by the
// registry.
func (c *Client) PushLayout(ctx context.Context, dir, tag string) (ocispec.Descriptor, error) {
	src, err := ref.New("ocidir://" + dir)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: layout %q: %v", ErrPush, dir, err)
	}

	tgt, err := ref.New(c.repo + ":" + tag)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: tag %q: %v", ErrPush, tag, err)
	}

	if err := c.rc.ImageCopy(ctx, src, tgt); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: %s: %v", ErrPush, dir, err)
	}

	m, err := c.rc.ManifestHead(ctx, tgt)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: head after push: %v", ErrPush, err)
	}

	desc := m.GetDescriptor()
	slog.Debug("layout pushed", "dir", dir, "tag", tag, "digest", desc.Digest)

	return ocispec.Descriptor{
		MediaType: desc.MediaType,
		Digest:    desc.Digest,
		Size:      desc.Size,
	}, nil
}
