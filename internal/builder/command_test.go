package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"

	"github.com/polyship/polyship/internal/platform"
)

func target(t *testing.T, s string) platform.Target {
	t.Helper()
	target, err := platform.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return target
}

const sampleMetadata = `{
  "containerimage.config.digest": "sha256:2937f66a9722f7f4a2df583de2f8cb9fc9196bcbaedf6e2fd6ce4dbcc491097d",
  "containerimage.descriptor": {
    "mediaType": "application/vnd.oci.image.manifest.v1+json",
    "digest": "sha256:19ffeab6f8bc9293ac2c3fdf94ebe28396254c4fe4dec8cceb861a25abbdf3a9",
    "size": 506,
    "platform": {
      "architecture": "amd64",
      "os": "linux"
    }
  },
  "containerimage.digest": "sha256:19ffeab6f8bc9293ac2c3fdf94ebe28396254c4fe4dec8cceb861a25abbdf3a9",
  "image.name": "ghcr.io/example/app"
}`

func TestParseMetadata(t *testing.T) {
	desc, err := parseMetadata([]byte(sampleMetadata), target(t, "linux/amd64"))
	if err != nil {
		t.Fatalf("parseMetadata failed: %v", err)
	}

	want := digest.Digest("sha256:19ffeab6f8bc9293ac2c3fdf94ebe28396254c4fe4dec8cceb861a25abbdf3a9")
	if desc.Digest != want {
		t.Fatalf("digest = %s, want %s", desc.Digest, want)
	}
	if desc.Size != 506 {
		t.Fatalf("size = %d, want 506", desc.Size)
	}
	if desc.Platform == nil || desc.Platform.Architecture != "amd64" {
		t.Fatalf("platform = %v", desc.Platform)
	}
}

func TestParseMetadataDigestOnly(t *testing.T) {
	// Older buildctl versions emit only containerimage.digest.
	meta := `{"containerimage.digest": "sha256:19ffeab6f8bc9293ac2c3fdf94ebe28396254c4fe4dec8cceb861a25abbdf3a9"}`

	desc, err := parseMetadata([]byte(meta), target(t, "linux/arm64"))
	if err != nil {
		t.Fatalf("parseMetadata failed: %v", err)
	}
	if desc.MediaType == "" {
		t.Fatal("media type not defaulted")
	}
	if desc.Platform == nil || desc.Platform.Architecture != "arm64" {
		t.Fatalf("platform not defaulted from target: %v", desc.Platform)
	}
}

func TestParseMetadataBadDigest(t *testing.T) {
	meta := `{"containerimage.digest": "not-a-digest"}`

	if _, err := parseMetadata([]byte(meta), target(t, "linux/amd64")); !errors.Is(err, ErrMetadata) {
		t.Fatalf("err = %v, want ErrMetadata", err)
	}
}

func TestParseMetadataBadJSON(t *testing.T) {
	if _, err := parseMetadata([]byte("{"), target(t, "linux/amd64")); !errors.Is(err, ErrMetadata) {
		t.Fatalf("err = %v, want ErrMetadata", err)
	}
}

func TestSubstitute(t *testing.T) {
	argv := substitute(
		[]string{"buildctl", "--opt", "platform={platform}", "--metadata-file", "{metadata}"},
		"linux/amd64", "/tmp/meta.json",
	)

	if argv[2] != "platform=linux/amd64" {
		t.Fatalf("argv[2] = %q", argv[2])
	}
	if argv[4] != "/tmp/meta.json" {
		t.Fatalf("argv[4] = %q", argv[4])
	}
}

func TestSubstituteDoesNotMutateTemplate(t *testing.T) {
	template := []string{"{platform}"}
	substitute(template, "linux/amd64", "")
	if template[0] != "{platform}" {
		t.Fatalf("template mutated: %q", template[0])
	}
}

func TestCommandBuild(t *testing.T) {
	dir := t.TempDir()
	tgt := target(t, "linux/amd64")

	// The command is a no-op; the metadata file stands in for the build's
	// side effect.
	metaPath := filepath.Join(dir, tgt.Slug()+".json")
	if err := os.WriteFile(metaPath, []byte(sampleMetadata), 0644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	b := NewCommand([]string{"true"}, dir)
	desc, err := b.Build(context.Background(), tgt)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if desc.Digest == "" {
		t.Fatal("descriptor has no digest")
	}
}

func TestCommandBuildFailure(t *testing.T) {
	b := NewCommand([]string{"false"}, t.TempDir())

	_, err := b.Build(context.Background(), target(t, "linux/amd64"))
	if !errors.Is(err, ErrCommand) {
		t.Fatalf("err = %v, want ErrCommand", err)
	}
}

func TestCommandBuildMissingMetadata(t *testing.T) {
	b := NewCommand([]string{"true"}, t.TempDir())

	_, err := b.Build(context.Background(), target(t, "linux/amd64"))
	if !errors.Is(err, ErrMetadata) {
		t.Fatalf("err = %v, want ErrMetadata", err)
	}
}

func TestScratchTag(t *testing.T) {
	tag := ScratchTag("abc123def456", target(t, "linux/arm64"))
	if tag != "abc123def456-linux-arm64" {
		t.Fatalf("tag = %q", tag)
	}
}
