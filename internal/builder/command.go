package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/polyship/polyship/internal/paths"
	"github.com/polyship/polyship/internal/platform"
)

// Placeholders substituted into the configured build argv.
const (
	placeholderPlatform = "{platform}"
	placeholderMetadata = "{metadata}"
)

// Runs an external build command once per platform.
//
// The command is expected to build and push the platform's image itself
// (e.g. "buildctl build --output type=image,push=true") and to write a
// buildctl-style metadata file describing the pushed manifest. The argv is
// shared across platforms; {platform} and {metadata} placeholders are
// substituted per invocation, and the same values are exported via the
// POLYSHIP_PLATFORM and POLYSHIP_METADATA environment variables.
type CommandBuilder struct {
	argv        []string // Build command template.
	metadataDir string   // Directory the per-platform metadata files are written to.
}

// Creates a command builder from the configured argv and metadata directory.
func NewCommand(argv []string, metadataDir string) *CommandBuilder {
	return &CommandBuilder{
		argv:        argv,
		metadataDir: metadataDir,
	}
}

// Runs the build command for one target and reads back its metadata.
func (b *CommandBuilder) Build(ctx context.Context, target platform.Target) (ocispec.Descriptor, error) {
	if err := os.MkdirAll(b.metadataDir, paths.DefaultDirMode); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: %v", ErrCommand, err)
	}

	metaPath := filepath.Join(b.metadataDir, target.Slug()+".json")
	argv := substitute(b.argv, target.String(), metaPath)

	slog.Debug("running build command", "platform", target, "command", argv[0])

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(),
		"POLYSHIP_PLATFORM="+target.String(),
		"POLYSHIP_METADATA="+metaPath,
	)

	var stderr bytes.Buffer
	cmd.Stdout = os.Stderr
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: platform %s: %v: %s",
			ErrCommand, target, err, lastLine(stderr.String()))
	}

	return readMetadata(metaPath, target)
}

// Replaces the per-invocation placeholders in the argv template.
func substitute(argv []string, platformStr, metaPath string) []string {
	out := make([]string, len(argv))
	for i, arg := range argv {
		arg = strings.ReplaceAll(arg, placeholderPlatform, platformStr)
		arg = strings.ReplaceAll(arg, placeholderMetadata, metaPath)
		out[i] = arg
	}
	return out
}

// Returns the last non-empty line of command output, for error messages.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

// Shape of the buildctl/buildx metadata file, reduced to the fields the
// coordinator consumes.
type buildMetadata struct {
	Descriptor ocispec.Descriptor `json:"containerimage.descriptor"`
	Digest     digest.Digest      `json:"containerimage.digest"`
}

// Parses a metadata file into the built manifest's descriptor.
//
// The descriptor's platform defaults to the build target when the builder
// did not report one (buildctl drops it for single-platform pushes).
func readMetadata(path string, target platform.Target) (ocispec.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	return parseMetadata(data, target)
}

func parseMetadata(data []byte, target platform.Target) (ocispec.Descriptor, error) {
	var meta buildMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: %v", ErrMetadata, err)
	}

	desc := meta.Descriptor
	if desc.Digest == "" {
		desc.Digest = meta.Digest
	}
	if err := desc.Digest.Validate(); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: platform %s: bad digest: %v", ErrMetadata, target, err)
	}

	if desc.MediaType == "" {
		desc.MediaType = ocispec.MediaTypeImageManifest
	}
	if desc.Platform == nil {
		p := target.OCI()
		desc.Platform = &p
	}

	return desc, nil
}
