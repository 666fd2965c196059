package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "polyship.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validCommandConfig = `
repository: ghcr.io/example/app
platforms:
  - linux/amd64
  - linux/arm64
nightly_schedule: "0 2 * * *"
builder:
  kind: command
  command: ["buildctl", "build", "--opt", "platform={platform}", "--metadata-file", "{metadata}"]
  metadata_dir: dist/metadata
registry:
  username: release-bot
  password_env: REGISTRY_PASSWORD
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validCommandConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Repository != "ghcr.io/example/app" {
		t.Fatalf("repository = %q", cfg.Repository)
	}
	if len(cfg.Platforms) != 2 {
		t.Fatalf("platforms = %v, want 2", cfg.Platforms)
	}
	if cfg.NightlySchedule != "0 2 * * *" {
		t.Fatalf("nightly_schedule = %q", cfg.NightlySchedule)
	}
	if cfg.Builder.Kind != BuilderCommand {
		t.Fatalf("builder.kind = %q", cfg.Builder.Kind)
	}

	targets, err := cfg.Targets()
	if err != nil {
		t.Fatalf("Targets failed: %v", err)
	}
	if targets[0].String() != "linux/amd64" || targets[1].String() != "linux/arm64" {
		t.Fatalf("targets = %v", targets)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrRead) {
		t.Fatalf("err = %v, want ErrRead", err)
	}
}

func TestLoadUnknownField(t *testing.T) {
	path := writeConfig(t, "repository: r\nplatformz: [linux/amd64]\n")
	if _, err := Load(path); !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

func TestValidateMissingRepository(t *testing.T) {
	cfg := Config{Platforms: []string{"linux/amd64"}}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}
}

func TestValidateMissingPlatforms(t *testing.T) {
	cfg := Config{Repository: "ghcr.io/x/y"}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}
}

func TestValidateUnknownBuilder(t *testing.T) {
	cfg := Config{
		Repository: "ghcr.io/x/y",
		Platforms:  []string{"linux/amd64"},
		Builder:    Builder{Kind: "kaniko"},
	}
	if err := cfg.Validate(); !errors.Is(err, ErrUnknownBuilder) {
		t.Fatalf("err = %v, want ErrUnknownBuilder", err)
	}
}

func TestValidateBuilderFields(t *testing.T) {
	base := Config{Repository: "ghcr.io/x/y", Platforms: []string{"linux/amd64"}}

	cfg := base
	cfg.Builder = Builder{Kind: BuilderCommand, Command: []string{"make"}}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("command builder without metadata_dir: err = %v", err)
	}

	cfg = base
	cfg.Builder = Builder{Kind: BuilderLayout}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("layout builder without layout_dir: err = %v", err)
	}

	cfg = base
	cfg.Builder = Builder{Kind: BuilderContainerd}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("containerd builder without image_dir: err = %v", err)
	}
}

func TestContainerdDefaults(t *testing.T) {
	var c Containerd
	if c.SocketAddress() != DefaultContainerdAddress {
		t.Fatalf("address = %q", c.SocketAddress())
	}
	if c.NamespaceName() != DefaultContainerdNamespace {
		t.Fatalf("namespace = %q", c.NamespaceName())
	}

	c = Containerd{Address: "/tmp/ctrd.sock", Namespace: "release"}
	if c.SocketAddress() != "/tmp/ctrd.sock" || c.NamespaceName() != "release" {
		t.Fatalf("overrides not honored: %q %q", c.SocketAddress(), c.NamespaceName())
	}
}

func TestRegistryPassword(t *testing.T) {
	var r Registry
	if r.Password() != "" {
		t.Fatal("password without env var should be empty")
	}

	t.Setenv("POLYSHIP_TEST_PASSWORD", "hunter2")
	r = Registry{PasswordEnv: "POLYSHIP_TEST_PASSWORD"}
	if r.Password() != "hunter2" {
		t.Fatalf("password = %q", r.Password())
	}
}
