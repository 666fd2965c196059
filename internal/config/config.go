package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/polyship/polyship/internal/platform"
)

// Recognized builder backends.
const (
	BuilderCommand    = "command"    // External build command with a metadata file.
	BuilderLayout     = "layout"     // Per-platform OCI layout directories.
	BuilderContainerd = "containerd" // Per-platform OCI archives via containerd.
)

const (

	// Default containerd socket address.
	DefaultContainerdAddress = "/run/containerd/containerd.sock"

	// Default containerd namespace for imported images.
	DefaultContainerdNamespace = "polyship"
)

// The full run configuration.
type Config struct {
	Repository      string   `yaml:"repository"`       // Target repository coordinate (e.g., "ghcr.io/org/app").
	Platforms       []string `yaml:"platforms"`        // Ordered platform target list.
	NightlySchedule string   `yaml:"nightly_schedule"` // Schedule expression identifying the nightly trigger.
	Builder         Builder  `yaml:"builder"`          // Image builder backend.
	Registry        Registry `yaml:"registry"`         // Registry credentials and transport options.
}

// Selects and parameterizes the image builder backend.
//
// Only the fields of the selected kind are consulted.
type Builder struct {
	Kind        string     `yaml:"kind"`                   // One of "command", "layout", "containerd".
	Command     []string   `yaml:"command,omitempty"`      // Build argv; {platform} and {metadata} are substituted.
	MetadataDir string     `yaml:"metadata_dir,omitempty"` // Directory for per-platform metadata files.
	LayoutDir   string     `yaml:"layout_dir,omitempty"`   // Directory holding per-platform OCI layouts.
	Containerd  Containerd `yaml:"containerd,omitempty"`   // Containerd connection settings.
}

// Containerd connection settings for the containerd builder.
type Containerd struct {
	Address   string `yaml:"address,omitempty"`   // Socket address. Empty uses [DefaultContainerdAddress].
	Namespace string `yaml:"namespace,omitempty"` // Namespace. Empty uses [DefaultContainerdNamespace].
	ImageDir  string `yaml:"image_dir,omitempty"` // Directory holding per-platform OCI archives.
}

// Registry access options. Credentials stay opaque to the coordinator.
type Registry struct {
	Username    string `yaml:"username,omitempty"`     // Registry user. Empty falls back to ambient docker credentials.
	PasswordEnv string `yaml:"password_env,omitempty"` // Environment variable holding the password or token.
	Insecure    bool   `yaml:"insecure,omitempty"`     // Allow plain HTTP / skip TLS verification.
}

// Loads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Checks the configuration for completeness.
//
// Platform strings are parsed here so a malformed target fails the run
// before anything is dispatched.
func (c *Config) Validate() error {
	if c.Repository == "" {
		return fmt.Errorf("%w: repository", ErrMissingField)
	}
	if len(c.Platforms) == 0 {
		return fmt.Errorf("%w: platforms", ErrMissingField)
	}
	if _, err := platform.ParseAll(c.Platforms); err != nil {
		return err
	}

	switch c.Builder.Kind {
	case BuilderCommand:
		if len(c.Builder.Command) == 0 {
			return fmt.Errorf("%w: builder.command", ErrMissingField)
		}
		if c.Builder.MetadataDir == "" {
			return fmt.Errorf("%w: builder.metadata_dir", ErrMissingField)
		}
	case BuilderLayout:
		if c.Builder.LayoutDir == "" {
			return fmt.Errorf("%w: builder.layout_dir", ErrMissingField)
		}
	case BuilderContainerd:
		if c.Builder.Containerd.ImageDir == "" {
			return fmt.Errorf("%w: builder.containerd.image_dir", ErrMissingField)
		}
	case "":
		return fmt.Errorf("%w: builder.kind", ErrMissingField)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBuilder, c.Builder.Kind)
	}

	return nil
}

// Returns the ordered, normalized platform target list.
func (c *Config) Targets() ([]platform.Target, error) {
	return platform.ParseAll(c.Platforms)
}

// Returns the containerd socket address, defaulted.
func (c Containerd) SocketAddress() string {
	if c.Address == "" {
		return DefaultContainerdAddress
	}
	return c.Address
}

// Returns the containerd namespace, defaulted.
func (c Containerd) NamespaceName() string {
	if c.Namespace == "" {
		return DefaultContainerdNamespace
	}
	return c.Namespace
}

// Resolves the registry password from the configured environment variable.
//
// Returns an empty string when no variable is configured, leaving
// authentication to ambient credential helpers.
func (r Registry) Password() string {
	if r.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(r.PasswordEnv)
}
