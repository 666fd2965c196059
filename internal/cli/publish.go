package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/polyship/polyship/internal"
	"github.com/polyship/polyship/internal/builder"
	"github.com/polyship/polyship/internal/config"
	"github.com/polyship/polyship/internal/paths"
	"github.com/polyship/polyship/internal/registry"
	"github.com/polyship/polyship/internal/release"
	"github.com/polyship/polyship/internal/tags"
)

// Represents the 'polyship publish' command.
type PublishCmd struct {
	Commit   string `required:"" help:"Source commit identifier the run was triggered for." placeholder:"SHA"`
	Cause    string `help:"What triggered the run (push, schedule, manual). Defaults to manual." placeholder:"CAUSE"`
	Schedule string `help:"Schedule expression that fired, for scheduled runs." placeholder:"EXPR"`
}

// Executes the publish command.
//
// Loads the configuration, resolves the tag set from the trigger, and runs
// one build-and-publish cycle across all configured platforms. Prints the
// digest of the published manifest list on success.
func (c *PublishCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	targets, err := cfg.Targets()
	if err != nil {
		return err
	}

	cause, err := tags.ParseCause(c.Cause)
	if err != nil {
		return err
	}

	tagSet, err := tags.Resolve(tags.Trigger{
		Cause:    cause,
		Commit:   c.Commit,
		Schedule: c.Schedule,
	}, cfg.NightlySchedule)
	if err != nil {
		return err
	}

	client := registry.New(registry.Options{
		Repository: cfg.Repository,
		Username:   cfg.Registry.Username,
		Password:   cfg.Registry.Password(),
		Insecure:   cfg.Registry.Insecure,
		UserAgent:  internal.Name + "/" + internal.Version(),
	})
	defer client.Close(ctx)

	b, closeBuilder, err := newBuilder(cfg, client, tags.ShortCommit(c.Commit))
	if err != nil {
		return err
	}
	defer closeBuilder()

	result, err := release.Run(ctx, release.Options{
		Repository: cfg.Repository,
		Targets:    targets,
		Tags:       tagSet,
		Builder:    b,
		Publisher:  client,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.Digest)
	return nil
}

// Constructs the configured builder backend.
//
// The scratch prefix scopes per-platform content pushes to this run's
// commit. The returned closer releases backend connections; it is a no-op
// for backends without any.
func newBuilder(cfg *config.Config, client *registry.Client, prefix string) (builder.Builder, func(), error) {
	switch cfg.Builder.Kind {
	case config.BuilderCommand:
		return builder.NewCommand(cfg.Builder.Command, cfg.Builder.MetadataDir), func() {}, nil

	case config.BuilderLayout:
		return builder.NewLayout(client, cfg.Builder.LayoutDir, prefix), func() {}, nil

	case config.BuilderContainerd:
		cd := cfg.Builder.Containerd
		b, err := builder.NewContainerd(
			cd.SocketAddress(),
			cd.NamespaceName(),
			cd.ImageDir,
			cfg.Repository,
			prefix,
			builder.Credentials{
				Username: cfg.Registry.Username,
				Password: cfg.Registry.Password(),
				Insecure: cfg.Registry.Insecure,
			},
		)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := b.Close(); err != nil {
				slog.Warn("failed to close containerd connection", "error", err)
			}
		}
		return b, closer, nil
	}

	// Validate rejects unknown kinds before this is reached.
	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBuilder, cfg.Builder.Kind)
}

// Returns the configuration file path, preferring the --config flag.
func configPath() string {
	if RootCmd.Config != "" {
		return RootCmd.Config
	}
	return paths.Config()
}
