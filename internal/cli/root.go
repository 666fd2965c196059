package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/polyship/polyship/internal"
)

// Represents the root command for the polyship CLI.
var RootCmd struct {
	Quiet   bool       `short:"q" help:"Suppress informational output."`
	Verbose bool       `short:"v" help:"Enable verbose output."`
	Debug   bool       `short:"d" help:"Enable debug output."`
	Config  string     `short:"c" help:"Override the default configuration file path." placeholder:"PATH"`
	Publish PublishCmd `cmd:"" help:"Build all platforms and publish the manifest list."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Builds a container image for several platforms in parallel and publishes the results as one multi-architecture reference."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelWarn
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	})
	slog.SetDefault(slog.New(handler).With("app", internal.Name))
}
