// demobake main entrypoint
//
// Single-shot build orchestrator for the demo application image. It
// resolves a version from the checkout's tags, makes sure the
// multi-platform builder context exists, then hands the actual build
// to docker buildx bake: load locally by default, push to the registry
// with --push.
//
// Keep this file simple: flags, logging, signal wiring, exit codes.
// The pipeline logic stays internal.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"demobake/internal/bake"
	"demobake/internal/executil"
	"demobake/internal/pipeline"
)

const (
	exitOK          = 0
	exitConfigError = 1
	exitInterrupted = 2
)

var cli struct {
	Push   bool   `help:"Build every declared platform and push the images to the registry. Requires exactly one git tag."`
	DryRun bool   `help:"Print the backend commands without executing them."`
	Debug  bool   `short:"d" help:"Enable debug output."`
	Quiet  bool   `short:"q" help:"Suppress informational output."`
	Repo   string `short:"C" default:"." placeholder:"DIR" help:"Repository checkout whose tags version the build."`
}

func main() {
	os.Exit(run())
}

func run() int {
	// Local overrides for dev runs; harmless in CI.
	_ = godotenv.Load()

	kong.Parse(&cli,
		kong.Name("demobake"),
		kong.Description("Builds the demo application image for local testing or publishes it to the registry."),
		kong.UsageOnError(),
	)

	configureLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode := bake.Local()
	if cli.Push {
		mode = bake.Publish()
	}

	p := pipeline.New(executil.New(cli.DryRun))
	err := p.Execute(ctx, pipeline.OptionsFromEnv(mode, cli.Repo))

	code := exitCode(ctx, err)
	switch code {
	case exitInterrupted:
		fmt.Fprintln(os.Stderr, "interrupted")
	case exitConfigError:
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return code
}

// exitCode maps a pipeline result onto the process exit contract:
// 0 success, 1 configuration/user error, 2 operator interrupt.
func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return exitOK
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	// Unclassified faults also land here: the error chain is printed
	// verbatim rather than masked.
	return exitConfigError
}

func configureLogger() {
	level := zerolog.InfoLevel
	if cli.Debug {
		level = zerolog.DebugLevel
	} else if cli.Quiet {
		level = zerolog.WarnLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Logger()
}
