// internal/pipeline/pipeline.go
//
// Sequential orchestration of a single build run: resolve the version,
// check the docker requirement, ensure the builder context, dispatch
// exactly one bake invocation. Each step runs to completion before the
// next starts; nothing here is concurrent.

package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"demobake/internal/bake"
	"demobake/internal/builder"
	"demobake/internal/executil"
	"demobake/internal/gitver"
)

// ConfigError marks a failure only operator action can fix: missing or
// ambiguous tags, an unusable builder, a failed backend build. The top
// level maps it to the generic error exit code.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// Options are the fixed knobs of one invocation, resolved once from
// flags plus environment overrides and never mutated.
type Options struct {
	Mode      bake.Mode
	RepoDir   string
	Builder   string
	BakeFile  string
	Target    string
	Platforms []string
}

// OptionsFromEnv applies the environment overrides on top of the fixed
// defaults.
func OptionsFromEnv(mode bake.Mode, repoDir string) Options {
	return Options{
		Mode:      mode,
		RepoDir:   repoDir,
		Builder:   getenv("DEMOBAKE_BUILDER", builder.DefaultName),
		BakeFile:  getenv("DEMOBAKE_BAKE_FILE", bake.DefaultFile),
		Target:    getenv("DEMOBAKE_TARGET", bake.DefaultTarget),
		Platforms: builder.DefaultPlatforms,
	}
}

// Pipeline wires the steps to their collaborators. Tags is swappable so
// scenario tests can run without a real checkout.
type Pipeline struct {
	Run  executil.Runner
	Tags func(dir string) ([]string, error)
}

func New(run executil.Runner) *Pipeline {
	return &Pipeline{Run: run, Tags: gitver.Tags}
}

// Execute runs the whole pipeline once. Any returned *ConfigError is an
// operator problem; other errors are unclassified faults.
func (p *Pipeline) Execute(ctx context.Context, opts Options) error {
	version := gitver.Local
	if opts.Mode.TagVersioned() {
		tags, err := p.Tags(opts.RepoDir)
		if err != nil {
			return &ConfigError{fmt.Errorf("list tags: %w", err)}
		}
		version, err = gitver.Resolve(tags)
		if err != nil {
			return &ConfigError{err}
		}
	}
	log.Info().Str("mode", opts.Mode.String()).Str("version", version).Msg("resolved version")

	if err := p.Run.Run(ctx, "docker", "buildx", "version"); err != nil {
		return &ConfigError{fmt.Errorf("could not verify that 'docker buildx' is available: %w", err)}
	}

	if err := builder.Ensure(ctx, p.Run, opts.Builder, opts.Platforms); err != nil {
		return &ConfigError{err}
	}

	if err := bake.Dispatch(ctx, p.Run, bake.Options{
		Builder: opts.Builder,
		File:    opts.BakeFile,
		Target:  opts.Target,
		Mode:    opts.Mode,
		Version: version,
	}); err != nil {
		return &ConfigError{err}
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
