// internal/bake/bake.go
//
// Turns a build mode plus a resolved version into the single backend
// invocation: docker buildx bake with mode-specific flags and the
// version exported through the environment. The bake file itself is
// opaque here; the backend owns its contents.

package bake

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"demobake/internal/executil"
)

// VersionEnv is the environment variable the bake file interpolates to
// tag and label the images it produces.
const VersionEnv = "VERSION"

const (
	DefaultFile   = "deploy/docker-bake.json"
	DefaultTarget = "demo"
)

var ErrBuildFailed = errors.New("build failed")

// Mode is a closed variant selecting the pipeline behavior. Each value
// carries its own parameter bundle so a future third mode cannot fall
// through to wrong defaults.
type Mode struct {
	name         string
	push         bool // --push vs --load
	nativeOnly   bool // clear the declared platform list for local testing
	tagVersioned bool // version comes from repo tags instead of the sentinel
}

// Local builds the invoking host's platform only and loads the image
// into the local engine under the throwaway version.
func Local() Mode {
	return Mode{name: "local", nativeOnly: true}
}

// Publish builds every platform the bake file declares and pushes the
// results, versioned from source control.
func Publish() Mode {
	return Mode{name: "publish", push: true, tagVersioned: true}
}

func (m Mode) String() string { return m.name }

// TagVersioned reports whether the version must be resolved from tags.
func (m Mode) TagVersioned() bool { return m.tagVersioned }

// Options describe one dispatch. Produced fresh per run, never reused.
type Options struct {
	Builder string
	File    string
	Target  string
	Mode    Mode
	Version string
}

// Plan materializes the backend command line and environment for the
// given options.
func Plan(o Options) (args []string, env map[string]string) {
	args = []string{"buildx", "bake", "--builder", o.Builder, "--file", o.File}
	if o.Mode.push {
		args = append(args, "--push")
	}
	if o.Mode.nativeOnly {
		// An empty platform override drops the declared list, so the
		// backend falls back to the host's native platform.
		args = append(args, "--load", "--set", o.Target+".platform=")
	}
	args = append(args, o.Target)
	env = map[string]string{VersionEnv: o.Version}
	return args, env
}

// Dispatch delegates the single build invocation to the backend. The
// exit status is the only signal; backend output is not interpreted.
func Dispatch(ctx context.Context, run executil.Runner, o Options) error {
	args, env := Plan(o)
	log.Info().
		Str("mode", o.Mode.String()).
		Str("target", o.Target).
		Str("version", o.Version).
		Msg("dispatching build")
	if err := run.RunEnv(ctx, env, "docker", args...); err != nil {
		return fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	return nil
}
