// internal/builder/builder.go
//
// Guarantees that a named multi-platform buildx builder is selectable
// before a build is dispatched. Selection failure triggers exactly one
// creation attempt; a builder that is still unselectable afterwards is
// an environment problem, not something to retry.

package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"demobake/internal/executil"
)

// DefaultName is the builder context demobake owns. It persists in the
// backend's own state across invocations.
const DefaultName = "demo-multiarch"

// DefaultPlatforms is the fixed platform set a publish build targets.
var DefaultPlatforms = []string{"linux/amd64", "linux/arm64"}

var ErrUnusable = errors.New("builder context is not usable for multi-platform builds")

type state int

const (
	stateUnknown state = iota
	stateReady
	stateFatal
)

// Ensure walks the Unknown → Ready | Fatal machine: select the builder
// by name, create it once if selection fails, then select again. The
// loop shape keeps the single-creation guarantee structural.
func Ensure(ctx context.Context, run executil.Runner, name string, platforms []string) error {
	st := stateUnknown
	created := false
	var lastErr error

	for st == stateUnknown {
		if err := use(ctx, run, name); err == nil {
			st = stateReady
			continue
		} else {
			lastErr = err
		}
		if created {
			st = stateFatal
			continue
		}
		log.Info().Str("builder", name).Msg("builder not selectable, creating it")
		if err := create(ctx, run, name, platforms); err != nil {
			lastErr = err
			st = stateFatal
			continue
		}
		created = true
	}

	if st == stateFatal {
		return fmt.Errorf("builder context %q: %w: %v", name, ErrUnusable, lastErr)
	}
	log.Debug().Str("builder", name).Msg("builder ready")
	return nil
}

func use(ctx context.Context, run executil.Runner, name string) error {
	return run.Run(ctx, "docker", "buildx", "use", name)
}

func create(ctx context.Context, run executil.Runner, name string, platforms []string) error {
	return run.Run(ctx, "docker", "buildx", "create",
		"--name", name,
		"--driver", "docker-container",
		"--platform", strings.Join(platforms, ","),
	)
}
