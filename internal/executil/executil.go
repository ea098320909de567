// internal/executil/executil.go
package executil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Runner abstracts subprocess execution so the build steps can be
// exercised with fakes in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
	RunEnv(ctx context.Context, extraEnv map[string]string, name string, args ...string) error
}

// Exec runs commands with inherited stdout/stderr. With DryRun set it
// prints the command that would run and reports success.
type Exec struct {
	DryRun bool
}

func New(dryRun bool) *Exec {
	return &Exec{DryRun: dryRun}
}

func (e *Exec) Run(ctx context.Context, name string, args ...string) error {
	return e.RunEnv(ctx, nil, name, args...)
}

// RunEnv executes the command with extraEnv appended to the inherited
// environment. The child shares the terminal, so its output streams
// directly to the operator.
func (e *Exec) RunEnv(ctx context.Context, extraEnv map[string]string, name string, args ...string) error {
	full := name + " " + QuoteArgs(args)

	if e.DryRun {
		fmt.Printf("[dry-run] %s\n", full)
		return nil
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	for k, v := range extraEnv {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	log.Debug().Str("cmd", full).Msg("running")
	if err := cmd.Run(); err != nil {
		// A cancelled context kills the child, which then reports a
		// signal exit; the interruption is the real cause.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("command interrupted: %s: %w", full, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("command failed (exit=%d): %s", exitErr.ExitCode(), full)
		}
		return fmt.Errorf("failed to run command: %s: %w", full, err)
	}
	return nil
}

// QuoteArgs returns a printable, shell-safe representation of args so
// operators can copy-paste the exact invocation.
func QuoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n\"'`$\\*?[]{}()<>|&;") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}
