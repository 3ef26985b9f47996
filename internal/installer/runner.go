package installer

import (
	"context"
	"os/exec"
	"strings"

	"alumni-setup/internal/logger"
)

// Runner invokes external programs. The installer never shells out
// directly so that steps can be exercised without a real package manager.
type Runner interface {
	// Run executes name with args and discards its stdout and stderr.
	Run(ctx context.Context, name string, args ...string) error
	// Output executes name with args and returns stdout and stderr combined.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner is the Runner backed by os/exec.
type ExecRunner struct{}

// Run implements Runner. A nil Stdout/Stderr on exec.Cmd connects the
// child to the null device.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	logger.Debug("Running command: %s", strings.Join(cmd.Args, " "))
	return cmd.Run()
}

// Output implements Runner.
func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	logger.Debug("Running command: %s", strings.Join(cmd.Args, " "))
	return cmd.CombinedOutput()
}
