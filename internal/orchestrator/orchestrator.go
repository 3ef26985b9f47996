// Package orchestrator runs the installation steps in order and
// collects the ones that failed. No step blocks a later one.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"alumni-setup/internal/logger"
)

// Step is one unit of the installation. Run reports success; steps log
// their own errors.
type Step struct {
	Name string
	Run  func(ctx context.Context) bool
}

// Summary is the terminal state of a run.
type Summary struct {
	Completed []string
	Failed    []string
}

// OK reports whether every step succeeded.
func (s Summary) OK() bool { return len(s.Failed) == 0 }

// Run executes steps in order. A failed step, or a panicking one, is
// recorded and the next step still runs. Run stops early only when ctx
// is cancelled (interrupt); the remaining steps are then not attempted.
func Run(ctx context.Context, steps []Step) Summary {
	var s Summary
	for _, step := range steps {
		// An interrupt stops the run between steps; the current step has
		// already seen the cancelled context through its own calls
		if ctx.Err() != nil {
			logger.Debug("Context cancelled, skipping %s", step.Name)
			break
		}
		logger.Info("Running: %s", step.Name)
		if runStep(ctx, step) {
			s.Completed = append(s.Completed, step.Name)
		} else {
			s.Failed = append(s.Failed, step.Name)
		}
	}
	return s
}

// runStep recovers a panicking step and records it as failed.
func runStep(ctx context.Context, step Step) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("%s failed unexpectedly: %v", step.Name, r)
			ok = false
		}
	}()
	return step.Run(ctx)
}

// Guidance is what the operator is told after the run.
type Guidance struct {
	Interpreter   string
	Entrypoint    string
	Port          int
	AdminUsername string
	AdminPassword string
}

// PrintSummary prints the final report. The default admin password is
// always flagged since the seed credential is publicly known.
func PrintSummary(s Summary, g Guidance) {
	logger.Header("INSTALLATION FINISHED")

	// Everything worked: tell the operator how to start and log in
	if s.OK() {
		logger.Success("Installation completed successfully!")
		logger.Plain("")
		logger.Info("The application is ready:")
		for _, name := range s.Completed {
			logger.Plain("   • %s", name)
		}
		logger.Plain("")
		logger.Info("Manual steps:")
		base := fmt.Sprintf("http://localhost:%d", g.Port)
		logger.Plain("   1. Start the application: %s %s", g.Interpreter, g.Entrypoint)
		logger.Plain("   2. Open %s", base)
		logger.Plain("   3. Admin login: %s/admin", base)
		logger.Plain("   4. Default credentials: %s / %s", g.AdminUsername, g.AdminPassword)
		logger.Plain("")
		logger.Warn("IMPORTANT: change the admin password after the first login!")
		return
	}

	// At least one step failed: list them and suggest a re-run, which is
	// safe because every step is idempotent
	logger.Error("Installation partially failed!")
	logger.Plain("   Failed steps: %s", strings.Join(s.Failed, ", "))
	logger.Plain("")
	logger.Warn("The application may still work.")
	logger.Info("Check the error messages above and run the installer again.")
}
