package autostart

import "alumni-setup/internal/logger"

// TaskSchedulerSteps returns the manual instructions for creating the
// scheduled task. Paths use Windows separators regardless of the host.
func TaskSchedulerSteps(opts Options) []string {
	return []string{
		"Program: " + opts.Program,
		"Arguments: " + opts.WorkDir + `\` + opts.Entrypoint,
		"Working directory: " + opts.WorkDir,
		"Trigger: At system startup",
	}
}

func printTaskSchedulerSteps(opts Options) {
	logger.Warn("Windows autostart:")
	logger.Info("Create a scheduled task manually in the Task Scheduler:")
	for _, step := range TaskSchedulerSteps(opts) {
		logger.Info("  %s", step)
	}
}
