// Package autostart renders the OS-specific artifact that starts the web
// application at boot or login. It never performs privileged operations:
// installing the artifact is left to the operator, who gets the exact
// commands printed.
package autostart

import (
	"os"
	"path/filepath"
	"sort"

	"alumni-setup/internal/logger"
)

// Options describes the application the artifact launches.
type Options struct {
	GOOS        string            // OS family, normally runtime.GOOS
	Program     string            // Absolute interpreter path
	Entrypoint  string            // Script relative to WorkDir, e.g. main.py
	WorkDir     string            // Absolute working directory of the application
	Env         map[string]string // Extra environment variables (.env)
	ServiceName string            // systemd unit name without suffix
	Description string
	User        string // systemd User=

	ServicePath string // Where the systemd unit is written

	Label        string // launchd label
	AgentDir     string // launchd per-user agent directory
	LogPath      string
	ErrorLogPath string
}

// Generate produces the autostart artifact for opts.GOOS. Autostart is best
// effort: failures are reported as warnings and Generate always returns true.
func Generate(opts Options) bool {
	logger.Info("Creating autostart task...")

	switch opts.GOOS {
	case "linux":
		generateSystemd(opts)
	case "darwin":
		generateLaunchAgent(opts)
	case "windows":
		printTaskSchedulerSteps(opts)
	default:
		logger.Warn("Autostart is not supported on %s", opts.GOOS)
	}
	return true
}

// DefaultUser is the account the systemd service runs as: the invoking
// user, or www-data when $USER is unset.
func DefaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "www-data"
}

// DefaultAgentDir returns ~/Library/LaunchAgents for the invoking user.
func DefaultAgentDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "LaunchAgents"), nil
}

// environment returns the variables every artifact exports, sorted by name.
// PYTHONPATH always points at the working directory and cannot be
// overridden by .env. Entries whose name or value spans several lines are
// skipped with a warning: no artifact format can carry them safely.
func (o Options) environment() [][2]string {
	vars := make([][2]string, 0, len(o.Env)+1)
	for k, v := range o.Env {
		if k == "PYTHONPATH" {
			continue
		}
		if hasLineBreak(k) || hasLineBreak(v) {
			logger.Warn("Skipping environment variable %q: value contains a line break", k)
			continue
		}
		vars = append(vars, [2]string{k, v})
	}
	vars = append(vars, [2]string{"PYTHONPATH", o.WorkDir})
	sort.Slice(vars, func(i, j int) bool { return vars[i][0] < vars[j][0] })
	return vars
}
