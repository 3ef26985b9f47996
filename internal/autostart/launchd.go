package autostart

import (
	"fmt"
	"os"
	"path/filepath"

	"howett.net/plist"

	"alumni-setup/internal/logger"
)

// LaunchAgent is the launchd property list of the application.
type LaunchAgent struct {
	Label                string            `plist:"Label"`
	ProgramArguments     []string          `plist:"ProgramArguments"`
	WorkingDirectory     string            `plist:"WorkingDirectory"`
	EnvironmentVariables map[string]string `plist:"EnvironmentVariables,omitempty"`
	RunAtLoad            bool              `plist:"RunAtLoad"`
	KeepAlive            bool              `plist:"KeepAlive"`
	StandardOutPath      string            `plist:"StandardOutPath"`
	StandardErrorPath    string            `plist:"StandardErrorPath"`
}

// NewLaunchAgent builds the agent description for opts.
// The entrypoint is passed as an absolute path because launchd does not
// resolve program arguments against WorkingDirectory.
func NewLaunchAgent(opts Options) LaunchAgent {
	// Flatten the sorted variables into the dictionary launchd expects
	env := make(map[string]string)
	for _, kv := range opts.environment() {
		env[kv[0]] = kv[1]
	}
	return LaunchAgent{
		Label:                opts.Label,
		ProgramArguments:     []string{opts.Program, filepath.Join(opts.WorkDir, opts.Entrypoint)},
		WorkingDirectory:     opts.WorkDir,
		EnvironmentVariables: env,
		RunAtLoad:            true,
		KeepAlive:            true,
		StandardOutPath:      opts.LogPath,
		StandardErrorPath:    opts.ErrorLogPath,
	}
}

// RenderLaunchAgent returns the XML property list for opts.
func RenderLaunchAgent(opts Options) ([]byte, error) {
	return plist.MarshalIndent(NewLaunchAgent(opts), plist.XMLFormat, "\t")
}

// LaunchAgentPath is the file the agent for opts is written to.
func LaunchAgentPath(opts Options) string {
	return filepath.Join(opts.AgentDir, opts.Label+".plist")
}

// generateLaunchAgent writes the per-user agent and prints the launchctl
// commands that activate it. Loading the agent is left to the user.
func generateLaunchAgent(opts Options) {
	if err := writeLaunchAgent(opts); err != nil {
		logger.Warn("macOS LaunchAgent could not be created: %v", err)
		return
	}

	path := LaunchAgentPath(opts)
	logger.Success("macOS LaunchAgent created: %s", path)
	logger.Warn("Run the following commands:")
	logger.Info("  launchctl load %s", path)
	logger.Info("  launchctl start %s", opts.Label)
}

func writeLaunchAgent(opts Options) error {
	// Without a home directory there is nowhere to put the agent
	if opts.AgentDir == "" {
		return fmt.Errorf("no LaunchAgents directory")
	}
	data, err := RenderLaunchAgent(opts)
	if err != nil {
		return fmt.Errorf("failed to render property list: %w", err)
	}
	// ~/Library/LaunchAgents does not exist on a fresh account
	if err := os.MkdirAll(opts.AgentDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", opts.AgentDir, err)
	}
	return writeFileAtomic(LaunchAgentPath(opts), data, 0644)
}
