package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"alumni-setup/internal/autostart"
	"alumni-setup/internal/config"
	"alumni-setup/internal/database"
	"alumni-setup/internal/installer"
	"alumni-setup/internal/logger"
	"alumni-setup/internal/orchestrator"
)

// Step names as shown in the summary.
const (
	stepBundle    = "Unpack application bundle"
	stepDeps      = "Install Python dependencies"
	stepDatabase  = "Initialize database"
	stepAutostart = "Create autostart task"
)

// environment bundles everything a command needs to build its steps.
type environment struct {
	cfg     config.Config
	workDir string
	runner  installer.Runner
	goos    string
}

// newRunner returns the Runner used to invoke the interpreter. Tests
// replace it to avoid calling a real pip.
var newRunner = func() installer.Runner { return installer.ExecRunner{} }

// loadEnvironment reads the configuration and resolves the working directory.
// A config file named explicitly with --config must exist.
func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	cfg, err := config.Load(configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve working directory %s: %w", workDir, err)
	}
	logger.Debug("Using working directory %s", dir)
	return &environment{cfg: cfg, workDir: dir, runner: newRunner(), goos: runtime.GOOS}, nil
}

// checkRuntime is the version gate. Its failure aborts before any mutation.
func (e *environment) checkRuntime(ctx context.Context) (installer.Runtime, error) {
	rt, err := installer.CheckRuntime(ctx, e.runner, e.cfg.Runtime.Interpreter, e.cfg.Runtime.MinVersion)
	if err != nil {
		logger.Error("%v", err)
		return rt, errAborted
	}
	return rt, nil
}

// steps returns the installation steps in their fixed order. The bundle
// step only exists when a bundle is configured.
func (e *environment) steps(program string) []orchestrator.Step {
	var steps []orchestrator.Step
	if e.cfg.Bundle != "" {
		steps = append(steps, orchestrator.Step{Name: stepBundle, Run: e.unpackBundle})
	}
	return append(steps,
		orchestrator.Step{Name: stepDeps, Run: func(ctx context.Context) bool { return e.installDependencies(ctx, program) }},
		orchestrator.Step{Name: stepDatabase, Run: e.setupDatabase},
		orchestrator.Step{Name: stepAutostart, Run: func(ctx context.Context) bool { return e.createAutostart(program) }},
	)
}

func (e *environment) unpackBundle(ctx context.Context) bool {
	return installer.UnpackBundle(ctx, e.cfg.Bundle, e.workDir)
}

func (e *environment) installDependencies(ctx context.Context, program string) bool {
	return installer.InstallDependencies(ctx, e.runner, program, e.cfg.Dependencies)
}

func (e *environment) setupDatabase(ctx context.Context) bool {
	db := e.cfg.Database
	return database.Setup(ctx, e.cfg.DatabasePath(e.workDir), database.Options{
		CohortYears:   db.Cohorts.Years(),
		AdminUsername: db.Admin.Username,
		AdminPassword: db.Admin.Password,
	})
}

func (e *environment) createAutostart(program string) bool {
	return autostart.Generate(e.autostartOptions(program))
}

// autostartOptions fills the unset autostart fields with host defaults.
func (e *environment) autostartOptions(program string) autostart.Options {
	a := e.cfg.Autostart

	env, err := config.LoadEnvFile(e.workDir)
	if err != nil {
		logger.Warn("Ignoring .env: %v", err)
		env = map[string]string{}
	}

	user := a.User
	if user == "" {
		user = autostart.DefaultUser()
	}
	agentDir := a.AgentDir
	if agentDir == "" && e.goos == "darwin" {
		if agentDir, err = autostart.DefaultAgentDir(); err != nil {
			logger.Warn("Cannot determine home directory: %v", err)
		}
	}

	return autostart.Options{
		GOOS:         e.goos,
		Program:      program,
		Entrypoint:   e.cfg.App.Entrypoint,
		WorkDir:      e.workDir,
		Env:          env,
		ServiceName:  e.cfg.App.Name,
		Description:  e.cfg.App.Description,
		User:         user,
		ServicePath:  a.ServicePath,
		Label:        a.Label,
		AgentDir:     agentDir,
		LogPath:      a.LogPath,
		ErrorLogPath: a.ErrorLogPath,
	}
}

func (e *environment) guidance() orchestrator.Guidance {
	return orchestrator.Guidance{
		Interpreter:   e.cfg.Runtime.Interpreter,
		Entrypoint:    e.cfg.App.Entrypoint,
		Port:          e.cfg.App.Port,
		AdminUsername: e.cfg.Database.Admin.Username,
		AdminPassword: e.cfg.Database.Admin.Password,
	}
}
