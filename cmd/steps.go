package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"alumni-setup/internal/logger"
	"alumni-setup/internal/orchestrator"
)

// depsCmd installs only the Python dependencies.
var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Install only the Python dependencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}
		rt, err := env.checkRuntime(cmd.Context())
		if err != nil {
			return err
		}
		return report(orchestrator.Run(cmd.Context(), []orchestrator.Step{{Name: stepDeps, Run: func(ctx context.Context) bool {
			return env.installDependencies(ctx, rt.Path)
		}}}))
	},
}

// dbCmd creates or upgrades the database only. It needs no interpreter.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Create or upgrade the database and seed default rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}
		return report(orchestrator.Run(cmd.Context(), []orchestrator.Step{{Name: stepDatabase, Run: env.setupDatabase}}))
	},
}

// autostartCmd generates only the autostart artifact.
var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Generate the autostart artifact for this operating system",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}
		rt, err := env.checkRuntime(cmd.Context())
		if err != nil {
			return err
		}
		return report(orchestrator.Run(cmd.Context(), []orchestrator.Step{{Name: stepAutostart, Run: func(context.Context) bool {
			return env.createAutostart(rt.Path)
		}}}))
	},
}

// report logs the outcome of a single-step command. Like the full
// install, a failed step does not change the exit code.
func report(s orchestrator.Summary) error {
	if !s.OK() {
		logger.Warn("Failed: %s", strings.Join(s.Failed, ", "))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(autostartCmd)
}
