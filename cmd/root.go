package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"alumni-setup/internal/config"
	"alumni-setup/internal/logger"
	"alumni-setup/internal/orchestrator"
)

// debug flag indicates whether debug logging should be enabled.
var debug bool

// configPath holds the path to the installer configuration YAML file.
var configPath string

// workDir is the application directory: database, service working
// directory and bundle destination are all relative to it.
var workDir string

// errAborted marks a failed precondition; the message was already printed.
var errAborted = errors.New("installation aborted")

// rootCmd runs the complete installation when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "alumni-setup",
	Short: "Installer for the alumni data collection platform",
	Long: `alumni-setup installs the Python dependencies of the alumni data collection
platform, creates or upgrades its SQLite database and generates an autostart
artifact for the current operating system.`,
	SilenceUsage:  true,
	SilenceErrors: true,

	// PersistentPreRun runs before any subcommand and sets up logging.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}

		logger.Header("ALUMNI DATA COLLECTION INSTALLATION")
		logger.Info("Welcome to the installation of the alumni data collection platform!")
		logger.Info("This installer sets up dependencies and the database")
		logger.Info("and creates an autostart task.")

		rt, err := env.checkRuntime(cmd.Context())
		if err != nil {
			return err
		}

		// Run every step; failures are collected, not fatal
		summary := orchestrator.Run(cmd.Context(), env.steps(rt.Path))
		// An interrupted run ends without a summary
		if cmd.Context().Err() != nil {
			return cmd.Context().Err()
		}
		orchestrator.PrintSummary(summary, env.guidance())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "w", ".", "Application directory")
}

// Execute runs the CLI and returns the process exit code. SIGINT and
// SIGTERM cancel the run.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return executeContext(ctx)
}

// executeContext runs the root command with ctx and maps the outcome to an
// exit code. Only a failed precondition, a cancelled ctx or an unexpected
// error (including a panic) yield 1; failed steps are reported in the
// summary and still exit 0.
func executeContext(ctx context.Context) (code int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unexpected error: %v", r)
			code = 1
		}
	}()

	// Parse the flags and run the selected command with ctx
	err := rootCmd.ExecuteContext(ctx)
	switch {
	case ctx.Err() != nil:
		logger.Error("Installation aborted!")
		return 1
	case errors.Is(err, errAborted):
		return 1
	case err != nil:
		logger.Error("Unexpected error: %v", err)
		return 1
	}
	return 0
}
