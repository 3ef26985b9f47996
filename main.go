package main

import (
	"os"

	"alumni-setup/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution,
// and exits with the code it returns.
//
// alumni-setup provisions a host for the alumni data collection platform:
//   - Checks that the Python interpreter is recent enough (the only fatal check)
//   - Optionally unpacks a release bundle of the application into the working directory
//   - Installs the Python packages the application needs via pip
//   - Creates or upgrades the SQLite database and seeds cohorts and the default admin
//   - Writes a systemd unit or launchd agent, or prints Task Scheduler instructions
//
// Error handling strategy:
//   - Each step logs its own errors and the run continues with the next step,
//     failed steps are listed in the final summary
//   - An unmet version requirement, an interrupt or an unexpected error exit with status 1
func main() {
	os.Exit(cmd.Execute())
}
