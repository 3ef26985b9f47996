package installer

import (
	"context"

	"alumni-setup/internal/logger"
)

// InstallDependencies installs every package through "<interpreter> -m pip install".
// The interpreter is the absolute path found by CheckRuntime, so pip always
// installs into the same Python that will later run the application.
//
// Packages are independent of each other: a failed install is reported with
// the package name and the next package is still attempted. The function
// returns true only if every install succeeded; the caller records the
// step as failed otherwise, without aborting the installation.
func InstallDependencies(ctx context.Context, r Runner, interpreter string, packages []string) bool {
	logger.Info("Installing Python dependencies...")
	logger.Debug("Installing %d packages with %s", len(packages), interpreter)

	ok := true // Flips to false on the first failure, but the loop keeps going
	for _, pkg := range packages {
		// pip's own output is discarded by the Runner, only the outcome is reported
		if err := r.Run(ctx, interpreter, "-m", "pip", "install", pkg); err != nil {
			logger.Error("Failed to install package '%s': %v", pkg, err)
			ok = false
			continue
		}
		logger.Success("Package '%s' installed", pkg)
	}
	return ok
}
