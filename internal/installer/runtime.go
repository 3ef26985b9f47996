package installer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"

	"golang.org/x/mod/semver"

	"alumni-setup/internal/logger"
)

// ErrVersionTooOld is returned when the interpreter is older than required.
var ErrVersionTooOld = errors.New("runtime version too old")

// versionPattern matches the first "X.Y" or "X.Y.Z" in interpreter output,
// e.g. "Python 3.12.1" or "Python 3.13.0rc1".
var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// Runtime is the interpreter found by CheckRuntime.
type Runtime struct {
	Path    string // Absolute path of the interpreter executable
	Version string // Detected version, "X.Y.Z"
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// CheckRuntime locates interpreter, asks it for its version and compares
// it with minVersion. It is the only precondition of the installation:
// any failure here (interpreter missing, unreadable version, too old)
// aborts the run before anything on disk is touched.
//
// On success the returned Runtime carries the absolute interpreter path,
// which every later step uses instead of the bare name from the config.
func CheckRuntime(ctx context.Context, r Runner, interpreter, minVersion string) (Runtime, error) {
	logger.Info("Checking Python version...")

	// Resolve the interpreter the same way a shell would, via $PATH
	path, err := lookPath(interpreter)
	if err != nil {
		return Runtime{}, fmt.Errorf("interpreter %q not found: %w", interpreter, err)
	}
	logger.Debug("Found interpreter at %s", path)

	// Python 2 printed its version on stderr, so read both streams
	out, err := r.Output(ctx, path, "--version")
	if err != nil {
		return Runtime{}, fmt.Errorf("failed to query version of %s: %w", path, err)
	}
	version, err := ParseVersion(string(out))
	if err != nil {
		return Runtime{}, err
	}
	minimum, err := ParseVersion(minVersion)
	if err != nil {
		return Runtime{}, fmt.Errorf("invalid minimum version: %w", err)
	}

	rt := Runtime{Path: path, Version: version}
	if CompareVersions(version, minimum) < 0 {
		return rt, fmt.Errorf("%w: Python %s or newer is required, found %s", ErrVersionTooOld, minimum, version)
	}
	logger.Success("Python version OK: %s", version)
	return rt, nil
}

// ParseVersion extracts a normalized "X.Y.Z" version from s.
func ParseVersion(s string) (string, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("no version number in %q", s)
	}
	patch := m[3]
	if patch == "" {
		patch = "0"
	}
	v := fmt.Sprintf("%s.%s.%s", m[1], m[2], patch)
	if !semver.IsValid("v" + v) {
		return "", fmt.Errorf("invalid version %q", v)
	}
	return v, nil
}

// CompareVersions compares two versions returned by ParseVersion.
// The result is -1, 0 or +1 like strings.Compare.
func CompareVersions(a, b string) int {
	return semver.Compare("v"+a, "v"+b)
}
