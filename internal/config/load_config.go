package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "install.yaml"

// MaxCohortSpan is the largest number of graduation years a configuration
// may seed. It catches typos such as "first: 0" before Years allocates.
const MaxCohortSpan = 200

// Default returns the built-in configuration: the values the platform
// has always been installed with.
func Default() Config {
	return Config{
		App: App{
			Name:        "datenerfassung",
			Description: "Ehemaligen Datenerfassung",
			Entrypoint:  "main.py",
			Port:        5000,
		},
		Runtime: Runtime{
			Interpreter: "python3",
			MinVersion:  "3.7",
		},
		Dependencies: []string{"flask"},
		Database: Database{
			Path:    "database.db",
			Cohorts: CohortRange{First: 2020, Last: 2030},
			Admin:   Admin{Username: "admin", Password: "password"},
		},
		Autostart: Autostart{
			Label:        "com.datenerfassung.app",
			ServicePath:  "/tmp/datenerfassung.service",
			LogPath:      "/tmp/datenerfassung.log",
			ErrorLogPath: "/tmp/datenerfassung-error.log",
		},
	}
}

// Load reads the YAML file at path and overlays it onto Default().
// A missing file is only an error when required is set, i.e. when the
// user named the file explicitly.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields the installer cannot work without.
func (c Config) Validate() error {
	for i, pkg := range c.Dependencies {
		if pkg == "" {
			return fmt.Errorf("dependency #%d has an empty name", i+1)
		}
	}
	if c.Runtime.Interpreter == "" {
		return errors.New("runtime.interpreter must be set")
	}
	if c.App.Entrypoint == "" {
		return errors.New("app.entrypoint must be set")
	}
	if c.Database.Path == "" {
		return errors.New("database.path must be set")
	}
	cohorts := c.Database.Cohorts
	if cohorts.Last < cohorts.First {
		return fmt.Errorf("cohort range %d..%d is inverted", cohorts.First, cohorts.Last)
	}
	// The difference is taken as unsigned so extreme values cannot overflow.
	if diff := uint64(int64(cohorts.Last) - int64(cohorts.First)); diff >= MaxCohortSpan {
		return fmt.Errorf("cohort range %d..%d spans more than %d years", cohorts.First, cohorts.Last, MaxCohortSpan)
	}
	if c.Database.Admin.Username == "" {
		return errors.New("database.admin.username must be set")
	}
	return nil
}

// DatabasePath resolves the database file against the working directory.
func (c Config) DatabasePath(workDir string) string {
	if filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(workDir, c.Database.Path)
}

// LoadEnvFile reads <workDir>/.env if present. Its variables are handed to
// the autostart artifact so the service sees the same environment as a
// manual start. A missing file yields an empty map.
func LoadEnvFile(workDir string) (map[string]string, error) {
	path := filepath.Join(workDir, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return env, nil
}
