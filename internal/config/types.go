package config

// Config is the top-level structure returned after loading install.yaml.
// Every field has a default (see Default), so the file only needs to name
// what differs on a given host.
type Config struct {
	App          App       `yaml:"app"`
	Runtime      Runtime   `yaml:"runtime"`
	Dependencies []string  `yaml:"dependencies"`
	Bundle       string    `yaml:"bundle"` // Optional release archive unpacked into the working directory
	Database     Database  `yaml:"database"`
	Autostart    Autostart `yaml:"autostart"`
}

// App describes the web application being installed.
type App struct {
	Name        string `yaml:"name"`        // Service name, e.g. datenerfassung
	Description string `yaml:"description"` // Human readable name used in unit files
	Entrypoint  string `yaml:"entrypoint"`  // Script started by the interpreter, relative to the working directory
	Port        int    `yaml:"port"`
}

// Runtime is the interpreter the application runs on.
// - Interpreter: name or path of the executable (python3).
// - MinVersion: lowest accepted version, "major.minor[.patch]".
type Runtime struct {
	Interpreter string `yaml:"interpreter"`
	MinVersion  string `yaml:"min_version"`
}

// Database configures the local SQLite file and its seed rows.
type Database struct {
	Path    string      `yaml:"path"` // Relative paths are resolved against the working directory
	Cohorts CohortRange `yaml:"cohorts"`
	Admin   Admin       `yaml:"admin"`
}

// CohortRange is an inclusive range of graduation years.
type CohortRange struct {
	First int `yaml:"first"`
	Last  int `yaml:"last"`
}

// Years returns every year of the range in ascending order.
func (r CohortRange) Years() []int {
	if r.Last < r.First {
		return nil
	}
	years := make([]int, 0, r.Last-r.First+1)
	for y := r.First; y <= r.Last; y++ {
		years = append(years, y)
	}
	return years
}

// Admin is the default administrator seeded on first install.
type Admin struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Autostart holds the paths and names used by the generated autostart artifact.
type Autostart struct {
	Label        string `yaml:"label"`          // launchd label, e.g. com.datenerfassung.app
	User         string `yaml:"user"`           // systemd User=, defaults to $USER or www-data
	ServicePath  string `yaml:"service_path"`   // Where the systemd unit is written before the operator moves it
	AgentDir     string `yaml:"agent_dir"`      // launchd agent directory, defaults to ~/Library/LaunchAgents
	LogPath      string `yaml:"log_path"`       // launchd StandardOutPath
	ErrorLogPath string `yaml:"error_log_path"` // launchd StandardErrorPath
}
