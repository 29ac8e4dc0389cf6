package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludere/stepflow/internal/scheduler"
)

// Config holds all stepflow runtime configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	PackageDirs []string    `json:"package_dirs"`
	DBPath      string      `json:"db_path"` // empty disables the flight recorder
	LogLevel    string      `json:"log_level"`
	LogFormat   string      `json:"log_format"` // "text" or "json"
	Jobs        []jobConfig `json:"jobs"`
}

type jobConfig struct {
	Name     string `json:"name"`
	Package  string `json:"package"`
	Workflow string `json:"workflow"`
	Spec     string `json:"spec"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
	}
}

func stepflowDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stepflow"
	}
	return filepath.Join(home, ".stepflow")
}

func settingsPath() string {
	return filepath.Join(stepflowDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("STEPFLOW_PACKAGE_DIRS"); v != "" {
		cfg.PackageDirs = strings.Split(v, string(os.PathListSeparator))
	}
	if v := os.Getenv("STEPFLOW_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("STEPFLOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("STEPFLOW_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

func (c Config) schedulerJobs() []scheduler.Job {
	jobs := make([]scheduler.Job, 0, len(c.Jobs))
	for _, j := range c.Jobs {
		jobs = append(jobs, scheduler.Job{
			Name:     j.Name,
			Package:  j.Package,
			Workflow: j.Workflow,
			Spec:     j.Spec,
		})
	}
	return jobs
}
