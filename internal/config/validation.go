package config

import (
	"fmt"
	"regexp"
)

var pythonVersionPattern = regexp.MustCompile(`^\d+\.\d+$`)

// ValidPythonVersion reports whether v looks like "3.11".
func ValidPythonVersion(v string) bool {
	return pythonVersionPattern.MatchString(v)
}

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	// Executor validation
	switch c.Executor.Mode {
	case ModeHTTP:
		if c.Executor.Endpoint == "" {
			errs = append(errs, "executor.endpoint is required in http mode")
		}
		if c.Executor.ExecutePath == "" {
			errs = append(errs, "executor.execute_path is required in http mode")
		}
	case ModeLocal:
	default:
		errs = append(errs, fmt.Sprintf("executor.mode must be %q or %q", ModeHTTP, ModeLocal))
	}
	if c.Executor.TimeoutSeconds < 1 {
		errs = append(errs, "executor.timeout_seconds must be >= 1")
	}
	if c.Executor.MaxOutputSize < 1 {
		errs = append(errs, "executor.max_output_size must be >= 1")
	}
	if c.Executor.GracefulShutdownMs < 1 {
		errs = append(errs, "executor.graceful_shutdown_ms must be >= 1")
	}

	// Project validation
	if !ValidPythonVersion(c.Project.DefaultPythonVersion) {
		errs = append(errs, "project.default_python_version must look like 3.11")
	}
	if c.Project.ConfigFile == "" {
		errs = append(errs, "project.config_file is required")
	}
	if c.Project.ManifestFile == "" {
		errs = append(errs, "project.manifest_file is required")
	}
	if c.Project.LockFile == "" {
		errs = append(errs, "project.lock_file is required")
	}
	if c.Project.IgnoreFile == "" {
		errs = append(errs, "project.ignore_file is required")
	}

	if c.Lifecycle.ResetPolicy != ResetContinue && c.Lifecycle.ResetPolicy != ResetAbort {
		errs = append(errs, fmt.Sprintf("lifecycle.reset_policy must be %q or %q", ResetContinue, ResetAbort))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "log.level must be one of debug, info, warn, error")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
