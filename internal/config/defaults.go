package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Executor  ExecutorConfig  `json:"executor"`
	Project   ProjectConfig   `json:"project"`
	Lifecycle LifecycleConfig `json:"lifecycle"`
	Log       LogConfig       `json:"log"`
}

// Executor modes.
const (
	ModeHTTP  = "http"
	ModeLocal = "local"
)

// Reset policies.
const (
	ResetContinue = "continue"
	ResetAbort    = "abort"
)

type ExecutorConfig struct {
	// Remote execution endpoint
	Mode        string `json:"mode"`         // Default: "http"
	Endpoint    string `json:"endpoint"`     // Default: "http://localhost:8888"
	ExecutePath string `json:"execute_path"` // Default: "api/execute"
	Token       string `json:"token"`        // Default: "" (falls back to $KERNELENV_TOKEN)

	// Command execution
	TimeoutSeconds     int   `json:"timeout_seconds"`      // Default: 1800 (30 minutes)
	MaxOutputSize      int64 `json:"max_output_size"`      // Default: 10 * 1024 * 1024 (10MB)
	GracefulShutdownMs int   `json:"graceful_shutdown_ms"` // Default: 2000
}

type ProjectConfig struct {
	DefaultPythonVersion string   `json:"default_python_version"` // Default: "3.11"
	ConfigFile           string   `json:"config_file"`            // Default: ".env"
	ManifestFile         string   `json:"manifest_file"`          // Default: "requirements.in"
	LockFile             string   `json:"lock_file"`              // Default: "requirements.txt"
	IgnoreFile           string   `json:"ignore_file"`            // Default: ".gitignore"
	ManifestPackages     []string `json:"manifest_packages"`      // Default: numpy, pandas
}

type LifecycleConfig struct {
	ResetPolicy string `json:"reset_policy"` // Default: "continue"
}

type LogConfig struct {
	Level string `json:"level"` // Default: "info"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Executor: ExecutorConfig{
			Mode:               ModeHTTP,
			Endpoint:           "http://localhost:8888",
			ExecutePath:        "api/execute",
			TimeoutSeconds:     1800,
			MaxOutputSize:      10 * 1024 * 1024,
			GracefulShutdownMs: 2000,
		},
		Project: ProjectConfig{
			DefaultPythonVersion: "3.11",
			ConfigFile:           ".env",
			ManifestFile:         "requirements.in",
			LockFile:             "requirements.txt",
			IgnoreFile:           ".gitignore",
			ManifestPackages:     []string{"numpy", "pandas"},
		},
		Lifecycle: LifecycleConfig{
			ResetPolicy: ResetContinue,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
