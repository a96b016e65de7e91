package config

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFileSystem implements FileSystem for testing.
type MockFileSystem struct {
	HomeDir     string
	HomeDirErr  error
	Files       map[string][]byte
	ReadFileErr error
	Env         map[string]string
}

func (m *MockFileSystem) UserHomeDir() (string, error) {
	return m.HomeDir, m.HomeDirErr
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileErr != nil {
		return nil, m.ReadFileErr
	}
	data, ok := m.Files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (m *MockFileSystem) Getenv(key string) string {
	return m.Env[key]
}

const testConfigPath = "/home/user/.config/kernelenv/config.json"

// --- HAPPY PATH TESTS ---

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, ModeHTTP, cfg.Executor.Mode)
	assert.Equal(t, "3.11", cfg.Project.DefaultPythonVersion)
	assert.Equal(t, ".env", cfg.Project.ConfigFile)
	assert.Equal(t, ResetContinue, cfg.Lifecycle.ResetPolicy)
}

func TestLoad_PartialOverride_MergesWithDefaults(t *testing.T) {
	configJSON := `{"executor": {"endpoint": "http://jupyter:9999"}, "lifecycle": {"reset_policy": "abort"}}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			testConfigPath: []byte(configJSON),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "http://jupyter:9999", cfg.Executor.Endpoint) // Overridden
	assert.Equal(t, "api/execute", cfg.Executor.ExecutePath)      // Default
	assert.Equal(t, ResetAbort, cfg.Lifecycle.ResetPolicy)        // Overridden
	assert.Equal(t, []string{"numpy", "pandas"}, cfg.Project.ManifestPackages)
}

func TestLoad_TokenFromEnvironment(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{},
		Env:     map[string]string{TokenEnvVar: "secret"},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Executor.Token)
}

func TestLoad_TokenInFile_WinsOverEnvironment(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			testConfigPath: []byte(`{"executor": {"token": "from-file"}}`),
		},
		Env: map[string]string{TokenEnvVar: "from-env"},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Executor.Token)
}

// --- UNHAPPY PATH TESTS ---

func TestLoad_MalformedJSON_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			testConfigPath: []byte(`{invalid json`),
		},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid")
}

func TestLoad_PermissionDenied_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir:     "/home/user",
		ReadFileErr: os.ErrPermission,
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, os.ErrPermission))
}

func TestLoad_HomeDirError_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{
		HomeDirErr: errors.New("homeless"),
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	require.NoError(t, err)
	assert.Equal(t, 1800, cfg.Executor.TimeoutSeconds)
}

func TestLoad_InvalidValues_Rejected(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			testConfigPath: []byte(`{"executor": {"timeout_seconds": -1}}`),
		},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "validation failed")
}

// --- EDGE CASE TESTS ---

func TestLoad_EmptyPackageList_ReplacesDefault(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			testConfigPath: []byte(`{"project": {"manifest_packages": []}}`),
		},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	require.NoError(t, err)
	assert.Empty(t, cfg.Project.ManifestPackages)
}

func TestLoad_UnknownFields_Ignored(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			testConfigPath: []byte(`{"log": {"level": "debug"}, "unknown_field": "ignored"}`),
		},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}
