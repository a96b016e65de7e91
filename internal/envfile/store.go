// Package envfile reads and writes the per-project files that describe an environment:
// the .env key/value config, the requirements.in manifest and the ignore file.
package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Recognized config keys.
const (
	KeyPythonVersion     = "PYTHON_VERSION"
	KeyEnvName           = "ENV_NAME"
	KeyKernelName        = "KERNEL_NAME"
	KeyKernelDisplayName = "KERNEL_DISPLAY_NAME"
	KeyRegisterKernel    = "REGISTER_KERNEL"
)

// DefaultPythonVersion is used when EnsureConfig is called without a version.
const DefaultPythonVersion = "3.11"

const filePerm os.FileMode = 0o644

// fileSystem defines the filesystem operations the store needs.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
}

// directoryResolver supplies the project directory and name on each call.
type directoryResolver interface {
	ResolveDirectory() string
	ResolveProjectName() string
}

// Files names the files the store manages inside the project directory.
type Files struct {
	Config   string
	Manifest string
	Ignore   string
	// Packages seeds a new manifest.
	Packages []string
}

// DefaultFiles returns the conventional file names.
func DefaultFiles() Files {
	return Files{
		Config:   ".env",
		Manifest: "requirements.in",
		Ignore:   ".gitignore",
		Packages: []string{"numpy", "pandas"},
	}
}

// Store reads and writes project files in the directory picked by the resolver.
// It keeps no state between calls.
type Store struct {
	fs       fileSystem
	resolver directoryResolver
	files    Files
	logger   *zap.Logger
}

// NewStore creates a Store.
func NewStore(fs fileSystem, resolver directoryResolver, files Files, logger *zap.Logger) *Store {
	if fs == nil {
		panic("fs is required")
	}
	if resolver == nil {
		panic("resolver is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		fs:       fs,
		resolver: resolver,
		files:    files,
		logger:   logger.Named("envfile"),
	}
}

// Files returns the file names the store manages.
func (s *Store) Files() Files {
	return s.files
}

// Path joins name onto the currently resolved directory.
func (s *Store) Path(name string) string {
	return filepath.Join(s.resolver.ResolveDirectory(), name)
}

// EnsureConfig writes a fresh config for the current project unless one already exists.
// An existing file is never touched.
func (s *Store) EnsureConfig(pythonVersion string) error {
	if pythonVersion == "" {
		pythonVersion = DefaultPythonVersion
	}
	path := s.Path(s.files.Config)

	exists, err := s.exists(path)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Debug("config already exists, not overwriting", zap.String("path", path))
		return nil
	}

	project := s.resolver.ResolveProjectName()
	content := strings.Join([]string{
		KeyPythonVersion + "=" + pythonVersion,
		KeyEnvName + "=conda-" + project,
		KeyKernelName + "=python-" + project,
		KeyKernelDisplayName + "=Python (" + project + ")",
		KeyRegisterKernel + "=true",
	}, "\n") + "\n"

	s.logger.Info("creating config", zap.String("path", path), zap.String("python_version", pythonVersion))
	if err := s.fs.WriteFileAtomic(path, []byte(content), filePerm); err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	return nil
}

// ReadConfig parses the config file into a key/value map. Blank lines, # comments and
// lines without both a key and a value are skipped. A missing or unreadable file yields
// an empty map.
func (s *Store) ReadConfig() map[string]string {
	path := s.Path(s.files.Config)
	values := make(map[string]string)

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("config not found", zap.String("path", path))
		} else {
			s.logger.Warn("failed to read config", zap.String("path", path), zap.Error(err))
		}
		return values
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		values[key] = value
	}

	return values
}

// EnsureManifest writes the dependency manifest scaffold unless it already exists.
func (s *Store) EnsureManifest() error {
	path := s.Path(s.files.Manifest)

	exists, err := s.exists(path)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Debug("manifest already exists, not overwriting", zap.String("path", path))
		return nil
	}

	var b strings.Builder
	b.WriteString("# Python dependencies\n")
	for _, pkg := range s.files.Packages {
		b.WriteString(pkg)
		b.WriteString("\n")
	}
	b.WriteString("\n# Add your dependencies below\n")

	s.logger.Info("creating manifest", zap.String("path", path))
	if err := s.fs.WriteFileAtomic(path, []byte(b.String()), filePerm); err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	return nil
}

// EnsureIgnored appends entry to the ignore file unless a line already equals it.
// The file is created when missing.
func (s *Store) EnsureIgnored(entry string) error {
	path := s.Path(s.files.Ignore)

	var content string
	data, err := s.fs.ReadFile(path)
	switch {
	case err == nil:
		content = string(data)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return &ReadError{Path: path, Cause: err}
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimRight(line, "\r") == entry {
			return nil
		}
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"

	s.logger.Info("adding ignore entry", zap.String("path", path), zap.String("entry", entry))
	if err := s.fs.WriteFileAtomic(path, []byte(content), filePerm); err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	return nil
}

// Exists reports whether name exists in the project directory.
func (s *Store) Exists(name string) bool {
	ok, err := s.exists(s.Path(name))
	return err == nil && ok
}

func (s *Store) exists(path string) (bool, error) {
	_, err := s.fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}
