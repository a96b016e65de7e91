// Package lifecycle creates, populates, deletes and resets the conda environment and
// Jupyter kernel that belong to a project directory.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/kernelenv/internal/command"
	"github.com/Cyclone1070/kernelenv/internal/envfile"
	"go.uber.org/zap"
)

// Reset policies.
const (
	// ResetContinue recreates even when the delete step failed.
	ResetContinue = "continue"
	// ResetAbort stops after a failed delete.
	ResetAbort = "abort"
)

// fileStore is the slice of envfile.Store the orchestrator uses.
type fileStore interface {
	Files() envfile.Files
	EnsureConfig(pythonVersion string) error
	ReadConfig() map[string]string
	EnsureManifest() error
	EnsureIgnored(entry string) error
	IsIgnored(entry string) bool
	Exists(name string) bool
}

type directoryResolver interface {
	ResolveDirectory() string
}

// Options tune orchestrator behaviour.
type Options struct {
	ResetPolicy string
	// LockFile is the compiled dependency file name.
	LockFile string
	// IgnoreConfig adds the config file to the ignore file on create.
	IgnoreConfig bool
}

// DefaultOptions returns the options used by the CLI when config says nothing.
func DefaultOptions() Options {
	return Options{
		ResetPolicy:  ResetContinue,
		LockFile:     "requirements.txt",
		IgnoreConfig: true,
	}
}

// Orchestrator sequences external commands for the current project.
// Public operations report success as a bool and log failures.
type Orchestrator struct {
	store    fileStore
	resolver directoryResolver
	runner   command.Runner
	logger   *zap.Logger
	opts     Options
	locks    *keyedLock
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(store fileStore, resolver directoryResolver, runner command.Runner, opts Options, logger *zap.Logger) *Orchestrator {
	if store == nil {
		panic("store is required")
	}
	if resolver == nil {
		panic("resolver is required")
	}
	if runner == nil {
		panic("runner is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ResetPolicy == "" {
		opts.ResetPolicy = ResetContinue
	}
	if opts.LockFile == "" {
		opts.LockFile = DefaultOptions().LockFile
	}
	return &Orchestrator{
		store:    store,
		resolver: resolver,
		runner:   runner,
		logger:   logger.Named("lifecycle"),
		opts:     opts,
		locks:    newKeyedLock(),
	}
}

// CreateKernel makes sure the project has a config, a conda environment with the kernel
// tooling installed and, when REGISTER_KERNEL is true, a registered kernelspec.
func (o *Orchestrator) CreateKernel(ctx context.Context, pythonVersion string) bool {
	return o.guard(ctx, "create kernel", func(ctx context.Context) error {
		return o.createKernel(ctx, pythonVersion)
	})
}

// RunDependencyInstall compiles the manifest into the lock file and syncs the environment to it.
func (o *Orchestrator) RunDependencyInstall(ctx context.Context) bool {
	return o.guard(ctx, "install dependencies", o.installDependencies)
}

// DeleteKernel removes the project's kernelspec and, if asked, its environment.
// Targets that do not exist are skipped.
func (o *Orchestrator) DeleteKernel(ctx context.Context, deleteEnvironment bool) bool {
	return o.guard(ctx, "delete kernel", func(ctx context.Context) error {
		return o.deleteKernel(ctx, deleteEnvironment)
	})
}

// ResetKernel deletes the kernel and environment, then recreates them with the stored
// Python version.
func (o *Orchestrator) ResetKernel(ctx context.Context) bool {
	return o.guard(ctx, "reset kernel", o.resetKernel)
}

// guard runs op under the lock of the current directory and converts its error to a bool.
func (o *Orchestrator) guard(ctx context.Context, name string, op func(context.Context) error) bool {
	dir := o.resolver.ResolveDirectory()
	unlock, err := o.locks.Lock(ctx, dir)
	if err != nil {
		o.logger.Error("failed to acquire project lock", zap.String("op", name), zap.String("dir", dir), zap.Error(err))
		return false
	}
	defer unlock()

	if err := op(ctx); err != nil {
		o.logger.Error("operation failed", zap.String("op", name), zap.String("dir", dir), zap.Error(err))
		return false
	}
	o.logger.Info("operation succeeded", zap.String("op", name), zap.String("dir", dir))
	return true
}

func (o *Orchestrator) createKernel(ctx context.Context, pythonVersion string) error {
	if err := o.store.EnsureConfig(pythonVersion); err != nil {
		return err
	}
	if o.opts.IgnoreConfig {
		if err := o.store.EnsureIgnored(o.store.Files().Config); err != nil {
			o.logger.Warn("failed to add config to ignore file", zap.Error(err))
		}
	}

	values := o.store.ReadConfig()
	if missing := envfile.MissingKeys(values,
		envfile.KeyPythonVersion, envfile.KeyEnvName, envfile.KeyKernelName, envfile.KeyKernelDisplayName,
	); len(missing) > 0 {
		return &PreconditionError{Missing: missing}
	}
	env, err := envfile.Decode(values)
	if err != nil {
		return err
	}

	if o.environmentExists(ctx, env.EnvName) {
		o.logger.Info("environment already exists", zap.String("env", env.EnvName))
	} else {
		if _, err := o.run(ctx, createEnvironmentCmd(env.EnvName, env.PythonVersion)); err != nil {
			return err
		}
	}

	if _, err := o.run(ctx, upgradePackagesCmd(env.EnvName)); err != nil {
		return err
	}

	if !env.RegisterKernel {
		return nil
	}
	if o.kernelExists(ctx, env.KernelName) {
		o.logger.Info("kernel already registered", zap.String("kernel", env.KernelName))
		return nil
	}
	_, err = o.run(ctx, registerKernelCmd(env.EnvName, env.KernelName, env.KernelDisplayName))
	return err
}

func (o *Orchestrator) installDependencies(ctx context.Context) error {
	if err := o.store.EnsureManifest(); err != nil {
		return err
	}

	values := o.store.ReadConfig()
	if missing := envfile.MissingKeys(values, envfile.KeyEnvName); len(missing) > 0 {
		return &PreconditionError{Missing: missing}
	}
	envName := values[envfile.KeyEnvName]
	dir := o.resolver.ResolveDirectory()

	if _, err := o.run(ctx, compileLockCmd(dir, envName, o.store.Files().Manifest, o.opts.LockFile)); err != nil {
		return err
	}
	_, err := o.run(ctx, syncLockCmd(dir, envName, o.opts.LockFile))
	return err
}

func (o *Orchestrator) deleteKernel(ctx context.Context, deleteEnvironment bool) error {
	values := o.store.ReadConfig()
	if missing := envfile.MissingKeys(values, envfile.KeyKernelName, envfile.KeyEnvName); len(missing) > 0 {
		return &PreconditionError{Missing: missing}
	}
	kernel := values[envfile.KeyKernelName]
	envName := values[envfile.KeyEnvName]

	if o.kernelExists(ctx, kernel) {
		if _, err := o.run(ctx, removeKernelCmd(kernel)); err != nil {
			return err
		}
	} else {
		o.logger.Info("kernel not registered, nothing to remove", zap.String("kernel", kernel))
	}

	if !deleteEnvironment {
		return nil
	}
	if !o.environmentExists(ctx, envName) {
		o.logger.Info("environment not found, nothing to remove", zap.String("env", envName))
		return nil
	}
	_, err := o.run(ctx, removeEnvironmentCmd(envName))
	return err
}

func (o *Orchestrator) resetKernel(ctx context.Context) error {
	values := o.store.ReadConfig()
	if missing := envfile.MissingKeys(values, envfile.KeyPythonVersion); len(missing) > 0 {
		return &PreconditionError{Missing: missing}
	}
	version := values[envfile.KeyPythonVersion]

	if err := o.deleteKernel(ctx, true); err != nil {
		if o.opts.ResetPolicy == ResetAbort {
			return err
		}
		o.logger.Warn("delete step failed, recreating anyway", zap.Error(err))
	}
	return o.createKernel(ctx, version)
}

// run issues cmd and turns a non-zero exit into a CommandFailedError.
func (o *Orchestrator) run(ctx context.Context, cmd string) (*command.Result, error) {
	o.logger.Debug("running command", zap.String("command", cmd))
	res, err := o.runner.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("runner returned no result for %q", cmd)
	}
	if !res.Succeeded() {
		return res, &CommandFailedError{Command: cmd, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	if res.Truncated {
		o.logger.Warn("command output truncated", zap.String("command", cmd))
	}
	return res, nil
}
