package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Cyclone1070/kernelenv/internal/command"
	"github.com/Cyclone1070/kernelenv/internal/config"
	"github.com/Cyclone1070/kernelenv/internal/envfile"
	"github.com/Cyclone1070/kernelenv/internal/fsutil"
	"github.com/Cyclone1070/kernelenv/internal/lifecycle"
	"github.com/Cyclone1070/kernelenv/internal/logging"
	"github.com/Cyclone1070/kernelenv/internal/notify"
	"github.com/Cyclone1070/kernelenv/internal/ui"
	"github.com/Cyclone1070/kernelenv/internal/ui/services"
	"github.com/Cyclone1070/kernelenv/internal/workspace"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	dir      string
	notebook string
	selected []string
	endpoint string
	token    string
	local    bool
	verbose  bool
	yes      bool
}

// lifecycleOps is the orchestrator surface the commands drive.
type lifecycleOps interface {
	CreateKernel(ctx context.Context, pythonVersion string) bool
	RunDependencyInstall(ctx context.Context) bool
	DeleteKernel(ctx context.Context, deleteEnvironment bool) bool
	ResetKernel(ctx context.Context) bool
	Status(ctx context.Context) (lifecycle.StatusReport, error)
}

// projectFiles is the store surface the install command needs before orchestrating.
type projectFiles interface {
	EnsureManifest() error
	ReadConfig() map[string]string
}

// Dependencies holds the components required to run one command.
type Dependencies struct {
	Config    *config.Config
	Logger    *zap.Logger
	Lifecycle lifecycleOps
	Files     projectFiles
	Prompter  ui.Prompter
	Notifier  notify.Notifier
	Renderer  services.MarkdownRenderer
	Out       io.Writer
}

// dependencyBuilder creates Dependencies once flags are parsed.
type dependencyBuilder func(cfg *config.Config, flags *globalFlags, in io.Reader, out io.Writer) (*Dependencies, error)

// buildDependencies wires the real components.
func buildDependencies(cfg *config.Config, flags *globalFlags, in io.Reader, out io.Writer) (*Dependencies, error) {
	cfg = applyFlags(cfg, flags)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, flags.verbose)
	if err != nil {
		return nil, err
	}

	osFS := fsutil.NewOSFileSystem()
	resolver, err := newResolver(flags, osFS)
	if err != nil {
		return nil, err
	}

	files := envfile.Files{
		Config:   cfg.Project.ConfigFile,
		Manifest: cfg.Project.ManifestFile,
		Ignore:   cfg.Project.IgnoreFile,
		Packages: cfg.Project.ManifestPackages,
	}
	store := envfile.NewStore(osFS, resolver, files, logger)

	runner, err := newRunner(cfg, logger)
	if err != nil {
		return nil, err
	}

	orch := lifecycle.NewOrchestrator(store, resolver, runner, lifecycle.Options{
		ResetPolicy:  cfg.Lifecycle.ResetPolicy,
		LockFile:     cfg.Project.LockFile,
		IgnoreConfig: true,
	}, logger)

	var prompter ui.Prompter = ui.Defaults{}
	if !flags.yes && isTerminal(in) {
		prompter = ui.NewUI(in, out)
	}

	return &Dependencies{
		Config:    cfg,
		Logger:    logger,
		Lifecycle: orch,
		Files:     store,
		Prompter:  prompter,
		Notifier:  newNotifier(flags, out, logger),
		Renderer:  services.NewGlamourRenderer(),
		Out:       out,
	}, nil
}

// newResolver builds the resolver from the flags. The browser sits in --dir, or in the
// working directory when --dir is unset.
func newResolver(flags *globalFlags, osFS *fsutil.OSFileSystem) (*workspace.Resolver, error) {
	current := flags.dir
	if current == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		current = wd
	}

	var notebooks workspace.NotebookTracker
	if flags.notebook != "" {
		notebooks = workspace.NewStaticNotebook(flags.notebook, osFS)
	}
	return workspace.NewResolver(notebooks, workspace.NewStaticBrowser(current, flags.selected, osFS)), nil
}

// newNotifier prints to the terminal and, under --verbose, also logs each notification.
func newNotifier(flags *globalFlags, out io.Writer, logger *zap.Logger) notify.Notifier {
	terminal := ui.NewTerminalNotifier(out)
	if !flags.verbose {
		return terminal
	}
	return notify.NewTee(terminal, notify.NewLogNotifier(logger))
}

// applyFlags returns a copy of cfg with command-line overrides applied.
func applyFlags(cfg *config.Config, flags *globalFlags) *config.Config {
	c := *cfg
	if flags.endpoint != "" {
		c.Executor.Endpoint = flags.endpoint
	}
	if flags.token != "" {
		c.Executor.Token = flags.token
	}
	if flags.local {
		c.Executor.Mode = config.ModeLocal
	}
	return &c
}

func newRunner(cfg *config.Config, logger *zap.Logger) (command.Runner, error) {
	timeout := time.Duration(cfg.Executor.TimeoutSeconds) * time.Second

	switch cfg.Executor.Mode {
	case config.ModeLocal:
		return command.NewLocalRunner(command.LocalOptions{
			Timeout:          timeout,
			GracefulShutdown: time.Duration(cfg.Executor.GracefulShutdownMs) * time.Millisecond,
			MaxOutputBytes:   int(cfg.Executor.MaxOutputSize),
		}, logger), nil
	case config.ModeHTTP:
		client := &http.Client{Timeout: timeout}
		return command.NewHTTPRunner(cfg.Executor.Endpoint, cfg.Executor.ExecutePath, cfg.Executor.Token, client, logger)
	default:
		return nil, fmt.Errorf("unknown executor mode %q", cfg.Executor.Mode)
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
