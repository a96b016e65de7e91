package main

import (
	"errors"
	"fmt"

	"github.com/Cyclone1070/kernelenv/internal/config"
	"github.com/Cyclone1070/kernelenv/internal/envfile"
	"github.com/Cyclone1070/kernelenv/internal/notify"
	"github.com/Cyclone1070/kernelenv/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errOperationFailed marks a lifecycle operation that reported failure. The
// notifier has already told the user, so main only sets the exit code.
var errOperationFailed = errors.New("operation failed")

// Delete choices, in prompt order.
var deleteOptions = []string{"Kernel only", "Kernel and environment"}

// Reset confirmation choices, in prompt order.
var resetOptions = []string{"Reset", "Cancel"}

// app carries state between the root pre-run and the subcommands.
type app struct {
	cfg   *config.Config
	flags globalFlags
	build dependencyBuilder
	deps  *Dependencies
}

func newRootCommand(cfg *config.Config, build dependencyBuilder) *cobra.Command {
	a := &app{cfg: cfg, build: build}

	root := &cobra.Command{
		Use:           "kernelenv",
		Short:         "Manage the conda environment and Jupyter kernel of a notebook project",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			deps, err := a.build(a.cfg, &a.flags, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			a.deps = deps
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.deps != nil && a.deps.Logger != nil {
				_ = a.deps.Logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.dir, "dir", "", "project directory (default: working directory)")
	pf.StringVar(&a.flags.notebook, "notebook", "", "active notebook path; its directory is the project")
	pf.StringArrayVar(&a.flags.selected, "select", nil, "selected file browser entry (repeatable)")
	pf.StringVar(&a.flags.endpoint, "endpoint", "", "notebook server URL")
	pf.StringVar(&a.flags.token, "token", "", "notebook server token")
	pf.BoolVar(&a.flags.local, "local", false, "run commands on this machine instead of the server")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&a.flags.yes, "yes", "y", false, "skip prompts and take defaults")

	root.AddCommand(
		a.createCommand(),
		a.installCommand(),
		a.deleteCommand(),
		a.resetCommand(),
		a.statusCommand(),
	)
	return root
}

func (a *app) createCommand() *cobra.Command {
	var python string
	c := &cobra.Command{
		Use:   "create",
		Short: "Create the project's environment and kernel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version := python
			if version == "" {
				v, err := a.deps.Prompter.PromptVersion(cmd.Context(), a.deps.Config.Project.DefaultPythonVersion)
				if errors.Is(err, ui.ErrCancelled) {
					return nil
				}
				if err != nil {
					return err
				}
				version = v
			}
			if !config.ValidPythonVersion(version) {
				return fmt.Errorf("invalid python version %q: expected MAJOR.MINOR such as 3.11", version)
			}

			n := a.deps.Notifier
			id := n.Emit("Creating kernel...")
			ok := a.deps.Lifecycle.CreateKernel(cmd.Context(), version)
			n.Update(notify.Outcome(id, ok, "Kernel created successfully", "Failed to create kernel"))
			return outcome(ok)
		},
	}
	c.Flags().StringVar(&python, "python", "", "Python version (MAJOR.MINOR); prompts when omitted")
	return c
}

func (a *app) installCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Compile requirements.in and sync the environment to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n := a.deps.Notifier
			id := n.Emit("Installing dependencies...")

			if err := a.deps.Files.EnsureManifest(); err != nil {
				n.Update(notify.Failure(id, "installing dependencies", err))
				return errOperationFailed
			}

			if a.deps.Files.ReadConfig()[envfile.KeyEnvName] == "" {
				n.Update(notify.Update{ID: id, Message: "Creating kernel first...", Type: notify.TypeInfo})
				if !a.deps.Lifecycle.CreateKernel(ctx, a.deps.Config.Project.DefaultPythonVersion) {
					n.Update(notify.Outcome(id, false, "", "Failed to create kernel"))
					return errOperationFailed
				}
			}

			ok := a.deps.Lifecycle.RunDependencyInstall(ctx)
			n.Update(notify.Outcome(id, ok, "Dependencies installed successfully", "Failed to install dependencies"))
			return outcome(ok)
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	var withEnv bool
	c := &cobra.Command{
		Use:   "delete",
		Short: "Remove the project's kernel and optionally its environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deleteEnv := withEnv
			if !cmd.Flags().Changed("env") {
				choice, err := a.deps.Prompter.Choose(cmd.Context(), "What should be deleted?", deleteOptions)
				if errors.Is(err, ui.ErrCancelled) {
					return nil
				}
				if err != nil {
					return err
				}
				deleteEnv = choice == 1
			}

			n := a.deps.Notifier
			id := n.Emit("Deleting kernel...")
			ok := a.deps.Lifecycle.DeleteKernel(cmd.Context(), deleteEnv)
			n.Update(notify.Outcome(id, ok, "Kernel deleted successfully", "Failed to delete kernel"))
			return outcome(ok)
		},
	}
	c.Flags().BoolVar(&withEnv, "env", false, "also remove the conda environment")
	return c
}

func (a *app) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete and recreate the project's environment and kernel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			choice, err := a.deps.Prompter.Choose(cmd.Context(),
				"Reset deletes the kernel and environment, then recreates them. Continue?", resetOptions)
			if errors.Is(err, ui.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			if choice != 0 {
				a.deps.Logger.Info("reset cancelled by user")
				return nil
			}

			n := a.deps.Notifier
			id := n.Emit("Resetting kernel...")
			ok := a.deps.Lifecycle.ResetKernel(cmd.Context())
			n.Update(notify.Outcome(id, ok, "Kernel reset successfully", "Failed to reset kernel"))
			return outcome(ok)
		},
	}
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what exists for the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.deps.Lifecycle.Status(cmd.Context())
			if err != nil {
				return err
			}
			out, err := ui.RenderStatus(report, a.deps.Renderer, 80)
			if err != nil {
				a.deps.Logger.Warn("failed to render status, printing markdown", zap.Error(err))
			}
			_, err = fmt.Fprint(a.deps.Out, out)
			return err
		},
	}
}

func outcome(ok bool) error {
	if ok {
		return nil
	}
	return errOperationFailed
}
