package command

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// LocalOptions bounds a LocalRunner.
type LocalOptions struct {
	Shell            string        // Default: "sh"
	Timeout          time.Duration // Default: 30 minutes
	GracefulShutdown time.Duration // Default: 2 seconds
	MaxOutputBytes   int           // Default: 10MB
	Dir              string
	Env              []string
}

// LocalRunner runs commands through the local shell with os/exec.
type LocalRunner struct {
	opts   LocalOptions
	logger *zap.Logger
}

// NewLocalRunner creates a LocalRunner, filling unset options with defaults.
func NewLocalRunner(opts LocalOptions, logger *zap.Logger) *LocalRunner {
	if opts.Shell == "" {
		opts.Shell = "sh"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Minute
	}
	if opts.GracefulShutdown <= 0 {
		opts.GracefulShutdown = 2 * time.Second
	}
	if opts.MaxOutputBytes <= 0 {
		opts.MaxOutputBytes = 10 * 1024 * 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalRunner{opts: opts, logger: logger.Named("command")}
}

// Run executes `<shell> -c command`. On timeout the process gets an interrupt, then a
// kill after the grace period; ErrTimeout is returned along with the output so far.
func (r *LocalRunner) Run(ctx context.Context, command string) (*Result, error) {
	if command == "" {
		return nil, os.ErrInvalid
	}

	// Not CommandContext: cancellation and timeout are handled below to allow a graceful stop.
	cmd := exec.Command(r.opts.Shell, "-c", command)
	cmd.Dir = r.opts.Dir
	if r.opts.Env != nil {
		cmd.Env = r.opts.Env
	}
	cmd.Stdin = nil

	stdout := newCollector(r.opts.MaxOutputBytes)
	stderr := newCollector(r.opts.MaxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Background children may keep the pipes open after the shell exits.
	cmd.WaitDelay = r.opts.GracefulShutdown

	r.logger.Debug("executing local command", zap.String("command", command))

	if err := cmd.Start(); err != nil {
		return nil, &StartError{Command: command, Cause: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(r.opts.Timeout)
	defer timer.Stop()

	var execErr error
	select {
	case execErr = <-done:
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		execErr = ctx.Err()
	case <-timer.C:
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(r.opts.GracefulShutdown):
			_ = cmd.Process.Kill()
			<-done
		}
		execErr = ErrTimeout
	}

	result := &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}

	if execErr == nil || errors.Is(execErr, exec.ErrWaitDelay) {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(execErr, &exitErr) {
		// Command ran but failed - the exit code carries it
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	result.ExitCode = -1
	return result, execErr
}
