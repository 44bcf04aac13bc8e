package infra

import (
	"context"
	"os/exec"
)

// StartOptions tunes how a detached command is started.
type StartOptions struct {
	// Dir is the working directory. Empty inherits ours.
	Dir string
	// HideWindow suppresses the console window (Windows only).
	HideWindow bool
}

// Executor runs external commands. Tests swap in a fake.
type Executor interface {
	// Output runs a command and returns its standard output.
	// A non-zero exit is reported as an error alongside whatever was printed.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Start starts a command without waiting for it to complete.
	Start(ctx context.Context, opts StartOptions, name string, args ...string) error
}

// RealExecutor implements Executor with os/exec.
type RealExecutor struct{}

// NewExecutor creates the os/exec backed executor.
func NewExecutor() Executor {
	return &RealExecutor{}
}

func (*RealExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	hideWindow(cmd)
	return cmd.Output()
}

// Start detaches the child from ctx: a launched client must outlive the
// command that started it.
func (*RealExecutor) Start(_ context.Context, opts StartOptions, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = opts.Dir
	if opts.HideWindow {
		hideWindow(cmd)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap in the background so the child never lingers as a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}

// Ensure RealExecutor implements Executor.
var _ Executor = (*RealExecutor)(nil)
