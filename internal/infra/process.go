// Package infra implements infrastructure concerns (process, firewall, registry, files).
package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// ProcessControllerImpl implements domain.ProcessController using gopsutil.
type ProcessControllerImpl struct {
	cmd Executor
}

// NewProcessController creates a new process controller.
func NewProcessController(cmd Executor) *ProcessControllerImpl {
	return &ProcessControllerImpl{cmd: cmd}
}

// FindByImage returns PIDs of processes whose image name equals image (case-insensitive).
func (pc *ProcessControllerImpl) FindByImage(image string) ([]int32, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	var found []int32
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue // Process may have exited
		}
		if strings.EqualFold(name, image) {
			found = append(found, p.Pid)
		}
	}
	return found, nil
}

// TerminateByImageName force-kills every process with the image name.
// Processes that exit on their own mid-way are not an error.
func (pc *ProcessControllerImpl) TerminateByImageName(_ context.Context, image string) error {
	pids, err := pc.FindByImage(image)
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	var errs []error
	for _, pid := range pids {
		p, err := process.NewProcess(pid)
		if err != nil {
			continue // Already gone
		}
		if err := p.Kill(); err != nil {
			errs = append(errs, fmt.Errorf("kill %s (pid %d): %w", image, pid, err))
		}
	}
	return errors.Join(errs...)
}

// IsRunning checks if any process with the image name is listed.
// A failed listing reports false so callers never wait on an unknown.
func (pc *ProcessControllerImpl) IsRunning(image string) bool {
	pids, err := pc.FindByImage(image)
	return err == nil && len(pids) > 0
}

// Spawn starts path with args, detached and without a console window.
func (pc *ProcessControllerImpl) Spawn(ctx context.Context, path, dir string, args ...string) error {
	return pc.cmd.Start(ctx, StartOptions{Dir: dir, HideWindow: true}, path, args...)
}

// Ensure ProcessControllerImpl implements domain.ProcessController.
var _ domain.ProcessController = (*ProcessControllerImpl)(nil)
