//go:build linux

/*
EmberDeck Core
Copyright (c) 2026 The EmberDeck Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of EmberDeck Core.

EmberDeck Core is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EmberDeck Core is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EmberDeck Core.  If not, see <http://www.gnu.org/licenses/>.
*/

package emulator

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/EmberDeckProject/emberdeck-core/pkg/helpers"
	"github.com/EmberDeckProject/emberdeck-core/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// fifoPriority is sched_get_priority_max(SCHED_FIFO) on Linux.
const fifoPriority = 99

// Supervisor launches emulation programs and tracks their lifecycle.
// It owns the resulting Process handles until wait or probe confirms
// termination.
type Supervisor struct {
	fs       afero.Fs
	clock    clockwork.Clock
	procPath string
	clockTck int64
	pageSize int64
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithFs sets the filesystem used for executable checks and process
// table reads (for testing).
func WithFs(fsys afero.Fs) Option {
	return func(s *Supervisor) {
		s.fs = fsys
	}
}

// WithProcPath sets a custom /proc path (for testing).
func WithProcPath(path string) Option {
	return func(s *Supervisor) {
		s.procPath = path
	}
}

// WithClock sets the clock used by bounded waits (for testing).
func WithClock(clock clockwork.Clock) Option {
	return func(s *Supervisor) {
		s.clock = clock
	}
}

// WithClockTick overrides the kernel ticks-per-second used for CPU
// time conversion (for testing).
func WithClockTick(ticks int64) Option {
	return func(s *Supervisor) {
		s.clockTck = ticks
	}
}

// WithPageSize overrides the page size used for memory conversion
// (for testing).
func WithPageSize(size int64) Option {
	return func(s *Supervisor) {
		s.pageSize = size
	}
}

// NewSupervisor creates a supervisor using the real filesystem, clock
// and platform constants.
func NewSupervisor(opts ...Option) *Supervisor {
	s := &Supervisor{
		fs:       afero.NewOsFs(),
		clock:    clockwork.NewRealClock(),
		procPath: "/proc",
		clockTck: clockTicksPerSecond(),
		pageSize: int64(os.Getpagesize()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process is a handle to a launched child. It is owned by the
// supervisor that created it and becomes dead once a wait observes the
// exit status.
type Process struct {
	startedAt time.Time
	cmd       *exec.Cmd
	pid       int
	pidfd     int
	exitCode  int
	reaped    bool
	mu        syncutil.Mutex
}

// PID returns the operating-system process identifier.
func (p *Process) PID() int {
	return p.pid
}

// StartedAt returns the launch timestamp.
func (p *Process) StartedAt() time.Time {
	return p.startedAt
}

// Launch validates the config, starts the child in its own session
// with stdin redirected to the null device, and applies the config's
// scheduling hints best effort. The returned handle is live until a
// wait observes termination.
func (s *Supervisor) Launch(cfg LaunchConfig) (*Process, error) {
	if cfg.Executable == "" {
		return nil, fmt.Errorf("%w: empty executable path", errkind.ErrInvalidArg)
	}

	info, err := s.fs.Stat(cfg.Executable)
	if err != nil || info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return nil, fmt.Errorf("%w: executable %q", errkind.ErrNotFound, cfg.Executable)
	}

	argv := BuildArgs(cfg)
	env := BuildEnv(cfg, os.Environ())

	//nolint:gosec // G204: the executable path is validated caller input
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env
	// New session detaches the child from the controlling terminal.
	// Stdin/out/err default to the null device.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return nil, classifyStartError(err)
	}

	pid := cmd.Process.Pid
	applySchedulingHints(pid, cfg)

	// A pidfd gives event-driven exit waits; fall back to cadence
	// polling on kernels without pidfd_open.
	pidfd, err := unix.PidfdOpen(pid, 0)
	if err != nil {
		pidfd = -1
	}

	log.Info().
		Int("pid", pid).
		Str("family", cfg.Family.String()).
		Str("executable", cfg.Executable).
		Str("content", cfg.ContentPath).
		Msg("launched emulator process")

	return &Process{
		cmd:       cmd,
		pid:       pid,
		pidfd:     pidfd,
		startedAt: s.clock.Now(),
	}, nil
}

// classifyStartError maps an os/exec start failure onto the error
// vocabulary. Process duplication failures (resource exhaustion) map to
// ErrForkFailed; failures at image replacement map to ErrExecFailed.
func classifyStartError(err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %w", errkind.ErrNotFound, err)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %w", errkind.ErrPermission, err)
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.ENOMEM):
		return fmt.Errorf("%w: %w", errkind.ErrForkFailed, err)
	default:
		return fmt.Errorf("%w: %w", errkind.ErrExecFailed, err)
	}
}

// applySchedulingHints applies niceness, CPU affinity and real-time
// priority to a started child. All three are best effort: a hint that
// cannot be applied is logged and ignored, never a launch failure.
func applySchedulingHints(pid int, cfg LaunchConfig) {
	if cfg.Nice != 0 {
		if err := unix.Setpriority(unix.PRIO_PROCESS, pid, cfg.Nice); err != nil {
			log.Debug().Err(err).Int("pid", pid).Int("nice", cfg.Nice).
				Msg("could not set niceness")
		}
	}

	if cfg.CPUAffinity >= 0 {
		var set unix.CPUSet
		set.Zero()
		set.Set(cfg.CPUAffinity)
		if err := unix.SchedSetaffinity(pid, &set); err != nil {
			log.Debug().Err(err).Int("pid", pid).Int("cpu", cfg.CPUAffinity).
				Msg("could not set cpu affinity")
		}
	}

	if cfg.RealtimePriority {
		attr := unix.SchedAttr{
			Size:     unix.SizeofSchedAttr,
			Policy:   unix.SCHED_FIFO,
			Priority: fifoPriority,
		}
		if err := unix.SchedSetAttr(pid, &attr, 0); err != nil {
			log.Debug().Err(err).Int("pid", pid).
				Msg("could not set realtime priority")
		}
	}
}

// Alive reports whether the child still exists in the process table.
func (s *Supervisor) Alive(p *Process) bool {
	p.mu.Lock()
	reaped := p.reaped
	p.mu.Unlock()
	if reaped {
		return false
	}

	exists, err := process.PidExists(int32(p.pid)) //nolint:gosec // G115: pids fit in int32
	if err != nil {
		// procfs unavailable; probe with signal 0 instead.
		return helpers.IsProcessRunning(p.cmd.Process)
	}
	return exists
}

// Stop sends the graceful termination signal. A process that has
// already exited is treated as success.
func (s *Supervisor) Stop(p *Process) error {
	return s.signalProcess(p, unix.SIGTERM)
}

// Kill sends the unconditional termination signal. A process that has
// already exited is treated as success.
func (s *Supervisor) Kill(p *Process) error {
	return s.signalProcess(p, unix.SIGKILL)
}

func (s *Supervisor) signalProcess(p *Process, sig unix.Signal) error {
	err := unix.Kill(p.pid, sig)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ESRCH):
		// Already exited: idempotent from the caller's perspective.
		return nil
	case errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: signal %d to pid %d", errkind.ErrPermission, sig, p.pid)
	default:
		return fmt.Errorf("%w: signal %d to pid %d: %w", errkind.ErrIO, sig, p.pid, err)
	}
}

// SignalPID sends an arbitrary signal to an arbitrary process
// identifier. Unlike the handle-based Stop/Kill, a missing process
// returns ErrNotFound, since no launch handle vouches that the
// identifier ever belonged to us.
func SignalPID(pid int, sig unix.Signal) error {
	if pid <= 0 {
		return fmt.Errorf("%w: pid %d", errkind.ErrInvalidArg, pid)
	}

	err := unix.Kill(pid, sig)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ESRCH):
		return fmt.Errorf("%w: pid %d", errkind.ErrNotFound, pid)
	case errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: signal %d to pid %d", errkind.ErrPermission, sig, pid)
	default:
		return fmt.Errorf("%w: signal %d to pid %d: %w", errkind.ErrIO, sig, pid, err)
	}
}
