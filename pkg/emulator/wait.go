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
	"time"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// waitPollInterval is the reap cadence for bounded waits on kernels
// without pidfd support.
const waitPollInterval = 10 * time.Millisecond

// signalExitBase offsets the terminating signal number so signal
// deaths remain distinguishable from plain exit codes, matching shell
// convention.
const signalExitBase = 128

// Wait collects the child's exit status. The timeout selects the wait
// mode: zero polls once and returns ErrTimeout if the child is still
// running, a positive duration bounds the wait, and a negative
// duration blocks until exit. The exit status is consumed exactly
// once; any wait after a successful one returns ErrNotFound.
func (s *Supervisor) Wait(p *Process, timeout time.Duration) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reaped {
		return 0, fmt.Errorf("%w: pid %d already reaped", errkind.ErrNotFound, p.pid)
	}

	switch {
	case timeout == 0:
		exited, code, err := p.tryReap()
		if err != nil {
			return 0, err
		}
		if !exited {
			return 0, fmt.Errorf("%w: pid %d still running", errkind.ErrTimeout, p.pid)
		}
		return code, nil
	case timeout < 0:
		return p.reapBlocking()
	default:
		return s.reapBounded(p, timeout)
	}
}

// tryReap performs a single non-blocking reap attempt. Callers hold
// p.mu.
func (p *Process) tryReap() (bool, int, error) {
	var status unix.WaitStatus
	for {
		wpid, err := unix.Wait4(p.pid, &status, unix.WNOHANG, nil)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
			return false, 0, fmt.Errorf("%w: pid %d is not our child", errkind.ErrNotFound, p.pid)
		case err != nil:
			return false, 0, fmt.Errorf("%w: wait on pid %d: %w", errkind.ErrIO, p.pid, err)
		case wpid == 0:
			return false, 0, nil
		default:
			return true, p.recordExit(status), nil
		}
	}
}

// reapBlocking waits without a deadline. Callers hold p.mu.
func (p *Process) reapBlocking() (int, error) {
	var status unix.WaitStatus
	for {
		_, err := unix.Wait4(p.pid, &status, 0, nil)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
			return 0, fmt.Errorf("%w: pid %d is not our child", errkind.ErrNotFound, p.pid)
		case err != nil:
			return 0, fmt.Errorf("%w: wait on pid %d: %w", errkind.ErrIO, p.pid, err)
		default:
			return p.recordExit(status), nil
		}
	}
}

// reapBounded waits up to timeout. With a pidfd the wait is
// event-driven; otherwise it polls at a fixed cadence. Callers hold
// p.mu.
func (s *Supervisor) reapBounded(p *Process, timeout time.Duration) (int, error) {
	deadline := s.clock.Now().Add(timeout)

	for {
		exited, code, err := p.tryReap()
		if err != nil {
			return 0, err
		}
		if exited {
			return code, nil
		}

		remaining := deadline.Sub(s.clock.Now())
		if remaining <= 0 {
			return 0, fmt.Errorf("%w: pid %d did not exit within %s",
				errkind.ErrTimeout, p.pid, timeout)
		}

		if p.pidfd >= 0 {
			if err := pollPidfd(p.pidfd, remaining); err != nil {
				// Fall back to cadence polling for the rest of
				// this wait.
				p.closePidfd()
				s.clock.Sleep(waitPollInterval)
			}
			continue
		}
		s.clock.Sleep(min(waitPollInterval, remaining))
	}
}

// pollPidfd blocks on the pidfd until the child exits or the budget
// runs out. A zero poll result is not an error; the caller re-checks
// the deadline.
func pollPidfd(pidfd int, budget time.Duration) error {
	ms := int(budget.Milliseconds())
	if ms <= 0 {
		ms = 1
	}
	fds := []unix.PollFd{{Fd: int32(pidfd), Events: unix.POLLIN}}
	for {
		_, err := unix.Poll(fds, ms)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err
	}
}

// recordExit decodes the wait status, marks the handle reaped and
// releases the pidfd. Callers hold p.mu.
func (p *Process) recordExit(status unix.WaitStatus) int {
	code := 0
	switch {
	case status.Exited():
		code = status.ExitStatus()
	case status.Signaled():
		code = signalExitBase + int(status.Signal())
	}

	p.reaped = true
	p.exitCode = code
	p.closePidfd()

	log.Info().Int("pid", p.pid).Int("exitCode", code).Msg("emulator process exited")
	return code
}

// closePidfd releases the exit-event descriptor. Callers hold p.mu.
func (p *Process) closePidfd() {
	if p.pidfd >= 0 {
		_ = unix.Close(p.pidfd)
		p.pidfd = -1
	}
}
