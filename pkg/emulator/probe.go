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
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/tklauser/go-sysconf"
)

// ProcState classifies a probed process.
type ProcState int

const (
	StateUnknown ProcState = iota
	StateRunning
	StateSleeping
	StateStopped
	StateZombie
	StateDead
)

func (ps ProcState) String() string {
	switch ps {
	case StateRunning:
		return "running"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	case StateZombie:
		return "zombie"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// ProcessInfo is a point-in-time view of a probed process.
type ProcessInfo struct {
	PID       int
	State     ProcState
	CPUTimeMs uint64
	MemoryKB  uint64
}

// Positions of stat fields relative to the token after the closing
// parenthesis of the command name: state, utime, stime, rss.
const (
	statFieldState = 0
	statFieldUtime = 11
	statFieldStime = 12
	statFieldRSS   = 21
)

// Probe reads the process table entry for pid. It never fails: a
// missing or malformed entry yields StateDead with zeroed counters,
// since a vanished process and a dead one are indistinguishable to
// the caller.
func (s *Supervisor) Probe(pid int) ProcessInfo {
	info := ProcessInfo{PID: pid, State: StateDead}

	raw, err := afero.ReadFile(s.fs, fmt.Sprintf("%s/%d/stat", s.procPath, pid))
	if err != nil {
		return info
	}

	// The command name may contain spaces and parentheses, so fields
	// are located relative to the last closing parenthesis.
	line := string(raw)
	end := strings.LastIndexByte(line, ')')
	if end < 0 || end+2 > len(line) {
		return info
	}
	fields := strings.Fields(line[end+1:])
	if len(fields) <= statFieldRSS {
		return info
	}

	info.State = parseState(fields[statFieldState])

	utime, _ := strconv.ParseUint(fields[statFieldUtime], 10, 64)
	stime, _ := strconv.ParseUint(fields[statFieldStime], 10, 64)
	if s.clockTck > 0 {
		info.CPUTimeMs = (utime + stime) * 1000 / uint64(s.clockTck)
	}

	rss, _ := strconv.ParseUint(fields[statFieldRSS], 10, 64)
	if s.pageSize > 0 {
		info.MemoryKB = rss * uint64(s.pageSize) / 1024
	}

	return info
}

func parseState(field string) ProcState {
	if field == "" {
		return StateUnknown
	}
	switch field[0] {
	case 'R':
		return StateRunning
	case 'S', 'D':
		return StateSleeping
	case 'T', 't':
		return StateStopped
	case 'Z':
		return StateZombie
	case 'X', 'x':
		return StateDead
	default:
		return StateUnknown
	}
}

// clockTicksPerSecond reads the kernel tick rate, defaulting to the
// common 100Hz when sysconf is unavailable.
func clockTicksPerSecond() int64 {
	ticks, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil || ticks <= 0 {
		return 100
	}
	return ticks
}
