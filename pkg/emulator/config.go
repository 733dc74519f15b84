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

// Package emulator launches and supervises emulation programs: building
// launch configurations, materializing argument vectors, starting the
// child process with scheduling hints, and waiting on, probing and
// terminating it.
package emulator

import (
	"fmt"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
)

// Family identifies how the target program expects to be invoked.
type Family int

const (
	// FamilyFrontend is a libretro frontend invoked with core
	// selection flags (RetroArch-compatible).
	FamilyFrontend Family = iota
	// FamilyStandalone is a self-contained emulator that takes the
	// content path plus its own arguments.
	FamilyStandalone
	// FamilyCustom is any other program; only extra arguments and the
	// content path are materialized.
	FamilyCustom
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyFrontend:
		return "frontend"
	case FamilyStandalone:
		return "standalone"
	case FamilyCustom:
		return "custom"
	default:
		return "unknown"
	}
}

const (
	// MaxArgs caps the total materialized argument vector length.
	MaxArgs = 64
	// MaxEnv caps the number of environment overrides.
	MaxEnv = 128
	// NoLoadSlot in LoadStateSlot means no state is loaded at start.
	NoLoadSlot = -1
	// NoAffinity in CPUAffinity means no affinity is applied.
	NoAffinity = -1
)

// EnvVar is one environment override applied to the child process.
type EnvVar struct {
	Key   string
	Value string
}

// LaunchConfig describes how to start an emulation program. Build one
// with NewLaunchConfig, populate it, and hand it to Supervisor.Launch
// by value; the supervisor never mutates it.
type LaunchConfig struct {
	Executable   string
	ContentPath  string
	CorePath     string
	SettingsPath string
	Args         []string
	Env          []EnvVar
	Family       Family

	Fullscreen bool
	Verbose    bool
	Force32Bit bool

	// LoadStateSlot selects a save-state slot to load at start;
	// NoLoadSlot disables loading.
	LoadStateSlot int

	// Scheduling hints, applied best effort at launch.
	CPUAffinity      int
	Nice             int
	RealtimePriority bool
}

// NewLaunchConfig returns a config with the reference defaults:
// fullscreen on, no state load, no affinity, default priority.
func NewLaunchConfig(family Family, executable string) LaunchConfig {
	return LaunchConfig{
		Family:        family,
		Executable:    executable,
		Fullscreen:    true,
		LoadStateSlot: NoLoadSlot,
		CPUAffinity:   NoAffinity,
	}
}

// AddArg appends an extra argument. Returns ErrInvalidArg once the
// extra argument list would exceed the materialized vector capacity.
func (c *LaunchConfig) AddArg(arg string) error {
	if len(c.Args) >= MaxArgs-1 {
		return fmt.Errorf("%w: argument list full", errkind.ErrInvalidArg)
	}
	c.Args = append(c.Args, arg)
	return nil
}

// AddEnv appends an environment override. Returns ErrInvalidArg if the
// key is empty or the override list is full.
func (c *LaunchConfig) AddEnv(key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: empty environment key", errkind.ErrInvalidArg)
	}
	if len(c.Env) >= MaxEnv {
		return fmt.Errorf("%w: environment override list full", errkind.ErrInvalidArg)
	}
	c.Env = append(c.Env, EnvVar{Key: key, Value: value})
	return nil
}
