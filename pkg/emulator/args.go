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
	"strconv"
	"strings"
)

// BuildArgs materializes the argument vector for a launch config. It is
// pure: the same config always yields the same vector. The executable
// is argv[0], frontend selection flags follow for the frontend family,
// then extra arguments, with the content path last. Extra arguments
// past the MaxArgs capacity are dropped silently; that is the
// documented overflow policy, not an error.
func BuildArgs(cfg LaunchConfig) []string {
	argv := make([]string, 0, MaxArgs)
	argv = append(argv, cfg.Executable)

	if cfg.Family == FamilyFrontend {
		if cfg.CorePath != "" {
			argv = append(argv, "-L", cfg.CorePath)
		}
		if cfg.SettingsPath != "" {
			argv = append(argv, "--config", cfg.SettingsPath)
		}
		if cfg.Fullscreen {
			argv = append(argv, "--fullscreen")
		}
		if cfg.Verbose {
			argv = append(argv, "-v")
		}
		if cfg.LoadStateSlot >= 0 {
			argv = append(argv, "-e", strconv.Itoa(cfg.LoadStateSlot))
		}
	}

	// Reserve the final slot for the content path.
	for _, arg := range cfg.Args {
		if len(argv) >= MaxArgs-1 {
			break
		}
		argv = append(argv, arg)
	}

	if cfg.ContentPath != "" {
		argv = append(argv, cfg.ContentPath)
	}

	return argv
}

// BuildEnv overlays the config's environment overrides onto the base
// environment (normally os.Environ()). An override replaces an
// inherited entry with the same key; overrides for new keys are
// appended in order.
func BuildEnv(cfg LaunchConfig, base []string) []string {
	if len(cfg.Env) == 0 {
		return base
	}

	overrides := make(map[string]string, len(cfg.Env))
	order := make([]string, 0, len(cfg.Env))
	for _, ev := range cfg.Env {
		if _, seen := overrides[ev.Key]; !seen {
			order = append(order, ev.Key)
		}
		overrides[ev.Key] = ev.Value
	}

	env := make([]string, 0, len(base)+len(cfg.Env))
	applied := make(map[string]bool, len(cfg.Env))
	for _, entry := range base {
		key, _, ok := strings.Cut(entry, "=")
		if !ok {
			env = append(env, entry)
			continue
		}
		if value, hit := overrides[key]; hit {
			env = append(env, key+"="+value)
			applied[key] = true
			continue
		}
		env = append(env, entry)
	}

	for _, key := range order {
		if !applied[key] {
			env = append(env, key+"="+overrides[key])
		}
	}

	return env
}
