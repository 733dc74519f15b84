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
	"slices"

	"github.com/EmberDeckProject/emberdeck-core/pkg/config"
	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// wellKnownStandalone are emulators probed at their conventional
// install locations when the config does not list any.
var wellKnownStandalone = []config.Standalone{
	{
		Name: "ppsspp", DisplayName: "PPSSPP", Path: "/usr/bin/PPSSPPSDL",
		Systems: []string{"psp"}, DefaultArgs: []string{"--fullscreen"},
	},
	{
		Name: "drastic", DisplayName: "DraStic", Path: "/opt/drastic/drastic",
		Systems: []string{"nds"}, ConfigDir: "/opt/drastic",
	},
	{
		Name: "amiberry", DisplayName: "Amiberry", Path: "/usr/bin/amiberry",
		Systems: []string{"amiga"},
	},
	{
		Name: "scummvm", DisplayName: "ScummVM", Path: "/usr/bin/scummvm",
		Systems: []string{"scummvm"}, DefaultArgs: []string{"--fullscreen"},
	},
	{
		Name: "dosbox", DisplayName: "DOSBox", Path: "/usr/bin/dosbox",
		Systems: []string{"dos"}, DefaultArgs: []string{"-fullscreen"},
	},
	{
		Name: "openbor", DisplayName: "OpenBOR", Path: "/usr/bin/OpenBOR",
		Systems: []string{"openbor"},
	},
	{
		Name: "fake08", DisplayName: "Fake08 (Pico-8)", Path: "/usr/bin/fake08",
		Systems: []string{"pico8"},
	},
}

// StandaloneRegistry holds the standalone emulators available on this
// device and builds launch configs for them.
type StandaloneRegistry struct {
	fs      afero.Fs
	entries []config.Standalone
}

// NewStandaloneRegistry registers the configured standalone emulators,
// or probes the well-known install locations when none are configured.
// Entries whose executable does not exist are skipped.
func NewStandaloneRegistry(fsys afero.Fs, configured []config.Standalone) *StandaloneRegistry {
	candidates := configured
	if len(candidates) == 0 {
		candidates = wellKnownStandalone
	}

	reg := &StandaloneRegistry{fs: fsys}
	for _, entry := range candidates {
		if exists, _ := afero.Exists(fsys, entry.Path); !exists {
			continue
		}
		if entry.DisplayName == "" {
			entry.DisplayName = entry.Name
		}
		reg.entries = append(reg.entries, entry)
		log.Debug().Str("name", entry.Name).Str("path", entry.Path).
			Msg("registered standalone emulator")
	}
	return reg
}

// Get returns the registered emulator with the given name.
func (r *StandaloneRegistry) Get(name string) (config.Standalone, bool) {
	for _, entry := range r.entries {
		if entry.Name == name {
			return entry, true
		}
	}
	return config.Standalone{}, false
}

// ForSystem returns all registered emulators supporting a system.
func (r *StandaloneRegistry) ForSystem(system string) []config.Standalone {
	var out []config.Standalone
	for _, entry := range r.entries {
		if slices.Contains(entry.Systems, system) {
			out = append(out, entry)
		}
	}
	return out
}

// List returns all registered emulators.
func (r *StandaloneRegistry) List() []config.Standalone {
	return slices.Clone(r.entries)
}

// LaunchConfigFor builds a standalone-family launch config for the
// named emulator and content path, seeding the emulator's default
// arguments. Returns ErrNotFound for an unregistered name.
func (r *StandaloneRegistry) LaunchConfigFor(name, contentPath string) (LaunchConfig, error) {
	entry, ok := r.Get(name)
	if !ok {
		return LaunchConfig{}, fmt.Errorf("%w: standalone emulator %q", errkind.ErrNotFound, name)
	}

	cfg := NewLaunchConfig(FamilyStandalone, entry.Path)
	cfg.ContentPath = contentPath
	cfg.Args = slices.Clone(entry.DefaultArgs)
	return cfg, nil
}
