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

package main

import (
	"path/filepath"
	"testing"

	"github.com/EmberDeckProject/emberdeck-core/pkg/config"
	"github.com/EmberDeckProject/emberdeck-core/pkg/emulator"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Instance {
	t.Helper()
	cfg, err := config.NewInstance(
		filepath.Join(t.TempDir(), "config.toml"), config.BaseDefaults)
	require.NoError(t, err)
	return cfg
}

func TestBuildLaunchConfigResolvesDefaultCore(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys,
		"/usr/lib/libretro/snes9x_libretro.so", nil, 0o755))

	lc, err := buildLaunchConfig(fsys, testConfig(t), "game.sfc",
		"", "", "", emulator.NoLoadSlot, true, false, false)
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/retroarch", lc.Executable)
	assert.Equal(t, "/usr/lib/libretro/snes9x_libretro.so", lc.CorePath)
	assert.Equal(t, "game.sfc", lc.ContentPath)
	assert.False(t, lc.Force32Bit)
}

func TestBuildLaunchConfigForce32BitSelectsAltPaths(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	// Only the 32-bit core set is installed.
	require.NoError(t, afero.WriteFile(fsys,
		"/usr/lib/libretro32/snes9x_libretro.so", nil, 0o755))

	lc, err := buildLaunchConfig(fsys, testConfig(t), "game.sfc",
		"", "", "", emulator.NoLoadSlot, true, false, true)
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/retroarch32", lc.Executable)
	assert.Equal(t, "/usr/lib/libretro32/snes9x_libretro.so", lc.CorePath)
	assert.True(t, lc.Force32Bit)

	// Without the flag the 64-bit set is searched instead and the
	// missing core is reported.
	_, err = buildLaunchConfig(fsys, testConfig(t), "game.sfc",
		"", "", "", emulator.NoLoadSlot, true, false, false)
	require.Error(t, err)
}

func TestBuildLaunchConfigUnknownExtension(t *testing.T) {
	t.Parallel()

	_, err := buildLaunchConfig(afero.NewMemMapFs(), testConfig(t),
		"movie.mp4", "", "", "", emulator.NoLoadSlot, true, false, false)
	require.Error(t, err)
}
