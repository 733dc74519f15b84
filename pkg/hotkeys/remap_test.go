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

package hotkeys

import (
	"testing"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemapperCapacity(t *testing.T) {
	t.Parallel()

	r := NewRemapper()
	for i := 0; i < MaxMapEntries; i++ {
		require.NoError(t, r.AddMapping(uint16(i), uint16(i+100)))
	}

	err := r.AddMapping(500, 501)
	require.ErrorIs(t, err, errkind.ErrInvalidArg)
}

func TestRemapperApplyTruncates(t *testing.T) {
	t.Parallel()

	entries := make([]MapEntry, 40)
	for i := range entries {
		entries[i] = MapEntry{From: uint16(i), To: uint16(i + 100)}
	}

	r := NewRemapper()
	stored := r.Apply(entries)

	assert.Equal(t, MaxMapEntries, stored)
	// The first 32 survived; the rest were dropped.
	assert.Equal(t, uint16(131), r.Resolve(31))
	assert.Equal(t, uint16(35), r.Resolve(35), "entry 35 was dropped")
}

func TestRemapperFirstMatchWins(t *testing.T) {
	t.Parallel()

	r := NewRemapper()
	require.NoError(t, r.AddMapping(BtnSouth, BtnEast))
	require.NoError(t, r.AddMapping(BtnSouth, BtnNorth))

	assert.Equal(t, BtnEast, r.Resolve(BtnSouth))
}

func TestRemapperUnmappedPassthrough(t *testing.T) {
	t.Parallel()

	r := NewRemapper()
	assert.Equal(t, BtnStart, r.Resolve(BtnStart))
}

func TestSetDeadzoneValidation(t *testing.T) {
	t.Parallel()

	r := NewRemapper()
	assert.Equal(t, int32(DefaultDeadzone), r.Deadzone())

	require.NoError(t, r.SetDeadzone(0))
	require.NoError(t, r.SetDeadzone(32767))
	assert.Equal(t, int32(32767), r.Deadzone())

	require.ErrorIs(t, r.SetDeadzone(-1), errkind.ErrInvalidArg)
	require.ErrorIs(t, r.SetDeadzone(32768), errkind.ErrInvalidArg)
	assert.Equal(t, int32(32767), r.Deadzone(), "rejected values leave the threshold unchanged")
}

func TestFilterAxisDeadzone(t *testing.T) {
	t.Parallel()

	r := NewRemapper()

	// Default deadzone is 4096.
	assert.Zero(t, r.FilterAxis(0))
	assert.Zero(t, r.FilterAxis(4095))
	assert.Zero(t, r.FilterAxis(-4095))
	assert.Equal(t, int32(4096), r.FilterAxis(4096))
	assert.Equal(t, int32(-4096), r.FilterAxis(-4096))
	assert.Equal(t, int32(30000), r.FilterAxis(30000))
}

func TestFilterAxisZeroDeadzonePassesEverything(t *testing.T) {
	t.Parallel()

	r := NewRemapper()
	require.NoError(t, r.SetDeadzone(0))

	assert.Equal(t, int32(1), r.FilterAxis(1))
	assert.Equal(t, int32(-1), r.FilterAxis(-1))
}
