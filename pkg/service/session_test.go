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

package service

import (
	"path/filepath"
	"testing"

	"github.com/EmberDeckProject/emberdeck-core/pkg/config"
	"github.com/EmberDeckProject/emberdeck-core/pkg/emulator"
	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/EmberDeckProject/emberdeck-core/pkg/hotkeys"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*Session, *clockwork.FakeClock) {
	t.Helper()

	cfg, err := config.NewInstance(
		filepath.Join(t.TempDir(), "config.toml"), config.BaseDefaults)
	require.NoError(t, err)

	clock := clockwork.NewFakeClock()
	session, err := NewSession(cfg, WithClock(clock))
	require.NoError(t, err)
	return session, clock
}

func TestNewSessionWiresEngine(t *testing.T) {
	t.Parallel()

	session, _ := newTestSession(t)

	assert.NotEqual(t, uuid.Nil, session.ID())
	require.NotNil(t, session.Engine())

	// Default bindings are live.
	session.Engine().HandleEvent(hotkeys.BtnSelect, true)
	assert.Equal(t, hotkeys.ActionExit,
		session.Engine().HandleEvent(hotkeys.BtnStart, true))
}

func TestSessionSingleProcess(t *testing.T) {
	t.Parallel()

	session, _ := newTestSession(t)

	lc := emulator.NewLaunchConfig(emulator.FamilyCustom, "/bin/sleep")
	require.NoError(t, lc.AddArg("30"))
	require.NoError(t, session.Launch(lc))
	defer session.shutdownProcess()

	err := session.Launch(lc)
	require.Error(t, err, "one process per session")
}

func TestSessionLaunchPropagatesSupervisorErrors(t *testing.T) {
	t.Parallel()

	session, _ := newTestSession(t)

	lc := emulator.NewLaunchConfig(emulator.FamilyFrontend, "")
	require.ErrorIs(t, session.Launch(lc), errkind.ErrInvalidArg)

	lc = emulator.NewLaunchConfig(emulator.FamilyFrontend, "/no/such/frontend")
	require.ErrorIs(t, session.Launch(lc), errkind.ErrNotFound)
}

func TestActionQueueDropsWhenFull(t *testing.T) {
	t.Parallel()

	session, _ := newTestSession(t)
	engine := session.Engine()

	// Without the action loop draining, the queue fills and further
	// combos are dropped instead of blocking the event pump.
	for i := 0; i < actionQueueSize+8; i++ {
		engine.HandleEvent(hotkeys.BtnSelect, true)
		engine.HandleEvent(hotkeys.BtnDpadUp, true)
		engine.HandleEvent(hotkeys.BtnDpadUp, false)
		engine.HandleEvent(hotkeys.BtnSelect, false)
	}

	assert.Len(t, session.actions, actionQueueSize)
}

func TestSnapshotStartsZeroed(t *testing.T) {
	t.Parallel()

	session, _ := newTestSession(t)

	snap := session.Snapshot()
	assert.Zero(t, snap.CPUPercent)
	assert.Zero(t, snap.MemTotalKB)
}
