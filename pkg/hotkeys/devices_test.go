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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDeviceName(t *testing.T, fsys afero.Fs, event, name string) {
	t.Helper()
	path := filepath.Join("/sys/class/input", event, "device", "name")
	require.NoError(t, afero.WriteFile(fsys, path, []byte(name+"\n"), 0o444))
}

func TestScanDevicesMatchesControllers(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeDeviceName(t, fsys, "event0", "gpio-keys")
	writeDeviceName(t, fsys, "event1", "ADC Joystick")
	writeDeviceName(t, fsys, "event2", "Deck Gamepad")
	writeDeviceName(t, fsys, "event3", "retrogame_joypad")
	// mice live under the same class but a different prefix
	require.NoError(t, afero.WriteFile(fsys,
		"/sys/class/input/mouse0/device/name", []byte("Mouse\n"), 0o444))

	devices, err := ScanDevices(fsys, "/sys/class/input", "/dev/input")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/dev/input/event1",
		"/dev/input/event2",
		"/dev/input/event3",
	}, devices)
}

func TestScanDevicesMissingClassDir(t *testing.T) {
	t.Parallel()

	_, err := ScanDevices(afero.NewMemMapFs(), "/sys/class/input", "/dev/input")
	require.ErrorIs(t, err, errkind.ErrIO)
}

func TestScanDevicesUnreadableNameSkipped(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	// event directory exists but has no name node
	require.NoError(t, fsys.MkdirAll("/sys/class/input/event0/device", 0o755))
	writeDeviceName(t, fsys, "event1", "Deck Gamepad")

	devices, err := ScanDevices(fsys, "/sys/class/input", "/dev/input")
	require.NoError(t, err)
	assert.Equal(t, []string{"/dev/input/event1"}, devices)
}

func TestOpenReaderMissingDevice(t *testing.T) {
	t.Parallel()

	_, err := OpenReader(filepath.Join(t.TempDir(), "event0"))
	require.ErrorIs(t, err, errkind.ErrNotFound)
}

func TestWatchHotplugReportsEventNodes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	added, _, closer, err := WatchHotplug(dir)
	require.NoError(t, err)
	defer func() { require.NoError(t, closer()) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "js0"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "event5"), nil, 0o644))

	select {
	case path := <-added:
		assert.Equal(t, filepath.Join(dir, "event5"), path,
			"non-event nodes are filtered out")
	case <-time.After(5 * time.Second):
		t.Fatal("no hotplug event delivered")
	}
}
