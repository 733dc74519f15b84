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
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// Linux input event types.
const (
	EvKey uint16 = 0x01
	EvAbs uint16 = 0x03
)

// eventSize is the on-wire size of one input_event record on 64-bit
// platforms: 16 bytes of timestamp plus type, code and value.
const eventSize = 24

// Event is one decoded input event.
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

// gamepadNameHints marks an input device as a game controller when
// its reported name contains one of these substrings.
var gamepadNameHints = []string{
	"gamepad", "Gamepad", "Controller", "Joystick", "joypad",
}

// ScanDevices lists event device paths under devDir whose sysfs name
// looks like a game controller. The sysfs class tree is consulted so
// the device nodes themselves never need opening.
func ScanDevices(fsys afero.Fs, sysInputDir, devDir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, sysInputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", errkind.ErrIO, sysInputDir, err)
	}

	var devices []string
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "event") {
			continue
		}
		raw, err := afero.ReadFile(fsys,
			filepath.Join(sysInputDir, entry.Name(), "device", "name"))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(string(raw))
		for _, hint := range gamepadNameHints {
			if strings.Contains(name, hint) {
				devices = append(devices, filepath.Join(devDir, entry.Name()))
				break
			}
		}
	}
	sort.Strings(devices)
	return devices, nil
}

// Reader drains events from one device node without blocking the
// caller.
type Reader struct {
	path string
	fd   int
	buf  []byte
}

// OpenReader opens the device node in non-blocking mode.
func OpenReader(path string) (*Reader, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		if errors.Is(err, unix.ENOENT) {
			return nil, fmt.Errorf("%w: input device %s", errkind.ErrNotFound, path)
		}
		if errors.Is(err, unix.EACCES) {
			return nil, fmt.Errorf("%w: input device %s", errkind.ErrPermission, path)
		}
		return nil, fmt.Errorf("%w: open %s: %w", errkind.ErrIO, path, err)
	}
	return &Reader{path: path, fd: fd, buf: make([]byte, eventSize*64)}, nil
}

// Path returns the device node this reader drains.
func (r *Reader) Path() string {
	return r.path
}

// Poll reads all currently queued events. An empty queue returns an
// empty slice, not an error. A device that has gone away returns
// ErrNotFound so the caller can drop the reader.
func (r *Reader) Poll() ([]Event, error) {
	n, err := unix.Read(r.fd, r.buf)
	switch {
	case errors.Is(err, unix.EAGAIN):
		return nil, nil
	case errors.Is(err, unix.ENODEV):
		return nil, fmt.Errorf("%w: input device %s removed", errkind.ErrNotFound, r.path)
	case err != nil:
		return nil, fmt.Errorf("%w: reading %s: %w", errkind.ErrIO, r.path, err)
	}

	events := make([]Event, 0, n/eventSize)
	for off := 0; off+eventSize <= n; off += eventSize {
		rec := r.buf[off : off+eventSize]
		events = append(events, Event{
			Type: binary.LittleEndian.Uint16(rec[16:18]),
			Code: binary.LittleEndian.Uint16(rec[18:20]),
			//nolint:gosec // G115: the kernel writes a signed 32-bit value
			Value: int32(binary.LittleEndian.Uint32(rec[20:24])),
		})
	}
	return events, nil
}

// Close releases the device node.
func (r *Reader) Close() error {
	if err := unix.Close(r.fd); err != nil {
		return fmt.Errorf("%w: close %s: %w", errkind.ErrIO, r.path, err)
	}
	return nil
}

// WatchHotplug reports controller attach and detach through the
// returned channels until the watcher is closed. Only event device
// nodes are reported.
func WatchHotplug(devDir string) (added, removed <-chan string, closer func() error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: create watcher: %w", errkind.ErrIO, err)
	}
	if err := watcher.Add(devDir); err != nil {
		_ = watcher.Close()
		return nil, nil, nil, fmt.Errorf("%w: watch %s: %w", errkind.ErrIO, devDir, err)
	}

	addCh := make(chan string, hotplugQueueSize)
	removeCh := make(chan string, hotplugQueueSize)
	go func() {
		defer close(addCh)
		defer close(removeCh)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(event.Name), "event") {
					continue
				}
				switch {
				case event.Op.Has(fsnotify.Create):
					queueHotplug(addCh, event.Name)
				case event.Op.Has(fsnotify.Remove):
					queueHotplug(removeCh, event.Name)
				}
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(watchErr).Str("dir", devDir).Msg("input hotplug watch error")
			}
		}
	}()

	return addCh, removeCh, watcher.Close, nil
}

// hotplugQueueSize bounds pending hotplug notifications; a consumer
// that stops draining must not wedge the watch goroutine.
const hotplugQueueSize = 16

func queueHotplug(ch chan<- string, path string) {
	select {
	case ch <- path:
	default:
		log.Warn().Str("device", path).Msg("hotplug queue full, dropping event")
	}
}
