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
	"fmt"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/EmberDeckProject/emberdeck-core/pkg/helpers/syncutil"
	"github.com/bendahl/uinput"
	"github.com/rs/zerolog/log"
)

const (
	// MaxMapEntries bounds the button remap table.
	MaxMapEntries = 32
	// DefaultDeadzone is the analog threshold below which stick input
	// is discarded.
	DefaultDeadzone = 4096
	// maxAxisValue is the largest magnitude an analog axis reports.
	maxAxisValue = 32767
)

// MapEntry rewrites one source button code to a target code.
type MapEntry struct {
	From uint16
	To   uint16
}

// Remapper rewrites button codes and filters analog noise before
// events reach the hotkey engine or a virtual pad. Lookups are first
// match wins, so duplicate From codes keep the earliest entry's
// target.
type Remapper struct {
	entries  []MapEntry
	deadzone int32
	mu       syncutil.RWMutex
}

// NewRemapper returns an empty remapper with the default deadzone.
func NewRemapper() *Remapper {
	return &Remapper{deadzone: DefaultDeadzone}
}

// AddMapping appends one rewrite rule. Returns ErrInvalidArg once the
// table is full.
func (r *Remapper) AddMapping(from, to uint16) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) >= MaxMapEntries {
		return fmt.Errorf("%w: remap table full (%d entries)", errkind.ErrInvalidArg, MaxMapEntries)
	}
	r.entries = append(r.entries, MapEntry{From: from, To: to})
	return nil
}

// Apply replaces the table with the first MaxMapEntries of the given
// entries and returns how many were stored.
func (r *Remapper) Apply(entries []MapEntry) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := min(len(entries), MaxMapEntries)
	r.entries = append(r.entries[:0], entries[:n]...)
	return n
}

// Resolve rewrites a button code, returning it unchanged when no rule
// matches.
func (r *Remapper) Resolve(code uint16) uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.From == code {
			return e.To
		}
	}
	return code
}

// SetDeadzone sets the analog threshold. Values outside the axis range
// return ErrInvalidArg.
func (r *Remapper) SetDeadzone(v int32) error {
	if v < 0 || v > maxAxisValue {
		return fmt.Errorf("%w: deadzone %d out of range 0..%d", errkind.ErrInvalidArg, v, maxAxisValue)
	}
	r.mu.Lock()
	r.deadzone = v
	r.mu.Unlock()
	return nil
}

// Deadzone returns the current analog threshold.
func (r *Remapper) Deadzone() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deadzone
}

// FilterAxis zeroes analog values inside the deadzone.
func (r *Remapper) FilterAxis(value int32) int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if value > -r.deadzone && value < r.deadzone {
		return 0
	}
	return value
}

// Forwarder presents remapped button events as a virtual gamepad so
// emulators see a single stable controller regardless of the physical
// device.
type Forwarder struct {
	pad   uinput.Gamepad
	remap *Remapper
}

// NewForwarder creates the virtual pad device.
func NewForwarder(name string, remap *Remapper) (*Forwarder, error) {
	pad, err := uinput.CreateGamepad("/dev/uinput", []byte(name), 0x045e, 0x028e)
	if err != nil {
		return nil, fmt.Errorf("%w: create virtual gamepad: %w", errkind.ErrIO, err)
	}
	return &Forwarder{pad: pad, remap: remap}, nil
}

// ForwardButton emits one remapped button transition on the virtual
// pad.
func (f *Forwarder) ForwardButton(code uint16, pressed bool) error {
	target := int(f.remap.Resolve(code))
	var err error
	if pressed {
		err = f.pad.ButtonDown(target)
	} else {
		err = f.pad.ButtonUp(target)
	}
	if err != nil {
		return fmt.Errorf("%w: forward button %d: %w", errkind.ErrIO, target, err)
	}
	return nil
}

// ForwardLeftStick emits deadzone-filtered stick coordinates.
func (f *Forwarder) ForwardLeftStick(x, y int32) error {
	fx := float32(f.remap.FilterAxis(x)) / maxAxisValue
	fy := float32(f.remap.FilterAxis(y)) / maxAxisValue
	if err := f.pad.LeftStickMove(fx, fy); err != nil {
		return fmt.Errorf("%w: move left stick: %w", errkind.ErrIO, err)
	}
	return nil
}

// Close destroys the virtual pad.
func (f *Forwarder) Close() error {
	if err := f.pad.Close(); err != nil {
		log.Warn().Err(err).Msg("closing virtual gamepad")
		return fmt.Errorf("%w: close virtual gamepad: %w", errkind.ErrIO, err)
	}
	return nil
}
