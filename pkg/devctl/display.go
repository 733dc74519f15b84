// EmberDeck Core
// Copyright (c) 2026 The EmberDeck Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of EmberDeck Core.
//
// EmberDeck Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// EmberDeck Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with EmberDeck Core.  If not, see <http://www.gnu.org/licenses/>.

// Package devctl exposes small stateless get/set operations for the
// device controls the hotkey handlers drive: display brightness and
// audio volume, mute and output routing.
package devctl

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/spf13/afero"
)

// fallbackMaxBrightness applies when the backlight does not report a
// max_brightness value.
const fallbackMaxBrightness = 255

// brightnessSteps is the number of hotkey increments across the full
// brightness range.
const brightnessSteps = 10

// Display controls panel brightness through the backlight sysfs class.
type Display struct {
	fs           afero.Fs
	backlightDir string
}

// NewDisplay returns a Display for the given backlight directory.
func NewDisplay(fsys afero.Fs, backlightDir string) *Display {
	return &Display{
		fs:           fsys,
		backlightDir: backlightDir,
	}
}

// Brightness returns the current brightness value.
func (d *Display) Brightness() (int, error) {
	value, err := d.readInt("brightness")
	if err != nil {
		return 0, fmt.Errorf("%w: read brightness: %w", errkind.ErrNotFound, err)
	}
	return value, nil
}

// MaxBrightness returns the panel's maximum brightness value, falling
// back to 255 when the backlight does not report one.
func (d *Display) MaxBrightness() int {
	maxVal, err := d.readInt("max_brightness")
	if err != nil || maxVal <= 0 {
		return fallbackMaxBrightness
	}
	return maxVal
}

// SetBrightness writes a brightness value, clamped to [0, max].
func (d *Display) SetBrightness(value int) error {
	maxVal := d.MaxBrightness()
	if value < 0 {
		value = 0
	}
	if value > maxVal {
		value = maxVal
	}

	path := filepath.Join(d.backlightDir, "brightness")
	data := []byte(strconv.Itoa(value))
	if err := afero.WriteFile(d.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write brightness: %w", errkind.ErrPermission, err)
	}
	return nil
}

// StepBrightness moves brightness one hotkey step up or down. The step
// is a tenth of the full range, at least 1, and the result clamps to
// [0, max], so repeated presses at either end are idempotent.
func (d *Display) StepBrightness(up bool) error {
	current, err := d.Brightness()
	if err != nil {
		return err
	}

	maxVal := d.MaxBrightness()
	step := maxVal / brightnessSteps
	if step < 1 {
		step = 1
	}

	if up {
		return d.SetBrightness(current + step)
	}
	return d.SetBrightness(current - step)
}

func (d *Display) readInt(file string) (int, error) {
	data, err := afero.ReadFile(d.fs, filepath.Join(d.backlightDir, file))
	if err != nil {
		return 0, err //nolint:wrapcheck // callers add context
	}
	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", file, err)
	}
	return value, nil
}
