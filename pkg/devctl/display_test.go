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

package devctl

import (
	"testing"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backlightDir = "/sys/class/backlight/backlight"

func newTestDisplay(t *testing.T, brightness, maxBrightness string) (*Display, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if brightness != "" {
		require.NoError(t, afero.WriteFile(fsys,
			backlightDir+"/brightness", []byte(brightness), 0o644))
	}
	if maxBrightness != "" {
		require.NoError(t, afero.WriteFile(fsys,
			backlightDir+"/max_brightness", []byte(maxBrightness), 0o444))
	}
	return NewDisplay(fsys, backlightDir), fsys
}

func readBrightness(t *testing.T, fsys afero.Fs) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, backlightDir+"/brightness")
	require.NoError(t, err)
	return string(data)
}

func TestBrightnessRead(t *testing.T) {
	t.Parallel()

	d, _ := newTestDisplay(t, "128\n", "255\n")

	value, err := d.Brightness()
	require.NoError(t, err)
	assert.Equal(t, 128, value)
}

func TestBrightnessMissingBacklight(t *testing.T) {
	t.Parallel()

	d, _ := newTestDisplay(t, "", "")

	_, err := d.Brightness()
	require.ErrorIs(t, err, errkind.ErrNotFound)
}

func TestMaxBrightnessFallback(t *testing.T) {
	t.Parallel()

	d, _ := newTestDisplay(t, "100", "")
	assert.Equal(t, 255, d.MaxBrightness())

	d, _ = newTestDisplay(t, "100", "0")
	assert.Equal(t, 255, d.MaxBrightness(), "a zero maximum is not usable")

	d, _ = newTestDisplay(t, "100", "512")
	assert.Equal(t, 512, d.MaxBrightness())
}

func TestSetBrightnessClampsToRange(t *testing.T) {
	t.Parallel()

	d, fsys := newTestDisplay(t, "100", "255")

	require.NoError(t, d.SetBrightness(999))
	assert.Equal(t, "255", readBrightness(t, fsys))

	require.NoError(t, d.SetBrightness(-5))
	assert.Equal(t, "0", readBrightness(t, fsys))
}

func TestSetBrightnessReadOnlyBacklight(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys,
		backlightDir+"/brightness", []byte("100"), 0o644))
	d := NewDisplay(afero.NewReadOnlyFs(fsys), backlightDir)

	err := d.SetBrightness(50)
	require.ErrorIs(t, err, errkind.ErrPermission)
}

func TestStepBrightnessUpClampsAtMax(t *testing.T) {
	t.Parallel()

	// Step is max/10 = 25, so 250 + 25 clamps to 255.
	d, fsys := newTestDisplay(t, "250", "255")

	require.NoError(t, d.StepBrightness(true))
	assert.Equal(t, "255", readBrightness(t, fsys))
}

func TestStepBrightnessDownClampsAtZero(t *testing.T) {
	t.Parallel()

	d, fsys := newTestDisplay(t, "5", "255")

	require.NoError(t, d.StepBrightness(false))
	assert.Equal(t, "0", readBrightness(t, fsys))
}

func TestStepBrightnessMinimumStep(t *testing.T) {
	t.Parallel()

	// A tiny range still moves by at least 1 per press.
	d, fsys := newTestDisplay(t, "3", "7")

	require.NoError(t, d.StepBrightness(true))
	assert.Equal(t, "4", readBrightness(t, fsys))
}
