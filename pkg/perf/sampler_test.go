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

package perf

import (
	"fmt"
	"testing"

	"github.com/EmberDeckProject/emberdeck-core/pkg/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDevice() config.Device {
	return config.Device{
		BacklightDir: "/sys/class/backlight/backlight",
		CPUTempPath:  "/sys/class/thermal/thermal_zone0/temp",
		CPUFreqDir:   "/sys/devices/system/cpu",
		BatteryDir:   "/sys/class/power_supply/battery",
		GPULoadPaths: []string{
			"/sys/class/devfreq/gpu/load",
			"/sys/kernel/gpu/gpu_busy",
		},
		GPUTempPaths: []string{
			"/sys/class/thermal/thermal_zone1/temp",
		},
	}
}

func writeStat(t *testing.T, fsys afero.Fs, user, nice, system, idle, iowait, irq, softirq uint64) {
	t.Helper()
	line := fmt.Sprintf("cpu  %d %d %d %d %d %d %d 0 0 0\ncpu0 0 0 0 0 0 0 0\n",
		user, nice, system, idle, iowait, irq, softirq)
	require.NoError(t, afero.WriteFile(fsys, "/proc/stat", []byte(line), 0o444))
}

func newTestSampler(fsys afero.Fs) *Sampler {
	return New(testDevice(), WithFs(fsys), WithProcPath("/proc"))
}

func TestCPUPercentFirstSampleIsZero(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeStat(t, fsys, 100, 0, 50, 1000, 0, 0, 0)

	s := newTestSampler(fsys)
	snap := s.Sample()

	assert.Zero(t, snap.CPUPercent, "no baseline on the first sample")
}

func TestCPUPercentDelta(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeStat(t, fsys, 100, 0, 50, 1000, 0, 0, 0)

	s := newTestSampler(fsys)
	s.Sample()

	// 10 busy ticks against 90 idle ticks is 10 percent.
	writeStat(t, fsys, 105, 0, 55, 1090, 0, 0, 0)
	snap := s.Sample()

	assert.InDelta(t, 10.0, snap.CPUPercent, 0.001)
}

func TestCPUPercentCounterResetRebaselines(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeStat(t, fsys, 1000, 0, 500, 10000, 0, 0, 0)

	s := newTestSampler(fsys)
	s.Sample()

	// Counters running backwards must not produce a negative or
	// wrapped percentage.
	writeStat(t, fsys, 10, 0, 5, 100, 0, 0, 0)
	snap := s.Sample()
	assert.Zero(t, snap.CPUPercent)

	// The reset set becomes the new baseline.
	writeStat(t, fsys, 20, 0, 10, 185, 0, 0, 0)
	snap = s.Sample()
	assert.InDelta(t, 15.0, snap.CPUPercent, 0.001)
}

func TestCPUPercentZeroTotalDelta(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeStat(t, fsys, 100, 0, 50, 1000, 0, 0, 0)

	s := newTestSampler(fsys)
	s.Sample()
	snap := s.Sample()

	assert.Zero(t, snap.CPUPercent, "identical counters must not divide by zero")
}

func TestSampleTemperatureAndFrequencyUnits(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys,
		"/sys/class/thermal/thermal_zone0/temp", []byte("52500\n"), 0o444))
	require.NoError(t, afero.WriteFile(fsys,
		"/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq", []byte("1800000\n"), 0o444))

	snap := newTestSampler(fsys).Sample()

	assert.Equal(t, 52, snap.CPUTempC, "millidegrees truncate to whole degrees")
	assert.Equal(t, uint32(1800), snap.CPUFreqMHz, "kHz converts to MHz")
}

func TestSampleMemInfoPrefersMemAvailable(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	meminfo := "MemTotal:       1024000 kB\n" +
		"MemFree:         100000 kB\n" +
		"MemAvailable:    400000 kB\n"
	require.NoError(t, afero.WriteFile(fsys, "/proc/meminfo", []byte(meminfo), 0o444))

	snap := newTestSampler(fsys).Sample()

	assert.Equal(t, uint64(1024000), snap.MemTotalKB)
	assert.Equal(t, uint64(400000), snap.MemFreeKB)
	assert.Equal(t, uint64(624000), snap.MemUsedKB)
}

func TestSampleBatteryDefaultsWithoutNode(t *testing.T) {
	t.Parallel()

	snap := newTestSampler(afero.NewMemMapFs()).Sample()

	assert.Equal(t, 100, snap.BatteryPercent, "no battery means mains power")
	assert.False(t, snap.BatteryCharging)
	assert.Zero(t, snap.BatteryTempC)
}

func TestSampleBatteryUnits(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys,
		"/sys/class/power_supply/battery/capacity", []byte("73\n"), 0o444))
	require.NoError(t, afero.WriteFile(fsys,
		"/sys/class/power_supply/battery/status", []byte("Charging\n"), 0o444))
	require.NoError(t, afero.WriteFile(fsys,
		"/sys/class/power_supply/battery/temp", []byte("312\n"), 0o444))

	snap := newTestSampler(fsys).Sample()

	assert.Equal(t, 73, snap.BatteryPercent)
	assert.True(t, snap.BatteryCharging)
	assert.Equal(t, 31, snap.BatteryTempC, "power supply reports deci-degrees")
}

func TestSampleGPUFallbackOrder(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	// Only the second candidate path exists.
	require.NoError(t, afero.WriteFile(fsys,
		"/sys/kernel/gpu/gpu_busy", []byte("45\n"), 0o444))
	require.NoError(t, afero.WriteFile(fsys,
		"/sys/class/thermal/thermal_zone1/temp", []byte("61000\n"), 0o444))

	snap := newTestSampler(fsys).Sample()

	assert.InDelta(t, 45.0, snap.GPUPercent, 0.001)
	assert.Equal(t, 61, snap.GPUTempC)
}

func TestSampleNeverFails(t *testing.T) {
	t.Parallel()

	// A completely bare filesystem still yields a usable snapshot.
	snap := newTestSampler(afero.NewMemMapFs()).Sample()

	assert.Zero(t, snap.CPUPercent)
	assert.Zero(t, snap.CPUTempC)
	assert.Zero(t, snap.MemTotalKB)
	assert.Equal(t, 100, snap.BatteryPercent)
}
