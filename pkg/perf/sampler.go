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

// Package perf samples hardware counters exposed through procfs and
// sysfs: CPU utilization, temperatures, frequencies, memory and battery
// state, plus GPU load where the device exposes it. Hardware exposure
// varies wildly between devices, so sampling is strictly best effort:
// a missing counter yields a neutral default, never an error.
package perf

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/EmberDeckProject/emberdeck-core/pkg/config"
	"github.com/EmberDeckProject/emberdeck-core/pkg/helpers/syncutil"
	"github.com/spf13/afero"
)

// Snapshot is a point-in-time aggregate of device performance state.
// FPS and FrameTimeMs are populated by the embedding application from
// frontend-reported frame timing; this package leaves them zero.
type Snapshot struct {
	CPUPercent      float64
	CPUTempC        int
	CPUFreqMHz      uint32
	MemTotalKB      uint64
	MemUsedKB       uint64
	MemFreeKB       uint64
	BatteryPercent  int
	BatteryCharging bool
	BatteryTempC    int
	GPUPercent      float64
	GPUTempC        int
	FPS             float64
	FrameTimeMs     float64
}

type cpuCounters struct {
	user    uint64
	nice    uint64
	system  uint64
	idle    uint64
	iowait  uint64
	irq     uint64
	softirq uint64
}

// Sampler reads device counters on demand. CPU percent is computed
// from deltas between consecutive Sample calls, so the sampler carries
// the previous counter set between calls and must not be shared between
// independent measurement streams.
type Sampler struct {
	fs       afero.Fs
	procPath string
	device   config.Device
	prev     cpuCounters
	hasPrev  bool
	mu       syncutil.Mutex
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithFs sets the filesystem used for all counter reads (for testing).
func WithFs(fsys afero.Fs) Option {
	return func(s *Sampler) {
		s.fs = fsys
	}
}

// WithProcPath sets a custom /proc path (for testing).
func WithProcPath(path string) Option {
	return func(s *Sampler) {
		s.procPath = path
	}
}

// New creates a sampler for the given device profile.
func New(device config.Device, opts ...Option) *Sampler {
	s := &Sampler{
		fs:       afero.NewOsFs(),
		procPath: "/proc",
		device:   device,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample reads all counters and returns a snapshot. It never fails:
// counters the device does not expose yield zero or default fields.
func (s *Sampler) Sample() Snapshot {
	var snap Snapshot

	snap.CPUPercent = s.cpuPercent()

	// Thermal zone reports millidegrees.
	if temp, ok := s.readInt(s.device.CPUTempPath); ok {
		snap.CPUTempC = int(temp / 1000)
	}

	// cpufreq reports kHz.
	curFreq := filepath.Join(s.device.CPUFreqDir, "cpu0", "cpufreq", "scaling_cur_freq")
	if freq, ok := s.readInt(curFreq); ok && freq >= 0 {
		snap.CPUFreqMHz = uint32(freq / 1000)
	}

	s.memInfo(&snap)
	s.batteryInfo(&snap)

	// GPU counters move between kernels and SoCs; probe the candidate
	// lists in order and take the first that exists.
	for _, path := range s.device.GPULoadPaths {
		if load, ok := s.readInt(path); ok {
			snap.GPUPercent = float64(load)
			break
		}
	}
	for _, path := range s.device.GPUTempPaths {
		if temp, ok := s.readInt(path); ok {
			snap.GPUTempC = int(temp / 1000)
			break
		}
	}

	return snap
}

// cpuPercent computes aggregate CPU utilization from the delta between
// this call's /proc/stat counters and the previous call's. The first
// call has no baseline and reports 0. A counter running backwards
// (reset or wraparound) also re-baselines and reports 0 rather than
// producing a negative or overflowed percentage.
func (s *Sampler) cpuPercent() float64 {
	cur, ok := s.readCPUCounters()
	if !ok {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.prev
	hadPrev := s.hasPrev
	s.prev = cur
	s.hasPrev = true

	if !hadPrev {
		return 0
	}
	if cur.user < prev.user || cur.nice < prev.nice || cur.system < prev.system ||
		cur.idle < prev.idle || cur.iowait < prev.iowait ||
		cur.irq < prev.irq || cur.softirq < prev.softirq {
		return 0
	}

	dUser := cur.user - prev.user
	dNice := cur.nice - prev.nice
	dSystem := cur.system - prev.system
	dIdle := cur.idle - prev.idle
	dIowait := cur.iowait - prev.iowait
	dIrq := cur.irq - prev.irq
	dSoftirq := cur.softirq - prev.softirq

	total := dUser + dNice + dSystem + dIdle + dIowait + dIrq + dSoftirq
	busy := dUser + dNice + dSystem + dIrq + dSoftirq

	if total == 0 {
		return 0
	}
	return float64(busy) / float64(total) * 100
}

// readCPUCounters parses the aggregate "cpu" line of /proc/stat.
func (s *Sampler) readCPUCounters() (cpuCounters, bool) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.procPath, "stat"))
	if err != nil {
		return cpuCounters{}, false
	}

	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) < 8 || fields[0] != "cpu" {
		return cpuCounters{}, false
	}

	vals := make([]uint64, 7)
	for i := range vals {
		v, err := strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return cpuCounters{}, false
		}
		vals[i] = v
	}

	return cpuCounters{
		user:    vals[0],
		nice:    vals[1],
		system:  vals[2],
		idle:    vals[3],
		iowait:  vals[4],
		irq:     vals[5],
		softirq: vals[6],
	}, true
}

func (s *Sampler) memInfo(snap *Snapshot) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.procPath, "meminfo"))
	if err != nil {
		return
	}

	var memFree, memAvailable uint64
	for line := range strings.Lines(string(data)) {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		value, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			snap.MemTotalKB = value
		case "MemFree:":
			memFree = value
		case "MemAvailable:":
			memAvailable = value
		}
	}

	if memAvailable > 0 {
		snap.MemFreeKB = memAvailable
	} else {
		snap.MemFreeKB = memFree
	}
	if snap.MemTotalKB >= snap.MemFreeKB {
		snap.MemUsedKB = snap.MemTotalKB - snap.MemFreeKB
	}
}

func (s *Sampler) batteryInfo(snap *Snapshot) {
	// A device without a battery node is assumed to be on mains power.
	snap.BatteryPercent = 100

	if capacity, ok := s.readInt(filepath.Join(s.device.BatteryDir, "capacity")); ok {
		snap.BatteryPercent = int(capacity)
	}
	if status, ok := s.readString(filepath.Join(s.device.BatteryDir, "status")); ok {
		snap.BatteryCharging = status == "Charging"
	}
	// Power supply class reports tenths of a degree.
	if temp, ok := s.readInt(filepath.Join(s.device.BatteryDir, "temp")); ok {
		snap.BatteryTempC = int(temp / 10)
	}
}

// readInt reads a single integer from a sysfs-style text file.
func (s *Sampler) readInt(path string) (int64, bool) {
	if path == "" {
		return 0, false
	}
	raw, ok := s.readString(path)
	if !ok {
		return 0, false
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, false
	}
	value, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func (s *Sampler) readString(path string) (string, bool) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}
