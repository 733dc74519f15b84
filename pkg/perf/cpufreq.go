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

package perf

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// maxCPUs bounds the per-CPU cpufreq policy scan. Handhelds in this
// class top out at 8 cores.
const maxCPUs = 8

// Governors is the closed set of accepted cpufreq governor names.
var Governors = []string{
	"performance", "powersave", "schedutil",
	"ondemand", "conservative", "userspace",
}

// SetGovernor writes the scaling governor for every CPU that exposes a
// cpufreq policy. An unknown governor name returns ErrInvalidArg. A
// write failure on cpu0 returns ErrPermission; failures on later CPUs
// are tolerated since the core count varies by device.
func (s *Sampler) SetGovernor(governor string) error {
	if !slices.Contains(Governors, governor) {
		return fmt.Errorf("%w: unknown governor %q", errkind.ErrInvalidArg, governor)
	}

	for cpu := range maxCPUs {
		path := s.cpufreqPath(cpu, "scaling_governor")
		if exists, _ := afero.Exists(s.fs, path); !exists {
			continue
		}
		if err := afero.WriteFile(s.fs, path, []byte(governor), 0o644); err != nil {
			if cpu == 0 {
				return fmt.Errorf("%w: set governor on cpu0: %w", errkind.ErrPermission, err)
			}
			break
		}
	}

	log.Info().Str("governor", governor).Msg("set cpu governor")
	return nil
}

// SetFreqBounds writes min/max scaling frequencies (in kHz) for every
// CPU that exposes a cpufreq policy. A zero bound means no limit and is
// left untouched. Writes are best effort.
func (s *Sampler) SetFreqBounds(minKHz, maxKHz uint32) error {
	for cpu := range maxCPUs {
		if minKHz > 0 {
			s.writeFreq(s.cpufreqPath(cpu, "scaling_min_freq"), minKHz)
		}
		if maxKHz > 0 {
			s.writeFreq(s.cpufreqPath(cpu, "scaling_max_freq"), maxKHz)
		}
	}
	return nil
}

func (s *Sampler) writeFreq(path string, khz uint32) {
	if exists, _ := afero.Exists(s.fs, path); !exists {
		return
	}
	value := strconv.FormatUint(uint64(khz), 10)
	if err := afero.WriteFile(s.fs, path, []byte(value), 0o644); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("cpufreq write failed")
	}
}

func (s *Sampler) cpufreqPath(cpu int, file string) string {
	return filepath.Join(s.device.CPUFreqDir, fmt.Sprintf("cpu%d", cpu), "cpufreq", file)
}
