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

package devctl

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/EmberDeckProject/emberdeck-core/pkg/helpers/command"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	amixerBin   = "amixer"
	maxVolume   = 100
	volumeStep  = 10
	mixerOffTag = "[off]"
)

// Output routes for SetOutput.
const (
	OutputSpeaker    = "speaker"
	OutputHeadphones = "headphones"
	OutputHDMI       = "hdmi"
)

// volumeRe matches the "[NN%]" token in mixer tool output.
var volumeRe = regexp.MustCompile(`\[(\d+)%\]`)

// Mixer reads and sets volume, mute and output routing through the
// system mixer command-line tool. Control names vary by codec, so every
// operation tries the configured control names in order and uses the
// first that the tool accepts.
type Mixer struct {
	exec           command.Executor
	fs             afero.Fs
	controls       []string
	headphonePaths []string
}

// NewMixer returns a Mixer using the given mixer control name fallback
// chain and headphone detection paths.
func NewMixer(exec command.Executor, fsys afero.Fs, controls, headphonePaths []string) *Mixer {
	if len(controls) == 0 {
		controls = []string{"Master"}
	}
	return &Mixer{
		exec:           exec,
		fs:             fsys,
		controls:       controls,
		headphonePaths: headphonePaths,
	}
}

// Volume returns the current volume percentage (0-100).
func (m *Mixer) Volume(ctx context.Context) (int, error) {
	out, err := m.get(ctx)
	if err != nil {
		return 0, err
	}

	match := volumeRe.FindSubmatch(out)
	if match == nil {
		return 0, fmt.Errorf("%w: no volume token in mixer output", errkind.ErrIO)
	}
	volume, err := strconv.Atoi(string(match[1]))
	if err != nil {
		return 0, fmt.Errorf("%w: parse volume: %w", errkind.ErrIO, err)
	}
	return volume, nil
}

// SetVolume sets the volume percentage, clamped to [0, 100].
func (m *Mixer) SetVolume(ctx context.Context, volume int) error {
	if volume < 0 {
		volume = 0
	}
	if volume > maxVolume {
		volume = maxVolume
	}
	return m.set(ctx, strconv.Itoa(volume)+"%")
}

// StepVolume moves the volume one hotkey step (10%) up or down,
// clamping at the range bounds.
func (m *Mixer) StepVolume(ctx context.Context, up bool) error {
	current, err := m.Volume(ctx)
	if err != nil {
		return err
	}
	if up {
		return m.SetVolume(ctx, current+volumeStep)
	}
	return m.SetVolume(ctx, current-volumeStep)
}

// Muted reports whether the output is muted. Mixer failures report
// unmuted rather than erroring.
func (m *Mixer) Muted(ctx context.Context) bool {
	out, err := m.get(ctx)
	if err != nil {
		return false
	}
	return strings.Contains(string(out), mixerOffTag)
}

// SetMute mutes or unmutes the output.
func (m *Mixer) SetMute(ctx context.Context, mute bool) error {
	state := "on"
	if mute {
		state = "off"
	}
	return m.set(ctx, state)
}

// SetOutput routes audio to the named output. The playback path
// control is codec-specific; unknown routes return ErrInvalidArg.
func (m *Mixer) SetOutput(ctx context.Context, output string) error {
	var path string
	switch output {
	case OutputSpeaker:
		path = "SPK"
	case OutputHeadphones:
		path = "HP"
	case OutputHDMI:
		path = "HDMI"
	default:
		return fmt.Errorf("%w: unknown audio output %q", errkind.ErrInvalidArg, output)
	}

	if err := m.exec.Run(ctx, amixerBin, "sset", "Playback Path", path); err != nil {
		return fmt.Errorf("%w: set playback path: %w", errkind.ErrIO, err)
	}
	return nil
}

// HeadphonesConnected probes for a plugged headphone jack. Detection is
// very device-specific, so it walks a fallback chain: the switch class
// node, the extcon state file, then jack state in the mixer contents.
func (m *Mixer) HeadphonesConnected(ctx context.Context) bool {
	for _, path := range m.headphonePaths {
		data, err := afero.ReadFile(m.fs, path)
		if err != nil {
			continue
		}
		text := strings.TrimSpace(string(data))

		// switch/gpio nodes report a bare integer
		if state, err := strconv.Atoi(text); err == nil {
			return state != 0
		}
		// extcon state files report NAME=0/1 lines
		if strings.Contains(text, "HEADPHONE=1") || strings.Contains(text, "JACK=1") {
			return true
		}
	}

	out, err := m.exec.Output(ctx, amixerBin, "contents")
	if err != nil {
		return false
	}
	text := string(out)
	return strings.Contains(text, "Jack=on") || strings.Contains(text, "Headphone=on")
}

// get runs "sget" against each control name until one succeeds.
func (m *Mixer) get(ctx context.Context) ([]byte, error) {
	var lastErr error
	for _, control := range m.controls {
		out, err := m.exec.Output(ctx, amixerBin, "sget", control)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: mixer query failed: %w", errkind.ErrIO, lastErr)
}

// set runs "sset <control> <value>" against each control name until
// one succeeds.
func (m *Mixer) set(ctx context.Context, value string) error {
	var lastErr error
	for _, control := range m.controls {
		err := m.exec.Run(ctx, amixerBin, "sset", control, value)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	log.Debug().Err(lastErr).Str("value", value).Msg("all mixer controls failed")
	return fmt.Errorf("%w: mixer set failed: %w", errkind.ErrIO, lastErr)
}
