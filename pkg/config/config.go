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

// Package config holds the service configuration: the device profile
// describing where this hardware exposes its counters and controls, the
// emulator launch paths and the hotkey bindings. Loaded from a TOML
// file, with defaults matching a typical RK3566-class handheld.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/EmberDeckProject/emberdeck-core/pkg/helpers/syncutil"
	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const (
	// SchemaVersion is bumped when the config layout changes shape.
	SchemaVersion = 1

	// CfgEnv overrides the config file location.
	CfgEnv = "EMBERDECK_CFG"

	configDirName  = "emberdeck"
	configFileName = "config.toml"
)

// Values is the full on-disk configuration.
type Values struct {
	Device       Device   `toml:"device"`
	Emulator     Emulator `toml:"emulator"`
	Hotkeys      Hotkeys  `toml:"hotkeys"`
	ConfigSchema int      `toml:"config_schema"`
	DebugLogging bool     `toml:"debug_logging"`
}

// Device is the hardware profile: where this device exposes its
// counters and controls. Multi-valued fields are ordered fallback
// lists; the first path that exists wins.
type Device struct {
	BacklightDir   string   `toml:"backlight_dir"`
	CPUTempPath    string   `toml:"cpu_temp_path"`
	CPUFreqDir     string   `toml:"cpufreq_dir"`
	BatteryDir     string   `toml:"battery_dir"`
	InputDeviceDir string   `toml:"input_device_dir"`
	GPULoadPaths   []string `toml:"gpu_load_paths,omitempty,multiline"`
	GPUTempPaths   []string `toml:"gpu_temp_paths,omitempty,multiline"`
	HeadphonePaths []string `toml:"headphone_paths,omitempty,multiline"`
	MixerControls  []string `toml:"mixer_controls,omitempty"`
}

// Emulator holds launcher paths for the libretro frontend and the
// directories scanned for cores.
type Emulator struct {
	FrontendPath   string       `toml:"frontend_path"`
	Frontend32Path string       `toml:"frontend32_path"`
	CoresDir       string       `toml:"cores_dir"`
	Cores32Dir     string       `toml:"cores32_dir"`
	ConfigPath     string       `toml:"config_path"`
	Standalone     []Standalone `toml:"standalone,omitempty"`
}

// Standalone describes a registered standalone emulator.
type Standalone struct {
	Name        string   `toml:"name"`
	DisplayName string   `toml:"display_name,omitempty"`
	Path        string   `toml:"path"`
	ConfigDir   string   `toml:"config_dir,omitempty"`
	Systems     []string `toml:"systems,omitempty"`
	DefaultArgs []string `toml:"default_args,omitempty"`
}

// Hotkeys configures the modifier button and the action bindings.
// Bindings map action names to button names; unknown names are logged
// and skipped at engine setup time.
type Hotkeys struct {
	Modifier string            `toml:"modifier"`
	Bindings map[string]string `toml:"bindings,omitempty"`
	Enabled  bool              `toml:"enabled"`
}

// BaseDefaults is the starting configuration for a stock device.
var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Device: Device{
		BacklightDir:   "/sys/class/backlight/backlight",
		CPUTempPath:    "/sys/class/thermal/thermal_zone0/temp",
		CPUFreqDir:     "/sys/devices/system/cpu",
		BatteryDir:     "/sys/class/power_supply/battery",
		InputDeviceDir: "/dev/input",
		GPULoadPaths: []string{
			"/sys/class/devfreq/ffa30000.gpu/load",
			"/sys/kernel/gpu/gpu_busy",
			"/sys/class/kgsl/kgsl-3d0/gpu_busy_percentage",
		},
		GPUTempPaths: []string{
			"/sys/class/thermal/thermal_zone1/temp",
			"/sys/class/kgsl/kgsl-3d0/temp",
		},
		HeadphonePaths: []string{
			"/sys/class/switch/h2w/state",
		},
		MixerControls: []string{"Master", "Playback", "PCM"},
	},
	Emulator: Emulator{
		FrontendPath:   "/usr/bin/retroarch",
		Frontend32Path: "/usr/bin/retroarch32",
		CoresDir:       "/usr/lib/libretro",
		Cores32Dir:     "/usr/lib/libretro32",
		ConfigPath:     "/home/deck/.config/retroarch/retroarch.cfg",
	},
	Hotkeys: Hotkeys{
		Enabled:  true,
		Modifier: "Select",
		Bindings: map[string]string{
			"exit":            "Start",
			"save_state":      "R1",
			"load_state":      "L1",
			"screenshot":      "L2",
			"fast_forward":    "R2",
			"menu":            "X",
			"pause":           "Y",
			"volume_up":       "Up",
			"volume_down":     "Down",
			"brightness_up":   "Right",
			"brightness_down": "Left",
		},
	},
}

// Instance is a live configuration handle, safe for concurrent access.
type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// DefaultPath returns the config file location, honouring the CfgEnv
// override and falling back to the XDG config directory.
func DefaultPath() string {
	if env := os.Getenv(CfgEnv); env != "" {
		return env
	}
	return filepath.Join(xdg.ConfigHome, configDirName, configFileName)
}

// NewInstance creates a config instance backed by the file at path and
// loads it if it exists. A missing file is not an error: defaults apply
// until the first Save.
func NewInstance(path string, defaults Values) (*Instance, error) {
	cfg := &Instance{
		cfgPath:  path,
		vals:     defaults,
		defaults: defaults,
	}

	if err := cfg.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", path).Msg("no config file, using defaults")
			return cfg, nil
		}
		return nil, err
	}

	return cfg, nil
}

// Load re-reads the config file from disk.
func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	vals := c.defaults
	if err := toml.Unmarshal(data, &vals); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	c.vals = vals

	log.Info().Str("path", c.cfgPath).Msg("loaded config file")
	return nil
}

// Save writes the current config to disk.
func (c *Instance) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	if err := os.MkdirAll(filepath.Dir(c.cfgPath), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Device returns the device profile.
func (c *Instance) Device() Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Device
}

// Emulator returns the emulator launch paths.
func (c *Instance) Emulator() Emulator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Emulator
}

// Hotkeys returns the hotkey bindings.
func (c *Instance) Hotkeys() Hotkeys {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Hotkeys
}

// DebugLogging reports whether debug logging is enabled.
func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

// SetDebugLogging toggles debug logging.
func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
}
