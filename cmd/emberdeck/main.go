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

// Command emberdeck launches a game in the configured emulator and
// supervises it: hotkeys, performance sampling and device controls for
// the duration of the session.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/EmberDeckProject/emberdeck-core/pkg/config"
	"github.com/EmberDeckProject/emberdeck-core/pkg/emulator"
	"github.com/EmberDeckProject/emberdeck-core/pkg/helpers"
	"github.com/EmberDeckProject/emberdeck-core/pkg/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const appVersion = "0.3.0"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config file")
	systemID := flag.String("system", "", "force a system instead of detecting from the content extension")
	coreName := flag.String("core", "", "override the libretro core")
	standalone := flag.String("standalone", "", "launch a standalone emulator by id")
	loadSlot := flag.Int("slot", emulator.NoLoadSlot, "save-state slot to load at start")
	use32bit := flag.Bool("32bit", false, "use the 32-bit frontend and core set")
	windowed := flag.Bool("windowed", false, "start windowed instead of fullscreen")
	verbose := flag.Bool("verbose", false, "verbose emulator logging")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Fprintf(os.Stdout, "emberdeck v%s\n", appVersion)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: emberdeck [flags] <content path>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	contentPath := flag.Arg(0)

	cfg, err := config.NewInstance(*configPath, config.BaseDefaults)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	if err := helpers.InitLogging(filepath.Dir(*configPath)); err != nil {
		fmt.Fprintf(os.Stderr, "initializing logging: %v\n", err)
		os.Exit(1)
	}
	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	lc, err := buildLaunchConfig(afero.NewOsFs(), cfg, contentPath, *systemID,
		*coreName, *standalone, *loadSlot, !*windowed, *verbose, *use32bit)
	if err != nil {
		log.Error().Err(err).Msg("building launch config")
		os.Exit(1)
	}

	os.Exit(run(cfg, lc))
}

func run(cfg *config.Instance, lc emulator.LaunchConfig) int {
	session, err := service.NewSession(cfg)
	if err != nil {
		log.Error().Err(err).Msg("creating session")
		return 1
	}

	if err := session.Launch(lc); err != nil {
		log.Error().Err(err).Msg("launching emulator")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("session ended with error")
		return 1
	}
	return 0
}

// buildLaunchConfig resolves the content path to a launch config:
// a standalone emulator when requested, the configured libretro
// frontend otherwise. Force32Bit selects the 32-bit frontend and core
// directory for the frontend family; standalones have a single build.
func buildLaunchConfig(
	fsys afero.Fs,
	cfg *config.Instance,
	contentPath, systemID, coreName, standaloneID string,
	loadSlot int,
	fullscreen, verbose, use32bit bool,
) (emulator.LaunchConfig, error) {
	emu := cfg.Emulator()

	if standaloneID != "" {
		registry := emulator.NewStandaloneRegistry(fsys, emu.Standalone)
		lc, err := registry.LaunchConfigFor(standaloneID, contentPath)
		if err != nil {
			return emulator.LaunchConfig{}, err
		}
		lc.LoadStateSlot = loadSlot
		lc.Fullscreen = fullscreen
		lc.Verbose = verbose
		return lc, nil
	}

	system, err := resolveSystem(contentPath, systemID)
	if err != nil {
		return emulator.LaunchConfig{}, err
	}
	if coreName == "" {
		coreName = system.DefaultCore
	}

	lc := emulator.NewLaunchConfig(emulator.FamilyFrontend, "")
	lc.Force32Bit = use32bit

	resolver := emulator.NewCoreResolver(fsys, emu)
	lc.Executable = resolver.FrontendPath(lc.Force32Bit)
	lc.CorePath, err = resolver.Resolve(coreName, lc.Force32Bit)
	if err != nil {
		return emulator.LaunchConfig{}, err
	}

	lc.ContentPath = contentPath
	lc.SettingsPath = emu.ConfigPath
	lc.LoadStateSlot = loadSlot
	lc.Fullscreen = fullscreen
	lc.Verbose = verbose
	return lc, nil
}

func resolveSystem(contentPath, systemID string) (emulator.System, error) {
	if systemID != "" {
		system, ok := emulator.SystemByID(systemID)
		if !ok {
			return emulator.System{}, fmt.Errorf("unknown system %q", systemID)
		}
		return system, nil
	}
	system, ok := emulator.SystemForPath(contentPath)
	if !ok {
		return emulator.System{}, fmt.Errorf("cannot detect system for %q", contentPath)
	}
	return system, nil
}
