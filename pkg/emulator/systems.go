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

package emulator

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/EmberDeckProject/emberdeck-core/pkg/config"
	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/spf13/afero"
)

// System describes a game system known to the launcher.
type System struct {
	ID          string
	DisplayName string
	DefaultCore string
}

var systems = map[string]System{
	"nes":       {ID: "nes", DisplayName: "Nintendo Entertainment System", DefaultCore: "fceumm"},
	"snes":      {ID: "snes", DisplayName: "Super Nintendo", DefaultCore: "snes9x"},
	"n64":       {ID: "n64", DisplayName: "Nintendo 64", DefaultCore: "mupen64plus_next"},
	"gb":        {ID: "gb", DisplayName: "Game Boy", DefaultCore: "gambatte"},
	"gbc":       {ID: "gbc", DisplayName: "Game Boy Color", DefaultCore: "gambatte"},
	"gba":       {ID: "gba", DisplayName: "Game Boy Advance", DefaultCore: "mgba"},
	"nds":       {ID: "nds", DisplayName: "Nintendo DS", DefaultCore: "desmume"},
	"sms":       {ID: "sms", DisplayName: "Sega Master System", DefaultCore: "genesis_plus_gx"},
	"genesis":   {ID: "genesis", DisplayName: "Sega Genesis", DefaultCore: "genesis_plus_gx"},
	"gg":        {ID: "gg", DisplayName: "Sega Game Gear", DefaultCore: "genesis_plus_gx"},
	"psx":       {ID: "psx", DisplayName: "Sony PlayStation", DefaultCore: "pcsx_rearmed"},
	"psp":       {ID: "psp", DisplayName: "Sony PSP", DefaultCore: "ppsspp"},
	"mame":      {ID: "mame", DisplayName: "MAME", DefaultCore: "mame"},
	"fbneo":     {ID: "fbneo", DisplayName: "Final Burn Neo", DefaultCore: "fbneo"},
	"amiga":     {ID: "amiga", DisplayName: "Commodore Amiga", DefaultCore: "puae"},
	"dos":       {ID: "dos", DisplayName: "DOS", DefaultCore: "dosbox_pure"},
	"atari2600": {ID: "atari2600", DisplayName: "Atari 2600", DefaultCore: "stella"},
	"atari7800": {ID: "atari7800", DisplayName: "Atari 7800", DefaultCore: "prosystem"},
	"lynx":      {ID: "lynx", DisplayName: "Atari Lynx", DefaultCore: "handy"},
	"ngp":       {ID: "ngp", DisplayName: "Neo Geo Pocket", DefaultCore: "beetle_ngp"},
	"pce":       {ID: "pce", DisplayName: "PC Engine / TurboGrafx-16", DefaultCore: "beetle_pce_fast"},
	"wonderswan": {
		ID: "wonderswan", DisplayName: "WonderSwan", DefaultCore: "beetle_wswan",
	},
}

// extensions maps ROM file extensions to system IDs. Ambiguous disc
// extensions (iso, cue, chd) are deliberately absent: the caller must
// pick the system.
var extensions = map[string]string{
	"nes": "nes", "fds": "nes",
	"smc": "snes", "sfc": "snes",
	"n64": "n64", "z64": "n64", "v64": "n64",
	"gb":  "gb",
	"gbc": "gbc",
	"gba": "gba",
	"nds": "nds", "ds": "nds",
	"sms": "sms",
	"md":  "genesis", "gen": "genesis", "bin": "genesis",
	"gg":  "gg",
	"cso": "psp", "pbp": "psp",
	"pce": "pce",
	"ws":  "wonderswan", "wsc": "wonderswan",
	"ngp": "ngp", "ngc": "ngp",
	"lnx": "lynx",
	"a26": "atari2600",
	"a78": "atari7800",
}

// SystemForPath detects the game system from a content file extension.
func SystemForPath(path string) (System, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	id, ok := extensions[ext]
	if !ok {
		return System{}, false
	}
	return systems[id], true
}

// SystemByID looks up a system by its short identifier.
func SystemByID(id string) (System, bool) {
	sys, ok := systems[id]
	return sys, ok
}

// CoreResolver locates libretro core libraries on disk, handling the
// two naming schemes in the wild plus the 32-bit core directory.
type CoreResolver struct {
	fs       afero.Fs
	cores    string
	cores32  string
	frontend string
	front32  string
}

// NewCoreResolver builds a resolver from the emulator config section.
func NewCoreResolver(fsys afero.Fs, cfg config.Emulator) *CoreResolver {
	return &CoreResolver{
		fs:       fsys,
		cores:    cfg.CoresDir,
		cores32:  cfg.Cores32Dir,
		frontend: cfg.FrontendPath,
		front32:  cfg.Frontend32Path,
	}
}

// FrontendPath returns the frontend executable for the requested word
// size.
func (r *CoreResolver) FrontendPath(use32bit bool) string {
	if use32bit {
		return r.front32
	}
	return r.frontend
}

// Resolve returns the full path of the named core, trying the
// conventional "<name>_libretro.so" first and the alternative
// "libretro-<name>.so" second. Returns ErrNotFound when neither
// exists.
func (r *CoreResolver) Resolve(core string, use32bit bool) (string, error) {
	dir := r.cores
	if use32bit {
		dir = r.cores32
	}

	path := filepath.Join(dir, core+"_libretro.so")
	if exists, _ := afero.Exists(r.fs, path); exists {
		return path, nil
	}

	alt := filepath.Join(dir, "libretro-"+core+".so")
	if exists, _ := afero.Exists(r.fs, alt); exists {
		return alt, nil
	}

	return "", fmt.Errorf("%w: core %q", errkind.ErrNotFound, core)
}

// HasCore reports whether the named core is installed.
func (r *CoreResolver) HasCore(core string, use32bit bool) bool {
	_, err := r.Resolve(core, use32bit)
	return err == nil
}

// ListCores returns the sorted names of all installed cores.
func (r *CoreResolver) ListCores(use32bit bool) []string {
	dir := r.cores
	if use32bit {
		dir = r.cores32
	}

	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil
	}

	var cores []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, "_libretro.so") {
			cores = append(cores, strings.TrimSuffix(name, "_libretro.so"))
		}
	}
	sort.Strings(cores)
	return cores
}
