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

// Package hotkeys turns raw gamepad button events into emulator
// control actions. A configurable modifier button arms the engine;
// a second button pressed within the combo window fires the bound
// action.
package hotkeys

import (
	"fmt"
	"strings"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
)

// Linux input event codes for the gamepad buttons handhelds ship with.
const (
	BtnSouth     uint16 = 0x130 // A / cross
	BtnEast      uint16 = 0x131 // B / circle
	BtnNorth     uint16 = 0x133 // X / triangle
	BtnWest      uint16 = 0x134 // Y / square
	BtnTL        uint16 = 0x136 // L1
	BtnTR        uint16 = 0x137 // R1
	BtnTL2       uint16 = 0x138 // L2
	BtnTR2       uint16 = 0x139 // R2
	BtnSelect    uint16 = 0x13a
	BtnStart     uint16 = 0x13b
	BtnMode      uint16 = 0x13c // guide / home
	BtnThumbL    uint16 = 0x13d
	BtnThumbR    uint16 = 0x13e
	BtnDpadUp    uint16 = 0x220
	BtnDpadDown  uint16 = 0x221
	BtnDpadLeft  uint16 = 0x222
	BtnDpadRight uint16 = 0x223
)

// buttonSlots is the size of the engine's pressed-state table. Button
// codes are folded into it with buttonIndex.
const buttonSlots = 32

// buttonIndex folds an input event code into a pressed-state slot.
// The low five bits keep the common gamepad ranges (0x130-0x13e and
// 0x220-0x223) collision free.
func buttonIndex(code uint16) int {
	return int(code & (buttonSlots - 1))
}

var buttonNames = map[string]uint16{
	"a":      BtnSouth,
	"b":      BtnEast,
	"x":      BtnNorth,
	"y":      BtnWest,
	"l1":     BtnTL,
	"r1":     BtnTR,
	"l2":     BtnTL2,
	"r2":     BtnTR2,
	"l3":     BtnThumbL,
	"r3":     BtnThumbR,
	"select": BtnSelect,
	"start":  BtnStart,
	"guide":  BtnMode,
	"up":     BtnDpadUp,
	"down":   BtnDpadDown,
	"left":   BtnDpadLeft,
	"right":  BtnDpadRight,
}

// ParseButton resolves a config button name ("Select", "r1", "Up") to
// its input event code.
func ParseButton(name string) (uint16, error) {
	code, ok := buttonNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: unknown button %q", errkind.ErrInvalidArg, name)
	}
	return code, nil
}

// ButtonName returns the canonical config name for an event code, or
// an empty string for codes outside the known gamepad set.
func ButtonName(code uint16) string {
	for name, c := range buttonNames {
		if c == code {
			return name
		}
	}
	return ""
}
