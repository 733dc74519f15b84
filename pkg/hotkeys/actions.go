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

package hotkeys

import (
	"fmt"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
)

// Action is an emulator control operation fired by a hotkey combo.
type Action int

const (
	ActionNone Action = iota
	ActionExit
	ActionSaveState
	ActionLoadState
	ActionScreenshot
	ActionFastForward
	ActionRewind
	ActionPause
	ActionMenu
	ActionNextSlot
	ActionPrevSlot
	ActionReset
	ActionVolumeUp
	ActionVolumeDown
	ActionBrightnessUp
	ActionBrightnessDown
)

var actionNames = map[Action]string{
	ActionNone:           "none",
	ActionExit:           "exit",
	ActionSaveState:      "save_state",
	ActionLoadState:      "load_state",
	ActionScreenshot:     "screenshot",
	ActionFastForward:    "fast_forward",
	ActionRewind:         "rewind",
	ActionPause:          "pause",
	ActionMenu:           "menu",
	ActionNextSlot:       "next_slot",
	ActionPrevSlot:       "prev_slot",
	ActionReset:          "reset",
	ActionVolumeUp:       "volume_up",
	ActionVolumeDown:     "volume_down",
	ActionBrightnessUp:   "brightness_up",
	ActionBrightnessDown: "brightness_down",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAction resolves a config action name to its Action value.
func ParseAction(name string) (Action, error) {
	for action, n := range actionNames {
		if n == name {
			return action, nil
		}
	}
	return ActionNone, fmt.Errorf("%w: unknown action %q", errkind.ErrInvalidArg, name)
}
