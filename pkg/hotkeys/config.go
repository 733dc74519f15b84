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

	"github.com/EmberDeckProject/emberdeck-core/pkg/config"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// FromConfig builds an engine from the user's hotkey settings,
// resolving the modifier and each binding's button and action names.
func FromConfig(cfg config.Hotkeys, opts ...EngineOption) (*Engine, error) {
	modifier, err := ParseButton(cfg.Modifier)
	if err != nil {
		return nil, fmt.Errorf("hotkey modifier: %w", err)
	}

	engine := NewEngine(modifier, opts...)
	engine.SetEnabled(cfg.Enabled)

	for actionName, buttonName := range cfg.Bindings {
		action, err := ParseAction(actionName)
		if err != nil {
			log.Warn().Str("action", actionName).Msg("skipping unknown hotkey action")
			continue
		}
		button, err := ParseButton(buttonName)
		if err != nil {
			log.Warn().Str("action", actionName).Str("button", buttonName).
				Msg("skipping hotkey with unknown button")
			continue
		}
		engine.Bind(button, action)
	}
	return engine, nil
}

// NewEngineFromConfig is FromConfig with an explicit clock, for
// callers that already inject one.
func NewEngineFromConfig(cfg config.Hotkeys, clock clockwork.Clock) (*Engine, error) {
	return FromConfig(cfg, WithEngineClock(clock))
}

// FrontendConfigSnippet is the hotkey block appended to the libretro
// frontend's configuration so in-emulator hotkeys match the system
// ones. Button numbers are joystick indices, not event codes, and the
// state slot and volume bindings ride the hat switch.
const FrontendConfigSnippet = "# EmberDeck hotkey configuration\n" +
	"input_enable_hotkey_btn = 6\n" +
	"input_exit_emulator_btn = 7\n" +
	"input_save_state_btn = 5\n" +
	"input_load_state_btn = 4\n" +
	"input_screenshot_btn = 10\n" +
	"input_hold_fast_forward_btn = 11\n" +
	"input_menu_toggle_btn = 3\n" +
	"input_pause_toggle_btn = 2\n" +
	"input_state_slot_increase_btn = h0right\n" +
	"input_state_slot_decrease_btn = h0left\n" +
	"input_volume_up_btn = h0up\n" +
	"input_volume_down_btn = h0down\n"

// FrontendConfig returns the frontend hotkey block, failing only when
// the destination buffer budget is too small for the snippet. Callers
// with no size limit pass 0.
func FrontendConfig(maxLen int) (string, error) {
	if maxLen > 0 && len(FrontendConfigSnippet) >= maxLen {
		return "", fmt.Errorf("hotkey config needs %d bytes, have %d",
			len(FrontendConfigSnippet)+1, maxLen)
	}
	return FrontendConfigSnippet, nil
}
