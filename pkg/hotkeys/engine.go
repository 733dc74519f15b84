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
	"time"

	"github.com/EmberDeckProject/emberdeck-core/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ComboWindow is how long after the modifier goes down a second button
// still completes a combo. A press exactly at the window boundary
// fires; one past it does not.
const ComboWindow = 500 * time.Millisecond

// Callback receives actions fired by completed combos. It is invoked
// synchronously from HandleEvent with the engine lock held, so it must
// not call back into the engine.
type Callback func(Action)

// Engine tracks button state and dispatches hotkey combos. All methods
// are safe for concurrent use.
type Engine struct {
	clock          clockwork.Clock
	bindings       map[uint16]Action
	callback       Callback
	modifier       uint16
	modifierDownAt time.Time
	modifierHeld   bool
	enabled        bool
	pressed        [buttonSlots]bool
	mu             syncutil.Mutex
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineClock sets the clock used for combo timing (for testing).
func WithEngineClock(clock clockwork.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// NewEngine creates an enabled engine armed by the given modifier
// button with no bindings.
func NewEngine(modifier uint16, opts ...EngineOption) *Engine {
	e := &Engine{
		clock:    clockwork.NewRealClock(),
		bindings: make(map[uint16]Action),
		modifier: modifier,
		enabled:  true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bind maps a button to an action, replacing any existing binding for
// that button. Binding the modifier itself is ignored.
func (e *Engine) Bind(button uint16, action Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if button == e.modifier {
		return
	}
	e.bindings[button] = action
}

// RegisterCallback sets the action sink. A nil callback silences
// dispatch; combos are still consumed.
func (e *Engine) RegisterCallback(cb Callback) {
	e.mu.Lock()
	e.callback = cb
	e.mu.Unlock()
}

// SetEnabled toggles combo dispatch. Button state keeps being tracked
// while disabled.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	e.enabled = enabled
	e.mu.Unlock()
}

// HandleEvent feeds one button transition into the engine. It returns
// the fired action, or ActionNone when the event did not complete a
// combo. Modifier transitions arm and disarm the combo window and
// never fire by themselves.
func (e *Engine) HandleEvent(code uint16, pressed bool) Action {
	e.mu.Lock()
	defer e.mu.Unlock()

	// The modifier is tracked only by the held flag, never in the
	// button array: codes sharing its masked slot must not read as
	// pressed when only the modifier is down.
	if code == e.modifier {
		if pressed {
			e.modifierHeld = true
			e.modifierDownAt = e.clock.Now()
		} else {
			e.modifierHeld = false
		}
		return ActionNone
	}

	e.pressed[buttonIndex(code)] = pressed

	if !pressed || !e.modifierHeld {
		return ActionNone
	}
	if e.clock.Since(e.modifierDownAt) > ComboWindow {
		return ActionNone
	}

	action, ok := e.bindings[code]
	if !ok || !e.enabled {
		return ActionNone
	}

	log.Debug().Str("action", action.String()).Uint16("button", code).
		Msg("hotkey combo fired")
	if e.callback != nil {
		e.callback(action)
	}
	return action
}

// ComboActive reports whether a button bound to the given action is
// currently held while the modifier is held and the combo window is
// still open. It re-derives from tracked state without consuming
// events, for polling-style callers.
func (e *Engine) ComboActive(action Action) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.enabled || !e.modifierHeld {
		return false
	}
	if e.clock.Since(e.modifierDownAt) > ComboWindow {
		return false
	}
	for code, bound := range e.bindings {
		if bound == action && e.pressed[buttonIndex(code)] {
			return true
		}
	}
	return false
}

// Pressed reports the tracked state of a button. The modifier is never
// recorded in the button array, so querying its code reflects other
// buttons sharing the masked slot, not the modifier itself.
func (e *Engine) Pressed(code uint16) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pressed[buttonIndex(code)]
}
