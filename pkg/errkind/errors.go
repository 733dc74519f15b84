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

// Package errkind defines the closed error vocabulary shared by the
// emulator bridge packages. Callers branch on these sentinels with
// errors.Is rather than matching message text, so wrapping with
// fmt.Errorf("...: %w", err) is always safe.
package errkind

import "errors"

var (
	// ErrInvalidArg indicates malformed or missing required input.
	ErrInvalidArg = errors.New("invalid argument")

	// ErrNotFound indicates a path, process or device entity is absent.
	ErrNotFound = errors.New("not found")

	// ErrPermission indicates the caller lacks rights for the action.
	ErrPermission = errors.New("permission denied")

	// ErrForkFailed indicates process duplication could not be started.
	ErrForkFailed = errors.New("fork failed")

	// ErrExecFailed indicates the program image could not be executed
	// for a reason other than a missing path or denied permission.
	ErrExecFailed = errors.New("exec failed")

	// ErrTimeout indicates a bounded wait elapsed without the awaited
	// condition occurring.
	ErrTimeout = errors.New("timeout")

	// ErrMemory indicates an allocation failure.
	ErrMemory = errors.New("memory allocation failed")

	// ErrIO indicates any other input/output failure.
	ErrIO = errors.New("i/o error")

	// ErrInternal indicates an invariant violation.
	ErrInternal = errors.New("internal error")
)
