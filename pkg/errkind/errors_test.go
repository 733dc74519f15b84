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

package errkind_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/EmberDeckProject/emberdeck-core/pkg/errkind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelsAreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		errkind.ErrInvalidArg,
		errkind.ErrNotFound,
		errkind.ErrPermission,
		errkind.ErrForkFailed,
		errkind.ErrExecFailed,
		errkind.ErrTimeout,
		errkind.ErrMemory,
		errkind.ErrIO,
		errkind.ErrInternal,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v must not match %v", a, b)
		}
	}
}

func TestWrappedSentinelSurvivesChaining(t *testing.T) {
	t.Parallel()

	inner := fmt.Errorf("%w: governor %q", errkind.ErrInvalidArg, "turbo")
	outer := fmt.Errorf("applying profile: %w", inner)

	require.ErrorIs(t, outer, errkind.ErrInvalidArg)
	assert.NotErrorIs(t, outer, errkind.ErrPermission)
	assert.Contains(t, outer.Error(), "turbo")
}
