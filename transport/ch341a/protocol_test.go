// go-nander
// Copyright (c) 2025 The Nander Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-nander.
//
// go-nander is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-nander is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-nander; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package ch341a

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeedDescription(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "~21 kHz", SpeedDescription(0))
	assert.Equal(t, "~3 MHz", SpeedDescription(DefaultSpeed))
	assert.Equal(t, "~12 MHz", SpeedDescription(7))
	// Out-of-range levels fall back to the default.
	assert.Equal(t, SpeedDescription(DefaultSpeed), SpeedDescription(42))
}

func TestPinMaskConsistency(t *testing.T) {
	t.Parallel()

	// CS low and high patterns differ only in the CS bit.
	assert.Equal(t, byte(0x01), byte(outCSHigh^outCSLow))
	// All driven lines are outputs; MISO stays an input.
	assert.Zero(t, dirMask&(1<<pinDIN))
}
