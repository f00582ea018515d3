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

package nander_test

import (
	"fmt"
	"testing"

	nander "github.com/NanderProject/go-nander"
	"github.com/NanderProject/go-nander/internal/simulate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func microwireLayout(capacity uint32) nander.ChipLayout {
	return nander.ChipLayout{
		Name:      "SIM-93CXX",
		Vendor:    "Simulated",
		Family:    nander.FamilyMicrowireEEPROM,
		Capacity:  capacity,
		PageSize:  1,
		BlockSize: 1,
	}
}

func newMicrowireFixture(t *testing.T, capacity uint32) (*simulate.Microwire, nander.FlashEngine) {
	t.Helper()
	layout := microwireLayout(capacity)
	sim := simulate.NewMicrowire(layout)
	engine, err := nander.NewEngine(sim, layout)
	require.NoError(t, err)
	return sim, engine
}

func TestMicrowireRoundTrip(t *testing.T) {
	t.Parallel()

	// 7, 9 and 11 address bits respectively.
	for _, capacity := range []uint32{128, 512, 2048} {
		capacity := capacity
		t.Run(fmt.Sprintf("%d bytes", capacity), func(t *testing.T) {
			t.Parallel()
			_, engine := newMicrowireFixture(t, capacity)

			data := pattern(17, byte(capacity>>4))
			start := nander.Address(capacity - 32)
			require.NoError(t, engine.Write(nander.WriteRequest{
				Address: start,
				Data:    data,
			}, nil))

			got, err := engine.Read(nander.ReadRequest{
				Address: start,
				Length:  uint32(len(data)),
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestMicrowireWriteDisablesWhenDone(t *testing.T) {
	t.Parallel()

	sim, engine := newMicrowireFixture(t, 128)

	require.NoError(t, engine.Write(nander.WriteRequest{Data: []byte{0xAB}}, nil))
	assert.False(t, sim.WriteEnabled(), "EWDS must follow the final write")
	assert.Equal(t, byte(0xAB), sim.Data()[0])
}

func TestMicrowireErase(t *testing.T) {
	t.Parallel()

	sim, engine := newMicrowireFixture(t, 128)

	require.NoError(t, engine.Write(nander.WriteRequest{
		Address: 8,
		Data:    pattern(8, 0x01),
	}, nil))
	require.NoError(t, engine.Erase(nander.EraseRequest{Address: 10, Length: 4}, nil))

	for i := 8; i < 16; i++ {
		want := byte(0x01 + byte((i-8)*7))
		if i >= 10 && i < 14 {
			want = 0xFF
		}
		require.Equal(t, want, sim.Data()[i], "byte %d", i)
	}
	assert.False(t, sim.WriteEnabled())
}

func TestMicrowireNeedsBitBangTransport(t *testing.T) {
	t.Parallel()

	// The SPI mock exposes no line-level control.
	_, err := nander.NewEngine(nander.NewMockTransport(), microwireLayout(128))
	require.ErrorIs(t, err, nander.ErrNotSupported)
}

func TestMicrowireHasNoStatusRegister(t *testing.T) {
	t.Parallel()

	_, engine := newMicrowireFixture(t, 128)
	_, err := engine.ReadStatus()
	assert.ErrorIs(t, err, nander.ErrNotSupported)
	assert.ErrorIs(t, engine.WriteStatus([]byte{0}), nander.ErrNotSupported)
}
