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
	"testing"

	nander "github.com/NanderProject/go-nander"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testNANDLayout is a small NAND geometry used across tests: 512-byte
// pages with 16 bytes OOB, 4 pages per block, 8 blocks.
func testNANDLayout() nander.ChipLayout {
	return nander.ChipLayout{
		Name:      "SIM-NAND16K",
		Vendor:    "Simulated",
		ID:        nander.JEDECID{0xEF, 0xAA, 0x21},
		Family:    nander.FamilyNAND,
		Capacity:  16 * 1024,
		PageSize:  512,
		OOBSize:   16,
		BlockSize: 2048,
	}
}

func TestAddressLocation(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	tests := []struct {
		name string
		addr nander.Address
		want nander.Location
	}{
		{"origin", 0, nander.Location{Block: 0, Page: 0, Column: 0}},
		{"mid first page", 100, nander.Location{Block: 0, Page: 0, Column: 100}},
		{"second page", 512, nander.Location{Block: 0, Page: 1, Column: 0}},
		{"second block", 2048, nander.Location{Block: 1, Page: 4, Column: 0}},
		{"last byte", 16383, nander.Location{Block: 7, Page: 31, Column: 511}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.addr.Location(layout))
		})
	}
}

func TestAddressRoundTrip(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	assert.Equal(t, nander.Address(512*5), nander.PageAddress(5, layout))
	assert.Equal(t, nander.Address(2048*3), nander.BlockAddress(3, layout))

	loc := nander.PageAddress(5, layout).Location(layout)
	assert.Equal(t, uint32(5), loc.Page)
	assert.Equal(t, uint32(1), loc.Block)
}

func TestLayoutGeometry(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	assert.Equal(t, uint32(4), layout.PagesPerBlock())
	assert.Equal(t, uint32(32), layout.PageCount())
	assert.Equal(t, uint32(8), layout.BlockCount())
	assert.Equal(t, uint32(528), layout.RawPageSize())
}

func TestLayoutValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*nander.ChipLayout)
		wantErr bool
	}{
		{"valid", func(*nander.ChipLayout) {}, false},
		{"zero capacity", func(l *nander.ChipLayout) { l.Capacity = 0 }, true},
		{"zero page size", func(l *nander.ChipLayout) { l.PageSize = 0 }, true},
		{"block not page multiple", func(l *nander.ChipLayout) { l.BlockSize = 1000 }, true},
		{"nand without oob", func(l *nander.ChipLayout) { l.OOBSize = 0 }, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			layout := testNANDLayout()
			tt.mutate(&layout)
			err := layout.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, nander.ErrInvalidRequest)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestJEDECID(t *testing.T) {
	t.Parallel()

	id := nander.JEDECID{0xEF, 0xAA, 0x21}
	assert.Equal(t, "EF AA 21", id.String())
	assert.False(t, id.IsZero())

	assert.True(t, nander.JEDECID{}.IsZero())
	assert.True(t, nander.JEDECID{0xFF, 0xFF, 0xFF}.IsZero())
}

func TestFlashFamilyString(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, nander.FamilyNAND.String())
	assert.NotEmpty(t, nander.FamilyNOR.String())
	assert.NotEqual(t, nander.FamilyNAND.String(), nander.FamilyNOR.String())
}
