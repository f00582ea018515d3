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

func TestRegistryFindByID(t *testing.T) {
	t.Parallel()

	nandID := nander.JEDECID{0xEF, 0xAA, 0x21}
	r := nander.NewRegistry([]nander.ChipLayout{testNANDLayout()})

	layout, ok := r.FindByID(nandID)
	require.True(t, ok)
	assert.Equal(t, "SIM-NAND16K", layout.Name)

	_, ok = r.FindByID(nander.JEDECID{0x00, 0x00, 0x01})
	assert.False(t, ok)
}

func TestRegistryFindByNameCaseInsensitive(t *testing.T) {
	t.Parallel()

	r := nander.NewRegistry([]nander.ChipLayout{testNANDLayout()})
	layout, ok := r.FindByName("sim-nand16k")
	require.True(t, ok)
	assert.Equal(t, "SIM-NAND16K", layout.Name)

	_, ok = r.FindByName("NOPE")
	assert.False(t, ok)
}

// Parts without a JEDEC identifier (EEPROMs) must all coexist even though
// they share the zero ID.
func TestRegistryZeroIDLayoutsCoexist(t *testing.T) {
	t.Parallel()

	a := nander.ChipLayout{
		Name: "24C02", Vendor: "Generic", Family: nander.FamilyI2CEEPROM,
		Capacity: 256, PageSize: 8, BlockSize: 8,
	}
	b := nander.ChipLayout{
		Name: "24C04", Vendor: "Generic", Family: nander.FamilyI2CEEPROM,
		Capacity: 512, PageSize: 16, BlockSize: 16,
	}
	r := nander.NewRegistry([]nander.ChipLayout{a, b})
	assert.Equal(t, 2, r.Len())

	got, ok := r.FindByName("24C04")
	require.True(t, ok)
	assert.Equal(t, uint32(512), got.Capacity)

	// The zero ID must not resolve to either of them.
	_, ok = r.FindByID(nander.JEDECID{})
	assert.False(t, ok)
}

func TestRegistryDuplicateIDKeepsFirst(t *testing.T) {
	t.Parallel()

	first := testNANDLayout()
	second := testNANDLayout()
	second.Name = "IMPOSTOR"

	r := nander.NewRegistry([]nander.ChipLayout{first, second})
	layout, ok := r.FindByID(first.ID)
	require.True(t, ok)
	assert.Equal(t, first.Name, layout.Name)
}

func TestRegistryListIsACopy(t *testing.T) {
	t.Parallel()

	r := nander.NewRegistry([]nander.ChipLayout{testNANDLayout()})
	list := r.List()
	require.Len(t, list, 1)
	list[0].Name = "MUTATED"

	again := r.List()
	assert.Equal(t, "SIM-NAND16K", again[0].Name)
}
