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

func TestBadBlockTableMarkAndQuery(t *testing.T) {
	t.Parallel()

	bbt := nander.NewBadBlockTable(8)
	assert.Equal(t, uint32(8), bbt.Len())
	assert.Equal(t, nander.BlockUnknown, bbt.Status(0))
	assert.False(t, bbt.IsBad(0), "unknown blocks are not bad")

	bbt.Mark(2, nander.BlockBadFactory)
	bbt.Mark(5, nander.BlockBadRuntime)
	bbt.Mark(0, nander.BlockGood)

	assert.True(t, bbt.IsBad(2))
	assert.True(t, bbt.IsBad(5))
	assert.False(t, bbt.IsBad(0))
	assert.Equal(t, uint32(2), bbt.BadCount())
	assert.Equal(t, []uint32{2, 5}, bbt.BadBlocks())
}

func TestBadBlockTableNextGood(t *testing.T) {
	t.Parallel()

	bbt := nander.NewBadBlockTable(4)
	bbt.Mark(1, nander.BlockBadFactory)
	bbt.Mark(2, nander.BlockBadRuntime)

	next, ok := bbt.NextGood(1)
	require.True(t, ok)
	assert.Equal(t, uint32(3), next)

	next, ok = bbt.NextGood(0)
	require.True(t, ok)
	assert.Equal(t, uint32(0), next)

	bbt.Mark(3, nander.BlockBadFactory)
	_, ok = bbt.NextGood(1)
	assert.False(t, ok, "no good block after 0")
}

func TestBadBlockTableExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	bbt := nander.NewBadBlockTable(layout.BlockCount())
	bbt.Mark(0, nander.BlockGood)
	bbt.Mark(3, nander.BlockBadFactory)
	bbt.Mark(7, nander.BlockBadRuntime)

	data := bbt.Export()
	require.Len(t, data, int(layout.BlockCount()))

	restored, err := nander.ImportBadBlockTable(data, layout)
	require.NoError(t, err)
	assert.Equal(t, nander.BlockGood, restored.Status(0))
	assert.Equal(t, nander.BlockUnknown, restored.Status(1))
	assert.Equal(t, nander.BlockBadFactory, restored.Status(3))
	assert.Equal(t, nander.BlockBadRuntime, restored.Status(7))
}

func TestImportBadBlockTableRejectsBadData(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()

	_, err := nander.ImportBadBlockTable(make([]byte, 3), layout)
	assert.ErrorIs(t, err, nander.ErrFormatMismatch, "wrong length")

	data := make([]byte, layout.BlockCount())
	data[2] = 0x7F
	_, err = nander.ImportBadBlockTable(data, layout)
	assert.ErrorIs(t, err, nander.ErrFormatMismatch, "invalid status code")
}

func TestDefaultMarkerScheme(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	probes := nander.DefaultMarkerScheme{}.Probes(layout)
	require.Len(t, probes, 2)
	assert.Equal(t, uint32(0), probes[0].Page)
	assert.Equal(t, layout.PageSize, probes[0].Column)
	assert.Equal(t, uint32(1), probes[1].Page)
}

func TestBlockStatusString(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, nander.BlockGood.String())
	assert.NotEqual(t, nander.BlockBadFactory.String(), nander.BlockBadRuntime.String())
}
