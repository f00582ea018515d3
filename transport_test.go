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
	"errors"
	"testing"

	nander "github.com/NanderProject/go-nander"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackTransactionFramesChipSelect(t *testing.T) {
	t.Parallel()

	mock := nander.NewMockTransport()
	rx, err := nander.FallbackTransaction(mock, []byte{0x9F}, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, rx)

	events := mock.ChipSelectEvents()
	require.Len(t, events, 2)
	assert.True(t, events[0])
	assert.False(t, events[1])
}

func TestFallbackTransactionChunksLargeTransfers(t *testing.T) {
	t.Parallel()

	mock := nander.NewMockTransport()
	mock.SetMaxTransferSize(4)

	tx := pattern(6, 0x01)
	rx, err := nander.FallbackTransaction(mock, tx, 10)
	require.NoError(t, err)
	assert.Len(t, rx, 10)

	// 6 command bytes in chunks of 4+2, then 10 filler bytes as 4+4+2.
	transfers := mock.Transactions()
	require.Len(t, transfers, 5)
	assert.Equal(t, tx[:4], transfers[0])
	assert.Equal(t, tx[4:], transfers[1])
	for _, fillChunk := range transfers[2:] {
		for _, b := range fillChunk {
			assert.Equal(t, byte(0xFF), b, "read phase clocks out filler")
		}
	}
}

func TestFallbackTransactionWriteOnly(t *testing.T) {
	t.Parallel()

	mock := nander.NewMockTransport()
	rx, err := nander.FallbackTransaction(mock, []byte{0x06}, 0)
	require.NoError(t, err)
	assert.Nil(t, rx)
}

func TestFallbackTransactionReleasesChipSelectOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("bus glitch")
	mock := nander.NewMockTransportWithFunc(func([]byte, int) ([]byte, error) {
		return nil, boom
	})

	_, err := nander.FallbackTransaction(mock, []byte{0x03, 0x00}, 4)
	require.ErrorIs(t, err, boom)

	events := mock.ChipSelectEvents()
	require.Len(t, events, 2, "chip select must be released after a failure")
	assert.False(t, events[1])
}

func TestMockTransportClose(t *testing.T) {
	t.Parallel()

	mock := nander.NewMockTransport()
	require.NoError(t, mock.Close())
	_, err := mock.Transaction([]byte{0x9F}, 3)
	assert.ErrorIs(t, err, nander.ErrTransportClosed)
}

func TestTransportTypeStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, nander.TransportType("mock"), nander.NewMockTransport().Type())
}
