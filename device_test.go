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
	"context"
	"errors"
	"testing"

	nander "github.com/NanderProject/go-nander"
	"github.com/NanderProject/go-nander/internal/simulate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T, transport nander.Transport) *nander.Device {
	t.Helper()
	dev, err := nander.New(transport, nander.WithRetryConfig(fastRetry(1)))
	require.NoError(t, err)
	return dev
}

func TestDeviceDetectChip(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	sim := simulate.NewNAND(layout, layout.ID)
	dev := newTestDevice(t, sim)

	registry := nander.NewRegistry([]nander.ChipLayout{layout})
	got, err := dev.DetectChip(context.Background(), registry)
	require.NoError(t, err)
	assert.Equal(t, layout.Name, got.Name)
	assert.Equal(t, layout.ID, dev.ID())
	assert.Equal(t, layout.Capacity, dev.Layout().Capacity)
}

func TestDeviceDetectChipUnknownID(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	strange := nander.JEDECID{0xAA, 0xBB, 0xCC}
	sim := simulate.NewNAND(layout, strange)
	dev := newTestDevice(t, sim)

	_, err := dev.DetectChip(context.Background(), nander.NewRegistry(nil))
	var uerr *nander.UnsupportedChipError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, strange, uerr.ID)
}

func TestDeviceDetectChipNoResponse(t *testing.T) {
	t.Parallel()

	// The mock answers 0xFF to everything, like an empty socket.
	dev := newTestDevice(t, nander.NewMockTransport())
	_, err := dev.ReadJEDECID(context.Background())
	require.ErrorIs(t, err, nander.ErrCommunicationFailed)
}

func TestDeviceOperationsRequireChip(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(t, nander.NewMockTransport())
	_, err := dev.Read(context.Background(), nander.ReadRequest{Length: 1}, nil)
	assert.ErrorIs(t, err, nander.ErrInvalidRequest)
	err = dev.Write(context.Background(), nander.WriteRequest{Data: []byte{1}}, nil)
	assert.ErrorIs(t, err, nander.ErrInvalidRequest)
}

func TestDeviceReadRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	sim := simulate.NewNAND(layout, layout.ID)
	flaky := &simulate.Flaky{Inner: sim, FailFirst: 2}
	dev := newTestDevice(t, flaky)
	require.NoError(t, dev.SetChip(layout))

	// Two failed attempts, the third succeeds.
	got, err := dev.Read(context.Background(), nander.ReadRequest{
		Length:  layout.PageSize,
		Retries: 2,
	}, nil)
	require.NoError(t, err)
	assert.Len(t, got, int(layout.PageSize))
}

func TestDeviceReadExhaustsRetries(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	sim := simulate.NewNAND(layout, layout.ID)
	flaky := &simulate.Flaky{Inner: sim, FailFirst: 100}
	dev := newTestDevice(t, flaky)
	require.NoError(t, dev.SetChip(layout))

	_, err := dev.Read(context.Background(), nander.ReadRequest{
		Length:  layout.PageSize,
		Retries: 2,
	}, nil)
	require.Error(t, err)

	// Retries+1 attempts, each dying on its first transaction.
	assert.Equal(t, 3, flaky.Attempts)
	var terr *nander.TransportError
	assert.ErrorAs(t, err, &terr)
}

func TestDeviceWriteVerifyMismatch(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	sim := simulate.NewNAND(layout, layout.ID)
	dev := newTestDevice(t, sim)
	require.NoError(t, dev.SetChip(layout))

	// A stuck-low cell: programming cannot raise it, verify must notice.
	sim.PageData(0)[5] = 0x00

	data := pattern(int(layout.PageSize), 0x40)
	err := dev.Write(context.Background(), nander.WriteRequest{
		Data:   data,
		Verify: true,
	}, nil)

	var verr *nander.VerifyError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, nander.Address(5), verr.Address)
	assert.Equal(t, data[5], verr.Expected)
	assert.Equal(t, byte(0x00), verr.Actual)

	// The failing block is condemned on chip.
	assert.Equal(t, byte(0x00), sim.PageData(0)[layout.PageSize])
}

func TestDeviceWriteVerifySuccess(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	sim := simulate.NewNAND(layout, layout.ID)
	dev := newTestDevice(t, sim)
	require.NoError(t, dev.SetChip(layout))

	err := dev.Write(context.Background(), nander.WriteRequest{
		Data:   pattern(int(layout.PageSize*2), 0x31),
		Verify: true,
	}, nil)
	require.NoError(t, err)
}

// failOnce injects a single transient failure at the nth transaction.
type failOnce struct {
	nander.Transport
	n     int
	count int
	done  bool
}

func (f *failOnce) Transaction(tx []byte, rxLen int) ([]byte, error) {
	f.count++
	if !f.done && f.count == f.n {
		f.done = true
		return nil, nander.NewTransportError("transaction", "failonce",
			errors.New("injected"), nander.ErrorTypeTransient)
	}
	return f.Transport.Transaction(tx, rxLen)
}

// A retry restarts the read from the beginning; reported progress must
// never run backwards across that restart.
func TestDeviceProgressMonotonicAcrossRetry(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	sim := simulate.NewNAND(layout, layout.ID)
	// Fail deep enough that some pages were already reported.
	transport := &failOnce{Transport: sim, n: 12}
	dev := newTestDevice(t, transport)
	require.NoError(t, dev.SetChip(layout))

	var seen []uint64
	_, err := dev.Read(context.Background(), nander.ReadRequest{
		Length:    layout.BlockSize * 2,
		BadBlocks: nander.BadBlockInclude,
		Retries:   2,
	}, func(p nander.Progress) { seen = append(seen, p.Current) })
	require.NoError(t, err)

	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		require.GreaterOrEqual(t, seen[i], seen[i-1],
			"progress went backwards at report %d", i)
	}
	assert.Equal(t, uint64(layout.BlockSize*2), seen[len(seen)-1])
}

func TestDeviceScanExportImportBadBlocks(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	sim := simulate.NewNAND(layout, layout.ID)
	sim.MarkBadFactory(4)
	dev := newTestDevice(t, sim)
	require.NoError(t, dev.SetChip(layout))

	bbt, err := dev.ScanBadBlocks(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []uint32{4}, bbt.BadBlocks())

	exported, err := dev.ExportBadBlocks()
	require.NoError(t, err)

	// A second session imports the table instead of rescanning.
	dev2 := newTestDevice(t, sim)
	require.NoError(t, dev2.SetChip(layout))
	require.NoError(t, dev2.ImportBadBlocks(exported))
	assert.True(t, dev2.BadBlockTable().IsBad(4))

	// Reads consult the imported table.
	data, err := dev2.Read(context.Background(), nander.ReadRequest{
		Address:   nander.BlockAddress(3, layout),
		Length:    layout.BlockSize * 2,
		BadBlocks: nander.BadBlockSkip,
	}, nil)
	require.NoError(t, err)
	assert.Len(t, data, int(layout.BlockSize*2))
}

func TestDeviceEraseFailureCondemnsBlock(t *testing.T) {
	t.Parallel()

	layout := testNANDLayout()
	sim := simulate.NewNAND(layout, layout.ID)
	sim.FailEraseInBlock(0)
	dev := newTestDevice(t, sim)
	require.NoError(t, dev.SetChip(layout))

	_, err := dev.ScanBadBlocks(context.Background(), nil)
	require.NoError(t, err)

	err = dev.Erase(context.Background(), nander.EraseRequest{
		Length: layout.BlockSize,
	}, nil)
	var eerr *nander.EraseError
	require.ErrorAs(t, err, &eerr)

	assert.Equal(t, nander.BlockBadRuntime, dev.BadBlockTable().Status(0))
}

func TestDeviceExportWithoutTable(t *testing.T) {
	t.Parallel()

	dev := newTestDevice(t, nander.NewMockTransport())
	_, err := dev.ExportBadBlocks()
	assert.ErrorIs(t, err, nander.ErrInvalidRequest)
}

func TestNewDeviceRejectsNilTransport(t *testing.T) {
	t.Parallel()

	_, err := nander.New(nil)
	require.Error(t, err)
}
