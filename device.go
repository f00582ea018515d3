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

package nander

import (
	"bytes"
	"context"
	"errors"
	"fmt"
)

// Device pairs a transport with a protocol engine and layers the
// operational policy on top: identification, bounded retries, post-write
// verification and bad block bookkeeping. A Device is not safe for
// concurrent use; flash operations serialize on the bus anyway.
type Device struct {
	transport  Transport
	engine     FlashEngine
	layout     ChipLayout
	id         JEDECID
	bbt        *BadBlockTable
	retry      *RetryConfig
	progress   ProgressFunc
	engineOpts []EngineOption
}

// New creates a device on an open transport. Call DetectChip or SetChip
// before issuing flash operations.
func New(transport Transport, opts ...DeviceOption) (*Device, error) {
	if transport == nil {
		return nil, errors.New("nil transport")
	}
	d := &Device{
		transport: transport,
		retry:     DefaultRetryConfig(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Transport returns the underlying transport.
func (d *Device) Transport() Transport { return d.transport }

// Layout returns the active chip layout. The zero value means no chip
// has been selected yet.
func (d *Device) Layout() ChipLayout { return d.layout }

// ID returns the JEDEC ID read by the last DetectChip call.
func (d *Device) ID() JEDECID { return d.id }

// BadBlockTable returns the attached table, or nil.
func (d *Device) BadBlockTable() *BadBlockTable { return d.bbt }

// Close releases the transport.
func (d *Device) Close() error {
	return d.transport.Close()
}

// ReadJEDECID issues the identification command and returns the raw
// three-byte response. An all-zero or all-FF response means nothing
// answered and is reported as a communication failure.
func (d *Device) ReadJEDECID(ctx context.Context) (JEDECID, error) {
	var id JEDECID
	err := RetryWithConfig(ctx, d.retry, func() error {
		rx, err := d.transport.Transaction([]byte{cmdJEDECID}, 3)
		if err != nil {
			return err
		}
		copy(id[:], rx)
		return nil
	})
	if err != nil {
		return JEDECID{}, err
	}
	if id.IsZero() || (id[0] == 0xFF && id[1] == 0xFF && id[2] == 0xFF) {
		return id, fmt.Errorf("%w: no response to JEDEC ID (got %s)",
			ErrCommunicationFailed, id)
	}
	return id, nil
}

// DetectChip identifies the attached chip against a registry and builds
// the matching engine. The detected layout is returned; an ID that is
// readable but absent from the registry yields an UnsupportedChipError
// carrying it.
func (d *Device) DetectChip(ctx context.Context, registry *Registry) (ChipLayout, error) {
	id, err := d.ReadJEDECID(ctx)
	if err != nil {
		return ChipLayout{}, err
	}
	layout, ok := registry.FindByID(id)
	if !ok {
		return ChipLayout{}, &UnsupportedChipError{ID: id}
	}
	if err := d.SetChip(layout); err != nil {
		return ChipLayout{}, err
	}
	d.id = id
	return layout, nil
}

// SetChip selects a layout explicitly, bypassing identification. Used
// for parts that do not answer the JEDEC ID command (EEPROMs) or for
// forcing a layout on a misreporting chip.
func (d *Device) SetChip(layout ChipLayout) error {
	opts := append([]EngineOption{}, d.engineOpts...)
	if d.bbt != nil {
		opts = append(opts, WithBadBlockTable(d.bbt))
	}
	engine, err := NewEngine(d.transport, layout, opts...)
	if err != nil {
		return err
	}
	d.engine = engine
	d.layout = layout
	d.id = JEDECID{}
	return nil
}

func (d *Device) requireEngine() error {
	if d.engine == nil {
		return fmt.Errorf("%w: no chip selected", ErrInvalidRequest)
	}
	return nil
}

// retryFor builds the retry config honoring a per-request retry count.
func (d *Device) retryFor(retries int) *RetryConfig {
	return d.retry.WithAttempts(retries + 1)
}

// mergeProgress combines the device-level sink with a per-call one and
// makes the result monotonic: a retried chunk reports its high-water
// position, never a lower one.
func (d *Device) mergeProgress(f ProgressFunc) ProgressFunc {
	sink := f
	if sink == nil {
		sink = d.progress
	}
	if sink == nil {
		return nil
	}
	var high uint64
	return func(p Progress) {
		if p.Current < high {
			p.Current = high
		} else {
			high = p.Current
		}
		sink(p)
	}
}

// Read executes a read with retries. Transport and timeout failures
// re-run the whole request; data policy errors (ECC, bad block, bounds)
// surface immediately.
func (d *Device) Read(ctx context.Context, req ReadRequest, progress ProgressFunc) ([]byte, error) {
	if err := d.requireEngine(); err != nil {
		return nil, err
	}
	report := d.mergeProgress(progress)
	var data []byte
	err := RetryWithConfig(ctx, d.retryFor(req.Retries), func() error {
		var opErr error
		data, opErr = d.engine.Read(req, report)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write executes a write with retries, then optionally verifies by
// reading the range back and comparing. A verify mismatch is never
// retried: the data on the chip is wrong, not the bus. Program failures
// and verify mismatches on NAND are recorded in the attached bad block
// table.
func (d *Device) Write(ctx context.Context, req WriteRequest, progress ProgressFunc) error {
	if err := d.requireEngine(); err != nil {
		return err
	}
	report := d.mergeProgress(progress)
	err := RetryWithConfig(ctx, d.retryFor(req.Retries), func() error {
		return d.engine.Write(req, report)
	})
	if err != nil {
		d.recordMediaFailure(err)
		return err
	}
	if !req.Verify {
		return nil
	}
	if err := d.verifyRange(ctx, req); err != nil {
		d.recordMediaFailure(err)
		return err
	}
	return nil
}

// verifyRange re-reads the written range with the same access mode and
// byte-compares, reporting the absolute address of the first mismatch.
func (d *Device) verifyRange(ctx context.Context, req WriteRequest) error {
	readReq := ReadRequest{
		Address:   req.Address,
		Length:    uint32(len(req.Data)),
		Oob:       req.Oob,
		Ecc:       req.Ecc,
		BadBlocks: req.BadBlocks,
		Retries:   req.Retries,
	}
	var actual []byte
	err := RetryWithConfig(ctx, d.retryFor(req.Retries), func() error {
		var opErr error
		actual, opErr = d.engine.Read(readReq, nil)
		return opErr
	})
	if err != nil {
		return fmt.Errorf("verify read: %w", err)
	}
	if bytes.Equal(actual, req.Data) {
		return nil
	}
	for i := range req.Data {
		if i >= len(actual) || actual[i] != req.Data[i] {
			var got byte
			if i < len(actual) {
				got = actual[i]
			}
			return &VerifyError{
				Address:  req.Address + Address(i),
				Expected: req.Data[i],
				Actual:   got,
			}
		}
	}
	return &VerifyError{Address: req.Address + Address(len(req.Data))}
}

// Erase executes an erase with retries. Erase failures on NAND are
// recorded in the attached bad block table.
func (d *Device) Erase(ctx context.Context, req EraseRequest, progress ProgressFunc) error {
	if err := d.requireEngine(); err != nil {
		return err
	}
	report := d.mergeProgress(progress)
	err := RetryWithConfig(ctx, d.retryFor(req.Retries), func() error {
		return d.engine.Erase(req, report)
	})
	if err != nil {
		d.recordMediaFailure(err)
	}
	return err
}

// recordMediaFailure marks the failed block in the bad block table when
// the error localizes one. Marking is best-effort bookkeeping; the
// original error is what callers see.
func (d *Device) recordMediaFailure(err error) {
	if d.layout.Family != FamilyNAND {
		return
	}
	var block uint32
	var perr *ProgramError
	var eerr *EraseError
	var verr *VerifyError
	switch {
	case errors.As(err, &perr):
		block = perr.Block
	case errors.As(err, &eerr):
		block = eerr.Block
	case errors.As(err, &verr):
		block = verr.Address.Location(d.layout).Block
	default:
		return
	}
	if markErr := d.engine.MarkBad(block); markErr != nil {
		debugf("failed to mark block %d bad: %v", block, markErr)
	}
}

// ReadStatus reads the chip status/protect registers.
func (d *Device) ReadStatus(ctx context.Context) ([]byte, error) {
	if err := d.requireEngine(); err != nil {
		return nil, err
	}
	var status []byte
	err := RetryWithConfig(ctx, d.retry, func() error {
		var opErr error
		status, opErr = d.engine.ReadStatus()
		return opErr
	})
	return status, err
}

// WriteStatus writes the chip status/protect registers.
func (d *Device) WriteStatus(ctx context.Context, status []byte) error {
	if err := d.requireEngine(); err != nil {
		return err
	}
	return RetryWithConfig(ctx, d.retry, func() error {
		return d.engine.WriteStatus(status)
	})
}

// ScanBadBlocks probes every block's factory marker, attaches the
// resulting table to the device and returns it.
func (d *Device) ScanBadBlocks(ctx context.Context, progress ProgressFunc) (*BadBlockTable, error) {
	if err := d.requireEngine(); err != nil {
		return nil, err
	}
	report := d.mergeProgress(progress)
	var bbt *BadBlockTable
	err := RetryWithConfig(ctx, d.retry, func() error {
		var opErr error
		bbt, opErr = d.engine.ScanBadBlocks(report)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return bbt, d.UseBadBlockTable(bbt)
}

// UseBadBlockTable attaches a table (scanned earlier or imported) and
// rebuilds the engine around it.
func (d *Device) UseBadBlockTable(bbt *BadBlockTable) error {
	d.bbt = bbt
	if d.engine == nil {
		return nil
	}
	layout, id := d.layout, d.id
	if err := d.SetChip(layout); err != nil {
		return err
	}
	d.id = id
	return nil
}

// ExportBadBlocks serializes the attached table.
func (d *Device) ExportBadBlocks() ([]byte, error) {
	if d.bbt == nil {
		return nil, fmt.Errorf("%w: no bad block table attached", ErrInvalidRequest)
	}
	return d.bbt.Export(), nil
}

// ImportBadBlocks deserializes a table for the active layout and
// attaches it.
func (d *Device) ImportBadBlocks(data []byte) error {
	if err := d.requireEngine(); err != nil {
		return err
	}
	bbt, err := ImportBadBlockTable(data, d.layout)
	if err != nil {
		return err
	}
	return d.UseBadBlockTable(bbt)
}
