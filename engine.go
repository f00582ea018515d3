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
	"fmt"
	"time"
)

// FlashEngine is the logical operation contract every protocol engine
// implements. Each call blocks the calling goroutine until the operation
// completes or fails; there is no mid-transaction cancellation because
// chip-select framing must complete.
type FlashEngine interface {
	// Layout returns the chip layout the engine was built for.
	Layout() ChipLayout

	// Read executes a logical read, reporting progress per page/chunk.
	Read(req ReadRequest, progress ProgressFunc) ([]byte, error)

	// Write executes a logical write.
	Write(req WriteRequest, progress ProgressFunc) error

	// Erase executes a logical erase.
	Erase(req EraseRequest, progress ProgressFunc) error

	// ReadStatus reads the chip status/protect register(s). Returns
	// ErrNotSupported for families without one.
	ReadStatus() ([]byte, error)

	// WriteStatus writes the chip status/protect register(s).
	WriteStatus(status []byte) error

	// ScanBadBlocks probes the factory bad-block markers of every block
	// and returns a freshly populated table. Chip contents are not
	// modified. Non-NAND engines return ErrNotSupported.
	ScanBadBlocks(progress ProgressFunc) (*BadBlockTable, error)

	// MarkBad records a runtime bad block, both on-chip (marker byte)
	// and in the attached table. Non-NAND engines return
	// ErrNotSupported.
	MarkBad(block uint32) error
}

// engineConfig carries knobs shared by all engines.
type engineConfig struct {
	pollTimeout  time.Duration
	pollInterval time.Duration
	marker       MarkerScheme
	bbt          *BadBlockTable
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		pollTimeout:  5 * time.Second,
		pollInterval: 100 * time.Microsecond,
		marker:       DefaultMarkerScheme{},
	}
}

// NewEngine builds the protocol engine matching the layout's family. The
// family set is closed: dispatch happens exactly once, here.
func NewEngine(t Transport, layout ChipLayout, opts ...EngineOption) (FlashEngine, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	switch layout.Family {
	case FamilyNAND:
		return newNANDEngine(t, layout, cfg), nil
	case FamilyNOR:
		return newNOREngine(t, layout, cfg), nil
	case FamilySPIEEPROM:
		return newSPIEEPROMEngine(t, layout, cfg), nil
	case FamilyI2CEEPROM:
		return newI2CEEPROMEngine(t, layout, cfg)
	case FamilyMicrowireEEPROM:
		return newMicrowireEngine(t, layout, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown flash family %d", ErrNotSupported, layout.Family)
	}
}

// EngineOption configures engine construction.
type EngineOption func(*engineConfig)

// WithPollTimeout sets the busy-poll deadline for program/erase waits.
func WithPollTimeout(timeout time.Duration) EngineOption {
	return func(c *engineConfig) { c.pollTimeout = timeout }
}

// WithMarkerScheme overrides the factory bad-block marker locations.
func WithMarkerScheme(scheme MarkerScheme) EngineOption {
	return func(c *engineConfig) { c.marker = scheme }
}

// WithBadBlockTable attaches a pre-scanned table so operations do not
// probe markers live. The table is mutably owned by the engine while an
// operation is in flight.
func WithBadBlockTable(bbt *BadBlockTable) EngineOption {
	return func(c *engineConfig) { c.bbt = bbt }
}
