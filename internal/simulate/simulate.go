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

// Package simulate provides in-memory chip models that speak the same
// byte protocols as real parts. Each simulator implements the transport
// interface, so engines and devices run against them unmodified. The
// models keep real failure modes: program/erase status flags, ECC
// status, write-enable latches and bad block markers.
package simulate

import (
	"fmt"

	nander "github.com/NanderProject/go-nander"
)

// Flaky wraps a transport and fails the first FailFirst transactions
// with a retryable transport error. Used to exercise retry paths.
type Flaky struct {
	Inner nander.Transport
	// FailFirst counts down; while positive each Transaction fails.
	FailFirst int
	// Attempts counts every Transaction seen, failed or not.
	Attempts int
}

// Transaction implements the transport contract.
func (f *Flaky) Transaction(tx []byte, rxLen int) ([]byte, error) {
	f.Attempts++
	if f.FailFirst > 0 {
		f.FailFirst--
		return nil, nander.NewTransportError("transaction", "flaky",
			fmt.Errorf("injected failure"), nander.ErrorTypeTransient)
	}
	return f.Inner.Transaction(tx, rxLen)
}

// Transfer implements the transport contract.
func (f *Flaky) Transfer(tx []byte) ([]byte, error) { return f.Inner.Transfer(tx) }

// SetChipSelect implements the transport contract.
func (f *Flaky) SetChipSelect(assert bool) error { return f.Inner.SetChipSelect(assert) }

// MaxTransferSize implements the transport contract.
func (f *Flaky) MaxTransferSize() int { return f.Inner.MaxTransferSize() }

// SetSpeed implements the transport contract.
func (f *Flaky) SetSpeed(level uint8) error { return f.Inner.SetSpeed(level) }

// Close implements the transport contract.
func (f *Flaky) Close() error { return f.Inner.Close() }

// Type implements the transport contract.
func (*Flaky) Type() nander.TransportType { return nander.TransportSim }

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
