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

// Transport is the capability interface over a physical bridge. It carries
// no protocol knowledge; the engines translate chip commands into calls on
// this interface.
//
// Bytes exchanged between SetChipSelect(true) and SetChipSelect(false)
// belong to one logical bus transaction and must never be interleaved with
// another transaction. Transports are not safe for concurrent use.
type Transport interface {
	// Transfer performs one full-duplex bus exchange: len(tx) bytes are
	// shifted out and the same number shifted in.
	Transfer(tx []byte) ([]byte, error)

	// SetChipSelect frames a transaction. active=true asserts the chip
	// select line.
	SetChipSelect(active bool) error

	// Transaction frames chip select, writes tx, reads rxLen bytes and
	// un-frames, atomically. Engines should prefer this unit: bridges
	// that support it fuse the whole sequence into a single low-level
	// transaction, which is the dominant cost driver on USB.
	Transaction(tx []byte, rxLen int) ([]byte, error)

	// MaxTransferSize returns the largest payload the bridge accepts in
	// one low-level transaction.
	MaxTransferSize() int

	// SetSpeed selects the bus clock rate. The level scale is bridge
	// specific (0-7 on the CH341A).
	SetSpeed(level uint8) error

	// Close releases the transport.
	Close() error

	// Type returns the transport type.
	Type() TransportType
}

// TransportType identifies the concrete bridge behind a Transport.
type TransportType string

const (
	// TransportCH341A is the CH341A USB bridge.
	TransportCH341A TransportType = "ch341a"
	// TransportSPIDev is a Linux spidev port.
	TransportSPIDev TransportType = "spidev"
	// TransportI2CDev is a native I2C bus.
	TransportI2CDev TransportType = "i2cdev"
	// TransportMock is a mock transport for testing.
	TransportMock TransportType = "mock"
	// TransportSim is an in-memory simulated chip.
	TransportSim TransportType = "sim"
)

// Line identifies an individual bus line for bit-banged protocols.
type Line uint8

const (
	// LineCS is the chip select line.
	LineCS Line = iota
	// LineClock is the serial clock line.
	LineClock
	// LineMOSI is the host-to-chip data line.
	LineMOSI
	// LineMISO is the chip-to-host data line.
	LineMISO
)

// BitBangTransport is an optional capability for bridges that expose
// individual line control. Microwire parts have no standard command
// framing, so their engine drives lines directly. Discover it with a type
// assertion on the Transport.
type BitBangTransport interface {
	// SetLine drives an output line high or low.
	SetLine(line Line, high bool) error
	// ReadLine samples an input line.
	ReadLine(line Line) (bool, error)
}

// I2CTransport is an optional capability for bridges that can issue I2C
// transactions, used by the 24Cxx engine.
type I2CTransport interface {
	// I2CWrite addresses the device and writes data in one transaction.
	I2CWrite(addr byte, data []byte) error
	// I2CRead addresses the device and reads n bytes in one transaction.
	I2CRead(addr byte, n int) ([]byte, error)
	// MaxI2CChunk returns the largest payload per I2C transaction.
	MaxI2CChunk() int
}

// FallbackTransaction implements the Transaction contract for bridges
// without fused chip-select support: it frames chip select, transfers the
// command in MaxTransferSize chunks, clocks out filler bytes to read, and
// un-frames. Chip select is always released, even on error.
func FallbackTransaction(t Transport, tx []byte, rxLen int) ([]byte, error) {
	if err := t.SetChipSelect(true); err != nil {
		return nil, err
	}
	rx, err := fallbackExchange(t, tx, rxLen)
	if csErr := t.SetChipSelect(false); csErr != nil && err == nil {
		err = csErr
	}
	if err != nil {
		return nil, err
	}
	return rx, nil
}

func fallbackExchange(t Transport, tx []byte, rxLen int) ([]byte, error) {
	chunk := t.MaxTransferSize()
	if chunk <= 0 {
		chunk = 32
	}

	for off := 0; off < len(tx); off += chunk {
		end := min(off+chunk, len(tx))
		if _, err := t.Transfer(tx[off:end]); err != nil {
			return nil, err
		}
	}

	if rxLen == 0 {
		return nil, nil
	}
	rx := make([]byte, 0, rxLen)
	fill := make([]byte, min(chunk, rxLen))
	for i := range fill {
		fill[i] = 0xFF
	}
	for len(rx) < rxLen {
		n := min(chunk, rxLen-len(rx))
		in, err := t.Transfer(fill[:n])
		if err != nil {
			return nil, err
		}
		rx = append(rx, in...)
	}
	return rx, nil
}

// transactionWrite issues a write-only framed transaction.
func transactionWrite(t Transport, tx []byte) error {
	_, err := t.Transaction(tx, 0)
	return err
}
