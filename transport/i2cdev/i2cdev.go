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

// Package i2cdev provides a transport over native I2C buses registered
// with periph.io, for talking to 24Cxx parts without a USB bridge. It
// only carries the I2C capability; SPI calls report not-supported.
package i2cdev

import (
	"fmt"

	nander "github.com/NanderProject/go-nander"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Transport implements the transport contract over a kernel I2C bus.
type Transport struct {
	bus     i2c.BusCloser
	busName string
}

// New opens a registered I2C bus ("" selects the first one).
func New(busName string) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initializing periph host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, nander.NewTransportError("open", busName, err, nander.ErrorTypePermanent)
	}
	// 400 kHz is within spec for every 24Cxx revision still in use.
	_ = bus.SetSpeed(400 * physic.KiloHertz)
	return &Transport{bus: bus, busName: busName}, nil
}

// I2CWrite implements the I2C capability.
func (t *Transport) I2CWrite(addr byte, data []byte) error {
	dev := i2c.Dev{Addr: uint16(addr), Bus: t.bus}
	if err := dev.Tx(data, nil); err != nil {
		return nander.NewTransportError("i2c write", t.busName, err, nander.ErrorTypeTransient)
	}
	return nil
}

// I2CRead implements the I2C capability.
func (t *Transport) I2CRead(addr byte, n int) ([]byte, error) {
	dev := i2c.Dev{Addr: uint16(addr), Bus: t.bus}
	buf := make([]byte, n)
	if err := dev.Tx(nil, buf); err != nil {
		return nil, nander.NewTransportError("i2c read", t.busName, err, nander.ErrorTypeTransient)
	}
	return buf, nil
}

// MaxI2CChunk implements the I2C capability. Kernel buses take whole
// messages; bound chunks to keep transaction latency sane.
func (*Transport) MaxI2CChunk() int { return 1024 }

// Transfer implements the transport contract. There is no SPI side on an
// I2C bus.
func (t *Transport) Transfer([]byte) ([]byte, error) {
	return nil, fmt.Errorf("i2c bus %s: SPI transfer: %w", t.busName, nander.ErrNotSupported)
}

// SetChipSelect implements the transport contract.
func (t *Transport) SetChipSelect(bool) error {
	return fmt.Errorf("i2c bus %s: chip select: %w", t.busName, nander.ErrNotSupported)
}

// Transaction implements the transport contract.
func (t *Transport) Transaction([]byte, int) ([]byte, error) {
	return nil, fmt.Errorf("i2c bus %s: SPI transaction: %w", t.busName, nander.ErrNotSupported)
}

// MaxTransferSize implements the transport contract.
func (*Transport) MaxTransferSize() int { return 0 }

// SetSpeed implements the transport contract. Levels follow the bridge
// scale; anything at or above level 2 selects fast mode.
func (t *Transport) SetSpeed(level uint8) error {
	freq := 100 * physic.KiloHertz
	if level >= 2 {
		freq = 400 * physic.KiloHertz
	}
	if err := t.bus.SetSpeed(freq); err != nil {
		return nander.NewTransportError("setspeed", t.busName, err, nander.ErrorTypePermanent)
	}
	return nil
}

// Close implements the transport contract.
func (t *Transport) Close() error {
	return t.bus.Close()
}

// Type implements the transport contract.
func (*Transport) Type() nander.TransportType { return nander.TransportI2CDev }

var (
	_ nander.Transport    = (*Transport)(nil)
	_ nander.I2CTransport = (*Transport)(nil)
)
