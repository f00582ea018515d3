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

// Package spidev provides a transport over Linux spidev ports (and any
// other SPI port periph.io registers), for running directly on a
// Raspberry Pi or similar instead of through a USB bridge.
package spidev

import (
	"fmt"

	nander "github.com/NanderProject/go-nander"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// speedTable maps the bridge-style 0-7 clock levels onto frequencies the
// kernel driver accepts.
var speedTable = [...]physic.Frequency{
	21 * physic.KiloHertz,
	100 * physic.KiloHertz,
	400 * physic.KiloHertz,
	750 * physic.KiloHertz,
	1500 * physic.KiloHertz,
	3 * physic.MegaHertz,
	6 * physic.MegaHertz,
	12 * physic.MegaHertz,
}

// Transport implements the transport contract over a kernel SPI port.
// Chip select is owned by the kernel: every Tx is one framed
// transaction, so Transaction maps to exactly one ioctl.
type Transport struct {
	port     spi.PortCloser
	conn     spi.Conn
	portName string
}

// Option configures the transport at open time.
type Option func(*openConfig)

type openConfig struct {
	freq physic.Frequency
	mode spi.Mode
}

// WithFrequency sets the bus clock.
func WithFrequency(f physic.Frequency) Option {
	return func(c *openConfig) { c.freq = f }
}

// WithMode sets the SPI mode. Flash parts use mode 0.
func WithMode(m spi.Mode) Option {
	return func(c *openConfig) { c.mode = m }
}

// New opens a registered SPI port ("" selects the first one).
func New(portName string, opts ...Option) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initializing periph host: %w", err)
	}
	cfg := openConfig{
		freq: speedTable[5],
		mode: spi.Mode0,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, nander.NewTransportError("open", portName, err, nander.ErrorTypePermanent)
	}
	conn, err := port.Connect(cfg.freq, cfg.mode, 8)
	if err != nil {
		_ = port.Close()
		return nil, nander.NewTransportError("open", portName, err, nander.ErrorTypePermanent)
	}
	return &Transport{port: port, conn: conn, portName: portName}, nil
}

// Transfer implements the transport contract. The kernel frames each Tx
// with chip select, so a bare Transfer is a complete short transaction.
func (t *Transport) Transfer(tx []byte) ([]byte, error) {
	rx := make([]byte, len(tx))
	if err := t.conn.Tx(tx, rx); err != nil {
		return nil, nander.NewTransportError("transfer", t.portName, err, nander.ErrorTypeTransient)
	}
	return rx, nil
}

// SetChipSelect implements the transport contract. The kernel refuses
// manual chip select on spidev; engines use Transaction instead.
func (t *Transport) SetChipSelect(bool) error {
	return fmt.Errorf("spidev %s: manual chip select: %w", t.portName, nander.ErrNotSupported)
}

// Transaction implements the transport contract with a single
// full-duplex Tx: the command shifts out while the response shifts in
// behind it.
func (t *Transport) Transaction(tx []byte, rxLen int) ([]byte, error) {
	w := make([]byte, len(tx)+rxLen)
	copy(w, tx)
	for i := len(tx); i < len(w); i++ {
		w[i] = 0xFF
	}
	r := make([]byte, len(w))
	if err := t.conn.Tx(w, r); err != nil {
		return nil, nander.NewTransportError("transaction", t.portName, err, nander.ErrorTypeTransient)
	}
	return r[len(tx):], nil
}

// MaxTransferSize implements the transport contract. The spidev default
// buffer is one page.
func (*Transport) MaxTransferSize() int { return 4096 }

// SetSpeed implements the transport contract using the bridge-style
// level scale.
func (t *Transport) SetSpeed(level uint8) error {
	if int(level) >= len(speedTable) {
		return fmt.Errorf("speed level %d out of range: %w", level, nander.ErrInvalidRequest)
	}
	if limiter, ok := t.port.(spi.Port); ok {
		conn, err := limiter.Connect(speedTable[level], spi.Mode0, 8)
		if err != nil {
			return nander.NewTransportError("setspeed", t.portName, err, nander.ErrorTypePermanent)
		}
		t.conn = conn
		return nil
	}
	return fmt.Errorf("spidev %s: reclocking: %w", t.portName, nander.ErrNotSupported)
}

// Close implements the transport contract.
func (t *Transport) Close() error {
	return t.port.Close()
}

// Type implements the transport contract.
func (*Transport) Type() nander.TransportType { return nander.TransportSPIDev }

var _ nander.Transport = (*Transport)(nil)
