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

// Package ch341a drives the WCH CH341A USB bridge, the bridge found on
// the common black programmer boards. It exposes SPI through the stream
// command, I2C through the I2C stream, and raw line control through the
// UIO stream for three-wire parts.
package ch341a

import (
	"fmt"

	nander "github.com/NanderProject/go-nander"
	"github.com/google/gousb"
)

// Transport implements the transport contract over a CH341A.
type Transport struct {
	ctx      *gousb.Context
	dev      *gousb.Device
	intf     *gousb.Interface
	intfDone func()
	out      *gousb.OutEndpoint
	in       *gousb.InEndpoint

	// outputs shadows the driven level of D0-D5 for UIO updates.
	outputs byte
	speed   uint8
}

// Option configures the transport at open time.
type Option func(*Transport)

// WithSpeed selects the initial bus clock level (0-7).
func WithSpeed(level uint8) Option {
	return func(t *Transport) { t.speed = level & 0x07 }
}

// New opens the first CH341A on the bus and configures it for serial
// stream mode.
func New(opts ...Option) (*Transport, error) {
	t := &Transport{
		outputs: outCSHigh,
		speed:   DefaultSpeed,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.ctx = gousb.NewContext()
	dev, err := t.ctx.OpenDeviceWithVIDPID(vendorID, productID)
	if err != nil {
		t.Close()
		return nil, nander.NewTransportError("open", "ch341a", err, nander.ErrorTypePermanent)
	}
	if dev == nil {
		t.Close()
		return nil, nander.NewTransportError("open", "ch341a",
			fmt.Errorf("device %04x:%04x not found", vendorID, productID),
			nander.ErrorTypePermanent)
	}
	t.dev = dev

	// The kernel ch341 serial driver grabs the device on plug-in.
	if err := dev.SetAutoDetach(true); err != nil {
		t.Close()
		return nil, nander.NewTransportError("open", "ch341a", err, nander.ErrorTypePermanent)
	}

	t.intf, t.intfDone, err = dev.DefaultInterface()
	if err != nil {
		t.Close()
		return nil, nander.NewTransportError("open", "ch341a", err, nander.ErrorTypePermanent)
	}
	if t.out, err = t.intf.OutEndpoint(epOut); err != nil {
		t.Close()
		return nil, nander.NewTransportError("open", "ch341a", err, nander.ErrorTypePermanent)
	}
	if t.in, err = t.intf.InEndpoint(epIn); err != nil {
		t.Close()
		return nil, nander.NewTransportError("open", "ch341a", err, nander.ErrorTypePermanent)
	}

	if err := t.configure(); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

// configure sets line directions, parks chip select high and applies the
// clock level.
func (t *Transport) configure() error {
	return t.bulkWrite([]byte{
		cmdUIOStream,
		uioStmOut | outCSHigh,
		uioStmDir | dirMask,
		uioStmUS | t.speed,
		uioStmEnd,
	})
}

func (t *Transport) bulkWrite(data []byte) error {
	nander.Debugf("ch341a out: % X", data)
	if _, err := t.out.Write(data); err != nil {
		return nander.NewTransportError("write", "ch341a", err, nander.ErrorTypeTransient)
	}
	return nil
}

func (t *Transport) bulkRead(n int) ([]byte, error) {
	buf := make([]byte, n)
	got, err := t.in.Read(buf)
	if err != nil {
		return nil, nander.NewTransportError("read", "ch341a", err, nander.ErrorTypeTransient)
	}
	if got != n {
		return nil, nander.NewTransportError("read", "ch341a",
			fmt.Errorf("short read: %d of %d bytes", got, n), nander.ErrorTypeTransient)
	}
	nander.Debugf("ch341a in: % X", buf[:got])
	return buf[:got], nil
}

// Transfer implements the transport contract: a full-duplex exchange in
// 32-byte stream packets. Chip select is not touched.
func (t *Transport) Transfer(tx []byte) ([]byte, error) {
	rx := make([]byte, 0, len(tx))
	for len(tx) > 0 {
		n := min(len(tx), maxSPIChunk)
		cmd := make([]byte, 0, n+1)
		cmd = append(cmd, cmdSPIStream)
		cmd = append(cmd, tx[:n]...)
		if err := t.bulkWrite(cmd); err != nil {
			return nil, err
		}
		chunk, err := t.bulkRead(n)
		if err != nil {
			return nil, err
		}
		rx = append(rx, chunk...)
		tx = tx[n:]
	}
	return rx, nil
}

// SetChipSelect implements the transport contract via the UIO stream.
// The wire line is active low.
func (t *Transport) SetChipSelect(active bool) error {
	if active {
		t.outputs &^= 1 << pinCS
	} else {
		t.outputs |= 1 << pinCS
	}
	return t.bulkWrite([]byte{
		cmdUIOStream,
		uioStmOut | t.outputs&0x3F,
		uioStmEnd,
	})
}

// Transaction implements the transport contract. The assert, command and
// release for writes are fused into one bulk transfer; bulk reads stream
// 0xFF-filled packets up to 4 KiB at a time, which is what makes page
// reads fast on this bridge.
func (t *Transport) Transaction(tx []byte, rxLen int) ([]byte, error) {
	if rxLen == 0 {
		return nil, t.transactionWrite(tx)
	}

	if err := t.SetChipSelect(true); err != nil {
		return nil, err
	}
	rx, err := t.transactionRead(tx, rxLen)
	if csErr := t.SetChipSelect(false); csErr != nil && err == nil {
		err = csErr
	}
	if err != nil {
		return nil, err
	}
	return rx, nil
}

func (t *Transport) transactionWrite(tx []byte) error {
	if len(tx) > maxSPIStream {
		return nander.NewTransportError("transaction", "ch341a",
			fmt.Errorf("payload %d exceeds stream limit %d", len(tx), maxSPIStream),
			nander.ErrorTypePermanent)
	}
	cmd := make([]byte, 0, len(tx)+7)
	t.outputs &^= 1 << pinCS
	cmd = append(cmd, cmdUIOStream, uioStmOut|t.outputs&0x3F, uioStmEnd)
	if len(tx) > 0 {
		cmd = append(cmd, cmdSPIStream)
		cmd = append(cmd, tx...)
	}
	t.outputs |= 1 << pinCS
	cmd = append(cmd, cmdUIOStream, uioStmOut|t.outputs&0x3F, uioStmEnd)
	return t.bulkWrite(cmd)
}

func (t *Transport) transactionRead(tx []byte, rxLen int) ([]byte, error) {
	if _, err := t.Transfer(tx); err != nil {
		return nil, err
	}
	rx := make([]byte, 0, rxLen)
	for rxLen > 0 {
		n := min(rxLen, maxSPIStream)
		cmd := make([]byte, n+1)
		cmd[0] = cmdSPIStream
		for i := 1; i <= n; i++ {
			cmd[i] = 0xFF
		}
		if err := t.bulkWrite(cmd); err != nil {
			return nil, err
		}
		chunk, err := t.bulkRead(n)
		if err != nil {
			return nil, err
		}
		rx = append(rx, chunk...)
		rxLen -= n
	}
	return rx, nil
}

// MaxTransferSize implements the transport contract.
func (*Transport) MaxTransferSize() int { return maxSPIStream }

// SetSpeed implements the transport contract, selecting one of the
// bridge's eight clock levels.
func (t *Transport) SetSpeed(level uint8) error {
	t.speed = level & 0x07
	nander.Debugf("ch341a speed level %d (%s)", t.speed, SpeedDescription(t.speed))
	return t.configure()
}

// SetLine implements the line capability over the UIO stream.
func (t *Transport) SetLine(line nander.Line, high bool) error {
	pin, err := linePin(line)
	if err != nil {
		return err
	}
	if high {
		t.outputs |= 1 << pin
	} else {
		t.outputs &^= 1 << pin
	}
	return t.bulkWrite([]byte{
		cmdUIOStream,
		uioStmOut | t.outputs&0x3F,
		uioStmEnd,
	})
}

// ReadLine implements the line capability through the status command.
// Only the DIN pin is an input on this bridge.
func (t *Transport) ReadLine(line nander.Line) (bool, error) {
	if line != nander.LineMISO {
		return false, nander.NewTransportError("readline", "ch341a",
			fmt.Errorf("line %d is not an input", line), nander.ErrorTypePermanent)
	}
	if err := t.bulkWrite([]byte{cmdGetStatus}); err != nil {
		return false, err
	}
	status, err := t.bulkRead(2)
	if err != nil {
		return false, err
	}
	return status[0]&(1<<pinDIN) != 0, nil
}

// I2CWrite implements the I2C capability. Long payloads span multiple
// OUT runs inside one stream, so EEPROM page writes stay one bus
// transaction.
func (t *Transport) I2CWrite(addr byte, data []byte) error {
	payload := make([]byte, 0, len(data)+1)
	payload = append(payload, addr<<1)
	payload = append(payload, data...)

	cmd := make([]byte, 0, len(payload)+6)
	cmd = append(cmd, cmdI2CStream, i2cStmStart)
	for len(payload) > 0 {
		n := min(len(payload), maxI2CData)
		cmd = append(cmd, i2cStmOut|byte(n))
		cmd = append(cmd, payload[:n]...)
		payload = payload[n:]
	}
	cmd = append(cmd, i2cStmStop, i2cStmEnd)
	return t.bulkWrite(cmd)
}

// I2CRead implements the I2C capability. Callers bound reads by
// MaxI2CChunk.
func (t *Transport) I2CRead(addr byte, n int) ([]byte, error) {
	if n > maxI2CData {
		return nil, nander.NewTransportError("i2c read", "ch341a",
			fmt.Errorf("read of %d exceeds chunk limit %d", n, maxI2CData),
			nander.ErrorTypePermanent)
	}
	cmd := []byte{
		cmdI2CStream,
		i2cStmStart,
		i2cStmOut | 1,
		addr<<1 | 1,
		i2cStmIn | byte(n),
		i2cStmStop,
		i2cStmEnd,
	}
	if err := t.bulkWrite(cmd); err != nil {
		return nil, err
	}
	return t.bulkRead(n)
}

// MaxI2CChunk implements the I2C capability.
func (*Transport) MaxI2CChunk() int { return maxI2CData }

// Close implements the transport contract.
func (t *Transport) Close() error {
	if t.intfDone != nil {
		t.intfDone()
		t.intfDone = nil
	}
	if t.intf != nil {
		t.intf.Close()
		t.intf = nil
	}
	if t.dev != nil {
		_ = t.dev.Close()
		t.dev = nil
	}
	if t.ctx != nil {
		_ = t.ctx.Close()
		t.ctx = nil
	}
	return nil
}

// Type implements the transport contract.
func (*Transport) Type() nander.TransportType { return nander.TransportCH341A }

var (
	_ nander.Transport        = (*Transport)(nil)
	_ nander.BitBangTransport = (*Transport)(nil)
	_ nander.I2CTransport     = (*Transport)(nil)
)
