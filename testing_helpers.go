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
	"sync"
)

// MockTransport is a scripted transport for tests. Responses come from a
// response function keyed on the transmitted bytes; every transaction is
// recorded for later assertions.
type MockTransport struct {
	// ResponseFunc produces the rxLen reply bytes for a transaction.
	// A nil func answers every read with 0xFF fill.
	ResponseFunc func(tx []byte, rxLen int) ([]byte, error)

	mu           sync.Mutex
	transactions [][]byte
	csEvents     []bool
	closed       bool
	maxTransfer  int
}

// NewMockTransport creates a mock with no scripted responses.
func NewMockTransport() *MockTransport {
	return &MockTransport{maxTransfer: 4096}
}

// NewMockTransportWithFunc creates a mock answering with fn.
func NewMockTransportWithFunc(fn func(tx []byte, rxLen int) ([]byte, error)) *MockTransport {
	mock := NewMockTransport()
	mock.ResponseFunc = fn
	return mock
}

// SetMaxTransferSize overrides the advertised transfer limit, to exercise
// chunking paths.
func (m *MockTransport) SetMaxTransferSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxTransfer = n
}

// Transactions returns copies of every transmitted command so far.
func (m *MockTransport) Transactions() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.transactions))
	for i, tx := range m.transactions {
		out[i] = append([]byte(nil), tx...)
	}
	return out
}

// TransactionsWithPrefix returns the recorded commands starting with
// prefix.
func (m *MockTransport) TransactionsWithPrefix(prefix []byte) [][]byte {
	var out [][]byte
	for _, tx := range m.Transactions() {
		if bytes.HasPrefix(tx, prefix) {
			out = append(out, tx)
		}
	}
	return out
}

func (m *MockTransport) respond(tx []byte, rxLen int) ([]byte, error) {
	m.transactions = append(m.transactions, append([]byte(nil), tx...))
	if m.ResponseFunc != nil {
		return m.ResponseFunc(tx, rxLen)
	}
	rx := make([]byte, rxLen)
	for i := range rx {
		rx[i] = 0xFF
	}
	return rx, nil
}

// Transaction implements Transport.
func (m *MockTransport) Transaction(tx []byte, rxLen int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrTransportClosed
	}
	return m.respond(tx, rxLen)
}

// Transfer implements Transport. The mock treats an un-framed transfer
// like a transaction write with an equal-length echo read.
func (m *MockTransport) Transfer(tx []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrTransportClosed
	}
	return m.respond(tx, len(tx))
}

// SetChipSelect implements Transport, recording the event.
func (m *MockTransport) SetChipSelect(assert bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrTransportClosed
	}
	m.csEvents = append(m.csEvents, assert)
	return nil
}

// ChipSelectEvents returns the recorded chip-select transitions.
func (m *MockTransport) ChipSelectEvents() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.csEvents...)
}

// MaxTransferSize implements Transport.
func (m *MockTransport) MaxTransferSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxTransfer
}

// SetSpeed implements Transport.
func (*MockTransport) SetSpeed(uint8) error { return nil }

// Close implements Transport.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Type implements Transport.
func (*MockTransport) Type() TransportType { return TransportMock }
