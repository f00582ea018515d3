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
	"fmt"
	"testing"

	nander "github.com/NanderProject/go-nander"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetErrorType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want nander.ErrorType
	}{
		{
			name: "transient transport error",
			err: nander.NewTransportError("transfer", "usb",
				errors.New("pipe error"), nander.ErrorTypeTransient),
			want: nander.ErrorTypeTransient,
		},
		{
			name: "timeout transport error",
			err:  nander.NewTimeoutError("wait-ready", "usb"),
			want: nander.ErrorTypeTimeout,
		},
		{
			name: "wrapped transport error",
			err: fmt.Errorf("reading page: %w",
				nander.NewTransportError("transfer", "usb",
					errors.New("stall"), nander.ErrorTypePermanent)),
			want: nander.ErrorTypePermanent,
		},
		{
			name: "bare timeout sentinel",
			err:  fmt.Errorf("poll: %w", nander.ErrTimeout),
			want: nander.ErrorTypeTimeout,
		},
		{
			name: "communication failed",
			err:  fmt.Errorf("id: %w", nander.ErrCommunicationFailed),
			want: nander.ErrorTypeTransient,
		},
		{
			name: "bad block",
			err:  &nander.BadBlockError{Block: 7},
			want: nander.ErrorTypePermanent,
		},
		{
			name: "ecc failure",
			err:  &nander.EccError{Address: 0x800},
			want: nander.ErrorTypePermanent,
		},
		{
			name: "verify mismatch",
			err:  &nander.VerifyError{Address: 4, Expected: 0xAA, Actual: 0x2A},
			want: nander.ErrorTypePermanent,
		},
		{
			name: "unsupported chip",
			err:  &nander.UnsupportedChipError{ID: nander.JEDECID{0xDE, 0xAD, 0x01}},
			want: nander.ErrorTypePermanent,
		},
		{
			name: "invalid request",
			err:  fmt.Errorf("%w: zero-length read", nander.ErrInvalidRequest),
			want: nander.ErrorTypePermanent,
		},
		{
			name: "unclassified",
			err:  errors.New("something else"),
			want: nander.ErrorTypeUnknown,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, nander.GetErrorType(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	retryable := []error{
		nander.NewTransportError("transfer", "usb",
			errors.New("reset"), nander.ErrorTypeTransient),
		nander.NewTimeoutError("wait-ready", ""),
		fmt.Errorf("id: %w", nander.ErrCommunicationFailed),
	}
	for _, err := range retryable {
		assert.True(t, nander.IsRetryable(err), "expected retryable: %v", err)
	}

	permanent := []error{
		&nander.BadBlockError{Block: 1},
		&nander.EccError{Address: 0},
		&nander.VerifyError{Address: 0, Expected: 1, Actual: 0},
		&nander.UnsupportedChipError{ID: nander.JEDECID{1, 2, 3}},
		fmt.Errorf("%w: nope", nander.ErrNotSupported),
		errors.New("unclassified"),
	}
	for _, err := range permanent {
		assert.False(t, nander.IsRetryable(err), "expected not retryable: %v", err)
	}
}

func TestTypedErrorUnwrapping(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, &nander.BadBlockError{Block: 3}, nander.ErrBadBlock)
	assert.ErrorIs(t, &nander.EccError{Address: 0x1000}, nander.ErrEccFailure)
	assert.ErrorIs(t, &nander.VerifyError{}, nander.ErrVerifyMismatch)
	assert.ErrorIs(t, &nander.UnsupportedChipError{}, nander.ErrUnsupportedChip)

	wrapped := fmt.Errorf("writing block: %w", &nander.BadBlockError{Block: 12})
	var bbe *nander.BadBlockError
	require.ErrorAs(t, wrapped, &bbe)
	assert.Equal(t, uint32(12), bbe.Block)
}

func TestTransportErrorMessage(t *testing.T) {
	t.Parallel()

	err := nander.NewTransportError("bulk write", "ch341a",
		errors.New("endpoint stalled"), nander.ErrorTypeTransient)
	assert.Contains(t, err.Error(), "bulk write")
	assert.Contains(t, err.Error(), "ch341a")
	assert.Contains(t, err.Error(), "endpoint stalled")
	assert.True(t, err.Retryable)

	noPort := nander.NewTransportError("open", "", errors.New("not found"),
		nander.ErrorTypePermanent)
	assert.NotContains(t, noPort.Error(), " on ")
	assert.False(t, noPort.Retryable)
}
