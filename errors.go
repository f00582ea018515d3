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
	"errors"
	"fmt"
)

// Sentinel errors shared across the library.
var (
	// ErrTimeout indicates a busy-poll deadline was exceeded before the
	// chip reported ready.
	ErrTimeout = errors.New("operation timeout")

	// ErrTransportClosed indicates the transport was closed or removed.
	ErrTransportClosed = errors.New("transport closed")

	// ErrCommunicationFailed indicates a bus exchange failed at the
	// bridge level.
	ErrCommunicationFailed = errors.New("communication failed")

	// ErrBadBlock indicates a target block is marked bad and the active
	// strategy is Fail.
	ErrBadBlock = errors.New("bad block")

	// ErrEccFailure indicates an uncorrectable ECC error.
	ErrEccFailure = errors.New("uncorrectable ECC error")

	// ErrVerifyMismatch indicates a post-write compare failure.
	ErrVerifyMismatch = errors.New("verify mismatch")

	// ErrUnsupportedChip indicates the identifier read from the chip has
	// no matching layout in the registry.
	ErrUnsupportedChip = errors.New("unsupported chip")

	// ErrFormatMismatch indicates an imported bad block table does not
	// match the chip geometry.
	ErrFormatMismatch = errors.New("bad block table format mismatch")

	// ErrNotSupported indicates the operation does not apply to the
	// active chip family or transport.
	ErrNotSupported = errors.New("operation not supported")

	// ErrInvalidRequest indicates request parameters are inconsistent
	// with the chip layout.
	ErrInvalidRequest = errors.New("invalid request")
)

// ErrorType classifies errors for retry decisions.
type ErrorType int

const (
	// ErrorTypeUnknown is the zero classification.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeTransient marks errors that may succeed on retry.
	ErrorTypeTransient
	// ErrorTypeTimeout marks deadline expiry; retryable at the operation
	// level.
	ErrorTypeTimeout
	// ErrorTypePermanent marks errors that will not succeed on retry
	// (policy violations, unsupported chips, verify mismatches).
	ErrorTypePermanent
)

// TransportError wraps a bridge/USB-level failure with enough context for
// the caller to report an actionable message.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("transport %s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError creates a TransportError with the given classification.
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a TransportError wrapping ErrTimeout.
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTimeout, ErrorTypeTimeout)
}

// BadBlockError reports a block excluded under the Fail strategy.
type BadBlockError struct {
	Block uint32
}

func (e *BadBlockError) Error() string {
	return fmt.Sprintf("bad block %d", e.Block)
}

// Unwrap allows errors.Is(err, ErrBadBlock).
func (*BadBlockError) Unwrap() error { return ErrBadBlock }

// EccError reports an uncorrectable ECC failure at a byte address.
type EccError struct {
	Address Address
}

func (e *EccError) Error() string {
	return fmt.Sprintf("uncorrectable ECC error at 0x%06X", uint32(e.Address))
}

// Unwrap allows errors.Is(err, ErrEccFailure).
func (*EccError) Unwrap() error { return ErrEccFailure }

// VerifyError reports the first differing address of a post-write compare.
// Post-write verification failures are never retried automatically.
type VerifyError struct {
	Address  Address
	Expected byte
	Actual   byte
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("verify mismatch at 0x%06X: expected %02X, got %02X",
		uint32(e.Address), e.Expected, e.Actual)
}

// Unwrap allows errors.Is(err, ErrVerifyMismatch).
func (*VerifyError) Unwrap() error { return ErrVerifyMismatch }

// UnsupportedChipError carries the identifier that failed registry lookup.
type UnsupportedChipError struct {
	ID JEDECID
}

func (e *UnsupportedChipError) Error() string {
	return fmt.Sprintf("unsupported chip: identifier %s", e.ID)
}

// Unwrap allows errors.Is(err, ErrUnsupportedChip).
func (*UnsupportedChipError) Unwrap() error { return ErrUnsupportedChip }

// ProgramError reports a program-execute failure flagged by the chip status
// register.
type ProgramError struct {
	Address Address
	Block   uint32
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("program failed at 0x%06X (block %d)", uint32(e.Address), e.Block)
}

// EraseError reports an erase failure flagged by the chip status register.
type EraseError struct {
	Block uint32
}

func (e *EraseError) Error() string {
	return fmt.Sprintf("erase failed at block %d", e.Block)
}

// GetErrorType classifies an arbitrary error for retry decisions.
func GetErrorType(err error) ErrorType {
	var terr *TransportError
	if errors.As(err, &terr) {
		return terr.Type
	}
	switch {
	case errors.Is(err, ErrTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrCommunicationFailed), errors.Is(err, ErrTransportClosed):
		return ErrorTypeTransient
	case errors.Is(err, ErrBadBlock), errors.Is(err, ErrEccFailure),
		errors.Is(err, ErrVerifyMismatch), errors.Is(err, ErrUnsupportedChip),
		errors.Is(err, ErrFormatMismatch), errors.Is(err, ErrNotSupported),
		errors.Is(err, ErrInvalidRequest):
		return ErrorTypePermanent
	default:
		return ErrorTypeUnknown
	}
}

// IsRetryable reports whether an operation that failed with err may be
// re-attempted with the same parameters.
func IsRetryable(err error) bool {
	var terr *TransportError
	if errors.As(err, &terr) {
		return terr.Retryable
	}
	switch GetErrorType(err) {
	case ErrorTypeTransient, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}
