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
	"context"
	"errors"
	"testing"
	"time"

	nander "github.com/NanderProject/go-nander"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastRetry is a config with negligible backoff for tests.
func fastRetry(attempts int) *nander.RetryConfig {
	return &nander.RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Microsecond,
		MaxBackoff:        time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func transientErr() error {
	return nander.NewTransportError("transfer", "mock",
		errors.New("injected"), nander.ErrorTypeTransient)
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := nander.RetryWithConfig(context.Background(), fastRetry(3), func() error {
		calls++
		if calls < 3 {
			return transientErr()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := nander.RetryWithConfig(context.Background(), fastRetry(3), func() error {
		calls++
		return transientErr()
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var terr *nander.TransportError
	assert.ErrorAs(t, err, &terr)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	calls := 0
	want := &nander.BadBlockError{Block: 9}
	err := nander.RetryWithConfig(context.Background(), fastRetry(5), func() error {
		calls++
		return want
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "permanent errors must not be retried")
	assert.ErrorIs(t, err, nander.ErrBadBlock)
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := nander.RetryWithConfig(ctx, fastRetry(3), func() error {
		calls++
		return transientErr()
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetryNilConfigUsesDefaults(t *testing.T) {
	t.Parallel()

	calls := 0
	err := nander.RetryWithConfig(context.Background(), nil, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithAttemptsClones(t *testing.T) {
	t.Parallel()

	base := nander.DefaultRetryConfig()
	derived := base.WithAttempts(7)
	assert.Equal(t, 7, derived.MaxAttempts)
	assert.Equal(t, 3, base.MaxAttempts, "original must be unchanged")
	assert.Equal(t, base.InitialBackoff, derived.InitialBackoff)
}
