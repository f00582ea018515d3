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
	"context"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior for logical operations.
// Retries re-attempt the whole operation with the same parameters; they
// never try to recover mid-transaction state.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration
	// BackoffMultiplier scales the delay after each retry.
	BackoffMultiplier float64
	// Jitter adds randomness to backoff delays (0.0 to 1.0).
	Jitter float64
	// RetryTimeout bounds the total time spent across all attempts.
	// Zero means no overall bound.
	RetryTimeout time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    10 * time.Millisecond,
		MaxBackoff:        500 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryTimeout:      30 * time.Second,
	}
}

// WithAttempts returns a copy of the config with MaxAttempts replaced.
// Used by orchestrators to honor a per-request retry count.
func (c *RetryConfig) WithAttempts(attempts int) *RetryConfig {
	clone := *c
	clone.MaxAttempts = attempts
	return &clone
}

// backoff returns the delay to apply before retry attempt n (0-based).
func (c *RetryConfig) backoff(n int) time.Duration {
	d := float64(c.InitialBackoff)
	for i := 0; i < n; i++ {
		d *= c.BackoffMultiplier
	}
	if max := float64(c.MaxBackoff); c.MaxBackoff > 0 && d > max {
		d = max
	}
	if c.Jitter > 0 {
		d += d * c.Jitter * (rand.Float64()*2 - 1)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// RetryWithConfig executes operation with bounded retries. Only errors
// classified as retryable (transport and timeout failures) trigger another
// attempt; policy errors surface immediately. The last observed error is
// returned once attempts are exhausted.
func RetryWithConfig(ctx context.Context, config *RetryConfig, operation func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var deadline time.Time
	if config.RetryTimeout > 0 {
		deadline = time.Now().Add(config.RetryTimeout)
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == attempts-1 {
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}

		debugf("retrying after error (attempt %d/%d): %v", attempt+1, attempts, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(config.backoff(attempt)):
		}
	}
	return lastErr
}
