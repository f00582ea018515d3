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
	"fmt"
	"time"
)

// DeviceOption configures device construction.
type DeviceOption func(*Device) error

// WithRetryConfig replaces the retry policy applied to operations that
// do not request a specific retry count.
func WithRetryConfig(config *RetryConfig) DeviceOption {
	return func(d *Device) error {
		if config == nil {
			return fmt.Errorf("%w: nil retry config", ErrInvalidRequest)
		}
		d.retry = config
		return nil
	}
}

// WithMaxRetries caps re-attempts for device-level operations: an
// operation runs at most retries+1 times.
func WithMaxRetries(retries int) DeviceOption {
	return func(d *Device) error {
		if retries < 0 {
			return fmt.Errorf("%w: negative retry count %d", ErrInvalidRequest, retries)
		}
		d.retry = d.retry.WithAttempts(retries + 1)
		return nil
	}
}

// WithTimeout sets the busy-poll deadline applied by the engines built
// for this device.
func WithTimeout(timeout time.Duration) DeviceOption {
	return func(d *Device) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: non-positive timeout %v", ErrInvalidRequest, timeout)
		}
		d.engineOpts = append(d.engineOpts, WithPollTimeout(timeout))
		return nil
	}
}

// WithProgress installs a default progress sink used whenever a call
// does not pass its own.
func WithProgress(f ProgressFunc) DeviceOption {
	return func(d *Device) error {
		d.progress = f
		return nil
	}
}

// WithMarker overrides the factory bad-block marker locations probed by
// NAND engines built for this device.
func WithMarker(scheme MarkerScheme) DeviceOption {
	return func(d *Device) error {
		if scheme == nil {
			return fmt.Errorf("%w: nil marker scheme", ErrInvalidRequest)
		}
		d.engineOpts = append(d.engineOpts, WithMarkerScheme(scheme))
		return nil
	}
}
