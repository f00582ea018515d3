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

import "time"

// pollUntil repeatedly invokes poll until it reports done, an error occurs,
// or the wall-clock deadline expires. The deadline is a hard bound: chip
// timing varies, so completion is never inferred from a transaction count,
// and expiry is a typed timeout error rather than a silent success.
func pollUntil(op string, timeout, interval time.Duration, poll func() (bool, error)) error {
	deadline := time.Now().Add(timeout)
	for {
		done, err := poll()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if time.Now().After(deadline) {
			return NewTimeoutError(op, "")
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}
}
