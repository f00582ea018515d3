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

package usb

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// nodeAccessible reports whether the usbfs node can be opened read/write
// by this process, which is the usual udev-rule stumbling block.
func nodeAccessible(bus, address int) bool {
	path := fmt.Sprintf("/dev/bus/usb/%03d/%03d", bus, address)
	return unix.Access(path, unix.R_OK|unix.W_OK) == nil
}
