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

// Package chipdb holds the built-in chip layout database. EEPROM
// families carry no JEDEC identifier and are selected by name.
package chipdb

import (
	"sync"

	nander "github.com/NanderProject/go-nander"
)

var (
	once     sync.Once
	registry *nander.Registry
)

// Registry returns the built-in layout registry. The registry is built
// once and shared; it is immutable.
func Registry() *nander.Registry {
	once.Do(func() {
		var layouts []nander.ChipLayout
		layouts = append(layouts, nandChips()...)
		layouts = append(layouts, norChips()...)
		layouts = append(layouts, spiEEPROMChips()...)
		layouts = append(layouts, i2cEEPROMChips()...)
		layouts = append(layouts, microwireChips()...)
		registry = nander.NewRegistry(layouts)
	})
	return registry
}
