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
	"log"
	"os"
	"sync/atomic"
)

// Diagnostic output is off by default and has no effect on control flow.
// It can be enabled programmatically or with the NANDER_DEBUG environment
// variable (any non-empty value except "0").
var debugEnabled atomic.Bool

func init() {
	if v := os.Getenv("NANDER_DEBUG"); v != "" && v != "0" {
		debugEnabled.Store(true)
	}
}

// SetDebugEnabled toggles diagnostic logging for the whole library.
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugEnabled reports whether diagnostic logging is active.
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// Debugf logs a formatted diagnostic line when debugging is enabled.
// Transport packages share this sink so one switch covers the stack.
func Debugf(format string, args ...any) {
	if debugEnabled.Load() {
		log.Printf("nander: "+format, args...)
	}
}

func debugf(format string, args ...any) {
	Debugf(format, args...)
}

func debugln(args ...any) {
	if debugEnabled.Load() {
		log.Println(append([]any{"nander:"}, args...)...)
	}
}
