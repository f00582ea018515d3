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

import "strings"

// Registry is an immutable chip layout table keyed by JEDEC identifier.
// It is built once at process start and passed by reference to whatever
// needs lookups; there is no mutation after construction.
type Registry struct {
	byID    map[JEDECID]ChipLayout
	ordered []ChipLayout
}

// NewRegistry builds a registry from the given layouts. Later entries with
// a duplicate identifier are ignored. Parts without a JEDEC identifier
// (EEPROMs) are reachable by name only, so any number of them may
// coexist.
func NewRegistry(layouts []ChipLayout) *Registry {
	r := &Registry{
		byID:    make(map[JEDECID]ChipLayout, len(layouts)),
		ordered: make([]ChipLayout, 0, len(layouts)),
	}
	for _, l := range layouts {
		if !l.ID.IsZero() {
			if _, exists := r.byID[l.ID]; exists {
				continue
			}
			r.byID[l.ID] = l
		}
		r.ordered = append(r.ordered, l)
	}
	return r
}

// FindByID looks up a layout by its 3-byte identifier.
func (r *Registry) FindByID(id JEDECID) (ChipLayout, bool) {
	l, ok := r.byID[id]
	return l, ok
}

// FindByName looks up a layout by part name, case-insensitively.
func (r *Registry) FindByName(name string) (ChipLayout, bool) {
	for _, l := range r.ordered {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return ChipLayout{}, false
}

// List returns all layouts in registration order. The returned slice is a
// copy; mutating it does not affect the registry.
func (r *Registry) List() []ChipLayout {
	out := make([]ChipLayout, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of registered layouts.
func (r *Registry) Len() int {
	return len(r.ordered)
}
