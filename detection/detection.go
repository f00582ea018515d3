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

// Package detection discovers attached programmer hardware. Concrete
// detectors live in subpackages and register themselves on import:
//
//	import _ "github.com/NanderProject/go-nander/detection/usb"
//
// then DetectAll returns every candidate found.
package detection

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNoDevicesFound means detection ran but nothing answered.
	ErrNoDevicesFound = errors.New("no programmer devices found")
	// ErrUnsupportedPlatform means the detector cannot run on this OS.
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
)

// Mode selects how intrusive detection is allowed to be.
type Mode int

const (
	// Passive only inspects descriptors and device listings.
	Passive Mode = iota
	// Active may open candidate devices and probe them.
	Active
)

// Options tunes a detection run.
type Options struct {
	// Mode selects passive or active probing. Default is Passive.
	Mode Mode
	// Timeout bounds the whole run. Zero means 2 seconds.
	Timeout time.Duration
	// Blocklist holds VID:PID strings never to probe.
	Blocklist []string
}

// DeviceInfo describes one detected programmer candidate.
type DeviceInfo struct {
	// Metadata carries detector-specific details (serial, product name).
	Metadata map[string]string
	// Transport names the transport package able to open this device.
	Transport string
	// Path is the open path or bus position.
	Path string
	// Name is a human-readable description.
	Name string
}

// Detector finds devices reachable through one transport.
type Detector interface {
	// Transport names the transport this detector serves.
	Transport() string
	// Detect runs one scan.
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	registryMu sync.RWMutex
	registry   []Detector
)

// RegisterDetector adds a detector. Called from subpackage init.
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, d)
}

// Detectors returns the registered detectors.
func Detectors() []Detector {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return append([]Detector(nil), registry...)
}

// DetectAll runs every registered detector and merges the results.
// Detectors that cannot run on this platform are skipped, any other
// detector error aborts the run.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		opts = &Options{}
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var all []DeviceInfo
	for _, d := range Detectors() {
		devices, err := d.Detect(ctx, opts)
		if errors.Is(err, ErrUnsupportedPlatform) {
			continue
		}
		if err != nil {
			return nil, err
		}
		all = append(all, devices...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Transport != all[j].Transport {
			return all[i].Transport < all[j].Transport
		}
		return all[i].Path < all[j].Path
	})
	if len(all) == 0 {
		return nil, ErrNoDevicesFound
	}
	return all, nil
}
