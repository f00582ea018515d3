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

package detection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetector struct {
	transport string
	devices   []DeviceInfo
	err       error
}

func (f *fakeDetector) Transport() string { return f.transport }

func (f *fakeDetector) Detect(_ context.Context, _ *Options) ([]DeviceInfo, error) {
	return f.devices, f.err
}

// withDetectors swaps the global detector list for the test's duration.
// Detection tests cannot run in parallel because of this shared state.
func withDetectors(t *testing.T, ds ...Detector) {
	t.Helper()
	registryMu.Lock()
	saved := registry
	registry = nil
	registryMu.Unlock()
	for _, d := range ds {
		RegisterDetector(d)
	}
	t.Cleanup(func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	})
}

func TestDetectAllAggregatesAndSorts(t *testing.T) {
	withDetectors(t,
		&fakeDetector{transport: "usb", devices: []DeviceInfo{
			{Transport: "usb", Path: "001:004", Name: "CH341A programmer"},
		}},
		&fakeDetector{transport: "serial", devices: []DeviceInfo{
			{Transport: "serial", Path: "/dev/ttyUSB0", Name: "CH341 UART"},
		}},
	)

	found, err := DetectAll(context.Background(), &Options{})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "serial", found[0].Transport)
	assert.Equal(t, "usb", found[1].Transport)
}

func TestDetectAllSkipsUnsupportedPlatforms(t *testing.T) {
	withDetectors(t,
		&fakeDetector{transport: "usb", err: ErrUnsupportedPlatform},
		&fakeDetector{transport: "serial", devices: []DeviceInfo{
			{Transport: "serial", Path: "/dev/ttyUSB0", Name: "bridge"},
		}},
	)

	found, err := DetectAll(context.Background(), &Options{})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestDetectAllReportsNoDevices(t *testing.T) {
	withDetectors(t, &fakeDetector{transport: "usb"})

	_, err := DetectAll(context.Background(), &Options{})
	assert.ErrorIs(t, err, ErrNoDevicesFound)
}

func TestDetectAllPropagatesHardErrors(t *testing.T) {
	boom := errors.New("usb stack broken")
	withDetectors(t, &fakeDetector{transport: "usb", err: boom})

	_, err := DetectAll(context.Background(), &Options{})
	assert.ErrorIs(t, err, boom)
}

// A nil options value must behave like the zero value.
func TestDetectAllNilOptions(t *testing.T) {
	withDetectors(t, &fakeDetector{transport: "usb", devices: []DeviceInfo{
		{Transport: "usb", Path: "001:002", Name: "bridge"},
	}})

	found, err := DetectAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
