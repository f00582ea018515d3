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

// nander is a command-line flash programmer for SPI NAND, SPI NOR and
// serial EEPROM chips behind a CH341A bridge or a native Linux bus.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	nander "github.com/NanderProject/go-nander"
	"github.com/NanderProject/go-nander/chipdb"
	"github.com/NanderProject/go-nander/detection"

	// Register all detectors for --device auto.
	_ "github.com/NanderProject/go-nander/detection/serialdet"
	_ "github.com/NanderProject/go-nander/detection/usb"

	"github.com/NanderProject/go-nander/transport/ch341a"
	"github.com/NanderProject/go-nander/transport/i2cdev"
	"github.com/NanderProject/go-nander/transport/spidev"
)

const usage = `Usage: nander <command> [flags]

Commands:
  info         Identify the attached chip and show its layout
  list         List chips in the built-in database
  read         Read chip contents to a file
  write        Write a file to the chip
  erase        Erase a region (or the whole chip)
  verify       Compare chip contents against a file
  bbt          Bad block table: scan, dump, import
  passthrough  Raw SPI/I2C exchange for debugging

Run 'nander <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "read":
		err = runRead(os.Args[2:])
	case "write":
		err = runWrite(os.Args[2:])
	case "erase":
		err = runErase(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "bbt":
		err = runBBT(os.Args[2:])
	case "passthrough":
		err = runPassthrough(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "nander: %v\n", err)
		os.Exit(1)
	}
}

// common holds the flags every chip-touching command shares.
type common struct {
	device  *string
	chip    *string
	speed   *int
	retries *int
	timeout *time.Duration
	debug   *bool
}

func addCommonFlags(fs *flag.FlagSet) *common {
	return &common{
		device: fs.String("device", "auto",
			"Programmer: auto, ch341a, spidev:<port>, i2c:<bus>"),
		chip:    fs.String("chip", "", "Chip name (skip JEDEC detection, required for EEPROMs)"),
		speed:   fs.Int("speed", -1, "Bus clock level 0-7 (-1 keeps the default)"),
		retries: fs.Int("retries", 2, "Re-attempts after transport failures"),
		timeout: fs.Duration("timeout", 0, "Program/erase poll deadline (0 keeps the default)"),
		debug:   fs.Bool("debug", false, "Enable debug output"),
	}
}

// openTransport opens the programmer selected by --device.
func openTransport(ctx context.Context, c *common) (nander.Transport, error) {
	if *c.debug {
		nander.SetDebugEnabled(true)
	}

	spec := strings.ToLower(*c.device)
	switch {
	case spec == "auto":
		devices, err := detection.DetectAll(ctx, &detection.Options{})
		if err != nil {
			return nil, fmt.Errorf("detecting programmer: %w", err)
		}
		for _, d := range devices {
			if d.Transport == "ch341a" {
				fmt.Fprintf(os.Stderr, "using %s (%s)\n", d.Name, d.Path)
				return ch341a.New()
			}
			fmt.Fprintf(os.Stderr, "found %s at %s\n", d.Name, d.Path)
		}
		return nil, detection.ErrNoDevicesFound
	case spec == "ch341a":
		return ch341a.New()
	case strings.HasPrefix(spec, "spidev:"):
		return spidev.New(strings.TrimPrefix(*c.device, "spidev:"))
	case strings.HasPrefix(spec, "i2c:"):
		return i2cdev.New(strings.TrimPrefix(*c.device, "i2c:"))
	default:
		return nil, fmt.Errorf("unknown device spec %q", *c.device)
	}
}

// openDevice opens the transport and selects or detects the chip.
func openDevice(ctx context.Context, c *common) (*nander.Device, error) {
	t, err := openTransport(ctx, c)
	if err != nil {
		return nil, err
	}
	if *c.speed >= 0 {
		if err := t.SetSpeed(uint8(*c.speed)); err != nil {
			_ = t.Close()
			return nil, fmt.Errorf("setting speed: %w", err)
		}
	}

	opts := []nander.DeviceOption{nander.WithMaxRetries(*c.retries)}
	if *c.timeout > 0 {
		opts = append(opts, nander.WithTimeout(*c.timeout))
	}
	dev, err := nander.New(t, opts...)
	if err != nil {
		_ = t.Close()
		return nil, err
	}

	if *c.chip != "" {
		layout, ok := chipdb.Registry().FindByName(*c.chip)
		if !ok {
			_ = dev.Close()
			return nil, fmt.Errorf("chip %q not in database (try 'nander list')", *c.chip)
		}
		if err := dev.SetChip(layout); err != nil {
			_ = dev.Close()
			return nil, err
		}
		return dev, nil
	}

	layout, err := dev.DetectChip(ctx, chipdb.Registry())
	if err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("detecting chip: %w", err)
	}
	fmt.Fprintf(os.Stderr, "detected %s %s (%s)\n", layout.Vendor, layout.Name, dev.ID())
	return dev, nil
}

// progressBar prints a single updating percentage line on stderr.
func progressBar(label string) nander.ProgressFunc {
	last := -1
	return func(p nander.Progress) {
		if p.Total == 0 {
			return
		}
		pct := int(p.Current * 100 / p.Total)
		if pct != last {
			last = pct
			fmt.Fprintf(os.Stderr, "\r%s: %3d%%", label, pct)
			if pct == 100 {
				fmt.Fprintln(os.Stderr)
			}
		}
	}
}

func sizeString(n uint32) string {
	switch {
	case n >= 1024*1024 && n%(1024*1024) == 0:
		return fmt.Sprintf("%d MiB", n/(1024*1024))
	case n >= 1024 && n%1024 == 0:
		return fmt.Sprintf("%d KiB", n/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
