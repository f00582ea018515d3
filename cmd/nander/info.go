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

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	nander "github.com/NanderProject/go-nander"
	"github.com/NanderProject/go-nander/chipdb"
)

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	c := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	dev, err := openDevice(ctx, c)
	if err != nil {
		return err
	}
	defer dev.Close()

	layout := dev.Layout()
	fmt.Printf("Chip:      %s %s\n", layout.Vendor, layout.Name)
	if !layout.ID.IsZero() {
		fmt.Printf("JEDEC ID:  %s\n", layout.ID)
	}
	fmt.Printf("Family:    %s\n", layout.Family)
	fmt.Printf("Capacity:  %s\n", sizeString(layout.Capacity))
	fmt.Printf("Page:      %d bytes", layout.PageSize)
	if layout.OOBSize > 0 {
		fmt.Printf(" + %d OOB", layout.OOBSize)
	}
	fmt.Println()
	if layout.BlockSize > 0 {
		fmt.Printf("Block:     %s (%d blocks)\n",
			sizeString(layout.BlockSize), layout.BlockCount())
	}

	status, err := dev.ReadStatus(ctx)
	switch {
	case errors.Is(err, nander.ErrNotSupported):
		// EEPROM families without a status register.
	case err != nil:
		return fmt.Errorf("reading status: %w", err)
	default:
		fmt.Printf("Status:    %s\n", strings.ToUpper(hex.EncodeToString(status)))
	}
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	family := fs.String("family", "", "Only list one family (nand, nor, eeprom-spi, eeprom-i2c, microwire)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var filter nander.FlashFamily
	if *family != "" {
		var ok bool
		if filter, ok = parseFamily(*family); !ok {
			return fmt.Errorf("unknown family %q", *family)
		}
	}

	w := os.Stdout
	fmt.Fprintf(w, "%-14s %-12s %-12s %-10s %s\n",
		"NAME", "VENDOR", "FAMILY", "CAPACITY", "JEDEC ID")
	for _, l := range chipdb.Registry().List() {
		if *family != "" && l.Family != filter {
			continue
		}
		id := "-"
		if !l.ID.IsZero() {
			id = l.ID.String()
		}
		fmt.Fprintf(w, "%-14s %-12s %-12s %-10s %s\n",
			l.Name, l.Vendor, l.Family, sizeString(l.Capacity), id)
	}
	return nil
}

func parseFamily(s string) (nander.FlashFamily, bool) {
	switch strings.ToLower(s) {
	case "nand":
		return nander.FamilyNAND, true
	case "nor":
		return nander.FamilyNOR, true
	case "eeprom-spi":
		return nander.FamilySPIEEPROM, true
	case "eeprom-i2c":
		return nander.FamilyI2CEEPROM, true
	case "microwire":
		return nander.FamilyMicrowireEEPROM, true
	default:
		return 0, false
	}
}

// runPassthrough sends a raw command to the chip and prints whatever comes
// back. Useful for poking at parts the database does not know yet.
func runPassthrough(args []string) error {
	fs := flag.NewFlagSet("passthrough", flag.ExitOnError)
	c := addCommonFlags(fs)
	mode := fs.String("mode", "spi", "Bus mode: spi or i2c")
	tx := fs.String("tx", "", "Command bytes as hex, e.g. 9f")
	rx := fs.Int("rx", 0, "Response bytes to read back")
	addr := fs.Uint("addr", 0x50, "I2C device address (7-bit)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out, err := hex.DecodeString(strings.ReplaceAll(*tx, " ", ""))
	if err != nil {
		return fmt.Errorf("decoding --tx: %w", err)
	}
	if len(out) == 0 && *rx == 0 {
		return errors.New("nothing to do: give --tx bytes, --rx count, or both")
	}

	ctx := context.Background()
	t, err := openTransport(ctx, c)
	if err != nil {
		return err
	}
	defer t.Close()
	if *c.speed >= 0 {
		if err := t.SetSpeed(uint8(*c.speed)); err != nil {
			return fmt.Errorf("setting speed: %w", err)
		}
	}

	var in []byte
	switch strings.ToLower(*mode) {
	case "spi":
		in, err = t.Transaction(out, *rx)
	case "i2c":
		i2c, ok := t.(nander.I2CTransport)
		if !ok {
			err = fmt.Errorf("%w: %s transport has no I2C mode", nander.ErrNotSupported, t.Type())
			break
		}
		if len(out) > 0 {
			err = i2c.I2CWrite(byte(*addr), out)
		}
		if err == nil && *rx > 0 {
			in, err = i2c.I2CRead(byte(*addr), *rx)
		}
	default:
		return fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		return err
	}

	if len(in) > 0 {
		fmt.Println(hexDump(in))
	}
	return nil
}

// hexDump formats bytes as a classic 16-per-line offset dump.
func hexDump(data []byte) string {
	var b strings.Builder
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(&b, "%08x  ", off)
		for i := off; i < end; i++ {
			fmt.Fprintf(&b, "%02x ", data[i])
		}
		if end < len(data) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
