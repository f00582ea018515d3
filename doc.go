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

/*
Package nander is a flash memory programming engine for USB-attached SPI/I2C
bridge adapters such as the CH341A.

The library turns logical operations ("read N bytes at address A") into the
chip-specific bus transaction sequences required by SPI NAND, SPI NOR, SPI
EEPROM (25xxx), I2C EEPROM (24Cxx) and Microwire EEPROM (93Cxx) parts, and
wraps every operation with bad-block handling, ECC policy, bounded retries and
post-write verification.

Basic Usage:

	import (
	    "github.com/NanderProject/go-nander"
	    "github.com/NanderProject/go-nander/chipdb"
	    "github.com/NanderProject/go-nander/transport/ch341a"
	)

	// Open the USB bridge
	transport, err := ch341a.New()
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	// Identify the attached chip and build a device
	device, err := nander.New(transport,
	    nander.WithMaxRetries(3),
	)
	if err != nil {
	    log.Fatal(err)
	}
	layout, err := device.DetectChip(chipdb.Registry())
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Printf("Detected %s (%s)\n", layout.Name, layout.ID)

	// Read the first erase block
	data, err := device.Read(nander.ReadRequest{
	    Length: layout.BlockSize,
	})
	if err != nil {
	    log.Fatal(err)
	}

Transport Selection:

The core is transport-agnostic. Concrete bridges live in subpackages:

  - transport/ch341a: CH341A USB bridge (SPI, I2C and bit-banged Microwire)
  - transport/spidev: Linux spidev ports via periph.io
  - transport/i2cdev: native I2C buses via periph.io (24Cxx parts)

Bad Blocks and ECC:

NAND operations consult a BadBlockTable and honor a BadBlockStrategy (fail,
skip, or force access). The table can be scanned from factory markers,
exported to a compact byte format and re-imported later. EccPolicy selects
between on-chip corrected reads and raw page+OOB access, and can downgrade
uncorrectable ECC errors to reported-but-continued for data recovery.

Error Handling:

All operations return typed errors that can be inspected:

	if errors.Is(err, nander.ErrTimeout) {
	    // busy-poll deadline exceeded
	}
	var verr *nander.VerifyError
	if errors.As(err, &verr) {
	    fmt.Printf("first mismatch at 0x%06X\n", verr.Address)
	}

Thread Safety:

Device and Transport are not thread-safe. All bus transactions on one bridge
are strictly serialized; run independent operations on independent bridges,
or add external synchronization.
*/
package nander
