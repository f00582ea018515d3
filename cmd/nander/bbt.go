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
	"flag"
	"fmt"
	"os"

	nander "github.com/NanderProject/go-nander"
)

const bbtUsage = `Usage: nander bbt <scan|dump|import> [flags]

  scan    Probe factory bad block markers and print the table
  dump    Scan and save the table to a file
  import  Load a previously saved table and print it
`

func runBBT(args []string) error {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, bbtUsage)
		return fmt.Errorf("bbt: missing subcommand")
	}
	switch args[0] {
	case "scan":
		return runBBTScan(args[1:], false)
	case "dump":
		return runBBTScan(args[1:], true)
	case "import":
		return runBBTImport(args[1:])
	default:
		fmt.Fprint(os.Stderr, bbtUsage)
		return fmt.Errorf("bbt: unknown subcommand %q", args[0])
	}
}

func runBBTScan(args []string, save bool) error {
	fs := flag.NewFlagSet("bbt scan", flag.ExitOnError)
	c := addCommonFlags(fs)
	out := fs.String("out", "bbt.bin", "Output file for the table (dump)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	dev, err := openDevice(ctx, c)
	if err != nil {
		return err
	}
	defer dev.Close()

	bbt, err := dev.ScanBadBlocks(ctx, progressBar("scanning"))
	if err != nil {
		return err
	}
	printBBT(bbt)

	if save {
		if err := os.WriteFile(*out, bbt.Export(), 0o644); err != nil {
			return err
		}
		fmt.Printf("table saved to %s\n", *out)
	}
	return nil
}

func runBBTImport(args []string) error {
	fs := flag.NewFlagSet("bbt import", flag.ExitOnError)
	c := addCommonFlags(fs)
	in := fs.String("in", "", "Table file written by 'bbt dump' (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("bbt import: --in is required")
	}
	data, err := os.ReadFile(*in)
	if err != nil {
		return err
	}

	ctx := context.Background()
	dev, err := openDevice(ctx, c)
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.ImportBadBlocks(data); err != nil {
		return err
	}
	printBBT(dev.BadBlockTable())
	return nil
}

func printBBT(bbt *nander.BadBlockTable) {
	bad := bbt.BadBlocks()
	fmt.Printf("%d of %d blocks bad\n", len(bad), bbt.Len())
	for _, b := range bad {
		fmt.Printf("  block %5d: %s\n", b, bbt.Status(b))
	}
}
