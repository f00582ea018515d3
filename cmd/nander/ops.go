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
	"strings"

	nander "github.com/NanderProject/go-nander"
)

// accessFlags are the data-path flags shared by read, write and verify.
type accessFlags struct {
	addr   *uint
	oob    *string
	noEcc  *bool
	ignore *bool
	skip   *bool
}

func addAccessFlags(fs *flag.FlagSet) *accessFlags {
	return &accessFlags{
		addr:   fs.Uint("addr", 0, "Start address in bytes"),
		oob:    fs.String("o", "none", "OOB handling: none, include, only (NAND)"),
		noEcc:  fs.Bool("d", false, "Disable on-die ECC (raw page access)"),
		ignore: fs.Bool("i", false, "Continue past uncorrectable ECC errors"),
		skip:   fs.Bool("k", false, "Skip factory bad blocks instead of failing"),
	}
}

func (a *accessFlags) oobMode() (nander.OobMode, error) {
	switch strings.ToLower(*a.oob) {
	case "none", "":
		return nander.OobNone, nil
	case "include":
		return nander.OobIncluded, nil
	case "only":
		return nander.OobOnly, nil
	default:
		return 0, fmt.Errorf("unknown OOB mode %q", *a.oob)
	}
}

func (a *accessFlags) badBlocks() nander.BadBlockStrategy {
	if *a.skip {
		return nander.BadBlockSkip
	}
	return nander.BadBlockFail
}

func (a *accessFlags) ecc() nander.EccPolicy {
	return nander.EccPolicy{Enabled: !*a.noEcc, IgnoreErrors: *a.ignore}
}

func runRead(args []string) error {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	c := addCommonFlags(fs)
	a := addAccessFlags(fs)
	out := fs.String("out", "", "Output file (required)")
	length := fs.Uint("length", 0, "Bytes to read (0 = to end of chip)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("read: --out is required")
	}
	oob, err := a.oobMode()
	if err != nil {
		return err
	}

	ctx := context.Background()
	dev, err := openDevice(ctx, c)
	if err != nil {
		return err
	}
	defer dev.Close()

	n := uint32(*length)
	if n == 0 {
		n = dev.Layout().Capacity - uint32(*a.addr)
	}
	req := nander.ReadRequest{
		Address:   nander.Address(*a.addr),
		Length:    n,
		Oob:       oob,
		Ecc:       a.ecc(),
		BadBlocks: a.badBlocks(),
		Retries:   *c.retries,
	}
	data, err := dev.Read(ctx, req, progressBar("reading"))
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("read %d bytes to %s\n", len(data), *out)
	return nil
}

func runWrite(args []string) error {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	c := addCommonFlags(fs)
	a := addAccessFlags(fs)
	in := fs.String("in", "", "Input file (required)")
	verify := fs.Bool("verify", false, "Read back and compare after writing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("write: --in is required")
	}
	oob, err := a.oobMode()
	if err != nil {
		return err
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

	req := nander.WriteRequest{
		Address:   nander.Address(*a.addr),
		Data:      data,
		Verify:    *verify,
		Oob:       oob,
		Ecc:       a.ecc(),
		BadBlocks: a.badBlocks(),
		Retries:   *c.retries,
	}
	if err := dev.Write(ctx, req, progressBar("writing")); err != nil {
		return err
	}
	fmt.Printf("wrote %d bytes from %s\n", len(data), *in)
	return nil
}

func runErase(args []string) error {
	fs := flag.NewFlagSet("erase", flag.ExitOnError)
	c := addCommonFlags(fs)
	addr := fs.Uint("addr", 0, "Start address (block-aligned)")
	length := fs.Uint("length", 0, "Bytes to erase (0 = whole chip)")
	skip := fs.Bool("k", false, "Skip factory bad blocks instead of failing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	dev, err := openDevice(ctx, c)
	if err != nil {
		return err
	}
	defer dev.Close()

	n := uint32(*length)
	if n == 0 {
		n = dev.Layout().Capacity - uint32(*addr)
	}
	strategy := nander.BadBlockFail
	if *skip {
		strategy = nander.BadBlockSkip
	}
	req := nander.EraseRequest{
		Address:   nander.Address(*addr),
		Length:    n,
		BadBlocks: strategy,
		Retries:   *c.retries,
	}
	if err := dev.Erase(ctx, req, progressBar("erasing")); err != nil {
		return err
	}
	fmt.Printf("erased %s at 0x%X\n", sizeString(n), *addr)
	return nil
}

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	c := addCommonFlags(fs)
	a := addAccessFlags(fs)
	in := fs.String("in", "", "Reference file (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("verify: --in is required")
	}
	oob, err := a.oobMode()
	if err != nil {
		return err
	}
	want, err := os.ReadFile(*in)
	if err != nil {
		return err
	}

	ctx := context.Background()
	dev, err := openDevice(ctx, c)
	if err != nil {
		return err
	}
	defer dev.Close()

	req := nander.ReadRequest{
		Address:   nander.Address(*a.addr),
		Length:    uint32(len(want)),
		Oob:       oob,
		Ecc:       a.ecc(),
		BadBlocks: a.badBlocks(),
		Retries:   *c.retries,
	}
	got, err := dev.Read(ctx, req, progressBar("verifying"))
	if err != nil {
		return err
	}
	for i := range want {
		if got[i] != want[i] {
			return &nander.VerifyError{
				Address:  nander.Address(*a.addr) + nander.Address(i),
				Expected: want[i],
				Actual:   got[i],
			}
		}
	}
	fmt.Printf("verified %d bytes against %s\n", len(want), *in)
	return nil
}
