// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk
//
// OPNpool - Pentair pool controller RS-485 bridge
//
// A bridge between SunTouch/EasyTouch pool controllers and a smart-home
// integration layer, with commands for live monitoring, trace replay and an
// interactive dashboard.

package main

import (
	"fmt"
	"os"

	"github.com/cvonk/OPNpool-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
