// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	portName      string
	baudRate      int
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool
	configPath    string
)

var rootCmd = &cobra.Command{
	Use:   "opnpool",
	Short: "Pentair pool controller RS-485 bridge",
	Long: `OPNpool - an interface bridge for Pentair SunTouch/EasyTouch pool controllers.

Snoops and injects frames on the half-duplex RS-485 bus shared by the
controller, variable-speed pumps and the salt chlorine generator. Provides
commands for live monitoring, trace replay, and running the full bridge.`,
	Version: "1.0.0",
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 9600, "Baud rate")
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "Serial-over-WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "WebSocket basic-auth username")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
