// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/cvonk/OPNpool-sub000/pkg/capture"
	"github.com/cvonk/OPNpool-sub000/pkg/datalink"
	"github.com/cvonk/OPNpool-sub000/pkg/network"
)

var (
	capturePath   string
	statsInterval int
	showIgnored   bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Decode and display live bus traffic",
	Long: `Continuously frame and decode A5 and IC packets as they arrive on the bus.

Each decoded message is shown with its timestamp, addressing and payload
fields. Decode statistics are printed periodically; --capture writes every
valid frame to a trace file for later replay.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().StringVar(&capturePath, "capture", "", "Write received frames to a trace file")
	monitorCmd.Flags().IntVar(&statsInterval, "stats", 60, "Statistics interval in seconds (0 to disable)")
	monitorCmd.Flags().BoolVar(&showIgnored, "show-ignored", false, "Also display ignored traffic")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	trx, desc, err := OpenTransceiver(cfg)
	if err != nil {
		return err
	}
	defer trx.Close()

	var tracer *capture.Writer
	if capturePath != "" {
		f, err := os.Create(capturePath)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		defer f.Close()
		tracer = capture.NewWriter(f)
	}

	fmt.Printf("OPNpool - Bus Monitor\n")
	fmt.Printf("%s\n", desc)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	decoder := datalink.NewDecoder(trx)
	var lastStats time.Time

	for {
		select {
		case <-interrupt:
			printStats(decoder.Stats())
			return nil
		default:
		}

		pkt, err := decoder.Receive()
		if err != nil {
			fmt.Printf("%s  !! %v\n", time.Now().Format("15:04:05.000"), err)
			continue
		}
		if pkt != nil {
			msg, _, err := network.Decode(pkt)
			switch {
			case err != nil:
				fmt.Printf("%s  ?? %s (%v)\n", time.Now().Format("15:04:05.000"), pkt, err)
			case msg.Typ == network.MsgIgnore && !showIgnored:
			default:
				fmt.Printf("%s  %s\n", time.Now().Format("15:04:05.000"), msg)
			}
			if tracer != nil {
				if err := tracer.Write(capture.FromPacket(pkt)); err != nil {
					return fmt.Errorf("trace write failed: %w", err)
				}
			}
		}

		if statsInterval > 0 && time.Since(lastStats) > time.Duration(statsInterval)*time.Second {
			if !lastStats.IsZero() {
				printStats(decoder.Stats())
			}
			lastStats = time.Now()
		}
	}
}

func printStats(s datalink.Stats) {
	fmt.Printf("--- frames: %d total, %d valid, %d checksum errors, %d bad lengths, %d underruns\n",
		s.TotalFrames, s.ValidFrames, s.ChecksumErrors, s.BadLengths, s.Underruns)
}
