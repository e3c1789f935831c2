// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cvonk/OPNpool-sub000/pkg/bus"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run the full pool bridge",
	Long: `Run the bus task against the pool controller: maintain the state mirror,
answer snapshot reads, and forward commands during transmit opportunities.

Decoded messages and state changes are logged; use 'dashboard' for an
interactive view.`,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	trx, desc, err := OpenTransceiver(cfg)
	if err != nil {
		return err
	}
	defer trx.Close()

	fmt.Printf("OPNpool - Bridge\n%s\n\n", desc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	task := bus.New(cfg, trx)
	go task.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			stats := task.DecoderStats()
			log.Printf("bridge: shutting down (%d frames, %d valid)", stats.TotalFrames, stats.ValidFrames)
			return nil
		case msg := <-task.Messages():
			log.Printf("bus: %s", msg)
		case s := <-task.StateUpdates():
			log.Printf("state: %s", s.String())
		}
	}
}
