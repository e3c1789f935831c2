// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cvonk/OPNpool-sub000/pkg/capture"
	"github.com/cvonk/OPNpool-sub000/pkg/datalink"
	"github.com/cvonk/OPNpool-sub000/pkg/network"
	"github.com/cvonk/OPNpool-sub000/pkg/poolstate"
)

var replayState bool

var replayCmd = &cobra.Command{
	Use:   "replay <trace-file>",
	Short: "Replay a captured bus trace through the decoder",
	Long: `Read a trace file written by 'monitor --capture' and feed every frame back
through the framer and message decoder, printing the decoded messages.

With --state, the frames are additionally applied to a pool state model and
the resulting snapshot is printed at the end.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayState, "state", false, "Apply frames to a state model and print the final snapshot")
	rootCmd.AddCommand(replayCmd)
}

// traceFeed replays trace frames as a byte stream for the decoder.
type traceFeed struct {
	data []byte
	pos  int
}

func (f *traceFeed) ReadBytes(p []byte) (int, error) {
	n := copy(p, f.data[f.pos:])
	f.pos += n
	return n, nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	reader := capture.NewReader(f)
	feed := &traceFeed{}
	var state poolstate.State
	frames, decoded := 0, 0

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("trace read failed: %w", err)
		}
		frames++
		feed.data = append(feed.data, rec.Frame...)

		decoder := datalink.NewDecoder(feed)
		for {
			pkt, err := decoder.Receive()
			if err != nil {
				fmt.Printf("%s  !! %v\n", rec.Time().Format("15:04:05.000"), err)
				continue
			}
			if pkt == nil {
				break
			}
			decoded++
			msg, _, err := network.Decode(pkt)
			if err != nil {
				fmt.Printf("%s  ?? %s (%v)\n", rec.Time().Format("15:04:05.000"), pkt, err)
				continue
			}
			fmt.Printf("%s  %s\n", rec.Time().Format("15:04:05.000"), msg)
			if replayState {
				if err := poolstate.Update(&state, msg); err != nil {
					fmt.Printf("%s  !! %v\n", rec.Time().Format("15:04:05.000"), err)
				}
			}
		}
		feed.data = feed.data[:0]
		feed.pos = 0
	}

	fmt.Printf("\n%d frames, %d decoded\n", frames, decoded)
	if replayState {
		fmt.Printf("final state: %s\n", state.String())
	}
	return nil
}
