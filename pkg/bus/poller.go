// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package bus

import (
	"context"
	"log"
	"time"

	"github.com/cvonk/OPNpool-sub000/pkg/network"
)

// pollLoop periodically requests version, heat and schedule snapshots so the
// state mirror stays fresh even when nothing changes on the bus. Requests
// are skipped while the controller address is still unknown.
func (t *Task) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(t.cfg.PollIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !t.tracker.Get().System.Addr.Valid {
				log.Print("poller: controller address still unknown, skipping")
				continue
			}
			for _, typ := range []network.MsgTyp{
				network.MsgCtrlVersionReq,
				network.MsgCtrlHeatReq,
				network.MsgCtrlSchedReq,
			} {
				if err := t.SubmitCommand(network.Message{Typ: typ}); err != nil {
					log.Printf("poller: %s: %v", typ, err)
				}
			}
		}
	}
}
