// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package network

import (
	"fmt"
	"strings"
)

// String renders a message for log and monitor output. Kinds with interesting
// payloads get a field-level rendering; the rest show kind and addressing.
func (m Message) String() string {
	head := fmt.Sprintf("%s %s->%s", m.Typ, m.Src, m.Dst)

	switch p := m.Payload.(type) {
	case *CtrlStateBcast:
		var circuits []string
		active := p.Active.Uint16()
		for c := Circuit(0); c < NumCircuits; c++ {
			if active&(1<<c) != 0 {
				circuits = append(circuits, c.String())
			}
		}
		on := "-"
		if len(circuits) > 0 {
			on = strings.Join(circuits, "+")
		}
		return fmt.Sprintf("%s time=%02d:%02d active=%s pool=%d°F spa=%d°F air=%d°F",
			head, p.Time.Hour, p.Time.Minute, on, p.PoolTemp, p.SpaTemp, p.AirTemp)
	case *CtrlHeatResp:
		return fmt.Sprintf("%s pool=%d°F/%d°F(%s) spa=%d°F/%d°F(%s)",
			head, p.PoolTemp, p.PoolSetPoint, p.PoolHeatSrc(),
			p.SpaTemp, p.SpaSetPoint, p.SpaHeatSrc())
	case *CtrlHeatSet:
		return fmt.Sprintf("%s pool=%d°F(%s) spa=%d°F(%s)",
			head, p.PoolSetPoint, p.PoolHeatSrc(), p.SpaSetPoint, p.SpaHeatSrc())
	case *CtrlCircuitSet:
		state := "off"
		if p.On() {
			state = "on"
		}
		if p.CircuitPlus1 >= 1 && p.CircuitPlus1 <= NumCircuits {
			return fmt.Sprintf("%s %s=%s", head, Circuit(p.CircuitPlus1-1), state)
		}
		return fmt.Sprintf("%s circuit#%d=%s", head, p.CircuitPlus1, state)
	case *CtrlTime:
		return fmt.Sprintf("%s %02d:%02d %02d-%02d-20%02d",
			head, p.Time.Hour, p.Time.Minute, p.Date.Day, p.Date.Month, p.Date.Year)
	case *CtrlVersionResp:
		return fmt.Sprintf("%s v%d.%03d", head, p.Major, p.Minor)
	case *CtrlSchedResp:
		var scheds []string
		for _, s := range p.Scheds {
			if s.CircuitPlus1 == 0 {
				continue
			}
			start, stop := s.Start.Uint16(), s.Stop.Uint16()
			scheds = append(scheds, fmt.Sprintf("%s %02d:%02d-%02d:%02d",
				Circuit(s.CircuitPlus1-1), start/60, start%60, stop/60, stop%60))
		}
		if len(scheds) == 0 {
			return head + " (no schedules)"
		}
		return head + " " + strings.Join(scheds, ", ")
	case *PumpStatusResp:
		running := PumpRunning{Raw: p.Running}
		state := "?"
		switch {
		case running.On():
			state = "on"
		case running.Off():
			state = "off"
		}
		return fmt.Sprintf("%s %s mode=%s %dW %drpm %dgpm",
			head, state, RunModeString(p.Mode), p.Power.Uint16(), p.Speed.Uint16(), p.Flow)
	case *PumpRegSet:
		op := "read"
		if p.Operation == PumpRegOpWrite {
			op = "write"
		}
		return fmt.Sprintf("%s %s reg=0x%02X val=%d", head, op, p.Address, p.Value.Uint16())
	case *ChlorModelResp:
		name := strings.TrimRight(string(p.Name[:]), "\x00")
		return fmt.Sprintf("%s %q salt=%dppm", head, name, uint16(p.Salt)*50)
	case *ChlorLevelSet:
		return fmt.Sprintf("%s level=%d%%", head, p.Level)
	case *ChlorLevelResp:
		return fmt.Sprintf("%s salt=%dppm error=0x%02X", head, uint16(p.Salt)*50, p.Error)
	}
	return head
}
