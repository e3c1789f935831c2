// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package poolstate

import (
	"fmt"
	"strings"

	"github.com/cvonk/OPNpool-sub000/pkg/network"
)

// Update applies a decoded message to the state. Message kinds that carry no
// observable state pass through without effect. The same starting state and
// message sequence always produce an identical snapshot.
func Update(s *State, msg network.Message) error {
	toPump := msg.Dst.IsPump()
	var pumpID int
	if toPump {
		pumpID = int(msg.Dst.PumpID())
	} else {
		pumpID = int(msg.Src.PumpID())
	}

	switch p := msg.Payload.(type) {
	case *network.CtrlStateBcast:
		updateStateBcast(s, p)
	case *network.CtrlHeatResp:
		updateHeatResp(s, p)
	case *network.CtrlHeatSet:
		updateHeatSet(s, p)
	case *network.CtrlTime:
		s.System.TOD = TOD{
			Date: Date{Valid: true, Day: p.Date.Day, Month: p.Date.Month, Year: p.Date.Year},
			Time: Time{Valid: true, Hour: p.Time.Hour, Minute: p.Time.Minute},
		}
	case *network.CtrlCircuitSet:
		return updateCircuitSet(s, p)
	case *network.CtrlSchedResp:
		updateSchedResp(s, p)
	case *network.CtrlVersionResp:
		s.System.Version = Version{Valid: true, Major: p.Major, Minor: p.Minor}
	case *network.PumpRunMode:
		if pumpID >= len(s.Pumps) {
			return fmt.Errorf("poolstate: pump id %d out of range", pumpID)
		}
		s.Pumps[pumpID].Mode = Uint8{Valid: true, Value: p.Raw}
	case *network.PumpRunning:
		return updatePumpRunning(s, p, pumpID)
	case *network.PumpStatusResp:
		return updatePumpStatus(s, p, pumpID)
	case *network.ChlorModelResp:
		updateChlorModel(s, p)
	case *network.ChlorLevelSet:
		s.Chlor.Level = Uint8{Valid: true, Value: p.Level}
	case *network.ChlorLevelResp:
		s.Chlor.Salt = Uint16{Valid: true, Value: uint16(p.Salt) * 50}
		s.Chlor.Status = ChlorStatusVal{Valid: true, Value: chlorStatusFromError(p.Error)}
	}
	// everything else (acks, requests, unidentified responses) leaves the
	// state untouched
	return nil
}

func updateStateBcast(s *State, p *network.CtrlStateBcast) {
	// temps first, then thermostats: the thermostat update reads the
	// circuit state from the previous broadcast, matching the original
	// controller behavior on shared-body systems
	s.Temps[TempAir] = Uint8{Valid: true, Value: p.SolarTemp1}
	s.Temps[TempWater] = Uint8{Valid: true, Value: p.PoolTemp}
	s.AirSensor = Uint8{Valid: true, Value: p.AirTemp}

	updateThermos(s, p)

	s.System.Modes = Modes{Valid: true, Bits: p.Modes}
	s.System.TOD.Time = Time{Valid: true, Hour: p.Time.Hour, Minute: p.Time.Minute}

	active := p.Active.Uint16()
	for i := range s.Circuits {
		s.Circuits[i].Active = Bool{Valid: true, Value: active&(1<<i) != 0}
	}
	// a shared body can only run one way: when both SPA and POOL bits are
	// set, SPA wins
	if s.Circuits[network.CircuitSpa].Active.Value {
		s.Circuits[network.CircuitPool].Active.Value = false
	}
	for i := range s.Circuits {
		s.Circuits[i].Delay = Bool{Valid: true, Value: p.Delay&(1<<i) != 0}
	}
}

func updateThermos(s *State, p *network.CtrlStateBcast) {
	pool := &s.Thermos[ThermoPool]
	spa := &s.Thermos[ThermoSpa]

	// the water sensors only read meaningfully while the body's circuit
	// is circulating
	if c := s.Circuits[network.CircuitPool].Active; c.Valid && c.Value {
		pool.Temp = Uint8{Valid: true, Value: p.PoolTemp}
	}
	if c := s.Circuits[network.CircuitSpa].Active; c.Valid && c.Value {
		spa.Temp = Uint8{Valid: true, Value: p.SpaTemp}
	}
	pool.Heating = Bool{Valid: true, Value: p.PoolHeating()}
	pool.HeatSrc = HeatSrc{Valid: true, Value: p.PoolHeatSrc()}
	spa.Heating = Bool{Valid: true, Value: p.SpaHeating()}
	spa.HeatSrc = HeatSrc{Valid: true, Value: p.SpaHeatSrc()}
}

func updateHeatResp(s *State, p *network.CtrlHeatResp) {
	pool := &s.Thermos[ThermoPool]
	spa := &s.Thermos[ThermoSpa]

	pool.Temp = Uint8{Valid: true, Value: p.PoolTemp}
	pool.SetPoint = Uint8{Valid: true, Value: p.PoolSetPoint}
	pool.HeatSrc = HeatSrc{Valid: true, Value: p.PoolHeatSrc()}
	spa.Temp = Uint8{Valid: true, Value: p.SpaTemp}
	spa.SetPoint = Uint8{Valid: true, Value: p.SpaSetPoint}
	spa.HeatSrc = HeatSrc{Valid: true, Value: p.SpaHeatSrc()}
}

func updateHeatSet(s *State, p *network.CtrlHeatSet) {
	pool := &s.Thermos[ThermoPool]
	spa := &s.Thermos[ThermoSpa]

	pool.SetPoint = Uint8{Valid: true, Value: p.PoolSetPoint}
	pool.HeatSrc = HeatSrc{Valid: true, Value: p.PoolHeatSrc()}
	spa.SetPoint = Uint8{Valid: true, Value: p.SpaSetPoint}
	spa.HeatSrc = HeatSrc{Valid: true, Value: p.SpaHeatSrc()}
}

func updateCircuitSet(s *State, p *network.CtrlCircuitSet) error {
	if p.CircuitPlus1 == 0 {
		return fmt.Errorf("poolstate: circuit set with circuit 0")
	}
	idx := int(p.CircuitPlus1) - 1
	if idx >= len(s.Circuits) {
		return fmt.Errorf("poolstate: circuit index %d out of range", idx)
	}
	s.Circuits[idx].Active = Bool{Valid: true, Value: p.On()}
	return nil
}

func updateSchedResp(s *State, p *network.CtrlSchedResp) {
	for _, sub := range p.Scheds {
		if sub.CircuitPlus1 == 0 {
			// unused slot
			continue
		}
		idx := int(sub.CircuitPlus1) - 1
		if idx >= len(s.Scheds) {
			continue
		}
		s.Scheds[idx] = Sched{
			Valid:  true,
			Active: true,
			Start:  sub.Start.Uint16(),
			Stop:   sub.Stop.Uint16(),
		}
	}
}

func updatePumpRunning(s *State, p *network.PumpRunning, pumpID int) error {
	if pumpID >= len(s.Pumps) {
		return fmt.Errorf("poolstate: pump id %d out of range", pumpID)
	}
	if !p.On() && !p.Off() {
		return fmt.Errorf("poolstate: unrecognized pump running value 0x%02X", p.Raw)
	}
	s.Pumps[pumpID].Running = Bool{Valid: true, Value: p.On()}
	return nil
}

func updatePumpStatus(s *State, p *network.PumpStatusResp, pumpID int) error {
	if pumpID >= len(s.Pumps) {
		return fmt.Errorf("poolstate: pump id %d out of range", pumpID)
	}
	running := network.PumpRunning{Raw: p.Running}
	if !running.On() && !running.Off() {
		return fmt.Errorf("poolstate: unrecognized pump running value 0x%02X", p.Running)
	}

	s.Pumps[pumpID] = Pump{
		Time:    Time{Valid: true, Hour: p.Clock.Hour, Minute: p.Clock.Minute},
		Mode:    Uint8{Valid: true, Value: p.Mode},
		Running: Bool{Valid: true, Value: running.On()},
		State:   Uint8{Valid: true, Value: p.State},
		Power:   Uint16{Valid: true, Value: p.Power.Uint16()},
		Flow:    Uint16{Valid: true, Value: uint16(p.Flow)},
		Speed:   Uint16{Valid: true, Value: p.Speed.Uint16()},
		Level:   Uint16{Valid: true, Value: uint16(p.Level)},
		Error:   Uint8{Valid: true, Value: p.Error},
		Timer:   Time{Valid: true, Hour: p.Remaining.Hour, Minute: p.Remaining.Minute},
	}
	return nil
}

func updateChlorModel(s *State, p *network.ChlorModelResp) {
	s.Chlor.Salt = Uint16{Valid: true, Value: uint16(p.Salt) * 50}
	name := strings.TrimRight(string(p.Name[:]), "\x00")
	s.Chlor.Name = ChlorName{Valid: true, Value: name}
}

// chlorStatusFromError returns the first matching status flag, or Other.
func chlorStatusFromError(errBits uint8) ChlorStatus {
	switch {
	case errBits&0x01 != 0:
		return ChlorLowFlow
	case errBits&0x02 != 0:
		return ChlorLowSalt
	case errBits&0x04 != 0:
		return ChlorHighSalt
	case errBits&0x10 != 0:
		return ChlorCleanCell
	case errBits&0x40 != 0:
		return ChlorCold
	case errBits&0x80 != 0:
		return ChlorOK
	}
	return ChlorOther
}
