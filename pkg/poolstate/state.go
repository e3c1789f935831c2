// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

// Package poolstate maintains the canonical software model of the pool:
// temperatures, circuits, thermostats, schedules, pump telemetry and
// chlorinator status. The state is rebuilt from bus traffic at every start;
// nothing is persisted. Every field carries a validity flag, and a value is
// meaningful only while its flag is set.
package poolstate

import (
	"fmt"
	"strings"

	"github.com/cvonk/OPNpool-sub000/pkg/datalink"
	"github.com/cvonk/OPNpool-sub000/pkg/network"
)

// Bool is a boolean with a validity flag.
type Bool struct {
	Valid bool
	Value bool
}

// Uint8 is an 8-bit value with a validity flag.
type Uint8 struct {
	Valid bool
	Value uint8
}

// Uint16 is a 16-bit value with a validity flag.
type Uint16 struct {
	Valid bool
	Value uint16
}

// Time is an hour:minute pair with a validity flag.
type Time struct {
	Valid  bool
	Hour   uint8
	Minute uint8
}

// Date is a calendar date with a validity flag; Year is offset from 2000.
type Date struct {
	Valid bool
	Day   uint8
	Month uint8
	Year  uint8
}

// TOD combines the controller's date and time of day.
type TOD struct {
	Date Date
	Time Time
}

// Modes holds the controller mode bits.
type Modes struct {
	Valid bool
	Bits  uint8
}

// Service reports service mode.
func (m Modes) Service() bool { return m.Bits&network.ModeService != 0 }

// TempIncrease reports temperature-increase mode.
func (m Modes) TempIncrease() bool { return m.Bits&network.ModeTempIncrease != 0 }

// FreezeProtection reports freeze-protection mode.
func (m Modes) FreezeProtection() bool { return m.Bits&network.ModeFreezeProtection != 0 }

// Timeout reports timeout mode.
func (m Modes) Timeout() bool { return m.Bits&network.ModeTimeout != 0 }

// Version is the controller firmware version.
type Version struct {
	Valid bool
	Major uint8
	Minor uint8
}

// ControllerAddr is the controller address learned from bus traffic.
type ControllerAddr struct {
	Valid bool
	Value datalink.Address
}

// System groups the controller-level state.
type System struct {
	Addr    ControllerAddr
	TOD     TOD
	Modes   Modes
	Version Version
}

// HeatSrc is a heat source selection with a validity flag.
type HeatSrc struct {
	Valid bool
	Value network.HeatSrc
}

// Thermostat indices into State.Thermos.
const (
	ThermoPool = 0
	ThermoSpa  = 1
	NumThermos = 2
)

// Thermostat is the per-body thermostat state.
type Thermostat struct {
	Temp     Uint8 // current temperature [°F]
	SetPoint Uint8 // target temperature [°F]
	HeatSrc  HeatSrc
	Heating  Bool
}

// Circuit is the on/off and delay state of one circuit.
type Circuit struct {
	Active Bool
	Delay  Bool
}

// Sched is the schedule of one circuit, in minutes since midnight.
type Sched struct {
	Valid  bool
	Active bool
	Start  uint16
	Stop   uint16
}

// Pump is the telemetry of one variable-speed pump.
type Pump struct {
	Time    Time
	Mode    Uint8 // raw run mode; see network.RunModeString
	Running Bool
	State   Uint8 // raw pump state; see network.PumpState
	Power   Uint16 // [W]
	Flow    Uint16 // [gal/min]
	Speed   Uint16 // [rpm]
	Level   Uint16 // [%]
	Error   Uint8
	Timer   Time // remaining timer
}

// ChlorStatus classifies the chlorinator error flags.
type ChlorStatus uint8

// Chlorinator statuses, first matching flag wins; see update.go.
const (
	ChlorOther ChlorStatus = iota
	ChlorOK
	ChlorLowFlow
	ChlorLowSalt
	ChlorHighSalt
	ChlorCleanCell
	ChlorCold
)

func (s ChlorStatus) String() string {
	switch s {
	case ChlorOK:
		return "OK"
	case ChlorLowFlow:
		return "low flow"
	case ChlorLowSalt:
		return "low salt"
	case ChlorHighSalt:
		return "high salt"
	case ChlorCleanCell:
		return "clean cell"
	case ChlorCold:
		return "cold"
	}
	return "other"
}

// ChlorStatusVal is a chlorinator status with a validity flag.
type ChlorStatusVal struct {
	Valid bool
	Value ChlorStatus
}

// ChlorName is the chlorinator cell name with a validity flag.
type ChlorName struct {
	Valid bool
	Value string
}

// Chlor is the salt chlorine generator state.
type Chlor struct {
	Name   ChlorName
	Level  Uint8  // [%]
	Salt   Uint16 // [ppm], reported value times 50
	Status ChlorStatusVal
}

// Temperature indices into State.Temps.
const (
	TempAir   = 0
	TempWater = 1
	NumTemps  = 2
)

// State is the complete pool snapshot. All fields are comparable values, so
// two snapshots can be compared with == for change detection. AirSensor
// carries the broadcast's dedicated air-temperature byte; Temps[TempAir] is
// populated from the first solar slot, which mirrors ambient air on
// single-sensor systems. Consumers pick whichever their hardware reports.
type State struct {
	System    System
	Chlor     Chlor
	Pumps     [datalink.NumPumps]Pump
	Circuits  [network.NumCircuits]Circuit
	Thermos   [NumThermos]Thermostat
	Temps     [NumTemps]Uint8
	AirSensor Uint8
	Scheds    [network.NumCircuits]Sched
}

// String renders a short human-readable summary of the valid parts of the
// snapshot.
func (s *State) String() string {
	var sb strings.Builder
	if s.System.TOD.Time.Valid {
		fmt.Fprintf(&sb, "time=%02d:%02d ", s.System.TOD.Time.Hour, s.System.TOD.Time.Minute)
	}
	if s.Temps[TempWater].Valid {
		fmt.Fprintf(&sb, "water=%d°F ", s.Temps[TempWater].Value)
	}
	if s.Temps[TempAir].Valid {
		fmt.Fprintf(&sb, "air=%d°F ", s.Temps[TempAir].Value)
	}
	var on []string
	for i := range s.Circuits {
		if s.Circuits[i].Active.Valid && s.Circuits[i].Active.Value {
			on = append(on, network.Circuit(i).String())
		}
	}
	if len(on) > 0 {
		fmt.Fprintf(&sb, "active=%s ", strings.Join(on, "+"))
	}
	if s.Chlor.Salt.Valid {
		fmt.Fprintf(&sb, "salt=%dppm ", s.Chlor.Salt.Value)
	}
	return strings.TrimSpace(sb.String())
}
