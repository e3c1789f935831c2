// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package network

import (
	"encoding/binary"
	"fmt"

	"github.com/cvonk/OPNpool-sub000/pkg/datalink"
)

// MsgTyp identifies a decoded application message.
type MsgTyp uint8

// Message kinds, one per row of the codec table (plus MsgIgnore for traffic
// that is deliberately not decoded).
const (
	MsgIgnore MsgTyp = iota
	MsgPumpRegSet
	MsgPumpRegResp
	MsgPumpRegVFSet
	MsgPumpRegVFResp
	MsgPumpRegVSSet
	MsgPumpRegVSResp
	MsgPumpRemoteCtrlSet
	MsgPumpRemoteCtrlResp
	MsgPumpRunModeSet
	MsgPumpRunModeResp
	MsgPumpRunSet
	MsgPumpRunResp
	MsgPumpStatusReq
	MsgPumpStatusResp
	MsgCtrlSetAck
	MsgCtrlCircuitSet
	MsgCtrlSchedReq
	MsgCtrlSchedResp
	MsgCtrlStateBcast
	MsgCtrlTimeReq
	MsgCtrlTimeResp
	MsgCtrlTimeSet
	MsgCtrlHeatReq
	MsgCtrlHeatResp
	MsgCtrlHeatSet
	MsgCtrlLayoutReq
	MsgCtrlLayoutResp
	MsgCtrlLayoutSet
	MsgCtrlValveReq
	MsgCtrlValveResp
	MsgCtrlVersionReq
	MsgCtrlVersionResp
	MsgCtrlSolarPumpReq
	MsgCtrlSolarPumpResp
	MsgCtrlDelayReq
	MsgCtrlDelayResp
	MsgCtrlHeatSetPtReq
	MsgCtrlHeatSetPtResp
	MsgCtrlCircNamesReq
	MsgCtrlCircNamesResp
	MsgCtrlSchedsReq
	MsgCtrlSchedsResp
	MsgCtrlChemReq
	MsgChlorControlReq
	MsgChlorControlResp
	MsgChlorModelReq
	MsgChlorModelResp
	MsgChlorLevelSet
	MsgChlorLevelSet10
	MsgChlorLevelResp
	MsgChlorIChlorPing
	MsgChlorIChlorBcast
)

// msgInfo is one row of the codec table.
type msgInfo struct {
	typ     MsgTyp
	proto   datalink.Proto
	wireTyp uint8
	size    int         // payload byte count; filled from the factory at init
	toPump  bool        // disambiguates pump set/req from resp
	payload func() any  // nil for empty-payload messages
}

// msgTable is the single source of truth mapping message kinds to their wire
// representation. MsgIgnore has no row; it is never on the wire.
var msgTable = []msgInfo{
	{typ: MsgPumpRegSet, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypReg, toPump: true, payload: func() any { return new(PumpRegSet) }},
	{typ: MsgPumpRegResp, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypReg, payload: func() any { return new(PumpRegResp) }},
	{typ: MsgPumpRegVFSet, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypRegVF, toPump: true, payload: func() any { return new(PumpRegSet) }},
	{typ: MsgPumpRegVFResp, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypRegVF, payload: func() any { return new(PumpRegResp) }},
	{typ: MsgPumpRegVSSet, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypRegVS, toPump: true, payload: func() any { return new(PumpRegSet) }},
	{typ: MsgPumpRegVSResp, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypRegVS, payload: func() any { return new(PumpRegResp) }},
	{typ: MsgPumpRemoteCtrlSet, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypRemoteCtrl, toPump: true, payload: func() any { return new(PumpCtrl) }},
	{typ: MsgPumpRemoteCtrlResp, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypRemoteCtrl, payload: func() any { return new(PumpCtrl) }},
	{typ: MsgPumpRunModeSet, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypRunMode, toPump: true, payload: func() any { return new(PumpRunMode) }},
	{typ: MsgPumpRunModeResp, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypRunMode, payload: func() any { return new(PumpRunMode) }},
	{typ: MsgPumpRunSet, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypRun, toPump: true, payload: func() any { return new(PumpRunning) }},
	{typ: MsgPumpRunResp, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypRun, payload: func() any { return new(PumpRunning) }},
	{typ: MsgPumpStatusReq, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypStatus, toPump: true},
	{typ: MsgPumpStatusResp, proto: datalink.ProtoA5Pump, wireTyp: datalink.PumpTypStatus, payload: func() any { return new(PumpStatusResp) }},
	{typ: MsgCtrlSetAck, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypSetAck, payload: func() any { return new(CtrlSetAck) }},
	{typ: MsgCtrlCircuitSet, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypCircuitSet, payload: func() any { return new(CtrlCircuitSet) }},
	{typ: MsgCtrlSchedReq, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypSchedReq},
	{typ: MsgCtrlSchedResp, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypSchedResp, payload: func() any { return new(CtrlSchedResp) }},
	{typ: MsgCtrlStateBcast, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypStateBcast, payload: func() any { return new(CtrlStateBcast) }},
	{typ: MsgCtrlTimeReq, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypTimeReq},
	{typ: MsgCtrlTimeResp, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypTimeResp, payload: func() any { return new(CtrlTime) }},
	{typ: MsgCtrlTimeSet, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypTimeSet, payload: func() any { return new(CtrlTime) }},
	{typ: MsgCtrlHeatReq, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypHeatReq},
	{typ: MsgCtrlHeatResp, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypHeatResp, payload: func() any { return new(CtrlHeatResp) }},
	{typ: MsgCtrlHeatSet, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypHeatSet, payload: func() any { return new(CtrlHeatSet) }},
	{typ: MsgCtrlLayoutReq, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypLayoutReq},
	{typ: MsgCtrlLayoutResp, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypLayoutResp, payload: func() any { return new(CtrlLayout) }},
	{typ: MsgCtrlLayoutSet, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypLayoutSet, payload: func() any { return new(CtrlLayout) }},
	{typ: MsgCtrlValveReq, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypValveReq},
	{typ: MsgCtrlValveResp, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypValveResp, payload: func() any { return new(CtrlValveResp) }},
	{typ: MsgCtrlVersionReq, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypVersionReq},
	{typ: MsgCtrlVersionResp, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypVersionResp, payload: func() any { return new(CtrlVersionResp) }},
	{typ: MsgCtrlSolarPumpReq, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypSolarPumpReq},
	{typ: MsgCtrlSolarPumpResp, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypSolarPumpResp, payload: func() any { return new(CtrlSolarPumpResp) }},
	{typ: MsgCtrlDelayReq, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypDelayReq},
	{typ: MsgCtrlDelayResp, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypDelayResp, payload: func() any { return new(CtrlDelayResp) }},
	{typ: MsgCtrlHeatSetPtReq, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypHeatSetPtReq},
	{typ: MsgCtrlHeatSetPtResp, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypHeatSetPtResp, payload: func() any { return new(CtrlHeatSetPtResp) }},
	{typ: MsgCtrlCircNamesReq, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypCircNamesReq, payload: func() any { return new(CtrlCircNamesReq) }},
	{typ: MsgCtrlCircNamesResp, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypCircNamesResp, payload: func() any { return new(CtrlCircNamesResp) }},
	{typ: MsgCtrlSchedsReq, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypSchedsReq, payload: func() any { return new(CtrlSchedsReq) }},
	{typ: MsgCtrlSchedsResp, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypSchedsResp, payload: func() any { return new(CtrlSchedsResp) }},
	{typ: MsgCtrlChemReq, proto: datalink.ProtoA5Ctrl, wireTyp: datalink.CtrlTypChemReq, payload: func() any { return new(CtrlChemReq) }},
	{typ: MsgChlorControlReq, proto: datalink.ProtoIC, wireTyp: datalink.ChlorTypControlReq, payload: func() any { return new(ChlorControlReq) }},
	{typ: MsgChlorControlResp, proto: datalink.ProtoIC, wireTyp: datalink.ChlorTypControlResp, payload: func() any { return new(ChlorControlResp) }},
	{typ: MsgChlorModelReq, proto: datalink.ProtoIC, wireTyp: datalink.ChlorTypModelReq, payload: func() any { return new(ChlorModelReq) }},
	{typ: MsgChlorModelResp, proto: datalink.ProtoIC, wireTyp: datalink.ChlorTypModelResp, payload: func() any { return new(ChlorModelResp) }},
	{typ: MsgChlorLevelSet, proto: datalink.ProtoIC, wireTyp: datalink.ChlorTypLevelSet, payload: func() any { return new(ChlorLevelSet) }},
	{typ: MsgChlorLevelSet10, proto: datalink.ProtoIC, wireTyp: datalink.ChlorTypLevelSet10, payload: func() any { return new(ChlorLevel10Set) }},
	{typ: MsgChlorLevelResp, proto: datalink.ProtoIC, wireTyp: datalink.ChlorTypLevelResp, payload: func() any { return new(ChlorLevelResp) }},
	{typ: MsgChlorIChlorPing, proto: datalink.ProtoIC, wireTyp: datalink.ChlorTypIChlorPing},
	{typ: MsgChlorIChlorBcast, proto: datalink.ProtoIC, wireTyp: datalink.ChlorTypIChlorBcast, payload: func() any { return new(ChlorIChlorBcast) }},
}

var msgInfoByTyp map[MsgTyp]*msgInfo

func init() {
	msgInfoByTyp = make(map[MsgTyp]*msgInfo, len(msgTable))
	for i := range msgTable {
		info := &msgTable[i]
		if info.payload != nil {
			info.size = binary.Size(info.payload())
			if info.size < 0 {
				panic(fmt.Sprintf("network: payload of %s has no fixed size", info.typ))
			}
		}
		if _, dup := msgInfoByTyp[info.typ]; dup {
			panic(fmt.Sprintf("network: duplicate table row for %s", info.typ))
		}
		msgInfoByTyp[info.typ] = info
	}
}

// infoFor is the forward lookup: message kind to table row.
func infoFor(typ MsgTyp) *msgInfo {
	return msgInfoByTyp[typ]
}

// infoForCtrl is the reverse lookup for A5 controller traffic.
func infoForCtrl(wireTyp uint8) *msgInfo {
	for i := range msgTable {
		info := &msgTable[i]
		if info.proto == datalink.ProtoA5Ctrl && info.wireTyp == wireTyp {
			return info
		}
	}
	return nil
}

// infoForPump is the reverse lookup for A5 pump traffic. The same wire type
// is used in both directions; toPump picks the row.
func infoForPump(wireTyp uint8, toPump bool) *msgInfo {
	for i := range msgTable {
		info := &msgTable[i]
		if info.proto == datalink.ProtoA5Pump && info.wireTyp == wireTyp && info.toPump == toPump {
			return info
		}
	}
	return nil
}

// infoForChlor is the reverse lookup for IC chlorinator traffic.
func infoForChlor(wireTyp uint8) *msgInfo {
	for i := range msgTable {
		info := &msgTable[i]
		if info.proto == datalink.ProtoIC && info.wireTyp == wireTyp {
			return info
		}
	}
	return nil
}

// PayloadSize returns the payload byte count for a message kind, or -1 for
// kinds with no table row.
func PayloadSize(typ MsgTyp) int {
	info := infoFor(typ)
	if info == nil {
		return -1
	}
	return info.size
}

func (t MsgTyp) String() string {
	if name, ok := msgTypNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MSG_%02X", uint8(t))
}

var msgTypNames = map[MsgTyp]string{
	MsgIgnore:             "IGNORE",
	MsgPumpRegSet:         "PUMP_REG_SET",
	MsgPumpRegResp:        "PUMP_REG_RESP",
	MsgPumpRegVFSet:       "PUMP_REG_VF_SET",
	MsgPumpRegVFResp:      "PUMP_REG_VF_RESP",
	MsgPumpRegVSSet:       "PUMP_REG_VS_SET",
	MsgPumpRegVSResp:      "PUMP_REG_VS_RESP",
	MsgPumpRemoteCtrlSet:  "PUMP_REMOTE_CTRL_SET",
	MsgPumpRemoteCtrlResp: "PUMP_REMOTE_CTRL_RESP",
	MsgPumpRunModeSet:     "PUMP_RUN_MODE_SET",
	MsgPumpRunModeResp:    "PUMP_RUN_MODE_RESP",
	MsgPumpRunSet:         "PUMP_RUN_SET",
	MsgPumpRunResp:        "PUMP_RUN_RESP",
	MsgPumpStatusReq:      "PUMP_STATUS_REQ",
	MsgPumpStatusResp:     "PUMP_STATUS_RESP",
	MsgCtrlSetAck:         "CTRL_SET_ACK",
	MsgCtrlCircuitSet:     "CTRL_CIRCUIT_SET",
	MsgCtrlSchedReq:       "CTRL_SCHED_REQ",
	MsgCtrlSchedResp:      "CTRL_SCHED_RESP",
	MsgCtrlStateBcast:     "CTRL_STATE_BCAST",
	MsgCtrlTimeReq:        "CTRL_TIME_REQ",
	MsgCtrlTimeResp:       "CTRL_TIME_RESP",
	MsgCtrlTimeSet:        "CTRL_TIME_SET",
	MsgCtrlHeatReq:        "CTRL_HEAT_REQ",
	MsgCtrlHeatResp:       "CTRL_HEAT_RESP",
	MsgCtrlHeatSet:        "CTRL_HEAT_SET",
	MsgCtrlLayoutReq:      "CTRL_LAYOUT_REQ",
	MsgCtrlLayoutResp:     "CTRL_LAYOUT_RESP",
	MsgCtrlLayoutSet:      "CTRL_LAYOUT_SET",
	MsgCtrlValveReq:       "CTRL_VALVE_REQ",
	MsgCtrlValveResp:      "CTRL_VALVE_RESP",
	MsgCtrlVersionReq:     "CTRL_VERSION_REQ",
	MsgCtrlVersionResp:    "CTRL_VERSION_RESP",
	MsgCtrlSolarPumpReq:   "CTRL_SOLARPUMP_REQ",
	MsgCtrlSolarPumpResp:  "CTRL_SOLARPUMP_RESP",
	MsgCtrlDelayReq:       "CTRL_DELAY_REQ",
	MsgCtrlDelayResp:      "CTRL_DELAY_RESP",
	MsgCtrlHeatSetPtReq:   "CTRL_HEAT_SETPT_REQ",
	MsgCtrlHeatSetPtResp:  "CTRL_HEAT_SETPT_RESP",
	MsgCtrlCircNamesReq:   "CTRL_CIRC_NAMES_REQ",
	MsgCtrlCircNamesResp:  "CTRL_CIRC_NAMES_RESP",
	MsgCtrlSchedsReq:      "CTRL_SCHEDS_REQ",
	MsgCtrlSchedsResp:     "CTRL_SCHEDS_RESP",
	MsgCtrlChemReq:        "CTRL_CHEM_REQ",
	MsgChlorControlReq:    "CHLOR_CONTROL_REQ",
	MsgChlorControlResp:   "CHLOR_CONTROL_RESP",
	MsgChlorModelReq:      "CHLOR_MODEL_REQ",
	MsgChlorModelResp:     "CHLOR_MODEL_RESP",
	MsgChlorLevelSet:      "CHLOR_LEVEL_SET",
	MsgChlorLevelSet10:    "CHLOR_LEVEL_SET10",
	MsgChlorLevelResp:     "CHLOR_LEVEL_RESP",
	MsgChlorIChlorPing:    "CHLOR_ICHLOR_PING",
	MsgChlorIChlorBcast:   "CHLOR_ICHLOR_BCAST",
}
