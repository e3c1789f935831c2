// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package network

// Fixed-layout payload structs for every protocol message. Fields are single
// bytes or explicit HiLo/LoHi pairs, so the in-memory size of each struct is
// exactly its on-wire size and encoding/binary serializes them bit-faithfully.
// UNKNOWN fields are carried but have no identified meaning.

// CtrlSetAck acknowledges a *_SET request; it echoes the type being ack'ed.
type CtrlSetAck struct {
	Typ uint8
}

// CtrlCircuitSet turns a single circuit on or off.
type CtrlCircuitSet struct {
	CircuitPlus1 uint8 // 1-based circuit index; 0 is invalid
	Value        uint8 // 1 = on, 0 = off
}

// On reports whether the circuit is being switched on.
func (m CtrlCircuitSet) On() bool { return m.Value != 0 }

// CtrlSchedSub is one schedule slot in a CtrlSchedResp.
type CtrlSchedSub struct {
	CircuitPlus1 uint8 // 0 = slot unused
	Unknown1     uint8
	Start        HiLo // minutes since midnight
	Stop         HiLo // minutes since midnight
}

// CtrlSchedResp carries two schedule slots.
type CtrlSchedResp struct {
	Unknown0to3 [4]uint8
	Scheds      [2]CtrlSchedSub
}

// CtrlStateBcast is the controller's ~1 Hz state broadcast.
type CtrlStateBcast struct {
	Time       Time // 0..1
	Active     LoHi // 2..3  bitmask of active circuits
	Active3    uint8
	Active4    uint8
	Active5    uint8
	Unknown07  uint8
	Unknown08  uint8
	Modes      uint8 // 9  controller mode bits
	HeatStatus uint8 // 10 bit2 = POOL heating, bit3 = SPA heating
	Unknown11  uint8
	Delay      uint8 // 12 bitmask of delayed circuits
	Unknown13  uint8
	PoolTemp   uint8 // 14 water sensor 1 (POOL)
	SpaTemp    uint8 // 15 water sensor 2 (shared systems mirror sensor 1)
	Unknown16  uint8
	SolarTemp1 uint8 // 17 solar sensor 1 (mirrors air on single-sensor systems)
	AirTemp    uint8 // 18 air sensor
	SolarTemp2 uint8 // 19 solar sensor 2
	Unknown20  uint8
	Unknown21  uint8
	HeatSrc    uint8 // 22 low nibble POOL, high nibble SPA
	HeatSrc2   uint8 // 23 bodies 3 and 4
	Unknown24  uint8
	Unknown25  uint8
	Unknown26  uint8
	OCPID      HiLo // 27..28 outdoor control panel id
}

// PoolHeating reports the POOL heating bit.
func (m CtrlStateBcast) PoolHeating() bool { return m.HeatStatus&heatStatusPool != 0 }

// SpaHeating reports the SPA heating bit.
func (m CtrlStateBcast) SpaHeating() bool { return m.HeatStatus&heatStatusSpa != 0 }

// PoolHeatSrc extracts the POOL heat source nibble.
func (m CtrlStateBcast) PoolHeatSrc() HeatSrc { return HeatSrc(m.HeatSrc & 0x0F) }

// SpaHeatSrc extracts the SPA heat source nibble.
func (m CtrlStateBcast) SpaHeatSrc() HeatSrc { return HeatSrc(m.HeatSrc >> 4) }

// CtrlTime carries the controller clock; used by TIME_RESP and TIME_SET.
type CtrlTime struct {
	Time         Time
	DayOfTheWeek uint8
	Date         Date
	ClkSpeed     uint8
	DSTAuto      uint8 // 1 = automatic daylight saving
}

// CtrlVersionResp reports the controller firmware version.
type CtrlVersionResp struct {
	ReqID        uint8
	Major        uint8
	Minor        uint8
	Unknown03to04 [2]uint8
	BootMajor    uint8
	BootMinor    uint8
	Unknown07to16 [10]uint8
}

// CtrlValveResp payload has no identified fields yet.
type CtrlValveResp struct {
	Unknown [24]uint8
}

// CtrlSolarPumpResp payload has no identified fields yet.
type CtrlSolarPumpResp struct {
	Unknown [3]uint8
}

// CtrlDelayResp payload has no identified fields yet.
type CtrlDelayResp struct {
	Unknown [2]uint8
}

// CtrlHeatSetPtResp payload has no identified fields yet.
type CtrlHeatSetPtResp struct {
	Unknown [10]uint8
}

// CtrlCircNamesReq requests one circuit name record.
type CtrlCircNamesReq struct {
	ReqID uint8
}

// CtrlCircNamesResp carries one circuit name record.
type CtrlCircNamesResp struct {
	ReqID   uint8
	Unknown [5]uint8
}

// CtrlChemReq requests water chemistry data.
type CtrlChemReq struct {
	Unknown uint8
}

// CtrlSchedsReq requests a schedule by id (1-12).
type CtrlSchedsReq struct {
	SchedID uint8
}

// CtrlSchedsResp is one schedule record addressed by id.
type CtrlSchedsResp struct {
	SchedID   uint8
	Circuit   uint8
	Start     Time
	Stop      Time
	DayOfWeek uint8 // bitmask Mon 0x01 .. Sun 0x40
}

// CtrlHeatResp reports temperatures, set points and heat sources.
type CtrlHeatResp struct {
	PoolTemp      uint8
	SpaTemp       uint8
	AirTemp       uint8
	PoolSetPoint  uint8
	SpaSetPoint   uint8
	HeatSrc       uint8 // low nibble POOL, high nibble SPA
	WaterTemp3    uint8
	WaterTemp4    uint8
	AirTemp2      uint8
	Body3SetPoint uint8
	Body4SetPoint uint8
	HeatSrc34     uint8
	Unknown       uint8
}

// PoolHeatSrc extracts the POOL heat source nibble.
func (m CtrlHeatResp) PoolHeatSrc() HeatSrc { return HeatSrc(m.HeatSrc & 0x0F) }

// SpaHeatSrc extracts the SPA heat source nibble.
func (m CtrlHeatResp) SpaHeatSrc() HeatSrc { return HeatSrc(m.HeatSrc >> 4) }

// CtrlHeatSet changes set points and heat sources (no current temperatures).
type CtrlHeatSet struct {
	PoolSetPoint uint8
	SpaSetPoint  uint8
	HeatSrc      uint8
	Unknown      uint8
}

// PoolHeatSrc extracts the POOL heat source nibble.
func (m CtrlHeatSet) PoolHeatSrc() HeatSrc { return HeatSrc(m.HeatSrc & 0x0F) }

// SpaHeatSrc extracts the SPA heat source nibble.
func (m CtrlHeatSet) SpaHeatSrc() HeatSrc { return HeatSrc(m.HeatSrc >> 4) }

// MakeHeatSrc packs the POOL and SPA heat source nibbles.
func MakeHeatSrc(pool, spa HeatSrc) uint8 {
	return uint8(pool)&0x0F | uint8(spa)<<4
}

// CtrlLayout maps the four remote buttons to schedule records.
type CtrlLayout struct {
	Circuits [4]CtrlSchedsResp
}

// PumpRegSet reads or writes a pump register.
type PumpRegSet struct {
	Address   uint8
	Operation uint8 // PumpRegOpWrite for writes, anything else reads
	Value     HiLo  // 0x0000 for reads
}

// PumpRegResp returns a pump register value.
type PumpRegResp struct {
	Value HiLo
}

// PumpCtrl switches a pump between local and remote control; 0xFF = remote.
type PumpCtrl struct {
	Raw uint8
}

// Remote reports whether the pump is under remote control.
func (m PumpCtrl) Remote() bool { return m.Raw == 0xFF }

// PumpRunMode carries the pump run mode; see RunModeString.
type PumpRunMode struct {
	Raw uint8
}

// PumpRunning carries the pump on/off state (0x0A = on, 0x04 = off).
type PumpRunning struct {
	Raw uint8
}

// On reports whether the raw value means running.
func (m PumpRunning) On() bool { return m.Raw == PumpRunningOn }

// Off reports whether the raw value means stopped.
func (m PumpRunning) Off() bool { return m.Raw == PumpRunningOff }

// PumpStatusResp is the full pump telemetry record.
type PumpStatusResp struct {
	Running   uint8 // 0x0A on, 0x04 off
	Mode      uint8
	State     uint8
	Power     HiLo // W
	Speed     HiLo // rpm
	Flow      uint8 // gal/min
	Level     uint8 // %
	Unknown   uint8
	Error     uint8
	Remaining Time
	Clock     Time
}

// ChlorControlReq polls the chlorinator control status.
type ChlorControlReq struct {
	SubCmd uint8
}

// ChlorControlResp payload always appears to be 00 00.
type ChlorControlResp struct {
	Unknown [2]uint8
}

// ChlorModelReq requests the chlorinator model/name.
type ChlorModelReq struct {
	Typ uint8
}

// ChlorModelResp reports the salt level and the cell name.
type ChlorModelResp struct {
	Salt uint8    // ppm / 50
	Name [16]byte // not NUL terminated on the wire
}

// ChlorLevelSet sets the chlorination level percentage.
type ChlorLevelSet struct {
	Level uint8
}

// ChlorLevel10Set sets the level with one decimal place (percent * 10).
type ChlorLevel10Set struct {
	LevelTimes10 uint8
}

// ChlorLevelResp reports salt and error flags in response to a level set.
type ChlorLevelResp struct {
	Salt  uint8 // ppm / 50
	Error uint8 // low flow 0x01, low salt 0x02, high salt 0x04, clean cell 0x10, cold 0x40, OK 0x80
}

// ChlorIChlorBcast is the iChlor status broadcast.
type ChlorIChlorBcast struct {
	Level uint8
	Temp  uint8
}
