// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package datalink

import "fmt"

// Address is the single device address byte used on the bus. The high nibble
// is the device group, the low nibble a device id within the group (used
// mainly to tell pumps apart).
type Address uint8

// Well-known addresses.
const (
	AddrAll                 Address = 0x00
	AddrBroadcast           Address = 0x0F
	AddrSunTouchController  Address = 0x10
	AddrEasyTouchController Address = 0x20
	AddrRemote              Address = 0x21
	AddrWirelessRemote      Address = 0x22 // ScreenLogic or app
	AddrQuickTouchRemote    Address = 0x48
	AddrChlorinator         Address = 0x50
	AddrPumpBase            Address = 0x60
	AddrUnknown90           Address = 0x90

	pumpIDMask = 0x0F
)

// PumpID identifies one of the pumps on the bus (low nibble of a pump-group
// address).
type PumpID uint8

// Common pump ids.
const (
	PumpPrimary PumpID = 0x00
	PumpSolar   PumpID = 0x01

	// NumPumps is the number of pump slots tracked in the state model.
	NumPumps = 2
)

// PumpAddr composes a pump-group address from a pump id.
func PumpAddr(id PumpID) Address {
	return AddrPumpBase | Address(id&pumpIDMask)
}

// IsController reports whether a is a SunTouch or EasyTouch controller.
func (a Address) IsController() bool {
	return a == AddrSunTouchController || a == AddrEasyTouchController
}

// IsRemote reports whether a is one of the remote-control addresses.
func (a Address) IsRemote() bool {
	return a == AddrRemote || a == AddrWirelessRemote || a == AddrQuickTouchRemote
}

// IsPump reports whether a is in the pump group.
func (a Address) IsPump() bool {
	return a&0xF0 == AddrPumpBase
}

// IsChlorinator reports whether a is the chlorinator.
func (a Address) IsChlorinator() bool {
	return a == AddrChlorinator
}

// IsBroadcast reports whether a is the broadcast address.
func (a Address) IsBroadcast() bool {
	return a == AddrBroadcast
}

// IsUnknown90 reports whether a is in the undocumented 0x90 group.
func (a Address) IsUnknown90() bool {
	return a&0xF0 == AddrUnknown90
}

// PumpID extracts the pump id from a pump-group address.
func (a Address) PumpID() PumpID {
	return PumpID(a & pumpIDMask)
}

func (a Address) String() string {
	switch {
	case a == AddrSunTouchController:
		return "SunTouch"
	case a == AddrEasyTouchController:
		return "EasyTouch"
	case a == AddrBroadcast:
		return "broadcast"
	case a == AddrChlorinator:
		return "chlorinator"
	case a.IsPump():
		return fmt.Sprintf("pump%d", a.PumpID())
	case a.IsRemote():
		return "remote"
	}
	return fmt.Sprintf("0x%02X", uint8(a))
}
