// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package datalink

import "testing"

func TestAddressGroups(t *testing.T) {
	tests := []struct {
		addr         Address
		isController bool
		isPump       bool
		isChlor      bool
		isBroadcast  bool
	}{
		{AddrSunTouchController, true, false, false, false},
		{AddrEasyTouchController, true, false, false, false},
		{AddrBroadcast, false, false, false, true},
		{AddrChlorinator, false, false, true, false},
		{PumpAddr(PumpPrimary), false, true, false, false},
		{PumpAddr(PumpSolar), false, true, false, false},
		{Address(0x6F), false, true, false, false},
		{AddrRemote, false, false, false, false},
		{AddrUnknown90, false, false, false, false},
	}

	for _, tt := range tests {
		if got := tt.addr.IsController(); got != tt.isController {
			t.Errorf("%02X IsController: expected %v, got %v", uint8(tt.addr), tt.isController, got)
		}
		if got := tt.addr.IsPump(); got != tt.isPump {
			t.Errorf("%02X IsPump: expected %v, got %v", uint8(tt.addr), tt.isPump, got)
		}
		if got := tt.addr.IsChlorinator(); got != tt.isChlor {
			t.Errorf("%02X IsChlorinator: expected %v, got %v", uint8(tt.addr), tt.isChlor, got)
		}
		if got := tt.addr.IsBroadcast(); got != tt.isBroadcast {
			t.Errorf("%02X IsBroadcast: expected %v, got %v", uint8(tt.addr), tt.isBroadcast, got)
		}
	}
}

func TestPumpID(t *testing.T) {
	if got := PumpAddr(PumpSolar); got != 0x61 {
		t.Errorf("pump address mismatch: expected 0x61, got 0x%02X", uint8(got))
	}
	if got := Address(0x6A).PumpID(); got != 0x0A {
		t.Errorf("pump id mismatch: expected 0x0A, got 0x%02X", uint8(got))
	}
}

func TestChecksum(t *testing.T) {
	// the circuit-set example frame: A5 01 10 21 86 02 06 01 sums to 0x0166
	data := []byte{0xA5, 0x01, 0x10, 0x21, 0x86, 0x02, 0x06, 0x01}
	if got := Checksum(data); got != 0x0166 {
		t.Errorf("checksum mismatch: expected 0x0166, got 0x%04X", got)
	}
	if got := Checksum(nil); got != 0 {
		t.Errorf("checksum of empty data should be 0, got %d", got)
	}
}
