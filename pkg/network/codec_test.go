// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package network

import (
	"reflect"
	"testing"

	"github.com/cvonk/OPNpool-sub000/pkg/datalink"
)

func mkPacket(proto datalink.Proto, typ uint8, src, dst datalink.Address, payload []byte) *datalink.Packet {
	pkt, data := datalink.NewPacket(proto, typ, src, dst, len(payload))
	copy(data, payload)
	return pkt
}

func TestDecodeStateBcast(t *testing.T) {
	payload := make([]byte, 29)
	payload[0] = 0x09 // hour
	payload[1] = 0x1F // minute
	payload[2] = 0x21 // active lo: SPA + POOL
	payload[10] = 0x04
	payload[14] = 0x56
	payload[15] = 0x56
	payload[17] = 0x50
	payload[18] = 0x4E

	pkt := mkPacket(datalink.ProtoA5Ctrl, datalink.CtrlTypStateBcast,
		datalink.AddrSunTouchController, datalink.AddrBroadcast, payload)

	msg, txOpp, err := Decode(pkt)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !txOpp {
		t.Error("controller broadcast must signal a transmit opportunity")
	}
	if msg.Typ != MsgCtrlStateBcast {
		t.Fatalf("kind mismatch: got %s", msg.Typ)
	}
	p, ok := msg.Payload.(*CtrlStateBcast)
	if !ok {
		t.Fatalf("payload type mismatch: %T", msg.Payload)
	}
	if p.Time.Hour != 0x09 || p.Time.Minute != 0x1F {
		t.Errorf("time mismatch: %02d:%02d", p.Time.Hour, p.Time.Minute)
	}
	if p.Active.Uint16() != 0x0021 {
		t.Errorf("active mask mismatch: 0x%04X", p.Active.Uint16())
	}
	if p.PoolTemp != 0x56 || p.SpaTemp != 0x56 {
		t.Errorf("water temps mismatch: pool=%d spa=%d", p.PoolTemp, p.SpaTemp)
	}
	if p.SolarTemp1 != 0x50 || p.AirTemp != 0x4E {
		t.Errorf("air/solar temps mismatch: solar1=%d air=%d", p.SolarTemp1, p.AirTemp)
	}
	if !p.PoolHeating() || p.SpaHeating() {
		t.Errorf("heat status mismatch: pool=%v spa=%v", p.PoolHeating(), p.SpaHeating())
	}
}

func TestDecodePumpDirection(t *testing.T) {
	// response: 15-byte status from the pump to the controller
	resp := mkPacket(datalink.ProtoA5Pump, datalink.PumpTypStatus,
		datalink.PumpAddr(datalink.PumpPrimary), datalink.AddrSunTouchController, make([]byte, 15))
	msg, _, err := Decode(resp)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if msg.Typ != MsgPumpStatusResp {
		t.Errorf("expected PUMP_STATUS_RESP, got %s", msg.Typ)
	}

	// request: empty frame from the controller to the pump
	req := mkPacket(datalink.ProtoA5Pump, datalink.PumpTypStatus,
		datalink.AddrSunTouchController, datalink.PumpAddr(datalink.PumpPrimary), nil)
	msg, _, err = Decode(req)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if msg.Typ != MsgPumpStatusReq {
		t.Errorf("expected PUMP_STATUS_REQ, got %s", msg.Typ)
	}
}

func TestDecodeChlorLevelResp(t *testing.T) {
	// chlorinator response: dst 0x00 is the IC-side broadcast
	pkt := mkPacket(datalink.ProtoIC, datalink.ChlorTypLevelResp,
		datalink.AddrAll, datalink.AddrAll, []byte{0x3C, 0x80})

	msg, txOpp, err := Decode(pkt)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if txOpp {
		t.Error("IC traffic must not signal a transmit opportunity")
	}
	if msg.Typ != MsgChlorLevelResp {
		t.Fatalf("kind mismatch: got %s", msg.Typ)
	}
	p := msg.Payload.(*ChlorLevelResp)
	if p.Salt != 0x3C || p.Error != 0x80 {
		t.Errorf("payload mismatch: %+v", p)
	}
}

func TestDecodeLengthMismatch(t *testing.T) {
	pkt := mkPacket(datalink.ProtoA5Ctrl, datalink.CtrlTypStateBcast,
		datalink.AddrSunTouchController, datalink.AddrBroadcast, make([]byte, 28))

	msg, _, err := Decode(pkt)
	if err == nil {
		t.Fatal("expected a length mismatch error")
	}
	if msg.Typ != MsgIgnore {
		t.Errorf("rejected packet must decode to IGNORE, got %s", msg.Typ)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	pkt := mkPacket(datalink.ProtoA5Ctrl, 0x7B,
		datalink.AddrSunTouchController, datalink.AddrBroadcast, nil)

	msg, _, err := Decode(pkt)
	if err != ErrUnknownType {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
	if msg.Typ != MsgIgnore {
		t.Errorf("unknown packet must decode to IGNORE, got %s", msg.Typ)
	}
}

func TestDecodeIgnorePolicy(t *testing.T) {
	tests := []struct {
		name string
		pkt  *datalink.Packet
	}{
		{"a5 to 0x90 group", mkPacket(datalink.ProtoA5Ctrl, datalink.CtrlTypStateBcast,
			datalink.AddrSunTouchController, datalink.AddrUnknown90, make([]byte, 29))},
		{"ic to pump group", mkPacket(datalink.ProtoIC, datalink.ChlorTypLevelResp,
			datalink.AddrAll, datalink.PumpAddr(datalink.PumpPrimary), make([]byte, 2))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, txOpp, err := Decode(tt.pkt)
			if err != nil {
				t.Fatalf("ignored packet must not error: %v", err)
			}
			if msg.Typ != MsgIgnore {
				t.Errorf("expected IGNORE, got %s", msg.Typ)
			}
			if txOpp {
				t.Error("ignored packet must not signal a transmit opportunity")
			}
		})
	}
}

// TestCodecRoundtrip encodes one message of every kind in the table and
// decodes it back, expecting an identical message.
func TestCodecRoundtrip(t *testing.T) {
	for _, info := range msgTable {
		t.Run(info.typ.String(), func(t *testing.T) {
			src, dst := datalink.AddrRemote, datalink.AddrSunTouchController
			if info.proto == datalink.ProtoA5Pump {
				if info.toPump {
					src, dst = datalink.AddrSunTouchController, datalink.PumpAddr(datalink.PumpSolar)
				} else {
					src, dst = datalink.PumpAddr(datalink.PumpSolar), datalink.AddrSunTouchController
				}
			}
			if info.proto == datalink.ProtoIC {
				src, dst = datalink.AddrAll, datalink.AddrChlorinator
			}

			msg := Message{Src: src, Dst: dst, Typ: info.typ}
			if info.payload != nil {
				msg.Payload = info.payload()
				fillPayload(msg.Payload)
			}

			pkt, err := CreatePacket(msg)
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			if err := datalink.BuildFrame(pkt); err != nil {
				t.Fatalf("frame failed: %v", err)
			}

			got, _, err := Decode(pkt)
			if err != nil {
				t.Fatalf("re-decode failed: %v", err)
			}
			if !reflect.DeepEqual(msg, got) {
				t.Errorf("roundtrip mismatch:\nsent %+v\ngot  %+v", msg, got)
			}
		})
	}
}

// fillPayload writes a non-trivial pattern into every byte-sized field so the
// roundtrip exercises more than the zero value.
func fillPayload(p any) {
	v := reflect.ValueOf(p).Elem()
	var n uint8 = 1
	var walk func(reflect.Value)
	walk = func(v reflect.Value) {
		switch v.Kind() {
		case reflect.Uint8:
			v.SetUint(uint64(n))
			n += 3
		case reflect.Array, reflect.Struct:
			for i := 0; i < numChildren(v); i++ {
				walk(child(v, i))
			}
		}
	}
	walk(v)
}

func numChildren(v reflect.Value) int {
	if v.Kind() == reflect.Array {
		return v.Len()
	}
	return v.NumField()
}

func child(v reflect.Value, i int) reflect.Value {
	if v.Kind() == reflect.Array {
		return v.Index(i)
	}
	return v.Field(i)
}

// TestLengthCoherence pins the codec row sizes to the wire layout.
func TestLengthCoherence(t *testing.T) {
	expected := map[MsgTyp]int{
		MsgCtrlStateBcast:  29,
		MsgCtrlHeatResp:    13,
		MsgCtrlHeatSet:     4,
		MsgCtrlTimeResp:    8,
		MsgCtrlSchedResp:   16,
		MsgCtrlCircuitSet:  2,
		MsgCtrlVersionResp: 17,
		MsgCtrlSetAck:      1,
		MsgPumpStatusResp:  15,
		MsgPumpStatusReq:   0,
		MsgPumpRegSet:      4,
		MsgPumpRegResp:     2,
		MsgChlorModelResp:  17,
		MsgChlorLevelResp:  2,
		MsgChlorLevelSet:   1,
		MsgCtrlVersionReq:  0,
		MsgCtrlHeatReq:     0,
		MsgCtrlSchedReq:    0,
	}
	for typ, size := range expected {
		if got := PayloadSize(typ); got != size {
			t.Errorf("%s: expected payload size %d, got %d", typ, size, got)
		}
	}
}

// TestICSizesMatchDatalink cross-checks the IC length-by-type table the
// framer uses against the codec rows.
func TestICSizesMatchDatalink(t *testing.T) {
	for _, info := range msgTable {
		if info.proto != datalink.ProtoIC {
			continue
		}
		if got := datalink.ICPayloadLen(info.wireTyp); got != info.size {
			t.Errorf("%s: framer table says %d, codec row says %d", info.typ, got, info.size)
		}
	}
}
