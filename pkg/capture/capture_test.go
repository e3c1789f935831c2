// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package capture

import (
	"bytes"
	"io"
	"testing"

	"github.com/cvonk/OPNpool-sub000/pkg/datalink"
)

func TestRoundtrip(t *testing.T) {
	pkt, data := datalink.NewPacket(datalink.ProtoA5Ctrl, datalink.CtrlTypCircuitSet,
		datalink.AddrRemote, datalink.AddrSunTouchController, 2)
	copy(data, []byte{0x06, 0x01})
	if err := datalink.BuildFrame(pkt); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	recs := []Record{FromPacket(pkt), FromPacket(pkt)}
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	r := NewReader(&buf)
	for i := range recs {
		got, err := r.Read()
		if err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
		if got.Proto != uint8(datalink.ProtoA5Ctrl) || got.Typ != datalink.CtrlTypCircuitSet {
			t.Errorf("record %d header mismatch: %+v", i, got)
		}
		if !bytes.Equal(got.Frame, pkt.Buf.Bytes()) {
			t.Errorf("record %d frame mismatch:\nexpected % X\ngot      % X", i, pkt.Buf.Bytes(), got.Frame)
		}
	}
	if _, err := r.Read(); err != io.EOF {
		t.Errorf("expected EOF after last record, got %v", err)
	}
}

func TestReplayThroughDecoder(t *testing.T) {
	pkt, data := datalink.NewPacket(datalink.ProtoA5Ctrl, datalink.CtrlTypCircuitSet,
		datalink.AddrRemote, datalink.AddrSunTouchController, 2)
	copy(data, []byte{0x06, 0x01})
	if err := datalink.BuildFrame(pkt); err != nil {
		t.Fatal(err)
	}
	rec := FromPacket(pkt)

	dec := datalink.NewDecoder(&sliceReader{data: rec.Frame})
	var got *datalink.Packet
	for i := 0; i < 3 && got == nil; i++ {
		var err error
		got, err = dec.Receive()
		if err != nil {
			t.Fatalf("replay decode failed: %v", err)
		}
	}
	if got == nil {
		t.Fatal("replay produced no packet")
	}
	if got.Typ != datalink.CtrlTypCircuitSet || !bytes.Equal(got.Data, []byte{0x06, 0x01}) {
		t.Errorf("replayed packet mismatch: %s", got)
	}
}

type sliceReader struct {
	data []byte
	pos  int
}

func (r *sliceReader) ReadBytes(p []byte) (int, error) {
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
