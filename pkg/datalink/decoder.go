// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package datalink

import (
	"errors"

	"github.com/cvonk/OPNpool-sub000/pkg/skb"
)

// ByteReader is the slice of the transceiver the decoder needs. ReadBytes
// fills p with up to len(p) bytes, blocking no longer than the transport's
// read timeout, and returns the count actually read. A short count means the
// timeout expired.
type ByteReader interface {
	ReadBytes(p []byte) (int, error)
}

// Decode discard reasons.
var (
	ErrBadLength = errors.New("datalink: payload length exceeds maximum")
	ErrChecksum  = errors.New("datalink: checksum mismatch")
)

// Stats counts decoder events for diagnostics.
type Stats struct {
	TotalFrames    uint64 // frames with a complete preamble
	ValidFrames    uint64 // frames that passed checksum verification
	ChecksumErrors uint64
	BadLengths     uint64
	Underruns      uint64 // reads that timed out mid-frame
}

type preambleMatch struct {
	preamble []byte
	proto    Proto
	idx      int
}

// Decoder converts the RS-485 byte stream into validated packets. It owns the
// backing buffer; the Data slice of a returned packet aliases that buffer and
// is only valid until the next Receive call.
type Decoder struct {
	rd    ByteReader
	buf   *skb.Buffer
	match [2]preambleMatch
	stats Stats
}

// NewDecoder creates a decoder reading from rd.
func NewDecoder(rd ByteReader) *Decoder {
	return &Decoder{
		rd:  rd,
		buf: skb.Alloc(BufSize),
		match: [2]preambleMatch{
			{preamble: PreambleIC, proto: ProtoIC},
			{preamble: PreambleA5, proto: ProtoA5Ctrl},
		},
	}
}

// Stats returns a copy of the decoder's event counters.
func (d *Decoder) Stats() Stats {
	return d.stats
}

func (d *Decoder) resetMatch() {
	for i := range d.match {
		d.match[i].idx = 0
	}
}

// findPreamble consumes bytes until a full A5 or IC preamble is seen. Both
// preambles are matched in parallel; a byte that matches neither resets all
// match positions and is then re-examined, so a stray leading byte (e.g.
// 10 10 02) still frames the IC preamble.
func (d *Decoder) findPreamble() (Proto, bool) {
	var one [1]byte
	for {
		n, _ := d.rd.ReadBytes(one[:])
		if n < 1 {
			return ProtoNone, false
		}
		b := one[0]

		part := false
		for i := range d.match {
			if part {
				break
			}
			m := &d.match[i]
			if b == m.preamble[m.idx] {
				part = true
				m.idx++
				if m.idx == len(m.preamble) {
					proto := m.proto
					d.resetMatch()
					return proto, true
				}
			}
		}
		if !part {
			d.resetMatch()
			for i := range d.match {
				m := &d.match[i]
				if b == m.preamble[m.idx] {
					m.idx++
				}
			}
		}
	}
}

// readFull reads exactly len(p) bytes or reports an underrun.
func (d *Decoder) readFull(p []byte) bool {
	if len(p) == 0 {
		return true
	}
	n, _ := d.rd.ReadBytes(p)
	if n != len(p) {
		d.stats.Underruns++
		return false
	}
	return true
}

// Receive attempts to frame one packet from the byte stream. It returns
// (nil, nil) when no complete frame is available within the read timeout,
// (nil, err) when a frame was discarded, and a packet on success. A discarded
// or timed-out frame leaves the decoder resynchronizing on the next preamble.
func (d *Decoder) Receive() (*Packet, error) {
	proto, ok := d.findPreamble()
	if !ok {
		return nil, nil
	}
	d.stats.TotalFrames++

	d.buf.Reset()
	switch proto {
	case ProtoA5Ctrl:
		return d.receiveA5()
	case ProtoIC:
		return d.receiveIC()
	}
	return nil, nil
}

func (d *Decoder) receiveA5() (*Packet, error) {
	copy(d.buf.Put(len(PreambleA5)), PreambleA5)

	hdr := d.buf.Put(a5HdrSize)
	if !d.readFull(hdr) {
		return nil, nil
	}
	dst := Address(hdr[1])
	src := Address(hdr[2])
	typ := hdr[3]
	dataLen := int(hdr[4])
	if dataLen > MaxDataSize {
		d.stats.BadLengths++
		return nil, ErrBadLength
	}

	proto := ProtoA5Ctrl
	if src.IsPump() || dst.IsPump() {
		proto = ProtoA5Pump
	}

	data := d.buf.Put(dataLen)
	if !d.readFull(data) {
		return nil, nil
	}
	tail := d.buf.Put(tailA5Size)
	if !d.readFull(tail) {
		return nil, nil
	}

	// checksum covers the last preamble byte (0xA5) through the last
	// payload byte
	frame := d.buf.Bytes()
	calc := Checksum(frame[len(PreambleA5)-1 : len(frame)-tailA5Size])
	rx := uint16(tail[0])<<8 | uint16(tail[1])
	if calc != rx {
		d.stats.ChecksumErrors++
		return nil, ErrChecksum
	}

	d.stats.ValidFrames++
	return &Packet{
		Proto: proto,
		Typ:   typ,
		Src:   src,
		Dst:   dst,
		Data:  data,
		Buf:   d.buf,
	}, nil
}

func (d *Decoder) receiveIC() (*Packet, error) {
	copy(d.buf.Put(len(PreambleIC)), PreambleIC)

	hdr := d.buf.Put(icHdrSize)
	if !d.readFull(hdr) {
		return nil, nil
	}
	dst := Address(hdr[0])
	typ := hdr[1]
	dataLen := ICPayloadLen(typ)

	data := d.buf.Put(dataLen)
	if !d.readFull(data) {
		return nil, nil
	}
	tail := d.buf.Put(tailICSize)
	if !d.readFull(tail) {
		return nil, nil
	}

	// checksum covers the first preamble byte (0x10) through the last
	// payload byte, low 8 bits only
	frame := d.buf.Bytes()
	calc := uint8(Checksum(frame[:len(frame)-tailICSize]))
	if calc != tail[0] {
		d.stats.ChecksumErrors++
		return nil, ErrChecksum
	}

	d.stats.ValidFrames++
	return &Packet{
		Proto: ProtoIC,
		Typ:   typ,
		Src:   AddrAll, // the IC header carries no source
		Dst:   dst,
		Data:  data,
		Buf:   d.buf,
	}, nil
}
