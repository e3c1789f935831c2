// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package datalink

import "fmt"

// BuildFrame wraps a packet's payload with the protocol head and tail in the
// packet's own buffer. The payload must already sit in the buffer with
// MaxHeadSize of headroom (see NewPacket). After BuildFrame the buffer's
// content window holds the complete byte stream ready for transmission.
func BuildFrame(pkt *Packet) error {
	switch pkt.Proto {
	case ProtoA5Ctrl, ProtoA5Pump:
		buildFrameA5(pkt)
	case ProtoIC:
		buildFrameIC(pkt)
	default:
		return fmt.Errorf("datalink: cannot frame protocol %s", pkt.Proto)
	}
	return nil
}

func buildFrameA5(pkt *Packet) {
	buf := pkt.Buf

	head := buf.Push(headA5Size)
	head[0] = 0xFF
	copy(head[1:], PreambleA5)
	hdr := head[1+len(PreambleA5):]
	hdr[0] = a5ProtocolVersion
	hdr[1] = uint8(pkt.Dst)
	hdr[2] = uint8(pkt.Src)
	hdr[3] = pkt.Typ
	hdr[4] = uint8(len(pkt.Data))

	// sum from the 0xA5 preamble byte through the last payload byte
	sum := Checksum(buf.Bytes()[headA5Size-a5HdrSize-1:])
	tail := buf.Put(tailA5Size)
	tail[0] = uint8(sum >> 8)
	tail[1] = uint8(sum)
}

func buildFrameIC(pkt *Packet) {
	buf := pkt.Buf

	head := buf.Push(headICSize)
	head[0] = 0xFF
	copy(head[1:], PreambleIC)
	hdr := head[1+len(PreambleIC):]
	hdr[0] = uint8(pkt.Dst)
	hdr[1] = pkt.Typ

	// sum from the first preamble byte (0x10) through the last payload byte
	sum := Checksum(buf.Bytes()[1:])
	tail := buf.Put(tailICSize)
	tail[0] = uint8(sum)
	copy(tail[1:], PostambleIC)
}
