// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package datalink

import (
	"fmt"
	"strings"

	"github.com/cvonk/OPNpool-sub000/pkg/skb"
)

// Packet is a decoded data link frame, ready for semantic interpretation by
// the network layer. Data aliases the backing buffer; it stays valid until
// the buffer is reset or reused for the next receive cycle.
type Packet struct {
	Proto Proto
	Typ   uint8
	Src   Address
	Dst   Address
	Data  []byte
	Buf   *skb.Buffer
}

// NewPacket allocates a packet with a payload of the given length, with
// enough headroom and tailroom for either protocol's framing. The returned
// payload window is ready to be filled.
func NewPacket(proto Proto, typ uint8, src, dst Address, dataLen int) (*Packet, []byte) {
	buf := skb.Alloc(BufSize)
	buf.Reserve(MaxHeadSize)
	data := buf.Put(dataLen)
	return &Packet{
		Proto: proto,
		Typ:   typ,
		Src:   src,
		Dst:   dst,
		Data:  data,
		Buf:   buf,
	}, data
}

func (p *Packet) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s typ=0x%02X %s->%s len=%d", p.Proto, p.Typ, p.Src, p.Dst, len(p.Data))
	if len(p.Data) > 0 {
		sb.WriteString(" [")
		for i, b := range p.Data {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%02X", b)
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

// Checksum sums the given bytes as an unsigned 16-bit value. The A5 protocol
// transmits all 16 bits big-endian; IC transmits only the low 8 bits. Which
// bytes participate differs per variant: A5 sums from the last preamble byte
// (the 0xA5), IC from the first preamble byte (the 0x10).
func Checksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}
