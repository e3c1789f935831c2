// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package network

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cvonk/OPNpool-sub000/pkg/datalink"
)

// Message is a decoded application message. Payload points at the typed
// payload struct for the kind (e.g. *CtrlStateBcast); it is nil for kinds
// that carry no payload and for MsgIgnore.
type Message struct {
	Src     datalink.Address
	Dst     datalink.Address
	Typ     MsgTyp
	Payload any
}

// Decode rejection reasons. A rejected packet decodes to MsgIgnore so the
// caller can count it without treating it as fatal.
var (
	ErrUnknownType    = errors.New("network: no codec row for packet type")
	ErrLengthMismatch = errors.New("network: payload length does not match codec row")
	ErrBadPayload     = errors.New("network: payload type does not match message kind")
)

// Decode interprets a data link packet as an application message. The second
// return value reports a transmit opportunity: the bus is briefly idle after
// a controller broadcast to all.
//
// Packets addressed to the undocumented 0x90 group, and IC packets that are
// neither broadcast nor addressed to the chlorinator, decode to MsgIgnore.
func Decode(pkt *datalink.Packet) (Message, bool, error) {
	txOpportunity := pkt.Proto == datalink.ProtoA5Ctrl &&
		pkt.Src.IsController() &&
		pkt.Dst.IsBroadcast()

	msg := Message{Src: pkt.Src, Dst: pkt.Dst, Typ: MsgIgnore}

	// chlorinator responses carry destination 0x00; on the IC wire that is
	// the broadcast address
	icBroadcast := pkt.Dst == datalink.AddrAll || pkt.Dst.IsBroadcast()
	if (pkt.Proto == datalink.ProtoA5Ctrl && pkt.Dst.IsUnknown90()) ||
		(pkt.Proto == datalink.ProtoIC && !icBroadcast && !pkt.Dst.IsChlorinator()) {
		return msg, false, nil
	}

	var info *msgInfo
	switch pkt.Proto {
	case datalink.ProtoA5Ctrl:
		info = infoForCtrl(pkt.Typ)
	case datalink.ProtoA5Pump:
		info = infoForPump(pkt.Typ, pkt.Dst.IsPump())
	case datalink.ProtoIC:
		info = infoForChlor(pkt.Typ)
	}
	if info == nil {
		return msg, txOpportunity, ErrUnknownType
	}
	if len(pkt.Data) != info.size {
		return msg, txOpportunity, fmt.Errorf("%w: %s expected %d, got %d",
			ErrLengthMismatch, info.typ, info.size, len(pkt.Data))
	}

	msg.Typ = info.typ
	if info.payload != nil {
		p := info.payload()
		if err := binary.Read(bytes.NewReader(pkt.Data), binary.BigEndian, p); err != nil {
			return Message{Src: pkt.Src, Dst: pkt.Dst, Typ: MsgIgnore}, txOpportunity, err
		}
		msg.Payload = p
	}
	return msg, txOpportunity, nil
}

// CreatePacket serializes a message into a data link packet with the payload
// placed mid-buffer, leaving headroom and tailroom for BuildFrame.
func CreatePacket(msg Message) (*datalink.Packet, error) {
	info := infoFor(msg.Typ)
	if info == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, msg.Typ)
	}

	pkt, data := datalink.NewPacket(info.proto, info.wireTyp, msg.Src, msg.Dst, info.size)
	if info.size > 0 {
		if msg.Payload == nil {
			return nil, fmt.Errorf("%w: %s requires a payload", ErrBadPayload, msg.Typ)
		}
		var buf bytes.Buffer
		if err := binary.Write(&buf, binary.BigEndian, msg.Payload); err != nil {
			return nil, err
		}
		if buf.Len() != info.size {
			return nil, fmt.Errorf("%w: %s serialized to %d bytes, expected %d",
				ErrBadPayload, msg.Typ, buf.Len(), info.size)
		}
		copy(data, buf.Bytes())
	}
	return pkt, nil
}
