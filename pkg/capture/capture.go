// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

// Package capture reads and writes bus trace files: a stream of CBOR-encoded
// records, one per received frame, carrying the raw bytes plus a decoded
// summary. Traces taken with the monitor can be replayed through the decoder
// offline.
package capture

import (
	"errors"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/cvonk/OPNpool-sub000/pkg/datalink"
)

// Record is one captured frame. Frame holds the complete wire bytes
// including preamble and trailer.
type Record struct {
	UnixMs int64  `cbor:"1,keyasint"`
	Proto  uint8  `cbor:"2,keyasint"`
	Typ    uint8  `cbor:"3,keyasint"`
	Src    uint8  `cbor:"4,keyasint"`
	Dst    uint8  `cbor:"5,keyasint"`
	Frame  []byte `cbor:"6,keyasint"`
}

// FromPacket builds a record from a decoded packet, stamping the current
// time.
func FromPacket(pkt *datalink.Packet) Record {
	return Record{
		UnixMs: time.Now().UnixMilli(),
		Proto:  uint8(pkt.Proto),
		Typ:    pkt.Typ,
		Src:    uint8(pkt.Src),
		Dst:    uint8(pkt.Dst),
		Frame:  append([]byte(nil), pkt.Buf.Bytes()...),
	}
}

// Time returns the capture timestamp.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.UnixMs)
}

// Writer appends records to a trace stream.
type Writer struct {
	enc *cbor.Encoder
}

// NewWriter creates a trace writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: cbor.NewEncoder(w)}
}

// Write appends one record.
func (w *Writer) Write(rec Record) error {
	return w.enc.Encode(rec)
}

// Reader reads records from a trace stream.
type Reader struct {
	dec *cbor.Decoder
}

// NewReader creates a trace reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(r)}
}

// Read returns the next record, or io.EOF at the end of the trace.
func (r *Reader) Read() (Record, error) {
	var rec Record
	err := r.dec.Decode(&rec)
	if err != nil && errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return rec, err
}
