// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

// Package rs485 abstracts the half-duplex RS-485 transceiver the bridge
// talks through. Two implementations are provided: a local serial port with
// RTS direction control, and a WebSocket byte tunnel for running against a
// remote serial bridge.
package rs485

import "time"

// One character time at 9600 baud 8-N-1 is ~1.042 ms on the wire. After the
// UART reports the transmit buffer empty, the last character may still be
// shifting out; holding the direction line a bit longer than one character
// time keeps the driver asserted until the stop bit clears.
const (
	DefaultBaudRate = 9600
	ReadTimeout     = 100 * time.Millisecond
	txHold          = 1500 * time.Microsecond
)

// Transceiver is the capability set the bus task needs from the transport.
type Transceiver interface {
	// Available returns the number of buffered receive bytes, or 0 when
	// the transport cannot report it.
	Available() int

	// ReadBytes fills p with up to len(p) bytes, blocking no longer than
	// the read timeout. A short count means the timeout expired.
	ReadBytes(p []byte) (int, error)

	// WriteBytes writes all of p.
	WriteBytes(p []byte) (int, error)

	// Flush blocks until previously written bytes have left the
	// transmitter.
	Flush() error

	// SetTxMode asserts (true) or releases (false) the bus driver.
	// Releasing flushes the transmitter and observes the post-send hold
	// before the driver lets go of the line.
	SetTxMode(enable bool) error

	Close() error
}
