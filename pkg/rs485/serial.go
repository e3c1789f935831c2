// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package rs485

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// SerialPort drives a local RS-485 adapter through a serial port. The RTS
// line controls the transceiver direction (DE/RE*); adapters with automatic
// direction control simply ignore it.
type SerialPort struct {
	port serial.Port
}

// OpenSerial opens the named port at the given baud rate, 8-N-1, and leaves
// the transceiver in receive mode.
func OpenSerial(portName string, baudRate int) (*SerialPort, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}

	s := &SerialPort{port: port}
	if err := s.SetTxMode(false); err != nil {
		port.Close()
		return nil, err
	}
	return s, nil
}

// Available always returns 0: the serial driver does not report its buffer
// level portably. The framer relies on timeout-bounded reads instead.
func (s *SerialPort) Available() int {
	return 0
}

// ReadBytes reads up to len(p) bytes, returning early when the port's read
// timeout expires.
func (s *SerialPort) ReadBytes(p []byte) (int, error) {
	got := 0
	for got < len(p) {
		n, err := s.port.Read(p[got:])
		if err != nil {
			return got, err
		}
		if n == 0 {
			// read timeout
			return got, nil
		}
		got += n
	}
	return got, nil
}

// WriteBytes writes all of p to the port.
func (s *SerialPort) WriteBytes(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := s.port.Write(p[written:])
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// Flush waits until the transmit buffer has drained.
func (s *SerialPort) Flush() error {
	return s.port.Drain()
}

// SetTxMode switches the transceiver direction. On release it first drains
// the transmitter, then holds for slightly more than one character time:
// the UART signals empty one character early.
func (s *SerialPort) SetTxMode(enable bool) error {
	if enable {
		return s.port.SetRTS(true)
	}
	if err := s.Flush(); err != nil {
		return err
	}
	time.Sleep(txHold)
	return s.port.SetRTS(false)
}

// Close releases the port.
func (s *SerialPort) Close() error {
	return s.port.Close()
}
