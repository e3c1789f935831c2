// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package rs485

import (
	"errors"

	"github.com/cvonk/OPNpool-sub000/pkg/datalink"
)

// ErrTxQueueFull is returned when a packet cannot be queued for transmission.
var ErrTxQueueFull = errors.New("rs485: tx queue full")

// TxQueue holds framed packets until the bus task sees a transmit
// opportunity. Enqueue and Dequeue never block.
type TxQueue struct {
	ch chan *datalink.Packet
}

// NewTxQueue creates a queue with the given capacity.
func NewTxQueue(capacity int) *TxQueue {
	return &TxQueue{ch: make(chan *datalink.Packet, capacity)}
}

// Enqueue adds a packet, or reports ErrTxQueueFull.
func (q *TxQueue) Enqueue(pkt *datalink.Packet) error {
	select {
	case q.ch <- pkt:
		return nil
	default:
		return ErrTxQueueFull
	}
}

// Dequeue removes the oldest packet, or returns nil when the queue is empty.
func (q *TxQueue) Dequeue() *datalink.Packet {
	select {
	case pkt := <-q.ch:
		return pkt
	default:
		return nil
	}
}

// Len returns the number of queued packets.
func (q *TxQueue) Len() int {
	return len(q.ch)
}
