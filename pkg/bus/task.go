// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package bus

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cvonk/OPNpool-sub000/pkg/datalink"
	"github.com/cvonk/OPNpool-sub000/pkg/network"
	"github.com/cvonk/OPNpool-sub000/pkg/poolstate"
	"github.com/cvonk/OPNpool-sub000/pkg/rs485"
)

// ErrQueueFull is returned by SubmitCommand when the to-bus queue is full.
var ErrQueueFull = errors.New("bus: command queue full")

// Task owns the transceiver, the framer and the pool state. One Task runs
// per bus; all its fields are confined to the Run goroutine except the
// tracker (internally locked) and the channels.
type Task struct {
	cfg Config
	trx rs485.Transceiver
	dec *datalink.Decoder

	toBus   chan network.Message // integration layer -> bus
	toMain  chan network.Message // bus -> integration layer
	stateCh chan poolstate.State // published on observable change
	txq     *rs485.TxQueue       // framed packets awaiting a transmit opportunity
	held    []network.Message    // commands waiting for the controller address

	tracker *poolstate.Tracker
	state   poolstate.State

	txOpportunity bool
	dropped       uint64
}

// New creates a bus task on the given transceiver.
func New(cfg Config, trx rs485.Transceiver) *Task {
	cfg.applyDefaults()
	return &Task{
		cfg:     cfg,
		trx:     trx,
		dec:     datalink.NewDecoder(trx),
		toBus:   make(chan network.Message, cfg.ToBusCapacity),
		toMain:  make(chan network.Message, cfg.ToIntegrationCapacity),
		stateCh: make(chan poolstate.State, 1),
		txq:     rs485.NewTxQueue(cfg.TxQueueCapacity),
		tracker: poolstate.NewTracker(),
	}
}

// SubmitCommand queues a command message for transmission. The source and
// destination may be left zero; the task fills in the remote address and the
// learned controller address. Commands are held until the controller address
// is known, and go out during the next transmit opportunity.
func (t *Task) SubmitCommand(msg network.Message) error {
	select {
	case t.toBus <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Messages returns the channel of decoded messages, in receive order. By the
// time a message is readable here its state update has been applied.
func (t *Task) Messages() <-chan network.Message {
	return t.toMain
}

// StateUpdates returns a channel that carries a snapshot whenever the state
// observably changes. Only the latest snapshot is retained.
func (t *Task) StateUpdates() <-chan poolstate.State {
	return t.stateCh
}

// StateSnapshot returns a self-contained copy of the current pool state.
func (t *Task) StateSnapshot() poolstate.State {
	return t.tracker.Get()
}

// DecoderStats returns the framer's diagnostic counters.
func (t *Task) DecoderStats() datalink.Stats {
	return t.dec.Stats()
}

// Run drives the bus until ctx is cancelled. Each tick services one queued
// command, attempts one framer receive, and forwards one queued packet when
// the bus is known idle. A sibling goroutine issues the periodic version,
// heat and schedule requests.
func (t *Task) Run(ctx context.Context) {
	go t.pollLoop(ctx)

	ticker := time.NewTicker(time.Duration(t.cfg.TickMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.step()
		}
	}
}

// step is one iteration of the bus loop.
func (t *Task) step() {
	t.serviceCommands()

	pkt, err := t.dec.Receive()
	if err != nil {
		log.Printf("bus: discarded frame: %v", err)
	}
	if pkt != nil {
		t.handlePacket(pkt)
	}

	if t.txOpportunity {
		t.forwardQueued()
	}
}

// serviceCommands moves commands from the to-bus queue onto the framed
// transmit queue. Commands without a destination are held until a message
// from the controller reveals its address.
func (t *Task) serviceCommands() {
	if len(t.held) > 0 && t.controllerAddr() != datalink.AddrAll {
		held := t.held
		t.held = nil
		for _, msg := range held {
			t.queueCommand(msg)
		}
	}

	select {
	case msg := <-t.toBus:
		t.queueCommand(msg)
	default:
	}
}

func (t *Task) controllerAddr() datalink.Address {
	if !t.state.System.Addr.Valid {
		return datalink.AddrAll
	}
	return t.state.System.Addr.Value
}

func (t *Task) queueCommand(msg network.Message) {
	if msg.Src == datalink.AddrAll {
		// pretend to be a wired remote
		msg.Src = datalink.AddrRemote
	}
	if msg.Dst == datalink.AddrAll {
		addr := t.controllerAddr()
		if addr == datalink.AddrAll {
			log.Printf("bus: holding %s until the controller address is known", msg.Typ)
			t.held = append(t.held, msg)
			return
		}
		msg.Dst = addr
	}

	pkt, err := network.CreatePacket(msg)
	if err != nil {
		log.Printf("bus: cannot encode %s: %v", msg.Typ, err)
		return
	}
	if err := datalink.BuildFrame(pkt); err != nil {
		log.Printf("bus: cannot frame %s: %v", msg.Typ, err)
		return
	}

	if err := t.txq.Enqueue(pkt); err != nil {
		t.dropped++
		log.Printf("bus: tx queue full, dropping %s", msg.Typ)
	}
}

// handlePacket decodes a received packet, applies it to the state, and
// relays the message to the integration layer. A controller broadcast marks
// the following bus-idle window as a transmit opportunity.
func (t *Task) handlePacket(pkt *datalink.Packet) {
	msg, txOpp, err := network.Decode(pkt)
	if txOpp {
		t.txOpportunity = true
	}
	if err != nil {
		log.Printf("bus: undecodable packet (%s): %v", pkt.Proto, err)
		return
	}
	t.applyMessage(msg)
}

// applyMessage is the shared receive path for bus traffic and self-echoed
// transmissions: snoop the controller address, update the state, deliver the
// message, publish the snapshot on observable change.
func (t *Task) applyMessage(msg network.Message) {
	if msg.Src.IsController() {
		t.state.System.Addr = poolstate.ControllerAddr{Valid: true, Value: msg.Src}
	}

	if err := poolstate.Update(&t.state, msg); err != nil {
		log.Printf("bus: state update rejected %s: %v", msg.Typ, err)
	}

	// the state is applied before the message is visible downstream, so a
	// consumer that drains Messages and then reads the snapshot sees at
	// least the updates of the drained messages
	if t.tracker.HasChanged(&t.state) {
		t.tracker.Set(&t.state)
		select {
		case t.stateCh <- t.state:
		default:
			// drop the stale snapshot and publish the newer one
			select {
			case <-t.stateCh:
			default:
			}
			select {
			case t.stateCh <- t.state:
			default:
			}
		}
	}

	select {
	case t.toMain <- msg:
	default:
		t.dropped++
		log.Printf("bus: to-integration queue full, dropping %s", msg.Typ)
	}
}

// forwardQueued transmits one framed packet and feeds it back through the
// receive path, so a command we originated is reflected in the snapshot
// before the controller re-broadcasts it.
func (t *Task) forwardQueued() {
	pkt := t.txq.Dequeue()
	if pkt == nil {
		return
	}

	if err := t.trx.SetTxMode(true); err != nil {
		log.Printf("bus: tx mode: %v", err)
		return
	}
	if _, err := t.trx.WriteBytes(pkt.Buf.Bytes()); err != nil {
		log.Printf("bus: write: %v", err)
	}
	if err := t.trx.SetTxMode(false); err != nil {
		log.Printf("bus: rx mode: %v", err)
	}

	if msg, _, err := network.Decode(pkt); err == nil {
		t.applyMessage(msg)
	}

	t.txOpportunity = false
}
