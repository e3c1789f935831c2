// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package bus

import (
	"bytes"
	"testing"

	"github.com/cvonk/OPNpool-sub000/pkg/datalink"
	"github.com/cvonk/OPNpool-sub000/pkg/network"
	"github.com/cvonk/OPNpool-sub000/pkg/poolstate"
)

// fakeTrx is a scripted transceiver: reads drain a canned byte stream,
// writes are recorded along with the direction line transitions.
type fakeTrx struct {
	rx      []byte
	written []byte
	txMode  []bool
}

func (f *fakeTrx) Available() int { return len(f.rx) }

func (f *fakeTrx) ReadBytes(p []byte) (int, error) {
	n := copy(p, f.rx)
	f.rx = f.rx[n:]
	return n, nil
}

func (f *fakeTrx) WriteBytes(p []byte) (int, error) {
	f.written = append(f.written, p...)
	return len(p), nil
}

func (f *fakeTrx) Flush() error { return nil }

func (f *fakeTrx) SetTxMode(enable bool) error {
	f.txMode = append(f.txMode, enable)
	return nil
}

func (f *fakeTrx) Close() error { return nil }

func (f *fakeTrx) feed(frames ...[]byte) {
	for _, frame := range frames {
		f.rx = append(f.rx, frame...)
	}
}

// wireFrame builds the byte stream for a message.
func wireFrame(t *testing.T, msg network.Message) []byte {
	t.Helper()
	pkt, err := network.CreatePacket(msg)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if err := datalink.BuildFrame(pkt); err != nil {
		t.Fatalf("frame failed: %v", err)
	}
	return append([]byte(nil), pkt.Buf.Bytes()...)
}

func bcastFrame(t *testing.T, p *network.CtrlStateBcast) []byte {
	return wireFrame(t, network.Message{
		Src:     datalink.AddrSunTouchController,
		Dst:     datalink.AddrBroadcast,
		Typ:     network.MsgCtrlStateBcast,
		Payload: p,
	})
}

func newTask(trx *fakeTrx) *Task {
	return New(DefaultConfig(), trx)
}

func drain(t *Task) []network.Message {
	var msgs []network.Message
	for {
		select {
		case m := <-t.Messages():
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func TestBroadcastUpdatesStateBeforeDelivery(t *testing.T) {
	trx := &fakeTrx{}
	task := newTask(trx)

	trx.feed(bcastFrame(t, &network.CtrlStateBcast{
		Time:     network.Time{Hour: 9, Minute: 31},
		Active:   network.LoHi{Lo: 0x20},
		PoolTemp: 0x56,
	}))
	task.step()

	msgs := drain(task)
	if len(msgs) != 1 || msgs[0].Typ != network.MsgCtrlStateBcast {
		t.Fatalf("expected one broadcast message, got %v", msgs)
	}

	s := task.StateSnapshot()
	if !s.System.TOD.Time.Valid || s.System.TOD.Time.Hour != 9 {
		t.Errorf("state not applied before delivery: %+v", s.System.TOD.Time)
	}
	if !s.System.Addr.Valid || s.System.Addr.Value != datalink.AddrSunTouchController {
		t.Errorf("controller address not learned: %+v", s.System.Addr)
	}
}

func TestCommandHeldUntilControllerKnown(t *testing.T) {
	trx := &fakeTrx{}
	task := newTask(trx)

	err := task.SubmitCommand(network.Message{
		Typ:     network.MsgCtrlCircuitSet,
		Payload: &network.CtrlCircuitSet{CircuitPlus1: 6, Value: 1},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// no controller yet: the command must not hit the wire
	task.step()
	task.step()
	if len(trx.written) != 0 {
		t.Fatalf("command sent before the controller address was learned: % X", trx.written)
	}

	// a broadcast reveals the controller and opens a transmit window
	trx.feed(bcastFrame(t, &network.CtrlStateBcast{}))
	task.step() // receives broadcast, learns address
	task.step() // flushes held command, transmits it

	want := []byte{0xFF, 0x00, 0xFF, 0xA5, 0x01, 0x10, 0x21, 0x86, 0x02, 0x06, 0x01, 0x01, 0x66}
	if !bytes.Equal(trx.written, want) {
		t.Errorf("wire bytes mismatch:\nexpected % X\ngot      % X", want, trx.written)
	}
	if len(trx.txMode) != 2 || !trx.txMode[0] || trx.txMode[1] {
		t.Errorf("direction line sequence mismatch: %v", trx.txMode)
	}

	// the self-echo pass reflects the command in the snapshot
	s := task.StateSnapshot()
	if !s.Circuits[network.CircuitPool].Active.Valid || !s.Circuits[network.CircuitPool].Active.Value {
		t.Errorf("self-echo did not apply the circuit set: %+v", s.Circuits[network.CircuitPool])
	}
}

func TestNoTransmitWithoutOpportunity(t *testing.T) {
	trx := &fakeTrx{}
	task := newTask(trx)

	// learn the controller from a non-broadcast frame: no tx opportunity
	trx.feed(wireFrame(t, network.Message{
		Src:     datalink.AddrSunTouchController,
		Dst:     datalink.AddrRemote,
		Typ:     network.MsgCtrlVersionResp,
		Payload: &network.CtrlVersionResp{Major: 2, Minor: 80},
	}))
	task.step()

	if err := task.SubmitCommand(network.Message{
		Typ:     network.MsgCtrlCircuitSet,
		Payload: &network.CtrlCircuitSet{CircuitPlus1: 1, Value: 1},
	}); err != nil {
		t.Fatal(err)
	}
	task.step()
	task.step()
	if len(trx.written) != 0 {
		t.Errorf("transmitted without a transmit opportunity: % X", trx.written)
	}

	// the opportunity arrives with the next broadcast
	trx.feed(bcastFrame(t, &network.CtrlStateBcast{}))
	task.step()
	if len(trx.written) == 0 {
		t.Error("queued command not transmitted after the broadcast")
	}
}

func TestSubmitOverflow(t *testing.T) {
	task := newTask(&fakeTrx{})

	msg := network.Message{Typ: network.MsgCtrlHeatReq}
	for i := 0; i < task.cfg.ToBusCapacity; i++ {
		if err := task.SubmitCommand(msg); err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
	}
	if err := task.SubmitCommand(msg); err != ErrQueueFull {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
}

func TestUnchangedStateNotRepublished(t *testing.T) {
	trx := &fakeTrx{}
	task := newTask(trx)

	frame := bcastFrame(t, &network.CtrlStateBcast{PoolTemp: 0x56})
	trx.feed(frame)
	task.step()

	select {
	case <-task.StateUpdates():
	default:
		t.Fatal("first broadcast must publish a snapshot")
	}

	trx.feed(frame)
	task.step()

	select {
	case s := <-task.StateUpdates():
		t.Errorf("identical broadcast must not republish, got %s", s.String())
	default:
	}

	// the raw message is still delivered both times
	if msgs := drain(task); len(msgs) != 2 {
		t.Errorf("expected 2 delivered messages, got %d", len(msgs))
	}
}

func TestChecksumErrorCounted(t *testing.T) {
	trx := &fakeTrx{}
	task := newTask(trx)

	frame := bcastFrame(t, &network.CtrlStateBcast{PoolTemp: 0x56})
	frame[10] ^= 0x01
	trx.feed(frame)
	task.step()

	if msgs := drain(task); len(msgs) != 0 {
		t.Errorf("corrupt frame must not deliver messages, got %v", msgs)
	}
	if got := task.DecoderStats().ChecksumErrors; got != 1 {
		t.Errorf("checksum counter: expected 1, got %d", got)
	}
}

func TestChlorLevelRespUpdatesState(t *testing.T) {
	trx := &fakeTrx{}
	task := newTask(trx)

	trx.feed(wireFrame(t, network.Message{
		Typ:     network.MsgChlorLevelResp,
		Payload: &network.ChlorLevelResp{Salt: 0x3C, Error: 0x80},
	}))
	task.step()

	s := task.StateSnapshot()
	if !s.Chlor.Salt.Valid || s.Chlor.Salt.Value != 3000 {
		t.Errorf("salt mismatch: %+v", s.Chlor.Salt)
	}
	if !s.Chlor.Status.Valid || s.Chlor.Status.Value != poolstate.ChlorOK {
		t.Errorf("status mismatch: %+v", s.Chlor.Status)
	}
}

func TestIgnoredTrafficDelivered(t *testing.T) {
	trx := &fakeTrx{}
	task := newTask(trx)

	// IC frame addressed to neither broadcast nor chlorinator
	pkt, _ := datalink.NewPacket(datalink.ProtoIC, datalink.ChlorTypIChlorPing,
		datalink.AddrAll, datalink.Address(0x42), 0)
	if err := datalink.BuildFrame(pkt); err != nil {
		t.Fatal(err)
	}
	trx.feed(append([]byte(nil), pkt.Buf.Bytes()...))
	task.step()

	msgs := drain(task)
	if len(msgs) != 1 || msgs[0].Typ != network.MsgIgnore {
		t.Fatalf("expected one IGNORE message, got %v", msgs)
	}
	if s := task.StateSnapshot(); s != (poolstate.State{}) {
		t.Error("ignored traffic must not alter the state")
	}
}
