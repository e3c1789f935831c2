// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package skb

import (
	"bytes"
	"testing"
)

func TestAllocEmpty(t *testing.T) {
	b := Alloc(16)
	if b.Len() != 0 {
		t.Errorf("fresh buffer should be empty, got len %d", b.Len())
	}
	if b.Headroom() != 0 {
		t.Errorf("fresh buffer headroom should be 0, got %d", b.Headroom())
	}
	if b.Tailroom() != 16 {
		t.Errorf("fresh buffer tailroom should be 16, got %d", b.Tailroom())
	}
}

func TestReservePutPush(t *testing.T) {
	b := Alloc(16)
	b.Reserve(4)

	payload := b.Put(3)
	copy(payload, []byte{0x01, 0x02, 0x03})

	hdr := b.Push(2)
	copy(hdr, []byte{0xAA, 0xBB})

	want := []byte{0xAA, 0xBB, 0x01, 0x02, 0x03}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("content mismatch: expected % X, got % X", want, b.Bytes())
	}
	if b.Len() != 5 {
		t.Errorf("len mismatch: expected 5, got %d", b.Len())
	}
	if b.Headroom() != 2 {
		t.Errorf("headroom mismatch: expected 2, got %d", b.Headroom())
	}
}

func TestTrimPull(t *testing.T) {
	b := Alloc(8)
	w := b.Put(6)
	copy(w, []byte{1, 2, 3, 4, 5, 6})

	b.Pull(2)
	b.Trim(1)

	want := []byte{3, 4, 5}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("content mismatch: expected % X, got % X", want, b.Bytes())
	}
}

func TestReset(t *testing.T) {
	b := Alloc(8)
	b.Reserve(2)
	b.Put(3)
	b.Reset()

	if b.Len() != 0 || b.Headroom() != 0 || b.Tailroom() != 8 {
		t.Errorf("reset did not restore pristine state: len=%d head=%d tail=%d",
			b.Len(), b.Headroom(), b.Tailroom())
	}
}

func TestBoundsPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"put past end", func() { Alloc(4).Put(5) }},
		{"push without headroom", func() { Alloc(4).Push(1) }},
		{"pull past tail", func() {
			b := Alloc(4)
			b.Put(2)
			b.Pull(3)
		}},
		{"trim past data", func() {
			b := Alloc(4)
			b.Put(2)
			b.Trim(3)
		}},
		{"reserve after put", func() {
			b := Alloc(4)
			b.Put(1)
			b.Reserve(1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic")
				}
			}()
			tt.fn()
		})
	}
}
