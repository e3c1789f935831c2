// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package poolstate

import "sync"

// Tracker holds the last published snapshot and detects observable change.
// The bus task is the only writer; Get hands out self-contained copies, so
// no reference to the tracked state ever crosses a task boundary.
type Tracker struct {
	mu   sync.Mutex
	last State
}

// NewTracker returns a tracker with a zeroed (all-invalid) snapshot.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Set stores a new snapshot.
func (t *Tracker) Set(s *State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = *s
}

// Get returns a copy of the stored snapshot.
func (t *Tracker) Get() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// HasChanged reports whether s differs from the stored snapshot. A change is
// observable if any field of the snapshot differs.
func (t *Tracker) HasChanged(s *State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last != *s
}
