// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package cache

import "time"

// Deduper suppresses repeated events for a key inside a rolling window.
// The extraction trigger bus uses one per-product so bursts of new
// reviews collapse into a single extraction.
type Deduper struct {
	lru *LRU[time.Time]
}

// NewDeduper creates a deduper with the given capacity and window.
func NewDeduper(capacity int, window time.Duration) *Deduper {
	return &Deduper{lru: NewLRU[time.Time](capacity, window)}
}

// IsDuplicate reports whether key was seen inside the window. A miss
// records the key, so the first call for a key returns false and
// subsequent calls return true until the window elapses.
func (d *Deduper) IsDuplicate(key string) bool {
	_, seen := d.lru.GetOrAdd(key, time.Now())
	return seen
}

// Forget drops a key so the next event for it passes through.
func (d *Deduper) Forget(key string) {
	d.lru.Remove(key)
}

// Len returns the number of tracked keys.
func (d *Deduper) Len() int {
	return d.lru.Len()
}
