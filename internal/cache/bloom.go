// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package cache

import (
	"hash/fnv"
	"math"
	"sync"
	"time"
)

// BloomFilter is a thread-safe Bloom filter. Test never returns a false
// negative, so a negative answer means the key was definitely not added.
//
// The ingestion pipeline uses it as a cheap prefilter in front of the
// database's review dedup constraint:
//
//	if !seen.Test(key) {
//	    // definitely new, insert
//	}
type BloomFilter struct {
	mu      sync.RWMutex
	bits    []uint64
	size    uint64
	hashFns int
	count   int
}

// NewBloomFilter sizes a filter for the expected number of items and a
// target false positive rate.
func NewBloomFilter(expectedItems int, falsePositiveRate float64) *BloomFilter {
	if expectedItems <= 0 {
		expectedItems = 10000
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.01
	}

	// m = -n*ln(p)/ln(2)^2, k = (m/n)*ln(2)
	ln2 := math.Ln2
	m := int(-float64(expectedItems) * math.Log(falsePositiveRate) / (ln2 * ln2))
	if m < 64 {
		m = 64
	}
	k := int(float64(m) / float64(expectedItems) * ln2)
	if k < 1 {
		k = 1
	}
	if k > 10 {
		k = 10
	}

	words := (m + 63) / 64
	return &BloomFilter{
		bits:    make([]uint64, words),
		size:    uint64(words * 64),
		hashFns: k,
	}
}

// Add records a key.
func (bf *BloomFilter) Add(key string) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	for _, h := range bf.hashes(key) {
		idx := h % bf.size
		bf.bits[idx/64] |= 1 << (idx % 64)
	}
	bf.count++
}

// Test reports whether a key might have been added. False means
// definitely not.
func (bf *BloomFilter) Test(key string) bool {
	bf.mu.RLock()
	defer bf.mu.RUnlock()

	for _, h := range bf.hashes(key) {
		idx := h % bf.size
		if bf.bits[idx/64]&(1<<(idx%64)) == 0 {
			return false
		}
	}
	return true
}

// Clear resets the filter.
func (bf *BloomFilter) Clear() {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	for i := range bf.bits {
		bf.bits[i] = 0
	}
	bf.count = 0
}

// Count returns the number of Add calls, duplicates included.
func (bf *BloomFilter) Count() int {
	bf.mu.RLock()
	defer bf.mu.RUnlock()
	return bf.count
}

// hashes derives k indexes via double hashing: h(i) = h1 + i*h2.
func (bf *BloomFilter) hashes(key string) []uint64 {
	h1 := fnv.New64a()
	h1.Write([]byte(key))
	hash1 := h1.Sum64()

	h2 := fnv.New64()
	h2.Write([]byte(key))
	h2.Write([]byte{0xff})
	hash2 := h2.Sum64()

	out := make([]uint64, bf.hashFns)
	for i := range out {
		out[i] = hash1 + uint64(i)*hash2
	}
	return out
}

// SeenFilter combines a Bloom filter with an exact LRU so the ingestion
// worker can skip reviews it has stored recently without a database
// round trip. The filter answer is advisory; the database constraint
// stays authoritative.
type SeenFilter struct {
	bloom *BloomFilter
	exact *LRU[time.Time]
}

// NewSeenFilter creates a filter sized for the expected review volume.
func NewSeenFilter(expectedItems int, ttl time.Duration) *SeenFilter {
	return &SeenFilter{
		bloom: NewBloomFilter(expectedItems, 0.01),
		exact: NewLRU[time.Time](expectedItems, ttl),
	}
}

// Seen reports whether the key was recorded recently. A bloom negative
// short-circuits; a bloom positive is confirmed against the exact LRU
// to rule out false positives.
func (s *SeenFilter) Seen(key string) bool {
	if !s.bloom.Test(key) {
		return false
	}
	return s.exact.Contains(key)
}

// Record marks a key as stored.
func (s *SeenFilter) Record(key string) {
	s.bloom.Add(key)
	s.exact.Add(key, time.Now())
}
