// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package hash

import (
	"fmt"
	"strings"
)

// Hasher provides a generic definition of a hashing function suitable for use
// with Map.  Equality is included because hashcodes are not assumed to
// uniquely identify the data in question; colliding keys are kept apart in
// buckets.
type Hasher[T any] interface {
	// Check whether two items are equal (or not).
	Equals(T) bool
	// Return a suitable hashcode.
	Hash() uint64
}

// Map defines a generic map implementation backed by a builtin map of
// hashcodes to buckets.  This is a true hashtable in that collisions are
// handled gracefully, rather than colliding keys simply overwriting each
// other.
type Map[K Hasher[K], V any] struct {
	// buckets maps hashcodes to *buckets* of key-value pairs.
	buckets map[uint64]mapBucket[K, V]
}

// NewMap creates a new Map with a given underlying capacity.
func NewMap[K Hasher[K], V any](size uint) *Map[K, V] {
	buckets := make(map[uint64]mapBucket[K, V], size)
	return &Map[K, V]{buckets}
}

// Size returns the number of unique keys stored in this map.
//
//nolint:revive
func (p *Map[K, V]) Size() uint {
	count := uint(0)
	for _, b := range p.buckets {
		count += b.size()
	}

	return count
}

// Insert a new item into this map, returning true if the key was already
// present (in which case its value is replaced) and false otherwise.
//
//nolint:revive
func (p *Map[K, V]) Insert(key K, value V) bool {
	var b mapBucket[K, V]
	// Compute key's hashcode
	hash := key.Hash()
	// Lookup existing bucket
	b = p.buckets[hash]
	// Insert new item
	r := b.insert(key, value)
	// Update map
	p.buckets[hash] = b
	// Done
	return r
}

// ContainsKey checks whether the given key is contained within this map, or not.
//
//nolint:revive
func (p *Map[K, V]) ContainsKey(key K) bool {
	hash := key.Hash()

	if bucket, ok := p.buckets[hash]; ok {
		return bucket.containsKey(key)
	}

	return false
}

// Get value associated with a given key, or return false otherwise.
//
//nolint:revive
func (p *Map[K, V]) Get(key K) (V, bool) {
	var (
		empty V
		hash  = key.Hash()
	)
	// Look for bucket
	if bucket, ok := p.buckets[hash]; ok {
		return bucket.get(key)
	}

	return empty, false
}

// Remove the entry associated with a given key, returning true if an entry
// was actually removed.  Other entries colliding on the same hashcode are
// unaffected.
//
//nolint:revive
func (p *Map[K, V]) Remove(key K) bool {
	hash := key.Hash()
	// Look for bucket
	bucket, ok := p.buckets[hash]
	if !ok {
		return false
	}
	// Attempt removal
	removed := bucket.remove(key)
	// Update (or drop) bucket
	if bucket.size() == 0 {
		delete(p.buckets, hash)
	} else {
		p.buckets[hash] = bucket
	}
	//
	return removed
}

// Clear removes all entries from this map, leaving it empty but usable.
//
//nolint:revive
func (p *Map[K, V]) Clear() {
	p.buckets = make(map[uint64]mapBucket[K, V])
}

// Keys returns the set of keys stored in this map.  Observe that the order in
// which keys are returned is unspecified.
//
//nolint:revive
func (p *Map[K, V]) Keys() []K {
	keys := make([]K, 0, p.Size())
	//
	for _, b := range p.buckets {
		for _, e := range b.entries {
			keys = append(keys, e.key)
		}
	}
	//
	return keys
}

//nolint:revive
func (p *Map[K, V]) String() string {
	var r strings.Builder
	//
	first := true
	// Write opening brace
	r.WriteString("{")
	// Iterate all buckets
	for _, b := range p.buckets {
		// Iterate all items in bucket
		for _, e := range b.entries {
			if !first {
				r.WriteString(",")
			}

			first = false

			r.WriteString(fmt.Sprintf("%s:=%s", any(e.key), any(e.value)))
		}
	}
	// Write closing brace
	r.WriteString("}")
	// Done
	return r.String()
}

// ============================================================================
// Bucket
// ============================================================================

type mapEntry[K Hasher[K], V any] struct {
	key   K
	value V
}

type mapBucket[K Hasher[K], V any] struct {
	entries []mapEntry[K, V]
}

// Get the number of items in this bucket.
//
//nolint:revive
func (b *mapBucket[K, V]) size() uint {
	return uint(len(b.entries))
}

// Insert a new item into this bucket.
//
//nolint:revive
func (b *mapBucket[K, V]) insert(key K, value V) bool {
	// Determine whether key already present
	for i, e := range b.entries {
		if key.Equals(e.key) {
			b.entries[i].value = value
			return true
		}
	}
	// Append item
	b.entries = append(b.entries, mapEntry[K, V]{key, value})
	// Item not present
	return false
}

// Check whether this bucket contains a given key, or not.
//
//nolint:revive
func (b *mapBucket[K, V]) containsKey(key K) bool {
	for _, e := range b.entries {
		if key.Equals(e.key) {
			return true
		}
	}

	return false
}

// Get value associated with a given key, or return false otherwise.
//
//nolint:revive
func (b *mapBucket[K, V]) get(key K) (V, bool) {
	var empty V

	for _, e := range b.entries {
		if key.Equals(e.key) {
			return e.value, true
		}
	}

	return empty, false
}

// Remove the entry for a given key, retaining the order of all other entries.
//
//nolint:revive
func (b *mapBucket[K, V]) remove(key K) bool {
	for i, e := range b.entries {
		if key.Equals(e.key) {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return true
		}
	}

	return false
}
