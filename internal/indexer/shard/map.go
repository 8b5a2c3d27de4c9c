// Package shard provides hash-sharded maps. Each shard owns a
// private lock and sub-map, and a key is routed to shard xxhash(key) mod N
// for the lifetime of the map, so workers touching keys on different shards
// never contend.
package shard

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Key is the set of key types a Table can route.
type Key interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~string
}

// Number is the set of value types a Map can accumulate.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Accumulator is the contract the ranking pass needs from its relevance
// table: accumulate at a key, erase a key, and materialise a plain map.
type Accumulator[K Key, V Number] interface {
	Add(key K, delta V)
	Erase(key K)
	Snapshot() map[K]V
}

type bucket[K Key, V any] struct {
	mu     sync.Mutex
	values map[K]V
}

// Table is a hash-sharded map of arbitrary values, safe for concurrent use.
// Values are only reached through Update, under the owning shard's lock.
type Table[K Key, V any] struct {
	buckets []bucket[K, V]
}

// NewTable creates a Table with the given number of shards.
func NewTable[K Key, V any](shards int) (*Table[K, V], error) {
	if shards < 1 {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "shard count must be at least 1, got %d", shards)
	}
	t := &Table[K, V]{buckets: make([]bucket[K, V], shards)}
	for i := range t.buckets {
		t.buckets[i].values = make(map[K]V)
	}
	return t, nil
}

// Update locks the shard owning key and calls fn with exclusive access to
// the key's value, creating it as zero if absent. fn must not call back into
// the Table.
func (t *Table[K, V]) Update(key K, fn func(value *V)) {
	b := t.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()
	v := b.values[key]
	fn(&v)
	b.values[key] = v
}

// Erase removes key if present.
func (t *Table[K, V]) Erase(key K) {
	b := t.bucketFor(key)
	b.mu.Lock()
	delete(b.values, key)
	b.mu.Unlock()
}

// Snapshot merges every shard into one ordinary map. Callers must make sure
// all writers have finished; shard locks are taken only to keep the race
// detector informed.
func (t *Table[K, V]) Snapshot() map[K]V {
	result := make(map[K]V, t.Len())
	for i := range t.buckets {
		b := &t.buckets[i]
		b.mu.Lock()
		for k, v := range b.values {
			result[k] = v
		}
		b.mu.Unlock()
	}
	return result
}

// Len returns the total number of keys across all shards.
func (t *Table[K, V]) Len() int {
	n := 0
	for i := range t.buckets {
		b := &t.buckets[i]
		b.mu.Lock()
		n += len(b.values)
		b.mu.Unlock()
	}
	return n
}

// ShardCount returns the number of shards.
func (t *Table[K, V]) ShardCount() int {
	return len(t.buckets)
}

// ShardOf returns the shard index that key is routed to.
func (t *Table[K, V]) ShardOf(key K) int {
	return int(hashKey(key) % uint64(len(t.buckets)))
}

func (t *Table[K, V]) bucketFor(key K) *bucket[K, V] {
	return &t.buckets[t.ShardOf(key)]
}

// Map is an Accumulator that is safe for concurrent use.
type Map[K Key, V Number] struct {
	Table[K, V]
}

// New creates a Map with the given number of shards.
func New[K Key, V Number](shards int) (*Map[K, V], error) {
	t, err := NewTable[K, V](shards)
	if err != nil {
		return nil, err
	}
	return &Map[K, V]{Table: Table[K, V]{buckets: t.buckets}}, nil
}

// Add accumulates delta into key.
func (m *Map[K, V]) Add(key K, delta V) {
	b := m.bucketFor(key)
	b.mu.Lock()
	b.values[key] += delta
	b.mu.Unlock()
}

func hashKey[K Key](key K) uint64 {
	var buf [8]byte
	switch k := any(key).(type) {
	case string:
		return xxhash.Sum64String(k)
	case int:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case int8:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case int16:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case int32:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case int64:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case uint:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case uint8:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case uint16:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case uint32:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	case uint64:
		binary.LittleEndian.PutUint64(buf[:], k)
	case uintptr:
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
	default:
		// named key types
		return xxhash.Sum64String(fmt.Sprint(key))
	}
	return xxhash.Sum64(buf[:])
}
