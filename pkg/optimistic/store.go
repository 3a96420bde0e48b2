// Package optimistic keeps the client-visible state of toggleable relations and
// reconciles speculative writes with the server's answer.
package optimistic

import (
	"sort"
	"sync"
)

// Key names one relation instance, e.g. "favorite:user42:game7".
type Key string

type entry struct {
	value   any
	version uint64
}

// Snapshot is the state of a key captured right before an optimistic write.
type Snapshot struct {
	key     Key
	prior   any
	present bool
	version uint64 // version of the optimistic write
	epoch   uint64
}

// Key returns the key the snapshot was taken for.
func (s Snapshot) Key() Key { return s.key }

// Prior returns the value the key held before the optimistic write.
func (s Snapshot) Prior() (any, bool) { return s.prior, s.present }

// Store is a concurrency-safe map of relation state. Subscribers are told about
// every key whose value changes.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]entry
	written map[Key]uint64 // last write per key, deletions included
	version uint64
	epoch   uint64

	subMu   sync.RWMutex
	subs    map[int]func(Key)
	nextSub int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entries: make(map[Key]entry),
		written: make(map[Key]uint64),
		subs:    make(map[int]func(Key)),
	}
}

// Get returns the current value of key.
func (s *Store) Get(key Key) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e.value, ok
}

// Value returns the current value of key as a V. A missing key or a value of
// another type yields the zero V and false.
func Value[V any](s *Store, key Key) (V, bool) {
	raw, ok := s.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	v, ok := raw.(V)
	return v, ok
}

// Keys returns every key currently held, sorted.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Seed stores a value loaded from the server.
func (s *Store) Seed(key Key, value any) {
	s.set(key, value)
}

// Mark is a position in the store's write history, taken before a load starts.
type Mark struct {
	version uint64
	epoch   uint64
}

// Mark returns the current position for a later SeedSince.
func (s *Store) Mark() Mark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Mark{version: s.version, epoch: s.epoch}
}

// SeedSince stores a value loaded from the server unless key was written, or
// the store Reset, after m was taken. It reports whether the value was stored.
func (s *Store) SeedSince(m Mark, key Key, value any) bool {
	s.mu.Lock()
	if s.epoch != m.epoch || s.written[key] > m.version {
		s.mu.Unlock()
		return false
	}
	s.write(key, value)
	s.mu.Unlock()

	s.notify(key)
	return true
}

// Confirm overwrites key with the authoritative value reported by the server.
func (s *Store) Confirm(key Key, value any) {
	s.set(key, value)
}

// Update writes value optimistically and returns the snapshot needed to undo it.
func (s *Store) Update(key Key, value any) Snapshot {
	s.mu.Lock()
	prev, present := s.entries[key]
	s.write(key, value)
	snap := Snapshot{key: key, prior: prev.value, present: present, version: s.version, epoch: s.epoch}
	s.mu.Unlock()

	s.notify(key)
	return snap
}

// Rollback restores the value held before snap's optimistic write. It only acts
// while the key still holds that write, so a second call is a no-op, as is a
// call after the key was confirmed, reseeded or the store was Reset. It reports
// whether the value changed.
func (s *Store) Rollback(snap Snapshot) bool {
	s.mu.Lock()
	cur, ok := s.entries[snap.key]
	if !ok || cur.version != snap.version || s.epoch != snap.epoch {
		s.mu.Unlock()
		return false
	}
	if snap.present {
		s.write(snap.key, snap.prior)
	} else {
		s.version++
		delete(s.entries, snap.key)
		s.written[snap.key] = s.version
	}
	s.mu.Unlock()

	s.notify(snap.key)
	return true
}

// confirmSnapshot writes value for snap's key unless the store was Reset since
// the snapshot was taken.
func (s *Store) confirmSnapshot(snap Snapshot, value any) bool {
	s.mu.Lock()
	if s.epoch != snap.epoch {
		s.mu.Unlock()
		return false
	}
	s.write(snap.key, value)
	s.mu.Unlock()

	s.notify(snap.key)
	return true
}

// Epoch returns the liveness token; it changes on every Reset.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Live reports whether snap was taken in the current epoch.
func (s *Store) Live(snap Snapshot) bool {
	return s.Epoch() == snap.epoch
}

// Reset drops every value and starts a new epoch. Responses to operations begun
// before the Reset are discarded.
func (s *Store) Reset() {
	s.mu.Lock()
	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	s.entries = make(map[Key]entry)
	s.written = make(map[Key]uint64)
	s.epoch++
	s.mu.Unlock()

	for _, k := range keys {
		s.notify(k)
	}
}

// Subscribe registers fn to be called with each key whose value changes. fn runs
// on the writer's goroutine after the write is visible. The returned func
// unsubscribes.
func (s *Store) Subscribe(fn func(Key)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) set(key Key, value any) {
	s.mu.Lock()
	s.write(key, value)
	s.mu.Unlock()

	s.notify(key)
}

// write stores value under a new version. s.mu must be held.
func (s *Store) write(key Key, value any) {
	s.version++
	s.entries[key] = entry{value: value, version: s.version}
	s.written[key] = s.version
}

func (s *Store) notify(key Key) {
	s.subMu.RLock()
	fns := make([]func(Key), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		fn(key)
	}
}
