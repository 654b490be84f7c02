package state

import (
	"bytes"
	"slices"
)

// Snapshot is a raw account state: ordered mapping of binary keys to binary
// values. The zero value is an empty snapshot ready to use.
type Snapshot struct {
	items map[string][]byte
}

// NewSnapshot returns empty Snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{items: make(map[string][]byte)}
}

// SnapshotFromMap returns Snapshot holding all items of m.
func SnapshotFromMap(m map[string][]byte) *Snapshot {
	s := NewSnapshot()
	for k, v := range m {
		s.items[k] = bytes.Clone(v)
	}
	return s
}

// Put stores value by key overwriting the previous one.
func (s *Snapshot) Put(key, value []byte) {
	if s.items == nil {
		s.items = make(map[string][]byte)
	}
	s.items[string(key)] = bytes.Clone(value)
}

// Get implements resource.Getter.
func (s *Snapshot) Get(key []byte) ([]byte, bool) {
	v, ok := s.items[string(key)]
	return v, ok
}

// Len returns number of stored items.
func (s *Snapshot) Len() int {
	return len(s.items)
}

// Iterate passes all items to f in ascending key order. Iteration stops when
// f returns false.
func (s *Snapshot) Iterate(f func(key, value []byte) bool) {
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if !f([]byte(k), s.items[k]) {
			return
		}
	}
}
