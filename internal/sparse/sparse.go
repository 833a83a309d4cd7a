// Package sparse provides sparse sets and maps over small integer universes.
//
// Both structures support O(1) insert, lookup and clear while keeping a
// dense list of members, which is what the matchers need for per-position
// state bookkeeping: clearing happens once per input character, so it must
// not cost O(states).
package sparse

import "github.com/coregx/tre/internal/conv"

// SparseSet is a set of uint32 values below a fixed capacity.
type SparseSet struct {
	sparse []uint32 // value -> index in dense
	dense  []uint32
}

// NewSparseSet creates a set that can hold values in [0, capacity).
func NewSparseSet(capacity int) *SparseSet {
	return &SparseSet{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds value and reports whether it was absent.
// Panics if value >= capacity.
func (s *SparseSet) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	s.sparse[value] = conv.IntToUint32(len(s.dense))
	s.dense = append(s.dense, value)
	return true
}

// Contains reports whether value is in the set.
func (s *SparseSet) Contains(value uint32) bool {
	if int(value) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[value]
	return int(idx) < len(s.dense) && s.dense[idx] == value
}

// Remove deletes value from the set. Removing an absent value is a no-op.
func (s *SparseSet) Remove(value uint32) {
	if !s.Contains(value) {
		return
	}
	idx := s.sparse[value]
	last := s.dense[len(s.dense)-1]
	s.dense[idx] = last
	s.sparse[last] = idx
	s.dense = s.dense[:len(s.dense)-1]
}

// Clear empties the set in O(1).
func (s *SparseSet) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of members.
func (s *SparseSet) Len() int {
	return len(s.dense)
}

// IsEmpty reports whether the set has no members.
func (s *SparseSet) IsEmpty() bool {
	return len(s.dense) == 0
}

// Capacity returns the size of the value universe.
func (s *SparseSet) Capacity() int {
	return len(s.sparse)
}

// Values returns the members in insertion order (modulo removals).
// The slice is valid until the next mutation.
func (s *SparseSet) Values() []uint32 {
	return s.dense
}

// SparseMap maps uint32 keys below a fixed capacity to int values.
// The parallel matcher keys it by TNFA state and stores the slot of that
// state in the next reach list.
type SparseMap struct {
	sparse []uint32
	keys   []uint32
	vals   []int
}

// NewSparseMap creates a map for keys in [0, capacity).
func NewSparseMap(capacity int) *SparseMap {
	return &SparseMap{
		sparse: make([]uint32, capacity),
		keys:   make([]uint32, 0, capacity),
		vals:   make([]int, 0, capacity),
	}
}

// Get returns the value stored for key.
func (m *SparseMap) Get(key uint32) (int, bool) {
	if int(key) >= len(m.sparse) {
		return 0, false
	}
	idx := m.sparse[key]
	if int(idx) < len(m.keys) && m.keys[idx] == key {
		return m.vals[idx], true
	}
	return 0, false
}

// Set stores val for key, overwriting any previous value.
// Panics if key >= capacity.
func (m *SparseMap) Set(key uint32, val int) {
	idx := m.sparse[key]
	if int(idx) < len(m.keys) && m.keys[idx] == key {
		m.vals[idx] = val
		return
	}
	m.sparse[key] = conv.IntToUint32(len(m.keys))
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, val)
}

// Clear empties the map in O(1).
func (m *SparseMap) Clear() {
	m.keys = m.keys[:0]
	m.vals = m.vals[:0]
}

// Len returns the number of keys.
func (m *SparseMap) Len() int {
	return len(m.keys)
}
