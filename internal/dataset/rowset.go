package dataset

import (
	"encoding/json"
	"sort"
)

// RowSet is a set of 0-based row indices. It serializes as a sorted JSON
// array so dataset files diff cleanly between versions.
type RowSet map[int]struct{}

// NewRowSet returns a set containing the given row indices.
func NewRowSet(rows ...int) RowSet {
	s := make(RowSet, len(rows))
	for _, r := range rows {
		s[r] = struct{}{}
	}
	return s
}

// Add inserts a row index into the set.
func (s RowSet) Add(row int) {
	s[row] = struct{}{}
}

// Has reports whether the row index is in the set.
func (s RowSet) Has(row int) bool {
	_, ok := s[row]
	return ok
}

// Len returns the number of row indices in the set.
func (s RowSet) Len() int {
	return len(s)
}

// Clear removes all row indices, keeping the allocated map.
func (s RowSet) Clear() {
	for r := range s {
		delete(s, r)
	}
}

// Sorted returns the row indices in ascending order.
func (s RowSet) Sorted() []int {
	rows := make([]int, 0, len(s))
	for r := range s {
		rows = append(rows, r)
	}
	sort.Ints(rows)
	return rows
}

// Equal reports whether both sets contain exactly the same row indices.
func (s RowSet) Equal(other RowSet) bool {
	if len(s) != len(other) {
		return false
	}
	for r := range s {
		if !other.Has(r) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array.
func (s RowSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of row indices.
func (s *RowSet) UnmarshalJSON(data []byte) error {
	var rows []int
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	*s = NewRowSet(rows...)
	return nil
}
