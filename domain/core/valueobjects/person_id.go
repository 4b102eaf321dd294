package valueobjects

import (
	"strings"

	"github.com/google/uuid"
)

// PersonID identifies one person in a family graph.
// Imported datasets may carry any non-empty string; ids minted here are UUIDs.
type PersonID string

// NewPersonID creates a new random PersonID
func NewPersonID() PersonID {
	return PersonID(uuid.New().String())
}

// ParsePersonID validates an id coming from outside the graph.
func ParsePersonID(id string) (PersonID, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false
	}
	return PersonID(id), true
}

// String returns the string representation
func (id PersonID) String() string {
	return string(id)
}

// IsZero checks if the PersonID is the zero value
func (id PersonID) IsZero() bool {
	return id == ""
}

// PersonIDs is an ordered id list with set-like helpers.
type PersonIDs []PersonID

// Contains reports whether id is present.
func (ids PersonIDs) Contains(id PersonID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// With returns the list with id appended unless already present.
func (ids PersonIDs) With(id PersonID) PersonIDs {
	if ids.Contains(id) {
		return ids
	}
	return append(ids, id)
}

// Without returns the list minus every occurrence of id.
func (ids PersonIDs) Without(id PersonID) PersonIDs {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Replace swaps from for to, dropping duplicates the swap would create.
func (ids PersonIDs) Replace(from, to PersonID) PersonIDs {
	out := ids[:0:0]
	for _, v := range ids {
		if v == from {
			v = to
		}
		out = out.With(v)
	}
	return out
}

// Clone returns an independent copy.
func (ids PersonIDs) Clone() PersonIDs {
	if ids == nil {
		return nil
	}
	out := make(PersonIDs, len(ids))
	copy(out, ids)
	return out
}
