package valueobjects

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewPersonID(t *testing.T) {
	id := NewPersonID()

	_, err := uuid.Parse(id.String())
	assert.NoError(t, err)
	assert.False(t, id.IsZero())
	assert.NotEqual(t, id, NewPersonID())
}

func TestParsePersonID(t *testing.T) {
	id, ok := ParsePersonID("  42 ")
	assert.True(t, ok)
	assert.Equal(t, PersonID("42"), id)

	_, ok = ParsePersonID("   ")
	assert.False(t, ok)
}

func TestPersonIDs(t *testing.T) {
	ids := PersonIDs{"a", "b"}

	assert.Equal(t, PersonIDs{"a", "b"}, ids.With("a"))
	assert.Equal(t, PersonIDs{"a", "b", "c"}, ids.With("c"))
	assert.Equal(t, PersonIDs{"b"}, ids.Without("a"))
	assert.Equal(t, PersonIDs{"c", "b"}, ids.Replace("a", "c"))
	assert.Equal(t, PersonIDs{"b"}, PersonIDs{"a", "b"}.Replace("a", "b"))

	clone := ids.Clone()
	clone[0] = "z"
	assert.Equal(t, PersonID("a"), ids[0])
	assert.Nil(t, PersonIDs(nil).Clone())
}
