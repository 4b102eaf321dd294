package memory

import (
	"testing"

	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	"github.com/ckiev5/family-chart/internal/fixtures"
	"github.com/ckiev5/family-chart/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newFamily() *fixtures.FamilyBuilder {
	return fixtures.NewFamilyBuilder().
		Person("dad", "Dan", "M").
		Person("mom", "Mia", "F").
		Person("kid", "Kim", "F").
		Spouses("dad", "mom").
		Child("dad", "kid").
		Child("mom", "kid")
}

func TestNewStore_MainFallback(t *testing.T) {
	s := NewStore(newFamily().MustBuild(), "nobody")
	assert.Equal(t, valueobjects.PersonID("dad"), s.MainID())

	s = NewStore(newFamily().MustBuild(), "kid")
	main, ok := s.MainDatum()
	require.True(t, ok)
	assert.Equal(t, "Kim", main.Attr("first name"))
}

func TestStore_UpdateMainIDIgnoresUnknown(t *testing.T) {
	s := NewStore(newFamily().MustBuild(), "dad")
	s.UpdateMainID("ghost")
	assert.Equal(t, valueobjects.PersonID("dad"), s.MainID())
}

func TestStore_LastAvailableMainDatum(t *testing.T) {
	g := newFamily().MustBuild()
	s := NewStore(g, "dad")
	s.UpdateMainID("mom")
	s.UpdateMainID("kid")

	require.NoError(t, g.Remove("kid"))
	last, ok := s.LastAvailableMainDatum()
	require.True(t, ok)
	assert.Equal(t, valueobjects.PersonID("mom"), last.ID)

	mom, _ := g.Person("mom")
	mom.Unknown = true
	last, _ = s.LastAvailableMainDatum()
	assert.Equal(t, valueobjects.PersonID("dad"), last.ID, "placeholders are skipped")

	require.NoError(t, g.Remove("dad"))
	last, ok = s.LastAvailableMainDatum()
	require.True(t, ok)
	assert.Equal(t, valueobjects.PersonID("mom"), last.ID, "falls back to whoever is left")
}

func TestStore_UpdateTreeLayout(t *testing.T) {
	renderer := new(mocks.MockRenderer)
	renderer.On("Render", mock.AnythingOfType("[]*ports.TreeDatum"), ports.UpdateOptions{Initial: true}).Once()

	s := NewStore(newFamily().MustBuild(), "kid", WithRenderer(renderer))
	s.UpdateTree(ports.UpdateOptions{Initial: true})

	renderer.AssertExpectations(t)
	assert.Equal(t, 1, s.UpdateCount())

	kid, ok := s.TreeDatum("kid")
	require.True(t, ok)
	assert.Equal(t, 0, kid.Depth)
	assert.False(t, kid.Ancestry)

	dad, ok := s.TreeDatum("dad")
	require.True(t, ok)
	assert.Equal(t, -1, dad.Depth)
	assert.True(t, dad.Ancestry)
	assert.Equal(t, valueobjects.PersonID("dad"), dad.PersonID())

	mom, _ := s.TreeDatum("mom")
	assert.Equal(t, -1, mom.Depth)
	assert.NotEqual(t, dad.X, mom.X)

	tree := renderer.Calls[0].Arguments.Get(0).([]*ports.TreeDatum)
	require.Len(t, tree, 3)
	assert.Equal(t, -1, tree[0].Depth, "rows are sorted top down")
}

func TestStore_ReplaceResetsTree(t *testing.T) {
	s := NewStore(newFamily().MustBuild(), "dad")
	s.UpdateTree(ports.UpdateOptions{})
	_, ok := s.TreeDatum("kid")
	require.True(t, ok)

	s.Replace(fixtures.NewFamilyBuilder().Person("solo", "Sol", "M").MustBuild())
	_, ok = s.TreeDatum("kid")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Data().Len())

	var nilDatum *ports.TreeDatum
	assert.True(t, nilDatum.PersonID().IsZero())
}
