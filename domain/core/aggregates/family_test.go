package aggregates_test

import (
	"testing"

	"github.com/ckiev5/family-chart/domain/core/aggregates"
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	"github.com/ckiev5/family-chart/domain/events"
	"github.com/ckiev5/family-chart/internal/fixtures"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventTypes(g *aggregates.FamilyGraph) []string {
	var out []string
	for _, e := range g.GetUncommittedEvents() {
		out = append(out, e.GetEventType())
	}
	return out
}

func TestNewFamilyGraph(t *testing.T) {
	tests := []struct {
		name    string
		people  []entities.Person
		wantErr func(error) bool
	}{
		{
			name:   "valid family",
			people: fixtures.NewFamilyBuilder().Person("a", "Ann", "F").Person("b", "Bob", "M").Spouses("a", "b").People(),
		},
		{
			name:    "missing id",
			people:  []entities.Person{{Data: map[string]string{}}},
			wantErr: apperrors.IsValidation,
		},
		{
			name: "duplicate id",
			people: []entities.Person{
				fixtures.NewPersonBuilder("a").Build(),
				fixtures.NewPersonBuilder("a").Build(),
			},
			wantErr: apperrors.IsConflict,
		},
		{
			name: "edge not mirrored",
			people: []entities.Person{
				{ID: "a", Rels: entities.Relationships{Children: valueobjects.PersonIDs{"b"}}},
				{ID: "b"},
			},
			wantErr: apperrors.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := aggregates.NewFamilyGraph(tt.people)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), err.Error())
				assert.Nil(t, g)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.people), g.Len())
		})
	}
}

func TestFamilyGraph_NewFamilyGraphCopiesInput(t *testing.T) {
	people := fixtures.NewFamilyBuilder().Person("a", "Ann", "F").People()
	g, err := aggregates.NewFamilyGraph(people)
	require.NoError(t, err)

	people[0].Data[entities.AttrFirstName] = "changed"

	p, ok := g.Person("a")
	require.True(t, ok)
	assert.Equal(t, "Ann", p.Attr(entities.AttrFirstName))
}

func TestFamilyGraph_LinkAndUnlink(t *testing.T) {
	g := fixtures.NewFamilyBuilder().Person("a", "Ann", "F").Person("b", "Bob", "M").MustBuild()

	require.NoError(t, g.Link("a", "b", aggregates.RelationChild))

	kind, ok := g.RelationBetween("a", "b")
	assert.True(t, ok)
	assert.Equal(t, aggregates.RelationChild, kind)
	kind, ok = g.RelationBetween("b", "a")
	assert.True(t, ok)
	assert.Equal(t, aggregates.RelationParent, kind)
	require.NoError(t, g.Validate())

	removed, err := g.Unlink("b", "a")
	require.NoError(t, err)
	assert.Equal(t, aggregates.RelationParent, removed)
	_, ok = g.RelationBetween("a", "b")
	assert.False(t, ok)
	require.NoError(t, g.Validate())

	assert.Equal(t, []string{events.TypeRelationshipLinked, events.TypeRelationshipRemoved}, eventTypes(g))
}

func TestFamilyGraph_UnlinkWithoutEdge(t *testing.T) {
	g := fixtures.NewFamilyBuilder().Person("a", "Ann", "F").Person("b", "Bob", "M").MustBuild()

	_, err := g.Unlink("a", "b")

	require.Error(t, err)
	assert.True(t, apperrors.IsRelationshipNotFound(err))
}

func TestFamilyGraph_LinkValidation(t *testing.T) {
	g := fixtures.NewFamilyBuilder().Person("a", "Ann", "F").MustBuild()

	assert.True(t, apperrors.IsValidation(g.Link("a", "a", aggregates.RelationSpouse)))
	assert.True(t, apperrors.IsValidation(g.Link("a", "missing", aggregates.RelationSpouse)))
	assert.Equal(t, 0, g.Version())
}

func TestFamilyGraph_UpdateAttributes(t *testing.T) {
	g := fixtures.NewFamilyBuilder().Person("a", "Ann", "F").MustBuild()

	changed, err := g.UpdateAttributes("a", map[string]string{entities.AttrFirstName: "Anna", entities.AttrGender: "F"})
	require.NoError(t, err)
	assert.Equal(t, []string{entities.AttrFirstName}, changed)

	p, _ := g.Person("a")
	assert.Equal(t, "Anna", p.Attr(entities.AttrFirstName))

	_, err = g.UpdateAttributes("missing", nil)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFamilyGraph_ResolveLink(t *testing.T) {
	g := fixtures.NewFamilyBuilder().
		Person("a", "Ann", "F").
		Person("draft", "", "M").
		Person("bob", "Bob", "M").
		Spouses("a", "draft").
		MustBuild()
	draft, _ := g.Person("draft")
	draft.ToAdd = true

	require.NoError(t, g.ResolveLink("draft", "bob"))

	assert.False(t, g.Has("draft"))
	kind, ok := g.RelationBetween("a", "bob")
	assert.True(t, ok)
	assert.Equal(t, aggregates.RelationSpouse, kind)
	require.NoError(t, g.Validate())
}

func TestFamilyGraph_ResolveLinkRejectsPlaceholderTarget(t *testing.T) {
	g := fixtures.NewFamilyBuilder().Person("a", "Ann", "F").Person("b", "", "M").MustBuild()
	b, _ := g.Person("b")
	b.Unknown = true

	err := g.ResolveLink("a", "b")
	assert.True(t, apperrors.IsValidation(err))
	assert.True(t, apperrors.IsValidation(g.ResolveLink("a", "a")))
	assert.True(t, apperrors.IsNotFound(g.ResolveLink("a", "zzz")))
}

func TestFamilyGraph_ResolveLinkRejectsExistingRelative(t *testing.T) {
	g := fixtures.NewFamilyBuilder().
		Person("a", "Ann", "F").
		Person("b", "Bob", "M").
		Person("draft", "", "M").
		Spouses("a", "b").
		Child("a", "draft").
		MustBuild()
	draft, _ := g.Person("draft")
	draft.ToAdd = true

	err := g.ResolveLink("draft", "b")
	assert.True(t, apperrors.IsValidation(err))
	assert.True(t, g.Has("draft"))
	b, _ := g.Person("b")
	assert.Empty(t, b.Rels.Parents)

	assert.True(t, apperrors.IsValidation(g.ResolveLink("draft", "a")), "a person cannot become their own child")
	require.NoError(t, g.Validate())
}

func TestFamilyGraph_Remove(t *testing.T) {
	g := fixtures.NewFamilyBuilder().Person("a", "Ann", "F").Person("b", "Bob", "M").Child("a", "b").MustBuild()

	require.NoError(t, g.Remove("b"))

	a, _ := g.Person("a")
	assert.Empty(t, a.Rels.Children)
	assert.Equal(t, 1, g.Len())
	assert.True(t, apperrors.IsNotFound(g.Remove("b")))
}

func TestFamilyGraph_First(t *testing.T) {
	g := fixtures.NewFamilyBuilder().Person("a", "", "F").Person("b", "Bob", "M").MustBuild()
	a, _ := g.Person("a")
	a.Unknown = true

	first, ok := g.First()
	require.True(t, ok)
	assert.Equal(t, valueobjects.PersonID("b"), first.ID)
}

func TestFamilyGraph_MarkEventsAsCommitted(t *testing.T) {
	g := fixtures.NewFamilyBuilder().Person("a", "Ann", "F").MustBuild()
	require.NoError(t, g.Add(entities.NewPerson(nil)))
	require.Len(t, g.GetUncommittedEvents(), 1)

	g.MarkEventsAsCommitted()
	assert.Empty(t, g.GetUncommittedEvents())
	assert.Equal(t, 1, g.Version())
}

func TestFamilyGraph_Materialize(t *testing.T) {
	g := fixtures.NewFamilyBuilder().Person("a", "Ann", "F").MustBuild()
	draft := entities.NewPerson(nil)
	draft.NewRel = &entities.NewRelData{RelType: entities.RelSon, AnchorID: "a"}
	require.NoError(t, g.Add(draft))
	g.MarkEventsAsCommitted()

	require.NoError(t, g.Materialize(draft.ID))
	assert.False(t, draft.IsPlaceholder())
	assert.Equal(t, []string{events.TypePersonAdded}, eventTypes(g))

	g.MarkEventsAsCommitted()
	require.NoError(t, g.Materialize("a"))
	assert.Empty(t, eventTypes(g), "regular people are left alone")

	assert.True(t, apperrors.IsNotFound(g.Materialize("missing")))
}

func TestFamilyGraph_Discard(t *testing.T) {
	g := fixtures.NewFamilyBuilder().Person("a", "Ann", "F").Person("b", "Bob", "M").Spouses("a", "b").MustBuild()
	g.MarkEventsAsCommitted()

	require.NoError(t, g.Discard("b"))
	assert.False(t, g.Has("b"))
	a, _ := g.Person("a")
	assert.Empty(t, a.Rels.Spouses)
	assert.Empty(t, g.GetUncommittedEvents())
	require.NoError(t, g.Validate())

	assert.True(t, apperrors.IsNotFound(g.Discard("b")))
}
