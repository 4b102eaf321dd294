package history

import (
	"testing"

	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/aggregates"
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	"github.com/ckiev5/family-chart/infrastructure/persistence/memory"
	"github.com/ckiev5/family-chart/internal/fixtures"
	"github.com/ckiev5/family-chart/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type storeSource struct{ store *memory.Store }

func (s storeSource) HistoryGraph() *aggregates.FamilyGraph { return s.store.Data().Clone() }

type recordingNavigator struct{ mains []valueobjects.PersonID }

func (n *recordingNavigator) HistoryNavigated(id valueobjects.PersonID) { n.mains = append(n.mains, id) }

type countingMetrics struct {
	depth int
	moves map[string]int
	noops map[string]int
}

func (m *countingMetrics) HistoryCommitted(depth int) { m.depth = depth }
func (m *countingMetrics) HistoryNavigated(direction string, moved bool) {
	if m.moves == nil {
		m.moves, m.noops = map[string]int{}, map[string]int{}
	}
	if moved {
		m.moves[direction]++
	} else {
		m.noops[direction]++
	}
}

func setup(t *testing.T, opts ...Option) (*History, *memory.Store, *recordingNavigator) {
	t.Helper()
	g := fixtures.NewFamilyBuilder().Person("ann", "Ann", "F").MustBuild()
	store := memory.NewStore(g, "ann")
	nav := &recordingNavigator{}
	h := New(store, storeSource{store}, nav, opts...)
	h.Commit()
	return h, store, nav
}

func rename(t *testing.T, store *memory.Store, name string) {
	t.Helper()
	_, err := store.Data().UpdateAttributes("ann", map[string]string{entities.AttrFirstName: name})
	require.NoError(t, err)
}

func firstName(store *memory.Store) string {
	p, _ := store.Datum("ann")
	return p.Attr(entities.AttrFirstName)
}

func TestHistory_UndoRedoRoundTrip(t *testing.T) {
	h, store, nav := setup(t)
	rename(t, store, "Anna")
	h.Commit()

	require.Equal(t, 2, h.Len())
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	require.True(t, h.Undo())
	assert.Equal(t, "Ann", firstName(store))
	assert.Equal(t, []valueobjects.PersonID{"ann"}, nav.mains)

	require.True(t, h.Redo())
	assert.Equal(t, "Anna", firstName(store))

	tail, _ := h.Entry(1)
	current := store.Data().Capture(store.MainID())
	assert.Equal(t, tail.People, current.People)
}

func TestHistory_Boundaries(t *testing.T) {
	metrics := &countingMetrics{}
	h, store, nav := setup(t, WithMetrics(metrics))

	assert.False(t, h.Undo(), "nothing before the first entry")
	assert.False(t, h.Redo(), "nothing after the tail")
	assert.Empty(t, nav.mains)
	assert.Equal(t, 0, h.Cursor())

	rename(t, store, "Anna")
	h.Commit()
	h.Undo()
	assert.False(t, h.Undo())
	assert.Equal(t, 1, metrics.moves[DirectionUndo])
	assert.Equal(t, 2, metrics.noops[DirectionUndo])
	assert.Equal(t, 1, metrics.noops[DirectionRedo])
	assert.Equal(t, 2, metrics.depth)
}

func TestHistory_CommitTruncatesRedoTail(t *testing.T) {
	h, store, _ := setup(t)
	for _, name := range []string{"A1", "A2", "A3"} {
		rename(t, store, name)
		h.Commit()
	}
	require.Equal(t, 4, h.Len())

	h.Undo()
	h.Undo()
	require.Equal(t, 1, h.Cursor())
	rename(t, store, "B")
	h.Commit()

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Cursor())
	assert.False(t, h.CanRedo())
	second, _ := h.Entry(1)
	p, _ := second.Find("ann")
	assert.Equal(t, "A1", p.Attr(entities.AttrFirstName))
}

func TestHistory_ControlsFollowCursor(t *testing.T) {
	controls := new(mocks.MockHistoryControls)
	controls.On("UpdateButtons", mock.Anything).Return()
	controls.On("Destroy").Return().Once()

	h, store, _ := setup(t, WithControls(controls))
	rename(t, store, "Anna")
	h.Commit()
	h.Undo()
	h.Undo()

	var states []ports.ButtonState
	for _, c := range controls.Calls {
		if c.Method == "UpdateButtons" {
			states = append(states, c.Arguments.Get(0).(ports.ButtonState))
		}
	}
	assert.Equal(t, []ports.ButtonState{
		{CanUndo: false, CanRedo: false},
		{CanUndo: true, CanRedo: false},
		{CanUndo: false, CanRedo: true},
		{CanUndo: false, CanRedo: true},
	}, states)

	h.Destroy()
	h.Destroy()
	controls.AssertExpectations(t)
}

func TestHistory_Limit(t *testing.T) {
	h, store, _ := setup(t, WithLimit(2))
	rename(t, store, "A1")
	h.Commit()
	rename(t, store, "A2")
	h.Commit()

	assert.Equal(t, 2, h.Len())
	first, _ := h.Entry(0)
	p, _ := first.Find("ann")
	assert.Equal(t, "A1", p.Attr(entities.AttrFirstName))

	h.SetLimit(0)
	rename(t, store, "A3")
	h.Commit()
	assert.Equal(t, 3, h.Len())
}

func TestHistory_LabelsFromEvents(t *testing.T) {
	h, store, _ := setup(t)
	rename(t, store, "Anna")
	h.Commit()
	require.NoError(t, store.Data().Add(entities.NewPerson(nil)))
	h.Commit()

	assert.Equal(t, []string{"snapshot", "person.updated", "person.added"}, h.Labels())
	assert.Empty(t, store.Data().GetUncommittedEvents())
}

func TestHistory_EntriesAreIsolated(t *testing.T) {
	h, store, _ := setup(t)
	entry, _ := h.Entry(0)
	entry.People[0].Data[entities.AttrFirstName] = "changed"

	again, _ := h.Entry(0)
	p, _ := again.Find("ann")
	assert.Equal(t, "Ann", p.Attr(entities.AttrFirstName))

	rename(t, store, "Live")
	again, _ = h.Entry(0)
	p, _ = again.Find("ann")
	assert.Equal(t, "Ann", p.Attr(entities.AttrFirstName))
}
