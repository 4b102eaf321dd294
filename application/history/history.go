// Package history keeps a linear list of graph snapshots and moves the
// editor between them.
package history

import (
	"sort"
	"strings"

	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/aggregates"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	"go.uber.org/zap"
)

// Source supplies the graph to record, with any drafts already removed.
type Source interface {
	HistoryGraph() *aggregates.FamilyGraph
}

// Navigator is told when the store was rewound or replayed so it can bring
// the rest of the editor in line.
type Navigator interface {
	HistoryNavigated(mainID valueobjects.PersonID)
}

// Metrics observes history activity.
type Metrics interface {
	HistoryCommitted(depth int)
	HistoryNavigated(direction string, moved bool)
}

// Direction names for metrics.
const (
	DirectionUndo = "undo"
	DirectionRedo = "redo"
)

// History is the undo/redo stack. Entries are only appended or truncated.
type History struct {
	store     ports.Store
	source    Source
	navigator Navigator
	controls  ports.HistoryControls
	metrics   Metrics
	logger    *zap.Logger
	limit     int

	entries []aggregates.Snapshot
	cursor  int
}

// Option configures History.
type Option func(*History)

// WithControls binds undo/redo buttons.
func WithControls(c ports.HistoryControls) Option {
	return func(h *History) { h.controls = c }
}

// WithMetrics reports commits and navigation.
func WithMetrics(m Metrics) Option {
	return func(h *History) { h.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *History) { h.logger = l.Named("history") }
}

// WithLimit caps the number of entries; the oldest go first. Zero means
// unlimited.
func WithLimit(n int) Option {
	return func(h *History) {
		if n >= 0 {
			h.limit = n
		}
	}
}

// New creates an empty history.
func New(store ports.Store, source Source, navigator Navigator, opts ...Option) *History {
	h := &History{
		store:     store,
		source:    source,
		navigator: navigator,
		logger:    zap.NewNop(),
		cursor:    -1,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetLimit changes the capacity. Existing entries beyond it are dropped
// on the next commit.
func (h *History) SetLimit(n int) {
	if n >= 0 {
		h.limit = n
	}
}

// Commit records the current graph after the cursor, discarding any redo
// entries.
func (h *History) Commit() {
	g := h.source.HistoryGraph()
	snap := g.Capture(h.store.MainID())
	snap.Label = h.label()

	h.entries = append(h.entries[:h.cursor+1], snap)
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = append([]aggregates.Snapshot(nil), h.entries[drop:]...)
	}
	h.cursor = len(h.entries) - 1

	h.logger.Debug("history committed",
		zap.Int("cursor", h.cursor),
		zap.Int("entries", len(h.entries)),
		zap.String("label", snap.Label),
	)
	if h.metrics != nil {
		h.metrics.HistoryCommitted(len(h.entries))
	}
	h.refresh()
}

// Undo steps back one entry. It reports false when already at the start.
func (h *History) Undo() bool {
	if !h.CanUndo() {
		h.observe(DirectionUndo, false)
		h.refresh()
		return false
	}
	h.cursor--
	h.restore(DirectionUndo)
	return true
}

// Redo steps forward one entry. It reports false when already at the tail.
func (h *History) Redo() bool {
	if !h.CanRedo() {
		h.observe(DirectionRedo, false)
		h.refresh()
		return false
	}
	h.cursor++
	h.restore(DirectionRedo)
	return true
}

// CanUndo reports whether an earlier entry exists.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether a later entry exists.
func (h *History) CanRedo() bool { return h.cursor >= 0 && h.cursor < len(h.entries)-1 }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the current position, -1 when empty.
func (h *History) Cursor() int { return h.cursor }

// Entry returns a copy of entry i.
func (h *History) Entry(i int) (aggregates.Snapshot, bool) {
	if i < 0 || i >= len(h.entries) {
		return aggregates.Snapshot{}, false
	}
	return h.entries[i].Clone(), true
}

// Labels lists the entry labels, oldest first.
func (h *History) Labels() []string {
	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Label
	}
	return out
}

// Destroy releases the controls.
func (h *History) Destroy() {
	if h.controls != nil {
		h.controls.Destroy()
		h.controls = nil
	}
}

func (h *History) restore(direction string) {
	snap := h.entries[h.cursor].Clone()
	g, err := aggregates.FromSnapshot(snap)
	if err != nil {
		// Entries are built from validated graphs.
		h.logger.Error("history entry cannot be restored", zap.Int("cursor", h.cursor), zap.Error(err))
		return
	}

	h.store.Replace(g)
	h.store.UpdateMainID(snap.MainID)
	h.logger.Debug("history restored",
		zap.String("direction", direction),
		zap.Int("cursor", h.cursor),
		zap.String("main_id", snap.MainID.String()),
	)
	h.observe(direction, true)
	h.refresh()
	if h.navigator != nil {
		h.navigator.HistoryNavigated(snap.MainID)
	}
}

// label names the entry after the events raised since the last commit.
func (h *History) label() string {
	g := h.store.Data()
	seen := make(map[string]bool)
	var types []string
	for _, e := range g.GetUncommittedEvents() {
		if t := e.GetEventType(); !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	g.MarkEventsAsCommitted()
	sort.Strings(types)
	if len(types) == 0 {
		return "snapshot"
	}
	return strings.Join(types, ",")
}

func (h *History) observe(direction string, moved bool) {
	if h.metrics != nil {
		h.metrics.HistoryNavigated(direction, moved)
	}
}

func (h *History) refresh() {
	if h.controls != nil {
		h.controls.UpdateButtons(ports.ButtonState{CanUndo: h.CanUndo(), CanRedo: h.CanRedo()})
	}
}
