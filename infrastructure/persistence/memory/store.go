package memory

import (
	"sort"

	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/aggregates"
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	"go.uber.org/zap"
)

// Store provides an in-memory implementation of ports.Store.
//
// It is a single-writer structure: the editor mutates the live graph
// directly and is expected to call UpdateTree afterwards.
type Store struct {
	graph       *aggregates.FamilyGraph
	mainID      valueobjects.PersonID
	mainHistory []valueobjects.PersonID
	tree        map[valueobjects.PersonID]*ports.TreeDatum
	renderer    ports.Renderer
	logger      *zap.Logger
	updates     int
}

// Option configures a Store.
type Option func(*Store)

// WithRenderer sets the renderer called on every UpdateTree.
func WithRenderer(r ports.Renderer) Option {
	return func(s *Store) { s.renderer = r }
}

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l.Named("store") }
}

// NewStore wraps g. When mainID is empty or unknown the first person is main.
func NewStore(g *aggregates.FamilyGraph, mainID valueobjects.PersonID, opts ...Option) *Store {
	s := &Store{
		graph:  g,
		tree:   make(map[valueobjects.PersonID]*ports.TreeDatum),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !g.Has(mainID) {
		if first, ok := g.First(); ok {
			mainID = first.ID
		}
	}
	s.UpdateMainID(mainID)
	return s
}

// Datum returns the live record for id.
func (s *Store) Datum(id valueobjects.PersonID) (*entities.Person, bool) {
	return s.graph.Person(id)
}

// MainDatum returns the main person.
func (s *Store) MainDatum() (*entities.Person, bool) {
	return s.graph.Person(s.mainID)
}

// MainID returns the main person id, which may no longer exist.
func (s *Store) MainID() valueobjects.PersonID {
	return s.mainID
}

// LastAvailableMainDatum walks the main-id history backwards, skipping
// placeholders.
func (s *Store) LastAvailableMainDatum() (*entities.Person, bool) {
	for i := len(s.mainHistory) - 1; i >= 0; i-- {
		if p, ok := s.graph.Person(s.mainHistory[i]); ok && !p.IsPlaceholder() {
			return p, true
		}
	}
	return s.graph.First()
}

// UpdateMainID selects id as main. Unknown ids are ignored.
func (s *Store) UpdateMainID(id valueobjects.PersonID) {
	if !s.graph.Has(id) {
		s.logger.Debug("ignoring main id not in graph", zap.String("person_id", id.String()))
		return
	}
	s.mainID = id
	if n := len(s.mainHistory); n == 0 || s.mainHistory[n-1] != id {
		s.mainHistory = append(s.mainHistory, id)
	}
}

// Data returns the live graph.
func (s *Store) Data() *aggregates.FamilyGraph {
	return s.graph
}

// Replace swaps the live graph.
func (s *Store) Replace(g *aggregates.FamilyGraph) {
	s.graph = g
	s.tree = make(map[valueobjects.PersonID]*ports.TreeDatum)
}

// UpdateTree lays the graph out in generations around the main person and
// hands the result to the renderer.
func (s *Store) UpdateTree(opts ports.UpdateOptions) {
	s.updates++
	s.tree = s.layout()

	nodes := make([]*ports.TreeDatum, 0, len(s.tree))
	for _, n := range s.tree {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Depth != nodes[j].Depth {
			return nodes[i].Depth < nodes[j].Depth
		}
		return nodes[i].X < nodes[j].X
	})

	s.logger.Debug("tree updated",
		zap.Int("nodes", len(nodes)),
		zap.Bool("initial", opts.Initial),
		zap.String("main_id", s.mainID.String()),
	)
	if s.renderer != nil {
		s.renderer.Render(nodes, opts)
	}
}

// UpdateCount reports how many times UpdateTree ran.
func (s *Store) UpdateCount() int {
	return s.updates
}

// TreeDatum returns the node for id from the last layout.
func (s *Store) TreeDatum(id valueobjects.PersonID) (*ports.TreeDatum, bool) {
	n, ok := s.tree[id]
	return n, ok
}

// layout assigns generation depths by BFS from main: parents one row up,
// children one row down, spouses on the same row. People unreachable from
// main are not placed.
func (s *Store) layout() map[valueobjects.PersonID]*ports.TreeDatum {
	out := make(map[valueobjects.PersonID]*ports.TreeDatum)
	main, ok := s.graph.Person(s.mainID)
	if !ok {
		return out
	}

	rowWidth := make(map[int]int)
	place := func(p *entities.Person, depth int) {
		out[p.ID] = &ports.TreeDatum{
			Data:     p,
			Depth:    depth,
			X:        float64(rowWidth[depth]),
			Y:        float64(depth),
			Ancestry: depth < 0,
		}
		rowWidth[depth]++
	}

	place(main, 0)
	queue := []valueobjects.PersonID{main.ID}
	for len(queue) > 0 {
		current := out[queue[0]]
		queue = queue[1:]

		steps := []struct {
			ids   valueobjects.PersonIDs
			delta int
		}{
			{current.Data.Rels.Parents, -1},
			{current.Data.Rels.Spouses, 0},
			{current.Data.Rels.Children, 1},
		}
		for _, step := range steps {
			for _, id := range step.ids {
				if _, seen := out[id]; seen {
					continue
				}
				p, ok := s.graph.Person(id)
				if !ok {
					continue
				}
				place(p, current.Depth+step.delta)
				queue = append(queue, id)
			}
		}
	}
	return out
}
