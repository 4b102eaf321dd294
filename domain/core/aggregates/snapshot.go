package aggregates

import (
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
)

// Snapshot is a self-contained copy of a whole family at one point in time.
// It never shares maps or slices with the graph it came from or with any
// other snapshot.
type Snapshot struct {
	MainID valueobjects.PersonID `json:"main_id" yaml:"main_id"`
	People []entities.Person     `json:"people" yaml:"people"`
	// Label summarises the change that produced the snapshot.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{MainID: s.MainID, Label: s.Label, People: make([]entities.Person, len(s.People))}
	for i := range s.People {
		out.People[i] = *s.People[i].Clone()
	}
	return out
}

// Find returns the person with id inside the snapshot.
func (s Snapshot) Find(id valueobjects.PersonID) (entities.Person, bool) {
	for _, p := range s.People {
		if p.ID == id {
			return p, true
		}
	}
	return entities.Person{}, false
}

// Clone returns an independent copy of the graph, markers included.
// Pending events are not carried over.
func (g *FamilyGraph) Clone() *FamilyGraph {
	c := newEmptyGraph()
	c.now = g.now
	c.version = g.version
	for _, id := range g.order {
		c.people[id] = g.people[id].Clone()
		c.order = append(c.order, id)
	}
	return c
}

// Export returns deep copies of all people with transient markers stripped.
func (g *FamilyGraph) Export() []entities.Person {
	out := make([]entities.Person, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.people[id].Exported())
	}
	return out
}

// Snapshot exports the graph together with the current main id.
func (g *FamilyGraph) Snapshot(mainID valueobjects.PersonID) Snapshot {
	return Snapshot{MainID: mainID, People: g.Export()}
}

// FromSnapshot rebuilds a graph from a snapshot without touching it.
func FromSnapshot(s Snapshot) (*FamilyGraph, error) {
	return NewFamilyGraph(s.People)
}

// Capture copies the graph for the undo history. Unlike Snapshot it keeps
// the ToAdd and Unknown markers so a restored graph is identical; drafted
// relatives must be removed by the caller first.
func (g *FamilyGraph) Capture(mainID valueobjects.PersonID) Snapshot {
	out := Snapshot{MainID: mainID, People: make([]entities.Person, 0, len(g.order))}
	for _, id := range g.order {
		out.People = append(out.People, *g.people[id].Clone())
	}
	return out
}
