package ports

import (
	"github.com/ckiev5/family-chart/domain/core/aggregates"
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
)

// Subject is anything that references a person: the person record itself
// or a positioned tree node wrapping one.
type Subject interface {
	PersonID() valueobjects.PersonID
}

// TreeDatum is a person placed in the rendered tree.
type TreeDatum struct {
	Data  *entities.Person
	Depth int
	X, Y  float64
	// Ancestry is true for nodes drawn above the main person.
	Ancestry bool
}

// PersonID implements Subject.
func (t *TreeDatum) PersonID() valueobjects.PersonID {
	if t == nil || t.Data == nil {
		return ""
	}
	return t.Data.ID
}

// UpdateOptions tunes a layout recompute.
type UpdateOptions struct {
	// Initial marks the first render of a dataset; history navigation
	// always passes false.
	Initial bool
}

// Store is the graph store facade the editor drives.
type Store interface {
	// Datum returns the live record for id.
	Datum(id valueobjects.PersonID) (*entities.Person, bool)
	// MainDatum returns the currently selected person.
	MainDatum() (*entities.Person, bool)
	// LastAvailableMainDatum returns the most recent main person still in
	// the graph, or the first person when none survived.
	LastAvailableMainDatum() (*entities.Person, bool)
	UpdateMainID(id valueobjects.PersonID)
	MainID() valueobjects.PersonID
	// Data returns the live graph. Callers mutate it in place.
	Data() *aggregates.FamilyGraph
	// Replace swaps the live graph for a rebuilt one.
	Replace(g *aggregates.FamilyGraph)
	// UpdateTree triggers a layout recompute and re-render.
	UpdateTree(opts UpdateOptions)
	// TreeDatum returns the positioned node for id from the last layout.
	TreeDatum(id valueobjects.PersonID) (*TreeDatum, bool)
}
