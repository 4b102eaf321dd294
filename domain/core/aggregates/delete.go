package aggregates

import (
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	"github.com/ckiev5/family-chart/domain/events"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
)

// DeleteOutcome tells the caller what Delete actually did.
type DeleteOutcome struct {
	// Removed is false when the person was kept as an unknown placeholder
	// because removing them would split their relatives apart.
	Removed bool
	// Replacement is the blank person created when the graph became empty.
	Replacement valueobjects.PersonID
}

// Delete removes a person from the family.
//
// When the person's relatives are only connected to each other through
// them, the record stays as an Unknown placeholder (attributes cleared except
// gender) so the tree does not fall apart. A graph left empty receives a
// fresh blank person so there is always something to show.
func (g *FamilyGraph) Delete(id valueobjects.PersonID) (DeleteOutcome, error) {
	p, ok := g.people[id]
	if !ok {
		return DeleteOutcome{}, apperrors.NewPersonNotFoundError(id.String())
	}

	if !g.relativesConnectedWithout(p) {
		gender := p.Gender()
		p.Data = map[string]string{}
		if gender != "" {
			p.Data[entities.AttrGender] = gender
		}
		p.ClearMarkers()
		p.Unknown = true
		g.touch(events.NewPersonUnknowned(id, g.now()))
		return DeleteOutcome{}, nil
	}

	g.detach(id)
	g.touch(events.NewPersonDeleted(id, g.now()))

	out := DeleteOutcome{Removed: true}
	if g.Len() == 0 {
		blank := entities.NewPerson(map[string]string{entities.AttrGender: entities.GenderMale})
		if err := g.Add(blank); err != nil {
			return out, err
		}
		out.Replacement = blank.ID
	}
	return out, nil
}

// relativesConnectedWithout checks whether every relative of p can still
// reach the others once p is gone. BFS over all edges, skipping p.
func (g *FamilyGraph) relativesConnectedWithout(p *entities.Person) bool {
	relatives := make(valueobjects.PersonIDs, 0)
	for _, id := range p.Rels.All() {
		if g.Has(id) {
			relatives = append(relatives, id)
		}
	}
	if len(relatives) <= 1 {
		return true
	}

	visited := map[valueobjects.PersonID]bool{p.ID: true, relatives[0]: true}
	queue := []valueobjects.PersonID{relatives[0]}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range g.people[current].Rels.All() {
			if visited[next] || !g.Has(next) {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}

	for _, id := range relatives[1:] {
		if !visited[id] {
			return false
		}
	}
	return true
}
