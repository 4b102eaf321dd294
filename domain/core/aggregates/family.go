package aggregates

import (
	"fmt"
	"sort"
	"time"

	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	"github.com/ckiev5/family-chart/domain/events"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
)

// RelationKind describes what the second person is to the first.
type RelationKind string

const (
	RelationParent RelationKind = "parent"
	RelationSpouse RelationKind = "spouse"
	RelationChild  RelationKind = "child"
)

// FamilyGraph is the aggregate root for one family tree.
// People are stored by id; relationships are id lists kept symmetric on
// both ends. Insertion order is preserved for deterministic iteration.
type FamilyGraph struct {
	people  map[valueobjects.PersonID]*entities.Person
	order   []valueobjects.PersonID
	version int
	events  []events.DomainEvent
	now     func() time.Time
}

// NewFamilyGraph builds a graph from people, deep-copying every record.
func NewFamilyGraph(people []entities.Person) (*FamilyGraph, error) {
	g := newEmptyGraph()
	for i := range people {
		p := people[i].Clone()
		if p.ID.IsZero() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("person at index %d has no id", i))
		}
		if _, exists := g.people[p.ID]; exists {
			return nil, apperrors.NewConflictError("duplicate person id " + p.ID.String())
		}
		if p.Data == nil {
			p.Data = map[string]string{}
		}
		g.people[p.ID] = p
		g.order = append(g.order, p.ID)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func newEmptyGraph() *FamilyGraph {
	return &FamilyGraph{
		people: make(map[valueobjects.PersonID]*entities.Person),
		now:    time.Now,
	}
}

// Len returns the number of people.
func (g *FamilyGraph) Len() int { return len(g.order) }

// Version increases with every mutation.
func (g *FamilyGraph) Version() int { return g.version }

// Person returns the live record for id.
func (g *FamilyGraph) Person(id valueobjects.PersonID) (*entities.Person, bool) {
	p, ok := g.people[id]
	return p, ok
}

// Has checks if a person exists in the graph without error
func (g *FamilyGraph) Has(id valueobjects.PersonID) bool {
	_, ok := g.people[id]
	return ok
}

// People returns the live records in insertion order.
func (g *FamilyGraph) People() []*entities.Person {
	out := make([]*entities.Person, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.people[id])
	}
	return out
}

// First returns the earliest inserted person that is not a placeholder,
// falling back to any person.
func (g *FamilyGraph) First() (*entities.Person, bool) {
	for _, id := range g.order {
		if p := g.people[id]; !p.IsPlaceholder() {
			return p, true
		}
	}
	if len(g.order) == 0 {
		return nil, false
	}
	return g.people[g.order[0]], true
}

// Add inserts a new person.
func (g *FamilyGraph) Add(p *entities.Person) error {
	if p == nil {
		return apperrors.NewValidationError("person cannot be nil")
	}
	if p.ID.IsZero() {
		return apperrors.NewValidationError("person id required")
	}
	if g.Has(p.ID) {
		return apperrors.NewConflictError("person already exists in graph: " + p.ID.String())
	}
	if p.Data == nil {
		p.Data = map[string]string{}
	}
	g.people[p.ID] = p
	g.order = append(g.order, p.ID)
	g.touch(events.NewPersonAdded(p.ID, g.now()))
	return nil
}

// UpdateAttributes overwrites attributes of id and reports the changed keys.
func (g *FamilyGraph) UpdateAttributes(id valueobjects.PersonID, attrs map[string]string) ([]string, error) {
	p, ok := g.people[id]
	if !ok {
		return nil, apperrors.NewPersonNotFoundError(id.String())
	}
	var changed []string
	for k, v := range attrs {
		if p.Data[k] != v {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	p.SetAttributes(attrs)
	g.touch(events.NewPersonUpdated(id, changed, g.now()))
	return changed, nil
}

// Materialize drops the transient markers of id, turning a draft into a
// regular person.
func (g *FamilyGraph) Materialize(id valueobjects.PersonID) error {
	p, ok := g.people[id]
	if !ok {
		return apperrors.NewPersonNotFoundError(id.String())
	}
	if !p.IsPlaceholder() {
		return nil
	}
	p.ClearMarkers()
	g.touch(events.NewPersonAdded(id, g.now()))
	return nil
}

// Discard drops a draft record and every reference to it without recording
// an event. Drafts never reached the history, so neither does their removal.
func (g *FamilyGraph) Discard(id valueobjects.PersonID) error {
	if !g.Has(id) {
		return apperrors.NewPersonNotFoundError(id.String())
	}
	g.detach(id)
	g.version++
	return nil
}

// Link records an edge where to is from's kind.
func (g *FamilyGraph) Link(from, to valueobjects.PersonID, kind RelationKind) error {
	a, okA := g.people[from]
	b, okB := g.people[to]
	if !okA || !okB {
		return apperrors.NewValidationError("both people must exist in graph")
	}
	if from == to {
		return apperrors.NewValidationError("cannot relate a person to themselves")
	}

	switch kind {
	case RelationParent:
		a.Rels.Parents = a.Rels.Parents.With(to)
		b.Rels.Children = b.Rels.Children.With(from)
	case RelationChild:
		a.Rels.Children = a.Rels.Children.With(to)
		b.Rels.Parents = b.Rels.Parents.With(from)
	case RelationSpouse:
		a.Rels.Spouses = a.Rels.Spouses.With(to)
		b.Rels.Spouses = b.Rels.Spouses.With(from)
	default:
		return apperrors.NewValidationError("unknown relation kind " + string(kind))
	}

	g.touch(events.NewRelationshipLinked(from, to, string(kind), g.now()))
	return nil
}

// RelationBetween reports what to is to from, if anything.
func (g *FamilyGraph) RelationBetween(from, to valueobjects.PersonID) (RelationKind, bool) {
	a, ok := g.people[from]
	if !ok {
		return "", false
	}
	switch {
	case a.Rels.Parents.Contains(to):
		return RelationParent, true
	case a.Rels.Spouses.Contains(to):
		return RelationSpouse, true
	case a.Rels.Children.Contains(to):
		return RelationChild, true
	}
	return "", false
}

// Unlink removes the edge between from and to on both ends.
func (g *FamilyGraph) Unlink(from, to valueobjects.PersonID) (RelationKind, error) {
	kind, ok := g.RelationBetween(from, to)
	if !ok {
		return "", apperrors.NewRelationshipNotFoundError(from.String(), to.String())
	}
	a := g.people[from]
	b, ok := g.people[to]
	if !ok {
		return "", apperrors.NewRelationshipNotFoundError(from.String(), to.String())
	}

	switch kind {
	case RelationParent:
		a.Rels.Parents = a.Rels.Parents.Without(to)
		b.Rels.Children = b.Rels.Children.Without(from)
	case RelationChild:
		a.Rels.Children = a.Rels.Children.Without(to)
		b.Rels.Parents = b.Rels.Parents.Without(from)
	case RelationSpouse:
		a.Rels.Spouses = a.Rels.Spouses.Without(to)
		b.Rels.Spouses = b.Rels.Spouses.Without(from)
	}

	g.touch(events.NewRelationshipRemoved(from, to, string(kind), g.now()))
	return kind, nil
}

// Remove deletes id and every reference to it.
func (g *FamilyGraph) Remove(id valueobjects.PersonID) error {
	if !g.Has(id) {
		return apperrors.NewPersonNotFoundError(id.String())
	}
	g.detach(id)
	g.touch(events.NewPersonDeleted(id, g.now()))
	return nil
}

// ResolveLink merges placeholder into existing: every edge pointing at the
// placeholder is re-pointed, its own edges are merged into existing, and the
// placeholder disappears.
func (g *FamilyGraph) ResolveLink(placeholder, existing valueobjects.PersonID) error {
	draft, ok := g.people[placeholder]
	if !ok {
		return apperrors.NewPersonNotFoundError(placeholder.String())
	}
	target, ok := g.people[existing]
	if !ok {
		return apperrors.NewPersonNotFoundError(existing.String())
	}
	if placeholder == existing {
		return apperrors.NewValidationError("cannot link a person to themselves")
	}
	if target.IsPlaceholder() {
		return apperrors.NewValidationError("cannot link to a placeholder person")
	}
	if err := linkConflict(draft, target); err != nil {
		return err
	}

	for _, id := range g.order {
		p := g.people[id]
		p.Rels.Parents = p.Rels.Parents.Replace(placeholder, existing)
		p.Rels.Spouses = p.Rels.Spouses.Replace(placeholder, existing)
		p.Rels.Children = p.Rels.Children.Replace(placeholder, existing)
	}
	for _, id := range draft.Rels.Parents {
		target.Rels.Parents = target.Rels.Parents.With(id)
	}
	for _, id := range draft.Rels.Spouses {
		target.Rels.Spouses = target.Rels.Spouses.With(id)
	}
	for _, id := range draft.Rels.Children {
		target.Rels.Children = target.Rels.Children.With(id)
	}
	target.Rels.Parents = target.Rels.Parents.Without(existing)
	target.Rels.Spouses = target.Rels.Spouses.Without(existing)
	target.Rels.Children = target.Rels.Children.Without(existing)

	g.dropRecord(placeholder)
	g.touch(events.NewPersonResolved(placeholder, existing, g.now()))
	return nil
}

// linkConflict rejects a merge that would relate target to itself or give it
// a second, different relationship with one of draft's relatives.
func linkConflict(draft, target *entities.Person) error {
	check := func(ids, same valueobjects.PersonIDs) error {
		for _, id := range ids {
			if id == target.ID || (target.RelatedTo(id) && !same.Contains(id)) {
				return apperrors.NewValidationError(fmt.Sprintf("%s is already related to %s", target.ID, id))
			}
		}
		return nil
	}
	if err := check(draft.Rels.Parents, target.Rels.Parents); err != nil {
		return err
	}
	if err := check(draft.Rels.Spouses, target.Rels.Spouses); err != nil {
		return err
	}
	return check(draft.Rels.Children, target.Rels.Children)
}

// Validate ensures graph invariants
func (g *FamilyGraph) Validate() error {
	for _, id := range g.order {
		p := g.people[id]
		for _, pid := range p.Rels.Parents {
			if other, ok := g.people[pid]; !ok || !other.Rels.Children.Contains(id) {
				return apperrors.NewValidationError(fmt.Sprintf("parent edge %s -> %s is not mirrored", id, pid))
			}
		}
		for _, sid := range p.Rels.Spouses {
			if other, ok := g.people[sid]; !ok || !other.Rels.Spouses.Contains(id) {
				return apperrors.NewValidationError(fmt.Sprintf("spouse edge %s -> %s is not mirrored", id, sid))
			}
		}
		for _, cid := range p.Rels.Children {
			if other, ok := g.people[cid]; !ok || !other.Rels.Parents.Contains(id) {
				return apperrors.NewValidationError(fmt.Sprintf("child edge %s -> %s is not mirrored", id, cid))
			}
		}
	}
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (g *FamilyGraph) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(g.events))
	copy(out, g.events)
	return out
}

// MarkEventsAsCommitted clears all uncommitted events
func (g *FamilyGraph) MarkEventsAsCommitted() {
	g.events = nil
}

// Private helper methods

func (g *FamilyGraph) touch(event events.DomainEvent) {
	g.version++
	g.events = append(g.events, event)
}

func (g *FamilyGraph) detach(id valueobjects.PersonID) {
	for _, other := range g.order {
		p := g.people[other]
		p.Rels.Parents = p.Rels.Parents.Without(id)
		p.Rels.Spouses = p.Rels.Spouses.Without(id)
		p.Rels.Children = p.Rels.Children.Without(id)
	}
	g.dropRecord(id)
}

func (g *FamilyGraph) dropRecord(id valueobjects.PersonID) {
	delete(g.people, id)
	for i, v := range g.order {
		if v == id {
			g.order = append(g.order[:i:i], g.order[i+1:]...)
			break
		}
	}
}
