package fixtures

import (
	"fmt"

	"github.com/ckiev5/family-chart/domain/core/aggregates"
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
)

// PersonBuilder helps create test people with default values
type PersonBuilder struct {
	id    valueobjects.PersonID
	attrs map[string]string
}

func NewPersonBuilder(id string) *PersonBuilder {
	return &PersonBuilder{
		id:    valueobjects.PersonID(id),
		attrs: map[string]string{entities.AttrGender: entities.GenderMale},
	}
}

func (b *PersonBuilder) WithFirstName(name string) *PersonBuilder {
	b.attrs[entities.AttrFirstName] = name
	return b
}

func (b *PersonBuilder) WithGender(gender string) *PersonBuilder {
	b.attrs[entities.AttrGender] = gender
	return b
}

func (b *PersonBuilder) WithAttr(key, value string) *PersonBuilder {
	b.attrs[key] = value
	return b
}

func (b *PersonBuilder) Build() entities.Person {
	attrs := make(map[string]string, len(b.attrs))
	for k, v := range b.attrs {
		attrs[k] = v
	}
	return entities.Person{ID: b.id, Data: attrs}
}

// FamilyBuilder assembles a consistent graph edge by edge.
type FamilyBuilder struct {
	people []entities.Person
	index  map[valueobjects.PersonID]int
}

func NewFamilyBuilder() *FamilyBuilder {
	return &FamilyBuilder{index: make(map[valueobjects.PersonID]int)}
}

// Person adds a person; name is stored as first name.
func (b *FamilyBuilder) Person(id, name, gender string) *FamilyBuilder {
	p := NewPersonBuilder(id).WithFirstName(name).WithGender(gender).Build()
	b.index[p.ID] = len(b.people)
	b.people = append(b.people, p)
	return b
}

// Spouses links a and b as spouses.
func (b *FamilyBuilder) Spouses(a, c string) *FamilyBuilder {
	pa, pc := b.get(a), b.get(c)
	pa.Rels.Spouses = pa.Rels.Spouses.With(pc.ID)
	pc.Rels.Spouses = pc.Rels.Spouses.With(pa.ID)
	return b
}

// Child links child under parent.
func (b *FamilyBuilder) Child(parent, child string) *FamilyBuilder {
	pp, pc := b.get(parent), b.get(child)
	pp.Rels.Children = pp.Rels.Children.With(pc.ID)
	pc.Rels.Parents = pc.Rels.Parents.With(pp.ID)
	return b
}

func (b *FamilyBuilder) People() []entities.Person {
	out := make([]entities.Person, len(b.people))
	for i := range b.people {
		out[i] = *b.people[i].Clone()
	}
	return out
}

func (b *FamilyBuilder) MustBuild() *aggregates.FamilyGraph {
	g, err := aggregates.NewFamilyGraph(b.people)
	if err != nil {
		panic(fmt.Sprintf("fixtures: invalid family: %v", err))
	}
	return g
}

func (b *FamilyBuilder) get(id string) *entities.Person {
	i, ok := b.index[valueobjects.PersonID(id)]
	if !ok {
		panic("fixtures: unknown person " + id)
	}
	return &b.people[i]
}
