package entities

import (
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
)

// Well-known attribute keys.
const (
	AttrGender    = "gender"
	AttrFirstName = "first name"
	AttrLastName  = "last name"
)

// Gender values stored under AttrGender.
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// RelType names the relation a placeholder is drafted for.
type RelType string

const (
	RelFather   RelType = "father"
	RelMother   RelType = "mother"
	RelSpouse   RelType = "spouse"
	RelSon      RelType = "son"
	RelDaughter RelType = "daughter"
)

// IsParent reports whether the placeholder would become a parent of its anchor.
func (r RelType) IsParent() bool { return r == RelFather || r == RelMother }

// IsChild reports whether the placeholder would become a child of its anchor.
func (r RelType) IsChild() bool { return r == RelSon || r == RelDaughter }

// Relationships holds the ids a person is linked to. Edges are always
// recorded on both ends.
type Relationships struct {
	Parents  valueobjects.PersonIDs `json:"parents,omitempty" yaml:"parents,omitempty"`
	Spouses  valueobjects.PersonIDs `json:"spouses,omitempty" yaml:"spouses,omitempty"`
	Children valueobjects.PersonIDs `json:"children,omitempty" yaml:"children,omitempty"`
}

// All returns every linked id, parents first.
func (r Relationships) All() valueobjects.PersonIDs {
	out := make(valueobjects.PersonIDs, 0, len(r.Parents)+len(r.Spouses)+len(r.Children))
	for _, id := range r.Parents {
		out = out.With(id)
	}
	for _, id := range r.Spouses {
		out = out.With(id)
	}
	for _, id := range r.Children {
		out = out.With(id)
	}
	return out
}

// Empty reports whether no edge is recorded.
func (r Relationships) Empty() bool {
	return len(r.Parents) == 0 && len(r.Spouses) == 0 && len(r.Children) == 0
}

// NewRelData describes a drafted relative that only exists while the
// add-relative flow is running.
type NewRelData struct {
	RelType       RelType               `json:"rel_type" yaml:"rel_type"`
	Label         string                `json:"label" yaml:"label"`
	OtherParentID valueobjects.PersonID `json:"other_parent_id,omitempty" yaml:"other_parent_id,omitempty"`
	AnchorID      valueobjects.PersonID `json:"anchor_id" yaml:"anchor_id"`
}

// Person is one member of the family graph.
type Person struct {
	ID   valueobjects.PersonID `json:"id" yaml:"id"`
	Data map[string]string     `json:"data" yaml:"data"`
	Rels Relationships         `json:"rels" yaml:"rels"`

	// Transient markers. They are never part of exported data.
	ToAdd   bool        `json:"to_add,omitempty" yaml:"to_add,omitempty"`
	Unknown bool        `json:"unknown,omitempty" yaml:"unknown,omitempty"`
	NewRel  *NewRelData `json:"_new_rel_data,omitempty" yaml:"_new_rel_data,omitempty"`
}

// NewPerson creates a person with a fresh id and a copy of attrs.
func NewPerson(attrs map[string]string) *Person {
	p := &Person{ID: valueobjects.NewPersonID(), Data: make(map[string]string, len(attrs))}
	for k, v := range attrs {
		p.Data[k] = v
	}
	return p
}

// PersonID lets *Person be passed wherever a subject reference is accepted.
func (p *Person) PersonID() valueobjects.PersonID {
	if p == nil {
		return ""
	}
	return p.ID
}

// Gender returns the stored gender attribute.
func (p *Person) Gender() string { return p.Data[AttrGender] }

// Attr returns one attribute, empty when unset.
func (p *Person) Attr(key string) string { return p.Data[key] }

// IsNewRelative reports whether p is an add-relative placeholder.
func (p *Person) IsNewRelative() bool { return p.NewRel != nil }

// IsPlaceholder reports whether p carries any transient marker.
func (p *Person) IsPlaceholder() bool { return p.ToAdd || p.Unknown || p.NewRel != nil }

// RelatedTo reports whether p holds a direct edge to id.
func (p *Person) RelatedTo(id valueobjects.PersonID) bool {
	return p.Rels.Parents.Contains(id) || p.Rels.Spouses.Contains(id) || p.Rels.Children.Contains(id)
}

// SetAttributes overwrites the given attributes; empty values are removed.
func (p *Person) SetAttributes(attrs map[string]string) {
	if p.Data == nil {
		p.Data = make(map[string]string, len(attrs))
	}
	for k, v := range attrs {
		if v == "" {
			delete(p.Data, k)
			continue
		}
		p.Data[k] = v
	}
}

// ClearMarkers drops every transient marker.
func (p *Person) ClearMarkers() {
	p.ToAdd = false
	p.Unknown = false
	p.NewRel = nil
}

// Clone returns a deep copy sharing no maps or slices with p.
func (p *Person) Clone() *Person {
	c := &Person{
		ID:      p.ID,
		Data:    make(map[string]string, len(p.Data)),
		ToAdd:   p.ToAdd,
		Unknown: p.Unknown,
		Rels: Relationships{
			Parents:  p.Rels.Parents.Clone(),
			Spouses:  p.Rels.Spouses.Clone(),
			Children: p.Rels.Children.Clone(),
		},
	}
	for k, v := range p.Data {
		c.Data[k] = v
	}
	if p.NewRel != nil {
		nr := *p.NewRel
		c.NewRel = &nr
	}
	return c
}

// Exported returns a deep copy without transient markers.
func (p *Person) Exported() Person {
	c := p.Clone()
	c.ClearMarkers()
	return *c
}
