package forms

import (
	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/entities"
)

// PersonPredicate answers a permission question about one person.
type PersonPredicate func(p *entities.Person) bool

// Callbacks notify the hosting application.
type Callbacks struct {
	OnChange       func()
	OnSubmit       func(p entities.Person, sub ports.Submission)
	OnDelete       func(p entities.Person)
	OnFormCreation func(form ports.Form, d ports.FormDescriptor)
}

// Settings is the form configuration the editor setters write to.
type Settings struct {
	Fields    []ports.Field
	Fixed     bool
	Editable  bool
	EditFirst bool

	CanEdit   PersonPredicate
	CanDelete PersonPredicate
	CanAdd    PersonPredicate

	LinkExisting ports.LinkExistingConfig
	Builder      ports.FormBuilder
	Callbacks    Callbacks
}

// DefaultFields are shown when none are configured.
func DefaultFields() []ports.Field {
	return []ports.Field{
		{ID: entities.AttrFirstName, Label: "first name", Type: "text"},
		{ID: entities.AttrLastName, Label: "last name", Type: "text"},
		{ID: "birthday", Label: "birthday", Type: "text"},
		{ID: "avatar", Label: "avatar", Type: "text"},
	}
}

// DefaultSettings returns an editable, fixed configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Fields:   DefaultFields(),
		Fixed:    true,
		Editable: true,
		Builder:  PassthroughBuilder{},
	}
}

func allow(pred PersonPredicate, p *entities.Person) bool {
	return pred == nil || pred(p)
}

// PassthroughBuilder returns the descriptor itself as the form. Hosts that
// render forms elsewhere (a terminal, a test) use it as is.
type PassthroughBuilder struct{}

func (PassthroughBuilder) BuildEditForm(d ports.FormDescriptor) (ports.Form, error) { return d, nil }
func (PassthroughBuilder) BuildNewForm(d ports.FormDescriptor) (ports.Form, error)  { return d, nil }
