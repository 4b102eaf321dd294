package ports

import (
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
)

// FormKind selects which form flavour is built for a person.
type FormKind string

const (
	FormEdit         FormKind = "edit"
	FormNewRelative  FormKind = "new_relative"
	FormLinkExisting FormKind = "link_existing"
)

// ModeKind names the relationship mode a form session runs under.
type ModeKind string

const (
	ModeNone           ModeKind = ""
	ModeAddRelative    ModeKind = "add_relative"
	ModeRemoveRelative ModeKind = "remove_relative"
)

// Field describes one editable attribute.
type Field struct {
	ID      string   `json:"id" yaml:"id" validate:"required"`
	Label   string   `json:"label" yaml:"label"`
	Type    string   `json:"type" yaml:"type" validate:"omitempty,oneof=text textarea select date number"`
	Options []string `json:"options,omitempty" yaml:"options,omitempty" validate:"required_if=Type select"`
}

// FieldValue pairs a field with the person's current value.
type FieldValue struct {
	Field
	Value string
}

// LinkExistingConfig controls the "link an existing person" option of new
// relative and placeholder forms.
type LinkExistingConfig struct {
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	Title        string `json:"title" yaml:"title" validate:"required_if=Enabled true"`
	LinkRelLabel string `json:"link_rel_label" yaml:"link_rel_label" validate:"required_if=Enabled true"`
}

// LinkCandidate is one person offered for linking.
type LinkCandidate struct {
	ID    valueobjects.PersonID
	Label string
}

// Submission is what a form hands back on submit.
type Submission struct {
	Values map[string]string
	// LinkRelID resolves a placeholder onto an existing person.
	LinkRelID valueobjects.PersonID
	Delete    bool
}

// FormDescriptor carries everything a form builder needs. The hooks route
// back into the editor; the builder only wires them to its widgets.
type FormDescriptor struct {
	Kind   FormKind
	Mode   ModeKind
	Person entities.Person
	Title  string
	Fields []FieldValue

	Editable          bool
	EditFirst         bool
	CanDelete         bool
	CanAddRelative    bool
	CanRemoveRelative bool

	LinkExisting *LinkExistingConfig
	Candidates   []LinkCandidate

	Submit         func(Submission) error
	Cancel         func() error
	AddRelative    func() error
	RemoveRelative func() error
}

// Form is a rendered form, opaque to the editor.
type Form any

// FormBuilder turns descriptors into forms.
type FormBuilder interface {
	BuildEditForm(d FormDescriptor) (Form, error)
	BuildNewForm(d FormDescriptor) (Form, error)
}

// FormContainer hosts at most one form at a time.
type FormContainer interface {
	Populate(f Form)
	Close()
	Destroy()
}

// ConfirmPrompt is shown by the modal collaborator.
type ConfirmPrompt struct {
	Title   string
	Message string
}

// Modal asks the user to confirm. It returns immediately; exactly one of the
// callbacks runs later, when the user answers.
type Modal interface {
	Confirm(prompt ConfirmPrompt, onAccept, onReject func())
}

// ButtonState is the enabled state of the undo/redo affordances.
type ButtonState struct {
	CanUndo bool
	CanRedo bool
}

// HistoryControls renders the undo/redo affordances.
type HistoryControls interface {
	UpdateButtons(state ButtonState)
	Destroy()
}

// Renderer draws a laid-out tree.
type Renderer interface {
	Render(tree []*TreeDatum, opts UpdateOptions)
}

// AddRelLabels are the captions of the placeholder cards drafted by the
// add-relative mode.
type AddRelLabels struct {
	Father   string `json:"father" yaml:"father" validate:"required"`
	Mother   string `json:"mother" yaml:"mother" validate:"required"`
	Spouse   string `json:"spouse" yaml:"spouse" validate:"required"`
	Son      string `json:"son" yaml:"son" validate:"required"`
	Daughter string `json:"daughter" yaml:"daughter" validate:"required"`
}

// DefaultAddRelLabels returns the built-in captions.
func DefaultAddRelLabels() AddRelLabels {
	return AddRelLabels{
		Father:   "Add Father",
		Mother:   "Add Mother",
		Spouse:   "Add Spouse",
		Son:      "Add Son",
		Daughter: "Add Daughter",
	}
}

// For returns the caption for rel.
func (l AddRelLabels) For(rel entities.RelType) string {
	switch rel {
	case entities.RelFather:
		return l.Father
	case entities.RelMother:
		return l.Mother
	case entities.RelSpouse:
		return l.Spouse
	case entities.RelSon:
		return l.Son
	case entities.RelDaughter:
		return l.Daughter
	}
	return string(rel)
}
