package modes

import (
	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/aggregates"
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
	"go.uber.org/zap"
)

// CanAddFunc decides whether a placeholder of rel is drafted for subject.
type CanAddFunc func(subject *entities.Person, rel entities.RelType) bool

// AddRelative drafts placeholder relatives around a subject and turns the one
// the user fills in into a real person.
type AddRelative struct {
	machine
	store  ports.Store
	labels ports.AddRelLabels
	canAdd CanAddFunc
}

// AddOption configures an AddRelative mode.
type AddOption func(*AddRelative)

// WithLabels overrides the placeholder captions.
func WithLabels(l ports.AddRelLabels) AddOption {
	return func(m *AddRelative) { m.labels = l }
}

// WithCanAdd restricts which placeholders are drafted.
func WithCanAdd(fn CanAddFunc) AddOption {
	return func(m *AddRelative) {
		if fn != nil {
			m.canAdd = fn
		}
	}
}

// NewAddRelative creates an inactive add-relative mode.
func NewAddRelative(store ports.Store, listener Listener, logger *zap.Logger, opts ...AddOption) *AddRelative {
	m := &AddRelative{
		machine: newMachine(ports.ModeAddRelative, listener, logger),
		store:   store,
		labels:  ports.DefaultAddRelLabels(),
		canAdd:  func(*entities.Person, entities.RelType) bool { return true },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetLabels replaces the captions used by the next activation.
func (m *AddRelative) SetLabels(l ports.AddRelLabels) {
	m.labels = l
}

// SetCanAdd replaces the drafting filter; nil allows every relation.
func (m *AddRelative) SetCanAdd(fn CanAddFunc) {
	if fn == nil {
		fn = func(*entities.Person, entities.RelType) bool { return true }
	}
	m.canAdd = fn
}

// CanAdd reports whether any placeholder would be drafted for subject.
func (m *AddRelative) CanAdd(subject *entities.Person) bool {
	for _, rel := range []entities.RelType{entities.RelFather, entities.RelMother, entities.RelSpouse, entities.RelSon, entities.RelDaughter} {
		if m.canAdd(subject, rel) {
			return true
		}
	}
	return false
}

// Activate drafts placeholders around subject. It returns false without
// doing anything when the mode already runs for another person.
func (m *AddRelative) Activate(subject valueobjects.PersonID) (bool, error) {
	p, ok := m.store.Datum(subject)
	if !ok {
		return false, apperrors.NewPersonNotFoundError(subject.String())
	}
	if p.IsPlaceholder() {
		return false, apperrors.NewValidationError("cannot add relatives to a placeholder")
	}

	started, busy := m.begin(subject)
	if !started {
		return !busy, nil
	}

	g := m.store.Data()
	if err := m.draft(g, p); err != nil {
		m.CleanUp(g)
		m.state, m.subject = StateInactive, ""
		return false, err
	}
	// Drafting is not an edit of its own.
	g.MarkEventsAsCommitted()
	m.store.UpdateTree(ports.UpdateOptions{})
	return true, nil
}

// Complete makes the placeholder permanent, or merges it into linkRelID when
// one is given, and returns the id the change resolved to.
//
// Completing the subject itself only re-syncs the placeholder genders.
func (m *AddRelative) Complete(placeholderID, linkRelID valueobjects.PersonID) (valueobjects.PersonID, error) {
	if err := m.CheckCompletion(placeholderID); err != nil {
		return "", err
	}
	g := m.store.Data()

	if placeholderID == m.subject {
		m.resyncGenders(g)
		return m.subject, nil
	}

	result := placeholderID
	if linkRelID.IsZero() {
		if err := g.Materialize(placeholderID); err != nil {
			return "", err
		}
	} else {
		if err := g.ResolveLink(placeholderID, linkRelID); err != nil {
			return "", err
		}
		result = linkRelID
	}

	m.logger.Info("relative added",
		zap.String("subject", m.subject.String()),
		zap.String("person_id", result.String()),
	)
	m.listener.Changed(result)
	return result, nil
}

// CheckCompletion reports, without changing anything, whether placeholderID
// can be completed: it must be the subject or one of its drafts.
func (m *AddRelative) CheckCompletion(placeholderID valueobjects.PersonID) error {
	if !m.Active() {
		return apperrors.NewInvariantError("add relative mode is not active")
	}
	if placeholderID == m.subject {
		return nil
	}
	ph, ok := m.store.Datum(placeholderID)
	if !ok || ph.NewRel == nil || ph.NewRel.AnchorID != m.subject {
		return apperrors.NewInvariantError("no placeholder " + placeholderID.String() + " drafted for " + m.subject.String())
	}
	return nil
}

// Cancel removes the remaining placeholders and deactivates the mode.
func (m *AddRelative) Cancel() {
	if !m.Active() {
		return
	}
	m.CleanUp(m.store.Data())
	m.store.UpdateTree(ports.UpdateOptions{})
	m.finish()
}

// CleanUp removes every add-relative placeholder from g together with all
// references to it, and reports how many were removed. It works on any
// graph, including export copies.
func (m *AddRelative) CleanUp(g *aggregates.FamilyGraph) int {
	var drafts valueobjects.PersonIDs
	for _, p := range g.People() {
		if p.IsNewRelative() {
			drafts = append(drafts, p.ID)
		}
	}
	for _, id := range drafts {
		_ = g.Discard(id)
	}
	return len(drafts)
}

// Drafts lists the placeholders currently in the live graph.
func (m *AddRelative) Drafts() []*entities.Person {
	var out []*entities.Person
	for _, p := range m.store.Data().People() {
		if p.IsNewRelative() {
			out = append(out, p)
		}
	}
	return out
}

func (m *AddRelative) draft(g *aggregates.FamilyGraph, subject *entities.Person) error {
	if err := m.draftParents(g, subject); err != nil {
		return err
	}
	if m.canAdd(subject, entities.RelSpouse) {
		if _, err := m.place(g, subject, entities.RelSpouse, oppositeGender(subject.Gender()), ""); err != nil {
			return err
		}
	}
	return m.draftChildren(g, subject)
}

func (m *AddRelative) draftParents(g *aggregates.FamilyGraph, subject *entities.Person) error {
	var parents valueobjects.PersonIDs
	needFather, needMother := true, true
	for _, id := range subject.Rels.Parents {
		parent, ok := g.Person(id)
		if !ok {
			continue
		}
		parents = append(parents, id)
		if parent.Gender() == entities.GenderFemale {
			needMother = false
		} else {
			needFather = false
		}
	}
	if len(parents) >= 2 {
		return nil
	}

	var missing []entities.RelType
	if needFather {
		missing = append(missing, entities.RelFather)
	}
	if needMother {
		missing = append(missing, entities.RelMother)
	}

	drafted := 0
	for _, rel := range missing {
		if len(parents) == 2 || !m.canAdd(subject, rel) {
			continue
		}
		id, err := m.place(g, subject, rel, genderFor(rel), "")
		if err != nil {
			return err
		}
		parents = append(parents, id)
		drafted++
	}

	if drafted > 0 && len(parents) == 2 {
		return g.Link(parents[0], parents[1], aggregates.RelationSpouse)
	}
	return nil
}

func (m *AddRelative) draftChildren(g *aggregates.FamilyGraph, subject *entities.Person) error {
	var coParents valueobjects.PersonIDs
	for _, id := range subject.Rels.Spouses {
		if spouse, ok := g.Person(id); ok && !spouse.IsNewRelative() {
			coParents = append(coParents, id)
		}
	}
	if len(coParents) == 0 {
		coParents = valueobjects.PersonIDs{""}
	}

	for _, other := range coParents {
		for _, rel := range []entities.RelType{entities.RelSon, entities.RelDaughter} {
			if !m.canAdd(subject, rel) {
				continue
			}
			if _, err := m.place(g, subject, rel, genderFor(rel), other); err != nil {
				return err
			}
		}
	}
	return nil
}

// place adds one placeholder for rel and links it to anchor, and to
// otherParent for children.
func (m *AddRelative) place(g *aggregates.FamilyGraph, anchor *entities.Person, rel entities.RelType, gender string, otherParent valueobjects.PersonID) (valueobjects.PersonID, error) {
	ph := entities.NewPerson(nil)
	if gender != "" {
		ph.Data[entities.AttrGender] = gender
	}
	ph.NewRel = &entities.NewRelData{
		RelType:       rel,
		Label:         m.labels.For(rel),
		OtherParentID: otherParent,
		AnchorID:      anchor.ID,
	}
	if err := g.Add(ph); err != nil {
		return "", err
	}

	var kind aggregates.RelationKind
	switch {
	case rel.IsParent():
		kind = aggregates.RelationParent
	case rel.IsChild():
		kind = aggregates.RelationChild
	default:
		kind = aggregates.RelationSpouse
	}
	if err := g.Link(anchor.ID, ph.ID, kind); err != nil {
		return "", err
	}
	if !otherParent.IsZero() {
		if err := g.Link(otherParent, ph.ID, aggregates.RelationChild); err != nil {
			return "", err
		}
	}
	return ph.ID, nil
}

// resyncGenders keeps the spouse placeholder opposite to the subject after
// the subject's gender was edited.
func (m *AddRelative) resyncGenders(g *aggregates.FamilyGraph) {
	subject, ok := g.Person(m.subject)
	if !ok {
		return
	}
	want := oppositeGender(subject.Gender())
	for _, p := range g.People() {
		if p.NewRel == nil || p.NewRel.AnchorID != m.subject || p.NewRel.RelType != entities.RelSpouse {
			continue
		}
		p.Data[entities.AttrGender] = want
	}
}

func genderFor(rel entities.RelType) string {
	switch rel {
	case entities.RelFather, entities.RelSon:
		return entities.GenderMale
	case entities.RelMother, entities.RelDaughter:
		return entities.GenderFemale
	}
	return ""
}

func oppositeGender(g string) string {
	if g == entities.GenderFemale {
		return entities.GenderMale
	}
	return entities.GenderFemale
}
