// Package forms builds the form for the person being edited and routes what
// the form submits to the matching command.
package forms

import (
	"sort"
	"strings"

	"github.com/ckiev5/family-chart/application/commands"
	"github.com/ckiev5/family-chart/application/commands/bus"
	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
	"go.uber.org/zap"
)

// Sender dispatches commands.
type Sender interface {
	Send(cmd bus.Command) error
}

// Committer records a history entry.
type Committer interface {
	Commit()
}

// AddMode is the view of the add-relative mode the orchestrator needs.
type AddMode interface {
	Active() bool
	Subject() valueobjects.PersonID
	Activate(subject valueobjects.PersonID) (bool, error)
	Cancel()
}

// Actions are editor operations a form can trigger.
type Actions interface {
	AddRelative(subject ports.Subject) error
	RemoveRelative(subject ports.Subject) error
}

// Action names the submit branch that ran.
type Action string

const (
	ActionDelete   Action = "delete"
	ActionComplete Action = "complete_relative"
	ActionLink     Action = "link_existing"
	ActionUpdate   Action = "update"
)

// Session is the open form: one person under one mode context.
type Session struct {
	PersonID valueobjects.PersonID
	Kind     ports.FormKind
	Mode     ports.ModeKind
	seq      int
}

// Orchestrator owns the single open form.
type Orchestrator struct {
	store     ports.Store
	commands  Sender
	container ports.FormContainer
	history   Committer
	addMode   AddMode
	actions   Actions
	settings  *Settings
	logger    *zap.Logger

	session *Session
	seq     int
}

// Deps groups the orchestrator collaborators.
type Deps struct {
	Store     ports.Store
	Commands  Sender
	Container ports.FormContainer
	History   Committer
	AddMode   AddMode
	Actions   Actions
	Settings  *Settings
	Logger    *zap.Logger
}

// NewOrchestrator creates an orchestrator with no form open.
func NewOrchestrator(d Deps) *Orchestrator {
	if d.Settings == nil {
		d.Settings = DefaultSettings()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Orchestrator{
		store:     d.Store,
		commands:  d.Commands,
		container: d.Container,
		history:   d.History,
		addMode:   d.AddMode,
		actions:   d.Actions,
		settings:  d.Settings,
		logger:    d.Logger.Named("forms"),
	}
}

// Session returns the open form, if any.
func (o *Orchestrator) Session() (Session, bool) {
	if o.session == nil {
		return Session{}, false
	}
	return *o.session, true
}

// Open builds and shows the form for id under mode, replacing any open form.
func (o *Orchestrator) Open(id valueobjects.PersonID, mode ports.ModeKind) error {
	p, ok := o.store.Datum(id)
	if !ok {
		return apperrors.NewInvariantError("cannot open form: person " + id.String() + " is not in the graph")
	}

	o.seq++
	session := &Session{PersonID: id, Kind: o.kindFor(p, mode), Mode: mode, seq: o.seq}
	d := o.describe(p, session)

	builder := o.settings.Builder
	if builder == nil {
		builder = PassthroughBuilder{}
	}
	var (
		form ports.Form
		err  error
	)
	if session.Kind == ports.FormEdit {
		form, err = builder.BuildEditForm(d)
	} else {
		form, err = builder.BuildNewForm(d)
	}
	if err != nil {
		return apperrors.Wrap(err, "failed to build form")
	}

	o.session = session
	o.container.Populate(form)
	if cb := o.settings.Callbacks.OnFormCreation; cb != nil {
		cb(form, d)
	}
	o.logger.Debug("form opened",
		zap.String("person_id", id.String()),
		zap.String("kind", string(session.Kind)),
		zap.String("mode", string(mode)),
	)
	return nil
}

// Close hides the open form.
func (o *Orchestrator) Close() {
	if o.session == nil {
		return
	}
	o.session = nil
	o.container.Close()
}

// Submit routes sub for the open form.
func (o *Orchestrator) Submit(sub ports.Submission) error {
	if o.session == nil {
		return apperrors.NewConflictError("no form is open")
	}
	return o.submit(*o.session, sub)
}

// Cancel undoes the open form without touching the graph. A new relative
// form cancels the add-relative mode and goes back to its subject.
func (o *Orchestrator) Cancel() error {
	if o.session == nil {
		return nil
	}
	if o.session.Mode == ports.ModeAddRelative && o.addMode.Active() {
		subject := o.addMode.Subject()
		o.addMode.Cancel()
		return o.Open(subject, ports.ModeNone)
	}
	o.Close()
	return nil
}

func (o *Orchestrator) kindFor(p *entities.Person, mode ports.ModeKind) ports.FormKind {
	switch {
	case mode == ports.ModeAddRelative && p.IsNewRelative():
		return ports.FormNewRelative
	case p.ToAdd || p.Unknown:
		return ports.FormLinkExisting
	default:
		return ports.FormEdit
	}
}

// submit applies one decision, in precedence order: delete, add-relative
// completion, link existing, plain edit.
func (o *Orchestrator) submit(s Session, sub ports.Submission) error {
	p, ok := o.store.Datum(s.PersonID)
	if !ok {
		return apperrors.NewInvariantError("submitted person " + s.PersonID.String() + " is not in the graph")
	}
	if !o.settings.Editable || !allow(o.settings.CanEdit, p) {
		return apperrors.NewValidationError("form is read only")
	}

	inAddMode := s.Mode == ports.ModeAddRelative && o.addMode.Active()
	snapshot := p.Exported()

	var (
		cmd     bus.Command
		action  Action
		redraft valueobjects.PersonID
	)
	switch {
	case sub.Delete:
		if p.IsNewRelative() {
			return apperrors.NewValidationError("placeholders cannot be deleted")
		}
		if !allow(o.settings.CanDelete, p) {
			return apperrors.NewValidationError("deleting this person is not allowed")
		}
		// Drafts hang off their subject; drop them before the graph changes
		// and draft again if the delete does not go through.
		if o.addMode.Active() {
			redraft = o.addMode.Subject()
			o.addMode.Cancel()
		}
		cmd, action = commands.DeletePersonCommand{PersonID: p.ID}, ActionDelete
	case p.IsNewRelative() && !inAddMode:
		return apperrors.NewInvariantError("placeholder " + p.ID.String() + " submitted outside add relative mode")
	case inAddMode && (p.IsNewRelative() || p.ID == o.addMode.Subject()):
		cmd, action = commands.CompleteRelativeCommand{
			PlaceholderID: p.ID,
			Values:        sub.Values,
			LinkRelID:     sub.LinkRelID,
		}, ActionComplete
	case (p.ToAdd || p.Unknown) && !sub.LinkRelID.IsZero():
		cmd, action = commands.LinkExistingCommand{PersonID: p.ID, LinkRelID: sub.LinkRelID}, ActionLink
	default:
		cmd, action = commands.UpdatePersonCommand{PersonID: p.ID, Values: sub.Values}, ActionUpdate
	}

	if (action == ActionLink || (action == ActionComplete && p.IsNewRelative())) && !sub.LinkRelID.IsZero() {
		if !o.isCandidate(p, sub.LinkRelID) {
			return apperrors.NewValidationError(sub.LinkRelID.String() + " cannot be linked to " + p.ID.String())
		}
	}

	// A placeholder completion ends the add-relative flow; editing the
	// subject keeps it running.
	finishesMode := action == ActionComplete && snapshot.ID != o.addMode.Subject()

	if err := o.commands.Send(cmd); err != nil {
		if !redraft.IsZero() {
			if _, derr := o.addMode.Activate(redraft); derr != nil {
				o.logger.Warn("failed to restore add relative mode", zap.String("subject", redraft.String()), zap.Error(derr))
			}
		}
		return err
	}
	if finishesMode {
		o.addMode.Cancel()
	}

	next := s.PersonID
	if action != ActionUpdate {
		main, ok := o.store.MainDatum()
		if !ok {
			return apperrors.NewInvariantError("no main person after " + string(action))
		}
		next = main.ID
	}

	o.store.UpdateTree(ports.UpdateOptions{})
	o.history.Commit()
	o.notify(action, snapshot, sub)

	o.logger.Info("form submitted",
		zap.String("person_id", s.PersonID.String()),
		zap.String("action", string(action)),
		zap.String("next", next.String()),
	)

	if !o.settings.Fixed {
		o.Close()
		return nil
	}
	mode := ports.ModeNone
	if o.addMode.Active() {
		mode = ports.ModeAddRelative
	}
	return o.Open(next, mode)
}

func (o *Orchestrator) notify(action Action, p entities.Person, sub ports.Submission) {
	cb := o.settings.Callbacks
	if action == ActionDelete {
		if cb.OnDelete != nil {
			cb.OnDelete(p)
		}
	} else if cb.OnSubmit != nil {
		cb.OnSubmit(p, sub)
	}
	if cb.OnChange != nil {
		cb.OnChange()
	}
}

func (o *Orchestrator) describe(p *entities.Person, s *Session) ports.FormDescriptor {
	editable := o.settings.Editable && allow(o.settings.CanEdit, p)
	plain := s.Mode == ports.ModeNone && !p.IsPlaceholder()

	d := ports.FormDescriptor{
		Kind:              s.Kind,
		Mode:              s.Mode,
		Person:            *p.Clone(),
		Title:             o.title(p, s.Kind),
		Fields:            o.fieldValues(p),
		Editable:          editable,
		EditFirst:         o.settings.EditFirst,
		CanDelete:         editable && !p.IsNewRelative() && allow(o.settings.CanDelete, p),
		CanAddRelative:    editable && plain && allow(o.settings.CanAdd, p),
		CanRemoveRelative: editable && plain && !p.Rels.Empty(),
	}

	if link := o.settings.LinkExisting; link.Enabled && s.Kind != ports.FormEdit {
		d.LinkExisting = &link
		d.Candidates = o.candidates(p)
	}

	h := &formHooks{o: o, session: s}
	d.Submit = h.submit
	d.Cancel = h.cancel
	d.AddRelative = h.addRelative
	d.RemoveRelative = h.removeRelative
	return d
}

func (o *Orchestrator) title(p *entities.Person, kind ports.FormKind) string {
	switch kind {
	case ports.FormNewRelative:
		return p.NewRel.Label
	case ports.FormLinkExisting:
		if t := o.settings.LinkExisting.Title; t != "" {
			return t
		}
		return "Unknown person"
	}
	return DisplayName(p)
}

func (o *Orchestrator) fieldValues(p *entities.Person) []ports.FieldValue {
	out := make([]ports.FieldValue, 0, len(o.settings.Fields))
	for _, f := range o.settings.Fields {
		out = append(out, ports.FieldValue{Field: f, Value: p.Attr(f.ID)})
	}
	return out
}

// candidates lists people the form may link to: everyone real except the
// anchor and the anchor's direct relatives.
func (o *Orchestrator) candidates(p *entities.Person) []ports.LinkCandidate {
	anchorID := p.ID
	if p.NewRel != nil {
		anchorID = p.NewRel.AnchorID
	}
	anchor, _ := o.store.Datum(anchorID)

	var out []ports.LinkCandidate
	for _, c := range o.store.Data().People() {
		if c.ID == p.ID || c.ID == anchorID || c.IsPlaceholder() {
			continue
		}
		if anchor != nil && anchor.RelatedTo(c.ID) {
			continue
		}
		out = append(out, ports.LinkCandidate{ID: c.ID, Label: DisplayName(c)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func (o *Orchestrator) isCandidate(p *entities.Person, id valueobjects.PersonID) bool {
	for _, c := range o.candidates(p) {
		if c.ID == id {
			return true
		}
	}
	return false
}

// DisplayName is the first and last name, or the id for nameless people.
func DisplayName(p *entities.Person) string {
	name := strings.TrimSpace(p.Attr(entities.AttrFirstName) + " " + p.Attr(entities.AttrLastName))
	if name == "" {
		return p.ID.String()
	}
	return name
}

// formHooks binds descriptor callbacks to the session they were built for.
// A form that has been replaced can no longer act.
type formHooks struct {
	o       *Orchestrator
	session *Session
}

func (h *formHooks) current() error {
	if h.o.session == nil || h.o.session.seq != h.session.seq {
		return apperrors.NewConflictError("form is no longer open")
	}
	return nil
}

func (h *formHooks) submit(sub ports.Submission) error {
	if err := h.current(); err != nil {
		return err
	}
	return h.o.submit(*h.session, sub)
}

func (h *formHooks) cancel() error {
	if err := h.current(); err != nil {
		return err
	}
	return h.o.Cancel()
}

func (h *formHooks) addRelative() error {
	if err := h.current(); err != nil {
		return err
	}
	p, ok := h.o.store.Datum(h.session.PersonID)
	if !ok {
		return apperrors.NewPersonNotFoundError(h.session.PersonID.String())
	}
	return h.o.actions.AddRelative(p)
}

func (h *formHooks) removeRelative() error {
	if err := h.current(); err != nil {
		return err
	}
	p, ok := h.o.store.Datum(h.session.PersonID)
	if !ok {
		return apperrors.NewPersonNotFoundError(h.session.PersonID.String())
	}
	return h.o.actions.RemoveRelative(p)
}
