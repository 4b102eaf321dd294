// Package editor is the entry point of the editing core. The Controller owns
// the open form, both relationship modes and the undo history, and decides
// which of them handles a user action.
package editor

import (
	"github.com/ckiev5/family-chart/application/commands/bus"
	"github.com/ckiev5/family-chart/application/commands/handlers"
	"github.com/ckiev5/family-chart/application/forms"
	"github.com/ckiev5/family-chart/application/history"
	"github.com/ckiev5/family-chart/application/modes"
	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
	"go.uber.org/zap"
)

// ErrDestroyed is returned by every operation on a destroyed controller.
var ErrDestroyed error = apperrors.NewConflictError("editor has been destroyed").WithCode(apperrors.CodeDestroyed)

// Metrics observes the editor. observability.Collector implements it.
type Metrics interface {
	bus.Recorder
	history.Metrics
	ModeActivated(mode ports.ModeKind)
}

// State summarises what the user currently sees.
type State int

const (
	Idle State = iota
	FormOpenPlain
	FormOpenAddRelative
	FormOpenRemoveRelativeConfirm
)

func (s State) String() string {
	switch s {
	case FormOpenPlain:
		return "form_open_plain"
	case FormOpenAddRelative:
		return "form_open_add_relative"
	case FormOpenRemoveRelativeConfirm:
		return "form_open_remove_relative_confirm"
	default:
		return "idle"
	}
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	logger       *zap.Logger
	controls     ports.HistoryControls
	metrics      Metrics
	historyLimit int
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHistoryControls binds the undo/redo buttons.
func WithHistoryControls(c ports.HistoryControls) Option {
	return func(o *options) { o.controls = c }
}

// WithMetrics reports commands, history and mode activity.
func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithHistoryLimit caps the undo history. Zero means unlimited.
func WithHistoryLimit(n int) Option {
	return func(o *options) { o.historyLimit = n }
}

// Controller is the editing facade. It is not safe for concurrent use; the
// host drives it from a single goroutine.
type Controller struct {
	store     ports.Store
	container ports.FormContainer
	commands  *bus.CommandBus
	add       *modes.AddRelative
	remove    *modes.RemoveRelative
	forms     *forms.Orchestrator
	history   *history.History
	settings  *forms.Settings
	metrics   Metrics
	logger    *zap.Logger

	onError   func(error)
	destroyed bool
}

// New wires an editor around store. The store is laid out and its current
// state becomes the first history entry. store and modal are required; a nil
// container means forms are never shown.
func New(store ports.Store, container ports.FormContainer, modal ports.Modal, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, apperrors.NewValidationError("store is required")
	}
	if modal == nil {
		return nil, apperrors.NewValidationError("modal is required")
	}
	o := options{logger: zap.NewNop(), historyLimit: 100}
	for _, opt := range opts {
		opt(&o)
	}
	if container == nil {
		container = nopContainer{}
	}

	c := &Controller{
		store:     store,
		container: container,
		settings:  forms.DefaultSettings(),
		metrics:   o.metrics,
		logger:    o.logger.Named("editor"),
	}

	c.add = modes.NewAddRelative(store, addListener{c}, o.logger)
	c.remove = modes.NewRemoveRelative(store, modal, removeListener{c}, o.logger)
	c.settings.CanAdd = c.add.CanAdd

	historyOpts := []history.Option{history.WithLogger(o.logger), history.WithLimit(o.historyLimit)}
	if o.controls != nil {
		historyOpts = append(historyOpts, history.WithControls(o.controls))
	}
	if o.metrics != nil {
		historyOpts = append(historyOpts, history.WithMetrics(o.metrics))
	}
	c.history = history.New(store, historySource{c}, historyNavigator{c}, historyOpts...)

	middlewares := []bus.Middleware{bus.ValidationMiddleware(), bus.LoggingMiddleware(o.logger)}
	if o.metrics != nil {
		middlewares = append(middlewares, bus.MetricsMiddleware(o.metrics))
	}
	c.commands = bus.NewCommandBus()
	if err := handlers.Register(c.commands, bus.NewPipeline(middlewares...), store, c.add, o.logger); err != nil {
		return nil, apperrors.Wrap(err, "failed to register command handlers")
	}

	c.forms = forms.NewOrchestrator(forms.Deps{
		Store:     store,
		Commands:  c.commands,
		Container: container,
		History:   c.history,
		AddMode:   c.add,
		Actions:   c,
		Settings:  c.settings,
		Logger:    o.logger,
	})

	store.UpdateTree(ports.UpdateOptions{Initial: true})
	c.history.Commit()
	return c, nil
}

// Open shows the form for subject. A running add-relative mode keeps its
// placeholders and subject in add-relative forms and is cancelled by any
// other person. A running remove-relative mode treats subject as the
// relative to detach.
func (c *Controller) Open(subject ports.Subject) error {
	if c.destroyed {
		return ErrDestroyed
	}
	p, err := c.resolve(subject)
	if err != nil {
		return c.fail(err)
	}

	switch {
	case c.add.Active():
		if c.inAddContext(p) {
			return c.fail(c.forms.Open(p.ID, ports.ModeAddRelative))
		}
		c.add.Cancel()
	case c.remove.Active():
		if p.ID == c.remove.Subject() {
			c.remove.Cancel()
			return c.fail(c.openPlain(p.ID))
		}
		return c.fail(c.remove.Select(p.ID))
	}
	return c.fail(c.forms.Open(p.ID, ports.ModeNone))
}

// OpenWithoutModeCancel shows the form for subject and leaves any running
// mode alone.
func (c *Controller) OpenWithoutModeCancel(subject ports.Subject) error {
	if c.destroyed {
		return ErrDestroyed
	}
	p, err := c.resolve(subject)
	if err != nil {
		return c.fail(err)
	}

	mode := ports.ModeNone
	switch {
	case c.add.Active() && c.inAddContext(p):
		mode = ports.ModeAddRelative
	case c.remove.Active() && p.ID == c.remove.Subject():
		mode = ports.ModeRemoveRelative
	}
	return c.fail(c.forms.Open(p.ID, mode))
}

// AddRelative drafts placeholder relatives around subject, or around the
// main person when subject is nil, and opens the subject's form in
// add-relative mode.
func (c *Controller) AddRelative(subject ports.Subject) error {
	if c.destroyed {
		return ErrDestroyed
	}
	p, err := c.subjectOrMain(subject)
	if err != nil {
		return c.fail(err)
	}

	c.remove.Cancel()
	if c.add.Active() && c.add.Subject() != p.ID {
		c.add.Cancel()
	}
	wasActive := c.add.Active()
	if _, err := c.add.Activate(p.ID); err != nil {
		return c.fail(err)
	}
	if !wasActive && c.metrics != nil {
		c.metrics.ModeActivated(ports.ModeAddRelative)
	}
	return c.fail(c.forms.Open(p.ID, ports.ModeAddRelative))
}

// RemoveRelative starts picking a relationship of subject, or of the main
// person when subject is nil, to remove.
func (c *Controller) RemoveRelative(subject ports.Subject) error {
	if c.destroyed {
		return ErrDestroyed
	}
	p, err := c.subjectOrMain(subject)
	if err != nil {
		return c.fail(err)
	}

	c.add.Cancel()
	if c.remove.Active() && c.remove.Subject() != p.ID {
		c.remove.Cancel()
	}
	wasActive := c.remove.Active()
	if _, err := c.remove.Activate(p.ID); err != nil {
		return c.fail(err)
	}
	if !wasActive && c.metrics != nil {
		c.metrics.ModeActivated(ports.ModeRemoveRelative)
	}
	return c.fail(c.forms.Open(p.ID, ports.ModeRemoveRelative))
}

// Submit hands sub to the open form.
func (c *Controller) Submit(sub ports.Submission) error {
	if c.destroyed {
		return ErrDestroyed
	}
	return c.fail(c.forms.Submit(sub))
}

// Cancel dismisses the open form. An add-relative form ends the mode and
// goes back to its subject; a remove-relative form ends that mode.
func (c *Controller) Cancel() error {
	if c.destroyed {
		return ErrDestroyed
	}
	if c.remove.Active() {
		c.remove.Cancel()
		return nil
	}
	return c.fail(c.forms.Cancel())
}

// Session returns the open form, if any.
func (c *Controller) Session() (forms.Session, bool) {
	if c.destroyed {
		return forms.Session{}, false
	}
	return c.forms.Session()
}

// Undo steps the graph back one history entry. moved is false at the start
// of the history.
func (c *Controller) Undo() (moved bool, err error) {
	if c.destroyed {
		return false, ErrDestroyed
	}
	return c.history.Undo(), nil
}

// Redo replays the next history entry. moved is false at the tail.
func (c *Controller) Redo() (moved bool, err error) {
	if c.destroyed {
		return false, ErrDestroyed
	}
	return c.history.Redo(), nil
}

func (c *Controller) CanUndo() bool { return !c.destroyed && c.history.CanUndo() }
func (c *Controller) CanRedo() bool { return !c.destroyed && c.history.CanRedo() }

// HistoryLabels names every history entry, oldest first. A destroyed
// controller has none.
func (c *Controller) HistoryLabels() []string {
	if c.destroyed {
		return nil
	}
	return c.history.Labels()
}

// StoreDataCopy returns the graph as the host should persist it: a deep copy
// without placeholders drafted by the add-relative mode and without any
// transient markers.
func (c *Controller) StoreDataCopy() ([]entities.Person, error) {
	if c.destroyed {
		return nil, ErrDestroyed
	}
	g := c.store.Data().Clone()
	c.add.CleanUp(g)
	return g.Export(), nil
}

// State reports what the user currently sees.
func (c *Controller) State() State {
	if c.destroyed {
		return Idle
	}
	if c.remove.State() == modes.StateAwaitingConfirmation {
		return FormOpenRemoveRelativeConfirm
	}
	session, ok := c.forms.Session()
	switch {
	case !ok:
		return Idle
	case session.Mode == ports.ModeAddRelative && c.add.Active():
		return FormOpenAddRelative
	default:
		return FormOpenPlain
	}
}

// Destroy tears the editor down. Calling it again does nothing.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true

	c.history.Destroy()
	c.add.Cancel()
	c.remove.Cancel()
	c.forms.Close()
	c.container.Destroy()
	c.store.UpdateTree(ports.UpdateOptions{})
	c.logger.Info("editor destroyed")
}

func (c *Controller) inAddContext(p *entities.Person) bool {
	return p.ID == c.add.Subject() || (p.NewRel != nil && p.NewRel.AnchorID == c.add.Subject())
}

// openPlain opens id without a mode unless that form is already showing.
func (c *Controller) openPlain(id valueobjects.PersonID) error {
	if s, ok := c.forms.Session(); ok && s.PersonID == id && s.Mode == ports.ModeNone {
		return nil
	}
	return c.forms.Open(id, ports.ModeNone)
}

func (c *Controller) resolve(subject ports.Subject) (*entities.Person, error) {
	if subject == nil {
		return nil, apperrors.NewInvariantError("no person given")
	}
	id := subject.PersonID()
	p, ok := c.store.Datum(id)
	if !ok {
		return nil, apperrors.NewInvariantError("person " + id.String() + " is not in the graph").
			WithCode(apperrors.CodePersonNotFound)
	}
	return p, nil
}

func (c *Controller) subjectOrMain(subject ports.Subject) (*entities.Person, error) {
	if subject != nil {
		return c.resolve(subject)
	}
	p, ok := c.store.MainDatum()
	if !ok {
		return nil, apperrors.NewInvariantError("no main person")
	}
	return p, nil
}

// fail logs err and forwards fatal errors to the error callback.
func (c *Controller) fail(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsFatal(err) {
		c.logger.Error("editor operation failed", zap.Error(err))
		if c.onError != nil {
			c.onError(err)
		}
		return err
	}
	c.logger.Warn("editor operation rejected", zap.Error(err))
	return err
}

func (c *Controller) changed() {
	if cb := c.settings.Callbacks.OnChange; cb != nil {
		cb()
	}
}

type nopContainer struct{}

func (nopContainer) Populate(ports.Form) {}
func (nopContainer) Close()              {}
func (nopContainer) Destroy()            {}
