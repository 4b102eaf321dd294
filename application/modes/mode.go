// Package modes implements the two relationship editing modes. Each mode is a
// small state machine over a single subject; the editor controller decides
// which one may run.
package modes

import (
	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	"go.uber.org/zap"
)

// State of a mode.
type State int

const (
	StateInactive State = iota
	StateActive
	StateAwaitingConfirmation
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	default:
		return "inactive"
	}
}

// Mode is the contract shared by both relationship modes.
type Mode interface {
	Kind() ports.ModeKind
	State() State
	Active() bool
	Subject() valueobjects.PersonID
	// Cancel returns the mode to inactive. Calling it on an inactive mode
	// does nothing.
	Cancel()
}

// Listener receives the outcome of a mode. It is fixed at construction.
type Listener interface {
	// Changed runs after the mode mutated the graph. id is the person the
	// change resolved to.
	Changed(id valueobjects.PersonID)
	// Cancelled runs exactly once per activation, when the mode ends.
	Cancelled(subject valueobjects.PersonID)
	// Failed reports an error raised outside a caller's stack, such as a
	// confirmation callback.
	Failed(err error)
}

// NopListener ignores every notification.
type NopListener struct{}

func (NopListener) Changed(valueobjects.PersonID)   {}
func (NopListener) Cancelled(valueobjects.PersonID) {}
func (NopListener) Failed(error)                    {}

// machine holds the state shared by both modes.
type machine struct {
	kind     ports.ModeKind
	state    State
	subject  valueobjects.PersonID
	listener Listener
	logger   *zap.Logger
}

func newMachine(kind ports.ModeKind, listener Listener, logger *zap.Logger) machine {
	if listener == nil {
		listener = NopListener{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return machine{kind: kind, listener: listener, logger: logger.Named(string(kind))}
}

func (m *machine) Kind() ports.ModeKind           { return m.kind }
func (m *machine) State() State                   { return m.state }
func (m *machine) Active() bool                   { return m.state != StateInactive }
func (m *machine) Subject() valueobjects.PersonID { return m.subject }

// begin moves to active for subject. busy is true when the mode already runs
// for someone else.
func (m *machine) begin(subject valueobjects.PersonID) (started, busy bool) {
	if m.Active() {
		return false, m.subject != subject
	}
	m.state = StateActive
	m.subject = subject
	m.logger.Debug("mode activated", zap.String("subject", subject.String()))
	return true, false
}

// finish returns to inactive and notifies the listener once.
func (m *machine) finish() {
	if !m.Active() {
		return
	}
	subject := m.subject
	m.state = StateInactive
	m.subject = ""
	m.logger.Debug("mode cancelled", zap.String("subject", subject.String()))
	m.listener.Cancelled(subject)
}
