package modes

import (
	"fmt"

	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/entities"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
	"go.uber.org/zap"
)

// RemoveRelative lets the user pick one relative of the subject and, after
// confirmation, removes the edge between them.
type RemoveRelative struct {
	machine
	store  ports.Store
	modal  ports.Modal
	target valueobjects.PersonID
}

// NewRemoveRelative creates an inactive remove-relative mode.
func NewRemoveRelative(store ports.Store, modal ports.Modal, listener Listener, logger *zap.Logger) *RemoveRelative {
	return &RemoveRelative{
		machine: newMachine(ports.ModeRemoveRelative, listener, logger),
		store:   store,
		modal:   modal,
	}
}

// Activate starts selecting a relationship of subject. It returns false
// without doing anything when the mode already runs for another person.
func (m *RemoveRelative) Activate(subject valueobjects.PersonID) (bool, error) {
	p, ok := m.store.Datum(subject)
	if !ok {
		return false, apperrors.NewPersonNotFoundError(subject.String())
	}
	if p.IsNewRelative() {
		return false, apperrors.NewValidationError("cannot remove relationships of a placeholder")
	}
	started, busy := m.begin(subject)
	if !started {
		return !busy, nil
	}
	m.store.UpdateTree(ports.UpdateOptions{})
	return true, nil
}

// Target returns the relative waiting for confirmation, if any.
func (m *RemoveRelative) Target() valueobjects.PersonID {
	return m.target
}

// Select picks target as the relative to detach. Picking the subject itself
// cancels the mode. A target with no edge to the subject is an error.
func (m *RemoveRelative) Select(target valueobjects.PersonID) error {
	if !m.Active() {
		return apperrors.NewInvariantError("remove relative mode is not active")
	}
	if target == m.subject {
		m.Cancel()
		return nil
	}
	if m.state == StateAwaitingConfirmation {
		return apperrors.NewConflictError("a removal is already waiting for confirmation")
	}

	kind, ok := m.store.Data().RelationBetween(m.subject, target)
	if !ok {
		return apperrors.NewRelationshipNotFoundError(m.subject.String(), target.String())
	}

	m.state = StateAwaitingConfirmation
	m.target = target
	m.modal.Confirm(ports.ConfirmPrompt{
		Title:   "Remove relationship",
		Message: fmt.Sprintf("Remove the %s link between %s and %s?", kind, m.describe(m.subject), m.describe(target)),
	}, m.accept, m.reject)
	return nil
}

// Cancel deactivates the mode, dropping any pending confirmation.
func (m *RemoveRelative) Cancel() {
	if !m.Active() {
		return
	}
	m.target = ""
	m.store.UpdateTree(ports.UpdateOptions{})
	m.finish()
}

func (m *RemoveRelative) accept() {
	if m.state != StateAwaitingConfirmation {
		return
	}
	subject, target := m.subject, m.target
	kind, err := m.store.Data().Unlink(subject, target)
	if err != nil {
		m.logger.Error("failed to remove relationship",
			zap.String("subject", subject.String()),
			zap.String("target", target.String()),
			zap.Error(err),
		)
		m.state, m.target = StateActive, ""
		m.listener.Failed(err)
		return
	}

	m.logger.Info("relationship removed",
		zap.String("subject", subject.String()),
		zap.String("target", target.String()),
		zap.String("kind", string(kind)),
	)
	m.listener.Changed(subject)
	m.Cancel()
}

func (m *RemoveRelative) reject() {
	if m.state != StateAwaitingConfirmation {
		return
	}
	m.state, m.target = StateActive, ""
}

func (m *RemoveRelative) describe(id valueobjects.PersonID) string {
	p, ok := m.store.Datum(id)
	if !ok {
		return id.String()
	}
	name := p.Attr(entities.AttrFirstName)
	if last := p.Attr(entities.AttrLastName); last != "" {
		name += " " + last
	}
	if name == "" {
		return id.String()
	}
	return name
}
