package handlers

import (
	"fmt"

	"github.com/ckiev5/family-chart/application/commands"
	"github.com/ckiev5/family-chart/application/commands/bus"
	"github.com/ckiev5/family-chart/application/ports"
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
	"go.uber.org/zap"
)

// RelativeCompleter finishes an add-relative draft.
type RelativeCompleter interface {
	CheckCompletion(placeholderID valueobjects.PersonID) error
	Complete(placeholderID, linkRelID valueobjects.PersonID) (valueobjects.PersonID, error)
}

// UpdatePersonHandler handles person edit commands
type UpdatePersonHandler struct {
	store  ports.Store
	logger *zap.Logger
}

// NewUpdatePersonHandler creates a new update person handler
func NewUpdatePersonHandler(store ports.Store, logger *zap.Logger) *UpdatePersonHandler {
	return &UpdatePersonHandler{store: store, logger: logger}
}

// Handle executes the update person command
func (h *UpdatePersonHandler) Handle(cmd commands.UpdatePersonCommand) error {
	g := h.store.Data()
	changed, err := g.UpdateAttributes(cmd.PersonID, cmd.Values)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	if err := g.Materialize(cmd.PersonID); err != nil {
		return err
	}

	h.logger.Debug("person updated",
		zap.String("person_id", cmd.PersonID.String()),
		zap.Strings("changed", changed),
	)
	return nil
}

// CompleteRelativeHandler handles add-relative submissions
type CompleteRelativeHandler struct {
	store     ports.Store
	completer RelativeCompleter
	logger    *zap.Logger
}

// NewCompleteRelativeHandler creates a new complete relative handler
func NewCompleteRelativeHandler(store ports.Store, completer RelativeCompleter, logger *zap.Logger) *CompleteRelativeHandler {
	return &CompleteRelativeHandler{store: store, completer: completer, logger: logger}
}

// Handle fills the placeholder, completes it and selects the result as main.
// Values are only written once the completer accepts the placeholder.
func (h *CompleteRelativeHandler) Handle(cmd commands.CompleteRelativeCommand) error {
	if cmd.LinkRelID.IsZero() && len(cmd.Values) > 0 {
		if err := h.completer.CheckCompletion(cmd.PlaceholderID); err != nil {
			return err
		}
		if _, err := h.store.Data().UpdateAttributes(cmd.PlaceholderID, cmd.Values); err != nil {
			return fmt.Errorf("failed to fill placeholder: %w", err)
		}
	}

	id, err := h.completer.Complete(cmd.PlaceholderID, cmd.LinkRelID)
	if err != nil {
		return err
	}
	h.store.UpdateMainID(id)
	return nil
}

// LinkExistingHandler handles link-to-existing submissions
type LinkExistingHandler struct {
	store  ports.Store
	logger *zap.Logger
}

// NewLinkExistingHandler creates a new link existing handler
func NewLinkExistingHandler(store ports.Store, logger *zap.Logger) *LinkExistingHandler {
	return &LinkExistingHandler{store: store, logger: logger}
}

// Handle merges the placeholder into the chosen person and selects them.
func (h *LinkExistingHandler) Handle(cmd commands.LinkExistingCommand) error {
	g := h.store.Data()
	p, ok := g.Person(cmd.PersonID)
	if !ok {
		return apperrors.NewPersonNotFoundError(cmd.PersonID.String())
	}
	if !p.ToAdd && !p.Unknown {
		return apperrors.NewValidationError("only unknown or to-add people can be linked")
	}
	if err := g.ResolveLink(cmd.PersonID, cmd.LinkRelID); err != nil {
		return fmt.Errorf("failed to link person: %w", err)
	}

	h.logger.Debug("person linked",
		zap.String("person_id", cmd.PersonID.String()),
		zap.String("linked_to", cmd.LinkRelID.String()),
	)
	h.store.UpdateMainID(cmd.LinkRelID)
	return nil
}

// DeletePersonHandler handles person deletion
type DeletePersonHandler struct {
	store  ports.Store
	logger *zap.Logger
}

// NewDeletePersonHandler creates a new delete person handler
func NewDeletePersonHandler(store ports.Store, logger *zap.Logger) *DeletePersonHandler {
	return &DeletePersonHandler{store: store, logger: logger}
}

// Handle deletes the person and moves main to the last available person.
func (h *DeletePersonHandler) Handle(cmd commands.DeletePersonCommand) error {
	g := h.store.Data()
	p, ok := g.Person(cmd.PersonID)
	if !ok {
		return apperrors.NewPersonNotFoundError(cmd.PersonID.String())
	}
	if p.IsNewRelative() {
		return apperrors.NewValidationError("placeholders cannot be deleted")
	}

	outcome, err := g.Delete(cmd.PersonID)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	h.logger.Info("person deleted",
		zap.String("person_id", cmd.PersonID.String()),
		zap.Bool("removed", outcome.Removed),
	)

	if !outcome.Replacement.IsZero() {
		h.store.UpdateMainID(outcome.Replacement)
		return nil
	}
	if next, ok := h.store.LastAvailableMainDatum(); ok {
		h.store.UpdateMainID(next.ID)
	}
	return nil
}

// Register wires every person handler into b behind the given pipeline.
func Register(b *bus.CommandBus, p *bus.Pipeline, store ports.Store, completer RelativeCompleter, logger *zap.Logger) error {
	update := NewUpdatePersonHandler(store, logger)
	complete := NewCompleteRelativeHandler(store, completer, logger)
	link := NewLinkExistingHandler(store, logger)
	del := NewDeletePersonHandler(store, logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.UpdatePersonCommand{}, bus.Typed(update.Handle)},
		{commands.CompleteRelativeCommand{}, bus.Typed(complete.Handle)},
		{commands.LinkExistingCommand{}, bus.Typed(link.Handle)},
		{commands.DeletePersonCommand{}, bus.Typed(del.Handle)},
	}
	for _, r := range registrations {
		if err := b.Register(r.cmd, p.Execute(r.handler)); err != nil {
			return err
		}
	}
	return nil
}
