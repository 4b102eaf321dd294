package commands

import (
	"github.com/ckiev5/family-chart/domain/core/valueobjects"
	apperrors "github.com/ckiev5/family-chart/pkg/errors"
)

// UpdatePersonCommand applies form values to a person and clears the
// ToAdd/Unknown markers.
type UpdatePersonCommand struct {
	PersonID valueobjects.PersonID `json:"person_id" validate:"required"`
	Values   map[string]string     `json:"values" validate:"dive,keys,attrkey,endkeys"`
}

// Validate validates the UpdatePersonCommand
func (c UpdatePersonCommand) Validate() error {
	return nil
}

// CompleteRelativeCommand turns an add-relative placeholder into a person,
// or merges it into LinkRelID when set.
type CompleteRelativeCommand struct {
	PlaceholderID valueobjects.PersonID `json:"placeholder_id" validate:"required"`
	Values        map[string]string     `json:"values" validate:"dive,keys,attrkey,endkeys"`
	LinkRelID     valueobjects.PersonID `json:"link_rel_id"`
}

// Validate validates the CompleteRelativeCommand
func (c CompleteRelativeCommand) Validate() error {
	if !c.LinkRelID.IsZero() && c.LinkRelID == c.PlaceholderID {
		return apperrors.NewValidationError("cannot link a placeholder to itself")
	}
	return nil
}

// LinkExistingCommand resolves a ToAdd/Unknown person onto someone already
// in the graph.
type LinkExistingCommand struct {
	PersonID  valueobjects.PersonID `json:"person_id" validate:"required"`
	LinkRelID valueobjects.PersonID `json:"link_rel_id" validate:"required"`
}

// Validate validates the LinkExistingCommand
func (c LinkExistingCommand) Validate() error {
	if !c.PersonID.IsZero() && c.PersonID == c.LinkRelID {
		return apperrors.NewValidationError("cannot link a person to themselves")
	}
	return nil
}

// DeletePersonCommand removes a person from the graph.
type DeletePersonCommand struct {
	PersonID valueobjects.PersonID `json:"person_id" validate:"required"`
}

// Validate validates the DeletePersonCommand
func (c DeletePersonCommand) Validate() error {
	return nil
}
