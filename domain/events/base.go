package events

import (
	"time"

	"github.com/ckiev5/family-chart/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// Event types raised by the family graph.
const (
	TypePersonAdded         = "person.added"
	TypePersonUpdated       = "person.updated"
	TypePersonDeleted       = "person.deleted"
	TypePersonUnknowned     = "person.unknowned"
	TypePersonResolved      = "person.resolved"
	TypeRelationshipLinked  = "relationship.linked"
	TypeRelationshipRemoved = "relationship.removed"
)

func newBase(personID valueobjects.PersonID, eventType string, at time.Time) BaseEvent {
	return BaseEvent{AggregateID: personID.String(), EventType: eventType, Timestamp: at}
}

// PersonAdded is raised when a person becomes part of the graph
type PersonAdded struct {
	BaseEvent
	PersonID valueobjects.PersonID `json:"person_id"`
}

// NewPersonAdded creates a PersonAdded event
func NewPersonAdded(id valueobjects.PersonID, at time.Time) PersonAdded {
	return PersonAdded{BaseEvent: newBase(id, TypePersonAdded, at), PersonID: id}
}

// PersonUpdated is raised when attributes change
type PersonUpdated struct {
	BaseEvent
	PersonID valueobjects.PersonID `json:"person_id"`
	Changed  []string              `json:"changed"`
}

// NewPersonUpdated creates a PersonUpdated event
func NewPersonUpdated(id valueobjects.PersonID, changed []string, at time.Time) PersonUpdated {
	return PersonUpdated{BaseEvent: newBase(id, TypePersonUpdated, at), PersonID: id, Changed: changed}
}

// PersonDeleted is raised when a person is removed from the graph
type PersonDeleted struct {
	BaseEvent
	PersonID valueobjects.PersonID `json:"person_id"`
}

// NewPersonDeleted creates a PersonDeleted event
func NewPersonDeleted(id valueobjects.PersonID, at time.Time) PersonDeleted {
	return PersonDeleted{BaseEvent: newBase(id, TypePersonDeleted, at), PersonID: id}
}

// PersonUnknowned is raised when a delete keeps the person as an unknown
// placeholder so relatives stay connected.
type PersonUnknowned struct {
	BaseEvent
	PersonID valueobjects.PersonID `json:"person_id"`
}

// NewPersonUnknowned creates a PersonUnknowned event
func NewPersonUnknowned(id valueobjects.PersonID, at time.Time) PersonUnknowned {
	return PersonUnknowned{BaseEvent: newBase(id, TypePersonUnknowned, at), PersonID: id}
}

// PersonResolved is raised when a placeholder is merged into an existing person
type PersonResolved struct {
	BaseEvent
	PlaceholderID valueobjects.PersonID `json:"placeholder_id"`
	PersonID      valueobjects.PersonID `json:"person_id"`
}

// NewPersonResolved creates a PersonResolved event
func NewPersonResolved(placeholder, existing valueobjects.PersonID, at time.Time) PersonResolved {
	return PersonResolved{
		BaseEvent:     newBase(existing, TypePersonResolved, at),
		PlaceholderID: placeholder,
		PersonID:      existing,
	}
}

// RelationshipLinked is raised when an edge is added
type RelationshipLinked struct {
	BaseEvent
	FromID valueobjects.PersonID `json:"from_id"`
	ToID   valueobjects.PersonID `json:"to_id"`
	Kind   string                `json:"kind"`
}

// NewRelationshipLinked creates a RelationshipLinked event
func NewRelationshipLinked(from, to valueobjects.PersonID, kind string, at time.Time) RelationshipLinked {
	return RelationshipLinked{BaseEvent: newBase(from, TypeRelationshipLinked, at), FromID: from, ToID: to, Kind: kind}
}

// RelationshipRemoved is raised when an edge is removed
type RelationshipRemoved struct {
	BaseEvent
	FromID valueobjects.PersonID `json:"from_id"`
	ToID   valueobjects.PersonID `json:"to_id"`
	Kind   string                `json:"kind"`
}

// NewRelationshipRemoved creates a RelationshipRemoved event
func NewRelationshipRemoved(from, to valueobjects.PersonID, kind string, at time.Time) RelationshipRemoved {
	return RelationshipRemoved{BaseEvent: newBase(from, TypeRelationshipRemoved, at), FromID: from, ToID: to, Kind: kind}
}
