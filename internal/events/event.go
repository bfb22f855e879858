// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"roofline_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead enters the pipeline.
type LeadCreated struct {
	BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	LeadName     string     `json:"leadName"`
	Status       string     `json:"status"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	CreatedByID  uuid.UUID  `json:"createdById"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadStatusChanged is published after a status transition has been
// durably applied. Subscribers must treat it as best-effort fan-out:
// the transition has already succeeded by the time this fires.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	LeadName  string    `json:"leadName"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	ActorID   uuid.UUID `json:"actorId"`
	ActorName string    `json:"actorName"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// LeadAssigned is published when a lead is handed to a different rep.
type LeadAssigned struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	PreviousRepID *uuid.UUID `json:"previousRepId,omitempty"`
	NewRepID      *uuid.UUID `json:"newRepId,omitempty"`
	AssignedByID  uuid.UUID  `json:"assignedById"`
}

func (e LeadAssigned) EventName() string { return "leads.assigned" }

// LeadDeletionRequested is published once a deletion request has been
// durably created; the admin fan-out rides on this event.
type LeadDeletionRequested struct {
	BaseEvent
	RequestID        uuid.UUID `json:"requestId"`
	LeadID           uuid.UUID `json:"leadId"`
	LeadName         string    `json:"leadName"`
	LeadAddress      string    `json:"leadAddress"`
	LeadStatus       string    `json:"leadStatus"`
	Reason           string    `json:"reason,omitempty"`
	RequestedByID    uuid.UUID `json:"requestedById"`
	RequestedByName  string    `json:"requestedByName"`
	RequestedByEmail string    `json:"requestedByEmail"`
}

func (e LeadDeletionRequested) EventName() string { return "leads.deletion.requested" }
