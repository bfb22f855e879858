// Package transition is the mandatory path for changing a lead's pipeline
// status: validate, persist status plus audit entry atomically, then hand
// off to best-effort automations whose outcome never reaches the caller.
package transition

import (
	"context"
	"errors"
	"fmt"

	"roofline_backend/internal/chat"
	"roofline_backend/internal/events"
	"roofline_backend/internal/leads/domain"
	"roofline_backend/internal/leads/repository"
	"roofline_backend/internal/leads/sideeffect"
	"roofline_backend/platform/apperr"
	"roofline_backend/platform/httpkit"

	"github.com/google/uuid"
)

const msgLeadNotFound = "Lead not found"

// Store is the persistence contract the engine needs. ApplyStatusChange
// must write the status and the activity as one unit.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	ApplyStatusChange(ctx context.Context, id uuid.UUID, newStatus domain.Status, activity repository.CreateActivityParams) (repository.Lead, repository.Activity, error)
}

// ChatNotifier posts the transition to the team chat. A zero Credentials
// value must be a silent no-op.
type ChatNotifier interface {
	UpdateStatus(ctx context.Context, creds chat.Credentials, update chat.StatusUpdate) error
}

// AutoScheduler creates the calendar event mapped to a status, if any.
type AutoScheduler interface {
	ShouldSchedule(status domain.Status) bool
	ScheduleFor(ctx context.Context, lead repository.Lead, status domain.Status) (string, error)
}

// FollowUpReminder queues a delayed nudge for leads that land back in the
// follow-ups stage.
type FollowUpReminder interface {
	EnqueueFollowUpReminder(ctx context.Context, leadID uuid.UUID, leadName string) error
}

// Result is the caller-facing outcome of a transition attempt.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type Engine struct {
	store     Store
	runner    *sideeffect.Runner
	notifier  ChatNotifier
	scheduler AutoScheduler
	reminder  FollowUpReminder
	bus       events.Bus
	sync      bool
}

func NewEngine(store Store, runner *sideeffect.Runner, notifier ChatNotifier, scheduler AutoScheduler, bus events.Bus) *Engine {
	return &Engine{
		store:     store,
		runner:    runner,
		notifier:  notifier,
		scheduler: scheduler,
		bus:       bus,
	}
}

// WithFollowUpReminder enables delayed follow-up nudges. Without it,
// transitions into follow-ups queue nothing.
func (e *Engine) WithFollowUpReminder(reminder FollowUpReminder) *Engine {
	e.reminder = reminder
	return e
}

// WithSyncDispatch makes side effects run before TransitionStatus returns.
// Used by tests; production dispatch is fire-and-forget.
func (e *Engine) WithSyncDispatch() *Engine {
	e.sync = true
	return e
}

// TransitionStatus validates and applies a status change for a lead.
//
// The status write and its STATUS_CHANGED activity are one atomic unit;
// side effects run afterwards behind an isolated boundary and cannot
// change the returned result. Setting a lead to the status it already has
// is a success that writes nothing and dispatches nothing.
func (e *Engine) TransitionStatus(ctx context.Context, leadID uuid.UUID, newStatus string, actor httpkit.Identity, creds chat.Credentials) (Result, error) {
	if !domain.IsKnownStatus(newStatus) {
		return failure(apperr.Validation(fmt.Sprintf("invalid status: %s", newStatus)))
	}
	if actor == nil || !actor.IsAuthenticated() {
		return failure(apperr.Unauthorized("authentication required"))
	}

	target := domain.Status(newStatus)

	lead, err := e.store.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return failure(apperr.NotFound(msgLeadNotFound))
		}
		return failure(apperr.Wrap(apperr.KindInternal, "could not load lead", err))
	}

	if lead.Status == target {
		return Result{Success: true}, nil
	}

	oldStatus := lead.Status
	updated, _, err := e.store.ApplyStatusChange(ctx, leadID, target, repository.CreateActivityParams{
		LeadID: leadID,
		Type:   domain.ActivityStatusChanged,
		Title:  fmt.Sprintf("Status changed from %s to %s", oldStatus.Label(), target.Label()),
		UserID: actor.UserID(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return failure(apperr.NotFound(msgLeadNotFound))
		}
		return failure(apperr.Wrap(apperr.KindInternal, "could not update lead status", err))
	}

	if e.bus != nil {
		e.bus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    leadID,
			LeadName:  updated.FullName(),
			OldStatus: string(oldStatus),
			NewStatus: string(target),
			ActorID:   actor.UserID(),
			ActorName: actor.Name(),
		})
	}

	e.dispatch(updated, oldStatus, target, actor, creds)

	return Result{Success: true}, nil
}

// dispatch hands the optional automations to the side-effect runner. Each
// effect fails alone; none of them can reach back into the result.
func (e *Engine) dispatch(lead repository.Lead, oldStatus, newStatus domain.Status, actor httpkit.Identity, creds chat.Credentials) {
	effects := []sideeffect.Effect{
		{
			Name: "chat.status_update",
			Run: func(ctx context.Context) error {
				return e.notifier.UpdateStatus(ctx, creds, chat.StatusUpdate{
					LeadID:    lead.ID,
					LeadName:  lead.FullName(),
					OldLabel:  oldStatus.Label(),
					NewLabel:  newStatus.Label(),
					ActorName: actor.Name(),
				})
			},
		},
	}

	if e.scheduler != nil && e.scheduler.ShouldSchedule(newStatus) {
		effects = append(effects, sideeffect.Effect{
			Name: "calendar.auto_schedule",
			Run: func(ctx context.Context) error {
				_, err := e.scheduler.ScheduleFor(ctx, lead, newStatus)
				return err
			},
		})
	}

	if e.reminder != nil && newStatus == domain.StatusFollowUps {
		effects = append(effects, sideeffect.Effect{
			Name: "scheduler.followup_reminder",
			Run: func(ctx context.Context) error {
				return e.reminder.EnqueueFollowUpReminder(ctx, lead.ID, lead.FullName())
			},
		})
	}

	if e.sync {
		e.runner.Run(context.Background(), lead.ID, effects)
		return
	}
	e.runner.Dispatch(lead.ID, effects)
}

func failure(err *apperr.Error) (Result, error) {
	return Result{Success: false, Error: err.Message}, err
}
