// Package service holds the lead management operations: create, read,
// partial update, assignment, listing, manual notes and the activity feed.
// Status transitions live in the transition package and deletion review in
// the deletion package.
package service

import (
	"context"
	"errors"
	"fmt"

	"roofline_backend/internal/events"
	"roofline_backend/internal/leads/domain"
	"roofline_backend/internal/leads/repository"
	"roofline_backend/platform/apperr"
	"roofline_backend/platform/httpkit"
	"roofline_backend/platform/logger"
	"roofline_backend/platform/phone"

	"github.com/google/uuid"
)

const msgLeadNotFound = "Lead not found"

// Store is the persistence contract for lead management.
type Store interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Lead, int, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
	CreateActivity(ctx context.Context, params repository.CreateActivityParams) (repository.Activity, error)
	ListActivities(ctx context.Context, leadID uuid.UUID) ([]repository.Activity, error)
}

type Service struct {
	store Store
	bus   events.Bus
	log   *logger.Logger
}

func New(store Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

type CreateLeadInput struct {
	FirstName             string
	LastName              string
	Phone                 string
	Email                 *string
	AddressStreet         string
	AddressCity           string
	AddressState          string
	AddressZip            string
	Status                string
	AssignedToID          *uuid.UUID
	InsuranceCarrier      *string
	InsurancePolicyNumber *string
	InsuranceClaimNumber  *string
	Metadata              map[string]any
}

// Create inserts a new lead and appends its LEAD_CREATED audit entry. A
// missing status defaults to the pipeline entry stage.
func (s *Service) Create(ctx context.Context, input CreateLeadInput, actor httpkit.Identity) (repository.Lead, error) {
	if actor == nil || !actor.IsAuthenticated() {
		return repository.Lead{}, apperr.Unauthorized("authentication required")
	}

	status := domain.StatusFollowUps
	if input.Status != "" {
		if !domain.IsKnownStatus(input.Status) {
			return repository.Lead{}, apperr.Validation(fmt.Sprintf("invalid status: %s", input.Status))
		}
		status = domain.Status(input.Status)
	}

	lead, err := s.store.Create(ctx, repository.CreateLeadParams{
		FirstName:             input.FirstName,
		LastName:              input.LastName,
		Phone:                 phone.NormalizeE164(input.Phone),
		Email:                 input.Email,
		AddressStreet:         input.AddressStreet,
		AddressCity:           input.AddressCity,
		AddressState:          input.AddressState,
		AddressZip:            input.AddressZip,
		Status:                status,
		AssignedToID:          input.AssignedToID,
		InsuranceCarrier:      input.InsuranceCarrier,
		InsurancePolicyNumber: input.InsurancePolicyNumber,
		InsuranceClaimNumber:  input.InsuranceClaimNumber,
		Metadata:              input.Metadata,
	})
	if err != nil {
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "could not create lead", err)
	}

	if _, err := s.store.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID: lead.ID,
		Type:   domain.ActivityLeadCreated,
		Title:  "Lead created",
		UserID: actor.UserID(),
	}); err != nil {
		s.log.Warn("could not record creation activity", "leadId", lead.ID, "error", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadCreated{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       lead.ID,
			LeadName:     lead.FullName(),
			Status:       string(lead.Status),
			AssignedToID: lead.AssignedToID,
			CreatedByID:  actor.UserID(),
		})
	}

	return lead, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound(msgLeadNotFound)
		}
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "could not load lead", err)
	}
	return lead, nil
}

// Update applies a partial edit. Status is deliberately absent from
// UpdateLeadParams; status moves only through the transition engine so
// every change is audited and its side effects fire.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params repository.UpdateLeadParams, actor httpkit.Identity) (repository.Lead, error) {
	if actor == nil || !actor.IsAuthenticated() {
		return repository.Lead{}, apperr.Unauthorized("authentication required")
	}

	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound(msgLeadNotFound)
		}
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "could not load lead", err)
	}

	if params.Phone != nil {
		normalized := phone.NormalizeE164(*params.Phone)
		params.Phone = &normalized
	}

	lead, err := s.store.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound(msgLeadNotFound)
		}
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "could not update lead", err)
	}

	activityType := domain.ActivityLeadUpdated
	title := "Lead details updated"
	if params.AssignedToIDSet && !uuidPtrEqual(before.AssignedToID, lead.AssignedToID) {
		activityType = domain.ActivityAssigneeChanged
		title = "Assignee changed"
	}
	if _, err := s.store.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID: lead.ID,
		Type:   activityType,
		Title:  title,
		UserID: actor.UserID(),
	}); err != nil {
		s.log.Warn("could not record update activity", "leadId", lead.ID, "error", err)
	}

	if activityType == domain.ActivityAssigneeChanged && s.bus != nil {
		s.bus.Publish(ctx, events.LeadAssigned{
			BaseEvent:     events.NewBaseEvent(),
			LeadID:        lead.ID,
			PreviousRepID: before.AssignedToID,
			NewRepID:      lead.AssignedToID,
			AssignedByID:  actor.UserID(),
		})
	}

	return lead, nil
}

// Assign hands the lead to another rep, or unassigns it when repID is nil.
func (s *Service) Assign(ctx context.Context, id uuid.UUID, repID *uuid.UUID, actor httpkit.Identity) (repository.Lead, error) {
	return s.Update(ctx, id, repository.UpdateLeadParams{
		AssignedToID:    repID,
		AssignedToIDSet: true,
	}, actor)
}

func (s *Service) List(ctx context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 25
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	return s.store.List(ctx, params)
}

// PipelineCounts returns the lead count for every pipeline stage, with
// zero entries included so the board renders empty columns.
func (s *Service) PipelineCounts(ctx context.Context) (map[domain.Status]int, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not count leads", err)
	}
	for _, status := range domain.Statuses() {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}
	return counts, nil
}

// AddNote appends a manual NOTE entry to the lead's audit trail.
func (s *Service) AddNote(ctx context.Context, leadID uuid.UUID, text string, actor httpkit.Identity) (repository.Activity, error) {
	if actor == nil || !actor.IsAuthenticated() {
		return repository.Activity{}, apperr.Unauthorized("authentication required")
	}

	description := repository.TruncateDescription(text, repository.ActivityDescriptionMaxLen)
	if description == nil {
		return repository.Activity{}, apperr.Validation("note text is required")
	}

	if _, err := s.store.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Activity{}, apperr.NotFound(msgLeadNotFound)
		}
		return repository.Activity{}, apperr.Wrap(apperr.KindInternal, "could not load lead", err)
	}

	activity, err := s.store.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:      leadID,
		Type:        domain.ActivityNote,
		Title:       "Note added",
		Description: description,
		UserID:      actor.UserID(),
	})
	if err != nil {
		return repository.Activity{}, apperr.Wrap(apperr.KindInternal, "could not create note", err)
	}
	return activity, nil
}

// ActivityFeed returns the lead's full audit trail, oldest first.
func (s *Service) ActivityFeed(ctx context.Context, leadID uuid.UUID) ([]repository.Activity, error) {
	if _, err := s.store.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgLeadNotFound)
		}
		return nil, apperr.Wrap(apperr.KindInternal, "could not load lead", err)
	}

	activities, err := s.store.ListActivities(ctx, leadID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not list activities", err)
	}
	return activities, nil
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
