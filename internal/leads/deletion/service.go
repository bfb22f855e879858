// Package deletion converts a delete intent into a reviewable request.
// A lead never disappears on a rep's say-so: deletion goes PENDING first
// and only an admin approval performs the hard delete.
package deletion

import (
	"context"
	"errors"

	"roofline_backend/internal/events"
	"roofline_backend/internal/leads/domain"
	"roofline_backend/internal/leads/repository"
	"roofline_backend/platform/apperr"
	"roofline_backend/platform/httpkit"
	"roofline_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	msgLeadNotFound     = "Lead not found"
	msgRequestNotFound  = "Deletion request not found"
	msgRequestSubmitted = "Deletion request submitted for admin review"
)

// Store is the persistence contract for the workflow. ApproveDeletionRequest
// must resolve the request and delete the lead as one unit.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	CreateActivity(ctx context.Context, params repository.CreateActivityParams) (repository.Activity, error)
	CreateDeletionRequest(ctx context.Context, params repository.CreateDeletionRequestParams) (repository.DeletionRequest, error)
	GetDeletionRequest(ctx context.Context, id uuid.UUID) (repository.DeletionRequest, error)
	ListPendingDeletionRequests(ctx context.Context) ([]repository.DeletionRequest, error)
	ResolveDeletionRequest(ctx context.Context, id uuid.UUID, status domain.DeletionRequestStatus, resolvedByID uuid.UUID) (repository.DeletionRequest, error)
	ApproveDeletionRequest(ctx context.Context, id uuid.UUID, resolvedByID uuid.UUID) (repository.DeletionRequest, error)
	ListPhotoKeys(ctx context.Context, leadID uuid.UUID) ([]string, error)
}

// ObjectRemover deletes a stored photo object. A nil implementation means
// no object storage is attached.
type ObjectRemover interface {
	RemoveObject(ctx context.Context, objectKey string) error
}

// RequestResult is the caller-facing outcome of requestDeletion.
type RequestResult struct {
	Success   bool       `json:"success"`
	RequestID *uuid.UUID `json:"requestId,omitempty"`
	Message   string     `json:"message"`
}

type Service struct {
	store  Store
	photos ObjectRemover
	bus    events.Bus
	log    *logger.Logger
}

func New(store Store, photos ObjectRemover, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		photos: photos,
		bus:    bus,
		log:    log,
	}
}

// RequestDeletion files a PENDING deletion request carrying a snapshot of
// the lead's display fields frozen at call time. The admin notification
// fan-out rides the event bus and is best-effort: by the time it fires the
// request is already durable, so notification failures never turn the
// result into a failure.
//
// Nothing stops a second PENDING request for the same lead; see DESIGN.md
// for the open product decision.
func (s *Service) RequestDeletion(ctx context.Context, leadID uuid.UUID, actor httpkit.Identity, reason *string) (RequestResult, error) {
	if actor == nil || !actor.IsAuthenticated() {
		err := apperr.Unauthorized("authentication required")
		return RequestResult{Success: false, Message: err.Message}, err
	}

	lead, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			notFound := apperr.NotFound(msgLeadNotFound)
			return RequestResult{Success: false, Message: notFound.Message}, notFound
		}
		wrapped := apperr.Wrap(apperr.KindInternal, "could not load lead", err)
		return RequestResult{Success: false, Message: wrapped.Message}, wrapped
	}

	request, err := s.store.CreateDeletionRequest(ctx, repository.CreateDeletionRequestParams{
		LeadID:           lead.ID,
		LeadName:         lead.FullName(),
		LeadEmail:        lead.Email,
		LeadAddress:      lead.FullAddress(),
		LeadStatus:       lead.Status,
		LeadCreatedAt:    lead.CreatedAt,
		RequestedByID:    actor.UserID(),
		RequestedByName:  actor.Name(),
		RequestedByEmail: actor.Email(),
		Reason:           reason,
	})
	if err != nil {
		wrapped := apperr.Wrap(apperr.KindInternal, "could not create deletion request", err)
		return RequestResult{Success: false, Message: wrapped.Message}, wrapped
	}

	_, _ = s.store.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:      lead.ID,
		Type:        domain.ActivityDeletionRequest,
		Title:       "Deletion requested",
		Description: reason,
		UserID:      actor.UserID(),
	})

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadDeletionRequested{
			BaseEvent:        events.NewBaseEvent(),
			RequestID:        request.ID,
			LeadID:           lead.ID,
			LeadName:         request.LeadName,
			LeadAddress:      request.LeadAddress,
			LeadStatus:       string(request.LeadStatus),
			Reason:           derefOrEmpty(reason),
			RequestedByID:    actor.UserID(),
			RequestedByName:  actor.Name(),
			RequestedByEmail: actor.Email(),
		})
	}

	return RequestResult{
		Success:   true,
		RequestID: &request.ID,
		Message:   msgRequestSubmitted,
	}, nil
}

// ListPending returns requests awaiting review, for the admin surface.
func (s *Service) ListPending(ctx context.Context) ([]repository.DeletionRequest, error) {
	return s.store.ListPendingDeletionRequests(ctx)
}

// Approve resolves a PENDING request and hard-deletes the lead; the two
// writes are one transaction, so a failed delete leaves the request
// PENDING and the approval can be retried. Stored photo objects are
// removed from the bucket before the rows cascade away with the lead;
// object removal is best-effort either way.
func (s *Service) Approve(ctx context.Context, requestID uuid.UUID, actor httpkit.Identity) (repository.DeletionRequest, error) {
	if actor == nil || !actor.IsAuthenticated() {
		return repository.DeletionRequest{}, apperr.Unauthorized("authentication required")
	}

	pending, err := s.store.GetDeletionRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return repository.DeletionRequest{}, apperr.NotFound(msgRequestNotFound)
		}
		return repository.DeletionRequest{}, apperr.Wrap(apperr.KindInternal, "could not load deletion request", err)
	}

	if s.photos != nil {
		keys, err := s.store.ListPhotoKeys(ctx, pending.LeadID)
		if err != nil {
			s.log.Warn("could not list photo objects for deleted lead", "leadId", pending.LeadID, "error", err)
		}
		for _, key := range keys {
			if err := s.photos.RemoveObject(ctx, key); err != nil {
				s.log.Warn("could not remove photo object", "objectKey", key, "error", err)
			}
		}
	}

	request, err := s.store.ApproveDeletionRequest(ctx, requestID, actor.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return repository.DeletionRequest{}, apperr.NotFound(msgRequestNotFound)
		}
		return repository.DeletionRequest{}, apperr.Wrap(apperr.KindInternal, "could not approve deletion request", err)
	}

	return request, nil
}

// Deny closes a PENDING request with no further action on the lead.
func (s *Service) Deny(ctx context.Context, requestID uuid.UUID, actor httpkit.Identity) (repository.DeletionRequest, error) {
	return s.resolve(ctx, requestID, domain.DeletionDenied, actor)
}

func (s *Service) resolve(ctx context.Context, requestID uuid.UUID, status domain.DeletionRequestStatus, actor httpkit.Identity) (repository.DeletionRequest, error) {
	if actor == nil || !actor.IsAuthenticated() {
		return repository.DeletionRequest{}, apperr.Unauthorized("authentication required")
	}

	request, err := s.store.ResolveDeletionRequest(ctx, requestID, status, actor.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return repository.DeletionRequest{}, apperr.NotFound(msgRequestNotFound)
		}
		return repository.DeletionRequest{}, apperr.Wrap(apperr.KindInternal, "could not resolve deletion request", err)
	}
	return request, nil
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
