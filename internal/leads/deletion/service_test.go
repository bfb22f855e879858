package deletion

import (
	"context"
	"errors"
	"testing"
	"time"

	"roofline_backend/internal/leads/domain"
	"roofline_backend/internal/leads/repository"
	"roofline_backend/platform/apperr"
	"roofline_backend/platform/httpkit"
	"roofline_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	lead          repository.Lead
	leadMissing   bool
	created       *repository.CreateDeletionRequestParams
	request       repository.DeletionRequest
	getRequestErr error
	resolveErr    error
	resolved      *domain.DeletionRequestStatus
	approveErr    error
	deletedLead   *uuid.UUID
	photoKeys     []string
	activities    []repository.CreateActivityParams
	activityErr   error
	pending       []repository.DeletionRequest
}

func (s *fakeStore) GetByID(_ context.Context, _ uuid.UUID) (repository.Lead, error) {
	if s.leadMissing {
		return repository.Lead{}, repository.ErrNotFound
	}
	return s.lead, nil
}

func (s *fakeStore) ApproveDeletionRequest(_ context.Context, id uuid.UUID, resolvedByID uuid.UUID) (repository.DeletionRequest, error) {
	if s.approveErr != nil {
		return repository.DeletionRequest{}, s.approveErr
	}
	approved := domain.DeletionApproved
	s.resolved = &approved
	s.deletedLead = &s.request.LeadID
	request := s.request
	request.ID = id
	request.Status = domain.DeletionApproved
	request.ResolvedByID = &resolvedByID
	return request, nil
}

func (s *fakeStore) CreateActivity(_ context.Context, params repository.CreateActivityParams) (repository.Activity, error) {
	if s.activityErr != nil {
		return repository.Activity{}, s.activityErr
	}
	s.activities = append(s.activities, params)
	return repository.Activity{}, nil
}

func (s *fakeStore) CreateDeletionRequest(_ context.Context, params repository.CreateDeletionRequestParams) (repository.DeletionRequest, error) {
	s.created = &params
	return repository.DeletionRequest{
		ID:            uuid.New(),
		LeadID:        params.LeadID,
		LeadName:      params.LeadName,
		LeadAddress:   params.LeadAddress,
		LeadStatus:    params.LeadStatus,
		LeadCreatedAt: params.LeadCreatedAt,
		Status:        domain.DeletionPending,
	}, nil
}

func (s *fakeStore) GetDeletionRequest(_ context.Context, _ uuid.UUID) (repository.DeletionRequest, error) {
	if s.getRequestErr != nil {
		return repository.DeletionRequest{}, s.getRequestErr
	}
	return s.request, nil
}

func (s *fakeStore) ListPendingDeletionRequests(_ context.Context) ([]repository.DeletionRequest, error) {
	return s.pending, nil
}

func (s *fakeStore) ResolveDeletionRequest(_ context.Context, id uuid.UUID, status domain.DeletionRequestStatus, resolvedByID uuid.UUID) (repository.DeletionRequest, error) {
	if s.resolveErr != nil {
		return repository.DeletionRequest{}, s.resolveErr
	}
	s.resolved = &status
	request := s.request
	request.ID = id
	request.Status = status
	request.ResolvedByID = &resolvedByID
	return request, nil
}

func (s *fakeStore) ListPhotoKeys(_ context.Context, _ uuid.UUID) ([]string, error) {
	return s.photoKeys, nil
}

type fakeRemover struct {
	removed []string
	err     error
}

func (r *fakeRemover) RemoveObject(_ context.Context, objectKey string) error {
	r.removed = append(r.removed, objectKey)
	return r.err
}

func testActor() httpkit.Identity {
	return httpkit.NewIdentity(uuid.New(), "Reese Gold", "reese@example.com", []string{"rep"})
}

func adminActor() httpkit.Identity {
	return httpkit.NewIdentity(uuid.New(), "Morgan Lau", "morgan@example.com", []string{"admin"})
}

func testService(store *fakeStore, remover *fakeRemover) *Service {
	var photos ObjectRemover
	if remover != nil {
		photos = remover
	}
	return New(store, photos, nil, logger.New("development"))
}

func TestRequestDeletionLeadNotFound(t *testing.T) {
	store := &fakeStore{leadMissing: true}
	svc := testService(store, nil)

	result, err := svc.RequestDeletion(context.Background(), uuid.New(), testActor(), nil)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if result.Success {
		t.Error("result should not be success")
	}
	if result.Message != "Lead not found" {
		t.Errorf("expected message %q, got %q", "Lead not found", result.Message)
	}
}

func TestRequestDeletionFreezesSnapshot(t *testing.T) {
	createdAt := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{lead: repository.Lead{
		ID:            uuid.New(),
		FirstName:     "Jo",
		LastName:      "Banks",
		AddressStreet: "9 Pine Rd",
		AddressCity:   "Tulsa",
		AddressState:  "OK",
		AddressZip:    "74101",
		Status:        domain.StatusJob,
		CreatedAt:     createdAt,
	}}
	svc := testService(store, nil)

	reason := "duplicate entry"
	result, err := svc.RequestDeletion(context.Background(), store.lead.ID, testActor(), &reason)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.RequestID == nil {
		t.Fatal("expected success with request id")
	}

	if store.created == nil {
		t.Fatal("expected a request row")
	}
	if store.created.LeadName != "Jo Banks" {
		t.Errorf("snapshot name %q", store.created.LeadName)
	}
	if store.created.LeadStatus != domain.StatusJob {
		t.Errorf("snapshot status %q", store.created.LeadStatus)
	}
	if !store.created.LeadCreatedAt.Equal(createdAt) {
		t.Errorf("snapshot createdAt %v", store.created.LeadCreatedAt)
	}
	if store.created.LeadAddress == "" {
		t.Error("snapshot address should be set")
	}
}

func TestRequestDeletionRecordsActivity(t *testing.T) {
	store := &fakeStore{lead: repository.Lead{ID: uuid.New(), FirstName: "Jo", Status: domain.StatusColors}}
	svc := testService(store, nil)

	reason := "spam"
	if _, err := svc.RequestDeletion(context.Background(), store.lead.ID, testActor(), &reason); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.activities) != 1 {
		t.Fatalf("expected one activity, got %d", len(store.activities))
	}
	if store.activities[0].Type != domain.ActivityDeletionRequest {
		t.Errorf("activity type %q", store.activities[0].Type)
	}
}

func TestRequestDeletionActivityFailureStillSucceeds(t *testing.T) {
	store := &fakeStore{
		lead:        repository.Lead{ID: uuid.New(), FirstName: "Jo", Status: domain.StatusColors},
		activityErr: errors.New("db hiccup"),
	}
	svc := testService(store, nil)

	result, err := svc.RequestDeletion(context.Background(), store.lead.ID, testActor(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("activity write is best-effort and must not fail the request")
	}
}

func TestApproveDeletesLeadAndPhotoObjects(t *testing.T) {
	leadID := uuid.New()
	store := &fakeStore{
		request:   repository.DeletionRequest{LeadID: leadID, Status: domain.DeletionPending},
		photoKeys: []string{"a.jpg", "b.jpg"},
	}
	remover := &fakeRemover{}
	svc := testService(store, remover)

	request, err := svc.Approve(context.Background(), uuid.New(), adminActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.Status != domain.DeletionApproved {
		t.Errorf("expected APPROVED, got %s", request.Status)
	}
	if store.deletedLead == nil || *store.deletedLead != leadID {
		t.Error("lead should be hard-deleted")
	}
	if len(remover.removed) != 2 {
		t.Errorf("expected 2 removed objects, got %d", len(remover.removed))
	}
}

func TestApprovePhotoRemovalFailureStillDeletesLead(t *testing.T) {
	leadID := uuid.New()
	store := &fakeStore{
		request:   repository.DeletionRequest{LeadID: leadID, Status: domain.DeletionPending},
		photoKeys: []string{"a.jpg"},
	}
	remover := &fakeRemover{err: errors.New("bucket offline")}
	svc := testService(store, remover)

	if _, err := svc.Approve(context.Background(), uuid.New(), adminActor()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.deletedLead == nil {
		t.Error("lead delete must proceed despite storage failure")
	}
}

func TestDenyLeavesLeadAlone(t *testing.T) {
	store := &fakeStore{request: repository.DeletionRequest{LeadID: uuid.New(), Status: domain.DeletionPending}}
	svc := testService(store, nil)

	request, err := svc.Deny(context.Background(), uuid.New(), adminActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.Status != domain.DeletionDenied {
		t.Errorf("expected DENIED, got %s", request.Status)
	}
	if store.deletedLead != nil {
		t.Error("denial must not delete the lead")
	}
}

func TestResolveAlreadyResolvedRequest(t *testing.T) {
	store := &fakeStore{
		request:    repository.DeletionRequest{LeadID: uuid.New(), Status: domain.DeletionApproved},
		approveErr: repository.ErrRequestNotFound,
	}
	svc := testService(store, nil)

	_, err := svc.Approve(context.Background(), uuid.New(), adminActor())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for double resolution, got %v", err)
	}
}

func TestDenyAlreadyResolvedRequest(t *testing.T) {
	store := &fakeStore{resolveErr: repository.ErrRequestNotFound}
	svc := testService(store, nil)

	_, err := svc.Deny(context.Background(), uuid.New(), adminActor())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for double resolution, got %v", err)
	}
}

func TestApproveUnknownRequest(t *testing.T) {
	store := &fakeStore{getRequestErr: repository.ErrRequestNotFound}
	svc := testService(store, nil)

	_, err := svc.Approve(context.Background(), uuid.New(), adminActor())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApproveDeleteFailureLeavesRequestRetryable(t *testing.T) {
	leadID := uuid.New()
	store := &fakeStore{
		request:    repository.DeletionRequest{LeadID: leadID, Status: domain.DeletionPending},
		approveErr: errors.New("connection reset"),
	}
	svc := testService(store, nil)

	_, err := svc.Approve(context.Background(), uuid.New(), adminActor())
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.Is(err, apperr.KindNotFound) {
		t.Fatal("a transient failure must not read as not found")
	}
	if store.resolved != nil {
		t.Error("request must not be marked resolved when the delete fails")
	}
	if store.deletedLead != nil {
		t.Error("lead must survive a failed approval")
	}

	store.approveErr = nil
	request, err := svc.Approve(context.Background(), uuid.New(), adminActor())
	if err != nil {
		t.Fatalf("retry should succeed, got %v", err)
	}
	if request.Status != domain.DeletionApproved {
		t.Errorf("expected APPROVED after retry, got %s", request.Status)
	}
	if store.deletedLead == nil || *store.deletedLead != leadID {
		t.Error("retry should delete the lead")
	}
}
