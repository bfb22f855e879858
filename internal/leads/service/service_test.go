package service

import (
	"context"
	"errors"
	"testing"

	"roofline_backend/internal/events"
	"roofline_backend/internal/leads/domain"
	"roofline_backend/internal/leads/repository"
	"roofline_backend/platform/apperr"
	"roofline_backend/platform/httpkit"
	"roofline_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	lead   repository.Lead
	getErr error

	created        *repository.CreateLeadParams
	updated        *repository.UpdateLeadParams
	activities     []repository.CreateActivityParams
	activityErr    error
	listedParams   *repository.ListParams
	statusCounts   map[domain.Status]int
	feed           []repository.Activity
	nextActivityID int64
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	f.created = &params
	lead := f.lead
	lead.Status = params.Status
	lead.Phone = params.Phone
	return lead, nil
}

func (f *fakeStore) GetByID(_ context.Context, _ uuid.UUID) (repository.Lead, error) {
	if f.getErr != nil {
		return repository.Lead{}, f.getErr
	}
	return f.lead, nil
}

func (f *fakeStore) Update(_ context.Context, _ uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	f.updated = &params
	lead := f.lead
	if params.AssignedToIDSet {
		lead.AssignedToID = params.AssignedToID
	}
	return lead, nil
}

func (f *fakeStore) List(_ context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	f.listedParams = &params
	return []repository.Lead{f.lead}, 1, nil
}

func (f *fakeStore) CountByStatus(_ context.Context) (map[domain.Status]int, error) {
	return f.statusCounts, nil
}

func (f *fakeStore) CreateActivity(_ context.Context, params repository.CreateActivityParams) (repository.Activity, error) {
	if f.activityErr != nil {
		return repository.Activity{}, f.activityErr
	}
	f.activities = append(f.activities, params)
	f.nextActivityID++
	return repository.Activity{
		ID:          f.nextActivityID,
		LeadID:      params.LeadID,
		Type:        params.Type,
		Title:       params.Title,
		Description: params.Description,
		UserID:      params.UserID,
	}, nil
}

func (f *fakeStore) ListActivities(_ context.Context, _ uuid.UUID) ([]repository.Activity, error) {
	return f.feed, nil
}

func testActor() httpkit.Identity {
	return httpkit.NewIdentity(uuid.New(), "Dana Reyes", "dana@roofline.test", []string{"rep"})
}

func newTestService(store *fakeStore) *Service {
	return New(store, events.NewInMemoryBus(logger.New("development")), logger.New("development"))
}

func TestCreateDefaultsToFollowUps(t *testing.T) {
	store := &fakeStore{lead: repository.Lead{ID: uuid.New(), FirstName: "Ava", LastName: "Stone"}}
	svc := newTestService(store)

	lead, err := svc.Create(context.Background(), CreateLeadInput{
		FirstName: "Ava",
		LastName:  "Stone",
		Phone:     "(212) 867-5309",
	}, testActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Status != domain.StatusFollowUps {
		t.Errorf("expected default status %q, got %q", domain.StatusFollowUps, lead.Status)
	}
	if store.created.Phone != "+12128675309" {
		t.Errorf("expected normalized phone, got %q", store.created.Phone)
	}
	if len(store.activities) != 1 || store.activities[0].Type != domain.ActivityLeadCreated {
		t.Fatalf("expected one LEAD_CREATED activity, got %+v", store.activities)
	}
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), CreateLeadInput{
		FirstName: "Ava",
		LastName:  "Stone",
		Status:    "archived",
	}, testActor())
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.created != nil {
		t.Error("expected no insert for unknown status")
	}
}

func TestCreateRequiresAuthentication(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Create(context.Background(), CreateLeadInput{FirstName: "Ava"}, nil)
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestUpdateRecordsAssigneeChange(t *testing.T) {
	leadID := uuid.New()
	store := &fakeStore{lead: repository.Lead{ID: leadID, FirstName: "Ava", LastName: "Stone"}}
	svc := newTestService(store)

	repID := uuid.New()
	lead, err := svc.Assign(context.Background(), leadID, &repID, testActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.AssignedToID == nil || *lead.AssignedToID != repID {
		t.Fatal("expected lead assigned to new rep")
	}
	if len(store.activities) != 1 {
		t.Fatalf("expected one activity, got %d", len(store.activities))
	}
	if store.activities[0].Type != domain.ActivityAssigneeChanged {
		t.Errorf("expected ASSIGNEE_CHANGED activity, got %q", store.activities[0].Type)
	}
}

func TestUpdatePlainEditRecordsLeadUpdated(t *testing.T) {
	leadID := uuid.New()
	store := &fakeStore{lead: repository.Lead{ID: leadID, FirstName: "Ava"}}
	svc := newTestService(store)

	city := "Tulsa"
	if _, err := svc.Update(context.Background(), leadID, repository.UpdateLeadParams{AddressCity: &city}, testActor()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.activities[0].Type != domain.ActivityLeadUpdated {
		t.Errorf("expected LEAD_UPDATED activity, got %q", store.activities[0].Type)
	}
}

func TestUpdateNormalizesPhone(t *testing.T) {
	leadID := uuid.New()
	store := &fakeStore{lead: repository.Lead{ID: leadID}}
	svc := newTestService(store)

	raw := "415 555 2671"
	if _, err := svc.Update(context.Background(), leadID, repository.UpdateLeadParams{Phone: &raw}, testActor()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.updated.Phone == nil || *store.updated.Phone != "+14155552671" {
		t.Errorf("expected normalized phone, got %v", store.updated.Phone)
	}
}

func TestUpdateNotFound(t *testing.T) {
	store := &fakeStore{getErr: repository.ErrNotFound}
	svc := newTestService(store)

	_, err := svc.Update(context.Background(), uuid.New(), repository.UpdateLeadParams{}, testActor())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListClampsPageSize(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	if _, _, err := svc.List(context.Background(), repository.ListParams{Limit: 500, Offset: -3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.listedParams.Limit != 25 {
		t.Errorf("expected limit clamped to 25, got %d", store.listedParams.Limit)
	}
	if store.listedParams.Offset != 0 {
		t.Errorf("expected offset clamped to 0, got %d", store.listedParams.Offset)
	}
}

func TestPipelineCountsFillsEmptyStages(t *testing.T) {
	store := &fakeStore{statusCounts: map[domain.Status]int{domain.StatusJob: 4}}
	svc := newTestService(store)

	counts, err := svc.PipelineCounts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counts) != len(domain.Statuses()) {
		t.Fatalf("expected %d stages, got %d", len(domain.Statuses()), len(counts))
	}
	if counts[domain.StatusJob] != 4 {
		t.Errorf("expected job count 4, got %d", counts[domain.StatusJob])
	}
	if counts[domain.StatusDenied] != 0 {
		t.Errorf("expected denied count 0, got %d", counts[domain.StatusDenied])
	}
}

func TestAddNoteRejectsBlankText(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.AddNote(context.Background(), uuid.New(), "   ", testActor())
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddNoteTruncatesLongText(t *testing.T) {
	leadID := uuid.New()
	store := &fakeStore{lead: repository.Lead{ID: leadID}}
	svc := newTestService(store)

	long := ""
	for range 50 {
		long += "useful detail "
	}
	activity, err := svc.AddNote(context.Background(), leadID, long, testActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if activity.Type != domain.ActivityNote {
		t.Errorf("expected NOTE activity, got %q", activity.Type)
	}
	if activity.Description == nil {
		t.Fatal("expected a description")
	}
	want := repository.ActivityDescriptionMaxLen + len("...")
	if len(*activity.Description) != want {
		t.Errorf("expected description of %d chars, got %d", want, len(*activity.Description))
	}
}

func TestAddNoteLeadNotFound(t *testing.T) {
	store := &fakeStore{getErr: repository.ErrNotFound}
	svc := newTestService(store)

	_, err := svc.AddNote(context.Background(), uuid.New(), "call back Tuesday", testActor())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestActivityFeedPropagatesStoreFailure(t *testing.T) {
	store := &fakeStore{getErr: errors.New("connection reset")}
	svc := newTestService(store)

	_, err := svc.ActivityFeed(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.Is(err, apperr.KindNotFound) {
		t.Fatal("infrastructure failure must not read as not found")
	}
}
