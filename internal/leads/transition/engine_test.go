package transition

import (
	"context"
	"errors"
	"strings"
	"testing"

	"roofline_backend/internal/chat"
	"roofline_backend/internal/leads/domain"
	"roofline_backend/internal/leads/repository"
	"roofline_backend/internal/leads/sideeffect"
	"roofline_backend/platform/apperr"
	"roofline_backend/platform/httpkit"
	"roofline_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	lead          repository.Lead
	getErr        error
	applyErr      error
	applied       bool
	appliedStatus domain.Status
	activity      repository.CreateActivityParams
}

func (s *fakeStore) GetByID(_ context.Context, _ uuid.UUID) (repository.Lead, error) {
	if s.getErr != nil {
		return repository.Lead{}, s.getErr
	}
	return s.lead, nil
}

func (s *fakeStore) ApplyStatusChange(_ context.Context, _ uuid.UUID, newStatus domain.Status, activity repository.CreateActivityParams) (repository.Lead, repository.Activity, error) {
	if s.applyErr != nil {
		return repository.Lead{}, repository.Activity{}, s.applyErr
	}
	s.applied = true
	s.appliedStatus = newStatus
	s.activity = activity

	updated := s.lead
	updated.Status = newStatus
	return updated, repository.Activity{}, nil
}

type fakeNotifier struct {
	calls  int
	update chat.StatusUpdate
	err    error
}

func (n *fakeNotifier) UpdateStatus(_ context.Context, _ chat.Credentials, update chat.StatusUpdate) error {
	n.calls++
	n.update = update
	return n.err
}

type fakeScheduler struct {
	calls     int
	forStatus domain.Status
	err       error
}

func (s *fakeScheduler) ShouldSchedule(status domain.Status) bool {
	switch status {
	case domain.StatusACV, domain.StatusJob, domain.StatusScheduled:
		return true
	}
	return false
}

func (s *fakeScheduler) ScheduleFor(_ context.Context, _ repository.Lead, status domain.Status) (string, error) {
	s.calls++
	s.forStatus = status
	return "evt_1", s.err
}

func testActor() httpkit.Identity {
	return httpkit.NewIdentity(uuid.New(), "Dana Reyes", "dana@example.com", []string{"rep"})
}

func newTestEngine(store *fakeStore, notifier *fakeNotifier, scheduler *fakeScheduler) *Engine {
	runner := sideeffect.NewRunner(logger.New("development"))
	return NewEngine(store, runner, notifier, scheduler, nil).WithSyncDispatch()
}

func testLead(status domain.Status) repository.Lead {
	return repository.Lead{
		ID:        uuid.New(),
		FirstName: "Sam",
		LastName:  "Porter",
		Status:    status,
	}
}

func TestTransitionStatusRejectsUnknownStatus(t *testing.T) {
	store := &fakeStore{lead: testLead(domain.StatusFollowUps)}
	engine := newTestEngine(store, &fakeNotifier{}, &fakeScheduler{})

	result, err := engine.TransitionStatus(context.Background(), store.lead.ID, "launched", testActor(), chat.Credentials{})
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if result.Success {
		t.Error("result should not be success")
	}
	if store.applied {
		t.Error("no status change should be written")
	}
}

func TestTransitionStatusLeadNotFound(t *testing.T) {
	store := &fakeStore{getErr: repository.ErrNotFound}
	engine := newTestEngine(store, &fakeNotifier{}, &fakeScheduler{})

	result, err := engine.TransitionStatus(context.Background(), uuid.New(), "job", testActor(), chat.Credentials{})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if result.Error != "Lead not found" {
		t.Errorf("expected error message %q, got %q", "Lead not found", result.Error)
	}
}

func TestTransitionStatusRequiresAuthentication(t *testing.T) {
	store := &fakeStore{lead: testLead(domain.StatusFollowUps)}
	engine := newTestEngine(store, &fakeNotifier{}, &fakeScheduler{})

	_, err := engine.TransitionStatus(context.Background(), store.lead.ID, "job", nil, chat.Credentials{})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestTransitionStatusIdempotentSameStatus(t *testing.T) {
	store := &fakeStore{lead: testLead(domain.StatusJob)}
	notifier := &fakeNotifier{}
	scheduler := &fakeScheduler{}
	engine := newTestEngine(store, notifier, scheduler)

	result, err := engine.TransitionStatus(context.Background(), store.lead.ID, "job", testActor(), chat.Credentials{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("same-status transition should succeed")
	}
	if store.applied {
		t.Error("same-status transition must not write")
	}
	if notifier.calls != 0 || scheduler.calls != 0 {
		t.Error("same-status transition must not dispatch side effects")
	}
}

func TestTransitionStatusWritesActivityWithLabels(t *testing.T) {
	store := &fakeStore{lead: testLead(domain.StatusSignedContract)}
	engine := newTestEngine(store, &fakeNotifier{}, &fakeScheduler{})

	result, err := engine.TransitionStatus(context.Background(), store.lead.ID, "acv", testActor(), chat.Credentials{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatal("expected success")
	}
	if store.appliedStatus != domain.StatusACV {
		t.Errorf("expected status acv, got %s", store.appliedStatus)
	}
	if store.activity.Type != domain.ActivityStatusChanged {
		t.Errorf("expected STATUS_CHANGED activity, got %s", store.activity.Type)
	}
	title := store.activity.Title
	if !strings.Contains(title, "Signed Contract") || !strings.Contains(title, "ACV") {
		t.Errorf("activity title should carry both labels, got %q", title)
	}
}

func TestTransitionStatusChatFailureDoesNotFailTransition(t *testing.T) {
	store := &fakeStore{lead: testLead(domain.StatusFollowUps)}
	notifier := &fakeNotifier{err: errors.New("webhook down")}
	engine := newTestEngine(store, notifier, &fakeScheduler{})

	result, err := engine.TransitionStatus(context.Background(), store.lead.ID, "colors", testActor(), chat.Credentials{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("chat failure must not fail the transition")
	}
	if notifier.calls != 1 {
		t.Errorf("expected one chat call, got %d", notifier.calls)
	}
}

func TestTransitionStatusSchedulerFailureDoesNotFailTransition(t *testing.T) {
	store := &fakeStore{lead: testLead(domain.StatusFollowUps)}
	scheduler := &fakeScheduler{err: errors.New("calendar down")}
	engine := newTestEngine(store, &fakeNotifier{}, scheduler)

	result, err := engine.TransitionStatus(context.Background(), store.lead.ID, "acv", testActor(), chat.Credentials{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("scheduler failure must not fail the transition")
	}
	if scheduler.calls != 1 {
		t.Errorf("expected one scheduling call, got %d", scheduler.calls)
	}
}

func TestTransitionStatusSchedulesOnlyMappedStatuses(t *testing.T) {
	cases := []struct {
		status    string
		scheduled bool
	}{
		{"acv", true},
		{"job", true},
		{"scheduled", true},
		{"colors", false},
		{"denied", false},
		{"completed_jobs", false},
	}

	for _, tc := range cases {
		store := &fakeStore{lead: testLead(domain.StatusFollowUps)}
		scheduler := &fakeScheduler{}
		engine := newTestEngine(store, &fakeNotifier{}, scheduler)

		if _, err := engine.TransitionStatus(context.Background(), store.lead.ID, tc.status, testActor(), chat.Credentials{}); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.status, err)
		}

		want := 0
		if tc.scheduled {
			want = 1
		}
		if scheduler.calls != want {
			t.Errorf("%s: expected %d scheduling calls, got %d", tc.status, want, scheduler.calls)
		}
	}
}

func TestTransitionStatusNotifierReceivesLabels(t *testing.T) {
	store := &fakeStore{lead: testLead(domain.StatusACV)}
	notifier := &fakeNotifier{}
	engine := newTestEngine(store, notifier, &fakeScheduler{})

	if _, err := engine.TransitionStatus(context.Background(), store.lead.ID, "zero_balance", testActor(), chat.Credentials{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notifier.update.OldLabel != "ACV" || notifier.update.NewLabel != "Zero Balance" {
		t.Errorf("notifier got labels %q -> %q", notifier.update.OldLabel, notifier.update.NewLabel)
	}
	if notifier.update.ActorName != "Dana Reyes" {
		t.Errorf("notifier got actor %q", notifier.update.ActorName)
	}
}

type fakeReminder struct {
	calls int
	err   error
}

func (r *fakeReminder) EnqueueFollowUpReminder(_ context.Context, _ uuid.UUID, _ string) error {
	r.calls++
	return r.err
}

func TestTransitionIntoFollowUpsQueuesReminder(t *testing.T) {
	store := &fakeStore{lead: testLead(domain.StatusDenied)}
	reminder := &fakeReminder{}
	engine := newTestEngine(store, &fakeNotifier{}, &fakeScheduler{}).WithFollowUpReminder(reminder)

	result, err := engine.TransitionStatus(context.Background(), store.lead.ID, string(domain.StatusFollowUps), testActor(), chat.Credentials{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatal("expected success")
	}
	if reminder.calls != 1 {
		t.Errorf("expected 1 reminder enqueue, got %d", reminder.calls)
	}
}

func TestTransitionToOtherStatusQueuesNoReminder(t *testing.T) {
	store := &fakeStore{lead: testLead(domain.StatusFollowUps)}
	reminder := &fakeReminder{}
	engine := newTestEngine(store, &fakeNotifier{}, &fakeScheduler{}).WithFollowUpReminder(reminder)

	if _, err := engine.TransitionStatus(context.Background(), store.lead.ID, string(domain.StatusColors), testActor(), chat.Credentials{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reminder.calls != 0 {
		t.Errorf("expected no reminder enqueue, got %d", reminder.calls)
	}
}

func TestReminderFailureDoesNotAffectResult(t *testing.T) {
	store := &fakeStore{lead: testLead(domain.StatusDenied)}
	reminder := &fakeReminder{err: errors.New("redis unreachable")}
	engine := newTestEngine(store, &fakeNotifier{}, &fakeScheduler{}).WithFollowUpReminder(reminder)

	result, err := engine.TransitionStatus(context.Background(), store.lead.ID, string(domain.StatusFollowUps), testActor(), chat.Credentials{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("reminder failure must not fail the transition")
	}
	if !store.applied {
		t.Error("status change must persist")
	}
}
