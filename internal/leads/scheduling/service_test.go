package scheduling

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"roofline_backend/internal/calendar"
	"roofline_backend/internal/leads/domain"
	"roofline_backend/internal/leads/repository"

	"github.com/google/uuid"
)

type fakeCalendar struct {
	params calendar.CreateEventParams
	calls  int
}

func (c *fakeCalendar) CreateEvent(_ context.Context, params calendar.CreateEventParams) (string, error) {
	c.calls++
	c.params = params
	return "evt_42", nil
}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)
}

func testLead() repository.Lead {
	return repository.Lead{
		ID:            uuid.New(),
		FirstName:     "Ava",
		LastName:      "Stone",
		AddressStreet: "12 Oak St",
		AddressCity:   "Tulsa",
		AddressState:  "OK",
		AddressZip:    "74101",
	}
}

func TestShouldScheduleOnlyMappedStatuses(t *testing.T) {
	svc := New(DefaultRules(), &fakeCalendar{})

	for _, status := range []domain.Status{domain.StatusACV, domain.StatusJob, domain.StatusScheduled} {
		if !svc.ShouldSchedule(status) {
			t.Errorf("expected %s to schedule", status)
		}
	}
	for _, status := range []domain.Status{domain.StatusFollowUps, domain.StatusColors, domain.StatusDenied, domain.StatusZeroBalance} {
		if svc.ShouldSchedule(status) {
			t.Errorf("expected %s not to schedule", status)
		}
	}
}

func TestScheduleForACVPickup(t *testing.T) {
	cal := &fakeCalendar{}
	svc := New(DefaultRules(), cal).WithClock(fixedClock)

	eventID, err := svc.ScheduleFor(context.Background(), testLead(), domain.StatusACV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eventID != "evt_42" {
		t.Errorf("expected event id evt_42, got %q", eventID)
	}

	wantStart := fixedClock().AddDate(0, 0, 3)
	if !cal.params.Start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, cal.params.Start)
	}
	if !cal.params.End.Equal(wantStart.Add(time.Hour)) {
		t.Errorf("expected one hour duration, got end %v", cal.params.End)
	}
	if cal.params.Title != "Pick up ACV - Ava Stone" {
		t.Errorf("unexpected title %q", cal.params.Title)
	}
	if cal.params.Type != "acv" {
		t.Errorf("unexpected type %q", cal.params.Type)
	}
	if cal.params.Location == "" {
		t.Error("expected lead address as location")
	}
}

func TestScheduleForBuildDate(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusJob, domain.StatusScheduled} {
		cal := &fakeCalendar{}
		svc := New(DefaultRules(), cal).WithClock(fixedClock)

		if _, err := svc.ScheduleFor(context.Background(), testLead(), status); err != nil {
			t.Fatalf("%s: unexpected error: %v", status, err)
		}
		if cal.params.Title != "Build Date - Ava Stone" {
			t.Errorf("%s: unexpected title %q", status, cal.params.Title)
		}
	}
}

func TestScheduleForQuietStatusIsNoop(t *testing.T) {
	cal := &fakeCalendar{}
	svc := New(DefaultRules(), cal)

	eventID, err := svc.ScheduleFor(context.Background(), testLead(), domain.StatusColors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eventID != "" || cal.calls != 0 {
		t.Error("quiet status must not create an event")
	}
}

func TestLoadRulesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  acv:
    eventType: acv
    label: ACV Walkthrough
    offsetDays: 5
    durationMinutes: 90
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rule, ok := rules.RuleFor(domain.StatusACV)
	if !ok {
		t.Fatal("expected acv rule")
	}
	if rule.Label != "ACV Walkthrough" || rule.OffsetDays != 5 || rule.DurationMinutes != 90 {
		t.Errorf("unexpected rule %+v", rule)
	}

	// Statuses not in the file schedule nothing.
	if _, ok := rules.RuleFor(domain.StatusJob); ok {
		t.Error("job should have no rule when the file omits it")
	}
}

func TestLoadRulesRejectsUnknownStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  invoiced:
    eventType: invoiced
    label: Invoice
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRules(path); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestLoadRulesEmptyPathUsesDefaults(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 3 {
		t.Errorf("expected 3 default rules, got %d", len(rules))
	}
}
