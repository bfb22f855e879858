// Package scheduling auto-creates calendar events when a lead reaches
// certain pipeline stages. Everything here is best-effort: the owning
// transition has already been committed.
package scheduling

import (
	"context"
	"fmt"
	"time"

	"roofline_backend/internal/calendar"
	"roofline_backend/internal/leads/domain"
	"roofline_backend/internal/leads/repository"
)

// CalendarClient is the narrow contract this service needs from the
// calendar collaborator.
type CalendarClient interface {
	CreateEvent(ctx context.Context, params calendar.CreateEventParams) (string, error)
}

type Service struct {
	rules    Rules
	calendar CalendarClient
	now      func() time.Time
}

func New(rules Rules, calendarClient CalendarClient) *Service {
	return &Service{
		rules:    rules,
		calendar: calendarClient,
		now:      time.Now,
	}
}

// WithClock overrides the clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ShouldSchedule reports whether reaching status triggers an event at all,
// letting the dispatcher skip the effect entirely for quiet statuses.
func (s *Service) ShouldSchedule(status domain.Status) bool {
	_, ok := s.rules.RuleFor(status)
	return ok
}

// ScheduleFor creates the calendar event mapped to the lead's new status.
// The event starts at the configured offset from now (default three days
// out) and runs for the configured duration (default one hour).
func (s *Service) ScheduleFor(ctx context.Context, lead repository.Lead, status domain.Status) (string, error) {
	rule, ok := s.rules.RuleFor(status)
	if !ok {
		return "", nil
	}

	start := s.now().AddDate(0, 0, rule.OffsetDays)
	end := start.Add(time.Duration(rule.DurationMinutes) * time.Minute)

	eventID, err := s.calendar.CreateEvent(ctx, calendar.CreateEventParams{
		Title:       fmt.Sprintf("%s - %s", rule.Label, lead.FullName()),
		Description: fmt.Sprintf("Auto-scheduled after lead moved to %s", status.Label()),
		Start:       start,
		End:         end,
		LeadID:      lead.ID,
		LeadName:    lead.FullName(),
		Type:        rule.EventType,
		Location:    lead.FullAddress(),
	})
	if err != nil {
		return "", err
	}

	return eventID, nil
}
