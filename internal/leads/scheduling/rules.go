package scheduling

import (
	"fmt"
	"os"

	"roofline_backend/internal/leads/domain"

	"gopkg.in/yaml.v3"
)

// EventRule describes the calendar event a status automatically schedules.
type EventRule struct {
	EventType       string `yaml:"eventType"`
	Label           string `yaml:"label"`
	OffsetDays      int    `yaml:"offsetDays"`
	DurationMinutes int    `yaml:"durationMinutes"`
}

// Rules maps a pipeline status to its auto-scheduled event, if any.
// Statuses absent from the table schedule nothing.
type Rules map[domain.Status]EventRule

// DefaultRules is the built-in table: reaching ACV schedules an ACV pickup,
// reaching Job or Scheduled schedules a build date. Everything else is quiet.
func DefaultRules() Rules {
	return Rules{
		domain.StatusACV: {
			EventType:       "acv",
			Label:           "Pick up ACV",
			OffsetDays:      3,
			DurationMinutes: 60,
		},
		domain.StatusJob: {
			EventType:       "job",
			Label:           "Build Date",
			OffsetDays:      3,
			DurationMinutes: 60,
		},
		domain.StatusScheduled: {
			EventType:       "scheduled",
			Label:           "Build Date",
			OffsetDays:      3,
			DurationMinutes: 60,
		},
	}
}

type rulesFile struct {
	Rules map[string]EventRule `yaml:"rules"`
}

// LoadRules reads a per-deployment rules table from a YAML file. An empty
// path returns the defaults. Unknown statuses in the file are rejected so a
// typo cannot silently disable an automation.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read auto-schedule rules: %w", err)
	}

	var parsed rulesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse auto-schedule rules: %w", err)
	}

	rules := make(Rules, len(parsed.Rules))
	for status, rule := range parsed.Rules {
		if !domain.IsKnownStatus(status) {
			return nil, fmt.Errorf("auto-schedule rules: unknown status %q", status)
		}
		if rule.OffsetDays <= 0 {
			rule.OffsetDays = 3
		}
		if rule.DurationMinutes <= 0 {
			rule.DurationMinutes = 60
		}
		rules[domain.Status(status)] = rule
	}

	return rules, nil
}

// RuleFor returns the rule for a status and whether one exists.
func (r Rules) RuleFor(status domain.Status) (EventRule, bool) {
	rule, ok := r[status]
	return rule, ok
}
