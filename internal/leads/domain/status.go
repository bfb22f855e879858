// Package domain holds the closed vocabularies of the lead pipeline.
package domain

// Status is a lead's pipeline stage. The set is closed: a lead always
// carries exactly one of these values, never an empty string.
type Status string

const (
	StatusFollowUps      Status = "follow_ups"
	StatusSignedContract Status = "signed_contract"
	StatusScheduled      Status = "scheduled"
	StatusColors         Status = "colors"
	StatusACV            Status = "acv"
	StatusJob            Status = "job"
	StatusCompletedJobs  Status = "completed_jobs"
	StatusZeroBalance    Status = "zero_balance"
	StatusDenied         Status = "denied"
)

// statusLabels maps each status to the human-readable label used in
// activity titles and chat messages.
var statusLabels = map[Status]string{
	StatusFollowUps:      "Follow Ups",
	StatusSignedContract: "Signed Contract",
	StatusScheduled:      "Scheduled",
	StatusColors:         "Colors",
	StatusACV:            "ACV",
	StatusJob:            "Job",
	StatusCompletedJobs:  "Completed Jobs",
	StatusZeroBalance:    "Zero Balance",
	StatusDenied:         "Denied",
}

// IsKnownStatus reports whether value is a member of the status enum.
func IsKnownStatus(value string) bool {
	_, ok := statusLabels[Status(value)]
	return ok
}

// Label returns the human-readable label for the status. Unknown values
// fall back to the raw string so log lines stay readable.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Statuses returns all known statuses in pipeline order.
func Statuses() []Status {
	return []Status{
		StatusFollowUps,
		StatusSignedContract,
		StatusScheduled,
		StatusColors,
		StatusACV,
		StatusJob,
		StatusCompletedJobs,
		StatusZeroBalance,
		StatusDenied,
	}
}
