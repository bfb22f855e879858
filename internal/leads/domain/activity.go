package domain

// ActivityType classifies an entry in a lead's audit trail.
type ActivityType string

const (
	ActivityLeadCreated     ActivityType = "LEAD_CREATED"
	ActivityStatusChanged   ActivityType = "STATUS_CHANGED"
	ActivityLeadUpdated     ActivityType = "LEAD_UPDATED"
	ActivityAssigneeChanged ActivityType = "ASSIGNEE_CHANGED"
	ActivityNote            ActivityType = "NOTE"
	ActivityDeletionRequest ActivityType = "DELETION_REQUESTED"
)

var knownActivityTypes = map[ActivityType]struct{}{
	ActivityLeadCreated:     {},
	ActivityStatusChanged:   {},
	ActivityLeadUpdated:     {},
	ActivityAssigneeChanged: {},
	ActivityNote:            {},
	ActivityDeletionRequest: {},
}

// IsKnownActivityType reports whether value is a member of the activity type enum.
func IsKnownActivityType(value string) bool {
	_, ok := knownActivityTypes[ActivityType(value)]
	return ok
}

// DeletionRequestStatus is the review state of a deletion request.
type DeletionRequestStatus string

const (
	DeletionPending  DeletionRequestStatus = "PENDING"
	DeletionApproved DeletionRequestStatus = "APPROVED"
	DeletionDenied   DeletionRequestStatus = "DENIED"
)
