package scheduler

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskDeletionRequestCleanup purges resolved deletion requests older than
// the configured retention window.
const TaskDeletionRequestCleanup = "leads.deletion_requests.cleanup"

// TaskFollowUpReminder nudges the assigned rep about a lead parked in
// follow-ups. Enqueued with a delay when a lead transitions into that stage.
const TaskFollowUpReminder = "leads.followup.remind"

func NewDeletionRequestCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskDeletionRequestCleanup, nil)
}

type FollowUpReminderPayload struct {
	LeadID   uuid.UUID `json:"leadId"`
	LeadName string    `json:"leadName"`
}

func NewFollowUpReminderTask(leadID uuid.UUID, leadName string) (*asynq.Task, error) {
	payload, err := json.Marshal(FollowUpReminderPayload{LeadID: leadID, LeadName: leadName})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpReminder, payload), nil
}
