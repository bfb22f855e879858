package repository

import (
	"context"
	"strings"
	"time"

	"roofline_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ActivityDescriptionMaxLen is the canonical maximum character length for
// activity descriptions. Callers should use TruncateDescription when
// populating CreateActivityParams.Description.
const ActivityDescriptionMaxLen = 400

// TruncateDescription trims text to maxLen, appending "..." on overflow.
// Returns nil for blank input.
func TruncateDescription(text string, maxLen int) *string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) > maxLen {
		trimmed = trimmed[:maxLen] + "..."
	}
	return &trimmed
}

// Activity is an immutable audit-trail entry. Rows are only ever inserted;
// they disappear solely through the cascading delete of their lead.
type Activity struct {
	ID          int64
	LeadID      uuid.UUID
	Type        domain.ActivityType
	Title       string
	Description *string
	UserID      uuid.UUID
	CreatedAt   time.Time
}

type CreateActivityParams struct {
	LeadID      uuid.UUID
	Type        domain.ActivityType
	Title       string
	Description *string
	UserID      uuid.UUID
}

// queryRower is satisfied by both *pgxpool.Pool and pgx.Tx so activity
// inserts can participate in the status-change transaction.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertActivity(ctx context.Context, q queryRower, params CreateActivityParams) (Activity, error) {
	var activity Activity
	err := q.QueryRow(ctx, `
		INSERT INTO activities (lead_id, type, title, description, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, lead_id, type, title, description, user_id, created_at
	`, params.LeadID, string(params.Type), params.Title, params.Description, params.UserID).Scan(
		&activity.ID,
		&activity.LeadID,
		&activity.Type,
		&activity.Title,
		&activity.Description,
		&activity.UserID,
		&activity.CreatedAt,
	)
	if err != nil {
		return Activity{}, err
	}
	return activity, nil
}

// CreateActivity appends a single audit entry outside any transaction.
func (r *Repository) CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error) {
	return insertActivity(ctx, r.pool, params)
}

// ListActivities returns the full audit trail for a lead, oldest first.
// Ties on created_at are broken by the insertion id so the trail reads as a
// stable history.
func (r *Repository) ListActivities(ctx context.Context, leadID uuid.UUID) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, type, title, description, user_id, created_at
		FROM activities
		WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		var activity Activity
		if err := rows.Scan(
			&activity.ID,
			&activity.LeadID,
			&activity.Type,
			&activity.Title,
			&activity.Description,
			&activity.UserID,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
