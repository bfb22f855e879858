package repository

import (
	"context"
	"errors"
	"time"

	"roofline_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DeletionRequest is a pending request to remove a lead. The Lead* fields
// are a snapshot frozen at request time: they keep their values even when
// the underlying lead is edited while the request awaits review.
type DeletionRequest struct {
	ID                uuid.UUID
	LeadID            uuid.UUID
	LeadName          string
	LeadEmail         *string
	LeadAddress       string
	LeadStatus        domain.Status
	LeadCreatedAt     time.Time
	RequestedByID     uuid.UUID
	RequestedByName   string
	RequestedByEmail  string
	Reason            *string
	Status            domain.DeletionRequestStatus
	ResolvedByID      *uuid.UUID
	ResolvedAt        *time.Time
	CreatedAt         time.Time
}

type CreateDeletionRequestParams struct {
	LeadID           uuid.UUID
	LeadName         string
	LeadEmail        *string
	LeadAddress      string
	LeadStatus       domain.Status
	LeadCreatedAt    time.Time
	RequestedByID    uuid.UUID
	RequestedByName  string
	RequestedByEmail string
	Reason           *string
}

const deletionSelectCols = `
	id, lead_id, lead_name, lead_email, lead_address, lead_status, lead_created_at,
	requested_by_id, requested_by_name, requested_by_email, reason, status,
	resolved_by_id, resolved_at, created_at`

func scanDeletionRequest(s leadRowScanner) (DeletionRequest, error) {
	var request DeletionRequest
	if err := s.Scan(
		&request.ID, &request.LeadID,
		&request.LeadName, &request.LeadEmail, &request.LeadAddress, &request.LeadStatus, &request.LeadCreatedAt,
		&request.RequestedByID, &request.RequestedByName, &request.RequestedByEmail,
		&request.Reason, &request.Status,
		&request.ResolvedByID, &request.ResolvedAt, &request.CreatedAt,
	); err != nil {
		return DeletionRequest{}, err
	}
	return request, nil
}

func (r *Repository) CreateDeletionRequest(ctx context.Context, params CreateDeletionRequestParams) (DeletionRequest, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO deletion_requests (
			lead_id, lead_name, lead_email, lead_address, lead_status, lead_created_at,
			requested_by_id, requested_by_name, requested_by_email, reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING`+deletionSelectCols+`
	`,
		params.LeadID, params.LeadName, params.LeadEmail, params.LeadAddress,
		string(params.LeadStatus), params.LeadCreatedAt,
		params.RequestedByID, params.RequestedByName, params.RequestedByEmail,
		params.Reason, string(domain.DeletionPending),
	)
	return scanDeletionRequest(row)
}

func (r *Repository) GetDeletionRequest(ctx context.Context, id uuid.UUID) (DeletionRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+deletionSelectCols+`
		FROM deletion_requests
		WHERE id = $1
	`, id)

	request, err := scanDeletionRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DeletionRequest{}, ErrRequestNotFound
		}
		return DeletionRequest{}, err
	}
	return request, nil
}

// ListPendingDeletionRequests returns all requests awaiting review, oldest first.
func (r *Repository) ListPendingDeletionRequests(ctx context.Context) ([]DeletionRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+deletionSelectCols+`
		FROM deletion_requests
		WHERE status = $1
		ORDER BY created_at ASC
	`, string(domain.DeletionPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]DeletionRequest, 0)
	for rows.Next() {
		request, err := scanDeletionRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, request)
	}
	return items, rows.Err()
}

// ResolveDeletionRequest moves a PENDING request to APPROVED or DENIED.
// A request that is already resolved is not found by the guard, so
// double-resolution surfaces as ErrRequestNotFound to the caller.
func (r *Repository) ResolveDeletionRequest(ctx context.Context, id uuid.UUID, status domain.DeletionRequestStatus, resolvedByID uuid.UUID) (DeletionRequest, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE deletion_requests
		SET status = $2, resolved_by_id = $3, resolved_at = now()
		WHERE id = $1 AND status = $4
		RETURNING`+deletionSelectCols+`
	`, id, string(status), resolvedByID, string(domain.DeletionPending))

	request, err := scanDeletionRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DeletionRequest{}, ErrRequestNotFound
		}
		return DeletionRequest{}, err
	}
	return request, nil
}

// ApproveDeletionRequest resolves a PENDING request to APPROVED and hard
// deletes its lead as one transaction: a failed delete rolls the approval
// back and leaves the request PENDING, so the admin can retry. Activities
// and photo rows cascade with the lead; the deletion request itself has no
// FK and stays as history. A lead already gone does not fail the approval.
func (r *Repository) ApproveDeletionRequest(ctx context.Context, id uuid.UUID, resolvedByID uuid.UUID) (DeletionRequest, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return DeletionRequest{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := tx.QueryRow(ctx, `
		UPDATE deletion_requests
		SET status = $2, resolved_by_id = $3, resolved_at = now()
		WHERE id = $1 AND status = $4
		RETURNING`+deletionSelectCols+`
	`, id, string(domain.DeletionApproved), resolvedByID, string(domain.DeletionPending))

	request, err := scanDeletionRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DeletionRequest{}, ErrRequestNotFound
		}
		return DeletionRequest{}, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM leads WHERE id = $1`, request.LeadID); err != nil {
		return DeletionRequest{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return DeletionRequest{}, err
	}
	return request, nil
}

// DeleteResolvedDeletionRequestsBefore purges APPROVED/DENIED requests
// resolved before the cutoff. Used by the background cleanup job.
func (r *Repository) DeleteResolvedDeletionRequestsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM deletion_requests
		WHERE status <> $1 AND resolved_at IS NOT NULL AND resolved_at < $2
	`, string(domain.DeletionPending), cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
