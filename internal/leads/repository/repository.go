package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"roofline_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")
var ErrRequestNotFound = errors.New("deletion request not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID                     uuid.UUID
	FirstName              string
	LastName               string
	Phone                  string
	Email                  *string
	AddressStreet          string
	AddressCity            string
	AddressState           string
	AddressZip             string
	Status                 domain.Status
	AssignedToID           *uuid.UUID
	InsuranceCarrier       *string
	InsurancePolicyNumber  *string
	InsuranceClaimNumber   *string
	Metadata               map[string]any
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// FullName returns the lead's display name.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// FullAddress returns the single-line mailing address used for calendar
// event locations and deletion-request snapshots.
func (l Lead) FullAddress() string {
	parts := make([]string, 0, 3)
	if l.AddressStreet != "" {
		parts = append(parts, l.AddressStreet)
	}
	cityState := strings.TrimSpace(strings.TrimSuffix(l.AddressCity+", "+l.AddressState, ", "))
	if cityState != "" {
		parts = append(parts, cityState)
	}
	if l.AddressZip != "" {
		parts = append(parts, l.AddressZip)
	}
	return strings.Join(parts, " ")
}

const leadSelectCols = `
	id, first_name, last_name, phone, email,
	address_street, address_city, address_state, address_zip,
	status, assigned_to_id, insurance_carrier, insurance_policy_number, insurance_claim_number,
	metadata, created_at, updated_at`

// leadRowScanner is satisfied by pgx.Rows and pgx.Row so scanLead can be
// shared between single-row and multi-row queries.
type leadRowScanner interface {
	Scan(dest ...any) error
}

func scanLead(s leadRowScanner) (Lead, error) {
	var lead Lead
	var rawMetadata []byte
	if err := s.Scan(
		&lead.ID, &lead.FirstName, &lead.LastName, &lead.Phone, &lead.Email,
		&lead.AddressStreet, &lead.AddressCity, &lead.AddressState, &lead.AddressZip,
		&lead.Status, &lead.AssignedToID,
		&lead.InsuranceCarrier, &lead.InsurancePolicyNumber, &lead.InsuranceClaimNumber,
		&rawMetadata, &lead.CreatedAt, &lead.UpdatedAt,
	); err != nil {
		return Lead{}, err
	}
	if len(rawMetadata) > 0 {
		_ = json.Unmarshal(rawMetadata, &lead.Metadata)
	}
	return lead, nil
}

type CreateLeadParams struct {
	FirstName             string
	LastName              string
	Phone                 string
	Email                 *string
	AddressStreet         string
	AddressCity           string
	AddressState          string
	AddressZip            string
	Status                domain.Status
	AssignedToID          *uuid.UUID
	InsuranceCarrier      *string
	InsurancePolicyNumber *string
	InsuranceClaimNumber  *string
	Metadata              map[string]any
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	metadataJSON, err := json.Marshal(orEmptyMetadata(params.Metadata))
	if err != nil {
		return Lead{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			first_name, last_name, phone, email,
			address_street, address_city, address_state, address_zip,
			status, assigned_to_id, insurance_carrier, insurance_policy_number, insurance_claim_number,
			metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING`+leadSelectCols+`
	`,
		params.FirstName, params.LastName, params.Phone, params.Email,
		params.AddressStreet, params.AddressCity, params.AddressState, params.AddressZip,
		string(params.Status), params.AssignedToID,
		params.InsuranceCarrier, params.InsurancePolicyNumber, params.InsuranceClaimNumber,
		metadataJSON,
	)
	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+leadSelectCols+`
		FROM leads
		WHERE id = $1
	`, id)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return lead, nil
}

type UpdateLeadParams struct {
	FirstName             *string
	LastName              *string
	Phone                 *string
	Email                 *string
	AddressStreet         *string
	AddressCity           *string
	AddressState          *string
	AddressZip            *string
	AssignedToID          *uuid.UUID
	AssignedToIDSet       bool
	InsuranceCarrier      *string
	InsurancePolicyNumber *string
	InsuranceClaimNumber  *string
	// Metadata keys are merged into the existing JSONB document;
	// existing keys not present here are left untouched.
	Metadata map[string]any
}

// Update applies a partial update. Only non-nil fields are written; the
// metadata map is merged with JSONB || semantics rather than replaced.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	sets := make([]string, 0, 12)
	args := make([]any, 0, 13)
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.FirstName != nil {
		sets = append(sets, "first_name = "+arg(*params.FirstName))
	}
	if params.LastName != nil {
		sets = append(sets, "last_name = "+arg(*params.LastName))
	}
	if params.Phone != nil {
		sets = append(sets, "phone = "+arg(*params.Phone))
	}
	if params.Email != nil {
		sets = append(sets, "email = "+arg(*params.Email))
	}
	if params.AddressStreet != nil {
		sets = append(sets, "address_street = "+arg(*params.AddressStreet))
	}
	if params.AddressCity != nil {
		sets = append(sets, "address_city = "+arg(*params.AddressCity))
	}
	if params.AddressState != nil {
		sets = append(sets, "address_state = "+arg(*params.AddressState))
	}
	if params.AddressZip != nil {
		sets = append(sets, "address_zip = "+arg(*params.AddressZip))
	}
	if params.AssignedToIDSet {
		sets = append(sets, "assigned_to_id = "+arg(params.AssignedToID))
	}
	if params.InsuranceCarrier != nil {
		sets = append(sets, "insurance_carrier = "+arg(*params.InsuranceCarrier))
	}
	if params.InsurancePolicyNumber != nil {
		sets = append(sets, "insurance_policy_number = "+arg(*params.InsurancePolicyNumber))
	}
	if params.InsuranceClaimNumber != nil {
		sets = append(sets, "insurance_claim_number = "+arg(*params.InsuranceClaimNumber))
	}
	if len(params.Metadata) > 0 {
		metadataJSON, err := json.Marshal(params.Metadata)
		if err != nil {
			return Lead{}, err
		}
		sets = append(sets, "metadata = COALESCE(metadata, '{}'::jsonb) || "+arg(metadataJSON)+"::jsonb")
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = now()")
	query := fmt.Sprintf(`
		UPDATE leads
		SET %s
		WHERE id = %s
		RETURNING`+leadSelectCols, strings.Join(sets, ", "), arg(id))

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return lead, nil
}

// ApplyStatusChange persists the new status and appends the STATUS_CHANGED
// activity in one transaction, so a crash between the two writes cannot
// leave the status changed but unaudited, or audited but unchanged.
func (r *Repository) ApplyStatusChange(ctx context.Context, id uuid.UUID, newStatus domain.Status, activity CreateActivityParams) (Lead, Activity, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Lead{}, Activity{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := tx.QueryRow(ctx, `
		UPDATE leads
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING`+leadSelectCols+`
	`, id, string(newStatus))

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, Activity{}, ErrNotFound
		}
		return Lead{}, Activity{}, err
	}

	created, err := insertActivity(ctx, tx, activity)
	if err != nil {
		return Lead{}, Activity{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, Activity{}, err
	}

	return lead, created, nil
}

type ListParams struct {
	Status       *domain.Status
	AssignedToID *uuid.UUID
	Search       string
	Offset       int
	Limit        int
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Status != nil {
		where = append(where, "status = "+arg(string(*params.Status)))
	}
	if params.AssignedToID != nil {
		where = append(where, "assigned_to_id = "+arg(*params.AssignedToID))
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		pattern := arg("%" + search + "%")
		where = append(where, fmt.Sprintf(
			"(first_name ILIKE %[1]s OR last_name ILIKE %[1]s OR phone ILIKE %[1]s OR email ILIKE %[1]s OR address_street ILIKE %[1]s)",
			pattern,
		))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM leads " + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT%s
		FROM leads
		%s
		ORDER BY created_at DESC
		LIMIT %s OFFSET %s
	`, leadSelectCols, whereClause, arg(params.Limit), arg(params.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// CountByStatus returns the number of leads in each pipeline stage.
func (r *Repository) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM leads
		GROUP BY status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[domain.Status(status)] = count
	}
	return counts, rows.Err()
}

func orEmptyMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return map[string]any{}
	}
	return metadata
}
