package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Photo is metadata for an object stored in the photo bucket. The binary
// itself lives in object storage under ObjectKey; these rows let the
// deletion cascade find the objects to remove.
type Photo struct {
	ID         uuid.UUID
	LeadID     uuid.UUID
	ObjectKey  string
	FileName   string
	UploadedBy uuid.UUID
	CreatedAt  time.Time
}

type CreatePhotoParams struct {
	LeadID     uuid.UUID
	ObjectKey  string
	FileName   string
	UploadedBy uuid.UUID
}

func (r *Repository) CreatePhoto(ctx context.Context, params CreatePhotoParams) (Photo, error) {
	var photo Photo
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_photos (lead_id, object_key, file_name, uploaded_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_id, object_key, file_name, uploaded_by, created_at
	`, params.LeadID, params.ObjectKey, params.FileName, params.UploadedBy).Scan(
		&photo.ID, &photo.LeadID, &photo.ObjectKey, &photo.FileName, &photo.UploadedBy, &photo.CreatedAt,
	)
	if err != nil {
		return Photo{}, err
	}
	return photo, nil
}

// ListPhotos returns the photo metadata rows for a lead, oldest first.
func (r *Repository) ListPhotos(ctx context.Context, leadID uuid.UUID) ([]Photo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, object_key, file_name, uploaded_by, created_at
		FROM lead_photos
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := make([]Photo, 0)
	for rows.Next() {
		var photo Photo
		if err := rows.Scan(
			&photo.ID, &photo.LeadID, &photo.ObjectKey, &photo.FileName, &photo.UploadedBy, &photo.CreatedAt,
		); err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

// ListPhotoKeys returns the object keys of every photo attached to a lead.
// The deletion workflow removes these objects from storage before the rows
// cascade away with the lead.
func (r *Repository) ListPhotoKeys(ctx context.Context, leadID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT object_key
		FROM lead_photos
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
