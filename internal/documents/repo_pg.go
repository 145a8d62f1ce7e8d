package documents

import (
	"context"
	"database/sql"
	"errors"

	"docshare-backend/internal/moderation"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `
id, uploader_id, title, description, file_name, mime_type, size_bytes,
storage_provider, storage_key, is_public, moderation_status, moderation_reason,
download_cost, download_count, page_count, preview_text, created_at, updated_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    uploader_id,
    title,
    description,
    file_name,
    mime_type,
    size_bytes,
    storage_provider,
    storage_key,
    is_public,
    moderation_status,
    download_cost,
    page_count,
    preview_text,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)`

	storageProvider := doc.StorageProvider
	if storageProvider == "" {
		storageProvider = "local"
	}

	var downloadCost sql.NullInt64
	if doc.DownloadCost != nil {
		downloadCost = sql.NullInt64{Int64: *doc.DownloadCost, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UploaderID,
		doc.Title,
		nullString(doc.Description),
		doc.FileName,
		doc.MimeType,
		doc.SizeBytes,
		storageProvider,
		doc.StorageKey,
		doc.IsPublic,
		string(doc.ModerationStatus),
		downloadCost,
		doc.PageCount,
		nullString(doc.PreviewText),
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, documentID)
	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUploader lists an uploader's documents, newest first.
func (r *PGRepo) ListByUploader(ctx context.Context, uploaderID string, limit, offset int) ([]Document, error) {
	limit, offset = clampPage(limit, offset)
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE uploader_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	return r.queryDocuments(ctx, query, uploaderID, limit, offset)
}

// ListPublic lists approved public documents, newest first.
func (r *PGRepo) ListPublic(ctx context.Context, limit, offset int) ([]Document, error) {
	limit, offset = clampPage(limit, offset)
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE is_public = TRUE AND moderation_status = 'APPROVED' AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`
	return r.queryDocuments(ctx, query, limit, offset)
}

// ListByStatus lists documents in a moderation state with a total count.
func (r *PGRepo) ListByStatus(ctx context.Context, status moderation.Status, limit, offset int) ([]Document, int64, error) {
	limit, offset = clampPage(limit, offset)

	var total int64
	if err := r.DB.QueryRowContext(ctx, `
SELECT count(*) FROM documents WHERE moderation_status = $1 AND deleted_at IS NULL`, string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE moderation_status = $1 AND deleted_at IS NULL
ORDER BY created_at ASC
LIMIT $2 OFFSET $3`
	docs, err := r.queryDocuments(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// UpdateMetadata persists title, description and the download cost override.
func (r *PGRepo) UpdateMetadata(ctx context.Context, doc Document) error {
	var downloadCost sql.NullInt64
	if doc.DownloadCost != nil {
		downloadCost = sql.NullInt64{Int64: *doc.DownloadCost, Valid: true}
	}
	result, err := r.DB.ExecContext(ctx, `
UPDATE documents
SET title = $1, description = $2, download_cost = $3, updated_at = now()
WHERE id = $4 AND deleted_at IS NULL`,
		doc.Title,
		nullString(doc.Description),
		downloadCost,
		doc.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ReplaceFile swaps the stored file and resets the moderation state.
func (r *PGRepo) ReplaceFile(ctx context.Context, doc Document) error {
	result, err := r.DB.ExecContext(ctx, `
UPDATE documents
SET file_name = $1,
    mime_type = $2,
    size_bytes = $3,
    storage_key = $4,
    page_count = $5,
    preview_text = $6,
    moderation_status = $7,
    moderation_reason = NULL,
    updated_at = now()
WHERE id = $8 AND deleted_at IS NULL`,
		doc.FileName,
		doc.MimeType,
		doc.SizeBytes,
		doc.StorageKey,
		doc.PageCount,
		nullString(doc.PreviewText),
		string(doc.ModerationStatus),
		doc.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// SetVisibility flips is_public and records the resulting moderation status.
func (r *PGRepo) SetVisibility(ctx context.Context, documentID string, isPublic bool, status moderation.Status) error {
	result, err := r.DB.ExecContext(ctx, `
UPDATE documents
SET is_public = $1, moderation_status = $2, updated_at = now()
WHERE id = $3 AND deleted_at IS NULL`,
		isPublic,
		string(status),
		documentID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// SetModerationStatus records a moderation decision.
func (r *PGRepo) SetModerationStatus(ctx context.Context, documentID string, status moderation.Status, reason string) error {
	result, err := r.DB.ExecContext(ctx, `
UPDATE documents
SET moderation_status = $1, moderation_reason = $2, updated_at = now()
WHERE id = $3 AND deleted_at IS NULL`,
		string(status),
		nullString(reason),
		documentID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// IncrementDownloadCount bumps the download counter by one.
func (r *PGRepo) IncrementDownloadCount(ctx context.Context, documentID string) error {
	_, err := r.DB.ExecContext(ctx, `
UPDATE documents SET download_count = download_count + 1 WHERE id = $1 AND deleted_at IS NULL`, documentID)
	return err
}

// Delete soft-deletes a document.
func (r *PGRepo) Delete(ctx context.Context, documentID string) error {
	result, err := r.DB.ExecContext(ctx, `
UPDATE documents SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, documentID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ClaimGuest reassigns documents owned by a guest identity to an
// authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	result, err := r.DB.ExecContext(ctx, `
UPDATE documents SET uploader_id = $1, updated_at = now() WHERE uploader_id = $2 AND deleted_at IS NULL`, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	migrated, _ := result.RowsAffected()
	return int(migrated), nil
}

// DeleteAllByUploader soft-deletes every document owned by the uploader.
func (r *PGRepo) DeleteAllByUploader(ctx context.Context, uploaderID string) (int, error) {
	result, err := r.DB.ExecContext(ctx, `
UPDATE documents SET deleted_at = now() WHERE uploader_id = $1 AND deleted_at IS NULL`, uploaderID)
	if err != nil {
		return 0, err
	}
	deleted, _ := result.RowsAffected()
	return int(deleted), nil
}

func (r *PGRepo) queryDocuments(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func scanDocument(scan func(dest ...any) error) (Document, error) {
	var doc Document
	var description sql.NullString
	var storageProvider sql.NullString
	var status string
	var reason sql.NullString
	var downloadCost sql.NullInt64
	var previewText sql.NullString
	err := scan(
		&doc.ID,
		&doc.UploaderID,
		&doc.Title,
		&description,
		&doc.FileName,
		&doc.MimeType,
		&doc.SizeBytes,
		&storageProvider,
		&doc.StorageKey,
		&doc.IsPublic,
		&status,
		&reason,
		&downloadCost,
		&doc.DownloadCount,
		&doc.PageCount,
		&previewText,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	doc.Description = description.String
	doc.StorageProvider = storageProvider.String
	doc.ModerationStatus = moderation.Status(status)
	doc.ModerationReason = reason.String
	if downloadCost.Valid {
		cost := downloadCost.Int64
		doc.DownloadCost = &cost
	}
	doc.PreviewText = previewText.String
	return doc, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

var _ DocumentsRepo = (*PGRepo)(nil)
