package sharelinks

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres. A partial unique index on
// (document_id) WHERE is_revoked = FALSE enforces the single-active-link
// invariant at the storage layer.
type PGRepo struct {
	DB *sql.DB
}

const linkColumns = `
id, document_id, token, expires_at, is_revoked, created_by_id, created_at`

// GetByToken fetches a link by (documentID, token), revoked or not.
func (r *PGRepo) GetByToken(ctx context.Context, documentID, token string) (ShareLink, error) {
	query := `
SELECT ` + linkColumns + `
FROM share_links
WHERE document_id = $1 AND token = $2
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, documentID, token))
}

// GetActiveByDocument fetches the document's active link, if any.
func (r *PGRepo) GetActiveByDocument(ctx context.Context, documentID string) (ShareLink, error) {
	query := `
SELECT ` + linkColumns + `
FROM share_links
WHERE document_id = $1 AND is_revoked = FALSE
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, documentID))
}

// Regenerate revokes the prior active link and inserts the new one in a
// single transaction.
func (r *PGRepo) Regenerate(ctx context.Context, link ShareLink) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
UPDATE share_links SET is_revoked = TRUE WHERE document_id = $1 AND is_revoked = FALSE`, link.DocumentID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
INSERT INTO share_links (id, document_id, token, expires_at, is_revoked, created_by_id, created_at)
VALUES ($1, $2, $3, $4, FALSE, $5, $6)`,
		link.ID,
		link.DocumentID,
		link.Token,
		link.ExpiresAt,
		link.CreatedByID,
		link.CreatedAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// RevokeAll revokes every active link for the document.
func (r *PGRepo) RevokeAll(ctx context.Context, documentID string) (int, error) {
	result, err := r.DB.ExecContext(ctx, `
UPDATE share_links SET is_revoked = TRUE WHERE document_id = $1 AND is_revoked = FALSE`, documentID)
	if err != nil {
		return 0, err
	}
	revoked, _ := result.RowsAffected()
	return int(revoked), nil
}

func (r *PGRepo) scanOne(row *sql.Row) (ShareLink, error) {
	var link ShareLink
	err := row.Scan(
		&link.ID,
		&link.DocumentID,
		&link.Token,
		&link.ExpiresAt,
		&link.IsRevoked,
		&link.CreatedByID,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ShareLink{}, ErrNotFound
		}
		return ShareLink{}, err
	}
	return link, nil
}

var _ Repo = (*PGRepo)(nil)
