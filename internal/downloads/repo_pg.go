package downloads

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"docshare-backend/internal/ledger"
)

// PGRepo implements Repo using Postgres. A partial unique index on
// (document_id, user_id) WHERE uploader_rewarded enforces the at-most-one
// reward invariant even under concurrent confirmations. When Ledger is set,
// ClaimRewardEarn commits the reward claim and the uploader's EARN row in one
// transaction.
type PGRepo struct {
	DB     *sql.DB
	Ledger *ledger.PGStore
}

const uniqueViolation = "23505"

// Create inserts a new download attempt.
func (r *PGRepo) Create(ctx context.Context, d Download) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO downloads (id, document_id, user_id, ip_address, success, uploader_rewarded, cost_paid, bypass, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7, $8, $8)`,
		d.ID,
		d.DocumentID,
		d.UserID,
		nullString(d.IPAddress),
		d.Success,
		d.CostPaid,
		d.Bypass,
		d.CreatedAt,
	)
	return err
}

// GetByID fetches a download attempt.
func (r *PGRepo) GetByID(ctx context.Context, downloadID string) (Download, error) {
	const query = `
SELECT id, document_id, user_id, COALESCE(ip_address, ''), success, uploader_rewarded, cost_paid, bypass, confirmed_at, created_at, updated_at
FROM downloads
WHERE id = $1
LIMIT 1`
	var d Download
	var confirmedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, downloadID).Scan(
		&d.ID,
		&d.DocumentID,
		&d.UserID,
		&d.IPAddress,
		&d.Success,
		&d.UploaderRewarded,
		&d.CostPaid,
		&d.Bypass,
		&confirmedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Download{}, ErrNotFound
		}
		return Download{}, err
	}
	if confirmedAt.Valid {
		d.ConfirmedAt = &confirmedAt.Time
	}
	return d, nil
}

// MarkSuccess records the spend commit for the attempt.
func (r *PGRepo) MarkSuccess(ctx context.Context, downloadID string) error {
	return r.setSuccess(ctx, downloadID, true)
}

// MarkFailed finalizes the attempt as failed.
func (r *PGRepo) MarkFailed(ctx context.Context, downloadID string) error {
	return r.setSuccess(ctx, downloadID, false)
}

// MarkConfirmed stamps the first confirmation time; later calls keep it.
func (r *PGRepo) MarkConfirmed(ctx context.Context, downloadID string) error {
	result, err := r.DB.ExecContext(ctx, `
UPDATE downloads SET confirmed_at = COALESCE(confirmed_at, now()), updated_at = now() WHERE id = $1`, downloadID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimReward atomically flips uploader_rewarded on the row unless a reward
// was already paid for the (document, user) pair. The partial unique index
// turns a concurrent double-claim into a unique violation, reported as an
// unclaimed result rather than an error.
func (r *PGRepo) ClaimReward(ctx context.Context, downloadID, documentID, userID string) (bool, error) {
	return claimReward(ctx, r.DB, downloadID, documentID, userID)
}

// ClaimRewardEarn claims the reward and writes the uploader's EARN ledger row
// in the same transaction, so a crash between claim and earn cannot leave a
// claimed reward unpaid. Returns false when the pair was already rewarded.
func (r *PGRepo) ClaimRewardEarn(ctx context.Context, d Download, uploaderID string) (bool, error) {
	if r.Ledger == nil {
		return false, errors.New("downloads: ledger store not configured")
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	claimed, err := claimReward(ctx, tx, d.ID, d.DocumentID, d.UserID)
	if err != nil {
		return false, err
	}
	if !claimed {
		tx.Rollback()
		return false, nil
	}

	if _, err = r.Ledger.ApplyTx(ctx, tx, ledger.Mutation{
		UserID:     uploaderID,
		Delta:      d.CostPaid,
		Type:       ledger.TypeEarn,
		Reason:     ledger.ReasonDownloadReward,
		DocumentID: d.DocumentID,
	}); err != nil {
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func claimReward(ctx context.Context, q execer, downloadID, documentID, userID string) (bool, error) {
	result, err := q.ExecContext(ctx, `
UPDATE downloads
SET uploader_rewarded = TRUE, updated_at = now()
WHERE id = $1 AND success = TRUE AND uploader_rewarded = FALSE
  AND NOT EXISTS (
    SELECT 1 FROM downloads
    WHERE document_id = $2 AND user_id = $3 AND uploader_rewarded = TRUE
  )`, downloadID, documentID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// ReleaseReward undoes a claim whose ledger earn failed.
func (r *PGRepo) ReleaseReward(ctx context.Context, downloadID string) error {
	_, err := r.DB.ExecContext(ctx, `
UPDATE downloads SET uploader_rewarded = FALSE, updated_at = now() WHERE id = $1`, downloadID)
	return err
}

func (r *PGRepo) setSuccess(ctx context.Context, downloadID string, success bool) error {
	result, err := r.DB.ExecContext(ctx, `
UPDATE downloads SET success = $1, updated_at = now() WHERE id = $2`, success, downloadID)
	if err != nil {
		return err
	}
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

var _ Repo = (*PGRepo)(nil)
