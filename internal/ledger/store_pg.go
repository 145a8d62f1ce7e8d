package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PGStore implements Store using Postgres. Balance mutations lock the user's
// point_balances row with SELECT ... FOR UPDATE so concurrent spends observe
// each other.
type PGStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed ledger store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

// Balance returns the user's current balance; absent users have balance zero.
func (s *PGStore) Balance(ctx context.Context, userID string) (int64, error) {
	const query = `
SELECT balance FROM point_balances WHERE user_id = $1`
	var balance int64
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}

// Apply performs one ledger write inside a single transaction.
func (s *PGStore) Apply(ctx context.Context, mut Mutation) (PointTransaction, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return PointTransaction{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	row, err := s.ApplyTx(ctx, tx, mut)
	if err != nil {
		return PointTransaction{}, err
	}
	if err = tx.Commit(); err != nil {
		return PointTransaction{}, err
	}
	return row, nil
}

// ApplyTx performs one ledger write inside a caller-owned transaction, so a
// ledger row can commit or roll back together with other writes. The caller
// commits or rolls back tx.
func (s *PGStore) ApplyTx(ctx context.Context, tx *sql.Tx, mut Mutation) (PointTransaction, error) {
	balance, err := lockBalance(ctx, tx, mut.UserID)
	if err != nil {
		return PointTransaction{}, err
	}

	delta := mut.Delta
	if mut.SetTo != nil {
		delta = *mut.SetTo - balance
	}
	newBalance := balance + delta
	if newBalance < 0 {
		if mut.FailErr != nil {
			return PointTransaction{}, mut.FailErr
		}
		return PointTransaction{}, ErrNegativeBalance
	}

	if delta != 0 {
		if _, err = tx.ExecContext(ctx, `
UPDATE point_balances SET balance = $1, updated_at = now() WHERE user_id = $2`, newBalance, mut.UserID); err != nil {
			return PointTransaction{}, err
		}
	}

	row := PointTransaction{
		ID:            uuid.NewString(),
		UserID:        mut.UserID,
		DocumentID:    mut.DocumentID,
		Amount:        delta,
		Type:          mut.Type,
		Reason:        mut.Reason,
		BalanceAfter:  newBalance,
		PerformedByID: mut.PerformedByID,
		IsBypass:      mut.IsBypass,
		Note:          mut.Note,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err = tx.ExecContext(ctx, `
INSERT INTO point_transactions (id, user_id, document_id, amount, type, reason, balance_after, performed_by_id, is_bypass, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		row.ID,
		row.UserID,
		nullableString(row.DocumentID),
		row.Amount,
		row.Type,
		row.Reason,
		row.BalanceAfter,
		nullableString(row.PerformedByID),
		row.IsBypass,
		nullableString(row.Note),
		row.CreatedAt,
	); err != nil {
		return PointTransaction{}, err
	}
	return row, nil
}

// List returns one page of the user's transactions, newest first.
func (s *PGStore) List(ctx context.Context, userID string, page, limit int) ([]PointTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int64
	if err := s.DB.QueryRowContext(ctx, `
SELECT count(*) FROM point_transactions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
SELECT id, user_id, document_id, amount, type, reason, balance_after, performed_by_id, is_bypass, note, created_at
FROM point_transactions
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []PointTransaction
	for rows.Next() {
		var txn PointTransaction
		var documentID sql.NullString
		var performedBy sql.NullString
		var note sql.NullString
		if err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&documentID,
			&txn.Amount,
			&txn.Type,
			&txn.Reason,
			&txn.BalanceAfter,
			&performedBy,
			&txn.IsBypass,
			&note,
			&txn.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		txn.DocumentID = documentID.String
		txn.PerformedByID = performedBy.String
		txn.Note = note.String
		out = append(out, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// lockBalance reads the user's balance under a row lock, inserting the row
// first if the user has no balance yet.
func lockBalance(ctx context.Context, tx *sql.Tx, userID string) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO point_balances (user_id, balance) VALUES ($1, 0)
ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return 0, err
	}

	var balance int64
	row := tx.QueryRowContext(ctx, `
SELECT balance FROM point_balances WHERE user_id = $1 FOR UPDATE`, userID)
	if err := row.Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Store = (*PGStore)(nil)
