package ledger

import "context"

// Mutation describes one balance-affecting ledger write. Exactly one of Delta
// or SetTo drives the balance change; SetTo computes the delta under the same
// lock that guards the balance read, so set-to-value operations cannot race.
type Mutation struct {
	UserID        string
	Delta         int64
	SetTo         *int64
	Type          string
	Reason        string
	DocumentID    string
	PerformedByID string
	IsBypass      bool
	Note          string
	// FailErr is returned when the resulting balance would be negative.
	FailErr error
}

// Store persists balances and their append-only transaction log. Apply must
// execute read-balance, mutate-balance and append-transaction as one atomic
// unit, or fail with nothing persisted.
type Store interface {
	Balance(ctx context.Context, userID string) (int64, error)
	Apply(ctx context.Context, mut Mutation) (PointTransaction, error)
	List(ctx context.Context, userID string, page, limit int) ([]PointTransaction, int64, error)
}
