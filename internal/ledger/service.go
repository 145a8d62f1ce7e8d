package ledger

import "context"

// Service exposes the points ledger operations. All balance mutations go
// through the underlying store's atomic Apply.
type Service struct {
	store Store
}

// NewService constructs a Service with an in-memory store.
func NewService() *Service {
	return &Service{store: NewMemoryStore()}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(store Store) *Service {
	return &Service{store: store}
}

// GetBalance returns the user's current balance (zero for unknown users).
func (s *Service) GetBalance(ctx context.Context, userID string) (int64, error) {
	return s.store.Balance(ctx, userID)
}

// Earn credits amount to the user and appends an EARN transaction.
func (s *Service) Earn(ctx context.Context, userID string, amount int64, reason, documentID string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	row, err := s.store.Apply(ctx, Mutation{
		UserID:     userID,
		Delta:      amount,
		Type:       TypeEarn,
		Reason:     reason,
		DocumentID: documentID,
	})
	if err != nil {
		return 0, err
	}
	return row.BalanceAfter, nil
}

// Spend debits amount from the user, failing with ErrInsufficientBalance when
// the balance cannot cover it. With bypass set, no balance moves: a zero-amount
// SPEND row is appended for audit only.
func (s *Service) Spend(ctx context.Context, userID string, amount int64, reason, documentID string, bypass bool) (PointTransaction, error) {
	if amount <= 0 {
		return PointTransaction{}, ErrInvalidAmount
	}
	mut := Mutation{
		UserID:     userID,
		Type:       TypeSpend,
		Reason:     reason,
		DocumentID: documentID,
		FailErr:    ErrInsufficientBalance,
	}
	if bypass {
		mut.Delta = 0
		mut.IsBypass = true
	} else {
		mut.Delta = -amount
	}
	return s.store.Apply(ctx, mut)
}

// Adjust moves the user's balance by delta on behalf of an admin. The
// resulting balance must not be negative.
func (s *Service) Adjust(ctx context.Context, adminID, userID string, delta int64, note string) (int64, error) {
	row, err := s.store.Apply(ctx, Mutation{
		UserID:        userID,
		Delta:         delta,
		Type:          TypeAdjust,
		Reason:        ReasonAdminAdjust,
		PerformedByID: adminID,
		Note:          note,
	})
	if err != nil {
		return 0, err
	}
	return row.BalanceAfter, nil
}

// SetBalance adjusts the user's balance to an absolute value. The delta is
// computed under the same lock as the write, so concurrent mutations cannot
// skew the result.
func (s *Service) SetBalance(ctx context.Context, adminID, userID string, newBalance int64, note string) (int64, error) {
	if newBalance < 0 {
		return 0, ErrNegativeBalance
	}
	row, err := s.store.Apply(ctx, Mutation{
		UserID:        userID,
		SetTo:         &newBalance,
		Type:          TypeAdjust,
		Reason:        ReasonAdminAdjust,
		PerformedByID: adminID,
		Note:          note,
	})
	if err != nil {
		return 0, err
	}
	return row.BalanceAfter, nil
}

// ListTransactions returns one page of the user's history, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID string, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	rows, total, err := s.store.List(ctx, userID, page, limit)
	if err != nil {
		return Page{}, err
	}
	if rows == nil {
		rows = []PointTransaction{}
	}
	return Page{Transactions: rows, Page: page, Limit: limit, Total: total}, nil
}
