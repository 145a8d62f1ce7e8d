package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store. A single mutex serializes mutations,
// giving the same atomicity guarantees the Postgres row lock provides.
type MemoryStore struct {
	mu       sync.Mutex
	balances map[string]int64
	log      map[string][]PointTransaction // userID -> transactions, append order
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		balances: make(map[string]int64),
		log:      make(map[string][]PointTransaction),
	}
}

// Balance returns the user's current balance.
func (s *MemoryStore) Balance(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID], nil
}

// Apply performs one ledger write under the store lock.
func (s *MemoryStore) Apply(ctx context.Context, mut Mutation) (PointTransaction, error) {
	if err := ctx.Err(); err != nil {
		return PointTransaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balances[mut.UserID]
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

	s.balances[mut.UserID] = newBalance
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
	s.log[mut.UserID] = append(s.log[mut.UserID], row)
	return row, nil
}

// List returns one page of the user's transactions, newest first.
func (s *MemoryStore) List(ctx context.Context, userID string, page, limit int) ([]PointTransaction, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	s.mu.Lock()
	all := make([]PointTransaction, len(s.log[userID]))
	copy(all, s.log[userID])
	s.mu.Unlock()

	// Append order is chronological; reverse for newest first.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}

	total := int64(len(all))
	offset := (page - 1) * limit
	if offset >= len(all) {
		return []PointTransaction{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

var _ Store = (*MemoryStore)(nil)
