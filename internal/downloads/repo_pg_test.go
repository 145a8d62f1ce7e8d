package downloads

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"docshare-backend/internal/ledger"
)

func newClaimRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db, Ledger: ledger.NewPGStore(db)}, mock
}

func TestPGRepoClaimRewardFirstClaimWins(t *testing.T) {
	repo, mock := newClaimRepo(t)

	mock.ExpectExec("UPDATE downloads").
		WithArgs("dl-1", "doc-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	claimed, err := repo.ClaimReward(context.Background(), "dl-1", "doc-1", "user-1")
	if err != nil {
		t.Fatalf("ClaimReward: %v", err)
	}
	if !claimed {
		t.Fatal("claimed = false, want true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGRepoClaimRewardAlreadyRewarded(t *testing.T) {
	repo, mock := newClaimRepo(t)

	mock.ExpectExec("UPDATE downloads").
		WithArgs("dl-2", "doc-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := repo.ClaimReward(context.Background(), "dl-2", "doc-1", "user-1")
	if err != nil {
		t.Fatalf("ClaimReward: %v", err)
	}
	if claimed {
		t.Fatal("claimed = true, want false for a second download of the same pair")
	}
}

func TestPGRepoClaimRewardConcurrentUniqueViolation(t *testing.T) {
	repo, mock := newClaimRepo(t)

	mock.ExpectExec("UPDATE downloads").
		WithArgs("dl-3", "doc-1", "user-1").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	claimed, err := repo.ClaimReward(context.Background(), "dl-3", "doc-1", "user-1")
	if err != nil {
		t.Fatalf("ClaimReward: unique violation should be swallowed, got %v", err)
	}
	if claimed {
		t.Fatal("claimed = true, want false on a concurrent duplicate claim")
	}
}

func TestPGRepoClaimRewardEarnCommitsClaimAndEarnTogether(t *testing.T) {
	repo, mock := newClaimRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE downloads").
		WithArgs("dl-1", "doc-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO point_balances").
		WithArgs("owner-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT balance FROM point_balances").
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(0)))
	mock.ExpectExec("UPDATE point_balances").
		WithArgs(int64(30), "owner-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO point_transactions").
		WithArgs(
			sqlmock.AnyArg(), // id
			"owner-1",
			"doc-1",
			int64(30),
			ledger.TypeEarn,
			ledger.ReasonDownloadReward,
			int64(30),
			nil,              // performed_by_id
			false,            // is_bypass
			nil,              // note
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	attempt := Download{ID: "dl-1", DocumentID: "doc-1", UserID: "user-1", Success: true, CostPaid: 30}
	claimed, err := repo.ClaimRewardEarn(context.Background(), attempt, "owner-1")
	if err != nil {
		t.Fatalf("ClaimRewardEarn: %v", err)
	}
	if !claimed {
		t.Fatal("claimed = false, want true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGRepoClaimRewardEarnRollsBackWhenAlreadyRewarded(t *testing.T) {
	repo, mock := newClaimRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE downloads").
		WithArgs("dl-2", "doc-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	attempt := Download{ID: "dl-2", DocumentID: "doc-1", UserID: "user-1", Success: true, CostPaid: 30}
	claimed, err := repo.ClaimRewardEarn(context.Background(), attempt, "owner-1")
	if err != nil {
		t.Fatalf("ClaimRewardEarn: %v", err)
	}
	if claimed {
		t.Fatal("claimed = true, want false for an already rewarded pair")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGRepoClaimRewardEarnRollsBackClaimOnLedgerFailure(t *testing.T) {
	repo, mock := newClaimRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE downloads").
		WithArgs("dl-3", "doc-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO point_balances").
		WithArgs("owner-1").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	attempt := Download{ID: "dl-3", DocumentID: "doc-1", UserID: "user-1", Success: true, CostPaid: 30}
	claimed, err := repo.ClaimRewardEarn(context.Background(), attempt, "owner-1")
	if err == nil {
		t.Fatal("expected an error when the ledger write fails")
	}
	if claimed {
		t.Fatal("claimed = true, want false when the transaction rolls back")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGRepoMarkConfirmedKeepsFirstTimestamp(t *testing.T) {
	repo, mock := newClaimRepo(t)

	mock.ExpectExec("UPDATE downloads SET confirmed_at = COALESCE").
		WithArgs("dl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkConfirmed(context.Background(), "dl-1"); err != nil {
		t.Fatalf("MarkConfirmed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
