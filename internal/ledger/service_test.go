package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestSpendDebitsBalance(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.Earn(ctx, "user-1", 100, ReasonUploadReward, ""); err != nil {
		t.Fatalf("Earn: %v", err)
	}

	row, err := svc.Spend(ctx, "user-1", 30, ReasonDownloadCost, "doc-1", false)
	if err != nil {
		t.Fatalf("Spend: %v", err)
	}
	if row.Amount != -30 {
		t.Fatalf("expected amount -30, got %d", row.Amount)
	}
	if row.BalanceAfter != 70 {
		t.Fatalf("expected balanceAfter 70, got %d", row.BalanceAfter)
	}

	balance, err := svc.GetBalance(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance != 70 {
		t.Fatalf("expected balance 70, got %d", balance)
	}
}

func TestSpendInsufficientBalanceLeavesBalanceUntouched(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.Earn(ctx, "user-1", 10, ReasonUploadReward, ""); err != nil {
		t.Fatalf("Earn: %v", err)
	}

	if _, err := svc.Spend(ctx, "user-1", 30, ReasonDownloadCost, "doc-1", false); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	balance, _ := svc.GetBalance(ctx, "user-1")
	if balance != 10 {
		t.Fatalf("expected balance 10, got %d", balance)
	}
	pageResult, err := svc.ListTransactions(ctx, "user-1", 1, 10)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(pageResult.Transactions) != 1 {
		t.Fatalf("expected only the earn row, got %d rows", len(pageResult.Transactions))
	}
}

func TestBypassSpendRecordsAuditRowWithoutDebit(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.Earn(ctx, "admin-1", 50, ReasonUploadReward, ""); err != nil {
		t.Fatalf("Earn: %v", err)
	}

	row, err := svc.Spend(ctx, "admin-1", 30, ReasonDownloadCost, "doc-1", true)
	if err != nil {
		t.Fatalf("Spend bypass: %v", err)
	}
	if row.Amount != 0 {
		t.Fatalf("expected amount 0, got %d", row.Amount)
	}
	if !row.IsBypass {
		t.Fatalf("expected isBypass row")
	}
	if row.BalanceAfter != 50 {
		t.Fatalf("expected balanceAfter 50, got %d", row.BalanceAfter)
	}

	balance, _ := svc.GetBalance(ctx, "admin-1")
	if balance != 50 {
		t.Fatalf("expected balance unchanged at 50, got %d", balance)
	}
}

func TestBalanceEqualsTransactionSumAfterEveryOperation(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	ops := []func() error{
		func() error { _, err := svc.Earn(ctx, "user-1", 40, ReasonUploadReward, ""); return err },
		func() error { _, err := svc.Spend(ctx, "user-1", 15, ReasonDownloadCost, "doc-1", false); return err },
		func() error { _, err := svc.Earn(ctx, "user-1", 20, ReasonDownloadReward, "doc-2"); return err },
		func() error { _, err := svc.Adjust(ctx, "admin-1", "user-1", -5, "correction"); return err },
		func() error { _, err := svc.Spend(ctx, "user-1", 40, ReasonDownloadCost, "doc-3", false); return err },
	}

	for i, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("op %d: %v", i, err)
		}

		balance, err := svc.GetBalance(ctx, "user-1")
		if err != nil {
			t.Fatalf("op %d GetBalance: %v", i, err)
		}
		if balance < 0 {
			t.Fatalf("op %d: balance went negative: %d", i, balance)
		}

		pageResult, err := svc.ListTransactions(ctx, "user-1", 1, 100)
		if err != nil {
			t.Fatalf("op %d ListTransactions: %v", i, err)
		}
		var sum int64
		for _, txn := range pageResult.Transactions {
			sum += txn.Amount
		}
		if sum != balance {
			t.Fatalf("op %d: balance %d != transaction sum %d", i, balance, sum)
		}
	}
}

func TestConcurrentSpendsNeverOverdraw(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	const (
		initial = int64(100)
		cost    = int64(30)
		workers = 10
	)
	if _, err := svc.Earn(ctx, "user-1", initial, ReasonUploadReward, ""); err != nil {
		t.Fatalf("Earn: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Spend(ctx, "user-1", cost, ReasonDownloadCost, "doc-1", false)
		}(i)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientBalance):
			failed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	wantSuccesses := int(initial / cost)
	if succeeded != wantSuccesses {
		t.Fatalf("expected %d successful spends, got %d", wantSuccesses, succeeded)
	}
	if failed != workers-wantSuccesses {
		t.Fatalf("expected %d failed spends, got %d", workers-wantSuccesses, failed)
	}

	balance, _ := svc.GetBalance(ctx, "user-1")
	want := initial - int64(wantSuccesses)*cost
	if balance != want {
		t.Fatalf("expected final balance %d, got %d", want, balance)
	}
}

func TestAdjustRejectsNegativeResult(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.Earn(ctx, "user-1", 10, ReasonUploadReward, ""); err != nil {
		t.Fatalf("Earn: %v", err)
	}
	if _, err := svc.Adjust(ctx, "admin-1", "user-1", -20, "oops"); !errors.Is(err, ErrNegativeBalance) {
		t.Fatalf("expected ErrNegativeBalance, got %v", err)
	}
	balance, _ := svc.GetBalance(ctx, "user-1")
	if balance != 10 {
		t.Fatalf("expected balance 10, got %d", balance)
	}
}

func TestSetBalanceRoundTrip(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	balance, err := svc.SetBalance(ctx, "admin-1", "user-1", 50, "initial grant")
	if err != nil {
		t.Fatalf("SetBalance: %v", err)
	}
	if balance != 50 {
		t.Fatalf("expected balance 50, got %d", balance)
	}

	got, err := svc.GetBalance(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if got != 50 {
		t.Fatalf("expected balance 50, got %d", got)
	}

	pageResult, err := svc.ListTransactions(ctx, "user-1", 1, 10)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(pageResult.Transactions) != 1 {
		t.Fatalf("expected one transaction, got %d", len(pageResult.Transactions))
	}
	row := pageResult.Transactions[0]
	if row.Type != TypeAdjust {
		t.Fatalf("expected ADJUST row, got %s", row.Type)
	}
	if row.BalanceAfter != 50 {
		t.Fatalf("expected balanceAfter 50, got %d", row.BalanceAfter)
	}
	if row.PerformedByID != "admin-1" {
		t.Fatalf("expected performedById admin-1, got %s", row.PerformedByID)
	}
}

func TestListTransactionsNewestFirstPaginated(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Earn(ctx, "user-1", 10, ReasonUploadReward, ""); err != nil {
			t.Fatalf("Earn %d: %v", i, err)
		}
	}

	pageResult, err := svc.ListTransactions(ctx, "user-1", 1, 2)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if pageResult.Total != 5 {
		t.Fatalf("expected total 5, got %d", pageResult.Total)
	}
	if len(pageResult.Transactions) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(pageResult.Transactions))
	}
	if pageResult.Transactions[0].BalanceAfter != 50 {
		t.Fatalf("expected newest row first (balanceAfter 50), got %d", pageResult.Transactions[0].BalanceAfter)
	}

	last, err := svc.ListTransactions(ctx, "user-1", 3, 2)
	if err != nil {
		t.Fatalf("ListTransactions page 3: %v", err)
	}
	if len(last.Transactions) != 1 {
		t.Fatalf("expected 1 row on final page, got %d", len(last.Transactions))
	}
	if last.Transactions[0].BalanceAfter != 10 {
		t.Fatalf("expected oldest row last (balanceAfter 10), got %d", last.Transactions[0].BalanceAfter)
	}
}
