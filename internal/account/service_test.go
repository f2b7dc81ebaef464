package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/statement_ledger/internal/ledger"
	"github.com/congo-pay/statement_ledger/internal/metrics"
	"github.com/congo-pay/statement_ledger/internal/notification"
)

type testNotifier struct {
	sent []notification.Message
	err  error
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.sent = append(n.sent, msg)
	return n.err
}

func newTestService(t *testing.T) (*Service, Repository, *testNotifier) {
	t.Helper()
	repo := NewMemoryRepository()
	notifier := &testNotifier{}
	svc := NewService(repo, ledger.NewEngine(), Deps{Notifier: notifier})
	return svc, repo, notifier
}

func amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestDepositsAndWithdrawalsScenario(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{ExternalKey: "111.111.111-11", DisplayName: "Alice"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	acct, err := svc.Get(ctx, "111.111.111-11")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if _, err := svc.Deposit(ctx, acct, EntryInput{Description: "salary", Amount: amount("100")}); err != nil {
		t.Fatalf("deposit salary: %v", err)
	}
	if _, err := svc.Deposit(ctx, acct, EntryInput{Description: "gift", Amount: amount("50")}); err != nil {
		t.Fatalf("deposit gift: %v", err)
	}
	if _, err := svc.Withdraw(ctx, acct, EntryInput{Amount: amount("30")}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	balance, err := svc.Balance(ctx, acct)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Amount.Equal(amount("120")) {
		t.Fatalf("expected balance 120, got %s", balance.Amount)
	}

	entries := svc.Statement(ctx, acct)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Description != "salary" || entries[1].Description != "gift" || entries[2].Type != ledger.Debit {
		t.Fatalf("entries out of order: %+v", entries)
	}

	if _, err := svc.Withdraw(ctx, acct, EntryInput{Amount: amount("1000")}); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	balance, _ = svc.Balance(ctx, acct)
	if !balance.Amount.Equal(amount("120")) {
		t.Fatalf("expected balance to stay 120, got %s", balance.Amount)
	}
	if got := len(svc.Statement(ctx, acct)); got != 3 {
		t.Fatalf("expected statement to stay at 3 entries, got %d", got)
	}

	if len(notifier.sent) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(notifier.sent))
	}
	if notifier.sent[2].Kind != notification.KindWithdrawal || notifier.sent[2].Destination != "111.111.111-11" {
		t.Fatalf("unexpected notification: %+v", notifier.sent[2])
	}
}

func TestCreateDuplicateKey(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{ExternalKey: "A", DisplayName: "first"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{ExternalKey: "A", DisplayName: "second"}); !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("expected duplicate account, got %v", err)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Fatalf("expected 1 account, got %d", n)
	}
	acct, _ := svc.Get(ctx, "A")
	if acct.DisplayName != "first" {
		t.Fatalf("original account was overwritten: %+v", acct)
	}
}

func TestCreateRejectsBlankKey(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Create(context.Background(), CreateInput{ExternalKey: "  "}); !errors.Is(err, ErrInvalidExternalKey) {
		t.Fatalf("expected invalid key, got %v", err)
	}
}

func TestUnknownKeyIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("get: expected not found, got %v", err)
	}
	if err := svc.UpdateDisplayName(ctx, "missing", "x"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("update: expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, "missing"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("delete: expected not found, got %v", err)
	}
}

func TestUpdateDisplayNameKeepsOtherFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{ExternalKey: "A", DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Deposit(ctx, created, EntryInput{Description: "seed", Amount: amount("10")}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := svc.UpdateDisplayName(ctx, "A", "Alice B."); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := svc.Get(ctx, "A")
	if got.DisplayName != "Alice B." {
		t.Fatalf("expected new name, got %q", got.DisplayName)
	}
	if got.ID != created.ID || got.ExternalKey != created.ExternalKey || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("identity changed: %+v vs %+v", got, created)
	}
	if got.Statement.Len() != 1 {
		t.Fatalf("statement lost on update")
	}
}

func TestDeleteFreesKeyForFreshAccount(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{ExternalKey: "A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Deposit(ctx, first, EntryInput{Amount: amount("5")}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := svc.Delete(ctx, "A"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "A"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected deleted account to be gone, got %v", err)
	}

	second, err := svc.Create(ctx, CreateInput{ExternalKey: "A"})
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected a fresh identifier")
	}
	if n := len(svc.Statement(ctx, second)); n != 0 {
		t.Fatalf("expected empty statement, got %d entries", n)
	}
}

func TestDeleteRemovesOnlyMatchingAccount(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	for _, key := range []string{"A", "B", "C"} {
		if _, err := svc.Create(ctx, CreateInput{ExternalKey: key}); err != nil {
			t.Fatalf("create %s: %v", key, err)
		}
	}
	if err := svc.Delete(ctx, "B"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, key := range []string{"A", "C"} {
		if _, err := svc.Get(ctx, key); err != nil {
			t.Fatalf("expected %s to survive: %v", key, err)
		}
	}
	if n, _ := repo.Count(ctx); n != 2 {
		t.Fatalf("expected 2 accounts, got %d", n)
	}
}

func TestStatementByDate(t *testing.T) {
	day := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := ledger.NewStepClock(day, time.Hour)
	engine := ledger.NewEngine(ledger.WithClock(clock.Now), ledger.WithLocation(time.UTC))
	svc := NewService(NewMemoryRepository(), engine, Deps{})
	ctx := context.Background()

	acct, err := svc.Create(ctx, CreateInput{ExternalKey: "A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	svc.Deposit(ctx, acct, EntryInput{Description: "d1", Amount: amount("1")})
	svc.Deposit(ctx, acct, EntryInput{Description: "d2", Amount: amount("2")})
	clock.Set(day.AddDate(0, 0, 1))
	svc.Deposit(ctx, acct, EntryInput{Description: "d3", Amount: amount("3")})

	got, err := svc.StatementByDate(ctx, acct, "2024-03-01")
	if err != nil {
		t.Fatalf("statement by date: %v", err)
	}
	if len(got) != 2 || got[0].Description != "d1" || got[1].Description != "d2" {
		t.Fatalf("unexpected entries: %+v", got)
	}

	got, err = svc.StatementByDate(ctx, acct, "2024-03-03")
	if err != nil {
		t.Fatalf("statement by date: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %d", len(got))
	}

	if _, err := svc.StatementByDate(ctx, acct, "yesterday"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNotificationFailureDoesNotFailDeposit(t *testing.T) {
	repo := NewMemoryRepository()
	notifier := &testNotifier{err: errors.New("broker down")}
	svc := NewService(repo, nil, Deps{Notifier: notifier})
	ctx := context.Background()

	acct, _ := svc.Create(ctx, CreateInput{ExternalKey: "A"})
	if _, err := svc.Deposit(ctx, acct, EntryInput{Amount: amount("1")}); err != nil {
		t.Fatalf("deposit should succeed despite notifier error: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected notification attempt")
	}
}

func TestServiceRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewLedger(reg)
	svc := NewService(NewMemoryRepository(), nil, Deps{Metrics: m})
	ctx := context.Background()

	acct, _ := svc.Create(ctx, CreateInput{ExternalKey: "A"})
	svc.Create(ctx, CreateInput{ExternalKey: "B"})
	svc.Deposit(ctx, acct, EntryInput{Amount: amount("10")})
	svc.Withdraw(ctx, acct, EntryInput{Amount: amount("4")})
	svc.Withdraw(ctx, acct, EntryInput{Amount: amount("40")})
	svc.Delete(ctx, "B")

	expected := `
# HELP ledger_accounts Accounts currently registered.
# TYPE ledger_accounts gauge
ledger_accounts 1
# HELP ledger_entries_recorded_total Statement entries recorded, by entry type.
# TYPE ledger_entries_recorded_total counter
ledger_entries_recorded_total{type="credit"} 1
ledger_entries_recorded_total{type="debit"} 1
# HELP ledger_withdrawals_rejected_total Withdrawals refused for insufficient funds.
# TYPE ledger_withdrawals_rejected_total counter
ledger_withdrawals_rejected_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected)); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}
