package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/statement_ledger/internal/ledger"
	"github.com/congo-pay/statement_ledger/internal/logging"
	"github.com/congo-pay/statement_ledger/internal/metrics"
	"github.com/congo-pay/statement_ledger/internal/notification"
)

// Service manages the account lifecycle and delegates statement work to the
// ledger engine.
type Service struct {
	repo     Repository
	engine   *ledger.Engine
	notifier notification.Notifier
	metrics  *metrics.Ledger
	logger   *slog.Logger
}

// Deps bundles the optional collaborators of a Service.
type Deps struct {
	Notifier notification.Notifier
	Metrics  *metrics.Ledger
	Logger   *slog.Logger
}

// NewService builds an account service.
func NewService(repo Repository, engine *ledger.Engine, deps Deps) *Service {
	if engine == nil {
		engine = ledger.NewEngine()
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{repo: repo, engine: engine, notifier: deps.Notifier, metrics: deps.Metrics, logger: logger}
}

// Create registers a new account with an empty statement.
func (s *Service) Create(ctx context.Context, input CreateInput) (Account, error) {
	if strings.TrimSpace(input.ExternalKey) == "" {
		return Account{}, ErrInvalidExternalKey
	}

	account := Account{
		ID:          uuid.New().String(),
		ExternalKey: input.ExternalKey,
		DisplayName: input.DisplayName,
		CreatedAt:   time.Now().UTC(),
		Statement:   ledger.NewStatement(),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return Account{}, err
	}
	s.refreshAccountCount(ctx)
	return account, nil
}

// Get resolves an account by external key.
func (s *Service) Get(ctx context.Context, externalKey string) (Account, error) {
	return s.repo.FindByExternalKey(ctx, externalKey)
}

// UpdateDisplayName replaces the display name, leaving every other field untouched.
func (s *Service) UpdateDisplayName(ctx context.Context, externalKey, displayName string) error {
	return s.repo.UpdateDisplayName(ctx, externalKey, displayName)
}

// Delete removes the account and discards its statement. The external key
// becomes available again.
func (s *Service) Delete(ctx context.Context, externalKey string) error {
	if err := s.repo.Delete(ctx, externalKey); err != nil {
		return err
	}
	s.refreshAccountCount(ctx)
	return nil
}

// Deposit records a credit on the resolved account.
func (s *Service) Deposit(ctx context.Context, account Account, input EntryInput) (ledger.Entry, error) {
	entry, err := s.engine.RecordDeposit(account.Statement, input.Description, input.Amount)
	if err != nil {
		return ledger.Entry{}, s.entryError(account, "deposit", err)
	}
	s.recorded(ctx, account, notification.KindDeposit, entry)
	return entry, nil
}

// Withdraw records a debit on the resolved account when its balance covers
// the amount.
func (s *Service) Withdraw(ctx context.Context, account Account, input EntryInput) (ledger.Entry, error) {
	entry, err := s.engine.RecordWithdrawal(account.Statement, input.Description, input.Amount)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			s.metrics.WithdrawalRejected()
		}
		return ledger.Entry{}, s.entryError(account, "withdrawal", err)
	}
	s.recorded(ctx, account, notification.KindWithdrawal, entry)
	return entry, nil
}

// Balance derives the current balance of the resolved account.
func (s *Service) Balance(_ context.Context, account Account) (Balance, error) {
	amount, err := s.engine.Balance(account.Statement)
	if err != nil {
		s.logger.Error("balance fold failed", slog.String("account_id", account.ID), slog.Any("error", err))
		return Balance{}, err
	}
	return Balance{ExternalKey: account.ExternalKey, Amount: amount, AsOf: time.Now().UTC()}, nil
}

// Statement returns every entry of the resolved account in recording order.
func (s *Service) Statement(_ context.Context, account Account) []ledger.Entry {
	return account.Statement.Entries()
}

// StatementByDate returns the entries recorded on the calendar day given as
// YYYY-MM-DD.
func (s *Service) StatementByDate(_ context.Context, account Account, date string) ([]ledger.Entry, error) {
	day, err := s.engine.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return s.engine.FilterByDate(account.Statement, day), nil
}

func (s *Service) entryError(account Account, op string, err error) error {
	if errors.Is(err, ledger.ErrInvariantViolation) {
		s.logger.Error("statement invariant violated",
			slog.String("op", op),
			slog.String("account_id", account.ID),
			slog.Any("error", err),
		)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) recorded(ctx context.Context, account Account, kind string, entry ledger.Entry) {
	s.metrics.EntryRecorded(entry.Type.String())
	if s.notifier == nil {
		return
	}
	msg := notification.Message{
		Kind:        kind,
		Destination: account.ExternalKey,
		Amount:      entry.Amount.String(),
		Body:        entry.Description,
		OccurredAt:  entry.CreatedAt,
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("notification failed",
			slog.String("kind", kind),
			slog.String("account_id", account.ID),
			slog.Any("error", err),
		)
	}
}

func (s *Service) refreshAccountCount(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	if n, err := s.repo.Count(ctx); err == nil {
		s.metrics.SetAccounts(n)
	}
}
