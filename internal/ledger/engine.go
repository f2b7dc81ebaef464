package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Engine records entries on statements and derives views over them. It holds
// no account state of its own; callers hand it the statement to work on.
type Engine struct {
	now func() time.Time
	loc *time.Location
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the source of entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocation sets the time zone used for calendar-day comparisons.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// NewEngine builds an engine using the wall clock and the server's local zone
// unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the zone used for calendar-day comparisons.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Balance returns the signed sum of the statement.
func (e *Engine) Balance(s *Statement) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeBalance(s.entries)
}

// RecordDeposit appends a credit entry stamped with the current time.
func (e *Engine) RecordDeposit(s *Statement, description string, amount decimal.Decimal) (Entry, error) {
	if !amount.IsPositive() {
		return Entry{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{Type: Credit, Amount: amount, Description: description, CreatedAt: e.now()}
	s.append(entry)
	return s.entries[len(s.entries)-1], nil
}

// RecordWithdrawal appends a debit entry when the balance covers amount. The
// balance check and the append happen under one write lock, so concurrent
// withdrawals cannot jointly overdraw the statement. On failure nothing is
// appended.
func (e *Engine) RecordWithdrawal(s *Statement, description string, amount decimal.Decimal) (Entry, error) {
	if !amount.IsPositive() {
		return Entry{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance, err := ComputeBalance(s.entries)
	if err != nil {
		return Entry{}, err
	}
	if balance.LessThan(amount) {
		return Entry{}, ErrInsufficientFunds
	}

	entry := Entry{Type: Debit, Amount: amount, Description: description, CreatedAt: e.now()}
	s.append(entry)
	return s.entries[len(s.entries)-1], nil
}

// FilterByDate returns the statement entries recorded on date's calendar day
// in the engine's zone.
func (e *Engine) FilterByDate(s *Statement, date time.Time) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterByDate(s.entries, date, e.loc)
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight in the engine's zone.
func (e *Engine) ParseDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation(DateLayout, value, e.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s: %w", value, DateLayout, err)
	}
	return date, nil
}
