package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds occurs when a withdrawal exceeds the statement balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvariantViolation signals an entry whose type is neither credit nor
	// debit. It is never produced by the public API and indicates a bug.
	ErrInvariantViolation = errors.New("ledger invariant violation")
)

// DateLayout is the calendar date format accepted by ParseDate.
const DateLayout = "2006-01-02"

// EntryType discriminates statement entries. The zero value is not a valid type.
type EntryType uint8

const (
	// Credit adds its amount to the balance.
	Credit EntryType = iota + 1
	// Debit subtracts its amount from the balance.
	Debit
)

func (t EntryType) String() string {
	switch t {
	case Credit:
		return "credit"
	case Debit:
		return "debit"
	default:
		return fmt.Sprintf("EntryType(%d)", uint8(t))
	}
}

// Valid reports whether t is one of Credit or Debit.
func (t EntryType) Valid() bool {
	return t == Credit || t == Debit
}

// MarshalText encodes the type as "credit" or "debit".
func (t EntryType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvariantViolation, t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes "credit" or "debit".
func (t *EntryType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "credit":
		*t = Credit
	case "debit":
		*t = Debit
	default:
		return fmt.Errorf("unknown entry type %q", string(text))
	}
	return nil
}

// Entry is one recorded credit or debit. Entries are immutable once appended.
type Entry struct {
	Type        EntryType       `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// delta returns the signed contribution of the entry to a balance.
func (e Entry) delta() (decimal.Decimal, error) {
	switch e.Type {
	case Credit:
		return e.Amount, nil
	case Debit:
		return e.Amount.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: entry at %s has type %s", ErrInvariantViolation, e.CreatedAt.Format(time.RFC3339Nano), e.Type)
	}
}

// ComputeBalance folds entries left to right starting at zero. An entry with
// an unknown type aborts the fold with ErrInvariantViolation.
func ComputeBalance(entries []Entry) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, entry := range entries {
		d, err := entry.delta()
		if err != nil {
			return decimal.Zero, err
		}
		balance = balance.Add(d)
	}
	return balance, nil
}

// FilterByDate returns, in original order, the entries created on the same
// calendar day as date when both are viewed in loc. The result is never nil.
func FilterByDate(entries []Entry, date time.Time, loc *time.Location) []Entry {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := date.In(loc).Date()

	matched := make([]Entry, 0)
	for _, entry := range entries {
		ey, em, ed := entry.CreatedAt.In(loc).Date()
		if ey == y && em == m && ed == d {
			matched = append(matched, entry)
		}
	}
	return matched
}
