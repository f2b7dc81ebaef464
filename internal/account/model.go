package account

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/statement_ledger/internal/ledger"
)

// Account is a registered customer and the statement it owns.
type Account struct {
	ID          string
	ExternalKey string
	DisplayName string
	CreatedAt   time.Time
	Statement   *ledger.Statement
}

// CreateInput captures data required to open an account.
type CreateInput struct {
	ExternalKey string
	DisplayName string
}

// EntryInput describes a deposit or withdrawal request.
type EntryInput struct {
	Description string
	Amount      decimal.Decimal
}

// Balance is the derived balance of an account at a point in time.
type Balance struct {
	ExternalKey string
	Amount      decimal.Decimal
	AsOf        time.Time
}
