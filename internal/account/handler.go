package account

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/statement_ledger/internal/ledger"
)

// ExternalKeyHeader carries the caller's external key on every request that
// acts on an existing account.
const ExternalKeyHeader = "cpf"

// Handler exposes account and statement endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	ExternalKey string `json:"cpf"`
	Name        string `json:"name"`
}

type updateRequest struct {
	Name string `json:"name"`
}

type entryRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type accountResponse struct {
	ID          string         `json:"id"`
	ExternalKey string         `json:"cpf"`
	Name        string         `json:"name"`
	CreatedAt   time.Time      `json:"created_at"`
	Statement   []ledger.Entry `json:"statement"`
}

// Create opens an account. The external key comes from the body because no
// account exists yet to resolve.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.service.Create(c.UserContext(), CreateInput{ExternalKey: req.ExternalKey, DisplayName: req.Name}); err != nil {
		return httpError(err)
	}
	return c.SendStatus(http.StatusCreated)
}

// Get returns the account profile with its statement.
func (h *Handler) Get(c *fiber.Ctx) error {
	account, err := h.resolve(c)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(accountResponse{
		ID:          account.ID,
		ExternalKey: account.ExternalKey,
		Name:        account.DisplayName,
		CreatedAt:   account.CreatedAt,
		Statement:   h.service.Statement(c.UserContext(), account),
	})
}

// Update replaces the display name.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.UpdateDisplayName(c.UserContext(), c.Get(ExternalKeyHeader), req.Name); err != nil {
		return httpError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Delete removes the account.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Get(ExternalKeyHeader)); err != nil {
		return httpError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Balance returns the derived balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	account, err := h.resolve(c)
	if err != nil {
		return err
	}
	balance, err := h.service.Balance(c.UserContext(), account)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"balance":   balance.Amount,
		"timestamp": balance.AsOf,
	})
}

// Statement returns every entry of the account.
func (h *Handler) Statement(c *fiber.Ctx) error {
	account, err := h.resolve(c)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(h.service.Statement(c.UserContext(), account))
}

// StatementByDate returns the entries recorded on ?date=YYYY-MM-DD.
func (h *Handler) StatementByDate(c *fiber.Ctx) error {
	account, err := h.resolve(c)
	if err != nil {
		return err
	}
	date := c.Query("date")
	if date == "" {
		return fiber.NewError(http.StatusBadRequest, "date query parameter is required")
	}
	entries, err := h.service.StatementByDate(c.UserContext(), account, date)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(entries)
}

// Deposit records a credit.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	account, err := h.resolve(c)
	if err != nil {
		return err
	}
	var req entryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.service.Deposit(c.UserContext(), account, EntryInput{Description: req.Description, Amount: req.Amount})
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(entry)
}

// Withdraw records a debit when funds allow.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	account, err := h.resolve(c)
	if err != nil {
		return err
	}
	var req entryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.service.Withdraw(c.UserContext(), account, EntryInput{Description: req.Description, Amount: req.Amount})
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(entry)
}

// resolve maps the external key header to an account. It reads nothing else
// from the request and stores nothing on it.
func (h *Handler) resolve(c *fiber.Ctx) (Account, error) {
	account, err := h.service.Get(c.UserContext(), c.Get(ExternalKeyHeader))
	if err != nil {
		return Account{}, httpError(err)
	}
	return account, nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return fiber.NewError(http.StatusNotFound, "account not found")
	case errors.Is(err, ErrDuplicateAccount):
		return fiber.NewError(http.StatusConflict, "account already exists")
	case errors.Is(err, ErrInvalidExternalKey):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusBadRequest, "insufficient funds")
	case errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, ledger.ErrInvariantViolation):
		return fiber.NewError(http.StatusInternalServerError, "internal ledger error")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
