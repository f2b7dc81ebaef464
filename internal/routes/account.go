package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/statement_ledger/internal/account"
)

// RegisterAccountRoutes wires account and statement endpoints. writeGuards run
// in front of the endpoints that append to a statement.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler, writeGuards ...fiber.Handler) {
	r.Post("/account", h.Create)
	r.Put("/account", h.Update)
	r.Get("/account", h.Get)
	r.Delete("/account", h.Delete)

	r.Get("/balance", h.Balance)
	r.Get("/statement", h.Statement)
	r.Get("/statement/date", h.StatementByDate)

	r.Post("/deposit", guarded(writeGuards, h.Deposit)...)
	r.Post("/withdraw", guarded(writeGuards, h.Withdraw)...)
}

func guarded(guards []fiber.Handler, h fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(guards)+1)
	chain = append(chain, guards...)
	return append(chain, h)
}
