package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cartera-app/cartera_backend/internal/wallet"
)

// RegisterWalletRoutes wires the wallet operation endpoints behind the
// bearer-token gate.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, authGate fiber.Handler) {
	g := r.Group("/wallet", authGate)
	g.Post("/deposit/create-intent", h.CreateDepositIntent)
	g.Post("/transfer/execute", h.ExecuteTransfer)
	g.Get("/balance", h.Balance)
	g.Get("/transactions", h.Transactions)
}
