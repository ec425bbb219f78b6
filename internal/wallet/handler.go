package wallet

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cartera-app/cartera_backend/internal/apperr"
	"github.com/cartera-app/cartera_backend/internal/auth"
	"github.com/cartera-app/cartera_backend/internal/middleware"
)

// Handler exposes the wallet operations over HTTP. All routes sit behind the
// bearer-token gate, so a missing identity means the middleware chain is
// miswired rather than a caller mistake.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateDepositIntent handles POST /deposit/create-intent.
func (h *Handler) CreateDepositIntent(c *fiber.Ctx) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req depositIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.InvalidInput, "invalid request body").WithDetails(err.Error())
	}

	clientSecret, err := h.service.CreateDepositIntent(c.UserContext(), DepositIntentInput{
		UserID:   ident.ID,
		Amount:   req.Amount,
		Currency: req.Currency,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"clientSecret": clientSecret})
}

// ExecuteTransfer handles POST /transfer/execute.
func (h *Handler) ExecuteTransfer(c *fiber.Ctx) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.InvalidInput, "invalid request body").WithDetails(err.Error())
	}

	result, err := h.service.ExecuteTransfer(c.UserContext(), TransferInput{
		SenderUserID:     ident.ID,
		ReceiverWalletID: req.ReceiverWalletID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		Description:      req.Description,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":       result.Message,
		"transactionId": result.TransactionID,
	})
}

// Balance handles GET /balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}

	w, err := h.service.Balance(c.UserContext(), ident.ID)
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(w)
}

// Transactions handles GET /transactions.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}

	transactions, err := h.service.Transactions(c.UserContext(), ident.ID)
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(transactions)
}

func callerIdentity(c *fiber.Ctx) (auth.Identity, error) {
	ident, ok := middleware.Identity(c)
	if !ok || ident.ID == "" {
		return auth.Identity{}, apperr.New(apperr.Unauthorized, "user not authenticated")
	}
	return ident, nil
}
