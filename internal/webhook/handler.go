package webhook

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/cartera-app/cartera_backend/internal/apperr"
	"github.com/cartera-app/cartera_backend/internal/store"
	"github.com/cartera-app/cartera_backend/internal/stripe"
)

const (
	// metadataWalletID is the intent metadata key that links a payment
	// back to the wallet it funds.
	metadataWalletID = "supabase_wallet_id"

	// paymentMethodStripe is the payment method recorded with deposits
	// credited through processor webhooks.
	paymentMethodStripe = "STRIPE"

	dedupKeyPrefix = "stripe:event:"
)

var minorUnitsPerUnit = decimal.NewFromInt(100)

// Handler verifies inbound processor webhooks and dispatches them by event
// type. Once a delivery's signature has been verified, the handler always
// acknowledges with 200 so the processor stops redelivering: a deposit call
// that fails on the platform side is logged, never surfaced.
type Handler struct {
	store    store.Store
	secret   string
	dedup    *redis.Client
	dedupTTL time.Duration
	logger   *slog.Logger
}

// NewHandler builds the webhook handler. dedup may be nil, in which case
// redelivered events are dispatched again (the platform function's
// idempotency is then the only guard).
func NewHandler(st store.Store, signingSecret string, dedup *redis.Client, dedupTTL time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		store:    st,
		secret:   signingSecret,
		dedup:    dedup,
		dedupTTL: dedupTTL,
		logger:   logger,
	}
}

// Handle processes one webhook delivery over the raw request body.
func (h *Handler) Handle(c *fiber.Ctx) error {
	if h.store == nil {
		return apperr.New(apperr.Config, "database client is not configured")
	}

	sigHeader := c.Get(stripe.SignatureHeader)
	if sigHeader == "" || h.secret == "" {
		return apperr.New(apperr.BadSignature, "missing Stripe-Signature header or webhook signing secret")
	}

	event, err := stripe.ConstructEvent(c.Body(), sigHeader, h.secret)
	if err != nil {
		// The sender is trusted once configured, so the raw detail is
		// echoed back to help diagnose signing mismatches.
		return apperr.Newf(apperr.BadSignature, "Webhook Error: %v", err)
	}

	ctx := c.UserContext()

	if h.alreadyDelivered(ctx, event.ID) {
		h.logger.Info("webhook event already processed, acknowledging redelivery",
			"event_id", event.ID, "event_type", event.Type)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	}

	switch event.Type {
	case stripe.EventPaymentIntentSucceeded:
		// A payload that cannot be decoded never will be; surfacing an
		// error would only provoke redeliveries of the same bytes.
		intent, err := stripe.PaymentIntentFromEvent(event)
		if err != nil {
			h.logger.Error("malformed payment intent payload, skipping",
				"event_id", event.ID, "error", err)
		} else {
			h.creditDeposit(ctx, intent)
		}

	case stripe.EventPaymentIntentFailed:
		// Recording failed attempts is deliberately deferred.
		intent, err := stripe.PaymentIntentFromEvent(event)
		if err == nil {
			h.logger.Warn("payment intent failed", "payment_intent_id", intent.ID)
		} else {
			h.logger.Warn("payment intent failed", "event_id", event.ID)
		}

	default:
		h.logger.Info("unhandled webhook event type", "event_type", event.Type, "event_id", event.ID)
	}

	h.markDelivered(ctx, event.ID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

// creditDeposit forwards a succeeded payment to the platform's deposit
// function. Failures are logged and swallowed: surfacing them would make the
// processor redeliver an event whose processing already reached a terminal
// state here.
func (h *Handler) creditDeposit(ctx context.Context, intent stripe.PaymentIntent) {
	walletID := intent.Metadata[metadataWalletID]
	if walletID == "" {
		h.logger.Info("payment intent without wallet metadata, skipping deposit",
			"payment_intent_id", intent.ID)
		return
	}

	amount := decimal.NewFromInt(intent.Amount).Div(minorUnitsPerUnit)

	err := h.store.ProcessDeposit(ctx, store.DepositArgs{
		WalletID:        walletID,
		Amount:          amount,
		Currency:        strings.ToUpper(intent.Currency),
		PaymentIntentID: intent.ID,
		PaymentMethod:   paymentMethodStripe,
	})
	if err != nil {
		h.logger.Error("deposit rpc failed",
			"payment_intent_id", intent.ID, "wallet_id", walletID, "error", err)
		return
	}

	h.logger.Info("deposit processed",
		"payment_intent_id", intent.ID, "wallet_id", walletID, "amount", amount.String())
}

// alreadyDelivered reports whether a previous delivery of the event reached
// the acknowledgment. Fails open: without Redis (or on a Redis error) every
// delivery is treated as first.
func (h *Handler) alreadyDelivered(ctx context.Context, eventID string) bool {
	if h.dedup == nil || eventID == "" {
		return false
	}

	n, err := h.dedup.Exists(ctx, dedupKeyPrefix+eventID).Result()
	if err != nil {
		h.logger.Warn("webhook dedup store unavailable", "event_id", eventID, "error", err)
		return false
	}
	return n > 0
}

// markDelivered records the event id once dispatch reached a terminal state.
// A panic during dispatch skips this, so the 500 the recover middleware
// produces invites a redelivery that is not deduplicated.
func (h *Handler) markDelivered(ctx context.Context, eventID string) {
	if h.dedup == nil || eventID == "" {
		return
	}

	if err := h.dedup.Set(ctx, dedupKeyPrefix+eventID, 1, h.dedupTTL).Err(); err != nil {
		h.logger.Warn("webhook dedup store unavailable", "event_id", eventID, "error", err)
	}
}
