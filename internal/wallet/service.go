package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cartera-app/cartera_backend/internal/apperr"
	"github.com/cartera-app/cartera_backend/internal/store"
	"github.com/cartera-app/cartera_backend/internal/stripe"
)

const (
	defaultCurrency   = "mxn"
	transactionsLimit = 50

	metadataUserID   = "supabase_user_id"
	metadataWalletID = "supabase_wallet_id"
)

// minDepositAmount is the processor's minimum charge in the request
// currency's major unit.
var minDepositAmount = decimal.RequireFromString("10.00")

var minorUnitsPerUnit = decimal.NewFromInt(100)

// Service validates wallet operation requests, resolves the caller's wallet
// and delegates all financial state changes to the processor and the
// database platform's stored functions.
type Service struct {
	store   store.Store
	intents stripe.IntentCreator
}

// NewService builds a wallet service.
func NewService(st store.Store, intents stripe.IntentCreator) *Service {
	return &Service{store: st, intents: intents}
}

// DepositIntentInput captures a deposit intent request for the caller.
type DepositIntentInput struct {
	UserID   string
	Amount   decimal.Decimal
	Currency string
}

// CreateDepositIntent asks the processor for a payment intent funding the
// caller's wallet and returns the client secret the frontend completes the
// payment with.
func (s *Service) CreateDepositIntent(ctx context.Context, input DepositIntentInput) (string, error) {
	if input.Amount.LessThan(minDepositAmount) {
		return "", apperr.Newf(apperr.InvalidInput,
			"invalid amount: must be at least %s in the request currency", minDepositAmount)
	}

	w, err := s.store.WalletByOwner(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, store.ErrWalletNotFound) {
			return "", apperr.New(apperr.NotFound, "no wallet associated with this user")
		}
		return "", apperr.Wrap(apperr.Internal, "resolve wallet", err)
	}

	currency := strings.ToLower(input.Currency)
	if currency == "" {
		currency = defaultCurrency
	}

	intent, err := s.intents.CreatePaymentIntent(ctx, stripe.PaymentIntentParams{
		AmountMinor: input.Amount.Mul(minorUnitsPerUnit).Round(0).IntPart(),
		Currency:    currency,
		Metadata: map[string]string{
			metadataUserID:   input.UserID,
			metadataWalletID: w.ID,
		},
	})
	if err != nil {
		var apiErr *stripe.APIError
		if errors.As(err, &apiErr) {
			return "", apperr.New(apperr.Upstream, "payment service rejected the request").
				WithStatus(apiErr.StatusCode).
				WithDetails(apiErr.Message)
		}
		return "", apperr.Wrap(apperr.Upstream, "payment service unavailable", err)
	}

	return intent.ClientSecret, nil
}

// TransferInput captures a peer-to-peer transfer request for the caller.
type TransferInput struct {
	SenderUserID     string
	ReceiverWalletID string
	Amount           decimal.Decimal
	Currency         string
	Description      string
}

// TransferResult is the outcome of a completed transfer.
type TransferResult struct {
	Message       string
	TransactionID string
}

// ExecuteTransfer resolves the caller's wallet and forwards the transfer to
// the platform's execute_p2p_transfer function. A non-COMPLETED status in
// the function's outcome row is a business rejection, not a call failure.
func (s *Service) ExecuteTransfer(ctx context.Context, input TransferInput) (TransferResult, error) {
	if input.ReceiverWalletID == "" {
		return TransferResult{}, apperr.New(apperr.InvalidInput, "receiver_wallet_id is required")
	}
	if !input.Amount.IsPositive() {
		return TransferResult{}, apperr.New(apperr.InvalidInput, "amount must be greater than zero")
	}

	currency := input.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	sender, err := s.store.WalletByOwner(ctx, input.SenderUserID)
	if err != nil {
		if errors.Is(err, store.ErrWalletNotFound) {
			return TransferResult{}, apperr.New(apperr.NotFound, "sender wallet not found")
		}
		return TransferResult{}, apperr.Wrap(apperr.Internal, "resolve sender wallet", err)
	}

	if sender.ID == input.ReceiverWalletID {
		return TransferResult{}, apperr.New(apperr.InvalidInput, "cannot transfer funds to the same wallet")
	}

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Transfer from %s... to wallet %s...",
			shortID(input.SenderUserID), shortID(input.ReceiverWalletID))
	}

	outcome, err := s.store.ExecuteTransfer(ctx, store.TransferArgs{
		SenderWalletID:   sender.ID,
		ReceiverWalletID: input.ReceiverWalletID,
		Amount:           input.Amount,
		Currency:         strings.ToUpper(currency),
		Description:      description,
	})
	if err != nil {
		return TransferResult{}, apperr.Wrap(apperr.Internal, "failed to execute transfer", err)
	}

	if outcome.Status != store.TransferStatusCompleted {
		return TransferResult{}, apperr.New(apperr.Business, outcome.Message)
	}

	return TransferResult{Message: outcome.Message, TransactionID: outcome.TransactionID}, nil
}

// Balance returns the caller's wallet row verbatim.
func (s *Service) Balance(ctx context.Context, userID string) (store.Wallet, error) {
	w, err := s.store.WalletByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrWalletNotFound) {
			return store.Wallet{}, apperr.New(apperr.NotFound, "wallet not found")
		}
		return store.Wallet{}, apperr.Wrap(apperr.Internal, "fetch balance", err)
	}
	return w, nil
}

// Transactions lists the caller's most recent transactions, newest first.
func (s *Service) Transactions(ctx context.Context, userID string) ([]store.Transaction, error) {
	w, err := s.store.WalletByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrWalletNotFound) {
			return nil, apperr.New(apperr.NotFound, "wallet not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "resolve wallet", err)
	}

	transactions, err := s.store.RecentTransactions(ctx, w.ID, transactionsLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "fetch transactions", err)
	}
	if transactions == nil {
		transactions = []store.Transaction{}
	}
	return transactions, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
