package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cartera-app/cartera_backend/internal/apperr"
	"github.com/cartera-app/cartera_backend/internal/store"
	"github.com/cartera-app/cartera_backend/internal/stripe"
)

type fakeIntentCreator struct {
	calls  []stripe.PaymentIntentParams
	err    error
	intent *stripe.PaymentIntent
}

func (f *fakeIntentCreator) CreatePaymentIntent(_ context.Context, params stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	if f.intent != nil {
		return f.intent, nil
	}
	return &stripe.PaymentIntent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

func newServiceWithWallet(t *testing.T, userID, walletID string) (*Service, *store.Memory, *fakeIntentCreator) {
	t.Helper()
	st := store.NewMemory()
	st.PutWallet(userID, store.Wallet{
		ID:       walletID,
		Balance:  decimal.RequireFromString("250.00"),
		Currency: "MXN",
	})
	intents := &fakeIntentCreator{}
	return NewService(st, intents), st, intents
}

func TestCreateDepositIntentBelowMinimum(t *testing.T) {
	svc, _, intents := newServiceWithWallet(t, "user-1", "wallet-1")

	_, err := svc.CreateDepositIntent(context.Background(), DepositIntentInput{
		UserID: "user-1",
		Amount: decimal.NewFromInt(5),
	})
	if !apperr.IsKind(err, apperr.InvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if len(intents.calls) != 0 {
		t.Fatalf("expected no processor calls, got %d", len(intents.calls))
	}
}

func TestCreateDepositIntentMinimumAccepted(t *testing.T) {
	svc, _, intents := newServiceWithWallet(t, "user-1", "wallet-1")

	secret, err := svc.CreateDepositIntent(context.Background(), DepositIntentInput{
		UserID: "user-1",
		Amount: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("create deposit intent: %v", err)
	}
	if secret != "pi_test_secret" {
		t.Fatalf("unexpected client secret: %q", secret)
	}

	if len(intents.calls) != 1 {
		t.Fatalf("expected one processor call, got %d", len(intents.calls))
	}
	call := intents.calls[0]
	if call.AmountMinor != 1000 {
		t.Fatalf("expected 1000 minor units for amount 10, got %d", call.AmountMinor)
	}
	if call.Currency != "mxn" {
		t.Fatalf("expected lowercase default currency mxn, got %q", call.Currency)
	}
	if call.Metadata["supabase_user_id"] != "user-1" || call.Metadata["supabase_wallet_id"] != "wallet-1" {
		t.Fatalf("unexpected intent metadata: %v", call.Metadata)
	}
}

func TestCreateDepositIntentFractionalAmount(t *testing.T) {
	svc, _, intents := newServiceWithWallet(t, "user-1", "wallet-1")

	if _, err := svc.CreateDepositIntent(context.Background(), DepositIntentInput{
		UserID:   "user-1",
		Amount:   decimal.RequireFromString("12.34"),
		Currency: "USD",
	}); err != nil {
		t.Fatalf("create deposit intent: %v", err)
	}

	call := intents.calls[0]
	if call.AmountMinor != 1234 {
		t.Fatalf("expected 1234 minor units for 12.34, got %d", call.AmountMinor)
	}
	if call.Currency != "usd" {
		t.Fatalf("expected lowercased currency usd, got %q", call.Currency)
	}
}

func TestCreateDepositIntentNoWallet(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st, &fakeIntentCreator{})

	_, err := svc.CreateDepositIntent(context.Background(), DepositIntentInput{
		UserID: "user-without-wallet",
		Amount: decimal.NewFromInt(50),
	})
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCreateDepositIntentProcessorRejection(t *testing.T) {
	svc, _, intents := newServiceWithWallet(t, "user-1", "wallet-1")
	intents.err = &stripe.APIError{StatusCode: 402, Type: "card_error", Message: "amount too small"}

	_, err := svc.CreateDepositIntent(context.Background(), DepositIntentInput{
		UserID: "user-1",
		Amount: decimal.NewFromInt(10),
	})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.Upstream {
		t.Fatalf("expected Upstream error, got %v", err)
	}
	if ae.HTTPStatus() != 402 {
		t.Fatalf("expected processor status 402 passed through, got %d", ae.HTTPStatus())
	}
	if ae.Details != "amount too small" {
		t.Fatalf("expected processor detail, got %q", ae.Details)
	}
}

func TestExecuteTransferRejectsSelfTransfer(t *testing.T) {
	svc, st, _ := newServiceWithWallet(t, "user-1", "wallet-1")

	_, err := svc.ExecuteTransfer(context.Background(), TransferInput{
		SenderUserID:     "user-1",
		ReceiverWalletID: "wallet-1",
		Amount:           decimal.NewFromInt(25),
	})
	if !apperr.IsKind(err, apperr.InvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if calls := st.TransferCalls(); len(calls) != 0 {
		t.Fatalf("expected no transfer rpc calls, got %d", len(calls))
	}
}

func TestExecuteTransferMissingReceiver(t *testing.T) {
	svc, st, _ := newServiceWithWallet(t, "user-1", "wallet-1")

	_, err := svc.ExecuteTransfer(context.Background(), TransferInput{
		SenderUserID: "user-1",
		Amount:       decimal.NewFromInt(25),
	})
	if !apperr.IsKind(err, apperr.InvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if calls := st.TransferCalls(); len(calls) != 0 {
		t.Fatalf("expected no transfer rpc calls, got %d", len(calls))
	}
}

func TestExecuteTransferNonPositiveAmount(t *testing.T) {
	svc, _, _ := newServiceWithWallet(t, "user-1", "wallet-1")

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		_, err := svc.ExecuteTransfer(context.Background(), TransferInput{
			SenderUserID:     "user-1",
			ReceiverWalletID: "wallet-2",
			Amount:           amount,
		})
		if !apperr.IsKind(err, apperr.InvalidInput) {
			t.Fatalf("amount %s: expected InvalidInput, got %v", amount, err)
		}
	}
}

func TestExecuteTransferCompleted(t *testing.T) {
	svc, st, _ := newServiceWithWallet(t, "user-1", "wallet-1")
	st.Outcome = &store.TransferOutcome{
		Status:        store.TransferStatusCompleted,
		Message:       "Transfer completed successfully.",
		TransactionID: "tx1",
	}

	result, err := svc.ExecuteTransfer(context.Background(), TransferInput{
		SenderUserID:     "user-1",
		ReceiverWalletID: "wallet-2",
		Amount:           decimal.NewFromInt(25),
		Currency:         "mxn",
	})
	if err != nil {
		t.Fatalf("execute transfer: %v", err)
	}
	if result.TransactionID != "tx1" {
		t.Fatalf("expected transaction id tx1, got %q", result.TransactionID)
	}

	calls := st.TransferCalls()
	if len(calls) != 1 {
		t.Fatalf("expected one transfer rpc call, got %d", len(calls))
	}
	if calls[0].Currency != "MXN" {
		t.Fatalf("expected uppercased currency MXN, got %q", calls[0].Currency)
	}
	if calls[0].SenderWalletID != "wallet-1" || calls[0].ReceiverWalletID != "wallet-2" {
		t.Fatalf("unexpected transfer args: %+v", calls[0])
	}
}

func TestExecuteTransferBusinessRejectionIsNotCallError(t *testing.T) {
	svc, st, _ := newServiceWithWallet(t, "user-1", "wallet-1")
	st.Outcome = &store.TransferOutcome{Status: "REJECTED", Message: "insufficient funds"}

	_, err := svc.ExecuteTransfer(context.Background(), TransferInput{
		SenderUserID:     "user-1",
		ReceiverWalletID: "wallet-2",
		Amount:           decimal.NewFromInt(9999),
	})

	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.Business {
		t.Fatalf("expected Business rejection, got %v", err)
	}
	if ae.Message != "insufficient funds" {
		t.Fatalf("expected rpc message to surface, got %q", ae.Message)
	}
	if ae.HTTPStatus() != 400 {
		t.Fatalf("expected 400 for business rejection, got %d", ae.HTTPStatus())
	}
}

func TestExecuteTransferAutogeneratesDescription(t *testing.T) {
	svc, st, _ := newServiceWithWallet(t, "user-12345678abc", "wallet-1")

	if _, err := svc.ExecuteTransfer(context.Background(), TransferInput{
		SenderUserID:     "user-12345678abc",
		ReceiverWalletID: "wallet-22345678xyz",
		Amount:           decimal.NewFromInt(25),
	}); err != nil {
		t.Fatalf("execute transfer: %v", err)
	}

	call := st.TransferCalls()[0]
	want := "Transfer from user-123... to wallet wallet-2..."
	if call.Description != want {
		t.Fatalf("expected description %q, got %q", want, call.Description)
	}
}

func TestExecuteTransferRPCFailure(t *testing.T) {
	svc, st, _ := newServiceWithWallet(t, "user-1", "wallet-1")
	st.TransferErr = errors.New("connection reset")

	_, err := svc.ExecuteTransfer(context.Background(), TransferInput{
		SenderUserID:     "user-1",
		ReceiverWalletID: "wallet-2",
		Amount:           decimal.NewFromInt(25),
	})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.Internal {
		t.Fatalf("expected Internal error for rpc failure, got %v", err)
	}
}

func TestBalanceNoWallet(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st, &fakeIntentCreator{})

	_, err := svc.Balance(context.Background(), "user-without-wallet")
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestTransactionsReturnsEmptySliceNotNil(t *testing.T) {
	svc, _, _ := newServiceWithWallet(t, "user-1", "wallet-1")

	transactions, err := svc.Transactions(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if transactions == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(transactions) != 0 {
		t.Fatalf("expected no transactions, got %d", len(transactions))
	}
}
