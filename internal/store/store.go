package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The platform serializes numeric columns as JSON numbers; rows
	// returned verbatim must keep that wire shape.
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrWalletNotFound is returned when the owner lookup matches no wallet row.
var ErrWalletNotFound = errors.New("wallet not found")

// TransferStatusCompleted is the status the transfer function reports on
// success. Any other status is a business rejection carried as data.
const TransferStatusCompleted = "COMPLETED"

// OwnerTypeUser scopes wallet lookups to user-owned wallets.
const OwnerTypeUser = "USER"

// Wallet is the database platform's wallet row as exposed to callers.
// Balance and currency are owned and mutated exclusively by the platform's
// stored functions; the gateway only reads them.
type Wallet struct {
	ID        string          `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	OwnerType string          `json:"owner_type"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Transaction is a row from the platform's transaction history.
type Transaction struct {
	ID                  string          `json:"id"`
	WalletID            *string         `json:"wallet_id"`
	SourceWalletID      *string         `json:"source_wallet_id"`
	DestinationWalletID *string         `json:"destination_wallet_id"`
	Type                string          `json:"type"`
	Status              string          `json:"status"`
	Amount              decimal.Decimal `json:"amount"`
	Currency            string          `json:"currency"`
	Description         *string         `json:"description"`
	CreatedAt           time.Time       `json:"created_at"`
}

// DepositArgs are the arguments forwarded to the process_deposit function.
type DepositArgs struct {
	WalletID        string
	Amount          decimal.Decimal
	Currency        string
	PaymentIntentID string
	PaymentMethod   string
}

// TransferArgs are the arguments forwarded to the execute_p2p_transfer
// function.
type TransferArgs struct {
	SenderWalletID   string
	ReceiverWalletID string
	Amount           decimal.Decimal
	Currency         string
	Description      string
}

// TransferOutcome is the row the transfer function returns. A non-COMPLETED
// status is a business outcome, not a call-level error.
type TransferOutcome struct {
	Status        string
	Message       string
	TransactionID string
}

// Store is the gateway's view of the database platform: wallet reads plus
// pass-through calls to the stored functions that own all financial state.
type Store interface {
	// WalletByOwner resolves the single user-owned wallet for a user id.
	// Returns ErrWalletNotFound when no row matches.
	WalletByOwner(ctx context.Context, ownerUserID string) (Wallet, error)
	// ProcessDeposit invokes the deposit function. Balance mutation and
	// transaction recording happen entirely on the platform side.
	ProcessDeposit(ctx context.Context, args DepositArgs) error
	// ExecuteTransfer invokes the peer-to-peer transfer function and
	// returns its outcome row.
	ExecuteTransfer(ctx context.Context, args TransferArgs) (TransferOutcome, error)
	// RecentTransactions lists up to limit transactions where the wallet
	// is sender, receiver or generic party, newest first.
	RecentTransactions(ctx context.Context, walletID string, limit int) ([]Transaction, error)
}
