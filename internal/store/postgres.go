package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Postgres implements Store against the database platform over pgx. Numeric
// columns travel as text so decimals never pass through floats.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres builds a Postgres-backed store.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// WalletByOwner fetches the single user-owned wallet row.
func (s *Postgres) WalletByOwner(ctx context.Context, ownerUserID string) (Wallet, error) {
	const query = `
        SELECT id, balance::text, currency, owner_type, updated_at
        FROM wallets
        WHERE owner_user_id = $1 AND owner_type = $2`

	var (
		w          Wallet
		balanceStr string
		updatedAt  time.Time
	)
	row := s.db.QueryRow(ctx, query, ownerUserID, OwnerTypeUser)
	if err := row.Scan(&w.ID, &balanceStr, &w.Currency, &w.OwnerType, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrWalletNotFound
		}
		return Wallet{}, fmt.Errorf("query wallet by owner: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return Wallet{}, fmt.Errorf("parse wallet balance: %w", err)
	}
	w.Balance = balance
	w.UpdatedAt = updatedAt.UTC()
	return w, nil
}

// ProcessDeposit invokes the platform's process_deposit function. The
// function is responsible for crediting the wallet and recording the
// transaction atomically.
func (s *Postgres) ProcessDeposit(ctx context.Context, args DepositArgs) error {
	const call = `
        SELECT process_deposit(
            p_wallet_id => $1::uuid,
            p_amount => $2::numeric,
            p_currency => $3,
            p_payment_intent_id => $4,
            p_payment_method => $5)`

	if _, err := s.db.Exec(ctx, call,
		args.WalletID, args.Amount.String(), args.Currency,
		args.PaymentIntentID, args.PaymentMethod); err != nil {
		return fmt.Errorf("process_deposit rpc: %w", err)
	}
	return nil
}

// ExecuteTransfer invokes the platform's execute_p2p_transfer function and
// returns its outcome row verbatim.
func (s *Postgres) ExecuteTransfer(ctx context.Context, args TransferArgs) (TransferOutcome, error) {
	const call = `
        SELECT status, message, created_transaction_id
        FROM execute_p2p_transfer(
            p_sender_wallet_id => $1::uuid,
            p_receiver_wallet_id => $2::uuid,
            p_amount => $3::numeric,
            p_currency => $4,
            p_description => $5)`

	var (
		outcome TransferOutcome
		txID    *string
	)
	row := s.db.QueryRow(ctx, call,
		args.SenderWalletID, args.ReceiverWalletID, args.Amount.String(),
		args.Currency, args.Description)
	if err := row.Scan(&outcome.Status, &outcome.Message, &txID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TransferOutcome{}, fmt.Errorf("execute_p2p_transfer rpc returned no outcome row")
		}
		return TransferOutcome{}, fmt.Errorf("execute_p2p_transfer rpc: %w", err)
	}
	if txID != nil {
		outcome.TransactionID = *txID
	}
	return outcome, nil
}

// RecentTransactions lists the newest transactions the wallet participates
// in, as sender, receiver or generic party.
func (s *Postgres) RecentTransactions(ctx context.Context, walletID string, limit int) ([]Transaction, error) {
	const query = `
        SELECT id, wallet_id, source_wallet_id, destination_wallet_id,
               type, status, amount::text, currency, description, created_at
        FROM transactions
        WHERE wallet_id = $1 OR source_wallet_id = $1 OR destination_wallet_id = $1
        ORDER BY created_at DESC
        LIMIT $2`

	rows, err := s.db.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]Transaction, 0, limit)
	for rows.Next() {
		var (
			t         Transaction
			amountStr string
			createdAt time.Time
		)
		if err := rows.Scan(&t.ID, &t.WalletID, &t.SourceWalletID, &t.DestinationWalletID,
			&t.Type, &t.Status, &amountStr, &t.Currency, &t.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse transaction amount: %w", err)
		}
		t.Amount = amount
		t.CreatedAt = createdAt.UTC()
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}
