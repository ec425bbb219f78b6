package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests. It records every stored
// function call so tests can assert exactly which side effects a request
// produced.
type Memory struct {
	mu           sync.Mutex
	wallets      map[string]Wallet // keyed by owner user id
	transactions []Transaction

	depositCalls  []DepositArgs
	transferCalls []TransferArgs

	// DepositErr, when set, is returned by ProcessDeposit after the call
	// is recorded.
	DepositErr error
	// TransferErr, when set, is returned by ExecuteTransfer after the
	// call is recorded.
	TransferErr error
	// TransferOutcome, when set, overrides the default COMPLETED outcome.
	Outcome *TransferOutcome
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{wallets: make(map[string]Wallet)}
}

// PutWallet registers a wallet row for an owner.
func (m *Memory) PutWallet(ownerUserID string, w Wallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.OwnerType == "" {
		w.OwnerType = OwnerTypeUser
	}
	m.wallets[ownerUserID] = w
}

// AddTransaction appends a transaction row.
func (m *Memory) AddTransaction(t Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, t)
}

// WalletByOwner resolves a wallet by owner user id.
func (m *Memory) WalletByOwner(_ context.Context, ownerUserID string) (Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[ownerUserID]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return w, nil
}

// ProcessDeposit records the call and returns the configured error, if any.
func (m *Memory) ProcessDeposit(_ context.Context, args DepositArgs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depositCalls = append(m.depositCalls, args)
	return m.DepositErr
}

// ExecuteTransfer records the call and returns the configured outcome, or a
// COMPLETED outcome with a fresh transaction id.
func (m *Memory) ExecuteTransfer(_ context.Context, args TransferArgs) (TransferOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transferCalls = append(m.transferCalls, args)
	if m.TransferErr != nil {
		return TransferOutcome{}, m.TransferErr
	}
	if m.Outcome != nil {
		return *m.Outcome, nil
	}
	return TransferOutcome{
		Status:        TransferStatusCompleted,
		Message:       "Transfer completed successfully.",
		TransactionID: uuid.NewString(),
	}, nil
}

// RecentTransactions filters transactions the wallet participates in,
// newest first.
func (m *Memory) RecentTransactions(_ context.Context, walletID string, limit int) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matches := func(id *string) bool { return id != nil && *id == walletID }

	var result []Transaction
	for _, t := range m.transactions {
		if matches(t.WalletID) || matches(t.SourceWalletID) || matches(t.DestinationWalletID) {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// DepositCalls returns a copy of the recorded deposit calls.
func (m *Memory) DepositCalls() []DepositArgs {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DepositArgs(nil), m.depositCalls...)
}

// TransferCalls returns a copy of the recorded transfer calls.
func (m *Memory) TransferCalls() []TransferArgs {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TransferArgs(nil), m.transferCalls...)
}
