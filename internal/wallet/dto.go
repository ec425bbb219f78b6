package wallet

import "github.com/shopspring/decimal"

// depositIntentRequest is the body of POST /api/wallet/deposit/create-intent.
type depositIntentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// transferRequest is the body of POST /api/wallet/transfer/execute.
type transferRequest struct {
	ReceiverWalletID string          `json:"receiver_wallet_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Description      string          `json:"description"`
}
