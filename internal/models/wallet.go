package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the persisted shape of a row in wallets.
type Wallet struct {
	WalletID  string          `db:"id"`
	UserID    string          `db:"user_id"`
	Balance   decimal.Decimal `db:"balance"` // DECIMAL(20,6)
	Currency  string          `db:"currency"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// Transaction is the persisted shape of a ledger entry in transactions.
type Transaction struct {
	TransactionID string          `db:"id"`
	WalletID      string          `db:"wallet_id"`
	Type          string          `db:"type"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Reference     string          `db:"reference"`
	Metadata      []byte          `db:"metadata"` // JSONB, nil when absent
	CreatedAt     time.Time       `db:"created_at"`
}

// Transfer is the persisted shape of a row in transfers.
type Transfer struct {
	TransferID   string          `db:"id"`
	FromWalletID string          `db:"from_wallet_id"`
	ToWalletID   string          `db:"to_wallet_id"`
	Amount       decimal.Decimal `db:"amount"`
	Status       string          `db:"status"`
	Reference    string          `db:"reference"`
	CreatedAt    time.Time       `db:"created_at"`
}
