package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds the current balance of exactly one user.
type Wallet struct {
	WalletID     string          `json:"walletID"`
	UserID       string          `json:"userID"` // Unique, one wallet per user
	Balance      decimal.Decimal `json:"balance"`
	CurrencyCode string          `json:"currencyCode"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CanDebit reports whether amount can leave the wallet without a negative balance.
func (w Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

// BalanceView is the read-only projection returned by balance queries.
type BalanceView struct {
	Balance      decimal.Decimal `json:"balance"`
	CurrencyCode string          `json:"currencyCode"`
	Wallet       Wallet          `json:"wallet"`
}
