package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEventType names the committed money movement an event reports.
type LedgerEventType string

const (
	EventWalletFunded      LedgerEventType = "wallet.funded"
	EventWalletWithdrawn   LedgerEventType = "wallet.withdrawn"
	EventWalletTransferred LedgerEventType = "wallet.transferred"
)

// LedgerEvent is published after a money movement commits.
type LedgerEvent struct {
	EventID      string          `json:"eventId"`
	Type         LedgerEventType `json:"type"`
	UserID       string          `json:"userId"`
	WalletID     string          `json:"walletId"`
	Reference    string          `json:"reference"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	TransferID   string          `json:"transferId,omitempty"`
	ToUserID     string          `json:"toUserId,omitempty"`
	OccurredAt   time.Time       `json:"occurredAt"`
}
