package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind is the direction of a single balance change.
type EntryKind string

const (
	EntryCredit      EntryKind = "credit"
	EntryDebit       EntryKind = "debit"
	EntryTransferIn  EntryKind = "transfer-in"
	EntryTransferOut EntryKind = "transfer-out"
)

// IsInflow reports whether the kind increases the wallet balance.
func (k EntryKind) IsInflow() bool {
	return k == EntryCredit || k == EntryTransferIn
}

// LedgerEntry is an immutable record of one balance change on one wallet.
// It is persisted in the transactions table.
type LedgerEntry struct {
	EntryID      string          `json:"entryID"`
	WalletID     string          `json:"walletID"`
	Kind         EntryKind       `json:"kind"`
	Amount       decimal.Decimal `json:"amount"` // Always positive
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Reference    string          `json:"reference"` // Unique
	Metadata     map[string]any  `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// SignedAmount returns the amount with the sign it contributes to the balance.
func (e LedgerEntry) SignedAmount() decimal.Decimal {
	if e.Kind.IsInflow() {
		return e.Amount
	}
	return e.Amount.Neg()
}

// Movement is the outcome of a single-wallet credit or debit.
type Movement struct {
	Wallet   Wallet      `json:"wallet"`
	Entry    LedgerEntry `json:"entry"`
	Replayed bool        `json:"-"` // True when served from an earlier request with the same reference
}
