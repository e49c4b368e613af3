package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus tracks a transfer through its single atomic unit.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferFailed    TransferStatus = "failed" // Present in the schema; never persisted since failures roll back
)

// Transfer groups the transfer-out and transfer-in entries that move value between two wallets.
type Transfer struct {
	TransferID   string          `json:"transferID"`
	FromWalletID string          `json:"fromWalletID"`
	ToWalletID   string          `json:"toWalletID"`
	Amount       decimal.Decimal `json:"amount"`
	Status       TransferStatus  `json:"status"`
	Reference    string          `json:"reference"` // Unique, caller supplied
	CreatedAt    time.Time       `json:"createdAt"`
}

// Entry references derived from the transfer reference. The transactions.reference
// column is unique, so each side gets its own suffix.
const (
	transferOutSuffix = ":out"
	transferInSuffix  = ":in"
)

// OutReference is the reference stored on the transfer-out entry.
func (t Transfer) OutReference() string { return TransferOutReference(t.Reference) }

// InReference is the reference stored on the transfer-in entry.
func (t Transfer) InReference() string { return TransferInReference(t.Reference) }

func TransferOutReference(reference string) string { return reference + transferOutSuffix }
func TransferInReference(reference string) string  { return reference + transferInSuffix }

// TransferReference returns the reference of the transfer that produced e, shared by
// both of its entries. It is empty for fund and withdraw entries.
func (e LedgerEntry) TransferReference() string {
	switch e.Kind {
	case EntryTransferOut:
		return strings.TrimSuffix(e.Reference, transferOutSuffix)
	case EntryTransferIn:
		return strings.TrimSuffix(e.Reference, transferInSuffix)
	}
	return ""
}

// TransferResult is everything a transfer produced, entries ordered out before in.
type TransferResult struct {
	Transfer   Transfer      `json:"transfer"`
	FromWallet Wallet        `json:"fromWallet"`
	ToWallet   Wallet        `json:"toWallet"`
	Entries    []LedgerEntry `json:"entries"`
	Replayed   bool          `json:"-"`
}
