package dto

import (
	"time"

	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FundRequest credits the caller's own wallet. Reference falls back to the
// Idempotency-Key header, then to a generated value.
type FundRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required,dpositive" swaggertype:"string" example:"500.00"`
	Reference string          `json:"reference" binding:"omitempty,max=80"`
	Metadata  map[string]any  `json:"metadata"`
}

// WithdrawRequest debits the caller's own wallet.
type WithdrawRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required,dpositive" swaggertype:"string" example:"100.00"`
	Reference string          `json:"reference" binding:"omitempty,max=80"`
	Metadata  map[string]any  `json:"metadata"`
}

// TransferRequest moves value from the caller's wallet to another user's.
type TransferRequest struct {
	ToUserID  string          `json:"toUserId" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required,dpositive" swaggertype:"string" example:"300.00"`
	Reference string          `json:"reference" binding:"omitempty,max=80"`
	Metadata  map[string]any  `json:"metadata"`
}

// WalletResponse renders a wallet with amounts at ledger scale.
type WalletResponse struct {
	WalletID     string    `json:"walletID"`
	UserID       string    `json:"userID"`
	Balance      string    `json:"balance"`
	CurrencyCode string    `json:"currencyCode"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// EntryResponse renders one ledger entry.
type EntryResponse struct {
	EntryID           string         `json:"entryID"`
	WalletID          string         `json:"walletID"`
	Kind              string         `json:"kind"`
	Amount            string         `json:"amount"`
	BalanceAfter      string         `json:"balanceAfter"`
	Reference         string         `json:"reference"`
	TransferReference string         `json:"transferReference,omitempty"` // Shared by both entries of a transfer
	Metadata          map[string]any `json:"metadata,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// MovementResponse is returned by fund and withdraw.
type MovementResponse struct {
	Wallet WalletResponse `json:"wallet"`
	Entry  EntryResponse  `json:"entry"`
}

// TransferRecordResponse renders a transfer row.
type TransferRecordResponse struct {
	TransferID   string    `json:"transferID"`
	FromWalletID string    `json:"fromWalletID"`
	ToWalletID   string    `json:"toWalletID"`
	Amount       string    `json:"amount"`
	Status       string    `json:"status"`
	Reference    string    `json:"reference"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TransferResponse is returned by transfer.
type TransferResponse struct {
	Transfer   TransferRecordResponse `json:"transfer"`
	FromWallet WalletResponse         `json:"fromWallet"`
	ToWallet   WalletResponse         `json:"toWallet"`
	Entries    []EntryResponse        `json:"entries"`
}

// BalanceResponse is returned by the balance query.
type BalanceResponse struct {
	Balance      string         `json:"balance"`
	CurrencyCode string         `json:"currencyCode"`
	Wallet       WalletResponse `json:"wallet"`
}

// ListEntriesParams defines query parameters for the entry history.
type ListEntriesParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse wraps a page of entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToWalletResponse converts a domain.Wallet to WalletResponse DTO
func ToWalletResponse(w domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID:     w.WalletID,
		UserID:       w.UserID,
		Balance:      domain.FormatAmount(w.Balance),
		CurrencyCode: w.CurrencyCode,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

// ToEntryResponse converts a domain.LedgerEntry to EntryResponse DTO
func ToEntryResponse(e domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		EntryID:           e.EntryID,
		WalletID:          e.WalletID,
		Kind:              string(e.Kind),
		Amount:            domain.FormatAmount(e.Amount),
		BalanceAfter:      domain.FormatAmount(e.BalanceAfter),
		Reference:         e.Reference,
		TransferReference: e.TransferReference(),
		Metadata:          e.Metadata,
		CreatedAt:         e.CreatedAt,
	}
}

// ToEntryResponses converts a slice of entries.
func ToEntryResponses(entries []domain.LedgerEntry) []EntryResponse {
	resp := make([]EntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = ToEntryResponse(e)
	}
	return resp
}

// ToMovementResponse converts a domain.Movement.
func ToMovementResponse(m *domain.Movement) MovementResponse {
	return MovementResponse{
		Wallet: ToWalletResponse(m.Wallet),
		Entry:  ToEntryResponse(m.Entry),
	}
}

// ToTransferResponse converts a domain.TransferResult.
func ToTransferResponse(r *domain.TransferResult) TransferResponse {
	return TransferResponse{
		Transfer: TransferRecordResponse{
			TransferID:   r.Transfer.TransferID,
			FromWalletID: r.Transfer.FromWalletID,
			ToWalletID:   r.Transfer.ToWalletID,
			Amount:       domain.FormatAmount(r.Transfer.Amount),
			Status:       string(r.Transfer.Status),
			Reference:    r.Transfer.Reference,
			CreatedAt:    r.Transfer.CreatedAt,
		},
		FromWallet: ToWalletResponse(r.FromWallet),
		ToWallet:   ToWalletResponse(r.ToWallet),
		Entries:    ToEntryResponses(r.Entries),
	}
}

// ToBalanceResponse converts a domain.BalanceView.
func ToBalanceResponse(v *domain.BalanceView) BalanceResponse {
	return BalanceResponse{
		Balance:      domain.FormatAmount(v.Balance),
		CurrencyCode: v.CurrencyCode,
		Wallet:       ToWalletResponse(v.Wallet),
	}
}
