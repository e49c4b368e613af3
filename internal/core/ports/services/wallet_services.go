package services

import (
	"context"

	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	"github.com/SscSPs/wallet_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// WalletMovementSvc defines the balance-changing operations. Each runs in a single
// database transaction and is idempotent on reference.
type WalletMovementSvc interface {
	// Fund credits amount to the user's wallet.
	Fund(ctx context.Context, userID string, amount decimal.Decimal, reference string, metadata map[string]any) (*domain.Movement, error)

	// Withdraw debits amount from the user's wallet.
	Withdraw(ctx context.Context, userID string, amount decimal.Decimal, reference string, metadata map[string]any) (*domain.Movement, error)

	// Transfer moves amount from one user's wallet to another's.
	Transfer(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal, reference string, metadata map[string]any) (*domain.TransferResult, error)
}

// WalletReaderSvc defines read-only wallet queries
type WalletReaderSvc interface {
	// GetBalance returns the current balance without taking locks.
	GetBalance(ctx context.Context, userID string) (*domain.BalanceView, error)

	// ListEntries returns a page of the user's ledger entries, newest first.
	ListEntries(ctx context.Context, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// WalletSvcFacade combines all wallet service interfaces
type WalletSvcFacade interface {
	WalletMovementSvc
	WalletReaderSvc
}
