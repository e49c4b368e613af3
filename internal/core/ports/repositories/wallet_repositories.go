package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletReader defines read operations for wallets
type WalletReader interface {
	// FindWalletByUserID returns the wallet owned by userID or apperrors.ErrNotFound.
	// With lock set the row is selected FOR UPDATE and q must be a pgx.Tx; the lock is
	// held until that transaction ends. Without lock it is a snapshot read.
	FindWalletByUserID(ctx context.Context, q Querier, userID string, lock bool) (*domain.Wallet, error)
}

// WalletWriter defines write operations for wallets
type WalletWriter interface {
	// SaveWallet persists a new wallet.
	SaveWallet(ctx context.Context, q Querier, wallet domain.Wallet) error

	// UpdateWalletBalance sets the balance of a wallet locked by tx.
	UpdateWalletBalance(ctx context.Context, tx pgx.Tx, walletID string, balance decimal.Decimal, now time.Time) error
}

// WalletRepositoryFacade combines all wallet repository interfaces
type WalletRepositoryFacade interface {
	WalletReader
	WalletWriter
}

// LedgerEntryReader defines read operations for ledger entries
type LedgerEntryReader interface {
	// FindEntryByReference returns the entry stored under reference or apperrors.ErrNotFound.
	FindEntryByReference(ctx context.Context, q Querier, reference string) (*domain.LedgerEntry, error)

	// FindEntriesByReferences returns the entries stored under any of references,
	// oldest first.
	FindEntriesByReferences(ctx context.Context, q Querier, references []string) ([]domain.LedgerEntry, error)

	// ListEntriesByWallet returns a page of a wallet's entries, newest first, and the
	// token for the next page when one exists.
	ListEntriesByWallet(ctx context.Context, walletID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

// LedgerEntryWriter defines write operations for ledger entries
type LedgerEntryWriter interface {
	// SaveEntry appends an entry. A reference collision returns apperrors.ErrDuplicate.
	SaveEntry(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error
}

// LedgerEntryRepositoryFacade combines all ledger entry repository interfaces
type LedgerEntryRepositoryFacade interface {
	LedgerEntryReader
	LedgerEntryWriter
}

// TransferReader defines read operations for transfers
type TransferReader interface {
	// FindTransferByReference returns the transfer stored under reference or apperrors.ErrNotFound.
	FindTransferByReference(ctx context.Context, q Querier, reference string) (*domain.Transfer, error)
}

// TransferWriter defines write operations for transfers
type TransferWriter interface {
	// SaveTransfer inserts a transfer. A reference collision returns apperrors.ErrDuplicate.
	SaveTransfer(ctx context.Context, tx pgx.Tx, transfer domain.Transfer) error

	// UpdateTransferStatus moves a transfer to status.
	UpdateTransferStatus(ctx context.Context, tx pgx.Tx, transferID string, status domain.TransferStatus) error
}

// TransferRepositoryFacade combines all transfer repository interfaces
type TransferRepositoryFacade interface {
	TransferReader
	TransferWriter
}
