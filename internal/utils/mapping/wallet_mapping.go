package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	"github.com/SscSPs/wallet_ledger/internal/models"
)

// ToModelWallet converts a domain Wallet to a model Wallet
func ToModelWallet(d domain.Wallet) models.Wallet {
	return models.Wallet{
		WalletID:  d.WalletID,
		UserID:    d.UserID,
		Balance:   d.Balance,
		Currency:  d.CurrencyCode,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// ToDomainWallet converts a model Wallet to a domain Wallet.
// pgx scans timestamptz in the local zone; domain times are UTC.
func ToDomainWallet(m models.Wallet) domain.Wallet {
	return domain.Wallet{
		WalletID:     m.WalletID,
		UserID:       m.UserID,
		Balance:      m.Balance,
		CurrencyCode: m.Currency,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// ToModelTransaction converts a domain LedgerEntry to its transactions row.
func ToModelTransaction(d domain.LedgerEntry) (models.Transaction, error) {
	var metadata []byte
	if len(d.Metadata) > 0 {
		b, err := json.Marshal(d.Metadata)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("failed to encode entry metadata: %w", err)
		}
		metadata = b
	}
	return models.Transaction{
		TransactionID: d.EntryID,
		WalletID:      d.WalletID,
		Type:          string(d.Kind),
		Amount:        d.Amount,
		BalanceAfter:  d.BalanceAfter,
		Reference:     d.Reference,
		Metadata:      metadata,
		CreatedAt:     d.CreatedAt,
	}, nil
}

// ToDomainLedgerEntry converts a transactions row to a domain LedgerEntry.
func ToDomainLedgerEntry(m models.Transaction) (domain.LedgerEntry, error) {
	var metadata map[string]any
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
			return domain.LedgerEntry{}, fmt.Errorf("failed to decode metadata of entry %s: %w", m.TransactionID, err)
		}
	}
	return domain.LedgerEntry{
		EntryID:      m.TransactionID,
		WalletID:     m.WalletID,
		Kind:         domain.EntryKind(m.Type),
		Amount:       m.Amount,
		BalanceAfter: m.BalanceAfter,
		Reference:    m.Reference,
		Metadata:     metadata,
		CreatedAt:    m.CreatedAt.UTC(),
	}, nil
}

// ToModelTransfer converts a domain Transfer to a model Transfer
func ToModelTransfer(d domain.Transfer) models.Transfer {
	return models.Transfer{
		TransferID:   d.TransferID,
		FromWalletID: d.FromWalletID,
		ToWalletID:   d.ToWalletID,
		Amount:       d.Amount,
		Status:       string(d.Status),
		Reference:    d.Reference,
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainTransfer converts a model Transfer to a domain Transfer
func ToDomainTransfer(m models.Transfer) domain.Transfer {
	return domain.Transfer{
		TransferID:   m.TransferID,
		FromWalletID: m.FromWalletID,
		ToWalletID:   m.ToWalletID,
		Amount:       m.Amount,
		Status:       domain.TransferStatus(m.Status),
		Reference:    m.Reference,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}
