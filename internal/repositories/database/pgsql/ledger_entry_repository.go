package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/wallet_ledger/internal/apperrors"
	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/wallet_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/wallet_ledger/internal/models"
	"github.com/SscSPs/wallet_ledger/internal/utils/mapping"
	"github.com/SscSPs/wallet_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLedgerEntryRepository struct {
	BaseRepository
}

func newPgxLedgerEntryRepository(pool *pgxpool.Pool) portsrepo.LedgerEntryRepositoryFacade {
	return &PgxLedgerEntryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerEntryRepositoryFacade = (*PgxLedgerEntryRepository)(nil)

const entryColumns = `id, wallet_id, type, amount, balance_after, reference, metadata, created_at`

func scanEntry(row pgx.Row) (domain.LedgerEntry, error) {
	var m models.Transaction
	if err := row.Scan(
		&m.TransactionID,
		&m.WalletID,
		&m.Type,
		&m.Amount,
		&m.BalanceAfter,
		&m.Reference,
		&m.Metadata,
		&m.CreatedAt,
	); err != nil {
		return domain.LedgerEntry{}, err
	}
	return mapping.ToDomainLedgerEntry(m)
}

func (r *PgxLedgerEntryRepository) SaveEntry(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error {
	m, err := mapping.ToModelTransaction(entry)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO transactions (id, wallet_id, type, amount, balance_after, reference, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, query,
		m.TransactionID,
		m.WalletID,
		m.Type,
		m.Amount,
		m.BalanceAfter,
		m.Reference,
		m.Metadata,
		m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reference %s", apperrors.ErrDuplicate, m.Reference)
		}
		return storageError("failed to insert ledger entry "+m.TransactionID, err)
	}
	return nil
}

func (r *PgxLedgerEntryRepository) FindEntryByReference(ctx context.Context, q portsrepo.Querier, reference string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM transactions WHERE reference = $1;`
	entry, err := scanEntry(r.querier(q).QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageError("failed to find ledger entry by reference", err)
	}
	return &entry, nil
}

func (r *PgxLedgerEntryRepository) FindEntriesByReferences(ctx context.Context, q portsrepo.Querier, references []string) ([]domain.LedgerEntry, error) {
	if len(references) == 0 {
		return []domain.LedgerEntry{}, nil
	}
	// Entries of one transfer share created_at, so outflows sort first to keep out before in.
	query := `
		SELECT ` + entryColumns + `
		FROM transactions
		WHERE reference = ANY($1)
		ORDER BY created_at ASC, CASE type WHEN 'transfer-out' THEN 0 WHEN 'debit' THEN 0 ELSE 1 END ASC;
	`
	rows, err := r.querier(q).Query(ctx, query, references)
	if err != nil {
		return nil, storageError("failed to query ledger entries by reference", err)
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, storageError("failed to scan ledger entry row", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating ledger entry rows", err)
	}
	return entries, nil
}

// ListEntriesByWallet pages newest first on (created_at, id).
func (r *PgxLedgerEntryRepository) ListEntriesByWallet(ctx context.Context, walletID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, decodeErr)
		}
		query := `
			SELECT ` + entryColumns + `
			FROM transactions
			WHERE wallet_id = $1 AND (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC
			LIMIT $4;
		`
		rows, err = r.Pool.Query(ctx, query, walletID, lastCreatedAt, lastID, fetchLimit)
	} else {
		query := `
			SELECT ` + entryColumns + `
			FROM transactions
			WHERE wallet_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2;
		`
		rows, err = r.Pool.Query(ctx, query, walletID, fetchLimit)
	}
	if err != nil {
		return nil, nil, storageError("failed to list ledger entries for wallet "+walletID, err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0, fetchLimit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, nil, storageError("failed to scan ledger entry row", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, storageError("error iterating ledger entry rows", err)
	}

	var next *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.EntryID)
		next = &token
		entries = entries[:limit]
	}
	return entries, next, nil
}
