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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTransferRepository struct {
	BaseRepository
}

func newPgxTransferRepository(pool *pgxpool.Pool) portsrepo.TransferRepositoryFacade {
	return &PgxTransferRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransferRepositoryFacade = (*PgxTransferRepository)(nil)

func (r *PgxTransferRepository) SaveTransfer(ctx context.Context, tx pgx.Tx, transfer domain.Transfer) error {
	m := mapping.ToModelTransfer(transfer)
	query := `
		INSERT INTO transfers (id, from_wallet_id, to_wallet_id, amount, status, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := tx.Exec(ctx, query,
		m.TransferID,
		m.FromWalletID,
		m.ToWalletID,
		m.Amount,
		m.Status,
		m.Reference,
		m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transfer reference %s", apperrors.ErrDuplicate, m.Reference)
		}
		return storageError("failed to insert transfer "+m.TransferID, err)
	}
	return nil
}

func (r *PgxTransferRepository) UpdateTransferStatus(ctx context.Context, tx pgx.Tx, transferID string, status domain.TransferStatus) error {
	ct, err := tx.Exec(ctx, `UPDATE transfers SET status = $2 WHERE id = $1;`, transferID, string(status))
	if err != nil {
		return storageError("failed to update status of transfer "+transferID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: transfer %s", apperrors.ErrNotFound, transferID)
	}
	return nil
}

func (r *PgxTransferRepository) FindTransferByReference(ctx context.Context, q portsrepo.Querier, reference string) (*domain.Transfer, error) {
	query := `
		SELECT id, from_wallet_id, to_wallet_id, amount, status, reference, created_at
		FROM transfers
		WHERE reference = $1;
	`
	var m models.Transfer
	err := r.querier(q).QueryRow(ctx, query, reference).Scan(
		&m.TransferID,
		&m.FromWalletID,
		&m.ToWalletID,
		&m.Amount,
		&m.Status,
		&m.Reference,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageError("failed to find transfer by reference", err)
	}
	t := mapping.ToDomainTransfer(m)
	return &t, nil
}
