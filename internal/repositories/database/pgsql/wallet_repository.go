package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/wallet_ledger/internal/apperrors"
	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/wallet_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/wallet_ledger/internal/models"
	"github.com/SscSPs/wallet_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxWalletRepository struct {
	BaseRepository
}

func newPgxWalletRepository(pool *pgxpool.Pool) portsrepo.WalletRepositoryFacade {
	return &PgxWalletRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WalletRepositoryFacade = (*PgxWalletRepository)(nil)

// errLockOutsideTx is returned when a locking read is attempted on the pool.
var errLockOutsideTx = errors.New("locking wallet read requires a transaction")

func (r *PgxWalletRepository) FindWalletByUserID(ctx context.Context, q portsrepo.Querier, userID string, lock bool) (*domain.Wallet, error) {
	query := `
		SELECT id, user_id, balance, currency, created_at, updated_at
		FROM wallets
		WHERE user_id = $1`
	if lock {
		if _, ok := q.(pgx.Tx); !ok {
			return nil, errLockOutsideTx
		}
		query += `
		FOR UPDATE`
	}

	var m models.Wallet
	err := r.querier(q).QueryRow(ctx, query, userID).Scan(
		&m.WalletID,
		&m.UserID,
		&m.Balance,
		&m.Currency,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageError("failed to find wallet for user "+userID, err)
	}
	w := mapping.ToDomainWallet(m)
	return &w, nil
}

func (r *PgxWalletRepository) SaveWallet(ctx context.Context, q portsrepo.Querier, wallet domain.Wallet) error {
	m := mapping.ToModelWallet(wallet)
	query := `
		INSERT INTO wallets (id, user_id, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.querier(q).Exec(ctx, query,
		m.WalletID,
		m.UserID,
		m.Balance,
		m.Currency,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s already has a wallet", apperrors.ErrDuplicate, m.UserID)
		}
		return storageError("failed to save wallet", err)
	}
	return nil
}

func (r *PgxWalletRepository) UpdateWalletBalance(ctx context.Context, tx pgx.Tx, walletID string, balance decimal.Decimal, now time.Time) error {
	query := `
		UPDATE wallets
		SET balance = $2, updated_at = $3
		WHERE id = $1;
	`
	ct, err := tx.Exec(ctx, query, walletID, balance, now)
	if err != nil {
		return storageError("failed to update balance of wallet "+walletID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: wallet %s not found during balance update", apperrors.ErrNotFound, walletID)
	}
	return nil
}
