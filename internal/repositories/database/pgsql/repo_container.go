package pgsql

import (
	portsrepo "github.com/SscSPs/wallet_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:    &BaseRepository{Pool: dbPool},
		UserRepo:     newPgxUserRepository(dbPool),
		WalletRepo:   newPgxWalletRepository(dbPool),
		EntryRepo:    newPgxLedgerEntryRepository(dbPool),
		TransferRepo: newPgxTransferRepository(dbPool),
	}
}
