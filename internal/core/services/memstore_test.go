package services_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/SscSPs/wallet_ledger/internal/apperrors"
	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/wallet_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memState is one consistent copy of the ledger tables.
type memState struct {
	users     map[string]domain.User
	wallets   map[string]domain.Wallet // keyed by user ID
	entries   []domain.LedgerEntry
	transfers map[string]domain.Transfer // keyed by reference
}

func newMemState() memState {
	return memState{
		users:     map[string]domain.User{},
		wallets:   map[string]domain.Wallet{},
		transfers: map[string]domain.Transfer{},
	}
}

func (s memState) clone() memState {
	c := newMemState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	c.entries = append([]domain.LedgerEntry(nil), s.entries...)
	return c
}

func (s *memState) entryByReference(reference string) (domain.LedgerEntry, bool) {
	for _, e := range s.entries {
		if e.Reference == reference {
			return e, true
		}
	}
	return domain.LedgerEntry{}, false
}

// memTx works on a private copy that replaces the committed state on Commit.
// Only the methods the repositories need are implemented; the embedded interface
// panics on anything else.
type memTx struct {
	pgx.Tx
	state memState
}

// memStore implements the transaction manager and every repository on top of
// memState. Unique references are checked against both the transaction's copy and
// the committed state, the way a unique index sees rows committed by others.
type memStore struct {
	mu              sync.Mutex
	state           memState
	begins          int
	commits         int
	lockLog         []string
	beforeSaveEntry func(entry domain.LedgerEntry)
}

func newMemStore() *memStore {
	return &memStore{state: newMemState()}
}

var (
	_ portsrepo.TransactionManager          = (*memStore)(nil)
	_ portsrepo.UserRepositoryFacade        = (*memStore)(nil)
	_ portsrepo.WalletRepositoryFacade      = (*memStore)(nil)
	_ portsrepo.LedgerEntryRepositoryFacade = (*memStore)(nil)
	_ portsrepo.TransferRepositoryFacade    = (*memStore)(nil)
)

// stored mimics a timestamptz round trip: microsecond precision, read back in UTC.
func stored(t time.Time) time.Time {
	return t.Truncate(time.Microsecond).UTC()
}

func (m *memStore) seedWallet(userID, balance string) domain.Wallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := domain.Wallet{
		WalletID:     "wallet-" + userID,
		UserID:       userID,
		Balance:      decimal.RequireFromString(balance),
		CurrencyCode: "NGN",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	m.state.wallets[userID] = w
	return w
}

func (m *memStore) balance(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.FormatAmount(m.state.wallets[userID].Balance)
}

func (m *memStore) committedEntries() []domain.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.LedgerEntry(nil), m.state.entries...)
}

// commitEntry writes an entry as if another request had committed it.
func (m *memStore) commitEntry(entry domain.LedgerEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.entries = append(m.state.entries, entry)
}

func (m *memStore) view(q portsrepo.Querier) *memState {
	if tx, ok := q.(*memTx); ok {
		return &tx.state
	}
	return &m.state
}

// TransactionManager

func (m *memStore) Begin(context.Context) (pgx.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.begins++
	return &memTx{state: m.state.clone()}, nil
}

func (m *memStore) Commit(_ context.Context, tx pgx.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt := tx.(*memTx)
	// Rows committed by others while this transaction ran survive the commit.
	for _, e := range m.state.entries {
		if _, ok := mt.state.entryByReference(e.Reference); !ok {
			mt.state.entries = append(mt.state.entries, e)
		}
	}
	m.state = mt.state
	m.commits++
	return nil
}

func (m *memStore) Rollback(context.Context, pgx.Tx) error { return nil }

// Users

func (m *memStore) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.state.users[userID]; ok {
		return &u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *memStore) FindUserByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.state.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memStore) SaveUser(_ context.Context, q portsrepo.Querier, user domain.User) error {
	s := m.view(q)
	for _, u := range s.users {
		if u.Username == user.Username {
			return apperrors.ErrDuplicate
		}
	}
	s.users[user.UserID] = user
	return nil
}

// Wallets

func (m *memStore) FindWalletByUserID(_ context.Context, q portsrepo.Querier, userID string, lock bool) (*domain.Wallet, error) {
	if lock {
		if _, ok := q.(*memTx); !ok {
			return nil, errors.New("lock requested outside a transaction")
		}
		m.mu.Lock()
		m.lockLog = append(m.lockLog, userID)
		m.mu.Unlock()
	}
	w, ok := m.view(q).wallets[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &w, nil
}

func (m *memStore) SaveWallet(_ context.Context, q portsrepo.Querier, wallet domain.Wallet) error {
	m.view(q).wallets[wallet.UserID] = wallet
	return nil
}

func (m *memStore) UpdateWalletBalance(_ context.Context, tx pgx.Tx, walletID string, balance decimal.Decimal, now time.Time) error {
	s := m.view(tx)
	for userID, w := range s.wallets {
		if w.WalletID == walletID {
			w.Balance = balance
			w.UpdatedAt = stored(now)
			s.wallets[userID] = w
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// Ledger entries

func (m *memStore) FindEntryByReference(_ context.Context, q portsrepo.Querier, reference string) (*domain.LedgerEntry, error) {
	if e, ok := m.view(q).entryByReference(reference); ok {
		return &e, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *memStore) FindEntriesByReferences(_ context.Context, q portsrepo.Querier, references []string) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	for _, e := range m.view(q).entries {
		for _, r := range references {
			if e.Reference == r {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (m *memStore) ListEntriesByWallet(_ context.Context, walletID string, limit int, _ *string) ([]domain.LedgerEntry, *string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range m.state.entries {
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	slices.Reverse(out)
	if len(out) > limit {
		token := out[limit-1].EntryID
		return out[:limit], &token, nil
	}
	return out, nil, nil
}

func (m *memStore) SaveEntry(_ context.Context, tx pgx.Tx, entry domain.LedgerEntry) error {
	if m.beforeSaveEntry != nil {
		m.beforeSaveEntry(entry)
	}
	s := m.view(tx)
	if _, ok := s.entryByReference(entry.Reference); ok {
		return apperrors.ErrDuplicate
	}
	m.mu.Lock()
	_, committed := m.state.entryByReference(entry.Reference)
	m.mu.Unlock()
	if committed {
		return apperrors.ErrDuplicate
	}
	entry.CreatedAt = stored(entry.CreatedAt)
	s.entries = append(s.entries, entry)
	return nil
}

// Transfers

func (m *memStore) FindTransferByReference(_ context.Context, q portsrepo.Querier, reference string) (*domain.Transfer, error) {
	if t, ok := m.view(q).transfers[reference]; ok {
		return &t, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *memStore) SaveTransfer(_ context.Context, tx pgx.Tx, transfer domain.Transfer) error {
	s := m.view(tx)
	if _, ok := s.transfers[transfer.Reference]; ok {
		return apperrors.ErrDuplicate
	}
	transfer.CreatedAt = stored(transfer.CreatedAt)
	s.transfers[transfer.Reference] = transfer
	return nil
}

func (m *memStore) UpdateTransferStatus(_ context.Context, tx pgx.Tx, transferID string, status domain.TransferStatus) error {
	s := m.view(tx)
	for ref, t := range s.transfers {
		if t.TransferID == transferID {
			t.Status = status
			s.transfers[ref] = t
			return nil
		}
	}
	return apperrors.ErrNotFound
}
