package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/wallet_ledger/internal/apperrors"
	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/wallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/wallet_ledger/internal/core/services"
	"github.com/SscSPs/wallet_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type MockBalanceCache struct {
	mock.Mock
}

func (m *MockBalanceCache) GetWallet(ctx context.Context, userID string) (*domain.Wallet, bool, error) {
	args := m.Called(ctx, userID)
	var w *domain.Wallet
	if args.Get(0) != nil {
		w = args.Get(0).(*domain.Wallet)
	}
	return w, args.Bool(1), args.Error(2)
}

func (m *MockBalanceCache) SetWallet(ctx context.Context, wallet domain.Wallet) error {
	return m.Called(ctx, wallet).Error(0)
}

func (m *MockBalanceCache) Invalidate(ctx context.Context, userIDs ...string) error {
	return m.Called(ctx, userIDs).Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	return m.Called(ctx, event).Error(0)
}

// recordingMetrics keeps every observation for assertions.
type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
	replays  []string
}

func (r *recordingMetrics) ObserveOperation(operation, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, operation+":"+outcome)
}

func (r *recordingMetrics) IncReplay(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replays = append(r.replays, operation)
}

func sequentialIDs() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func newEngine(store *memStore, opts ...services.WalletOption) portssvc.WalletSvcFacade {
	base := []services.WalletOption{
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithIDGenerator(sequentialIDs()),
	}
	return services.NewWalletService(store, store, store, store, append(base, opts...)...)
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFund_CreditsWallet(t *testing.T) {
	store := newMemStore()
	store.seedWallet("alice", "100")
	svc := newEngine(store)

	got, err := svc.Fund(context.Background(), "alice", amt("500"), "fund-1", map[string]any{"channel": "card"})
	require.NoError(t, err)

	assert.Equal(t, "600.000000", domain.FormatAmount(got.Wallet.Balance))
	assert.Equal(t, domain.EntryCredit, got.Entry.Kind)
	assert.Equal(t, "600.000000", domain.FormatAmount(got.Entry.BalanceAfter))
	assert.Equal(t, "fund-1", got.Entry.Reference)
	assert.Equal(t, "card", got.Entry.Metadata["channel"])
	assert.False(t, got.Replayed)
	assert.Equal(t, "600.000000", store.balance("alice"))
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	store := newMemStore()
	store.seedWallet("alice", "500")
	svc := newEngine(store)

	got, err := svc.Withdraw(context.Background(), "alice", amt("1000"), "wd-1", nil)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.Nil(t, got)
	assert.Equal(t, "500.000000", store.balance("alice"))
	assert.Empty(t, store.committedEntries())
	assert.Zero(t, store.commits)
}

func TestWithdraw_FullBalance(t *testing.T) {
	store := newMemStore()
	store.seedWallet("alice", "100")
	svc := newEngine(store)

	got, err := svc.Withdraw(context.Background(), "alice", amt("100"), "wd-all", nil)
	require.NoError(t, err)
	assert.Equal(t, "0.000000", domain.FormatAmount(got.Wallet.Balance))
	assert.Equal(t, domain.EntryDebit, got.Entry.Kind)
	assert.Equal(t, "0.000000", store.balance("alice"))
}

func TestTransfer_MovesFundsBetweenWallets(t *testing.T) {
	store := newMemStore()
	a := store.seedWallet("user-a", "1000")
	b := store.seedWallet("user-b", "500")
	svc := newEngine(store)

	got, err := svc.Transfer(context.Background(), "user-a", "user-b", amt("300"), "tr-1", nil)
	require.NoError(t, err)

	assert.Equal(t, "700.000000", domain.FormatAmount(got.FromWallet.Balance))
	assert.Equal(t, "800.000000", domain.FormatAmount(got.ToWallet.Balance))
	assert.Equal(t, domain.TransferCompleted, got.Transfer.Status)
	assert.Equal(t, "tr-1", got.Transfer.Reference)
	assert.Equal(t, a.WalletID, got.Transfer.FromWalletID)
	assert.Equal(t, b.WalletID, got.Transfer.ToWalletID)

	require.Len(t, got.Entries, 2)
	out, in := got.Entries[0], got.Entries[1]
	assert.Equal(t, domain.EntryTransferOut, out.Kind)
	assert.Equal(t, domain.EntryTransferIn, in.Kind)
	assert.Equal(t, "tr-1:out", out.Reference)
	assert.Equal(t, "tr-1:in", in.Reference)
	assert.Equal(t, got.Transfer.TransferID, out.Metadata["transferId"])
	assert.Equal(t, got.Transfer.TransferID, in.Metadata["transferId"])

	// Value is conserved across the pair.
	before := amt("1000").Add(amt("500"))
	after := got.FromWallet.Balance.Add(got.ToWallet.Balance)
	assert.True(t, before.Equal(after))
	assert.Equal(t, "700.000000", store.balance("user-a"))
	assert.Equal(t, "800.000000", store.balance("user-b"))
}

func TestTransfer_SelfTransferTakesNoLock(t *testing.T) {
	store := newMemStore()
	store.seedWallet("alice", "100")
	svc := newEngine(store)

	_, err := svc.Transfer(context.Background(), "alice", "alice", amt("10"), "self-1", nil)
	assert.ErrorIs(t, err, apperrors.ErrSelfTransfer)
	assert.Zero(t, store.begins)
	assert.Empty(t, store.lockLog)
}

func TestFund_ReplayReturnsOriginalEntry(t *testing.T) {
	store := newMemStore()
	store.seedWallet("alice", "100")
	metrics := &recordingMetrics{}
	svc := newEngine(store, services.WithMetrics(metrics))
	ctx := context.Background()

	first, err := svc.Fund(ctx, "alice", amt("500"), "fund-1", nil)
	require.NoError(t, err)
	second, err := svc.Fund(ctx, "alice", amt("500.000000"), "fund-1", nil)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Entry, second.Entry)
	assert.Equal(t, "600.000000", domain.FormatAmount(second.Entry.BalanceAfter))
	assert.Equal(t, "600.000000", store.balance("alice"))
	assert.Len(t, store.committedEntries(), 1)
	assert.Equal(t, []string{"fund:success", "fund:replayed"}, metrics.outcomes)
	assert.Equal(t, []string{"fund"}, metrics.replays)
}

func TestMovement_ReplayWithDifferentPayloadConflicts(t *testing.T) {
	store := newMemStore()
	store.seedWallet("alice", "100")
	store.seedWallet("bob", "100")
	svc := newEngine(store)
	ctx := context.Background()

	_, err := svc.Fund(ctx, "alice", amt("50"), "ref-1", nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
	}{
		{"different amount", func() error { _, err := svc.Fund(ctx, "alice", amt("51"), "ref-1", nil); return err }},
		{"different wallet", func() error { _, err := svc.Fund(ctx, "bob", amt("50"), "ref-1", nil); return err }},
		{"different kind", func() error { _, err := svc.Withdraw(ctx, "alice", amt("50"), "ref-1", nil); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), apperrors.ErrReferenceConflict)
		})
	}
	assert.Equal(t, "150.000000", store.balance("alice"))
	assert.Equal(t, "100.000000", store.balance("bob"))
}

func TestTransfer_ReplayAndConflict(t *testing.T) {
	store := newMemStore()
	store.seedWallet("user-a", "1000")
	store.seedWallet("user-b", "500")
	store.seedWallet("user-c", "0")
	svc := newEngine(store)
	ctx := context.Background()

	first, err := svc.Transfer(ctx, "user-a", "user-b", amt("300"), "tr-1", nil)
	require.NoError(t, err)

	again, err := svc.Transfer(ctx, "user-a", "user-b", amt("300"), "tr-1", nil)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.Transfer, again.Transfer)
	assert.Equal(t, first.Entries, again.Entries)
	assert.Equal(t, "700.000000", store.balance("user-a"))
	assert.Equal(t, "800.000000", store.balance("user-b"))

	_, err = svc.Transfer(ctx, "user-a", "user-c", amt("300"), "tr-1", nil)
	assert.ErrorIs(t, err, apperrors.ErrReferenceConflict)
	_, err = svc.Transfer(ctx, "user-a", "user-b", amt("1"), "tr-1", nil)
	assert.ErrorIs(t, err, apperrors.ErrReferenceConflict)
	assert.Equal(t, "0.000000", store.balance("user-c"))
}

func TestTransfer_DerivedReferenceOwnedByFundConflicts(t *testing.T) {
	store := newMemStore()
	store.seedWallet("user-a", "1000")
	store.seedWallet("user-b", "0")
	svc := newEngine(store)
	ctx := context.Background()

	_, err := svc.Fund(ctx, "user-a", amt("1"), "tr-9:out", nil)
	require.NoError(t, err)

	_, err = svc.Transfer(ctx, "user-a", "user-b", amt("10"), "tr-9", nil)
	assert.ErrorIs(t, err, apperrors.ErrReferenceConflict)
	assert.Equal(t, "1001.000000", store.balance("user-a"))
	assert.Equal(t, "0.000000", store.balance("user-b"))
}

func TestTransfer_LockOrderIsDirectionIndependent(t *testing.T) {
	store := newMemStore()
	store.seedWallet("user-b", "100")
	store.seedWallet("user-a", "100")
	svc := newEngine(store)
	ctx := context.Background()

	_, err := svc.Transfer(ctx, "user-b", "user-a", amt("10"), "tr-ba", nil)
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, "user-a", "user-b", amt("10"), "tr-ab", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"user-a", "user-b", "user-a", "user-b"}, store.lockLog)
}

func TestTransfer_MissingWallets(t *testing.T) {
	tests := []struct {
		name    string
		seed    []string
		wantErr error
	}{
		{name: "source missing", seed: []string{"user-b"}, wantErr: apperrors.ErrSourceWalletNotFound},
		{name: "destination missing", seed: []string{"user-a"}, wantErr: apperrors.ErrDestinationWalletNotFound},
		{name: "both missing reports source", seed: nil, wantErr: apperrors.ErrSourceWalletNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			for _, id := range tt.seed {
				store.seedWallet(id, "100")
			}
			svc := newEngine(store)

			_, err := svc.Transfer(context.Background(), "user-a", "user-b", amt("10"), "tr-x", nil)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, store.commits)
		})
	}
}

func TestTransfer_InsufficientFundsLeavesBothWallets(t *testing.T) {
	store := newMemStore()
	store.seedWallet("user-a", "10")
	store.seedWallet("user-b", "10")
	svc := newEngine(store)

	_, err := svc.Transfer(context.Background(), "user-a", "user-b", amt("10.000001"), "tr-big", nil)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.Equal(t, "10.000000", store.balance("user-a"))
	assert.Equal(t, "10.000000", store.balance("user-b"))
	assert.Empty(t, store.committedEntries())
}

func TestMovement_RejectsInvalidInputBeforeTransaction(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		reference string
		wantErr   error
	}{
		{name: "zero amount", amount: "0", reference: "r", wantErr: apperrors.ErrInvalidAmount},
		{name: "negative amount", amount: "-5", reference: "r", wantErr: apperrors.ErrInvalidAmount},
		{name: "seven decimals", amount: "0.0000001", reference: "r", wantErr: apperrors.ErrInvalidAmount},
		{name: "fifteen integer digits", amount: "100000000000000", reference: "r", wantErr: apperrors.ErrInvalidAmount},
		{name: "just over the limit", amount: "100000000000000.000001", reference: "r", wantErr: apperrors.ErrInvalidAmount},
		{name: "empty reference", amount: "1", reference: "", wantErr: apperrors.ErrInvalidReference},
		{name: "blank reference", amount: "1", reference: "   ", wantErr: apperrors.ErrInvalidReference},
		{name: "reference too long", amount: "1", reference: strings.Repeat("x", 81), wantErr: apperrors.ErrInvalidReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.seedWallet("alice", "100")
			store.seedWallet("bob", "100")
			svc := newEngine(store)
			ctx := context.Background()

			_, err := svc.Fund(ctx, "alice", amt(tt.amount), tt.reference, nil)
			assert.ErrorIs(t, err, tt.wantErr)
			_, err = svc.Withdraw(ctx, "alice", amt(tt.amount), tt.reference, nil)
			assert.ErrorIs(t, err, tt.wantErr)
			_, err = svc.Transfer(ctx, "alice", "bob", amt(tt.amount), tt.reference, nil)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, store.begins)
		})
	}
}

func TestMovement_ReferenceAtMaximumLength(t *testing.T) {
	store := newMemStore()
	store.seedWallet("alice", "0")
	svc := newEngine(store)

	_, err := svc.Fund(context.Background(), "alice", amt("0.000001"), strings.Repeat("é", 80), nil)
	require.NoError(t, err)
	assert.Equal(t, "0.000001", store.balance("alice"))
}

func TestFund_UnknownWallet(t *testing.T) {
	svc := newEngine(newMemStore())
	_, err := svc.Fund(context.Background(), "ghost", amt("1"), "r-1", nil)
	assert.ErrorIs(t, err, apperrors.ErrWalletNotFound)
}

func TestFund_ConcurrentDuplicateReturnsWinnerResult(t *testing.T) {
	store := newMemStore()
	wallet := store.seedWallet("alice", "100")
	svc := newEngine(store)

	winner := domain.LedgerEntry{
		EntryID:      "winner",
		WalletID:     wallet.WalletID,
		Kind:         domain.EntryCredit,
		Amount:       amt("500"),
		BalanceAfter: amt("600"),
		Reference:    "fund-race",
		CreatedAt:    fixedNow,
	}
	store.beforeSaveEntry = func(domain.LedgerEntry) {
		store.beforeSaveEntry = nil
		store.commitEntry(winner)
	}

	got, err := svc.Fund(context.Background(), "alice", amt("500"), "fund-race", nil)
	require.NoError(t, err)
	assert.True(t, got.Replayed)
	assert.Equal(t, "winner", got.Entry.EntryID)
	assert.Zero(t, store.commits)
	assert.Len(t, store.committedEntries(), 1)
}

func TestBalanceEqualsSumOfMovements(t *testing.T) {
	store := newMemStore()
	store.seedWallet("alice", "10")
	svc := newEngine(store)
	ctx := context.Background()

	ops := []struct {
		credit bool
		amount string
	}{
		{true, "5.5"}, {false, "3.25"}, {true, "0.000001"}, {false, "100"}, {false, "12.250001"}, {true, "7"},
	}
	expected := amt("10")
	for i, op := range ops {
		ref := fmt.Sprintf("op-%d", i)
		var err error
		if op.credit {
			_, err = svc.Fund(ctx, "alice", amt(op.amount), ref, nil)
		} else {
			_, err = svc.Withdraw(ctx, "alice", amt(op.amount), ref, nil)
		}
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			continue
		}
		require.NoError(t, err)
		if op.credit {
			expected = expected.Add(amt(op.amount))
		} else {
			expected = expected.Sub(amt(op.amount))
		}
		assert.False(t, expected.IsNegative())
	}

	entries := store.committedEntries()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, domain.FormatAmount(expected), store.balance("alice"))
	assert.True(t, last.BalanceAfter.Equal(expected))
}

func TestFund_PostCommitSideEffects(t *testing.T) {
	store := newMemStore()
	store.seedWallet("alice", "0")
	cache := new(MockBalanceCache)
	publisher := new(MockEventPublisher)
	svc := newEngine(store, services.WithBalanceCache(cache), services.WithEventPublisher(publisher))

	cache.On("Invalidate", mock.Anything, []string{"alice"}).Return(nil).Once()
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.LedgerEvent) bool {
		return e.Type == domain.EventWalletFunded && e.Reference == "fund-ev" && e.BalanceAfter.Equal(amt("25"))
	})).Return(errors.New("broker down")).Once()

	got, err := svc.Fund(context.Background(), "alice", amt("25"), "fund-ev", nil)
	require.NoError(t, err, "publish failures must not fail a committed movement")
	assert.Equal(t, "25.000000", domain.FormatAmount(got.Wallet.Balance))

	cache.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestTransfer_PublishesAndInvalidatesBothUsers(t *testing.T) {
	store := newMemStore()
	store.seedWallet("user-a", "50")
	store.seedWallet("user-b", "0")
	cache := new(MockBalanceCache)
	publisher := new(MockEventPublisher)
	svc := newEngine(store, services.WithBalanceCache(cache), services.WithEventPublisher(publisher))

	cache.On("Invalidate", mock.Anything, []string{"user-a", "user-b"}).Return(nil).Once()
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.LedgerEvent) bool {
		return e.Type == domain.EventWalletTransferred && e.ToUserID == "user-b" && e.TransferID != ""
	})).Return(nil).Once()

	_, err := svc.Transfer(context.Background(), "user-a", "user-b", amt("20"), "tr-ev", nil)
	require.NoError(t, err)

	cache.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestMovement_ReplayPublishesNothing(t *testing.T) {
	store := newMemStore()
	store.seedWallet("alice", "0")
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()
	svc := newEngine(store, services.WithEventPublisher(publisher))
	ctx := context.Background()

	_, err := svc.Fund(ctx, "alice", amt("1"), "once", nil)
	require.NoError(t, err)
	_, err = svc.Fund(ctx, "alice", amt("1"), "once", nil)
	require.NoError(t, err)

	publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestGetBalance_UsesCache(t *testing.T) {
	store := newMemStore()
	wallet := store.seedWallet("alice", "42.5")
	cache := new(MockBalanceCache)
	svc := newEngine(store, services.WithBalanceCache(cache))
	ctx := context.Background()

	cache.On("GetWallet", mock.Anything, "alice").Return(nil, false, nil).Once()
	cache.On("SetWallet", mock.Anything, wallet).Return(nil).Once()
	view, err := svc.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "42.500000", domain.FormatAmount(view.Balance))
	assert.Equal(t, "NGN", view.CurrencyCode)

	cached := wallet
	cached.Balance = amt("1")
	cache.On("GetWallet", mock.Anything, "alice").Return(&cached, true, nil).Once()
	view, err = svc.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "1.000000", domain.FormatAmount(view.Balance))

	cache.AssertExpectations(t)
}

func TestGetBalance_CacheErrorFallsBackToStore(t *testing.T) {
	store := newMemStore()
	store.seedWallet("alice", "7")
	cache := new(MockBalanceCache)
	cache.On("GetWallet", mock.Anything, "alice").Return(nil, false, errors.New("redis down"))
	cache.On("SetWallet", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	svc := newEngine(store, services.WithBalanceCache(cache))

	view, err := svc.GetBalance(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "7.000000", domain.FormatAmount(view.Balance))
	assert.Empty(t, store.lockLog)
}

func TestGetBalance_UnknownWallet(t *testing.T) {
	svc := newEngine(newMemStore())
	_, err := svc.GetBalance(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrWalletNotFound)
}

func TestListEntries_NewestFirstWithToken(t *testing.T) {
	store := newMemStore()
	store.seedWallet("alice", "0")
	svc := newEngine(store)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := svc.Fund(ctx, "alice", amt("1"), fmt.Sprintf("f-%d", i), nil)
		require.NoError(t, err)
	}

	page, err := svc.ListEntries(ctx, "alice", dto.ListEntriesParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, "f-3", page.Entries[0].Reference)
	assert.Equal(t, "3.000000", page.Entries[0].BalanceAfter)
	assert.NotNil(t, page.NextToken)
}

func TestMovement_ResultingBalanceAboveLimitIsRejected(t *testing.T) {
	store := newMemStore()
	store.seedWallet("rich", "99999999999999")
	store.seedWallet("user-a", "10")
	metrics := &recordingMetrics{}
	svc := newEngine(store, services.WithMetrics(metrics))
	ctx := context.Background()

	_, err := svc.Fund(ctx, "rich", amt("1"), "fund-over", nil)
	assert.ErrorIs(t, err, apperrors.ErrBalanceLimitExceeded)

	_, err = svc.Transfer(ctx, "user-a", "rich", amt("1"), "tr-over", nil)
	assert.ErrorIs(t, err, apperrors.ErrBalanceLimitExceeded)

	// The largest balance that still fits is accepted.
	got, err := svc.Fund(ctx, "rich", amt("0.999999"), "fund-max", nil)
	require.NoError(t, err)
	assert.Equal(t, "99999999999999.999999", domain.FormatAmount(got.Wallet.Balance))

	assert.Equal(t, "10.000000", store.balance("user-a"))
	assert.Len(t, store.committedEntries(), 1)
	assert.Equal(t, []string{"fund:invalid", "transfer:invalid", "fund:success"}, metrics.outcomes)
}

func TestReplay_RendersIdenticallyToFreshResult(t *testing.T) {
	store := newMemStore()
	store.seedWallet("user-a", "1000")
	store.seedWallet("user-b", "0")
	clock := time.Date(2026, 10, 19, 12, 0, 0, 123456789, time.FixedZone("WAT", 60*60))
	svc := newEngine(store, services.WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	fresh, err := svc.Fund(ctx, "user-a", amt("500"), "fund-ns", map[string]any{"channel": "card"})
	require.NoError(t, err)
	replayed, err := svc.Fund(ctx, "user-a", amt("500"), "fund-ns", map[string]any{"channel": "card"})
	require.NoError(t, err)
	require.True(t, replayed.Replayed)

	freshJSON, err := json.Marshal(dto.ToMovementResponse(fresh))
	require.NoError(t, err)
	replayedJSON, err := json.Marshal(dto.ToMovementResponse(replayed))
	require.NoError(t, err)
	assert.Equal(t, string(freshJSON), string(replayedJSON))
	assert.Contains(t, string(freshJSON), `"createdAt":"2026-10-19T11:00:00.123456Z"`)

	freshTransfer, err := svc.Transfer(ctx, "user-a", "user-b", amt("300"), "tr-ns", nil)
	require.NoError(t, err)
	replayedTransfer, err := svc.Transfer(ctx, "user-a", "user-b", amt("300"), "tr-ns", nil)
	require.NoError(t, err)
	require.True(t, replayedTransfer.Replayed)

	freshJSON, err = json.Marshal(dto.ToTransferResponse(freshTransfer))
	require.NoError(t, err)
	replayedJSON, err = json.Marshal(dto.ToTransferResponse(replayedTransfer))
	require.NoError(t, err)
	assert.Equal(t, string(freshJSON), string(replayedJSON))
}

func TestMovement_EntriesStayOrderedWhenClockStepsBack(t *testing.T) {
	store := newMemStore()
	store.seedWallet("user-a", "100")
	store.seedWallet("user-b", "100")
	clock := fixedNow
	svc := newEngine(store, services.WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	first, err := svc.Fund(ctx, "user-a", amt("1"), "f-1", nil)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, first.Entry.CreatedAt)

	clock = fixedNow.Add(-time.Hour)
	second, err := svc.Withdraw(ctx, "user-a", amt("1"), "w-1", nil)
	require.NoError(t, err)
	assert.True(t, second.Entry.CreatedAt.After(first.Entry.CreatedAt))

	// Same instant again still moves forward.
	third, err := svc.Fund(ctx, "user-a", amt("1"), "f-2", nil)
	require.NoError(t, err)
	assert.True(t, third.Entry.CreatedAt.After(second.Entry.CreatedAt))

	transfer, err := svc.Transfer(ctx, "user-b", "user-a", amt("1"), "tr-1", nil)
	require.NoError(t, err)
	for _, entry := range transfer.Entries {
		assert.True(t, entry.CreatedAt.After(third.Entry.CreatedAt), entry.Reference)
	}
	assert.True(t, transfer.FromWallet.UpdatedAt.Equal(transfer.Transfer.CreatedAt))
}
