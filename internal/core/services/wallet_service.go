package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/wallet_ledger/internal/apperrors"
	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/wallet_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/wallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/wallet_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	opFund     = "fund"
	opWithdraw = "withdraw"
	opTransfer = "transfer"
)

// movementOp describes a single-wallet operation.
type movementOp struct {
	name  string
	kind  domain.EntryKind
	event domain.LedgerEventType
}

var (
	fundOp     = movementOp{name: opFund, kind: domain.EntryCredit, event: domain.EventWalletFunded}
	withdrawOp = movementOp{name: opWithdraw, kind: domain.EntryDebit, event: domain.EventWalletWithdrawn}
)

type walletService struct {
	BaseService
	txManager    portsrepo.TransactionManager
	walletRepo   portsrepo.WalletRepositoryFacade
	entryRepo    portsrepo.LedgerEntryRepositoryFacade
	transferRepo portsrepo.TransferRepositoryFacade

	cache   portssvc.BalanceCache
	events  portssvc.EventPublisher
	metrics portssvc.MetricsRecorder
	now     func() time.Time
	newID   func() string
}

// WalletOption configures optional collaborators of the wallet service.
type WalletOption func(*walletService)

// WithBalanceCache serves balance reads from cache and invalidates it after commits.
func WithBalanceCache(cache portssvc.BalanceCache) WalletOption {
	return func(s *walletService) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithEventPublisher publishes a ledger event after every committed movement.
func WithEventPublisher(publisher portssvc.EventPublisher) WalletOption {
	return func(s *walletService) {
		if publisher != nil {
			s.events = publisher
		}
	}
}

// WithMetrics records operation outcomes.
func WithMetrics(recorder portssvc.MetricsRecorder) WalletOption {
	return func(s *walletService) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) WalletOption {
	return func(s *walletService) { s.now = now }
}

// WithIDGenerator overrides how entry, transfer and event IDs are generated.
func WithIDGenerator(newID func() string) WalletOption {
	return func(s *walletService) { s.newID = newID }
}

// NewWalletService creates the money movement engine.
func NewWalletService(
	txManager portsrepo.TransactionManager,
	walletRepo portsrepo.WalletRepositoryFacade,
	entryRepo portsrepo.LedgerEntryRepositoryFacade,
	transferRepo portsrepo.TransferRepositoryFacade,
	options ...WalletOption,
) portssvc.WalletSvcFacade {
	svc := &walletService{
		txManager:    txManager,
		walletRepo:   walletRepo,
		entryRepo:    entryRepo,
		transferRepo: transferRepo,
		cache:        noopCache{},
		events:       noopPublisher{},
		metrics:      noopMetrics{},
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID:        uuid.NewString,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.WalletSvcFacade = (*walletService)(nil)

// Fund credits amount to the user's wallet.
func (s *walletService) Fund(ctx context.Context, userID string, amount decimal.Decimal, reference string, metadata map[string]any) (*domain.Movement, error) {
	return s.applyMovement(ctx, fundOp, userID, amount, reference, metadata)
}

// Withdraw debits amount from the user's wallet, refusing to go below zero.
func (s *walletService) Withdraw(ctx context.Context, userID string, amount decimal.Decimal, reference string, metadata map[string]any) (*domain.Movement, error) {
	return s.applyMovement(ctx, withdrawOp, userID, amount, reference, metadata)
}

func (s *walletService) applyMovement(ctx context.Context, op movementOp, userID string, amount decimal.Decimal, reference string, metadata map[string]any) (result *domain.Movement, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveOperation(op.name, outcomeOf(err, result != nil && result.Replayed), time.Since(start))
	}()

	if err := validateMovement(amount, reference); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin transaction", slog.String("operation", op.name))
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	existing, err := s.entryRepo.FindEntryByReference(ctx, tx, reference)
	if err == nil {
		return s.replayMovement(ctx, tx, op, userID, amount, existing)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	wallet, err := s.findWallet(ctx, tx, userID, true, apperrors.ErrWalletNotFound)
	if err != nil {
		return nil, err
	}

	var newBalance decimal.Decimal
	if op.kind == domain.EntryDebit {
		if !wallet.CanDebit(amount) {
			return nil, apperrors.ErrInsufficientFunds
		}
		newBalance = wallet.Balance.Sub(amount)
	} else {
		newBalance = wallet.Balance.Add(amount)
		if !domain.WithinLimit(newBalance) {
			return nil, apperrors.ErrBalanceLimitExceeded
		}
	}

	now := s.timestamp(wallet.UpdatedAt)
	entry := domain.LedgerEntry{
		EntryID:      s.newID(),
		WalletID:     wallet.WalletID,
		Kind:         op.kind,
		Amount:       amount,
		BalanceAfter: newBalance,
		Reference:    reference,
		Metadata:     metadata,
		CreatedAt:    now,
	}
	if err := s.entryRepo.SaveEntry(ctx, tx, entry); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// A concurrent request committed the same reference after our pre-check.
			_ = s.txManager.Rollback(ctx, tx)
			return s.replayLostMovement(ctx, op, userID, amount, reference)
		}
		return nil, err
	}
	if err := s.walletRepo.UpdateWalletBalance(ctx, tx, wallet.WalletID, newBalance, now); err != nil {
		return nil, err
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit movement", slog.String("operation", op.name), slog.String("reference", reference))
		return nil, err
	}

	wallet.Balance = newBalance
	wallet.UpdatedAt = now
	s.LogInfo(ctx, "Movement committed",
		slog.String("operation", op.name),
		slog.String("wallet_id", wallet.WalletID),
		slog.String("reference", reference),
		slog.String("amount", domain.FormatAmount(amount)))

	s.afterCommit(ctx, []string{userID}, domain.LedgerEvent{
		EventID:      s.newID(),
		Type:         op.event,
		UserID:       userID,
		WalletID:     wallet.WalletID,
		Reference:    reference,
		Amount:       amount,
		BalanceAfter: newBalance,
		OccurredAt:   now,
	})
	return &domain.Movement{Wallet: *wallet, Entry: entry}, nil
}

func (s *walletService) replayLostMovement(ctx context.Context, op movementOp, userID string, amount decimal.Decimal, reference string) (*domain.Movement, error) {
	existing, err := s.entryRepo.FindEntryByReference(ctx, nil, reference)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// The colliding writer rolled back, so the caller may simply retry.
			return nil, apperrors.NewAppError(http.StatusServiceUnavailable, "reference collided with an aborted request", apperrors.ErrStorage)
		}
		return nil, err
	}
	return s.replayMovement(ctx, nil, op, userID, amount, existing)
}

// GetBalance returns the user's balance. It never locks and may serve a cached snapshot.
func (s *walletService) GetBalance(ctx context.Context, userID string) (*domain.BalanceView, error) {
	wallet, ok, err := s.cache.GetWallet(ctx, userID)
	if err != nil {
		s.LogWarn(ctx, "Balance cache read failed", slog.String("user_id", userID), slog.String("error", err.Error()))
	}
	if err != nil || !ok {
		wallet, err = s.findWallet(ctx, nil, userID, false, apperrors.ErrWalletNotFound)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetWallet(ctx, *wallet); err != nil {
			s.LogWarn(ctx, "Balance cache write failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
	}

	return &domain.BalanceView{
		Balance:      wallet.Balance,
		CurrencyCode: wallet.CurrencyCode,
		Wallet:       *wallet,
	}, nil
}

// ListEntries returns a page of the user's ledger entries, newest first.
func (s *walletService) ListEntries(ctx context.Context, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	wallet, err := s.findWallet(ctx, nil, userID, false, apperrors.ErrWalletNotFound)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	entries, nextToken, err := s.entryRepo.ListEntriesByWallet(ctx, wallet.WalletID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger entries", slog.String("wallet_id", wallet.WalletID))
		return nil, err
	}

	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

// timestamp reads the clock at the precision Postgres stores, in UTC, so a fresh result
// and its later replay render identically. It stays strictly after every floor, which
// keeps a wallet's entries in creation order when clocks differ or step back.
func (s *walletService) timestamp(floors ...time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Microsecond)
	for _, floor := range floors {
		if !now.After(floor) {
			now = floor.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
		}
	}
	return now
}

// findWallet loads a wallet and translates a missing row into notFound.
func (s *walletService) findWallet(ctx context.Context, q portsrepo.Querier, userID string, lock bool, notFound error) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.FindWalletByUserID(ctx, q, userID, lock)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, notFound
		}
		s.LogError(ctx, err, "Failed to load wallet", slog.String("user_id", userID), slog.Bool("lock", lock))
		return nil, err
	}
	return wallet, nil
}

// afterCommit runs side effects that must never happen while row locks are held.
// Failures are logged only; the movement is already durable.
func (s *walletService) afterCommit(ctx context.Context, userIDs []string, events ...domain.LedgerEvent) {
	if err := s.cache.Invalidate(ctx, userIDs...); err != nil {
		s.LogWarn(ctx, "Balance cache invalidation failed", slog.Any("user_ids", userIDs), slog.String("error", err.Error()))
	}
	for _, event := range events {
		if err := s.events.Publish(ctx, event); err != nil {
			s.LogError(ctx, err, "Failed to publish ledger event",
				slog.String("event_type", string(event.Type)),
				slog.String("reference", event.Reference))
		}
	}
}

// outcomeOf maps an operation result onto a low-cardinality metrics label.
func outcomeOf(err error, replayed bool) string {
	switch {
	case err == nil && replayed:
		return "replayed"
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, apperrors.ErrInvalidAmount), errors.Is(err, apperrors.ErrInvalidReference), errors.Is(err, apperrors.ErrSelfTransfer),
		errors.Is(err, apperrors.ErrBalanceLimitExceeded):
		return "invalid"
	case errors.Is(err, apperrors.ErrWalletNotFound), errors.Is(err, apperrors.ErrSourceWalletNotFound), errors.Is(err, apperrors.ErrDestinationWalletNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrReferenceConflict):
		return "conflict"
	case errors.Is(err, apperrors.ErrStorage):
		return "storage_error"
	default:
		return "error"
	}
}
