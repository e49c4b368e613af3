package services

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/SscSPs/wallet_ledger/internal/apperrors"
	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Transfer moves amount between two wallets in one transaction. Both wallet rows are
// locked in lockOrder before any balance is read for the decision.
func (s *walletService) Transfer(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal, reference string, metadata map[string]any) (result *domain.TransferResult, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveOperation(opTransfer, outcomeOf(err, result != nil && result.Replayed), time.Since(start))
	}()

	if err := validateMovement(amount, reference); err != nil {
		return nil, err
	}
	if fromUserID == toUserID {
		return nil, apperrors.ErrSelfTransfer
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin transaction", slog.String("operation", opTransfer))
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	existing, err := s.transferRepo.FindTransferByReference(ctx, tx, reference)
	if err == nil {
		return s.replayTransfer(ctx, tx, fromUserID, toUserID, amount, existing)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	first, second := lockOrder(fromUserID, toUserID)
	locked := make(map[string]*domain.Wallet, 2)
	for _, userID := range []string{first, second} {
		wallet, err := s.walletRepo.FindWalletByUserID(ctx, tx, userID, true)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			s.LogError(ctx, err, "Failed to lock wallet", slog.String("user_id", userID))
			return nil, err
		}
		locked[userID] = wallet
	}

	source, destination := locked[fromUserID], locked[toUserID]
	if source == nil {
		return nil, apperrors.ErrSourceWalletNotFound
	}
	if destination == nil {
		return nil, apperrors.ErrDestinationWalletNotFound
	}
	if !source.CanDebit(amount) {
		return nil, apperrors.ErrInsufficientFunds
	}

	sourceBalance := source.Balance.Sub(amount)
	destinationBalance := destination.Balance.Add(amount)
	if !domain.WithinLimit(destinationBalance) {
		return nil, apperrors.ErrBalanceLimitExceeded
	}

	now := s.timestamp(source.UpdatedAt, destination.UpdatedAt)

	transfer := domain.Transfer{
		TransferID:   s.newID(),
		FromWalletID: source.WalletID,
		ToWalletID:   destination.WalletID,
		Amount:       amount,
		Status:       domain.TransferPending,
		Reference:    reference,
		CreatedAt:    now,
	}
	if err := s.transferRepo.SaveTransfer(ctx, tx, transfer); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			_ = s.txManager.Rollback(ctx, tx)
			return s.replayLostTransfer(ctx, fromUserID, toUserID, amount, reference)
		}
		return nil, err
	}

	entryMetadata := make(map[string]any, len(metadata)+1)
	maps.Copy(entryMetadata, metadata)
	entryMetadata["transferId"] = transfer.TransferID

	entries := []domain.LedgerEntry{
		{
			EntryID:      s.newID(),
			WalletID:     source.WalletID,
			Kind:         domain.EntryTransferOut,
			Amount:       amount,
			BalanceAfter: sourceBalance,
			Reference:    transfer.OutReference(),
			Metadata:     entryMetadata,
			CreatedAt:    now,
		},
		{
			EntryID:      s.newID(),
			WalletID:     destination.WalletID,
			Kind:         domain.EntryTransferIn,
			Amount:       amount,
			BalanceAfter: destinationBalance,
			Reference:    transfer.InReference(),
			Metadata:     entryMetadata,
			CreatedAt:    now,
		},
	}
	for _, entry := range entries {
		if err := s.entryRepo.SaveEntry(ctx, tx, entry); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				// A fund or withdraw already owns this derived reference.
				return nil, apperrors.ErrReferenceConflict
			}
			return nil, err
		}
	}

	if err := s.walletRepo.UpdateWalletBalance(ctx, tx, source.WalletID, sourceBalance, now); err != nil {
		return nil, err
	}
	if err := s.walletRepo.UpdateWalletBalance(ctx, tx, destination.WalletID, destinationBalance, now); err != nil {
		return nil, err
	}
	if err := s.transferRepo.UpdateTransferStatus(ctx, tx, transfer.TransferID, domain.TransferCompleted); err != nil {
		return nil, err
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit transfer", slog.String("reference", reference))
		return nil, err
	}

	transfer.Status = domain.TransferCompleted
	source.Balance, source.UpdatedAt = sourceBalance, now
	destination.Balance, destination.UpdatedAt = destinationBalance, now

	s.LogInfo(ctx, "Transfer committed",
		slog.String("transfer_id", transfer.TransferID),
		slog.String("from_wallet_id", source.WalletID),
		slog.String("to_wallet_id", destination.WalletID),
		slog.String("reference", reference),
		slog.String("amount", domain.FormatAmount(amount)))

	s.afterCommit(ctx, []string{fromUserID, toUserID}, domain.LedgerEvent{
		EventID:      s.newID(),
		Type:         domain.EventWalletTransferred,
		UserID:       fromUserID,
		WalletID:     source.WalletID,
		Reference:    reference,
		Amount:       amount,
		BalanceAfter: sourceBalance,
		TransferID:   transfer.TransferID,
		ToUserID:     toUserID,
		OccurredAt:   now,
	})

	return &domain.TransferResult{
		Transfer:   transfer,
		FromWallet: *source,
		ToWallet:   *destination,
		Entries:    entries,
	}, nil
}

func (s *walletService) replayLostTransfer(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal, reference string) (*domain.TransferResult, error) {
	existing, err := s.transferRepo.FindTransferByReference(ctx, nil, reference)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewAppError(http.StatusServiceUnavailable, "reference collided with an aborted request", apperrors.ErrStorage)
		}
		return nil, err
	}
	return s.replayTransfer(ctx, nil, fromUserID, toUserID, amount, existing)
}
