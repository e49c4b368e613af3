package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/SscSPs/wallet_ledger/internal/apperrors"
	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/wallet_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// validateMovement re-checks the request even though handlers validate it too.
func validateMovement(amount decimal.Decimal, reference string) error {
	if !amount.IsPositive() || !domain.HasValidScale(amount) || !domain.WithinLimit(amount) {
		return apperrors.ErrInvalidAmount
	}
	n := utf8.RuneCountInString(reference)
	if strings.TrimSpace(reference) == "" || n > domain.MaxReferenceLength {
		return apperrors.ErrInvalidReference
	}
	return nil
}

// replayMovement rebuilds the result of an earlier fund or withdraw from its stored
// entry and a non-locking read of the wallet. The stored entry must describe the same
// request, otherwise the reference is being reused.
func (s *walletService) replayMovement(ctx context.Context, q portsrepo.Querier, op movementOp, userID string, amount decimal.Decimal, existing *domain.LedgerEntry) (*domain.Movement, error) {
	wallet, err := s.findWallet(ctx, q, userID, false, apperrors.ErrWalletNotFound)
	if err != nil {
		return nil, err
	}
	if existing.WalletID != wallet.WalletID || existing.Kind != op.kind || !existing.Amount.Equal(amount) {
		s.LogWarn(ctx, "Reference reused with a different payload",
			"reference", existing.Reference, "operation", op.name, "user_id", userID)
		return nil, apperrors.ErrReferenceConflict
	}

	s.metrics.IncReplay(op.name)
	s.LogInfo(ctx, "Replaying earlier result", "reference", existing.Reference, "operation", op.name)
	return &domain.Movement{Wallet: *wallet, Entry: *existing, Replayed: true}, nil
}

// replayTransfer rebuilds the result of an earlier transfer without taking locks.
func (s *walletService) replayTransfer(ctx context.Context, q portsrepo.Querier, fromUserID, toUserID string, amount decimal.Decimal, existing *domain.Transfer) (*domain.TransferResult, error) {
	from, err := s.findWallet(ctx, q, fromUserID, false, apperrors.ErrSourceWalletNotFound)
	if err != nil {
		return nil, err
	}
	to, err := s.findWallet(ctx, q, toUserID, false, apperrors.ErrDestinationWalletNotFound)
	if err != nil {
		return nil, err
	}
	if existing.FromWalletID != from.WalletID || existing.ToWalletID != to.WalletID || !existing.Amount.Equal(amount) {
		s.LogWarn(ctx, "Reference reused with a different payload",
			"reference", existing.Reference, "operation", opTransfer, "user_id", fromUserID)
		return nil, apperrors.ErrReferenceConflict
	}

	entries, err := s.entryRepo.FindEntriesByReferences(ctx, q, []string{existing.OutReference(), existing.InReference()})
	if err != nil {
		return nil, err
	}
	if len(entries) != 2 {
		return nil, fmt.Errorf("%w: transfer %s has %d ledger entries", apperrors.ErrStorage, existing.TransferID, len(entries))
	}

	s.metrics.IncReplay(opTransfer)
	s.LogInfo(ctx, "Replaying earlier result", "reference", existing.Reference, "operation", opTransfer)
	return &domain.TransferResult{
		Transfer:   *existing,
		FromWallet: *from,
		ToWallet:   *to,
		Entries:    entries,
		Replayed:   true,
	}, nil
}
