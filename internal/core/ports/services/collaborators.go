package services

import (
	"context"
	"time"

	"github.com/SscSPs/wallet_ledger/internal/core/domain"
)

// BalanceCache holds wallet snapshots for balance reads. Implementations must treat
// every error as a miss from the caller's point of view.
type BalanceCache interface {
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, bool, error)
	SetWallet(ctx context.Context, wallet domain.Wallet) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// EventPublisher ships committed ledger events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}

// MetricsRecorder records money movement outcomes.
type MetricsRecorder interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
	IncReplay(operation string)
}

// IdentityChecker looks an identity up in an external blacklist.
type IdentityChecker interface {
	IsBlacklisted(ctx context.Context, identity string) (bool, error)
}
