package services

import (
	"context"
	"time"

	"github.com/SscSPs/wallet_ledger/internal/core/domain"
)

// Defaults used when a collaborator is not configured.

type noopCache struct{}

func (noopCache) GetWallet(context.Context, string) (*domain.Wallet, bool, error) {
	return nil, false, nil
}
func (noopCache) SetWallet(context.Context, domain.Wallet) error { return nil }
func (noopCache) Invalidate(context.Context, ...string) error    { return nil }

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.LedgerEvent) error { return nil }

type noopMetrics struct{}

func (noopMetrics) ObserveOperation(string, string, time.Duration) {}
func (noopMetrics) IncReplay(string)                               {}
