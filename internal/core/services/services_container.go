package services

import (
	portsrepo "github.com/SscSPs/wallet_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/wallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/wallet_ledger/internal/platform/config"
)

// Collaborators are the optional non-database dependencies. Nil fields fall back to no-ops.
type Collaborators struct {
	Cache    portssvc.BalanceCache
	Events   portssvc.EventPublisher
	Metrics  portssvc.MetricsRecorder
	Identity portssvc.IdentityChecker
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, deps Collaborators) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	var userOptions []UserOption
	if deps.Identity != nil {
		userOptions = append(userOptions, WithIdentityChecker(deps.Identity, ParseBlacklistPolicy(cfg.BlacklistFailurePolicy)))
	}
	container.User = NewUserService(repos.TxManager, repos.UserRepo, repos.WalletRepo, cfg.DefaultCurrency, userOptions...)
	container.Token = NewTokenService(cfg)

	container.Wallet = NewWalletService(
		repos.TxManager,
		repos.WalletRepo,
		repos.EntryRepo,
		repos.TransferRepo,
		WithBalanceCache(deps.Cache),
		WithEventPublisher(deps.Events),
		WithMetrics(deps.Metrics),
	)

	return container
}
