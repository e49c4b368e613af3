package services

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/wallet_ledger/internal/apperrors"
	portssvc "github.com/SscSPs/wallet_ledger/internal/core/ports/services"
)

// BlacklistPolicy decides what happens when the blacklist cannot be reached.
type BlacklistPolicy int

const (
	// FailOpen logs the outage and lets the identity through.
	FailOpen BlacklistPolicy = iota
	// FailClosed rejects the identity with apperrors.ErrBlacklistUnavailable.
	FailClosed
)

// ParseBlacklistPolicy maps the configured value onto a policy. Anything but "closed"
// fails open.
func ParseBlacklistPolicy(value string) BlacklistPolicy {
	if strings.EqualFold(strings.TrimSpace(value), "closed") {
		return FailClosed
	}
	return FailOpen
}

// identityScreener applies a BlacklistPolicy to an IdentityChecker.
type identityScreener struct {
	BaseService
	checker portssvc.IdentityChecker
	policy  BlacklistPolicy
}

// Screen returns nil when identity may be onboarded. It never runs inside a database
// transaction since the checker may block on the network.
func (s identityScreener) Screen(ctx context.Context, identity string) error {
	if s.checker == nil {
		return nil
	}

	blacklisted, err := s.checker.IsBlacklisted(ctx, identity)
	if err != nil {
		if s.policy == FailClosed {
			s.LogError(ctx, err, "Identity blacklist unavailable, rejecting")
			return apperrors.NewAppError(http.StatusServiceUnavailable, "identity screening unavailable", apperrors.ErrBlacklistUnavailable)
		}
		s.LogWarn(ctx, "Identity blacklist unavailable, allowing", slog.String("error", err.Error()))
		return nil
	}
	if blacklisted {
		s.LogInfo(ctx, "Identity rejected by blacklist")
		return apperrors.ErrIdentityBlacklisted
	}
	return nil
}
