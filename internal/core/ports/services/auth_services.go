package services

import (
	"context"
	"time"

	"github.com/SscSPs/wallet_ledger/internal/core/domain"
)

// TokenSvcFacade issues access tokens for authenticated users.
type TokenSvcFacade interface {
	// GenerateAccessToken signs a JWT whose subject is the user's ID.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}
