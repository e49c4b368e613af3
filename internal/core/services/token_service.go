package services

import (
	"context"
	"time"

	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/wallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/wallet_ledger/internal/platform/config"
	"github.com/SscSPs/wallet_ledger/internal/utils"
)

type tokenService struct {
	BaseService
	secret string
	issuer string
	expiry time.Duration
}

// NewTokenService creates a JWT issuer from cfg.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{secret: cfg.JWTSecret, issuer: cfg.JWTIssuer, expiry: cfg.JWTExpiryDuration}
}

var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.expiry)
	token, err := utils.GenerateJWT(user.UserID, s.secret, s.expiry, s.issuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign access token")
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}
