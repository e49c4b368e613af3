package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/wallet_ledger/internal/apperrors"
	"github.com/SscSPs/wallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/wallet_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/wallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/wallet_ledger/internal/dto"
	"github.com/SscSPs/wallet_ledger/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type userService struct {
	BaseService
	txManager       portsrepo.TransactionManager
	userRepo        portsrepo.UserRepositoryFacade
	walletRepo      portsrepo.WalletRepositoryFacade
	screener        identityScreener
	defaultCurrency string
}

// UserOption configures optional collaborators of the user service.
type UserOption func(*userService)

// WithIdentityChecker screens new identities against a blacklist under policy.
func WithIdentityChecker(checker portssvc.IdentityChecker, policy BlacklistPolicy) UserOption {
	return func(s *userService) {
		s.screener = identityScreener{checker: checker, policy: policy}
	}
}

// NewUserService creates a user service. Every new user gets a wallet in currency.
func NewUserService(
	txManager portsrepo.TransactionManager,
	userRepo portsrepo.UserRepositoryFacade,
	walletRepo portsrepo.WalletRepositoryFacade,
	currency string,
	options ...UserOption,
) portssvc.UserSvcFacade {
	svc := &userService{
		txManager:       txManager,
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		defaultCurrency: currency,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser screens the email, then writes the user and an empty wallet atomically.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, *domain.Wallet, error) {
	if err := s.screener.Screen(ctx, req.Email); err != nil {
		return nil, nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond) // timestamptz precision
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	wallet := domain.Wallet{
		WalletID:     uuid.NewString(),
		UserID:       user.UserID,
		Balance:      decimal.Zero,
		CurrencyCode: s.defaultCurrency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	if err := s.userRepo.SaveUser(ctx, tx, user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save user", slog.String("username", req.Username))
		}
		return nil, nil, err
	}
	if err := s.walletRepo.SaveWallet(ctx, tx, wallet); err != nil {
		s.LogError(ctx, err, "Failed to save wallet", slog.String("user_id", user.UserID))
		return nil, nil, err
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID), slog.String("wallet_id", wallet.WalletID))
	return &user, &wallet, nil
}

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user by ID", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.userRepo.FindUserByUsername(ctx, username)
}

// AuthenticateUser returns apperrors.ErrUnauthorized for both unknown users and bad
// passwords so callers cannot probe usernames.
func (s *userService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}
