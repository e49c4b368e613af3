package dto

import "github.com/SscSPs/wallet_ledger/internal/core/domain"

// CreateUserRequest is the registration payload. Email is screened against the
// identity blacklist before anything is written.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
}

// LoginRequest carries credentials for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// RegisterResponse is returned after a user and its wallet were created.
type RegisterResponse struct {
	User   UserResponse   `json:"user"`
	Wallet WalletResponse `json:"wallet"`
}

// ToRegisterResponse builds the registration response.
func ToRegisterResponse(user *domain.User, wallet *domain.Wallet) RegisterResponse {
	return RegisterResponse{
		User:   ToUserResponse(user),
		Wallet: ToWalletResponse(*wallet),
	}
}
