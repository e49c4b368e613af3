package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/wallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/wallet_ledger/internal/dto"
	"github.com/SscSPs/wallet_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

const (
	// IdempotencyKeyHeader supplies the reference when the body has none.
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response rebuilt from an earlier request.
	ReplayedHeader = "Idempotent-Replayed"
)

// walletHandler serves the caller's own wallet. The acting user always comes from the
// access token, never from the request body.
type walletHandler struct {
	walletService portssvc.WalletSvcFacade
}

// RegisterWalletRoutes registers the wallet routes on an authenticated group. The
// balance-changing routes are wrapped by moneyMiddleware, typically a rate limiter.
func RegisterWalletRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade, moneyMiddleware ...gin.HandlerFunc) {
	h := &walletHandler{walletService: walletService}

	wallet := rg.Group("/wallet")
	{
		wallet.POST("/fund", chain(moneyMiddleware, h.fund)...)
		wallet.POST("/withdraw", chain(moneyMiddleware, h.withdraw)...)
		wallet.POST("/transfer", chain(moneyMiddleware, h.transfer)...)
		wallet.GET("/balance", h.getBalance)
		wallet.GET("/transactions", h.listTransactions)
	}
}

// resolveReference picks the idempotency reference: body, then header, then a fresh
// ULID. A body reference that disagrees with the header is rejected.
func resolveReference(c *gin.Context, bodyRef string) (string, bool) {
	headerRef := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	switch {
	case bodyRef != "" && headerRef != "" && bodyRef != headerRef:
		return "", false
	case bodyRef != "":
		return bodyRef, true
	case headerRef != "":
		return headerRef, true
	default:
		return ulid.Make().String(), true
	}
}

func writeMovement(c *gin.Context, replayed bool, body any) {
	status := http.StatusCreated
	if replayed {
		c.Header(ReplayedHeader, "true")
		status = http.StatusOK
	}
	c.JSON(status, body)
}

// fund godoc
// @Summary Fund wallet
// @Description Credits the caller's wallet. Repeating a reference returns the original result.
// @Tags wallet
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Reference used when the body has none"
// @Param request body dto.FundRequest true "Amount and optional reference"
// @Success 201 {object} dto.MovementResponse
// @Success 200 {object} dto.MovementResponse "Replayed"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Reference used for a different request"
// @Failure 503 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallet/fund [post]
func (h *walletHandler) fund(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	reference, ok := resolveReference(c, req.Reference)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "reference does not match Idempotency-Key"})
		return
	}

	movement, err := h.walletService.Fund(c.Request.Context(), userID, req.Amount, reference, req.Metadata)
	if err != nil {
		respondWithError(c, err, "Fund")
		return
	}
	writeMovement(c, movement.Replayed, dto.ToMovementResponse(movement))
}

// withdraw godoc
// @Summary Withdraw from wallet
// @Description Debits the caller's wallet. The balance never goes below zero.
// @Tags wallet
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Reference used when the body has none"
// @Param request body dto.WithdrawRequest true "Amount and optional reference"
// @Success 201 {object} dto.MovementResponse
// @Success 200 {object} dto.MovementResponse "Replayed"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Failure 503 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallet/withdraw [post]
func (h *walletHandler) withdraw(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	reference, ok := resolveReference(c, req.Reference)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "reference does not match Idempotency-Key"})
		return
	}

	movement, err := h.walletService.Withdraw(c.Request.Context(), userID, req.Amount, reference, req.Metadata)
	if err != nil {
		respondWithError(c, err, "Withdraw")
		return
	}
	writeMovement(c, movement.Replayed, dto.ToMovementResponse(movement))
}

// transfer godoc
// @Summary Transfer to another user
// @Description Moves value from the caller's wallet to another user's wallet atomically.
// @Tags wallet
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Reference used when the body has none"
// @Param request body dto.TransferRequest true "Recipient, amount and optional reference"
// @Success 201 {object} dto.TransferResponse
// @Success 200 {object} dto.TransferResponse "Replayed"
// @Failure 400 {object} ErrorResponse "Invalid input or self transfer"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Failure 503 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallet/transfer [post]
func (h *walletHandler) transfer(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	reference, ok := resolveReference(c, req.Reference)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "reference does not match Idempotency-Key"})
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Debug("Transfer requested", slog.String("to_user_id", req.ToUserID), slog.String("reference", reference))

	result, err := h.walletService.Transfer(c.Request.Context(), userID, req.ToUserID, req.Amount, reference, req.Metadata)
	if err != nil {
		respondWithError(c, err, "Transfer")
		return
	}
	writeMovement(c, result.Replayed, dto.ToTransferResponse(result))
}

// getBalance godoc
// @Summary Get wallet balance
// @Tags wallet
// @Produce json
// @Success 200 {object} dto.BalanceResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallet/balance [get]
func (h *walletHandler) getBalance(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	view, err := h.walletService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err, "Get balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceResponse(view))
}

// listTransactions godoc
// @Summary List wallet entries
// @Description Returns the caller's ledger entries, newest first.
// @Tags wallet
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallet/transactions [get]
func (h *walletHandler) listTransactions(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.walletService.ListEntries(c.Request.Context(), userID, params)
	if err != nil {
		respondWithError(c, err, "List transactions")
		return
	}
	c.JSON(http.StatusOK, resp)
}
