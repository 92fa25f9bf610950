package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/petalhealth/petal_backend/internal/apperrors"
	"github.com/petalhealth/petal_backend/internal/core/domain"
	portssvc "github.com/petalhealth/petal_backend/internal/core/ports/services"
	"github.com/petalhealth/petal_backend/internal/dto"
	"github.com/petalhealth/petal_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// pointsHandler handles HTTP requests against the points ledger.
type pointsHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newPointsHandler creates a new pointsHandler.
func newPointsHandler(ls portssvc.LedgerSvcFacade) *pointsHandler {
	return &pointsHandler{
		ledgerService: ls,
	}
}

// registerPointsRoutes registers all points-related routes.
func registerPointsRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newPointsHandler(ledgerService)

	points := rg.Group("/points")
	{
		points.GET("/balance", h.getBalance)
		points.GET("/transactions", h.listTransactions)
		points.POST("/spend", h.spendPoints)
		points.POST("/daily-login", h.claimDailyLogin)
		points.GET("/leaderboard", h.getLeaderboard)
	}
}

// getBalance godoc
// @Summary Get points balance
// @Description Returns the authenticated user's current points balance.
// @Tags points
// @Produce json
// @Success 200 {object} dto.BalanceResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /points/balance [get]
func (h *pointsHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to get balance", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve balance"})
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{Balance: balance})
}

// listTransactions godoc
// @Summary List points transactions
// @Description Returns a page of the user's transactions, newest first, optionally filtered by kind.
// @Tags points
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Param kind query string false "Transaction kind filter"
// @Success 200 {array} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /points/transactions [get]
func (h *pointsHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	var kind *domain.TransactionKind
	if params.Kind != "" {
		k := domain.TransactionKind(params.Kind)
		kind = &k
	}

	txns, err := h.ledgerService.ListTransactions(c.Request.Context(), userID, params.Page, params.Limit, kind)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListTransactionResponse(txns))
}

// spendPoints godoc
// @Summary Spend points
// @Description Debits a positive amount for a store purchase, pet feeding or content unlock. Rejected when the balance does not cover the spend.
// @Tags points
// @Accept json
// @Produce json
// @Param spend body dto.SpendPointsRequest true "Spend details"
// @Success 201 {object} dto.SpendPointsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /points/spend [post]
func (h *pointsHandler) spendPoints(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.SpendPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	txn, newBalance, err := h.ledgerService.SpendPoints(c.Request.Context(), userID, req.Amount, domain.TransactionKind(req.Kind), req.Description)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to spend points", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to spend points"})
		return
	}

	logger.Info("Points spent", slog.String("transaction_id", txn.TransactionID), slog.Int64("amount", txn.Amount))
	c.JSON(http.StatusCreated, dto.SpendPointsResponse{
		Transaction: dto.ToTransactionResponse(txn),
		NewBalance:  newBalance,
	})
}

// claimDailyLogin godoc
// @Summary Claim daily login reward
// @Description Grants the daily login reward at most once per calendar day. A repeat claim on the same day succeeds with awarded=false.
// @Tags points
// @Produce json
// @Success 200 {object} dto.DailyLoginResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /points/daily-login [post]
func (h *pointsHandler) claimDailyLogin(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	result, err := h.ledgerService.ProcessDailyLogin(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to process daily login", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process daily login"})
		return
	}

	resp := dto.DailyLoginResponse{
		Awarded:       result.Awarded,
		Amount:        result.Amount,
		TransactionID: result.TransactionID,
		Message:       "Daily login reward already claimed today",
	}
	if result.Awarded {
		resp.Message = "Daily login reward claimed"
	}
	c.JSON(http.StatusOK, resp)
}

// getLeaderboard godoc
// @Summary Get points leaderboard
// @Description Returns the top users by points balance, descending.
// @Tags points
// @Produce json
// @Param limit query int false "Number of entries" default(10)
// @Success 200 {object} dto.LeaderboardResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /points/leaderboard [get]
func (h *pointsHandler) getLeaderboard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	entries, err := h.ledgerService.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		logger.Error("Failed to get leaderboard", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve leaderboard"})
		return
	}

	c.JSON(http.StatusOK, dto.LeaderboardResponse{Leaderboard: entries})
}
