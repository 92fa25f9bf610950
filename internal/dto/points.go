package dto

import (
	"time"

	"github.com/petalhealth/petal_backend/internal/core/domain"
)

// ListTransactionsParams defines query parameters for listing a user's
// points transactions.
type ListTransactionsParams struct {
	Page  int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	Kind  string `form:"kind" binding:"omitempty,oneof=daily_login task_completion activity_completion community_post cycle_completion store_purchase pet_feed unlock_content"`
}

// SpendPointsRequest defines the data needed to spend points. The
// amount is positive on the wire; the service records the debit.
type SpendPointsRequest struct {
	Amount      int64  `json:"amount" binding:"required,min=1"`
	Kind        string `json:"kind" binding:"required,oneof=store_purchase pet_feed unlock_content"`
	Description string `json:"description"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID string    `json:"transactionID"`
	Amount        int64     `json:"amount"`
	Kind          string    `json:"kind"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// BalanceResponse defines the data returned for a balance query.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// DailyLoginResponse defines the data returned for a daily-login claim.
type DailyLoginResponse struct {
	Awarded       bool   `json:"awarded"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transactionID,omitempty"`
	Message       string `json:"message"`
}

// SpendPointsResponse pairs the recorded debit with the balance that
// remains after it.
type SpendPointsResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	NewBalance  int64               `json:"newBalance"`
}

// LeaderboardResponse wraps the top earners list.
type LeaderboardResponse struct {
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

// ToTransactionResponse converts a domain.Transaction to a DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		Amount:        t.Amount,
		Kind:          string(t.Kind),
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
	}
}

// ToListTransactionResponse converts a slice of transactions to DTOs.
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}
