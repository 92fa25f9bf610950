package services

import (
	"context"

	"github.com/petalhealth/petal_backend/internal/core/domain"
)

// LedgerReaderSvc defines read operations over the points ledger.
type LedgerReaderSvc interface {
	// GetBalance returns the user's balance, derived as the sum of all
	// their transaction amounts. 0 for an empty ledger.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// ListTransactions retrieves a page of the user's transactions,
	// newest first. Offset is (page-1)*limit. An optional kind filter
	// restricts results to one transaction kind.
	ListTransactions(ctx context.Context, userID string, page int, limit int, kind *domain.TransactionKind) ([]domain.Transaction, error)

	// GetLeaderboard returns the top limit users by balance descending.
	GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// LedgerWriterSvc defines operations that append to the ledger.
// Appending is the only way a balance changes.
type LedgerWriterSvc interface {
	// AddTransaction validates and appends one immutable transaction,
	// returning the created record with its assigned ID and timestamp.
	AddTransaction(ctx context.Context, userID string, amount int64, kind domain.TransactionKind, description string) (*domain.Transaction, error)

	// ProcessDailyLogin grants the fixed daily-login reward at most once
	// per calendar day. A same-day repeat claim returns Awarded=false
	// with a zero amount, never an error.
	ProcessDailyLogin(ctx context.Context, userID string) (*domain.DailyLoginResult, error)

	// AwardTaskCompletion credits the fixed task-completion reward.
	AwardTaskCompletion(ctx context.Context, userID string, taskDescription string) (*domain.Transaction, error)

	// AwardCommunityPost credits the fixed community-post reward.
	AwardCommunityPost(ctx context.Context, userID string) (*domain.Transaction, error)

	// AwardCycleCompletion credits the fixed cycle-completion reward.
	AwardCycleCompletion(ctx context.Context, userID string) (*domain.Transaction, error)

	// SpendPoints debits a positive amount for one of the spendable
	// kinds after checking the balance covers it. Returns the appended
	// transaction and the new balance.
	SpendPoints(ctx context.Context, userID string, amount int64, kind domain.TransactionKind, description string) (*domain.Transaction, int64, error)
}

// RewardCalculatorSvc computes activity rewards. Pure; no storage access.
type RewardCalculatorSvc interface {
	// CalculateActivityReward returns the reward for an activity:
	// 0 without a duration, otherwise base + duration/10 + an intensity
	// bonus for RPE >= 7, capped at domain.ActivityRewardCap.
	CalculateActivityReward(activityType string, durationMin *int, exerciseRPE *int) (int64, error)
}

// LedgerSvcFacade combines all ledger service interfaces.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	RewardCalculatorSvc
}
