package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/petalhealth/petal_backend/internal/apperrors"
	"github.com/petalhealth/petal_backend/internal/core/domain"
	portsrepo "github.com/petalhealth/petal_backend/internal/core/ports/repositories"
	portssvc "github.com/petalhealth/petal_backend/internal/core/ports/services"
)

// ledgerServiceImpl implements the LedgerSvcFacade interface. The
// ledger is append-only: every balance change goes through
// AddTransaction, and a user's balance is always derived as the sum of
// their transaction amounts.
type ledgerServiceImpl struct {
	BaseService
	txnRepo portsrepo.TransactionRepositoryFacade
	now     func() time.Time
}

// LedgerServiceOption is a functional option for configuring the ledger service.
type LedgerServiceOption func(*ledgerServiceImpl)

// WithLedgerClock overrides the clock used for daily-login calendar
// checks. Used in tests.
func WithLedgerClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerServiceImpl) {
		s.now = now
	}
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(txnRepo portsrepo.TransactionRepositoryFacade, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerServiceImpl{
		txnRepo: txnRepo,
		now:     time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure ledgerServiceImpl implements the LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerServiceImpl)(nil)

func (s *ledgerServiceImpl) GetBalance(ctx context.Context, userID string) (int64, error) {
	balance, err := s.txnRepo.SumAmountByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum transactions for balance",
			slog.String("user_id", userID))
		return 0, fmt.Errorf("failed to get balance for user %s: %w", userID, err)
	}
	return balance, nil
}

func (s *ledgerServiceImpl) ListTransactions(ctx context.Context, userID string, page int, limit int, kind *domain.TransactionKind) ([]domain.Transaction, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if kind != nil && !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", apperrors.ErrValidation, *kind)
	}

	offset := (page - 1) * limit
	txns, err := s.txnRepo.FindTransactionsByUserID(ctx, userID, kind, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions",
			slog.String("user_id", userID),
			slog.Int("page", page),
			slog.Int("limit", limit))
		return nil, fmt.Errorf("failed to list transactions for user %s: %w", userID, err)
	}

	if txns == nil {
		return []domain.Transaction{}, nil
	}
	return txns, nil
}

func (s *ledgerServiceImpl) AddTransaction(ctx context.Context, userID string, amount int64, kind domain.TransactionKind, description string) (*domain.Transaction, error) {
	// Validation happens before any storage access.
	if amount == 0 {
		return nil, fmt.Errorf("%w: transaction amount must be non-zero", apperrors.ErrValidation)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", apperrors.ErrValidation, kind)
	}

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		Amount:        amount,
		Kind:          kind,
		Description:   description,
		CreatedAt:     s.now().UTC(),
	}

	// Single atomic append; the ledger has no other write path.
	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to save transaction",
			slog.String("user_id", userID),
			slog.String("kind", string(kind)))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("kind", string(kind)),
		slog.Int64("amount", amount))
	return &txn, nil
}

// ProcessDailyLogin grants the daily-login reward at most once per
// calendar day (UTC). The check is a date-scoped query, not a window
// over recent transactions, so heavy activity on other kinds cannot
// cause a double grant. The residual race between two concurrent
// claims is settled by the storage-level uniqueness constraint: a
// duplicate insert comes back as ErrDuplicate and is reported as
// "already awarded", not as a failure.
func (s *ledgerServiceImpl) ProcessDailyLogin(ctx context.Context, userID string) (*domain.DailyLoginResult, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)

	existing, err := s.txnRepo.FindDailyLoginOnDay(ctx, userID, today)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check for existing daily login",
			slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to check daily login for user %s: %w", userID, err)
	}
	if existing != nil {
		return &domain.DailyLoginResult{Awarded: false, Amount: 0}, nil
	}

	txn, err := s.AddTransaction(ctx, userID, domain.DailyLoginReward, domain.KindDailyLogin, "Daily login bonus")
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// A concurrent claim won the race; the reward exists.
			s.LogDebug(ctx, "Daily login already claimed concurrently",
				slog.String("user_id", userID))
			return &domain.DailyLoginResult{Awarded: false, Amount: 0}, nil
		}
		return nil, err
	}

	return &domain.DailyLoginResult{
		Awarded:       true,
		Amount:        txn.Amount,
		TransactionID: txn.TransactionID,
	}, nil
}

// CalculateActivityReward is a pure function: base reward plus one
// point per 10 minutes, plus an intensity bonus of (RPE - 6) for
// RPE >= 7, capped at domain.ActivityRewardCap. No duration, no reward.
func (s *ledgerServiceImpl) CalculateActivityReward(activityType string, durationMin *int, exerciseRPE *int) (int64, error) {
	if exerciseRPE != nil && (*exerciseRPE < 1 || *exerciseRPE > 10) {
		return 0, fmt.Errorf("%w: exercise RPE must be between 1 and 10", apperrors.ErrValidation)
	}
	if durationMin == nil || *durationMin <= 0 {
		return 0, nil
	}

	reward := domain.ActivityBaseReward
	reward += int64(*durationMin / 10)
	if exerciseRPE != nil && *exerciseRPE >= 7 {
		reward += int64(*exerciseRPE - 6)
	}

	if reward > domain.ActivityRewardCap {
		reward = domain.ActivityRewardCap
	}
	return reward, nil
}

// SpendPoints is the only client-facing debit path. The amount arrives
// positive and is negated before the append; the kind must be one of
// the spendable kinds, and the current balance must cover the spend.
// The balance check reads the ledger first, so a concurrent spend can
// still drive the balance below zero; the ledger tolerates that.
func (s *ledgerServiceImpl) SpendPoints(ctx context.Context, userID string, amount int64, kind domain.TransactionKind, description string) (*domain.Transaction, int64, error) {
	if amount <= 0 {
		return nil, 0, fmt.Errorf("%w: spend amount must be positive", apperrors.ErrValidation)
	}
	if !kind.Spendable() {
		return nil, 0, fmt.Errorf("%w: kind %q is not spendable", apperrors.ErrValidation, kind)
	}

	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if balance < amount {
		return nil, 0, fmt.Errorf("%w: insufficient balance", apperrors.ErrValidation)
	}

	txn, err := s.AddTransaction(ctx, userID, -amount, kind, description)
	if err != nil {
		return nil, 0, err
	}
	return txn, balance - amount, nil
}

func (s *ledgerServiceImpl) AwardTaskCompletion(ctx context.Context, userID string, taskDescription string) (*domain.Transaction, error) {
	return s.AddTransaction(ctx, userID, domain.TaskCompletionReward, domain.KindTaskCompletion,
		fmt.Sprintf("Task completed: %s", taskDescription))
}

func (s *ledgerServiceImpl) AwardCommunityPost(ctx context.Context, userID string) (*domain.Transaction, error) {
	return s.AddTransaction(ctx, userID, domain.CommunityPostReward, domain.KindCommunityPost, "Community post")
}

func (s *ledgerServiceImpl) AwardCycleCompletion(ctx context.Context, userID string) (*domain.Transaction, error) {
	return s.AddTransaction(ctx, userID, domain.CycleCompletionReward, domain.KindCycleCompletion, "Cycle completed")
}

func (s *ledgerServiceImpl) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	entries, err := s.txnRepo.FindTopBalances(ctx, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch leaderboard", slog.Int("limit", limit))
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	if entries == nil {
		return []domain.LeaderboardEntry{}, nil
	}
	return entries, nil
}
