package repositories

import (
	"context"
	"time"

	"github.com/petalhealth/petal_backend/internal/core/domain"
)

// TransactionReader defines read operations over the points ledger.
// The ledger is append-only; there are no update or delete operations.
type TransactionReader interface {
	// FindTransactionsByUserID retrieves a user's transactions newest
	// first, optionally filtered by kind, with limit/offset pagination.
	FindTransactionsByUserID(ctx context.Context, userID string, kind *domain.TransactionKind, limit int, offset int) ([]domain.Transaction, error)

	// SumAmountByUserID returns the sum of all transaction amounts for
	// the user. Returns 0 for a user with no transactions.
	SumAmountByUserID(ctx context.Context, userID string) (int64, error)

	// FindDailyLoginOnDay looks for a daily_login transaction created on
	// the given calendar day (UTC). Returns apperrors.ErrNotFound when
	// no such transaction exists.
	FindDailyLoginOnDay(ctx context.Context, userID string, day time.Time) (*domain.Transaction, error)

	// FindTopBalances returns the top users by derived balance,
	// descending. Derived from the raw ledger, so O(users).
	FindTopBalances(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// TransactionWriter defines the single write operation on the ledger.
type TransactionWriter interface {
	// SaveTransaction appends one immutable transaction. Returns
	// apperrors.ErrDuplicate when a uniqueness constraint is violated
	// (the once-per-day daily_login guard).
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
}

// TransactionRepositoryFacade combines all ledger repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
