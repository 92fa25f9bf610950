package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/petalhealth/petal_backend/internal/apperrors"
	"github.com/petalhealth/petal_backend/internal/core/domain"
	portsrepo "github.com/petalhealth/petal_backend/internal/core/ports/repositories"
)

// PgxTransactionRepository persists the append-only points ledger.
// There are deliberately no UPDATE or DELETE statements in this file.
type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for ledger data.
func newPgxTransactionRepository(base BaseRepository) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository: base}
}

// Ensure PgxTransactionRepository implements the facade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// SaveTransaction appends one immutable transaction. A violation of the
// daily-login uniqueness index surfaces as apperrors.ErrDuplicate so
// the service can treat it as "already awarded today".
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, user_id, amount, kind, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	var description sql.NullString
	if txn.Description != "" {
		description = sql.NullString{String: txn.Description, Valid: true}
	}

	_, err := r.db(ctx).Exec(ctx, query,
		txn.TransactionID,
		txn.UserID,
		txn.Amount,
		txn.Kind,
		description,
		txn.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: transaction conflicts with existing entry", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// FindTransactionsByUserID retrieves a user's transactions newest first.
func (r *PgxTransactionRepository) FindTransactionsByUserID(ctx context.Context, userID string, kind *domain.TransactionKind, limit int, offset int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT transaction_id, user_id, amount, kind, description, created_at
		FROM transactions
		WHERE user_id = $1
	`
	args := []any{userID}
	if kind != nil {
		query += ` AND kind = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4;`
		args = append(args, *kind, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3;`
		args = append(args, limit, offset)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", rows.Err())
	}
	return txns, nil
}

// SumAmountByUserID derives the user's balance from the raw ledger.
func (r *PgxTransactionRepository) SumAmountByUserID(ctx context.Context, userID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1;
	`
	var balance int64
	if err := r.db(ctx).QueryRow(ctx, query, userID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to sum transactions for user %s: %w", userID, err)
	}
	return balance, nil
}

// FindDailyLoginOnDay looks for a daily_login transaction created on the
// given calendar day. The [day, day+1) range keeps the query on the
// created_at index.
func (r *PgxTransactionRepository) FindDailyLoginOnDay(ctx context.Context, userID string, day time.Time) (*domain.Transaction, error) {
	query := `
		SELECT transaction_id, user_id, amount, kind, description, created_at
		FROM transactions
		WHERE user_id = $1 AND kind = $2 AND created_at >= $3 AND created_at < $4
		LIMIT 1;
	`
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	row := r.db(ctx).QueryRow(ctx, query, userID, domain.KindDailyLogin, dayStart, dayEnd)
	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find daily login for user %s: %w", userID, err)
	}
	return &txn, nil
}

// FindTopBalances derives the leaderboard from the raw ledger. This is
// O(users); acceptable at current scale, revisit with a materialized
// aggregate if it shows up in query plans.
func (r *PgxTransactionRepository) FindTopBalances(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	query := `
		SELECT u.username, COALESCE(SUM(t.amount), 0) AS balance
		FROM users u
		LEFT JOIN transactions t ON t.user_id = u.user_id
		GROUP BY u.user_id, u.username
		ORDER BY balance DESC
		LIMIT $1;
	`
	rows, err := r.db(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []domain.LeaderboardEntry{}
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating leaderboard rows: %w", rows.Err())
	}
	return entries, nil
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var txn domain.Transaction
	var description sql.NullString

	err := row.Scan(
		&txn.TransactionID,
		&txn.UserID,
		&txn.Amount,
		&txn.Kind,
		&description,
		&txn.CreatedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}

	if description.Valid {
		txn.Description = description.String
	}
	return txn, nil
}
