package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/petalhealth/petal_backend/internal/apperrors"
	"github.com/petalhealth/petal_backend/internal/core/domain"
	portsrepo "github.com/petalhealth/petal_backend/internal/core/ports/repositories"
)

// PgxCycleRepository persists menstrual cycle records.
type PgxCycleRepository struct {
	BaseRepository
}

// newPgxCycleRepository creates a new repository for cycle data.
func newPgxCycleRepository(base BaseRepository) portsrepo.CycleRepositoryFacade {
	return &PgxCycleRepository{BaseRepository: base}
}

// Ensure PgxCycleRepository implements the facade
var _ portsrepo.CycleRepositoryFacade = (*PgxCycleRepository)(nil)

// SaveCycle inserts a new cycle.
func (r *PgxCycleRepository) SaveCycle(ctx context.Context, cycle domain.Cycle) error {
	query := `
		INSERT INTO cycles (cycle_id, user_id, start_date, end_date, period_length)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		cycle.CycleID,
		cycle.UserID,
		cycle.StartDate,
		cycle.EndDate,
		cycle.PeriodLength,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: cycle with ID %s already exists", apperrors.ErrDuplicate, cycle.CycleID)
		}
		return fmt.Errorf("failed to save cycle %s: %w", cycle.CycleID, err)
	}
	return nil
}

// FindCycleByID retrieves a cycle by its ID.
func (r *PgxCycleRepository) FindCycleByID(ctx context.Context, cycleID string) (*domain.Cycle, error) {
	query := `
		SELECT cycle_id, user_id, start_date, end_date, period_length
		FROM cycles
		WHERE cycle_id = $1;
	`
	var cycle domain.Cycle
	err := r.db(ctx).QueryRow(ctx, query, cycleID).Scan(
		&cycle.CycleID,
		&cycle.UserID,
		&cycle.StartDate,
		&cycle.EndDate,
		&cycle.PeriodLength,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cycle by ID %s: %w", cycleID, err)
	}
	return &cycle, nil
}

// FindCyclesByUserID retrieves a user's cycles ordered by start_date
// descending. The analytics depend on this ordering, not on insertion
// order. A limit <= 0 returns all cycles.
func (r *PgxCycleRepository) FindCyclesByUserID(ctx context.Context, userID string, limit int) ([]domain.Cycle, error) {
	query := `
		SELECT cycle_id, user_id, start_date, end_date, period_length
		FROM cycles
		WHERE user_id = $1
		ORDER BY start_date DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	query += `;`

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles for user %s: %w", userID, err)
	}
	defer rows.Close()

	cycles := []domain.Cycle{}
	for rows.Next() {
		var cycle domain.Cycle
		err := rows.Scan(
			&cycle.CycleID,
			&cycle.UserID,
			&cycle.StartDate,
			&cycle.EndDate,
			&cycle.PeriodLength,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle row: %w", err)
		}
		cycles = append(cycles, cycle)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating cycle rows: %w", rows.Err())
	}
	return cycles, nil
}

// UpdateCycle updates the end_date and period_length of a cycle.
// start_date and ownership are immutable.
func (r *PgxCycleRepository) UpdateCycle(ctx context.Context, cycle domain.Cycle) error {
	query := `
		UPDATE cycles
		SET end_date = $2, period_length = $3
		WHERE cycle_id = $1;
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query,
		cycle.CycleID,
		cycle.EndDate,
		cycle.PeriodLength,
	)

	if err != nil {
		return fmt.Errorf("failed to execute update cycle %s: %w", cycle.CycleID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
