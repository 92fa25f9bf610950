package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/petalhealth/petal_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgx-backed repositories against a
// shared connection pool. The shared BaseRepository doubles as the
// transaction manager, so WithTransaction spans repositories.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	base := BaseRepository{Pool: pool}
	return &portsrepo.RepositoryProvider{
		TxManager:       &base,
		TransactionRepo: newPgxTransactionRepository(base),
		CycleRepo:       newPgxCycleRepository(base),
		DailyLogRepo:    newPgxDailyLogRepository(base),
		ActivityRepo:    newPgxActivityRepository(base),
		UserRepo:        newPgxUserRepository(base),
	}
}
