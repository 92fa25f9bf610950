package repositories

import "context"

// TransactionManager runs a function inside a single database
// transaction. Repository calls made from fn share the transaction;
// fn returning an error rolls everything back.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RepositoryProvider bundles all repository implementations for wiring
// into the service container.
type RepositoryProvider struct {
	TxManager       TransactionManager
	TransactionRepo TransactionRepositoryFacade
	CycleRepo       CycleRepositoryFacade
	DailyLogRepo    DailyLogRepositoryFacade
	ActivityRepo    ActivityRepositoryFacade
	UserRepo        UserRepositoryFacade
}
