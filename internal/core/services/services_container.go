package services

import (
	portsrepo "github.com/petalhealth/petal_backend/internal/core/ports/repositories"
	portssvc "github.com/petalhealth/petal_backend/internal/core/ports/services"
	"github.com/petalhealth/petal_backend/pkg/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Ledger = NewLedgerService(repos.TransactionRepo)

	// Cycle and activity services credit rewards through the ledger
	// service; the dependency is strictly one-way.
	container.Cycle = NewCycleService(repos.CycleRepo, repos.DailyLogRepo, container.Ledger, repos.TxManager)
	container.Activity = NewActivityService(repos.ActivityRepo, container.Ledger)

	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg, container.User)

	return container
}
