package services

import (
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, cache portsrepo.BalanceCache, options ...ServiceOption) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.Accounts, options...)
	container.Rate = NewExchangeRateService(repos.ExchangeRates, options...)
	container.Address = NewAddressAllocator(repos.Addresses, options...)

	// Cached balances must be dropped synchronously whenever the ledger grows.
	container.Balance = NewBalanceProjector(repos.Ledger, cache, options...)
	repos.Ledger.OnAppend(container.Balance.InvalidateBalances)

	coordinator := NewTransactionCoordinator(repos, container.Balance, container.Address, options...)
	container.Coordinator = coordinator

	container.Workflow = NewApprovalWorkflow(
		repos.UnitOfWork,
		repos.Requests,
		coordinator,
		ParseRequestKinds(cfg.AutoApproveKinds),
		options...,
	)
	coordinator.SetAutoApprover(container.Workflow)

	container.Investment = NewInvestmentService(repos.Plans, repos.Positions, coordinator, options...)

	return container
}
