package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	Ledger        LedgerStore
	UnitOfWork    UnitOfWork
	Requests      RequestRepositoryFacade
	Positions     PositionReader
	Plans         PlanRepositoryFacade
	Accounts      AccountRepositoryFacade
	Addresses     AddressPoolRepository
	ExchangeRates ExchangeRateRepositoryFacade
}
