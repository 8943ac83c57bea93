package pgsql

import (
	"time"

	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every Postgres repository onto one pool. The
// ledger repository doubles as the unit of work so both share append hooks.
func NewRepositoryProvider(dbPool *pgxpool.Pool, timeout time.Duration) portsrepo.RepositoryProvider {
	ledgerRepo := newPgxLedgerRepository(dbPool, timeout)
	investmentRepo := newPgxInvestmentRepository(dbPool, timeout)

	return portsrepo.RepositoryProvider{
		Ledger:        ledgerRepo,
		UnitOfWork:    ledgerRepo,
		Requests:      newPgxRequestRepository(dbPool, timeout),
		Positions:     investmentRepo,
		Plans:         investmentRepo,
		Accounts:      newPgxAccountRepository(dbPool, timeout),
		Addresses:     newPgxAddressRepository(dbPool, timeout),
		ExchangeRates: newPgxExchangeRateRepository(dbPool, timeout),
	}
}
