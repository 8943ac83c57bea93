package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	"github.com/SscSPs/coinvest_backend/internal/models"
	"github.com/SscSPs/coinvest_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExchangeRateRepository implements the ports.ExchangeRateRepositoryFacade interface using pgxpool.
type PgxExchangeRateRepository struct {
	BaseRepository
}

func newPgxExchangeRateRepository(pool *pgxpool.Pool, timeout time.Duration) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{BaseRepository: BaseRepository{Pool: pool, Timeout: timeout}}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

// SaveExchangeRate inserts or replaces the rate for a currency pair.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	m := mapping.ToModelExchangeRate(rate)
	_, err := r.Pool.Exec(opCtx, `
		INSERT INTO exchange_rates (from_currency, to_currency, rate, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (from_currency, to_currency) DO UPDATE SET
			rate = EXCLUDED.rate, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by`,
		m.FromCurrency, m.ToCurrency, m.Rate, m.UpdatedAt, m.UpdatedBy,
	)
	return classifyError(err, "save exchange rate")
}

// FindExchangeRate retrieves the stored rate. Inverse lookups are the service's job.
func (r *PgxExchangeRateRepository) FindExchangeRate(ctx context.Context, from, to domain.Currency) (*domain.ExchangeRate, error) {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var m models.ExchangeRate
	err := r.Pool.QueryRow(opCtx, `
		SELECT from_currency, to_currency, rate, updated_at, updated_by
		FROM exchange_rates WHERE from_currency = $1 AND to_currency = $2`,
		string(from), string(to),
	).Scan(&m.FromCurrency, &m.ToCurrency, &m.Rate, &m.UpdatedAt, &m.UpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: rate %s/%s", apperrors.ErrNotFound, from, to)
		}
		return nil, classifyError(err, "find exchange rate")
	}
	rate := mapping.ToDomainExchangeRate(m)
	return &rate, nil
}
