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

const addressColumns = `address, asset, account_id, assigned_at, created_at`

// PgxAddressRepository manages the pre-provisioned deposit address pool.
type PgxAddressRepository struct {
	BaseRepository
}

func newPgxAddressRepository(pool *pgxpool.Pool, timeout time.Duration) *PgxAddressRepository {
	return &PgxAddressRepository{BaseRepository: BaseRepository{Pool: pool, Timeout: timeout}}
}

var _ portsrepo.AddressPoolRepository = (*PgxAddressRepository)(nil)

func (r *PgxAddressRepository) FindAssignment(ctx context.Context, accountID string, asset domain.Currency) (*domain.DepositAddress, error) {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.Pool.Query(opCtx,
		`SELECT `+addressColumns+` FROM deposit_addresses WHERE account_id = $1 AND asset = $2`,
		accountID, string(asset))
	if err != nil {
		return nil, classifyError(err, "find deposit address")
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.DepositAddress])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no %s address for account %s", apperrors.ErrNotFound, asset, accountID)
		}
		return nil, classifyError(err, "find deposit address")
	}
	addr := mapping.ToDomainDepositAddress(m)
	return &addr, nil
}

// ClaimAddress assigns the oldest free address. SKIP LOCKED lets concurrent
// claims for different accounts proceed; a concurrent claim for the same pair
// trips the unique (account_id, asset) index and the winner's row is returned.
func (r *PgxAddressRepository) ClaimAddress(ctx context.Context, accountID string, asset domain.Currency, at time.Time) (*domain.DepositAddress, error) {
	if existing, err := r.FindAssignment(ctx, accountID, asset); err == nil {
		return existing, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var m models.DepositAddress
	err := r.inTx(opCtx, func(tx pgx.Tx) error {
		rows, err := tx.Query(opCtx, `
			UPDATE deposit_addresses SET account_id = $1, assigned_at = $2
			WHERE address = (
				SELECT address FROM deposit_addresses
				WHERE asset = $3 AND account_id IS NULL
				ORDER BY created_at, address
				LIMIT 1
				FOR UPDATE SKIP LOCKED
			)
			RETURNING `+addressColumns,
			accountID, at, string(asset))
		if err != nil {
			return err
		}
		m, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[models.DepositAddress])
		return err
	})
	switch {
	case err == nil:
		addr := mapping.ToDomainDepositAddress(m)
		return &addr, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("%w: %s deposit address pool is empty", apperrors.ErrNotFound, asset)
	case errors.Is(classifyError(err, "claim"), apperrors.ErrDuplicate):
		return r.FindAssignment(ctx, accountID, asset)
	}
	return nil, classifyError(err, "claim deposit address")
}

// AddPoolAddresses provisions free addresses; ones already known are skipped.
func (r *PgxAddressRepository) AddPoolAddresses(ctx context.Context, asset domain.Currency, addresses []string) (int, error) {
	if len(addresses) == 0 {
		return 0, nil
	}
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	added := 0
	err := r.inTx(opCtx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		now := nowUTC()
		for _, addr := range addresses {
			batch.Queue(`INSERT INTO deposit_addresses (address, asset, created_at) VALUES ($1, $2, $3) ON CONFLICT (address) DO NOTHING`,
				addr, string(asset), now)
		}
		br := tx.SendBatch(opCtx, batch)
		for range addresses {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return err
			}
			added += int(tag.RowsAffected())
		}
		return br.Close()
	})
	if err != nil {
		return 0, classifyError(err, "add pool addresses")
	}
	return added, nil
}
