package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	"github.com/SscSPs/coinvest_backend/internal/models"
	"github.com/SscSPs/coinvest_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, display_name, role, is_active, created_at, created_by, last_updated_at, last_updated_by, version`

// PgxAccountRepository implements the ports.AccountRepositoryFacade interface using pgxpool.
type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool, timeout time.Duration) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool, Timeout: timeout}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// FindAccountByID retrieves a specific account by its unique identifier.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.Pool.Query(opCtx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, classifyError(err, "find account "+accountID)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, classifyError(err, "find account "+accountID)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// SaveAccount inserts the account or refreshes name, role and active flag.
// The creation audit columns of an existing row are preserved.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	m := mapping.ToModelAccount(account)
	_, err := r.Pool.Exec(opCtx, `
		INSERT INTO accounts (account_id, display_name, role, is_active, created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
		ON CONFLICT (account_id) DO UPDATE SET
			display_name = EXCLUDED.display_name, role = EXCLUDED.role, is_active = EXCLUDED.is_active,
			last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by,
			version = accounts.version + 1`,
		m.AccountID, m.DisplayName, m.Role, m.IsActive, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return classifyError(err, "save account "+account.AccountID)
}
