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

const positionColumns = `position_id, account_id, plan_id, request_id, principal_amount, currency, rate_bps,
	period_hours, duration_periods, started_at, status, accrued_return, periods_paid, last_accrued_at,
	closed_at, created_at, created_by, last_updated_at, last_updated_by, version`

const planColumns = `plan_id, name, currency, min_amount, max_amount, rate_bps, period_hours, duration_periods,
	is_active, created_at, created_by, last_updated_at, last_updated_by, version`

// PgxInvestmentRepository reads positions and stores plans. Position writes
// happen inside a unit of work.
type PgxInvestmentRepository struct {
	BaseRepository
}

func newPgxInvestmentRepository(pool *pgxpool.Pool, timeout time.Duration) *PgxInvestmentRepository {
	return &PgxInvestmentRepository{BaseRepository: BaseRepository{Pool: pool, Timeout: timeout}}
}

var (
	_ portsrepo.PositionReader       = (*PgxInvestmentRepository)(nil)
	_ portsrepo.PlanRepositoryFacade = (*PgxInvestmentRepository)(nil)
)

func (r *PgxInvestmentRepository) FindPositionByID(ctx context.Context, positionID string) (*domain.InvestmentPosition, error) {
	positions, err := r.queryPositions(ctx, "find position "+positionID,
		`SELECT `+positionColumns+` FROM investment_positions WHERE position_id = $1`, positionID)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, classifyError(pgx.ErrNoRows, "find position "+positionID)
	}
	return &positions[0], nil
}

func (r *PgxInvestmentRepository) ListPositionsByAccount(ctx context.Context, accountID string) ([]domain.InvestmentPosition, error) {
	return r.queryPositions(ctx, "list positions",
		`SELECT `+positionColumns+` FROM investment_positions WHERE account_id = $1 ORDER BY started_at DESC`, accountID)
}

func (r *PgxInvestmentRepository) ListRunningPositions(ctx context.Context, afterID string, limit int) ([]domain.InvestmentPosition, error) {
	if limit <= 0 {
		limit = 500
	}
	return r.queryPositions(ctx, "list running positions",
		`SELECT `+positionColumns+` FROM investment_positions
		WHERE status = $1 AND position_id > $2
		ORDER BY position_id
		LIMIT $3`,
		string(domain.PositionRunning), afterID, limit)
}

func (r *PgxInvestmentRepository) queryPositions(ctx context.Context, op, query string, args ...any) ([]domain.InvestmentPosition, error) {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.Pool.Query(opCtx, query, args...)
	if err != nil {
		return nil, classifyError(err, op)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.InvestmentPosition])
	if err != nil {
		return nil, classifyError(err, op)
	}
	out := make([]domain.InvestmentPosition, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainInvestmentPosition(m)
	}
	return out, nil
}

func (r *PgxInvestmentRepository) FindPlanByID(ctx context.Context, planID string) (*domain.InvestmentPlan, error) {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.Pool.Query(opCtx, `SELECT `+planColumns+` FROM investment_plans WHERE plan_id = $1`, planID)
	if err != nil {
		return nil, classifyError(err, "find plan "+planID)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.InvestmentPlan])
	if err != nil {
		return nil, classifyError(err, "find plan "+planID)
	}
	plan := mapping.ToDomainInvestmentPlan(m)
	return &plan, nil
}

func (r *PgxInvestmentRepository) ListPlans(ctx context.Context, activeOnly bool) ([]domain.InvestmentPlan, error) {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + planColumns + ` FROM investment_plans`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.Pool.Query(opCtx, query)
	if err != nil {
		return nil, classifyError(err, "list plans")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.InvestmentPlan])
	if err != nil {
		return nil, classifyError(err, "list plans")
	}
	out := make([]domain.InvestmentPlan, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainInvestmentPlan(m)
	}
	return out, nil
}

// SavePlan upserts a plan; terms of existing positions are copied at open
// time, so editing a plan never changes them.
func (r *PgxInvestmentRepository) SavePlan(ctx context.Context, plan domain.InvestmentPlan) error {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	m := mapping.ToModelInvestmentPlan(plan)
	_, err := r.Pool.Exec(opCtx, `
		INSERT INTO investment_plans (
			plan_id, name, currency, min_amount, max_amount, rate_bps, period_hours, duration_periods,
			is_active, created_at, created_by, last_updated_at, last_updated_by, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1)
		ON CONFLICT (plan_id) DO UPDATE SET
			name = EXCLUDED.name, min_amount = EXCLUDED.min_amount, max_amount = EXCLUDED.max_amount,
			rate_bps = EXCLUDED.rate_bps, period_hours = EXCLUDED.period_hours,
			duration_periods = EXCLUDED.duration_periods, is_active = EXCLUDED.is_active,
			last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by,
			version = investment_plans.version + 1`,
		m.PlanID, m.Name, m.Currency, m.MinAmount, m.MaxAmount, m.RateBps, m.PeriodHours, m.DurationPeriods,
		m.IsActive, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return classifyError(err, "save plan "+plan.PlanID)
}
