package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	"github.com/SscSPs/coinvest_backend/internal/models"
	"github.com/SscSPs/coinvest_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

// WithinAccount opens a transaction, takes the account's advisory lock and
// hands fn a view bound to that transaction. The whole unit, including every
// statement fn issues, shares one store deadline. Hooks fire once the commit lands.
func (r *PgxLedgerRepository) WithinAccount(ctx context.Context, accountID string, fn func(tx portsrepo.AccountTx) error) error {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var appended []domain.LedgerEntry
	err := r.inTx(opCtx, func(tx pgx.Tx) error {
		if err := lockAccounts(opCtx, tx, accountID); err != nil {
			return err
		}
		deadline, _ := opCtx.Deadline()
		atx := &pgAccountTx{tx: tx, accountID: accountID, deadline: deadline}
		if err := fn(atx); err != nil {
			return err
		}
		appended = atx.appended
		return nil
	})
	if err != nil {
		return err
	}

	r.fireHooks(ctx, appended)
	return nil
}

// pgAccountTx runs every statement on the open transaction, so reads observe
// the rows it has already written.
type pgAccountTx struct {
	tx        pgx.Tx
	accountID string
	deadline  time.Time
	appended  []domain.LedgerEntry
}

var _ portsrepo.AccountTx = (*pgAccountTx)(nil)

// bound caps ctx at the unit of work's deadline.
func (t *pgAccountTx) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.deadline.IsZero() {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, t.deadline)
}

func (t *pgAccountTx) Balance(ctx context.Context, currency domain.Currency) (int64, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	var balance int64
	err := t.tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN direction = 'credit' THEN amount ELSE -amount END), 0)::bigint
		FROM ledger_entries
		WHERE account_id = $1 AND currency = $2`,
		t.accountID, string(currency),
	).Scan(&balance)
	if err != nil {
		return 0, classifyError(err, "fold balance")
	}
	return balance, nil
}

func (t *pgAccountTx) AppendEntries(ctx context.Context, entries ...domain.LedgerEntry) ([]domain.LedgerEntry, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	prepared, err := domain.PrepareEntries(entries, nowUTC())
	if err != nil {
		return nil, err
	}
	for _, e := range prepared {
		if e.AccountID != t.accountID {
			return nil, fmt.Errorf("%w: entry for account %s staged in unit of work for %s", apperrors.ErrValidation, e.AccountID, t.accountID)
		}
	}
	if err := insertEntries(ctx, t.tx, prepared); err != nil {
		return nil, err
	}
	t.appended = append(t.appended, prepared...)
	return prepared, nil
}

func (t *pgAccountTx) FindRequest(ctx context.Context, requestID string) (*domain.TransactionRequest, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	rows, err := t.tx.Query(ctx,
		`SELECT `+requestColumns+` FROM transaction_requests WHERE request_id = $1 AND account_id = $2 FOR UPDATE`,
		requestID, t.accountID,
	)
	if err != nil {
		return nil, classifyError(err, "find request "+requestID)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.TransactionRequest])
	if err != nil {
		return nil, classifyError(err, "find request "+requestID)
	}
	req := mapping.ToDomainTransactionRequest(m)
	return &req, nil
}

func (t *pgAccountTx) UpdateRequest(ctx context.Context, req domain.TransactionRequest, expected domain.RequestStatus) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	m := mapping.ToModelTransactionRequest(req)
	tag, err := t.tx.Exec(ctx, `
		UPDATE transaction_requests
		SET status = $1, approved_at = $2, approved_by = $3, resolved_at = $4, resolved_by = $5,
			rejection_reason = $6, rejection_detail = $7, deposit_address = $8,
			last_updated_at = $9, last_updated_by = $10, version = version + 1
		WHERE request_id = $11 AND account_id = $12 AND status = $13`,
		m.Status, m.ApprovedAt, m.ApprovedBy, m.ResolvedAt, m.ResolvedBy,
		m.RejectionReason, m.RejectionDetail, m.DepositAddress,
		m.LastUpdatedAt, m.LastUpdatedBy,
		m.RequestID, t.accountID, string(expected),
	)
	if err != nil {
		return classifyError(err, "update request "+req.RequestID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: request %s is no longer %s", apperrors.ErrConflict, req.RequestID, expected)
	}
	return nil
}

func (t *pgAccountTx) FindPosition(ctx context.Context, positionID string) (*domain.InvestmentPosition, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	rows, err := t.tx.Query(ctx,
		`SELECT `+positionColumns+` FROM investment_positions WHERE position_id = $1 AND account_id = $2 FOR UPDATE`,
		positionID, t.accountID,
	)
	if err != nil {
		return nil, classifyError(err, "find position "+positionID)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.InvestmentPosition])
	if err != nil {
		return nil, classifyError(err, "find position "+positionID)
	}
	pos := mapping.ToDomainInvestmentPosition(m)
	return &pos, nil
}

func (t *pgAccountTx) SavePosition(ctx context.Context, pos domain.InvestmentPosition) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	if pos.AccountID != t.accountID {
		return fmt.Errorf("%w: position for account %s saved in unit of work for %s", apperrors.ErrValidation, pos.AccountID, t.accountID)
	}
	m := mapping.ToModelInvestmentPosition(pos)
	_, err := t.tx.Exec(ctx, `
		INSERT INTO investment_positions (
			position_id, account_id, plan_id, request_id, principal_amount, currency, rate_bps,
			period_hours, duration_periods, started_at, status, accrued_return, periods_paid,
			last_accrued_at, closed_at, created_at, created_by, last_updated_at, last_updated_by, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, 1)`,
		m.PositionID, m.AccountID, m.PlanID, m.RequestID, m.PrincipalAmount, m.Currency, m.RateBps,
		m.PeriodHours, m.DurationPeriods, m.StartedAt, m.Status, m.AccruedReturn, m.PeriodsPaid,
		m.LastAccruedAt, m.ClosedAt, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return classifyError(err, "insert position "+pos.PositionID)
}

func (t *pgAccountTx) UpdatePosition(ctx context.Context, pos domain.InvestmentPosition, expectedPeriods int, expectedStatus domain.PositionStatus) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	m := mapping.ToModelInvestmentPosition(pos)
	tag, err := t.tx.Exec(ctx, `
		UPDATE investment_positions
		SET status = $1, accrued_return = $2, periods_paid = $3, last_accrued_at = $4, closed_at = $5,
			last_updated_at = $6, last_updated_by = $7, version = version + 1
		WHERE position_id = $8 AND account_id = $9 AND periods_paid = $10 AND status = $11`,
		m.Status, m.AccruedReturn, m.PeriodsPaid, m.LastAccruedAt, m.ClosedAt,
		m.LastUpdatedAt, m.LastUpdatedBy,
		m.PositionID, t.accountID, expectedPeriods, string(expectedStatus),
	)
	if err != nil {
		return classifyError(err, "update position "+pos.PositionID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: position %s changed concurrently", apperrors.ErrConflict, pos.PositionID)
	}
	return nil
}

func (t *pgAccountTx) FindPlan(ctx context.Context, planID string) (*domain.InvestmentPlan, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	rows, err := t.tx.Query(ctx, `SELECT `+planColumns+` FROM investment_plans WHERE plan_id = $1`, planID)
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
