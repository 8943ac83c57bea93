package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	"github.com/SscSPs/coinvest_backend/internal/models"
	"github.com/SscSPs/coinvest_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestColumns = `request_id, account_id, kind, currency, amount, status, idempotency_key, destination,
	deposit_address, proof_ref, plan_id, approved_at, approved_by, resolved_at, resolved_by,
	rejection_reason, rejection_detail, created_at, created_by, last_updated_at, last_updated_by, version`

// PgxRequestRepository implements RequestRepositoryFacade using pgxpool.
type PgxRequestRepository struct {
	BaseRepository
}

func newPgxRequestRepository(pool *pgxpool.Pool, timeout time.Duration) *PgxRequestRepository {
	return &PgxRequestRepository{BaseRepository: BaseRepository{Pool: pool, Timeout: timeout}}
}

var _ portsrepo.RequestRepositoryFacade = (*PgxRequestRepository)(nil)

// SaveRequest inserts a new request. The partial unique index on
// (account_id, idempotency_key) turns a reused key into ErrDuplicate.
func (r *PgxRequestRepository) SaveRequest(ctx context.Context, req domain.TransactionRequest) error {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	m := mapping.ToModelTransactionRequest(req)
	_, err := r.Pool.Exec(opCtx, `
		INSERT INTO transaction_requests (
			request_id, account_id, kind, currency, amount, status, idempotency_key, destination,
			deposit_address, proof_ref, plan_id, approved_at, approved_by, resolved_at, resolved_by,
			rejection_reason, rejection_detail, created_at, created_by, last_updated_at, last_updated_by, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, 1)`,
		m.RequestID, m.AccountID, m.Kind, m.Currency, m.Amount, m.Status, m.IdempotencyKey, m.Destination,
		m.DepositAddress, m.ProofRef, m.PlanID, m.ApprovedAt, m.ApprovedBy, m.ResolvedAt, m.ResolvedBy,
		m.RejectionReason, m.RejectionDetail, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return classifyError(err, "insert request "+req.RequestID)
}

func (r *PgxRequestRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.TransactionRequest, error) {
	return r.findOne(ctx, "find request "+requestID,
		`SELECT `+requestColumns+` FROM transaction_requests WHERE request_id = $1`, requestID)
}

func (r *PgxRequestRepository) FindRequestByIdempotencyKey(ctx context.Context, accountID, key string) (*domain.TransactionRequest, error) {
	return r.findOne(ctx, "find request by idempotency key",
		`SELECT `+requestColumns+` FROM transaction_requests WHERE account_id = $1 AND idempotency_key = $2`, accountID, key)
}

// ListRequests returns requests newest first.
func (r *PgxRequestRepository) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.TransactionRequest, error) {
	var conds []string
	var args []any
	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		conds = append(conds, fmt.Sprintf("account_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Kind != nil {
		args = append(args, string(*filter.Kind))
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + requestColumns + ` FROM transaction_requests`)
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC, request_id DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}
	return r.findMany(ctx, "list requests", sb.String(), args...)
}

// ListApprovedBefore feeds the settlement sweeper.
func (r *PgxRequestRepository) ListApprovedBefore(ctx context.Context, cutoff time.Time, afterID string, limit int) ([]domain.TransactionRequest, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.findMany(ctx, "list approved requests",
		`SELECT `+requestColumns+` FROM transaction_requests
		WHERE status = $1 AND approved_at < $2 AND request_id > $3
		ORDER BY request_id
		LIMIT $4`,
		string(domain.StatusApproved), cutoff, afterID, limit)
}

func (r *PgxRequestRepository) findOne(ctx context.Context, op, query string, args ...any) (*domain.TransactionRequest, error) {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.Pool.Query(opCtx, query, args...)
	if err != nil {
		return nil, classifyError(err, op)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.TransactionRequest])
	if err != nil {
		return nil, classifyError(err, op)
	}
	req := mapping.ToDomainTransactionRequest(m)
	return &req, nil
}

func (r *PgxRequestRepository) findMany(ctx context.Context, op, query string, args ...any) ([]domain.TransactionRequest, error) {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.Pool.Query(opCtx, query, args...)
	if err != nil {
		return nil, classifyError(err, op)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.TransactionRequest])
	if err != nil {
		return nil, classifyError(err, op)
	}
	out := make([]domain.TransactionRequest, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainTransactionRequest(m)
	}
	return out, nil
}
