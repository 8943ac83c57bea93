package pgsql

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantIs    error
		retryable bool
	}{
		{name: "no rows", err: pgx.ErrNoRows, wantIs: apperrors.ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505", ConstraintName: "uq_requests_idempotency"}, wantIs: apperrors.ErrDuplicate},
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, wantIs: apperrors.ErrStoreUnavailable, retryable: true},
		{name: "immutability trigger", err: &pgconn.PgError{Code: "P0001", Message: "ledger_entries is append-only"}, wantIs: apperrors.ErrImmutableLedger},
		{name: "deadline", err: context.DeadlineExceeded, wantIs: apperrors.ErrStoreUnavailable, retryable: true},
		{name: "other pg error", err: &pgconn.PgError{Code: "22003", Message: "bigint out of range"}, wantIs: apperrors.ErrInternal},
		{name: "unknown", err: errors.New("boom"), wantIs: apperrors.ErrInternal},
		{name: "already classified", err: fmt.Errorf("%w: request r-1", apperrors.ErrConflict), wantIs: apperrors.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err, "op")
			assert.ErrorIs(t, got, tt.wantIs)
			assert.Equal(t, tt.retryable, apperrors.IsRetryable(got))
		})
	}
	assert.NoError(t, classifyError(nil, "op"))
}

func TestAccountTxStatementsShareUnitDeadline(t *testing.T) {
	deadline := time.Now().Add(2 * time.Second)
	atx := &pgAccountTx{accountID: "acc-1", deadline: deadline}

	// a request context without a deadline picks up the unit's
	ctx, cancel := atx.bound(context.Background())
	defer cancel()
	got, ok := ctx.Deadline()
	require.True(t, ok)
	assert.Equal(t, deadline, got)

	// a tighter caller deadline is kept
	tight, cancelTight := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelTight()
	ctx, cancel = atx.bound(tight)
	defer cancel()
	got, _ = ctx.Deadline()
	assert.True(t, got.Before(deadline))
}
