package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestTransactionRequest_Transitions(t *testing.T) {
	tests := []struct {
		name          string
		status        domain.RequestStatus
		wantApprove   error
		wantSettleErr error
	}{
		{name: "pending", status: domain.StatusPending, wantApprove: nil, wantSettleErr: apperrors.ErrRequestNotPending},
		{name: "approved", status: domain.StatusApproved, wantApprove: apperrors.ErrInvalidTransition, wantSettleErr: nil},
		{name: "settled", status: domain.StatusSettled, wantApprove: apperrors.ErrAlreadyResolved, wantSettleErr: apperrors.ErrRequestNotPending},
		{name: "rejected", status: domain.StatusRejected, wantApprove: apperrors.ErrAlreadyResolved, wantSettleErr: apperrors.ErrRequestNotPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.TransactionRequest{RequestID: "req-1", Status: tt.status}

			if tt.wantApprove == nil {
				assert.NoError(t, req.CheckApprovable())
				assert.NoError(t, req.CheckRejectable())
			} else {
				assert.ErrorIs(t, req.CheckApprovable(), tt.wantApprove)
				assert.ErrorIs(t, req.CheckRejectable(), tt.wantApprove)
			}

			if tt.wantSettleErr == nil {
				assert.NoError(t, req.CheckSettleable())
			} else {
				assert.ErrorIs(t, req.CheckSettleable(), tt.wantSettleErr)
			}
		})
	}
}

func TestTransactionRequest_RejectSetsReason(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	req := domain.TransactionRequest{RequestID: "req-1", Status: domain.StatusPending}

	req.Reject("acc-1", domain.ReasonCancelledByUser, "", now)

	assert.Equal(t, domain.StatusRejected, req.Status)
	assert.Equal(t, domain.ReasonCancelledByUser, req.RejectionReason)
	assert.Equal(t, "acc-1", req.ResolvedBy)
	assert.Equal(t, now, *req.ResolvedAt)
	assert.True(t, req.Status.IsTerminal())
}

func TestRequestKind_IsDebit(t *testing.T) {
	assert.False(t, domain.KindDeposit.IsDebit())
	assert.True(t, domain.KindWithdrawal.IsDebit())
	assert.True(t, domain.KindInvestment.IsDebit())
	assert.False(t, domain.RequestKind("transfer").IsValid())
}
