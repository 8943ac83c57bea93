package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/SscSPs/coinvest_backend/internal/core/services"
	"github.com/SscSPs/coinvest_backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ApprovalWorkflowTestSuite struct {
	suite.Suite
	env *ledgerEnv
	ctx context.Context
}

func (s *ApprovalWorkflowTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.env = newLedgerEnv()
	s.Require().NoError(s.env.register(s.ctx, userActor, otherActor))
}

func TestApprovalWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalWorkflowTestSuite))
}

func (s *ApprovalWorkflowTestSuite) deposit(amount int64) *domain.TransactionRequest {
	req, err := s.env.svc.Coordinator.RequestDeposit(s.ctx, userActor, dto.CreateDepositRequest{Currency: "EUR", Amount: amount})
	s.Require().NoError(err)
	return req
}

func (s *ApprovalWorkflowTestSuite) TestOnlyAdminsApproveAndReject() {
	req := s.deposit(100)

	_, _, err := s.env.svc.Workflow.Approve(s.ctx, userActor, req.RequestID)
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.env.svc.Workflow.Reject(s.ctx, userActor, req.RequestID, "no")
	s.ErrorIs(err, apperrors.ErrForbidden)

	stored, err := s.env.svc.Coordinator.GetRequest(s.ctx, userActor, req.RequestID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, stored.Status)
}

func (s *ApprovalWorkflowTestSuite) TestRejectRecordsReasonAndIsTerminal() {
	req := s.deposit(100)

	rejected, err := s.env.svc.Workflow.Reject(s.ctx, adminActor, req.RequestID, "proof unreadable")
	s.Require().NoError(err)
	s.Equal(domain.StatusRejected, rejected.Status)
	s.Equal(domain.ReasonAdminRejected, rejected.RejectionReason)
	s.Equal("proof unreadable", rejected.RejectionDetail)
	s.Equal("admin-1", rejected.ResolvedBy)
	s.NotNil(rejected.ResolvedAt)

	_, _, err = s.env.svc.Workflow.Approve(s.ctx, adminActor, req.RequestID)
	s.ErrorIs(err, apperrors.ErrAlreadyResolved)
	_, err = s.env.svc.Workflow.Reject(s.ctx, adminActor, req.RequestID, "again")
	s.ErrorIs(err, apperrors.ErrAlreadyResolved)

	balance, err := s.env.svc.Balance.GetBalance(s.ctx, "acc-1", domain.EUR)
	s.Require().NoError(err)
	s.Zero(balance)
}

func (s *ApprovalWorkflowTestSuite) TestRejectAfterSettlementIsRefused() {
	req := s.deposit(100)
	_, _, err := s.env.svc.Workflow.Approve(s.ctx, adminActor, req.RequestID)
	s.Require().NoError(err)

	_, err = s.env.svc.Workflow.Reject(s.ctx, adminActor, req.RequestID, "too late")
	s.ErrorIs(err, apperrors.ErrAlreadyResolved)
	s.Equal("already_resolved", apperrors.ReasonCode(err))

	_, _, err = s.env.svc.Workflow.Approve(s.ctx, adminActor, req.RequestID)
	s.ErrorIs(err, apperrors.ErrAlreadyResolved)
}

func (s *ApprovalWorkflowTestSuite) TestCancelByOwnerOnly() {
	req := s.deposit(100)

	_, err := s.env.svc.Workflow.Cancel(s.ctx, otherActor, req.RequestID)
	s.ErrorIs(err, apperrors.ErrForbidden)

	cancelled, err := s.env.svc.Workflow.Cancel(s.ctx, userActor, req.RequestID)
	s.Require().NoError(err)
	s.Equal(domain.StatusRejected, cancelled.Status)
	s.Equal(domain.ReasonCancelledByUser, cancelled.RejectionReason)

	_, err = s.env.svc.Workflow.Cancel(s.ctx, userActor, req.RequestID)
	s.ErrorIs(err, apperrors.ErrAlreadyResolved)
}

func (s *ApprovalWorkflowTestSuite) TestUnknownRequest() {
	_, _, err := s.env.svc.Workflow.Approve(s.ctx, adminActor, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ApprovalWorkflowTestSuite) TestAutoApproveConfiguredKinds() {
	env := newLedgerEnv("deposit")
	s.Require().NoError(env.register(s.ctx, userActor))

	dep, err := env.svc.Coordinator.RequestDeposit(s.ctx, userActor, dto.CreateDepositRequest{Currency: "USD", Amount: 800})
	s.Require().NoError(err)
	s.Equal(domain.StatusSettled, dep.Status)
	s.Equal(domain.SystemActorID, dep.ApprovedBy)

	// withdrawals still wait for a human
	wd, err := env.svc.Coordinator.RequestWithdrawal(s.ctx, userActor, dto.CreateWithdrawalRequest{
		Currency: "USD", Amount: 300, Destination: "IBAN DE00",
	})
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, wd.Status)

	balance, err := env.svc.Balance.GetBalance(s.ctx, "acc-1", domain.USD)
	s.Require().NoError(err)
	s.Equal(int64(800), balance)
}

func TestParseRequestKinds(t *testing.T) {
	kinds := services.ParseRequestKinds([]string{"investment", "transfer", "deposit"})
	assert.Equal(t, []domain.RequestKind{domain.KindInvestment, domain.KindDeposit}, kinds)
	assert.Empty(t, services.ParseRequestKinds(nil))
}
