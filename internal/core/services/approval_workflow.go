package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
)

const sweepBatchSize = 100

// approvalWorkflow moves requests through pending → approved → settled, or
// to rejected. Settlement itself is delegated to the coordinator.
type approvalWorkflow struct {
	BaseService
	uow       portsrepo.UnitOfWork
	requests  portsrepo.RequestReader
	settler   portssvc.TransactionSettlerSvc
	autoKinds map[domain.RequestKind]bool
}

// NewApprovalWorkflow creates the workflow. Requests whose kind is listed in
// autoApproveKinds are approved by the system actor right after creation.
func NewApprovalWorkflow(uow portsrepo.UnitOfWork, requests portsrepo.RequestReader, settler portssvc.TransactionSettlerSvc, autoApproveKinds []domain.RequestKind, options ...ServiceOption) portssvc.ApprovalWorkflowSvc {
	svc := &approvalWorkflow{
		BaseService: newBaseService(),
		uow:         uow,
		requests:    requests,
		settler:     settler,
		autoKinds:   make(map[domain.RequestKind]bool, len(autoApproveKinds)),
	}
	for _, k := range autoApproveKinds {
		if k.IsValid() {
			svc.autoKinds[k] = true
		}
	}
	applyOptions(&svc.BaseService, options)
	return svc
}

var _ portssvc.ApprovalWorkflowSvc = (*approvalWorkflow)(nil)

// ParseRequestKinds converts configured kind names, ignoring unknown ones.
func ParseRequestKinds(names []string) []domain.RequestKind {
	kinds := make([]domain.RequestKind, 0, len(names))
	for _, n := range names {
		if k := domain.RequestKind(n); k.IsValid() {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (s *approvalWorkflow) Approve(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, []domain.LedgerEntry, error) {
	if err := s.RequireAdmin(ctx, actor, "approve request"); err != nil {
		return nil, nil, err
	}
	_, err := s.transition(ctx, requestID, func(req *domain.TransactionRequest) error {
		if err := req.CheckApprovable(); err != nil {
			return err
		}
		req.Approve(actor.AccountID, s.now())
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.LogInfo(ctx, "Request approved", slog.String("request_id", requestID))

	// A failure from here on leaves the request approved; RetrySettlement and
	// the sweeper pick it up again.
	return s.settler.Settle(ctx, actor, requestID)
}

func (s *approvalWorkflow) Reject(ctx context.Context, actor domain.Actor, requestID string, reason string) (*domain.TransactionRequest, error) {
	if err := s.RequireAdmin(ctx, actor, "reject request"); err != nil {
		return nil, err
	}
	req, err := s.transition(ctx, requestID, func(req *domain.TransactionRequest) error {
		if err := req.CheckRejectable(); err != nil {
			return err
		}
		req.Reject(actor.AccountID, domain.ReasonAdminRejected, reason, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Request rejected", slog.String("request_id", requestID))
	s.publish(ctx, requestEvent(domain.EventRequestRejected, req, actor))
	return req, nil
}

func (s *approvalWorkflow) Cancel(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, error) {
	stored, err := s.requests.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if stored.AccountID != actor.AccountID {
		return nil, fmt.Errorf("%w: only the owner may cancel request %s", apperrors.ErrForbidden, requestID)
	}
	req, err := s.transition(ctx, requestID, func(req *domain.TransactionRequest) error {
		if err := req.CheckRejectable(); err != nil {
			return err
		}
		req.Reject(actor.AccountID, domain.ReasonCancelledByUser, "", s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Request cancelled by owner", slog.String("request_id", requestID))
	s.publish(ctx, requestEvent(domain.EventRequestRejected, req, actor))
	return req, nil
}

func (s *approvalWorkflow) RetrySettlement(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, []domain.LedgerEntry, error) {
	if err := s.RequireAdmin(ctx, actor, "retry settlement"); err != nil {
		return nil, nil, err
	}
	return s.settler.Settle(ctx, actor, requestID)
}

func (s *approvalWorkflow) AutoApprove(ctx context.Context, req *domain.TransactionRequest) (*domain.TransactionRequest, error) {
	if req == nil || !s.autoKinds[req.Kind] {
		return req, nil
	}
	s.LogDebug(ctx, "Auto-approving request",
		slog.String("request_id", req.RequestID),
		slog.String("kind", string(req.Kind)))
	approved, _, err := s.Approve(ctx, domain.SystemActor(), req.RequestID)
	return approved, err
}

// SweepApproved settles requests that have sat in approved for longer than
// olderThan. It returns how many reached a terminal state.
func (s *approvalWorkflow) SweepApproved(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)
	resolved, candidates := 0, 0
	system := domain.SystemActor()
	afterID := ""
	for {
		stuck, err := s.requests.ListApprovedBefore(ctx, cutoff, afterID, sweepBatchSize)
		if err != nil {
			s.LogError(ctx, err, "Failed to list approved requests", slog.String("after", afterID))
			return resolved, err
		}
		for _, req := range stuck {
			if err := ctx.Err(); err != nil {
				return resolved, err
			}
			_, _, err := s.settler.Settle(ctx, system, req.RequestID)
			switch {
			case err == nil, errors.Is(err, apperrors.ErrInsufficientFunds):
				resolved++
			case errors.Is(err, apperrors.ErrRequestNotPending):
				// settled by someone else since the listing
			default:
				s.LogError(ctx, err, "Sweeper could not settle request", slog.String("request_id", req.RequestID))
			}
		}
		candidates += len(stuck)
		if len(stuck) < sweepBatchSize {
			break
		}
		afterID = stuck[len(stuck)-1].RequestID
	}
	if candidates > 0 {
		s.LogInfo(ctx, "Settlement sweep finished",
			slog.Int("candidates", candidates),
			slog.Int("resolved", resolved))
	}
	return resolved, nil
}

// transition applies mutate to the request under its account's unit of work,
// guarded by a compare-and-swap on the status it was read in.
func (s *approvalWorkflow) transition(ctx context.Context, requestID string, mutate func(*domain.TransactionRequest) error) (*domain.TransactionRequest, error) {
	stored, err := s.requests.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	var result *domain.TransactionRequest
	err = s.uow.WithinAccount(ctx, stored.AccountID, func(tx portsrepo.AccountTx) error {
		req, err := tx.FindRequest(ctx, requestID)
		if err != nil {
			return err
		}
		from := req.Status
		if err := mutate(req); err != nil {
			return err
		}
		if err := tx.UpdateRequest(ctx, *req, from); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidTransition) || errors.Is(err, apperrors.ErrAlreadyResolved) {
			s.LogDebug(ctx, "Request transition refused",
				slog.String("request_id", requestID),
				slog.String("error", err.Error()))
		} else {
			s.LogError(ctx, err, "Request transition failed", slog.String("request_id", requestID))
		}
		return nil, err
	}
	return result, nil
}
