package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
)

// RequestKind is the business operation a TransactionRequest asks for.
type RequestKind string

const (
	KindDeposit    RequestKind = "deposit"
	KindWithdrawal RequestKind = "withdrawal"
	KindInvestment RequestKind = "investment"
)

func (k RequestKind) IsValid() bool {
	return k == KindDeposit || k == KindWithdrawal || k == KindInvestment
}

// IsDebit reports whether settling this kind removes funds from the balance.
func (k RequestKind) IsDebit() bool {
	return k == KindWithdrawal || k == KindInvestment
}

// RequestStatus is the approval state of a TransactionRequest.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
	StatusSettled  RequestStatus = "settled"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSettled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusSettled
}

// Rejection reason codes.
const (
	ReasonInsufficientFunds = "insufficient_funds"
	ReasonCancelledByUser   = "cancelled_by_user"
	ReasonAdminRejected     = "admin_rejected"
)

// TransactionRequest is a deposit, withdrawal or investment awaiting approval.
// It produces ledger entries exactly once, on the approved to settled transition.
type TransactionRequest struct {
	RequestID       string        `json:"requestID"`
	AccountID       string        `json:"accountID"`
	Kind            RequestKind   `json:"kind"`
	Currency        Currency      `json:"currency"`
	Amount          int64         `json:"amount"`
	Status          RequestStatus `json:"status"`
	IdempotencyKey  string        `json:"idempotencyKey,omitempty"`
	Destination     string        `json:"destination,omitempty"`    // withdrawal target
	DepositAddress  string        `json:"depositAddress,omitempty"` // crypto deposit address
	ProofRef        string        `json:"proofRef,omitempty"`       // deposit proof reference
	PlanID          string        `json:"planID,omitempty"`         // investment plan
	ApprovedAt      *time.Time    `json:"approvedAt,omitempty"`
	ApprovedBy      string        `json:"approvedBy,omitempty"`
	ResolvedAt      *time.Time    `json:"resolvedAt,omitempty"`
	ResolvedBy      string        `json:"resolvedBy,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	RejectionDetail string        `json:"rejectionDetail,omitempty"`
	AuditFields
}

// CheckApprovable returns nil if the request may move pending -> approved.
func (r *TransactionRequest) CheckApprovable() error {
	return r.checkFromPending("approve")
}

// CheckRejectable returns nil if the request may move pending -> rejected.
func (r *TransactionRequest) CheckRejectable() error {
	return r.checkFromPending("reject")
}

func (r *TransactionRequest) checkFromPending(op string) error {
	switch {
	case r.Status == StatusPending:
		return nil
	case r.Status.IsTerminal():
		return fmt.Errorf("%w: cannot %s request %s in status %s", apperrors.ErrAlreadyResolved, op, r.RequestID, r.Status)
	default:
		return fmt.Errorf("%w: cannot %s request %s in status %s", apperrors.ErrInvalidTransition, op, r.RequestID, r.Status)
	}
}

// CheckSettleable returns nil if the request may be settled.
func (r *TransactionRequest) CheckSettleable() error {
	if r.Status != StatusApproved {
		return fmt.Errorf("%w: request %s is %s", apperrors.ErrRequestNotPending, r.RequestID, r.Status)
	}
	return nil
}

// Approve moves the request to approved. It does not persist anything.
func (r *TransactionRequest) Approve(by string, at time.Time) {
	r.Status = StatusApproved
	r.ApprovedAt = &at
	r.ApprovedBy = by
	r.touch(by, at)
}

// Reject moves the request to rejected with a reason code and optional detail.
func (r *TransactionRequest) Reject(by, reason, detail string, at time.Time) {
	r.Status = StatusRejected
	r.RejectionReason = reason
	r.RejectionDetail = detail
	r.ResolvedAt = &at
	r.ResolvedBy = by
	r.touch(by, at)
}

// MarkSettled moves the request to settled.
func (r *TransactionRequest) MarkSettled(by string, at time.Time) {
	r.Status = StatusSettled
	r.ResolvedAt = &at
	r.ResolvedBy = by
	r.touch(by, at)
}

func (r *TransactionRequest) touch(by string, at time.Time) {
	r.LastUpdatedAt = at
	r.LastUpdatedBy = by
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	AccountID string
	Status    *RequestStatus
	Kind      *RequestKind
	Limit     int
	Offset    int
}
