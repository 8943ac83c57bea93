package dto

import (
	"time"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/SscSPs/coinvest_backend/internal/utils"
)

// CreateDepositRequest defines the data needed to open a deposit request.
type CreateDepositRequest struct {
	Currency       string `json:"currency" binding:"required,currency"`
	Amount         int64  `json:"amount" binding:"required,gt=0"` // minor units
	ProofRef       string `json:"proofRef" binding:"max=512"`     // Optional
	IdempotencyKey string `json:"idempotencyKey" binding:"max=128"`
}

// CreateWithdrawalRequest defines the data needed to open a withdrawal request.
type CreateWithdrawalRequest struct {
	Currency       string `json:"currency" binding:"required,currency"`
	Amount         int64  `json:"amount" binding:"required,gt=0"`
	Destination    string `json:"destination" binding:"required,max=256"`
	IdempotencyKey string `json:"idempotencyKey" binding:"max=128"`
}

// CreateInvestmentRequest defines the data needed to open an investment request.
type CreateInvestmentRequest struct {
	PlanID         string `json:"planID" binding:"required"`
	Currency       string `json:"currency" binding:"required,currency"`
	Amount         int64  `json:"amount" binding:"required,gt=0"`
	IdempotencyKey string `json:"idempotencyKey" binding:"max=128"`
}

// RejectRequest carries the admin's reason for rejecting a request.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=512"`
}

// AdjustBalanceRequest defines an admin balance correction.
type AdjustBalanceRequest struct {
	AccountID string           `json:"accountID" binding:"required"`
	Currency  string           `json:"currency" binding:"required,currency"`
	Amount    int64            `json:"amount" binding:"required,gt=0"`
	Direction domain.Direction `json:"direction" binding:"required,oneof=credit debit"`
	Memo      string           `json:"memo" binding:"required,max=512"`
}

// ListRequestsParams defines query parameters for listing requests.
type ListRequestsParams struct {
	AccountID string `form:"accountID"`
	Status    string `form:"status" binding:"omitempty,oneof=pending approved rejected settled"`
	Kind      string `form:"kind" binding:"omitempty,oneof=deposit withdrawal investment"`
	Limit     int    `form:"limit,default=20" binding:"min=1,max=100"`
	Offset    int    `form:"offset,default=0" binding:"min=0"`
}

// TransactionRequestResponse defines the data returned for a request.
type TransactionRequestResponse struct {
	RequestID       string     `json:"requestID"`
	AccountID       string     `json:"accountID"`
	Kind            string     `json:"kind"`
	Currency        string     `json:"currency"`
	Amount          int64      `json:"amount"`
	DisplayAmount   string     `json:"displayAmount"`
	Status          string     `json:"status"`
	Destination     string     `json:"destination,omitempty"`
	DepositAddress  string     `json:"depositAddress,omitempty"`
	ProofRef        string     `json:"proofRef,omitempty"`
	PlanID          string     `json:"planID,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	RejectionDetail string     `json:"rejectionDetail,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy      string     `json:"resolvedBy,omitempty"`
}

// ToTransactionRequestResponse converts a domain.TransactionRequest to its response DTO
func ToTransactionRequestResponse(req *domain.TransactionRequest) TransactionRequestResponse {
	return TransactionRequestResponse{
		RequestID:       req.RequestID,
		AccountID:       req.AccountID,
		Kind:            string(req.Kind),
		Currency:        string(req.Currency),
		Amount:          req.Amount,
		DisplayAmount:   utils.FormatMinorUnits(req.Amount, req.Currency),
		Status:          string(req.Status),
		Destination:     req.Destination,
		DepositAddress:  req.DepositAddress,
		ProofRef:        req.ProofRef,
		PlanID:          req.PlanID,
		RejectionReason: req.RejectionReason,
		RejectionDetail: req.RejectionDetail,
		CreatedAt:       req.CreatedAt,
		ResolvedAt:      req.ResolvedAt,
		ResolvedBy:      req.ResolvedBy,
	}
}

// ToListTransactionRequestResponse converts a slice of requests.
func ToListTransactionRequestResponse(reqs []domain.TransactionRequest) []TransactionRequestResponse {
	res := make([]TransactionRequestResponse, len(reqs))
	for i := range reqs {
		res[i] = ToTransactionRequestResponse(&reqs[i])
	}
	return res
}

// SettlementResponse is returned by approve and settle endpoints.
type SettlementResponse struct {
	Request TransactionRequestResponse `json:"request"`
	Entries []LedgerEntryResponse      `json:"entries"`
}
