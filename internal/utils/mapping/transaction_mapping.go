package mapping

import (
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/SscSPs/coinvest_backend/internal/models"
)

// ToModelTransactionRequest converts a domain TransactionRequest to its row form
func ToModelTransactionRequest(d domain.TransactionRequest) models.TransactionRequest {
	return models.TransactionRequest{
		RequestID:       d.RequestID,
		AccountID:       d.AccountID,
		Kind:            string(d.Kind),
		Currency:        string(d.Currency),
		Amount:          d.Amount,
		Status:          string(d.Status),
		IdempotencyKey:  nullable(d.IdempotencyKey),
		Destination:     nullable(d.Destination),
		DepositAddress:  nullable(d.DepositAddress),
		ProofRef:        nullable(d.ProofRef),
		PlanID:          nullable(d.PlanID),
		ApprovedAt:      d.ApprovedAt,
		ApprovedBy:      nullable(d.ApprovedBy),
		ResolvedAt:      d.ResolvedAt,
		ResolvedBy:      nullable(d.ResolvedBy),
		RejectionReason: nullable(d.RejectionReason),
		RejectionDetail: nullable(d.RejectionDetail),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransactionRequest converts a row to a domain TransactionRequest
func ToDomainTransactionRequest(m models.TransactionRequest) domain.TransactionRequest {
	return domain.TransactionRequest{
		RequestID:       m.RequestID,
		AccountID:       m.AccountID,
		Kind:            domain.RequestKind(m.Kind),
		Currency:        domain.Currency(m.Currency),
		Amount:          m.Amount,
		Status:          domain.RequestStatus(m.Status),
		IdempotencyKey:  deref(m.IdempotencyKey),
		Destination:     deref(m.Destination),
		DepositAddress:  deref(m.DepositAddress),
		ProofRef:        deref(m.ProofRef),
		PlanID:          deref(m.PlanID),
		ApprovedAt:      m.ApprovedAt,
		ApprovedBy:      deref(m.ApprovedBy),
		ResolvedAt:      m.ResolvedAt,
		ResolvedBy:      deref(m.ResolvedBy),
		RejectionReason: deref(m.RejectionReason),
		RejectionDetail: deref(m.RejectionDetail),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
