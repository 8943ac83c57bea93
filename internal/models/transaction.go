package models

import "time"

// TransactionRequest mirrors a row of the transaction_requests table.
// Nullable columns are pointers so they scan NULL without sql.Null* wrappers.
type TransactionRequest struct {
	RequestID       string     `db:"request_id"`
	AccountID       string     `db:"account_id"`
	Kind            string     `db:"kind"`
	Currency        string     `db:"currency"`
	Amount          int64      `db:"amount"`
	Status          string     `db:"status"`
	IdempotencyKey  *string    `db:"idempotency_key"`
	Destination     *string    `db:"destination"`
	DepositAddress  *string    `db:"deposit_address"`
	ProofRef        *string    `db:"proof_ref"`
	PlanID          *string    `db:"plan_id"`
	ApprovedAt      *time.Time `db:"approved_at"`
	ApprovedBy      *string    `db:"approved_by"`
	ResolvedAt      *time.Time `db:"resolved_at"`
	ResolvedBy      *string    `db:"resolved_by"`
	RejectionReason *string    `db:"rejection_reason"`
	RejectionDetail *string    `db:"rejection_detail"`
	AuditFields
}
