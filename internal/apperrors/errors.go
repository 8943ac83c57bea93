package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates that the caller identity is missing or invalid.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates that the caller is not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates that the operation conflicts with the current state of a resource.
var ErrConflict = errors.New("conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// Validation errors. Rejected before any state change.
var (
	ErrAccountNotFound     = &DomainError{Code: "account_not_found", Message: "account not found", Kind: ErrValidation}
	ErrUnsupportedCurrency = &DomainError{Code: "unsupported_currency", Message: "unsupported currency", Kind: ErrValidation}
	ErrInvalidAmount       = &DomainError{Code: "invalid_amount", Message: "amount must be a positive integer in minor units", Kind: ErrValidation}
	ErrAmountOutOfBounds   = &DomainError{Code: "amount_out_of_bounds", Message: "amount is outside the plan limits", Kind: ErrValidation}
	ErrPlanNotFound        = &DomainError{Code: "plan_not_found", Message: "investment plan not found", Kind: ErrValidation}
)

// Consistency errors. The request is left unchanged or moved to a terminal state.
var (
	ErrInsufficientFunds  = &DomainError{Code: "insufficient_funds", Message: "insufficient balance", Kind: ErrConflict}
	ErrRequestNotPending  = &DomainError{Code: "request_not_pending", Message: "request is not awaiting settlement", Kind: ErrConflict}
	ErrInvalidTransition  = &DomainError{Code: "invalid_transition", Message: "transition not allowed from current status", Kind: ErrConflict}
	ErrAlreadyResolved    = &DomainError{Code: "already_resolved", Message: "request already processed", Kind: ErrConflict}
	ErrPositionNotRunning = &DomainError{Code: "position_not_running", Message: "investment position is not running", Kind: ErrConflict}
)

// ErrImmutableLedger is returned by every attempt to modify or delete a ledger entry.
var ErrImmutableLedger = &DomainError{Code: "immutable_ledger", Message: "ledger entries cannot be modified or deleted", Kind: ErrInternal}

// ErrStoreUnavailable is a retryable infrastructure failure.
var ErrStoreUnavailable = &DomainError{Code: "store_unavailable", Message: "storage temporarily unavailable", Kind: ErrInternal, Retryable: true}

// DomainError is a sentinel carrying a stable reason code for callers.
type DomainError struct {
	Code      string
	Message   string
	Kind      error
	Retryable bool
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrValidation) match every validation-kind sentinel.
func (e *DomainError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// NewValidationError wraps ErrValidation with a message.
func NewValidationError(message string) error {
	return fmt.Errorf("%w: %s", ErrValidation, message)
}

// ReasonCode returns the stable reason code carried by err, or a generic code
// derived from the base sentinels.
func ReasonCode(err error) string {
	if err == nil {
		return ""
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	}
	return "internal_error"
}

// IsRetryable reports whether err is a transient infrastructure failure.
func IsRetryable(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Retryable
	}
	return false
}
