package domain

import "time"

// EventType names a domain event emitted after a state change commits.
type EventType string

const (
	EventRequestCreated       EventType = "request.created"
	EventRequestSettled       EventType = "request.settled"
	EventRequestRejected      EventType = "request.rejected"
	EventLedgerAdjusted       EventType = "ledger.adjusted"
	EventInvestmentStarted    EventType = "investment.started"
	EventInvestmentCompleted  EventType = "investment.completed"
	EventInvestmentCancelled  EventType = "investment.cancelled"
	EventInvestmentReturnPaid EventType = "investment.return_paid"
)

// Event is the payload delivered to subscribers.
type Event struct {
	Type        EventType
	AccountID   string
	ReferenceID string // request, position or entry id
	Currency    Currency
	Amount      int64
	Reason      string // rejection reason for request.rejected
	ActorID     string
	OccurredAt  time.Time
}
