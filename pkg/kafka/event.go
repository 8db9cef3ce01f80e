package kafka

import "time"

type EventType string

const (
	EventRequestCreated  EventType = "REQUEST_CREATED"
	EventRequestAccepted EventType = "REQUEST_ACCEPTED"
	EventRequestRejected EventType = "REQUEST_REJECTED"
	EventLoanStarted     EventType = "LOAN_STARTED"
	EventLoanCompleted   EventType = "LOAN_COMPLETED"
	EventLoanDisputed    EventType = "LOAN_DISPUTED"
	EventLoanRated       EventType = "LOAN_RATED"
	// EventSettlementDue triggers the payment collaborator; Amount is in minor units.
	EventSettlementDue EventType = "SETTLEMENT_DUE"
)

// LendingEvent is emitted after a lifecycle transition has been committed.
type LendingEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	RequestID  string    `json:"requestId"`
	ItemID     string    `json:"itemId"`
	OwnerID    string    `json:"ownerId"`
	BorrowerID string    `json:"borrowerId"`
	ActorID    string    `json:"actorId,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	Rating     *int      `json:"rating,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
