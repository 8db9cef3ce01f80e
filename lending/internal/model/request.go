package model

import (
	"time"
)

type RequestState string

const (
	StatePending   RequestState = "PENDING"
	StateAccepted  RequestState = "ACCEPTED"
	StateActive    RequestState = "ACTIVE"
	StateRejected  RequestState = "REJECTED"
	StateCompleted RequestState = "COMPLETED"
	StateDisputed  RequestState = "DISPUTED"
)

func (s RequestState) Terminal() bool {
	switch s {
	case StateRejected, StateCompleted, StateDisputed:
		return true
	}
	return false
}

// Occupying states hold the item reservation.
func (s RequestState) Occupying() bool {
	return s == StateAccepted || s == StateActive
}

type BorrowRequest struct {
	ID         string       `json:"id"`
	ItemID     string       `json:"itemId"`
	OwnerID    string       `json:"ownerId"`
	BorrowerID string       `json:"borrowerId"`
	StartDate  Date         `json:"startDate"`
	EndDate    Date         `json:"endDate"`
	Note       string       `json:"note,omitempty"`
	Fee        int64        `json:"fee"`
	State      RequestState `json:"state"`
	Reason     string       `json:"reason,omitempty"`
	ClosedBy   string       `json:"closedBy,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Days is the loan length, at least one.
func (r BorrowRequest) Days() int {
	if n := r.StartDate.DaysUntil(r.EndDate); n > 1 {
		return n
	}
	return 1
}

// Settlement is the fee owed for the whole loan, in minor units.
func (r BorrowRequest) Settlement() int64 {
	return r.Fee * int64(r.Days())
}

func (r BorrowRequest) IsParty(actorID string) bool {
	return actorID == r.OwnerID || actorID == r.BorrowerID
}

type CreateBorrowRequest struct {
	ItemID     string `json:"itemId" validate:"required"`
	BorrowerID string `json:"-" validate:"required"`
	StartDate  Date   `json:"startDate"`
	EndDate    Date   `json:"endDate"`
	Note       string `json:"note" validate:"max=1000"`
}

// Transition describes one state change applied by the lifecycle.
type Transition struct {
	From     RequestState
	To       RequestState
	Reason   string
	ClosedBy string
	At       time.Time
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type DisputeRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// CompleteRequest may carry the actual return date; today is used when it is empty.
type CompleteRequest struct {
	ReturnDate Date `json:"returnDate"`
}
