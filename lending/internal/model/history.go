package model

import (
	"time"
)

type HistoryStatus string

const (
	HistoryCompleted HistoryStatus = "COMPLETED"
	HistoryDisputed  HistoryStatus = "DISPUTED"
)

// LoanHistoryRecord is written once per closed loan. Only a missing rating may be filled in later.
type LoanHistoryRecord struct {
	RequestID  string        `json:"requestId"`
	ItemID     string        `json:"itemId"`
	OwnerID    string        `json:"ownerId"`
	BorrowerID string        `json:"borrowerId"`
	ReturnDate Date          `json:"returnDate"`
	Rating     *int          `json:"rating,omitempty"`
	Status     HistoryStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
}

type RatingSummary struct {
	Count int64 `db:"cnt"`
	Sum   int64 `db:"total"`
}

type OwnerRating struct {
	OwnerID string  `json:"ownerId"`
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type RateRequest struct {
	Rating *int `json:"rating" validate:"required,min=0,max=5"`
}
