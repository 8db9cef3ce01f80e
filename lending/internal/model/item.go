package model

import (
	"time"
)

type Availability string

const (
	// AvailabilityUnset marks an item whose lendability was never configured.
	AvailabilityUnset Availability = ""
	Lendable          Availability = "LENDABLE"
	Reserved          Availability = "RESERVED"
)

type Condition string

const (
	ConditionNew  Condition = "NEW"
	ConditionUsed Condition = "USED"
)

type AgeRange string

const (
	AgeToddler AgeRange = "0-3"
	AgeKid     AgeRange = "4-7"
	AgeChild   AgeRange = "8-12"
	AgeTeen    AgeRange = "12+"
)

type Item struct {
	ID           string       `json:"id" db:"id"`
	OwnerID      string       `json:"ownerId" db:"owner_id"`
	Name         string       `json:"name" db:"name"`
	Description  string       `json:"description" db:"description"`
	CategoryID   *string      `json:"categoryId,omitempty" db:"category_id"`
	Condition    Condition    `json:"condition" db:"condition"`
	SuitableAge  AgeRange     `json:"suitableAge" db:"suitable_age"`
	Fee          int64        `json:"fee" db:"fee"`
	Value        int64        `json:"value" db:"value"`
	ImageURLs    []string     `json:"imageUrls" db:"image_urls"`
	Availability Availability `json:"availability" db:"availability"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

type CreateItemRequest struct {
	OwnerID     string    `json:"-" validate:"required"`
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=4000"`
	CategoryID  *string   `json:"categoryId"`
	Condition   Condition `json:"condition" validate:"required,oneof=NEW USED"`
	SuitableAge AgeRange  `json:"suitableAge" validate:"omitempty,oneof=0-3 4-7 8-12 12+"`
	Fee         int64     `json:"fee" validate:"min=0"`
	Value       int64     `json:"value" validate:"min=0"`
	ImageURLs   []string  `json:"imageUrls" validate:"max=10,dive,url"`
}

// ItemFilter narrows the candidate set for recommendations. Empty fields match everything.
type ItemFilter struct {
	ExcludeOwnerID string
	Name           string
	CategoryID     string
	Condition      Condition
	AgeRange       AgeRange
}
