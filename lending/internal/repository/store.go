package repository

import (
	"context"

	"github.com/Astemirdum/lending-service/lending/internal/model"
)

// Tx is the view of the store inside one transaction. Every state check and
// state change of a lifecycle operation goes through a single Tx.
type Tx interface {
	GetItem(ctx context.Context, itemID string) (model.Item, error)
	Availability(ctx context.Context, itemID string) (model.Availability, error)
	// CompareAndSwapAvailability sets next only if the current flag equals expected.
	CompareAndSwapAvailability(ctx context.Context, itemID string, expected, next model.Availability) (bool, error)

	GetRequest(ctx context.Context, requestID string) (model.BorrowRequest, error)
	HasPendingRequest(ctx context.Context, itemID, borrowerID string) (bool, error)
	InsertRequest(ctx context.Context, req model.BorrowRequest) error
	ListRequestsByItem(ctx context.Context, itemID string, state model.RequestState) ([]model.BorrowRequest, error)
	// UpdateRequestState applies t only if the request is still in t.From.
	UpdateRequestState(ctx context.Context, requestID string, t model.Transition) (bool, error)

	InsertHistory(ctx context.Context, rec model.LoanHistoryRecord) error
}

type Reader interface {
	GetItem(ctx context.Context, itemID string) (model.Item, error)
	ListItemsByOwner(ctx context.Context, ownerID string) ([]model.Item, error)
	ListLendableItems(ctx context.Context, f model.ItemFilter) ([]model.Item, error)

	GetRequest(ctx context.Context, requestID string) (model.BorrowRequest, error)
	ListRequestsByItem(ctx context.Context, itemID string, state model.RequestState) ([]model.BorrowRequest, error)
	ListRequestsByBorrower(ctx context.Context, borrowerID string) ([]model.BorrowRequest, error)
	// ListStartingBy returns accepted requests whose start date is on or before day.
	ListStartingBy(ctx context.Context, day model.Date) ([]model.BorrowRequest, error)
	// ListEndingBefore returns active requests whose end date is before day.
	ListEndingBefore(ctx context.Context, day model.Date) ([]model.BorrowRequest, error)

	GetHistory(ctx context.Context, requestID string) (model.LoanHistoryRecord, error)
	ListHistoryByOwner(ctx context.Context, ownerID string) ([]model.LoanHistoryRecord, error)
	RatingSummary(ctx context.Context, ownerID string) (model.RatingSummary, error)

	GetLocation(ctx context.Context, actorID string) (model.Location, error)
	GetLocations(ctx context.Context, actorIDs []string) (map[string]model.Location, error)
}

type Store interface {
	Reader
	CreateItem(ctx context.Context, item model.Item) error
	UpsertLocation(ctx context.Context, loc model.Location) error
	// SetRating fills a missing rating; false means it was already set.
	SetRating(ctx context.Context, requestID string, rating int) (bool, error)

	// InTx runs fn in one serializable transaction. A returned error rolls back.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
