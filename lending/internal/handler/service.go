package handler

import (
	"context"

	"github.com/Astemirdum/lending-service/lending/internal/geo"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/recommend"
	"github.com/Astemirdum/lending-service/lending/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LendingService interface {
	CreateItem(ctx context.Context, req model.CreateItemRequest) (model.Item, error)
	GetItem(ctx context.Context, itemID string) (model.Item, error)
	ListOwnItems(ctx context.Context, ownerID string) ([]model.Item, error)
	ListItemRequests(ctx context.Context, itemID, actorID string) ([]model.BorrowRequest, error)
	ItemDistance(ctx context.Context, itemID, actorID string) (geo.Distance, error)

	CreateRequest(ctx context.Context, req model.CreateBorrowRequest) (model.BorrowRequest, error)
	GetRequest(ctx context.Context, requestID, actorID string) (model.BorrowRequest, error)
	ListOwnRequests(ctx context.Context, borrowerID string) ([]model.BorrowRequest, error)
	AcceptRequest(ctx context.Context, requestID, lenderID string) (model.BorrowRequest, error)
	RejectRequest(ctx context.Context, requestID, lenderID, reason string) (model.BorrowRequest, error)
	CompleteRequest(ctx context.Context, requestID, actorID string, returnDate model.Date) (model.BorrowRequest, error)
	DisputeRequest(ctx context.Context, requestID, actorID, reason string) (model.BorrowRequest, error)

	RateLoan(ctx context.Context, requestID, actorID string, rating int) (model.LoanHistoryRecord, error)
	OwnerRating(ctx context.Context, ownerID string) (model.OwnerRating, error)
	OwnerHistory(ctx context.Context, ownerID string) ([]model.LoanHistoryRecord, error)

	GetLocation(ctx context.Context, actorID string) (model.Location, error)
	UpdateLocation(ctx context.Context, actorID string, req model.UpdateLocationRequest) (model.Location, error)

	Recommendations(ctx context.Context, requesterID string, q recommend.Query) (recommend.PageResult, error)
}

var _ LendingService = (*service.Service)(nil)
