package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/availability"
	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/geo"
	"github.com/Astemirdum/lending-service/lending/internal/ledger"
	"github.com/Astemirdum/lending-service/lending/internal/lifecycle"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/recommend"
	"github.com/Astemirdum/lending-service/lending/internal/repository"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	store     repository.Store
	lc        *lifecycle.Lifecycle
	ledger    *ledger.Ledger
	geo       *geo.Index
	publisher lifecycle.Publisher
	now       func() time.Time
	log       *zap.Logger
}

type Option func(s *Service)

func WithPublisher(p lifecycle.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store repository.Store, lc *lifecycle.Lifecycle, ledger *ledger.Ledger, ix *geo.Index, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		lc:     lc,
		ledger: ledger,
		geo:    ix,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// items

func (s *Service) CreateItem(ctx context.Context, req model.CreateItemRequest) (model.Item, error) {
	now := s.now().UTC()
	item := model.Item{
		ID:           uuid.NewString(),
		OwnerID:      req.OwnerID,
		Name:         req.Name,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		Condition:    req.Condition,
		SuitableAge:  req.SuitableAge,
		Fee:          req.Fee,
		Value:        req.Value,
		ImageURLs:    req.ImageURLs,
		Availability: model.Lendable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if item.ImageURLs == nil {
		item.ImageURLs = []string{}
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return model.Item{}, err
	}
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	return s.store.GetItem(ctx, itemID)
}

func (s *Service) ListOwnItems(ctx context.Context, ownerID string) ([]model.Item, error) {
	return s.store.ListItemsByOwner(ctx, ownerID)
}

func (s *Service) ListItemRequests(ctx context.Context, itemID, actorID string) ([]model.BorrowRequest, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actorID {
		return nil, errs.ErrNotOwner
	}
	return s.store.ListRequestsByItem(ctx, itemID, "")
}

// ItemDistance is the distance from the actor to the owner of the item.
func (s *Service) ItemDistance(ctx context.Context, itemID, actorID string) (geo.Distance, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return geo.Unknown, err
	}
	return s.geo.DistanceBetween(ctx, actorID, item.OwnerID)
}

// requests

func (s *Service) CreateRequest(ctx context.Context, req model.CreateBorrowRequest) (model.BorrowRequest, error) {
	return s.lc.Create(ctx, req)
}

func (s *Service) GetRequest(ctx context.Context, requestID, actorID string) (model.BorrowRequest, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return model.BorrowRequest{}, err
	}
	if !req.IsParty(actorID) {
		return model.BorrowRequest{}, errs.ErrNotParticipant
	}
	return req, nil
}

func (s *Service) ListOwnRequests(ctx context.Context, borrowerID string) ([]model.BorrowRequest, error) {
	return s.store.ListRequestsByBorrower(ctx, borrowerID)
}

func (s *Service) AcceptRequest(ctx context.Context, requestID, lenderID string) (model.BorrowRequest, error) {
	return s.lc.Accept(ctx, requestID, lenderID)
}

func (s *Service) RejectRequest(ctx context.Context, requestID, lenderID, reason string) (model.BorrowRequest, error) {
	return s.lc.Reject(ctx, requestID, lenderID, reason)
}

func (s *Service) CompleteRequest(ctx context.Context, requestID, actorID string, returnDate model.Date) (model.BorrowRequest, error) {
	return s.lc.Complete(ctx, requestID, actorID, returnDate)
}

func (s *Service) DisputeRequest(ctx context.Context, requestID, actorID, reason string) (model.BorrowRequest, error) {
	return s.lc.Dispute(ctx, requestID, actorID, reason)
}

// history

func (s *Service) RateLoan(ctx context.Context, requestID, actorID string, rating int) (model.LoanHistoryRecord, error) {
	rec, err := s.ledger.Rate(ctx, requestID, actorID, rating)
	if err != nil {
		return model.LoanHistoryRecord{}, err
	}
	if s.publisher != nil {
		ev := kafka.LendingEvent{
			ID:         uuid.NewString(),
			Type:       kafka.EventLoanRated,
			RequestID:  rec.RequestID,
			ItemID:     rec.ItemID,
			OwnerID:    rec.OwnerID,
			BorrowerID: rec.BorrowerID,
			ActorID:    actorID,
			Rating:     rec.Rating,
			Timestamp:  s.now().UTC(),
		}
		if err = s.publisher.Publish(ctx, ev); err != nil {
			s.log.Warn("publish rating", zap.String("request", requestID), zap.Error(err))
		}
	}
	return rec, nil
}

func (s *Service) OwnerRating(ctx context.Context, ownerID string) (model.OwnerRating, error) {
	return s.ledger.AverageRating(ctx, ownerID)
}

func (s *Service) OwnerHistory(ctx context.Context, ownerID string) ([]model.LoanHistoryRecord, error) {
	return s.ledger.OwnerHistory(ctx, ownerID)
}

// locations

func (s *Service) GetLocation(ctx context.Context, actorID string) (model.Location, error) {
	return s.geo.Location(ctx, actorID)
}

func (s *Service) UpdateLocation(ctx context.Context, actorID string, req model.UpdateLocationRequest) (model.Location, error) {
	return s.geo.Update(ctx, actorID, req)
}

// Recommendations ranks the lendable items of other owners for the requester.
func (s *Service) Recommendations(ctx context.Context, requesterID string, q recommend.Query) (recommend.PageResult, error) {
	q = q.Normalize()
	q.Filter.ExcludeOwnerID = requesterID

	var (
		items     []model.Item
		requester model.Location
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.store.ListLendableItems(gctx, q.Filter)
		if err != nil {
			return fmt.Errorf("ListLendableItems: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		requester, err = s.geo.Location(gctx, requesterID)
		return err
	})
	if err := g.Wait(); err != nil {
		return recommend.PageResult{}, err
	}

	owners := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.OwnerID]; !ok {
			seen[item.OwnerID] = struct{}{}
			owners = append(owners, item.OwnerID)
		}
	}
	coords, err := s.geo.Coordinates(ctx, owners)
	if err != nil {
		return recommend.PageResult{}, err
	}

	candidates := make([]recommend.Candidate, 0, len(items))
	for _, item := range items {
		if !availability.IsLendable(item.Availability) {
			continue
		}
		candidates = append(candidates, recommend.Candidate{Item: item, Owner: coords[item.OwnerID]})
	}

	seq := recommend.Rank(requester.Coordinate, candidates, q.Options)
	return recommend.PageResult{
		Page:          q.Page,
		PageSize:      q.Size,
		TotalElements: len(candidates),
		Items:         recommend.Page(seq, q.Offset(), q.Size),
	}, nil
}
