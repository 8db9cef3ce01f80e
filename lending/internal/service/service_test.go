package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/geo"
	"github.com/Astemirdum/lending-service/lending/internal/ledger"
	"github.com/Astemirdum/lending-service/lending/internal/lifecycle"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/recommend"
	"github.com/Astemirdum/lending-service/lending/internal/repository/memstore"
	"github.com/Astemirdum/lending-service/pkg/geocoder"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

type noGeocoder struct{}

func (noGeocoder) Search(context.Context, string) (geocoder.Place, error) {
	return geocoder.Place{}, errors.New("offline")
}

func (noGeocoder) Reverse(context.Context, float64, float64) (geocoder.Place, error) {
	return geocoder.Place{}, errors.New("offline")
}

type events struct {
	mu  sync.Mutex
	got []kafka.LendingEvent
}

func (e *events) Publish(_ context.Context, ev kafka.LendingEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, ev)
	return nil
}

func newService(t *testing.T) (*Service, *memstore.Store, *events) {
	t.Helper()
	store := memstore.New()
	pub := &events{}
	clock := func() time.Time { return now }
	l := ledger.New(store, zap.NewNop())
	lc := lifecycle.New(store, l, zap.NewNop(), lifecycle.WithClock(clock), lifecycle.WithPublisher(pub))
	ix := geo.NewIndex(store, noGeocoder{}, zap.NewNop(), geo.WithClock(clock))
	return NewService(store, lc, l, ix, zap.NewNop(), WithClock(clock), WithPublisher(pub)), store, pub
}

func coord(lat, lon float64) model.UpdateLocationRequest {
	return model.UpdateLocationRequest{Address: "somewhere", Latitude: &lat, Longitude: &lon}
}

func TestService_Recommendations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, _ := newService(t)

	_, err := svc.UpdateLocation(ctx, "alice", coord(55.7558, 37.6173))
	require.NoError(t, err)

	mine, err := svc.CreateItem(ctx, model.CreateItemRequest{OwnerID: "bob", Name: "own kite", Condition: model.ConditionNew})
	require.NoError(t, err)
	bike, err := svc.CreateItem(ctx, model.CreateItemRequest{OwnerID: "alice", Name: "bike", Condition: model.ConditionUsed, Fee: 100})
	require.NoError(t, err)
	reserved := model.Item{ID: "reserved", OwnerID: "alice", Availability: model.Reserved, CreatedAt: now}
	require.NoError(t, store.CreateItem(ctx, reserved))

	t.Run("requester without coordinate still sees items", func(t *testing.T) {
		page, err := svc.Recommendations(ctx, "bob", recommend.Query{})
		require.NoError(t, err)
		require.Equal(t, 1, page.TotalElements)
		require.Equal(t, recommend.DefaultPageSize, page.PageSize)
		require.Len(t, page.Items, 1)
		require.Equal(t, bike.ID, page.Items[0].Item.ID)
		require.False(t, page.Items[0].Distance.Known())
	})

	t.Run("own items are excluded", func(t *testing.T) {
		page, err := svc.Recommendations(ctx, "alice", recommend.Query{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		require.Equal(t, mine.ID, page.Items[0].Item.ID)
	})

	t.Run("distance known when both sides have coordinates", func(t *testing.T) {
		_, err := svc.UpdateLocation(ctx, "bob", coord(59.9343, 30.3351))
		require.NoError(t, err)
		page, err := svc.Recommendations(ctx, "bob", recommend.Query{Filter: model.ItemFilter{Name: "BIK"}})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		km, ok := page.Items[0].Distance.Kilometers()
		require.True(t, ok)
		require.InDelta(t, 633, km, 1)
	})
}

func TestService_ItemRequestsAndDistance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newService(t)

	item, err := svc.CreateItem(ctx, model.CreateItemRequest{OwnerID: "alice", Name: "bike", Condition: model.ConditionUsed})
	require.NoError(t, err)
	require.Equal(t, model.Lendable, item.Availability)
	require.NotNil(t, item.ImageURLs)

	req, err := svc.CreateRequest(ctx, model.CreateBorrowRequest{
		ItemID: item.ID, BorrowerID: "bob",
		StartDate: model.DayOf(now).AddDays(1), EndDate: model.DayOf(now).AddDays(2),
	})
	require.NoError(t, err)

	_, err = svc.ListItemRequests(ctx, item.ID, "bob")
	require.ErrorIs(t, err, errs.ErrNotOwner)
	reqs, err := svc.ListItemRequests(ctx, item.ID, "alice")
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	_, err = svc.GetRequest(ctx, req.ID, "mallory")
	require.ErrorIs(t, err, errs.ErrNotParticipant)
	got, err := svc.GetRequest(ctx, req.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, req.ID, got.ID)

	d, err := svc.ItemDistance(ctx, item.ID, "bob")
	require.NoError(t, err)
	require.False(t, d.Known())
}

func TestService_RateLoan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, pub := newService(t)

	item, err := svc.CreateItem(ctx, model.CreateItemRequest{OwnerID: "alice", Name: "bike", Condition: model.ConditionUsed, Fee: 10})
	require.NoError(t, err)
	req, err := svc.CreateRequest(ctx, model.CreateBorrowRequest{
		ItemID: item.ID, BorrowerID: "bob",
		StartDate: model.DayOf(now), EndDate: model.DayOf(now).AddDays(2),
	})
	require.NoError(t, err)
	_, err = svc.AcceptRequest(ctx, req.ID, "alice")
	require.NoError(t, err)
	_, err = svc.CompleteRequest(ctx, req.ID, "bob", model.Date{})
	require.NoError(t, err)

	rec, err := svc.RateLoan(ctx, req.ID, "bob", 4)
	require.NoError(t, err)
	require.Equal(t, 4, *rec.Rating)

	rating, err := svc.OwnerRating(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 4.0, rating.Average)

	history, err := svc.OwnerHistory(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 1)

	pub.mu.Lock()
	last := pub.got[len(pub.got)-1]
	pub.mu.Unlock()
	require.Equal(t, kafka.EventLoanRated, last.Type)
	require.Equal(t, 4, *last.Rating)
}
