package geo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/geo"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/pkg/geocoder"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type locationStore struct {
	mu   sync.Mutex
	locs map[string]model.Location
}

func (s *locationStore) GetLocation(_ context.Context, actorID string) (model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locs[actorID]
	if !ok {
		return model.Location{}, errs.ErrNotFound
	}
	return loc, nil
}

func (s *locationStore) GetLocations(_ context.Context, actorIDs []string) (map[string]model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]model.Location)
	for _, id := range actorIDs {
		if loc, ok := s.locs[id]; ok {
			out[id] = loc
		}
	}
	return out, nil
}

func (s *locationStore) UpsertLocation(_ context.Context, loc model.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locs[loc.ActorID] = loc
	return nil
}

type fakeGeocoder struct {
	place geocoder.Place
	err   error
}

func (g fakeGeocoder) Search(context.Context, string) (geocoder.Place, error) { return g.place, g.err }

func (g fakeGeocoder) Reverse(context.Context, float64, float64) (geocoder.Place, error) {
	return g.place, g.err
}

func ptr(v float64) *float64 { return &v }

func TestIndex_Update(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	moscow := geocoder.Place{Lat: 55.75, Lon: 37.61, DisplayName: "Moscow"}

	tests := []struct {
		name     string
		geocoder fakeGeocoder
		req      model.UpdateLocationRequest
		want     model.Location
		wantErr  error
	}{
		{
			name:     "address geocoded",
			geocoder: fakeGeocoder{place: moscow},
			req:      model.UpdateLocationRequest{Address: "Moscow"},
			want:     model.Location{ActorID: "u1", Address: "Moscow", Coordinate: &model.Coordinate{Lat: 55.75, Lon: 37.61}, UpdatedAt: now},
		},
		{
			name:     "geocoder down leaves coordinate unknown",
			geocoder: fakeGeocoder{err: errors.New("timeout")},
			req:      model.UpdateLocationRequest{Address: "Nowhere"},
			want:     model.Location{ActorID: "u1", Address: "Nowhere", UpdatedAt: now},
		},
		{
			name:     "coordinates reverse geocoded",
			geocoder: fakeGeocoder{place: moscow},
			req:      model.UpdateLocationRequest{Latitude: ptr(55.75), Longitude: ptr(37.61)},
			want:     model.Location{ActorID: "u1", Address: "Moscow", Coordinate: &model.Coordinate{Lat: 55.75, Lon: 37.61}, UpdatedAt: now},
		},
		{
			name:     "coordinates kept when reverse fails",
			geocoder: fakeGeocoder{err: geocoder.ErrNotFound},
			req:      model.UpdateLocationRequest{Latitude: ptr(1), Longitude: ptr(2)},
			want:     model.Location{ActorID: "u1", Coordinate: &model.Coordinate{Lat: 1, Lon: 2}, UpdatedAt: now},
		},
		{
			name:    "err. half coordinate",
			req:     model.UpdateLocationRequest{Latitude: ptr(1)},
			wantErr: errs.ErrInvalidLocation,
		},
		{
			name:    "err. empty",
			req:     model.UpdateLocationRequest{},
			wantErr: errs.ErrInvalidLocation,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := &locationStore{locs: map[string]model.Location{}}
			ix := geo.NewIndex(store, tt.geocoder, zap.NewNop(), geo.WithClock(func() time.Time { return now }))

			got, err := ix.Update(context.Background(), "u1", tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			stored, err := ix.Location(context.Background(), "u1")
			require.NoError(t, err)
			require.Equal(t, tt.want, stored)
		})
	}
}

func TestIndex_DistanceBetween(t *testing.T) {
	t.Parallel()
	store := &locationStore{locs: map[string]model.Location{
		"owner": {ActorID: "owner", Coordinate: &model.Coordinate{Lat: 55.75, Lon: 37.61}},
		"near":  {ActorID: "near", Coordinate: &model.Coordinate{Lat: 55.76, Lon: 37.62}},
	}}
	ix := geo.NewIndex(store, fakeGeocoder{}, zap.NewNop())

	d, err := ix.DistanceBetween(context.Background(), "near", "owner")
	require.NoError(t, err)
	km, ok := d.Kilometers()
	require.True(t, ok)
	require.Less(t, km, 2.0)

	d, err = ix.DistanceBetween(context.Background(), "stranger", "owner")
	require.NoError(t, err)
	require.False(t, d.Known())

	coords, err := ix.Coordinates(context.Background(), []string{"owner", "stranger"})
	require.NoError(t, err)
	require.NotNil(t, coords["owner"])
	require.Nil(t, coords["stranger"])
}
