package geo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/pkg/geocoder"
	"go.uber.org/zap"
)

type LocationStore interface {
	GetLocation(ctx context.Context, actorID string) (model.Location, error)
	GetLocations(ctx context.Context, actorIDs []string) (map[string]model.Location, error)
	UpsertLocation(ctx context.Context, loc model.Location) error
}

type Geocoder interface {
	Search(ctx context.Context, query string) (geocoder.Place, error)
	Reverse(ctx context.Context, lat, lon float64) (geocoder.Place, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (model.Location, bool, error)
	Set(ctx context.Context, key string, v model.Location) error
	Delete(ctx context.Context, key string) error
}

// Index keeps actors' last known locations. A failed geocoding leaves the
// coordinate unknown and never fails the surrounding call.
type Index struct {
	store    LocationStore
	geocoder Geocoder
	cache    Cache
	now      func() time.Time
	log      *zap.Logger
}

type IndexOption func(ix *Index)

func WithCache(c Cache) IndexOption {
	return func(ix *Index) {
		ix.cache = c
	}
}

func WithClock(now func() time.Time) IndexOption {
	return func(ix *Index) {
		ix.now = now
	}
}

func NewIndex(store LocationStore, gc Geocoder, log *zap.Logger, opts ...IndexOption) *Index {
	ix := &Index{
		store:    store,
		geocoder: gc,
		now:      time.Now,
		log:      log.Named("geo"),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Location returns the stored location, or one with an unknown coordinate.
func (ix *Index) Location(ctx context.Context, actorID string) (model.Location, error) {
	if ix.cache != nil {
		loc, ok, err := ix.cache.Get(ctx, actorID)
		if err != nil {
			ix.log.Warn("cache get", zap.String("actor", actorID), zap.Error(err))
		} else if ok {
			return loc, nil
		}
	}
	loc, err := ix.store.GetLocation(ctx, actorID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Location{ActorID: actorID}, nil
		}
		return model.Location{}, err
	}
	if ix.cache != nil {
		if err = ix.cache.Set(ctx, actorID, loc); err != nil {
			ix.log.Warn("cache set", zap.String("actor", actorID), zap.Error(err))
		}
	}
	return loc, nil
}

// Coordinates maps each actor to its coordinate. Actors without one map to nil.
func (ix *Index) Coordinates(ctx context.Context, actorIDs []string) (map[string]*model.Coordinate, error) {
	locs, err := ix.store.GetLocations(ctx, actorIDs)
	if err != nil {
		return nil, fmt.Errorf("GetLocations: %w", err)
	}
	out := make(map[string]*model.Coordinate, len(actorIDs))
	for _, id := range actorIDs {
		out[id] = locs[id].Coordinate
	}
	return out, nil
}

func (ix *Index) Update(ctx context.Context, actorID string, req model.UpdateLocationRequest) (model.Location, error) {
	if (req.Latitude == nil) != (req.Longitude == nil) || (!req.HasCoordinate() && req.Address == "") {
		return model.Location{}, errs.ErrInvalidLocation
	}
	loc := model.Location{
		ActorID:   actorID,
		Address:   req.Address,
		UpdatedAt: ix.now().UTC(),
	}
	if req.HasCoordinate() {
		loc.Coordinate = &model.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude}
		if loc.Address == "" {
			place, err := ix.geocoder.Reverse(ctx, loc.Coordinate.Lat, loc.Coordinate.Lon)
			if err != nil {
				ix.log.Warn("reverse geocoding failed", zap.String("actor", actorID), zap.Error(err))
			} else {
				loc.Address = place.DisplayName
			}
		}
	} else {
		place, err := ix.geocoder.Search(ctx, req.Address)
		if err != nil {
			ix.log.Warn("geocoding failed, coordinate unknown", zap.String("actor", actorID), zap.Error(err))
		} else {
			loc.Coordinate = &model.Coordinate{Lat: place.Lat, Lon: place.Lon}
		}
	}

	if err := ix.store.UpsertLocation(ctx, loc); err != nil {
		return model.Location{}, fmt.Errorf("UpsertLocation: %w", err)
	}
	if ix.cache != nil {
		if err := ix.cache.Delete(ctx, actorID); err != nil {
			ix.log.Warn("cache delete", zap.String("actor", actorID), zap.Error(err))
		}
	}
	return loc, nil
}

// DistanceBetween is the distance between two actors' last known coordinates.
func (ix *Index) DistanceBetween(ctx context.Context, fromActor, toActor string) (Distance, error) {
	from, err := ix.Location(ctx, fromActor)
	if err != nil {
		return Unknown, err
	}
	to, err := ix.Location(ctx, toActor)
	if err != nil {
		return Unknown, err
	}
	return Between(from.Coordinate, to.Coordinate), nil
}
