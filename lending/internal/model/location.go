package model

import (
	"time"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is an actor's last known position. Coordinate is nil when unknown.
type Location struct {
	ActorID    string      `json:"actorId"`
	Coordinate *Coordinate `json:"coordinate"`
	Address    string      `json:"address"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// UpdateLocationRequest carries either an address or both coordinates.
type UpdateLocationRequest struct {
	Address   string   `json:"address" validate:"max=500"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

func (r UpdateLocationRequest) HasCoordinate() bool {
	return r.Latitude != nil && r.Longitude != nil
}
