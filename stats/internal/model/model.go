package model

import "time"

// ActorStats aggregates the lending events of one actor.
type ActorStats struct {
	ActorID       string    `json:"actorId" db:"actor_id"`
	Lent          int       `json:"lent" db:"lent"`
	Borrowed      int       `json:"borrowed" db:"borrowed"`
	Disputes      int       `json:"disputes" db:"disputes"`
	AverageRating *float64  `json:"averageRating,omitempty" db:"avg_rating"`
	Earned        int64     `json:"earned" db:"earned"`
	Paid          int64     `json:"paid" db:"paid"`
	LastEventAt   time.Time `json:"lastEventAt" db:"last_event_at"`
}

type StatsInfo struct {
	Data []ActorStats `json:"data"`
}
