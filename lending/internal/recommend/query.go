package recommend

import (
	"github.com/Astemirdum/lending-service/lending/internal/model"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Query struct {
	Filter model.ItemFilter
	Options
	// Page is 1-based.
	Page int
	Size int
}

// Normalize clamps the paging parameters into their allowed ranges.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.Size <= 0:
		q.Size = DefaultPageSize
	case q.Size > MaxPageSize:
		q.Size = MaxPageSize
	}
	return q
}

func (q Query) Offset() int {
	return (q.Page - 1) * q.Size
}

type PageResult struct {
	Page          int              `json:"page"`
	PageSize      int              `json:"pageSize"`
	TotalElements int              `json:"totalElements"`
	Items         []Recommendation `json:"items"`
}
