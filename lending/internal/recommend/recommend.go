// Package recommend ranks lendable items for a requester.
//
// Ranking favours recency: items are ordered by creation time, newest first,
// and an optional fee sort is applied on top of that order. Distance to the
// owner is attached to every result but only changes the order when the
// caller explicitly asks for it.
package recommend

import (
	"cmp"
	"iter"
	"slices"
	"strings"

	"github.com/Astemirdum/lending-service/lending/internal/geo"
	"github.com/Astemirdum/lending-service/lending/internal/model"
)

type FeeOrder string

const (
	FeeUnsorted FeeOrder = ""
	FeeAsc      FeeOrder = "asc"
	FeeDesc     FeeOrder = "desc"
)

type Options struct {
	Fee FeeOrder
	// ByDistance orders nearest first, unknown distances last.
	ByDistance bool
}

// Candidate is a lendable item together with its owner's coordinate, if known.
type Candidate struct {
	Item  model.Item
	Owner *model.Coordinate
}

type Recommendation struct {
	Item     model.Item   `json:"item"`
	Distance geo.Distance `json:"distanceKm"`
}

// Rank orders a copy of candidates and returns them as a sequence. Distances
// are computed while iterating, so stopping early skips the rest. The
// sequence can be ranged over any number of times with the same result.
func Rank(from *model.Coordinate, candidates []Candidate, opts Options) iter.Seq[Recommendation] {
	ranked := slices.Clone(candidates)
	slices.SortFunc(ranked, byRecency)

	switch opts.Fee {
	case FeeAsc:
		slices.SortStableFunc(ranked, func(a, b Candidate) int { return cmp.Compare(a.Item.Fee, b.Item.Fee) })
	case FeeDesc:
		slices.SortStableFunc(ranked, func(a, b Candidate) int { return cmp.Compare(b.Item.Fee, a.Item.Fee) })
	}

	if opts.ByDistance {
		recs := make([]Recommendation, len(ranked))
		for i, c := range ranked {
			recs[i] = Recommendation{Item: c.Item, Distance: geo.Between(from, c.Owner)}
		}
		slices.SortStableFunc(recs, func(a, b Recommendation) int {
			switch {
			case a.Distance.Less(b.Distance):
				return -1
			case b.Distance.Less(a.Distance):
				return 1
			}
			return 0
		})
		return slices.Values(recs)
	}

	return func(yield func(Recommendation) bool) {
		for _, c := range ranked {
			if !yield(Recommendation{Item: c.Item, Distance: geo.Between(from, c.Owner)}) {
				return
			}
		}
	}
}

func byRecency(a, b Candidate) int {
	if c := b.Item.CreatedAt.Compare(a.Item.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.Item.ID, b.Item.ID)
}

// Page collects at most size results after skipping offset of them.
func Page(seq iter.Seq[Recommendation], offset, size int) []Recommendation {
	out := make([]Recommendation, 0, max(size, 0))
	if size <= 0 {
		return out
	}
	i := 0
	for rec := range seq {
		if i >= offset {
			out = append(out, rec)
			if len(out) == size {
				break
			}
		}
		i++
	}
	return out
}
