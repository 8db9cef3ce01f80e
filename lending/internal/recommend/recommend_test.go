package recommend

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var (
	base   = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	moscow = &model.Coordinate{Lat: 55.7558, Lon: 37.6173}
	spb    = &model.Coordinate{Lat: 59.9343, Lon: 30.3351}
	tver   = &model.Coordinate{Lat: 56.8587, Lon: 35.9176}
)

func candidate(id string, ageHours int, fee int64, owner *model.Coordinate) Candidate {
	return Candidate{
		Item: model.Item{
			ID:           id,
			Fee:          fee,
			Availability: model.Lendable,
			CreatedAt:    base.Add(-time.Duration(ageHours) * time.Hour),
		},
		Owner: owner,
	}
}

func ids(recs []Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Item.ID)
	}
	return out
}

func TestRank(t *testing.T) {
	t.Parallel()

	candidates := []Candidate{
		candidate("old-cheap", 30, 100, spb),
		candidate("new-pricey", 1, 500, tver),
		candidate("mid-cheap", 10, 100, nil),
		candidate("mid-pricey", 10, 500, moscow),
	}

	tests := []struct {
		name string
		from *model.Coordinate
		opts Options
		want []string
	}{
		{
			name: "recency by default",
			from: moscow,
			want: []string{"new-pricey", "mid-cheap", "mid-pricey", "old-cheap"},
		},
		{
			name: "fee ascending keeps recency within equal fees",
			from: moscow,
			opts: Options{Fee: FeeAsc},
			want: []string{"mid-cheap", "old-cheap", "new-pricey", "mid-pricey"},
		},
		{
			name: "fee descending keeps recency within equal fees",
			from: moscow,
			opts: Options{Fee: FeeDesc},
			want: []string{"new-pricey", "mid-pricey", "mid-cheap", "old-cheap"},
		},
		{
			name: "distance when asked, unknown last",
			from: moscow,
			opts: Options{ByDistance: true},
			want: []string{"mid-pricey", "new-pricey", "old-cheap", "mid-cheap"},
		},
		{
			name: "distance without requester coordinate keeps recency",
			from: nil,
			opts: Options{ByDistance: true},
			want: []string{"new-pricey", "mid-cheap", "mid-pricey", "old-cheap"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := slices.Collect(Rank(tt.from, candidates, tt.opts))
			require.Equal(t, tt.want, ids(got))
		})
	}
}

func TestRank_UnknownRequesterCoordinate(t *testing.T) {
	t.Parallel()
	candidates := []Candidate{candidate("bike", 1, 100, moscow)}

	got := slices.Collect(Rank(nil, candidates, Options{}))
	require.Len(t, got, 1)
	require.Equal(t, "bike", got[0].Item.ID)
	require.False(t, got[0].Distance.Known())
}

func TestRank_Distances(t *testing.T) {
	t.Parallel()
	candidates := []Candidate{
		candidate("here", 1, 0, moscow),
		candidate("far", 2, 0, spb),
		candidate("unknown", 3, 0, nil),
	}
	got := slices.Collect(Rank(moscow, candidates, Options{}))
	require.Len(t, got, 3)

	km, ok := got[0].Distance.Kilometers()
	require.True(t, ok)
	require.InDelta(t, 0, km, 1e-9)

	km, ok = got[1].Distance.Kilometers()
	require.True(t, ok)
	require.InDelta(t, 633, km, 1)

	require.False(t, got[2].Distance.Known())
}

func TestRank_DoesNotTouchInput(t *testing.T) {
	t.Parallel()
	candidates := []Candidate{
		candidate("b", 5, 1, nil),
		candidate("a", 1, 2, nil),
	}
	_ = slices.Collect(Rank(nil, candidates, Options{Fee: FeeDesc}))
	require.Equal(t, "b", candidates[0].Item.ID)
	require.Equal(t, "a", candidates[1].Item.ID)
}

func TestPage(t *testing.T) {
	t.Parallel()
	var candidates []Candidate
	for i := 0; i < 7; i++ {
		candidates = append(candidates, candidate(fmt.Sprintf("i%d", i), i, 0, nil))
	}
	seq := Rank(nil, candidates, Options{})

	require.Equal(t, []string{"i0", "i1", "i2"}, ids(Page(seq, 0, 3)))
	require.Equal(t, []string{"i3", "i4", "i5"}, ids(Page(seq, 3, 3)))
	require.Equal(t, []string{"i6"}, ids(Page(seq, 6, 3)))
	require.Empty(t, Page(seq, 9, 3))
	require.Empty(t, Page(seq, 0, 0))
}

func TestRank_Deterministic(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(t, "n")
		candidates := make([]Candidate, 0, n)
		for i := 0; i < n; i++ {
			var owner *model.Coordinate
			if rapid.Bool().Draw(t, "known") {
				owner = &model.Coordinate{
					Lat: rapid.Float64Range(-90, 90).Draw(t, "lat"),
					Lon: rapid.Float64Range(-180, 180).Draw(t, "lon"),
				}
			}
			candidates = append(candidates, candidate(
				fmt.Sprintf("item-%d", i),
				rapid.IntRange(0, 5).Draw(t, "age"),
				rapid.Int64Range(0, 3).Draw(t, "fee"),
				owner,
			))
		}
		opts := Options{
			Fee:        rapid.SampledFrom([]FeeOrder{FeeUnsorted, FeeAsc, FeeDesc}).Draw(t, "fee order"),
			ByDistance: rapid.Bool().Draw(t, "by distance"),
		}

		seq := Rank(moscow, candidates, opts)
		first := slices.Collect(seq)
		again := slices.Collect(seq)
		shuffled := slices.Clone(candidates)
		slices.Reverse(shuffled)
		rerun := slices.Collect(Rank(moscow, shuffled, opts))

		if len(first) != n {
			t.Fatalf("got %d results for %d candidates", len(first), n)
		}
		if !slices.Equal(ids(first), ids(again)) || !slices.Equal(ids(first), ids(rerun)) {
			t.Fatalf("order changed between runs: %v %v %v", ids(first), ids(again), ids(rerun))
		}
	})
}
