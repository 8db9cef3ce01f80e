package geo_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/Astemirdum/lending-service/lending/internal/geo"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestHaversine(t *testing.T) {
	t.Parallel()
	moscow := model.Coordinate{Lat: 55.7558, Lon: 37.6173}
	spb := model.Coordinate{Lat: 59.9343, Lon: 30.3351}

	tests := []struct {
		name string
		a, b model.Coordinate
		want float64
	}{
		{name: "same point", a: moscow, b: moscow, want: 0},
		{name: "moscow-spb", a: moscow, b: spb, want: 633.0},
		{name: "quarter meridian", a: model.Coordinate{}, b: model.Coordinate{Lat: 90}, want: math.Pi / 2 * geo.EarthRadiusKm},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.InDelta(t, tt.want, geo.Haversine(tt.a, tt.b), 2.0)
		})
	}
}

func TestBetween_Unknown(t *testing.T) {
	t.Parallel()
	c := &model.Coordinate{Lat: 1, Lon: 1}

	require.False(t, geo.Between(nil, c).Known())
	require.False(t, geo.Between(c, nil).Known())
	require.True(t, geo.Between(c, c).Known())

	out, err := json.Marshal(geo.Between(nil, c))
	require.NoError(t, err)
	require.Equal(t, "null", string(out))
}

func TestDistance_Less(t *testing.T) {
	t.Parallel()
	require.True(t, geo.Km(1).Less(geo.Km(2)))
	require.True(t, geo.Km(1e6).Less(geo.Unknown))
	require.False(t, geo.Unknown.Less(geo.Km(0)))
	require.False(t, geo.Unknown.Less(geo.Unknown))
}

func coordinate() *rapid.Generator[model.Coordinate] {
	return rapid.Custom(func(t *rapid.T) model.Coordinate {
		return model.Coordinate{
			Lat: rapid.Float64Range(-90, 90).Draw(t, "lat"),
			Lon: rapid.Float64Range(-180, 180).Draw(t, "lon"),
		}
	})
}

func TestHaversine_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := coordinate().Draw(t, "a")
		b := coordinate().Draw(t, "b")

		ab := geo.Haversine(a, b)
		ba := geo.Haversine(b, a)
		if math.Abs(ab-ba) > 1e-6 {
			t.Fatalf("not symmetric: %v != %v", ab, ba)
		}
		if ab < 0 || ab > math.Pi*geo.EarthRadiusKm+1e-6 {
			t.Fatalf("out of range: %v", ab)
		}
		if d := geo.Haversine(a, a); d > 1e-6 {
			t.Fatalf("distance to self is %v", d)
		}
	})
}
