package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodec_KeepsCoordinatePrecision(t *testing.T) {
	t.Parallel()
	type point struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	tests := []struct {
		name string
		in   point
	}{
		{name: "moscow", in: point{Lat: 55.755826123, Lon: 37.617299901}},
		{name: "southern hemisphere", in: point{Lat: -33.868819874, Lon: 151.209295043}},
		{name: "tiny offset", in: point{Lat: 0.0000001234, Lon: -0.0000005678}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			var got point
			require.NoError(t, json.Unmarshal(data, &got))
			require.Equal(t, tt.in, got)
		})
	}
}
