package geo

import (
	"math"
	"strconv"

	"github.com/Astemirdum/lending-service/lending/internal/model"
)

const EarthRadiusKm = 6371.0

// Distance is a great-circle distance in kilometres. The zero value is the
// unknown marker, produced whenever either coordinate is missing.
type Distance struct {
	km    float64
	known bool
}

var Unknown = Distance{}

func Km(v float64) Distance { return Distance{km: v, known: true} }

func (d Distance) Known() bool { return d.known }

// Kilometers returns the value and whether it is known.
func (d Distance) Kilometers() (float64, bool) { return d.km, d.known }

// Less orders known distances ascending with unknown ones last.
func (d Distance) Less(o Distance) bool {
	if d.known != o.known {
		return d.known
	}
	return d.km < o.km
}

func (d Distance) MarshalJSON() ([]byte, error) {
	if !d.known {
		return []byte("null"), nil
	}
	return []byte(formatKm(d.km)), nil
}

func formatKm(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b model.Coordinate) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Between is Haversine lifted over optional coordinates.
func Between(a, b *model.Coordinate) Distance {
	if a == nil || b == nil {
		return Unknown
	}
	return Km(Haversine(*a, *b))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
