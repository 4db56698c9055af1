package latlon

import (
	"math"

	"github.com/a-bouts/sail-sim/vector"
)

const π = math.Pi
const R = 6371e3

// LatLon is a position in degrees. Lon is the x axis and Lat the y axis of
// the simulation plane.
type LatLon struct {
	Lat float64 `json:"lat" toml:"lat" msgpack:"lat"`
	Lon float64 `json:"lon" toml:"lon" msgpack:"lon"`
}

// FromVector reads a position vector expressed in degrees.
func FromVector(v vector.Vector) LatLon {
	return LatLon{Lat: v.Y(), Lon: v.X()}
}

// Vector returns p as a position vector in degrees.
func (p LatLon) Vector() vector.Vector {
	return vector.FromXY(p.Lon, p.Lat).Rounded(10000)
}

func toRadians(a float64) float64 {
	return a * π / 180.0
}

func toDegrees(a float64) float64 {
	return a * 180.0 / π
}

func wrap360(d float64) float64 {
	if 0.0 <= d && d < 360.0 {
		return d
	}
	d1 := d + 360.0
	d2 := d1 - float64(int(d1/360.0)*360)
	return d2
}
