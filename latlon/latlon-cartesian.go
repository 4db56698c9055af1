package latlon

import (
	"math"

	"github.com/a-bouts/sail-sim/vector"
)

// LatLonCartesian treats degrees as a flat plane. Distances are in degrees.
type LatLonCartesian struct{}

func delta(from, to LatLon) (float64, float64) {
	x := to.Lon - from.Lon
	y := to.Lat - from.Lat

	if x > 180 {
		x -= 360
	} else if x < -180 {
		x += 360
	}
	return x, y
}

func (LatLonCartesian) DistanceTo(from, to LatLon) float64 {
	x, y := delta(from, to)
	return math.Sqrt(x*x + y*y)
}

// BearingTo returns the compass bearing, 0 north and clockwise.
func (LatLonCartesian) BearingTo(from, to LatLon) float64 {
	x, y := delta(from, to)
	d := math.Sqrt(x*x + y*y)
	if d == 0 {
		return 0
	}

	α := math.Acos(y / d)
	if x < 0 {
		α *= -1
	}

	return wrap360(toDegrees(α))
}

func (c LatLonCartesian) DistanceAndBearingTo(from, to LatLon) (float64, float64) {
	return c.DistanceTo(from, to), c.BearingTo(from, to)
}

// CourseTo returns the displacement from -> to as a Calc vector in degrees.
func (LatLonCartesian) CourseTo(from, to LatLon) vector.Vector {
	x, y := delta(from, to)
	return vector.FromXY(x, y)
}

// MetersTo returns the flat distance in meters using the constant
// meters-per-degree scale.
func (c LatLonCartesian) MetersTo(from, to LatLon) float64 {
	return vector.DegreesToMeters(c.DistanceTo(from, to))
}

// Offset moves p by a displacement expressed in meters.
func Offset(p LatLon, meters vector.Vector) LatLon {
	d := meters.MeterToDegree()
	return LatLon{Lat: p.Lat + d.Y(), Lon: p.Lon + d.X()}
}
