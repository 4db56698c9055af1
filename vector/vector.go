package vector

import (
	"fmt"
	"math"
)

const (
	// MetersPerDegree is used for both axes. Positions are only ever compared
	// over a few hundred meters so the ellipsoid is ignored.
	MetersPerDegree = 111111.0

	epsilon = 1e-10
)

// Vector is a magnitude along an Angle. A negative Norm points the
// opposite way.
type Vector struct {
	Angle Angle   `json:"angle" msgpack:"angle"`
	Norm  float64 `json:"norm" msgpack:"norm"`
}

func New(a Angle, norm float64) Vector {
	return Vector{Angle: a, Norm: norm}
}

// FromXY builds a Calc vector from cartesian components.
func FromXY(x, y float64) Vector {
	return Vector{Angle: CalcAngle(atan2Deg(y, x)), Norm: math.Hypot(x, y)}
}

func atan2Deg(y, x float64) float64 {
	if math.Abs(x) < epsilon && math.Abs(y) < epsilon {
		return 0
	}
	return math.Atan2(y, x) * 180 / math.Pi
}

func (v Vector) X() float64 {
	return math.Cos(v.Angle.Radians()) * v.Norm
}

func (v Vector) Y() float64 {
	return math.Sin(v.Angle.Radians()) * v.Norm
}

func (v Vector) Add(o Vector) Vector {
	return FromXY(v.X()+o.X(), v.Y()+o.Y())
}

func (v Vector) Sub(o Vector) Vector {
	o.Norm = -o.Norm
	return v.Add(o)
}

// Scale multiplies the magnitude only.
func (v Vector) Scale(f float64) Vector {
	v.Norm *= f
	return v
}

func (v Vector) Dot(o Vector) float64 {
	return v.Norm * o.Norm * math.Cos((o.Angle.Calc()-v.Angle.Calc())*math.Pi/180)
}

// Rounded returns v with its angle rounded to 1/precision degree.
func (v Vector) Rounded(precision float64) Vector {
	v.Angle.Value = math.Round(v.Angle.Value*precision) / precision
	return v
}

// MeterToDegree converts a displacement in meters to degrees.
func (v Vector) MeterToDegree() Vector {
	return FromXY(v.X()/MetersPerDegree, v.Y()/MetersPerDegree).Rounded(10000)
}

// DegreeToMeter converts a displacement in degrees to meters.
func (v Vector) DegreeToMeter() Vector {
	return FromXY(v.X()*MetersPerDegree, v.Y()*MetersPerDegree).Rounded(10000)
}

func (v Vector) IsFinite() bool {
	return !math.IsNaN(v.Norm) && !math.IsInf(v.Norm, 0) &&
		!math.IsNaN(v.Angle.Value) && !math.IsInf(v.Angle.Value, 0)
}

func (v Vector) String() string {
	return fmt.Sprintf("Vector(%.4f, %s)", v.Norm, v.Angle.Norm())
}

// DegreesToMeters converts a scalar distance in degrees to meters.
func DegreesToMeters(d float64) float64 {
	return d * MetersPerDegree
}

// MetersToDegrees converts a scalar distance in meters to degrees.
func MetersToDegrees(m float64) float64 {
	return m / MetersPerDegree
}
