// Package control steers the boat: rudder and sail laws, the active course
// and the algorithms choosing where to go.
package control

import "math"

const (
	DefaultNoise     = 2.0
	DefaultStability = 1.0

	rudderGain = 10.0
	// headingScale is the heading error, in degrees, that gives half the
	// rudder signal.
	headingScale = 40.0
)

// RudderLaw turns a heading error and a rotation rate, both in degrees,
// into a rudder angle. The result is not clamped.
type RudderLaw interface {
	Rudder(headingError, rotation float64) float64
}

// AtanRudder saturates the error through an arctangent and damps it with
// the rotation rate.
type AtanRudder struct {
	Noise     float64
	Stability float64
}

func DefaultRudder() AtanRudder {
	return AtanRudder{Noise: DefaultNoise, Stability: DefaultStability}
}

func (l AtanRudder) Rudder(headingError, rotation float64) float64 {
	stability := l.Stability
	if stability == 0 {
		stability = DefaultStability
	}
	signal := 2 / math.Pi * math.Atan(headingError/headingScale-rotation/stability)
	return -rudderGain * signal * l.Noise
}

// SailLaw returns the sail angle for an apparent wind angle relative to the
// bow.
type SailLaw interface {
	Sail(awa float64) float64
}

type SailFunc func(awa float64) float64

func (f SailFunc) Sail(awa float64) float64 {
	return f(awa)
}

// AngleOfAttack eases the sail out as the wind comes aft.
func AngleOfAttack(awa float64) float64 {
	awa = math.Abs(awa)
	switch {
	case awa > 170:
		return 90
	case awa > 135:
		return 45 + (awa-135)*(90-45)/(170-135)
	case awa > 90:
		return 45
	}
	return awa * 0.5
}
