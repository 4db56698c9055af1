package route

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/latlon"
	"github.com/a-bouts/sail-sim/polar"
	"github.com/a-bouts/sail-sim/vector"
	"github.com/a-bouts/sail-sim/wind"
)

type Maneuver int

const (
	Direct Maneuver = iota
	Tack
	Jibe
)

func (m Maneuver) String() string {
	switch m {
	case Tack:
		return "tack"
	case Jibe:
		return "jibe"
	}
	return "direct"
}

const (
	DefaultUpwindNoGo   = 45.0
	DefaultDownwindNoGo = 30.0

	determinantEpsilon = 1e-12
	distanceEpsilon    = 1e-12
)

// Planner splits a leg in two when the direct course falls in a no-go zone.
type Planner struct {
	// Upwind is the closest angle to the wind the boat can sail.
	Upwind float64
	// Downwind is the half width of the dead downwind zone.
	Downwind float64
}

func NewPlanner(p *polar.Table) Planner {
	if p == nil {
		log.Warn("Using default no-go zones")
		return Planner{Upwind: DefaultUpwindNoGo, Downwind: DefaultDownwindNoGo}
	}
	return Planner{Upwind: p.UpwindNoGo, Downwind: p.DownwindNoGo()}
}

// Leg is the path from a start point, the start itself excluded.
type Leg struct {
	Maneuver Maneuver
	Points   []latlon.LatLon
}

// AngleToWind returns the absolute angle between the course start -> stop
// and the wind, in degrees.
func AngleToWind(start, stop latlon.LatLon, tw vector.Angle, heading vector.Angle) float64 {
	course := vector.FromXY(stop.Lon-start.Lon, stop.Lat-start.Lat)
	rw := wind.TwaAngle(heading, tw)
	rc := wind.TwaAngle(heading, course.Angle)
	return math.Abs(vector.Normalize180(rc - rw))
}

// Plan returns [stop] when stop can be reached directly, else the
// intermediate point where the course turns from the first candidate
// heading to the second, followed by stop. tw is the direction the wind
// comes from.
func (p Planner) Plan(start, stop latlon.LatLon, tw vector.Angle, heading vector.Angle) Leg {
	direct := Leg{Maneuver: Direct, Points: []latlon.LatLon{stop}}

	v := vector.FromXY(stop.Lon-start.Lon, stop.Lat-start.Lat)
	if v.Norm < distanceEpsilon {
		return direct
	}

	w := tw.As(vector.Calc).Norm().Value
	atw := AngleToWind(start, stop, tw, heading)

	// candidate headings either side of the no-go zone
	var m Maneuver
	var h1, h2 float64
	switch {
	case atw < p.Upwind:
		m, h1, h2 = Tack, wind.Heading(-p.Upwind, w), wind.Heading(p.Upwind, w)
	case 180-atw < p.Downwind:
		m, h1, h2 = Jibe, wind.Heading(-p.Downwind, w+180), wind.Heading(p.Downwind, w+180)
	default:
		log.WithField("angleToWind", atw).Trace("Direct course")
		return direct
	}

	k := vector.New(vector.CalcAngle(h1), 1)
	j := vector.New(vector.CalcAngle(h2), 1)

	a, _, ok := solve(k, j, v)
	if !ok {
		log.WithFields(log.Fields{"maneuver": m, "angleToWind": atw}).Debug("Degenerate leg, going direct")
		return direct
	}

	log.WithFields(log.Fields{"maneuver": m, "angleToWind": atw}).Debug("Leg needs a maneuver")

	k = k.Scale(a)
	mid := latlon.LatLon{Lat: start.Lat + k.Y(), Lon: start.Lon + k.X()}
	return Leg{Maneuver: m, Points: []latlon.LatLon{mid, stop}}
}

// Leg is Plan without the maneuver.
func (p Planner) Leg(start, stop latlon.LatLon, tw vector.Angle, heading vector.Angle) []latlon.LatLon {
	return p.Plan(start, stop, tw, heading).Points
}

// solve decomposes v on k and j by Cramer's rule: a·k + b·j = v.
func solve(k, j, v vector.Vector) (float64, float64, bool) {
	d := k.X()*j.Y() - j.X()*k.Y()
	if math.Abs(d) < determinantEpsilon {
		return 0, 0, false
	}
	a := (v.X()*j.Y() - j.X()*v.Y()) / d
	b := (k.X()*v.Y() - v.X()*k.Y()) / d
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return 0, 0, false
	}
	return a, b, true
}
