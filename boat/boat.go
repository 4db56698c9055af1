// Package boat integrates the rigid body motion of a sailing boat from the
// forces its foils produce.
package boat

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/foil"
	"github.com/a-bouts/sail-sim/latlon"
	"github.com/a-bouts/sail-sim/vector"
)

const (
	DefaultSubIterations = 30
	DefaultMaxSpeed      = 50.0 // m/s
	DefaultMaxRotation   = 10.0 // rad/s

	// DefaultRudderLimit is the physical travel of the rudder either side,
	// degrees.
	DefaultRudderLimit = 10.0
)

// Limits are realism thresholds. Exceeding them is logged, not fatal.
type Limits struct {
	MaxSpeed    float64
	MaxRotation float64
}

type Boat struct {
	// Hulls are the underwater foils. The last one is the rudder.
	Hulls []*foil.Foil
	Sails []*foil.Foil

	Wind   vector.Vector
	Mass   float64
	RefLat float64

	Heading            vector.Angle
	Position           vector.Vector // degrees, x is longitude
	LinearVelocity     vector.Vector // m/s
	RotationalVelocity float64       // rad/s, counter clockwise

	SailForce  vector.Vector
	HullForce  vector.Vector
	SailMoment float64
	HullMoment float64

	SubIterations int
	Limits        Limits
	RudderLimit   float64
}

func New(hulls []*foil.Foil, sails []*foil.Foil, wind vector.Vector, mass float64, refLat float64) (*Boat, error) {
	if len(hulls) == 0 {
		return nil, errs.Validation("boat needs at least one hull")
	}
	if !(mass > 0) || math.IsInf(mass, 0) {
		return nil, errs.Validation("mass %v must be positive", mass)
	}
	if math.IsNaN(refLat) || refLat < -90 || refLat > 90 {
		return nil, errs.Validation("reference latitude %v out of range", refLat)
	}
	if !wind.IsFinite() {
		return nil, errs.Validation("wind %v is not finite", wind)
	}

	b := &Boat{
		Hulls:          hulls,
		Sails:          sails,
		Wind:           wind,
		Mass:           mass,
		RefLat:         refLat,
		Heading:        vector.CalcAngle(90),
		Position:       vector.New(vector.CalcAngle(90), 0),
		LinearVelocity: vector.New(vector.CalcAngle(90), 0),
		SailForce:      vector.New(vector.CalcAngle(90), 0),
		HullForce:      vector.New(vector.CalcAngle(90), 0),
		SubIterations:  DefaultSubIterations,
		Limits:         Limits{MaxSpeed: DefaultMaxSpeed, MaxRotation: DefaultMaxRotation},
		RudderLimit:    DefaultRudderLimit,
	}

	log.WithFields(log.Fields{
		"mass":  mass,
		"hulls": len(hulls),
		"sails": len(sails),
	}).Info("Boat initialized")

	return b, nil
}

// Rudder returns the last hull.
func (b *Boat) Rudder() *foil.Foil {
	return b.Hulls[len(b.Hulls)-1]
}

// SetRudder turns the rudder, clamped to its physical travel. It returns the
// applied angle in degrees.
func (b *Boat) SetRudder(deg float64) float64 {
	applied := math.Max(-b.RudderLimit, math.Min(b.RudderLimit, deg))
	if applied != deg {
		log.WithFields(log.Fields{"wanted": deg, "applied": applied}).Trace("Rudder clamped")
	}
	b.Rudder().Angle = vector.CalcAngle(applied)
	return applied
}

func (b *Boat) LatLon() latlon.LatLon {
	return latlon.FromVector(b.Position)
}

func (b *Boat) SetLatLon(p latlon.LatLon) {
	b.Position = p.Vector()
}

// Reset stops the boat without moving it.
func (b *Boat) Reset() {
	b.RotationalVelocity = 0
	b.LinearVelocity = vector.New(vector.CalcAngle(0), 0)
	b.SailForce = vector.New(vector.CalcAngle(0), 0)
	b.HullForce = vector.New(vector.CalcAngle(0), 0)
	b.SailMoment = 0
	b.HullMoment = 0
}

func (b *Boat) Inertia() float64 {
	i := 0.0
	for _, h := range b.Hulls {
		i += h.Inertia
	}
	for _, s := range b.Sails {
		i += s.Inertia
	}
	return i
}

func (b *Boat) Force() vector.Vector {
	return b.SailForce.Add(b.HullForce)
}

func (b *Boat) Moment() float64 {
	return b.SailMoment + b.HullMoment
}

// State is a copy of the boat published outside the simulation loop.
type State struct {
	Position           latlon.LatLon `json:"position" msgpack:"position"`
	Heading            float64       `json:"heading" msgpack:"heading"`
	Speed              float64       `json:"speed" msgpack:"speed"`
	Course             float64       `json:"course" msgpack:"course"`
	RotationalVelocity float64       `json:"rotationalVelocity" msgpack:"rotationalVelocity"`
	Rudder             float64       `json:"rudder" msgpack:"rudder"`
	Sails              []float64     `json:"sails" msgpack:"sails"`
	Wind               vector.Vector `json:"wind" msgpack:"wind"`
	ApparentWind       vector.Vector `json:"apparentWind" msgpack:"apparentWind"`
	Force              vector.Vector `json:"force" msgpack:"force"`
}

// State reports headings as Calc degrees in [0, 360) and part angles in
// (-180, 180].
func (b *Boat) State() State {
	sails := make([]float64, len(b.Sails))
	for i, s := range b.Sails {
		sails[i] = vector.Normalize180(s.Angle.Calc())
	}
	return State{
		Position:           b.LatLon(),
		Heading:            b.Heading.Norm().Calc(),
		Speed:              b.LinearVelocity.Norm,
		Course:             b.LinearVelocity.Angle.Norm().Calc(),
		RotationalVelocity: b.RotationalVelocity,
		Rudder:             vector.Normalize180(b.Rudder().Angle.Calc()),
		Sails:              sails,
		Wind:               b.Wind,
		ApparentWind:       b.GlobalApparentWind(),
		Force:              b.Force(),
	}
}
