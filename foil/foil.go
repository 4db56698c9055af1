// Package foil computes lift and drag on sails, hulls and rudders.
package foil

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/vector"
)

const (
	AirDensity   = 1.204
	WaterDensity = 997.77

	// CenterOfEffort is the distance from the mast to where the sail force
	// is applied, in meters.
	CenterOfEffort = 0.49
	// SailInertia is the rotational inertia of a sail about its mast.
	SailInertia = 0.54
	// SheetSnap is how far inside the sheet limit a stopped sail is put back,
	// in degrees.
	SheetSnap = 2.0
)

type Params struct {
	Name     string
	Density  float64
	Area     float64
	Inertia  float64
	Size     float64
	Position vector.Vector
}

type Foil struct {
	Name     string
	Lift     Curve
	Drag     Curve
	Polygon  [][2]float64
	Density  float64
	Area     float64
	Inertia  float64
	Size     float64
	Position vector.Vector
	Angle    vector.Angle
	Winches  []*Winch

	// RotationalVelocity of a sail about its mast, rad/s.
	RotationalVelocity float64
}

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return errs.Validation("%s %v must be positive", name, v)
	}
	return nil
}

// New builds a foil from already loaded curves.
func New(p Params, lift, drag Curve, winches ...*Winch) (*Foil, error) {
	if err := positive("density", p.Density); err != nil {
		return nil, err
	}
	if err := positive("area", p.Area); err != nil {
		return nil, err
	}
	if err := positive("size", p.Size); err != nil {
		return nil, err
	}
	if p.Inertia < 0 || math.IsNaN(p.Inertia) || math.IsInf(p.Inertia, 0) {
		return nil, errs.Validation("inertia %v must not be negative", p.Inertia)
	}
	if !p.Position.IsFinite() {
		return nil, errs.Validation("position %v is not finite", p.Position)
	}
	return &Foil{
		Name:     p.Name,
		Lift:     lift,
		Drag:     drag,
		Density:  p.Density,
		Area:     p.Area,
		Inertia:  p.Inertia,
		Size:     p.Size,
		Position: p.Position,
		Angle:    vector.CalcAngle(0),
		Winches:  winches,
	}, nil
}

// Load builds a foil from a datasheet and its optional outline.
func Load(p Params, datasheet string, winches ...*Winch) (*Foil, error) {
	lift, drag, err := ReadDatasheet(datasheet)
	if err != nil {
		return nil, err
	}
	f, err := New(p, lift, drag, winches...)
	if err != nil {
		return nil, err
	}
	if outline := PolygonPath(datasheet); outline != datasheet && DialectOf(datasheet) != Mainsail {
		poly, err := ReadPolygon(outline)
		if err != nil {
			return nil, err
		}
		f.Polygon = poly
	}
	return f, nil
}

func (f *Foil) CL(a vector.Angle) float64 { return f.Lift.At(a) }
func (f *Foil) CD(a vector.Angle) float64 { return f.Drag.At(a) }

// magnitude computes 0.5·C·ρ·v²·A. The apparent flow points where it goes,
// the coefficient is looked up where it comes from.
func (f *Foil) magnitude(c Curve, apparent vector.Vector, what string) float64 {
	attack := apparent.Angle.Add(vector.CalcAngle(180)).Norm()
	v := apparent.Norm
	m := 0.5 * c.At(attack) * f.Density * v * v * f.Area
	if math.IsNaN(m) || math.IsInf(m, 0) {
		log.WithFields(log.Fields{"foil": f.Name, what: m}).Warn("Invalid force")
		return 0
	}
	return m
}

func (f *Foil) LiftMagnitude(apparent vector.Vector) float64 {
	return f.magnitude(f.Lift, apparent, "lift")
}

func (f *Foil) DragMagnitude(apparent vector.Vector) float64 {
	return f.magnitude(f.Drag, apparent, "drag")
}

// LiftForce is perpendicular to the apparent flow. The side depends on the
// half plane the flow points to; negative coefficients flip the side so the
// returned magnitude stays positive.
func (f *Foil) LiftForce(apparent vector.Vector) vector.Vector {
	lift := f.LiftMagnitude(apparent)

	if apparent.Angle.Norm().Calc() >= 180 {
		if lift < 0 {
			return vector.New(apparent.Angle.Add(vector.CalcAngle(270)), -lift)
		}
		return vector.New(apparent.Angle.Add(vector.CalcAngle(90)), lift)
	}
	if lift < 0 {
		return vector.New(apparent.Angle.Add(vector.CalcAngle(90)), -lift)
	}
	return vector.New(apparent.Angle.Sub(vector.CalcAngle(90)), lift)
}

// DragForce is along the apparent flow.
func (f *Foil) DragForce(apparent vector.Vector) vector.Vector {
	drag := f.DragMagnitude(apparent)
	if drag < 0 {
		return vector.New(apparent.Angle.Add(vector.CalcAngle(180)), -drag)
	}
	return vector.New(apparent.Angle, drag)
}

// Moment of a force applied at the foil mount about the boat origin.
func (f *Foil) Moment(force vector.Vector) float64 {
	m := -math.Sin(force.Angle.Radians()) * force.Norm * f.Position.Norm
	if math.IsNaN(m) || math.IsInf(m, 0) {
		log.WithFields(log.Fields{"foil": f.Name, "moment": m}).Warn("Invalid moment")
		return 0
	}
	return m
}

// tip returns the position of the sail end at the given sail angle.
func (f *Foil) tip(angle vector.Angle) vector.Vector {
	return f.Position.Add(vector.New(angle.Add(f.Position.Angle).Add(vector.CalcAngle(180)), f.Size))
}

// SetSailRotation trims every sheet so the sail can open up to angle.
func (f *Foil) SetSailRotation(angle vector.Angle) {
	if len(f.Winches) == 0 {
		return
	}

	pos := f.Position.Add(vector.New(vector.CalcAngle(180).Add(angle).Add(f.Position.Angle), f.Size))

	length := 0.0
	for _, w := range f.Winches {
		length = math.Max(length, w.Distance(pos))
	}
	for _, w := range f.Winches {
		w.Length = length
		w.Rot = angle
	}
}

// UpdateSailRotation lets the apparent wind swing the sail about its mast
// until a sheet comes taut.
func (f *Foil) UpdateSailRotation(dt float64, wind vector.Vector) {
	if len(f.Winches) == 0 {
		return
	}

	force := f.LiftForce(wind).Add(f.DragForce(wind))
	moment := -math.Sin(force.Angle.Radians()) * CenterOfEffort
	alpha := moment / SailInertia

	f.RotationalVelocity += alpha * dt

	pos1 := f.tip(f.Angle)
	change := (f.RotationalVelocity*dt + 0.5*alpha*dt*dt) * 180 / math.Pi
	angle2 := f.Angle.Add(vector.CalcAngle(change))
	pos2 := f.tip(angle2)

	for _, w := range f.Winches {
		d1 := w.Distance(pos1)
		d2 := w.Distance(pos2)
		if d1 < w.Length || d1 > d2 {
			continue
		}

		// sheets are symmetric, follow the side the sail is on
		diff1 := math.Abs(vector.Normalize180(f.Angle.Sub(w.Rot).Calc()))
		diff2 := math.Abs(vector.Normalize180(f.Angle.Add(w.Rot).Calc()))
		if diff1 > diff2 {
			for _, n := range f.Winches {
				n.Rot = vector.CalcAngle(-n.Rot.Calc())
			}
		}

		if vector.Normalize180(w.Rot.Calc()) > 0 {
			f.Angle = w.Rot.Sub(vector.CalcAngle(SheetSnap))
		} else {
			f.Angle = w.Rot.Add(vector.CalcAngle(SheetSnap))
		}
		f.RotationalVelocity = 0
	}

	if math.Abs(f.RotationalVelocity) > 1e-10 {
		f.Angle = angle2
	}
}
