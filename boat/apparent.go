package boat

import (
	"github.com/a-bouts/sail-sim/foil"
	"github.com/a-bouts/sail-sim/vector"
)

// Apparent flows point where the fluid goes.

func (b *Boat) GlobalApparentWind() vector.Vector {
	return b.Wind.Sub(b.LinearVelocity)
}

// SailApparentWind is the apparent wind in the frame of sail idx.
func (b *Boat) SailApparentWind(idx int) vector.Vector {
	ap := b.GlobalApparentWind()
	ap.Angle = ap.Angle.Add(vector.CalcAngle(180))
	ap.Angle = ap.Angle.Sub(b.Sails[idx].Angle.Add(b.Heading))
	ap.Angle = ap.Angle.Add(vector.CalcAngle(180))
	return ap
}

// HullApparentFlow is the water flowing against hull idx, including the
// tangential speed of the hull mount.
func (b *Boat) HullApparentFlow(idx int) vector.Vector {
	h := b.Hulls[idx]
	v := vector.New(b.Heading, b.RotationalVelocity*h.Position.Norm)
	v = v.Add(b.LinearVelocity)
	v.Angle = v.Angle.Sub(b.Heading.Add(h.Angle))
	v.Angle = v.Angle.Add(vector.CalcAngle(180))
	return v
}

// toGlobal rotates a force from the frame of part f to the world frame.
func (b *Boat) toGlobal(force vector.Vector, f *foil.Foil) vector.Vector {
	return vector.New(force.Angle.Add(b.Heading).Add(f.Angle).Norm(), force.Norm)
}

func (b *Boat) SailLiftForce(idx int) vector.Vector {
	s := b.Sails[idx]
	return b.toGlobal(s.LiftForce(b.SailApparentWind(idx)), s)
}

func (b *Boat) SailDragForce(idx int) vector.Vector {
	s := b.Sails[idx]
	return b.toGlobal(s.DragForce(b.SailApparentWind(idx)), s)
}

func (b *Boat) HullLiftForce(idx int) (vector.Vector, float64) {
	h := b.Hulls[idx]
	f := h.LiftForce(b.HullApparentFlow(idx))
	return b.toGlobal(f, h), h.Moment(f)
}

func (b *Boat) HullDragForce(idx int) (vector.Vector, float64) {
	h := b.Hulls[idx]
	f := h.DragForce(b.HullApparentFlow(idx))
	return b.toGlobal(f, h), h.Moment(f)
}
