package boat

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/vector"
)

// Update advances the boat by dt seconds. Forces are refreshed between
// velocity sub-steps; position and heading are integrated once at the end.
// A NaN or infinite state aborts with an ErrPhysics error.
func (b *Boat) Update(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return errs.Validation("timestep %v must be positive", dt)
	}
	if dt > 1 {
		log.WithField("dt", dt).Warn("Large timestep, physics may be unstable")
	}

	k := b.SubIterations
	if k <= 0 {
		k = DefaultSubIterations
	}
	sub := dt / float64(k+1)

	b.updateSails(sub)
	b.updateHulls()
	for i := 0; i < k; i++ {
		b.updateLinearVelocity(dt / float64(k))
		b.updateRotationalVelocity(sub)
		b.updateSails(sub)
		b.updateHulls()
	}

	b.updatePosition(dt)
	b.updateHeading(dt)

	return b.validate()
}

func (b *Boat) updateSails(dt float64) {
	b.SailForce = vector.New(vector.CalcAngle(0), 0)
	b.SailMoment = 0
	for i, s := range b.Sails {
		b.SailForce = b.SailForce.Add(b.SailLiftForce(i).Add(b.SailDragForce(i)))
		s.UpdateSailRotation(dt, b.SailApparentWind(i))
	}
}

func (b *Boat) updateHulls() {
	b.HullForce = vector.New(vector.CalcAngle(0), 0)
	b.HullMoment = 0
	for i := range b.Hulls {
		lift, lm := b.HullLiftForce(i)
		drag, dm := b.HullDragForce(i)
		b.HullForce = b.HullForce.Add(lift.Add(drag))
		b.HullMoment += lm + dm
	}
}

// acceleration of the boat, its angle rounded to 1/precision degree.
func (b *Boat) acceleration(precision float64) vector.Vector {
	f := b.Force()
	return vector.FromXY(safeDiv(f.X(), b.Mass), safeDiv(f.Y(), b.Mass)).Rounded(precision)
}

func (b *Boat) angularAcceleration() float64 {
	return safeDiv(b.Moment(), b.Inertia())
}

func (b *Boat) updateLinearVelocity(dt float64) {
	b.LinearVelocity = b.LinearVelocity.Add(b.acceleration(1e6).Scale(dt))
}

func (b *Boat) updateRotationalVelocity(dt float64) {
	b.RotationalVelocity += b.angularAcceleration() * dt
}

func (b *Boat) updatePosition(dt float64) {
	a := b.acceleration(1e4)
	disp := b.LinearVelocity.Scale(dt).Add(a.Scale(dt * dt * 0.5))
	b.Position = b.Position.Add(disp.MeterToDegree())
}

func (b *Boat) updateHeading(dt float64) {
	rad := b.RotationalVelocity*dt + b.angularAcceleration()*dt*dt/2
	b.Heading = b.Heading.Add(vector.CalcAngle(rad * 180 / math.Pi))
}

func (b *Boat) validate() error {
	speed := b.LinearVelocity.Norm
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return errs.Physics("invalid linear velocity %v", speed)
	}
	if math.IsNaN(b.RotationalVelocity) || math.IsInf(b.RotationalVelocity, 0) {
		return errs.Physics("invalid rotational velocity %v", b.RotationalVelocity)
	}
	if !b.Position.IsFinite() || math.IsNaN(b.Heading.Value) || math.IsInf(b.Heading.Value, 0) {
		return errs.Physics("invalid position %v heading %v", b.Position, b.Heading)
	}

	if speed > b.Limits.MaxSpeed {
		log.WithFields(log.Fields{"speed": speed, "max": b.Limits.MaxSpeed}).Warn("Boat speed exceeds realistic maximum")
	}
	if math.Abs(b.RotationalVelocity) > b.Limits.MaxRotation {
		log.WithFields(log.Fields{"rotation": b.RotationalVelocity, "max": b.Limits.MaxRotation}).Warn("Angular velocity exceeds realistic maximum")
	}
	return nil
}

func safeDiv(num, denom float64) float64 {
	if math.Abs(denom) > 1e-10 {
		return num / denom
	}
	return 0
}
