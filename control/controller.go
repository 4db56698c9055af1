package control

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/boat"
	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/latlon"
	"github.com/a-bouts/sail-sim/polar"
	"github.com/a-bouts/sail-sim/race"
	"github.com/a-bouts/sail-sim/route"
	"github.com/a-bouts/sail-sim/vector"
	"github.com/a-bouts/sail-sim/wind"
)

const (
	// DefaultArrivalRadius is in meters.
	DefaultArrivalRadius = 5.0
	// rotationScale converts the rotation rate to degrees per physics step.
	rotationScale = 0.03
)

// Pathfinder plans the path from start to stop given the direction the wind
// comes from and the boat heading.
type Pathfinder interface {
	Plan(start, stop latlon.LatLon, tw vector.Angle, heading vector.Angle) route.Leg
}

// Settings are handed to every algorithm Plan starts.
type Settings struct {
	RecalcInterval float64
	StuckCap       int
	// OnComplete is called once when a precision course is done.
	OnComplete func(race.Course)
}

type Controller struct {
	Boat       *boat.Boat
	Polar      *polar.Table
	Pathfinder Pathfinder
	Course     *race.ActiveCourse

	RudderLaw RudderLaw
	SailLaw   SailLaw

	ArrivalRadius float64
	Settings      Settings

	algorithm Algorithm
	cartesian latlon.LatLonCartesian
}

func NewController(b *boat.Boat, p *polar.Table) *Controller {
	return &Controller{
		Boat:          b,
		Polar:         p,
		Pathfinder:    route.NewPlanner(p),
		Course:        &race.ActiveCourse{},
		RudderLaw:     DefaultRudder(),
		SailLaw:       SailFunc(AngleOfAttack),
		ArrivalRadius: DefaultArrivalRadius,
		Settings: Settings{
			RecalcInterval: DefaultRecalcInterval,
			StuckCap:       DefaultStuckCap,
		},
	}
}

func (c *Controller) SetPathfinder(p Pathfinder) {
	c.Pathfinder = p
}

// Plan starts following waypoints, or keeping station inside them, and
// returns the first active course.
func (c *Controller) Plan(t race.Type, waypoints []latlon.LatLon) ([]latlon.LatLon, error) {
	return c.PlanCourse(race.Course{Type: t, Waypoints: waypoints})
}

// PlanCourse is Plan keeping the course name.
func (c *Controller) PlanCourse(course race.Course) ([]latlon.LatLon, error) {
	if err := course.Validate(); err != nil {
		return nil, err
	}

	switch course.Type {
	case race.Endurance, race.Precision:
		w := NewWaypointFollower(c, course)
		w.RecalcInterval = c.Settings.RecalcInterval
		w.StuckCap = c.Settings.StuckCap
		w.OnComplete = c.Settings.OnComplete
		w.CalculateNextLegs()
		c.algorithm = w
	case race.StationKeeping:
		s := NewStationKeeper(c, course.Waypoints)
		s.RecalcInterval = c.Settings.RecalcInterval
		c.algorithm = s
	}

	if c.Course.Len() == 0 {
		return nil, errs.Control("no course to %v", course.Waypoints[0])
	}

	log.WithFields(log.Fields{
		"course":    course.Name,
		"type":      course.Type,
		"waypoints": len(course.Waypoints),
	}).Info("Plan initialized")

	return c.Course.Points(), nil
}

func (c *Controller) SetAlgorithm(a Algorithm) {
	c.algorithm = a
	log.WithField("algorithm", a.Info().Algorithm).Info("Algorithm set")
}

func (c *Controller) Algorithm() Algorithm {
	return c.algorithm
}

func (c *Controller) Info() Info {
	if c.algorithm == nil {
		return Info{Algorithm: "none"}
	}
	return c.algorithm.Info()
}

// Update runs the algorithm, or steers through the active course when none
// is set.
func (c *Controller) Update(dt float64) error {
	if c.algorithm != nil {
		return c.algorithm.Update(dt)
	}
	c.UpdateRudder()
	c.UpdateSails()
	return nil
}

// Leg plans from start to stop. The boat wind vector points where the air
// goes, but the pathfinder is handed its angle as the direction the wind
// comes from, so a target dead downwind is planned as an upwind leg.
func (c *Controller) Leg(start, stop latlon.LatLon) []latlon.LatLon {
	return c.Pathfinder.Plan(start, stop, c.Boat.Wind.Angle, c.Boat.Heading).Points
}

// VB reads the boat speed from the polar, polar.NotFound without one.
func (c *Controller) VB(angle vector.Angle, windSpeed float64) float64 {
	if c.Polar == nil {
		return polar.NotFound
	}
	return c.Polar.BoatSpeed(angle, windSpeed)
}

// DistanceTo returns the flat distance from the boat to p in meters.
func (c *Controller) DistanceTo(p latlon.LatLon) float64 {
	return c.cartesian.MetersTo(c.Boat.LatLon(), p)
}

// CheckArrival pops the head of the active course once the boat is within
// the arrival radius, and tells which maneuver the turn there implies.
func (c *Controller) CheckArrival() route.Maneuver {
	pos := c.Boat.LatLon()
	if c.Course.Len() < 2 {
		c.Course.Ensure(pos)
		return route.Direct
	}

	head := c.Course.Head()
	if c.DistanceTo(head) >= c.ArrivalRadius {
		return route.Direct
	}

	approach := c.cartesian.CourseTo(head, pos).Angle
	departure := c.cartesian.CourseTo(head, c.Course.Next()).Angle

	c.Course.Pop()

	rw := c.relativeWind()
	switch {
	case brackets(approach, departure, rw+180):
		return route.Jibe
	case brackets(approach, departure, rw):
		return route.Tack
	}
	return route.Direct
}

func (c *Controller) relativeWind() float64 {
	return wind.TwaAngle(c.Boat.Heading, c.Boat.Wind.Angle)
}

// brackets tells whether target lies on the arc going counter clockwise
// from a1 to a2.
func brackets(a1, a2 vector.Angle, target float64) bool {
	x1 := a1.Norm().Calc()
	x2 := a2.Norm().Calc()
	t := vector.FloorMod(target, 360)
	if x1 <= x2 {
		return x1 <= t && t <= x2
	}
	return t >= x1 || t <= x2
}

// UpdateRudder steers to the head of the active course.
func (c *Controller) UpdateRudder() {
	c.Course.Ensure(c.Boat.LatLon())

	if m := c.CheckArrival(); m != route.Direct {
		log.WithField("maneuver", m).Debug("Maneuver ahead")
	}

	c.SteerTo(c.cartesian.CourseTo(c.Boat.LatLon(), c.Course.Head()).Angle)
}

// SteerTo applies the rudder law toward a Calc heading and returns the
// rudder angle actually set.
func (c *Controller) SteerTo(target vector.Angle) float64 {
	current := c.Boat.LinearVelocity.Angle
	headingError := vector.Normalize180(target.Sub(current).Calc())
	rotation := c.Boat.RotationalVelocity * 180 / math.Pi * rotationScale

	return c.Boat.SetRudder(c.RudderLaw.Rudder(headingError, rotation))
}

// UpdateSails trims the first sail to the apparent wind.
func (c *Controller) UpdateSails() {
	if len(c.Boat.Sails) == 0 {
		return
	}
	apparent := c.Boat.GlobalApparentWind().Angle.Add(vector.CalcAngle(180))
	relative := vector.Normalize180(apparent.Sub(c.Boat.Heading).Calc())

	c.Boat.Sails[0].SetSailRotation(vector.CalcAngle(c.SailLaw.Sail(relative)))
}
