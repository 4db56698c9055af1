package control

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/latlon"
	"github.com/a-bouts/sail-sim/race"
	"github.com/a-bouts/sail-sim/vector"
)

const (
	DefaultRecalcInterval = 1.0 // s
	// DefaultStuckCap is the number of ticks after which a waypoint that was
	// not reached is skipped.
	DefaultStuckCap = 100
)

// WaypointFollower sails an endurance or precision course, keeping the
// active course two legs ahead.
type WaypointFollower struct {
	Course         race.Course
	Target         int
	RecalcInterval float64
	// StuckCap of zero never skips a waypoint.
	StuckCap int
	// OnComplete is called once when a precision course is done.
	OnComplete func(race.Course)

	c           *Controller
	sinceRecalc float64
	stuck       int
	laps        int
	done        bool
}

func NewWaypointFollower(c *Controller, course race.Course) *WaypointFollower {
	log.WithFields(log.Fields{
		"waypoints": len(course.Waypoints),
		"type":      course.Type,
	}).Info("Following waypoints")

	return &WaypointFollower{
		Course:         course,
		RecalcInterval: DefaultRecalcInterval,
		StuckCap:       DefaultStuckCap,
		c:              c,
	}
}

func (w *WaypointFollower) Done() bool {
	return w.done
}

func (w *WaypointFollower) Laps() int {
	return w.laps
}

func (w *WaypointFollower) Update(dt float64) error {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		log.WithField("dt", dt).Warn("Invalid dt, using 0")
		dt = 0
	}

	if w.TargetReached() {
		w.stuck = 0
		w.advance()
		w.sinceRecalc = 0
	} else if !w.done {
		w.stuck++
		if w.StuckCap > 0 && w.stuck > w.StuckCap {
			log.WithField("waypoint", w.Target).Errorf("Waypoint unreachable after %d iterations, skipping", w.StuckCap)
			w.stuck = 0
			w.advance()
		}
	}

	w.sinceRecalc += dt
	if w.sinceRecalc >= w.RecalcInterval {
		w.RecalculateCurrentLeg()
		w.sinceRecalc = 0
	}

	w.c.UpdateRudder()
	w.c.UpdateSails()
	return nil
}

func (w *WaypointFollower) advance() {
	w.Target = w.Course.Reached(w.Target)
	if w.Target == 0 {
		w.laps++
		log.WithField("laps", w.laps).Info("Completed lap, continuing endurance course")
	} else if w.Course.HasNextWaypoint(w.Target) {
		log.WithField("waypoint", w.Target).Info("Moving to waypoint")
	} else {
		w.done = true
		log.WithField("course", w.Course.Name).Info("All waypoints completed")
		if w.OnComplete != nil {
			w.OnComplete(w.Course)
		}
	}
	w.CalculateNextLegs()
}

// TargetReached tells whether the boat is within the arrival radius of the
// current waypoint.
func (w *WaypointFollower) TargetReached() bool {
	if w.done || len(w.Course.Waypoints) == 0 {
		return false
	}
	target := w.Course.Waypoints[w.Target%len(w.Course.Waypoints)]
	dist := w.c.DistanceTo(target)
	if dist < w.c.ArrivalRadius {
		log.WithFields(log.Fields{"waypoint": w.Target, "distance": dist}).Info("Reached waypoint")
		return true
	}
	return false
}

// CalculateNextLegs sets the active course to the leg toward the current
// waypoint followed by the leg toward the next one.
func (w *WaypointFollower) CalculateNextLegs() {
	pos := w.c.Boat.LatLon()
	course := []latlon.LatLon{pos}

	if w.Course.HasNextWaypoint(w.Target) {
		course = append(course, w.c.Leg(pos, w.Course.NextWaypoint(w.Target))...)
		last := course[len(course)-1]
		if w.Course.Type == race.Endurance && w.Target == len(w.Course.Waypoints)-1 {
			course = append(course, w.c.Leg(last, w.Course.NextWaypoint(0))...)
		} else if w.Course.HasNextWaypoint(w.Target + 1) {
			course = append(course, w.c.Leg(last, w.Course.NextWaypoint(w.Target+1))...)
		}
	}

	w.c.Course.Set(course)
}

// RecalculateCurrentLeg replans from the live position toward the current
// waypoint.
func (w *WaypointFollower) RecalculateCurrentLeg() {
	if !w.Course.HasNextWaypoint(w.Target) {
		return
	}
	pos := w.c.Boat.LatLon()
	target := w.Course.NextWaypoint(w.Target)

	log.WithFields(log.Fields{"waypoint": w.Target, "target": target}).Debug("Recalculating current leg")

	w.c.Course.Set(append([]latlon.LatLon{pos}, w.c.Leg(pos, target)...))
}

func (w *WaypointFollower) Info() Info {
	i := Info{
		Algorithm: "waypoint following",
		State: map[string]interface{}{
			"currentTarget":  w.Target,
			"totalWaypoints": len(w.Course.Waypoints),
			"courseType":     w.Course.Type,
			"laps":           w.laps,
			"done":           w.done,
		},
	}
	if w.Course.HasNextWaypoint(w.Target) {
		d, b := w.c.cartesian.DistanceAndBearingTo(w.c.Boat.LatLon(), w.Course.NextWaypoint(w.Target))
		i.State["distance"] = vector.DegreesToMeters(d)
		i.State["bearing"] = b
	}
	return i
}
