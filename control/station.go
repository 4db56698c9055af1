package control

import (
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/latlon"
	"github.com/a-bouts/sail-sim/vector"
)

const (
	// StationOuterBox is how far from the centre, in meters, the boat may
	// drift before heading back.
	StationOuterBox = 20.0
	// StationInnerBox is the distance of the turning marks from the centre.
	StationInnerBox = 10.0
)

type StationState int

const (
	Upwind StationState = iota
	Downwind
	Returning
)

func (s StationState) String() string {
	switch s {
	case Downwind:
		return "downwind"
	case Returning:
		return "returning"
	}
	return "upwind"
}

// StationKeeper beats back and forth across the centre of the waypoints,
// between a mark upwind and a mark downwind of it.
type StationKeeper struct {
	Center         latlon.LatLon
	RecalcInterval float64

	c           *Controller
	state       StationState
	sinceRecalc float64
}

func NewStationKeeper(c *Controller, waypoints []latlon.LatLon) *StationKeeper {
	var center latlon.LatLon
	for _, w := range waypoints {
		center.Lat += w.Lat
		center.Lon += w.Lon
	}
	center.Lat /= float64(len(waypoints))
	center.Lon /= float64(len(waypoints))

	s := &StationKeeper{
		Center:         center,
		RecalcInterval: DefaultRecalcInterval,
		c:              c,
	}
	s.plan()

	log.WithField("center", center).Info("Keeping station")
	return s
}

func (s *StationKeeper) State() StationState {
	return s.state
}

// Target is the point currently sailed to.
func (s *StationKeeper) Target() latlon.LatLon {
	switch s.state {
	case Downwind:
		return latlon.Offset(s.Center, vector.New(s.c.Boat.Wind.Angle, -StationInnerBox))
	case Returning:
		return s.Center
	}
	return latlon.Offset(s.Center, vector.New(s.c.Boat.Wind.Angle, StationInnerBox))
}

func (s *StationKeeper) plan() {
	pos := s.c.Boat.LatLon()
	s.c.Course.Set(append([]latlon.LatLon{pos}, s.c.Leg(pos, s.Target())...))
	s.sinceRecalc = 0
}

func (s *StationKeeper) switchTo(state StationState) {
	log.WithFields(log.Fields{"from": s.state, "to": state}).Debug("Station keeping")
	s.state = state
	s.plan()
}

func (s *StationKeeper) Update(dt float64) error {
	switch {
	case s.state != Returning && s.c.DistanceTo(s.Center) > StationOuterBox:
		s.switchTo(Returning)
	case s.c.DistanceTo(s.Target()) < s.c.ArrivalRadius:
		if s.state == Upwind {
			s.switchTo(Downwind)
		} else {
			s.switchTo(Upwind)
		}
	default:
		s.sinceRecalc += dt
		if s.sinceRecalc >= s.RecalcInterval {
			s.plan()
		}
	}

	s.c.UpdateRudder()
	s.c.UpdateSails()
	return nil
}

func (s *StationKeeper) Info() Info {
	return Info{
		Algorithm: "station keeping",
		State: map[string]interface{}{
			"state":  s.state.String(),
			"center": s.Center,
		},
	}
}
