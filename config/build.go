package config

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/boat"
	"github.com/a-bouts/sail-sim/control"
	"github.com/a-bouts/sail-sim/foil"
	"github.com/a-bouts/sail-sim/polar"
	"github.com/a-bouts/sail-sim/race"
	"github.com/a-bouts/sail-sim/vector"
	"github.com/a-bouts/sail-sim/wind"
)

const (
	rudderName = "rudder"
	vakaName   = "vaka"
)

func (h Hull) params() foil.Params {
	return foil.Params{
		Name:     h.Name,
		Density:  h.MaterialDensity,
		Area:     h.WettedArea,
		Inertia:  h.RotationalInertia,
		Size:     h.Size,
		Position: h.Position.Vector(),
	}
}

// BuildHulls loads the hull foils. A rudder following the vaka is mounted
// at the vaka stern.
func (c *Config) BuildHulls() ([]*foil.Foil, error) {
	var hulls []*foil.Foil
	vakaSize := 0.0
	for _, h := range c.Hulls {
		p := h.params()
		if h.Name == rudderName && vakaSize > 0 {
			p.Position = vector.New(vector.CalcAngle(180), vakaSize/2)
		}
		f, err := foil.Load(p, h.Datasheet)
		if err != nil {
			return nil, err
		}
		if h.Name == vakaName {
			vakaSize = h.Size
		}
		hulls = append(hulls, f)
	}
	if last := c.Hulls[len(c.Hulls)-1].Name; last != rudderName {
		log.WithField("hull", last).Warn("Last hull is steered as the rudder")
	}
	return hulls, nil
}

func (c *Config) BuildSails() ([]*foil.Foil, error) {
	var sails []*foil.Foil
	for _, s := range c.Sails {
		var winches []*foil.Winch
		for _, w := range s.Winches {
			offset := vector.New(vector.CalcAngle(w.OffsetAngle), w.OffsetDistance)
			winch, err := foil.NewWinch(w.Position.Vector().Add(offset), w.Length, w.Radius)
			if err != nil {
				return nil, err
			}
			winches = append(winches, winch)
		}
		f, err := foil.Load(s.params(), s.Datasheet, winches...)
		if err != nil {
			return nil, err
		}
		f.Angle = vector.CalcAngle(s.InitialAngle)
		f.SetSailRotation(f.Angle)
		sails = append(sails, f)
	}
	return sails, nil
}

// BuildBoat builds the boat at its initial position and heading.
func (c *Config) BuildBoat() (*boat.Boat, error) {
	hulls, err := c.BuildHulls()
	if err != nil {
		return nil, err
	}
	sails, err := c.BuildSails()
	if err != nil {
		return nil, err
	}

	w := vector.New(vector.CalcAngle(c.Wind.Direction), c.Wind.Speed)
	b, err := boat.New(hulls, sails, w, c.Mass, c.Initial.Latitude)
	if err != nil {
		return nil, err
	}
	b.SubIterations = c.Physics.SubIterations
	b.Limits = boat.Limits{MaxSpeed: c.Physics.MaxSpeed, MaxRotation: c.Physics.MaxRotation}
	b.RudderLimit = c.Control.RudderLimit
	b.Heading = vector.CalcAngle(c.Initial.Heading)
	b.SetLatLon(c.Position())

	log.WithFields(log.Fields{
		"position": c.Position(),
		"heading":  c.Initial.Heading,
	}).Info("Initial state")

	return b, nil
}

// BuildWind returns the wind provider: a GRIB file, a directory of GRIB
// forecasts, or the constant wind.
func (c *Config) BuildWind() (wind.Provider, error) {
	switch {
	case c.Wind.GribDir != "":
		s, err := wind.LoadSeries(c.Wind.GribDir, c.Start())
		if err != nil {
			return nil, err
		}
		return s, nil
	case c.Wind.Grib != "":
		f, err := wind.Read(c.Wind.Grib, c.Start())
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return wind.Constant{Wind: vector.New(vector.CalcAngle(c.Wind.Direction), c.Wind.Speed)}, nil
}

// BuildPolar loads the polar file, nil when none is configured.
func (c *Config) BuildPolar() (*polar.Table, error) {
	if c.Polars == "" {
		return nil, nil
	}
	return polar.Load(c.Polars)
}

// BuildController wires the control laws and starts the configured
// algorithm. onComplete may be nil.
func (c *Config) BuildController(b *boat.Boat, onComplete func(race.Course)) (*control.Controller, error) {
	table, err := c.BuildPolar()
	if err != nil {
		return nil, err
	}

	ctrl := control.NewController(b, table)
	ctrl.RudderLaw = control.AtanRudder{Noise: c.Control.Noise, Stability: c.Control.Stability}
	ctrl.ArrivalRadius = c.Control.ArrivalRadius
	ctrl.Settings = control.Settings{
		RecalcInterval: c.Control.RecalcInterval,
		StuckCap:       c.Control.StuckCap,
		OnComplete:     onComplete,
	}

	switch c.Control.Algorithm {
	case "direct":
		d := control.NewDirect(ctrl)
		d.SetHeading(vector.CalcAngle(c.Control.Heading))
		ctrl.SetAlgorithm(d)
	case "vmg":
		wps := c.Course.Waypoints
		ctrl.SetAlgorithm(control.NewVMG(ctrl, wps[len(wps)-1]))
	default:
		if _, err := ctrl.PlanCourse(c.Course); err != nil {
			return nil, err
		}
	}

	return ctrl, nil
}

// Timestep is the physics step as a duration.
func (c *Config) Timestep() time.Duration {
	return time.Duration(c.Physics.Timestep * float64(time.Second))
}
