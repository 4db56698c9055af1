// Package config reads the TOML scenario file describing the boat, its
// environment and what it should sail.
package config

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/latlon"
	"github.com/a-bouts/sail-sim/race"
	"github.com/a-bouts/sail-sim/vector"
)

// Mount places a part on the boat: a Calc angle in degrees and a distance
// from the centre in meters.
type Mount struct {
	Angle    float64 `toml:"angle"`
	Distance float64 `toml:"distance"`
}

func (m Mount) Vector() vector.Vector {
	return vector.New(vector.CalcAngle(m.Angle), m.Distance)
}

type Hull struct {
	Name              string  `toml:"name"`
	Datasheet         string  `toml:"datasheet"`
	MaterialDensity   float64 `toml:"material_density"`
	WettedArea        float64 `toml:"wetted_area"`
	Position          Mount   `toml:"position"`
	RotationalInertia float64 `toml:"rotational_inertia"`
	Size              float64 `toml:"size"`
}

type Winch struct {
	Position       Mount   `toml:"position"`
	OffsetAngle    float64 `toml:"offset_angle"`
	OffsetDistance float64 `toml:"offset_distance"`
	Length         float64 `toml:"length"`
	Radius         float64 `toml:"radius"`
}

type Sail struct {
	Hull
	InitialAngle float64 `toml:"initial_angle"`
	Winches      []Winch `toml:"winches"`
}

type Physics struct {
	Timestep      float64 `toml:"timestep"` // s
	StepsPerTick  int     `toml:"steps_per_tick"`
	SubIterations int     `toml:"sub_iterations"`
	MaxSpeed      float64 `toml:"max_speed"`    // m/s
	MaxRotation   float64 `toml:"max_rotation"` // rad/s
	WaterDensity  float64 `toml:"water_density"`
	AirDensity    float64 `toml:"air_density"`
}

// Wind is constant unless a GRIB file or directory is given.
type Wind struct {
	Direction float64 `toml:"direction"` // Calc degrees
	Speed     float64 `toml:"speed"`     // m/s
	Grib      string  `toml:"grib"`
	GribDir   string  `toml:"grib_dir"`
	Start     string  `toml:"start"` // RFC 3339, first forecast when empty
}

type Initial struct {
	Latitude  float64 `toml:"latitude"`
	Longitude float64 `toml:"longitude"`
	Heading   float64 `toml:"heading"` // Calc degrees
}

type Control struct {
	// Algorithm is waypoint, direct or vmg.
	Algorithm      string  `toml:"algorithm"`
	Noise          float64 `toml:"noise"`
	Stability      float64 `toml:"stability"`
	ArrivalRadius  float64 `toml:"arrival_radius"`  // m
	RecalcInterval float64 `toml:"recalc_interval"` // s
	StuckCap       int     `toml:"stuck_cap"`
	RudderLimit    float64 `toml:"rudder_limit"` // degrees either side
	Heading        float64 `toml:"heading"` // direct only, Calc degrees
}

type Config struct {
	Polars  string      `toml:"polars"`
	Mass    float64     `toml:"mass"` // kg
	Physics Physics     `toml:"physics"`
	Wind    Wind        `toml:"wind"`
	Initial Initial     `toml:"initial_state"`
	Hulls   []Hull      `toml:"hulls"`
	Sails   []Sail      `toml:"sails"`
	Control Control     `toml:"control"`
	Course  race.Course `toml:"course"`
	// Courses is an optional JSON file of courses; Course.Name then picks
	// one of them.
	Courses string `toml:"courses"`

	path string
}

// Default returns the parameters used when the file leaves them out.
func Default() *Config {
	return &Config{
		Mass: 15,
		Physics: Physics{
			Timestep:      0.03,
			StepsPerTick:  1,
			SubIterations: 30,
			MaxSpeed:      50,
			MaxRotation:   10,
			WaterDensity:  997.77,
			AirDensity:    1.204,
		},
		Wind: Wind{Direction: 270, Speed: 5},
		Control: Control{
			Algorithm:      "waypoint",
			Noise:          2,
			Stability:      1,
			ArrivalRadius:  5,
			RecalcInterval: 1,
			StuckCap:       100,
			RudderLimit:    10,
		},
		Course: race.Course{Type: race.Endurance},
	}
}

// Parse reads a scenario file over the defaults. Relative paths in the file
// are resolved against its directory.
func Parse(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errs.Data("config %s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.WithField("keys", strings.Join(keys, ",")).Warn("Unknown config keys")
	}

	c.path = path
	c.resolve(filepath.Dir(path))
	c.fill()
	if err := c.loadCourse(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	log.WithFields(log.Fields{
		"config": path,
		"hulls":  len(c.Hulls),
		"sails":  len(c.Sails),
	}).Info("Loaded configuration")

	return c, nil
}

func (c *Config) Path() string {
	return c.path
}

func (c *Config) resolve(dir string) {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Polars = join(c.Polars)
	c.Courses = join(c.Courses)
	c.Wind.Grib = join(c.Wind.Grib)
	c.Wind.GribDir = join(c.Wind.GribDir)
	for i := range c.Hulls {
		c.Hulls[i].Datasheet = join(c.Hulls[i].Datasheet)
	}
	for i := range c.Sails {
		c.Sails[i].Datasheet = join(c.Sails[i].Datasheet)
	}
}

// fill gives hulls the water density and sails the air density when the
// file does not set one.
func (c *Config) fill() {
	for i := range c.Hulls {
		if c.Hulls[i].MaterialDensity == 0 {
			c.Hulls[i].MaterialDensity = c.Physics.WaterDensity
		}
	}
	for i := range c.Sails {
		if c.Sails[i].MaterialDensity == 0 {
			c.Sails[i].MaterialDensity = c.Physics.AirDensity
		}
	}
}

func (c *Config) loadCourse() error {
	if c.Courses == "" {
		return nil
	}
	cs, err := race.Load(c.Courses)
	if err != nil {
		return err
	}
	course, ok := race.Find(cs, c.Course.Name)
	if !ok {
		return errs.Data("courses %s: no course named %q", c.Courses, c.Course.Name)
	}
	c.Course = course
	return nil
}

func positive(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return errs.Validation("%s = %v, must be positive", field, v)
	}
	return nil
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errs.Validation("%s = %v, must be finite", field, v)
	}
	return nil
}

func (h Hull) validate(field string) error {
	if h.Datasheet == "" {
		return errs.Validation("%s.datasheet is required", field)
	}
	if err := positive(field+".material_density", h.MaterialDensity); err != nil {
		return err
	}
	if err := positive(field+".wetted_area", h.WettedArea); err != nil {
		return err
	}
	if err := positive(field+".size", h.Size); err != nil {
		return err
	}
	if h.RotationalInertia < 0 || math.IsNaN(h.RotationalInertia) {
		return errs.Validation("%s.rotational_inertia = %v, must not be negative", field, h.RotationalInertia)
	}
	if err := finite(field+".position.angle", h.Position.Angle); err != nil {
		return err
	}
	return finite(field+".position.distance", h.Position.Distance)
}

func (c *Config) Validate() error {
	if err := positive("mass", c.Mass); err != nil {
		return err
	}
	if err := positive("physics.timestep", c.Physics.Timestep); err != nil {
		return err
	}
	if c.Physics.StepsPerTick < 1 {
		return errs.Validation("physics.steps_per_tick = %d, must be at least 1", c.Physics.StepsPerTick)
	}
	if c.Physics.SubIterations < 1 || c.Physics.SubIterations > 100 {
		return errs.Validation("physics.sub_iterations = %d, must be in [1, 100]", c.Physics.SubIterations)
	}
	if err := positive("wind.speed", c.Wind.Speed); err != nil && c.Wind.Grib == "" && c.Wind.GribDir == "" {
		return err
	}
	if c.Wind.Start != "" {
		if _, err := time.Parse(time.RFC3339, c.Wind.Start); err != nil {
			return errs.Validation("wind.start = %q: %v", c.Wind.Start, err)
		}
	}
	if c.Initial.Latitude < -90 || c.Initial.Latitude > 90 || math.IsNaN(c.Initial.Latitude) {
		return errs.Validation("initial_state.latitude = %v, must be in [-90, 90]", c.Initial.Latitude)
	}
	if err := finite("initial_state.longitude", c.Initial.Longitude); err != nil {
		return err
	}

	if len(c.Hulls) == 0 {
		return errs.Validation("hulls: at least one hull is required")
	}
	for i, h := range c.Hulls {
		if err := h.validate(fmt.Sprintf("hulls[%d]", i)); err != nil {
			return err
		}
	}
	for i, s := range c.Sails {
		field := fmt.Sprintf("sails[%d]", i)
		if err := s.validate(field); err != nil {
			return err
		}
		for j, w := range s.Winches {
			if err := positive(fmt.Sprintf("%s.winches[%d].length", field, j), w.Length); err != nil {
				return err
			}
			if err := positive(fmt.Sprintf("%s.winches[%d].radius", field, j), w.Radius); err != nil {
				return err
			}
		}
	}

	switch c.Control.Algorithm {
	case "waypoint", "vmg":
		if err := c.Course.Validate(); err != nil {
			return err
		}
	case "direct":
	default:
		return errs.Validation("control.algorithm = %q, want waypoint, direct or vmg", c.Control.Algorithm)
	}
	if err := positive("control.arrival_radius", c.Control.ArrivalRadius); err != nil {
		return err
	}
	if err := positive("control.recalc_interval", c.Control.RecalcInterval); err != nil {
		return err
	}
	if err := positive("control.rudder_limit", c.Control.RudderLimit); err != nil {
		return err
	}
	if c.Control.Stability == 0 {
		return errs.Validation("control.stability must not be zero")
	}
	return nil
}

// Start is the date elapsed simulation time counts from, zero when unset.
func (c *Config) Start() time.Time {
	t, _ := time.Parse(time.RFC3339, c.Wind.Start)
	return t
}

// Position is the initial position.
func (c *Config) Position() latlon.LatLon {
	return latlon.LatLon{Lat: c.Initial.Latitude, Lon: c.Initial.Longitude}
}
