package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bouts/sail-sim/control"
	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/race"
	"github.com/a-bouts/sail-sim/route"
	"github.com/a-bouts/sail-sim/wind"
)

const scenario = `
polars = "test.pol"
mass = 20

[physics]
timestep = 0.05

[wind]
direction = 180
speed = 6

[initial_state]
latitude = 0.001
longitude = 0.002
heading = 90

[[hulls]]
name = "vaka"
datasheet = "hull.txt"
wetted_area = 0.5
rotational_inertia = 10
size = 4
position = { angle = 0, distance = 0 }

[[hulls]]
name = "rudder"
datasheet = "hull.txt"
wetted_area = 0.05
rotational_inertia = 0.1
size = 0.3
position = { angle = 0, distance = 0 }

[[sails]]
name = "main"
datasheet = "sail.txt"
wetted_area = 3
rotational_inertia = 0.54
size = 1.5
initial_angle = 10
position = { angle = 0, distance = 0.5 }

  [[sails.winches]]
  position = { angle = 180, distance = 1 }
  offset_angle = 90
  offset_distance = 0.2
  length = 1.5
  radius = 0.05

[control]
noise = 1.5
rudder_limit = 8

[course]
name = "triangle"
type = "p"
waypoints = [ { lat = 0.002, lon = 0.002 }, { lat = 0.002, lon = 0.003 } ]
`

func writeScenario(t *testing.T, content string) string {
	dir := t.TempDir()
	files := map[string]string{
		"scenario.toml": content,
		"hull.txt":      "alpha 0 90 180\nCL 0 0.5 0\nCD 0.05 1 0.05\n",
		"sail.txt":      "alpha 0 90 180\nCL 0 1 0\nCD 0.1 1.2 0.1\n",
		"test.pol":      "0;5;10\n10;1;2\n30;3;4\n90;5;6\n180;2;3\nx;45;150\n",
	}
	for name, c := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(c), 0o644))
	}
	return filepath.Join(dir, "scenario.toml")
}

func TestParse(t *testing.T) {
	path := writeScenario(t, scenario)
	c, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, path, c.Path())
	assert.Equal(t, 20.0, c.Mass)
	assert.Equal(t, 0.05, c.Physics.Timestep)
	assert.Equal(t, 30, c.Physics.SubIterations)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "test.pol"), c.Polars)
	assert.Equal(t, 997.77, c.Hulls[0].MaterialDensity)
	assert.Equal(t, 1.204, c.Sails[0].MaterialDensity)
	assert.Equal(t, "main", c.Sails[0].Name)
	require.Len(t, c.Sails[0].Winches, 1)
	assert.Equal(t, race.Precision, c.Course.Type)
	assert.Len(t, c.Course.Waypoints, 2)
	assert.Equal(t, 1.5, c.Control.Noise)
	assert.Equal(t, 1.0, c.Control.Stability)
}

func TestBuild(t *testing.T) {
	c, err := Parse(writeScenario(t, scenario))
	require.NoError(t, err)

	b, err := c.BuildBoat()
	require.NoError(t, err)
	require.Len(t, b.Hulls, 2)
	assert.InDelta(t, 2.0, b.Rudder().Position.Norm, 1e-9)
	assert.InDelta(t, 180, b.Rudder().Position.Angle.Calc(), 1e-9)
	assert.InDelta(t, 0.001, b.LatLon().Lat, 1e-8)
	assert.InDelta(t, 0.002, b.LatLon().Lon, 1e-8)
	assert.Equal(t, 90.0, b.Heading.Calc())
	assert.Equal(t, 10.0, b.Sails[0].Angle.Calc())
	assert.Equal(t, 10.0, b.Sails[0].Winches[0].Rot.Calc())
	assert.Equal(t, 8.0, b.RudderLimit)
	assert.Equal(t, -8.0, b.SetRudder(-30))

	w, err := c.BuildWind()
	require.NoError(t, err)
	assert.IsType(t, wind.Constant{}, w)

	completed := false
	ctrl, err := c.BuildController(b, func(race.Course) { completed = true })
	require.NoError(t, err)
	require.NotNil(t, ctrl.Polar)
	assert.Equal(t, 45.0, ctrl.Pathfinder.(route.Planner).Upwind)

	f, ok := ctrl.Algorithm().(*control.WaypointFollower)
	require.True(t, ok)
	assert.Equal(t, "triangle", f.Course.Name)
	assert.NotNil(t, f.OnComplete)
	assert.False(t, completed)
	assert.GreaterOrEqual(t, ctrl.Course.Len(), 2)
}

func TestBuildDirect(t *testing.T) {
	c, err := Parse(writeScenario(t, scenario+"\n"))
	require.NoError(t, err)
	c.Control.Algorithm = "direct"
	c.Control.Heading = 45

	b, err := c.BuildBoat()
	require.NoError(t, err)
	ctrl, err := c.BuildController(b, nil)
	require.NoError(t, err)
	assert.IsType(t, &control.Direct{}, ctrl.Algorithm())
}

func TestParseErrors(t *testing.T) {
	for name, c := range map[string]struct {
		content string
		field   string
	}{
		"mass":      {"mass = -1\n", "mass"},
		"rudder":    {strings.Replace(scenario, "rudder_limit = 8", "rudder_limit = 0", 1), "control.rudder_limit"},
		"hulls":     {"mass = 1\n", "hulls"},
		"algorithm": {strings.Replace(scenario, "noise = 1.5", "algorithm = \"x\"", 1), "control.algorithm"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(writeScenario(t, c.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "scenario.toml")
			assert.True(t, errors.Is(err, errs.ErrValidation))
			assert.Contains(t, err.Error(), c.field)
		})
	}

	_, err := Parse(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errs.ErrData))
}

func TestBuildMissingDatasheet(t *testing.T) {
	path := writeScenario(t, scenario)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(path), "sail.txt")))

	c, err := Parse(path)
	require.NoError(t, err)
	_, err = c.BuildBoat()
	assert.True(t, errors.Is(err, errs.ErrData))
	assert.Contains(t, err.Error(), "sail.txt")
}

func TestParseCourses(t *testing.T) {
	path := writeScenario(t, strings.Replace(scenario, "mass = 20", "mass = 20\ncourses = \"courses.json\"", 1))
	courses := `[
		{"name": "square", "type": "p", "waypoints": [{"lat": 0, "lon": 0}]},
		{"name": "triangle", "type": "e", "waypoints": [{"lat": 0.001, "lon": 0.001}, {"lat": 0, "lon": 0.001}, {"lat": 0, "lon": 0}]}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "courses.json"), []byte(courses), 0o644))

	c, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, race.Endurance, c.Course.Type)
	assert.Len(t, c.Course.Waypoints, 3)

	path = writeScenario(t, strings.Replace(scenario, "mass = 20", "mass = 20\ncourses = \"courses.json\"", 1))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "courses.json"), []byte(`[]`), 0o644))
	_, err = Parse(path)
	assert.True(t, errors.Is(err, errs.ErrData))
	assert.Contains(t, err.Error(), "triangle")
}
