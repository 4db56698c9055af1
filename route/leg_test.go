package route

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bouts/sail-sim/latlon"
	"github.com/a-bouts/sail-sim/vector"
)

var planner = Planner{Upwind: 45, Downwind: 30}

func TestBeamReachIsDirect(t *testing.T) {
	start := latlon.LatLon{}
	stop := latlon.LatLon{Lat: 0, Lon: 0.001}

	// wind along -y, course along +x
	leg := planner.Plan(start, stop, vector.CalcAngle(270), vector.CalcAngle(90))
	assert.Equal(t, Direct, leg.Maneuver)
	assert.Equal(t, []latlon.LatLon{stop}, leg.Points)
}

func TestUpwindTacks(t *testing.T) {
	start := latlon.LatLon{}
	// 10 degrees off the wind
	c := vector.New(vector.CalcAngle(270+10), 0.001)
	stop := latlon.LatLon{Lat: c.Y(), Lon: c.X()}
	heading := vector.CalcAngle(90)
	wind := vector.CalcAngle(270)

	assert.InDelta(t, 10.0, AngleToWind(start, stop, wind, heading), 1e-9)

	leg := planner.Plan(start, stop, wind, heading)
	require.Equal(t, Tack, leg.Maneuver)
	require.Len(t, leg.Points, 2)
	assert.Equal(t, stop, leg.Points[1])

	// the intermediate point lies on the first tack heading and the rest of
	// the displacement on the second one
	k := vector.New(vector.CalcAngle(270+45), 1)
	j := vector.New(vector.CalcAngle(270-45), 1)
	v := vector.FromXY(stop.Lon, stop.Lat)
	a, b, ok := solve(k, j, v)
	require.True(t, ok)
	assert.Greater(t, a, 0.0)
	assert.Greater(t, b, 0.0)

	mid := leg.Points[0]
	assert.InDelta(t, a*k.X(), mid.Lon, 1e-12)
	assert.InDelta(t, a*k.Y(), mid.Lat, 1e-12)
	assert.InDelta(t, stop.Lon, mid.Lon+b*j.X(), 1e-12)
	assert.InDelta(t, stop.Lat, mid.Lat+b*j.Y(), 1e-12)

	rest := vector.FromXY(stop.Lon-mid.Lon, stop.Lat-mid.Lat)
	assert.InDelta(t, 0.0, math.Sin((rest.Angle.Calc()-j.Angle.Calc())*math.Pi/180), 1e-9)
}

func TestDirectlyUpwind(t *testing.T) {
	start := latlon.LatLon{}
	stop := latlon.LatLon{Lat: -0.001}

	leg := planner.Plan(start, stop, vector.CalcAngle(270), vector.CalcAngle(90))
	require.Equal(t, Tack, leg.Maneuver)
	assert.InDelta(t, 0.0005, leg.Points[0].Lon, 1e-12)
	assert.InDelta(t, -0.0005, leg.Points[0].Lat, 1e-12)

	// both legs stay on the edge of the no-go zone
	for _, seg := range [][2]latlon.LatLon{{start, leg.Points[0]}, {leg.Points[0], stop}} {
		assert.InDelta(t, 45.0, AngleToWind(seg[0], seg[1], vector.CalcAngle(270), vector.CalcAngle(90)), 1e-6)
	}
}

func TestDownwindJibes(t *testing.T) {
	start := latlon.LatLon{}
	stop := latlon.LatLon{Lat: 0.001}

	leg := planner.Plan(start, stop, vector.CalcAngle(270), vector.CalcAngle(0))
	require.Equal(t, Jibe, leg.Maneuver)
	require.Len(t, leg.Points, 2)
	assert.InDelta(t, 0.0005, leg.Points[0].Lat, 1e-12)
}

func TestDegenerate(t *testing.T) {
	start := latlon.LatLon{Lat: 1, Lon: 1}

	leg := planner.Plan(start, start, vector.CalcAngle(270), vector.CalcAngle(90))
	assert.Equal(t, []latlon.LatLon{start}, leg.Points)

	// a zero no-go angle makes both tack headings parallel
	flat := Planner{Upwind: 180, Downwind: 0}
	stop := latlon.LatLon{Lat: 0.5, Lon: 1}
	leg = flat.Plan(start, stop, vector.CalcAngle(270), vector.CalcAngle(90))
	assert.Equal(t, Direct, leg.Maneuver)
	assert.Equal(t, []latlon.LatLon{stop}, leg.Points)
}

func TestNewPlannerDefaults(t *testing.T) {
	p := NewPlanner(nil)
	assert.Equal(t, DefaultUpwindNoGo, p.Upwind)
	assert.Equal(t, DefaultDownwindNoGo, p.Downwind)
}
