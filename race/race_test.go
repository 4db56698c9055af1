package race

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/latlon"
)

func TestParseType(t *testing.T) {
	ty, err := ParseType("e")
	require.NoError(t, err)
	assert.Equal(t, Endurance, ty)
	assert.Equal(t, "endurance", ty.String())

	_, err = ParseType("x")
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestReached(t *testing.T) {
	wps := []latlon.LatLon{{Lat: 0}, {Lat: 1}}

	e := Course{Type: Endurance, Waypoints: wps}
	assert.Equal(t, 1, e.Reached(0))
	assert.Equal(t, 0, e.Reached(1))

	p := Course{Type: Precision, Waypoints: wps}
	assert.Equal(t, 2, p.Reached(1))
	assert.False(t, p.HasNextWaypoint(2))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "box", "type": "s", "waypoints": [{"lat": 0, "lon": 0}, {"lat": 0.001, "lon": 0.001}]},
		{"name": "loop", "type": "e", "waypoints": [{"lat": 0.001, "lon": 0}]}
	]`), 0o644))

	cs, err := Load(path)
	require.NoError(t, err)
	c, ok := Find(cs, "loop")
	require.True(t, ok)
	assert.Equal(t, Endurance, c.Type)

	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "empty", "type": "p"}]`), 0o644))
	_, err = Load(path)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	_, err = Load(filepath.Join(t.TempDir(), "none.json"))
	assert.True(t, errors.Is(err, errs.ErrData))
}

func TestActiveCourse(t *testing.T) {
	var a ActiveCourse
	pos := latlon.LatLon{Lat: 1, Lon: 1}

	a.Ensure(pos)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, pos, a.Head())

	points := []latlon.LatLon{{Lat: 0}, {Lat: 1}, {Lat: 2}}
	a.Set(points)
	v := a.Version()
	points[0].Lat = 42
	assert.Equal(t, 0.0, a.Head().Lat)

	snap := a.Snapshot()
	a.Pop()
	assert.Equal(t, 1.0, a.Head().Lat)
	assert.Greater(t, a.Version(), v)
	assert.Equal(t, v, snap.Version)
	assert.Len(t, snap.Points, 3)

	a.Pop()
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, a.Head(), a.Next())
}
