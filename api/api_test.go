package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bouts/sail-sim/boat"
	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/latlon"
	"github.com/a-bouts/sail-sim/polar"
	"github.com/a-bouts/sail-sim/race"
	"github.com/a-bouts/sail-sim/sim"
	"github.com/a-bouts/sail-sim/vector"
)

type fakeSim struct {
	snap      sim.Snapshot
	planned   []latlon.LatLon
	heading   *vector.Angle
	headingEr error
	resets    int
}

func (f *fakeSim) Snapshot() sim.Snapshot { return f.snap }

func (f *fakeSim) Plan(t race.Type, wps []latlon.LatLon) error {
	if err := (race.Course{Type: t, Waypoints: wps}).Validate(); err != nil {
		return err
	}
	f.planned = wps
	return nil
}

func (f *fakeSim) Reset() error {
	f.resets++
	return nil
}

func (f *fakeSim) SetHeading(h vector.Angle) error {
	if f.headingEr != nil {
		return f.headingEr
	}
	f.heading = &h
	return nil
}

func serve(t *testing.T, f *fakeSim, p *polar.Table, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	Handler(InitServer(f, p)).ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := serve(t, &fakeSim{}, nil, http.MethodGet, "/sim/-/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"Ok"}`, rec.Body.String())
}

func TestState(t *testing.T) {
	f := &fakeSim{snap: sim.Snapshot{
		Tick:   12,
		Boat:   boat.State{Heading: 90, Speed: 2},
		Course: race.Snapshot{Version: 3, Points: []latlon.LatLon{{Lat: 1, Lon: 2}}},
	}}

	rec := serve(t, f, nil, http.MethodGet, "/sim/api/v1/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got sim.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, uint64(12), got.Tick)
	assert.Equal(t, 2.0, got.Boat.Speed)

	rec = serve(t, f, nil, http.MethodGet, "/sim/api/v1/course", "")
	var course struct {
		race.Snapshot
		Length float64 `json:"length"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &course))
	assert.Equal(t, uint64(3), course.Version)
	assert.Equal(t, []latlon.LatLon{{Lat: 1, Lon: 2}}, course.Points)
	assert.InDelta(t, 248.6e3, course.Length, 1e3)

	f.snap.Boat.Speed = math.NaN()
	f.snap.Halted = true
	rec = serve(t, f, nil, http.MethodGet, "/sim/api/v1/state", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"halted":true`)
}

func TestPolar(t *testing.T) {
	table, err := polar.Parse(strings.NewReader("0;5;10\n10;1;2\n30;3;4\n90;5;6\n180;2;3\nx;45;150\n"), "test.pol")
	require.NoError(t, err)

	rec := serve(t, &fakeSim{}, nil, http.MethodGet, "/sim/api/v1/polar?twa=20&tws=7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, &fakeSim{}, table, http.MethodGet, "/sim/api/v1/polar?twa=20&tws=7", "")
	assert.JSONEq(t, `{"twa":20,"tws":7,"speed":4}`, rec.Body.String())

	rec = serve(t, &fakeSim{}, table, http.MethodGet, "/sim/api/v1/polar?twa=20&tws=7.5&interpolate=true", "")
	assert.JSONEq(t, `{"twa":20,"tws":7.5,"speed":2.5}`, rec.Body.String())

	rec = serve(t, &fakeSim{}, table, http.MethodGet, "/sim/api/v1/polar?twa=x&tws=7", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlan(t *testing.T) {
	f := &fakeSim{}
	rec := serve(t, f, nil, http.MethodPost, "/sim/api/v1/plan", `{"type":"p","waypoints":[{"lat":0.001,"lon":0}]}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []latlon.LatLon{{Lat: 0.001}}, f.planned)

	rec = serve(t, f, nil, http.MethodPost, "/sim/api/v1/plan", `{"type":"z","waypoints":[{"lat":0.001,"lon":0}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, f, nil, http.MethodPost, "/sim/api/v1/plan", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, f, nil, http.MethodGet, "/sim/api/v1/plan", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHeading(t *testing.T) {
	f := &fakeSim{}
	rec := serve(t, f, nil, http.MethodPost, "/sim/api/v1/heading", `{"heading":45}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.NotNil(t, f.heading)
	assert.Equal(t, 45.0, f.heading.Calc())

	f.headingEr = errs.Control("command queue full")
	rec = serve(t, f, nil, http.MethodPost, "/sim/api/v1/heading", `{"heading":45}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetIp(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-FORWARDED-FOR", "bad, 10.0.0.2")
	ip, err := getIp(req)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", ip)
}

func TestReset(t *testing.T) {
	f := &fakeSim{}
	rec := serve(t, f, nil, http.MethodPost, "/sim/api/v1/reset", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, f.resets)

	rec = serve(t, f, nil, http.MethodGet, "/sim/api/v1/reset", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
