package race

import "github.com/a-bouts/sail-sim/latlon"

// ActiveCourse is the look-ahead the rudder steers through: the current
// target, any tack or jibe point before it and a hint of the following leg.
// Every change bumps Version so readers can tell stale copies apart.
type ActiveCourse struct {
	points  []latlon.LatLon
	version uint64
}

// Snapshot is a read-only copy of an ActiveCourse.
type Snapshot struct {
	Version uint64          `json:"version" msgpack:"version"`
	Points  []latlon.LatLon `json:"points" msgpack:"points"`
}

func (a *ActiveCourse) Set(points []latlon.LatLon) {
	a.points = append(a.points[:0:0], points...)
	a.version++
}

func (a *ActiveCourse) Len() int {
	return len(a.points)
}

func (a *ActiveCourse) Version() uint64 {
	return a.version
}

// Ensure makes sure at least two points are buffered, holding pos when the
// buffer is short.
func (a *ActiveCourse) Ensure(pos latlon.LatLon) {
	if len(a.points) < 2 {
		a.Set([]latlon.LatLon{pos, pos})
	}
}

// Head is the point currently steered to.
func (a *ActiveCourse) Head() latlon.LatLon {
	return a.points[0]
}

// Next is the point after the head, or the head itself.
func (a *ActiveCourse) Next() latlon.LatLon {
	if len(a.points) > 1 {
		return a.points[1]
	}
	return a.points[0]
}

// Pop drops the head. The last point is repeated so the buffer never holds
// less than two points.
func (a *ActiveCourse) Pop() {
	if len(a.points) == 0 {
		return
	}
	a.points = a.points[1:]
	if len(a.points) == 1 {
		a.points = append(a.points, a.points[0])
	}
	a.version++
}

func (a *ActiveCourse) Points() []latlon.LatLon {
	return append([]latlon.LatLon(nil), a.points...)
}

func (a *ActiveCourse) Snapshot() Snapshot {
	return Snapshot{Version: a.version, Points: a.Points()}
}
