// Package race describes the courses a boat sails and the short look-ahead
// of points it is currently steering through.
package race

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/latlon"
)

type Type string

const (
	// Endurance loops over the waypoints forever.
	Endurance Type = "e"
	// Precision visits the waypoints once.
	Precision Type = "p"
	// StationKeeping stays inside the box drawn by the waypoints.
	StationKeeping Type = "s"
)

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case Endurance, Precision, StationKeeping:
		return t, nil
	}
	return "", errs.Validation("invalid course type %q, want e, p or s", s)
}

func (t Type) String() string {
	switch t {
	case Endurance:
		return "endurance"
	case Precision:
		return "precision"
	case StationKeeping:
		return "station-keeping"
	}
	return fmt.Sprintf("Type(%s)", string(t))
}

type Course struct {
	Name      string          `json:"name" toml:"name"`
	Type      Type            `json:"type" toml:"type"`
	Waypoints []latlon.LatLon `json:"waypoints" toml:"waypoints"`
}

func (c Course) Validate() error {
	if _, err := ParseType(string(c.Type)); err != nil {
		return err
	}
	if len(c.Waypoints) == 0 {
		return errs.Validation("course %q has no waypoints", c.Name)
	}
	for i, w := range c.Waypoints {
		if math.IsNaN(w.Lat) || math.IsNaN(w.Lon) || math.IsInf(w.Lat, 0) || math.IsInf(w.Lon, 0) {
			return errs.Validation("course %q: waypoint %d is not finite", c.Name, i)
		}
	}
	return nil
}

func (c Course) HasNextWaypoint(index int) bool {
	return index < len(c.Waypoints)
}

func (c Course) NextWaypoint(index int) latlon.LatLon {
	return c.Waypoints[index]
}

// Reached returns the index following index, wrapping on endurance courses.
func (c Course) Reached(index int) int {
	if c.Type == Endurance && index >= len(c.Waypoints)-1 {
		return 0
	}
	return index + 1
}

// Load reads a JSON array of courses.
func Load(path string) ([]Course, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Data("courses %s: %v", path, err)
	}
	var cs []Course
	if err := json.Unmarshal(content, &cs); err != nil {
		return nil, errs.Data("courses %s: %v", path, err)
	}
	for _, c := range cs {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("courses %s: %w", path, err)
		}
	}
	return cs, nil
}

func Find(cs []Course, name string) (Course, bool) {
	for _, c := range cs {
		if c.Name == name {
			return c, true
		}
	}
	return Course{}, false
}
