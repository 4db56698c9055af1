// Package polar reads boat speed polars.
//
// A polar file is tab or semicolon separated:
//
//	0      ws1  ws2 ...
//	angle  bs   bs  ...
//	...
//	x      upwindNoGo  downwindMaxAngle
package polar

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/vector"
)

// NotFound is returned by BoatSpeed when the query is outside the table.
const NotFound = -1.0

type Table struct {
	WindSpeeds  []float64   `json:"tws"`
	Angles      []float64   `json:"twa"`
	Speeds      [][]float64 `json:"speeds"`
	UpwindNoGo  float64     `json:"upwindNoGo"`
	DownwindMax float64     `json:"downwindMax"`
}

// DownwindNoGo is the half width of the dead downwind zone.
func (t *Table) DownwindNoGo() float64 {
	return 180 - t.DownwindMax
}

func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Data("polar %s: %v", path, err)
	}
	defer f.Close()

	t, err := Parse(f, path)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"polar":    path,
		"angles":   len(t.Angles),
		"winds":    len(t.WindSpeeds),
		"upwind":   t.UpwindNoGo,
		"downwind": t.DownwindNoGo(),
	}).Info("Load polar")

	return t, nil
}

// Parse reads a polar table. name is only used in error messages.
func Parse(r io.Reader, name string) (*Table, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Data("polar %s: %v", name, err)
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) < 3 {
		return nil, errs.Data("polar %s: need a header, angle rows and a footer", name)
	}

	sep := "\t"
	if strings.Contains(lines[0], ";") {
		sep = ";"
	}

	// the first header cell is a label
	parts := split(lines[0], sep)
	if len(parts) < 2 {
		return nil, errs.Data("polar %s: header: no wind speeds in %q", name, lines[0])
	}
	winds, err := floats(parts[1:])
	if err != nil {
		return nil, errs.Data("polar %s: header: %v", name, err)
	}

	t := &Table{WindSpeeds: winds}
	for i, line := range lines[1 : len(lines)-1] {
		if strings.TrimSpace(strings.Split(line, sep)[0]) == "" {
			continue
		}
		row, err := floats(split(line, sep))
		if err != nil {
			return nil, errs.Data("polar %s: row %d: %v", name, i+2, err)
		}
		if len(row) != len(winds)+1 {
			return nil, errs.Data("polar %s: row %d has %d columns, want %d", name, i+2, len(row), len(winds)+1)
		}
		if n := len(t.Angles); n > 0 && row[0] <= t.Angles[n-1] {
			return nil, errs.Data("polar %s: row %d: angle %v not ascending", name, i+2, row[0])
		}
		t.Angles = append(t.Angles, row[0])
		t.Speeds = append(t.Speeds, row[1:])
	}
	if len(t.Angles) == 0 {
		return nil, errs.Data("polar %s: no angle rows", name)
	}

	footer := lines[len(lines)-1]
	fsep := "\t"
	if strings.Contains(footer, ";") {
		fsep = ";"
	}
	parts = split(footer, fsep)
	if len(parts) < 3 {
		return nil, errs.Data("polar %s: footer: want no-go angles, got %q", name, footer)
	}
	nogo, err := floats(parts[1:3])
	if err != nil {
		return nil, errs.Data("polar %s: footer: %v", name, err)
	}
	t.UpwindNoGo = nogo[0]
	t.DownwindMax = nogo[1]

	return t, nil
}

func split(line string, sep string) []string {
	parts := strings.Split(line, sep)
	for len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func floats(parts []string) ([]float64, error) {
	res := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

// twa folds an angle off the wind into [0, 180].
func twa(a vector.Angle) float64 {
	return math.Abs(vector.Normalize180(a.Calc()))
}

// BoatSpeed returns the cell of the first row whose angle exceeds the
// query and the first column whose wind speed exceeds windSpeed. There is
// no interpolation.
func (t *Table) BoatSpeed(angle vector.Angle, windSpeed float64) float64 {
	a := twa(angle)
	for i, ra := range t.Angles {
		if ra <= a {
			continue
		}
		for j, ws := range t.WindSpeeds {
			if ws > windSpeed {
				return t.Speeds[i][j]
			}
		}
	}
	return NotFound
}

// InterpolatedBoatSpeed interpolates linearly between the four cells
// around the query, clamping outside the table.
func (t *Table) InterpolatedBoatSpeed(angle vector.Angle, windSpeed float64) float64 {
	a := twa(angle)

	twsIndex0, twsIndex1, twsFactor := interpolationIndex(t.WindSpeeds, windSpeed)
	twaIndex0, twaIndex1, twaFactor := interpolationIndex(t.Angles, a)

	ti0 := t.Speeds[twaIndex0]
	ti1 := t.Speeds[twaIndex1]
	return (ti0[twsIndex0]*twsFactor+ti0[twsIndex1]*(1-twsFactor))*twaFactor +
		(ti1[twsIndex0]*twsFactor+ti1[twsIndex1]*(1-twsFactor))*(1-twaFactor)
}

// interpolationIndex returns the bracketing indexes of value and the weight
// of the first one.
func interpolationIndex(values []float64, value float64) (int, int, float64) {

	i := 0
	for values[i] < value {
		i++
		if i == len(values) {
			return i - 1, i - 1, 1
		}
	}

	if i > 0 {
		return i - 1, i, (values[i] - value) / (values[i] - values[i-1])
	}

	return 0, 0, 1
}
