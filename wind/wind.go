// Package wind provides the true wind blowing over the simulated boat.
package wind

import (
	"io"
	"math"
	"os"
	"time"

	"github.com/nilsmagnus/grib/griblib"

	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/vector"
)

// Field is a regular lat/lon grid of 10 m wind components, valid at Date.
type Field struct {
	Date time.Time
	File string
	Lat0 float64
	Lon0 float64
	ΔLat float64
	ΔLon float64
	NLat uint32
	NLon uint32
	U    [][]float64
	V    [][]float64
}

func (w Field) buildGrid(data []float64) [][]float64 {

	isContinuous := math.Floor(float64(w.NLon)*w.ΔLon) >= 360

	nLon := w.NLon
	if isContinuous {
		nLon++
	}

	grid := make([][]float64, w.NLat)

	p := 0
	for j := uint32(0); j < w.NLat; j++ {
		grid[j] = make([]float64, nLon)
		for i := uint32(0); i < w.NLon && p < len(data); i++ {
			grid[j][i] = data[p]
			p++
		}
		if isContinuous {
			grid[j][w.NLon] = grid[j][0]
		}
	}
	return grid
}

// Read loads the U and V messages of a GRIB2 file.
func Read(path string, date time.Time) (*Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Data("grib %s: %v", path, err)
	}
	defer f.Close()

	w, err := decode(f, date)
	if err != nil {
		return nil, errs.Data("grib %s: %v", path, err)
	}
	w.File = path
	return w, nil
}

func decode(r io.Reader, date time.Time) (*Field, error) {
	w := &Field{Date: date}
	messages, err := griblib.ReadMessages(r)
	if err != nil {
		return nil, err
	}
	for _, message := range messages {
		product := message.Section4.ProductDefinitionTemplate
		if message.Section0.Discipline != uint8(0) || product.ParameterCategory != uint8(2) ||
			product.FirstSurface.Type != 103 || product.FirstSurface.Value != 10 {
			continue
		}
		grid0, ok := message.Section3.Definition.(*griblib.Grid0)
		if !ok {
			continue
		}
		w.Lat0 = float64(grid0.La1) / 1e6
		w.Lon0 = float64(grid0.Lo1) / 1e6
		w.ΔLat = float64(grid0.Dj) / 1e6
		w.ΔLon = float64(grid0.Di) / 1e6
		w.NLat = grid0.Nj
		w.NLon = grid0.Ni
		switch product.ParameterNumber {
		case 2:
			w.U = w.buildGrid(message.Section7.Data)
		case 3:
			w.V = w.buildGrid(message.Section7.Data)
		}
	}
	if w.U == nil || w.V == nil {
		return nil, errs.Data("no 10 m wind components")
	}
	return w, nil
}

func bilinearInterpolate(x float64, y float64, g00 []float64, g10 []float64, g01 []float64, g11 []float64) (float64, float64) {

	rx := (1 - x)
	ry := (1 - y)

	a := rx * ry
	b := x * ry
	c := rx * y
	d := x * y

	u := g00[0]*a + g10[0]*b + g01[0]*c + g11[0]*d
	v := g00[1]*a + g10[1]*b + g01[1]*c + g11[1]*d

	return u, v
}

func clampIndex(f float64, n int) (int, int, float64) {
	if f <= 0 || n < 2 {
		return 0, 0, 0
	}
	i := int(f)
	if i >= n-1 {
		return n - 1, n - 1, 0
	}
	return i, i + 1, f - float64(i)
}

// UV returns the interpolated wind components at a position. Outside the
// grid the nearest edge is used.
func (w Field) UV(lat float64, lon float64) (float64, float64) {

	i := math.Abs((lat - w.Lat0) / w.ΔLat)
	j := vector.FloorMod(lon-w.Lon0, 360.0) / w.ΔLon

	i0, i1, y := clampIndex(i, len(w.U))
	j0, j1, x := clampIndex(j, len(w.U[0]))

	return bilinearInterpolate(x, y,
		[]float64{w.U[i0][j0], w.V[i0][j0]},
		[]float64{w.U[i0][j1], w.V[i0][j1]},
		[]float64{w.U[i1][j0], w.V[i1][j0]},
		[]float64{w.U[i1][j1], w.V[i1][j1]})
}
