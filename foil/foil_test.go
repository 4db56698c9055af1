package foil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/vector"
)

func constant(v float64) Curve {
	return NewCurve([]float64{0, 180}, []float64{v, v})
}

func testFoil(t *testing.T, lift, drag Curve, winches ...*Winch) *Foil {
	f, err := New(Params{Name: "test", Density: 1, Area: 1, Size: 1, Position: vector.New(vector.CalcAngle(0), 0)}, lift, drag, winches...)
	require.NoError(t, err)
	return f
}

func TestCurveAt(t *testing.T) {
	c := NewCurve([]float64{0, 10, 20}, []float64{0, 1, 0})

	assert.InDelta(t, 0.5, c.At(vector.DataAngle(5)), 1e-9)
	assert.InDelta(t, 0.5, c.At(vector.DataAngle(-5)), 1e-9)
	assert.InDelta(t, 0.5, c.At(vector.DataAngle(15)), 1e-9)
	// 25 folds back to 20 - 25 mod 20 = 15
	assert.InDelta(t, 0.5, c.At(vector.DataAngle(25)), 1e-9)
	// Display 100 is Data 10
	assert.InDelta(t, 1.0, c.At(vector.DisplayAngle(100)), 1e-9)
	// Calc 80 is Data 80, folded to 0
	assert.InDelta(t, 0.0, c.At(vector.CalcAngle(80)), 1e-9)

	assert.Equal(t, 0.0, Curve(nil).At(vector.DataAngle(3)))
	assert.Equal(t, 2.0, NewCurve([]float64{4}, []float64{2}).At(vector.DataAngle(30)))
}

func TestNew(t *testing.T) {
	_, err := New(Params{Density: 0, Area: 1, Size: 1}, nil, nil)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	_, err = New(Params{Density: 1, Area: 1, Size: 1, Inertia: -1}, nil, nil)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	_, err = NewWinch(vector.Vector{}, 0, 1)
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestForces(t *testing.T) {
	f := testFoil(t, constant(1), constant(0.5))

	north := vector.New(vector.CalcAngle(90), 2)
	lift := f.LiftForce(north)
	assert.InDelta(t, 2.0, lift.Norm, 1e-9)
	assert.InDelta(t, 2.0, lift.X(), 1e-9)
	assert.InDelta(t, 0.0, lift.Y(), 1e-9)

	drag := f.DragForce(north)
	assert.InDelta(t, 1.0, drag.Norm, 1e-9)
	assert.InDelta(t, 1.0, drag.Y(), 1e-9)

	south := vector.New(vector.CalcAngle(270), 2)
	lift = f.LiftForce(south)
	assert.InDelta(t, 2.0, lift.X(), 1e-9)

	neg := testFoil(t, constant(-1), constant(-0.5))
	lift = neg.LiftForce(north)
	assert.InDelta(t, 2.0, lift.Norm, 1e-9)
	assert.InDelta(t, -2.0, lift.X(), 1e-9)

	drag = neg.DragForce(north)
	assert.InDelta(t, 1.0, drag.Norm, 1e-9)
	assert.InDelta(t, -1.0, drag.Y(), 1e-9)
}

func TestMoment(t *testing.T) {
	f := testFoil(t, constant(0), constant(0))
	f.Position = vector.New(vector.CalcAngle(180), 2)

	assert.InDelta(t, -6.0, f.Moment(vector.New(vector.CalcAngle(90), 3)), 1e-9)
	assert.InDelta(t, 0.0, f.Moment(vector.New(vector.CalcAngle(0), 3)), 1e-9)
}

func sheeted(t *testing.T) *Foil {
	w, err := NewWinch(vector.New(vector.CalcAngle(180), 1), 1, 0.1)
	require.NoError(t, err)
	f := testFoil(t, constant(0), constant(0), w)
	f.SetSailRotation(vector.CalcAngle(30))
	return f
}

func TestSetSailRotation(t *testing.T) {
	f := sheeted(t)
	w := f.Winches[0]
	assert.InDelta(t, 0.517638, w.Length, 1e-6)
	assert.Equal(t, 30.0, w.Rot.Calc())
}

func TestUpdateSailRotationFree(t *testing.T) {
	f := sheeted(t)
	f.Angle = vector.CalcAngle(10)
	f.RotationalVelocity = 0.1

	f.UpdateSailRotation(0.1, vector.New(vector.CalcAngle(0), 0))
	assert.InDelta(t, 10.5729578, f.Angle.Calc(), 1e-6)
	assert.Equal(t, 0.1, f.RotationalVelocity)
}

func TestUpdateSailRotationSheetLimit(t *testing.T) {
	f := sheeted(t)
	f.Angle = vector.CalcAngle(35)
	f.RotationalVelocity = 1

	f.UpdateSailRotation(0.1, vector.New(vector.CalcAngle(0), 0))
	assert.InDelta(t, 28.0, f.Angle.Calc(), 1e-9)
	assert.Equal(t, 0.0, f.RotationalVelocity)
	assert.Equal(t, 30.0, f.Winches[0].Rot.Calc())
}

func TestUpdateSailRotationFlipsSheetSide(t *testing.T) {
	f := sheeted(t)
	f.Angle = vector.CalcAngle(-35)
	f.RotationalVelocity = -1

	f.UpdateSailRotation(0.1, vector.New(vector.CalcAngle(0), 0))
	assert.InDelta(t, -30.0, vector.Normalize180(f.Winches[0].Rot.Calc()), 1e-9)
	assert.InDelta(t, -28.0, vector.Normalize180(f.Angle.Calc()), 1e-9)
	assert.Equal(t, 0.0, f.RotationalVelocity)
}

func write(t *testing.T, dir, name, content string) string {
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestReadDatasheetNaca(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "xf-naca0012.csv", `Xfoil polar
Polar key,xf-naca0012

Alpha,Cl,Cd,Cdp,Cm
0,0,0.01,0.002,0
5,0.5,0.02,0.003,0
bad,row
10,0.9,0.04,0.01,0

trailer,1,2
`)
	write(t, dir, "xf-naca0012.dat", `NACA 0012
1.0 0.0
0.5,0.1
-0.1 0.0
`)

	lift, drag, err := ReadDatasheet(p)
	require.NoError(t, err)
	assert.Len(t, lift, 3)
	assert.Equal(t, 0.9, lift[2].Value)
	assert.Equal(t, 0.04, drag[2].Value)
	assert.Equal(t, 10.0, drag[2].Angle.Data())

	f, err := Load(Params{Density: WaterDensity, Area: 0.1, Size: 1}, p)
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{-0.5, 0}, {0, 0.1}}, f.Polygon)
}

func TestReadDatasheetPlain(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "hull.txt", "alpha 0 10 20\nCL 0 0.4 0.8\nCD 0.1 0.2 0.3\n")

	f, err := Load(Params{Density: WaterDensity, Area: 0.1, Size: 1}, p)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, f.CL(vector.DataAngle(15)), 1e-9)
	assert.InDelta(t, 0.15, f.CD(vector.DataAngle(5)), 1e-9)
	assert.Nil(t, f.Polygon)
}

func TestReadDatasheetMainsail(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "mainsailcoeffs.txt", "beta 0 15 30\nclnc-CLlow 0 1 1.2\ncdnc-CDlow 0.1 0.2 0.4\n")

	lift, _, err := ReadDatasheet(p)
	require.NoError(t, err)
	assert.Equal(t, 7.0, lift[1].Angle.Data())
	assert.Equal(t, 15.0, lift[2].Angle.Data())
}

func TestReadDatasheetErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := ReadDatasheet(filepath.Join(dir, "missing.txt"))
	assert.True(t, errors.Is(err, errs.ErrData))

	p := write(t, dir, "nocd.txt", "alpha 0 10\nCL 0 1\n")
	_, _, err = ReadDatasheet(p)
	assert.True(t, errors.Is(err, errs.ErrData))
	assert.Contains(t, err.Error(), "nocd.txt")
	assert.Contains(t, err.Error(), "CD")

	p = write(t, dir, "short.txt", "alpha 0 10\nCL 0\nCD 0 1\n")
	_, _, err = ReadDatasheet(p)
	assert.True(t, errors.Is(err, errs.ErrData))

	p = write(t, dir, "naca-noalpha.csv", "x,Cl\n0,1\n")
	_, _, err = ReadDatasheet(p)
	assert.True(t, errors.Is(err, errs.ErrData))
}
