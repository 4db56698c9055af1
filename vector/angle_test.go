package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversions(t *testing.T) {
	a := DataAngle(30)
	assert.Equal(t, 60.0, a.Calc())
	assert.Equal(t, 120.0, a.Display())

	c := CalcAngle(270)
	assert.Equal(t, -90.0, c.Data())
	assert.Equal(t, -90.0, c.Display())

	c = CalcAngle(-45)
	assert.Equal(t, -45.0, c.Data())

	d := DisplayAngle(200)
	assert.Equal(t, 70.0, d.Data())
	assert.Equal(t, -20.0, d.Calc())
	assert.Equal(t, 30.0, DisplayAngle(120).Data())
}

func TestRoundTrip(t *testing.T) {
	for v := -720.0; v <= 720; v += 7.5 {
		c := CalcAngle(v)
		back := DisplayAngle(c.Display()).Calc()
		assert.InDelta(t, v, back, 1e-9, "calc %f through display", v)

		d := DisplayAngle(v)
		assert.InDelta(t, v, CalcAngle(d.Calc()).Display(), 1e-9, "display %f through calc", v)
	}
	for v := -90.0; v <= 90; v += 2.5 {
		d := DataAngle(v)
		assert.InDelta(t, v, DisplayAngle(d.Display()).Data(), 1e-9, "data %f through display", v)
	}
	for v := 0.0; v <= 180; v += 2.5 {
		d := DisplayAngle(v)
		assert.InDelta(t, v, DataAngle(d.Data()).Display(), 1e-9, "display %f through data", v)
	}
}

func TestNorm(t *testing.T) {
	assert.Equal(t, 10.0, CalcAngle(370).Norm().Value)
	assert.Equal(t, 350.0, DisplayAngle(-10).Norm().Value)
	assert.Equal(t, 400.0, DataAngle(400).Norm().Value)
}

func TestArithmetic(t *testing.T) {
	s := CalcAngle(350).Add(CalcAngle(20))
	assert.Equal(t, Calc, s.Kind)
	assert.InDelta(t, 370.0, s.Value, 1e-9)
	assert.InDelta(t, 10.0, s.Norm().Value, 1e-9)

	// right operand converted to the left kind
	s = CalcAngle(0).Add(DataAngle(0))
	assert.Equal(t, Calc, s.Kind)
	assert.InDelta(t, 90.0, s.Value, 1e-9)

	s = CalcAngle(90).Sub(CalcAngle(180))
	assert.InDelta(t, -90.0, s.Value, 1e-9)

	assert.InDelta(t, 191.0, CalcAngle(-179).Plus(10).Value, 1e-9)
}

func TestNormalize180(t *testing.T) {
	assert.Equal(t, 180.0, Normalize180(180))
	assert.Equal(t, -179.0, Normalize180(181))
	assert.Equal(t, 0.0, Normalize180(-360))
	assert.Equal(t, -90.0, Normalize180(270))
}
