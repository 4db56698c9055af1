package foil

import (
	"math"

	"github.com/a-bouts/sail-sim/vector"
)

type Sample struct {
	Angle vector.Angle `json:"angle"`
	Value float64      `json:"value"`
}

// Curve is a coefficient sampled at ascending Data angles.
type Curve []Sample

// NewCurve pairs Data angles with coefficient values.
func NewCurve(angles []float64, values []float64) Curve {
	c := make(Curve, 0, len(angles))
	for i := range angles {
		if i >= len(values) {
			break
		}
		c = append(c, Sample{Angle: vector.DataAngle(angles[i]), Value: values[i]})
	}
	return c
}

// At returns the coefficient for an angle of attack. The magnitude of the
// Data angle is used and queries beyond the last sample fold back into the
// sampled domain.
func (c Curve) At(a vector.Angle) float64 {
	if len(c) == 0 {
		return 0
	}

	v := math.Mod(math.Abs(a.Data()), 360)
	last := c[len(c)-1].Angle.Data()
	if v > last && last > 0 {
		v = last - math.Mod(v, last)
	}

	return c.interpolate(v)
}

func (c Curve) interpolate(value float64) float64 {
	if len(c) == 1 {
		return c[0].Value
	}

	idx := len(c) - 1
	for i := range c {
		if c[i].Angle.Data() > value {
			idx = i
			break
		}
	}

	idx = max(0, idx-1)
	idx = min(idx, len(c)-2)

	x0 := c[idx].Angle.Data()
	x1 := c[idx+1].Angle.Data()
	y0 := c[idx].Value
	y1 := c[idx+1].Value

	slope := 0.0
	if math.Abs(x1-x0) > 1e-10 {
		slope = (y1 - y0) / (x1 - x0)
	}

	return slope*(value-x0) + y0
}
