// Package vector implements the angle and vector algebra shared by the
// physics and control code.
//
// Angles carry the convention they are expressed in:
//
//	Data     foil datasheet angles, 0 ahead, ±90 abeam, 180 astern
//	Calc     unit circle, 0 east, 90 north, counter clockwise
//	Display  0 to 360, clockwise, 90 north
package vector

import (
	"fmt"
	"math"
)

type Kind uint8

const (
	Data Kind = iota
	Calc
	Display
)

func (k Kind) String() string {
	switch k {
	case Data:
		return "Data"
	case Calc:
		return "Calc"
	case Display:
		return "Display"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

type Angle struct {
	Kind  Kind    `json:"kind" msgpack:"kind"`
	Value float64 `json:"value" msgpack:"value"`
}

func DataAngle(v float64) Angle    { return Angle{Kind: Data, Value: v} }
func CalcAngle(v float64) Angle    { return Angle{Kind: Calc, Value: v} }
func DisplayAngle(v float64) Angle { return Angle{Kind: Display, Value: v} }

// FloorMod returns a modulo n with the sign of n.
func FloorMod(a float64, n float64) float64 {
	return a - n*math.Floor(a/n)
}

// Normalize180 folds a value in degrees into (-180, 180].
func Normalize180(x float64) float64 {
	x = FloorMod(x, 360)
	if x > 180 {
		x -= 360
	}
	return x
}

// Norm reduces Calc and Display angles to [0, 360). Data angles are
// returned untouched.
func (a Angle) Norm() Angle {
	if a.Kind == Calc || a.Kind == Display {
		a.Value = FloorMod(a.Value, 360)
	}
	return a
}

func (a Angle) Data() float64 {
	switch a.Kind {
	case Calc:
		c := FloorMod(a.Value, 360)
		if c <= 180 {
			return c
		}
		return -(360 - c)
	case Display:
		if a.Value <= 180 {
			return a.Value - 90
		}
		return 180 - FloorMod(a.Value-90, 180)
	}
	return a.Value
}

func (a Angle) Calc() float64 {
	switch a.Kind {
	case Data:
		return 90 - a.Value
	case Display:
		return 180 - a.Value
	}
	return a.Value
}

func (a Angle) Display() float64 {
	switch a.Kind {
	case Data:
		return a.Value + 90
	case Calc:
		return -a.Value + 180
	}
	return a.Value
}

// In returns the value of a expressed in kind k.
func (a Angle) In(k Kind) float64 {
	switch k {
	case Data:
		return a.Data()
	case Calc:
		return a.Calc()
	}
	return a.Display()
}

// As converts a to kind k.
func (a Angle) As(k Kind) Angle {
	return Angle{Kind: k, Value: a.In(k)}
}

// Add returns a + b in the representation of a. Both operands are
// normalized first and b is converted to the kind of a.
func (a Angle) Add(b Angle) Angle {
	return Angle{Kind: a.Kind, Value: a.Norm().Value + b.Norm().In(a.Kind)}
}

// Sub returns a - b in the representation of a.
func (a Angle) Sub(b Angle) Angle {
	return Angle{Kind: a.Kind, Value: a.Norm().Value - b.Norm().In(a.Kind)}
}

// Plus adds raw degrees to the normalized value of a.
func (a Angle) Plus(deg float64) Angle {
	return Angle{Kind: a.Kind, Value: a.Norm().Value + deg}
}

func (a Angle) Radians() float64 {
	return a.Calc() * math.Pi / 180
}

func (a Angle) String() string {
	return fmt.Sprintf("%s: %.4f", a.Kind, math.Round(a.Value*10000)/10000)
}
