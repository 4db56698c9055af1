package wind

import "github.com/a-bouts/sail-sim/vector"

// Twa is the signed angle from heading to wind, in (-180, 180].
func Twa(heading, wind float64) float64 {
	twa := wind - heading
	if twa <= -180 {
		twa += 360
	}
	if twa > 180 {
		twa -= 360
	}

	return twa
}

// Heading is the inverse of Twa, in [0, 360).
func Heading(twa, wind float64) float64 {
	return vector.FloorMod(wind-twa, 360)
}

// TwaAngle is Twa on angles of any kind and range.
func TwaAngle(heading, wind vector.Angle) float64 {
	return Twa(heading.As(vector.Calc).Norm().Value, wind.As(vector.Calc).Norm().Value)
}
