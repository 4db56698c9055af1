package foil

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/vector"
)

// Winch holds a sail sheet. Length is the current sheet length and Rot the
// sail angle the sheet was last trimmed to.
type Winch struct {
	Position vector.Vector `json:"position"`
	Length   float64       `json:"length"`
	Radius   float64       `json:"radius"`
	Rot      vector.Angle  `json:"rot"`
}

func NewWinch(position vector.Vector, length, radius float64) (*Winch, error) {
	if !(length > 0) || math.IsInf(length, 0) {
		return nil, errs.Validation("winch length %v must be positive", length)
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, errs.Validation("winch radius %v must be positive", radius)
	}
	return &Winch{Position: position, Length: length, Radius: radius, Rot: vector.CalcAngle(0)}, nil
}

func (w *Winch) SetLength(length float64) {
	if !(length > 0) {
		log.WithField("length", length).Warn("Invalid winch length, keeping current")
		return
	}
	w.Length = length
}

// Distance from the winch to a point on the boat, in meters.
func (w *Winch) Distance(p vector.Vector) float64 {
	dx := w.Position.X() - p.X()
	dy := w.Position.Y() - p.Y()
	d := math.Sqrt(dx*dx + dy*dy)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		log.Warn("Invalid winch distance")
		return 0
	}
	return d
}
