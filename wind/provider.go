package wind

import (
	"time"

	"github.com/a-bouts/sail-sim/latlon"
	"github.com/a-bouts/sail-sim/vector"
)

// Provider returns the true wind velocity, pointing where the air goes.
type Provider interface {
	WindAt(p latlon.LatLon, elapsed time.Duration) vector.Vector
}

type Constant struct {
	Wind vector.Vector
}

func (c Constant) WindAt(latlon.LatLon, time.Duration) vector.Vector {
	return c.Wind
}

func (w *Field) WindAt(p latlon.LatLon, _ time.Duration) vector.Vector {
	return vector.FromXY(w.UV(p.Lat, p.Lon))
}
