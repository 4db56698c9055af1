package control

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/latlon"
	"github.com/a-bouts/sail-sim/vector"
	"github.com/a-bouts/sail-sim/wind"
)

// Direct holds a Calc heading, whatever the wind.
type Direct struct {
	c       *Controller
	heading *vector.Angle
}

func NewDirect(c *Controller) *Direct {
	return &Direct{c: c}
}

func (d *Direct) SetHeading(h vector.Angle) {
	d.heading = &h
}

func (d *Direct) Update(float64) error {
	if d.heading != nil {
		d.c.SteerTo(*d.heading)
	}
	d.c.UpdateSails()
	return nil
}

func (d *Direct) Info() Info {
	i := Info{Algorithm: "direct", State: map[string]interface{}{}}
	if d.heading != nil {
		i.State["targetHeading"] = d.heading.Calc()
	}
	return i
}

const (
	DefaultVMGInterval = 2.0 // s

	vmgSearch = 90
	vmgStep   = 5
)

// VMG steers the heading with the best speed made good toward a point, as
// read from the polar.
type VMG struct {
	Target   latlon.LatLon
	Interval float64

	c       *Controller
	since   float64
	heading *float64
	best    float64
}

func NewVMG(c *Controller, target latlon.LatLon) *VMG {
	return &VMG{Target: target, Interval: DefaultVMGInterval, c: c}
}

func (v *VMG) Update(dt float64) error {
	v.since += dt
	if v.heading == nil || v.since >= v.Interval {
		v.OptimizeHeading()
		v.since = 0
	}

	v.c.SteerTo(vector.CalcAngle(*v.heading))
	v.c.UpdateSails()
	return nil
}

// OptimizeHeading searches headings up to 90° either side of the bearing to
// the target and returns the best one.
func (v *VMG) OptimizeHeading() float64 {
	bearing := latlon.LatLonCartesian{}.CourseTo(v.c.Boat.LatLon(), v.Target).Angle.Calc()
	tw := v.c.Boat.Wind

	best := math.Inf(-1)
	heading := bearing
	for offset := -vmgSearch; offset <= vmgSearch; offset += vmgStep {
		h := bearing + float64(offset)
		rw := wind.TwaAngle(vector.CalcAngle(h), tw.Angle)

		bs := v.c.VB(vector.CalcAngle(math.Abs(rw)), tw.Norm)
		if bs <= 0 {
			continue
		}
		if vmg := bs * math.Cos(float64(offset)*math.Pi/180); vmg > best {
			best = vmg
			heading = h
		}
	}

	v.heading = &heading
	v.best = best
	log.WithFields(log.Fields{"heading": heading, "vmg": best}).Debug("Optimized heading")
	return heading
}

func (v *VMG) Info() Info {
	i := Info{Algorithm: "vmg", State: map[string]interface{}{"target": v.Target}}
	if v.heading != nil {
		i.State["currentHeading"] = *v.heading
	}
	if !math.IsInf(v.best, 0) {
		i.State["vmg"] = v.best
	}
	return i
}
