// Package sim runs the boat and its controller. One goroutine owns both;
// everything else reads published snapshots and queues commands.
package sim

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/boat"
	"github.com/a-bouts/sail-sim/control"
	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/latlon"
	"github.com/a-bouts/sail-sim/race"
	"github.com/a-bouts/sail-sim/trace"
	"github.com/a-bouts/sail-sim/vector"
	"github.com/a-bouts/sail-sim/wind"
)

const commandQueue = 16

type Options struct {
	Timestep     float64 // s
	StepsPerTick int
	// Realtime paces ticks on the wall clock, otherwise the loop runs as
	// fast as it can.
	Realtime    bool
	MaxDuration time.Duration
}

func (o Options) tick() float64 {
	return o.Timestep * float64(o.StepsPerTick)
}

// Command runs on the simulation goroutine between two ticks.
type Command func(s *Sim) error

type Snapshot struct {
	Tick      uint64        `json:"tick"`
	Elapsed   float64       `json:"elapsed"`
	Boat      boat.State    `json:"boat"`
	Course    race.Snapshot `json:"course"`
	Algorithm control.Info  `json:"algorithm"`
	Halted    bool          `json:"halted"`
	Error     string        `json:"error,omitempty"`
}

type Sim struct {
	Boat       *boat.Boat
	Controller *control.Controller
	Wind       wind.Provider
	Recorder   *trace.Recorder
	// OnHalt is called once when a physics error stops the loop.
	OnHalt func(error)

	opts     Options
	commands chan Command

	tick    uint64
	elapsed float64
	halted  error

	lock     sync.RWMutex
	snapshot Snapshot
}

func New(b *boat.Boat, c *control.Controller, w wind.Provider, opts Options) *Sim {
	if opts.StepsPerTick < 1 {
		opts.StepsPerTick = 1
	}
	s := &Sim{
		Boat:       b,
		Controller: c,
		Wind:       w,
		opts:       opts,
		commands:   make(chan Command, commandQueue),
	}
	s.publish()
	return s
}

// Submit queues a command for the next tick.
func (s *Sim) Submit(cmd Command) error {
	select {
	case s.commands <- cmd:
		return nil
	default:
		return errs.Control("command queue full")
	}
}

// Plan replaces the course on the next tick.
func (s *Sim) Plan(t race.Type, waypoints []latlon.LatLon) error {
	course := race.Course{Type: t, Waypoints: waypoints}
	if err := course.Validate(); err != nil {
		return err
	}
	wps := append([]latlon.LatLon(nil), waypoints...)
	return s.Submit(func(s *Sim) error {
		_, err := s.Controller.Plan(t, wps)
		return err
	})
}

// SetHeading switches to holding a Calc heading on the next tick.
func (s *Sim) SetHeading(h vector.Angle) error {
	return s.Submit(func(s *Sim) error {
		d, ok := s.Controller.Algorithm().(*control.Direct)
		if !ok {
			d = control.NewDirect(s.Controller)
			s.Controller.SetAlgorithm(d)
		}
		d.SetHeading(h)
		return nil
	})
}

// Reset stops the boat where it is on the next tick.
func (s *Sim) Reset() error {
	return s.Submit(func(s *Sim) error {
		s.Boat.Reset()
		return nil
	})
}

func (s *Sim) Snapshot() Snapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.snapshot
}

func (s *Sim) Elapsed() time.Duration {
	return time.Duration(s.elapsed * float64(time.Second))
}

func (s *Sim) applyCommands() {
	for {
		select {
		case cmd := <-s.commands:
			if err := cmd(s); err != nil {
				log.WithError(err).Warn("Command failed")
			}
		default:
			return
		}
	}
}

// Step runs one tick: queued commands, wind refresh, physics steps and one
// control update. A physics error halts the simulation for good.
func (s *Sim) Step() error {
	if s.halted != nil {
		return s.halted
	}

	s.applyCommands()

	if s.Wind != nil {
		s.Boat.Wind = s.Wind.WindAt(s.Boat.LatLon(), s.Elapsed())
	}

	for i := 0; i < s.opts.StepsPerTick; i++ {
		if err := s.Boat.Update(s.opts.Timestep); err != nil {
			return s.halt(err)
		}
	}

	if err := s.Controller.Update(s.opts.tick()); err != nil {
		log.WithError(err).Warn("Control update failed")
	}

	s.tick++
	s.elapsed += s.opts.tick()
	s.publish()
	return nil
}

func (s *Sim) halt(err error) error {
	s.halted = err
	log.WithError(err).WithField("tick", s.tick).Error("Simulation halted")
	s.publish()
	if s.OnHalt != nil {
		s.OnHalt(err)
	}
	return err
}

func (s *Sim) publish() {
	snap := Snapshot{
		Tick:      s.tick,
		Elapsed:   s.elapsed,
		Boat:      s.Boat.State(),
		Course:    s.Controller.Course.Snapshot(),
		Algorithm: s.Controller.Info(),
		Halted:    s.halted != nil,
	}
	if s.halted != nil {
		snap.Error = s.halted.Error()
	}

	s.lock.Lock()
	s.snapshot = snap
	s.lock.Unlock()

	if s.Recorder != nil {
		err := s.Recorder.Record(trace.Frame{
			Tick:      snap.Tick,
			Elapsed:   snap.Elapsed,
			Boat:      snap.Boat,
			Course:    snap.Course,
			Algorithm: snap.Algorithm,
		})
		if err != nil {
			log.WithError(err).Warn("Stop recording")
			s.Recorder = nil
		}
	}
}

func (s *Sim) done() bool {
	return s.opts.MaxDuration > 0 && s.Elapsed() >= s.opts.MaxDuration
}

// RunFor steps until d of simulated time has elapsed.
func (s *Sim) RunFor(d time.Duration) error {
	for s.Elapsed() < d {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Run steps until ctx is done, MaxDuration is reached or the physics fail.
func (s *Sim) Run(ctx context.Context) error {
	log.WithFields(log.Fields{
		"timestep": s.opts.Timestep,
		"steps":    s.opts.StepsPerTick,
		"realtime": s.opts.Realtime,
	}).Info("Simulation started")

	var ticker *time.Ticker
	if s.opts.Realtime {
		ticker = time.NewTicker(time.Duration(s.opts.tick() * float64(time.Second)))
		defer ticker.Stop()
	}

	for !s.done() {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		if err := s.Step(); err != nil {
			return err
		}
	}

	log.WithField("elapsed", s.Elapsed()).Info("Simulation finished")
	return nil
}
