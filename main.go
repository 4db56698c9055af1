package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jasonlvhit/gocron"
	"github.com/peterbourgon/ff"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/a-bouts/sail-sim/api"
	"github.com/a-bouts/sail-sim/config"
	"github.com/a-bouts/sail-sim/race"
	"github.com/a-bouts/sail-sim/sim"
	"github.com/a-bouts/sail-sim/trace"
	"github.com/a-bouts/sail-sim/wind"
	"github.com/a-bouts/sail-sim/xmpp"
)

type options struct {
	scenario     string
	listen       string
	realtime     bool
	duration     time.Duration
	trace        string
	report       uint64
	validateOnly bool
	xmpp         xmpp.Config
}

func main() {

	fs := flag.NewFlagSet("sail-sim", flag.ExitOnError)
	var (
		o            options
		logLevel     = fs.String("log-level", "info", "debug, info, warn or error")
		logFile      = fs.String("log-file", "", "also log to this rotating file")
		cpuprofile   = fs.Bool("cpuprofile", false, "write a cpu profile in the working directory")
		_            = fs.String("config", "", "flags file")
		xmppHost     = fs.String("xmpp-host", "", "")
		xmppJid      = fs.String("xmpp-jid", "", "")
		xmppPassword = fs.String("xmpp-password", "", "")
		xmppTo       = fs.String("xmpp-to", "", "")
	)
	fs.StringVar(&o.scenario, "scenario", "scenario.toml", "boat and course description")
	fs.StringVar(&o.listen, "listen", ":8888", "API address, empty to disable")
	fs.BoolVar(&o.realtime, "realtime", true, "pace the simulation on the wall clock")
	fs.DurationVar(&o.duration, "duration", 0, "simulated time to run, 0 for ever")
	fs.StringVar(&o.trace, "trace", "", "record a trace to this file")
	fs.Uint64Var(&o.report, "report", 10, "status report interval in seconds")
	fs.BoolVar(&o.validateOnly, "validate-only", false, "check the scenario and exit")

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarNoPrefix(),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	closer, err := initLogger(*logLevel, *logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closer != nil {
		defer closer.Close()
	}

	if *cpuprofile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	o.xmpp = xmpp.Config{Host: *xmppHost, Jid: *xmppJid, Password: *xmppPassword, To: *xmppTo}

	if err := run(o); err != nil {
		log.WithError(err).Error("Simulator stopped")
		if closer != nil {
			closer.Close()
		}
		os.Exit(1)
	}
}

func run(o options) error {
	conf, err := config.Parse(o.scenario)
	if err != nil {
		return err
	}

	b, err := conf.BuildBoat()
	if err != nil {
		return err
	}
	w, err := conf.BuildWind()
	if err != nil {
		return err
	}

	x := xmpp.Xmpp{Config: o.xmpp}
	ctrl, err := conf.BuildController(b, func(c race.Course) {
		x.Notify("Course %s completed", c.Name)
	})
	if err != nil {
		return err
	}

	if o.validateOnly {
		log.WithField("scenario", conf.Path()).Info("Configuration is valid")
		return nil
	}

	s := sim.New(b, ctrl, w, sim.Options{
		Timestep:     conf.Physics.Timestep,
		StepsPerTick: conf.Physics.StepsPerTick,
		Realtime:     o.realtime,
		MaxDuration:  o.duration,
	})
	s.OnHalt = func(err error) {
		x.Notify("Simulation halted: %v", err)
	}

	if o.trace != "" {
		rec, err := trace.Create(o.trace)
		if err != nil {
			return err
		}
		s.Recorder = rec
		defer func() {
			if err := rec.Close(); err != nil {
				log.WithError(err).Warn("Closing trace")
				return
			}
			log.WithFields(log.Fields{"trace": o.trace, "frames": rec.Frames()}).Info("Trace written")
		}()
	}

	scheduler := gocron.NewScheduler()
	if o.report > 0 {
		scheduler.Every(o.report).Seconds().Do(report, s)
	}
	if series, ok := w.(*wind.Series); ok {
		scheduler.Every(15).Seconds().Do(series.Merge)
	}
	stop := scheduler.Start()
	defer close(stop)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.WithFields(log.Fields{
		"scenario": conf.Path(),
		"timestep": conf.Timestep(),
		"realtime": o.realtime,
	}).Info("Starting simulation")

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer cancel()
		return s.Run(gctx)
	})

	if o.listen != "" {
		srv := &http.Server{
			Addr:    o.listen,
			Handler: api.Handler(api.InitServer(s, ctrl.Polar)),
		}
		eg.Go(func() error {
			log.WithField("listen", o.listen).Info("Start server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-gctx.Done()
			shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdown)
		})
	}

	return eg.Wait()
}

func report(s *sim.Sim) {
	snap := s.Snapshot()
	log.WithFields(log.Fields{
		"tick":      snap.Tick,
		"elapsed":   snap.Elapsed,
		"position":  snap.Boat.Position,
		"heading":   fmt.Sprintf("%.1f", snap.Boat.Heading),
		"speed":     fmt.Sprintf("%.2f", snap.Boat.Speed),
		"algorithm": snap.Algorithm.Algorithm,
		"halted":    snap.Halted,
	}).Info("Status")
}
