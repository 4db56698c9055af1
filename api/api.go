package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/latlon"
	"github.com/a-bouts/sail-sim/polar"
	"github.com/a-bouts/sail-sim/race"
	"github.com/a-bouts/sail-sim/sim"
	"github.com/a-bouts/sail-sim/vector"
)

// Simulation is what the API reads and drives. Mutations are only queued.
type Simulation interface {
	Snapshot() sim.Snapshot
	Plan(t race.Type, waypoints []latlon.LatLon) error
	SetHeading(h vector.Angle) error
	Reset() error
}

type server struct {
	sim   Simulation
	polar *polar.Table
}

func InitServer(s Simulation, p *polar.Table) *mux.Router {

	router := mux.NewRouter().StrictSlash(true)

	srv := server{sim: s, polar: p}

	api := router.PathPrefix("/").Subrouter()
	api.HandleFunc("/sim/-/healthz", srv.healthz).Methods(http.MethodGet)

	apiV1 := router.PathPrefix("/sim/api/v1").Subrouter()
	apiV1.HandleFunc("/state", srv.state).Methods(http.MethodGet)
	apiV1.HandleFunc("/course", srv.course).Methods(http.MethodGet)
	apiV1.HandleFunc("/polar", srv.boatSpeed).Methods(http.MethodGet)
	apiV1.HandleFunc("/plan", srv.plan).Methods(http.MethodPost)
	apiV1.HandleFunc("/heading", srv.heading).Methods(http.MethodPost)
	apiV1.HandleFunc("/reset", srv.reset).Methods(http.MethodPost)

	return router
}

// Handler adds CORS and access logs around the router.
func Handler(router *mux.Router) http.Handler {
	return handlers.CombinedLoggingHandler(log.StandardLogger().Writer(),
		handlers.CORS(
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
		)(router))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Encoding response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	type failure struct {
		Error string `json:"error"`
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrControl):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, failure{Error: err.Error()})
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	type health struct {
		Status string `json:"status"`
	}

	writeJSON(w, http.StatusOK, health{Status: "Ok"})
}

func (s *server) state(w http.ResponseWriter, r *http.Request) {
	snap := s.sim.Snapshot()
	if _, err := json.Marshal(snap); err != nil {
		// a halted boat may hold NaN values
		writeJSON(w, http.StatusOK, struct {
			Tick   uint64 `json:"tick"`
			Halted bool   `json:"halted"`
			Error  string `json:"error,omitempty"`
		}{snap.Tick, snap.Halted, snap.Error})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// course adds the remaining great circle length from the boat through the
// look-ahead points.
func (s *server) course(w http.ResponseWriter, r *http.Request) {
	snap := s.sim.Snapshot()
	track := append([]latlon.LatLon{snap.Boat.Position}, snap.Course.Points...)
	writeJSON(w, http.StatusOK, struct {
		race.Snapshot
		Length float64 `json:"length"`
	}{snap.Course, latlon.Track(track)})
}

func (s *server) boatSpeed(w http.ResponseWriter, r *http.Request) {
	if s.polar == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	twa, err := strconv.ParseFloat(q.Get("twa"), 64)
	if err != nil {
		writeError(w, errs.Validation("twa: %v", err))
		return
	}
	tws, err := strconv.ParseFloat(q.Get("tws"), 64)
	if err != nil {
		writeError(w, errs.Validation("tws: %v", err))
		return
	}

	type speed struct {
		Twa   float64 `json:"twa"`
		Tws   float64 `json:"tws"`
		Speed float64 `json:"speed"`
	}

	res := speed{Twa: twa, Tws: tws}
	if interpolate, _ := strconv.ParseBool(q.Get("interpolate")); interpolate {
		res.Speed = s.polar.InterpolatedBoatSpeed(vector.CalcAngle(twa), tws)
	} else {
		res.Speed = s.polar.BoatSpeed(vector.CalcAngle(twa), tws)
	}
	writeJSON(w, http.StatusOK, res)
}

type Plan struct {
	Type      race.Type       `json:"type"`
	Waypoints []latlon.LatLon `json:"waypoints"`
}

func (s *server) plan(w http.ResponseWriter, req *http.Request) {
	var p Plan
	if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
		writeError(w, errs.Validation("plan: %v", err))
		return
	}

	fields := log.Fields{
		"action":    "plan",
		"type":      p.Type,
		"waypoints": len(p.Waypoints),
	}
	if ip, err := getIp(req); err == nil {
		fields["IP"] = ip
	}
	log.WithFields(fields).Info("Plan requested")

	if err := s.sim.Plan(p.Type, p.Waypoints); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type Heading struct {
	// Heading is a Calc angle in degrees.
	Heading float64 `json:"heading"`
}

func (s *server) heading(w http.ResponseWriter, req *http.Request) {
	var h Heading
	if err := json.NewDecoder(req.Body).Decode(&h); err != nil {
		writeError(w, errs.Validation("heading: %v", err))
		return
	}
	if math.IsNaN(h.Heading) || math.IsInf(h.Heading, 0) {
		writeError(w, errs.Validation("heading %v is not finite", h.Heading))
		return
	}

	log.WithField("heading", h.Heading).Info("Heading requested")

	if err := s.sim.SetHeading(vector.CalcAngle(h.Heading)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *server) reset(w http.ResponseWriter, req *http.Request) {
	if err := s.sim.Reset(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func getIp(r *http.Request) (string, error) {
	//Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}

	//Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP := net.ParseIP(strings.TrimSpace(ip))
		if netIP != nil {
			return strings.TrimSpace(ip), nil
		}
	}

	//Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}
	return "", fmt.Errorf("No valid ip found")
}
