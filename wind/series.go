package wind

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/errs"
	"github.com/a-bouts/sail-sim/latlon"
	"github.com/a-bouts/sail-sim/vector"
)

const stampLayout = "2006010215"

// Series is a time-ordered set of fields read from a directory of GRIB
// files named YYYYMMDDHH.fHHH. Elapsed simulation time is counted from Start.
type Series struct {
	Dir   string
	Start time.Time

	fields map[string]*Field
	// seen maps every file already read to its valid date.
	seen map[string]time.Time
	read func(path string, date time.Time) (*Field, error)
	lock sync.RWMutex
}

func NewSeries(start time.Time) *Series {
	return &Series{
		Start:  start,
		fields: make(map[string]*Field),
		seen:   make(map[string]time.Time),
		read:   Read,
	}
}

// LoadSeries reads every forecast of dir. Start defaults to the first one.
func LoadSeries(dir string, start time.Time) (*Series, error) {
	s := NewSeries(start)
	s.Dir = dir
	if err := s.Merge(); err != nil {
		return nil, err
	}
	if s.Len() == 0 {
		return nil, errs.Data("no grib file in %s", dir)
	}
	if s.Start.IsZero() {
		s.Start = s.sorted()[0].Date
	}
	return s, nil
}

// ValidDate returns the date a file name is a forecast for.
func ValidDate(name string) (time.Time, error) {
	parts := strings.Split(name, ".")
	if len(parts) < 2 || len(parts[1]) < 2 {
		return time.Time{}, errs.Data("grib file name %q", name)
	}
	t, err := time.Parse(stampLayout, parts[0])
	if err != nil {
		return time.Time{}, errs.Data("grib file name %q: %v", name, err)
	}
	h, err := strconv.Atoi(parts[1][1:])
	if err != nil {
		return time.Time{}, errs.Data("grib file name %q: %v", name, err)
	}
	return t.Add(time.Hour * time.Duration(h)), nil
}

func (s *Series) Add(f *Field) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.fields[f.Date.Format(stampLayout)] = f
}

func (s *Series) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.fields)
}

// Merge drops fields whose file went away and reads files not seen yet. A
// newer run replaces an older forecast for the same date, and each file is
// decoded once.
func (s *Series) Merge() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	stale := make(map[string]bool)
	for path, date := range s.seen {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		delete(s.seen, path)
		k := date.Format(stampLayout)
		if f, ok := s.fields[k]; ok && f.File == path {
			log.Println("Remove from winds", k)
			delete(s.fields, k)
			stale[k] = true
		}
	}
	// older runs of a removed forecast are read again
	for path, date := range s.seen {
		if stale[date.Format(stampLayout)] {
			delete(s.seen, path)
		}
	}

	var files []string
	err := filepath.Walk(s.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.WithError(err).Errorf("Error walking file '%s'", path)
		} else if info.Mode().IsRegular() && !strings.HasSuffix(info.Name(), ".tmp") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return errs.Data("walking %s: %v", s.Dir, err)
	}

	// runs sort by name, so later runs overwrite earlier ones
	sort.Strings(files)

	for _, path := range files {
		if _, ok := s.seen[path]; ok {
			continue
		}
		date, err := ValidDate(filepath.Base(path))
		if err != nil {
			log.WithError(err).Warn("Skipping grib file")
			continue
		}
		k := date.Format(stampLayout)
		if current, ok := s.fields[k]; ok && current.File > path {
			s.seen[path] = date
			continue
		}
		f, err := s.read(path, date)
		if err != nil {
			log.WithError(err).Warn("Skipping grib file")
			continue
		}
		s.seen[path] = date
		log.WithField("file", path).WithField("date", date).Debug("Loaded wind")
		s.fields[k] = f
	}
	return nil
}

func (s *Series) sorted() []*Field {
	keys := make([]string, 0, len(s.fields))
	for k := range s.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	res := make([]*Field, len(keys))
	for i, k := range keys {
		res[i] = s.fields[k]
	}
	return res
}

// FindWinds returns the fields bracketing m and the position of m between
// them. Before the first or after the last field only one is returned.
func (s *Series) FindWinds(m time.Time) (*Field, *Field, float64) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	fields := s.sorted()
	if len(fields) == 0 {
		return nil, nil, 0
	}
	if !fields[0].Date.Before(m) {
		return fields[0], nil, 0
	}
	for i := 1; i < len(fields); i++ {
		if fields[i].Date.After(m) {
			h := m.Sub(fields[i-1].Date).Minutes()
			delta := fields[i].Date.Sub(fields[i-1].Date).Minutes()
			return fields[i-1], fields[i], h / delta
		}
	}
	return fields[len(fields)-1], nil, 0
}

func (s *Series) WindAt(p latlon.LatLon, elapsed time.Duration) vector.Vector {
	w0, w1, x := s.FindWinds(s.Start.Add(elapsed))
	if w0 == nil {
		return vector.New(vector.CalcAngle(0), 0)
	}
	u, v := w0.UV(p.Lat, p.Lon)
	if w1 != nil {
		u1, v1 := w1.UV(p.Lat, p.Lon)
		u += (u1 - u) * x
		v += (v1 - v) * x
	}
	return vector.FromXY(u, v)
}
