package foil

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sail-sim/errs"
)

// Dialect identifies the layout of a coefficient datasheet.
type Dialect int

const (
	// Plain is a whitespace table: a header row of angles then one row per
	// coefficient, keyed by CL and CD.
	Plain Dialect = iota
	// Naca is an airfoil export: comma separated with an "alpha" header.
	Naca
	// Mainsail is a Plain table keyed by clnc-CLlow and cdnc-CDlow whose
	// header angles are full sheeting angles, halved on load.
	Mainsail
)

// DialectOf guesses the dialect from the datasheet file name.
func DialectOf(path string) Dialect {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(name, "naca"):
		return Naca
	case strings.Contains(name, "mainsailcoeffs"):
		return Mainsail
	}
	return Plain
}

func (d Dialect) keys() (string, string) {
	switch d {
	case Naca:
		return "Cl", "Cd"
	case Mainsail:
		return "clnc-CLlow", "cdnc-CDlow"
	}
	return "CL", "CD"
}

// ReadDatasheet loads the lift and drag curves of a datasheet.
func ReadDatasheet(path string) (Curve, Curve, error) {
	d := DialectOf(path)
	liftKey, dragKey := d.keys()

	lift, err := readCoefficient(path, d, liftKey)
	if err != nil {
		return nil, nil, err
	}
	drag, err := readCoefficient(path, d, dragKey)
	if err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"datasheet": path,
		"lift":      len(lift),
		"drag":      len(drag),
	}).Debug("Loaded coefficients")

	return lift, drag, nil
}

func readCoefficient(path string, d Dialect, key string) (Curve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Data("datasheet %s: %v", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	var c Curve
	if d == Naca {
		c, err = readNaca(scanner, path, key)
	} else {
		c, err = readTable(scanner, path, key, d == Mainsail)
	}
	if err != nil {
		return nil, err
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Data("datasheet %s: %v", path, err)
	}
	if len(c) == 0 {
		return nil, errs.Data("datasheet %s: no data for %s", path, key)
	}
	return c, nil
}

func readNaca(scanner *bufio.Scanner, path string, key string) (Curve, error) {
	var header []string
	for scanner.Scan() {
		fields := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), ",")
		first := strings.ToLower(strings.TrimSpace(fields[0]))
		if first == "alpha" || first == "alfa" {
			header = fields
			break
		}
	}
	if header == nil {
		return nil, errs.Data("datasheet %s: no alpha column", path)
	}

	idx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errs.Data("datasheet %s: column %s not found", path, key)
	}

	var c Curve
	for scanner.Scan() {
		line := scanner.Text()
		if len(strings.TrimSpace(line)) <= 1 {
			break
		}
		parts := strings.Split(line, ",")
		if len(parts) <= idx {
			continue
		}
		a, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		v, err2 := strconv.ParseFloat(strings.TrimSpace(parts[idx]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		c = append(c, NewCurve([]float64{a}, []float64{v})...)
	}
	return c, nil
}

func readTable(scanner *bufio.Scanner, path string, key string, halve bool) (Curve, error) {
	if !scanner.Scan() {
		return nil, errs.Data("datasheet %s: empty file", path)
	}
	header := strings.Fields(scanner.Text())
	if len(header) < 2 {
		return nil, errs.Data("datasheet %s: header has no angles", path)
	}

	angles, err := parseFloats(header[1:])
	if err != nil {
		return nil, errs.Data("datasheet %s: header: %v", path, err)
	}
	if halve {
		for i := range angles {
			angles[i] = floorHalf(angles[i])
		}
	}

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] != key {
			continue
		}
		values, err := parseFloats(fields[1:])
		if err != nil {
			return nil, errs.Data("datasheet %s: row %s: %v", path, key, err)
		}
		if len(values) != len(angles) {
			return nil, errs.Data("datasheet %s: row %s has %d values for %d angles", path, key, len(values), len(angles))
		}
		return NewCurve(angles, values), nil
	}
	return nil, errs.Data("datasheet %s: row %s not found", path, key)
}

func parseFloats(fields []string) ([]float64, error) {
	res := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}
