package foil

import (
	"bufio"
	"errors"
	"io/fs"
	"math"
	"os"
	"strings"

	"github.com/a-bouts/sail-sim/errs"
)

func floorHalf(v float64) float64 {
	return math.Floor(v / 2)
}

// PolygonPath returns the outline file that goes with a datasheet.
func PolygonPath(datasheet string) string {
	return strings.NewReplacer("cvs", "dat", "csv", "dat").Replace(datasheet)
}

// ReadPolygon reads a foil outline. Only rows starting with a digit are
// kept and x is mirrored about the quarter chord. A missing file yields an
// empty outline.
func ReadPolygon(path string) ([][2]float64, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Data("polygon %s: %v", path, err)
	}
	defer f.Close()

	var poly [][2]float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] < '0' || line[0] > '9' {
			continue
		}
		var fields []string
		if strings.Contains(line, ",") {
			fields = strings.Split(line, ",")
		} else {
			fields = strings.Fields(line)
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		coords, err := parseFloats(fields)
		if err != nil {
			return nil, errs.Data("polygon %s: %v", path, err)
		}
		if len(coords) < 2 {
			continue
		}
		poly = append(poly, [2]float64{-coords[0] + 0.5, coords[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Data("polygon %s: %v", path, err)
	}
	return poly, nil
}
