// Package input builds a model.Network from a keyword file or a YAML description.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"ductsize/model"
)

// Read parses the comma separated keyword format:
//
//	title, <text>
//	fan_pressure, <in. wg>
//	air_density, <lb/ft³>
//	roughness, <ft>
//	rounding, none|nearest|up|down
//	fitting, <id>, <type>[, <up>[, <length ft | flow CFM>]]
//
// Any line holding '#' is a comment. Unknown keywords are skipped.
func Read(r io.Reader) (*model.Network, error) {
	n := &model.Network{Rounding: model.RoundNone}
	scanner := bufio.NewScanner(r)
	line := 0
	skipped := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.Contains(text, "#") {
			continue
		}
		item := strings.Split(text, ",")
		for i := range item {
			item[i] = strings.TrimSpace(item[i])
		}

		var err error
		switch keyword := strings.ToLower(item[0]); keyword {
		case "title":
			if _, rest, ok := strings.Cut(text, ","); ok {
				n.Title = strings.TrimSpace(rest)
			}
		case "fan_pressure":
			n.FanPressure, err = field(item, 1)
		case "air_density":
			n.AirDensity, err = field(item, 1)
		case "roughness":
			n.DuctRoughness, err = field(item, 1)
		case "rounding":
			if len(item) < 2 {
				err = fmt.Errorf("rounding needs a policy: %w", model.ErrInvalidNetwork)
				break
			}
			n.Rounding, err = model.ParseRoundingPolicy(strings.ToLower(item[1]))
		case "fitting":
			var f *model.Fitting
			if f, err = parseFitting(item); err == nil {
				n.Fittings = append(n.Fittings, f)
			}
		default:
			skipped++
			log.WithFields(log.Fields{
				"line":    line,
				"keyword": keyword,
			}).Debug("unknown keyword skipped")
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"title":    n.Title,
		"fittings": len(n.Fittings),
		"skipped":  skipped,
	}).Info("network read")
	return n, nil
}

func parseFitting(item []string) (*model.Fitting, error) {
	if len(item) < 3 {
		return nil, fmt.Errorf("fitting needs an id and a type: %w", model.ErrInvalidNetwork)
	}
	id, err := model.ParseID(item[1])
	if err != nil {
		return nil, err
	}
	kind, err := model.ParseKind(strings.ToLower(item[2]))
	if err != nil {
		return nil, err
	}
	f := &model.Fitting{ID: id, Kind: kind}
	if len(item) > 3 {
		f.UpstreamRef = strings.ToLower(item[3])
	}

	switch kind {
	case model.Duct:
		f.Length, err = field(item, 4)
	case model.Diffuser:
		f.DeclaredFlow, err = field(item, 4)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", kind, id, err)
	}
	return f, nil
}

// field parses item[i] as a number.
func field(item []string, i int) (float64, error) {
	if len(item) <= i || item[i] == "" {
		return 0, fmt.Errorf("%s: missing value %d: %w", item[0], i, model.ErrInvalidNetwork)
	}
	v, err := strconv.ParseFloat(item[i], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number: %w", item[0], item[i], model.ErrInvalidNetwork)
	}
	return v, nil
}
