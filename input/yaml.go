package input

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"ductsize/model"
)

// ReadYAML decodes a network written as
//
//	title: office
//	fan_pressure: 0.5
//	fittings:
//	  - {id: 1, type: air_handling_unit}
//	  - {id: 2, type: duct, up: "1", length: 10}
func ReadYAML(r io.Reader) (*model.Network, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	n := &model.Network{}
	if err := dec.Decode(n); err != nil {
		return nil, fmt.Errorf("yaml network: %v: %w", err, model.ErrInvalidNetwork)
	}
	if n.Rounding == "" {
		n.Rounding = model.RoundNone
	}
	for i, f := range n.Fittings {
		if f == nil {
			return nil, fmt.Errorf("yaml network: fitting %d is empty: %w", i, model.ErrInvalidNetwork)
		}
		f.UpstreamRef = strings.ToLower(strings.TrimSpace(f.UpstreamRef))
	}

	log.WithFields(log.Fields{
		"title":    n.Title,
		"fittings": len(n.Fittings),
	}).Info("network read")
	return n, nil
}

// ReadFile opens path and picks the reader by extension: .yaml/.yml or the keyword format.
func ReadFile(path string) (*model.Network, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadYAML(file)
	}
	return Read(file)
}
