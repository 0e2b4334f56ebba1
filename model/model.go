package model

import (
	"fmt"
	"math"
)

// 单位约定（仅英制）
// 1. 风量 CFM
// 2. 管径 in.
// 3. 长度 ft
// 4. 压降 in. wg
// 5. 空气密度 lb/ft³，管壁绝对粗糙度 ft

// NoFitting marks an unset downstream link.
const NoFitting = -1

// Kind is the type of a network component.
type Kind string

const (
	AirHandlingUnit Kind = "air_handling_unit"
	Duct            Kind = "duct"
	Elbow           Kind = "elbow"
	Tee             Kind = "tee"
	Diffuser        Kind = "diffuser"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case AirHandlingUnit, Duct, Elbow, Tee, Diffuser:
		return k, nil
	}
	return "", fmt.Errorf("unknown fitting type %q: %w", s, ErrInvalidNetwork)
}

// RoundingPolicy decides how sized diameters are reported.
type RoundingPolicy string

const (
	RoundNone    RoundingPolicy = "none"
	RoundNearest RoundingPolicy = "nearest"
	RoundUp      RoundingPolicy = "up"
	RoundDown    RoundingPolicy = "down"
)

func ParseRoundingPolicy(s string) (RoundingPolicy, error) {
	switch p := RoundingPolicy(s); p {
	case "":
		return RoundNone, nil
	case RoundNone, RoundNearest, RoundUp, RoundDown:
		return p, nil
	}
	return "", fmt.Errorf("unknown rounding policy %q: %w", s, ErrInvalidNetwork)
}

// Apply rounds a diameter according to the policy.
func (p RoundingPolicy) Apply(d float64) float64 {
	switch p {
	case RoundNearest:
		return math.Round(d)
	case RoundUp:
		return math.Ceil(d)
	case RoundDown:
		return math.Floor(d)
	}
	return d
}

// Outlet selects one of the two exits of a tee.
type Outlet int

const (
	OutletMain Outlet = iota
	OutletBranch
)

func (o Outlet) String() string {
	if o == OutletBranch {
		return "branch"
	}
	return "main"
}

// Fitting is one component of the air-distribution network.
// Ids of other fittings are stored instead of pointers; Network.Find resolves them.
type Fitting struct {
	ID           int     `json:"id" yaml:"id"`
	Kind         Kind    `json:"type" yaml:"type"`
	UpstreamRef  string  `json:"up,omitempty" yaml:"up,omitempty"`
	Length       float64 `json:"length,omitempty" yaml:"length,omitempty"` // ft, ducts only
	DeclaredFlow float64 `json:"flow,omitempty" yaml:"flow,omitempty"`     // CFM, diffusers only

	// 连接关系，由 network.Resolve 填充
	Upstream         Reference `json:"-" yaml:"-"`
	DownstreamMain   int       `json:"downstream_main" yaml:"-"`
	DownstreamBranch int       `json:"downstream_branch" yaml:"-"`

	Flow        float64 `json:"q" yaml:"-"`
	HasFlow     bool    `json:"-" yaml:"-"`
	FanDistance float64 `json:"fan_distance" yaml:"-"`

	// 尺寸 in.
	Size       float64 `json:"size" yaml:"-"`
	SizeMain   float64 `json:"size_main,omitempty" yaml:"-"`
	SizeBranch float64 `json:"size_branch,omitempty" yaml:"-"`
	HasSize    bool    `json:"-" yaml:"-"`

	// 压降 in. wg
	PressureDrop       float64 `json:"pressure_drop" yaml:"-"`
	PressureDropMain   float64 `json:"pressure_drop_main,omitempty" yaml:"-"`
	PressureDropBranch float64 `json:"pressure_drop_branch,omitempty" yaml:"-"`

	DiffuserPressureSum float64 `json:"diffuser_pressure_sum,omitempty" yaml:"-"`
}

// OutletSize returns the tee outlet diameter selected by o.
func (f *Fitting) OutletSize(o Outlet) float64 {
	if o == OutletBranch {
		return f.SizeBranch
	}
	return f.SizeMain
}

// OutletPressureDrop returns the tee loss through outlet o.
func (f *Fitting) OutletPressureDrop(o Outlet) float64 {
	if o == OutletBranch {
		return f.PressureDropBranch
	}
	return f.PressureDropMain
}

// Network is the whole system handed in by the input reader.
type Network struct {
	Title         string         `json:"title" yaml:"title"`
	FanPressure   float64        `json:"fan_pressure" yaml:"fan_pressure"`   // in. wg
	AirDensity    float64        `json:"air_density" yaml:"air_density"`     // lb/ft³
	DuctRoughness float64        `json:"roughness" yaml:"roughness"`         // ft
	Rounding      RoundingPolicy `json:"rounding" yaml:"rounding"`
	Fittings      []*Fitting     `json:"fittings" yaml:"fittings"`

	index map[int]*Fitting
}

// BuildIndex (re)creates the id lookup. Duplicate ids are rejected.
func (n *Network) BuildIndex() error {
	index := make(map[int]*Fitting, len(n.Fittings))
	for _, f := range n.Fittings {
		if _, ok := index[f.ID]; ok {
			return fmt.Errorf("duplicate fitting id %d: %w", f.ID, ErrInvalidNetwork)
		}
		index[f.ID] = f
	}
	n.index = index
	return nil
}

// Find looks a fitting up by id.
func (n *Network) Find(id int) (*Fitting, error) {
	if n.index == nil {
		if err := n.BuildIndex(); err != nil {
			return nil, err
		}
	}
	f, ok := n.index[id]
	if !ok {
		return nil, fmt.Errorf("fitting %d: %w", id, ErrUnresolvedReference)
	}
	return f, nil
}

// Root returns the air handling unit.
func (n *Network) Root() (*Fitting, error) {
	var root *Fitting
	for _, f := range n.Fittings {
		if f.Kind != AirHandlingUnit {
			continue
		}
		if root != nil {
			return nil, fmt.Errorf("air handling units %d and %d: %w", root.ID, f.ID, ErrInvalidNetwork)
		}
		root = f
	}
	if root == nil {
		return nil, fmt.Errorf("no air handling unit: %w", ErrInvalidNetwork)
	}
	return root, nil
}

// Each calls fn for every fitting of kind k in input order.
func (n *Network) Each(k Kind, fn func(f *Fitting) error) error {
	for _, f := range n.Fittings {
		if f.Kind != k {
			continue
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the network-wide parameters and per-fitting input fields.
func (n *Network) Validate() error {
	if n.FanPressure <= 0 || math.IsNaN(n.FanPressure) {
		return fmt.Errorf("fan pressure %v: %w", n.FanPressure, ErrInvalidNetwork)
	}
	if n.AirDensity <= 0 || math.IsNaN(n.AirDensity) {
		return fmt.Errorf("air density %v: %w", n.AirDensity, ErrInvalidNetwork)
	}
	if n.DuctRoughness < 0 || math.IsNaN(n.DuctRoughness) {
		return fmt.Errorf("roughness %v: %w", n.DuctRoughness, ErrInvalidNetwork)
	}
	if _, err := ParseRoundingPolicy(string(n.Rounding)); err != nil {
		return err
	}
	if err := n.BuildIndex(); err != nil {
		return err
	}
	if _, err := n.Root(); err != nil {
		return err
	}
	for _, f := range n.Fittings {
		if _, err := ParseKind(string(f.Kind)); err != nil {
			return fmt.Errorf("fitting %d: %w", f.ID, err)
		}
		switch {
		case f.Kind == AirHandlingUnit && f.UpstreamRef != "":
			return fmt.Errorf("air handling unit %d has upstream %q: %w", f.ID, f.UpstreamRef, ErrInvalidNetwork)
		case f.Kind != AirHandlingUnit && f.UpstreamRef == "":
			return fmt.Errorf("fitting %d has no upstream: %w", f.ID, ErrInvalidNetwork)
		case f.Kind == Duct && !(f.Length > 0):
			return fmt.Errorf("duct %d length %v: %w", f.ID, f.Length, ErrInvalidNetwork)
		case f.Kind == Diffuser && !(f.DeclaredFlow > 0):
			return fmt.Errorf("diffuser %d flow %v: %w", f.ID, f.DeclaredFlow, ErrInvalidNetwork)
		}
	}
	return nil
}
