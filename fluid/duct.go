package fluid

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
)

// velocityPressureRef converts ft/min to velocity pressure in in. wg for standard air.
const velocityPressureRef = 1097.0

// Model carries the air and duct-wall properties shared by every loss formula.
type Model struct {
	Density   float64 // lb/ft³
	Roughness float64 // 管壁绝对粗糙度 ft
	Options   Options
}

func NewModel(density, roughness float64, opt Options) *Model {
	return &Model{
		Density:   density,
		Roughness: roughness,
		Options:   opt,
	}
}

// Area of a round duct, ft², for a diameter in inches.
func Area(dia float64) float64 {
	d := dia / 12
	return math.Pi * d * d / 4
}

// Velocity in ft/min of flow (CFM) through a round duct of dia inches.
func Velocity(flow, dia float64) float64 {
	return flow / Area(dia)
}

// VelocityPressure in in. wg.
func (m *Model) VelocityPressure(velocity float64) float64 {
	r := velocity / velocityPressureRef
	return m.Density * r * r
}

// colebrook is the residual of the implicit friction relation at f.
func colebrook(f, dia, velocity, roughness float64) float64 {
	d := dia / 12
	re := 8.5 * d * velocity
	sf := math.Sqrt(f)
	return -2*math.Log10(roughness/(3.7*d)+2.51/(re*sf)) - 1/sf
}

// FrictionFactor solves the Colebrook relation for a duct of dia inches at velocity ft/min.
// On a failed attempt the initial guess is halved.
func (m *Model) FrictionFactor(dia, velocity float64) (float64, error) {
	if !(dia > 0) || !(velocity > 0) {
		return 0, fmt.Errorf("fluid: friction factor for diameter %v, velocity %v", dia, velocity)
	}
	res, err := Solve(func(f float64) float64 {
		return colebrook(f, dia, velocity, m.Roughness)
	}, m.Options.FrictionGuess, Halve, m.Options)
	if err != nil {
		return 0, fmt.Errorf("friction factor (d=%v in, v=%v fpm): %w", dia, velocity, err)
	}
	logRetries("friction factor", res)
	return res.Root, nil
}

// DuctPressureDrop of a straight duct: dia in., flow CFM, length ft.
func (m *Model) DuctPressureDrop(dia, flow, length float64) (float64, error) {
	v := Velocity(flow, dia)
	f, err := m.FrictionFactor(dia, v)
	if err != nil {
		return 0, err
	}
	return 12 * f * length / dia * m.VelocityPressure(v), nil
}

// DuctSize is the inverse of DuctPressureDrop: the diameter that produces target loss.
// The search starts small and doubles the guess on failure.
func (m *Model) DuctSize(target, flow, length float64) (float64, error) {
	if !(target > 0) || !(flow > 0) || !(length > 0) {
		return 0, fmt.Errorf("fluid: duct size for loss %v, flow %v, length %v", target, flow, length)
	}
	res, err := Solve(func(dia float64) float64 {
		dp, err := m.DuctPressureDrop(dia, flow, length)
		if err != nil {
			return math.NaN()
		}
		return target - dp
	}, m.Options.DiameterGuess, Double, m.Options)
	if err != nil {
		return 0, fmt.Errorf("duct size (dp=%v, q=%v, l=%v): %w", target, flow, length, err)
	}
	logRetries("duct size", res)
	return res.Root, nil
}

// logRetries reports a solve that needed a new initial guess.
func logRetries(what string, res Result) {
	if res.Retries == 0 {
		return
	}
	log.WithFields(log.Fields{
		"solve":   what,
		"guess":   res.Guess,
		"retries": res.Retries,
		"steps":   res.Steps,
		"root":    res.Root,
	}).Debug("converged after retry")
}
