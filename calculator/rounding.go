package calculator

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"ductsize/fluid"
	"ductsize/model"
	"ductsize/network"
)

// 最小圆整管径 in.
const minRoundedDiameter = 1.0

// finish runs after balancing: diffuser totals, rounding, then diffuser sizes.
// Losses recomputed after rounding are reported as they are; no further balancing.
func (s *Sizer) finish(n *model.Network, m *fluid.Model) error {
	err := n.Each(model.Diffuser, func(d *model.Fitting) error {
		total, err := network.PressureSum(n, d.ID)
		if err != nil {
			return err
		}
		d.DiffuserPressureSum = total
		return nil
	})
	if err != nil {
		return err
	}

	changed, err := round(n, m)
	if err != nil {
		return err
	}
	if changed > 0 {
		log.WithFields(log.Fields{
			"policy":  n.Rounding,
			"changed": changed,
		}).Info("diameters rounded")
	}

	return n.Each(model.Diffuser, func(d *model.Fitting) error {
		up, err := network.Upstream(n, d)
		if err != nil {
			return err
		}
		d.Size = up.Size
		if d.Upstream.IsTee() {
			d.Size = up.OutletSize(d.Upstream.Outlet())
		}
		d.HasSize = true
		return nil
	})
}

// round applies the network's rounding policy to every sized duct, elbow and tee and
// recomputes the losses of those whose diameter moved. It returns how many fittings changed.
func round(n *model.Network, m *fluid.Model) (int, error) {
	policy := n.Rounding
	if policy == "" || policy == model.RoundNone {
		return 0, nil
	}

	changed := 0
	for _, f := range n.Fittings {
		if f.Kind == model.AirHandlingUnit || f.Kind == model.Diffuser || !f.HasSize {
			continue
		}
		moved := roundInto(policy, &f.Size)
		if f.Kind == model.Tee {
			moved = roundInto(policy, &f.SizeMain) || moved
			moved = roundInto(policy, &f.SizeBranch) || moved
		}
		if !moved {
			continue
		}
		changed++
		if err := recompute(n, m, f); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

func roundInto(policy model.RoundingPolicy, dia *float64) bool {
	r := policy.Apply(*dia)
	if r < minRoundedDiameter {
		r = minRoundedDiameter
	}
	if r == *dia {
		return false
	}
	*dia = r
	return true
}

// recompute re-derives the loss of f from its current diameters.
func recompute(n *model.Network, m *fluid.Model, f *model.Fitting) error {
	var err error
	switch f.Kind {
	case model.Duct:
		f.PressureDrop, err = m.DuctPressureDrop(f.Size, f.Flow, f.Length)
	case model.Elbow:
		f.PressureDrop, err = m.ElbowPressureDrop(f.Size, f.Flow)
	case model.Tee:
		var main, branch *model.Fitting
		if main, err = n.Find(f.DownstreamMain); err != nil {
			return err
		}
		if branch, err = n.Find(f.DownstreamBranch); err != nil {
			return err
		}
		return teeLosses(m, f, main.Flow, branch.Flow)
	}
	if err != nil {
		return fmt.Errorf("%s %d after rounding: %w", f.Kind, f.ID, err)
	}
	return nil
}
