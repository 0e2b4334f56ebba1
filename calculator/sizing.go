package calculator

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"ductsize/fluid"
	"ductsize/model"
	"ductsize/network"
)

// balance repeats duct, elbow and tee sizing until the pressure gradient of the
// longest run settles. Every duct in the network is sized with the same dpdl.
func (s *Sizer) balance(n *model.Network, m *fluid.Model, sum *Summary) error {
	far, err := network.FarthestDiffuser(n)
	if err != nil {
		return err
	}
	longest := far.FanDistance
	if !(longest > 0) {
		return fmt.Errorf("longest path to diffuser %d has no duct length: %w", far.ID, model.ErrInvalidNetwork)
	}
	sum.Farthest, sum.LongestPath = far.ID, longest

	dpdl, err := gradient(n, far, longest)
	if err != nil {
		return err
	}
	for it := 1; it <= s.cfg.MaxIterations; it++ {
		if err := sizeDucts(n, m, dpdl); err != nil {
			return err
		}
		if err := sizeElbows(n, m); err != nil {
			return err
		}
		if err := sizeTees(n, m); err != nil {
			return err
		}

		next, err := gradient(n, far, longest)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"iteration": it,
			"dpdl":      dpdl,
			"next":      next,
		}).Debug("balancing")

		if math.Abs(next-dpdl) <= s.cfg.Tolerance {
			sum.Iterations, sum.Dpdl = it, dpdl
			log.WithFields(log.Fields{
				"iterations": it,
				"dpdl":       dpdl,
				"longest":    longest,
			}).Info("sizing converged")
			return nil
		}
		dpdl = next
	}
	return fmt.Errorf("dpdl still moving after %d iterations (last %v): %w",
		s.cfg.MaxIterations, dpdl, model.ErrConvergence)
}

// gradient is the fan pressure left after fitting losses on the longest run, per foot.
func gradient(n *model.Network, far *model.Fitting, longest float64) (float64, error) {
	loss, err := network.FittingLossSum(n, far.ID)
	if err != nil {
		return 0, err
	}
	dpdl := (n.FanPressure - loss) / longest
	if !(dpdl > 0) {
		return 0, fmt.Errorf("fitting loss %.4f in. wg uses up fan pressure %.4f: %w",
			loss, n.FanPressure, model.ErrConvergence)
	}
	return dpdl, nil
}

func sizeDucts(n *model.Network, m *fluid.Model, dpdl float64) error {
	return n.Each(model.Duct, func(f *model.Fitting) error {
		target := dpdl * f.Length
		dia, err := m.DuctSize(target, f.Flow, f.Length)
		if err != nil {
			return fmt.Errorf("duct %d: %w", f.ID, err)
		}
		f.Size, f.HasSize = dia, true
		f.PressureDrop = target
		return nil
	})
}

func sizeElbows(n *model.Network, m *fluid.Model) error {
	return n.Each(model.Elbow, func(f *model.Fitting) error {
		dia, err := elbowDiameter(n, f)
		if err != nil {
			return err
		}
		dp, err := m.ElbowPressureDrop(dia, f.Flow)
		if err != nil {
			return fmt.Errorf("elbow %d: %w", f.ID, err)
		}
		f.Size, f.HasSize = dia, true
		f.PressureDrop = dp
		return nil
	})
}

func sizeTees(n *model.Network, m *fluid.Model) error {
	return n.Each(model.Tee, func(f *model.Fitting) error {
		inlet, err := teeInlet(n, f)
		if err != nil {
			return err
		}
		main, err := n.Find(f.DownstreamMain)
		if err != nil {
			return err
		}
		branch, err := n.Find(f.DownstreamBranch)
		if err != nil {
			return err
		}
		f.Size = inlet
		if f.SizeMain, err = outletDiameter(n, main, inlet); err != nil {
			return err
		}
		if f.SizeBranch, err = outletDiameter(n, branch, inlet); err != nil {
			return err
		}
		f.HasSize = true
		return teeLosses(m, f, main.Flow, branch.Flow)
	})
}

func teeLosses(m *fluid.Model, f *model.Fitting, mainFlow, branchFlow float64) error {
	var err error
	f.PressureDropMain, err = m.TeePressureDrop(f.Size, f.Flow, mainFlow, f.SizeMain, model.OutletMain)
	if err != nil {
		return fmt.Errorf("tee %d: %w", f.ID, err)
	}
	f.PressureDropBranch, err = m.TeePressureDrop(f.Size, f.Flow, branchFlow, f.SizeBranch, model.OutletBranch)
	if err != nil {
		return fmt.Errorf("tee %d: %w", f.ID, err)
	}
	return nil
}

// elbowDiameter takes the downstream duct's size, else the nearest sized fitting upstream,
// else the nearest duct further downstream.
func elbowDiameter(n *model.Network, f *model.Fitting) (float64, error) {
	if down, err := n.Find(f.DownstreamMain); err == nil && down.Kind == model.Duct && down.HasSize {
		return down.Size, nil
	}
	if dia, ok, err := upstreamDiameter(n, f); err != nil || ok {
		return dia, err
	}
	return downstreamDiameter(n, f)
}

// teeInlet is the diameter of whatever feeds the tee.
func teeInlet(n *model.Network, f *model.Fitting) (float64, error) {
	if dia, ok, err := upstreamDiameter(n, f); err != nil || ok {
		return dia, err
	}
	return downstreamDiameter(n, f)
}

// outletDiameter is the size of the fitting fed by a tee outlet. A diffuser right on
// the outlet keeps the tee's inlet size.
func outletDiameter(n *model.Network, down *model.Fitting, inlet float64) (float64, error) {
	switch down.Kind {
	case model.Duct, model.Elbow:
		if down.HasSize {
			return down.Size, nil
		}
		return elbowDiameter(n, down)
	case model.Tee:
		return teeInlet(n, down)
	}
	return inlet, nil
}

// upstreamDiameter walks toward the air handler, through tees, to the first sized duct
// or elbow. ok is false when the walk reaches the air handler.
func upstreamDiameter(n *model.Network, f *model.Fitting) (float64, bool, error) {
	cur := f
	for {
		up, err := network.Upstream(n, cur)
		if err != nil {
			return 0, false, err
		}
		switch up.Kind {
		case model.AirHandlingUnit:
			return 0, false, nil
		case model.Duct, model.Elbow:
			if up.HasSize {
				return up.Size, true, nil
			}
		}
		cur = up
	}
}

// downstreamDiameter follows main outlets to the first sized duct.
func downstreamDiameter(n *model.Network, f *model.Fitting) (float64, error) {
	cur := f
	for cur.DownstreamMain != model.NoFitting {
		down, err := n.Find(cur.DownstreamMain)
		if err != nil {
			return 0, err
		}
		if down.Kind == model.Duct && down.HasSize {
			return down.Size, nil
		}
		cur = down
	}
	return 0, fmt.Errorf("%s %d has no duct to take its size from: %w", f.Kind, f.ID, model.ErrInvalidNetwork)
}
