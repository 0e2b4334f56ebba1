package network

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"ductsize/model"
)

// DefaultFlowPasses bounds flow relaxation when no configuration is given.
const DefaultFlowPasses = 1000

// PropagateFlow assigns flow from the diffusers up to the air handler.
// Each pass gives a fitting the sum of its outlets' flows once all of them are known;
// relaxation stops after a pass without change or after maxPasses.
// It returns the number of passes run.
func PropagateFlow(n *model.Network, maxPasses int) (int, error) {
	if maxPasses <= 0 {
		maxPasses = DefaultFlowPasses
	}
	for _, d := range n.Fittings {
		if d.Kind == model.Diffuser && !d.HasFlow {
			d.Flow, d.HasFlow = d.DeclaredFlow, true
		}
	}

	passes := 0
	for passes < maxPasses {
		passes++
		changed := false
		for _, f := range n.Fittings {
			if f.HasFlow {
				continue
			}
			q, ok, err := outletFlow(n, f)
			if err != nil {
				return passes, err
			}
			if ok {
				f.Flow, f.HasFlow = q, true
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	var missing []int
	for _, f := range n.Fittings {
		if !f.HasFlow {
			missing = append(missing, f.ID)
		}
	}
	if len(missing) > 0 {
		return passes, fmt.Errorf("fittings %v after %d passes: %w", missing, passes, model.ErrFlowPropagation)
	}

	log.WithFields(log.Fields{
		"passes": passes,
	}).Info("flow propagated")
	return passes, nil
}

// outletFlow sums the flow leaving f. ok is false while an outlet is still unknown.
func outletFlow(n *model.Network, f *model.Fitting) (q float64, ok bool, err error) {
	if f.DownstreamMain == model.NoFitting {
		return 0, false, nil
	}
	main, err := n.Find(f.DownstreamMain)
	if err != nil {
		return 0, false, err
	}
	if !main.HasFlow {
		return 0, false, nil
	}
	q = main.Flow
	if f.Kind != model.Tee {
		return q, true, nil
	}

	branch, err := n.Find(f.DownstreamBranch)
	if err != nil {
		return 0, false, err
	}
	if !branch.HasFlow {
		return 0, false, nil
	}
	return q + branch.Flow, true, nil
}
