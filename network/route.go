package network

import (
	"fmt"

	"ductsize/model"
)

// Route lists the ids from fitting id up to and including the air handler.
func Route(n *model.Network, id int) ([]int, error) {
	f, err := n.Find(id)
	if err != nil {
		return nil, err
	}
	route := []int{f.ID}
	for f.Kind != model.AirHandlingUnit {
		if len(route) > len(n.Fittings) {
			return nil, fmt.Errorf("route from %d loops: %w", id, model.ErrMalformedReference)
		}
		f, err = Upstream(n, f)
		if err != nil {
			return nil, fmt.Errorf("route from %d: %w", id, err)
		}
		route = append(route, f.ID)
	}
	return route, nil
}

// SumRoute adds the losses along route. A tee contributes the loss of the outlet the
// route came through. Duct losses are included only when withDucts is set.
func SumRoute(n *model.Network, route []int, withDucts bool) (float64, error) {
	sum := 0.0
	for i, id := range route {
		f, err := n.Find(id)
		if err != nil {
			return 0, err
		}
		switch f.Kind {
		case model.Duct:
			if withDucts {
				sum += f.PressureDrop
			}
		case model.Elbow:
			sum += f.PressureDrop
		case model.Tee:
			if i == 0 {
				continue
			}
			switch route[i-1] {
			case f.DownstreamMain:
				sum += f.OutletPressureDrop(model.OutletMain)
			case f.DownstreamBranch:
				sum += f.OutletPressureDrop(model.OutletBranch)
			}
		}
	}
	return sum, nil
}

// PressureSum is the total loss from the air handler to fitting id.
func PressureSum(n *model.Network, id int) (float64, error) {
	route, err := Route(n, id)
	if err != nil {
		return 0, err
	}
	return SumRoute(n, route, true)
}

// FittingLossSum is the elbow and tee loss from the air handler to fitting id.
func FittingLossSum(n *model.Network, id int) (float64, error) {
	route, err := Route(n, id)
	if err != nil {
		return 0, err
	}
	return SumRoute(n, route, false)
}

// FarthestDiffuser returns the diffuser with the largest fan distance; the first wins ties.
func FarthestDiffuser(n *model.Network) (*model.Fitting, error) {
	var far *model.Fitting
	for _, d := range n.Fittings {
		if d.Kind != model.Diffuser {
			continue
		}
		if far == nil || d.FanDistance > far.FanDistance {
			far = d
		}
	}
	if far == nil {
		return nil, fmt.Errorf("no diffuser: %w", model.ErrInvalidNetwork)
	}
	return far, nil
}
