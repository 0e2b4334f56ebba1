package network

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"ductsize/deque"
	"ductsize/model"
)

// SetFanDistances walks the tree breadth first from the air handler. A fitting's
// fan distance is its upstream's plus the upstream's length when that is a duct.
func SetFanDistances(n *model.Network) error {
	root, err := n.Root()
	if err != nil {
		return err
	}
	root.FanDistance = 0

	queue := deque.NewArrDeque(len(n.Fittings))
	queue.AddLast(root.ID)
	visited := 0
	for !queue.IsEmpty() {
		id, _ := queue.RemoveFirst()
		f, err := n.Find(id)
		if err != nil {
			return err
		}
		visited++

		for _, childID := range []int{f.DownstreamMain, f.DownstreamBranch} {
			if childID == model.NoFitting {
				continue
			}
			child, err := n.Find(childID)
			if err != nil {
				return fmt.Errorf("fitting %d outlet: %w", f.ID, err)
			}
			child.FanDistance = f.FanDistance + segmentLength(f)
			queue.AddLast(childID)
		}
	}

	if visited != len(n.Fittings) {
		return fmt.Errorf("%d of %d fittings reachable from air handler %d: %w",
			visited, len(n.Fittings), root.ID, model.ErrMalformedReference)
	}

	log.WithFields(log.Fields{
		"visited": visited,
	}).Info("fan distances set")
	return nil
}

func segmentLength(f *model.Fitting) float64 {
	if f.Kind == model.Duct {
		return f.Length
	}
	return 0
}
