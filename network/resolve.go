// Package network rebuilds the fitting tree from upstream references and walks it:
// flow propagation toward the air handler, fan distances away from it, and
// route pressure sums back to it.
package network

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"ductsize/model"
)

// Resolve validates the network, parses every upstream reference once and fills the
// downstream links. It fails unless the fittings form a tree rooted at the air handler.
func Resolve(n *model.Network) error {
	if err := n.Validate(); err != nil {
		return err
	}

	for _, f := range n.Fittings {
		f.DownstreamMain, f.DownstreamBranch = model.NoFitting, model.NoFitting
		ref, err := model.ParseReference(f.UpstreamRef)
		if err != nil {
			return fmt.Errorf("fitting %d: %w", f.ID, err)
		}
		f.Upstream = ref
	}

	for _, f := range n.Fittings {
		if f.Upstream.Kind == model.RefNone {
			continue
		}
		up, err := n.Find(f.Upstream.ID)
		if err != nil {
			return fmt.Errorf("fitting %d upstream %q: %w", f.ID, f.UpstreamRef, err)
		}
		if err := link(up, f); err != nil {
			return err
		}
	}

	tees := 0
	err := n.Each(model.Tee, func(t *model.Fitting) error {
		tees++
		if t.DownstreamMain == model.NoFitting {
			return fmt.Errorf("tee %d has no main outlet: %w", t.ID, model.ErrMalformedReference)
		}
		if t.DownstreamBranch == model.NoFitting {
			return fmt.Errorf("tee %d has no branch outlet: %w", t.ID, model.ErrMalformedReference)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := checkTree(n); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"title":    n.Title,
		"fittings": len(n.Fittings),
		"tees":     tees,
	}).Info("connections resolved")
	return nil
}

// link records f as a downstream child of up.
func link(up, f *model.Fitting) error {
	ref := f.Upstream
	switch {
	case ref.IsTee() && up.Kind != model.Tee:
		return fmt.Errorf("fitting %d: %q names an outlet of %s %d: %w",
			f.ID, f.UpstreamRef, up.Kind, up.ID, model.ErrMalformedReference)
	case !ref.IsTee() && up.Kind == model.Tee:
		return fmt.Errorf("fitting %d: tee %d needs a -main or -branch outlet: %w",
			f.ID, up.ID, model.ErrMalformedReference)
	case up.Kind == model.Diffuser:
		return fmt.Errorf("fitting %d: diffuser %d has no outlet: %w", f.ID, up.ID, model.ErrMalformedReference)
	}

	slot := &up.DownstreamMain
	if ref.Kind == model.RefTeeBranch {
		slot = &up.DownstreamBranch
	}
	if *slot != model.NoFitting {
		return fmt.Errorf("fitting %d: outlet %q already feeds %d: %w",
			f.ID, f.UpstreamRef, *slot, model.ErrMalformedReference)
	}
	*slot = f.ID
	return nil
}

// checkTree walks every fitting up to the root; an id seen twice on one walk is a cycle.
// Chains already known to reach the root are not walked again.
func checkTree(n *model.Network) error {
	reaches := make(map[int]bool, len(n.Fittings))
	for _, f := range n.Fittings {
		seen := make(map[int]bool)
		var chain []int
		cur := f
		for cur.Upstream.Kind != model.RefNone && !reaches[cur.ID] {
			if seen[cur.ID] {
				return fmt.Errorf("fitting %d: upstream chain loops through %d: %w",
					f.ID, cur.ID, model.ErrMalformedReference)
			}
			seen[cur.ID] = true
			chain = append(chain, cur.ID)

			next, err := n.Find(cur.Upstream.ID)
			if err != nil {
				return err
			}
			cur = next
		}
		for _, id := range chain {
			reaches[id] = true
		}
	}
	return nil
}

// Upstream returns the fitting feeding f. Resolve must have run.
func Upstream(n *model.Network, f *model.Fitting) (*model.Fitting, error) {
	if f.Upstream.Kind == model.RefNone {
		return nil, fmt.Errorf("fitting %d has no upstream: %w", f.ID, model.ErrUnresolvedReference)
	}
	return n.Find(f.Upstream.ID)
}
