// Package calculator runs the whole sizing of a network: connectivity, flow,
// fan distances, the dpdl balancing loop and the final rounding pass.
package calculator

import (
	"time"

	log "github.com/sirupsen/logrus"

	"ductsize/fluid"
	"ductsize/model"
	"ductsize/network"
)

// Sizer sizes networks with one configuration. It keeps no state between runs.
type Sizer struct {
	cfg Config
}

func NewSizer(cfg Config) *Sizer {
	return &Sizer{cfg: cfg}
}

// Summary describes a finished run.
type Summary struct {
	FlowPasses  int
	Iterations  int     // 平衡迭代次数
	Dpdl        float64 // in. wg / ft
	Farthest    int     // 最远风口
	LongestPath float64 // ft
	Elapsed     time.Duration
}

// Run annotates n in place. On error no computed field of n should be trusted.
func (s *Sizer) Run(n *model.Network) (Summary, error) {
	start := time.Now()
	var sum Summary

	reset(n)
	if err := network.Resolve(n); err != nil {
		return sum, err
	}
	passes, err := network.PropagateFlow(n, s.cfg.FlowPasses)
	if err != nil {
		return sum, err
	}
	sum.FlowPasses = passes
	if err := network.SetFanDistances(n); err != nil {
		return sum, err
	}

	m := fluid.NewModel(n.AirDensity, n.DuctRoughness, s.cfg.RootFind)
	if err := s.balance(n, m, &sum); err != nil {
		return sum, err
	}
	if err := s.finish(n, m); err != nil {
		return sum, err
	}

	sum.Elapsed = time.Since(start)
	log.WithFields(log.Fields{
		"title":      n.Title,
		"iterations": sum.Iterations,
		"dpdl":       sum.Dpdl,
		"farthest":   sum.Farthest,
		"elapsed":    sum.Elapsed,
	}).Info("sizing finished")
	return sum, nil
}

// reset clears every computed field so a network can be sized again.
func reset(n *model.Network) {
	for _, f := range n.Fittings {
		f.Upstream = model.Reference{}
		f.DownstreamMain, f.DownstreamBranch = model.NoFitting, model.NoFitting
		f.Flow, f.HasFlow = 0, false
		f.FanDistance = 0
		f.Size, f.SizeMain, f.SizeBranch, f.HasSize = 0, 0, 0, false
		f.PressureDrop, f.PressureDropMain, f.PressureDropBranch = 0, 0, 0
		f.DiffuserPressureSum = 0
	}
}
