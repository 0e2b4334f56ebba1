package calculator

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ductsize/fluid"
	"ductsize/model"
	"ductsize/network"
)

func singleDuct(policy model.RoundingPolicy) *model.Network {
	return &model.Network{
		Title:         "single duct",
		FanPressure:   1.0,
		AirDensity:    0.075,
		DuctRoughness: 0.0003,
		Rounding:      policy,
		Fittings: []*model.Fitting{
			{ID: 1, Kind: model.AirHandlingUnit},
			{ID: 2, Kind: model.Duct, UpstreamRef: "1", Length: 50},
			{ID: 3, Kind: model.Diffuser, UpstreamRef: "2", DeclaredFlow: 800},
		},
	}
}

//	1 AHU - 2 duct(10) - 3 tee -main-   4 duct(20) - 5 diffuser(300)
//	                           -branch- 6 elbow - 7 duct(15) - 8 diffuser(500)
func teeNetwork() *model.Network {
	return &model.Network{
		Title:         "tee",
		FanPressure:   0.5,
		AirDensity:    0.075,
		DuctRoughness: 0.0003,
		Rounding:      model.RoundNone,
		Fittings: []*model.Fitting{
			{ID: 1, Kind: model.AirHandlingUnit},
			{ID: 2, Kind: model.Duct, UpstreamRef: "1", Length: 10},
			{ID: 3, Kind: model.Tee, UpstreamRef: "2"},
			{ID: 4, Kind: model.Duct, UpstreamRef: "3-main", Length: 20},
			{ID: 5, Kind: model.Diffuser, UpstreamRef: "4", DeclaredFlow: 300},
			{ID: 6, Kind: model.Elbow, UpstreamRef: "3-branch"},
			{ID: 7, Kind: model.Duct, UpstreamRef: "6", Length: 15},
			{ID: 8, Kind: model.Diffuser, UpstreamRef: "7", DeclaredFlow: 500},
		},
	}
}

func elbowChain() *model.Network {
	return &model.Network{
		Title:         "elbow chain",
		FanPressure:   0.3,
		AirDensity:    0.075,
		DuctRoughness: 0.0003,
		Fittings: []*model.Fitting{
			{ID: 1, Kind: model.AirHandlingUnit},
			{ID: 2, Kind: model.Duct, UpstreamRef: "1", Length: 10},
			{ID: 3, Kind: model.Elbow, UpstreamRef: "2"},
			{ID: 4, Kind: model.Duct, UpstreamRef: "3", Length: 10},
			{ID: 5, Kind: model.Diffuser, UpstreamRef: "4", DeclaredFlow: 600},
		},
	}
}

func fitting(t *testing.T, n *model.Network, id int) *model.Fitting {
	t.Helper()
	f, err := n.Find(id)
	require.NoError(t, err)
	return f
}

func TestSizer_SingleDuct(t *testing.T) {
	n := singleDuct(model.RoundNone)
	sum, err := NewSizer(DefaultConfig()).Run(n)
	require.NoError(t, err)

	duct, diff := fitting(t, n, 2), fitting(t, n, 3)
	assert.Equal(t, 800.0, duct.Flow)
	assert.Equal(t, 50.0, diff.FanDistance)
	assert.InDelta(t, 1.0/50, sum.Dpdl, 1e-12)
	assert.Equal(t, 1, sum.Iterations)
	assert.Equal(t, 3, sum.Farthest)

	// 唯一路径上只有风管，压降即全部风机压头
	assert.InDelta(t, 1.0, duct.PressureDrop, 1e-9)
	assert.InDelta(t, 1.0, diff.DiffuserPressureSum, 1e-9)

	m := fluid.NewModel(n.AirDensity, n.DuctRoughness, fluid.DefaultOptions())
	dp, err := m.DuctPressureDrop(duct.Size, duct.Flow, duct.Length)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dp, 1e-6)
	assert.Equal(t, duct.Size, diff.Size)
}

func TestSizer_RoundingUp(t *testing.T) {
	plain := singleDuct(model.RoundNone)
	_, err := NewSizer(DefaultConfig()).Run(plain)
	require.NoError(t, err)
	design := fitting(t, plain, 2).Size

	n := singleDuct(model.RoundUp)
	_, err = NewSizer(DefaultConfig()).Run(n)
	require.NoError(t, err)

	duct := fitting(t, n, 2)
	assert.Equal(t, math.Ceil(design), duct.Size)
	assert.Less(t, duct.PressureDrop, 1.0)
	assert.Equal(t, duct.Size, fitting(t, n, 3).Size)
	// 风口总压损在圆整前计算
	assert.InDelta(t, 1.0, fitting(t, n, 3).DiffuserPressureSum, 1e-9)
}

func TestRound_RecomputesFromRoundedDiameter(t *testing.T) {
	n := singleDuct(model.RoundUp)
	require.NoError(t, network.Resolve(n))
	_, err := network.PropagateFlow(n, 0)
	require.NoError(t, err)

	m := fluid.NewModel(n.AirDensity, n.DuctRoughness, fluid.DefaultOptions())
	duct := fitting(t, n, 2)
	before, err := m.DuctPressureDrop(11.3, duct.Flow, duct.Length)
	require.NoError(t, err)
	duct.Size, duct.HasSize, duct.PressureDrop = 11.3, true, before

	changed, err := round(n, m)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, 12.0, duct.Size)

	want, err := m.DuctPressureDrop(12, duct.Flow, duct.Length)
	require.NoError(t, err)
	assert.InDelta(t, want, duct.PressureDrop, 1e-12)
	assert.Less(t, duct.PressureDrop, before)
}

func TestRoundInto(t *testing.T) {
	cases := []struct {
		policy model.RoundingPolicy
		in     float64
		want   float64
		moved  bool
	}{
		{model.RoundNearest, 11.3, 11, true},
		{model.RoundNearest, 11.5, 12, true},
		{model.RoundUp, 11.3, 12, true},
		{model.RoundUp, 12, 12, false},
		{model.RoundDown, 11.7, 11, true},
		{model.RoundDown, 0.4, 1, true},
	}
	for _, c := range cases {
		d := c.in
		moved := roundInto(c.policy, &d)
		assert.Equal(t, c.want, d, "%s %v", c.policy, c.in)
		assert.Equal(t, c.moved, moved, "%s %v", c.policy, c.in)
	}
}

func TestSizer_Tee(t *testing.T) {
	n := teeNetwork()
	sum, err := NewSizer(DefaultConfig()).Run(n)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Farthest)
	assert.Equal(t, 30.0, sum.LongestPath)

	for _, f := range n.Fittings {
		if f.Kind == model.AirHandlingUnit {
			continue
		}
		assert.True(t, f.HasSize, "fitting %d", f.ID)
		assert.Greater(t, f.Size, 0.0, "fitting %d", f.ID)
	}

	split := fitting(t, n, 3)
	assert.Equal(t, 800.0, split.Flow)
	assert.Equal(t, fitting(t, n, 2).Size, split.Size)
	assert.Equal(t, fitting(t, n, 4).Size, split.SizeMain)
	assert.Equal(t, fitting(t, n, 6).Size, split.SizeBranch)
	assert.Equal(t, fitting(t, n, 7).Size, fitting(t, n, 6).Size)
	assert.Greater(t, split.PressureDropMain, 0.0)
	assert.Greater(t, split.PressureDropBranch, 0.0)
	assert.Greater(t, fitting(t, n, 6).PressureDrop, 0.0)

	assert.Equal(t, fitting(t, n, 4).Size, fitting(t, n, 5).Size)
	assert.Equal(t, fitting(t, n, 7).Size, fitting(t, n, 8).Size)

	// 最远风口的总压损等于风机压头
	assert.InDelta(t, n.FanPressure, fitting(t, n, 5).DiffuserPressureSum, 1e-4)
	want := fitting(t, n, 8).PressureDrop + fitting(t, n, 7).PressureDrop + fitting(t, n, 6).PressureDrop +
		split.PressureDropBranch + fitting(t, n, 2).PressureDrop
	assert.InDelta(t, want, fitting(t, n, 8).DiffuserPressureSum, 1e-12)
}

func TestSizer_RunTwice(t *testing.T) {
	n := teeNetwork()
	s := NewSizer(DefaultConfig())
	_, err := s.Run(n)
	require.NoError(t, err)
	first := make(map[int]float64)
	for _, f := range n.Fittings {
		first[f.ID] = f.Size
	}

	_, err = s.Run(n)
	require.NoError(t, err)
	for _, f := range n.Fittings {
		assert.Equal(t, first[f.ID], f.Size, "fitting %d", f.ID)
	}
}

func TestSizer_IterationBound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 1
	_, err := NewSizer(cfg).Run(elbowChain())
	assert.ErrorIs(t, err, model.ErrConvergence)

	n := elbowChain()
	sum, err := NewSizer(DefaultConfig()).Run(n)
	require.NoError(t, err)
	assert.Greater(t, sum.Iterations, 1)
	assert.Equal(t, fitting(t, n, 4).Size, fitting(t, n, 3).Size)
}

func TestSizer_Errors(t *testing.T) {
	n := singleDuct(model.RoundNone)
	n.Fittings[2].UpstreamRef = "9"
	_, err := NewSizer(DefaultConfig()).Run(n)
	assert.ErrorIs(t, err, model.ErrUnresolvedReference)

	n = singleDuct(model.RoundNone)
	n.Fittings = append(n.Fittings, &model.Fitting{ID: 4, Kind: model.Diffuser, UpstreamRef: "1", DeclaredFlow: 100})
	_, err = NewSizer(DefaultConfig()).Run(n)
	assert.ErrorIs(t, err, model.ErrMalformedReference)

	// 没有风管时最长路径为零
	n = &model.Network{
		FanPressure: 1, AirDensity: 0.075,
		Fittings: []*model.Fitting{
			{ID: 1, Kind: model.AirHandlingUnit},
			{ID: 2, Kind: model.Diffuser, UpstreamRef: "1", DeclaredFlow: 100},
		},
	}
	_, err = NewSizer(DefaultConfig()).Run(n)
	assert.ErrorIs(t, err, model.ErrInvalidNetwork)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	content := "[solver]\nmax_iterations = 7\n\n[rootfind]\nfriction_guess = 5\n\n[log]\nlevel = debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := LoadConfig(path)
	def := DefaultConfig()
	assert.Equal(t, 7, cfg.MaxIterations)
	assert.Equal(t, 5.0, cfg.RootFind.FrictionGuess)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, def.Tolerance, cfg.Tolerance)
	assert.Equal(t, def.RootFind.DiameterGuess, cfg.RootFind.DiameterGuess)
	assert.Equal(t, def.ServerAddr, cfg.ServerAddr)

	assert.Equal(t, def, LoadConfig(filepath.Join(t.TempDir(), "missing.ini")))
}
