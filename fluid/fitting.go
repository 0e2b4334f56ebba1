package fluid

import (
	"fmt"

	"ductsize/model"
)

// 圆形弯头局部阻力系数 C0，管径 4~16 in.
var (
	elbowDiameters    = []float64{4, 6, 8, 10, 12, 14, 16}
	elbowCoefficients = []float64{0.57, 0.43, 0.34, 0.28, 0.26, 0.25, 0.25}
)

// 三通 SD5-10（锥形支管分流三通），ASHRAE 2009 Handbook 21.50
// 行：出口面积比 A_outlet/A_common，列：出口风量比 Q_outlet/Q_common
var (
	teeAreaRatios = []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9}
	teeFlowRatios = []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9}

	teeBranchCoefficients = [][]float64{
		{0.65, 0.24, 0.15, 0.11, 0.09, 0.07, 0.06, 0.05, 0.05},
		{2.98, 0.65, 0.33, 0.24, 0.18, 0.15, 0.13, 0.11, 0.10},
		{7.36, 1.56, 0.65, 0.39, 0.29, 0.24, 0.20, 0.17, 0.15},
		{13.78, 2.98, 1.20, 0.65, 0.43, 0.33, 0.27, 0.24, 0.21},
		{22.24, 4.92, 1.98, 1.04, 0.65, 0.47, 0.36, 0.30, 0.26},
		{32.73, 7.36, 2.98, 1.56, 0.96, 0.65, 0.49, 0.39, 0.33},
		{45.26, 10.32, 4.21, 2.21, 1.34, 0.90, 0.65, 0.51, 0.42},
		{59.82, 13.78, 5.67, 2.98, 1.80, 1.20, 0.86, 0.65, 0.52},
		{76.41, 17.75, 7.36, 3.88, 2.35, 1.56, 1.11, 0.83, 0.65},
	}
	teeMainCoefficients = [][]float64{
		{0.13, 0.16, 0.57, 0.74, 0.74, 0.70, 0.65, 0.60, 0.56},
		{0.20, 0.13, 0.15, 0.16, 0.28, 0.57, 0.69, 0.74, 0.75},
		{0.90, 0.13, 0.13, 0.14, 0.15, 0.16, 0.20, 0.42, 0.57},
		{2.88, 0.20, 0.14, 0.13, 0.14, 0.15, 0.15, 0.16, 0.34},
		{6.25, 0.37, 0.17, 0.14, 0.13, 0.14, 0.14, 0.15, 0.15},
		{11.88, 0.90, 0.20, 0.13, 0.14, 0.13, 0.14, 0.14, 0.15},
		{18.62, 1.71, 0.33, 0.18, 0.16, 0.14, 0.13, 0.15, 0.14},
		{26.88, 2.88, 0.50, 0.20, 0.15, 0.14, 0.13, 0.13, 0.14},
		{36.45, 4.46, 0.90, 0.30, 0.19, 0.16, 0.15, 0.14, 0.13},
	}
)

const (
	teeRatioMin = 0.1
	teeRatioMax = 0.9
)

// ElbowLossCoefficient is C0 for a round elbow of dia inches, held constant outside 4~16 in.
func ElbowLossCoefficient(dia float64) (float64, error) {
	first, last := elbowDiameters[0], elbowDiameters[len(elbowDiameters)-1]
	switch {
	case dia <= first:
		return elbowCoefficients[0], nil
	case dia >= last:
		return elbowCoefficients[len(elbowCoefficients)-1], nil
	}
	return Interp1D(dia, elbowDiameters, elbowCoefficients)
}

// ElbowPressureDrop of an elbow of dia inches carrying flow CFM.
func (m *Model) ElbowPressureDrop(dia, flow float64) (float64, error) {
	if !(dia > 0) {
		return 0, fmt.Errorf("fluid: elbow diameter %v", dia)
	}
	c, err := ElbowLossCoefficient(dia)
	if err != nil {
		return 0, err
	}
	return c * m.VelocityPressure(Velocity(flow, dia)), nil
}

// TeeLossCoefficient reads the main or branch table; both ratios are clamped to [0.1, 0.9].
func TeeLossCoefficient(areaRatio, flowRatio float64, outlet model.Outlet) (float64, error) {
	table := teeMainCoefficients
	if outlet == model.OutletBranch {
		table = teeBranchCoefficients
	}
	a := clamp(areaRatio, teeRatioMin, teeRatioMax)
	q := clamp(flowRatio, teeRatioMin, teeRatioMax)
	return Interp2D(a, q, teeAreaRatios, teeFlowRatios, table)
}

// TeePressureDrop is the loss from the common inlet (dia in., flow CFM) through one outlet.
func (m *Model) TeePressureDrop(dia, flow, outletFlow, outletDia float64, outlet model.Outlet) (float64, error) {
	if !(dia > 0) || !(outletDia > 0) || !(flow > 0) {
		return 0, fmt.Errorf("fluid: tee %s outlet with inlet %v in, outlet %v in, flow %v", outlet, dia, outletDia, flow)
	}
	areaRatio := Area(outletDia) / Area(dia)
	flowRatio := outletFlow / flow
	c, err := TeeLossCoefficient(areaRatio, flowRatio, outlet)
	if err != nil {
		return 0, err
	}
	return c * m.VelocityPressure(Velocity(flow, dia)), nil
}
