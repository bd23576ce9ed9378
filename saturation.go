package vle

import (
	"log/slog"
	"math"
)

// SaturationPoint is the result of a pure-component saturation solve.
// Pressure is NaN when the component is supercritical at the requested
// temperature.
type SaturationPoint struct {
	Pressure      float64 // [Pa]
	LiquidDensity float64 // [mol/m^3]
	VaporDensity  float64 // [mol/m^3]
}

// eqAreaPenalty is returned by the equal-area objective when the shifted
// curve does not expose three roots, steering the minimizer back inside
// the admissible pressure band.
const eqAreaPenalty = 1e30

// SaturationPressure solves the Maxwell equal-area construction for a pure
// component at temperature T. The composition must have exactly one nonzero
// entry. A supercritical component (monotonically non-increasing isotherm)
// yields a NaN SaturationPoint and a log line, not an error: callers decide
// whether a fallback applies.
func SaturationPressure(eos EquationOfState, T float64, x []float64, cfg DensityConfig) (SaturationPoint, error) {
	nonzero := 0
	for _, xi := range x {
		if xi != 0 {
			nonzero++
		}
	}
	if nonzero != 1 {
		return SaturationPoint{}, domainErrf("saturation pressure needs a pure component, composition %v has %d nonzero entries", x, nonzero)
	}

	iso, err := BuildIsotherm(eos, T, x, cfg)
	if err != nil {
		return SaturationPoint{}, err
	}
	model, err := NewCurveModel(iso)
	if err != nil {
		return SaturationPoint{}, err
	}

	// The hump: first discrete pressure rise marks the local minimum
	// region, the subsequent maximum bounds the search from above.
	rise := -1
	for i := 0; i < len(iso.P)-1; i++ {
		if iso.P[i+1]-iso.P[i] > 0 {
			rise = i
			break
		}
	}
	if rise < 0 {
		slog.Warn("isotherm is monotonically non-increasing: component is supercritical, no saturation pressure",
			"T", T, "x", x)
		nan := math.NaN()
		return SaturationPoint{Pressure: nan, LiquidDensity: nan, VaporDensity: nan}, nil
	}

	maxIdx := rise
	for i := rise; i < len(iso.P); i++ {
		if iso.P[i] > iso.P[maxIdx] {
			maxIdx = i
		}
	}
	humpMin := iso.P[rise]
	for i := rise; i <= maxIdx; i++ {
		if iso.P[i] < humpMin {
			humpMin = iso.P[i]
		}
	}
	pHigh := iso.P[maxIdx]
	pLow := math.Max(iso.P[len(iso.P)-1], humpMin)

	psat, residual, err := BrentMinimize(equalAreaObjective(model), pLow*1.0001, pHigh*0.9999, 1e-9, 200)
	if err != nil {
		return SaturationPoint{}, err
	}

	roots := model.RootsAt(psat)
	if len(roots) < 3 {
		slog.Warn("maxwell construction left fewer than three roots", "T", T, "Psat", psat, "roots", len(roots))
		nan := math.NaN()
		return SaturationPoint{Pressure: nan, LiquidDensity: nan, VaporDensity: nan}, nil
	}

	slog.Debug("saturation pressure solved", "T", T, "Psat", psat, "residual", residual)
	return SaturationPoint{
		Pressure:      psat,
		LiquidDensity: 1.0 / roots[0],
		VaporDensity:  1.0 / roots[2],
	}, nil
}

// equalAreaObjective returns the squared sum of the signed areas between
// the three Maxwell roots of the curve shifted by the trial pressure. At
// the true saturation pressure the compression and expansion work between
// the roots cancel.
func equalAreaObjective(model *CurveModel) func(float64) float64 {
	return func(shift float64) float64 {
		roots := model.RootsAt(shift)
		if len(roots) < 3 {
			return eqAreaPenalty
		}
		a := model.IntegrateShifted(roots[0], roots[1], shift)
		b := model.IntegrateShifted(roots[1], roots[2], shift)
		return (a + b) * (a + b)
	}
}
