package vle

import (
	"errors"
	"log/slog"
	"math"
)

// Bracket is a pressure interval over which the equilibrium objective
// changes sign, plus a linear-interpolation guess between the endpoints.
type Bracket struct {
	PLow, PHigh float64
	ObjLow      float64
	ObjHigh     float64
	PGuess      float64
}

// BracketConfig controls the doubling search for a pressure bracket.
type BracketConfig struct {
	// PMin is the lower end of the initial interval. [Pa]
	PMin float64
	// MaxIterations bounds the total number of objective evaluations.
	MaxIterations int
}

// DefaultBracketConfig returns the bracket-search defaults.
func DefaultBracketConfig() BracketConfig {
	return BracketConfig{PMin: 1000, MaxIterations: 200}
}

// FindBubblePressureRange locates a pressure interval bracketing the
// bubble-point objective sum(x*phiL/phiV) - 1 for the fixed liquid
// composition x. The vapor composition is re-solved at each trial
// pressure starting from y0 and warm-started between trials; the final
// vapor iterate is returned alongside the bracket.
func FindBubblePressureRange(eos EquationOfState, T float64, x, y0 []float64, dc DensityConfig, ic InnerConfig, bc BracketConfig) (Bracket, []float64, error) {
	yWarm := append([]float64(nil), y0...)
	obj := func(p float64) (float64, error) {
		phiL, _, _, err := LiquidFugacity(eos, p, T, x, dc)
		if err != nil {
			return math.NaN(), err
		}
		y, phiV, _, err := SolveVaporComposition(eos, p, T, yWarm, x, phiL, dc, ic)
		if err != nil && !nonFatal(err) {
			return math.NaN(), err
		}
		copy(yWarm, y)
		total := 0.0
		for i := range x {
			total += x[i] * phiL[i] / phiV[i]
		}
		return total - 1.0, nil
	}
	br, err := findPressureRange(eos, T, x, obj, dc, bc)
	return br, yWarm, err
}

// FindDewPressureRange locates a pressure interval bracketing the
// dew-point objective sum(y*phiV/phiL) - 1 for the fixed vapor
// composition y, re-solving the liquid composition at each trial
// pressure from x0.
func FindDewPressureRange(eos EquationOfState, T float64, y, x0 []float64, dc DensityConfig, ic InnerConfig, bc BracketConfig) (Bracket, []float64, error) {
	xWarm := append([]float64(nil), x0...)
	obj := func(p float64) (float64, error) {
		phiV, _, _, err := VaporFugacity(eos, p, T, y, dc)
		if err != nil {
			return math.NaN(), err
		}
		x, phiL, _, err := SolveLiquidComposition(eos, p, T, xWarm, y, phiV, dc, ic)
		if err != nil && !nonFatal(err) {
			return math.NaN(), err
		}
		copy(xWarm, x)
		total := 0.0
		for i := range y {
			total += y[i] * phiV[i] / phiL[i]
		}
		return total - 1.0, nil
	}
	br, err := findPressureRange(eos, T, y, obj, dc, bc)
	return br, xWarm, err
}

// findPressureRange seeds the interval [PMin, local curve maximum] for the
// fixed-composition isotherm and doubles the upper end until the last two
// objective values straddle zero.
func findPressureRange(eos EquationOfState, T float64, fixed []float64, obj func(float64) (float64, error), dc DensityConfig, bc BracketConfig) (Bracket, error) {
	iso, err := BuildIsotherm(eos, T, fixed, dc)
	if err != nil {
		return Bracket{}, err
	}
	model, err := NewCurveModel(iso)
	if err != nil {
		return Bracket{}, err
	}
	extrema := model.Extrema()
	if len(extrema) == 0 {
		slog.Warn("fixed-phase isotherm has no extrema, cannot seed bracket", "T", T, "composition", fixed)
		return Bracket{}, &BracketSearchError{PLow: bc.PMin, PHigh: math.NaN()}
	}
	pMax := math.Inf(-1)
	for _, v := range extrema {
		if p := model.At(v); p > pMax {
			pMax = p
		}
	}
	if pMax <= bc.PMin {
		pMax = 2 * bc.PMin
	}

	ps := []float64{bc.PMin, pMax}
	var objs []float64
	for iter := 0; iter < bc.MaxIterations; iter++ {
		for len(objs) < len(ps) {
			o, err := obj(ps[len(objs)])
			if err != nil {
				return Bracket{}, err
			}
			objs = append(objs, o)
		}

		n := len(objs)
		o1, o2 := objs[n-2], objs[n-1]
		// Sign change between the last two samples: their difference
		// dominates their sum exactly when the signs differ.
		if math.Abs(o1-o2) > math.Abs(o1+o2) {
			p1, p2 := ps[n-2], ps[n-1]
			guess := p1 - o1*(p2-p1)/(o2-o1)
			slog.Debug("pressure bracket found",
				"PLow", p1, "PHigh", p2, "objLow", o1, "objHigh", o2, "PGuess", guess)
			return Bracket{PLow: p1, PHigh: p2, ObjLow: o1, ObjHigh: o2, PGuess: guess}, nil
		}
		ps = append(ps, 2*ps[n-1])
	}

	n := len(objs)
	return Bracket{}, &BracketSearchError{
		PLow:       ps[0],
		PHigh:      ps[n-1],
		ObjLow:     objs[0],
		ObjHigh:    objs[n-1],
		Iterations: n,
	}
}

// nonFatal reports whether an inner-loop error still produced a usable
// iterate. Exhausted iteration budgets do; physical failures do not.
func nonFatal(err error) bool {
	return errors.Is(err, ErrNonConvergence)
}
