package vle

import (
	"log/slog"
	"math"
)

// phaseTarget names which branch of the isotherm a density search wants.
type phaseTarget int

const (
	searchVapor phaseTarget = iota
	searchLiquid
)

// VaporDensity finds the vapor-branch molar density at (P, T, y), or
// explains why it could not. The returned flag follows the classification
// precedence table; density is NaN whenever the flag is not physical.
func VaporDensity(eos EquationOfState, P, T float64, y []float64, cfg DensityConfig) (float64, PhaseFlag, error) {
	return phaseDensity(eos, P, T, y, cfg, searchVapor)
}

// LiquidDensity finds the liquid-branch molar density at (P, T, x).
func LiquidDensity(eos EquationOfState, P, T float64, x []float64, cfg DensityConfig) (float64, PhaseFlag, error) {
	return phaseDensity(eos, P, T, x, cfg, searchLiquid)
}

func phaseDensity(eos EquationOfState, P, T float64, x []float64, cfg DensityConfig, target phaseTarget) (float64, PhaseFlag, error) {
	iso, err := BuildIsotherm(eos, T, x, cfg)
	if err != nil {
		return math.NaN(), FlagNoFluid, err
	}
	model, err := NewCurveModel(iso)
	if err != nil {
		return math.NaN(), FlagNoFluid, err
	}

	vCoarse, flag := classifyRoots(model, P, cfg.TensionThreshold, target)
	slog.Debug("density classified", "P", P, "T", T, "x", x, "flag", flag, "vCoarse", vCoarse)

	if !flag.Physical() {
		return math.NaN(), flag, nil
	}

	// The spline root is only as accurate as the sampling grid; a local
	// bracketed solve of the raw EOS residual restores full precision.
	rho := refineDensity(eos, 1.0/vCoarse, P, T, x)
	return rho, flag, nil
}

// classifyRoots applies the root-count / extrema-count precedence table to
// the curve evaluated against target pressure P and picks the coarse root
// for the requested phase. Returns NaN volume for non-physical flags.
func classifyRoots(model *CurveModel, P, tensionThreshold float64, target phaseTarget) (float64, PhaseFlag) {
	roots := model.RootsAt(P)
	extrema := model.Extrema()

	switch len(roots) {
	case 0:
		return math.NaN(), FlagNoFluid

	case 1:
		switch {
		case len(extrema) == 0:
			return roots[0], FlagCriticalFluid
		case model.At(roots[0]) > model.At(extrema[len(extrema)-1]):
			return roots[0], FlagLiquid
		default:
			// Single root on the vapor side of the hump; the other
			// branches have merged. Close to the critical point.
			slog.Warn("single-root vapor classification, approaching critical fluid", "P", P)
			return roots[0], FlagVapor
		}

	case 2:
		if model.At(roots[0]) < tensionThreshold {
			// Negative pressure at the first crossing: a liquid
			// stretched below its vapor pressure.
			return roots[0], FlagLiquid
		}
		if target == searchLiquid {
			// Three roots physically present, the grid just never
			// reached the vapor one. The liquid root is still good.
			return roots[0], FlagLiquid
		}
		// Vapor search: the missing third root is the one we wanted.
		return math.NaN(), FlagIdealGas

	default: // three or more
		if target == searchVapor {
			return roots[len(roots)-1], FlagVapor
		}
		return roots[0], FlagLiquid
	}
}

// refineDensity polishes a coarse density against the raw EOS. A sign
// change within +/-1% brackets a Brent solve; otherwise a derivative-free
// secant from the coarse value. On failure the coarse value is kept.
func refineDensity(eos EquationOfState, rho, P, T float64, x []float64) float64 {
	residual := func(r float64) float64 { return eos.Pressure(r, T, x) - P }

	lo, hi := rho*0.99, rho*1.01
	if residual(lo)*residual(hi) < 0 {
		if refined, err := BrentRoot(residual, lo, hi, 1e-7, 100); err == nil {
			return refined
		}
	}
	if refined, err := SecantRoot(residual, rho, 1e-7, 100); err == nil && refined > 0 {
		return refined
	}
	slog.Debug("density refinement failed, keeping coarse estimate", "rho", rho, "P", P, "T", T)
	return rho
}
