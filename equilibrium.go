package vle

import (
	"fmt"
	"log/slog"
	"math"
)

// GenericPsatFallback is the saturation pressure assumed for a
// supercritical component with no entry in the fallback table. [Pa]
const GenericPsatFallback = 7.377e6

// PsatFallback maps component names to the saturation pressure used when
// the component is supercritical at the requested temperature and the
// Maxwell construction therefore has no solution.
type PsatFallback map[string]float64

// DefaultPsatFallback returns the built-in fallback table.
func DefaultPsatFallback() PsatFallback {
	return PsatFallback{
		"CO2":    10.377e6,
		"N2":     7.377e6,
		"CH4":    6.377e6,
		"CH3CH3": 7.377e6,
	}
}

// EquilibriumConfig bundles every knob of a bubble or dew point solve.
// The zero value is not usable; start from DefaultEquilibriumConfig.
type EquilibriumConfig struct {
	Density     DensityConfig
	VaporInner  InnerConfig
	LiquidInner InnerConfig
	Bracket     BracketConfig
	Outer       OuterConfig

	// PGuess overrides the Raoult estimate of the initial pressure when
	// positive. [Pa]
	PGuess float64
	// WarmStart seeds the unknown-phase composition, typically from a
	// neighboring point of a sweep. Nil means a Raoult estimate.
	WarmStart []float64
	// ComponentNames keys the fallback table. Optional.
	ComponentNames []string
	// Fallback substitutes saturation pressures for supercritical
	// components. Nil means DefaultPsatFallback with the generic constant
	// for unknown names; a non-nil table is authoritative and unknown
	// supercritical components become a SupercriticalError.
	Fallback PsatFallback
}

// DefaultEquilibriumConfig returns a config with every sub-config at its
// default.
func DefaultEquilibriumConfig() EquilibriumConfig {
	return EquilibriumConfig{
		Density:     DefaultDensityConfig(),
		VaporInner:  DefaultVaporInner(),
		LiquidInner: DefaultLiquidInner(),
		Bracket:     DefaultBracketConfig(),
		Outer:       DefaultOuterConfig(),
	}
}

// EquilibriumResult is a converged bubble or dew point.
type EquilibriumResult struct {
	// Pressure is the equilibrium pressure. [Pa]
	Pressure float64
	// Composition is the solved-for phase: vapor for a bubble point,
	// liquid for a dew point.
	Composition []float64
	VaporFlag   PhaseFlag
	LiquidFlag  PhaseFlag
	// Objective is the residual sum(z*phiFixed/phiSolved) - 1 at the
	// returned pressure.
	Objective float64
}

// solveState names the stages of the nested equilibrium solve for logging.
type solveState string

const (
	stateInitializing solveState = "initializing"
	stateBracketing   solveState = "bracketing"
	stateIterating    solveState = "outer-iterating"
	stateConverged    solveState = "converged"
	stateFailed       solveState = "failed"
)

// BubblePoint solves for the pressure and vapor composition in equilibrium
// with the liquid composition x at temperature T. Binary systems only: the
// composition-scan recovery has no analogue for more components.
func BubblePoint(eos EquationOfState, T float64, x []float64, cfg EquilibriumConfig) (EquilibriumResult, error) {
	return solveEquilibrium(eos, T, x, cfg, searchVapor)
}

// DewPoint solves for the pressure and liquid composition in equilibrium
// with the vapor composition y at temperature T.
func DewPoint(eos EquationOfState, T float64, y []float64, cfg EquilibriumConfig) (EquilibriumResult, error) {
	return solveEquilibrium(eos, T, y, cfg, searchLiquid)
}

func solveEquilibrium(eos EquationOfState, T float64, fixed []float64, cfg EquilibriumConfig, solveFor phaseTarget) (EquilibriumResult, error) {
	log := slog.With("T", T, "fixed", fixed, "solveFor", phaseName(solveFor))
	log.Debug("equilibrium solve", "state", stateInitializing)

	if err := checkComposition(eos, fixed); err != nil {
		return EquilibriumResult{}, err
	}
	if len(fixed) != 2 {
		return EquilibriumResult{}, domainErrf("equilibrium solve supports binary systems only, got %d components", len(fixed))
	}

	psat, err := componentSaturationPressures(eos, T, fixed, cfg)
	if err != nil {
		return EquilibriumResult{}, err
	}

	p0 := cfg.PGuess
	if p0 <= 0 {
		// Raoult estimate: ideal-solution total pressure.
		inv := 0.0
		for i, zi := range fixed {
			inv += zi / psat[i]
		}
		p0 = 1.0 / inv
	}
	guess := initialGuess(fixed, psat, p0, cfg.WarmStart, solveFor)
	log.Debug("initial estimates", "P0", p0, "guess", guess, "Psat", psat)

	log.Debug("equilibrium solve", "state", stateBracketing)
	var (
		br   Bracket
		warm []float64
	)
	if solveFor == searchVapor {
		br, warm, err = FindBubblePressureRange(eos, T, fixed, guess, cfg.Density, cfg.VaporInner, cfg.Bracket)
	} else {
		br, warm, err = FindDewPressureRange(eos, T, fixed, guess, cfg.Density, cfg.LiquidInner, cfg.Bracket)
	}
	if err != nil {
		log.Warn("equilibrium solve", "state", stateFailed, "stage", stateBracketing, "err", err)
		return EquilibriumResult{}, fmt.Errorf("bracketing equilibrium pressure: %w", err)
	}

	log.Debug("equilibrium solve", "state", stateIterating, "bracket", br)
	var objErr error
	obj := func(p float64) float64 {
		if p < 0 {
			return 10 // push the solver back to positive pressures
		}
		v, _, _, _, err := evalObjective(eos, p, T, fixed, warm, cfg, solveFor)
		if err != nil {
			objErr = err
			return math.NaN()
		}
		return v
	}
	pEq, err := solvePressure(obj, br, cfg.Outer)
	if objErr != nil {
		err = objErr
	}
	if err != nil {
		log.Warn("equilibrium solve", "state", stateFailed, "stage", stateIterating, "err", err)
		return EquilibriumResult{}, fmt.Errorf("solving equilibrium pressure: %w", err)
	}

	// Re-solve the composition at the converged pressure with a tight
	// tolerance so the reported phase matches the reported pressure.
	finalCfg := cfg
	if solveFor == searchVapor && finalCfg.VaporInner.Tolerance > 1e-10 {
		finalCfg.VaporInner.Tolerance = 1e-10
	}
	if solveFor == searchLiquid && finalCfg.LiquidInner.Tolerance > 1e-10 {
		finalCfg.LiquidInner.Tolerance = 1e-10
	}
	objFinal, comp, flagSolved, flagFixed, err := evalObjective(eos, pEq, T, fixed, warm, finalCfg, solveFor)
	if err != nil {
		log.Warn("equilibrium solve", "state", stateFailed, "stage", "final-composition", "err", err)
		return EquilibriumResult{}, err
	}

	res := EquilibriumResult{Pressure: pEq, Composition: comp, Objective: objFinal}
	if solveFor == searchVapor {
		res.VaporFlag, res.LiquidFlag = flagSolved, flagFixed
	} else {
		res.VaporFlag, res.LiquidFlag = flagFixed, flagSolved
	}
	log.Info("equilibrium solve", "state", stateConverged,
		"P", res.Pressure, "composition", res.Composition, "objective", res.Objective)
	return res, nil
}

// evalObjective evaluates the equilibrium residual at pressure p, solving
// the unknown phase from the warm composition (updated in place).
func evalObjective(eos EquationOfState, p, T float64, fixed, warm []float64, cfg EquilibriumConfig, solveFor phaseTarget) (float64, []float64, PhaseFlag, PhaseFlag, error) {
	fixedTarget := searchLiquid
	innerCfg := cfg.VaporInner
	if solveFor == searchLiquid {
		fixedTarget = searchVapor
		innerCfg = cfg.LiquidInner
	}

	phiFixed, _, flagFixed, err := phaseFugacity(eos, p, T, fixed, cfg.Density, fixedTarget)
	if err != nil {
		return math.NaN(), nil, FlagNoFluid, flagFixed, err
	}
	comp, phiSolved, flagSolved, err := solveComposition(eos, p, T, warm, fixed, phiFixed, cfg.Density, innerCfg, solveFor)
	if err != nil && !nonFatal(err) {
		return math.NaN(), comp, flagSolved, flagFixed, err
	}
	copy(warm, comp)

	total := 0.0
	for i := range fixed {
		total += fixed[i] * phiFixed[i] / phiSolved[i]
	}
	return total - 1.0, comp, flagSolved, flagFixed, nil
}

// componentSaturationPressures returns each component's pure saturation
// pressure at T, substituting fallback values for supercritical components.
func componentSaturationPressures(eos EquationOfState, T float64, z []float64, cfg EquilibriumConfig) ([]float64, error) {
	fallback := cfg.Fallback
	if fallback == nil {
		fallback = DefaultPsatFallback()
	}

	psat := make([]float64, len(z))
	unit := make([]float64, len(z))
	for i := range z {
		for j := range unit {
			unit[j] = 0
		}
		unit[i] = 1

		pt, err := SaturationPressure(eos, T, unit, cfg.Density)
		if err != nil {
			return nil, fmt.Errorf("saturation pressure of component %d: %w", i, err)
		}
		if !math.IsNaN(pt.Pressure) {
			psat[i] = pt.Pressure
			continue
		}

		name := ""
		if i < len(cfg.ComponentNames) {
			name = cfg.ComponentNames[i]
		}
		if p, ok := fallback[name]; ok {
			psat[i] = p
		} else if cfg.Fallback != nil {
			// An explicitly supplied table is authoritative; a missing
			// component means the caller wants supercritical inputs
			// rejected rather than papered over.
			return nil, &SupercriticalError{Component: name, T: T}
		} else {
			psat[i] = GenericPsatFallback
		}
		slog.Warn("component is supercritical, using fallback saturation pressure",
			"component", i, "name", name, "T", T, "Psat", psat[i])
	}
	return psat, nil
}

// initialGuess estimates the unknown-phase composition from Raoult's law
// unless a warm start is supplied.
func initialGuess(fixed, psat []float64, p0 float64, warm []float64, solveFor phaseTarget) []float64 {
	if len(warm) == len(fixed) {
		g := append([]float64(nil), warm...)
		normalize(g)
		return g
	}
	g := make([]float64, len(fixed))
	for i := range fixed {
		if solveFor == searchVapor {
			g[i] = fixed[i] * psat[i] / p0
		} else {
			g[i] = p0 * fixed[i] / psat[i]
		}
	}
	normalize(g)
	return g
}

func phaseName(t phaseTarget) string {
	if t == searchVapor {
		return "vapor"
	}
	return "liquid"
}
