package vle

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
)

// InnerConfig controls one phase's composition fixed-point iteration.
type InnerConfig struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultVaporInner returns the vapor-loop defaults. The vapor and liquid
// budgets differ in the source method and are kept independently tunable.
func DefaultVaporInner() InnerConfig {
	return InnerConfig{MaxIterations: 15, Tolerance: 1e-6}
}

// DefaultLiquidInner returns the liquid-loop defaults.
func DefaultLiquidInner() InnerConfig {
	return InnerConfig{MaxIterations: 20, Tolerance: 1e-6}
}

// SolveVaporComposition iterates the vapor mole fractions to the fixed
// point y = x*phiL/phiV at trial pressure P, holding the liquid side fixed.
// The iterate's unnormalized sum (the "mole number") only reaches one at
// the true equilibrium pressure; here we only ask that it reproduce itself.
// On budget exhaustion the best iterate is returned along with
// ErrNonConvergence, which callers may treat as non-fatal.
func SolveVaporComposition(eos EquationOfState, P, T float64, yGuess, x, phiL []float64, dc DensityConfig, ic InnerConfig) ([]float64, []float64, PhaseFlag, error) {
	return solveComposition(eos, P, T, yGuess, x, phiL, dc, ic, searchVapor)
}

// SolveLiquidComposition iterates the liquid mole fractions to the fixed
// point x = y*phiV/phiL at trial pressure P, holding the vapor side fixed.
func SolveLiquidComposition(eos EquationOfState, P, T float64, xGuess, y, phiV []float64, dc DensityConfig, ic InnerConfig) ([]float64, []float64, PhaseFlag, error) {
	return solveComposition(eos, P, T, xGuess, y, phiV, dc, ic, searchLiquid)
}

func solveComposition(eos EquationOfState, P, T float64, guess, other, otherPhi []float64, dc DensityConfig, ic InnerConfig, target phaseTarget) ([]float64, []float64, PhaseFlag, error) {
	z := append([]float64(nil), guess...)
	normalize(z)
	zTotal := 1.0

	var (
		phi  []float64
		flag PhaseFlag
		zNew = make([]float64, len(z))
	)

	for iter := 0; iter < ic.MaxIterations; iter++ {
		normalize(z)

		var err error
		phi, _, flag, err = phaseFugacity(eos, P, T, z, dc, target)
		if err != nil {
			return z, phi, flag, err
		}

		if wrongPhase(flag, target) || anyNaN(phi) {
			// The guess does not correspond to a physically
			// consistent phase of the right kind; scan for one.
			slog.Debug("inner loop guess produced wrong phase, scanning", "P", P, "T", T, "flag", flag)
			cand, err := scanComposition(eos, P, T, zTotal, other, otherPhi, dc, target)
			if err != nil {
				return z, phi, flag, err
			}
			copy(z, cand)
			phi, _, flag, err = phaseFugacity(eos, P, T, z, dc, target)
			if err != nil {
				return z, phi, flag, err
			}
			if anyNaN(phi) {
				return z, phi, flag, ErrNoPhysicalRoot
			}
		}

		for i := range zNew {
			zNew[i] = other[i] * otherPhi[i] / phi[i]
		}
		newTotal := floats.Sum(zNew)

		if math.Abs(newTotal-zTotal) < ic.Tolerance {
			slog.Debug("inner loop converged", "P", P, "iterations", iter+1, "composition", z)
			return z, phi, flag, nil
		}
		copy(z, zNew)
		normalize(z)
		zTotal = newTotal
	}

	// Out of budget: report the error on the minority component and hand
	// back the best iterate. The error stays absolute when the minority
	// fraction has iterated to zero, so the log never carries Inf or NaN.
	minIdx := floats.MinIdx(z)
	minErr := math.Abs(zNew[minIdx]/floats.Sum(zNew) - z[minIdx])
	if z[minIdx] > 0 {
		minErr /= z[minIdx]
	}
	slog.Warn("inner composition loop did not converge",
		"P", P, "T", T, "maxIterations", ic.MaxIterations, "minorityError", minErr)
	return z, phi, flag, ErrNonConvergence
}

// scanComposition samples binary compositions over [0, 1] and picks the
// candidate whose predicted mole-number change is smallest, preferring
// candidates whose root classification matches the phase being solved.
func scanComposition(eos EquationOfState, P, T, wantTotal float64, other, otherPhi []float64, dc DensityConfig, target phaseTarget) ([]float64, error) {
	if len(other) != 2 {
		return nil, domainErrf("composition scan fallback supports binary systems only, got %d components", len(other))
	}

	const samples = 20
	type candidate struct {
		z       []float64
		obj     float64
		matches bool
	}
	var valid []candidate

	for k := 0; k < samples; k++ {
		t := float64(k) / float64(samples-1)
		z := []float64{t, 1 - t}
		phi, _, flag, err := phaseFugacity(eos, P, T, z, dc, target)
		if err != nil {
			return nil, err
		}
		if anyNaN(phi) {
			continue
		}
		total := 0.0
		for i := range z {
			total += other[i] * otherPhi[i] / phi[i]
		}
		if math.IsNaN(total) {
			continue
		}
		valid = append(valid, candidate{
			z:       z,
			obj:     math.Abs(total - wantTotal),
			matches: !wrongPhase(flag, target),
		})
	}
	if len(valid) == 0 {
		return nil, ErrNoPhysicalRoot
	}

	// Restrict to phase-consistent candidates when any exist.
	anyMatch := false
	for _, c := range valid {
		if c.matches {
			anyMatch = true
			break
		}
	}
	best := -1
	for i, c := range valid {
		if anyMatch && !c.matches {
			continue
		}
		if best < 0 || c.obj < valid[best].obj {
			best = i
		}
	}
	slog.Debug("composition scan selected new guess", "P", P, "composition", valid[best].z, "objDelta", valid[best].obj)
	return valid[best].z, nil
}

func phaseFugacity(eos EquationOfState, P, T float64, z []float64, dc DensityConfig, target phaseTarget) ([]float64, float64, PhaseFlag, error) {
	if target == searchVapor {
		return VaporFugacity(eos, P, T, z, dc)
	}
	return LiquidFugacity(eos, P, T, z, dc)
}

// wrongPhase reports whether the classified flag contradicts the phase
// being solved for. Ideal-gas contingency counts as wrong for a liquid
// search but is acceptable (unit fugacity) for a vapor search.
func wrongPhase(flag PhaseFlag, target phaseTarget) bool {
	switch target {
	case searchVapor:
		return flag == FlagLiquid || flag == FlagNoFluid
	default:
		return flag == FlagVapor || flag == FlagIdealGas || flag == FlagNoFluid
	}
}

func normalize(z []float64) {
	sum := floats.Sum(z)
	if sum != 0 {
		floats.Scale(1/sum, z)
	}
}

func anyNaN(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}
