package vle

import (
	"math"
	"testing"
)

// AssertionConfig contains tolerances for equilibrium properties.
type AssertionConfig struct {
	// Largest acceptable |objective| at a converged point
	MaxObjective float64

	// Composition sum tolerance
	CompositionTol float64

	// Relative tolerance between two pressures expected to agree
	PressureRelTol float64

	// Equal-area residual relative to the pressure scale
	MaxAreaResidual float64
}

// DefaultAssertionConfig returns conservative tolerances.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		MaxObjective:    1e-4,
		CompositionTol:  1e-6,
		PressureRelTol:  1e-3,
		MaxAreaResidual: 1e-3,
	}
}

// AssertComposition verifies z is a valid mole-fraction vector: every entry
// non-negative and the sum within tolerance of one.
func AssertComposition(t *testing.T, z []float64, cfg AssertionConfig) {
	t.Helper()

	sum := 0.0
	for i, zi := range z {
		if zi < 0 || math.IsNaN(zi) {
			t.Errorf("Composition entry %d invalid: %g\n"+
				"Mole fractions must be non-negative and finite.", i, zi)
		}
		sum += zi
	}
	if math.Abs(sum-1) > cfg.CompositionTol {
		t.Errorf("Composition does not sum to one: sum = %.10f (tolerance: %g)", sum, cfg.CompositionTol)
		return
	}

	t.Logf("✓ Valid composition: %v (sum = %.10f)", z, sum)
}

// AssertConverged verifies an equilibrium result is physically coherent:
// finite positive pressure, physical flags on both phases, a valid
// composition, and a residual within tolerance.
func AssertConverged(t *testing.T, res EquilibriumResult, cfg AssertionConfig) {
	t.Helper()

	if math.IsNaN(res.Pressure) || res.Pressure <= 0 {
		t.Errorf("Equilibrium pressure not physical: %g Pa", res.Pressure)
		return
	}
	if !res.VaporFlag.Physical() && res.VaporFlag != FlagIdealGas {
		t.Errorf("Vapor flag not physical: %v", res.VaporFlag)
	}
	if !res.LiquidFlag.Physical() {
		t.Errorf("Liquid flag not physical: %v", res.LiquidFlag)
	}
	AssertComposition(t, res.Composition, cfg)

	if math.Abs(res.Objective) > cfg.MaxObjective {
		t.Errorf("Residual too large: |%.3e| (max: %.3e)\n"+
			"The outer pressure loop stopped away from the equilibrium root.",
			res.Objective, cfg.MaxObjective)
		return
	}

	t.Logf("✓ Converged: P = %.4e Pa, objective = %.3e", res.Pressure, res.Objective)
}

// AssertSaturation verifies a pure-component saturation point: positive
// pressure and a liquid denser than its coexisting vapor.
func AssertSaturation(t *testing.T, sat SaturationPoint, cfg AssertionConfig) {
	t.Helper()

	if math.IsNaN(sat.Pressure) || sat.Pressure <= 0 {
		t.Errorf("Saturation pressure not physical: %g Pa", sat.Pressure)
		return
	}
	if sat.LiquidDensity <= sat.VaporDensity {
		t.Errorf("Density ordering violated: liquid %.4e <= vapor %.4e mol/m3\n"+
			"The Maxwell roots were assigned to the wrong branches.",
			sat.LiquidDensity, sat.VaporDensity)
		return
	}

	t.Logf("✓ Saturation: P = %.4e Pa, rho_l = %.4e, rho_v = %.4e",
		sat.Pressure, sat.LiquidDensity, sat.VaporDensity)
}

// AssertEqualArea verifies the Maxwell construction at a solved saturation
// point: the signed areas between consecutive roots of the shifted curve
// cancel to within the tolerance, scaled by the pressure.
func AssertEqualArea(t *testing.T, model *CurveModel, sat SaturationPoint, cfg AssertionConfig) {
	t.Helper()

	roots := model.RootsAt(sat.Pressure)
	if len(roots) < 3 {
		t.Errorf("Expected three roots at Psat = %.4e Pa, found %d", sat.Pressure, len(roots))
		return
	}

	a := model.IntegrateShifted(roots[0], roots[1], sat.Pressure)
	b := model.IntegrateShifted(roots[1], roots[2], sat.Pressure)
	scale := sat.Pressure * (roots[2] - roots[0])
	if rel := math.Abs(a+b) / scale; rel > cfg.MaxAreaResidual {
		t.Errorf("Equal-area residual too large: |%.3e + %.3e| / %.3e = %.3e (max: %.3e)",
			a, b, scale, rel, cfg.MaxAreaResidual)
		return
	}

	t.Logf("✓ Equal areas: %.4e and %.4e cancel at P = %.4e Pa", a, b, sat.Pressure)
}

// AssertPressuresAgree verifies two pressures match within the relative
// tolerance.
func AssertPressuresAgree(t *testing.T, got, want float64, cfg AssertionConfig) {
	t.Helper()

	if math.IsNaN(got) || math.IsNaN(want) {
		t.Errorf("Pressure comparison with NaN: got %g, want %g", got, want)
		return
	}
	rel := math.Abs(got-want) / math.Abs(want)
	if rel > cfg.PressureRelTol {
		t.Errorf("Pressures disagree: got %.6e, want %.6e (relative error %.3e, max: %.3e)",
			got, want, rel, cfg.PressureRelTol)
		return
	}

	t.Logf("✓ Pressures agree: %.6e vs %.6e (relative error %.3e)", got, want, rel)
}
