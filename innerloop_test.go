package vle

import (
	"errors"
	"math"
	"testing"
)

func TestSolveVaporCompositionFixedPoint(t *testing.T) {
	eos := NewVanDerWaals(pentane, hexane)
	T := 390.0
	x := []float64{0.4, 0.6}
	grid := testGrid()

	// A pressure inside the two-phase band for this mixture.
	P := 1.1e6
	phiL, _, flagL, err := LiquidFugacity(eos, P, T, x, grid)
	if err != nil {
		t.Fatal(err)
	}
	if flagL != FlagLiquid {
		t.Fatalf("liquid fugacity flag: got %v, want %v", flagL, FlagLiquid)
	}

	y, phiV, flagV, err := SolveVaporComposition(eos, P, T, []float64{0.5, 0.5}, x, phiL, grid, DefaultVaporInner())
	if err != nil {
		t.Fatal(err)
	}
	if !flagV.Physical() && flagV != FlagIdealGas {
		t.Errorf("vapor flag: got %v", flagV)
	}
	AssertComposition(t, y, DefaultAssertionConfig())

	// The returned composition must be a fixed point: one more
	// substitution step, renormalized, lands back on it.
	next := make([]float64, len(y))
	for i := range next {
		next[i] = x[i] * phiL[i] / phiV[i]
	}
	normalize(next)
	for i := range y {
		if math.Abs(next[i]-y[i]) > 1e-3 {
			t.Errorf("component %d drifts under substitution: %.6f -> %.6f", i, y[i], next[i])
		}
	}

	// Pentane is the more volatile component; the vapor must be enriched
	// in it relative to the liquid.
	if y[0] <= x[0] {
		t.Errorf("vapor y[0] = %.4f not enriched over liquid x[0] = %.4f", y[0], x[0])
	}
	t.Logf("✓ Vapor composition %v at P = %.3e Pa (flag %v)", y, P, flagV)
}

func TestSolveLiquidCompositionFixedPoint(t *testing.T) {
	eos := NewVanDerWaals(pentane, hexane)
	T := 390.0
	y := []float64{0.5, 0.5}
	grid := testGrid()

	P := 1.1e6
	phiV, _, flagV, err := VaporFugacity(eos, P, T, y, grid)
	if err != nil {
		t.Fatal(err)
	}
	if !flagV.Physical() && flagV != FlagIdealGas {
		t.Fatalf("vapor fugacity flag: got %v", flagV)
	}

	x, _, flagL, err := SolveLiquidComposition(eos, P, T, []float64{0.5, 0.5}, y, phiV, grid, DefaultLiquidInner())
	if err != nil {
		t.Fatal(err)
	}
	if flagL != FlagLiquid {
		t.Errorf("liquid flag: got %v, want %v", flagL, FlagLiquid)
	}
	AssertComposition(t, x, DefaultAssertionConfig())

	// The coexisting liquid holds less of the volatile component than the
	// vapor it equilibrates with.
	if x[0] >= y[0] {
		t.Errorf("liquid x[0] = %.4f not depleted below vapor y[0] = %.4f", x[0], y[0])
	}
	t.Logf("✓ Liquid composition %v at P = %.3e Pa", x, P)
}

func TestSolveCompositionPreservesGuess(t *testing.T) {
	eos := NewVanDerWaals(pentane, hexane)
	x := []float64{0.4, 0.6}
	guess := []float64{0.5, 0.5}
	grid := testGrid()

	phiL, _, _, err := LiquidFugacity(eos, 1.1e6, 390, x, grid)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := SolveVaporComposition(eos, 1.1e6, 390, guess, x, phiL, grid, DefaultVaporInner()); err != nil {
		t.Fatal(err)
	}
	if guess[0] != 0.5 || guess[1] != 0.5 {
		t.Errorf("input guess mutated to %v", guess)
	}
	t.Log("✓ Caller's guess slice left untouched")
}

func TestSolveVaporCompositionRecoversFromWrongPhase(t *testing.T) {
	eos := NewVanDerWaals(pentane, hexane)
	T := 390.0
	x := []float64{0.4, 0.6}
	grid := testGrid()

	// Well above both pure saturation pressures the trial vapor guess
	// classifies as liquid, forcing the composition-scan recovery.
	P := 2.6e6
	phiL, _, flagL, err := LiquidFugacity(eos, P, T, x, grid)
	if err != nil {
		t.Fatal(err)
	}
	if flagL != FlagLiquid {
		t.Fatalf("liquid fugacity flag: got %v, want %v", flagL, FlagLiquid)
	}

	guess := []float64{0.5, 0.5}
	_, _, wrongFlag, err := VaporFugacity(eos, P, T, guess, grid)
	if err != nil {
		t.Fatal(err)
	}
	if wrongFlag != FlagLiquid {
		t.Fatalf("precondition: guess at P = %.2e must classify as liquid, got %v", P, wrongFlag)
	}

	y, phiV, _, err := SolveVaporComposition(eos, P, T, guess, x, phiL, grid, DefaultVaporInner())
	if err != nil {
		t.Fatal(err)
	}
	AssertComposition(t, y, DefaultAssertionConfig())
	if anyNaN(phiV) {
		t.Errorf("fugacity coefficients carry NaN after recovery: %v", phiV)
	}
	t.Logf("✓ Scan recovered from a wrong-phase guess: y = %v", y)
}

func TestSolveCompositionExhaustionWithZeroMinority(t *testing.T) {
	// A pure fixed phase pins the iterate at [1, 0]: one-iteration budget
	// plus an unreachable tolerance exhausts the loop while the minority
	// fraction is exactly zero, so the diagnostic must stay finite and the
	// iterate usable.
	eos := NewVanDerWaals(pentane, hexane)
	T := 390.0
	x := []float64{1, 0}
	grid := testGrid()

	phiL, _, _, err := LiquidFugacity(eos, 1.1e6, T, x, grid)
	if err != nil {
		t.Fatal(err)
	}

	ic := InnerConfig{MaxIterations: 1, Tolerance: 1e-30}
	y, _, _, err := SolveVaporComposition(eos, 1.1e6, T, []float64{0.5, 0.5}, x, phiL, grid, ic)
	if !errors.Is(err, ErrNonConvergence) {
		t.Fatalf("expected ErrNonConvergence, got %v", err)
	}
	if y[0] != 1 || y[1] != 0 {
		t.Errorf("iterate: got %v, want [1, 0]", y)
	}
	if anyNaN(y) {
		t.Errorf("best iterate carries NaN: %v", y)
	}
	t.Logf("✓ Exhaustion with a zero minority fraction returns a usable iterate: %v", y)
}

func TestScanCompositionRejectsTernary(t *testing.T) {
	eos := NewVanDerWaals(pentane, hexane, Component{Name: "heptane", Tc: 540.2, Pc: 2.736e6})
	other := []float64{0.3, 0.3, 0.4}
	phi := []float64{1, 1, 1}

	_, err := scanComposition(eos, 1e6, 390, 1.0, other, phi, testGrid(), searchVapor)
	if err == nil {
		t.Fatal("expected the binary-only scan to reject three components")
	}
	t.Logf("✓ Ternary scan rejected: %v", err)
}
