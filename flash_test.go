package vle

import (
	"errors"
	"testing"
)

func TestFlashBinary(t *testing.T) {
	eos := NewVanDerWaals(pentane, hexane)
	cfg := testEquilibriumConfig()
	T := 390.0
	P := 1.1e6 // between the pure saturation pressures at 390 K

	res, err := Flash(eos, T, P, DefaultFlashConfig(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	acfg := DefaultAssertionConfig()
	AssertComposition(t, res.Liquid, acfg)
	AssertComposition(t, res.Vapor, acfg)

	if res.Vapor[0] <= res.Liquid[0] {
		t.Errorf("vapor y[0] = %.4f not enriched over liquid x[0] = %.4f", res.Vapor[0], res.Liquid[0])
	}
	if res.LiquidFlag != FlagLiquid {
		t.Errorf("liquid flag: got %v, want %v", res.LiquidFlag, FlagLiquid)
	}
	if !res.VaporFlag.Physical() && res.VaporFlag != FlagIdealGas {
		t.Errorf("vapor flag: got %v", res.VaporFlag)
	}
	if res.Residual > DefaultFlashConfig().Tolerance {
		t.Errorf("residual %.3e above tolerance %.3e", res.Residual, DefaultFlashConfig().Tolerance)
	}
	t.Logf("✓ Flash split at %.3e Pa: x = %v, y = %v (%d iterations)",
		P, res.Liquid, res.Vapor, res.Iterations)
}

func TestFlashMatchesBubblePoint(t *testing.T) {
	// At the bubble pressure of some liquid, the flash at the same T and P
	// must recover that liquid as its liquid phase: the binary two-phase
	// tie line at fixed T and P is unique.
	eos := NewVanDerWaals(pentane, hexane)
	cfg := testEquilibriumConfig()
	T := 390.0
	x := []float64{0.4, 0.6}

	bubble, err := BubblePoint(eos, T, x, cfg)
	if err != nil {
		t.Fatal(err)
	}
	flash, err := Flash(eos, T, bubble.Pressure, DefaultFlashConfig(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	if diff := flash.Liquid[0] - x[0]; diff > 0.02 || diff < -0.02 {
		t.Errorf("flash liquid x[0] = %.4f, bubble-point liquid was %.4f", flash.Liquid[0], x[0])
	}
	if diff := flash.Vapor[0] - bubble.Composition[0]; diff > 0.02 || diff < -0.02 {
		t.Errorf("flash vapor y[0] = %.4f, bubble-point vapor was %.4f", flash.Vapor[0], bubble.Composition[0])
	}
	t.Logf("✓ Flash tie line matches the bubble point: x = %v, y = %v", flash.Liquid, flash.Vapor)
}

func TestFlashSinglePhase(t *testing.T) {
	// Well above both pure saturation pressures there is no two-phase
	// region; the material balance leaves (0, 1) and the flash refuses.
	eos := NewVanDerWaals(pentane, hexane)
	cfg := testEquilibriumConfig()

	_, err := Flash(eos, 390.0, 3.0e6, DefaultFlashConfig(), cfg)
	if !errors.Is(err, ErrSinglePhase) {
		t.Fatalf("expected ErrSinglePhase, got %v", err)
	}
	var derr *DomainInputError
	if errors.As(err, &derr) {
		t.Errorf("single-phase outcome must not classify as an input error: %v", err)
	}
	t.Logf("✓ Single-phase conditions reported as a physical outcome: %v", err)
}

func TestFlashRejectsNonBinary(t *testing.T) {
	heptane := Component{Name: "heptane", Tc: 540.2, Pc: 2.736e6}
	eos := NewVanDerWaals(pentane, hexane, heptane)

	_, err := Flash(eos, 390.0, 1.1e6, DefaultFlashConfig(), testEquilibriumConfig())
	var derr *DomainInputError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DomainInputError for a ternary system, got %v", err)
	}
}
