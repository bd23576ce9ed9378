package vle

import (
	"errors"
	"math"
	"testing"
)

func TestSaturationPressureHexane(t *testing.T) {
	eos := NewVanDerWaals(hexane)
	x := []float64{1}
	T := 400.0

	sat, err := SaturationPressure(eos, T, x, testGrid())
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultAssertionConfig()
	AssertSaturation(t, sat, cfg)

	if sat.Pressure >= hexane.Pc {
		t.Errorf("Psat %.4e Pa at T < Tc must lie below Pc %.4e Pa", sat.Pressure, hexane.Pc)
	}

	iso, err := BuildIsotherm(eos, T, x, testGrid())
	if err != nil {
		t.Fatal(err)
	}
	model, err := NewCurveModel(iso)
	if err != nil {
		t.Fatal(err)
	}
	AssertEqualArea(t, model, sat, cfg)
}

func TestSaturationPressureMonotoneInTemperature(t *testing.T) {
	eos := NewVanDerWaals(hexane)
	x := []float64{1}

	var prev float64
	for i, T := range []float64{380.0, 400.0, 420.0} {
		sat, err := SaturationPressure(eos, T, x, testGrid())
		if err != nil {
			t.Fatal(err)
		}
		if i > 0 && sat.Pressure <= prev {
			t.Errorf("Psat(%g K) = %.4e not above Psat at the previous temperature %.4e", T, sat.Pressure, prev)
		}
		prev = sat.Pressure
	}
	t.Logf("✓ Psat increases with temperature, ending at %.4e Pa", prev)
}

func TestSaturationPressureRepeatable(t *testing.T) {
	eos := NewVanDerWaals(pentane)
	x := []float64{1}
	T := 390.0

	first, err := SaturationPressure(eos, T, x, testGrid())
	if err != nil {
		t.Fatal(err)
	}
	second, err := SaturationPressure(eos, T, x, testGrid())
	if err != nil {
		t.Fatal(err)
	}
	if first.Pressure != second.Pressure {
		t.Errorf("repeated solves differ: %.10e vs %.10e", first.Pressure, second.Pressure)
	}
	t.Logf("✓ Deterministic: Psat = %.6e Pa both times", first.Pressure)
}

func TestSaturationPressureSupercritical(t *testing.T) {
	eos := NewVanDerWaals(hexane)
	x := []float64{1}

	sat, err := SaturationPressure(eos, hexane.Tc+50, x, testGrid())
	if err != nil {
		t.Fatalf("supercritical input is not an error, got %v", err)
	}
	if !math.IsNaN(sat.Pressure) || !math.IsNaN(sat.LiquidDensity) || !math.IsNaN(sat.VaporDensity) {
		t.Errorf("supercritical point must be all NaN, got %+v", sat)
	}
	t.Log("✓ Supercritical temperature yields NaN, not an error")
}

func TestSaturationPressureRejectsMixture(t *testing.T) {
	eos := NewVanDerWaals(pentane, hexane)

	_, err := SaturationPressure(eos, 400, []float64{0.5, 0.5}, testGrid())
	var derr *DomainInputError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DomainInputError for a mixture, got %v", err)
	}
	t.Logf("✓ Mixture rejected: %v", err)
}

func TestSaturationDensitiesSolveTheEOS(t *testing.T) {
	eos := NewVanDerWaals(hexane)
	x := []float64{1}
	T := 400.0

	sat, err := SaturationPressure(eos, T, x, testGrid())
	if err != nil {
		t.Fatal(err)
	}

	// Both coexisting densities must reproduce Psat through the raw EOS
	// to within the curve model's resolution.
	for _, rho := range []float64{sat.LiquidDensity, sat.VaporDensity} {
		p := eos.Pressure(rho, T, x)
		if rel := math.Abs(p-sat.Pressure) / sat.Pressure; rel > 1e-2 {
			t.Errorf("EOS pressure at density %.4e is %.4e, Psat is %.4e (relative error %.2e)",
				rho, p, sat.Pressure, rel)
		}
	}
	t.Logf("✓ Coexisting densities reproduce Psat = %.4e Pa", sat.Pressure)
}
