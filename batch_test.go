package vle

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSweepBroadcast(t *testing.T) {
	comps := [][]float64{{0.2, 0.8}, {0.5, 0.5}, {0.8, 0.2}}

	points, err := NewSweep([]float64{390}, comps)
	require.NoError(t, err)
	require.Len(t, points, 3)
	for _, pt := range points {
		require.Equal(t, 390.0, pt.T)
	}

	points, err = NewSweep([]float64{380, 390, 400}, [][]float64{{0.5, 0.5}})
	require.NoError(t, err)
	require.Len(t, points, 3)
	for _, pt := range points {
		require.Equal(t, []float64{0.5, 0.5}, pt.Composition)
	}

	_, err = NewSweep([]float64{380, 390}, comps)
	require.Error(t, err, "mismatched lengths with nothing to broadcast")
}

func TestBubblePointSweepSequential(t *testing.T) {
	eos := NewVanDerWaals(pentane, hexane)
	cfg := BatchConfig{Workers: 1, Equilibrium: testEquilibriumConfig()}

	points, err := NewSweep([]float64{390}, [][]float64{
		{0.2, 0.8}, {0.4, 0.6}, {0.6, 0.4}, {0.8, 0.2},
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := BubblePointSweep(context.Background(), eos, points, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(points) {
		t.Fatalf("got %d results for %d points", len(results), len(points))
	}

	// More of the volatile component in the liquid raises the bubble
	// pressure, so the sweep must come out strictly increasing.
	for i := range results {
		if results[i].Err != nil {
			t.Fatalf("point %d failed: %v", i, results[i].Err)
		}
		if i > 0 && results[i].Pressure <= results[i-1].Pressure {
			t.Errorf("bubble pressure not increasing with x[0]: %.4e then %.4e",
				results[i-1].Pressure, results[i].Pressure)
		}
	}
	t.Logf("✓ Sweep of %d points, P from %.4e to %.4e Pa",
		len(results), results[0].Pressure, results[len(results)-1].Pressure)
}

func TestSweepWorkerPoolMatchesSequential(t *testing.T) {
	eos := NewVanDerWaals(pentane, hexane)
	points, err := NewSweep([]float64{390}, [][]float64{
		{0.2, 0.8}, {0.4, 0.6}, {0.6, 0.4}, {0.8, 0.2},
	})
	if err != nil {
		t.Fatal(err)
	}

	seq, err := BubblePointSweep(context.Background(), eos, points,
		BatchConfig{Workers: 1, Equilibrium: testEquilibriumConfig()})
	if err != nil {
		t.Fatal(err)
	}
	par, err := BubblePointSweep(context.Background(), eos, points,
		BatchConfig{Workers: 3, Equilibrium: testEquilibriumConfig()})
	if err != nil {
		t.Fatal(err)
	}

	acfg := DefaultAssertionConfig()
	for i := range seq {
		if par[i].T != seq[i].T || par[i].Fixed[0] != seq[i].Fixed[0] {
			t.Fatalf("point %d reordered under the worker pool", i)
		}
		AssertPressuresAgree(t, par[i].Pressure, seq[i].Pressure, acfg)
	}
	t.Log("✓ Worker pool preserves input order and agrees with sequential results")
}

func TestSweepPureComponentShortcut(t *testing.T) {
	eos := NewVanDerWaals(pentane, hexane)
	cfg := BatchConfig{Workers: 1, Equilibrium: testEquilibriumConfig()}
	T := 390.0

	results, err := BubblePointSweep(context.Background(), eos,
		[]SweepPoint{{T: T, Composition: []float64{1, 0}}}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	r := results[0]
	if r.Err != nil {
		t.Fatal(r.Err)
	}

	sat, err := SaturationPressure(eos, T, []float64{1, 0}, cfg.Equilibrium.Density)
	if err != nil {
		t.Fatal(err)
	}
	AssertPressuresAgree(t, r.Pressure, sat.Pressure, DefaultAssertionConfig())
	if r.VaporFlag != FlagVapor || r.LiquidFlag != FlagLiquid {
		t.Errorf("pure point flags: vapor %v, liquid %v", r.VaporFlag, r.LiquidFlag)
	}
	if r.Composition[0] != 1 || r.Composition[1] != 0 {
		t.Errorf("pure point composition changed: %v", r.Composition)
	}
}

func TestSweepFailedPointDoesNotAbort(t *testing.T) {
	eos := NewVanDerWaals(pentane, hexane)
	cfg := BatchConfig{Workers: 1, Equilibrium: testEquilibriumConfig()}

	// The middle point is above both critical temperatures: the bracket
	// search has no hump to seed from and the point must fail alone.
	points := []SweepPoint{
		{T: 390, Composition: []float64{0.4, 0.6}},
		{T: 560, Composition: []float64{0.4, 0.6}},
		{T: 390, Composition: []float64{0.6, 0.4}},
	}
	results, err := BubblePointSweep(context.Background(), eos, points, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("healthy points failed: %v, %v", results[0].Err, results[2].Err)
	}
	bad := results[1]
	if bad.Err == nil {
		t.Fatal("supercritical point did not fail")
	}
	if !math.IsNaN(bad.Pressure) || !math.IsNaN(bad.Objective) {
		t.Errorf("failed point carries non-NaN values: P = %g, obj = %g", bad.Pressure, bad.Objective)
	}
	for i, v := range bad.Composition {
		if !math.IsNaN(v) {
			t.Errorf("failed point composition[%d] = %g, want NaN", i, v)
		}
	}
	if bad.VaporFlag != FlagNoFluid || bad.LiquidFlag != FlagNoFluid {
		t.Errorf("failed point flags: vapor %v, liquid %v, want no-fluid", bad.VaporFlag, bad.LiquidFlag)
	}
	t.Logf("✓ Failure isolated to its own row: %v", bad.Err)
}

func TestSweepRejectsBadCompositionUpfront(t *testing.T) {
	eos := NewVanDerWaals(pentane, hexane)
	points := []SweepPoint{
		{T: 390, Composition: []float64{0.4, 0.6}},
		{T: 390, Composition: []float64{0.4, 0.4}}, // does not sum to one
	}

	_, err := BubblePointSweep(context.Background(), eos, points,
		BatchConfig{Workers: 1, Equilibrium: testEquilibriumConfig()})
	var derr *DomainInputError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DomainInputError before dispatch, got %v", err)
	}
	t.Logf("✓ Bad input aborts before any solve: %v", err)
}

func TestSweepHonorsCancellation(t *testing.T) {
	eos := NewVanDerWaals(pentane, hexane)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BubblePointSweep(ctx, eos,
		[]SweepPoint{{T: 390, Composition: []float64{0.4, 0.6}}},
		BatchConfig{Workers: 1, Equilibrium: testEquilibriumConfig()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	t.Log("✓ Cancelled context stops the sweep")
}
