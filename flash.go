package vle

import (
	"fmt"
	"log/slog"
	"math"
)

// FlashResult is a converged two-phase split at fixed temperature and
// pressure.
type FlashResult struct {
	Liquid     []float64
	Vapor      []float64
	LiquidFlag PhaseFlag
	VaporFlag  PhaseFlag
	// Residual is the largest relative change in the distribution
	// coefficients over the final iteration.
	Residual   float64
	Iterations int
}

// FlashConfig controls the successive-substitution flash iteration.
type FlashConfig struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultFlashConfig returns the flash defaults.
func DefaultFlashConfig() FlashConfig {
	return FlashConfig{MaxIterations: 50, Tolerance: 1e-8}
}

// Flash solves the two-phase compositions of a binary system at fixed T and
// P by successive substitution on the distribution coefficients
// K_i = phiL_i/phiV_i. The initial K estimate comes from pure-component
// saturation pressures, with the supercritical fallback table.
func Flash(eos EquationOfState, T, P float64, fc FlashConfig, cfg EquilibriumConfig) (FlashResult, error) {
	if eos.ComponentCount() != 2 {
		return FlashResult{}, domainErrf("flash supports binary systems only, EOS has %d components", eos.ComponentCount())
	}

	psat, err := componentSaturationPressures(eos, T, []float64{0.5, 0.5}, cfg)
	if err != nil {
		return FlashResult{}, err
	}
	k := []float64{psat[0] / P, psat[1] / P}

	var (
		x, y       []float64
		flagL      PhaseFlag
		flagV      PhaseFlag
		residual   = math.Inf(1)
		iterations int
	)
	for iter := 0; iter < fc.MaxIterations; iter++ {
		iterations = iter + 1

		x1, err := liquidSplit(k)
		if err != nil {
			return FlashResult{}, err
		}
		x = []float64{x1, 1 - x1}
		y = []float64{k[0] * x[0], k[1] * x[1]}
		normalize(y)

		var phiL, phiV []float64
		phiL, _, flagL, err = LiquidFugacity(eos, P, T, x, cfg.Density)
		if err != nil {
			return FlashResult{}, err
		}
		phiV, _, flagV, err = VaporFugacity(eos, P, T, y, cfg.Density)
		if err != nil {
			return FlashResult{}, err
		}
		if anyNaN(phiL) || anyNaN(phiV) {
			return FlashResult{}, fmt.Errorf("flash at T=%g P=%g: %w", T, P, ErrNoPhysicalRoot)
		}

		residual = 0
		for i := range k {
			kNew := phiL[i] / phiV[i]
			if d := math.Abs(kNew-k[i]) / k[i]; d > residual {
				residual = d
			}
			k[i] = kNew
		}
		if residual < fc.Tolerance {
			slog.Debug("flash converged", "T", T, "P", P, "iterations", iterations, "x", x, "y", y)
			return FlashResult{
				Liquid: x, Vapor: y,
				LiquidFlag: flagL, VaporFlag: flagV,
				Residual: residual, Iterations: iterations,
			}, nil
		}
	}

	slog.Warn("flash did not converge", "T", T, "P", P, "residual", residual)
	return FlashResult{
		Liquid: x, Vapor: y,
		LiquidFlag: flagL, VaporFlag: flagV,
		Residual: residual, Iterations: iterations,
	}, fmt.Errorf("flash at T=%g P=%g: %w", T, P, ErrNonConvergence)
}

// liquidSplit solves the binary material balance x1*K1 + (1-x1)*K2 = 1.
// A solution outside (0, 1) means no two-phase region at this T and P.
func liquidSplit(k []float64) (float64, error) {
	if k[0] == k[1] {
		return 0, fmt.Errorf("distribution coefficients are equal (K=%g), compositions indeterminate: %w", k[0], ErrSinglePhase)
	}
	x1 := (1 - k[1]) / (k[0] - k[1])
	if x1 <= 0 || x1 >= 1 {
		return 0, fmt.Errorf("material balance gives liquid fraction %g outside (0, 1): %w", x1, ErrSinglePhase)
	}
	return x1, nil
}
