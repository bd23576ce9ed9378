package vle

import (
	"log/slog"
	"math"
)

// DensityConfig controls the density grid an isotherm is sampled on and the
// classification of its roots.
type DensityConfig struct {
	// MinDensityFrac sets the minimum grid density as a fraction of the
	// EOS maximum packing density. Its reciprocal bounds the largest
	// specific volume sampled, so it must be small enough to capture the
	// vapor root at low pressures.
	MinDensityFrac float64

	// Increment is the uniform density step [mol/m^3].
	Increment float64

	// MaxVolumeSpacing caps the specific-volume gap between consecutive
	// grid points [m^3/mol]. The low-density end of a uniform density
	// grid is badly under-sampled in volume space; sub-ranges exceeding
	// the cap are re-gridded uniformly in specific volume.
	MaxVolumeSpacing float64

	// MaxPacking is the maximum packing fraction handed to the EOS when
	// asking for its maximum density.
	MaxPacking float64

	// TensionThreshold is the curve value below which a two-root curve is
	// read as a liquid under tension rather than a truncated three-root
	// curve. The literature heuristic uses zero; it is left configurable
	// because the exact cutoff is not a physical law.
	TensionThreshold float64
}

// DefaultDensityConfig returns the grid defaults.
func DefaultDensityConfig() DensityConfig {
	return DensityConfig{
		MinDensityFrac:   1.0 / 200000.0,
		Increment:        5.0,
		MaxVolumeSpacing: 1e-4,
		MaxPacking:       0.65,
	}
}

// Isotherm is a discretized pressure vs. specific-volume relationship at
// fixed temperature and composition. V is strictly increasing; P carries no
// monotonicity guarantee, which is what makes multi-root detection possible.
type Isotherm struct {
	V []float64 // specific volume [m^3/mol], strictly increasing
	P []float64 // pressure [Pa]
}

// BuildIsotherm samples the EOS pressure over a density grid for fixed T and
// composition and returns the curve ordered by increasing specific volume.
func BuildIsotherm(eos EquationOfState, T float64, x []float64, cfg DensityConfig) (*Isotherm, error) {
	if err := checkComposition(eos, x); err != nil {
		return nil, err
	}

	maxRho := eos.DensityMax(x, T, cfg.MaxPacking)
	if !(maxRho > 0) || math.IsInf(maxRho, 0) {
		return nil, domainErrf("EOS maximum density is %g for T=%g K", maxRho, T)
	}
	minRho := maxRho * cfg.MinDensityFrac

	rho := gridAscending(minRho, maxRho, cfg.Increment)
	if len(rho) < 4 {
		return nil, domainErrf("density grid has only %d points; check Increment=%g against DensityMax=%g", len(rho), cfg.Increment, maxRho)
	}
	rho = refineVolumeSpacing(rho, minRho, cfg.MaxVolumeSpacing)

	// Reverse so specific volume increases along the curve.
	n := len(rho)
	iso := &Isotherm{V: make([]float64, n), P: make([]float64, n)}
	for i, r := range rho {
		j := n - 1 - i
		iso.V[j] = 1.0 / r
		iso.P[j] = eos.Pressure(r, T, x)
	}

	slog.Debug("isotherm sampled", "T", T, "points", n, "vMin", iso.V[0], "vMax", iso.V[n-1])
	return iso, nil
}

// gridAscending returns min, min+inc, ... up to but excluding max.
func gridAscending(min, max, inc float64) []float64 {
	n := int((max - min) / inc)
	out := make([]float64, 0, n+1)
	for r := min; r < max; r += inc {
		out = append(out, r)
	}
	return out
}

// refineVolumeSpacing re-grids the low-density head of an ascending density
// grid so no specific-volume gap exceeds vMax. Density grids are uniform in
// rho, so the gap 1/rho_i - 1/rho_{i+1} blows up as rho -> 0.
func refineVolumeSpacing(rho []float64, minRho, vMax float64) []float64 {
	switchIdx := -1
	for i := 0; i < len(rho)-1; i++ {
		if 1.0/rho[i]-1.0/rho[i+1] > vMax {
			switchIdx = i
		}
	}
	if switchIdx < 0 {
		return rho
	}

	// Uniform grid in specific volume from the first compliant point out
	// to the original maximum specific volume, converted back to density
	// and sorted ascending.
	vLow := 1.0 / rho[switchIdx+1]
	vHigh := 1.0 / minRho
	var fine []float64
	for v := vLow; v < vHigh; v += vMax {
		fine = append(fine, 1.0/v)
	}
	// fine is descending in density; reverse in place.
	for i, j := 0, len(fine)-1; i < j; i, j = i+1, j-1 {
		fine[i], fine[j] = fine[j], fine[i]
	}

	tail := rho[min(switchIdx+2, len(rho)):]
	out := make([]float64, 0, len(fine)+len(tail))
	out = append(out, fine...)
	out = append(out, tail...)
	return out
}

// checkComposition validates a mole-fraction vector against the EOS before
// any numerical work.
func checkComposition(eos EquationOfState, x []float64) error {
	if len(x) != eos.ComponentCount() {
		return domainErrf("composition has %d entries, EOS has %d components", len(x), eos.ComponentCount())
	}
	sum := 0.0
	for _, xi := range x {
		if xi < 0 || math.IsNaN(xi) {
			return domainErrf("mole fraction %g is not in [0, 1]", xi)
		}
		sum += xi
	}
	if math.Abs(sum-1.0) > 1e-8 {
		return domainErrf("mole fractions sum to %g, want 1.0", sum)
	}
	return nil
}
