package vle

import "math"

// VaporFugacity computes the vapor fugacity coefficients at (P, T, y)
// together with the vapor density and its classification flag. When the
// grid misses the vapor root (FlagIdealGas) every coefficient is one; when
// no root exists the coefficients are NaN and the caller decides.
func VaporFugacity(eos EquationOfState, P, T float64, y []float64, cfg DensityConfig) ([]float64, float64, PhaseFlag, error) {
	rho, flag, err := VaporDensity(eos, P, T, y, cfg)
	if err != nil {
		return nil, math.NaN(), flag, err
	}
	if flag == FlagIdealGas {
		phi := make([]float64, len(y))
		for i := range phi {
			phi[i] = 1.0
		}
		return phi, rho, flag, nil
	}
	return fugacityFromPotential(eos, P, rho, y, T), rho, flag, nil
}

// LiquidFugacity computes the liquid fugacity coefficients at (P, T, x)
// together with the liquid density and its classification flag.
func LiquidFugacity(eos EquationOfState, P, T float64, x []float64, cfg DensityConfig) ([]float64, float64, PhaseFlag, error) {
	rho, flag, err := LiquidDensity(eos, P, T, x, cfg)
	if err != nil {
		return nil, math.NaN(), flag, err
	}
	return fugacityFromPotential(eos, P, rho, x, T), rho, flag, nil
}

func fugacityFromPotential(eos EquationOfState, P, rho float64, x []float64, T float64) []float64 {
	mu := eos.ChemicalPotential(P, rho, x, T)
	phi := make([]float64, len(mu))
	for i, m := range mu {
		phi[i] = math.Exp(m)
	}
	return phi
}
