package vle

// GasConstant is the universal gas constant [J/(mol K)].
const GasConstant = 8.31446261815324

// EquationOfState is the capability the solver needs from any EOS. All
// methods are pure functions of their arguments; the solver never mutates
// the EOS and shares one instance across a whole batch.
type EquationOfState interface {
	// Pressure returns the pressure [Pa] at molar density rho [mol/m^3],
	// temperature T [K] and composition x (mole fractions).
	Pressure(rho, T float64, x []float64) float64

	// DensityMax returns the maximum physically meaningful molar density
	// [mol/m^3] for the composition at T, given a maximum packing
	// fraction. It bounds the density grid from above.
	DensityMax(x []float64, T, maxPack float64) float64

	// ChemicalPotential returns the residual chemical potential of each
	// component (dimensionless, already divided by RT and reduced by the
	// ideal-gas reference) at pressure P and molar density rho. The
	// fugacity coefficient of component i is exp of entry i.
	ChemicalPotential(P, rho float64, x []float64, T float64) []float64

	// ComponentCount reports the number of mixture components the EOS
	// was parameterized for.
	ComponentCount() int
}

// PhaseFlag classifies the fluid root found at a requested state point.
type PhaseFlag int

const (
	FlagVapor         PhaseFlag = 0 // a vapor-branch density was found
	FlagLiquid        PhaseFlag = 1 // a liquid-branch density was found
	FlagCriticalFluid PhaseFlag = 2 // single root, no extrema: supercritical fluid
	FlagNoFluid       PhaseFlag = 3 // no physical root at this (P, T, x)
	FlagIdealGas      PhaseFlag = 4 // root outside sampled grid, unit fugacity assumed
)

// String implements fmt.Stringer for log output.
func (f PhaseFlag) String() string {
	switch f {
	case FlagVapor:
		return "vapor"
	case FlagLiquid:
		return "liquid"
	case FlagCriticalFluid:
		return "critical-fluid"
	case FlagNoFluid:
		return "no-fluid"
	case FlagIdealGas:
		return "ideal-gas-assumed"
	}
	return "unknown"
}

// Physical reports whether the flag carries a solved, finite density. A
// NoFluid or IdealGas flag means the associated density is NaN or a
// contingency fallback and must not be used as a physical root.
func (f PhaseFlag) Physical() bool {
	return f == FlagVapor || f == FlagLiquid || f == FlagCriticalFluid
}
