package vle

import "math"

// Component holds the critical constants a van der Waals mixture is built
// from.
type Component struct {
	Name string
	Tc   float64 // critical temperature [K]
	Pc   float64 // critical pressure [Pa]
}

// VanDerWaals is a van der Waals mixture with geometric-mean combining of
// the attraction parameters. Simple enough to reason about analytically,
// yet it reproduces every isotherm shape the solvers must classify.
type VanDerWaals struct {
	names []string
	a     []float64 // attraction [Pa m^6 / mol^2]
	b     []float64 // covolume [m^3 / mol]
}

// NewVanDerWaals derives the mixture parameters from critical constants:
// a = 27 R^2 Tc^2 / (64 Pc), b = R Tc / (8 Pc).
func NewVanDerWaals(comps ...Component) *VanDerWaals {
	m := &VanDerWaals{
		names: make([]string, len(comps)),
		a:     make([]float64, len(comps)),
		b:     make([]float64, len(comps)),
	}
	for i, c := range comps {
		m.names[i] = c.Name
		m.a[i] = 27 * GasConstant * GasConstant * c.Tc * c.Tc / (64 * c.Pc)
		m.b[i] = GasConstant * c.Tc / (8 * c.Pc)
	}
	return m
}

// ComponentCount implements EquationOfState.
func (m *VanDerWaals) ComponentCount() int { return len(m.a) }

// Names returns the component names in parameter order.
func (m *VanDerWaals) Names() []string { return append([]string(nil), m.names...) }

// Pressure evaluates P = rho R T / (1 - b rho) - a rho^2. Densities at or
// beyond the covolume limit are clamped to a steep repulsive wall so that
// root refinement cannot wander onto the unphysical branch.
func (m *VanDerWaals) Pressure(rho, T float64, x []float64) float64 {
	b := m.bmix(x)
	denom := 1 - b*rho
	if denom < 1e-9 {
		denom = 1e-9
	}
	return rho*GasConstant*T/denom - m.amix(x)*rho*rho
}

// DensityMax implements EquationOfState. The covolume is the close-packed
// molar volume of a van der Waals fluid, so the usable density range ends
// just below 1/b; the packing fraction scales within that limit.
func (m *VanDerWaals) DensityMax(x []float64, T, maxPack float64) float64 {
	return maxPack / (0.663 * m.bmix(x))
}

// ChemicalPotential returns ln(phi_i) at the given state:
//
//	ln phi_i = -ln(1 - b rho) + b_i rho / (1 - b rho)
//	           - 2 rho abar_i / (R T) - ln Z
//
// with Z = P / (rho R T) and abar_i = sum_j x_j sqrt(a_i a_j).
func (m *VanDerWaals) ChemicalPotential(P, rho float64, x []float64, T float64) []float64 {
	b := m.bmix(x)
	denom := 1 - b*rho
	z := P / (rho * GasConstant * T)

	lnPhi := make([]float64, len(x))
	for i := range x {
		abar := 0.0
		for j := range x {
			abar += x[j] * math.Sqrt(m.a[i]*m.a[j])
		}
		lnPhi[i] = -math.Log(denom) + m.b[i]*rho/denom - 2*rho*abar/(GasConstant*T) - math.Log(z)
	}
	return lnPhi
}

func (m *VanDerWaals) bmix(x []float64) float64 {
	b := 0.0
	for i := range x {
		b += x[i] * m.b[i]
	}
	return b
}

func (m *VanDerWaals) amix(x []float64) float64 {
	a := 0.0
	for i := range x {
		for j := range x {
			a += x[i] * x[j] * math.Sqrt(m.a[i]*m.a[j])
		}
	}
	return a
}
