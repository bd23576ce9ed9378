// Package vle computes vapor-liquid equilibrium from any pressure-explicit
// equation of state.
//
// # Overview
//
// vle answers the two questions phase-equilibrium work keeps coming back to:
// at what pressure do a liquid and its vapor coexist, and what does the
// other phase look like when one side is pinned. It does this with nothing
// but the EquationOfState interface: pressure as a function of density,
// temperature, and composition, plus the chemical potentials that turn
// densities into fugacity coefficients.
//
// # Architecture
//
// The solvers nest, outermost first:
//
//   - batch.go       - sweeps over state points, sequential or pooled
//   - equilibrium.go - bubble and dew point solves (pressure + composition)
//   - bracket.go     - pressure interval search for the outer solver
//   - innerloop.go   - composition fixed-point iteration at fixed pressure
//   - saturation.go  - Maxwell equal-area construction for pure components
//   - fugacity.go    - fugacity coefficients from a classified density
//   - classify.go    - phase identification on the isotherm roots
//   - spline.go      - smoothed spline model of a sampled isotherm
//   - curve.go       - isotherm sampling with volume-spacing refinement
//   - solver.go      - scalar root finders and a bounded minimizer
//   - vdw.go         - a van der Waals mixture, the reference EOS
//
// # Quick Start
//
// Saturation pressure of a pure component:
//
//	eos := vle.NewVanDerWaals(vle.Component{Name: "hexane", Tc: 507.6, Pc: 3.025e6})
//
//	sat, err := vle.SaturationPressure(eos, 400.0, []float64{1}, vle.DefaultDensityConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Psat = %.0f Pa, liquid %.1f mol/m3, vapor %.1f mol/m3\n",
//	    sat.Pressure, sat.LiquidDensity, sat.VaporDensity)
//
// Bubble point of a binary liquid:
//
//	res, err := vle.BubblePoint(eos, 350.0, []float64{0.4, 0.6}, vle.DefaultEquilibriumConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("P = %.0f Pa, vapor composition %v\n", res.Pressure, res.Composition)
//
// # Phase Classification
//
// A subcritical isotherm P(v) crosses a target pressure up to three times.
// The three crossings are, in increasing volume, the liquid root, an
// unstable root, and the vapor root. Every density lookup classifies what
// it found with a PhaseFlag:
//
//   - FlagVapor (0):         vapor or supercritical gas
//   - FlagLiquid (1):        liquid or compressed fluid
//   - FlagCriticalFluid (2): single root, no extrema; phases merged
//   - FlagNoFluid (3):       no root; the flag of failed batch points
//   - FlagIdealGas (4):      vapor root beyond the sampled grid
//
// FlagIdealGas is a contingency, not an error: the fugacity coefficients
// degrade gracefully to one and the iteration carries on.
//
// # The Maxwell Construction
//
// Between the liquid and vapor roots the equal-area rule picks the one
// pressure where the two loop areas cancel. SaturationPressure minimizes
// the squared sum of the two signed areas over the pressure band between
// the isotherm's local minimum and maximum. A monotone isotherm means the
// component is supercritical: the result is NaN, not an error, because
// mixture solvers substitute a fallback pressure and continue.
//
// # Nested Iteration
//
// BubblePoint and DewPoint run two loops. The inner loop holds pressure
// fixed and iterates the unknown phase's mole fractions to the fixed point
// z_i = w_i * phi_w,i / phi_z,i. The outer loop adjusts pressure until the
// unnormalized mole-fraction sum hits one. Before the outer loop starts, a
// doubling search brackets the pressure where the objective changes sign,
// seeded from the fixed-phase isotherm's local maximum.
//
// When an inner iterate lands in the wrong phase, a scan over binary
// compositions recovers a guess on the right branch. This is why the
// equilibrium solvers are binary-only.
//
// # Sweeps
//
// BubblePointSweep and DewPointSweep run many state points with warm
// starting between neighbors. Points fail independently: a failed point
// carries NaN values and FlagNoFluid, never aborting its neighbors. Set
// BatchConfig.Workers above one to split the sweep into contiguous chunks
// across goroutines.
//
// # Testing
//
// Assertion helpers validate solver output in tests:
//
//	func TestBubblePoint(t *testing.T) {
//	    res, err := vle.BubblePoint(eos, T, x, cfg)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    vle.AssertConverged(t, res, vle.DefaultAssertionConfig())
//	}
//
// # Units
//
// Everything is SI: pressure in Pa, temperature in K, molar density in
// mol/m^3, molar volume in m^3/mol. Compositions are mole fractions.
package vle
