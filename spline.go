package vle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/interp"
)

// smoothSigma is the Gaussian kernel width, in samples, applied to the
// pressure sequence before spline fitting. A light touch: just enough to
// keep numerical noise in the EOS evaluation from minting spurious roots.
const smoothSigma = 0.5

// maxExtrema caps how many curve extrema are kept. A sub-critical isotherm
// of the van der Waals type has at most one local minimum and one local
// maximum; anything past the first two is smoothing debris.
const maxExtrema = 2

// CurveModel is a locally-smoothed interpolant over an isotherm. Two fits
// are kept: a shape-preserving one whose roots are insensitive to smoothing
// artifacts, and a C2 cubic whose derivative is smooth enough for stable
// extrema extraction. Never mutated after construction.
type CurveModel struct {
	v []float64
	p []float64 // Gaussian-smoothed pressures

	rootFit    interp.FritschButland
	extremaFit interp.NaturalCubic
	extrema    []float64
}

// NewCurveModel smooths the isotherm pressures and fits the interpolants.
func NewCurveModel(iso *Isotherm) (*CurveModel, error) {
	if len(iso.V) != len(iso.P) || len(iso.V) < 4 {
		return nil, fmt.Errorf("curve model: need at least 4 samples, got %d", len(iso.V))
	}
	m := &CurveModel{
		v: iso.V,
		p: gaussianSmooth(iso.P, smoothSigma),
	}
	if err := m.rootFit.Fit(m.v, m.p); err != nil {
		return nil, fmt.Errorf("curve model root fit: %w", err)
	}
	if err := m.extremaFit.Fit(m.v, m.p); err != nil {
		return nil, fmt.Errorf("curve model extrema fit: %w", err)
	}
	m.extrema = m.findExtrema()
	return m, nil
}

// At evaluates the smoothed pressure at specific volume v.
func (m *CurveModel) At(v float64) float64 {
	return m.rootFit.Predict(v)
}

// Extrema returns the specific volumes of the curve's local extrema, in
// increasing volume order, at most two.
func (m *CurveModel) Extrema() []float64 {
	return m.extrema
}

// Roots returns the specific volumes where the smoothed pressure crosses
// zero, in increasing volume order.
func (m *CurveModel) Roots() []float64 {
	return m.RootsAt(0)
}

// RootsAt returns the specific volumes where the smoothed pressure crosses
// the target value, in increasing volume order.
func (m *CurveModel) RootsAt(target float64) []float64 {
	var roots []float64
	f := func(v float64) float64 { return m.rootFit.Predict(v) - target }
	for i := 0; i < len(m.v)-1; i++ {
		fa, fb := m.p[i]-target, m.p[i+1]-target
		switch {
		case fa == 0:
			roots = appendRoot(roots, m.v[i])
		case fa*fb < 0:
			roots = appendRoot(roots, bisect(f, m.v[i], m.v[i+1]))
		}
	}
	if n := len(m.p); n > 0 && m.p[n-1]-target == 0 {
		roots = appendRoot(roots, m.v[n-1])
	}
	return roots
}

// IntegrateShifted integrates (P(v) - shift) dv between a and b on the
// smoothed model. Used for the Maxwell equal-area construction.
func (m *CurveModel) IntegrateShifted(a, b, shift float64) float64 {
	const n = 201
	xs := make([]float64, n)
	ys := make([]float64, n)
	h := (b - a) / float64(n-1)
	for i := 0; i < n; i++ {
		xs[i] = a + float64(i)*h
		ys[i] = m.rootFit.Predict(xs[i]) - shift
	}
	xs[n-1] = b // guard against accumulation drift
	return integrate.Simpsons(xs, ys)
}

// findExtrema locates the curve's turning points. Candidates come from sign
// changes in the discrete slope of the smoothed samples, which a cubic
// overshoot in a steep monotone region cannot fake; each candidate is then
// refined by bisecting the C2 fit's derivative inside the bracketing cells.
func (m *CurveModel) findExtrema() []float64 {
	var ex []float64
	df := func(v float64) float64 { return m.extremaFit.PredictDerivative(v) }
	prev := m.p[1] - m.p[0]
	for i := 1; i < len(m.v)-1; i++ {
		cur := m.p[i+1] - m.p[i]
		if prev*cur < 0 {
			a, b := m.v[i-1], m.v[i+1]
			if df(a)*df(b) < 0 {
				ex = appendRoot(ex, bisect(df, a, b))
			} else {
				ex = appendRoot(ex, m.v[i])
			}
		}
		if cur != 0 {
			prev = cur
		}
		if len(ex) >= maxExtrema {
			break
		}
	}
	return ex
}

// appendRoot adds r unless it duplicates the previous root to within the
// spacing noise of adjacent grid cells.
func appendRoot(roots []float64, r float64) []float64 {
	if n := len(roots); n > 0 {
		last := roots[n-1]
		if math.Abs(r-last) <= 1e-12*(1+math.Abs(last)) {
			return roots
		}
	}
	return append(roots, r)
}

// bisect refines a bracketed root of f on [a, b] where f(a) and f(b) have
// opposite signs. Plain bisection: the interpolant is cheap and the bracket
// is a single grid cell, so robustness beats convergence order here.
func bisect(f func(float64) float64, a, b float64) float64 {
	fa := f(a)
	for i := 0; i < 80; i++ {
		mid := 0.5 * (a + b)
		fm := f(mid)
		if fm == 0 || (b-a) <= 1e-14*(1+math.Abs(mid)) {
			return mid
		}
		if fa*fm < 0 {
			b = mid
		} else {
			a, fa = mid, fm
		}
	}
	return 0.5 * (a + b)
}

// gaussianSmooth applies a normalized Gaussian kernel of the given width (in
// samples) with reflected boundaries.
func gaussianSmooth(p []float64, sigma float64) []float64 {
	radius := int(4*sigma + 0.5)
	if radius < 1 {
		radius = 1
	}
	weights := make([]float64, 2*radius+1)
	sum := 0.0
	for k := -radius; k <= radius; k++ {
		w := math.Exp(-float64(k*k) / (2 * sigma * sigma))
		weights[k+radius] = w
		sum += w
	}
	for i := range weights {
		weights[i] /= sum
	}

	n := len(p)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for k := -radius; k <= radius; k++ {
			j := i + k
			if j < 0 {
				j = -j - 1
			} else if j >= n {
				j = 2*n - j - 1
			}
			acc += weights[k+radius] * p[j]
		}
		out[i] = acc
	}
	return out
}
