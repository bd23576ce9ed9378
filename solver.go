package vle

import (
	"errors"
	"fmt"
	"math"
)

// SolveMethod selects the outer pressure solver. The set is closed on
// purpose: each tag names a family with one well-understood contract rather
// than an open-ended dispatch table of method names.
type SolveMethod string

const (
	// MethodBracketedRoot runs a Brent root-finder on the bracket found
	// by the pressure-range search. The default: it cannot leave the
	// bracket and converges superlinearly.
	MethodBracketedRoot SolveMethod = "bracketed-root"

	// MethodUnboundedRoot runs a secant iteration from the initial guess
	// alone, ignoring the bracket bounds.
	MethodUnboundedRoot SolveMethod = "unbounded-root"

	// MethodBoundedMinimize minimizes the squared objective over the
	// bracket with a bounded Brent minimizer. Useful when the objective
	// is noisy enough that its sign near the root is unreliable.
	MethodBoundedMinimize SolveMethod = "bounded-minimize"
)

// OuterConfig controls the outer pressure solver.
type OuterConfig struct {
	Method        SolveMethod
	Tolerance     float64
	MaxIterations int
}

// DefaultOuterConfig returns the outer-loop defaults.
func DefaultOuterConfig() OuterConfig {
	return OuterConfig{
		Method:        MethodBracketedRoot,
		Tolerance:     1e-5,
		MaxIterations: 25,
	}
}

// solvePressure drives the configured outer method over the objective.
func solvePressure(obj func(float64) float64, br Bracket, cfg OuterConfig) (float64, error) {
	switch cfg.Method {
	case MethodBracketedRoot, "":
		return BrentRoot(obj, br.PLow, br.PHigh, cfg.Tolerance, cfg.MaxIterations)
	case MethodUnboundedRoot:
		return SecantRoot(obj, br.PGuess, cfg.Tolerance, cfg.MaxIterations)
	case MethodBoundedMinimize:
		sq := func(p float64) float64 { v := obj(p); return v * v }
		x, _, err := BrentMinimize(sq, br.PLow, br.PHigh, cfg.Tolerance, cfg.MaxIterations)
		return x, err
	default:
		return math.NaN(), fmt.Errorf("unknown outer solve method %q", cfg.Method)
	}
}

// BrentRoot finds a root of f on [a, b] where f(a) and f(b) have opposite
// signs, combining bisection, secant, and inverse quadratic interpolation.
func BrentRoot(f func(float64) float64, a, b, tol float64, maxIter int) (float64, error) {
	fa, fb := f(a), f(b)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return math.NaN(), errors.New("brent: objective is NaN at a bracket end")
	}
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if fa*fb > 0 {
		return math.NaN(), fmt.Errorf("brent: f(%g)=%g and f(%g)=%g do not bracket a root", a, fa, b, fb)
	}
	if maxIter <= 0 {
		maxIter = 100
	}

	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}
	c, fc := a, fa
	d := 0.0
	mflag := true

	for i := 0; i < maxIter; i++ {
		if fb == 0 || math.Abs(b-a) < tol*(1+math.Abs(b)) {
			return b, nil
		}
		var s float64
		if fa != fc && fb != fc {
			// inverse quadratic interpolation
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// secant
			s = b - fb*(b-a)/(fb-fa)
		}

		lo, hi := (3*a+b)/4, b
		if lo > hi {
			lo, hi = hi, lo
		}
		cond := s < lo || s > hi ||
			(mflag && math.Abs(s-b) >= math.Abs(b-c)/2) ||
			(!mflag && math.Abs(s-b) >= math.Abs(c-d)/2)
		if cond {
			s = 0.5 * (a + b)
			mflag = true
		} else {
			mflag = false
		}

		fs := f(s)
		if math.IsNaN(fs) {
			return math.NaN(), fmt.Errorf("brent: objective is NaN at %g", s)
		}
		d = c
		c, fc = b, fb
		if fa*fs < 0 {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}
		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}
	return b, fmt.Errorf("brent: %w", ErrNonConvergence)
}

// SecantRoot finds a root of f starting from a single guess, with no
// bounds. The quasi-Newton family of the original method set.
func SecantRoot(f func(float64) float64, x0, tol float64, maxIter int) (float64, error) {
	if maxIter <= 0 {
		maxIter = 100
	}
	x1 := x0 * 1.0001
	if x1 == x0 {
		x1 = x0 + 1e-4
	}
	f0, f1 := f(x0), f(x1)
	for i := 0; i < maxIter; i++ {
		if math.IsNaN(f1) {
			return math.NaN(), fmt.Errorf("secant: objective is NaN at %g", x1)
		}
		if f1 == 0 || math.Abs(x1-x0) < tol*(1+math.Abs(x1)) {
			return x1, nil
		}
		denom := f1 - f0
		if denom == 0 {
			return x1, fmt.Errorf("secant: flat objective at %g: %w", x1, ErrNonConvergence)
		}
		x2 := x1 - f1*(x1-x0)/denom
		x0, f0 = x1, f1
		x1 = x2
		f1 = f(x1)
	}
	return x1, fmt.Errorf("secant: %w", ErrNonConvergence)
}

// BrentMinimize finds a local minimum of f on [a, b] by golden-section
// search with parabolic interpolation steps where they help.
func BrentMinimize(f func(float64) float64, a, b, tol float64, maxIter int) (x, fx float64, err error) {
	const cgold = 0.3819660112501051 // 2 - golden ratio
	if maxIter <= 0 {
		maxIter = 100
	}
	if a > b {
		a, b = b, a
	}
	x = a + cgold*(b-a)
	w, v := x, x
	fx = f(x)
	fw, fv := fx, fx
	d, e := 0.0, 0.0

	for i := 0; i < maxIter; i++ {
		mid := 0.5 * (a + b)
		tol1 := tol*math.Abs(x) + 1e-12
		tol2 := 2 * tol1
		if math.Abs(x-mid) <= tol2-0.5*(b-a) {
			return x, fx, nil
		}

		useGolden := true
		if math.Abs(e) > tol1 {
			// try a parabolic step through x, w, v
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			etmp := e
			e = d
			if math.Abs(p) < math.Abs(0.5*q*etmp) && p > q*(a-x) && p < q*(b-x) {
				d = p / q
				u := x + d
				if u-a < tol2 || b-u < tol2 {
					d = math.Copysign(tol1, mid-x)
				}
				useGolden = false
			}
		}
		if useGolden {
			if x >= mid {
				e = a - x
			} else {
				e = b - x
			}
			d = cgold * e
		}

		var u float64
		if math.Abs(d) >= tol1 {
			u = x + d
		} else {
			u = x + math.Copysign(tol1, d)
		}
		fu := f(u)
		if math.IsNaN(fu) {
			return x, fx, fmt.Errorf("brent minimize: objective is NaN at %g", u)
		}

		if fu <= fx {
			if u >= x {
				a = x
			} else {
				b = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = u, fu
		} else {
			if u < x {
				a = u
			} else {
				b = u
			}
			if fu <= fw || w == x {
				v, fv = w, fw
				w, fw = u, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = u, fu
			}
		}
	}
	return x, fx, fmt.Errorf("brent minimize: %w", ErrNonConvergence)
}
