package vle

import (
	"errors"
	"fmt"
)

// ErrNoPhysicalRoot is the sentinel for a state point with no fluid root.
// It is non-fatal: callers substitute NaN and continue.
var ErrNoPhysicalRoot = errors.New("no physical density root at requested state")

// ErrNonConvergence is the sentinel for an iteration budget exhausted
// without reaching tolerance. The best iterate is still returned.
var ErrNonConvergence = errors.New("iteration budget exhausted before convergence")

// ErrSinglePhase is the sentinel for a temperature and pressure at which the
// mixture has no two-phase coexistence region. It is a physical outcome of
// the iteration, not an input defect.
var ErrSinglePhase = errors.New("no two-phase region at requested conditions")

// DomainInputError reports malformed input detected before any numerical
// work: wrong composition length, mole fractions not summing to one, or an
// unsupported system size. It aborts the whole calculation.
type DomainInputError struct {
	Reason string
}

func (e *DomainInputError) Error() string {
	return "domain input: " + e.Reason
}

func domainErrf(format string, args ...any) error {
	return &DomainInputError{Reason: fmt.Sprintf(format, args...)}
}

// BracketSearchError reports that the pressure-bracket search ran out of
// budget without finding a sign change in the objective. It is fatal for
// the single equilibrium point only.
type BracketSearchError struct {
	PLow, PHigh float64
	ObjLow      float64
	ObjHigh     float64
	Iterations  int
}

func (e *BracketSearchError) Error() string {
	return fmt.Sprintf("bracket search exhausted after %d iterations: objective [%g, %g] over pressure [%g, %g] Pa never changes sign",
		e.Iterations, e.ObjLow, e.ObjHigh, e.PLow, e.PHigh)
}

// SupercriticalError reports a pure component with no saturation pressure
// at the requested temperature and no configured fallback.
type SupercriticalError struct {
	Component string
	T         float64
}

func (e *SupercriticalError) Error() string {
	return fmt.Sprintf("component %q is above its critical point at %g K and no fallback saturation pressure is configured", e.Component, e.T)
}
