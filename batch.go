package vle

import (
	"context"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
)

// SweepPoint is one state point of a batch calculation: a temperature, the
// fixed-phase composition, and an optional pressure guess (zero means
// estimate).
type SweepPoint struct {
	T           float64
	Composition []float64
	PGuess      float64
}

// SweepResult is the outcome of one sweep point. A failed point carries
// NaN values, FlagNoFluid on both phases, and the error that sank it;
// failures never abort the rest of the sweep.
type SweepResult struct {
	T           float64
	Fixed       []float64
	Pressure    float64
	Composition []float64
	VaporFlag   PhaseFlag
	LiquidFlag  PhaseFlag
	Objective   float64
	Err         error
}

// BatchConfig controls sweep execution. Workers at zero or one runs the
// points sequentially on the calling goroutine.
type BatchConfig struct {
	Workers     int
	Equilibrium EquilibriumConfig
}

// DefaultBatchConfig returns a sequential batch with default solver
// settings.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{Workers: 1, Equilibrium: DefaultEquilibriumConfig()}
}

// NewSweep pairs temperature and composition lists into sweep points,
// broadcasting a single temperature or a single composition across the
// other list.
func NewSweep(temps []float64, comps [][]float64) ([]SweepPoint, error) {
	switch {
	case len(temps) == 0 || len(comps) == 0:
		return nil, domainErrf("sweep needs at least one temperature and one composition")
	case len(temps) == 1 && len(comps) > 1:
		t := temps[0]
		temps = make([]float64, len(comps))
		for i := range temps {
			temps[i] = t
		}
	case len(comps) == 1 && len(temps) > 1:
		c := comps[0]
		comps = make([][]float64, len(temps))
		for i := range comps {
			comps[i] = c
		}
	case len(temps) != len(comps):
		return nil, domainErrf("cannot pair %d temperatures with %d compositions", len(temps), len(comps))
	}

	points := make([]SweepPoint, len(temps))
	for i := range temps {
		points[i] = SweepPoint{T: temps[i], Composition: comps[i]}
	}
	return points, nil
}

// BubblePointSweep runs BubblePoint over every point, in input order.
// Compositions are validated up front; a bad input aborts the whole sweep
// before any solve starts, while per-point solver failures only mark their
// own row. Workers each take a contiguous chunk and carry the previous
// point's solution as the next point's warm start.
func BubblePointSweep(ctx context.Context, eos EquationOfState, points []SweepPoint, cfg BatchConfig) ([]SweepResult, error) {
	return sweep(ctx, eos, points, cfg, searchVapor)
}

// DewPointSweep runs DewPoint over every point, in input order.
func DewPointSweep(ctx context.Context, eos EquationOfState, points []SweepPoint, cfg BatchConfig) ([]SweepResult, error) {
	return sweep(ctx, eos, points, cfg, searchLiquid)
}

func sweep(ctx context.Context, eos EquationOfState, points []SweepPoint, cfg BatchConfig, solveFor phaseTarget) ([]SweepResult, error) {
	for i, pt := range points {
		if err := checkComposition(eos, pt.Composition); err != nil {
			return nil, domainErrf("sweep point %d: %v", i, err)
		}
	}

	results := make([]SweepResult, len(points))
	if cfg.Workers <= 1 {
		if err := sweepChunk(ctx, eos, points, results, cfg.Equilibrium, solveFor); err != nil {
			return results, err
		}
		return results, nil
	}

	workers := cfg.Workers
	if workers > len(points) {
		workers = len(points)
	}
	chunk := (len(points) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(points); start += chunk {
		end := start + chunk
		if end > len(points) {
			end = len(points)
		}
		pts, res := points[start:end], results[start:end]
		g.Go(func() error {
			return sweepChunk(ctx, eos, pts, res, cfg.Equilibrium, solveFor)
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// sweepChunk solves a contiguous run of points sequentially, threading the
// warm start. Cancellation is only observed between points.
func sweepChunk(ctx context.Context, eos EquationOfState, points []SweepPoint, results []SweepResult, cfg EquilibriumConfig, solveFor phaseTarget) error {
	warm := cfg.WarmStart
	for i, pt := range points {
		if err := ctx.Err(); err != nil {
			return err
		}

		ptCfg := cfg
		ptCfg.WarmStart = warm
		if pt.PGuess > 0 {
			ptCfg.PGuess = pt.PGuess
		}

		results[i] = solvePoint(eos, pt, ptCfg, solveFor)
		if results[i].Err == nil {
			warm = results[i].Composition
		}
	}
	return nil
}

func solvePoint(eos EquationOfState, pt SweepPoint, cfg EquilibriumConfig, solveFor phaseTarget) SweepResult {
	res := SweepResult{T: pt.T, Fixed: pt.Composition}

	// A pure component needs no composition iteration at all.
	if pure, idx := isPure(pt.Composition); pure {
		sat, err := SaturationPressure(eos, pt.T, pt.Composition, cfg.Density)
		if err != nil {
			return failedResult(res, err)
		}
		res.Pressure = sat.Pressure
		res.Composition = append([]float64(nil), pt.Composition...)
		res.VaporFlag, res.LiquidFlag = FlagVapor, FlagLiquid
		if math.IsNaN(sat.Pressure) {
			slog.Warn("pure sweep point is supercritical", "T", pt.T, "component", idx)
		}
		return res
	}

	var (
		eq  EquilibriumResult
		err error
	)
	if solveFor == searchVapor {
		eq, err = BubblePoint(eos, pt.T, pt.Composition, cfg)
	} else {
		eq, err = DewPoint(eos, pt.T, pt.Composition, cfg)
	}
	if err != nil {
		return failedResult(res, err)
	}

	res.Pressure = eq.Pressure
	res.Composition = eq.Composition
	res.VaporFlag = eq.VaporFlag
	res.LiquidFlag = eq.LiquidFlag
	res.Objective = eq.Objective
	return res
}

// failedResult marks a point failed without aborting the sweep.
func failedResult(res SweepResult, err error) SweepResult {
	slog.Warn("sweep point failed", "T", res.T, "composition", res.Fixed, "err", err)
	nan := math.NaN()
	res.Pressure = nan
	res.Composition = nanSlice(len(res.Fixed))
	res.VaporFlag = FlagNoFluid
	res.LiquidFlag = FlagNoFluid
	res.Objective = nan
	res.Err = err
	return res
}

func isPure(z []float64) (bool, int) {
	nonzero, idx := 0, -1
	for i, zi := range z {
		if zi != 0 {
			nonzero++
			idx = i
		}
	}
	return nonzero == 1, idx
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
