/*
Package cashflow projects the monthly cash-flow schedule of a reinsurance
book.

PURPOSE:
  Given the treaty reference table, development factors, monthly
  experience, and overrides, the engine produces one row per (treaty,
  calendar month) over the projection horizon: written and earned premium,
  unearned reserve, undeveloped paid/reported losses, and the derived
  expense and LALAE metrics - substituting actually-reported amounts for
  projections wherever experience exists.

PIPELINE (strict linear order; each stage consumes columns of the last):
  1. BuildGrid          - treaty x month lattice + experience + overrides
  2. AllocateWritten    - flat allocation over the effective window,
                          reported-written substitution
  3. AmortizeInherited  - triangular amortization of inherited UEPR
  4. AllocateEarned     - earning convolution, reported-earned
                          substitution, cumulatives, UEPR
  5. ProjectLosses      - development convolution + horizon tail
  6. ComputeDerived     - ULAE, commission, expenses, LALAE scenarios
  Reconciliation checks run between stages; any failure aborts the run.

CONCURRENCY:
  One pass over a fixed, finite input. The grid is owned exclusively by
  the run, so there are no concurrent writers and no locking.

USAGE:
  engine := cashflow.NewEngine()
  result, err := engine.Run(cashflow.Inputs{
      Treaties:   treaties,
      Factors:    factors,
      Experience: experience,
      Overrides:  overrides,
  })

SEE ALSO:
  - kernels.go: the allocation patterns
  - reconcile.go: the invariant battery
*/
package cashflow

import (
	"github.com/shopspring/decimal"

	"github.com/warp/treaty-engine/treaty"
)

// DefaultFullDevelopmentMonths is the treaty age, in months, at which
// losses are assumed fully paid and reported (20 years).
const DefaultFullDevelopmentMonths = 240

// =============================================================================
// ENGINE
// =============================================================================

// Engine holds the run parameters. The zero value is not usable; construct
// with NewEngine and adjust fields before Run.
type Engine struct {
	Horizon Horizon

	// Valuation bounds reported-value substitution: experience dated
	// after this month is ignored. Zero means no cutoff.
	Valuation treaty.Month

	// FullDevelopmentMonths is the forced-full-development age.
	FullDevelopmentMonths int

	// Tolerance is the relative reconciliation tolerance.
	Tolerance decimal.Decimal
}

// NewEngine returns an engine with the standard horizon, 240-month full
// development, and 1e-6 tolerance.
func NewEngine() *Engine {
	return &Engine{
		Horizon:               DefaultHorizon(),
		FullDevelopmentMonths: DefaultFullDevelopmentMonths,
		Tolerance:             decimal.New(1, -6),
	}
}

// Inputs are the already-validated, already-keyed tables the engine
// consumes. The engine never mutates them.
type Inputs struct {
	Treaties   []treaty.Treaty
	Factors    []treaty.DevelopmentFactor
	Experience []treaty.ExperienceRow
	Overrides  []treaty.Override
}

// Result is the completed run: the final grid plus the reconciliation
// report of every check executed.
type Result struct {
	Grid           *Grid
	Reconciliation Report
}

// =============================================================================
// RUN
// =============================================================================

// Run executes the full pipeline. Any returned error is fatal: the run
// produced no output and must be re-invoked with corrected inputs.
func (e *Engine) Run(in Inputs) (*Result, error) {
	cleaned := CleanFactors(in.Factors)
	if err := e.validate(in, cleaned); err != nil {
		return nil, err
	}

	reconciler := NewReconciler(e.Tolerance)
	result := &Result{}

	g := BuildGrid(in.Treaties, in.Experience, in.Overrides, e.Horizon)

	AllocateWritten(g, e.Valuation)
	if err := reconciler.CheckWrittenStage(g, &result.Reconciliation); err != nil {
		return nil, err
	}

	AmortizeInherited(g)
	if err := reconciler.CheckInheritedStage(g, &result.Reconciliation); err != nil {
		return nil, err
	}

	AllocateEarned(g, e.Valuation)
	if err := reconciler.CheckEarnedStage(g, &result.Reconciliation); err != nil {
		return nil, err
	}

	ProjectLosses(g, cleaned, e.FullDevelopmentMonths)
	if err := reconciler.CheckDevelopmentStage(g, &result.Reconciliation, e.FullDevelopmentMonths); err != nil {
		return nil, err
	}

	ComputeDerived(g)

	result.Grid = g
	return result, nil
}

// validate rejects treaties the pipeline cannot allocate: zero-length
// windows, missing development curves, and inherited reserves on non-LOD
// treaties.
func (e *Engine) validate(in Inputs, cleaned CleanedFactors) error {
	for _, t := range in.Treaties {
		if t.LengthMonths() <= 0 {
			return &InvalidTreatyError{TreatyID: t.ID, Reason: "treaty length is not positive; allocation is undefined"}
		}
		if t.PolicyLengthMonths <= 0 {
			return &InvalidTreatyError{TreatyID: t.ID, Reason: "policy length is not positive; earning curve is undefined"}
		}
		if !t.LossOccurring && !t.InheritedUEPR.IsZero() {
			return &InheritedOnNonLODError{TreatyID: t.ID, Amount: t.InheritedUEPR.String()}
		}
		if len(cleaned[t.ID]) == 0 {
			return &MissingDevelopmentError{TreatyID: t.ID}
		}
	}
	return nil
}
