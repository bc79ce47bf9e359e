/*
reconcile.go - Reconciliation validator (pipeline stage 7)

PURPOSE:
  Runs the fixed battery of sum-preservation checks after each major
  stage. A failure is fatal to the run: the pipeline halts with a
  ReconciliationError naming the check and treaty. Tolerance is relative
  (default 1e-6) to absorb decimal division drift in the 1/n patterns.

CHECKS:
  written_total:            per treaty, pattern allocation sums to
                            totalSubjectPremium x targetParticipation
  written_total_revised:    the same identity holds after reported-value
                            substitution once the tracked revision delta is
                            backed out
  inherited_total:          per LOD treaty, amortization sums to the
                            inherited reserve
  earned_equals_written:    per treaty, earned convolution conserves the
                            written premium it consumed (skipped when the
                            earning window is truncated by the horizon)
  development_cap:          per treaty old enough to reach full development
                            inside the horizon, the peak undeveloped-paid
                            value equals total earned premium
*/
package cashflow

import (
	"github.com/shopspring/decimal"

	"github.com/warp/treaty-engine/treaty"
)

// =============================================================================
// CHECKS AND REPORT
// =============================================================================

// Check is one executed reconciliation assertion.
type Check struct {
	Name     string
	Treaty   treaty.TreatyID // empty for book-level checks
	Expected decimal.Decimal
	Actual   decimal.Decimal
	Pass     bool
}

// Report lists every check a run executed, pass or fail, in execution
// order. Surfaced by the api and cmd layers even on success.
type Report struct {
	Checks []Check
}

// Failed returns the failing checks.
func (r *Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Pass {
			out = append(out, c)
		}
	}
	return out
}

// =============================================================================
// RECONCILER
// =============================================================================

// Reconciler evaluates sum-preservation checks against a relative
// tolerance.
type Reconciler struct {
	Tolerance decimal.Decimal
}

// NewReconciler uses the given relative tolerance; zero means the 1e-6
// default.
func NewReconciler(tolerance decimal.Decimal) *Reconciler {
	if tolerance.IsZero() {
		tolerance = decimal.New(1, -6)
	}
	return &Reconciler{Tolerance: tolerance}
}

// withinTolerance compares actual to expected with relative tolerance,
// floored at an absolute tolerance of the same magnitude for near-zero
// expectations.
func (r *Reconciler) withinTolerance(expected, actual decimal.Decimal) bool {
	diff := expected.Sub(actual).Abs()
	limit := r.Tolerance
	if scaled := r.Tolerance.Mul(expected.Abs()); scaled.GreaterThan(limit) {
		limit = scaled
	}
	return diff.LessThanOrEqual(limit)
}

// check records the assertion and returns the fatal error when it fails.
func (r *Reconciler) check(report *Report, name string, id treaty.TreatyID, expected, actual decimal.Decimal) error {
	c := Check{
		Name:     name,
		Treaty:   id,
		Expected: expected,
		Actual:   actual,
		Pass:     r.withinTolerance(expected, actual),
	}
	report.Checks = append(report.Checks, c)
	if !c.Pass {
		return &ReconciliationError{Check: c}
	}
	return nil
}

// =============================================================================
// STAGE CHECKS
// =============================================================================

// CheckWrittenStage validates the written allocation, before and after
// reported-value revision.
func (r *Reconciler) CheckWrittenStage(g *Grid, report *Report) error {
	for _, t := range g.Treaties {
		cells := g.Rows[t.ID]
		allocated := decimal.Zero
		revised := decimal.Zero
		for i := range cells {
			allocated = allocated.Add(cells[i].WrittenAllocated)
			revised = revised.Add(cells[i].WrittenMonthly)
		}

		total := t.WrittenTotal()
		if err := r.check(report, "written_total", t.ID, total, allocated); err != nil {
			return err
		}
		// Backing out the tracked revision must land on the same total.
		if err := r.check(report, "written_total_revised", t.ID, total, revised.Sub(g.WrittenRevision[t.ID])); err != nil {
			return err
		}
	}
	return nil
}

// CheckInheritedStage validates that the amortization reproduces each LOD
// treaty's inherited reserve.
func (r *Reconciler) CheckInheritedStage(g *Grid, report *Report) error {
	for _, t := range g.Treaties {
		if !t.LossOccurring || t.InheritedUEPR.IsZero() {
			continue
		}
		cells := g.Rows[t.ID]
		sum := decimal.Zero
		for i := range cells {
			sum = sum.Add(cells[i].InheritedMonthly)
		}
		if err := r.check(report, "inherited_total", t.ID, t.InheritedUEPR, sum); err != nil {
			return err
		}
	}
	return nil
}

// CheckEarnedStage validates conservation through the earning convolution:
// everything written is eventually earned. Treaties whose earning window
// runs past the horizon are skipped - truncation makes the identity
// unattainable by construction, not by defect.
func (r *Reconciler) CheckEarnedStage(g *Grid, report *Report) error {
	for _, t := range g.Treaties {
		lastEarned := t.Effective.AddMonths(t.LengthMonths() + t.PolicyLengthMonths)
		if !g.Horizon.Contains(lastEarned) {
			continue
		}
		cells := g.Rows[t.ID]
		written := decimal.Zero
		earned := decimal.Zero
		for i := range cells {
			written = written.Add(cells[i].WrittenMonthly)
			earned = earned.Add(cells[i].EarnedAllocated)
		}
		if err := r.check(report, "earned_equals_written", t.ID, written, earned); err != nil {
			return err
		}
	}
	return nil
}

// CheckDevelopmentStage validates that treaties reaching full development
// age inside the horizon peak at exactly their total earned premium.
func (r *Reconciler) CheckDevelopmentStage(g *Grid, report *Report, fullDevelopmentMonths int) error {
	n := g.Horizon.Months()
	for _, t := range g.Treaties {
		fullDevAt := t.Effective.AddMonths(fullDevelopmentMonths)
		if !g.Horizon.Contains(fullDevAt) {
			continue
		}
		cells := g.Rows[t.ID]
		peak := decimal.Zero
		for i := range cells {
			if cells[i].UndevelopedPaid.GreaterThan(peak) {
				peak = cells[i].UndevelopedPaid
			}
		}
		if err := r.check(report, "development_cap", t.ID, cells[n-1].EarnedToDate, peak); err != nil {
			return err
		}
	}
	return nil
}
