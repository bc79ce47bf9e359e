/*
earned.go - Earned-premium allocator (pipeline stage 4)

PURPOSE:
  Convolves each month's (post-substitution) written premium with the
  per-policy earning curve to produce calendar-month earned premium. This
  is a one-to-many temporal join: every written month fans out to policy
  length + 1 candidate earned months, and contributions are grouped by the
  destination month - once earned, the source month is irrelevant.

  The inner loop is bounded by the kernel's support (lag 0..L), not by the
  horizon, so the fan-out stays proportional to the book's policy lengths.

AFTER THE CONVOLUTION:
  1. Add the inherited-UEPR amortization -> EarnedInclInherited
  2. Substitute reported earned premium where available (replacement, same
     rule as the written allocator)
  3. Prefix-sum written/earned to date, in month order
  4. UnearnedReserve = inheritedTotal + writtenToDate - earnedToDate
*/
package cashflow

import (
	"github.com/shopspring/decimal"

	"github.com/warp/treaty-engine/treaty"
)

// AllocateEarned runs the earning convolution, inherited-reserve addition,
// reported-value substitution, and cumulative columns for every treaty.
// AllocateWritten and AmortizeInherited must have run first.
func AllocateEarned(g *Grid, valuation treaty.Month) {
	n := g.Horizon.Months()

	for _, t := range g.Treaties {
		cells := g.Rows[t.ID]
		l := t.PolicyLengthMonths

		// Expansion + grouped reduction. Recomputed from scratch so the
		// stage is idempotent.
		for i := range cells {
			cells[i].EarnedAllocated = decimal.Zero
		}
		for i := range cells {
			w := cells[i].WrittenMonthly
			if w.IsZero() {
				continue
			}
			for lag := 0; lag <= l; lag++ {
				j := i + lag
				if j >= n {
					break
				}
				share := EarnedShare(lag, l)
				if share.IsZero() {
					continue
				}
				cells[j].EarnedAllocated = cells[j].EarnedAllocated.Add(w.Mul(share))
			}
		}

		writtenToDate := decimal.Zero
		earnedToDate := decimal.Zero
		for i := range cells {
			cell := &cells[i]
			cell.EarnedInclInherited = cell.EarnedAllocated.Add(cell.InheritedMonthly)

			cell.EarnedMonthly = cell.EarnedInclInherited
			if reportedUsable(cell.ReportedEarned, cell.Month, valuation) {
				cell.EarnedMonthly = cell.ReportedEarned.Decimal
			}

			writtenToDate = writtenToDate.Add(cell.WrittenMonthly)
			earnedToDate = earnedToDate.Add(cell.EarnedMonthly)
			cell.WrittenToDate = writtenToDate
			cell.EarnedToDate = earnedToDate
			cell.UnearnedReserve = t.InheritedUEPR.Add(writtenToDate).Sub(earnedToDate)
		}
	}
}
