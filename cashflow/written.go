/*
written.go - Written-premium allocator (pipeline stage 2)

PURPOSE:
  Spreads each treaty's total estimated written premium evenly across its
  effective window, then substitutes reported written premium wherever the
  experience carries one. Substitution REPLACES the allocated value; the
  aggregate difference is tracked per treaty so the "allocation sums to the
  treaty total" invariant can still be checked after revision.

IDEMPOTENCE:
  WrittenAllocated is recomputed from the kernel and WrittenMonthly from
  WrittenAllocated + the reported value on every call, so running the stage
  twice with the same experience is a no-op.
*/
package cashflow

import (
	"github.com/shopspring/decimal"

	"github.com/warp/treaty-engine/treaty"
)

// AllocateWritten runs the written-premium allocation and reported-value
// substitution over the whole grid. Reported values dated after the
// valuation month are ignored; a zero valuation means no cutoff.
func AllocateWritten(g *Grid, valuation treaty.Month) {
	for _, t := range g.Treaties {
		cells := g.Rows[t.ID]
		total := t.WrittenTotal()
		length := t.LengthMonths()
		revision := decimal.Zero

		for i := range cells {
			cell := &cells[i]
			cell.WrittenAllocated = total.Mul(WrittenShare(t.Effective, cell.Month, length))
			cell.WrittenMonthly = cell.WrittenAllocated

			if reportedUsable(cell.ReportedWritten, cell.Month, valuation) {
				revision = revision.Add(cell.ReportedWritten.Decimal.Sub(cell.WrittenAllocated))
				cell.WrittenMonthly = cell.ReportedWritten.Decimal
			}
		}

		g.WrittenRevision[t.ID] = revision
	}
}

// reportedUsable gates substitution: the value must be present and, when a
// valuation month is set, not dated after it.
func reportedUsable(v decimal.NullDecimal, m, valuation treaty.Month) bool {
	if !v.Valid {
		return false
	}
	if !valuation.IsZero() && m.After(valuation) {
		return false
	}
	return true
}
