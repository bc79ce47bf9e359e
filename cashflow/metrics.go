/*
metrics.go - Derived metrics calculator (pipeline stage 6)

PURPOSE:
  Pure per-cell arithmetic over already-computed columns; no joins, no
  state. Expense metrics scale earned-to-date by the treaty's percentages;
  the three LALAE scenarios scale the undeveloped loss curves by the
  scenario loss ratio.

NOTE ON REPORTED LALAE:
  The legacy calculation scaled the PAID undeveloped amount for the
  reported-LALAE figure, which is asymmetric with everything else in the
  scenario block and reads like a copy-paste defect. Here reported LALAE
  uses the reported undeveloped amount. The reconciliation report does not
  depend on either convention, so the change is isolated to this column.
*/
package cashflow

import (
	"github.com/shopspring/decimal"
)

// ComputeDerived fills every derived column. AllocateEarned and
// ProjectLosses must have run first.
func ComputeDerived(g *Grid) {
	for _, t := range g.Treaties {
		cells := g.Rows[t.ID]
		for i := range cells {
			cell := &cells[i]

			cell.ULAE = cell.EarnedToDate.Mul(t.ULAEPercent)
			cell.BrokerCommission = cell.EarnedToDate.Mul(t.BrokerPercent)
			cell.Expenses = cell.EarnedToDate.Mul(t.ExpensePercent)

			cell.NoImprovement = scenarioMetrics(cell, t.LALAE.NoImprovement)
			cell.HalfImprovement = scenarioMetrics(cell, t.LALAE.HalfImprovement)
			cell.BreakEven = scenarioMetrics(cell, t.LALAE.BreakEven)
		}
	}
}

func scenarioMetrics(cell *Cell, ratio decimal.Decimal) ScenarioMetrics {
	return ScenarioMetrics{
		PaidLALAE:     cell.UndevelopedPaid.Mul(ratio),
		ReportedLALAE: cell.UndevelopedReported.Mul(ratio),
		CaseReserve:   ratio.Mul(cell.EarnedToDate.Sub(cell.UndevelopedPaid)),
		IBNR:          ratio.Mul(cell.EarnedToDate.Sub(cell.UndevelopedReported)),
	}
}
