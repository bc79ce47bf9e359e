/*
inherited.go - Inherited-UEPR amortizer (pipeline stage 3)

PURPOSE:
  LOD treaties assume an unearned premium reserve from policies already in
  force at the effective date. That reserve is amortized over the
  underlying policy length with the triangular InheritedSharePattern, which
  sums to 1 over its support, so the monthly amounts reproduce the treaty's
  inherited total exactly.

  Non-LOD treaties carry no inherited reserve and the stage is a no-op for
  them; a nonzero reserve on a non-LOD treaty is rejected up front by
  engine validation.
*/
package cashflow

// AmortizeInherited fills InheritedMonthly for every LOD treaty carrying an
// inherited reserve.
func AmortizeInherited(g *Grid) {
	for _, t := range g.Treaties {
		if !t.LossOccurring || t.InheritedUEPR.IsZero() {
			continue
		}
		cells := g.Rows[t.ID]
		for i := range cells {
			cell := &cells[i]
			cell.InheritedMonthly = t.InheritedUEPR.Mul(
				InheritedSharePattern(t.Effective, cell.Month, t.PolicyLengthMonths))
		}
	}
}
