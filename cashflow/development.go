/*
development.go - Loss development projector (pipeline stage 5)

PURPOSE:
  "Undevelops" earned premium into projected paid and reported loss curves.
  Structurally this is the same one-to-many temporal convolution as the
  earning allocator, with the treaty's cumulative development factors as
  the kernel: each earned month contributes earned * percent-at-lag to the
  calendar month lag months later, and contributions group by the target
  month.

REFERENCE-TABLE CLEANING:
  Raw factor rows use the feed convention where lag 0 is a "no development
  yet" sentinel. Cleaning drops the raw-zero row and decrements every
  remaining lag by one, so lag L in the cleaned table means "L months after
  the earned-premium month", consistent with every other month-difference
  in the engine.

HORIZON TAIL:
  Once a target month is fullDevelopmentMonths (240 by default) or more
  past the treaty's effective date, losses are assumed fully paid and
  reported: both figures are forced to the treaty's total earned premium,
  overriding the factor-driven value.
*/
package cashflow

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/treaty-engine/treaty"
)

// =============================================================================
// CLEANED FACTORS
// =============================================================================

// DevelopmentPoint is one cleaned (lag, percents) pair.
type DevelopmentPoint struct {
	LagMonths       int
	PaidPercent     decimal.Decimal
	ReportedPercent decimal.Decimal
}

// CleanedFactors maps each treaty to its cleaned development curve, sorted
// by lag.
type CleanedFactors map[treaty.TreatyID][]DevelopmentPoint

// CleanFactors drops the raw lag-0 sentinel rows and decrements the
// remaining lags by one.
func CleanFactors(raw []treaty.DevelopmentFactor) CleanedFactors {
	cleaned := make(CleanedFactors)
	for _, f := range raw {
		if f.LagMonths == 0 {
			continue // sentinel, not real development data
		}
		cleaned[f.TreatyID] = append(cleaned[f.TreatyID], DevelopmentPoint{
			LagMonths:       f.LagMonths - 1,
			PaidPercent:     f.PaidPercent,
			ReportedPercent: f.ReportedPercent,
		})
	}
	for id := range cleaned {
		points := cleaned[id]
		sort.Slice(points, func(i, j int) bool { return points[i].LagMonths < points[j].LagMonths })
	}
	return cleaned
}

// =============================================================================
// PROJECTOR - Pipeline stage 5
// =============================================================================

// ProjectLosses fills UndevelopedPaid and UndevelopedReported for every
// cell. AllocateEarned must have run first. Factors must already be
// cleaned; every treaty in the grid is guaranteed a curve by engine
// validation.
func ProjectLosses(g *Grid, factors CleanedFactors, fullDevelopmentMonths int) {
	n := g.Horizon.Months()

	for _, t := range g.Treaties {
		cells := g.Rows[t.ID]
		curve := factors[t.ID]

		for i := range cells {
			cells[i].UndevelopedPaid = decimal.Zero
			cells[i].UndevelopedReported = decimal.Zero
		}

		// Expansion against the development curve; rows past the horizon
		// are discarded by the bounds check.
		for i := range cells {
			e := cells[i].EarnedMonthly
			if e.IsZero() {
				continue
			}
			for _, p := range curve {
				j := i + p.LagMonths
				if j >= n {
					break
				}
				target := &cells[j]
				target.UndevelopedPaid = target.UndevelopedPaid.Add(e.Mul(p.PaidPercent))
				target.UndevelopedReported = target.UndevelopedReported.Add(e.Mul(p.ReportedPercent))
			}
		}

		// Horizon-tail rule: at fullDevelopmentMonths of treaty age and
		// beyond, losses are fully paid and reported.
		totalEarned := cells[n-1].EarnedToDate
		for i := range cells {
			age := treaty.MonthsBetween(t.Effective, cells[i].Month)
			if age >= fullDevelopmentMonths {
				cells[i].UndevelopedPaid = totalEarned
				cells[i].UndevelopedReported = totalEarned
			}
		}
	}
}
