/*
grid.go - Treaty x month lattice

PURPOSE:
  Materializes the full cross-product grid the pipeline operates on:
  exactly one cell per (treaty, calendar month) over the horizon. Static
  treaty attributes ride on the Grid's treaty list; observed experience and
  overrides are attached to cells during the build.

INVARIANTS:
  - |treaties| x |months| cells, created once, never deleted
  - Experience rows with no matching treaty are dropped (inner semantics
    on the treaty key); the ingestion collaborator has already certified
    the extract, so drops here only occur for out-of-horizon months
  - Absent observed fields stay absent; absence and zero never conflate

SEE ALSO:
  - engine.go: threads the grid through the pipeline stages
  - written.go, earned.go, development.go: the stages mutating cells
*/
package cashflow

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/treaty-engine/treaty"
)

// =============================================================================
// HORIZON
// =============================================================================

// Horizon bounds the monthly lattice, inclusive on both ends.
type Horizon struct {
	Start treaty.Month
	End   treaty.Month
}

// DefaultHorizon is the standard projection window, 2020-01 through 2070-12.
func DefaultHorizon() Horizon {
	return Horizon{
		Start: treaty.NewMonth(2020, 1),
		End:   treaty.NewMonth(2070, 12),
	}
}

// Months returns the number of months in the horizon.
func (h Horizon) Months() int {
	return treaty.MonthsBetween(h.Start, h.End) + 1
}

// Contains reports whether m falls inside the horizon.
func (h Horizon) Contains(m treaty.Month) bool {
	return m.AfterOrEqual(h.Start) && m.BeforeOrEqual(h.End)
}

// =============================================================================
// CELL - One (treaty, month) row
// =============================================================================

// ScenarioMetrics holds the four LALAE figures for one loss-ratio scenario.
type ScenarioMetrics struct {
	PaidLALAE     decimal.Decimal
	ReportedLALAE decimal.Decimal
	CaseReserve   decimal.Decimal
	IBNR          decimal.Decimal
}

// Cell is one row of the working table. Created by BuildGrid, mutated
// additively by each pipeline stage.
//
// Allocated and post-substitution amounts are separate columns on purpose:
// substitution replaces the allocated value wherever a reported one exists,
// and keeping the pure allocation makes the substitution idempotent and the
// written-total invariant checkable after revision.
type Cell struct {
	Month treaty.Month

	// Observed experience (post key-translation, post override). Absent
	// means no data, not zero.
	ReportedWritten     decimal.NullDecimal
	ReportedEarned      decimal.NullDecimal
	ReportedPaidLossNet decimal.NullDecimal
	ReportedPaidALAE    decimal.NullDecimal
	ReportedCaseReserve decimal.NullDecimal

	// Written-premium allocation.
	WrittenAllocated decimal.Decimal // pure pattern allocation
	WrittenMonthly   decimal.Decimal // after reported-value substitution

	// Inherited-UEPR amortization (LOD treaties only).
	InheritedMonthly decimal.Decimal

	// Earned-premium allocation.
	EarnedAllocated     decimal.Decimal // convolution of written months
	EarnedInclInherited decimal.Decimal // + inherited amortization
	EarnedMonthly       decimal.Decimal // after reported-value substitution

	// Running cumulatives and the resulting unearned reserve.
	WrittenToDate   decimal.Decimal
	EarnedToDate    decimal.Decimal
	UnearnedReserve decimal.Decimal

	// Undeveloped loss projections.
	UndevelopedPaid     decimal.Decimal
	UndevelopedReported decimal.Decimal

	// Derived expense metrics.
	ULAE             decimal.Decimal
	BrokerCommission decimal.Decimal
	Expenses         decimal.Decimal

	// LALAE scenarios.
	NoImprovement   ScenarioMetrics
	HalfImprovement ScenarioMetrics
	BreakEven       ScenarioMetrics
}

// ScenarioFor returns the metrics block for a scenario.
func (c *Cell) ScenarioFor(s treaty.Scenario) ScenarioMetrics {
	switch s {
	case treaty.ScenarioHalfImprovement:
		return c.HalfImprovement
	case treaty.ScenarioBreakEven:
		return c.BreakEven
	default:
		return c.NoImprovement
	}
}

// =============================================================================
// GRID
// =============================================================================

// Grid is the working table threaded through the pipeline. Treaties are kept
// in sorted ID order so iteration, reconciliation reports, and exports are
// deterministic.
type Grid struct {
	Horizon  Horizon
	Treaties []treaty.Treaty
	Rows     map[treaty.TreatyID][]Cell

	// Aggregate difference between reported and originally-allocated
	// written premium, per treaty. Maintained by the written allocator so
	// the written-total invariant survives revision.
	WrittenRevision map[treaty.TreatyID]decimal.Decimal
}

// Index converts a month to its row offset, reporting whether it is inside
// the horizon.
func (g *Grid) Index(m treaty.Month) (int, bool) {
	if !g.Horizon.Contains(m) {
		return 0, false
	}
	return treaty.MonthsBetween(g.Horizon.Start, m), true
}

// MonthAt is the inverse of Index.
func (g *Grid) MonthAt(i int) treaty.Month {
	return g.Horizon.Start.AddMonths(i)
}

// Cell returns the cell for (id, m), or nil when m is outside the horizon
// or the treaty is unknown.
func (g *Grid) Cell(id treaty.TreatyID, m treaty.Month) *Cell {
	i, ok := g.Index(m)
	if !ok {
		return nil
	}
	cells, ok := g.Rows[id]
	if !ok {
		return nil
	}
	return &cells[i]
}

// TreatyByID looks up a treaty's static attributes.
func (g *Grid) TreatyByID(id treaty.TreatyID) (treaty.Treaty, bool) {
	for _, t := range g.Treaties {
		if t.ID == id {
			return t, true
		}
	}
	return treaty.Treaty{}, false
}

// =============================================================================
// GRID BUILDER - Pipeline stage 1
// =============================================================================

// BuildGrid materializes the complete lattice and attaches observed
// experience and overrides. Experience rows whose treaty is not in the book
// or whose month is outside the horizon are dropped.
func BuildGrid(treaties []treaty.Treaty, experience []treaty.ExperienceRow, overrides []treaty.Override, horizon Horizon) *Grid {
	sorted := make([]treaty.Treaty, len(treaties))
	copy(sorted, treaties)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	n := horizon.Months()
	g := &Grid{
		Horizon:         horizon,
		Treaties:        sorted,
		Rows:            make(map[treaty.TreatyID][]Cell, len(sorted)),
		WrittenRevision: make(map[treaty.TreatyID]decimal.Decimal, len(sorted)),
	}

	for _, t := range sorted {
		cells := make([]Cell, n)
		for i := range cells {
			cells[i].Month = horizon.Start.AddMonths(i)
		}
		g.Rows[t.ID] = cells
	}

	for _, row := range experience {
		cell := g.Cell(row.TreatyID, row.Month)
		if cell == nil {
			continue // inner semantics on the treaty key
		}
		cell.ReportedWritten = row.WrittenPremium
		cell.ReportedEarned = row.EarnedPremium
		cell.ReportedPaidLossNet = row.PaidLossNet
		cell.ReportedPaidALAE = row.PaidALAE
		cell.ReportedCaseReserve = row.CaseReserveLoss
	}

	// Overrides win field-by-field wherever present.
	for _, ov := range overrides {
		cell := g.Cell(ov.TreatyID, ov.Month)
		if cell == nil {
			continue
		}
		cell.ReportedWritten = coalesce(ov.WrittenPremium, cell.ReportedWritten)
		cell.ReportedEarned = coalesce(ov.EarnedPremium, cell.ReportedEarned)
		cell.ReportedPaidLossNet = coalesce(ov.PaidLossNet, cell.ReportedPaidLossNet)
		cell.ReportedPaidALAE = coalesce(ov.PaidALAE, cell.ReportedPaidALAE)
		cell.ReportedCaseReserve = coalesce(ov.CaseReserveLoss, cell.ReportedCaseReserve)
	}

	return g
}
