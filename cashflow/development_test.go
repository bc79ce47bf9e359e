package cashflow

import (
	"testing"

	"github.com/warp/treaty-engine/treaty"
)

// =============================================================================
// FACTOR CLEANING
// =============================================================================

func TestCleanFactors_DropsSentinelAndRealignsLags(t *testing.T) {
	// GIVEN: Raw feed rows where lag 0 is the "no development yet" sentinel
	raw := []treaty.DevelopmentFactor{
		{TreatyID: "A", LagMonths: 0, PaidPercent: d("0"), ReportedPercent: d("0")},
		{TreatyID: "A", LagMonths: 1, PaidPercent: d("0.1"), ReportedPercent: d("0.3")},
		{TreatyID: "A", LagMonths: 13, PaidPercent: d("0.6"), ReportedPercent: d("0.9")},
	}

	cleaned := CleanFactors(raw)

	// THEN: The sentinel is gone and every lag is decremented by one
	points := cleaned["A"]
	if len(points) != 2 {
		t.Fatalf("expected 2 cleaned points, got %d", len(points))
	}
	if points[0].LagMonths != 0 || points[1].LagMonths != 12 {
		t.Errorf("cleaned lags = %d, %d; want 0, 12", points[0].LagMonths, points[1].LagMonths)
	}
	if !points[0].PaidPercent.Equal(d("0.1")) || !points[1].ReportedPercent.Equal(d("0.9")) {
		t.Error("percents must ride along unchanged")
	}
}

func TestCleanFactors_SortsByLagPerTreaty(t *testing.T) {
	raw := []treaty.DevelopmentFactor{
		{TreatyID: "A", LagMonths: 25, PaidPercent: d("1"), ReportedPercent: d("1")},
		{TreatyID: "A", LagMonths: 1, PaidPercent: d("0.1"), ReportedPercent: d("0.2")},
		{TreatyID: "B", LagMonths: 7, PaidPercent: d("0.4"), ReportedPercent: d("0.5")},
	}

	cleaned := CleanFactors(raw)

	if cleaned["A"][0].LagMonths != 0 || cleaned["A"][1].LagMonths != 24 {
		t.Errorf("treaty A lags not sorted: %+v", cleaned["A"])
	}
	if len(cleaned["B"]) != 1 || cleaned["B"][0].LagMonths != 6 {
		t.Errorf("treaty B mis-cleaned: %+v", cleaned["B"])
	}
}

func TestCleanFactors_SentinelOnlyTreatyHasNoCurve(t *testing.T) {
	cleaned := CleanFactors([]treaty.DevelopmentFactor{
		{TreatyID: "A", LagMonths: 0, PaidPercent: d("0"), ReportedPercent: d("0")},
	})
	if len(cleaned["A"]) != 0 {
		t.Errorf("sentinel-only input should clean to an empty curve, got %+v", cleaned["A"])
	}
}

// =============================================================================
// PROJECTOR EDGES
// =============================================================================

func TestProjectLosses_DiscardsContributionsPastHorizon(t *testing.T) {
	// GIVEN: A treaty earning close to the horizon end and a long-lag curve
	tr := treaty.Treaty{
		ID:                  "A",
		Effective:           treaty.NewMonth(2070, 1),
		Expiration:          treaty.NewMonth(2070, 7),
		PolicyLengthMonths:  2,
		TotalSubjectPremium: d("600000"),
		TargetParticipation: d("1"),
	}
	g := BuildGrid([]treaty.Treaty{tr}, nil, nil, DefaultHorizon())
	AllocateWritten(g, treaty.Month{})
	AmortizeInherited(g)
	AllocateEarned(g, treaty.Month{})

	curve := CleanedFactors{tr.ID: {
		{LagMonths: 0, PaidPercent: d("0.5"), ReportedPercent: d("0.5")},
		{LagMonths: 60, PaidPercent: d("1"), ReportedPercent: d("1")},
	}}

	// WHEN: Losses are projected
	ProjectLosses(g, curve, DefaultFullDevelopmentMonths)

	// THEN: Only the lag-0 contributions land inside the horizon; the
	// lag-60 targets fall past 2070-12 and are discarded, not wrapped
	cells := g.Rows[tr.ID]
	for i := range cells {
		expected := cells[i].EarnedMonthly.Mul(d("0.5"))
		if !cells[i].UndevelopedPaid.Sub(expected).Abs().LessThan(d("0.000001")) {
			t.Errorf("%s: undeveloped paid %s, want %s", cells[i].Month, cells[i].UndevelopedPaid, expected)
		}
	}
}

func TestProjectLosses_TailForcesFullDevelopment(t *testing.T) {
	// GIVEN: An old treaty and a curve that never reaches 100%
	tr := treaty.Treaty{
		ID:                  "A",
		Effective:           treaty.NewMonth(2020, 6),
		Expiration:          treaty.NewMonth(2021, 6),
		PolicyLengthMonths:  12,
		TotalSubjectPremium: d("1200000"),
		TargetParticipation: d("0.5"),
	}
	g := BuildGrid([]treaty.Treaty{tr}, nil, nil, DefaultHorizon())
	AllocateWritten(g, treaty.Month{})
	AmortizeInherited(g)
	AllocateEarned(g, treaty.Month{})

	curve := CleanedFactors{tr.ID: {{LagMonths: 0, PaidPercent: d("0.3"), ReportedPercent: d("0.4")}}}
	ProjectLosses(g, curve, DefaultFullDevelopmentMonths)

	// THEN: From 240 months of treaty age on, both figures are pinned to
	// the total earned premium regardless of the factor curve
	cells := g.Rows[tr.ID]
	total := cells[len(cells)-1].EarnedToDate
	at240 := g.Cell(tr.ID, tr.Effective.AddMonths(240))
	before := g.Cell(tr.ID, tr.Effective.AddMonths(239))

	if !at240.UndevelopedPaid.Equal(total) || !at240.UndevelopedReported.Equal(total) {
		t.Errorf("at full development age: paid %s, reported %s, want %s",
			at240.UndevelopedPaid, at240.UndevelopedReported, total)
	}
	if before.UndevelopedPaid.Equal(total) {
		t.Error("the month before full development age must stay factor-driven")
	}
	last := &cells[len(cells)-1]
	if !last.UndevelopedPaid.Equal(total) {
		t.Error("the tail pin must hold through the horizon end")
	}
}

func TestProjectLosses_Rerun_IsIdempotent(t *testing.T) {
	tr := treaty.Treaty{
		ID:                  "A",
		Effective:           treaty.NewMonth(2021, 1),
		Expiration:          treaty.NewMonth(2022, 1),
		PolicyLengthMonths:  12,
		TotalSubjectPremium: d("1200000"),
		TargetParticipation: d("0.5"),
	}
	g := BuildGrid([]treaty.Treaty{tr}, nil, nil, DefaultHorizon())
	AllocateWritten(g, treaty.Month{})
	AmortizeInherited(g)
	AllocateEarned(g, treaty.Month{})

	curve := CleanedFactors{tr.ID: {
		{LagMonths: 0, PaidPercent: d("0.1"), ReportedPercent: d("0.2")},
		{LagMonths: 12, PaidPercent: d("0.8"), ReportedPercent: d("0.9")},
	}}
	ProjectLosses(g, curve, DefaultFullDevelopmentMonths)

	snapshot := make([]Cell, len(g.Rows[tr.ID]))
	copy(snapshot, g.Rows[tr.ID])

	ProjectLosses(g, curve, DefaultFullDevelopmentMonths)

	for i := range snapshot {
		if !snapshot[i].UndevelopedPaid.Equal(g.Rows[tr.ID][i].UndevelopedPaid) {
			t.Fatalf("%s: rerun changed undeveloped paid", snapshot[i].Month)
		}
	}
}
