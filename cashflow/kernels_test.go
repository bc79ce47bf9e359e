package cashflow_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/treaty-engine/cashflow"
	"github.com/warp/treaty-engine/treaty"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func month(year, mon int) treaty.Month {
	return treaty.NewMonth(year, time.Month(mon))
}

// approxEqual compares with the engine's relative tolerance (1e-6, floored
// absolutely for near-zero expectations).
func approxEqual(expected, actual decimal.Decimal) bool {
	diff := expected.Sub(actual).Abs()
	limit := decimal.New(1, -6)
	if scaled := limit.Mul(expected.Abs()); scaled.GreaterThan(limit) {
		limit = scaled
	}
	return diff.LessThanOrEqual(limit)
}

func requireApprox(t *testing.T, expected, actual decimal.Decimal, msg string) {
	t.Helper()
	if !approxEqual(expected, actual) {
		t.Errorf("%s: expected %s, got %s", msg, expected, actual)
	}
}

// =============================================================================
// WRITTEN SHARE
// =============================================================================

func TestWrittenShare_FlatInsideWindow_ZeroOutside(t *testing.T) {
	// GIVEN: A 12-month window starting 2021-03
	// THEN: Share is 1/12 for the 12 months at and after effective, 0 elsewhere

	effective := month(2021, 3)
	twelfth := dec("1").Div(dec("12"))

	requireApprox(t, decimal.Zero, cashflow.WrittenShare(effective, month(2021, 2), 12), "month before effective")
	requireApprox(t, twelfth, cashflow.WrittenShare(effective, month(2021, 3), 12), "effective month")
	requireApprox(t, twelfth, cashflow.WrittenShare(effective, month(2022, 2), 12), "last window month")
	requireApprox(t, decimal.Zero, cashflow.WrittenShare(effective, month(2022, 3), 12), "month after window")
}

func TestWrittenShare_SumsToOne(t *testing.T) {
	// The flat pattern must integrate to exactly 1 for any window length.
	effective := month(2020, 1)
	for _, length := range []int{1, 6, 12, 18, 36} {
		sum := decimal.Zero
		for k := -2; k < length+2; k++ {
			sum = sum.Add(cashflow.WrittenShare(effective, effective.AddMonths(k), length))
		}
		requireApprox(t, dec("1"), sum, "written pattern normalization")
	}
}

// =============================================================================
// EARNED SHARE
// =============================================================================

func TestEarnedShare_BoundaryHalfShares(t *testing.T) {
	// GIVEN: Policy length 12
	// THEN: Lags 0 and 12 earn half a normal share, lags 1..11 a full share

	requireApprox(t, dec("1").Div(dec("24")), cashflow.EarnedShare(0, 12), "lag 0")
	requireApprox(t, dec("1").Div(dec("12")), cashflow.EarnedShare(1, 12), "lag 1")
	requireApprox(t, dec("1").Div(dec("12")), cashflow.EarnedShare(11, 12), "lag 11")
	requireApprox(t, dec("1").Div(dec("24")), cashflow.EarnedShare(12, 12), "lag 12")
	requireApprox(t, decimal.Zero, cashflow.EarnedShare(13, 12), "lag beyond window")
	requireApprox(t, decimal.Zero, cashflow.EarnedShare(-1, 12), "negative lag")
}

func TestEarnedShare_SumsToOne(t *testing.T) {
	// P2: summing EarnedShare(lag, L) over lags 0..L equals 1 for any L.
	for _, l := range []int{1, 2, 6, 12, 24} {
		sum := decimal.Zero
		for lag := 0; lag <= l; lag++ {
			sum = sum.Add(cashflow.EarnedShare(lag, l))
		}
		requireApprox(t, dec("1"), sum, "earned pattern normalization")
	}
}

// =============================================================================
// INHERITED SHARE PATTERN
// =============================================================================

func TestInheritedSharePattern_TriangularDecay(t *testing.T) {
	// Scenario from the amortizer contract: L=12, k=0 gives
	// (2/12) x (1 - 0.5/12), decreasing linearly to 0 at k=12.

	effective := month(2021, 1)

	first := cashflow.InheritedSharePattern(effective, effective, 12)
	expected := dec("2").Div(dec("12")).Mul(dec("1").Sub(dec("0.5").Div(dec("12"))))
	requireApprox(t, expected, first, "k=0 share")

	// Strictly decreasing over the support.
	prev := first
	for k := 1; k < 12; k++ {
		cur := cashflow.InheritedSharePattern(effective, effective.AddMonths(k), 12)
		if !cur.LessThan(prev) {
			t.Errorf("pattern should decay: share at k=%d (%s) not below k=%d (%s)", k, cur, k-1, prev)
		}
		prev = cur
	}

	requireApprox(t, decimal.Zero, cashflow.InheritedSharePattern(effective, effective.AddMonths(12), 12), "k=L is zero")
	requireApprox(t, decimal.Zero, cashflow.InheritedSharePattern(effective, effective.AddMonths(-1), 12), "before effective is zero")
}

func TestInheritedSharePattern_SumsToOne(t *testing.T) {
	// P3: the triangular density integrates to 1 for any policy length.
	effective := month(2020, 1)
	for _, l := range []int{1, 6, 12, 24} {
		sum := decimal.Zero
		for k := -1; k <= l+1; k++ {
			sum = sum.Add(cashflow.InheritedSharePattern(effective, effective.AddMonths(k), l))
		}
		requireApprox(t, dec("1"), sum, "inherited pattern normalization")
	}
}
