/*
kernels.go - Temporal allocation kernels

PURPOSE:
  The three pure scalar functions that drive every allocation in the
  engine. Each takes explicit month/length arguments and returns the share
  of a treaty total that lands in one calendar month. All three integrate
  to exactly 1 over their support, which is what makes the reconciliation
  invariants hold by construction.

KERNELS:
  WrittenShare:          flat 1/n over the treaty's effective window
  EarnedShare:           flat interior with half-shares at both boundary
                         months (policies bind mid-month, so earning leaks
                         one month past the nominal window on each side)
  InheritedSharePattern: linearly decaying (triangular) density for the
                         amortization of an inherited unearned reserve

These are deliberately row-wise scalar functions: the convolution stages
apply them over the lattice, the kernels themselves know nothing about
tables.
*/
package cashflow

import (
	"github.com/shopspring/decimal"

	"github.com/warp/treaty-engine/treaty"
)

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// =============================================================================
// WRITTEN PREMIUM - Flat allocation over the effective window
// =============================================================================

// WrittenShare returns the fraction of a treaty's total written premium
// allocated to month. With k = months from effective to month, the share is
// 1/treatyLengthMonths for 0 <= k < treatyLengthMonths and 0 elsewhere, so
// the shares over the window sum to exactly 1.
//
// treatyLengthMonths must be positive; the engine validates that before
// any allocation runs.
func WrittenShare(effective, month treaty.Month, treatyLengthMonths int) decimal.Decimal {
	k := treaty.MonthsBetween(effective, month)
	if k < 0 || k >= treatyLengthMonths {
		return decimal.Zero
	}
	return one.Div(decimal.NewFromInt(int64(treatyLengthMonths)))
}

// =============================================================================
// EARNED PREMIUM - Interior flat, boundary half-shares
// =============================================================================

// EarnedShare returns the fraction of one written month that is earned at
// lag months after it, for an underlying policy length of
// policyLengthMonths (L):
//
//	lag in 1..L-1:  1/L
//	lag 0 or L:     1/(2L)
//	otherwise:      0
//
// The two half-share boundary months model mid-month binding: earning
// starts halfway through the written month and finishes halfway through
// month L. The pattern sums to (L-1)/L + 2/(2L) = 1.
func EarnedShare(lag, policyLengthMonths int) decimal.Decimal {
	if lag < 0 || lag > policyLengthMonths {
		return decimal.Zero
	}
	l := decimal.NewFromInt(int64(policyLengthMonths))
	if lag == 0 || lag == policyLengthMonths {
		return one.Div(two.Mul(l))
	}
	return one.Div(l)
}

// =============================================================================
// INHERITED UEPR - Triangular amortization density
// =============================================================================

// InheritedSharePattern returns the fraction of a treaty's inherited
// unearned reserve amortized in month. With k = months from effective to
// month and L = policyLengthMonths:
//
//	k in 0..L-1:  (2/L) * (1 - (k+0.5)/L)
//	otherwise:    0
//
// The +0.5 offset places the underlying policies at mid-month. The density
// decays linearly to zero at k = L and sums to exactly 1 over its support,
// so amount * pattern reproduces the inherited reserve in aggregate.
func InheritedSharePattern(effective, month treaty.Month, policyLengthMonths int) decimal.Decimal {
	k := treaty.MonthsBetween(effective, month)
	if k < 0 || k > policyLengthMonths-1 {
		return decimal.Zero
	}
	l := decimal.NewFromInt(int64(policyLengthMonths))
	kHalf := decimal.NewFromInt(int64(k)).Add(decimal.NewFromFloat(0.5))
	return two.Div(l).Mul(one.Sub(kHalf.Div(l)))
}
