/*
amount.go - Decimal helpers and absent-vs-zero propagation

PURPOSE:
  Observed experience fields distinguish "no data" from "confirmed zero".
  decimal.NullDecimal carries that distinction; the reducers here preserve
  it through aggregation: a group that is entirely absent reduces to
  absent, a mixed group sums only the present values.

WHY NOT NaN:
  A sentinel NaN poisons decimal arithmetic silently. NullDecimal makes
  absence explicit and forces every consumer to decide how to treat it.
*/
package cashflow

import "github.com/shopspring/decimal"

// =============================================================================
// NULL-DECIMAL CONSTRUCTORS
// =============================================================================

// Absent is the "no data" value.
func Absent() decimal.NullDecimal {
	return decimal.NullDecimal{}
}

// Present wraps a known value.
func Present(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// =============================================================================
// NA-PRESERVING REDUCTION
// =============================================================================

// AddNull is the associative accumulator used by every grouped sum over
// observed fields: absent + absent = absent, otherwise present values sum.
func AddNull(a, b decimal.NullDecimal) decimal.NullDecimal {
	switch {
	case !a.Valid && !b.Valid:
		return Absent()
	case !a.Valid:
		return b
	case !b.Valid:
		return a
	default:
		return Present(a.Decimal.Add(b.Decimal))
	}
}

// SumNull folds AddNull over a slice.
func SumNull(vs []decimal.NullDecimal) decimal.NullDecimal {
	acc := Absent()
	for _, v := range vs {
		acc = AddNull(acc, v)
	}
	return acc
}

// OrZero collapses absence to zero. Only for contexts where the distinction
// has already been acted on (e.g. summing into a computed column).
func OrZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

// coalesce keeps the override when present, the base otherwise.
func coalesce(override, base decimal.NullDecimal) decimal.NullDecimal {
	if override.Valid {
		return override
	}
	return base
}
