/*
Package treaty defines the reference data model for the cash-flow engine.

PURPOSE:
  This package contains the domain types shared by every layer: treaties,
  development factors, monthly experience, and overrides. All of them are
  immutable once loaded - the engine reads them, it never writes them back.

KEY CONCEPTS IN THIS FILE (types.go):
  - Treaty: One reinsurance contract with its premium and expense terms
  - DevelopmentFactor: Cumulative paid/reported percentage at a lag
  - ExperienceRow: Observed monthly actuals, already keyed to a treaty
  - Override: Per-field correction taking precedence over an ExperienceRow

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every monetary amount and percentage
  2. Absent vs zero: observed fields are decimal.NullDecimal; an absent
     value means "no data", never "confirmed zero"
  3. Type safety: TreatyID keeps treaty keys from mixing with raw feed keys

SEE ALSO:
  - month.go: Month type and integer month arithmetic
  - cashflow: the projection engine consuming these types
*/
package treaty

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// TreatyID is the organization's treaty key. Raw feed keys are plain strings
// until the key translation maps them onto a TreatyID.
type TreatyID string

// =============================================================================
// SCENARIOS - LALAE loss-ratio variants
// =============================================================================

type Scenario string

const (
	ScenarioNoImprovement   Scenario = "no_improvement"
	ScenarioHalfImprovement Scenario = "half_improvement"
	ScenarioBreakEven       Scenario = "break_even"
)

// Scenarios lists the variants in reporting order.
var Scenarios = []Scenario{ScenarioNoImprovement, ScenarioHalfImprovement, ScenarioBreakEven}

// ScenarioRatios carries the LALAE loss ratio for each scenario.
type ScenarioRatios struct {
	NoImprovement   decimal.Decimal
	HalfImprovement decimal.Decimal
	BreakEven       decimal.Decimal
}

// For returns the ratio for a scenario.
func (r ScenarioRatios) For(s Scenario) decimal.Decimal {
	switch s {
	case ScenarioHalfImprovement:
		return r.HalfImprovement
	case ScenarioBreakEven:
		return r.BreakEven
	default:
		return r.NoImprovement
	}
}

// =============================================================================
// TREATY - One reinsurance contract
// =============================================================================

// Treaty is one contract in the book. Immutable once loaded; its ID is the
// join key for every downstream table.
type Treaty struct {
	ID         TreatyID
	Effective  Month
	Expiration Month

	// Length in months of the policies the treaty covers. Drives the
	// earning curve and the inherited-reserve amortization.
	PolicyLengthMonths int

	TotalSubjectPremium decimal.Decimal
	TargetParticipation decimal.Decimal

	// Unearned premium assumed from policies already in force at the
	// effective date. Nonzero only for LOD treaties.
	InheritedUEPR decimal.Decimal

	// LossOccurring marks "Losses Occurring During" treaties.
	LossOccurring bool

	ULAEPercent    decimal.Decimal
	BrokerPercent  decimal.Decimal
	ExpensePercent decimal.Decimal

	LALAE ScenarioRatios
}

// LengthMonths derives the treaty length from the effective window.
func (t Treaty) LengthMonths() int {
	return MonthsBetween(t.Effective, t.Expiration)
}

// WrittenTotal is the treaty's total estimated written premium.
func (t Treaty) WrittenTotal() decimal.Decimal {
	return t.TotalSubjectPremium.Mul(t.TargetParticipation)
}

// =============================================================================
// DEVELOPMENT FACTOR - Cumulative loss emergence at a lag
// =============================================================================

// DevelopmentFactor gives the cumulative fraction of ultimate loss paid and
// reported at a lag, in raw feed convention: lag 0 is a "no development yet"
// sentinel, lag n means n-1 months after the earned-premium month. The
// engine normalizes this before use (see cashflow development projector).
type DevelopmentFactor struct {
	TreatyID        TreatyID
	LagMonths       int
	PaidPercent     decimal.Decimal
	ReportedPercent decimal.Decimal
}

// =============================================================================
// EXPERIENCE - Observed monthly actuals
// =============================================================================

// ExperienceRow is one month of reported actuals for a treaty, keyed by the
// organization's treaty ID (key translation has already been applied). Every
// numeric field may be absent.
type ExperienceRow struct {
	TreatyID TreatyID
	Month    Month

	WrittenPremium  decimal.NullDecimal
	EarnedPremium   decimal.NullDecimal
	PaidLossNet     decimal.NullDecimal
	PaidALAE        decimal.NullDecimal
	CaseReserveLoss decimal.NullDecimal
}

// Override corrects one or more reported fields of an experience cell.
// Precedence is field-by-field: absent override fields leave the extracted
// value untouched.
type Override struct {
	TreatyID TreatyID
	Month    Month

	WrittenPremium  decimal.NullDecimal
	EarnedPremium   decimal.NullDecimal
	PaidLossNet     decimal.NullDecimal
	PaidALAE        decimal.NullDecimal
	CaseReserveLoss decimal.NullDecimal
}
