/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes for the HTTP surface, decoupled from the engine types.
  Decimals serialize as strings to keep exact values on the wire; absent
  observed fields serialize as null.
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/treaty-engine/cashflow"
	"github.com/warp/treaty-engine/treaty"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// TreatyDTO describes one treaty's static attributes.
type TreatyDTO struct {
	ID                  string `json:"id"`
	Effective           int    `json:"effective"`  // YYYYMM
	Expiration          int    `json:"expiration"` // YYYYMM
	TreatyLengthMonths  int    `json:"treaty_length_months"`
	PolicyLengthMonths  int    `json:"policy_length_months"`
	LOD                 bool   `json:"lod"`
	TotalSubjectPremium string `json:"total_subject_premium"`
	TargetParticipation string `json:"target_participation"`
	WrittenTotal        string `json:"written_total"`
	InheritedUEPR       string `json:"inherited_uepr"`
}

// RunRequest triggers a projection run.
type RunRequest struct {
	// Optional valuation cutoff for reported-value substitution, YYYYMM.
	ValuationMonth int `json:"valuation_month,omitempty"`
}

// RunResponse summarizes a completed run.
type RunResponse struct {
	Treaties []TreatySummaryDTO `json:"treaties"`
	Checks   []CheckDTO         `json:"checks"`
}

// TreatySummaryDTO is the per-treaty rollup of a run.
type TreatySummaryDTO struct {
	ID              string `json:"id"`
	WrittenTotal    string `json:"written_total"`
	EarnedToDate    string `json:"earned_to_date"`
	UnearnedReserve string `json:"unearned_reserve"`
	UndevelopedPaid string `json:"undeveloped_paid"`
}

// CheckDTO is one executed reconciliation check.
type CheckDTO struct {
	Name     string `json:"name"`
	Treaty   string `json:"treaty,omitempty"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Pass     bool   `json:"pass"`
}

// CellDTO is one (treaty, month) row of the result table.
type CellDTO struct {
	Month               int     `json:"month"` // YYYYMM
	WrittenMonthly      string  `json:"written_monthly"`
	EarnedMonthly       string  `json:"earned_monthly"`
	WrittenToDate       string  `json:"written_to_date"`
	EarnedToDate        string  `json:"earned_to_date"`
	UnearnedReserve     string  `json:"unearned_reserve"`
	UndevelopedPaid     string  `json:"undeveloped_paid"`
	UndevelopedReported string  `json:"undeveloped_reported"`
	ULAE                string  `json:"ulae"`
	BrokerCommission    string  `json:"broker_commission"`
	Expenses            string  `json:"expenses"`
	ReportedWritten     *string `json:"reported_written"`
	ReportedEarned      *string `json:"reported_earned"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func treatyDTO(t treaty.Treaty) TreatyDTO {
	return TreatyDTO{
		ID:                  string(t.ID),
		Effective:           t.Effective.YYYYMM(),
		Expiration:          t.Expiration.YYYYMM(),
		TreatyLengthMonths:  t.LengthMonths(),
		PolicyLengthMonths:  t.PolicyLengthMonths,
		LOD:                 t.LossOccurring,
		TotalSubjectPremium: t.TotalSubjectPremium.String(),
		TargetParticipation: t.TargetParticipation.String(),
		WrittenTotal:        t.WrittenTotal().String(),
		InheritedUEPR:       t.InheritedUEPR.String(),
	}
}

func checkDTO(c cashflow.Check) CheckDTO {
	return CheckDTO{
		Name:     c.Name,
		Treaty:   string(c.Treaty),
		Expected: c.Expected.String(),
		Actual:   c.Actual.String(),
		Pass:     c.Pass,
	}
}

func cellDTO(c *cashflow.Cell) CellDTO {
	return CellDTO{
		Month:               c.Month.YYYYMM(),
		WrittenMonthly:      c.WrittenMonthly.String(),
		EarnedMonthly:       c.EarnedMonthly.String(),
		WrittenToDate:       c.WrittenToDate.String(),
		EarnedToDate:        c.EarnedToDate.String(),
		UnearnedReserve:     c.UnearnedReserve.String(),
		UndevelopedPaid:     c.UndevelopedPaid.String(),
		UndevelopedReported: c.UndevelopedReported.String(),
		ULAE:                c.ULAE.String(),
		BrokerCommission:    c.BrokerCommission.String(),
		Expenses:            c.Expenses.String(),
		ReportedWritten:     nullString(c.ReportedWritten),
		ReportedEarned:      nullString(c.ReportedEarned),
	}
}

func nullString(v decimal.NullDecimal) *string {
	if !v.Valid {
		return nil
	}
	s := v.Decimal.String()
	return &s
}
