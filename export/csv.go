/*
Package export serializes the final result table.

PURPOSE:
  Writes the engine's output as one flat CSV: one row per (treaty,
  calendar month) over the full horizon, every computed and observed
  column present. Months and effective dates are encoded as integer
  YYYYMM. Absent observed fields export as empty strings - an empty cell
  means "no data", a 0 means "confirmed zero".

The engine has no file-format responsibility; this package is the export
collaborator it hands the finished table to.
*/
package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/warp/treaty-engine/cashflow"
)

var resultHeader = []string{
	"treaty_id", "calendar_month", "effective_date", "expiration_date",
	"treaty_length_months", "policy_length_months", "lod",
	"reported_written", "reported_earned", "reported_paid_loss_net",
	"reported_paid_alae", "reported_case_reserve",
	"written_allocated", "written_monthly",
	"inherited_monthly",
	"earned_allocated", "earned_incl_inherited", "earned_monthly",
	"written_to_date", "earned_to_date", "unearned_reserve",
	"undeveloped_paid", "undeveloped_reported",
	"ulae", "broker_commission", "expenses",
	"paid_lalae_no_improv", "reported_lalae_no_improv", "case_reserve_no_improv", "ibnr_no_improv",
	"paid_lalae_half_improv", "reported_lalae_half_improv", "case_reserve_half_improv", "ibnr_half_improv",
	"paid_lalae_break_even", "reported_lalae_break_even", "case_reserve_break_even", "ibnr_break_even",
}

// WriteResultCSV writes the full result table to path.
func WriteResultCSV(path string, result *cashflow.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(resultHeader); err != nil {
		return err
	}

	g := result.Grid
	for _, t := range g.Treaties {
		cells := g.Rows[t.ID]
		for i := range cells {
			cell := &cells[i]
			row := []string{
				string(t.ID),
				strconv.Itoa(cell.Month.YYYYMM()),
				strconv.Itoa(t.Effective.YYYYMM()),
				strconv.Itoa(t.Expiration.YYYYMM()),
				strconv.Itoa(t.LengthMonths()),
				strconv.Itoa(t.PolicyLengthMonths),
				strconv.FormatBool(t.LossOccurring),
				fmtNull(cell.ReportedWritten),
				fmtNull(cell.ReportedEarned),
				fmtNull(cell.ReportedPaidLossNet),
				fmtNull(cell.ReportedPaidALAE),
				fmtNull(cell.ReportedCaseReserve),
				fmtDec(cell.WrittenAllocated),
				fmtDec(cell.WrittenMonthly),
				fmtDec(cell.InheritedMonthly),
				fmtDec(cell.EarnedAllocated),
				fmtDec(cell.EarnedInclInherited),
				fmtDec(cell.EarnedMonthly),
				fmtDec(cell.WrittenToDate),
				fmtDec(cell.EarnedToDate),
				fmtDec(cell.UnearnedReserve),
				fmtDec(cell.UndevelopedPaid),
				fmtDec(cell.UndevelopedReported),
				fmtDec(cell.ULAE),
				fmtDec(cell.BrokerCommission),
				fmtDec(cell.Expenses),
				fmtDec(cell.NoImprovement.PaidLALAE),
				fmtDec(cell.NoImprovement.ReportedLALAE),
				fmtDec(cell.NoImprovement.CaseReserve),
				fmtDec(cell.NoImprovement.IBNR),
				fmtDec(cell.HalfImprovement.PaidLALAE),
				fmtDec(cell.HalfImprovement.ReportedLALAE),
				fmtDec(cell.HalfImprovement.CaseReserve),
				fmtDec(cell.HalfImprovement.IBNR),
				fmtDec(cell.BreakEven.PaidLALAE),
				fmtDec(cell.BreakEven.ReportedLALAE),
				fmtDec(cell.BreakEven.CaseReserve),
				fmtDec(cell.BreakEven.IBNR),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	return w.Error()
}

func fmtDec(d decimal.Decimal) string {
	return d.String()
}

func fmtNull(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}
