/*
Package refdata loads the CSV reference tables the engine consumes.

PURPOSE:
  Four tables arrive as CSV extracts maintained outside this system:

    treaty positions     - one row per treaty with all static attributes
    development factors  - (treaty, lag, paid%, reported%) rows
    key translation      - raw feed key -> organization treaty ID
    experience overrides - per (treaty, month) corrections

  Loaders validate headers strictly and fail with file:line context on the
  first malformed value. Reference data is immutable: loaders return plain
  slices/maps, nothing here writes.

FORMATS:
  Months are integer YYYYMM (e.g. 202103). Empty numeric fields in the
  override table mean "absent", which is distinct from 0 throughout the
  engine. Decimals are parsed with shopspring/decimal, so values like
  "0.125" survive exactly.
*/
package refdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/treaty-engine/treaty"
)

// =============================================================================
// CSV PLUMBING
// =============================================================================

// readTable reads a CSV file and validates its header exactly.
func readTable(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file, expected header %q", path, strings.Join(header, ","))
	}
	for i, want := range header {
		if !strings.EqualFold(strings.TrimSpace(records[0][i]), want) {
			return nil, fmt.Errorf("%s: header column %d is %q, expected %q", path, i+1, records[0][i], want)
		}
	}
	return records[1:], nil
}

func parseDecimal(path string, line int, field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s:%d: field %s: %w", path, line, field, err)
	}
	return d, nil
}

// parseNullDecimal treats the empty string as absent.
func parseNullDecimal(path string, line int, field, raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseDecimal(path, line, field, raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func parseMonth(path string, line int, field, raw string) (treaty.Month, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return treaty.Month{}, fmt.Errorf("%s:%d: field %s: %w", path, line, field, err)
	}
	m, err := treaty.ParseYYYYMM(v)
	if err != nil {
		return treaty.Month{}, fmt.Errorf("%s:%d: field %s: %w", path, line, field, err)
	}
	return m, nil
}

func parseInt(path string, line int, field, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s:%d: field %s: %w", path, line, field, err)
	}
	return v, nil
}

func parseBool(path string, line int, field, raw string) (bool, error) {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("%s:%d: field %s: %w", path, line, field, err)
	}
	return v, nil
}

// =============================================================================
// TREATY POSITIONS
// =============================================================================

var treatyHeader = []string{
	"treaty_id", "effective", "expiration", "policy_length_months",
	"total_subject_premium", "target_participation", "inherited_uepr", "lod",
	"ulae_pct", "broker_pct", "expense_pct",
	"lalae_no_improvement", "lalae_half_improvement", "lalae_break_even",
}

// LoadTreaties reads the treaty position table.
func LoadTreaties(path string) ([]treaty.Treaty, error) {
	rows, err := readTable(path, treatyHeader)
	if err != nil {
		return nil, err
	}

	treaties := make([]treaty.Treaty, 0, len(rows))
	for i, row := range rows {
		line := i + 2 // 1-based, after header
		t := treaty.Treaty{ID: treaty.TreatyID(strings.TrimSpace(row[0]))}
		if t.ID == "" {
			return nil, fmt.Errorf("%s:%d: empty treaty_id", path, line)
		}
		if t.Effective, err = parseMonth(path, line, "effective", row[1]); err != nil {
			return nil, err
		}
		if t.Expiration, err = parseMonth(path, line, "expiration", row[2]); err != nil {
			return nil, err
		}
		if t.PolicyLengthMonths, err = parseInt(path, line, "policy_length_months", row[3]); err != nil {
			return nil, err
		}
		if t.TotalSubjectPremium, err = parseDecimal(path, line, "total_subject_premium", row[4]); err != nil {
			return nil, err
		}
		if t.TargetParticipation, err = parseDecimal(path, line, "target_participation", row[5]); err != nil {
			return nil, err
		}
		if t.InheritedUEPR, err = parseDecimal(path, line, "inherited_uepr", row[6]); err != nil {
			return nil, err
		}
		if t.LossOccurring, err = parseBool(path, line, "lod", row[7]); err != nil {
			return nil, err
		}
		if t.ULAEPercent, err = parseDecimal(path, line, "ulae_pct", row[8]); err != nil {
			return nil, err
		}
		if t.BrokerPercent, err = parseDecimal(path, line, "broker_pct", row[9]); err != nil {
			return nil, err
		}
		if t.ExpensePercent, err = parseDecimal(path, line, "expense_pct", row[10]); err != nil {
			return nil, err
		}
		if t.LALAE.NoImprovement, err = parseDecimal(path, line, "lalae_no_improvement", row[11]); err != nil {
			return nil, err
		}
		if t.LALAE.HalfImprovement, err = parseDecimal(path, line, "lalae_half_improvement", row[12]); err != nil {
			return nil, err
		}
		if t.LALAE.BreakEven, err = parseDecimal(path, line, "lalae_break_even", row[13]); err != nil {
			return nil, err
		}
		treaties = append(treaties, t)
	}
	return treaties, nil
}

// =============================================================================
// DEVELOPMENT FACTORS
// =============================================================================

var factorHeader = []string{"treaty_id", "lag_months", "paid_percent", "reported_percent"}

// LoadDevelopmentFactors reads the development-factor table in raw feed
// convention (lag 0 sentinel included; the engine cleans it).
func LoadDevelopmentFactors(path string) ([]treaty.DevelopmentFactor, error) {
	rows, err := readTable(path, factorHeader)
	if err != nil {
		return nil, err
	}

	factors := make([]treaty.DevelopmentFactor, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		f := treaty.DevelopmentFactor{TreatyID: treaty.TreatyID(strings.TrimSpace(row[0]))}
		if f.LagMonths, err = parseInt(path, line, "lag_months", row[1]); err != nil {
			return nil, err
		}
		if f.LagMonths < 0 {
			return nil, fmt.Errorf("%s:%d: negative lag_months %d", path, line, f.LagMonths)
		}
		if f.PaidPercent, err = parseDecimal(path, line, "paid_percent", row[2]); err != nil {
			return nil, err
		}
		if f.ReportedPercent, err = parseDecimal(path, line, "reported_percent", row[3]); err != nil {
			return nil, err
		}
		factors = append(factors, f)
	}
	return factors, nil
}

// =============================================================================
// KEY TRANSLATION
// =============================================================================

var translationHeader = []string{"raw_key", "treaty_id"}

// LoadKeyTranslation reads the raw-feed-key to treaty-ID map.
func LoadKeyTranslation(path string) (map[string]treaty.TreatyID, error) {
	rows, err := readTable(path, translationHeader)
	if err != nil {
		return nil, err
	}

	translation := make(map[string]treaty.TreatyID, len(rows))
	for i, row := range rows {
		line := i + 2
		raw := strings.TrimSpace(row[0])
		id := treaty.TreatyID(strings.TrimSpace(row[1]))
		if raw == "" || id == "" {
			return nil, fmt.Errorf("%s:%d: empty key mapping", path, line)
		}
		if existing, dup := translation[raw]; dup && existing != id {
			return nil, fmt.Errorf("%s:%d: raw key %q maps to both %q and %q", path, line, raw, existing, id)
		}
		translation[raw] = id
	}
	return translation, nil
}

// =============================================================================
// EXPERIENCE OVERRIDES
// =============================================================================

var overrideHeader = []string{
	"treaty_id", "month", "written_premium", "earned_premium",
	"paid_loss_net", "paid_alae", "case_reserve_loss",
}

// LoadOverrides reads the optional override table. Empty numeric fields
// mean "no correction for this field".
func LoadOverrides(path string) ([]treaty.Override, error) {
	rows, err := readTable(path, overrideHeader)
	if err != nil {
		return nil, err
	}

	overrides := make([]treaty.Override, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		ov := treaty.Override{TreatyID: treaty.TreatyID(strings.TrimSpace(row[0]))}
		if ov.Month, err = parseMonth(path, line, "month", row[1]); err != nil {
			return nil, err
		}
		if ov.WrittenPremium, err = parseNullDecimal(path, line, "written_premium", row[2]); err != nil {
			return nil, err
		}
		if ov.EarnedPremium, err = parseNullDecimal(path, line, "earned_premium", row[3]); err != nil {
			return nil, err
		}
		if ov.PaidLossNet, err = parseNullDecimal(path, line, "paid_loss_net", row[4]); err != nil {
			return nil, err
		}
		if ov.PaidALAE, err = parseNullDecimal(path, line, "paid_alae", row[5]); err != nil {
			return nil, err
		}
		if ov.CaseReserveLoss, err = parseNullDecimal(path, line, "case_reserve_loss", row[6]); err != nil {
			return nil, err
		}
		overrides = append(overrides, ov)
	}
	return overrides, nil
}
