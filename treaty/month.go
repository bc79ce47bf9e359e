package treaty

import (
	"fmt"
	"time"
)

// =============================================================================
// MONTH - Calendar-month abstraction (the engine IS a monthly system)
// =============================================================================

// Month is a calendar month with no day component. Every temporal computation
// in the engine (allocation windows, earning lags, development lags) is an
// integer month difference, so Month is the only time type the engine uses.
type Month struct {
	Year int
	Mon  time.Month
}

// Constructors
func NewMonth(year int, mon time.Month) Month {
	return Month{Year: year, Mon: mon}
}

// MonthOf truncates a time to its calendar month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Mon: t.Month()}
}

// ParseYYYYMM decodes an integer like 202103 into a Month.
func ParseYYYYMM(v int) (Month, error) {
	year := v / 100
	mon := v % 100
	if year < 1900 || year > 2200 || mon < 1 || mon > 12 {
		return Month{}, fmt.Errorf("invalid YYYYMM month %d", v)
	}
	return Month{Year: year, Mon: time.Month(mon)}, nil
}

// index is the serial month number used for all difference arithmetic.
func (m Month) index() int { return m.Year*12 + int(m.Mon) - 1 }

// MonthsBetween returns the integer month difference to - from,
// sign-preserving (negative when to precedes from).
func MonthsBetween(from, to Month) int { return to.index() - from.index() }

// Arithmetic
func (m Month) AddMonths(n int) Month {
	i := m.index() + n
	year := i / 12
	mon := i%12 + 1
	if i < 0 && i%12 != 0 {
		// Go integer division truncates toward zero; normalize for
		// pre-epoch indexes so Mon stays in 1..12.
		year--
		mon += 12
	}
	return Month{Year: year, Mon: time.Month(mon)}
}

// Comparison
func (m Month) Before(o Month) bool        { return m.index() < o.index() }
func (m Month) After(o Month) bool         { return m.index() > o.index() }
func (m Month) Equal(o Month) bool         { return m.index() == o.index() }
func (m Month) BeforeOrEqual(o Month) bool { return m.index() <= o.index() }
func (m Month) AfterOrEqual(o Month) bool  { return m.index() >= o.index() }
func (m Month) IsZero() bool               { return m.Year == 0 && m.Mon == 0 }

// YYYYMM encodes the month as an integer like 202103, the wire format used
// by the export table.
func (m Month) YYYYMM() int { return m.Year*100 + int(m.Mon) }

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Mon))
}

// MonthsInRange returns every month from from through to, inclusive.
func MonthsInRange(from, to Month) []Month {
	if to.Before(from) {
		return nil
	}
	months := make([]Month, 0, MonthsBetween(from, to)+1)
	for cur := from; cur.BeforeOrEqual(to); cur = cur.AddMonths(1) {
		months = append(months, cur)
	}
	return months
}
