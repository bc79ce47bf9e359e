package treaty

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthsBetween_SignPreserving(t *testing.T) {
	a := NewMonth(2021, time.March)
	b := NewMonth(2022, time.February)

	assert.Equal(t, 11, MonthsBetween(a, b))
	assert.Equal(t, -11, MonthsBetween(b, a))
	assert.Equal(t, 0, MonthsBetween(a, a))

	// Year boundaries are just another month step.
	assert.Equal(t, 1, MonthsBetween(NewMonth(2020, time.December), NewMonth(2021, time.January)))
}

func TestAddMonths(t *testing.T) {
	m := NewMonth(2021, time.March)

	assert.Equal(t, NewMonth(2021, time.April), m.AddMonths(1))
	assert.Equal(t, NewMonth(2022, time.March), m.AddMonths(12))
	assert.Equal(t, NewMonth(2020, time.December), m.AddMonths(-3))
	assert.Equal(t, m, m.AddMonths(0))

	// Round trip across many offsets.
	for _, n := range []int{-250, -13, -1, 1, 13, 250} {
		assert.Equal(t, n, MonthsBetween(m, m.AddMonths(n)), "offset %d", n)
	}
}

func TestComparisons(t *testing.T) {
	a := NewMonth(2021, time.March)
	b := NewMonth(2021, time.April)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.AfterOrEqual(a))
	assert.False(t, a.Equal(b))
	assert.True(t, Month{}.IsZero())
	assert.False(t, a.IsZero())
}

func TestYYYYMM_RoundTrip(t *testing.T) {
	m := NewMonth(2021, time.March)
	assert.Equal(t, 202103, m.YYYYMM())

	parsed, err := ParseYYYYMM(202103)
	require.NoError(t, err)
	assert.Equal(t, m, parsed)

	for _, bad := range []int{0, 202113, 202100, 189901, 20211} {
		_, err := ParseYYYYMM(bad)
		assert.Error(t, err, "ParseYYYYMM(%d)", bad)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "2021-03", NewMonth(2021, time.March).String())
	assert.Equal(t, "2070-12", NewMonth(2070, time.December).String())
}

func TestMonthsInRange(t *testing.T) {
	months := MonthsInRange(NewMonth(2020, time.November), NewMonth(2021, time.February))
	require.Len(t, months, 4)
	assert.Equal(t, NewMonth(2020, time.November), months[0])
	assert.Equal(t, NewMonth(2021, time.February), months[3])

	assert.Nil(t, MonthsInRange(NewMonth(2021, time.February), NewMonth(2021, time.January)))
	assert.Len(t, MonthsInRange(NewMonth(2021, time.March), NewMonth(2021, time.March)), 1)
}
