package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"dia", "semana", "mes", "ano"} {
		p, err := ParsePeriod(valid)
		require.NoError(t, err)
		assert.Equal(t, Period(valid), p)
	}

	for _, invalid := range []string{"", "week", "Dia", "mês"} {
		_, err := ParsePeriod(invalid)
		assert.ErrorIs(t, err, ErrInvalidPeriod, invalid)
	}
}

func TestPeriod_Range(t *testing.T) {
	t.Parallel()

	saoPaulo := time.FixedZone("BRT", -3*60*60)

	// Wednesday
	day := time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		period    Period
		loc       *time.Location
		wantStart time.Time
		wantEnd   time.Time
	}{
		{PeriodDay, time.UTC, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC)},
		{PeriodWeek, time.UTC, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)},
		{PeriodMonth, time.UTC, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodYear, time.UTC, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodDay, saoPaulo, time.Date(2024, 5, 15, 0, 0, 0, 0, saoPaulo), time.Date(2024, 5, 16, 0, 0, 0, 0, saoPaulo)},
	}

	for _, tc := range tests {
		t.Run(string(tc.period)+"/"+tc.loc.String(), func(t *testing.T) {
			t.Parallel()
			start, end, err := tc.period.Range(day, tc.loc)
			require.NoError(t, err)
			assert.True(t, tc.wantStart.Equal(start), "start %s", start)
			assert.True(t, tc.wantEnd.Equal(end), "end %s", end)
		})
	}

	t.Run("sunday belongs to the week that started on monday", func(t *testing.T) {
		t.Parallel()
		sunday := time.Date(2024, 5, 19, 23, 0, 0, 0, time.UTC)
		start, _, err := PeriodWeek.Range(sunday, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, time.Monday, start.Weekday())
		assert.Equal(t, 13, start.Day())
	})

	t.Run("unknown period", func(t *testing.T) {
		t.Parallel()
		_, _, err := Period("x").Range(day, time.UTC)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})
}

func TestMonthRange(t *testing.T) {
	t.Parallel()

	start, end, err := MonthRange(2024, 2, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), end)

	_, _, err = MonthRange(2024, 0, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidMonth)
	_, _, err = MonthRange(2024, 13, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidMonth)
	_, _, err = MonthRange(1969, 5, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidYear)
	assert.True(t, IsValidationError(err))
}

func TestSecondsToMinutes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(0), SecondsToMinutes(59))
	assert.Equal(t, int64(60), SecondsToMinutes(3600))
	assert.Equal(t, int64(150), SecondsToMinutes(9000))
}
