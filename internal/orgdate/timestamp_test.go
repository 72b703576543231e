package orgdate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasOverlapSymmetric(t *testing.T) {
	t.Parallel()

	values := []Timestamp{
		NewDate(2024, 3, 15),
		NewDate(2024, 3, 16),
		NewTime(2024, 3, 15, 9, 0),
		NewTime(2024, 3, 15, 9, 0).WithEnd(local(2024, 3, 15, 10, 0), true),
		NewDate(2024, 3, 10).WithEnd(local(2024, 3, 15, 0, 0), false),
		NewDate(2024, 3, 12).WithEnd(local(2024, 3, 20, 0, 0), false),
		NewDate(2024, 3, 1).WithEnd(local(2024, 3, 31, 0, 0), false),
		NewDate(2024, 4, 1).WithEnd(local(2024, 4, 2, 0, 0), false),
		{},
	}

	for _, a := range values {
		for _, b := range values {
			assert.Equal(t, a.HasOverlap(b), b.HasOverlap(a), "%v vs %v", a, b)
		}
	}
}

func TestHasOverlap(t *testing.T) {
	t.Parallel()

	r := NewDate(2012, 2, 10).WithEnd(local(2012, 2, 15, 0, 0), false)

	assert.True(t, r.HasOverlap(NewDate(2012, 2, 11)))
	assert.False(t, r.HasOverlap(NewDate(2012, 2, 20)))
	assert.True(t, r.HasOverlap(NewDate(2012, 2, 11).WithEnd(local(2012, 2, 20, 0, 0), false)))
	assert.True(t, r.HasOverlap(NewDate(2012, 2, 1).WithEnd(local(2012, 2, 28, 0, 0), false)), "enclosing range")
	assert.True(t, NewTime(2024, 3, 15, 9, 0).HasOverlap(NewTime(2024, 3, 15, 17, 0)), "points on the same day")
	assert.True(t, r.OverlapsDay(local(2012, 2, 15, 13, 0)))
}

func TestBeforeAfter(t *testing.T) {
	t.Parallel()

	ts := NewTime(2024, 3, 15, 9, 0)
	assert.True(t, ts.After(local(2024, 3, 15, 8, 0)))
	assert.False(t, ts.After(local(2024, 3, 15, 10, 0)))
	assert.True(t, ts.Before(local(2024, 3, 15, 10, 0)))

	day := NewDate(2024, 3, 15)
	assert.False(t, day.Before(local(2024, 3, 15, 10, 0)), "date-only compares by date")
	assert.False(t, day.After(local(2024, 3, 15, 0, 0)))
	assert.True(t, day.BeforeDay(local(2024, 3, 16, 0, 0)))
	assert.True(t, ts.AfterDay(local(2024, 3, 14, 23, 0)))

	r := day.WithEnd(local(2024, 3, 18, 0, 0), false)
	assert.False(t, r.Before(local(2024, 3, 17, 12, 0)), "range uses its end")
}

func TestDurationChecks(t *testing.T) {
	t.Parallel()

	now := local(2024, 3, 15, 12, 0)
	ts := NewDate(2024, 3, 18)

	assert.True(t, ts.BeforeDuration(Days(3), now))
	assert.False(t, ts.BeforeDuration(Days(2), now))
	assert.True(t, NewDate(2024, 3, 14).AfterDuration(Days(2), now))
	assert.False(t, NewDate(2024, 3, 10).AfterDuration(Days(2), now))
}

func TestMonthArithmetic(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name  string
		start Timestamp
		n     int
		want  time.Time
	}{
		{"plain forward", NewDate(2024, 3, 15), 1, local(2024, 4, 15, 0, 0)},
		{"year wrap", NewDate(2024, 12, 15), 1, local(2025, 1, 15, 0, 0)},
		{"clamp leap february", NewDate(2024, 1, 31), 1, local(2024, 2, 29, 0, 0)},
		{"clamp february", NewDate(2023, 1, 31), 1, local(2023, 2, 28, 0, 0)},
		{"clamp backward", NewDate(2024, 3, 31), -1, local(2024, 2, 29, 0, 0)},
		{"keeps time", NewTime(2024, 5, 31, 9, 15), -1, local(2024, 4, 30, 9, 15)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.start.AddMonths(tt.n).Start)
		})
	}
}

func TestMonthAddSubCancels(t *testing.T) {
	t.Parallel()

	for d := 1; d <= 28; d++ {
		ts := NewDate(2024, 1, d)
		assert.Equal(t, ts.Start, ts.AddMonths(1).Sub(Duration{N: 1, Unit: Month}).Start)
	}

	// Clamped days do not come back.
	ts := NewDate(2024, 1, 31)
	assert.Equal(t, local(2024, 1, 29, 0, 0), ts.AddMonths(1).AddMonths(-1).Start)
}

func TestAddShiftsRange(t *testing.T) {
	t.Parallel()

	ts := NewTime(2024, 3, 15, 9, 0).WithEnd(local(2024, 3, 15, 10, 0), true)
	moved := ts.AddDays(2).AddHours(1).AddMinutes(30)

	assert.Equal(t, local(2024, 3, 17, 10, 30), moved.Start)
	assert.Equal(t, local(2024, 3, 17, 11, 30), moved.End)
	assert.Equal(t, local(2024, 3, 15, 9, 0), ts.Start, "receiver unchanged")
}

func TestWarningStart(t *testing.T) {
	t.Parallel()

	d := NewDate(2024, 4, 1)
	assert.Equal(t, local(2024, 3, 18, 0, 0), d.WarningStart(Days(14)))
	assert.Equal(t, local(2024, 3, 29, 0, 0), d.WithWarning(Days(3)).WarningStart(Days(14)))
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		in   string
		want Duration
		err  bool
	}{
		{"3d", Duration{3, Day}, false},
		{"2w", Duration{2, Week}, false},
		{"90min", Duration{90, Minute}, false},
		{"1:30", Duration{90, Minute}, false},
		{"-1m", Duration{-1, Month}, false},
		{"soon", Duration{}, true},
	} {
		got, err := ParseDuration(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
