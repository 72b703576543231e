package orgdate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextAfterAndFrom(t *testing.T) {
	t.Parallel()

	weekly := NewTime(2024, 1, 1, 10, 0).WithRepeat(1, Week)

	next, ok := weekly.NextAfter(local(2024, 1, 1, 10, 0))
	require.True(t, ok)
	assert.Equal(t, local(2024, 1, 8, 10, 0), next, "exclusive")

	next, ok = weekly.NextFrom(local(2024, 1, 1, 10, 0))
	require.True(t, ok)
	assert.Equal(t, local(2024, 1, 1, 10, 0), next, "inclusive")

	next, ok = weekly.NextFrom(local(2024, 1, 9, 0, 0))
	require.True(t, ok)
	assert.Equal(t, local(2024, 1, 15, 10, 0), next)

	_, ok = NewDate(2024, 1, 1).NextAfter(local(2024, 1, 1, 0, 0))
	assert.False(t, ok, "no repeater")
}

func TestRecurrenceUnits(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		unit     Unit
		interval int
		want     int
	}{
		{Day, 3, 4},
		{Week, 2, 15},
		{Month, 1, 1},
	} {
		ts := NewDate(2024, 1, 1).WithRepeat(tt.interval, tt.unit)
		next, ok := ts.NextAfter(local(2024, 1, 1, 0, 0))
		require.True(t, ok, string(tt.unit))
		if tt.unit == Month {
			assert.Equal(t, local(2024, 2, 1, 0, 0), next)
			continue
		}
		assert.Equal(t, tt.want, next.Day(), string(tt.unit))
	}

	yearly := NewDate(2024, 2, 10).WithRepeat(1, Year)
	next, ok := yearly.NextAfter(local(2024, 6, 1, 0, 0))
	require.True(t, ok)
	assert.Equal(t, local(2025, 2, 10, 0, 0), next)
}

func TestOccurrencesRespectsLimit(t *testing.T) {
	t.Parallel()

	weekly := NewDate(2024, 1, 1).WithRepeat(1, Week)

	got := weekly.Occurrences(local(2024, 1, 29, 0, 0), 120)
	assert.Len(t, got, 5)

	capped := weekly.Occurrences(local(2030, 1, 1, 0, 0), 10)
	assert.Len(t, capped, 11)

	assert.Len(t, NewDate(2024, 1, 1).Occurrences(local(2024, 1, 1, 0, 0), 10), 1)
	assert.Empty(t, NewDate(2024, 2, 1).Occurrences(local(2024, 1, 1, 0, 0), 10))
}
