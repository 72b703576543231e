package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/agenda/internal/outline"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func parseAll(t *testing.T, text string) []*outline.Heading {
	t.Helper()
	hs := outline.ParseString(text, outline.DefaultKeywords()).Headings()
	require.NotEmpty(t, hs)
	return hs
}

func heading(t *testing.T, text string) *outline.Heading {
	t.Helper()
	return parseAll(t, text)[0]
}

func TestOnDatePointMatchesOnlyItsDay(t *testing.T) {
	t.Parallel()

	m := &Matcher{Today: day(2024, 1, 1)}
	h := heading(t, "* Review <2024-03-15 Fri>\n")

	mt, ok := m.OnDate(h, day(2024, 3, 15))
	require.True(t, ok)
	assert.Equal(t, SourceInline, mt.Source)
	assert.Equal(t, KindTimestamp, mt.Kind)

	for _, d := range []time.Time{day(2024, 3, 14), day(2024, 3, 16), day(2025, 3, 15)} {
		_, ok := m.OnDate(h, d)
		assert.False(t, ok, d.String())
	}
}

func TestOnDateRange(t *testing.T) {
	t.Parallel()

	m := &Matcher{Today: day(2024, 1, 1)}
	h := heading(t, "* Trip <2024-03-14 Thu>--<2024-03-16 Sat>\n")

	for _, d := range []int{14, 15, 16} {
		_, ok := m.OnDate(h, day(2024, 3, d))
		assert.True(t, ok, d)
	}
	_, ok := m.OnDate(h, day(2024, 3, 17))
	assert.False(t, ok)
}

func TestOnDateWeeklyScheduleRespectsCap(t *testing.T) {
	t.Parallel()

	m := &Matcher{MaxIterations: 120, Today: day(2023, 12, 1)}
	h := heading(t, "* TODO Standup\n  SCHEDULED: <2024-01-01 Mon +1w>\n")
	start := day(2024, 1, 1)

	for week := range 10 {
		mt, ok := m.OnDate(h, start.AddDate(0, 0, 7*week))
		require.True(t, ok, week)
		assert.Equal(t, SourceScheduled, mt.Source)
		assert.True(t, mt.Repeating)
	}
	_, ok := m.OnDate(h, day(2024, 1, 2))
	assert.False(t, ok, "tuesday")

	_, ok = m.OnDate(h, start.AddDate(0, 0, 7*120))
	assert.True(t, ok, "last occurrence inside the cap")
	_, ok = m.OnDate(h, start.AddDate(0, 0, 7*121))
	assert.False(t, ok, "beyond the cap")
}

func TestOnDateDailyInlineCap(t *testing.T) {
	t.Parallel()

	m := &Matcher{MaxIterations: 10, Today: day(2023, 12, 1)}
	h := heading(t, "* Pills <2024-01-01 Mon +1d>\n")

	mt, ok := m.OnDate(h, day(2024, 1, 11))
	require.True(t, ok)
	assert.Equal(t, KindOccurrence, mt.Kind)
	assert.True(t, mt.At.Equal(day(2024, 1, 11)), mt.At.String())

	_, ok = m.OnDate(h, day(2024, 1, 12))
	assert.False(t, ok)
}

func TestOnDateCarriesOverdueSchedule(t *testing.T) {
	t.Parallel()

	today := day(2024, 3, 20)
	m := &Matcher{Today: today}
	h := heading(t, "* TODO File taxes\n  SCHEDULED: <2024-03-10 Sun>\n")

	mt, ok := m.OnDate(h, today)
	require.True(t, ok)
	assert.Equal(t, KindCarried, mt.Kind)
	assert.True(t, mt.At.Equal(today), mt.At.String())

	mt, ok = m.OnDate(h, day(2024, 3, 10))
	require.True(t, ok)
	assert.Equal(t, KindTimestamp, mt.Kind)

	_, ok = m.OnDate(h, day(2024, 3, 19))
	assert.False(t, ok)
}

func TestOnDateDeadlineWarning(t *testing.T) {
	t.Parallel()

	m := &Matcher{Today: day(2024, 1, 1)}
	h := heading(t, "* TODO Submit report\n  DEADLINE: <2024-04-01 Mon>\n")

	_, ok := m.OnDate(h, day(2024, 3, 17))
	assert.False(t, ok)

	mt, ok := m.OnDate(h, day(2024, 3, 18))
	require.True(t, ok)
	assert.Equal(t, SourceDeadline, mt.Source)
	assert.Equal(t, KindWarning, mt.Kind)

	mt, ok = m.OnDate(h, day(2024, 4, 1))
	require.True(t, ok)
	assert.Equal(t, KindTimestamp, mt.Kind)

	_, ok = m.OnDate(h, day(2024, 4, 10))
	assert.True(t, ok, "overdue deadlines stay visible")

	short := heading(t, "* TODO Renew\n  DEADLINE: <2024-04-01 Mon -3d>\n")
	_, ok = m.OnDate(short, day(2024, 3, 28))
	assert.False(t, ok)
	_, ok = m.OnDate(short, day(2024, 3, 29))
	assert.True(t, ok)
}

func TestOnDatePriority(t *testing.T) {
	t.Parallel()

	m := &Matcher{Today: day(2024, 1, 1)}
	h := heading(t, "* TODO Both <2024-03-15 Fri>\n  SCHEDULED: <2024-03-15 Fri> DEADLINE: <2024-03-15 Fri>\n")

	mt, ok := m.OnDate(h, day(2024, 3, 15))
	require.True(t, ok)
	assert.Equal(t, SourceInline, mt.Source)
}

func TestInHourAndMinuteHalfOpen(t *testing.T) {
	t.Parallel()

	m := &Matcher{}
	d := day(2024, 3, 15)
	h := heading(t, "* Sync <2024-03-15 Fri 09:00-09:30>\n")

	for _, w := range [][2]int{{0, 30}, {0, 12}, {12, 24}, {24, 36}} {
		_, ok := m.InHourAndMinute(h, 9, w[0], w[1], d)
		assert.True(t, ok, w)
	}
	_, ok := m.InHourAndMinute(h, 9, 30, 42, d)
	assert.False(t, ok, "end is exclusive")
	_, ok = m.InHour(h, 8, d)
	assert.False(t, ok)

	short := heading(t, "* Chat <2024-03-15 Fri 09:00-09:24>\n")
	_, ok = m.InHourAndMinute(short, 9, 12, 24, d)
	assert.True(t, ok)
	_, ok = m.InHourAndMinute(short, 9, 24, 36, d)
	assert.False(t, ok)
}

func TestInHourDefaultSpan(t *testing.T) {
	t.Parallel()

	m := &Matcher{}
	d := day(2024, 3, 15)
	h := heading(t, "* Call <2024-03-15 Fri 10:00>\n")

	_, ok := m.InHour(h, 10, d)
	assert.True(t, ok)
	_, ok = m.InHourAndMinute(h, 10, 24, 36, d)
	assert.True(t, ok)
	_, ok = m.InHourAndMinute(h, 10, 30, 42, d)
	assert.False(t, ok)
	_, ok = m.InHour(h, 9, d)
	assert.False(t, ok)

	late := heading(t, "* Late <2024-03-15 Fri 10:50>\n")
	_, ok = m.InHour(late, 11, d)
	assert.True(t, ok, "default span crosses the hour")
}

func TestInHourRepeatingUsesOccurrenceOnDay(t *testing.T) {
	t.Parallel()

	m := &Matcher{}
	h := heading(t, "* Gym <2024-03-01 Fri 14:00 +1w>\n")

	mt, ok := m.InHour(h, 14, day(2024, 3, 15))
	require.True(t, ok)
	assert.True(t, mt.At.Equal(time.Date(2024, 3, 15, 14, 0, 0, 0, time.Local)), mt.At.String())

	_, ok = m.InHour(h, 14, day(2024, 3, 14))
	assert.False(t, ok)
}

func TestInHourIgnoresValuesOnOtherDays(t *testing.T) {
	t.Parallel()

	m := &Matcher{}
	d := day(2024, 3, 15)
	h := heading(t, "* TODO Prep <2024-03-20 Wed 08:00>\n  SCHEDULED: <2024-03-15 Fri 09:00>\n")

	_, ok := m.InHour(h, 8, d)
	assert.False(t, ok, "inline value belongs to another day")
	mt, ok := m.InHour(h, 9, d)
	require.True(t, ok)
	assert.Equal(t, SourceScheduled, mt.Source)

	overdue := heading(t, "* TODO Call\n  SCHEDULED: <2024-03-14 Thu 09:00>\n")
	_, ok = m.InHour(overdue, 9, d)
	assert.False(t, ok)
	_, ok = m.AllDay(overdue, d)
	assert.True(t, ok, "overdue timed schedule moves to the all-day part")

	far := heading(t, "* TODO Ship\n  DEADLINE: <2024-04-01 Mon 10:00>\n")
	_, ok = m.InHour(far, 10, day(2024, 1, 1))
	assert.False(t, ok)
	_, ok = m.AllDay(far, day(2024, 1, 1))
	assert.False(t, ok, "deadline is outside its warning period")

	span := heading(t, "* Trip <2024-03-14 Thu 09:00>--<2024-03-16 Sat 18:00>\n")
	_, ok = m.InHour(span, 9, d)
	assert.True(t, ok, "ranges cover their middle days")
}

func TestInHourScheduleAndDeadline(t *testing.T) {
	t.Parallel()

	m := &Matcher{}
	d := day(2024, 3, 15)

	s := heading(t, "* TODO Dentist\n  SCHEDULED: <2024-03-15 Fri 15:00-16:00>\n")
	mt, ok := m.InHour(s, 15, d)
	require.True(t, ok)
	assert.Equal(t, SourceScheduled, mt.Source)

	dl := heading(t, "* TODO Ship\n  DEADLINE: <2024-03-15 Fri 17:00>\n")
	mt, ok = m.InHour(dl, 17, d)
	require.True(t, ok)
	assert.Equal(t, SourceDeadline, mt.Source)

	dateOnly := heading(t, "* TODO Ship\n  DEADLINE: <2024-03-15 Fri>\n")
	_, ok = m.InHour(dateOnly, 0, d)
	assert.False(t, ok)
}

func TestAllDay(t *testing.T) {
	t.Parallel()

	m := &Matcher{}
	d := day(2024, 3, 20)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"date only inline", "* Holiday <2024-03-20 Wed>\n", true},
		{"timed inline", "* Call <2024-03-20 Wed 10:00>\n", false},
		{"repeating date", "* Bins <2024-03-06 Wed +1w>\n", true},
		{"repeating timed", "* Gym <2024-03-06 Wed 18:00 +1w>\n", false},
		{"date schedule", "* TODO Read\n  SCHEDULED: <2024-03-20 Wed>\n", true},
		{"timed schedule today", "* TODO Read\n  SCHEDULED: <2024-03-20 Wed 10:00>\n", false},
		{"overdue timed schedule", "* TODO Read\n  SCHEDULED: <2024-03-10 Sun 10:00>\n", true},
		{"date deadline", "* TODO Pay\n  DEADLINE: <2024-03-25 Mon>\n", true},
		{"timed deadline other day", "* TODO Pay\n  DEADLINE: <2024-03-25 Mon 12:00>\n", true},
		{"timed deadline same day", "* TODO Pay\n  DEADLINE: <2024-03-20 Wed 12:00>\n", false},
		{"timed deadline before warning", "* TODO Pay\n  DEADLINE: <2024-05-01 Wed 10:00>\n", false},
		{"timed deadline own warning", "* TODO Pay\n  DEADLINE: <2024-03-22 Fri 10:00 -1d>\n", false},
		{"nothing", "* Plain\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, ok := m.AllDay(heading(t, tt.text), d)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestInMonth(t *testing.T) {
	t.Parallel()

	m := &Matcher{}
	tests := []struct {
		name string
		text string
		ref  time.Time
		want bool
	}{
		{"previous month", "* A <2024-01-15 Mon>\n", day(2024, 2, 10), true},
		{"two months ahead", "* A <2024-01-15 Mon>\n", day(2024, 4, 1), false},
		{"december from january", "* A <2023-12-20 Wed>\n", day(2024, 1, 5), true},
		{"january from december", "* A <2024-01-10 Wed>\n", day(2023, 12, 1), true},
		{"november from january", "* A <2023-11-30 Thu>\n", day(2024, 1, 5), false},
		{"same month other year", "* A <2023-02-10 Fri>\n", day(2024, 2, 10), false},
		{"schedule", "* TODO A\n  SCHEDULED: <2024-03-01 Fri>\n", day(2024, 3, 31), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, ok := m.InMonth(heading(t, tt.text), tt.ref)
			assert.Equal(t, tt.want, ok)
		})
	}

	rep := heading(t, "* Rent <2020-01-01 Wed +1m>\n")
	mt, ok := m.InMonth(rep, day(2024, 3, 10))
	require.True(t, ok)
	assert.True(t, mt.Repeating)
	assert.True(t, mt.At.Equal(day(2024, 4, 1)), mt.At.String())
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	assert.True(t, Overlaps(540, 570, 564, 576))
	assert.False(t, Overlaps(540, 564, 564, 576))
	assert.False(t, Overlaps(576, 600, 564, 576))
	assert.True(t, Overlaps(500, 700, 564, 576))
}

func TestMatcherDefaults(t *testing.T) {
	t.Parallel()

	m := &Matcher{}
	assert.Equal(t, 120, m.maxIterations())
	assert.Equal(t, 14, m.warning().N)
}
