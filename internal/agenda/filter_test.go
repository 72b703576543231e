package agenda

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/agenda/internal/outline"
)

func newFilter(t *testing.T, opts FilterOptions) *Filter {
	t.Helper()
	f, warnings := NewFilter(opts, DefaultWorkflow())
	require.Empty(t, warnings)
	return f
}

func TestParseFilterSpec(t *testing.T) {
	t.Parallel()

	got := ParseFilterSpec("+work -private |a |b plain +")
	want := FilterSpec{
		Include: []string{"work", "plain"},
		Exclude: []string{"private"},
		OneOf:   []string{"a", "b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseFilterSpec mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "+work +plain -private |a |b", got.String())
	assert.True(t, ParseFilterSpec("  ").IsZero())
}

func TestFilterSpecMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec string
		set  []string
		want bool
	}{
		{"+work -private", []string{"work", "urgent"}, true},
		{"+work -private", []string{"work", "private"}, false},
		{"+work -private", []string{"urgent"}, false},
		{"|home |garden", []string{"garden"}, true},
		{"|home |garden", []string{"work"}, false},
		{"", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseFilterSpec(tt.spec).Matches(tt.set))
		})
	}
}

func TestFilterTags(t *testing.T) {
	t.Parallel()

	f := newFilter(t, FilterOptions{Tags: ParseFilterSpec("+work -private")})
	now := day(2024, 3, 15)

	assert.True(t, f.Match(heading(t, "* Task :work:urgent:\n"), now))
	assert.False(t, f.Match(heading(t, "* Task :work:private:\n"), now))

	// Tags are inherited from parents.
	hs := parseAll(t, "* Area :work:\n** Child\n")
	assert.True(t, f.Match(hs[1], now))
}

func TestFilterPriorities(t *testing.T) {
	t.Parallel()

	f := newFilter(t, FilterOptions{Priorities: ParseFilterSpec("|A |B")})
	now := day(2024, 3, 15)

	assert.True(t, f.Match(heading(t, "* TODO [#A] Urgent\n"), now))
	assert.True(t, f.Match(heading(t, "* TODO [#B] Soon\n"), now))
	assert.False(t, f.Match(heading(t, "* TODO [#C] Later\n"), now))
	assert.False(t, f.Match(heading(t, "* TODO Whenever\n"), now))
}

func TestFilterStatesAreRegexps(t *testing.T) {
	t.Parallel()

	f := newFilter(t, FilterOptions{States: ParseFilterSpec("+^(TODO|NEXT)$")})
	now := day(2024, 3, 15)

	assert.True(t, f.Match(heading(t, "* TODO A\n"), now))
	assert.True(t, f.Match(heading(t, "* NEXT B\n"), now))
	assert.False(t, f.Match(heading(t, "* WAITING C\n"), now))
	assert.False(t, f.Match(heading(t, "* D\n"), now))

	ex := newFilter(t, FilterOptions{States: ParseFilterSpec("-DONE")})
	assert.False(t, ex.Match(heading(t, "* DONE E\n"), now))
	assert.True(t, ex.Match(heading(t, "* F\n"), now))
}

func TestFilterInvalidStatePatternWarns(t *testing.T) {
	t.Parallel()

	f, warnings := NewFilter(FilterOptions{States: ParseFilterSpec("+( +TODO")}, DefaultWorkflow())
	require.Len(t, warnings, 1)
	assert.Equal(t, "(", warnings[0].Token)
	assert.Contains(t, warnings[0].Error(), "statefilter")

	now := day(2024, 3, 15)
	assert.True(t, f.Match(heading(t, "* TODO A\n"), now), "valid patterns still apply")
	assert.False(t, f.Match(heading(t, "* DONE B\n"), now))
}

func TestFilterDuration(t *testing.T) {
	t.Parallel()

	now := day(2024, 3, 10)
	scheduled := heading(t, "* TODO Soon\n  SCHEDULED: <2024-03-12 Tue>\n")
	bare := heading(t, "* TODO Someday\n")
	closed := heading(t, "* DONE Finished\n  CLOSED: [2024-03-01 Fri 10:00]\n")

	tests := []struct {
		name string
		spec string
		h    string
		want bool
	}{
		{"within three days", "+3d", "scheduled", true},
		{"not within a day", "+1d", "scheduled", false},
		{"bare heading fails a before bound", "+3d", "bare", false},
		{"closed too long ago", "-1w", "closed", false},
		{"closed within two weeks", "-2w", "closed", true},
	}
	byName := map[string]*outline.Heading{"scheduled": scheduled, "bare": bare, "closed": closed}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec, warnings := ParseDurationSpec("durationfilter", tt.spec)
			require.Empty(t, warnings)
			f := newFilter(t, FilterOptions{Duration: spec})
			assert.Equal(t, tt.want, f.Match(byName[tt.h], now))
		})
	}
}

func TestParseDurationSpecWarnings(t *testing.T) {
	t.Parallel()

	spec, warnings := ParseDurationSpec("durationfilter", "+3d |2d soon -1w")
	assert.Len(t, spec.Before, 1)
	assert.Len(t, spec.After, 1)
	require.Len(t, warnings, 2)
	assert.Equal(t, "|2d", warnings[0].Token)
	assert.Equal(t, "soon", warnings[1].Token)
}

func TestFilterDoneDateRange(t *testing.T) {
	t.Parallel()

	h := heading(t, "* DONE Shipped\n  CLOSED: [2024-03-10 Sun 18:00]\n")
	open := heading(t, "* TODO Open\n")
	now := day(2024, 3, 15)

	tests := []struct {
		spec string
		want bool
	}{
		{">=2024-03-10", true},
		{">2024-03-10", true},
		{">2024-03-11", false},
		{"<=2024-03-10", true},
		{"<2024-03-10", false},
		{">=20240301 <20240401", true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			t.Parallel()
			r, warnings := ParseDateRange("datefilter", tt.spec)
			require.Empty(t, warnings)
			f := newFilter(t, FilterOptions{Done: r})
			assert.Equal(t, tt.want, f.Match(h, now))
			assert.False(t, f.Match(open, now), "headings without CLOSED fail")
		})
	}

	_, warnings := ParseDateRange("datefilter", "bogus =>2024-01-01")
	assert.Len(t, warnings, 2)
}

func TestFilterClock(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
	today := heading(t, "* Work\n  :LOGBOOK:\n  CLOCK: [2024-03-15 Fri 09:00]--[2024-03-15 Fri 10:00] =>  1:00\n  :END:\n")
	old := heading(t, "* Work\n  :LOGBOOK:\n  CLOCK: [2024-03-01 Fri 09:00]--[2024-03-01 Fri 10:00] =>  1:00\n  :END:\n")
	none := heading(t, "* Idle\n")

	f := newFilter(t, FilterOptions{ClockedToday: true})
	assert.True(t, f.Match(today, now))
	assert.False(t, f.Match(old, now))
	assert.False(t, f.Match(none, now))

	spec, warnings := ParseDurationSpec("clockfilter", "-1w")
	require.Empty(t, warnings)
	recent := newFilter(t, FilterOptions{ClockFilter: true, Clock: spec})
	assert.True(t, recent.Match(today, now))
	assert.False(t, recent.Match(old, now))
	assert.False(t, recent.Match(none, now))
}

func TestFilterPresence(t *testing.T) {
	t.Parallel()

	now := day(2024, 3, 15)
	hs := parseAll(t, "* TODO Parent\n  DEADLINE: <2024-04-01 Mon>\n** TODO Child\n")
	parent, child := hs[0], hs[1]

	tests := []struct {
		name   string
		opts   FilterOptions
		parent bool
		child  bool
	}{
		{"has deadline", FilterOptions{Has: Presence{Deadline: true}}, true, false},
		{"no deadline", FilterOptions{No: Presence{Deadline: true}}, false, true},
		{"has child tasks", FilterOptions{Has: Presence{ChildTasks: true}}, true, false},
		{"has todo ancestor", FilterOptions{Has: Presence{TodoAncestor: true}}, false, true},
		{"no schedule", FilterOptions{No: Presence{Schedule: true}}, true, true},
		{"has close", FilterOptions{Has: Presence{Close: true}}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFilter(t, tt.opts)
			assert.Equal(t, tt.parent, f.Match(parent, now), "parent")
			assert.Equal(t, tt.child, f.Match(child, now), "child")
		})
	}
}

func TestFilterApplyKeepsOrder(t *testing.T) {
	t.Parallel()

	hs := parseAll(t, "* TODO A :x:\n* TODO B\n* TODO C :x:\n")
	f := newFilter(t, FilterOptions{Tags: ParseFilterSpec("x")})
	got := f.Apply(hs, day(2024, 1, 1))
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "C", got[1].Title)
}
