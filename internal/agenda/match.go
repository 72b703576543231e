package agenda

import (
	"time"

	"github.com/twiced-technology-gmbh/agenda/internal/config"
	"github.com/twiced-technology-gmbh/agenda/internal/orgdate"
	"github.com/twiced-technology-gmbh/agenda/internal/outline"
)

const (
	minutesPerHour = 60
	// defaultSpan is the length assumed for a timed value without an end.
	defaultSpan = 30 * time.Minute
)

// Source names the heading field a match came from.
type Source string

// Match sources, in priority order.
const (
	SourceInline    Source = "inline"
	SourceScheduled Source = "scheduled"
	SourceDeadline  Source = "deadline"
)

// Kind tells how a match was reached.
type Kind string

// Match kinds.
const (
	// KindTimestamp is a direct hit on the stored value.
	KindTimestamp Kind = "timestamp"
	// KindOccurrence is a hit on a later occurrence of a repeating value.
	KindOccurrence Kind = "occurrence"
	// KindCarried is a past schedule carried forward to today.
	KindCarried Kind = "carried"
	// KindWarning is a deadline shown inside its warning window or overdue.
	KindWarning Kind = "warning"
)

// Match is the answer to a temporal query: which timestamp of the heading
// matched and at which instant.
type Match struct {
	Kind      Kind              `json:"kind"`
	Source    Source            `json:"source"`
	At        time.Time         `json:"at"`
	Timestamp orgdate.Timestamp `json:"timestamp"`
	Repeating bool              `json:"repeating,omitempty"`
}

// Timed reports whether the matched instant carries a time of day.
func (m Match) Timed() bool {
	return m.Timestamp.HasTime() && m.Kind != KindCarried
}

// Span returns the matched interval. Timed values without an end last
// thirty minutes.
func (m Match) Span() (time.Time, time.Time) {
	start := m.At
	ts := m.Timestamp
	if ts.HasEnd() && ts.EndTimed {
		return start, start.Add(ts.End.Sub(ts.Start))
	}
	return start, start.Add(defaultSpan)
}

// Matcher runs the temporal queries. The zero value uses the defaults.
type Matcher struct {
	// MaxIterations caps every forward walk of a recurrence.
	MaxIterations int
	// DefaultWarning is the lead time of deadlines without a warning cookie.
	DefaultWarning orgdate.Duration
	// IncludeInactive also considers inactive inline timestamps.
	IncludeInactive bool
	// Today overrides the current date.
	Today time.Time
}

// NewMatcher builds a Matcher from the agenda settings.
func NewMatcher(cfg config.AgendaConfig) *Matcher {
	return &Matcher{
		MaxIterations:   cfg.MaxScheduledIterations,
		DefaultWarning:  cfg.DeadlineWarning,
		IncludeInactive: cfg.IncludeInactive,
	}
}

func (m *Matcher) maxIterations() int {
	if m.MaxIterations <= 0 {
		return config.DefaultMaxScheduledIterations
	}
	return m.MaxIterations
}

func (m *Matcher) warning() orgdate.Duration {
	if m.DefaultWarning.IsZero() {
		return config.DefaultDeadlineWarning
	}
	return m.DefaultWarning
}

func (m *Matcher) today() time.Time {
	if m.Today.IsZero() {
		return orgdate.DateOf(time.Now())
	}
	return orgdate.DateOf(m.Today)
}

func (m *Matcher) inline(h *outline.Heading) []orgdate.Timestamp {
	sel := outline.ActiveAny
	sel.Inactive = m.IncludeInactive
	return h.Timestamps(sel)
}

// occursOn walks ts forward toward day, giving up after MaxIterations steps.
func (m *Matcher) occursOn(ts orgdate.Timestamp, day time.Time) (time.Time, bool) {
	occ := ts.Occurrences(day, m.maxIterations())
	if n := len(occ); n > 0 && orgdate.SameDay(occ[n-1], day) {
		return occ[n-1], true
	}
	return time.Time{}, false
}

func recurring(src Source, ts orgdate.Timestamp, at time.Time) Match {
	kind := KindOccurrence
	if at.Equal(ts.Start) {
		kind = KindTimestamp
	}
	return Match{Kind: kind, Source: src, At: at, Timestamp: ts, Repeating: true}
}

func direct(src Source, ts orgdate.Timestamp) Match {
	return Match{Kind: KindTimestamp, Source: src, At: ts.Start, Timestamp: ts, Repeating: ts.IsRepeating()}
}

// DeadlineVisible reports whether a deadline shows on day: from its warning
// start onward.
func (m *Matcher) DeadlineVisible(deadline orgdate.Timestamp, day time.Time) bool {
	if deadline.IsZero() {
		return false
	}
	start := orgdate.DateOf(deadline.WarningStart(m.warning()))
	return !start.After(orgdate.DateOf(day))
}

// OnDate reports whether h occurs on the calendar day of day. Inline
// timestamps win over the schedule, which wins over the deadline.
func (m *Matcher) OnDate(h *outline.Heading, day time.Time) (Match, bool) {
	if h == nil {
		return Match{}, false
	}
	day = orgdate.DateOf(day)

	for _, ts := range m.inline(h) {
		if ts.IsRepeating() {
			if at, ok := m.occursOn(ts, day); ok {
				return recurring(SourceInline, ts, at), true
			}
			continue
		}
		if ts.OverlapsDay(day) {
			return direct(SourceInline, ts), true
		}
	}

	if s := h.Scheduled; !s.IsZero() {
		if s.IsRepeating() {
			if at, ok := m.occursOn(s, day); ok {
				return recurring(SourceScheduled, s, at), true
			}
		} else {
			today := m.today()
			if orgdate.SameDay(s.Start, day) {
				return direct(SourceScheduled, s), true
			}
			if orgdate.DateOf(s.Start).Before(today) && day.Equal(today) {
				return Match{Kind: KindCarried, Source: SourceScheduled, At: today, Timestamp: s}, true
			}
		}
	}

	if d := h.Deadline; !d.IsZero() {
		if m.DeadlineVisible(d, day) {
			kind := KindWarning
			if orgdate.SameDay(d.Start, day) {
				kind = KindTimestamp
			}
			return Match{Kind: kind, Source: SourceDeadline, At: d.Start, Timestamp: d, Repeating: d.IsRepeating()}, true
		}
		if d.IsRepeating() {
			if at, ok := m.occursOn(d, day); ok {
				return recurring(SourceDeadline, d, at), true
			}
		}
	}
	return Match{}, false
}

// AllDay reports whether h belongs to the all-day part of day: its
// deciding timestamp has no time of day, the schedule is overdue, or a
// timed deadline is inside its warning period on a day other than its own.
func (m *Matcher) AllDay(h *outline.Heading, day time.Time) (Match, bool) {
	if h == nil {
		return Match{}, false
	}
	day = orgdate.DateOf(day)

	for _, ts := range m.inline(h) {
		if ts.IsRepeating() {
			if next, ok := ts.NextFrom(day); ok && !ts.HasTime() {
				return recurring(SourceInline, ts, next), true
			}
			continue
		}
		if ts.HasEnd() || ts.HasTime() {
			continue
		}
		return direct(SourceInline, ts), true
	}

	if s := h.Scheduled; !s.IsZero() {
		if s.IsRepeating() {
			if next, ok := s.NextFrom(day); ok && !s.HasTime() {
				return recurring(SourceScheduled, s, next), true
			}
		} else if (!s.HasEnd() && !s.HasTime()) || s.BeforeDay(day) {
			return direct(SourceScheduled, s), true
		}
	}

	if d := h.Deadline; !d.IsZero() {
		if !d.HasTime() || (m.DeadlineVisible(d, day) && !orgdate.SameDay(d.Start, day)) {
			return Match{Kind: KindWarning, Source: SourceDeadline, At: d.Start, Timestamp: d, Repeating: d.IsRepeating()}, true
		}
	}
	return Match{}, false
}

// InHour reports whether a timed value of h overlaps [hour, hour+1) on day.
func (m *Matcher) InHour(h *outline.Heading, hour int, day time.Time) (Match, bool) {
	return m.InHourAndMinute(h, hour, 0, minutesPerHour, day)
}

// InHourAndMinute reports whether a timed value of h overlaps the half-open
// window [hour:m0, hour:m1) in minutes since midnight. Repeating values use
// their occurrence on day.
func (m *Matcher) InHourAndMinute(h *outline.Heading, hour, m0, m1 int, day time.Time) (Match, bool) {
	if h == nil {
		return Match{}, false
	}
	day = orgdate.DateOf(day)
	ws, we := hour*minutesPerHour+m0, hour*minutesPerHour+m1

	try := func(src Source, ts orgdate.Timestamp) (Match, bool) {
		mt := direct(src, ts)
		if ts.IsRepeating() {
			next, ok := ts.NextFrom(day)
			if !ok || !orgdate.SameDay(next, day) {
				return Match{}, false
			}
			mt = recurring(src, ts, next)
		} else if !ts.OverlapsDay(day) {
			return Match{}, false
		}
		s, e := mt.Span()
		if Overlaps(minuteOfDay(s), minuteOfDay(s)+int(e.Sub(s)/time.Minute), ws, we) {
			return mt, true
		}
		return Match{}, false
	}

	for _, ts := range m.inline(h) {
		if !ts.HasTime() {
			continue
		}
		if mt, ok := try(SourceInline, ts); ok {
			return mt, true
		}
	}
	if s := h.Scheduled; s.HasTime() {
		if mt, ok := try(SourceScheduled, s); ok {
			return mt, true
		}
	}
	if d := h.Deadline; d.HasTime() {
		if mt, ok := try(SourceDeadline, d); ok {
			return mt, true
		}
	}
	return Match{}, false
}

// Overlaps reports whether [s, e) and [ws, we) intersect.
func Overlaps(s, e, ws, we int) bool {
	return !(s >= we || e <= ws)
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*minutesPerHour + t.Minute()
}

// InMonth reports whether h has a date in the three-month window around
// the month of ref. A repeating inline value uses its next occurrence from
// ref; the schedule counts when its start, or next occurrence for a
// repeating schedule, falls in the window.
func (m *Matcher) InMonth(h *outline.Heading, ref time.Time) (Match, bool) {
	if h == nil {
		return Match{}, false
	}
	for _, ts := range m.inline(h) {
		if ts.IsRepeating() {
			if next, ok := ts.NextFrom(orgdate.DateOf(ref)); ok && inMonthWindow(next, ref) {
				return recurring(SourceInline, ts, next), true
			}
			continue
		}
		if inMonthWindow(ts.Start, ref) {
			return direct(SourceInline, ts), true
		}
	}
	if s := h.Scheduled; !s.IsZero() {
		if inMonthWindow(s.Start, ref) {
			return direct(SourceScheduled, s), true
		}
		if next, ok := s.NextFrom(orgdate.DateOf(ref)); ok && inMonthWindow(next, ref) {
			return recurring(SourceScheduled, s, next), true
		}
	}
	return Match{}, false
}

// inMonthWindow reports whether t falls in the month of ref or one of its
// neighbours, across year boundaries.
func inMonthWindow(t, ref time.Time) bool {
	const monthsPerYear = 12
	idx := func(x time.Time) int { return x.Year()*monthsPerYear + int(x.Month()) }
	diff := idx(t) - idx(ref)
	return diff >= -1 && diff <= 1
}
