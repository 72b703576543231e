// Package orgdate parses and manipulates org-mode timestamps: active and
// inactive brackets, same-day and multi-day ranges, repeater and warning
// cookies, planning keywords and clock lines.
package orgdate

import (
	"time"
)

// Repeater is the recurrence cookie of a timestamp, e.g. "+1w" or ".+2d".
// The mark is kept for formatting only; all marks advance the same way here.
type Repeater struct {
	Mark     string `json:"mark"`
	Interval int    `json:"interval"`
	Unit     Unit   `json:"unit"`
}

// Timestamp is an immutable org timestamp. The zero value is the empty
// timestamp returned when no markup is found.
type Timestamp struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end,omitzero"`
	Timed    bool      `json:"timed"`
	EndTimed bool      `json:"end_timed,omitempty"`
	Active   bool      `json:"active"`
	Repeat   *Repeater `json:"repeat,omitempty"`
	Warning  *Duration `json:"warning,omitempty"`
}

// NewDate returns an active, date-only point timestamp.
func NewDate(year int, month time.Month, day int) Timestamp {
	return Timestamp{Start: time.Date(year, month, day, 0, 0, 0, 0, time.Local), Active: true}
}

// NewTime returns an active point timestamp with a time of day.
func NewTime(year int, month time.Month, day, hour, minute int) Timestamp {
	return Timestamp{Start: time.Date(year, month, day, hour, minute, 0, 0, time.Local), Timed: true, Active: true}
}

// WithEnd returns ts with the given end. An end before the start is clamped
// to the start.
func (ts Timestamp) WithEnd(end time.Time, timed bool) Timestamp {
	if end.Before(ts.Start) {
		end = ts.Start
	}
	ts.End = end
	ts.EndTimed = timed
	return ts
}

// WithRepeat returns ts with a "+N<unit>" repeater. Intervals below one are
// treated as one.
func (ts Timestamp) WithRepeat(interval int, unit Unit) Timestamp {
	if interval <= 0 {
		interval = 1
	}
	ts.Repeat = &Repeater{Mark: "+", Interval: interval, Unit: unit}
	return ts
}

// WithWarning returns ts with a warning lead time.
func (ts Timestamp) WithWarning(d Duration) Timestamp {
	if d.N <= 0 {
		d.N = 1
	}
	ts.Warning = &d
	return ts
}

// IsZero reports whether ts is the empty timestamp.
func (ts Timestamp) IsZero() bool { return ts.Start.IsZero() }

// HasTime reports whether the start carries a time of day.
func (ts Timestamp) HasTime() bool { return ts.Timed }

// HasEnd reports whether ts is a range.
func (ts Timestamp) HasEnd() bool { return !ts.End.IsZero() }

// IsRepeating reports whether ts has a repeater cookie.
func (ts Timestamp) IsRepeating() bool { return ts.Repeat != nil }

// EndOrStart returns the end of a range or the start of a point.
func (ts Timestamp) EndOrStart() time.Time {
	if ts.HasEnd() {
		return ts.End
	}
	return ts.Start
}

func (ts Timestamp) endOrStartTimed() bool {
	if ts.HasEnd() {
		return ts.EndTimed
	}
	return ts.Timed
}

// Add shifts start and end by d.
func (ts Timestamp) Add(d Duration) Timestamp {
	if ts.IsZero() {
		return ts
	}
	ts.Start = d.AddTo(ts.Start)
	if ts.HasEnd() {
		ts.End = d.AddTo(ts.End)
	}
	return ts
}

// Sub shifts start and end back by d.
func (ts Timestamp) Sub(d Duration) Timestamp { return ts.Add(d.Neg()) }

// AddDays shifts ts by n days.
func (ts Timestamp) AddDays(n int) Timestamp { return ts.Add(Duration{N: n, Unit: Day}) }

// AddHours shifts ts by n hours.
func (ts Timestamp) AddHours(n int) Timestamp { return ts.Add(Duration{N: n, Unit: Hour}) }

// AddMinutes shifts ts by n minutes.
func (ts Timestamp) AddMinutes(n int) Timestamp { return ts.Add(Duration{N: n, Unit: Minute}) }

// AddMonths shifts ts by n calendar months. See AddMonths for clamping.
func (ts Timestamp) AddMonths(n int) Timestamp { return ts.Add(Duration{N: n, Unit: Month}) }

// compareAt orders a and b at datetime precision when both carry a time of
// day, otherwise by calendar date.
func compareAt(a time.Time, aTimed bool, b time.Time, bTimed bool) int {
	if aTimed && bTimed {
		return a.Compare(b)
	}
	return DateOf(a).Compare(DateOf(b.In(a.Location())))
}

// After reports whether ts starts after the instant t. A date-only ts is
// compared by date.
func (ts Timestamp) After(t time.Time) bool {
	return !ts.IsZero() && compareAt(ts.Start, ts.Timed, t, true) > 0
}

// Before reports whether ts (its end for a range) lies before the instant t.
func (ts Timestamp) Before(t time.Time) bool {
	return !ts.IsZero() && compareAt(ts.EndOrStart(), ts.endOrStartTimed(), t, true) < 0
}

// AfterDay reports whether ts starts on a later calendar day than day.
func (ts Timestamp) AfterDay(day time.Time) bool {
	return !ts.IsZero() && compareAt(ts.Start, ts.Timed, day, false) > 0
}

// BeforeDay reports whether ts ends on an earlier calendar day than day.
func (ts Timestamp) BeforeDay(day time.Time) bool {
	return !ts.IsZero() && compareAt(ts.EndOrStart(), ts.endOrStartTimed(), day, false) < 0
}

func (ts Timestamp) contains(t time.Time, timed bool) bool {
	return compareAt(ts.EndOrStart(), ts.endOrStartTimed(), t, timed) >= 0 &&
		compareAt(ts.Start, ts.Timed, t, timed) <= 0
}

// HasOverlap reports whether ts and o share any instant. A range overlaps
// anything with an endpoint inside it; two points overlap when they fall on
// the same calendar day. The relation is symmetric.
func (ts Timestamp) HasOverlap(o Timestamp) bool {
	if ts.IsZero() || o.IsZero() {
		return false
	}
	if ts.HasEnd() {
		if ts.contains(o.Start, o.Timed) || (o.HasEnd() && ts.contains(o.End, o.EndTimed)) {
			return true
		}
	}
	if o.HasEnd() {
		if o.contains(ts.Start, ts.Timed) || (ts.HasEnd() && o.contains(ts.End, ts.EndTimed)) {
			return true
		}
	}
	if !ts.HasEnd() && !o.HasEnd() {
		return SameDay(ts.Start, o.Start)
	}
	return false
}

// OverlapsDay reports whether ts touches the calendar day of day.
func (ts Timestamp) OverlapsDay(day time.Time) bool {
	return ts.HasOverlap(Timestamp{Start: DateOf(day)})
}

// BeforeDuration reports whether ts starts no later than now + d.
func (ts Timestamp) BeforeDuration(d Duration, now time.Time) bool {
	return !ts.IsZero() && !ts.Start.After(d.AddTo(now))
}

// AfterDuration reports whether ts ends no earlier than now - d.
func (ts Timestamp) AfterDuration(d Duration, now time.Time) bool {
	return !ts.IsZero() && !ts.EndOrStart().Before(d.SubFrom(now))
}

// WarningStart is the first instant a deadline is shown ahead of time: the
// start minus the warning cookie, or minus def when there is none.
func (ts Timestamp) WarningStart(def Duration) time.Time {
	if ts.Warning != nil {
		return ts.Warning.SubFrom(ts.Start)
	}
	return def.SubFrom(ts.Start)
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsMidnight reports whether t has no time-of-day component.
func IsMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
