package orgdate

import (
	"time"

	"github.com/teambition/rrule-go"
)

// Recurrence expands a repeating timestamp into occurrences anchored at its
// start.
type Recurrence struct {
	rule *rrule.RRule
}

var frequencies = map[Unit]rrule.Frequency{
	Day:   rrule.DAILY,
	Week:  rrule.WEEKLY,
	Month: rrule.MONTHLY,
	Year:  rrule.YEARLY,
}

// Recurrence returns the occurrence rule of ts, or nil when ts does not
// repeat.
func (ts Timestamp) Recurrence() *Recurrence {
	if ts.Repeat == nil || ts.IsZero() {
		return nil
	}
	freq, ok := frequencies[ts.Repeat.Unit]
	if !ok {
		return nil
	}
	interval := ts.Repeat.Interval
	if interval <= 0 {
		interval = 1
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     freq,
		Interval: interval,
		Dtstart:  ts.Start,
	})
	if err != nil {
		return nil
	}
	return &Recurrence{rule: rule}
}

// After returns the first occurrence strictly after t.
func (r *Recurrence) After(t time.Time) (time.Time, bool) {
	next := r.rule.After(t, false)
	return next, !next.IsZero()
}

// From returns the first occurrence at or after t.
func (r *Recurrence) From(t time.Time) (time.Time, bool) {
	next := r.rule.After(t, true)
	return next, !next.IsZero()
}

// NextAfter returns the first occurrence of ts strictly after t. A timestamp
// without a repeater has no next occurrence.
func (ts Timestamp) NextAfter(t time.Time) (time.Time, bool) {
	r := ts.Recurrence()
	if r == nil {
		return time.Time{}, false
	}
	return r.After(t)
}

// NextFrom returns the first occurrence of ts at or after t, so an
// occurrence at midnight of day is found by NextFrom(DateOf(day)).
func (ts Timestamp) NextFrom(t time.Time) (time.Time, bool) {
	r := ts.Recurrence()
	if r == nil {
		return time.Time{}, false
	}
	return r.From(t)
}

// Occurrences walks forward from the start of ts and returns every
// occurrence up to and including the calendar day of until, taking at most
// limit steps. A non-repeating timestamp yields its start when in range.
func (ts Timestamp) Occurrences(until time.Time, limit int) []time.Time {
	if ts.IsZero() {
		return nil
	}
	stop := DateOf(until).AddDate(0, 0, 1)
	r := ts.Recurrence()
	if r == nil {
		if ts.Start.Before(stop) {
			return []time.Time{ts.Start}
		}
		return nil
	}
	var out []time.Time
	next := ts.Start
	for i := 0; i <= limit && next.Before(stop); i++ {
		out = append(out, next)
		var ok bool
		if next, ok = r.After(next); !ok {
			break
		}
	}
	return out
}
