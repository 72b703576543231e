package orgdate

import (
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02 Mon"
	dateTimeLayout = "2006-01-02 Mon 15:04"
)

func brackets(isActive bool) (string, string) {
	if isActive {
		return "<", ">"
	}
	return "[", "]"
}

func formatMoment(t time.Time, timed bool) string {
	if timed {
		return t.Format(dateTimeLayout)
	}
	return t.Format(dateLayout)
}

func (ts Timestamp) cookies() string {
	var b strings.Builder
	if ts.Repeat != nil {
		b.WriteString(" " + ts.Repeat.Mark + strconv.Itoa(ts.Repeat.Interval) + string(ts.Repeat.Unit))
	}
	if ts.Warning != nil {
		b.WriteString(" -" + ts.Warning.String())
	}
	return b.String()
}

// String renders ts in org syntax: "<2024-03-15 Fri>", "<2024-03-15 Fri
// 09:00-10:00 +1w>" for a same-day time range, "<a>--<b>" for a multi-day
// range. The empty timestamp renders as "".
func (ts Timestamp) String() string {
	if ts.IsZero() {
		return ""
	}
	open, closing := brackets(ts.Active)
	start := formatMoment(ts.Start, ts.Timed)
	if !ts.HasEnd() {
		return open + start + ts.cookies() + closing
	}
	if ts.Timed && ts.EndTimed && SameDay(ts.Start, ts.End) {
		return open + start + "-" + ts.End.Format("15:04") + ts.cookies() + closing
	}
	return open + start + ts.cookies() + closing + "--" + open + formatMoment(ts.End, ts.EndTimed) + closing
}

// DateString renders the start without brackets, e.g. "2024-03-15 Fri 09:00".
func (ts Timestamp) DateString() string {
	if ts.IsZero() {
		return ""
	}
	return formatMoment(ts.Start, ts.Timed)
}

// String renders the clock line body: "[a]--[b] => H:MM", or "[a]--" when
// the clock is still open.
func (c Clock) String() string {
	if c.IsZero() {
		return ""
	}
	open, closing := brackets(false)
	start := open + formatMoment(c.Start, c.Timed) + closing
	if c.IsOpen() {
		return start + "--"
	}
	end := open + formatMoment(c.End, c.EndTimed) + closing
	return start + "--" + end + " => " + FormatHHMM(c.Duration())
}
