package orgdate

import (
	"strconv"
	"strings"
	"time"
)

// Clock is one CLOCK line of a logbook. An open clock has a zero End.
type Clock struct {
	Timestamp
	// Declared is the "=> H:MM" duration written on the line.
	Declared    time.Duration `json:"declared,omitempty"`
	HasDeclared bool          `json:"has_declared,omitempty"`
}

// ParseClock reads "CLOCK: [start]--[end] => H:MM". The second result is
// false when the line holds no clock.
func ParseClock(line string) (Clock, bool) {
	groups := clockRe.FindStringSubmatch(line)
	if groups == nil {
		return Clock{}, false
	}
	start, ok := match{re: clockRe, groups: groups, prefix: "s"}.build(false)
	if !ok {
		return Clock{}, false
	}
	c := Clock{Timestamp: start}
	if groups[clockRe.SubexpIndex("eyear")] != "" {
		end, ok := match{re: clockRe, groups: groups, prefix: "e"}.build(false)
		if ok {
			c.Timestamp = c.WithEnd(end.Start, end.Timed)
		}
	}
	if dur := groups[clockRe.SubexpIndex("dur")]; dur != "" {
		c.Declared = parseHHMM(dur)
		c.HasDeclared = true
	}
	return c, true
}

func parseHHMM(s string) time.Duration {
	neg := strings.HasPrefix(s, "-")
	h, m, _ := strings.Cut(strings.TrimPrefix(s, "-"), ":")
	hours, _ := strconv.Atoi(h)
	mins, _ := strconv.Atoi(m)
	d := time.Duration(hours)*time.Hour + time.Duration(mins)*time.Minute
	if neg {
		return -d
	}
	return d
}

// IsOpen reports whether the clock is still running.
func (c Clock) IsOpen() bool { return !c.HasEnd() }

// Duration is the computed end minus start, truncated to whole minutes.
// Open clocks have no duration.
func (c Clock) Duration() time.Duration {
	if c.IsOpen() {
		return 0
	}
	return c.End.Sub(c.Start).Truncate(time.Minute)
}

// Consistent reports whether the declared duration, if any, equals the
// computed one.
func (c Clock) Consistent() bool {
	if !c.HasDeclared || c.IsOpen() {
		return true
	}
	return c.Declared == c.Duration()
}

// TotalClocked sums the durations of closed clocks.
func TotalClocked(clocks []Clock) time.Duration {
	var total time.Duration
	for _, c := range clocks {
		total += c.Duration()
	}
	return total
}
