package orgdate

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

type bracket int

const (
	active bracket = iota
	inactive
	nobrace
)

// timestampPattern builds the regexp for one bracket kind. Group names are
// prefixed so that two timestamps can share a pattern (clock lines).
func timestampPattern(kind bracket, prefix string, cookies bool) string {
	var open, closing, ignore string
	switch kind {
	case active:
		open, closing, ignore = `<`, `>`, `[^>]`
	case inactive:
		open, closing, ignore = `\[`, `\]`, `[^\]]`
	default:
		open, closing, ignore = ``, ``, `[\s\w]`
	}
	p := func(name string) string { return "?P<" + prefix + name + ">" }

	var b strings.Builder
	b.WriteString(open)
	b.WriteString(`(` + p("year") + `\d{4})-(` + p("month") + `\d{2})-(` + p("day") + `\d{2})`)
	b.WriteString(`(?:` + ignore + `+?(` + p("hour") + `\d{2}):(` + p("min") + `\d{2})`)
	b.WriteString(`(?:--?(` + p("endhour") + `\d{2}):(` + p("endmin") + `\d{2}))?)?`)
	if cookies && kind != nobrace {
		b.WriteString(`(?:` + ignore + `+?(` + p("repeatpre") + `[.+]{1,2})(` + p("repeatnum") + `\d+)(` + p("repeatdwmy") + `[dwmy]))?`)
		b.WriteString(`(?:` + ignore + `+?(` + p("warnpre") + `-)(` + p("warnnum") + `\d+)(` + p("warndwmy") + `[dwmy]))?`)
	}
	if kind == nobrace {
		return b.String()
	}
	b.WriteString(ignore + `*?` + closing)
	return b.String()
}

var (
	activeRe    = regexp.MustCompile(timestampPattern(active, "", true))
	inactiveRe  = regexp.MustCompile(timestampPattern(inactive, "", true))
	freeRe      = regexp.MustCompile(`^\s*` + timestampPattern(nobrace, "", false))
	scheduledRe = regexp.MustCompile(`SCHEDULED:\s+` + timestampPattern(active, "", true))
	deadlineRe  = regexp.MustCompile(`DEADLINE:\s+` + timestampPattern(active, "", true))
	closedRe    = regexp.MustCompile(`CLOSED:\s+` + timestampPattern(inactive, "", true))
	clockRe     = regexp.MustCompile(`CLOCK:\s+` + timestampPattern(inactive, "s", false) +
		`(?:--` + timestampPattern(inactive, "e", false) + `)?` +
		`(?:\s+=>\s+(?P<dur>-?\d+:\d{2}))?`)
)

type match struct {
	re     *regexp.Regexp
	groups []string
	prefix string
}

func (m match) get(name string) string {
	i := m.re.SubexpIndex(m.prefix + name)
	if i < 0 || i >= len(m.groups) {
		return ""
	}
	return m.groups[i]
}

func (m match) num(name string) int {
	n, _ := strconv.Atoi(m.get(name))
	return n
}

// build converts the captured fields into a Timestamp. The second result is
// false when the date or time fields do not name a real instant.
func (m match) build(isActive bool) (Timestamp, bool) {
	year, month, day := m.num("year"), m.num("month"), m.num("day")
	if !validDate(year, month, day) {
		return Timestamp{}, false
	}
	ts := Timestamp{Active: isActive}
	ts.Start = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if m.get("hour") != "" {
		h, mins := m.num("hour"), m.num("min")
		if !validClock(h, mins) {
			return Timestamp{}, false
		}
		ts.Start = time.Date(year, time.Month(month), day, h, mins, 0, 0, time.Local)
		ts.Timed = true
		if m.get("endhour") != "" {
			eh, em := m.num("endhour"), m.num("endmin")
			if validClock(eh, em) {
				ts = ts.WithEnd(time.Date(year, time.Month(month), day, eh, em, 0, 0, time.Local), true)
			}
		}
	}
	if pre := m.get("repeatpre"); pre != "" {
		ts = ts.WithRepeat(m.num("repeatnum"), Unit(m.get("repeatdwmy")))
		ts.Repeat.Mark = pre
	}
	if m.get("warnpre") != "" {
		ts = ts.WithWarning(Duration{N: m.num("warnnum"), Unit: Unit(m.get("warndwmy"))})
	}
	return ts, true
}

func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= daysIn(year, time.Month(month))
}

func validClock(h, m int) bool {
	return h >= 0 && h < 24 && m >= 0 && m < 60
}

type token struct {
	start, end int
	ts         Timestamp
}

func scan(re *regexp.Regexp, text string, isActive bool) []token {
	var out []token
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		ts, ok := match{re: re, groups: groups}.build(isActive)
		if !ok {
			continue
		}
		out = append(out, token{start: loc[0], end: loc[1], ts: ts})
	}
	return out
}

// ParseAll returns every active and inactive timestamp in text, in order of
// appearance. Two timestamps of the same bracket kind joined by "--" form one
// multi-day range. Text without timestamps yields nil.
func ParseAll(text string) []Timestamp {
	tokens := append(scan(activeRe, text, true), scan(inactiveRe, text, false)...)
	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].start < tokens[j].start })

	var out []Timestamp
	for i := 0; i < len(tokens); i++ {
		cur := tokens[i]
		if i+1 < len(tokens) {
			next := tokens[i+1]
			if next.ts.Active == cur.ts.Active && text[cur.end:next.start] == "--" {
				out = append(out, joinRange(cur.ts, next.ts))
				i++
				continue
			}
		}
		out = append(out, cur.ts)
	}
	return out
}

// joinRange makes a multi-day range from two bracketed timestamps. Cookies
// come from the first bracket, or the second when the first has none.
func joinRange(a, b Timestamp) Timestamp {
	end, endTimed := b.Start, b.Timed
	if b.HasEnd() {
		end, endTimed = b.End, b.EndTimed
	}
	a.End, a.EndTimed = time.Time{}, false
	r := a.WithEnd(end, endTimed)
	if r.Repeat == nil {
		r.Repeat = b.Repeat
	}
	if r.Warning == nil {
		r.Warning = b.Warning
	}
	return r
}

// Parse returns the first timestamp in text, or the empty timestamp.
func Parse(text string) Timestamp {
	all := ParseAll(text)
	if len(all) == 0 {
		return Timestamp{}
	}
	return all[0]
}

// ParseFreeFloating parses a date typed without brackets, e.g.
// "2024-03-15 Fri 10:00" or "2024-03-15 09:00-10:30". Cookies are not read.
// The result is inactive.
func ParseFreeFloating(text string) (Timestamp, bool) {
	loc := freeRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return Timestamp{}, false
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return match{re: freeRe, groups: groups}.build(false)
}

func planning(re *regexp.Regexp, line string, isActive bool) Timestamp {
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return Timestamp{}
	}
	groups := re.FindStringSubmatch(line)
	if groups == nil {
		return Timestamp{}
	}
	ts, _ := match{re: re, groups: groups}.build(isActive)
	return ts
}

// ParseScheduled reads "SCHEDULED: <...>" from a line. Comment lines and
// lines without the keyword yield the empty timestamp.
func ParseScheduled(line string) Timestamp { return planning(scheduledRe, line, true) }

// ParseDeadline reads "DEADLINE: <...>" from a line.
func ParseDeadline(line string) Timestamp { return planning(deadlineRe, line, true) }

// ParseClosed reads "CLOSED: [...]" from a line.
func ParseClosed(line string) Timestamp { return planning(closedRe, line, false) }

// Planning holds the keyword timestamps of one planning line.
type Planning struct {
	Scheduled Timestamp
	Deadline  Timestamp
	Closed    Timestamp
}

// IsZero reports whether the line carried no planning keyword.
func (p Planning) IsZero() bool {
	return p.Scheduled.IsZero() && p.Deadline.IsZero() && p.Closed.IsZero()
}

// ParsePlanning reads all planning keywords from a line.
func ParsePlanning(line string) Planning {
	return Planning{
		Scheduled: ParseScheduled(line),
		Deadline:  ParseDeadline(line),
		Closed:    ParseClosed(line),
	}
}
