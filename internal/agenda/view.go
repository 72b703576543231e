package agenda

import (
	"sort"
	"time"

	"github.com/twiced-technology-gmbh/agenda/internal/config"
	"github.com/twiced-technology-gmbh/agenda/internal/date"
	"github.com/twiced-technology-gmbh/agenda/internal/orgdate"
	"github.com/twiced-technology-gmbh/agenda/internal/outline"
)

const (
	daysPerWeek  = 7
	hoursPerDay  = 24
	slotsPerHour = 5
	slotMinutes  = minutesPerHour / slotsPerHour
)

// Layout selects how a view turns its headings into a Section.
type Layout string

// Layouts.
const (
	LayoutList       Layout = "list"
	LayoutDay        Layout = "day"
	LayoutWeekAgenda Layout = "week_agenda"
	LayoutWeek       Layout = "week"
	LayoutCalendar   Layout = "calendar"
	LayoutNextTasks  Layout = "next_tasks"
)

// Env is the context a view runs in.
type Env struct {
	Workflow     Workflow
	Matcher      *Matcher
	Date         date.Date // selected day
	Now          time.Time
	FirstWeekday time.Weekday
	DayStart     int
	DayEnd       int
	// SortAscending is the list order when a view does not pick one.
	SortAscending bool
}

// NewEnv builds an Env from the config for the selected day.
func NewEnv(cfg *config.Config, day date.Date, now time.Time) *Env {
	m := NewMatcher(cfg.Agenda)
	m.Today = now
	return &Env{
		Workflow:      Workflow{Keywords: cfg.Keywords, ProjectIs: cfg.Agenda.ProjectIs},
		Matcher:       m,
		Date:          day,
		Now:           now,
		FirstWeekday:  cfg.FirstWeekday(),
		DayStart:      cfg.Agenda.DayStart,
		DayEnd:        cfg.Agenda.DayEnd,
		SortAscending: cfg.Agenda.SortAscending,
	}
}

// DefaultEnv uses the built-in settings.
func DefaultEnv(day date.Date, now time.Time) *Env {
	return NewEnv(config.NewDefault(), day, now)
}

// Entry is one heading as shown by a view.
type Entry struct {
	ID        string            `json:"id"`
	File      string            `json:"file"`
	Line      int               `json:"line"`
	Keyword   string            `json:"keyword,omitempty"`
	Priority  string            `json:"priority,omitempty"`
	Title     string            `json:"title"`
	Tags      []string          `json:"tags,omitempty"`
	Scheduled orgdate.Timestamp `json:"scheduled,omitzero"`
	Deadline  orgdate.Timestamp `json:"deadline,omitzero"`
	Closed    orgdate.Timestamp `json:"closed,omitzero"`
	Match     *Match            `json:"match,omitempty"`
	// Time and End are "HH:MM" for timed entries of day views.
	Time         string  `json:"time,omitempty"`
	End          string  `json:"end,omitempty"`
	DeadlineNote string  `json:"deadline_note,omitempty"`
	Clocked      string  `json:"clocked,omitempty"`
	Next         []Entry `json:"next,omitempty"`

	heading *outline.Heading
}

// Heading returns the heading the entry was built from.
func (e Entry) Heading() *outline.Heading { return e.heading }

// Text is the keyword and title.
func (e Entry) Text() string {
	if e.Keyword == "" {
		return e.Title
	}
	return e.Keyword + " " + e.Title
}

// FileName is the file name without directory and extension.
func (e Entry) FileName() string {
	if e.heading == nil || e.heading.Document() == nil {
		return ""
	}
	return e.heading.Document().Name()
}

// NewEntry describes h.
func NewEntry(h *outline.Heading) Entry {
	e := Entry{
		ID:        h.ID(),
		File:      h.File(),
		Line:      h.Line,
		Keyword:   h.Keyword,
		Priority:  h.Priority,
		Title:     h.Title,
		Tags:      h.Tags(),
		Scheduled: h.Scheduled,
		Deadline:  h.Deadline,
		Closed:    h.Closed,
		heading:   h,
	}
	if total := orgdate.TotalClocked(h.Clocks); total > 0 {
		e.Clocked = orgdate.FormatHHMM(total)
	}
	return e
}

// Day holds the entries of one calendar day.
type Day struct {
	Date   date.Date `json:"date"`
	AllDay []Entry   `json:"all_day"`
	Timed  []Entry   `json:"timed"`
	Blocks []Block   `json:"blocks,omitempty"`
}

// Block is a span of the week grid occupied by one entry.
type Block struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Entry Entry  `json:"entry"`
}

// Mark is a calendar highlight.
type Mark struct {
	Date      date.Date `json:"date"`
	Repeating bool      `json:"repeating,omitempty"`
	Entry     Entry     `json:"entry"`
}

// EntryGroup is a titled bucket of a grouped list.
type EntryGroup struct {
	Key     string  `json:"key"`
	Entries []Entry `json:"entries"`
}

// Section is the output of one view.
type Section struct {
	Name     string       `json:"name"`
	Kind     string       `json:"kind"`
	Layout   Layout       `json:"layout"`
	Date     date.Date    `json:"date"`
	DayStart int          `json:"day_start,omitempty"`
	DayEnd   int          `json:"day_end,omitempty"`
	Days     []Day        `json:"days,omitempty"`
	Entries  []Entry      `json:"entries,omitempty"`
	Groups   []EntryGroup `json:"groups,omitempty"`
	Marks    []Mark       `json:"marks,omitempty"`
	Total    string       `json:"total_clocked,omitempty"`
}

// Count returns the number of entries in s.
func (s Section) Count() int {
	n := len(s.Entries) + len(s.Marks)
	for _, d := range s.Days {
		n += len(d.AllDay) + len(d.Timed) + len(d.Blocks)
	}
	for _, g := range s.Groups {
		n += len(g.Entries)
	}
	return n
}

// Order overrides the list order of a view.
type Order int

// Orders.
const (
	OrderDefault Order = iota
	OrderAscending
	OrderDescending
)

// ViewOptions configure one view instance.
type ViewOptions struct {
	FilterOptions
	Title     string `json:"title,omitempty"`
	ByProject bool   `json:"by_project,omitempty"`
	Order     Order  `json:"order,omitempty"`
	ShowTotal bool   `json:"show_total,omitempty"`
}

// View is a view kind bound to its options.
type View struct {
	Name    string
	Kind    *ViewKind
	Options ViewOptions
	filter  *Filter
}

// NewView binds kind to opts.
func NewView(kind *ViewKind, opts ViewOptions, wf Workflow) (*View, []Warning) {
	f, warnings := NewFilter(opts.FilterOptions, wf)
	name := kind.Name
	if opts.Title != "" {
		name = opts.Title
	}
	return &View{Name: name, Kind: kind, Options: opts, filter: f}, warnings
}

// Select returns the headings passing the view's filter and kind predicate.
func (v *View) Select(env *Env, hs []*outline.Heading) []*outline.Heading {
	var out []*outline.Heading
	for _, h := range hs {
		if v.filter.Match(h, env.Now) && v.Kind.Include(env, v.Options.FilterOptions, h) {
			out = append(out, h)
		}
	}
	return out
}

// Run builds the section of v over hs.
func (v *View) Run(env *Env, hs []*outline.Heading) Section {
	sec := Section{Name: v.Name, Kind: v.Kind.Name, Layout: v.Kind.Layout, Date: env.Date}
	selected := v.Select(env, hs)

	switch v.Kind.Layout {
	case LayoutDay:
		sec.DayStart, sec.DayEnd = env.DayStart, env.DayEnd
		sec.Days = []Day{env.buildDay(env.Date, selected)}
	case LayoutWeekAgenda:
		sec.DayStart, sec.DayEnd = env.DayStart, env.DayEnd
		start := env.Date.StartOfWeek(env.FirstWeekday)
		for i := range daysPerWeek {
			day := start.AddDays(i)
			var onDay []*outline.Heading
			for _, h := range selected {
				if dayViewIncludes(env, v.Options.FilterOptions, h, day) {
					onDay = append(onDay, h)
				}
			}
			sec.Days = append(sec.Days, env.buildDay(day, onDay))
		}
	case LayoutWeek:
		sec.DayStart, sec.DayEnd = env.gridHours()
		start := env.Date.StartOfWeek(env.FirstWeekday)
		for i := range daysPerWeek {
			sec.Days = append(sec.Days, env.buildGridDay(start.AddDays(i), selected))
		}
	case LayoutCalendar:
		sec.Marks = env.buildMarks(selected)
	case LayoutNextTasks:
		for _, h := range selected {
			e := NewEntry(h)
			for _, c := range NextTasks(h) {
				e.Next = append(e.Next, NewEntry(c))
			}
			sec.Entries = append(sec.Entries, e)
		}
	default:
		v.buildList(env, &sec, selected)
	}
	return sec
}

func (v *View) descending(env *Env) bool {
	switch v.Options.Order {
	case OrderAscending:
		return false
	case OrderDescending:
		return true
	default:
		return !env.SortAscending
	}
}

func (v *View) buildList(env *Env, sec *Section, hs []*outline.Heading) {
	desc := v.descending(env)
	var total time.Duration
	for _, h := range hs {
		total += orgdate.TotalClocked(h.Clocks)
	}
	if v.Options.ShowTotal {
		sec.Total = orgdate.FormatHHMM(total)
	}
	if !v.Options.ByProject {
		env.Workflow.Sort(hs, desc)
		sec.Entries = entries(hs)
		return
	}
	for _, g := range env.Workflow.GroupBy(hs, GroupByProject) {
		env.Workflow.Sort(g.Headings, desc)
		sec.Groups = append(sec.Groups, EntryGroup{Key: g.Key, Entries: entries(g.Headings)})
	}
}

func entries(hs []*outline.Heading) []Entry {
	out := make([]Entry, 0, len(hs))
	for _, h := range hs {
		out = append(out, NewEntry(h))
	}
	return out
}

// DeadlineNote describes the deadline of h as seen on day: "D: Overdue",
// "D: Due Today" or "D:@YYYY-MM-DD". It is empty when the deadline is not
// yet visible.
func (env *Env) DeadlineNote(h *outline.Heading, day date.Date) string {
	d := h.Deadline
	if !env.Matcher.DeadlineVisible(d, day.Time) {
		return ""
	}
	due := date.From(d.Start)
	switch {
	case due.Before(day.Time):
		return "D: Overdue"
	case due.Equal(day.Time):
		return "D: Due Today"
	default:
		return "D:@" + due.String()
	}
}

// buildDay splits hs into all-day entries and timed entries ordered by
// time.
func (env *Env) buildDay(day date.Date, hs []*outline.Heading) Day {
	out := Day{Date: day, AllDay: []Entry{}, Timed: []Entry{}}
	type timed struct {
		at    time.Time
		entry Entry
	}
	var lines []timed
	for _, h := range hs {
		e := NewEntry(h)
		e.DeadlineNote = env.DeadlineNote(h, day)
		if m, ok := env.Matcher.AllDay(h, day.Time); ok {
			e.Match = &m
			out.AllDay = append(out.AllDay, e)
			continue
		}
		found := false
		for hour := range hoursPerDay {
			m, ok := env.Matcher.InHour(h, hour, day.Time)
			if !ok {
				continue
			}
			s, end := m.Span()
			e.Match = &m
			e.Time = s.Format("15:04")
			if m.Timestamp.HasEnd() && m.Timestamp.EndTimed {
				e.End = end.Format("15:04")
			}
			lines = append(lines, timed{at: s, entry: e})
			found = true
			break
		}
		if !found {
			out.AllDay = append(out.AllDay, e)
		}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return minuteOfDay(lines[i].at) < minuteOfDay(lines[j].at)
	})
	for _, l := range lines {
		out.Timed = append(out.Timed, l.entry)
	}
	return out
}

// dayViewIncludes is the selection rule of the single day views.
func dayViewIncludes(env *Env, opts FilterOptions, h *outline.Heading, day date.Date) bool {
	wf := env.Workflow
	if opts.OnlyTasks && !wf.IsTodo(h) {
		return false
	}
	if wf.IsDone(h) || IsArchived(h) {
		return false
	}
	_, ok := env.Matcher.OnDate(h, day.Time)
	return ok
}

// gridHours clamps the configured day to whole hours of one day.
func (env *Env) gridHours() (int, int) {
	start, end := env.DayStart, env.DayEnd
	if end > hoursPerDay-1 {
		end = hoursPerDay - 1
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start, end = 0, hoursPerDay-1
	}
	return start, end
}

// onGridDay decides which headings the week grid considers for day: an
// inline timestamp starting that day, a schedule on or (still open) before
// that day, or a deadline whose warning starts on or (still open) before
// that day.
func (env *Env) onGridDay(h *outline.Heading, day date.Date) bool {
	for _, ts := range env.Matcher.inline(h) {
		if orgdate.SameDay(ts.Start, day.Time) {
			return true
		}
	}
	open := !env.Workflow.IsDone(h) && !IsArchived(h)
	if s := h.Scheduled; !s.IsZero() {
		sd := date.From(s.Start)
		if sd.Equal(day.Time) || (open && sd.Before(day.Time)) {
			return true
		}
	}
	if d := h.Deadline; !d.IsZero() {
		wd := date.From(d.WarningStart(env.Matcher.warning()))
		if wd.Equal(day.Time) || (open && wd.Before(day.Time)) {
			return true
		}
	}
	return false
}

// buildGridDay fills twelve-minute slots between the configured hours and
// merges runs of the same heading into blocks. A later heading wins a
// contested slot.
func (env *Env) buildGridDay(day date.Date, hs []*outline.Heading) Day {
	out := Day{Date: day, AllDay: []Entry{}, Timed: []Entry{}}
	var cands []*outline.Heading
	for _, h := range hs {
		if env.onGridDay(h, day) {
			cands = append(cands, h)
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return SortDate(cands[i]).Before(SortDate(cands[j]))
	})

	first, last := env.gridHours()
	var cur *outline.Heading
	var curStart int
	flush := func(endMin int) {
		if cur == nil {
			return
		}
		out.Blocks = append(out.Blocks, Block{
			Start: clockText(curStart),
			End:   clockText(endMin),
			Entry: NewEntry(cur),
		})
	}
	for hour := first; hour <= last; hour++ {
		for slot := range slotsPerHour {
			var hit *outline.Heading
			for _, h := range cands {
				if _, ok := env.Matcher.InHourAndMinute(h, hour, slot*slotMinutes, (slot+1)*slotMinutes, day.Time); ok {
					hit = h
				}
			}
			at := hour*minutesPerHour + slot*slotMinutes
			if hit != cur {
				flush(at)
				cur, curStart = hit, at
			}
		}
	}
	flush((last + 1) * minutesPerHour)
	return out
}

func clockText(minutes int) string {
	if minutes >= hoursPerDay*minutesPerHour {
		return "24:00"
	}
	return time.Date(0, 1, 1, 0, minutes, 0, 0, time.UTC).Format("15:04")
}

// buildMarks highlights the month window around the selected date.
func (env *Env) buildMarks(hs []*outline.Heading) []Mark {
	var marks []Mark
	for _, h := range hs {
		m, ok := env.Matcher.InMonth(h, env.Date.Time)
		if !ok {
			continue
		}
		e := NewEntry(h)
		e.Match = &m
		marks = append(marks, Mark{Date: date.From(m.At), Repeating: m.Repeating, Entry: e})
	}
	sort.SliceStable(marks, func(i, j int) bool { return marks[i].Date.Before(marks[j].Date.Time) })
	return marks
}
