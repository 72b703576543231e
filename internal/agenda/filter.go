package agenda

import (
	"time"

	"github.com/twiced-technology-gmbh/agenda/internal/orgdate"
	"github.com/twiced-technology-gmbh/agenda/internal/outline"
)

// Presence lists structural properties a heading must have.
type Presence struct {
	Clock        bool `json:"clock,omitempty"`
	Deadline     bool `json:"deadline,omitempty"`
	Schedule     bool `json:"schedule,omitempty"`
	Close        bool `json:"close,omitempty"`
	ChildTasks   bool `json:"child_tasks,omitempty"`
	TodoAncestor bool `json:"todo_ancestor,omitempty"`
}

// FilterOptions defines which headings to include. Zero fields impose no
// constraint; every set field must hold (AND logic).
type FilterOptions struct {
	Tags       FilterSpec   `json:"tags,omitzero"`
	States     FilterSpec   `json:"states,omitzero"` // values are regular expressions
	Priorities FilterSpec   `json:"priorities,omitzero"`
	Duration   DurationSpec `json:"duration,omitzero"`
	Done       DateRange    `json:"done,omitzero"`

	// ClockFilter enables Clock; a heading without clocks then fails.
	ClockFilter  bool         `json:"clock_filter,omitempty"`
	Clock        DurationSpec `json:"clock,omitzero"`
	ClockedToday bool         `json:"clocked_today,omitempty"`

	Has Presence `json:"has,omitzero"`
	No  Presence `json:"no,omitzero"`

	// OnlyTasks narrows time based views to headings with a keyword. Each
	// view kind decides which keywords count.
	OnlyTasks bool `json:"only_tasks,omitempty"`
}

// Filter is a compiled FilterOptions.
type Filter struct {
	opts   FilterOptions
	states patternSpec
	wf     Workflow
}

// NewFilter compiles opts. Invalid state patterns are dropped and reported
// as warnings.
func NewFilter(opts FilterOptions, wf Workflow) (*Filter, []Warning) {
	states, warnings := compilePatterns("statefilter", opts.States)
	return &Filter{opts: opts, states: states, wf: wf}, warnings
}

// Options returns the options f was built from.
func (f *Filter) Options() FilterOptions { return f.opts }

// Apply returns the headings matching f, in order.
func (f *Filter) Apply(hs []*outline.Heading, now time.Time) []*outline.Heading {
	var out []*outline.Heading
	for _, h := range hs {
		if f.Match(h, now) {
			out = append(out, h)
		}
	}
	return out
}

// Match reports whether h passes every predicate of f. Relative bounds are
// taken from now.
func (f *Filter) Match(h *outline.Heading, now time.Time) bool {
	if h == nil || h.IsRoot() {
		return false
	}
	return f.matchHas(h) &&
		f.opts.Priorities.Matches(priorities(h)) &&
		f.opts.Tags.Matches(h.Tags()) &&
		f.states.matches(h.Keyword) &&
		f.matchDuration(h, now) &&
		f.matchDone(h) &&
		f.matchClock(h, now)
}

func priorities(h *outline.Heading) []string {
	if h.Priority == "" {
		return nil
	}
	return []string{h.Priority}
}

func (f *Filter) presence(h *outline.Heading) Presence {
	return Presence{
		Clock:        len(h.Clocks) > 0,
		Deadline:     !h.Deadline.IsZero(),
		Schedule:     !h.Scheduled.IsZero(),
		Close:        !h.Closed.IsZero(),
		ChildTasks:   f.wf.HasChildTasks(h),
		TodoAncestor: f.wf.HasTodoAncestor(h),
	}
}

func (f *Filter) matchHas(h *outline.Heading) bool {
	if f.opts.Has == (Presence{}) && f.opts.No == (Presence{}) {
		return true
	}
	p := f.presence(h)
	check := func(want, has, no bool) bool {
		return !(want && !has) && !(no && has)
	}
	return check(f.opts.Has.Clock, p.Clock, f.opts.No.Clock) &&
		check(f.opts.Has.Deadline, p.Deadline, f.opts.No.Deadline) &&
		check(f.opts.Has.Schedule, p.Schedule, f.opts.No.Schedule) &&
		check(f.opts.Has.Close, p.Close, f.opts.No.Close) &&
		check(f.opts.Has.ChildTasks, p.ChildTasks, f.opts.No.ChildTasks) &&
		check(f.opts.Has.TodoAncestor, p.TodoAncestor, f.opts.No.TodoAncestor)
}

// matchDuration applies "after" bounds to the closed timestamp and passes
// when any "before" bound holds for the schedule, the deadline or the
// first inline timestamp.
func (f *Filter) matchDuration(h *outline.Heading, now time.Time) bool {
	spec := f.opts.Duration
	if c := h.Closed; !c.IsZero() {
		for _, d := range spec.After {
			if !c.AfterDuration(d, now) {
				return false
			}
		}
	}
	if len(spec.Before) == 0 {
		return true
	}
	candidates := []orgdate.Timestamp{h.Scheduled, h.Deadline}
	if inline := h.Timestamps(outline.ActiveAny); len(inline) > 0 {
		candidates = append(candidates, inline[0])
	}
	for _, ts := range candidates {
		for _, d := range spec.Before {
			if ts.BeforeDuration(d, now) {
				return true
			}
		}
	}
	return false
}

func (f *Filter) matchDone(h *outline.Heading) bool {
	if f.opts.Done.IsZero() {
		return true
	}
	c := h.Closed
	if c.IsZero() {
		return false
	}
	return f.opts.Done.Contains(c.Start, c.EndOrStart())
}

func (f *Filter) matchClock(h *outline.Heading, now time.Time) bool {
	if f.opts.ClockedToday {
		return clockedOn(h.Clocks, now)
	}
	if !f.opts.ClockFilter {
		return true
	}
	if len(h.Clocks) == 0 {
		return false
	}
	for _, c := range h.Clocks {
		for _, d := range f.opts.Clock.After {
			if !c.AfterDuration(d, now) {
				return false
			}
		}
		for _, d := range f.opts.Clock.Before {
			if !c.BeforeDuration(d, now) {
				return false
			}
		}
	}
	return true
}

func clockedOn(clocks []orgdate.Clock, day time.Time) bool {
	for _, c := range clocks {
		if orgdate.SameDay(c.Start, day) || (c.HasEnd() && orgdate.SameDay(c.End, day)) {
			return true
		}
	}
	return false
}
