package agenda

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/twiced-technology-gmbh/agenda/internal/outline"
)

// ViewKind is a named selection rule with a layout.
type ViewKind struct {
	Name   string
	Layout Layout
	// Include decides whether a heading that passed the view's filter
	// belongs to the view.
	Include func(env *Env, opts FilterOptions, h *outline.Heading) bool
}

// Registry maps view names to kinds.
type Registry struct {
	kinds map[string]*ViewKind
}

// NewRegistry returns a registry holding the built-in view kinds.
func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[string]*ViewKind)}
	for _, k := range builtinKinds() {
		r.Add(k)
	}
	return r
}

// Add registers k, replacing a kind of the same name.
func (r *Registry) Add(k *ViewKind) {
	r.kinds[k.Name] = k
}

// Lookup finds a kind by name.
func (r *Registry) Lookup(name string) (*ViewKind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.kinds))
	for n := range r.kinds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ErrUnknownView is returned for a view spec naming no registered kind.
type ErrUnknownView struct {
	Name string
}

func (e *ErrUnknownView) Error() string {
	return fmt.Sprintf("unknown view %q", e.Name)
}

// specSep separates view spec segments. A colon needs whitespace before it
// and whitespace or the end of the spec after it, so values like "^WAIT:"
// or "Work: now" stay intact.
var specSep = regexp.MustCompile(`\s+:(\s+|$)`)

// ParseViewSpec splits "Name : key value : flag" into the view name and
// its arguments. Segments holding a space are key/value pairs, the others
// are flags.
func ParseViewSpec(spec string) (string, map[string]string) {
	parts := specSep.Split(spec, -1)
	name := strings.TrimSpace(parts[0])
	args := make(map[string]string)
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if key, value, ok := strings.Cut(p, " "); ok {
			args[strings.TrimSpace(key)] = strings.TrimSpace(value)
			continue
		}
		args[p] = ""
	}
	return name, args
}

// OptionsFromArgs turns view arguments into ViewOptions. Unknown keys and
// unparseable values are reported as warnings.
func OptionsFromArgs(args map[string]string) (ViewOptions, []Warning) {
	var opts ViewOptions
	var warnings []Warning
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	flags := map[string]*bool{
		"hasclock":          &opts.Has.Clock,
		"hasdeadline":       &opts.Has.Deadline,
		"hasschedule":       &opts.Has.Schedule,
		"hasclose":          &opts.Has.Close,
		"haschildtasks":     &opts.Has.ChildTasks,
		"hastodoancestor":   &opts.Has.TodoAncestor,
		"noclock":           &opts.No.Clock,
		"nodeadline":        &opts.No.Deadline,
		"noschedule":        &opts.No.Schedule,
		"noclose":           &opts.No.Close,
		"nochildtasks":      &opts.No.ChildTasks,
		"notodoancestor":    &opts.No.TodoAncestor,
		"onlytasks":         &opts.OnlyTasks,
		"clockedtoday":      &opts.ClockedToday,
		"byproject":         &opts.ByProject,
		"showtotalduration": &opts.ShowTotal,
	}

	for _, key := range keys {
		value := args[key]
		if p, ok := flags[key]; ok {
			*p = true
			continue
		}
		var ws []Warning
		switch key {
		case "title":
			opts.Title = value
		case "tagfilter":
			opts.Tags = ParseFilterSpec(value)
		case "priorityfilter":
			opts.Priorities = ParseFilterSpec(value)
		case "statefilter":
			opts.States = ParseFilterSpec(value)
		case "durationfilter":
			opts.Duration, ws = ParseDurationSpec(key, value)
		case "clockfilter":
			opts.ClockFilter = true
			opts.Clock, ws = ParseDurationSpec(key, value)
		case "datefilter":
			opts.Done, ws = ParseDateRange(key, value)
		case "sortascend":
			opts.Order = OrderAscending
		case "sortdescend":
			opts.Order = OrderDescending
		default:
			ws = []Warning{{Filter: "view", Token: key, Err: errors.New("unknown view argument")}}
		}
		warnings = append(warnings, ws...)
	}
	return opts, warnings
}

// Build parses one view spec and binds it to its kind.
func (r *Registry) Build(spec string, wf Workflow) (*View, []Warning, error) {
	name, args := ParseViewSpec(spec)
	kind, ok := r.Lookup(name)
	if !ok {
		return nil, nil, &ErrUnknownView{Name: name}
	}
	opts, warnings := OptionsFromArgs(args)
	v, fw := NewView(kind, opts, wf)
	return v, append(warnings, fw...), nil
}

// Composite is an ordered list of views run one after the other.
type Composite struct {
	Name  string
	Views []*View
}

// Composite builds the named composite from its view specs. A composite
// with a single view shows as "Name [View]".
func (r *Registry) Composite(name string, specs []string, wf Workflow) (*Composite, []Warning, error) {
	c := &Composite{Name: name}
	var warnings []Warning
	for _, spec := range specs {
		v, ws, err := r.Build(spec, wf)
		if err != nil {
			return nil, warnings, err
		}
		warnings = append(warnings, ws...)
		c.Views = append(c.Views, v)
	}
	if len(c.Views) == 1 {
		c.Views[0].Name = name + " [" + c.Views[0].Name + "]"
	}
	return c, warnings, nil
}

// Run runs every view of c over hs.
func (c *Composite) Run(env *Env, hs []*outline.Heading) []Section {
	out := make([]Section, 0, len(c.Views))
	for _, v := range c.Views {
		out = append(out, v.Run(env, hs))
	}
	return out
}

func todoOnly(env *Env, h *outline.Heading) bool {
	wf := env.Workflow
	return wf.IsTodo(h) && !wf.IsProject(h) && !IsArchived(h)
}

func notInProject(env *Env, h *outline.Heading) bool {
	wf := env.Workflow
	return !wf.IsProject(h) && !wf.IsProjectTask(h) && !IsArchived(h)
}

func builtinKinds() []*ViewKind {
	day := func(env *Env, opts FilterOptions, h *outline.Heading) bool {
		return dayViewIncludes(env, opts, h, env.Date)
	}
	return []*ViewKind{
		{Name: "Calendar", Layout: LayoutCalendar, Include: func(env *Env, opts FilterOptions, h *outline.Heading) bool {
			wf := env.Workflow
			if opts.OnlyTasks && !(wf.IsTodo(h) && !wf.IsDone(h) && !IsArchived(h)) {
				return false
			}
			return !wf.IsProject(h) && HasTimestamp(h)
		}},
		{Name: "Day", Layout: LayoutDay, Include: day},
		{Name: "Day Agenda", Layout: LayoutDay, Include: day},
		{Name: "Week Agenda", Layout: LayoutWeekAgenda, Include: func(env *Env, opts FilterOptions, h *outline.Heading) bool {
			wf := env.Workflow
			if opts.OnlyTasks && !wf.IsTodo(h) {
				return false
			}
			return !wf.IsDone(h) && !IsArchived(h) && HasTimestamp(h)
		}},
		{Name: "Week", Layout: LayoutWeek, Include: func(env *Env, opts FilterOptions, h *outline.Heading) bool {
			wf := env.Workflow
			if opts.OnlyTasks && !wf.IsTodo(h) && !wf.IsDone(h) {
				return false
			}
			return !wf.IsProject(h) && HasTimestamp(h)
		}},
		{Name: "Todos", Layout: LayoutList, Include: func(env *Env, _ FilterOptions, h *outline.Heading) bool {
			return todoOnly(env, h)
		}},
		{Name: "Done", Layout: LayoutList, Include: func(env *Env, _ FilterOptions, h *outline.Heading) bool {
			return env.Workflow.IsDone(h) && !IsArchived(h)
		}},
		{Name: "Clocked", Layout: LayoutList, Include: func(_ *Env, _ FilterOptions, h *outline.Heading) bool {
			return len(h.Clocks) > 0
		}},
		{Name: "Has Status", Layout: LayoutList, Include: func(env *Env, _ FilterOptions, h *outline.Heading) bool {
			return env.Workflow.IsDone(h) || env.Workflow.IsTodo(h)
		}},
		{Name: "Projects", Layout: LayoutList, Include: func(env *Env, _ FilterOptions, h *outline.Heading) bool {
			return env.Workflow.IsProject(h) && !IsArchived(h)
		}},
		{Name: "Not Blocked Projects", Layout: LayoutList, Include: func(env *Env, _ FilterOptions, h *outline.Heading) bool {
			wf := env.Workflow
			return wf.IsProject(h) && !wf.IsBlockedProject(h) && !IsArchived(h)
		}},
		{Name: "Blocked Projects", Layout: LayoutList, Include: func(env *Env, _ FilterOptions, h *outline.Heading) bool {
			return env.Workflow.IsBlockedProject(h) && !IsArchived(h)
		}},
		{Name: "Next Tasks", Layout: LayoutNextTasks, Include: func(env *Env, _ FilterOptions, h *outline.Heading) bool {
			wf := env.Workflow
			return wf.IsProject(h) && !wf.IsBlockedProject(h) && !IsArchived(h)
		}},
		{Name: "Loose Tasks", Layout: LayoutList, Include: func(env *Env, _ FilterOptions, h *outline.Heading) bool {
			return env.Workflow.IsTodo(h) && notInProject(env, h)
		}},
		{Name: "Notes", Layout: LayoutList, Include: func(env *Env, _ FilterOptions, h *outline.Heading) bool {
			return IsNote(h) && notInProject(env, h)
		}},
		{Name: "Phone", Layout: LayoutList, Include: func(env *Env, _ FilterOptions, h *outline.Heading) bool {
			return IsPhone(h) && notInProject(env, h)
		}},
		{Name: "Meetings", Layout: LayoutList, Include: func(env *Env, _ FilterOptions, h *outline.Heading) bool {
			return IsMeeting(h) && notInProject(env, h)
		}},
	}
}
