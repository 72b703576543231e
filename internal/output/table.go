package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/twiced-technology-gmbh/agenda/internal/agenda"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	dayStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Keyword colors by workflow state.
	stateStyles = map[string]lipgloss.Style{
		"todo": lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
		"done": lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}

	priorityStyles = map[string]lipgloss.Style{
		"A": lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		"B": lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"C": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
	}

	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("44")).Bold(true)
	deadlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// DisableColor strips all styling from table output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	headerStyle = lipgloss.NewStyle()
	sectionStyle = lipgloss.NewStyle()
	dayStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	stateStyles = map[string]lipgloss.Style{}
	priorityStyles = map[string]lipgloss.Style{}
	tagStyle = lipgloss.NewStyle()
	timeStyle = lipgloss.NewStyle()
	deadlineStyle = lipgloss.NewStyle()
}

// ColorSupported reports whether stdout is a terminal that renders colour.
func ColorSupported() bool {
	return termenv.NewOutput(os.Stdout).Profile != termenv.Ascii
}

// StateClassifier tells the renderers whether a keyword is open or done.
type StateClassifier func(keyword string) string

// classify is set by the CLI from the configured keywords.
var classify StateClassifier = func(string) string { return "" }

// SetStateClassifier installs fn for keyword colouring.
func SetStateClassifier(fn StateClassifier) {
	if fn != nil {
		classify = fn
	}
}

// Sections renders every section of an agenda run.
func Sections(w io.Writer, secs []agenda.Section) {
	for i, sec := range secs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		Section(w, sec)
	}
}

// Section renders one view according to its layout.
func Section(w io.Writer, sec agenda.Section) {
	title := sectionStyle.Render(sec.Name)
	if !sec.Date.IsZero() {
		title += "  " + dimStyle.Render(sec.Date.Format("Mon 2006-01-02"))
	}
	fmt.Fprintln(w, title)

	switch sec.Layout {
	case agenda.LayoutDay, agenda.LayoutWeekAgenda:
		for _, d := range sec.Days {
			dayAgenda(w, d, len(sec.Days) > 1)
		}
	case agenda.LayoutWeek:
		for _, d := range sec.Days {
			weekGrid(w, d)
		}
	case agenda.LayoutCalendar:
		calendar(w, sec.Marks)
	case agenda.LayoutNextTasks:
		nextTasks(w, sec.Entries)
	default:
		if len(sec.Groups) > 0 {
			GroupedTable(w, sec.Groups)
		} else {
			EntryTable(w, sec.Entries)
		}
	}
	if sec.Total != "" {
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Total clocked:"), sec.Total)
	}
}

func dayAgenda(w io.Writer, d agenda.Day, showDate bool) {
	if showDate {
		fmt.Fprintln(w, dayStyle.Render(d.Date.Format("Mon 2006-01-02")))
	}
	if len(d.AllDay) == 0 && len(d.Timed) == 0 {
		fmt.Fprintln(w, "  "+dimStyle.Render("--"))
		return
	}
	const timeColW = 13
	for _, e := range d.AllDay {
		fmt.Fprintf(w, "  %s %s\n", padRight(dimStyle.Render("all day"), timeColW), entryLine(e))
	}
	for _, e := range d.Timed {
		span := e.Time
		if e.End != "" {
			span += "-" + e.End
		}
		fmt.Fprintf(w, "  %s %s\n", padRight(timeStyle.Render(span), timeColW), entryLine(e))
	}
}

func weekGrid(w io.Writer, d agenda.Day) {
	fmt.Fprintln(w, dayStyle.Render(d.Date.Format("Mon 2006-01-02")))
	if len(d.Blocks) == 0 {
		fmt.Fprintln(w, "  "+dimStyle.Render("--"))
		return
	}
	const timeColW = 13
	for _, b := range d.Blocks {
		fmt.Fprintf(w, "  %s %s\n", padRight(timeStyle.Render(b.Start+"-"+b.End), timeColW), entryLine(b.Entry))
	}
}

func calendar(w io.Writer, marks []agenda.Mark) {
	if len(marks) == 0 {
		fmt.Fprintln(w, "  "+dimStyle.Render("--"))
		return
	}
	const dateColW = 12
	for _, m := range marks {
		line := entryLine(m.Entry)
		if m.Repeating {
			line += " " + dimStyle.Render("(repeats)")
		}
		fmt.Fprintf(w, "  %s %s\n", padRight(m.Date.String(), dateColW), line)
	}
}

func nextTasks(w io.Writer, es []agenda.Entry) {
	if len(es) == 0 {
		fmt.Fprintln(w, "  "+dimStyle.Render("--"))
		return
	}
	for _, e := range es {
		fmt.Fprintln(w, "  "+entryLine(e))
		for _, n := range e.Next {
			fmt.Fprintln(w, "    > "+entryLine(n))
		}
	}
}

// entryLine renders keyword, priority, title, tags and deadline note.
func entryLine(e agenda.Entry) string {
	var parts []string
	if e.Keyword != "" {
		parts = append(parts, styledValue(e.Keyword, classify(e.Keyword), stateStyles))
	}
	if e.Priority != "" {
		parts = append(parts, styledValue("[#"+e.Priority+"]", e.Priority, priorityStyles))
	}
	parts = append(parts, e.Title)
	if len(e.Tags) > 0 {
		parts = append(parts, tagStyle.Render(":"+strings.Join(e.Tags, ":")+":"))
	}
	if e.DeadlineNote != "" {
		parts = append(parts, deadlineStyle.Render(e.DeadlineNote))
	}
	return strings.Join(parts, " ")
}

// EntryTable renders entries as a formatted table.
func EntryTable(w io.Writer, entries []agenda.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No entries found.")
		return
	}

	const pad = 2
	stateW, prioW, titleW, tagsW, dateW := 7, 5, 7, 6, 16
	for _, e := range entries {
		stateW = max(stateW, len(e.Keyword)+pad)
		titleW = max(titleW, min(len(e.Title)+pad, 50)) //nolint:mnd // max title column width
		dateW = max(dateW, len(entryDate(e))+pad)
		tagsW = max(tagsW, min(len(strings.Join(e.Tags, ","))+pad, 30)) //nolint:mnd // max tags column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %s",
		stateW, "STATE", prioW, "PRI", titleW, "TITLE", tagsW, "TAGS", dateW, "DATE", "FILE")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, e := range entries {
		title := e.Title
		const maxTitle = 48
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		state := dimStyle.Render("--")
		if e.Keyword != "" {
			state = styledValue(e.Keyword, classify(e.Keyword), stateStyles)
		}
		prio := dimStyle.Render("--")
		if e.Priority != "" {
			prio = styledValue(e.Priority, e.Priority, priorityStyles)
		}
		tags := strings.Join(e.Tags, ",")
		if tags == "" {
			tags = dimStyle.Render("--")
		} else {
			tags = tagStyle.Render(tags)
		}
		when := entryDate(e)
		if when == "" {
			when = dimStyle.Render("--")
		}
		file := e.FileName()
		if file == "" {
			file = dimStyle.Render("--")
		} else {
			file = fmt.Sprintf("%s:%d", file, e.Line)
		}

		row := fmt.Sprintf("%s %s %s %s %s %s",
			padRight(state, stateW),
			padRight(prio, prioW),
			padRight(title, titleW),
			padRight(tags, tagsW),
			padRight(when, dateW),
			file)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// entryDate picks the most telling planning date of e.
func entryDate(e agenda.Entry) string {
	switch {
	case !e.Deadline.IsZero():
		return "D:" + e.Deadline.Start.Format("2006-01-02")
	case !e.Scheduled.IsZero():
		return "S:" + e.Scheduled.Start.Format("2006-01-02")
	case !e.Closed.IsZero():
		return "C:" + e.Closed.Start.Format("2006-01-02")
	}
	return ""
}

// GroupedTable renders grouped entries, one table per group.
func GroupedTable(w io.Writer, groups []agenda.EntryGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(os.Stderr, "No groups found.")
		return
	}

	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		key := g.Key
		if key == "" {
			key = "(no project)"
		}
		title := fmt.Sprintf("%s (%d entries)", key, len(g.Entries))
		fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(title))
		EntryTable(w, g.Entries)
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

// Field prints an indented "label: value" line.
func Field(w io.Writer, label, value string) {
	if value == "" {
		value = dimStyle.Render("--")
	}
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

// styledValue renders s using the style stored under key, or returns s
// unchanged.
func styledValue(s, key string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[key]; ok {
		return st.Render(s)
	}
	return s
}
