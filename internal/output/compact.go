package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/agenda/internal/agenda"
)

// EntryCompact renders entries in one-line-per-record compact format.
func EntryCompact(w io.Writer, entries []agenda.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No entries found.")
		return
	}

	for _, e := range entries {
		fmt.Fprintln(w, FormatEntryLine(e))
	}
}

// SectionsCompact renders an agenda run with one line per entry, each
// prefixed by the section name and, for dated layouts, the day.
func SectionsCompact(w io.Writer, secs []agenda.Section) {
	for _, sec := range secs {
		fmt.Fprintf(w, "%s (%d)\n", sec.Name, sec.Count())
		for _, d := range sec.Days {
			day := d.Date.String()
			for _, e := range d.AllDay {
				fmt.Fprintln(w, "  "+day+" "+FormatEntryLine(e))
			}
			for _, e := range d.Timed {
				fmt.Fprintln(w, "  "+day+" "+e.Time+" "+FormatEntryLine(e))
			}
			for _, b := range d.Blocks {
				fmt.Fprintln(w, "  "+day+" "+b.Start+"-"+b.End+" "+FormatEntryLine(b.Entry))
			}
		}
		for _, m := range sec.Marks {
			fmt.Fprintln(w, "  "+m.Date.String()+" "+FormatEntryLine(m.Entry))
		}
		for _, e := range sec.Entries {
			fmt.Fprintln(w, "  "+FormatEntryLine(e))
			for _, n := range e.Next {
				fmt.Fprintln(w, "    > "+FormatEntryLine(n))
			}
		}
		for _, g := range sec.Groups {
			key := g.Key
			if key == "" {
				key = "(no project)"
			}
			for _, e := range g.Entries {
				fmt.Fprintln(w, "  ["+key+"] "+FormatEntryLine(e))
			}
		}
		if sec.Total != "" {
			fmt.Fprintln(w, "  total:"+sec.Total)
		}
	}
}

// FormatEntryLine builds the one-line representation of an entry.
func FormatEntryLine(e agenda.Entry) string {
	line := e.Text()
	if e.Priority != "" {
		line = strings.TrimSpace(e.Keyword+" [#"+e.Priority+"] ") + " " + e.Title
	}

	if len(e.Tags) > 0 {
		line += " :" + strings.Join(e.Tags, ":") + ":"
	}
	if !e.Scheduled.IsZero() {
		line += " S:" + e.Scheduled.Start.Format("2006-01-02")
	}
	if !e.Deadline.IsZero() {
		line += " D:" + e.Deadline.Start.Format("2006-01-02")
	}
	if !e.Closed.IsZero() {
		line += " C:" + e.Closed.Start.Format("2006-01-02")
	}
	if e.DeadlineNote != "" {
		line += " (" + e.DeadlineNote + ")"
	}
	if e.Clocked != "" {
		line += " clocked:" + e.Clocked
	}
	if e.File != "" {
		line += " " + e.FileName() + ":" + strconv.Itoa(e.Line)
	}
	return line
}
