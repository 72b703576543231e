package agenda

import (
	"sort"
	"time"

	"github.com/twiced-technology-gmbh/agenda/internal/outline"
)

const (
	msPerSecond    = 1000
	priorityStep   = 100
	noPriorityRank = 26 // after Z
)

// minInstant is the sort date of headings without any timestamp.
var minInstant = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// SortDate returns the instant a heading sorts by: its first active inline
// timestamp, else the deadline, else the schedule, else the closed date.
func SortDate(h *outline.Heading) time.Time {
	if inline := h.Timestamps(outline.ActiveAny); len(inline) > 0 {
		return inline[0].Start
	}
	for _, ts := range []time.Time{h.Deadline.Start, h.Scheduled.Start, h.Closed.Start} {
		if !ts.IsZero() {
			return ts
		}
	}
	return minInstant
}

// SortKey ranks h by date in milliseconds since the epoch, then priority
// (A=0, B=100 and so on, none after Z), then todo before done before
// archived.
func (w Workflow) SortKey(h *outline.Heading) int64 {
	key := SortDate(h).Unix() * msPerSecond
	key += int64(priorityRank(h.Priority) * priorityStep)
	if w.IsTodo(h) {
		key++
	}
	if w.IsDone(h) {
		key += 2
	}
	if IsArchived(h) {
		key += 3
	}
	return key
}

func priorityRank(p string) int {
	if p == "" {
		return noPriorityRank
	}
	c := p[0]
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A')
	case c >= 'a' && c <= 'z':
		return int(c - 'a')
	default:
		return noPriorityRank
	}
}

// Sort orders hs by SortKey, ascending unless descending is set. Equal
// keys keep document order.
func (w Workflow) Sort(hs []*outline.Heading, descending bool) {
	keys := make(map[*outline.Heading]int64, len(hs))
	for _, h := range hs {
		keys[h] = w.SortKey(h)
	}
	sort.SliceStable(hs, func(i, j int) bool {
		if descending {
			return keys[hs[i]] > keys[hs[j]]
		}
		return keys[hs[i]] < keys[hs[j]]
	})
}

// Fields accepted by SortBy.
const (
	SortByKey      = "key"
	SortByPriority = "priority"
	SortByTitle    = "title"
	SortByFile     = "file"
)

// ValidSortFields returns the accepted --sort values.
func ValidSortFields() []string {
	return []string{SortByKey, SortByPriority, SortByTitle, SortByFile}
}

// SortBy orders hs by field. Unknown fields fall back to the sort key.
func (w Workflow) SortBy(hs []*outline.Heading, field string, reverse bool) {
	if field == "" || field == SortByKey {
		w.Sort(hs, reverse)
		return
	}
	sort.SliceStable(hs, func(i, j int) bool {
		if reverse {
			return compareHeadings(hs[j], hs[i], field)
		}
		return compareHeadings(hs[i], hs[j], field)
	})
}

func compareHeadings(a, b *outline.Heading, field string) bool {
	switch field {
	case SortByPriority:
		return priorityRank(a.Priority) < priorityRank(b.Priority)
	case SortByTitle:
		return a.Title < b.Title
	case SortByFile:
		if a.File() != b.File() {
			return a.File() < b.File()
		}
		return a.Line < b.Line
	default:
		return false
	}
}
