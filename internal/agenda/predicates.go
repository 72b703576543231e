// Package agenda answers temporal and workflow questions about outline
// headings and assembles them into agenda views.
package agenda

import (
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/agenda/internal/config"
	"github.com/twiced-technology-gmbh/agenda/internal/outline"
)

const (
	archiveTag  = "ARCHIVE"
	nextKeyword = "NEXT"
	projectKey  = "PROJECT"
)

// Workflow classifies headings by their todo keyword and position in the
// outline.
type Workflow struct {
	Keywords  outline.Keywords
	ProjectIs string
}

// DefaultWorkflow uses the built-in keywords and nested-todo projects.
func DefaultWorkflow() Workflow {
	return Workflow{Keywords: outline.DefaultKeywords(), ProjectIs: config.ProjectNestedTodo}
}

// keywords prefers the keywords of the heading's own document, which
// include its #+TODO declarations.
func (w Workflow) keywords(h *outline.Heading) outline.Keywords {
	if doc := h.Document(); doc != nil && (len(doc.Keywords.Todo) > 0 || len(doc.Keywords.Done) > 0) {
		return doc.Keywords
	}
	return w.Keywords
}

// IsTodo reports whether h carries an open todo keyword.
func (w Workflow) IsTodo(h *outline.Heading) bool {
	return h != nil && h.Keyword != "" && slices.Contains(w.keywords(h).Todo, h.Keyword)
}

// IsDone reports whether h carries a done keyword.
func (w Workflow) IsDone(h *outline.Heading) bool {
	return h != nil && h.Keyword != "" && slices.Contains(w.keywords(h).Done, h.Keyword)
}

// IsArchived reports whether h inherits the ARCHIVE tag.
func IsArchived(h *outline.Heading) bool {
	return h != nil && h.HasTag(archiveTag)
}

// IsPhone reports whether the keyword of h mentions PHONE.
func IsPhone(h *outline.Heading) bool { return keywordContains(h, "PHONE") }

// IsMeeting reports whether the keyword of h mentions MEETING.
func IsMeeting(h *outline.Heading) bool { return keywordContains(h, "MEETING") }

// IsNote reports whether the keyword of h mentions NOTE.
func IsNote(h *outline.Heading) bool { return keywordContains(h, "NOTE") }

func keywordContains(h *outline.Heading, s string) bool {
	return h != nil && h.Keyword != "" && strings.Contains(h.Keyword, s)
}

// HasChildTasks reports whether any direct child of h is an open todo.
func (w Workflow) HasChildTasks(h *outline.Heading) bool {
	if h == nil {
		return false
	}
	return slices.ContainsFunc(h.Children(), w.IsTodo)
}

// HasTodoAncestor reports whether some heading above h, short of the
// document root, is an open todo.
func (w Workflow) HasTodoAncestor(h *outline.Heading) bool {
	if h == nil || h.IsRoot() {
		return false
	}
	for p := h.Parent(); p != nil && !p.IsRoot(); p = p.Parent() {
		if w.IsTodo(p) {
			return true
		}
	}
	return false
}

// IsProject reports whether h is a project under the configured mode.
func (w Workflow) IsProject(h *outline.Heading) bool {
	if h == nil || h.IsRoot() {
		return false
	}
	switch w.ProjectIs {
	case config.ProjectTag:
		return slices.ContainsFunc(h.OwnTags, isProjectWord)
	case config.ProjectProperty:
		for _, key := range []string{projectKey, "Project", "project"} {
			if v, ok := h.Property(key); ok && v != "" {
				return true
			}
		}
		return false
	default:
		return w.IsTodo(h) && w.HasChildTasks(h)
	}
}

func isProjectWord(s string) bool {
	return s == projectKey || s == "Project" || s == "project"
}

// IsProjectTask reports whether h is an open todo directly below a project.
func (w Workflow) IsProjectTask(h *outline.Heading) bool {
	if h == nil || h.IsRoot() || !w.IsTodo(h) {
		return false
	}
	p := h.Parent()
	return p != nil && !p.IsRoot() && w.IsProject(p)
}

// IsBlockedProject reports whether h is a project with children of which
// none is marked NEXT.
func (w Workflow) IsBlockedProject(h *outline.Heading) bool {
	if !w.IsProject(h) || len(h.Children()) == 0 {
		return false
	}
	return !slices.ContainsFunc(h.Children(), isNext)
}

func isNext(h *outline.Heading) bool { return h.Keyword == nextKeyword }

// NextTasks returns the children of h marked NEXT.
func NextTasks(h *outline.Heading) []*outline.Heading {
	var out []*outline.Heading
	for _, c := range h.Children() {
		if isNext(c) {
			out = append(out, c)
		}
	}
	return out
}

// HasTimestamp reports whether h is scheduled, has a deadline or carries an
// active inline timestamp.
func HasTimestamp(h *outline.Heading) bool {
	if h == nil {
		return false
	}
	return !h.Scheduled.IsZero() || !h.Deadline.IsZero() || len(h.Timestamps(outline.ActiveAny)) > 0
}
