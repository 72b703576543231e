// Package outline reads org files into trees of headings carrying their
// planning timestamps, clocks, properties and inline timestamps.
package outline

import (
	"path/filepath"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/twiced-technology-gmbh/agenda/internal/orgdate"
)

// Keywords are the workflow states recognized at the start of a headline.
type Keywords struct {
	Todo []string `yaml:"todo" json:"todo"`
	Done []string `yaml:"done" json:"done"`
}

// DefaultKeywords returns the built-in todo and done states.
func DefaultKeywords() Keywords {
	return Keywords{
		Todo: []string{"TODO", "NEXT", "WAITING", "PHONE", "MEETING", "NOTE"},
		Done: []string{"DONE", "CANCELLED"},
	}
}

// Has reports whether word is any known keyword.
func (k Keywords) Has(word string) bool {
	return slices.Contains(k.Todo, word) || slices.Contains(k.Done, word)
}

func (k Keywords) merge(other Keywords) Keywords {
	out := Keywords{Todo: slices.Clone(k.Todo), Done: slices.Clone(k.Done)}
	for _, w := range other.Todo {
		if !out.Has(w) {
			out.Todo = append(out.Todo, w)
		}
	}
	for _, w := range other.Done {
		if !out.Has(w) {
			out.Done = append(out.Done, w)
		}
	}
	return out
}

// Document is one parsed org file.
type Document struct {
	Path     string
	Root     *Heading
	FileTags []string
	Keywords Keywords
}

// Name is the file name without directory and extension.
func (d *Document) Name() string {
	base := filepath.Base(d.Path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// Headings returns every heading below the root in document order.
func (d *Document) Headings() []*Heading {
	var out []*Heading
	d.Root.Walk(func(h *Heading) {
		if !h.IsRoot() {
			out = append(out, h)
		}
	})
	return out
}

// StateChange is a "- State "DONE" from "TODO" [date]" logbook entry.
type StateChange struct {
	From string            `json:"from,omitempty"`
	To   string            `json:"to"`
	At   orgdate.Timestamp `json:"at"`
}

// Heading is one node of the outline. The root heading has level 0 and
// holds the text before the first headline.
type Heading struct {
	Level      int
	Title      string
	Keyword    string
	Priority   string
	OwnTags    []string
	Scheduled  orgdate.Timestamp
	Deadline   orgdate.Timestamp
	Closed     orgdate.Timestamp
	Clocks     []orgdate.Clock
	Properties map[string]string
	History    []StateChange
	Body       []string
	Line       int

	stamps   []orgdate.Timestamp
	parent   *Heading
	children []*Heading
	doc      *Document
}

// Parent returns the enclosing heading, nil for the root.
func (h *Heading) Parent() *Heading { return h.parent }

// Children returns the direct sub-headings.
func (h *Heading) Children() []*Heading { return h.children }

// IsRoot reports whether h is the document root.
func (h *Heading) IsRoot() bool { return h.parent == nil }

// Document returns the file h belongs to.
func (h *Heading) Document() *Document { return h.doc }

// File returns the path of the file h belongs to.
func (h *Heading) File() string {
	if h.doc == nil {
		return ""
	}
	return h.doc.Path
}

// ID is a stable identifier derived from the file path and headline line.
func (h *Heading) ID() string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+h.File()+"#"+strconv.Itoa(h.Line))).String()
}

// Walk visits h and its descendants depth first.
func (h *Heading) Walk(fn func(*Heading)) {
	fn(h)
	for _, c := range h.children {
		c.Walk(fn)
	}
}

// Tags returns the file tags, the tags of every ancestor and the heading's
// own tags, without duplicates.
func (h *Heading) Tags() []string {
	var chain []*Heading
	for n := h; n != nil; n = n.parent {
		chain = append(chain, n)
	}
	var out []string
	if h.doc != nil {
		out = append(out, h.doc.FileTags...)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, t := range chain[i].OwnTags {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	return out
}

// HasTag reports whether tag is among the inherited tags.
func (h *Heading) HasTag(tag string) bool {
	return slices.Contains(h.Tags(), tag)
}

// Property returns a drawer property.
func (h *Heading) Property(key string) (string, bool) {
	v, ok := h.Properties[key]
	return v, ok
}

// Selector chooses which inline timestamps Timestamps returns.
type Selector struct {
	Active   bool
	Inactive bool
	Point    bool
	Range    bool
}

// ActiveAny selects active points and ranges, the agenda default.
var ActiveAny = Selector{Active: true, Point: true, Range: true}

// Timestamps returns the inline timestamps of the headline and body that
// match sel, in document order. Planning and clock lines are not included.
func (h *Heading) Timestamps(sel Selector) []orgdate.Timestamp {
	var out []orgdate.Timestamp
	for _, ts := range h.stamps {
		if ts.Active && !sel.Active || !ts.Active && !sel.Inactive {
			continue
		}
		if ts.HasEnd() && !sel.Range || !ts.HasEnd() && !sel.Point {
			continue
		}
		out = append(out, ts)
	}
	return out
}

// Text returns the keyword and title as shown in a headline.
func (h *Heading) Text() string {
	if h.Keyword == "" {
		return h.Title
	}
	return h.Keyword + " " + h.Title
}
