package outline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/twiced-technology-gmbh/agenda/internal/orgdate"
)

var (
	headlineRe = regexp.MustCompile(`^(\*+)\s+(.*?)\s*$`)
	priorityRe = regexp.MustCompile(`^\[#([A-Za-z0-9])\]\s*`)
	tagsRe     = regexp.MustCompile(`\s+(:[\w@#%:]+:)$`)
	drawerRe   = regexp.MustCompile(`^\s*:([A-Za-z_-]+):\s*$`)
	propertyRe = regexp.MustCompile(`^\s*:([^:\s]+):\s*(.*?)\s*$`)
	stateRe    = regexp.MustCompile(`^\s*-\s+State\s+"(?P<to>[^"]*)"(?:\s+from\s+"(?P<from>[^"]*)")?\s+(?P<ts>\[[^\]]+\])`)
	todoLineRe = regexp.MustCompile(`^#\+(?:SEQ_|TYP_)?TODO:\s*(.*)$`)
	fileTagsRe = regexp.MustCompile(`^#\+FILETAGS:\s*(.*)$`)
)

// ReadFile parses the org file at path.
func ReadFile(path string, kw Keywords) (*Document, error) {
	f, err := os.Open(path) //nolint:gosec // org path from config
	if err != nil {
		return nil, fmt.Errorf("reading org file: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f, kw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// ParseString parses org text held in memory.
func ParseString(text string, kw Keywords) *Document {
	doc, _ := Parse(strings.NewReader(text), kw)
	return doc
}

// Parse reads an org document. In-file "#+TODO:" lines extend kw for that
// document only.
func Parse(r io.Reader, kw Keywords) (*Document, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{Keywords: kw.merge(fileKeywords(lines))}
	doc.Root = &Heading{doc: doc, Properties: map[string]string{}}

	p := parser{doc: doc, cur: doc.Root}
	for i, line := range lines {
		p.line(i+1, line)
	}
	return doc, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return lines, nil
}

// fileKeywords collects "#+TODO: A B | C" declarations. Without a bar the
// last word is the done state.
func fileKeywords(lines []string) Keywords {
	var kw Keywords
	for _, line := range lines {
		if strings.HasPrefix(line, "*") {
			break
		}
		m := todoLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		todo, done, found := strings.Cut(m[1], "|")
		words := strings.Fields(todo)
		if !found && len(words) > 0 {
			kw.Todo = append(kw.Todo, words[:len(words)-1]...)
			kw.Done = append(kw.Done, words[len(words)-1])
			continue
		}
		kw.Todo = append(kw.Todo, words...)
		kw.Done = append(kw.Done, strings.Fields(done)...)
	}
	for i, w := range kw.Todo {
		kw.Todo[i] = stripFastKey(w)
	}
	for i, w := range kw.Done {
		kw.Done[i] = stripFastKey(w)
	}
	return kw
}

// stripFastKey drops a selection key such as "TODO(t)".
func stripFastKey(w string) string {
	if i := strings.IndexByte(w, '('); i > 0 {
		return w[:i]
	}
	return w
}

type parser struct {
	doc    *Document
	cur    *Heading
	drawer string
}

func (p *parser) line(n int, line string) {
	if m := headlineRe.FindStringSubmatch(line); m != nil {
		p.headline(n, len(m[1]), m[2])
		return
	}
	h := p.cur

	if p.drawer != "" {
		p.drawerLine(h, line)
		return
	}
	if m := drawerRe.FindStringSubmatch(line); m != nil && !strings.EqualFold(m[1], "END") {
		p.drawer = strings.ToUpper(m[1])
		return
	}
	if h.IsRoot() {
		if m := fileTagsRe.FindStringSubmatch(line); m != nil {
			p.doc.FileTags = append(p.doc.FileTags, splitTags(m[1])...)
			return
		}
	}
	if c, ok := orgdate.ParseClock(line); ok {
		h.Clocks = append(h.Clocks, c)
		return
	}
	if !h.IsRoot() {
		if pl := orgdate.ParsePlanning(line); !pl.IsZero() {
			if !pl.Scheduled.IsZero() {
				h.Scheduled = pl.Scheduled
			}
			if !pl.Deadline.IsZero() {
				h.Deadline = pl.Deadline
			}
			if !pl.Closed.IsZero() {
				h.Closed = pl.Closed
			}
			return
		}
	}
	if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "#") {
		if !strings.HasPrefix(trimmed, "#+") {
			h.Body = append(h.Body, line)
		}
		return
	}
	h.Body = append(h.Body, line)
	h.stamps = append(h.stamps, orgdate.ParseAll(line)...)
}

func (p *parser) drawerLine(h *Heading, line string) {
	if m := drawerRe.FindStringSubmatch(line); m != nil && strings.EqualFold(m[1], "END") {
		p.drawer = ""
		return
	}
	switch p.drawer {
	case "PROPERTIES":
		if m := propertyRe.FindStringSubmatch(line); m != nil {
			h.Properties[m[1]] = m[2]
		}
	case "LOGBOOK":
		if c, ok := orgdate.ParseClock(line); ok {
			h.Clocks = append(h.Clocks, c)
			return
		}
		if m := stateRe.FindStringSubmatch(line); m != nil {
			h.History = append(h.History, StateChange{
				To:   m[stateRe.SubexpIndex("to")],
				From: m[stateRe.SubexpIndex("from")],
				At:   orgdate.Parse(m[stateRe.SubexpIndex("ts")]),
			})
		}
	}
}

func (p *parser) headline(n, level int, text string) {
	h := &Heading{Level: level, Line: n, doc: p.doc, Properties: map[string]string{}}

	if word, rest, _ := strings.Cut(text, " "); p.doc.Keywords.Has(word) {
		h.Keyword = word
		text = strings.TrimSpace(rest)
	}
	if m := priorityRe.FindStringSubmatch(text); m != nil {
		h.Priority = strings.ToUpper(m[1])
		text = text[len(m[0]):]
	}
	padded := " " + text
	if m := tagsRe.FindStringSubmatchIndex(padded); m != nil {
		h.OwnTags = splitTags(padded[m[2]:m[3]])
		text = strings.TrimSpace(padded[:m[0]])
	}
	h.Title = text
	h.stamps = orgdate.ParseAll(text)

	parent := p.cur
	for !parent.IsRoot() && parent.Level >= level {
		parent = parent.parent
	}
	h.parent = parent
	parent.children = append(parent.children, h)

	p.cur = h
	p.drawer = ""
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ' ' }) {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
