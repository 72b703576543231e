package agenda

import (
	"slices"
	"sort"

	"github.com/twiced-technology-gmbh/agenda/internal/outline"
)

// Grouping fields.
const (
	GroupByProject  = "project"
	GroupByTag      = "tag"
	GroupByState    = "state"
	GroupByPriority = "priority"
	GroupByFile     = "file"
)

const (
	untagged   = "(untagged)"
	noState    = "(none)"
	noPriority = "(none)"
)

// Group is one bucket of a grouped list. The loose-task bucket of a
// project grouping has an empty key.
type Group struct {
	Key      string
	Headings []*outline.Heading
}

// ValidGroupByFields returns the accepted --group-by values.
func ValidGroupByFields() []string {
	return []string{GroupByProject, GroupByTag, GroupByState, GroupByPriority, GroupByFile}
}

// GroupBy buckets hs by field, keeping the order of hs inside each bucket.
// Project groups keep first-seen order with loose tasks last; state groups
// follow keyword order; other groups sort by key.
func (w Workflow) GroupBy(hs []*outline.Heading, field string) []Group {
	var order []string
	groups := make(map[string][]*outline.Heading)
	add := func(key string, h *outline.Heading) {
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], h)
	}
	for _, h := range hs {
		for _, key := range w.groupKeys(h, field) {
			add(key, h)
		}
	}

	switch field {
	case GroupByProject:
		if i := slices.Index(order, ""); i >= 0 {
			order = append(slices.Delete(order, i, i+1), "")
		}
	case GroupByState:
		rank := func(k string) int {
			all := append(slices.Clone(w.Keywords.Todo), w.Keywords.Done...)
			if i := slices.Index(all, k); i >= 0 {
				return i
			}
			return len(all)
		}
		sort.SliceStable(order, func(i, j int) bool { return rank(order[i]) < rank(order[j]) })
	case GroupByPriority:
		sort.SliceStable(order, func(i, j int) bool {
			return priorityRank(order[i]) < priorityRank(order[j])
		})
	default:
		sort.Strings(order)
	}

	out := make([]Group, 0, len(order))
	for _, key := range order {
		out = append(out, Group{Key: key, Headings: groups[key]})
	}
	return out
}

func (w Workflow) groupKeys(h *outline.Heading, field string) []string {
	switch field {
	case GroupByProject:
		if p := h.Parent(); p != nil && !p.IsRoot() && w.IsProject(p) {
			return []string{p.Title}
		}
		return []string{""}
	case GroupByTag:
		if tags := h.Tags(); len(tags) > 0 {
			return tags
		}
		return []string{untagged}
	case GroupByState:
		if h.Keyword == "" {
			return []string{noState}
		}
		return []string{h.Keyword}
	case GroupByPriority:
		if h.Priority == "" {
			return []string{noPriority}
		}
		return []string{h.Priority}
	case GroupByFile:
		if doc := h.Document(); doc != nil {
			return []string{doc.Name()}
		}
		return []string{""}
	default:
		return []string{""}
	}
}
