package agenda

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/twiced-technology-gmbh/agenda/internal/outline"
)

func titles(hs []*outline.Heading) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.Title)
	}
	return out
}

func TestSortKeyPriorityOrder(t *testing.T) {
	t.Parallel()

	wf := DefaultWorkflow()
	hs := parseAll(t, `* TODO None
  SCHEDULED: <2024-03-15 Fri>
* TODO [#B] Second
  SCHEDULED: <2024-03-15 Fri>
* TODO [#A] First
  SCHEDULED: <2024-03-15 Fri>
`)

	wf.Sort(hs, false)
	if diff := cmp.Diff([]string{"First", "Second", "None"}, titles(hs)); diff != "" {
		t.Errorf("ascending (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(100), wf.SortKey(hs[1])-wf.SortKey(hs[0]))
	assert.Equal(t, int64(2500), wf.SortKey(hs[2])-wf.SortKey(hs[1]))

	wf.Sort(hs, true)
	assert.Equal(t, []string{"None", "Second", "First"}, titles(hs))
}

func TestSortKeyStateOrder(t *testing.T) {
	t.Parallel()

	wf := DefaultWorkflow()
	hs := parseAll(t, `* DONE Finished :ARCHIVE:
  SCHEDULED: <2024-03-15 Fri>
* DONE Done
  SCHEDULED: <2024-03-15 Fri>
* TODO Open
  SCHEDULED: <2024-03-15 Fri>
* Plain
  SCHEDULED: <2024-03-15 Fri>
`)
	base := wf.SortKey(hs[3])
	assert.Equal(t, base+1, wf.SortKey(hs[2]))
	assert.Equal(t, base+2, wf.SortKey(hs[1]))
	assert.Equal(t, base+5, wf.SortKey(hs[0]))

	wf.Sort(hs, false)
	assert.Equal(t, []string{"Plain", "Open", "Done", "Finished"}, titles(hs))
}

func TestSortDatePrecedence(t *testing.T) {
	t.Parallel()

	inline := heading(t, "* A <2024-05-01 Wed>\n  SCHEDULED: <2024-01-01 Mon> DEADLINE: <2024-02-01 Thu>\n")
	assert.Equal(t, day(2024, 5, 1).Unix(), SortDate(inline).Unix())

	deadline := heading(t, "* B\n  SCHEDULED: <2024-01-01 Mon> DEADLINE: <2024-02-01 Thu>\n")
	assert.Equal(t, day(2024, 2, 1).Unix(), SortDate(deadline).Unix())

	closed := heading(t, "* DONE C\n  CLOSED: [2024-03-01 Fri]\n")
	assert.Equal(t, day(2024, 3, 1).Unix(), SortDate(closed).Unix())

	assert.True(t, SortDate(heading(t, "* D\n")).Equal(minInstant))
}

func TestSortUndatedFirstAscending(t *testing.T) {
	t.Parallel()

	wf := DefaultWorkflow()
	hs := parseAll(t, "* TODO Dated\n  DEADLINE: <2024-03-15 Fri>\n* TODO Undated\n")
	wf.Sort(hs, false)
	assert.Equal(t, []string{"Undated", "Dated"}, titles(hs))
}

func TestSortBy(t *testing.T) {
	t.Parallel()

	wf := DefaultWorkflow()
	hs := parseAll(t, "* TODO [#C] banana\n* TODO apple\n* TODO [#A] cherry\n")

	wf.SortBy(hs, SortByTitle, false)
	assert.Equal(t, []string{"apple", "banana", "cherry"}, titles(hs))

	wf.SortBy(hs, SortByTitle, true)
	assert.Equal(t, []string{"cherry", "banana", "apple"}, titles(hs))

	wf.SortBy(hs, SortByPriority, false)
	assert.Equal(t, []string{"cherry", "banana", "apple"}, titles(hs))
}

func TestGroupByProject(t *testing.T) {
	t.Parallel()

	wf := DefaultWorkflow()
	hs := parseAll(t, projectsDoc)
	var tasks []*outline.Heading
	for _, h := range hs {
		if wf.IsTodo(h) && !wf.IsProject(h) && !IsArchived(h) {
			tasks = append(tasks, h)
		}
	}

	groups := wf.GroupBy(tasks, GroupByProject)
	got := make(map[string][]string)
	var keys []string
	for _, g := range groups {
		keys = append(keys, g.Key)
		got[g.Key] = titles(g.Headings)
	}
	assert.Equal(t, []string{"Project Alpha", "Project Beta", ""}, keys)
	assert.Equal(t, []string{"Call supplier", "Draft plan"}, got["Project Alpha"])
	assert.Equal(t, []string{"Loose errand", "Nested under plain heading"}, got[""])
}

func TestGroupByStateFollowsKeywordOrder(t *testing.T) {
	t.Parallel()

	wf := DefaultWorkflow()
	hs := parseAll(t, "* DONE a\n* WAITING b\n* TODO c\n* d\n")
	var keys []string
	for _, g := range wf.GroupBy(hs, GroupByState) {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []string{"TODO", "WAITING", "DONE", "(none)"}, keys)
}
