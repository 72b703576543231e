package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/agenda/internal/agenda"
	"github.com/twiced-technology-gmbh/agenda/internal/date"
	"github.com/twiced-technology-gmbh/agenda/internal/outline"
)

const doc = `* TODO [#A] Pay rent :home:
  DEADLINE: <2024-03-20 Wed>
* Standup <2024-03-15 Fri 09:00-09:15>
`

func entries(t *testing.T) []agenda.Entry {
	t.Helper()
	hs := outline.ParseString(doc, outline.DefaultKeywords()).Headings()
	require.Len(t, hs, 2)
	return []agenda.Entry{agenda.NewEntry(hs[0]), agenda.NewEntry(hs[1])}
}

func TestDetect(t *testing.T) {
	t.Setenv(EnvOutput, "")
	assert.Equal(t, FormatJSON, Detect(true, true, true))
	assert.Equal(t, FormatCompact, Detect(false, true, true))
	assert.Equal(t, FormatTable, Detect(false, false, false))

	t.Setenv(EnvOutput, "oneline")
	assert.Equal(t, FormatCompact, Detect(false, false, false))
	t.Setenv(EnvOutput, "json")
	assert.Equal(t, FormatJSON, Detect(false, false, false))
	t.Setenv(EnvOutput, "yaml")
	assert.Equal(t, FormatTable, Detect(false, false, false))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, ok := ParseFormat(" OneLine ")
	require.True(t, ok)
	assert.Equal(t, FormatCompact, f)
	assert.Equal(t, "compact", f.String())

	_, ok = ParseFormat("xml")
	assert.False(t, ok)
	assert.Equal(t, "table", FormatAuto.String())
}

func TestFormatEntryLine(t *testing.T) {
	t.Parallel()

	es := entries(t)
	assert.Equal(t, "TODO [#A] Pay rent :home: D:2024-03-20", FormatEntryLine(es[0]))
	assert.Equal(t, "Standup <2024-03-15 Fri 09:00-09:15>", FormatEntryLine(es[1]))
}

func TestSectionsCompact(t *testing.T) {
	t.Parallel()

	es := entries(t)
	es[0].DeadlineNote = "D:@2024-03-20"
	es[1].Time = "09:00"
	sec := agenda.Section{
		Name:   "Day",
		Layout: agenda.LayoutDay,
		Days: []agenda.Day{{
			Date:   date.New(2024, 3, 15),
			AllDay: es[:1],
			Timed:  es[1:],
		}},
	}

	var buf bytes.Buffer
	SectionsCompact(&buf, []agenda.Section{sec})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Day (2)", lines[0])
	assert.Equal(t, "  2024-03-15 TODO [#A] Pay rent :home: D:2024-03-20 (D:@2024-03-20)", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "  2024-03-15 09:00 Standup"))
}

func TestSectionTableListsEntries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Section(&buf, agenda.Section{Name: "Todos", Layout: agenda.LayoutList, Entries: entries(t)})
	out := buf.String()
	assert.Contains(t, out, "Todos")
	assert.Contains(t, out, "STATE")
	assert.Contains(t, out, "Pay rent")
	assert.Contains(t, out, "D:2024-03-20")
}

func TestJSONViewResult(t *testing.T) {
	t.Parallel()

	env := agenda.DefaultEnv(date.New(2024, 3, 15), time.Date(2024, 3, 15, 8, 0, 0, 0, time.Local))
	v, _, err := agenda.NewRegistry().Build("Day", env.Workflow)
	require.NoError(t, err)
	hs := outline.ParseString(doc, outline.DefaultKeywords()).Headings()

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, ViewResult{View: "Day", Date: "2024-03-15", Sections: []agenda.Section{v.Run(env, hs)}}))

	var decoded struct {
		Sections []struct {
			Layout string `json:"layout"`
			Days   []struct {
				Date   string `json:"date"`
				AllDay []struct {
					Title        string `json:"title"`
					DeadlineNote string `json:"deadline_note"`
				} `json:"all_day"`
				Timed []struct {
					Title string `json:"title"`
					Time  string `json:"time"`
					End   string `json:"end"`
				} `json:"timed"`
			} `json:"days"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Sections, 1)
	day := decoded.Sections[0].Days[0]
	assert.Equal(t, "2024-03-15", day.Date)
	require.Len(t, day.AllDay, 1)
	assert.Equal(t, "D:@2024-03-20", day.AllDay[0].DeadlineNote)
	require.Len(t, day.Timed, 1)
	assert.Equal(t, "09:00", day.Timed[0].Time)
	assert.Equal(t, "09:15", day.Timed[0].End)
}

func TestJSONError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	JSONError(&buf, "VIEW_NOT_FOUND", "unknown view", map[string]any{"name": "x"})
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "VIEW_NOT_FOUND", resp.Code)
	assert.Equal(t, "x", resp.Details["name"])
}
