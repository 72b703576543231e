package cmd

import (
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/agenda/internal/agenda"
	"github.com/twiced-technology-gmbh/agenda/internal/clierr"
	"github.com/twiced-technology-gmbh/agenda/internal/outline"
	"github.com/twiced-technology-gmbh/agenda/internal/output"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List headings",
	Long: `Lists headings of the org files with filtering, sorting and grouping.
Filter values use the view argument syntax: "+work -home |a |b" for tags,
"+3d -1w" for durations and ">=2024-03-01 <2024-04-01" for done dates.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var presenceFields = []string{"clock", "deadline", "schedule", "close", "childtasks", "todoancestor"}

// filterFlags are the heading filter flags, named after the view
// arguments they mirror.
func filterFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("filter", pflag.ContinueOnError)
	fs.String("tags", "", "tag filter (+tag -tag |tag)")
	fs.String("state", "", "state filter; values are regular expressions")
	fs.String("priority", "", "priority filter (+A -C |B)")
	fs.String("duration", "", "keep headings dated within (+) or beyond (-) durations from now")
	fs.String("clock", "", "clocked time filter (+1h -30min)")
	fs.Bool("clocked-today", false, "only headings clocked today")
	fs.String("done-date", "", "completion date conditions (>, >=, <, <=)")
	fs.StringSlice("has", nil, "required properties ("+strings.Join(presenceFields, ", ")+")")
	fs.StringSlice("no", nil, "excluded properties ("+strings.Join(presenceFields, ", ")+")")
	return fs
}

func init() {
	listCmd.Flags().AddFlagSet(filterFlags())
	listCmd.Flags().Bool("all", false, "include headings without a TODO keyword")
	listCmd.Flags().String("sort", agenda.SortByKey, "sort field ("+strings.Join(agenda.ValidSortFields(), ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	listCmd.Flags().String("group-by", "", "group results by field ("+strings.Join(agenda.ValidGroupByFields(), ", ")+")")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	tags, _ := cmd.Flags().GetString("tags")
	states, _ := cmd.Flags().GetString("state")
	priorities, _ := cmd.Flags().GetString("priority")
	duration, _ := cmd.Flags().GetString("duration")
	clock, _ := cmd.Flags().GetString("clock")
	clockedToday, _ := cmd.Flags().GetBool("clocked-today")
	doneDate, _ := cmd.Flags().GetString("done-date")
	has, _ := cmd.Flags().GetStringSlice("has")
	no, _ := cmd.Flags().GetStringSlice("no")
	all, _ := cmd.Flags().GetBool("all")
	sortBy, _ := cmd.Flags().GetString("sort")
	reverse, _ := cmd.Flags().GetBool("reverse")
	limit, _ := cmd.Flags().GetInt("limit")
	groupBy, _ := cmd.Flags().GetString("group-by")

	if !slices.Contains(agenda.ValidSortFields(), sortBy) {
		return clierr.Newf(clierr.InvalidSort, "invalid --sort field %q; valid: %s",
			sortBy, strings.Join(agenda.ValidSortFields(), ", "))
	}
	if groupBy != "" && !slices.Contains(agenda.ValidGroupByFields(), groupBy) {
		return clierr.Newf(clierr.InvalidGroupBy, "invalid --group-by field %q; valid: %s",
			groupBy, strings.Join(agenda.ValidGroupByFields(), ", "))
	}

	opts := agenda.FilterOptions{
		Tags:         agenda.ParseFilterSpec(tags),
		States:       agenda.ParseFilterSpec(states),
		Priorities:   agenda.ParseFilterSpec(priorities),
		ClockedToday: clockedToday,
	}
	var warnings, ws []agenda.Warning
	opts.Duration, ws = agenda.ParseDurationSpec("duration", duration)
	warnings = append(warnings, ws...)
	if cmd.Flags().Changed("clock") {
		opts.ClockFilter = true
		opts.Clock, ws = agenda.ParseDurationSpec("clock", clock)
		warnings = append(warnings, ws...)
	}
	opts.Done, ws = agenda.ParseDateRange("done-date", doneDate)
	warnings = append(warnings, ws...)

	var err error
	if opts.Has, err = parsePresence("has", has); err != nil {
		return err
	}
	if opts.No, err = parsePresence("no", no); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, hs, err := loadHeadings(cfg)
	if err != nil {
		return err
	}

	wf := agenda.Workflow{Keywords: cfg.Keywords, ProjectIs: cfg.Agenda.ProjectIs}
	filter, fw := agenda.NewFilter(opts, wf)
	warnings = append(warnings, fw...)
	printFilterWarnings(warnings)

	if !all {
		hs = slices.DeleteFunc(slices.Clone(hs), func(h *outline.Heading) bool {
			return !wf.IsTodo(h) && !wf.IsDone(h)
		})
	}
	hs = filter.Apply(hs, time.Now())
	wf.SortBy(hs, sortBy, reverse)
	if limit > 0 && len(hs) > limit {
		hs = hs[:limit]
	}

	if groupBy != "" {
		return outputGroupedList(wf.GroupBy(hs, groupBy))
	}
	return outputEntryList(entriesOf(hs))
}

func parsePresence(flag string, fields []string) (agenda.Presence, error) {
	var p agenda.Presence
	targets := map[string]*bool{
		"clock":        &p.Clock,
		"deadline":     &p.Deadline,
		"schedule":     &p.Schedule,
		"close":        &p.Close,
		"childtasks":   &p.ChildTasks,
		"todoancestor": &p.TodoAncestor,
	}
	for _, f := range fields {
		target, ok := targets[strings.ToLower(strings.TrimSpace(f))]
		if !ok {
			return p, clierr.Newf(clierr.InvalidFilter, "invalid --%s value %q; valid: %s",
				flag, f, strings.Join(presenceFields, ", ")).
				WithDetails(map[string]any{"flag": flag, "value": f})
		}
		*target = true
	}
	return p, nil
}

func entriesOf(hs []*outline.Heading) []agenda.Entry {
	out := make([]agenda.Entry, 0, len(hs))
	for _, h := range hs {
		out = append(out, agenda.NewEntry(h))
	}
	return out
}

func outputGroupedList(groups []agenda.Group) error {
	grouped := make([]agenda.EntryGroup, 0, len(groups))
	for _, g := range groups {
		grouped = append(grouped, agenda.EntryGroup{Key: g.Key, Entries: entriesOf(g.Headings)})
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, grouped)
	case output.FormatCompact:
		for _, g := range grouped {
			key := g.Key
			if key == "" {
				key = "(no project)"
			}
			output.Messagef(os.Stdout, "%s (%d)", key, len(g.Entries))
			output.EntryCompact(os.Stdout, g.Entries)
		}
		return nil
	default:
		output.GroupedTable(os.Stdout, grouped)
		return nil
	}
}

func outputEntryList(entries []agenda.Entry) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, entries)
	case output.FormatCompact:
		output.EntryCompact(os.Stdout, entries)
		return nil
	default:
		output.EntryTable(os.Stdout, entries)
		return nil
	}
}
