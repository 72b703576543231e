package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/agenda/internal/clierr"
	"github.com/twiced-technology-gmbh/agenda/internal/orgdate"
	"github.com/twiced-technology-gmbh/agenda/internal/output"
)

var parseCmd = &cobra.Command{
	Use:   "parse [TEXT...]",
	Short: "Parse org timestamps, planning lines and clock lines",
	Long: `Parses TEXT, or each line of stdin when TEXT is omitted, and prints the
timestamps found. Planning lines (SCHEDULED, DEADLINE, CLOSED) and CLOCK
lines are recognized as such.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().Int("next", 0, "also list the next N occurrences of repeating timestamps")
	parseCmd.Flags().Bool("check", false, "exit 1 when a clock line's declared duration is wrong")
	rootCmd.AddCommand(parseCmd)
}

// Line kinds.
const (
	kindPlanning   = "planning"
	kindClock      = "clock"
	kindTimestamps = "timestamps"
	kindNone       = "none"
)

type parsedLine struct {
	Input       string              `json:"input"`
	Kind        string              `json:"kind"`
	Planning    *orgdate.Planning   `json:"planning,omitempty"`
	Clock       *orgdate.Clock      `json:"clock,omitempty"`
	Duration    string              `json:"duration,omitempty"`
	Consistent  *bool               `json:"consistent,omitempty"`
	Timestamps  []orgdate.Timestamp `json:"timestamps,omitempty"`
	Occurrences []time.Time         `json:"occurrences,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	next, _ := cmd.Flags().GetInt("next")
	check, _ := cmd.Flags().GetBool("check")

	var inputs []string
	if len(args) > 0 {
		inputs = []string{strings.Join(args, " ")}
	} else {
		lines, err := readLines(os.Stdin)
		if err != nil {
			return err
		}
		inputs = lines
	}
	if len(inputs) == 0 {
		return clierr.New(clierr.InvalidInput, "nothing to parse")
	}

	now := time.Now()
	results := make([]parsedLine, 0, len(inputs))
	for _, in := range inputs {
		results = append(results, parseLine(in, now, next))
	}

	switch outputFormat() {
	case output.FormatJSON:
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	case output.FormatCompact:
		for _, r := range results {
			output.Messagef(os.Stdout, "%s", compactParsed(r))
		}
	default:
		for i, r := range results {
			if i > 0 {
				output.Messagef(os.Stdout, "")
			}
			printParsed(os.Stdout, r)
		}
	}

	if check && slices.ContainsFunc(results, inconsistent) {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}

func inconsistent(r parsedLine) bool {
	return r.Consistent != nil && !*r.Consistent
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}

// parseLine classifies one input. Planning keywords win over clock lines,
// which win over plain timestamps.
func parseLine(in string, now time.Time, next int) parsedLine {
	r := parsedLine{Input: in, Kind: kindNone}

	if p := orgdate.ParsePlanning(in); !p.IsZero() {
		r.Kind = kindPlanning
		r.Planning = &p
		for _, ts := range []orgdate.Timestamp{p.Scheduled, p.Deadline, p.Closed} {
			if !ts.IsZero() {
				r.Timestamps = append(r.Timestamps, ts)
			}
		}
	} else if c, ok := orgdate.ParseClock(in); ok {
		r.Kind = kindClock
		r.Clock = &c
		consistent := c.Consistent()
		r.Consistent = &consistent
		if !c.IsOpen() {
			r.Duration = orgdate.FormatHHMM(c.Duration())
		}
	} else if all := orgdate.ParseAll(in); len(all) > 0 {
		r.Kind = kindTimestamps
		r.Timestamps = all
	}

	if next > 0 {
		r.Occurrences = upcoming(r.Timestamps, now, next)
	}
	return r
}

// upcoming returns up to n occurrences at or after now of the repeating
// timestamps in ts, in order of the timestamps.
func upcoming(ts []orgdate.Timestamp, now time.Time, n int) []time.Time {
	var out []time.Time
	for _, t := range ts {
		from := now
		for range n {
			occ, ok := t.NextFrom(from)
			if !ok {
				break
			}
			out = append(out, occ)
			from = occ.Add(time.Nanosecond)
		}
	}
	return out
}

func printParsed(w io.Writer, r parsedLine) {
	output.Field(w, "Input", r.Input)
	output.Field(w, "Kind", r.Kind)
	if r.Planning != nil {
		output.Field(w, "Scheduled", r.Planning.Scheduled.String())
		output.Field(w, "Deadline", r.Planning.Deadline.String())
		output.Field(w, "Closed", r.Planning.Closed.String())
	}
	if r.Clock != nil {
		output.Field(w, "Start", r.Clock.Start.Format("2006-01-02 15:04"))
		if r.Clock.IsOpen() {
			output.Field(w, "End", "(running)")
		} else {
			output.Field(w, "End", r.Clock.End.Format("2006-01-02 15:04"))
			output.Field(w, "Duration", r.Duration)
		}
		if r.Clock.HasDeclared {
			output.Field(w, "Declared", orgdate.FormatHHMM(r.Clock.Declared))
		}
		if inconsistent(r) {
			output.Field(w, "Warning", "declared duration differs from start and end")
		}
	}
	if r.Kind == kindTimestamps {
		for _, ts := range r.Timestamps {
			output.Field(w, "Timestamp", describe(ts))
		}
	}
	for _, occ := range r.Occurrences {
		output.Field(w, "Next", occ.Format("2006-01-02 Mon 15:04"))
	}
}

// describe renders ts with its range end, repeater and warning spelled out.
func describe(ts orgdate.Timestamp) string {
	parts := []string{ts.String()}
	if ts.HasEnd() {
		parts = append(parts, "ends "+ts.End.Format("2006-01-02 15:04"))
	}
	if ts.Repeat != nil {
		parts = append(parts, fmt.Sprintf("repeats every %d%s", ts.Repeat.Interval, ts.Repeat.Unit))
	}
	if ts.Warning != nil {
		parts = append(parts, "warns "+ts.Warning.String()+" ahead")
	}
	if !ts.Active {
		parts = append(parts, "inactive")
	}
	return strings.Join(parts, ", ")
}

func compactParsed(r parsedLine) string {
	switch r.Kind {
	case kindClock:
		s := "clock " + r.Clock.String()
		if inconsistent(r) {
			s += " (inconsistent)"
		}
		return s
	case kindNone:
		return "none"
	}
	parts := make([]string, 0, len(r.Timestamps)+1)
	parts = append(parts, r.Kind)
	for _, ts := range r.Timestamps {
		parts = append(parts, ts.String())
	}
	return strings.Join(parts, " ")
}
