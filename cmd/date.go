package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/agenda/internal/agenda"
	"github.com/twiced-technology-gmbh/agenda/internal/clierr"
	"github.com/twiced-technology-gmbh/agenda/internal/config"
	"github.com/twiced-technology-gmbh/agenda/internal/date"
	"github.com/twiced-technology-gmbh/agenda/internal/orgdate"
	"github.com/twiced-technology-gmbh/agenda/internal/outline"
	"github.com/twiced-technology-gmbh/agenda/internal/output"
)

const historyFile = "date_history"

var dateCmd = &cobra.Command{
	Use:   "date [EXPR]",
	Short: "Resolve a date and show what falls on it",
	Long: `Resolves EXPR (2024-03-15, today, +3d, "2024-03-15 Fri 10:00") and shows
the Day view for it. Without EXPR, dates are read from a prompt on a
terminal or line by line from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDate,
}

func init() {
	rootCmd.AddCommand(dateCmd)
}

type dateResult struct {
	Input   string         `json:"input"`
	Date    string         `json:"date"`
	Weekday string         `json:"weekday"`
	Section agenda.Section `json:"section"`
}

// dayLookup resolves dates and runs the Day view over loaded headings.
type dayLookup struct {
	cfg  *config.Config
	view *agenda.View
	hs   []*outline.Heading
}

func runDate(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, hs, err := loadHeadings(cfg)
	if err != nil {
		return err
	}
	wf := agenda.Workflow{Keywords: cfg.Keywords, ProjectIs: cfg.Agenda.ProjectIs}
	view, _, err := agenda.NewRegistry().Build("Day", wf)
	if err != nil {
		return err
	}
	l := &dayLookup{cfg: cfg, view: view, hs: hs}

	if len(args) > 0 {
		return l.show(os.Stdout, args[0])
	}
	if term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec // fd fits in int
		return l.prompt()
	}

	lines, err := readLines(os.Stdin)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := l.show(os.Stdout, line); err != nil {
			return err
		}
	}
	return nil
}

// resolveDate reads a relative or absolute date, falling back to a free
// floating org date such as "2024-03-15 Fri 10:00".
func resolveDate(expr string) (date.Date, error) {
	if d, err := date.ParseRelative(expr, date.Today()); err == nil {
		return d, nil
	}
	if ts, ok := orgdate.ParseFreeFloating(expr); ok {
		return date.From(ts.Start), nil
	}
	return date.Date{}, clierr.Newf(clierr.InvalidDate, "cannot read %q as a date", expr).
		WithDetails(map[string]any{"input": expr})
}

func (l *dayLookup) show(w io.Writer, expr string) error {
	d, err := resolveDate(expr)
	if err != nil {
		return err
	}
	sec := l.view.Run(agenda.NewEnv(l.cfg, d, time.Now()), l.hs)

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, dateResult{Input: expr, Date: d.String(), Weekday: d.Weekday().String(), Section: sec})
	case output.FormatCompact:
		output.SectionsCompact(w, []agenda.Section{sec})
	default:
		output.Messagef(w, "%s %s", d.String(), d.Weekday())
		output.Section(w, sec)
	}
	return nil
}

// prompt reads dates interactively until EOF or Ctrl-C. History is kept
// next to the user config.
func (l *dayLookup) prompt() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil { //nolint:gosec // path under user config dir
			_, _ = line.ReadHistory(f)
			_ = f.Close()
		}
	}

	for {
		input, err := line.Prompt("date> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading prompt: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}
		line.AppendHistory(input)
		if err := l.show(os.Stdout, input); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	if histPath == "" {
		return nil
	}
	const dirMode = 0o750
	if err := os.MkdirAll(filepath.Dir(histPath), dirMode); err != nil {
		return nil //nolint:nilerr // history is best effort
	}
	if f, err := os.Create(histPath); err == nil { //nolint:gosec // path under user config dir
		_, _ = line.WriteHistory(f)
		_ = f.Close()
	}
	return nil
}

func historyPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, config.UserConfigSubdir, historyFile)
}
