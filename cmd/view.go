package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/agenda/internal/agenda"
	"github.com/twiced-technology-gmbh/agenda/internal/clierr"
	"github.com/twiced-technology-gmbh/agenda/internal/config"
	"github.com/twiced-technology-gmbh/agenda/internal/date"
	"github.com/twiced-technology-gmbh/agenda/internal/output"
	"github.com/twiced-technology-gmbh/agenda/internal/watcher"
)

var viewCmd = &cobra.Command{
	Use:   "view [NAME]",
	Short: "Show a view",
	Long: `Shows a configured view (see 'agenda views') or a single view spec such
as "Todos : tagfilter +work : byproject". Without NAME the Default view
is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	addViewFlags(viewCmd)
	rootCmd.AddCommand(viewCmd)
}

func addViewFlags(c *cobra.Command) {
	c.Flags().String("date", "", "day to show (YYYY-MM-DD, today, tomorrow, +3d, -1w)")
	c.Flags().Bool("watch", false, "re-render when org files or the config change")
}

func runView(cmd *cobra.Command, args []string) error {
	name := config.DefaultView
	if len(args) > 0 {
		name = args[0]
	}

	day := date.Today()
	if s, _ := cmd.Flags().GetString("date"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			return err
		}
		day = d
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return watchView(cfg, name, day)
	}
	return renderView(os.Stdout, cfg, name, day)
}

// buildComposite resolves name to a configured composite or, failing
// that, to a single view spec.
func buildComposite(cfg *config.Config, name string) (*agenda.Composite, []agenda.Warning, error) {
	wf := agenda.Workflow{Keywords: cfg.Keywords, ProjectIs: cfg.Agenda.ProjectIs}
	specs, ok := cfg.Views[name]
	if !ok {
		specs = []string{name}
	}

	c, warnings, err := agenda.NewRegistry().Composite(name, specs, wf)
	var unknown *agenda.ErrUnknownView
	if errors.As(err, &unknown) {
		return nil, nil, clierr.Newf(clierr.ViewNotFound, "view %q not found", unknown.Name).
			WithDetails(map[string]any{"view": name, "spec": unknown.Name, "available": cfg.ViewNames()})
	}
	return c, warnings, err
}

func renderView(w io.Writer, cfg *config.Config, name string, day date.Date) error {
	c, warnings, err := buildComposite(cfg, name)
	if err != nil {
		return err
	}
	_, hs, err := loadHeadings(cfg)
	if err != nil {
		return err
	}

	secs := c.Run(agenda.NewEnv(cfg, day, time.Now()), hs)

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, output.ViewResult{
			View:     name,
			Date:     day.String(),
			Sections: secs,
			Warnings: warningStrings(warnings),
		})
	case output.FormatCompact:
		printFilterWarnings(warnings)
		output.SectionsCompact(w, secs)
	default:
		printFilterWarnings(warnings)
		output.Sections(w, secs)
	}
	return nil
}

// watchView renders once, then again after every change until interrupted.
// The config is reloaded on each change so edits to views apply live.
func watchView(cfg *config.Config, name string, day date.Date) error {
	files, err := cfg.OrgFiles()
	if err != nil {
		return clierr.New(clierr.InvalidConfig, err.Error())
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // fd fits in int
	var mu sync.Mutex
	render := func() {
		mu.Lock()
		defer mu.Unlock()

		current, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			current = cfg
		}
		if isTTY {
			fmt.Fprint(os.Stdout, "\033[H\033[2J")
		}
		if err := renderView(os.Stdout, current, name, day); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	w, err := watcher.New(append(files, cfg.ConfigPath()), func([]string) { render() })
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	render()
	w.Run(ctx, func(err error) {
		fmt.Fprintf(os.Stderr, "Warning: watch error: %v\n", err)
	})
	return nil
}
