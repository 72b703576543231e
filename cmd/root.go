// Package cmd implements the agenda CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/agenda/internal/agenda"
	"github.com/twiced-technology-gmbh/agenda/internal/clierr"
	"github.com/twiced-technology-gmbh/agenda/internal/config"
	"github.com/twiced-technology-gmbh/agenda/internal/date"
	"github.com/twiced-technology-gmbh/agenda/internal/outline"
	"github.com/twiced-technology-gmbh/agenda/internal/output"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagConfig  string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "agenda",
	Short: "Agenda views over org files",
	Long: `agenda reads org files and shows what is scheduled, due and open.
Run agenda without arguments to show the Default view for today.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runView,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" || !output.ColorSupported() {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to agenda.yml or the directory holding it")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	addViewFlags(rootCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if _, err := rootCmd.ExecuteC(); err != nil {
		os.Exit(reportError(os.Stdout, os.Stderr, err))
	}
}

// reportError writes err as a JSON envelope in JSON mode, or as a plain
// line on stderr otherwise, and returns the process exit code.
func reportError(stdout, stderr io.Writer, err error) int {
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		return silent.Code
	}

	var cliErr *clierr.Error
	if !errors.As(err, &cliErr) {
		cliErr = clierr.New(clierr.InternalError, err.Error())
	}

	if outputFormat() == output.FormatJSON {
		output.JSONError(stdout, cliErr.Code, cliErr.Message, cliErr.Details)
		return cliErr.ExitCode()
	}
	fmt.Fprintln(stderr, err)
	return cliErr.ExitCode()
}

// configDirFlag returns the directory named by --config, which may point
// at the file itself.
func configDirFlag() string {
	if flagConfig == "" {
		return ""
	}
	if ext := filepath.Ext(flagConfig); ext == ".yml" || ext == ".yaml" {
		return filepath.Dir(flagConfig)
	}
	return flagConfig
}

// resolveDir returns the directory holding agenda.yml.
func resolveDir() (string, error) {
	if dir := configDirFlag(); dir != "" {
		return dir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return config.FindDir(cwd)
}

// loadConfig finds and loads the agenda config.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err == nil {
		var cfg *config.Config
		if cfg, err = config.Load(dir); err == nil {
			output.SetStateClassifier(stateClassifier(cfg.Keywords))
			return cfg, nil
		}
	}

	switch {
	case errors.Is(err, config.ErrNotFound):
		return nil, clierr.New(clierr.ConfigNotFound, err.Error())
	case errors.Is(err, config.ErrInvalid):
		return nil, clierr.New(clierr.InvalidConfig, err.Error())
	}
	return nil, err
}

func stateClassifier(kw outline.Keywords) output.StateClassifier {
	return func(keyword string) string {
		switch {
		case slices.Contains(kw.Todo, keyword):
			return "todo"
		case slices.Contains(kw.Done, keyword):
			return "done"
		}
		return ""
	}
}

// loadHeadings reads the configured org files. Unreadable files are
// reported as warnings and skipped.
func loadHeadings(cfg *config.Config) ([]string, []*outline.Heading, error) {
	files, err := cfg.OrgFiles()
	if err != nil {
		return nil, nil, clierr.New(clierr.InvalidConfig, err.Error())
	}
	if len(files) == 0 {
		return nil, nil, clierr.Newf(clierr.NoOrgFiles, "no org files match %v in %s", cfg.Files, cfg.Dir()).
			WithDetails(map[string]any{"files": cfg.Files, "dir": cfg.Dir()})
	}
	docs, warnings := outline.ReadAllLenient(files, cfg.Keywords)
	printWarnings(warnings)
	return files, outline.AllHeadings(docs), nil
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// printWarnings writes org file read warnings to stderr.
func printWarnings(warnings []outline.ReadWarning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: skipping unreadable file %s: %v\n", w.File, w.Err)
	}
}

// printFilterWarnings writes skipped filter tokens to stderr.
func printFilterWarnings(warnings []agenda.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", w)
	}
}

func warningStrings(warnings []agenda.Warning) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.Error())
	}
	return out
}

// parseDate reads a --date value relative to today.
func parseDate(s string) (date.Date, error) {
	d, err := date.ParseRelative(s, date.Today())
	if err != nil {
		return date.Date{}, clierr.New(clierr.InvalidDate, err.Error()).
			WithDetails(map[string]any{"input": s})
	}
	return d, nil
}
