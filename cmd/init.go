package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/agenda/internal/clierr"
	"github.com/twiced-technology-gmbh/agenda/internal/config"
	"github.com/twiced-technology-gmbh/agenda/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init [DIR]",
	Short: "Create an agenda.yml",
	Long: `Writes an agenda.yml with default settings into DIR (or the --config
directory, or the current directory). Org file patterns are relative to it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringSlice("files", nil, "org file patterns (default *.org)")
	initCmd.Flags().StringSlice("todo", nil, "comma-separated TODO keywords")
	initCmd.Flags().StringSlice("done", nil, "comma-separated DONE keywords")
	initCmd.Flags().String("first-day-of-week", "", "first day of the week for week views")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := configDirFlag()
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		dir = "."
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(filepath.Join(absDir, config.ConfigFileName)); err == nil {
		return clierr.Newf(clierr.ConfigAlreadyExists, "agenda already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	cfg := config.NewDefault()
	cfg.SetDir(absDir)

	if files, _ := cmd.Flags().GetStringSlice("files"); len(files) > 0 {
		cfg.Files = files
	}
	if todo, _ := cmd.Flags().GetStringSlice("todo"); len(todo) > 0 {
		cfg.Keywords.Todo = todo
	}
	if done, _ := cmd.Flags().GetStringSlice("done"); len(done) > 0 {
		cfg.Keywords.Done = done
	}
	if wd, _ := cmd.Flags().GetString("first-day-of-week"); wd != "" {
		cfg.Agenda.FirstDayOfWeek = wd
	}

	if err := cfg.Validate(); err != nil {
		return clierr.New(clierr.InvalidConfig, err.Error())
	}

	const dirMode = 0o750
	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status": "initialized",
			"dir":    absDir,
			"config": cfg.ConfigPath(),
			"files":  strings.Join(cfg.Files, ","),
		})
	}

	output.Messagef(os.Stdout, "Initialized agenda in %s", absDir)
	output.Messagef(os.Stdout, "  Config:   %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Files:    %s", strings.Join(cfg.Files, ", "))
	output.Messagef(os.Stdout, "  Keywords: %s | %s",
		strings.Join(cfg.Keywords.Todo, " "), strings.Join(cfg.Keywords.Done, " "))
	return nil
}
