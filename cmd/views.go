package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/agenda/internal/agenda"
	"github.com/twiced-technology-gmbh/agenda/internal/output"
)

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "List configured views and view kinds",
	Args:  cobra.NoArgs,
	RunE:  runViews,
}

func init() {
	rootCmd.AddCommand(viewsCmd)
}

type viewsResult struct {
	Views map[string][]string `json:"views"`
	Kinds []string            `json:"kinds"`
}

func runViews(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	kinds := agenda.NewRegistry().Names()

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, viewsResult{Views: cfg.Views, Kinds: kinds})
	case output.FormatCompact:
		for _, name := range cfg.ViewNames() {
			output.Messagef(os.Stdout, "%s: %s", name, strings.Join(cfg.Views[name], ", "))
		}
		return nil
	default:
		for _, name := range cfg.ViewNames() {
			output.Field(os.Stdout, name, strings.Join(cfg.Views[name], "\n"+strings.Repeat(" ", len(name)+2)))
		}
		output.Messagef(os.Stdout, "")
		output.Messagef(os.Stdout, "View kinds: %s", strings.Join(kinds, ", "))
		return nil
	}
}
