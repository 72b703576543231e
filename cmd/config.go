package cmd

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/agenda/internal/clierr"
	"github.com/twiced-technology-gmbh/agenda/internal/config"
	"github.com/twiced-technology-gmbh/agenda/internal/orgdate"
	"github.com/twiced-technology-gmbh/agenda/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify the agenda configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func configAccessors() map[string]configAccessor {
	accessors := baseConfigAccessors()
	addAgendaConfigAccessors(accessors)
	return accessors
}

func baseConfigAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"dir": {
			get: func(c *config.Config) any { return c.Dir() },
		},
		"files": {
			get:      func(c *config.Config) any { return c.Files },
			set:      func(c *config.Config, v string) error { c.Files = splitList(v); return nil },
			writable: true,
		},
		"keywords.todo": {
			get:      func(c *config.Config) any { return c.Keywords.Todo },
			set:      func(c *config.Config, v string) error { c.Keywords.Todo = splitList(v); return nil },
			writable: true,
		},
		"keywords.done": {
			get:      func(c *config.Config) any { return c.Keywords.Done },
			set:      func(c *config.Config, v string) error { c.Keywords.Done = splitList(v); return nil },
			writable: true,
		},
		"views": {
			get: func(c *config.Config) any {
				if c.Views == nil {
					return map[string][]string{}
				}
				return c.Views
			},
		},
	}
}

func addAgendaConfigAccessors(accessors map[string]configAccessor) {
	intKey := func(name string, field func(*config.Config) *int) configAccessor {
		return configAccessor{
			get: func(c *config.Config) any { return *field(c) },
			set: func(c *config.Config, v string) error {
				n, err := strconv.Atoi(v)
				if err != nil {
					return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be an integer", name, v)
				}
				*field(c) = n
				return nil // validation handles range check
			},
			writable: true,
		}
	}
	boolKey := func(name string, field func(*config.Config) *bool) configAccessor {
		return configAccessor{
			get: func(c *config.Config) any { return *field(c) },
			set: func(c *config.Config, v string) error {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be true or false", name, v)
				}
				*field(c) = b
				return nil
			},
			writable: true,
		}
	}

	accessors["agenda.max_scheduled_iterations"] = intKey("agenda.max_scheduled_iterations",
		func(c *config.Config) *int { return &c.Agenda.MaxScheduledIterations })
	accessors["agenda.day_start"] = intKey("agenda.day_start",
		func(c *config.Config) *int { return &c.Agenda.DayStart })
	accessors["agenda.day_end"] = intKey("agenda.day_end",
		func(c *config.Config) *int { return &c.Agenda.DayEnd })
	accessors["agenda.sort_ascending"] = boolKey("agenda.sort_ascending",
		func(c *config.Config) *bool { return &c.Agenda.SortAscending })
	accessors["agenda.include_inactive"] = boolKey("agenda.include_inactive",
		func(c *config.Config) *bool { return &c.Agenda.IncludeInactive })

	accessors["agenda.deadline_warning"] = configAccessor{
		get: func(c *config.Config) any { return c.Agenda.DeadlineWarning.String() },
		set: func(c *config.Config, v string) error {
			d, err := orgdate.ParseDuration(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput, "invalid agenda.deadline_warning %q: %v", v, err)
			}
			c.Agenda.DeadlineWarning = d
			return nil
		},
		writable: true,
	}
	accessors["agenda.project_is"] = configAccessor{
		get: func(c *config.Config) any { return c.Agenda.ProjectIs },
		set: func(c *config.Config, v string) error {
			if !slices.Contains(config.ProjectModes, v) {
				return clierr.Newf(clierr.InvalidInput,
					"invalid agenda.project_is %q; allowed: %s", v, strings.Join(config.ProjectModes, ", "))
			}
			c.Agenda.ProjectIs = v
			return nil
		},
		writable: true,
	}
	accessors["agenda.first_day_of_week"] = configAccessor{
		get: func(c *config.Config) any { return c.Agenda.FirstDayOfWeek },
		set: func(c *config.Config, v string) error {
			wd, ok := config.ParseWeekday(v)
			if !ok {
				return clierr.Newf(clierr.InvalidInput, "invalid agenda.first_day_of_week %q: not a weekday", v)
			}
			c.Agenda.FirstDayOfWeek = wd.String()
			return nil
		},
		writable: true,
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"dir",
		"files",
		"keywords.todo",
		"keywords.done",
		"agenda.max_scheduled_iterations",
		"agenda.deadline_warning",
		"agenda.day_start",
		"agenda.day_end",
		"agenda.project_is",
		"agenda.sort_ascending",
		"agenda.first_day_of_week",
		"agenda.include_inactive",
		"views",
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

// lookupAccessor finds the accessor for key; writable keys are required
// when forWrite is set.
func lookupAccessor(key string, forWrite bool) (configAccessor, error) {
	acc, ok := configAccessors()[key]
	switch {
	case !ok:
		return acc, clierr.Newf(clierr.InvalidInput, "unknown config key %q", key).
			WithDetails(map[string]any{"key": key, "keys": allConfigKeys()})
	case forWrite && !acc.writable:
		return acc, clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}
	return acc, nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	accessors := configAccessors()
	keys := allConfigKeys()

	switch outputFormat() {
	case output.FormatJSON:
		m := make(map[string]any, len(keys))
		for _, key := range keys {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	case output.FormatCompact:
		for _, key := range keys {
			output.Messagef(os.Stdout, "%s=%s", key, formatConfigValue(accessors[key].get(cfg)))
		}
	default:
		for _, key := range keys {
			fmt.Fprintf(os.Stdout, "%-32s %s\n", key, formatConfigValue(accessors[key].get(cfg)))
		}
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	acc, err := lookupAccessor(args[0], false)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	val := acc.get(cfg)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}
	output.Messagef(os.Stdout, "%s", formatConfigValue(val))
	return nil
}

// runConfigSet validates the whole config after the change, so a value
// that breaks another setting (day_start >= day_end) is refused.
func runConfigSet(_ *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	acc, err := lookupAccessor(key, true)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return clierr.New(clierr.InvalidConfig, err.Error()).
			WithDetails(map[string]any{"key": key, "value": value})
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}
	output.Messagef(os.Stdout, "Set %s = %s", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case []string:
		return strings.Join(v, ", ")
	case map[string][]string:
		if len(v) == 0 {
			return "--"
		}
		names := make([]string, 0, len(v))
		for k := range v {
			names = append(names, k)
		}
		slices.Sort(names)
		parts := make([]string, 0, len(names))
		for _, k := range names {
			parts = append(parts, fmt.Sprintf("%s=[%s]", k, strings.Join(v[k], "; ")))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
