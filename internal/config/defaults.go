// Package config handles the agenda configuration file.
package config

import "github.com/twiced-technology-gmbh/agenda/internal/orgdate"

const (
	// ConfigFileName is the name of the config file. Org file patterns in it
	// are relative to the directory holding it.
	ConfigFileName = "agenda.yml"
	// UserConfigSubdir is the directory under the user config dir searched
	// when no project config is found.
	UserConfigSubdir = "agenda"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 2

	// DefaultMaxScheduledIterations bounds every walk of a recurrence toward
	// a queried date.
	DefaultMaxScheduledIterations = 120
	DefaultDayStart               = 6
	DefaultDayEnd                 = 19
	DefaultFirstDayOfWeek         = "Sunday"
	DefaultView                   = "Default"

	// Project detection modes.
	ProjectNestedTodo = "nested_todo"
	ProjectTag        = "tag"
	ProjectProperty   = "property"
)

// Default slice values (slices cannot be const).
var (
	DefaultFiles = []string{"*.org"}

	DefaultTodoKeywords = []string{"TODO", "NEXT", "WAITING", "PHONE", "MEETING", "NOTE"}
	DefaultDoneKeywords = []string{"DONE", "CANCELLED"}

	// DefaultDeadlineWarning is the lead time for deadlines without a
	// warning cookie.
	DefaultDeadlineWarning = orgdate.Days(14)

	DefaultViews = map[string][]string{
		DefaultView: {"Calendar", "Week", "Day", "Blocked Projects", "Next Tasks", "Loose Tasks"},
		"Weekly":    {"Week Agenda"},
		"Todos":     {"Todos : sortascend"},
	}

	ProjectModes = []string{ProjectNestedTodo, ProjectTag, ProjectProperty}
)
