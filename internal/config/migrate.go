package config

import "fmt"

// migrate upgrades cfg one version at a time until it reaches
// CurrentVersion. Configs newer than this binary are rejected.
func migrate(cfg *Config) error {
	if cfg.Version == CurrentVersion {
		return nil
	}
	if cfg.Version > CurrentVersion {
		return fmt.Errorf("%w: config version %d is newer than supported version %d (upgrade agenda)",
			ErrInvalid, cfg.Version, CurrentVersion)
	}
	if cfg.Version < 1 {
		return fmt.Errorf("%w: config version %d is invalid", ErrInvalid, cfg.Version)
	}

	for cfg.Version < CurrentVersion {
		fn, ok := migrations[cfg.Version]
		if !ok {
			return fmt.Errorf("%w: no migration path from version %d", ErrInvalid, cfg.Version)
		}
		if err := fn(cfg); err != nil {
			return fmt.Errorf("migrating config from v%d: %w", cfg.Version, err)
		}
	}
	return nil
}

// migrations maps a version to the function that moves it one step forward.
// Each function must bump cfg.Version.
var migrations = map[int]func(*Config) error{
	1: migrateV1ToV2,
}

// migrateV1ToV2 introduces custom views and fills agenda settings that v1
// files left unset.
func migrateV1ToV2(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	def := NewDefault()
	if len(cfg.Views) == 0 {
		cfg.Views = def.Views
	}
	if cfg.Agenda.MaxScheduledIterations == 0 {
		cfg.Agenda.MaxScheduledIterations = DefaultMaxScheduledIterations
	}
	if cfg.Agenda.DeadlineWarning.Unit == "" {
		cfg.Agenda.DeadlineWarning = DefaultDeadlineWarning
	}
	if cfg.Agenda.DayStart == 0 && cfg.Agenda.DayEnd == 0 {
		cfg.Agenda.DayStart, cfg.Agenda.DayEnd = DefaultDayStart, DefaultDayEnd
	}
	if cfg.Agenda.ProjectIs == "" {
		cfg.Agenda.ProjectIs = ProjectNestedTodo
	}
	if cfg.Agenda.FirstDayOfWeek == "" {
		cfg.Agenda.FirstDayOfWeek = DefaultFirstDayOfWeek
	}
	if len(cfg.Keywords.Todo) == 0 {
		cfg.Keywords.Todo = def.Keywords.Todo
	}
	if len(cfg.Keywords.Done) == 0 {
		cfg.Keywords.Done = def.Keywords.Done
	}
	cfg.Agenda.SortAscending = true
	cfg.Version = 2
	return nil
}
