package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/agenda/internal/filelock"
	"github.com/twiced-technology-gmbh/agenda/internal/orgdate"
	"github.com/twiced-technology-gmbh/agenda/internal/outline"
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no agenda config found (run 'agenda init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config is the agenda configuration.
type Config struct {
	Version  int                 `yaml:"version"`
	Files    []string            `yaml:"files"`
	Keywords outline.Keywords    `yaml:"keywords"`
	Agenda   AgendaConfig        `yaml:"agenda"`
	Views    map[string][]string `yaml:"views,omitempty"`

	// dir is the absolute path of the directory holding the config file.
	dir string `yaml:"-"`
}

// AgendaConfig holds the settings of the temporal queries and views.
type AgendaConfig struct {
	MaxScheduledIterations int              `yaml:"max_scheduled_iterations"`
	DeadlineWarning        orgdate.Duration `yaml:"deadline_warning"`
	DayStart               int              `yaml:"day_start"`
	DayEnd                 int              `yaml:"day_end"`
	ProjectIs              string           `yaml:"project_is"`
	SortAscending          bool             `yaml:"sort_ascending"`
	FirstDayOfWeek         string           `yaml:"first_day_of_week"`
	IncludeInactive        bool             `yaml:"include_inactive"`
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	views := make(map[string][]string, len(DefaultViews))
	for name, specs := range DefaultViews {
		views[name] = slices.Clone(specs)
	}
	return &Config{
		Version: CurrentVersion,
		Files:   slices.Clone(DefaultFiles),
		Keywords: outline.Keywords{
			Todo: slices.Clone(DefaultTodoKeywords),
			Done: slices.Clone(DefaultDoneKeywords),
		},
		Agenda: AgendaConfig{
			MaxScheduledIterations: DefaultMaxScheduledIterations,
			DeadlineWarning:        DefaultDeadlineWarning,
			DayStart:               DefaultDayStart,
			DayEnd:                 DefaultDayEnd,
			ProjectIs:              ProjectNestedTodo,
			SortAscending:          true,
			FirstDayOfWeek:         DefaultFirstDayOfWeek,
		},
		Views: views,
	}
}

// Dir returns the directory holding the config file.
func (c *Config) Dir() string { return c.dir }

// SetDir sets the directory holding the config file.
func (c *Config) SetDir(dir string) { c.dir = dir }

// ConfigPath returns the absolute path of the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// OrgFiles expands the configured file patterns.
func (c *Config) OrgFiles() ([]string, error) {
	return outline.Expand(c.dir, c.Files)
}

// FirstWeekday returns the configured first day of the week.
func (c *Config) FirstWeekday() time.Weekday {
	wd, _ := ParseWeekday(c.Agenda.FirstDayOfWeek)
	return wd
}

// ParseWeekday parses an English weekday name, full or abbreviated.
func ParseWeekday(name string) (time.Weekday, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || (len(n) >= 3 && strings.HasPrefix(full, n)) {
			return d, true
		}
	}
	return time.Sunday, false
}

// ViewNames returns the configured custom view names, sorted.
func (c *Config) ViewNames() []string {
	names := make([]string, 0, len(c.Views))
	for name := range c.Views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if len(c.Files) == 0 {
		return fmt.Errorf("%w: at least one files pattern is required", ErrInvalid)
	}
	if err := c.validateKeywords(); err != nil {
		return err
	}
	if err := c.validateAgenda(); err != nil {
		return err
	}
	for name, specs := range c.Views {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: view names must not be empty", ErrInvalid)
		}
		if len(specs) == 0 {
			return fmt.Errorf("%w: view %q lists no views", ErrInvalid, name)
		}
	}
	return nil
}

func (c *Config) validateKeywords() error {
	if len(c.Keywords.Todo) == 0 {
		return fmt.Errorf("%w: at least 1 todo keyword is required", ErrInvalid)
	}
	if len(c.Keywords.Done) == 0 {
		return fmt.Errorf("%w: at least 1 done keyword is required", ErrInvalid)
	}
	all := append(slices.Clone(c.Keywords.Todo), c.Keywords.Done...)
	if hasDuplicates(all) {
		return fmt.Errorf("%w: keywords contain duplicates", ErrInvalid)
	}
	for _, k := range all {
		if k == "" || strings.ContainsAny(k, " \t") {
			return fmt.Errorf("%w: keyword %q must be a single word", ErrInvalid, k)
		}
	}
	return nil
}

func (c *Config) validateAgenda() error {
	a := c.Agenda
	if a.MaxScheduledIterations < 1 {
		return fmt.Errorf("%w: agenda.max_scheduled_iterations must be >= 1", ErrInvalid)
	}
	if a.DeadlineWarning.N <= 0 {
		return fmt.Errorf("%w: agenda.deadline_warning must be positive", ErrInvalid)
	}
	const hoursPerDay = 24
	if a.DayStart < 0 || a.DayEnd > hoursPerDay || a.DayStart >= a.DayEnd {
		return fmt.Errorf("%w: agenda.day_start and day_end must satisfy 0 <= start < end <= 24", ErrInvalid)
	}
	if !slices.Contains(ProjectModes, a.ProjectIs) {
		return fmt.Errorf("%w: agenda.project_is %q must be one of %s",
			ErrInvalid, a.ProjectIs, strings.Join(ProjectModes, ", "))
	}
	if _, ok := ParseWeekday(a.FirstDayOfWeek); !ok {
		return fmt.Errorf("%w: agenda.first_day_of_week %q is not a weekday", ErrInvalid, a.FirstDayOfWeek)
	}
	return nil
}

// Save writes the config file atomically while holding the config lock.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	unlock, err := filelock.LockFor(c.ConfigPath())
	if err != nil {
		return fmt.Errorf("locking config: %w", err)
	}
	defer func() { _ = unlock() }()

	if err := atomic.WriteFile(c.ConfigPath(), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Init writes a default config into dir.
func Init(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg := NewDefault()
	cfg.SetDir(absDir)
	if err := cfg.Save(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads, migrates and validates the config in dir.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(absDir, ConfigFileName)) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = absDir

	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindDir walks upward from startDir to the first directory containing
// agenda.yml, falling back to the user config directory. It returns
// ErrNotFound when neither exists.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for dir := absStart; ; {
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if userDir, err := os.UserConfigDir(); err == nil {
		dir := filepath.Join(userDir, UserConfigSubdir)
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil {
			return dir, nil
		}
	}
	return "", ErrNotFound
}

func hasDuplicates(slice []string) bool {
	seen := make(map[string]bool, len(slice))
	for _, s := range slice {
		if seen[s] {
			return true
		}
		seen[s] = true
	}
	return false
}
