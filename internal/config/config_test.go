package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/agenda/internal/orgdate"
)

func TestInitAndLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := Init(dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ConfigFileName))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(cfg.Views, loaded.Views))
	assert.Equal(t, orgdate.Days(14), loaded.Agenda.DeadlineWarning)
	assert.Equal(t, DefaultMaxScheduledIterations, loaded.Agenda.MaxScheduledIterations)
	assert.Equal(t, time.Sunday, loaded.FirstWeekday())
	assert.Equal(t, []string{"Default", "Todos", "Weekly"}, loaded.ViewNames())
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(t.TempDir())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoadMigratesV1(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	v1 := "version: 1\nfiles: [\"notes/*.org\"]\nagenda:\n  day_start: 8\n  day_end: 18\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(v1), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, 8, cfg.Agenda.DayStart)
	assert.Equal(t, ProjectNestedTodo, cfg.Agenda.ProjectIs)
	assert.Contains(t, cfg.Views, DefaultView)
	assert.Equal(t, DefaultTodoKeywords, cfg.Keywords.Todo)

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 2")
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("version: 9\n"), 0o600))

	_, err := Load(dir)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no files", func(c *Config) { c.Files = nil }},
		{"no todo keywords", func(c *Config) { c.Keywords.Todo = nil }},
		{"duplicate keyword", func(c *Config) { c.Keywords.Done = append(c.Keywords.Done, "TODO") }},
		{"zero iterations", func(c *Config) { c.Agenda.MaxScheduledIterations = 0 }},
		{"zero deadline warning", func(c *Config) { c.Agenda.DeadlineWarning = orgdate.Days(0) }},
		{"day bounds", func(c *Config) { c.Agenda.DayStart = 20 }},
		{"project mode", func(c *Config) { c.Agenda.ProjectIs = "folder" }},
		{"weekday", func(c *Config) { c.Agenda.FirstDayOfWeek = "Someday" }},
		{"empty view", func(c *Config) { c.Views["Empty"] = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewDefault()
			tt.mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	require.NoError(t, NewDefault().Validate())
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]time.Weekday{
		"Monday": time.Monday, "mon": time.Monday, " SUNDAY ": time.Sunday, "sat": time.Saturday,
	} {
		got, ok := ParseWeekday(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseWeekday("mo")
	assert.False(t, ok)
}

func TestFindDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	_, err := Init(root)
	require.NoError(t, err)

	got, err := FindDir(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestOrgFilesRelativeToConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "work.org"), []byte("* TODO x\n"), 0o600))
	cfg, err := Init(dir)
	require.NoError(t, err)

	files, err := cfg.OrgFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "work.org")}, files)
}
