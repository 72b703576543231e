// Package date provides a calendar Date type that marshals as YYYY-MM-DD and
// accepts the loose date forms typed on the command line.
package date

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/agenda/internal/orgdate"
)

const (
	format        = "2006-01-02"
	compactFormat = "20060102"
)

var relativeRe = regexp.MustCompile(`^([+-])(\d+)([dwmy])$`)

// Date represents a calendar date at local midnight.
type Date struct {
	time.Time
}

// New creates a Date from year, month, day.
func New(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// From truncates t to its calendar date.
func From(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

// Today returns today's date.
func Today() Date {
	return From(time.Now())
}

// Parse parses a YYYY-MM-DD or YYYYMMDD string into a Date.
func Parse(s string) (Date, error) {
	for _, layout := range []string{format, compactFormat} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Date{t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

// ParseRelative parses an absolute date, "today", "tomorrow", "yesterday"
// or an offset such as "+3d", "-1w" or "+2m" from ref. Month and year
// offsets clamp to the last day of a shorter month.
func ParseRelative(s string, ref Date) (Date, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "today", ".":
		return ref, nil
	case "tomorrow":
		return ref.AddDays(1), nil
	case "yesterday":
		return ref.AddDays(-1), nil
	}
	m := relativeRe.FindStringSubmatch(s)
	if m == nil {
		return Parse(s)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return Date{}, fmt.Errorf("invalid date offset %q: %w", s, err)
	}
	if m[1] == "-" {
		n = -n
	}
	switch m[3] {
	case "w":
		return ref.AddDays(7 * n), nil //nolint:mnd // days per week
	case "m":
		return From(orgdate.AddMonths(ref.Time, n)), nil
	case "y":
		return From(orgdate.AddMonths(ref.Time, 12*n)), nil //nolint:mnd // months per year
	default:
		return ref.AddDays(n), nil
	}
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return New(d.Year(), d.Month(), d.Day()+n)
}

// StartOfWeek returns the last date on or before d that falls on first.
func (d Date) StartOfWeek(first time.Weekday) Date {
	back := (int(d.Weekday()) - int(first) + 7) % 7 //nolint:mnd // days per week
	return d.AddDays(-back)
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(format)
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.v3 Unmarshaler.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := Parse(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
