package orgdate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Unit is the unit of an org duration or repeater interval.
type Unit string

// Duration units. Month and Year are calendar-aware.
const (
	Minute Unit = "min"
	Hour   Unit = "h"
	Day    Unit = "d"
	Week   Unit = "w"
	Month  Unit = "m"
	Year   Unit = "y"
)

// Duration is a count of calendar units, e.g. "3d", "2w", "1m" or "90min".
type Duration struct {
	N    int
	Unit Unit
}

var (
	durationRe = regexp.MustCompile(`^(-?\d+)\s*(min|h|d|w|m|y)$`)
	hhmmRe     = regexp.MustCompile(`^(\d+):(\d{2})$`)
)

// ParseDuration parses "Nmin", "Nh", "Nd", "Nw", "Nm", "Ny" or "H:MM".
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if m := hhmmRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		return Duration{N: h*60 + mins, Unit: Minute}, nil
	}
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return Duration{}, fmt.Errorf("invalid duration %q: expected N followed by min, h, d, w, m or y", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Duration{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return Duration{N: n, Unit: Unit(m[2])}, nil
}

// Days returns a duration of n days.
func Days(n int) Duration { return Duration{N: n, Unit: Day} }

// IsZero reports whether d shifts nothing.
func (d Duration) IsZero() bool { return d.N == 0 }

// Neg returns the duration pointing the other way.
func (d Duration) Neg() Duration { return Duration{N: -d.N, Unit: d.Unit} }

// AddTo shifts t by d. Month and year steps clamp the day of month to the
// length of the target month.
func (d Duration) AddTo(t time.Time) time.Time {
	switch d.Unit {
	case Minute:
		return t.Add(time.Duration(d.N) * time.Minute)
	case Hour:
		return t.Add(time.Duration(d.N) * time.Hour)
	case Day:
		return t.AddDate(0, 0, d.N)
	case Week:
		return t.AddDate(0, 0, 7*d.N)
	case Month:
		return AddMonths(t, d.N)
	case Year:
		return AddMonths(t, 12*d.N)
	default:
		return t
	}
}

// SubFrom shifts t back by d.
func (d Duration) SubFrom(t time.Time) time.Time {
	return d.Neg().AddTo(t)
}

func (d Duration) String() string {
	if d.Unit == "" {
		return ""
	}
	return strconv.Itoa(d.N) + string(d.Unit)
}

// AddMonths moves t by n calendar months, keeping the time of day. When the
// day of month does not exist in the target month it is clamped to the last
// day, so 2024-01-31 + 1 month is 2024-02-29 and 2024-03-31 - 1 month is
// 2024-02-29 as well.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatHHMM renders a time.Duration the way org clock lines do, e.g. "1:05".
func FormatHHMM(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	mins := int(d / time.Minute)
	return fmt.Sprintf("%s%d:%02d", sign, mins/60, mins%60)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.v3 Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
