package agenda

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/agenda/internal/date"
	"github.com/twiced-technology-gmbh/agenda/internal/orgdate"
)

// Warning reports a filter token that was skipped.
type Warning struct {
	Filter string
	Token  string
	Err    error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: ignoring %q: %v", w.Filter, w.Token, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }

// FilterSpec partitions filter values into required, forbidden and
// one-of sets. Empty partitions impose no constraint.
type FilterSpec struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
	OneOf   []string `json:"one_of,omitempty"`
}

// ParseFilterSpec splits space separated tokens: "+v" or "v" requires v,
// "-v" forbids v and "|v" asks for at least one of the "|" values.
func ParseFilterSpec(s string) FilterSpec {
	var spec FilterSpec
	for _, tok := range strings.Fields(s) {
		mark, value := splitMark(tok)
		if value == "" {
			continue
		}
		switch mark {
		case '-':
			spec.Exclude = append(spec.Exclude, value)
		case '|':
			spec.OneOf = append(spec.OneOf, value)
		default:
			spec.Include = append(spec.Include, value)
		}
	}
	return spec
}

func splitMark(tok string) (byte, string) {
	switch tok[0] {
	case '+', '-', '|':
		return tok[0], strings.TrimSpace(tok[1:])
	}
	return '+', tok
}

// IsZero reports whether s imposes no constraint.
func (s FilterSpec) IsZero() bool {
	return len(s.Include) == 0 && len(s.Exclude) == 0 && len(s.OneOf) == 0
}

// Matches applies the spec to a set of values.
func (s FilterSpec) Matches(set []string) bool {
	return s.matchFunc(func(v string) bool { return slices.Contains(set, v) })
}

func (s FilterSpec) matchFunc(has func(string) bool) bool {
	for _, v := range s.Include {
		if !has(v) {
			return false
		}
	}
	if slices.ContainsFunc(s.Exclude, has) {
		return false
	}
	if len(s.OneOf) > 0 && !slices.ContainsFunc(s.OneOf, has) {
		return false
	}
	return true
}

// String renders the spec back into tokens.
func (s FilterSpec) String() string {
	var parts []string
	for _, v := range s.Include {
		parts = append(parts, "+"+v)
	}
	for _, v := range s.Exclude {
		parts = append(parts, "-"+v)
	}
	for _, v := range s.OneOf {
		parts = append(parts, "|"+v)
	}
	return strings.Join(parts, " ")
}

// patternSpec is a FilterSpec whose values are regular expressions.
type patternSpec struct {
	include, exclude, oneOf []*regexp.Regexp
}

func compilePatterns(name string, spec FilterSpec) (patternSpec, []Warning) {
	var out patternSpec
	var warnings []Warning
	compile := func(values []string) []*regexp.Regexp {
		var res []*regexp.Regexp
		for _, v := range values {
			re, err := regexp.Compile(v)
			if err != nil {
				warnings = append(warnings, Warning{Filter: name, Token: v, Err: err})
				continue
			}
			res = append(res, re)
		}
		return res
	}
	out.include = compile(spec.Include)
	out.exclude = compile(spec.Exclude)
	out.oneOf = compile(spec.OneOf)
	return out, warnings
}

func (p patternSpec) matches(s string) bool {
	found := func(re *regexp.Regexp) bool { return re.MatchString(s) }
	for _, re := range p.include {
		if !found(re) {
			return false
		}
	}
	if slices.ContainsFunc(p.exclude, found) {
		return false
	}
	if len(p.oneOf) > 0 && !slices.ContainsFunc(p.oneOf, found) {
		return false
	}
	return true
}

// DurationSpec holds relative bounds: Before durations ("+3d" or "3d") and
// After durations ("-1w").
type DurationSpec struct {
	Before []orgdate.Duration `json:"before,omitempty"`
	After  []orgdate.Duration `json:"after,omitempty"`
}

// ParseDurationSpec parses "+3d -1w" style tokens.
func ParseDurationSpec(name, s string) (DurationSpec, []Warning) {
	var spec DurationSpec
	var warnings []Warning
	for _, tok := range strings.Fields(s) {
		mark, value := splitMark(tok)
		d, err := orgdate.ParseDuration(value)
		if err != nil || mark == '|' {
			if err == nil {
				err = errors.New("one-of is not supported for durations")
			}
			warnings = append(warnings, Warning{Filter: name, Token: tok, Err: err})
			continue
		}
		if mark == '-' {
			spec.After = append(spec.After, d)
		} else {
			spec.Before = append(spec.Before, d)
		}
	}
	return spec, warnings
}

// IsZero reports whether s has no bounds.
func (s DurationSpec) IsZero() bool { return len(s.Before) == 0 && len(s.After) == 0 }

var dateCondRe = regexp.MustCompile(`^([><=]+)(\d{4}-?\d{2}-?\d{2})$`)

// DateRange bounds the completion date of a heading. After holds for
// instants later than (or, when AfterInclusive, equal to) its value; Until
// is exclusive.
type DateRange struct {
	After          time.Time `json:"after,omitzero"`
	AfterInclusive bool      `json:"after_inclusive,omitempty"`
	Until          time.Time `json:"until,omitzero"`
}

// ParseDateRange parses ">2024-03-01 <=20240331" style conditions. ">" and
// ">=" bound the start of the closed timestamp, "<" and "<=" its end; "<="
// is read as "< date + 1 day".
func ParseDateRange(name, s string) (DateRange, []Warning) {
	var r DateRange
	var warnings []Warning
	for _, tok := range strings.Fields(s) {
		m := dateCondRe.FindStringSubmatch(tok)
		if m == nil {
			warnings = append(warnings, Warning{Filter: name, Token: tok, Err: errors.New("expected a comparator and a date")})
			continue
		}
		d, err := date.Parse(m[2])
		if err != nil {
			warnings = append(warnings, Warning{Filter: name, Token: tok, Err: err})
			continue
		}
		switch m[1] {
		case ">":
			r.After, r.AfterInclusive = d.Time, false
		case ">=":
			r.After, r.AfterInclusive = d.Time, true
		case "<":
			r.Until = d.Time
		case "<=":
			r.Until = d.AddDays(1).Time
		default:
			warnings = append(warnings, Warning{Filter: name, Token: tok, Err: fmt.Errorf("unknown comparator %q", m[1])})
		}
	}
	return r, warnings
}

// IsZero reports whether r has no bounds.
func (r DateRange) IsZero() bool { return r.After.IsZero() && r.Until.IsZero() }

// Contains checks start against the lower bound and end against the upper.
func (r DateRange) Contains(start, end time.Time) bool {
	if !r.After.IsZero() {
		if r.AfterInclusive && start.Before(r.After) || !r.AfterInclusive && !start.After(r.After) {
			return false
		}
	}
	if !r.Until.IsZero() && !end.Before(r.Until) {
		return false
	}
	return true
}
