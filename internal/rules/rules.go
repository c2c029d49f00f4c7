// Package rules holds the declarative description of where each logical event field lives in
// a page. A rule set is pure data: the extract package interprets it.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Field names a logical event field.
type Field string

// Logical fields understood by the extractor and normalizer.
const (
	FieldTitle        Field = "title"
	FieldDate         Field = "date"
	FieldDateDay      Field = "date_day"
	FieldDateMonth    Field = "date_month"
	FieldDateYear     Field = "date_year"
	FieldStartTime    Field = "start_time"
	FieldRegion       Field = "region"
	FieldLocation     Field = "location"
	FieldEventType    Field = "event_type"
	FieldAvailability Field = "availability"
	FieldWaitlist     Field = "waitlist"
	FieldAttendance   Field = "attendance"
	FieldSummary      Field = "summary"
)

// Required lists the fields every rule set must describe. The date is satisfied either by a
// FieldDate rule or by all three composite fragments.
var Required = []Field{
	FieldTitle,
	FieldDate,
	FieldStartTime,
	FieldRegion,
	FieldLocation,
	FieldEventType,
	FieldAvailability,
	FieldSummary,
}

// DateParts are the fragments of a composite date, in assembly order.
var DateParts = []Field{FieldDateDay, FieldDateMonth, FieldDateYear}

// Kind selects how a Strategy locates text.
type Kind string

// Strategy kinds.
const (
	KindCSS   Kind = "css"
	KindLabel Kind = "label"
	KindMeta  Kind = "meta"
	KindRegex Kind = "regex"
)

// Strategy is one way of locating a field's raw text.
//
//   - css: trimmed text of the first element matching Selector.
//   - label: first element (optionally inside Selector) whose trimmed text equals Label; the
//     value is its next element sibling's trimmed text.
//   - meta: Attribute of the first element matching Selector.
//   - regex: Pattern applied to the text of Selector (default body); capture group 1 wins over
//     the whole match.
type Strategy struct {
	Kind      Kind   `yaml:"kind"`
	Selector  string `yaml:"selector,omitempty"`
	Label     string `yaml:"label,omitempty"`
	Attribute string `yaml:"attribute,omitempty"`
	Pattern   string `yaml:"pattern,omitempty"`

	re *regexp.Regexp
}

// CSS builds a selector lookup.
func CSS(selector string) Strategy {
	return Strategy{Kind: KindCSS, Selector: selector}
}

// Label builds a label-then-sibling lookup over the whole document.
func Label(label string) Strategy {
	return Strategy{Kind: KindLabel, Label: label}
}

// LabelWithin builds a label-then-sibling lookup restricted to scope.
func LabelWithin(scope, label string) Strategy {
	return Strategy{Kind: KindLabel, Selector: scope, Label: label}
}

// Meta builds an attribute lookup.
func Meta(selector, attribute string) Strategy {
	return Strategy{Kind: KindMeta, Selector: selector, Attribute: attribute}
}

// Regex builds a pattern lookup over the text of scope.
func Regex(scope, pattern string) Strategy {
	return Strategy{Kind: KindRegex, Selector: scope, Pattern: pattern}
}

// Regexp returns the compiled pattern, compiling on first use. A pattern that does not
// compile yields nil; Validate reports it.
func (s *Strategy) Regexp() *regexp.Regexp {
	if s.re != nil || s.Pattern == "" {
		return s.re
	}
	re, err := regexp.Compile(s.Pattern)
	if err != nil {
		return nil
	}
	s.re = re
	return re
}

func (s Strategy) String() string {
	switch s.Kind {
	case KindCSS:
		return fmt.Sprintf("css(%s)", s.Selector)
	case KindLabel:
		if s.Selector != "" {
			return fmt.Sprintf("label(%s in %s)", s.Label, s.Selector)
		}
		return fmt.Sprintf("label(%s)", s.Label)
	case KindMeta:
		return fmt.Sprintf("meta(%s@%s)", s.Selector, s.Attribute)
	case KindRegex:
		return fmt.Sprintf("regex(%s in %s)", s.Pattern, s.Selector)
	default:
		return fmt.Sprintf("unknown(%s)", s.Kind)
	}
}

func (s *Strategy) check() error {
	switch s.Kind {
	case KindCSS:
		if strings.TrimSpace(s.Selector) == "" {
			return errors.New("css strategy needs a selector")
		}
	case KindLabel:
		if strings.TrimSpace(s.Label) == "" {
			return errors.New("label strategy needs a label")
		}
	case KindMeta:
		if strings.TrimSpace(s.Selector) == "" || strings.TrimSpace(s.Attribute) == "" {
			return errors.New("meta strategy needs a selector and an attribute")
		}
	case KindRegex:
		if s.Pattern == "" {
			return errors.New("regex strategy needs a pattern")
		}
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return fmt.Errorf("regex %q: %w", s.Pattern, err)
		}
		s.re = re
	default:
		return fmt.Errorf("unknown strategy kind %q", s.Kind)
	}
	return nil
}

// ListingRules locate event links on a listing page.
type ListingRules struct {
	// Container must be present on every listing page; its absence is selector drift.
	Container string `yaml:"container"`
	// Item selects one event summary inside the container.
	Item string `yaml:"item"`
	// Link selects the anchor inside an item.
	Link string `yaml:"link"`
}

// Set maps logical fields to their ordered strategies.
type Set struct {
	Fields  map[Field][]Strategy `yaml:"fields"`
	Listing ListingRules         `yaml:"listing"`
}

// Strategies returns the ordered strategies for f.
func (s Set) Strategies(f Field) []Strategy {
	return s.Fields[f]
}

// Has reports whether f has at least one strategy.
func (s Set) Has(f Field) bool {
	return len(s.Fields[f]) > 0
}

// HasCompositeDate reports whether every date fragment has a rule.
func (s Set) HasCompositeDate() bool {
	for _, f := range DateParts {
		if !s.Has(f) {
			return false
		}
	}
	return true
}

// Validate reports every configuration problem at once. It also compiles regex strategies.
func (s Set) Validate() error {
	var problems []string
	for _, f := range Required {
		if s.Has(f) {
			continue
		}
		if f == FieldDate && s.HasCompositeDate() {
			continue
		}
		problems = append(problems, fmt.Sprintf("field %q has no rule", f))
	}

	fields := make([]string, 0, len(s.Fields))
	for f := range s.Fields {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, name := range fields {
		list := s.Fields[Field(name)]
		for i := range list {
			if err := list[i].check(); err != nil {
				problems = append(problems, fmt.Sprintf("field %q strategy %d: %v", name, i, err))
			}
		}
	}

	if strings.TrimSpace(s.Listing.Container) == "" {
		problems = append(problems, "listing container selector is empty")
	}
	if strings.TrimSpace(s.Listing.Link) == "" {
		problems = append(problems, "listing link selector is empty")
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

// ErrConfiguration marks a rule set that cannot drive extraction.
var ErrConfiguration = errors.New("rule configuration error")

// ConfigurationError lists every problem found by Validate.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration, strings.Join(e.Problems, "; "))
}

// Is lets callers match with errors.Is(err, ErrConfiguration).
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
