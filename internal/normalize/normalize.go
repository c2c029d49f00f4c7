// Package normalize turns raw extracted text into canonical field values. Every function is
// total: inputs that cannot be interpreted map to the field's sentinel.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/JakeFAU/event-crawler/internal/event"
)

var (
	digitRun   = regexp.MustCompile(`\d+`)
	whitespace = regexp.MustCompile(`\s+`)
)

const waitlistMarker = "waitlist"

// Normalizer holds the region table; everything else is stateless.
type Normalizer struct {
	regions []RegionEntry
}

// New builds a Normalizer over the given region table. A nil table selects DefaultRegions.
func New(regions []RegionEntry) *Normalizer {
	if regions == nil {
		regions = DefaultRegions
	}
	table := make([]RegionEntry, 0, len(regions))
	for _, r := range regions {
		marker := strings.ToLower(strings.TrimSpace(r.Marker))
		if marker == "" {
			continue
		}
		table = append(table, RegionEntry{Marker: marker, Code: r.Code})
	}
	return &Normalizer{regions: table}
}

// CollapseWhitespace trims s and folds every whitespace run into one space.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Text returns the collapsed text or Unknown when nothing is left.
func (n *Normalizer) Text(raw string) string {
	if v := CollapseWhitespace(raw); v != "" {
		return v
	}
	return event.Unknown
}

// Summary collapses whitespace; an empty summary stays empty.
func (n *Normalizer) Summary(raw string) string {
	return CollapseWhitespace(raw)
}

// FirstNumber returns the first maximal digit run in raw.
func FirstNumber(raw string) (int, bool) {
	m := digitRun.FindString(raw)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Count extracts the first digit run, falling back to def.
func (n *Normalizer) Count(raw string, def event.Count) event.Count {
	if v, ok := FirstNumber(raw); ok {
		return event.KnownCount(v)
	}
	return def
}

// Availability is Unknown when no text was found and 0 when text was found without digits
// (for example "Fully booked").
func (n *Normalizer) Availability(raw string) event.Count {
	if CollapseWhitespace(raw) == "" {
		return event.UnknownCount()
	}
	if strings.EqualFold(CollapseWhitespace(raw), event.Unknown) {
		return event.UnknownCount()
	}
	return n.Count(raw, event.KnownCount(0))
}

// Attendance is optional and Unknown when absent or digit-free.
func (n *Normalizer) Attendance(raw string) event.Count {
	return n.Count(raw, event.UnknownCount())
}

// Waitlist derives the waitlist from the combined availability display when it mentions the
// waitlist; that derivation wins over the dedicated waitlist text. Otherwise the dedicated
// text's first digit run is used, and 0 when neither yields a number.
func (n *Normalizer) Waitlist(availabilityRaw, waitlistRaw string) event.Count {
	if v, ok := DeriveWaitlist(availabilityRaw); ok {
		return event.KnownCount(v)
	}
	return n.Count(waitlistRaw, event.KnownCount(0))
}

// DeriveWaitlist finds the count attached to a case-insensitive "waitlist" marker. The digit
// run right after the marker (separated only by spaces or punctuation) is preferred; failing
// that, the closest digit run before the marker within the same clause ("3 on waitlist").
// ok is true whenever the marker is present; the count is then 0 if no digits are attached.
func DeriveWaitlist(raw string) (count int, ok bool) {
	lower := strings.ToLower(raw)
	idx := strings.Index(lower, waitlistMarker)
	if idx < 0 {
		return 0, false
	}
	if v, found := digitsAfter(lower[idx+len(waitlistMarker):]); found {
		return v, true
	}
	if v, found := digitsBefore(lower[:idx]); found {
		return v, true
	}
	return 0, true
}

func digitsAfter(s string) (int, bool) {
	i := 0
	for i < len(s) && isSeparator(s[i]) {
		i++
	}
	j := i
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j == i {
		return 0, false
	}
	v, err := strconv.Atoi(s[i:j])
	return v, err == nil
}

func digitsBefore(s string) (int, bool) {
	end := strings.LastIndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if end < 0 {
		return 0, false
	}
	if strings.ContainsAny(s[end+1:], ",.;|\n") {
		return 0, false
	}
	start := end
	for start > 0 && isDigit(s[start-1]) {
		start--
	}
	v, err := strconv.Atoi(s[start : end+1])
	return v, err == nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isSeparator(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', ':', '-', '=', '(', ')', '[', ']', '#':
		return true
	}
	return false
}

// Date returns the collapsed date text or Unknown.
func (n *Normalizer) Date(raw string) string {
	return n.Text(raw)
}

// CompositeDate joins day, month and year. A missing fragment makes the whole date Unknown;
// partial dates are never emitted.
func (n *Normalizer) CompositeDate(day, month, year string) string {
	parts := []string{CollapseWhitespace(day), CollapseWhitespace(month), CollapseWhitespace(year)}
	for _, p := range parts {
		if p == "" || strings.EqualFold(p, event.Unknown) {
			return event.Unknown
		}
	}
	return strings.Join(parts, " ")
}

// Record re-normalizes an already built record. Running it on its own output is a no-op.
func (n *Normalizer) Record(r event.Record) event.Record {
	r.Title = n.Text(r.Title)
	r.Date = n.Date(r.Date)
	r.StartTime = n.Text(r.StartTime)
	r.Region = n.Region(r.Region)
	r.Location = n.Text(r.Location)
	r.EventType = n.Text(r.EventType)
	r.Summary = n.Summary(r.Summary)
	r.SourceURL = strings.TrimSpace(r.SourceURL)
	if !r.Waitlist.Known {
		r.Waitlist = event.KnownCount(0)
	}
	return r
}
