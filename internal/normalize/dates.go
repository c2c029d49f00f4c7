package normalize

import (
	"regexp"
	"strings"
	"time"
)

var (
	ordinalSuffix = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)
	clockText     = regexp.MustCompile(`(?i)\d{1,2}(?:[:.]\d{2})?\s*(?:am|pm)?`)
)

var dateLayouts = []string{
	"Mon 2 Jan 2006",
	"Monday 2 January 2006",
	"Mon 2 January 2006",
	"Monday 2 Jan 2006",
	"Mon, 2 Jan 2006",
	"Monday, 2 January 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
}

var clockLayouts = []string{
	"3:04pm",
	"3pm",
	"3.04pm",
	"15:04",
	"15.04",
}

// ParseDate interprets a canonical date string. ok is false for Unknown or unrecognised text.
func ParseDate(text string) (time.Time, bool) {
	s := CollapseWhitespace(ordinalSuffix.ReplaceAllString(text, "$1"))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseClock interprets a start time such as "10:00am", "7pm" or "18:30" and returns the
// offset from midnight.
func ParseClock(text string) (time.Duration, bool) {
	m := clockText.FindString(text)
	if m == "" {
		return 0, false
	}
	s := strings.ToLower(strings.ReplaceAll(m, " ", ""))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, true
		}
	}
	return 0, false
}
