// Package event defines the normalized record produced for every crawled event page.
package event

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unknown is the sentinel for a field the extractor could not find.
const Unknown = "Unknown"

// Columns is the fixed field order handed to every output sink.
var Columns = []string{
	"Title",
	"Date",
	"Start Time",
	"Region",
	"Location",
	"Event Type",
	"Availability",
	"Waitlist",
	"Summary",
	"Link",
}

// Count is a non-negative integer that may be Unknown.
type Count struct {
	Value int
	Known bool
}

// KnownCount returns a Count carrying n. Negative values are clamped to zero.
func KnownCount(n int) Count {
	if n < 0 {
		n = 0
	}
	return Count{Value: n, Known: true}
}

// UnknownCount returns the sentinel Count.
func UnknownCount() Count {
	return Count{}
}

// String renders the digits or the Unknown sentinel.
func (c Count) String() string {
	if !c.Known {
		return Unknown
	}
	return strconv.Itoa(c.Value)
}

// MarshalJSON encodes a known count as a number and the sentinel as a string.
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Known {
		return json.Marshal(Unknown)
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON accepts either a number or the Unknown sentinel.
func (c *Count) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = KnownCount(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode count: %w", err)
	}
	if strings.EqualFold(s, Unknown) {
		*c = UnknownCount()
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("decode count %q: %w", s, err)
	}
	*c = KnownCount(n)
	return nil
}

// Record is one normalized event. Every text field holds a value or Unknown.
type Record struct {
	Title        string    `json:"title"`
	Date         string    `json:"date"`
	StartTime    string    `json:"start_time"`
	Region       string    `json:"region"`
	Location     string    `json:"location"`
	EventType    string    `json:"event_type"`
	Availability Count     `json:"availability"`
	Waitlist     Count     `json:"waitlist"`
	Attendance   Count     `json:"attendance"`
	Summary      string    `json:"summary"`
	SourceURL    string    `json:"source_url"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// Row renders the record in Columns order.
func (r Record) Row() []string {
	return []string{
		r.Title,
		r.Date,
		r.StartTime,
		r.Region,
		r.Location,
		r.EventType,
		r.Availability.String(),
		r.Waitlist.String(),
		r.Summary,
		r.SourceURL,
	}
}

// Complete reports whether every sentinel-bearing field is populated.
// Summary is allowed to be empty.
func (r Record) Complete() bool {
	for _, v := range []string{r.Title, r.Date, r.StartTime, r.Region, r.Location, r.EventType, r.SourceURL} {
		if v == "" {
			return false
		}
	}
	return !r.ScrapedAt.IsZero()
}
