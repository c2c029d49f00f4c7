package extract

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/event-crawler/internal/event"
	"github.com/JakeFAU/event-crawler/internal/normalize"
	"github.com/JakeFAU/event-crawler/internal/rules"
)

// Clock returns the capture time stamped on each record.
type Clock interface {
	Now() time.Time
}

// ParseError reports a field that fell back to its sentinel.
type ParseError struct {
	Field  rules.Field
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

// Gap reasons.
const (
	ReasonNotFound    = "no strategy matched"
	ReasonUnmapped    = "no region marker matched"
	ReasonPartialDate = "date fragments incomplete"
	ReasonUnparsable  = "document could not be parsed"
)

const fieldDocument rules.Field = "document"

// DetailExtractor builds one record per event page.
type DetailExtractor struct {
	rules rules.Set
	norm  *normalize.Normalizer
	clock Clock
}

// NewDetailExtractor wires a validated rule set to a normalizer.
func NewDetailExtractor(set rules.Set, n *normalize.Normalizer, clock Clock) *DetailExtractor {
	if n == nil {
		n = normalize.New(nil)
	}
	return &DetailExtractor{rules: set, norm: n, clock: clock}
}

// Extract never fails: a field nothing could locate takes its sentinel and is reported as a
// ParseError.
func (e *DetailExtractor) Extract(markup []byte, sourceURL string) (event.Record, []ParseError) {
	rec := event.Record{
		Title:        event.Unknown,
		Date:         event.Unknown,
		StartTime:    event.Unknown,
		Region:       event.Unknown,
		Location:     event.Unknown,
		EventType:    event.Unknown,
		Availability: event.UnknownCount(),
		Waitlist:     event.KnownCount(0),
		Attendance:   event.UnknownCount(),
		SourceURL:    strings.TrimSpace(sourceURL),
		ScrapedAt:    e.now(),
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return rec, []ParseError{{Field: fieldDocument, Reason: fmt.Sprintf("%s: %v", ReasonUnparsable, err)}}
	}

	var gaps []ParseError
	gap := func(f rules.Field, reason string) {
		gaps = append(gaps, ParseError{Field: f, Reason: reason})
	}
	text := func(f rules.Field) string {
		raw := firstText(doc, e.rules.Strategies(f))
		v := e.norm.Text(raw)
		if v == event.Unknown {
			gap(f, ReasonNotFound)
		}
		return v
	}

	rec.Title = text(rules.FieldTitle)
	rec.Date = e.date(doc, gap)
	rec.StartTime = text(rules.FieldStartTime)
	rec.Location = text(rules.FieldLocation)
	rec.EventType = text(rules.FieldEventType)

	regionRaw := firstText(doc, e.rules.Strategies(rules.FieldRegion))
	rec.Region = e.norm.Region(regionRaw)
	switch {
	case regionRaw == "":
		gap(rules.FieldRegion, ReasonNotFound)
	case rec.Region == event.Unknown:
		gap(rules.FieldRegion, fmt.Sprintf("%s: %q", ReasonUnmapped, regionRaw))
	}

	availRaw := firstText(doc, e.rules.Strategies(rules.FieldAvailability))
	rec.Availability = e.norm.Availability(availRaw)
	if !rec.Availability.Known {
		gap(rules.FieldAvailability, ReasonNotFound)
	}
	rec.Waitlist = e.norm.Waitlist(availRaw, firstText(doc, e.rules.Strategies(rules.FieldWaitlist)))
	rec.Attendance = e.norm.Attendance(firstText(doc, e.rules.Strategies(rules.FieldAttendance)))

	rec.Summary = e.norm.Summary(firstText(doc, e.rules.Strategies(rules.FieldSummary)))
	if rec.Summary == "" {
		gap(rules.FieldSummary, ReasonNotFound)
	}

	return rec, gaps
}

// date resolves day/month/year fragments first: once any fragment is present the date is all
// three or Unknown, even when a single date rule would match the wrapper around them. Without
// fragments the single date rule applies.
func (e *DetailExtractor) date(doc *goquery.Document, gap func(rules.Field, string)) string {
	if e.rules.HasCompositeDate() {
		parts := make([]string, len(rules.DateParts))
		found := false
		for i, f := range rules.DateParts {
			parts[i] = firstText(doc, e.rules.Strategies(f))
			found = found || parts[i] != ""
		}
		if found {
			v := e.norm.CompositeDate(parts[0], parts[1], parts[2])
			if v == event.Unknown {
				gap(rules.FieldDate, ReasonPartialDate)
			}
			return v
		}
	}
	if raw := firstText(doc, e.rules.Strategies(rules.FieldDate)); raw != "" {
		return e.norm.Date(raw)
	}
	gap(rules.FieldDate, ReasonNotFound)
	return event.Unknown
}

func (e *DetailExtractor) now() time.Time {
	if e.clock == nil {
		return time.Now().UTC()
	}
	return e.clock.Now().UTC()
}
