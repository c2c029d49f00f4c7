package sink

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/JakeFAU/event-crawler/internal/event"
	"github.com/JakeFAU/event-crawler/internal/id/uuid"
	"github.com/JakeFAU/event-crawler/internal/normalize"
	"github.com/JakeFAU/event-crawler/internal/storage"
)

const (
	icsContentType = "text/calendar; charset=utf-8"
	icsProductID   = "-//eventcrawler//EN"
	icsUIDDomain   = "@eventcrawler"
)

// ICS maintains a calendar of every dated record and republishes the whole file after each
// write. Records whose date cannot be parsed are left out of the calendar.
type ICS struct {
	mu      sync.Mutex
	store   storage.BlobStore
	key     string
	name    string
	loc     *time.Location
	order   []string
	records map[string]event.Record
	skipped int
}

// NewICS publishes to key inside store. A nil loc means UTC.
func NewICS(store storage.BlobStore, key, name string, loc *time.Location) *ICS {
	if loc == nil {
		loc = time.UTC
	}
	return &ICS{
		store:   store,
		key:     key,
		name:    name,
		loc:     loc,
		records: make(map[string]event.Record),
	}
}

// Write adds or replaces the event for rec.SourceURL and republishes.
func (s *ICS) Write(ctx context.Context, rec event.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := normalize.ParseDate(rec.Date); !ok {
		s.skipped++
		return nil
	}
	uid := uuid.EventID(rec.SourceURL) + icsUIDDomain
	if _, seen := s.records[uid]; !seen {
		s.order = append(s.order, uid)
	}
	s.records[uid] = rec
	return s.publish(ctx)
}

// Skipped reports how many records had no usable date.
func (s *ICS) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// Close publishes the final calendar, which may be empty.
func (s *ICS) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publish(ctx)
}

func (s *ICS) publish(ctx context.Context) error {
	body := s.calendar().Serialize()
	if _, err := s.store.PutObject(ctx, s.key, icsContentType, strings.NewReader(body)); err != nil {
		return fmt.Errorf("publish calendar %s: %w", s.key, err)
	}
	return nil
}

func (s *ICS) calendar() *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	if s.name != "" {
		cal.SetXWRCalName(s.name)
	}
	for _, uid := range s.order {
		s.addEvent(cal, uid, s.records[uid])
	}
	return cal
}

func (s *ICS) addEvent(cal *ics.Calendar, uid string, rec event.Record) {
	day, _ := normalize.ParseDate(rec.Date)
	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(rec.ScrapedAt)
	ev.SetSummary(rec.Title)
	ev.SetURL(rec.SourceURL)
	if offset, ok := normalize.ParseClock(rec.StartTime); ok {
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc).Add(offset)
		ev.SetStartAt(start)
	} else {
		ev.SetAllDayStartAt(day)
	}
	if loc := location(rec); loc != "" {
		ev.SetLocation(loc)
	}
	if known(rec.EventType) {
		ev.SetProperty(ics.ComponentPropertyCategories, rec.EventType)
	}
	ev.SetDescription(description(rec))
}

func location(rec event.Record) string {
	var parts []string
	for _, v := range []string{rec.Location, rec.Region} {
		if known(v) {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

func description(rec event.Record) string {
	var b strings.Builder
	if rec.Summary != "" {
		b.WriteString(rec.Summary)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Availability: %s\nWaitlist: %s", rec.Availability, rec.Waitlist)
	return b.String()
}

func known(v string) bool {
	return v != "" && v != event.Unknown
}
