package rules

const (
	sidebar   = ".event-details-sidebar"
	sidebarID = "aside#event-sidebar"
)

// Default returns the built-in rules for the outdoor events site. Callers get a fresh copy
// they may modify.
func Default() Set {
	return Set{
		Listing: ListingRules{
			Container: "div.view-events",
			Item:      ".views-row",
			Link:      "a[href]",
		},
		Fields: map[Field][]Strategy{
			FieldTitle: {
				CSS("h1.page-title"),
				CSS("h1"),
				Meta("meta[property='og:title']", "content"),
			},
			FieldDate: {
				CSS(sidebar + " span.event-date"),
				CSS(sidebarID + " span.event-date"),
				CSS("span.event-date"),
				Label("Date"),
				Meta("meta[itemprop='startDate']", "content"),
			},
			FieldDateDay:   {CSS(".event-date .day")},
			FieldDateMonth: {CSS(".event-date .month")},
			FieldDateYear:  {CSS(".event-date .year")},
			FieldStartTime: {
				CSS(sidebar + " span.event-time"),
				CSS(sidebarID + " span.event-time"),
				CSS("span.event-time"),
				Label("Start Time"),
				Label("Time"),
			},
			FieldRegion: {
				Label("Region"),
				Label("Region:"),
				CSS(".field--name-field-region .field__item"),
				CSS(".event-region"),
				Regex("body", `(?i)region:\s*([^\n]+)`),
			},
			FieldLocation: {
				Label("Location"),
				Label("Location:"),
				CSS(".field--name-field-location .field__item"),
				CSS(".event-location"),
			},
			FieldEventType: {
				Label("Event Type"),
				Label("Event Type:"),
				CSS(".field--name-field-event-type .field__item"),
				CSS(".event-type"),
			},
			FieldAvailability: {
				Label("Places Remaining"),
				Label("Places Remaining:"),
				Label("Availability"),
				CSS(".event-availability"),
				Regex("body", `(?i)(places (?:left|remaining)[^\n]*)`),
			},
			FieldWaitlist: {
				Label("Waiting List"),
				Label("Waiting List:"),
				Label("Waitlist"),
			},
			FieldAttendance: {
				Label("Attending"),
				CSS(".event-attendance"),
			},
			FieldSummary: {
				CSS("div[property='content:encoded']"),
				CSS("div.event-description"),
				Meta("meta[property='og:description']", "content"),
			},
		},
	}
}
