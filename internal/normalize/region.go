package normalize

import (
	"strings"

	"github.com/JakeFAU/event-crawler/internal/event"
)

// RegionEntry maps a marker phrase to a canonical region code.
type RegionEntry struct {
	Marker string
	Code   string
}

// DefaultRegions is ordered: a more specific marker precedes any general marker that would
// also match the same text. Every canonical code matches its own entry first.
var DefaultRegions = []RegionEntry{
	{Marker: "wales (north)", Code: "North Wales"},
	{Marker: "north wales", Code: "North Wales"},
	{Marker: "wales (south)", Code: "South Wales"},
	{Marker: "south wales", Code: "South Wales"},
	{Marker: "wales (mid)", Code: "Mid Wales"},
	{Marker: "mid wales", Code: "Mid Wales"},
	{Marker: "northern ireland", Code: "Northern Ireland"},
	{Marker: "scotland", Code: "Scotland"},
	{Marker: "north east", Code: "North East"},
	{Marker: "north west", Code: "North West"},
	{Marker: "yorkshire", Code: "Yorkshire"},
	{Marker: "east midlands", Code: "East Midlands"},
	{Marker: "west midlands", Code: "West Midlands"},
	{Marker: "east of england", Code: "East of England"},
	{Marker: "east anglia", Code: "East of England"},
	{Marker: "london", Code: "London"},
	{Marker: "south east", Code: "South East"},
	{Marker: "south west", Code: "South West"},
	{Marker: "overseas", Code: "Overseas"},
	{Marker: "abroad", Code: "Overseas"},
}

// Codes returns the distinct canonical codes in table order.
func (n *Normalizer) Codes() []string {
	seen := make(map[string]struct{}, len(n.regions))
	out := make([]string, 0, len(n.regions))
	for _, r := range n.regions {
		if _, ok := seen[r.Code]; ok {
			continue
		}
		seen[r.Code] = struct{}{}
		out = append(out, r.Code)
	}
	return out
}

// Region maps free text to the first canonical code whose marker it contains.
func (n *Normalizer) Region(raw string) string {
	text := strings.ToLower(CollapseWhitespace(raw))
	if text == "" {
		return event.Unknown
	}
	for _, r := range n.regions {
		if strings.Contains(text, r.Marker) {
			return r.Code
		}
	}
	return event.Unknown
}
