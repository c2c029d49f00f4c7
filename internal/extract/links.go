package extract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/event-crawler/internal/rules"
)

// Listing is what one listing page yielded.
type Listing struct {
	URLs []string
	// ContainerFound is false when the listing container is missing entirely.
	ContainerFound bool
	Items          int
}

// LinkExtractor finds event URLs on listing pages.
type LinkExtractor struct {
	base  *url.URL
	rules rules.ListingRules
}

// NewLinkExtractor resolves relative links against base.
func NewLinkExtractor(base *url.URL, listing rules.ListingRules) *LinkExtractor {
	return &LinkExtractor{base: base, rules: listing}
}

// Extract returns absolute URLs in document order, one per item. Items without a usable href
// are skipped. The result is not deduplicated.
func (l *LinkExtractor) Extract(markup []byte) Listing {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return Listing{}
	}
	container := doc.Find(l.rules.Container)
	if container.Length() == 0 {
		return Listing{}
	}

	out := Listing{ContainerFound: true}
	add := func(href string) {
		if abs, ok := l.resolve(href); ok {
			out.URLs = append(out.URLs, abs)
		}
	}

	if strings.TrimSpace(l.rules.Item) == "" {
		container.Find(l.rules.Link).Each(func(_ int, a *goquery.Selection) {
			out.Items++
			href, _ := a.Attr("href")
			add(href)
		})
		return out
	}

	container.Find(l.rules.Item).Each(func(_ int, item *goquery.Selection) {
		out.Items++
		href, _ := item.Find(l.rules.Link).First().Attr("href")
		add(href)
	})
	return out
}

func (l *LinkExtractor) resolve(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	var (
		u   *url.URL
		err error
	)
	if l.base != nil {
		u, err = l.base.Parse(href)
	} else {
		u, err = url.Parse(href)
	}
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), true
}
