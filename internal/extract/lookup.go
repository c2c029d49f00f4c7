package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/event-crawler/internal/normalize"
	"github.com/JakeFAU/event-crawler/internal/rules"
)

// lookup runs one strategy and returns its trimmed text, or "" when it found nothing.
func lookup(doc *goquery.Document, s rules.Strategy) string {
	switch s.Kind {
	case rules.KindCSS:
		return strings.TrimSpace(doc.Find(s.Selector).First().Text())
	case rules.KindLabel:
		return labelSibling(scope(doc, s.Selector), s.Label)
	case rules.KindMeta:
		v, _ := doc.Find(s.Selector).First().Attr(s.Attribute)
		return strings.TrimSpace(v)
	case rules.KindRegex:
		return regexText(doc, s)
	default:
		return ""
	}
}

func scope(doc *goquery.Document, selector string) *goquery.Selection {
	if strings.TrimSpace(selector) == "" {
		return doc.Selection
	}
	return doc.Find(selector)
}

// labelSibling finds the first element in document order whose text equals label and returns
// its next element sibling's text.
func labelSibling(root *goquery.Selection, label string) string {
	want := normalize.CollapseWhitespace(label)
	var value string
	root.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if normalize.CollapseWhitespace(el.Text()) != want {
			return true
		}
		value = strings.TrimSpace(el.Next().Text())
		return false
	})
	return value
}

func regexText(doc *goquery.Document, s rules.Strategy) string {
	re := s.Regexp()
	if re == nil {
		return ""
	}
	sel := s.Selector
	if sel == "" {
		sel = "body"
	}
	text := doc.Find(sel).First().Text()
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[0])
}

// firstText tries strategies left to right; the first non-empty result wins.
func firstText(doc *goquery.Document, strategies []rules.Strategy) string {
	for _, s := range strategies {
		if v := lookup(doc, s); v != "" {
			return v
		}
	}
	return ""
}
