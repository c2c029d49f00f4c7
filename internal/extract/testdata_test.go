package extract

import "time"

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var scrapedAt = time.Date(2025, time.January, 4, 9, 30, 0, 0, time.UTC)

const winterWalkPage = `<!DOCTYPE html>
<html>
<head>
  <title>Winter Walk | Outdoor Events</title>
  <meta property="og:title" content="Winter Walk (og)">
</head>
<body>
  <h1 class="page-title">Winter Walk</h1>
  <aside id="event-sidebar">
    <span class="event-date">Sat 12 Apr 2025</span>
    <span class="event-time">10:00am</span>
  </aside>
  <dl>
    <dt>Region</dt><dd>WALES (North)</dd>
    <dt>Location</dt><dd>Pen-y-Pass car park</dd>
    <dt>Event Type</dt><dd>Walk</dd>
    <dt>Places Remaining</dt><dd>Places left: 4</dd>
  </dl>
  <div property="content:encoded">
    <p>A brisk   winter walk.</p>
    <p>Bring boots.</p>
  </div>
</body>
</html>`

const listingPage = `<html><body>
<div class="view-events">
  <div class="views-row"><h3><a href="/events/winter-walk">Winter Walk</a></h3></div>
  <div class="views-row"><a href="events/coast-path?ref=list#details">Coast Path</a></div>
  <div class="views-row"><a href="https://example.org/events/ridge">Ridge</a></div>
</div>
</body></html>`
