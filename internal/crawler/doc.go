// Package crawler composes the paginator, the politeness governor, the detail extractor and
// an output sink into one sequential crawl run. Records reach the sink as soon as they are
// built.
package crawler
