// Package main hosts the eventcrawler command.
//
// A run walks the paginated event listing one page at a time, visits every event detail page
// it links to, and writes each normalized record to the configured sinks as soon as it is
// built. Requests are strictly sequential and spaced by the per-kind politeness delays.
//
// Commands:
//   - crawl: one run; flags override the base URL, page cap and output destination.
//   - schedule: repeated runs on a cron spec; use {date} in output.path to keep each run's file.
//   - rules: validate the effective field rules and print them as YAML.
//
// Configuration comes from --config, else config.yaml on the search path, then EVENTCRAWLER_*
// environment variables. The process exits non-zero when a run ends on selector drift, a
// listing fetch failure, or cancellation.
package main
