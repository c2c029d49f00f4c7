// Package extract interprets rule sets against page markup. LinkExtractor pulls event URLs
// from listing pages and DetailExtractor builds one normalized record per event page.
package extract
