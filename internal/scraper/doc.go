// Package scraper fetches the Common Voice datasets page and extracts
// per-language archive download URLs and advertised sizes.
package scraper
