// Package manifest defines the per-language dataset manifest written by
// the scrape command and consumed by the download command, with
// JSON/YAML persistence and schema validation.
package manifest
