// Package cli defines the Cobra command tree for cvkit. Each file in
// this package registers one top-level command (scrape, download, link,
// rename, version) with the root command. Command implementations
// delegate to internal packages for the actual work and only handle
// flag parsing and output formatting.
package cli
