// Package downloader fetches Common Voice dataset archives with resume
// support and bounded concurrency, and handles archive extraction and
// uncompressed-size estimates.
package downloader
