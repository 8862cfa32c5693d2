// Package rename collects the validated.tsv tables scattered through a
// Common Voice download tree into one directory with language-qualified
// names.
package rename
