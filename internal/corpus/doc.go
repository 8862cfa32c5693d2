// Package corpus understands Common Voice release naming: archive name
// parsing, release version ordering, and locale display names.
package corpus
