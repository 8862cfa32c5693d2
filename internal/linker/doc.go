// Package linker builds a validated subset of a Common Voice clips
// directory by creating symbolic links for every clip named in the
// metadata table, with a configurable policy for existing links.
package linker
