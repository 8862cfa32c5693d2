// Package metadata reads Common Voice validated.tsv tables, yielding the
// clip filename column one row at a time.
package metadata
