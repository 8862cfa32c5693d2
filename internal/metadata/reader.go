package metadata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// DefaultColumn is the header name of the clip filename column in
// Common Voice validated.tsv files.
const DefaultColumn = "path"

// ParseError indicates the metadata file could not be used at all:
// it is unreadable, empty, or its header lacks the filename column.
// It is fatal and raised before any row is yielded.
type ParseError struct {
	Path string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("metadata %s: %s", e.Path, e.Msg)
}

// Reader yields clip filenames from a tab-separated metadata file,
// preserving input order. Rows that are blank, too short, or fail to
// parse are skipped rather than aborting the read. A Reader is a
// single forward pass; reuse requires reopening the file.
type Reader struct {
	path   string
	column string
	col    int
	file   *os.File
	tsv    *csv.Reader
	line   int
}

// Open opens a tab-separated metadata file and locates the named column
// in its header row. An empty column selects DefaultColumn. Returns a
// *ParseError if the file cannot be opened or the column is absent.
func Open(path, column string) (*Reader, error) {
	if column == "" {
		column = DefaultColumn
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Msg: err.Error()}
	}

	tsv := csv.NewReader(f)
	tsv.Comma = '\t'
	tsv.LazyQuotes = true
	tsv.FieldsPerRecord = -1

	header, err := tsv.Read()
	if err != nil {
		f.Close()
		if err == io.EOF {
			return nil, &ParseError{Path: path, Msg: "empty file, no header row"}
		}
		return nil, &ParseError{Path: path, Msg: fmt.Sprintf("reading header: %v", err)}
	}

	col := -1
	for i, name := range header {
		if name == column {
			col = i
			break
		}
	}
	if col < 0 {
		f.Close()
		return nil, &ParseError{Path: path, Msg: fmt.Sprintf("header has no %q column", column)}
	}

	return &Reader{
		path:   path,
		column: column,
		col:    col,
		file:   f,
		tsv:    tsv,
		line:   1,
	}, nil
}

// Next returns the next filename from the designated column. It returns
// io.EOF when the file is exhausted.
func (r *Reader) Next() (string, error) {
	for {
		row, err := r.tsv.Read()
		if err == io.EOF {
			return "", io.EOF
		}
		r.line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				slog.Warn("skipping malformed metadata row",
					"path", r.path, "line", r.line, "err", err)
				continue
			}
			return "", fmt.Errorf("reading %s line %d: %w", r.path, r.line, err)
		}

		if r.col >= len(row) {
			continue
		}
		name := row[r.col]
		if name == "" {
			continue
		}
		return name, nil
	}
}

// Column returns the header name the reader resolves filenames from.
func (r *Reader) Column() string { return r.column }

// Close releases the underlying file.
func (r *Reader) Close() error { return r.file.Close() }
