package linker

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cvkit-labs/cvkit/internal/platform"
)

// Policy controls what happens when a destination link already exists.
type Policy string

const (
	// PolicySkip leaves an existing destination untouched, keeping
	// repeated runs idempotent. This is the default.
	PolicySkip Policy = "skip"
	// PolicyOverwrite removes the existing destination and re-links it
	// to the current source path.
	PolicyOverwrite Policy = "overwrite"
	// PolicyFail aborts the batch with a ConflictError.
	PolicyFail Policy = "fail"
)

// ParsePolicy maps a flag value to a Policy.
func ParsePolicy(s string) (Policy, bool) {
	switch Policy(s) {
	case PolicySkip, PolicyOverwrite, PolicyFail:
		return Policy(s), true
	}
	return "", false
}

// ConflictError is returned when a destination link already exists and
// the policy is PolicyFail.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("destination already exists: %s", e.Path)
}

// Source yields clip filenames one at a time, returning io.EOF when
// exhausted. *metadata.Reader satisfies it.
type Source interface {
	Next() (string, error)
}

// Strings adapts a fixed filename slice to a Source, mainly for tests.
type Strings []string

func (s *Strings) Next() (string, error) {
	if len(*s) == 0 {
		return "", io.EOF
	}
	name := (*s)[0]
	*s = (*s)[1:]
	return name, nil
}

// Options configures a linking run.
type Options struct {
	// ClipsDir is the flat directory of audio files, read-only here.
	ClipsDir string
	// DestDir receives the symlinks; created if absent.
	DestDir string
	// Policy for pre-existing destinations. Empty means PolicySkip.
	Policy Policy
	// ClipExt, when non-empty (e.g. ".wav"), replaces the extension of
	// each metadata filename before resolving source and destination.
	// Common Voice metadata names .mp3 files; converted corpora keep
	// the same basenames with a .wav extension.
	ClipExt string
	// Workers bounds link-creation concurrency. Values below 2 run the
	// batch sequentially.
	Workers int
}

// Report summarizes a linking run for operator visibility.
type Report struct {
	Created int
	Skipped int
	Failed  int
	// Missing lists filenames referenced by the metadata but absent
	// from the clips directory, sorted for stable output.
	Missing []string
	// Errors holds per-file link failures, one message per file.
	Errors []string
}

// Build creates a symlink in opts.DestDir for every filename yielded by
// src that exists in opts.ClipsDir. Missing sources are reported, not
// fatal. Duplicate filenames are processed once. Only PolicyFail (and a
// source read failure) aborts the batch.
func Build(src Source, opts Options) (*Report, error) {
	policy := opts.Policy
	if policy == "" {
		policy = PolicySkip
	}
	if _, ok := ParsePolicy(string(policy)); !ok {
		return nil, fmt.Errorf("unknown conflict policy %q", policy)
	}

	if err := os.MkdirAll(opts.DestDir, 0755); err != nil {
		return nil, fmt.Errorf("creating destination %s: %w", opts.DestDir, err)
	}

	names, err := collect(src, opts.ClipExt)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	var mu sync.Mutex

	g := new(errgroup.Group)
	workers := opts.Workers
	if workers < 2 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, name := range names {
		name := name
		g.Go(func() error {
			return linkOne(name, policy, opts, report, &mu)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(report.Missing)
	sort.Strings(report.Errors)
	return report, nil
}

// collect drains the source, applies the extension rewrite, and drops
// duplicates while preserving first-seen order.
func collect(src Source, clipExt string) ([]string, error) {
	var names []string
	seen := make(map[string]struct{})

	for {
		name, err := src.Next()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, err
		}

		if clipExt != "" {
			name = strings.TrimSuffix(name, filepath.Ext(name)) + clipExt
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
}

func linkOne(name string, policy Policy, opts Options, report *Report, mu *sync.Mutex) error {
	srcPath := filepath.Join(opts.ClipsDir, name)
	dstPath := filepath.Join(opts.DestDir, name)

	if _, err := os.Stat(srcPath); err != nil {
		mu.Lock()
		report.Missing = append(report.Missing, name)
		mu.Unlock()
		slog.Warn("missing source clip", "clip", srcPath)
		return nil
	}

	// Lstat so stale symlinks count as existing destinations.
	if _, err := os.Lstat(dstPath); err == nil {
		switch policy {
		case PolicySkip:
			mu.Lock()
			report.Skipped++
			mu.Unlock()
			return nil
		case PolicyFail:
			return &ConflictError{Path: dstPath}
		case PolicyOverwrite:
			if err := platform.RemoveSymlink(dstPath); err != nil {
				mu.Lock()
				report.Failed++
				report.Errors = append(report.Errors, fmt.Sprintf("%s: removing existing link: %v", name, err))
				mu.Unlock()
				return nil
			}
		}
	}

	if err := platform.CreateSymlink(srcPath, dstPath); err != nil {
		mu.Lock()
		report.Failed++
		report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", name, err))
		mu.Unlock()
		return nil
	}

	mu.Lock()
	report.Created++
	mu.Unlock()
	return nil
}
