package downloader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cvkit-labs/cvkit/internal/manifest"
)

const userAgent = "cvkit-downloader"

// DefaultConcurrency bounds simultaneous archive downloads.
const DefaultConcurrency = 4

// Downloader fetches dataset archives with resume support.
type Downloader struct {
	client      *http.Client
	concurrency int
	progress    io.Writer
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient substitutes the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Downloader) { d.client = c }
}

// WithConcurrency sets the number of simultaneous downloads.
func WithConcurrency(n int) Option {
	return func(d *Downloader) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithProgress directs percent progress output to w. A nil writer
// disables progress reporting.
func WithProgress(w io.Writer) Option {
	return func(d *Downloader) { d.progress = w }
}

// New creates a Downloader. Archive downloads are long transfers, so
// the client carries no overall timeout; cancellation comes from the
// request context.
func New(opts ...Option) *Downloader {
	d := &Downloader{
		client:      &http.Client{},
		concurrency: DefaultConcurrency,
		progress:    os.Stderr,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Result summarizes a batch download.
type Result struct {
	Downloaded int
	Skipped    int
	// Errors holds per-archive failures, sorted; the batch continues
	// past them.
	Errors []string
}

// DownloadAll downloads every manifest entry to its resolved path with
// bounded concurrency. Per-entry failures are collected, not fatal.
// ResolvePaths must have been called on the manifest first.
func (d *Downloader) DownloadAll(ctx context.Context, m manifest.Manifest) (*Result, error) {
	result := &Result{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, lang := range m.Languages() {
		entry := m[lang]
		if entry.DownloadPath == "" {
			return nil, fmt.Errorf("entry %s has no download path; resolve paths first", lang)
		}

		g.Go(func() error {
			skipped, err := d.download(ctx, entry)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.ArchiveFilename, err))
				slog.Warn("download failed", "archive", entry.ArchiveFilename, "err", err)
			case skipped:
				result.Skipped++
			default:
				result.Downloaded++
			}
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(result.Errors)
	return result, nil
}

// download fetches a single archive, resuming a partial file when the
// server honors Range requests. Returns skipped=true when the local
// file is already complete.
func (d *Downloader) download(ctx context.Context, entry manifest.Entry) (bool, error) {
	remoteSize := d.remoteSize(ctx, entry.URL)

	var localSize int64
	if info, err := os.Stat(entry.DownloadPath); err == nil {
		localSize = info.Size()
		if remoteSize > 0 && localSize == remoteSize {
			slog.Info("archive already complete", "archive", entry.ArchiveFilename, "bytes", localSize)
			return true, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.URL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resume := localSize > 0 && remoteSize > 0 && localSize < remoteSize
	if resume {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", localSize))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("downloading: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Server ignored the Range request; start over.
		resume = false
	case http.StatusPartialContent:
	default:
		return false, fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	var initial int64
	if resume {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		initial = localSize
	}

	f, err := os.OpenFile(entry.DownloadPath, flags, 0644)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", entry.DownloadPath, err)
	}
	defer f.Close()

	total := initial + resp.ContentLength
	if resp.ContentLength < 0 {
		total = 0
	}

	var dst io.Writer = f
	if d.progress != nil && total > 0 {
		dst = &progressWriter{
			w:       f,
			out:     d.progress,
			name:    entry.ArchiveFilename,
			written: initial,
			total:   total,
		}
	}

	slog.Info("downloading archive",
		"archive", entry.ArchiveFilename, "resume", resume, "bytes", total)
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return false, fmt.Errorf("writing %s: %w", entry.DownloadPath, err)
	}
	if pw, ok := dst.(*progressWriter); ok {
		pw.finish()
	}

	return false, f.Close()
}

// remoteSize asks the server for the archive size. Failures degrade to
// zero, which disables the skip and resume checks.
func (d *Downloader) remoteSize(ctx context.Context, url string) int64 {
	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, url, nil)
	if err != nil {
		return 0
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		slog.Debug("HEAD request failed", "url", url, "err", err)
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || resp.ContentLength < 0 {
		return 0
	}
	return resp.ContentLength
}

// progressWriter tracks bytes written and rewrites a percent line on
// the progress writer whenever the percentage changes.
type progressWriter struct {
	w           io.Writer
	out         io.Writer
	name        string
	written     int64
	total       int64
	lastPercent int
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)
	if percent := int(pw.written * 100 / pw.total); percent != pw.lastPercent {
		fmt.Fprintf(pw.out, "\r%s: %d%%", pw.name, percent)
		pw.lastPercent = percent
	}
	return n, err
}

func (pw *progressWriter) finish() {
	fmt.Fprintln(pw.out)
}
