package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cvkit-labs/cvkit/internal/manifest"
)

// newArchiveServer serves content at every path, honoring HEAD and
// Range requests the way a dataset bucket does.
func newArchiveServer(t *testing.T, content []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(content)))
			return
		}

		if rng := r.Header.Get("Range"); rng != "" {
			offset, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(rng, "bytes="), "-"), 10, 64)
			if err == nil && offset > 0 && offset < int64(len(content)) {
				w.Header().Set("Content-Length", strconv.Itoa(len(content)-int(offset)))
				w.Header().Set("Content-Range",
					fmt.Sprintf("bytes %d-%d/%d", offset, len(content)-1, len(content)))
				w.WriteHeader(http.StatusPartialContent)
				w.Write(content[offset:])
				return
			}
		}

		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.Write(content)
	}))
	t.Cleanup(server.Close)
	return server
}

func testEntry(t *testing.T, serverURL string) manifest.Entry {
	t.Helper()
	dir := t.TempDir()
	return manifest.Entry{
		Language:        "Abkhaz",
		Locale:          "ab",
		URL:             serverURL + "/cv-corpus-21.0-2025-03-14-ab.tar.gz",
		ArchiveFilename: "cv-corpus-21.0-2025-03-14-ab.tar.gz",
		DownloadDir:     dir,
		DownloadPath:    filepath.Join(dir, "cv-corpus-21.0-2025-03-14-ab.tar.gz"),
	}
}

func TestDownloadFromScratch(t *testing.T) {
	content := []byte("archive-bytes-full-content")
	server := newArchiveServer(t, content)

	d := New(WithHTTPClient(server.Client()), WithProgress(io.Discard))
	entry := testEntry(t, server.URL)

	skipped, err := d.download(context.Background(), entry)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if skipped {
		t.Error("fresh download should not be skipped")
	}

	got, err := os.ReadFile(entry.DownloadPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Errorf("file content = %q, want %q", got, content)
	}
}

func TestDownloadSkipsCompleteFile(t *testing.T) {
	content := []byte("archive-bytes-full-content")
	server := newArchiveServer(t, content)

	d := New(WithHTTPClient(server.Client()), WithProgress(nil))
	entry := testEntry(t, server.URL)
	if err := os.WriteFile(entry.DownloadPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	skipped, err := d.download(context.Background(), entry)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if !skipped {
		t.Error("complete file should be skipped")
	}
}

func TestDownloadResumesPartialFile(t *testing.T) {
	content := []byte("archive-bytes-full-content")
	server := newArchiveServer(t, content)

	d := New(WithHTTPClient(server.Client()), WithProgress(nil))
	entry := testEntry(t, server.URL)
	if err := os.WriteFile(entry.DownloadPath, content[:10], 0644); err != nil {
		t.Fatal(err)
	}

	skipped, err := d.download(context.Background(), entry)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if skipped {
		t.Error("partial file should resume, not skip")
	}

	got, err := os.ReadFile(entry.DownloadPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Errorf("resumed content = %q, want %q", got, content)
	}
}

func TestDownloadRestartsWhenRangeIgnored(t *testing.T) {
	content := []byte("archive-bytes-full-content")
	// Server that always answers 200 with the full body.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(content)))
			return
		}
		w.Write(content)
	}))
	t.Cleanup(server.Close)

	d := New(WithHTTPClient(server.Client()), WithProgress(nil))
	entry := testEntry(t, server.URL)
	if err := os.WriteFile(entry.DownloadPath, []byte("garbage-p"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := d.download(context.Background(), entry); err != nil {
		t.Fatalf("download failed: %v", err)
	}

	got, err := os.ReadFile(entry.DownloadPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Errorf("restarted content = %q, want %q", got, content)
	}
}

func TestDownloadAllCollectsErrors(t *testing.T) {
	content := []byte("archive-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(content)))
			return
		}
		w.Write(content)
	}))
	t.Cleanup(server.Close)

	root := t.TempDir()
	m := manifest.Manifest{
		"Abkhaz": {
			Language:        "Abkhaz",
			URL:             server.URL + "/cv-corpus-21.0-2025-03-14-ab.tar.gz",
			ArchiveFilename: "cv-corpus-21.0-2025-03-14-ab.tar.gz",
		},
		"Icelandic": {
			Language:        "Icelandic",
			URL:             server.URL + "/missing/cv-corpus-21.0-2025-03-14-is.tar.gz",
			ArchiveFilename: "cv-corpus-21.0-2025-03-14-is.tar.gz",
		},
	}
	if err := m.ResolvePaths(root); err != nil {
		t.Fatal(err)
	}

	d := New(WithHTTPClient(server.Client()), WithConcurrency(2), WithProgress(nil))
	result, err := d.DownloadAll(context.Background(), m)
	if err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	if result.Downloaded != 1 {
		t.Errorf("Downloaded = %d, want 1", result.Downloaded)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want one entry", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "cv-corpus-21.0-2025-03-14-is.tar.gz") {
		t.Errorf("error should name the failed archive: %s", result.Errors[0])
	}

	// The good archive landed in its language directory.
	path := filepath.Join(root, "Abkhaz", "cv-corpus-21.0-2025-03-14-ab.tar.gz")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected downloaded archive at %s: %v", path, err)
	}
}

func TestDownloadAllRequiresResolvedPaths(t *testing.T) {
	m := manifest.Manifest{
		"Abkhaz": {Language: "Abkhaz", URL: "https://example.com/a.tar.gz", ArchiveFilename: "a.tar.gz"},
	}
	d := New(WithProgress(nil))
	if _, err := d.DownloadAll(context.Background(), m); err == nil {
		t.Fatal("expected error for unresolved manifest paths")
	}
}
