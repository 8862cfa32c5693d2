package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"time"

	"github.com/cvkit-labs/cvkit/internal/corpus"
	"github.com/cvkit-labs/cvkit/internal/manifest"
)

// DefaultURL is the Common Voice datasets page.
const DefaultURL = "https://commonvoice.mozilla.org/en/datasets"

const userAgent = "cvkit-scraper"

// archiveURLPattern matches signed archive links embedded in the
// datasets page markup.
var archiveURLPattern = regexp.MustCompile(`https://[^\s"'<>]*cv-corpus-[^\s"'<>]*?\.tar\.gz[^\s"'<>]*`)

// Scraper discovers per-language dataset download URLs from the
// datasets page.
type Scraper struct {
	client  *http.Client
	url     string
	version string
	email   string
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient substitutes the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithPageURL overrides the datasets page URL.
func WithPageURL(u string) Option {
	return func(s *Scraper) { s.url = u }
}

// WithVersion restricts discovery to one corpus version ("21.0").
// An empty version accepts every release on the page.
func WithVersion(v string) Option {
	return func(s *Scraper) { s.version = v }
}

// WithEmail sets the contact address sent as the From request header,
// the address the datasets page asks for before handing out links.
func WithEmail(email string) Option {
	return func(s *Scraper) { s.email = email }
}

// New creates a Scraper with a 60 second client timeout.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{Timeout: 60 * time.Second},
		url:    DefaultURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch downloads the datasets page and extracts archive URLs into a
// manifest keyed by language name, along with the total advertised
// download size in megabytes.
func (s *Scraper) Fetch(ctx context.Context) (manifest.Manifest, float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if s.email != "" {
		req.Header.Set("From", s.email)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching datasets page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("datasets page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading datasets page: %w", err)
	}

	m := s.extract(string(body))
	if len(m) == 0 {
		return nil, 0, fmt.Errorf("no dataset links for corpus %q found on %s", s.version, s.url)
	}

	return m, TotalMegabytes(string(body)), nil
}

// extract builds a manifest from every archive URL present in the page.
func (s *Scraper) extract(page string) manifest.Manifest {
	m := make(manifest.Manifest)

	for _, raw := range archiveURLPattern.FindAllString(page, -1) {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		archiveName := path.Base(u.Path)

		release, err := corpus.ParseArchiveName(archiveName)
		if err != nil || release.Locale == "" {
			continue
		}
		if s.version != "" && !release.MatchesVersion(s.version) {
			continue
		}

		language := corpus.LanguageName(release.Locale)
		if prev, ok := m[language]; ok {
			// Keep the newest release when a language appears twice.
			prevRelease, err := corpus.ParseArchiveName(prev.ArchiveFilename)
			if err == nil && release.Compare(prevRelease) <= 0 {
				continue
			}
		}

		slog.Debug("discovered dataset", "language", language, "archive", archiveName)
		m[language] = manifest.Entry{
			Language:        language,
			Locale:          release.Locale,
			URL:             raw,
			ArchiveFilename: archiveName,
		}
	}

	return m
}
