package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultFileName is the manifest name the scrape command writes and
// the download command looks for inside the download directory.
const DefaultFileName = "saved_urls.json"

// Entry describes one per-language dataset download. The field tags
// match the JSON the original tooling saved, so previously scraped
// manifests keep loading.
type Entry struct {
	// Language is the human-readable language name shown on the
	// datasets page ("Abkhaz").
	Language string `json:"dataset_language" yaml:"dataset_language"`
	// Locale is the BCP 47 code parsed from the archive name.
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`
	// URL is the signed archive download link.
	URL string `json:"href" yaml:"href"`
	// ArchiveFilename is the archive basename, derived from the URL path.
	ArchiveFilename string `json:"dataset_archive_filename" yaml:"dataset_archive_filename"`
	// DownloadDir and DownloadPath are filled by ResolvePaths before
	// downloading.
	DownloadDir  string `json:"language_download_dir,omitempty" yaml:"language_download_dir,omitempty"`
	DownloadPath string `json:"download_filepath,omitempty" yaml:"download_filepath,omitempty"`
}

// Manifest maps language name to its dataset entry.
type Manifest map[string]Entry

// Languages returns the language keys in sorted order for stable
// iteration and output.
func (m Manifest) Languages() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResolvePaths creates a per-language directory under root and records
// each entry's archive destination path.
func (m Manifest) ResolvePaths(root string) error {
	for lang, entry := range m {
		dir := filepath.Join(root, entry.Language)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating language directory %s: %w", dir, err)
		}
		entry.DownloadDir = dir
		entry.DownloadPath = filepath.Join(dir, entry.ArchiveFilename)
		m[lang] = entry
	}
	return nil
}
