package rename

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cvkit-labs/cvkit/internal/corpus"
)

// MetadataFileName is the per-dataset metadata table every Common Voice
// release ships.
const MetadataFileName = "validated.tsv"

// Report summarizes a renaming run.
type Report struct {
	Found   int
	Copied  int
	Skipped int
	// Errors holds per-file failures, sorted; the walk continues past them.
	Errors []string
}

// Run recursively finds validated.tsv files under sourceDir and copies
// each to destDir as <LanguageName>_<code>_validated.tsv. The language
// name is the first directory under sourceDir; the code is the
// directory directly containing the file. Existing destination files
// are skipped so repeated runs are safe.
func Run(sourceDir, destDir string) (*Report, error) {
	if _, err := os.Stat(sourceDir); err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("creating destination %s: %w", destDir, err)
	}

	report := &Report{}
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != MetadataFileName {
			return nil
		}
		report.Found++

		dst := filepath.Join(destDir, destName(sourceDir, path))
		if _, err := os.Stat(dst); err == nil {
			slog.Warn("destination already exists, skipping", "src", path, "dst", dst)
			report.Skipped++
			return nil
		}

		if err := copyFile(path, dst); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", path, err))
			slog.Warn("copy failed", "src", path, "err", err)
			return nil
		}
		slog.Info("copied metadata table", "src", path, "dst", dst)
		report.Copied++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", sourceDir, err)
	}

	sort.Strings(report.Errors)
	return report, nil
}

// destName derives <LanguageName>_<code>_validated.tsv from the file's
// position in the tree. A file sitting directly under sourceDir has no
// language directory; the locale's display name fills in.
func destName(sourceDir, path string) string {
	rel, err := filepath.Rel(sourceDir, path)
	if err != nil {
		rel = path
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")

	code := filepath.Base(sourceDir)
	if len(parts) >= 2 {
		code = parts[len(parts)-2]
	}

	name := corpus.LanguageName(code)
	if len(parts) >= 3 {
		name = parts[0]
	}

	return fmt.Sprintf("%s_%s_%s", name, code, MetadataFileName)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
