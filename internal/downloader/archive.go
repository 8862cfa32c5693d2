package downloader

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const archiveSuffix = ".tar.gz"

// findArchives returns every *.tar.gz under root, recursively.
func findArchives(root string) ([]string, error) {
	var archives []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, archiveSuffix) {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return archives, nil
}

// UncompressedSize sums the uncompressed member sizes of every archive
// under root, giving an estimate of the extracted corpus size.
// Unreadable archives are skipped with a warning. The second return is
// the number of archives inspected.
func UncompressedSize(root string) (int64, int, error) {
	archives, err := findArchives(root)
	if err != nil {
		return 0, 0, err
	}

	var total int64
	inspected := 0
	for _, archive := range archives {
		size, err := archiveSize(archive)
		if err != nil {
			slog.Warn("skipping unreadable archive", "archive", archive, "err", err)
			continue
		}
		total += size
		inspected++
	}
	return total, inspected, nil
}

func archiveSize(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, err
	}
	defer gz.Close()

	var total int64
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return 0, err
		}
		total += hdr.Size
	}
}

// ExtractAll extracts every archive under root into a directory named
// after the archive, next to it. Failed extractions are logged and the
// rest of the batch continues. Returns the number extracted.
func ExtractAll(root string) (int, error) {
	archives, err := findArchives(root)
	if err != nil {
		return 0, err
	}

	extracted := 0
	for _, archive := range archives {
		if err := extractArchive(archive); err != nil {
			slog.Warn("extraction failed", "archive", archive, "err", err)
			continue
		}
		extracted++
	}
	return extracted, nil
}

func extractArchive(path string) error {
	dest := strings.TrimSuffix(path, archiveSuffix)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		if !filepath.IsLocal(hdr.Name) {
			slog.Warn("skipping non-local tar entry", "archive", path, "entry", hdr.Name)
			continue
		}
		target := filepath.Join(dest, hdr.Name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating dir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("creating dir for %s: %w", target, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, hdr.FileInfo().Mode().Perm())
			if err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("extracting %s: %w", target, err)
			}
			if err := out.Close(); err != nil {
				return err
			}
		default:
			// Symlinks and special files do not appear in corpus archives.
		}
	}
}
