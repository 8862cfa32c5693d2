package platform

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// CreateSymlink creates a symbolic link at link pointing to target.
// On Unix systems this is os.Symlink directly. On Windows it attempts
// os.Symlink first (requires developer mode), then falls back to copying
// the clip and writing a .target sidecar so the link target can still
// be recovered.
func CreateSymlink(target, link string) error {
	if runtime.GOOS != "windows" {
		return os.Symlink(target, link)
	}

	if err := os.Symlink(target, link); err == nil {
		return nil
	}

	// Fallback: copy the clip and record the target in a sidecar.
	if err := copyForSymlink(target, link); err != nil {
		return fmt.Errorf("symlink fallback (copy) failed: %w", err)
	}

	sidecar := link + ".target"
	if err := os.WriteFile(sidecar, []byte(target), 0644); err != nil {
		// Non-fatal: the copy succeeded.
		return nil
	}

	return nil
}

// RemoveSymlink removes a symlink (or its fallback copy and sidecar).
func RemoveSymlink(path string) error {
	err := os.Remove(path)
	os.Remove(path + ".target") // best-effort sidecar cleanup
	return err
}

// ReadSymlinkTarget returns the target of a symlink. On Windows, if
// os.Readlink fails because the copy fallback was used, it reads the
// .target sidecar instead.
func ReadSymlinkTarget(path string) (string, error) {
	target, err := os.Readlink(path)
	if err == nil {
		return target, nil
	}

	if runtime.GOOS != "windows" {
		return "", err
	}

	data, readErr := os.ReadFile(path + ".target")
	if readErr != nil {
		return "", fmt.Errorf("readlink failed and no .target sidecar found: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// IsSymlinkSupported reports whether the current platform supports native
// symlinks. On Windows this attempts a test symlink to detect developer mode.
func IsSymlinkSupported() bool {
	if runtime.GOOS != "windows" {
		return true
	}

	tmpDir := os.TempDir()
	link := filepath.Join(tmpDir, ".cvkit-symlink-test")
	defer os.Remove(link)

	return os.Symlink(tmpDir, link) == nil
}

// copyForSymlink copies src to dst. Relative targets are resolved against
// the directory containing the link, matching symlink resolution semantics.
func copyForSymlink(src, dst string) error {
	resolved := src
	if !filepath.IsAbs(src) {
		resolved = filepath.Join(filepath.Dir(dst), src)
	}

	in, err := os.Open(resolved)
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
