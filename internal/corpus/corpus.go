package corpus

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// archivePattern matches Common Voice archive names such as
// cv-corpus-21.0-2025-03-14-ab.tar.gz (the trailing .gz and the
// extension itself are optional, extracted trees reuse the stem).
var archivePattern = regexp.MustCompile(`^cv-corpus-(\d+(?:\.\d+)?)-(\d{4}-\d{2}-\d{2})(?:-([A-Za-z]{2,3}(?:-[A-Za-z0-9]+)*))?(?:\.tar(?:\.gz)?)?$`)

// Release identifies one Common Voice corpus release for one locale.
type Release struct {
	// Version orders releases; Common Voice uses two-part versions
	// like 21.0, which semver coerces.
	Version *semver.Version
	// Date is the release date as it appears in archive names
	// (YYYY-MM-DD).
	Date string
	// Locale is the BCP 47 language code, empty for the corpus-wide
	// archive name without a locale suffix.
	Locale string
}

// ParseArchiveName parses a Common Voice archive or directory name.
func ParseArchiveName(name string) (*Release, error) {
	m := archivePattern.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("not a Common Voice archive name: %q", name)
	}

	v, err := semver.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("corpus version in %q: %w", name, err)
	}

	return &Release{Version: v, Date: m[2], Locale: m[3]}, nil
}

// String reconstructs the archive stem, without the .tar.gz extension.
func (r *Release) String() string {
	stem := fmt.Sprintf("cv-corpus-%s-%s", versionString(r.Version), r.Date)
	if r.Locale != "" {
		stem += "-" + r.Locale
	}
	return stem
}

// Compare orders releases by version, then by date. It returns -1, 0,
// or 1 in the manner of strings.Compare.
func (r *Release) Compare(o *Release) int {
	if c := r.Version.Compare(o.Version); c != 0 {
		return c
	}
	return strings.Compare(r.Date, o.Date)
}

// MatchesVersion reports whether the release carries the given corpus
// version ("21.0" style).
func (r *Release) MatchesVersion(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return r.Version.Equal(v)
}

// Newest returns the most recent release in rs, or nil for an empty slice.
func Newest(rs []*Release) *Release {
	var newest *Release
	for _, r := range rs {
		if newest == nil || r.Compare(newest) > 0 {
			newest = r
		}
	}
	return newest
}

// LanguageName returns the English display name for a locale code
// ("ab" -> "Abkhazian"). Unrecognized codes are returned unchanged so
// callers always have a usable label.
func LanguageName(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return locale
}

// versionString renders a semver value the way Common Voice writes it:
// major.minor, with no patch component.
func versionString(v *semver.Version) string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}
