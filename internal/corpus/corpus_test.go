package corpus

import "testing"

func TestParseArchiveName(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		locale  string
		version string
		wantErr bool
	}{
		{"cv-corpus-21.0-2025-03-14-ab.tar.gz", "2025-03-14", "ab", "21.0", false},
		{"cv-corpus-21.0-2025-03-14-ab.tar", "2025-03-14", "ab", "21.0", false},
		{"cv-corpus-21.0-2025-03-14-zh-CN.tar.gz", "2025-03-14", "zh-CN", "21.0", false},
		{"cv-corpus-20.0-2024-12-06-is", "2024-12-06", "is", "20.0", false},
		{"cv-corpus-21.0-2025-03-14", "2025-03-14", "", "21.0", false},
		{"clips.tar.gz", "", "", "", true},
		{"cv-corpus-nope-2025-03-14-ab.tar.gz", "", "", "", true},
		{"", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseArchiveName(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", r)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Date != tt.date {
				t.Errorf("Date = %q, want %q", r.Date, tt.date)
			}
			if r.Locale != tt.locale {
				t.Errorf("Locale = %q, want %q", r.Locale, tt.locale)
			}
			if !r.MatchesVersion(tt.version) {
				t.Errorf("version %s does not match %s", r.Version, tt.version)
			}
		})
	}
}

func TestReleaseString(t *testing.T) {
	r, err := ParseArchiveName("cv-corpus-21.0-2025-03-14-ab.tar.gz")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != "cv-corpus-21.0-2025-03-14-ab" {
		t.Errorf("String() = %q", got)
	}
}

func TestReleaseCompare(t *testing.T) {
	v20, _ := ParseArchiveName("cv-corpus-20.0-2024-12-06-ab.tar.gz")
	v21, _ := ParseArchiveName("cv-corpus-21.0-2025-03-14-ab.tar.gz")
	v21b, _ := ParseArchiveName("cv-corpus-21.0-2025-06-20-ab.tar.gz")

	if v20.Compare(v21) >= 0 {
		t.Error("20.0 should order before 21.0")
	}
	if v21.Compare(v21b) >= 0 {
		t.Error("same version: earlier date should order first")
	}
	if v21.Compare(v21) != 0 {
		t.Error("release should compare equal to itself")
	}

	if got := Newest([]*Release{v20, v21b, v21}); got != v21b {
		t.Errorf("Newest = %v, want %v", got, v21b)
	}
	if Newest(nil) != nil {
		t.Error("Newest(nil) should be nil")
	}
}

func TestLanguageName(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"ab", "Abkhazian"},
		{"is", "Icelandic"},
		{"de", "German"},
		{"!!", "!!"},
	}

	for _, tt := range tests {
		if got := LanguageName(tt.locale); got != tt.want {
			t.Errorf("LanguageName(%q) = %q, want %q", tt.locale, got, tt.want)
		}
	}
}
