package icd10

import (
	"testing"
	"time"
)

func TestResolveLibraryYear(t *testing.T) {
	tests := []struct {
		name string
		date string
		want int
	}{
		{"january", "2025-01-15", 2025},
		{"june", "2025-06-01", 2025},
		{"last day of september", "2025-09-30", 2025},
		{"october first", "2025-10-01", 2026},
		{"november", "2025-11-20", 2026},
		{"last day of year", "2025-12-31", 2026},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := time.Parse("2006-01-02", tt.date)
			if err != nil {
				t.Fatalf("bad test date: %v", err)
			}
			if got := ResolveLibraryYear(d); got != tt.want {
				t.Errorf("ResolveLibraryYear(%s) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}

func TestParseLibraryType(t *testing.T) {
	tests := []struct {
		input   string
		want    LibraryType
		wantErr bool
	}{
		{"CM", LibraryTypeCM, false},
		{"cm", LibraryTypeCM, false},
		{"PCS", LibraryTypePCS, false},
		{" pcs ", LibraryTypePCS, false},
		{"", "", true},
		{"ICD9", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLibraryType(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLibraryType(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLibraryType(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLibraryType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
