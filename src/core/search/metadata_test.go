package search_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"resumatch/src/core/search"
)

func TestParseMetadata(t *testing.T) {
	got := search.ParseMetadata(map[string]interface{}{
		"name":        "Alice Chen",
		"filename":    "alice.pdf",
		"skills":      []interface{}{"react", "node"},
		"role":        "frontend developer",
		"experience":  "5 years",
		"text":        "Alice Chen is a frontend developer",
		"pageNumber":  float64(2),
		"chunk":       3,
		"processedAt": "2026-06-01T00:00:00Z",
		"department":  "engineering",
	})

	if got.Name != "Alice Chen" || got.FileName != "alice.pdf" {
		t.Errorf("names = %q / %q, want parsed values", got.Name, got.FileName)
	}
	if !reflect.DeepEqual(got.Skills, []string{"react", "node"}) {
		t.Errorf("Skills = %v, want [react node]", got.Skills)
	}
	if got.PageNumber != 2 || got.Chunk != 3 {
		t.Errorf("PageNumber/Chunk = %d/%d, want 2/3", got.PageNumber, got.Chunk)
	}
	if got.ProcessedAt == nil || !got.ProcessedAt.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ProcessedAt = %v, want parsed RFC3339 timestamp", got.ProcessedAt)
	}
	if got.Extra["department"] != "engineering" {
		t.Errorf("Extra = %v, want unrecognized keys preserved", got.Extra)
	}
}

func TestParseMetadataEmpty(t *testing.T) {
	got := search.ParseMetadata(nil)
	if got.Extra != nil {
		t.Errorf("Extra = %v, want nil for empty input", got.Extra)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		meta search.CandidateMetadata
		want string
	}{
		{"name preferred", search.CandidateMetadata{Name: "Alice", FileName: "a.pdf"}, "Alice"},
		{"filename fallback", search.CandidateMetadata{FileName: "a.pdf"}, "a.pdf"},
		{"unknown fallback", search.CandidateMetadata{}, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchBlobIncludesExtraStrings(t *testing.T) {
	meta := search.CandidateMetadata{
		Name:  "Alice",
		Extra: map[string]interface{}{"department": "Engineering", "headcount": 7},
	}

	blob := meta.SearchBlob()
	if !strings.Contains(blob, "alice") || !strings.Contains(blob, "engineering") {
		t.Errorf("SearchBlob() = %q, want lowercase name and extra strings", blob)
	}
}
