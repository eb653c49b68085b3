package search_test

import (
	"reflect"
	"testing"

	"resumatch/src/core/search"
)

func TestExtractFeatures(t *testing.T) {
	tests := []struct {
		name              string
		query             string
		wantType          search.QueryType
		wantSkills        []string
		wantRoles         []string
		wantHasName       bool
		wantHasExperience bool
	}{
		{
			name:        "short capitalized query is a name lookup",
			query:       "John Smith",
			wantType:    search.QueryTypeNameSearch,
			wantHasName: true,
		},
		{
			name:       "with phrasing reads as skill based",
			query:      "developers with react",
			wantType:   search.QueryTypeSkillBased,
			wantSkills: []string{"react"},
			wantRoles:  []string{"developer"},
		},
		{
			name:              "years phrasing reads as experience based",
			query:             "5 years java engineer",
			wantType:          search.QueryTypeExperienceBased,
			wantSkills:        []string{"java"},
			wantRoles:         []string{"engineer"},
			wantHasExperience: true,
		},
		{
			name:        "based in phrasing reads as location based",
			query:       "candidates based in Berlin",
			wantType:    search.QueryTypeLocationBased,
			wantHasName: true,
		},
		{
			name:     "anything else is general",
			query:    "find good candidates",
			wantType: search.QueryTypeGeneral,
		},
		{
			// "with" outranks "years" in the precedence order
			name:              "capitalized but long query is not a name lookup",
			query:             "Senior React Developer with 5 years experience",
			wantType:          search.QueryTypeSkillBased,
			wantSkills:        []string{"react"},
			wantRoles:         []string{"developer", "senior"},
			wantHasName:       true,
			wantHasExperience: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := search.ExtractFeatures(tt.query)

			if got.QueryType != tt.wantType {
				t.Errorf("QueryType = %q, want %q", got.QueryType, tt.wantType)
			}
			if !reflect.DeepEqual(got.Skills, tt.wantSkills) {
				t.Errorf("Skills = %v, want %v", got.Skills, tt.wantSkills)
			}
			if !reflect.DeepEqual(got.Roles, tt.wantRoles) {
				t.Errorf("Roles = %v, want %v", got.Roles, tt.wantRoles)
			}
			if got.HasName != tt.wantHasName {
				t.Errorf("HasName = %v, want %v", got.HasName, tt.wantHasName)
			}
			if got.HasExperience != tt.wantHasExperience {
				t.Errorf("HasExperience = %v, want %v", got.HasExperience, tt.wantHasExperience)
			}
		})
	}
}

func TestExtractFeaturesDeterministic(t *testing.T) {
	query := "Senior React Developer with 5 years experience"

	first := search.ExtractFeatures(query)
	second := search.ExtractFeatures(query)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same query produced different features: %+v vs %+v", first, second)
	}
}

func TestExtractFeaturesWordCount(t *testing.T) {
	got := search.ExtractFeatures("  react   developer  ")
	if got.WordCount != 2 {
		t.Errorf("WordCount = %d, want 2", got.WordCount)
	}
}
