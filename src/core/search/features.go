package search

import (
	"regexp"
	"strings"
)

// Vocabularies for rule-based feature extraction. Matching is
// case-insensitive substring containment against the raw query.
var (
	knownSkills = []string{
		"javascript", "react", "node", "python", "java", "angular", "vue",
		"typescript", "sql", "mongodb", "aws", "docker", "kubernetes",
		"machine learning", "ai", "data science", "devops", "frontend", "backend",
		"html", "css", "express", "django", "flask", "spring", "laravel",
		"git", "jenkins", "redis", "elasticsearch", "graphql", "rest api",
	}

	knownRoles = []string{
		"developer", "engineer", "architect", "manager", "lead", "senior",
		"junior", "intern", "consultant", "analyst", "designer", "devops",
		"fullstack", "full-stack", "backend", "frontend", "software engineer",
		"data scientist", "ml engineer", "product manager", "tech lead",
	}
)

var (
	nameRe       = regexp.MustCompile(`\b[A-Z][a-z]+(\s+[A-Z][a-z]+)*\b`)
	experienceRe = regexp.MustCompile(`\d+\s*years?`)
)

// ExtractFeatures derives structured features from the raw query text.
// The rules are deterministic and never fail.
func ExtractFeatures(query string) QueryFeatures {
	lower := strings.ToLower(query)

	features := QueryFeatures{
		HasName:       nameRe.MatchString(query),
		Skills:        matchVocabulary(lower, knownSkills),
		Roles:         matchVocabulary(lower, knownRoles),
		HasExperience: experienceRe.MatchString(query),
		WordCount:     len(strings.Fields(query)),
	}
	features.QueryType = classifyQuery(query, lower, features)

	return features
}

func matchVocabulary(lowerQuery string, vocabulary []string) []string {
	var matched []string
	for _, term := range vocabulary {
		if strings.Contains(lowerQuery, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

// classifyQuery applies a fixed precedence order: a short capitalized query
// reads as a name lookup, then skill phrasing, then experience phrasing,
// then location phrasing, and general otherwise.
func classifyQuery(query, lower string, features QueryFeatures) QueryType {
	switch {
	case features.HasName && features.WordCount <= 3:
		return QueryTypeNameSearch
	case strings.Contains(lower, "with") || strings.Contains(lower, "having") || strings.Contains(lower, "skilled in"):
		return QueryTypeSkillBased
	case strings.Contains(lower, "years") || strings.Contains(lower, "experience"):
		return QueryTypeExperienceBased
	case strings.Contains(lower, "location") || strings.Contains(lower, "based in"):
		return QueryTypeLocationBased
	default:
		return QueryTypeGeneral
	}
}
