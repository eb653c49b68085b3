package search

import (
	"time"
)

// ParseMetadata converts the open property bag returned by the vector index
// into the typed metadata the pipeline reads. Unrecognized keys are kept in
// Extra rather than dropped.
func ParseMetadata(raw map[string]interface{}) CandidateMetadata {
	meta := CandidateMetadata{}
	if len(raw) == 0 {
		return meta
	}

	meta.Extra = make(map[string]interface{})
	for key, value := range raw {
		switch key {
		case "name":
			meta.Name = asString(value)
		case "filename":
			meta.FileName = asString(value)
		case "skills":
			meta.Skills = asStrings(value)
		case "role":
			meta.Role = asString(value)
		case "experience":
			meta.Experience = asString(value)
		case "text", "content":
			if meta.Text == "" {
				meta.Text = asString(value)
			}
		case "pageNumber":
			meta.PageNumber = asInt(value)
		case "chunk":
			meta.Chunk = asInt(value)
		case "processedAt":
			meta.ProcessedAt = asTime(value)
		case "createdAt":
			meta.CreatedAt = asTime(value)
		default:
			meta.Extra[key] = value
		}
	}
	if len(meta.Extra) == 0 {
		meta.Extra = nil
	}

	return meta
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asStrings(v interface{}) []string {
	switch typed := v.(type) {
	case []string:
		return typed
	case []interface{}:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if typed == "" {
			return nil
		}
		return []string{typed}
	default:
		return nil
	}
}

func asInt(v interface{}) int {
	switch typed := v.(type) {
	case int:
		return typed
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	default:
		return 0
	}
}

func asTime(v interface{}) *time.Time {
	switch typed := v.(type) {
	case time.Time:
		return &typed
	case string:
		if parsed, err := time.Parse(time.RFC3339, typed); err == nil {
			return &parsed
		}
		return nil
	default:
		return nil
	}
}
