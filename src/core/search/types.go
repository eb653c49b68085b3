package search

import (
	"strings"
	"time"
)

// QueryType classifies the intent of a search query. The set is closed so
// that reranking and analysis logic can switch over it exhaustively.
type QueryType string

const (
	QueryTypeNameSearch      QueryType = "name_search"
	QueryTypeSkillBased      QueryType = "skill_based"
	QueryTypeExperienceBased QueryType = "experience_based"
	QueryTypeRoleBased       QueryType = "role_based"
	QueryTypeLocationBased   QueryType = "location_based"
	QueryTypeGeneral         QueryType = "general"
)

// QueryFeatures holds the structured features extracted from a raw query.
// Extraction is deterministic; a given query always yields the same features.
type QueryFeatures struct {
	HasName       bool      `json:"hasName"`
	Skills        []string  `json:"skills"`
	Roles         []string  `json:"roles"`
	HasExperience bool      `json:"hasExperience"`
	WordCount     int       `json:"wordCount"`
	QueryType     QueryType `json:"queryType"`
}

// QueryAnalysis is produced once per request and consumed by every
// downstream stage.
type QueryAnalysis struct {
	Features       QueryFeatures `json:"features"`
	RewrittenQuery string        `json:"rewrittenQuery"`
	Confidence     float64       `json:"confidence"`
}

// CandidateMetadata is the typed view of a document's attributes as stored in
// the vector index. Fields the pipeline reads directly are named; anything
// else lands in Extra so unknown attributes survive a round trip.
type CandidateMetadata struct {
	Name        string                 `json:"name,omitempty"`
	FileName    string                 `json:"filename,omitempty"`
	Skills      []string               `json:"skills,omitempty"`
	Role        string                 `json:"role,omitempty"`
	Experience  string                 `json:"experience,omitempty"`
	Text        string                 `json:"text,omitempty"`
	PageNumber  int                    `json:"pageNumber,omitempty"`
	Chunk       int                    `json:"chunk,omitempty"`
	ProcessedAt *time.Time             `json:"processedAt,omitempty"`
	CreatedAt   *time.Time             `json:"createdAt,omitempty"`
	Extra       map[string]interface{} `json:"-"`
}

// SearchBlob returns a lowercase text rendering of the metadata used for
// case-insensitive keyword matching.
func (m CandidateMetadata) SearchBlob() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte(' ')
	b.WriteString(m.FileName)
	b.WriteByte(' ')
	b.WriteString(strings.Join(m.Skills, " "))
	b.WriteByte(' ')
	b.WriteString(m.Role)
	b.WriteByte(' ')
	b.WriteString(m.Experience)
	b.WriteByte(' ')
	b.WriteString(m.Text)
	for _, v := range m.Extra {
		if s, ok := v.(string); ok {
			b.WriteByte(' ')
			b.WriteString(s)
		}
	}
	return strings.ToLower(b.String())
}

// DisplayName returns the best available label for the document.
func (m CandidateMetadata) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	if m.FileName != "" {
		return m.FileName
	}
	return "Unknown"
}

// SearchCandidate is a per-request, ephemeral retrieval result.
type SearchCandidate struct {
	ID       string
	RawScore float64
	Metadata CandidateMetadata
}

// RankedResult is a candidate annotated with the rerank signals. FinalScore
// is the only field used for ordering and presentation.
type RankedResult struct {
	SearchCandidate
	FeedbackScore float64
	QueryScore    float64
	RecencyScore  float64
	FinalScore    float64
}

// KnowledgeBaseEntry is a previously answered query stored with its
// embedding, serving as the semantic cache.
type KnowledgeBaseEntry struct {
	ID         int64
	Question   string
	Embedding  []float32
	Answer     string
	References []string
	Confidence float64
	Features   QueryFeatures
	UsageCount int
	LastUsed   time.Time
	CreatedAt  time.Time
}

// QueryPattern aggregates how a distinct original query has been rewritten
// and how successful that rewrite was.
type QueryPattern struct {
	OriginalQuery  string
	RewrittenQuery string
	QueryType      QueryType
	TotalUses      int
	SuccessCount   int
	SuccessRate    float64
	Features       QueryFeatures
	LastUsed       time.Time
	CreatedAt      time.Time
}

// Interaction is the kind of user action a feedback record describes.
type Interaction string

const (
	InteractionClick    Interaction = "click"
	InteractionDownload Interaction = "download"
	InteractionView     Interaction = "view"
	InteractionSkip     Interaction = "skip"
	InteractionBookmark Interaction = "bookmark"
	InteractionShare    Interaction = "share"
)

// FeedbackEntry is an explicit user signal about one result for one query.
// Feedback is an event log: identical submissions produce distinct entries.
type FeedbackEntry struct {
	UserID      string
	Query       string
	ResultID    string
	Rating      int
	Interaction Interaction
	SessionID   string
	Timestamp   time.Time
}

// QueryLogEntry records one executed search for offline analysis.
type QueryLogEntry struct {
	Query          string
	RewrittenQuery string
	Results        []string
	UserID         string
	Confidence     float64
	ResultCount    int
	Features       QueryFeatures
	SessionID      string
	Timestamp      time.Time
}

// Document is a stored resume record, used to reconstruct presentable
// references on a cache hit.
type Document struct {
	ID           string
	OriginalName string
	FileName     string
	Text         string
	Skills       []string
	Role         string
	Experience   string
	ProcessedAt  time.Time
	CreatedAt    time.Time
}

// SearchStats describes how the candidate set narrowed through the pipeline.
// Computed per request and returned in the response, never persisted.
type SearchStats struct {
	TotalFound     int     `json:"totalFound"`
	AfterFiltering int     `json:"afterFiltering"`
	FinalResults   int     `json:"finalResults"`
	Confidence     float64 `json:"confidence"`
}

// ReferenceMetadata is the subset of document attributes exposed on a
// response reference.
type ReferenceMetadata struct {
	PageNumber int      `json:"pageNumber"`
	Chunk      int      `json:"chunk"`
	Skills     []string `json:"skills"`
	Experience string   `json:"experience"`
	Role       string   `json:"role"`
}

// Reference is one presentable match in a search response.
type Reference struct {
	Name          string            `json:"name"`
	Content       string            `json:"content"`
	Score         float64           `json:"score"`
	OriginalScore float64           `json:"originalScore"`
	Metadata      ReferenceMetadata `json:"metadata"`
}

// Response is the full result of one search request.
type Response struct {
	Answer        string        `json:"answer"`
	References    []Reference   `json:"references"`
	Cached        bool          `json:"cached"`
	QueryAnalysis QueryAnalysis `json:"queryAnalysis"`
	SearchStats   SearchStats   `json:"searchStats"`
	Suggestions   []string      `json:"suggestions"`
}

// Feedback is the inbound feedback payload before validation.
type Feedback struct {
	Query       string      `json:"query"`
	ResultID    string      `json:"resultId"`
	Rating      int         `json:"rating"`
	Interaction Interaction `json:"interaction"`
}

// HealthStatus reports the availability of the generative collaborator.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Generator Generator `json:"generator"`
}

// Generator describes the generation backend inside a health report.
type Generator struct {
	Available bool   `json:"available"`
	Model     string `json:"model"`
	BaseURL   string `json:"baseUrl"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
