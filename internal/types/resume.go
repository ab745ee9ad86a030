// Package types defines the data structures shared across the resume parser.
package types

import (
	"time"

	"github.com/google/uuid"
)

// SectionKind identifies which resume section an excerpt approximates.
type SectionKind string

const (
	// SectionWork marks an experience / work history excerpt
	SectionWork SectionKind = "work"
	// SectionEducation marks an education excerpt
	SectionEducation SectionKind = "education"
)

// ContactInfo holds every contact pattern match in order of appearance.
// Duplicates are kept.
type ContactInfo struct {
	Emails   []string `json:"emails"`
	Phones   []string `json:"phones"`
	LinkedIn []string `json:"linkedin"`
	GitHub   []string `json:"github"`
	Websites []string `json:"websites"`
}

// Empty reports whether no contact category produced a match.
func (c ContactInfo) Empty() bool {
	return len(c.Emails) == 0 &&
		len(c.Phones) == 0 &&
		len(c.LinkedIn) == 0 &&
		len(c.GitHub) == 0 &&
		len(c.Websites) == 0
}

// SkillGroup is one non-empty catalog category with the keywords found for it.
type SkillGroup struct {
	Category string   `json:"category"`
	Label    string   `json:"label"`
	Skills   []string `json:"skills"`
}

// SectionExcerpt is the text window around the first matching indicator phrase.
type SectionExcerpt struct {
	Kind      SectionKind `json:"type"`
	Indicator string      `json:"indicator"`
	Offset    int         `json:"offset"`
	Content   string      `json:"content"`
}

// FieldValue is a single recognized document field.
type FieldValue struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// KeyValue is a key/value pair recognized by the analysis service.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TableCell is one cell of a recognized table.
type TableCell struct {
	RowIndex    int    `json:"rowIndex"`
	ColumnIndex int    `json:"columnIndex"`
	Content     string `json:"content"`
}

// Table is a recognized table.
type Table struct {
	RowCount    int         `json:"rowCount"`
	ColumnCount int         `json:"columnCount"`
	Cells       []TableCell `json:"cells"`
}

// PageText is the ordered line content of one page.
type PageText struct {
	PageNumber int      `json:"pageNumber"`
	Lines      []string `json:"lines"`
}

// ResumeData is the full outcome of analyzing one resume.
type ResumeData struct {
	ID            uuid.UUID        `json:"id"`
	FileName      string           `json:"fileName"`
	ModelID       string           `json:"modelId"`
	Contact       ContactInfo      `json:"contactInfo"`
	Skills        []SkillGroup     `json:"skills"`
	Experience    []SectionExcerpt `json:"experience"`
	Documents     [][]FieldValue   `json:"documents"`
	KeyValuePairs []KeyValue       `json:"keyValuePairs"`
	Tables        []Table          `json:"tables"`
	PageText      []PageText       `json:"pageText"`
	FullText      string           `json:"fullText"`
	Pages         int              `json:"pages"`
	Confidence    float64          `json:"confidence"`
	AnalyzedAt    time.Time        `json:"analyzedAt"`
}

// Section returns the excerpt of the given kind, or nil when none was identified.
func (r *ResumeData) Section(kind SectionKind) *SectionExcerpt {
	for i := range r.Experience {
		if r.Experience[i].Kind == kind {
			return &r.Experience[i]
		}
	}
	return nil
}

// AnalysisSummary is the stored metadata of a past analysis.
type AnalysisSummary struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"fileName"`
	ModelID    string    `json:"modelId"`
	Pages      int       `json:"pages"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"createdAt"`
}
