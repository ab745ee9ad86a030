// Package resume turns a document analysis result into structured resume data
// and classifies the failures of a parse.
package resume

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-parser/internal/docintel"
	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/types"
	"github.com/rs/zerolog"
)

// Options control how a resume is analyzed and interpreted.
type Options struct {
	// ModelID selects the analysis model; empty means docintel.DefaultModelID.
	ModelID string
	// SkillMatch selects substring or word-boundary keyword matching.
	SkillMatch extraction.MatchMode
	// Catalog overrides extraction.DefaultCatalog when non-nil.
	Catalog extraction.Catalog
}

func (o Options) modelID() string {
	if o.ModelID == "" {
		return docintel.DefaultModelID
	}
	return o.ModelID
}

func (o Options) catalog() extraction.Catalog {
	if o.Catalog == nil {
		return extraction.DefaultCatalog
	}
	return o.Catalog
}

// Parser analyzes resume documents with an Analyzer and runs the text heuristics
// over the result.
type Parser struct {
	analyzer docintel.Analyzer
	opts     Options
	log      zerolog.Logger
	now      func() time.Time
}

// NewParser creates a Parser.
func NewParser(analyzer docintel.Analyzer, opts Options, log zerolog.Logger) *Parser {
	return &Parser{
		analyzer: analyzer,
		opts:     opts,
		log:      log.With().Str("component", "resume").Logger(),
		now:      time.Now,
	}
}

// Analyzer returns the analyzer used by the parser.
func (p *Parser) Analyzer() docintel.Analyzer {
	return p.analyzer
}

// ParseFile reads the document at path and parses it.
func (p *Parser) ParseFile(ctx context.Context, path string) (*types.ResumeData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Cause: err}
	}
	return p.Parse(ctx, filepath.Base(path), data)
}

// Parse submits document to the analysis service and builds ResumeData from the
// result. No heuristics run when the analysis fails.
func (p *Parser) Parse(ctx context.Context, fileName string, document []byte) (*types.ResumeData, error) {
	modelID := p.opts.modelID()
	p.log.Debug().Str("file", fileName).Str("model", modelID).Int("bytes", len(document)).Msg("starting document analysis")

	result, err := p.analyzer.Analyze(ctx, modelID, document)
	if err != nil {
		return nil, &AnalysisError{FileName: fileName, ModelID: modelID, Cause: err}
	}

	data := Build(fileName, result, p.opts)
	data.AnalyzedAt = p.now().UTC()
	if data.ModelID == "" {
		data.ModelID = modelID
	}

	p.log.Debug().
		Str("id", data.ID.String()).
		Int("pages", data.Pages).
		Int("skill_groups", len(data.Skills)).
		Int("sections", len(data.Experience)).
		Bool("contact_found", !data.Contact.Empty()).
		Msg("document analysis completed")
	return data, nil
}

// Build converts an analysis result into ResumeData. The heuristics run over
// the flattened page text.
func Build(fileName string, result *docintel.AnalyzeResult, opts Options) *types.ResumeData {
	text := docintel.FlattenText(result)

	data := Analyze(text, opts)
	data.FileName = fileName
	if result == nil {
		return data
	}

	data.ModelID = result.ModelID
	data.Pages = len(result.Pages)

	for _, doc := range result.Documents {
		data.Documents = append(data.Documents, documentFields(doc))
	}
	if len(result.Documents) > 0 {
		data.Confidence = result.Documents[0].Confidence
	}

	for _, kv := range result.KeyValuePairs {
		if kv.Key == nil || kv.Value == nil {
			continue
		}
		data.KeyValuePairs = append(data.KeyValuePairs, types.KeyValue{
			Key:   kv.Key.Content,
			Value: kv.Value.Content,
		})
	}

	for _, table := range result.Tables {
		t := types.Table{
			RowCount:    table.RowCount,
			ColumnCount: table.ColumnCount,
			Cells:       make([]types.TableCell, 0, len(table.Cells)),
		}
		for _, cell := range table.Cells {
			t.Cells = append(t.Cells, types.TableCell{
				RowIndex:    cell.RowIndex,
				ColumnIndex: cell.ColumnIndex,
				Content:     cell.Content,
			})
		}
		data.Tables = append(data.Tables, t)
	}

	for _, page := range result.Pages {
		lines := make([]string, 0, len(page.Lines))
		for _, line := range page.Lines {
			lines = append(lines, line.Content)
		}
		data.PageText = append(data.PageText, types.PageText{PageNumber: page.PageNumber, Lines: lines})
	}

	return data
}

// Analyze runs the contact, skill and section heuristics over text.
func Analyze(text string, opts Options) *types.ResumeData {
	data := &types.ResumeData{
		ID:       uuid.New(),
		FullText: text,
		Contact:  extraction.ExtractContacts(text),
		Skills:   extraction.DetectSkills(text, opts.catalog(), opts.SkillMatch),
	}
	if section := extraction.LocateExperience(text); section != nil {
		data.Experience = append(data.Experience, *section)
	}
	if section := extraction.LocateEducation(text); section != nil {
		data.Experience = append(data.Experience, *section)
	}
	return data
}

// documentFields flattens the non-empty fields of doc, ordered by name.
func documentFields(doc docintel.Document) []types.FieldValue {
	names := make([]string, 0, len(doc.Fields))
	for name, field := range doc.Fields {
		if field != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	fields := make([]types.FieldValue, 0, len(names))
	for _, name := range names {
		field := doc.Fields[name]
		fields = append(fields, types.FieldValue{
			Name:       name,
			Value:      field.Value(),
			Confidence: field.Confidence,
		})
	}
	return fields
}
