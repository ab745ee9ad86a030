package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-parser/internal/docintel"
	"github.com/jonathan/resume-parser/internal/types"
	"github.com/stretchr/testify/assert"
)

func sampleData() *types.ResumeData {
	return &types.ResumeData{
		ID:       uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
		FileName: "cv.pdf",
		ModelID:  "prebuilt-document",
		Documents: [][]types.FieldValue{
			{{Name: "Name", Value: "Jane Doe", Confidence: 0.954}},
		},
		KeyValuePairs: []types.KeyValue{{Key: "Email", Value: "jane@example.com"}},
		Tables: []types.Table{{
			RowCount:    1,
			ColumnCount: 2,
			Cells: []types.TableCell{
				{RowIndex: 0, ColumnIndex: 0, Content: "Go"},
				{RowIndex: 0, ColumnIndex: 1, Content: "5 years"},
			},
		}},
		Contact: types.ContactInfo{
			Emails: []string{"jane@example.com"},
			Phones: []string{"5551234567"},
			GitHub: []string{"github.com/jane"},
		},
		Skills: []types.SkillGroup{
			{Category: "languages", Label: "Languages", Skills: []string{"python", "go"}},
			{Category: "ml_ai", Label: "ML/AI", Skills: []string{"pandas"}},
		},
		Experience: []types.SectionExcerpt{
			{Kind: types.SectionWork, Indicator: "experience", Content: "Experience: 5 years as engineer."},
		},
		PageText: []types.PageText{
			{PageNumber: 1, Lines: []string{"Jane Doe", "Experience: 5 years as engineer."}},
		},
		Pages:      1,
		Confidence: 0.81,
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(sampleData())
	output := buf.String()

	assert.Contains(t, output, "DOCUMENT FIELDS")
	assert.Contains(t, output, "  • Name: Jane Doe (Confidence: 0.95)")
	assert.Contains(t, output, "  • Email: jane@example.com")
	assert.Contains(t, output, "Table 1 (1 rows × 2 columns):")
	assert.Contains(t, output, "    Row 0, Col 1: 5 years")
	assert.Contains(t, output, "  Email: jane@example.com")
	assert.Contains(t, output, "  Phone: 5551234567")
	assert.Contains(t, output, "  GitHub: github.com/jane")
	assert.Contains(t, output, "  Languages: python, go")
	assert.Contains(t, output, "  ML/AI: pandas")
	assert.Contains(t, output, "  Experience section (around 'experience'):")
	assert.Contains(t, output, "     Experience: 5 years as engineer.")
	assert.Contains(t, output, "  No education section clearly identified")
	assert.Contains(t, output, "Page 1:")
	assert.Contains(t, output, "  Jane Doe\n")
}

func TestPrintReport_SectionOrder(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(sampleData())
	output := buf.String()

	order := []string{
		"DOCUMENT FIELDS",
		"KEY-VALUE PAIRS",
		"TABLES DETECTED",
		"CONTACT INFORMATION",
		"SKILLS AND TECHNOLOGIES",
		"EXPERIENCE AND EDUCATION",
		"FULL TEXT CONTENT",
	}
	last := -1
	for _, title := range order {
		idx := strings.Index(output, title)
		assert.Greater(t, idx, last, "%s out of order", title)
		last = idx
	}
}

func TestPrintReport_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(nil)

	assert.Empty(t, buf.String())
}

func TestPrintExtraction_NothingDetected(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintExtraction(&types.ResumeData{})
	output := buf.String()

	assert.Contains(t, output, "No contact information detected")
	assert.Contains(t, output, "No specific technical skills detected")
	assert.Contains(t, output, "No experience section clearly identified")
	assert.Contains(t, output, "No education section clearly identified")
}

func TestPrintReport_OmitsEmptyStructure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(&types.ResumeData{})
	output := buf.String()

	assert.NotContains(t, output, "DOCUMENT FIELDS")
	assert.NotContains(t, output, "KEY-VALUE PAIRS")
	assert.NotContains(t, output, "TABLES DETECTED")
	assert.NotContains(t, output, "FULL TEXT CONTENT")
	assert.Contains(t, output, "RESUME INFORMATION EXTRACTION")
}

func TestPrintConnection(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintConnection("https://example.cognitiveservices.azure.com/", false)

	assert.Equal(t, "Using endpoint: https://example.cognitiveservices.azure.com/\nKey is configured: No\n", buf.String())
}

func TestPrintModels(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintModels([]docintel.ModelSummary{
		{ModelID: "prebuilt-document", Description: "General document"},
		{ModelID: "prebuilt-read"},
	})

	assert.Equal(t, "Available models:\n- prebuilt-document (General document)\n- prebuilt-read\n", buf.String())
}

func TestPrintModels_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintModels(nil)
	assert.Equal(t, "No models available\n", buf.String())
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummary(sampleData())
	output := buf.String()

	assert.Contains(t, output, "ANALYSIS SAVED")
	assert.Contains(t, output, "7d444840-9dc0-11d1-b245-5ffdce74fad2")
	assert.Contains(t, output, "Confidence: 0.81")
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintHistory([]types.AnalysisSummary{
		{
			ID:         uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
			FileName:   "cv.pdf",
			ModelID:    "prebuilt-document",
			Pages:      2,
			Confidence: 0.5,
			CreatedAt:  time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		},
	})
	output := buf.String()

	assert.Contains(t, output, "STORED ANALYSES (1)")
	assert.Contains(t, output, "2024-05-01 09:30  cv.pdf")
	assert.Contains(t, output, "model prebuilt-document, 2 pages, confidence 0.50")
}

func TestPrintHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintHistory(nil)
	assert.Equal(t, "No stored analyses\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééééééé...", truncate(strings.Repeat("é", 20), 10))
}
