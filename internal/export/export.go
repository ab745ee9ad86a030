// Package export writes analysis results to an XLSX workbook.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jonathan/resume-parser/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the generated workbook.
const (
	SheetAnalyses = "Analyses"
	SheetSkills   = "Skills"
	SheetSections = "Sections"
)

const maxExcerpt = 500

var (
	analysisHeaders = []string{"ID", "File", "Model", "Pages", "Confidence", "Analyzed At", "Emails", "Phones", "LinkedIn", "GitHub", "Websites"}
	skillHeaders    = []string{"File", "Category", "Label", "Skill"}
	sectionHeaders  = []string{"File", "Section", "Indicator", "Offset", "Excerpt"}
)

// Workbook renders results as an XLSX document with one sheet for analyses,
// one for detected skills and one for section excerpts.
func Workbook(results []*types.ResumeData) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetAnalyses); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetSkills, SheetSections} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	analyses := newSheetWriter(f, SheetAnalyses, analysisHeaders)
	skills := newSheetWriter(f, SheetSkills, skillHeaders)
	sections := newSheetWriter(f, SheetSections, sectionHeaders)

	for _, r := range results {
		if r == nil {
			continue
		}
		analyses.row(
			r.ID.String(),
			r.FileName,
			r.ModelID,
			r.Pages,
			r.Confidence,
			r.AnalyzedAt.UTC().Format("2006-01-02 15:04:05"),
			strings.Join(r.Contact.Emails, ", "),
			strings.Join(r.Contact.Phones, ", "),
			strings.Join(r.Contact.LinkedIn, ", "),
			strings.Join(r.Contact.GitHub, ", "),
			strings.Join(r.Contact.Websites, ", "),
		)
		for _, g := range r.Skills {
			for _, s := range g.Skills {
				skills.row(r.FileName, g.Category, g.Label, s)
			}
		}
		for _, s := range r.Experience {
			sections.row(r.FileName, string(s.Kind), s.Indicator, s.Offset, truncate(s.Content, maxExcerpt))
		}
	}

	for _, w := range []*sheetWriter{analyses, skills, sections} {
		if w.err != nil {
			return nil, w.err
		}
	}

	_ = f.SetColWidth(SheetAnalyses, "A", "A", 38)
	_ = f.SetColWidth(SheetAnalyses, "B", "C", 24)
	_ = f.SetColWidth(SheetAnalyses, "G", "K", 32)
	_ = f.SetColWidth(SheetSkills, "A", "D", 20)
	_ = f.SetColWidth(SheetSections, "E", "E", 80)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter appends rows to one sheet and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func newSheetWriter(f *excelize.File, sheet string, headers []string) *sheetWriter {
	w := &sheetWriter{f: f, sheet: sheet, next: 1}
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	w.row(values...)
	return w
}

func (w *sheetWriter) row(values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("write %s row %d: %w", w.sheet, w.next, err)
		return
	}
	w.next++
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
