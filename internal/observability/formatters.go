// Package observability renders analysis reports and diagnostics for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-parser/internal/docintel"
	"github.com/jonathan/resume-parser/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// ruleWidth is the width of the rule under a sub-section title
	ruleWidth = 40
	// tableRuleWidth is the width of the rule under a table header
	tableRuleWidth = 50
)

// Printer handles formatted console output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// printHeader prints a top-level report section title between double rules.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printHeader(title string) {
	rule := strings.Repeat("=", boxWidth)
	fmt.Fprintf(p.out, "\n%s\n%s\n%s\n", rule, title, rule)
}

// printSubHeader prints a sub-section title with a single rule below.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printSubHeader(title string) {
	fmt.Fprintf(p.out, "\n%s\n%s\n", title, strings.Repeat("-", ruleWidth))
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// PrintConnection reports which endpoint is used without revealing the key.
func (p *Printer) PrintConnection(endpoint string, keyConfigured bool) {
	configured := "No"
	if keyConfigured {
		configured = "Yes"
	}
	p.printf("Using endpoint: %s\n", endpoint)
	p.printf("Key is configured: %s\n", configured)
}

// PrintAnalysisStarted announces the remote analysis.
func (p *Printer) PrintAnalysisStarted() {
	p.printf("Starting document analysis...\n")
}

// PrintAnalysisCompleted announces a successful remote analysis.
func (p *Printer) PrintAnalysisCompleted() {
	p.printf("Document analysis completed successfully!\n")
}

// PrintReport outputs the complete analysis: recognized structure, the
// heuristic extraction, then the full page text.
func (p *Printer) PrintReport(data *types.ResumeData) {
	if data == nil {
		return
	}
	p.PrintDocuments(data.Documents)
	p.PrintKeyValuePairs(data.KeyValuePairs)
	p.PrintTables(data.Tables)
	p.PrintExtraction(data)
	p.PrintPageText(data.PageText)
}

// PrintDocuments outputs every field of every recognized document with its
// confidence.
func (p *Printer) PrintDocuments(documents [][]types.FieldValue) {
	for _, fields := range documents {
		p.printHeader("DOCUMENT FIELDS")
		for _, field := range fields {
			p.printf("  • %s: %s (Confidence: %.2f)\n", field.Name, field.Value, field.Confidence)
		}
	}
}

// PrintKeyValuePairs outputs the key/value pairs, if any.
func (p *Printer) PrintKeyValuePairs(pairs []types.KeyValue) {
	if len(pairs) == 0 {
		return
	}
	p.printHeader("KEY-VALUE PAIRS")
	for _, kv := range pairs {
		p.printf("  • %s: %s\n", kv.Key, kv.Value)
	}
}

// PrintTables outputs each table's dimensions and then every cell.
func (p *Printer) PrintTables(tables []types.Table) {
	if len(tables) == 0 {
		return
	}
	p.printHeader("TABLES DETECTED")
	for i, table := range tables {
		p.printf("\n  Table %d (%d rows × %d columns):\n", i+1, table.RowCount, table.ColumnCount)
		p.printf("  %s\n", strings.Repeat("-", tableRuleWidth))
		for _, cell := range table.Cells {
			p.printf("    Row %d, Col %d: %s\n", cell.RowIndex, cell.ColumnIndex, cell.Content)
		}
	}
}

// PrintExtraction outputs contact information, skills and the experience and
// education excerpts.
func (p *Printer) PrintExtraction(data *types.ResumeData) {
	if data == nil {
		return
	}
	p.printHeader("RESUME INFORMATION EXTRACTION")
	p.PrintContact(data.Contact)
	p.PrintSkills(data.Skills)

	p.printSubHeader("EXPERIENCE AND EDUCATION")
	p.printSection("Experience", "experience", data.Section(types.SectionWork))
	p.printSection("Education", "education", data.Section(types.SectionEducation))
}

// PrintContact outputs every contact match by category.
func (p *Printer) PrintContact(contact types.ContactInfo) {
	p.printSubHeader("CONTACT INFORMATION")
	if contact.Empty() {
		p.printf("  No contact information detected\n")
		return
	}
	groups := []struct {
		label  string
		values []string
	}{
		{"Email", contact.Emails},
		{"Phone", contact.Phones},
		{"LinkedIn", contact.LinkedIn},
		{"GitHub", contact.GitHub},
		{"Website", contact.Websites},
	}
	for _, g := range groups {
		for _, v := range g.values {
			p.printf("  %s: %s\n", g.label, v)
		}
	}
}

// PrintSkills outputs one line per non-empty skill category.
func (p *Printer) PrintSkills(skills []types.SkillGroup) {
	p.printSubHeader("SKILLS AND TECHNOLOGIES")
	if len(skills) == 0 {
		p.printf("  No specific technical skills detected\n")
		return
	}
	for _, group := range skills {
		p.printf("  %s: %s\n", group.Label, strings.Join(group.Skills, ", "))
	}
}

func (p *Printer) printSection(label, noun string, section *types.SectionExcerpt) {
	if section == nil {
		p.printf("  No %s section clearly identified\n", noun)
		return
	}
	p.printf("  %s section (around '%s'):\n", label, section.Indicator)
	p.printf("     %s\n", section.Content)
}

// PrintPageText dumps every line of every page in page order.
func (p *Printer) PrintPageText(pages []types.PageText) {
	if len(pages) == 0 {
		return
	}
	p.printHeader("FULL TEXT CONTENT")
	for _, page := range pages {
		p.printSubHeader(fmt.Sprintf("Page %d:", page.PageNumber))
		for _, line := range page.Lines {
			p.printf("  %s\n", line)
		}
		p.printf("\n")
	}
}

// PrintSummary outputs a short box describing a stored analysis.
func (p *Printer) PrintSummary(data *types.ResumeData) {
	if data == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:         %s\n", data.ID))
	sb.WriteString(fmt.Sprintf("File:       %s\n", data.FileName))
	sb.WriteString(fmt.Sprintf("Model:      %s\n", data.ModelID))
	sb.WriteString(fmt.Sprintf("Pages:      %d\n", data.Pages))
	sb.WriteString(fmt.Sprintf("Confidence: %.2f", data.Confidence))
	p.printBox("ANALYSIS SAVED", sb.String())
}

// PrintModels lists model identifiers, one per line.
func (p *Printer) PrintModels(models []docintel.ModelSummary) {
	if len(models) == 0 {
		p.printf("No models available\n")
		return
	}
	p.printf("Available models:\n")
	for _, m := range models {
		if m.Description != "" {
			p.printf("- %s (%s)\n", m.ModelID, m.Description)
			continue
		}
		p.printf("- %s\n", m.ModelID)
	}
}

// PrintHistory outputs stored analyses, newest first as given.
func (p *Printer) PrintHistory(summaries []types.AnalysisSummary) {
	if len(summaries) == 0 {
		p.printf("No stored analyses\n")
		return
	}
	var sb strings.Builder
	for i, s := range summaries {
		sb.WriteString(fmt.Sprintf("%s  %s\n", s.CreatedAt.Format("2006-01-02 15:04"), s.FileName))
		sb.WriteString(fmt.Sprintf("  %s\n", s.ID))
		sb.WriteString(fmt.Sprintf("  model %s, %d pages, confidence %.2f", s.ModelID, s.Pages, s.Confidence))
		if i < len(summaries)-1 {
			sb.WriteString("\n\n")
		}
	}
	p.printBox(fmt.Sprintf("STORED ANALYSES (%d)", len(summaries)), sb.String())
}
