package docintel

import (
	"strconv"
	"strings"
)

// Operation statuses reported by the analyze result endpoint.
const (
	StatusNotStarted = "notStarted"
	StatusRunning    = "running"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
)

// AnalyzeOperation is the envelope returned while polling an analyze request.
type AnalyzeOperation struct {
	Status              string         `json:"status"`
	CreatedDateTime     string         `json:"createdDateTime,omitempty"`
	LastUpdatedDateTime string         `json:"lastUpdatedDateTime,omitempty"`
	Error               *ServiceError  `json:"error,omitempty"`
	AnalyzeResult       *AnalyzeResult `json:"analyzeResult,omitempty"`
}

// AnalyzeResult is the structured output of a document analysis.
type AnalyzeResult struct {
	APIVersion    string         `json:"apiVersion"`
	ModelID       string         `json:"modelId"`
	Content       string         `json:"content"`
	Pages         []Page         `json:"pages"`
	Tables        []Table        `json:"tables,omitempty"`
	KeyValuePairs []KeyValuePair `json:"keyValuePairs,omitempty"`
	Documents     []Document     `json:"documents,omitempty"`
}

// Page is one analyzed page with its text lines in reading order.
type Page struct {
	PageNumber int     `json:"pageNumber"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	Lines      []Line  `json:"lines,omitempty"`
}

// Line is a line of text recognized on a page.
type Line struct {
	Content string `json:"content"`
}

// Table is a recognized table.
type Table struct {
	RowCount    int         `json:"rowCount"`
	ColumnCount int         `json:"columnCount"`
	Cells       []TableCell `json:"cells"`
}

// TableCell is a single cell addressed by row and column index.
type TableCell struct {
	Kind        string `json:"kind,omitempty"`
	RowIndex    int    `json:"rowIndex"`
	ColumnIndex int    `json:"columnIndex"`
	RowSpan     int    `json:"rowSpan,omitempty"`
	ColumnSpan  int    `json:"columnSpan,omitempty"`
	Content     string `json:"content"`
}

// KeyValuePair is a key/value association detected in the document.
// Either side may be absent.
type KeyValuePair struct {
	Key        *DocumentElement `json:"key,omitempty"`
	Value      *DocumentElement `json:"value,omitempty"`
	Confidence float64          `json:"confidence"`
}

// DocumentElement carries the text content of a key or value.
type DocumentElement struct {
	Content string `json:"content"`
}

// Document is a logical document extracted by the model.
type Document struct {
	DocType    string                    `json:"docType"`
	Confidence float64                   `json:"confidence"`
	Fields     map[string]*DocumentField `json:"fields,omitempty"`
}

// DocumentField is a typed field value with its confidence.
type DocumentField struct {
	Type             string   `json:"type,omitempty"`
	Content          string   `json:"content,omitempty"`
	Confidence       float64  `json:"confidence"`
	ValueString      *string  `json:"valueString,omitempty"`
	ValueNumber      *float64 `json:"valueNumber,omitempty"`
	ValueInteger     *int64   `json:"valueInteger,omitempty"`
	ValueDate        *string  `json:"valueDate,omitempty"`
	ValueTime        *string  `json:"valueTime,omitempty"`
	ValuePhoneNumber *string  `json:"valuePhoneNumber,omitempty"`
	ValueBoolean     *bool    `json:"valueBoolean,omitempty"`
	ValueCountry     *string  `json:"valueCountryRegion,omitempty"`
}

// Value renders the typed value of the field, falling back to its raw content.
func (f *DocumentField) Value() string {
	if f == nil {
		return ""
	}
	switch {
	case f.ValueString != nil:
		return *f.ValueString
	case f.ValueNumber != nil:
		return strconv.FormatFloat(*f.ValueNumber, 'f', -1, 64)
	case f.ValueInteger != nil:
		return strconv.FormatInt(*f.ValueInteger, 10)
	case f.ValueDate != nil:
		return *f.ValueDate
	case f.ValueTime != nil:
		return *f.ValueTime
	case f.ValuePhoneNumber != nil:
		return *f.ValuePhoneNumber
	case f.ValueBoolean != nil:
		return strconv.FormatBool(*f.ValueBoolean)
	case f.ValueCountry != nil:
		return *f.ValueCountry
	}
	return f.Content
}

// ModelSummary describes a model available to the resource.
type ModelSummary struct {
	ModelID         string `json:"modelId"`
	Description     string `json:"description,omitempty"`
	CreatedDateTime string `json:"createdDateTime,omitempty"`
}

type modelList struct {
	Value    []ModelSummary `json:"value"`
	NextLink string         `json:"nextLink,omitempty"`
}

// FlattenText joins the content of every line of every page, in page order and
// then line order, each followed by a single space.
func FlattenText(result *AnalyzeResult) string {
	if result == nil {
		return ""
	}
	var sb strings.Builder
	for _, page := range result.Pages {
		for _, line := range page.Lines {
			sb.WriteString(line.Content)
			sb.WriteString(" ")
		}
	}
	return sb.String()
}
