package metrics

import (
	"context"
	"time"

	"github.com/jonathan/resume-parser/internal/docintel"
	"github.com/jonathan/resume-parser/internal/resume"
)

// InstrumentedAnalyzer records the outcome and duration of every call to the
// wrapped Analyzer.
type InstrumentedAnalyzer struct {
	next    docintel.Analyzer
	metrics *Metrics
}

// InstrumentAnalyzer wraps next so that its calls are recorded in m.
func InstrumentAnalyzer(next docintel.Analyzer, m *Metrics) *InstrumentedAnalyzer {
	return &InstrumentedAnalyzer{next: next, metrics: m}
}

// Analyze calls the wrapped analyzer and records the outcome.
func (a *InstrumentedAnalyzer) Analyze(ctx context.Context, modelID string, document []byte) (*docintel.AnalyzeResult, error) {
	start := time.Now()
	result, err := a.next.Analyze(ctx, modelID, document)

	outcome := "success"
	if err != nil {
		outcome = string(resume.Classify(err))
	}
	a.metrics.RecordAnalysis(outcome, time.Since(start))
	return result, err
}

// ListModels calls the wrapped analyzer and records the status.
func (a *InstrumentedAnalyzer) ListModels(ctx context.Context) ([]docintel.ModelSummary, error) {
	models, err := a.next.ListModels(ctx)
	a.metrics.ModelListings.WithLabelValues(status(err)).Inc()
	return models, err
}
