package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-parser/internal/types"
)

const (
	// DefaultListLimit is used when ListAnalyses is called without a limit
	DefaultListLimit = 20
	// MaxListLimit caps a single ListAnalyses page
	MaxListLimit = 100
)

// SaveAnalysis stores data under data.ID, assigning a new ID when it is unset.
// Saving the same ID again replaces the stored result.
func (db *DB) SaveAnalysis(ctx context.Context, data *types.ResumeData) error {
	if data == nil {
		return fmt.Errorf("failed to save analysis: no data")
	}
	if data.ID == uuid.Nil {
		data.ID = uuid.New()
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO resume_analyses (id, file_name, model_id, pages, confidence, result)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET file_name = $2, model_id = $3, pages = $4, confidence = $5, result = $6, created_at = NOW()`,
		data.ID, data.FileName, data.ModelID, data.Pages, data.Confidence, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis %s: %w", data.ID, err)
	}
	return nil
}

// GetAnalysis loads a stored analysis. It returns nil, nil when id is unknown.
func (db *DB) GetAnalysis(ctx context.Context, id uuid.UUID) (*types.ResumeData, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT result FROM resume_analyses WHERE id = $1`,
		id,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}

	var data types.ResumeData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &data, nil
}

// ListAnalyses returns the most recent analyses, newest first.
func (db *DB) ListAnalyses(ctx context.Context, limit int) ([]types.AnalysisSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, file_name, model_id, pages, confidence, created_at
		 FROM resume_analyses
		 ORDER BY created_at DESC
		 LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var summaries []types.AnalysisSummary
	for rows.Next() {
		var s types.AnalysisSummary
		if err := rows.Scan(&s.ID, &s.FileName, &s.ModelID, &s.Pages, &s.Confidence, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return summaries, nil
}

// DeleteAnalysis removes a stored analysis. It reports whether a row was deleted.
func (db *DB) DeleteAnalysis(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM resume_analyses WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete analysis %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
