package observability

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/resume"
	"github.com/stretchr/testify/assert"
)

func TestPrintFailure(t *testing.T) {
	tests := []struct {
		name     string
		failure  *resume.Failure
		contains []string
		absent   []string
	}{
		{
			name: "model not found with listing",
			failure: &resume.Failure{
				Kind:   resume.KindModelNotFound,
				Err:    errors.New("model prebuilt-resume not found"),
				Models: []string{"prebuilt-document", "prebuilt-read"},
			},
			contains: []string{
				"Error: Model not found. This could be due to:",
				"1. The model name is incorrect",
				"Error details: model prebuilt-resume not found",
				"Trying to list available models...",
				"Available models:\n- prebuilt-document\n- prebuilt-read\n",
			},
			absent: []string{"Could not list models"},
		},
		{
			name: "model not found, listing failed",
			failure: &resume.Failure{
				Kind:    resume.KindModelNotFound,
				Err:     errors.New("not found"),
				ListErr: errors.New("forbidden"),
			},
			contains: []string{"Could not list models: forbidden"},
			absent:   []string{"Available models:"},
		},
		{
			name:     "authentication",
			failure:  &resume.Failure{Kind: resume.KindAuthentication, Err: errors.New("access denied")},
			contains: []string{"Authentication error: access denied", "Please check your endpoint and key in the .env file"},
		},
		{
			name:     "file not found",
			failure:  &resume.Failure{Kind: resume.KindFileNotFound, Path: "cv.pdf"},
			contains: []string{"Error: cv.pdf file not found in the current directory"},
		},
		{
			name:     "file not found default name",
			failure:  &resume.Failure{Kind: resume.KindFileNotFound},
			contains: []string{"Error: your_resume.pdf file not found"},
		},
		{
			name: "configuration missing",
			failure: &resume.Failure{
				Kind: resume.KindConfigurationMissing,
				Err:  &config.MissingError{Variables: []string{config.EnvAPIKey}},
			},
			contains: []string{"Error: Missing AZURE_FORM_RECOGNIZER_KEY in .env file"},
		},
		{
			name:     "unclassified",
			failure:  &resume.Failure{Kind: resume.KindUnclassified, Err: errors.New("boom")},
			contains: []string{"Unexpected error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf).PrintFailure(tt.failure)
			output := buf.String()

			for _, want := range tt.contains {
				assert.Contains(t, output, want)
			}
			for _, unwanted := range tt.absent {
				assert.NotContains(t, output, unwanted)
			}
		})
	}
}

func TestPrintFailure_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintFailure(nil)
	assert.Empty(t, buf.String())
}
