package resume

import "fmt"

// FileError represents a failure reading the input document
type FileError struct {
	Path  string
	Cause error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to read resume %s: %v", e.Path, e.Cause)
}

func (e *FileError) Unwrap() error {
	return e.Cause
}

// AnalysisError represents a failure of the remote document analysis
type AnalysisError struct {
	FileName string
	ModelID  string
	Cause    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis of %s with model %s failed: %v", e.FileName, e.ModelID, e.Cause)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}
