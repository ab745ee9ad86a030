package resume

import (
	"context"
	"errors"
	"io/fs"

	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/docintel"
)

// Kind classifies a failed run for reporting.
type Kind string

const (
	KindConfigurationMissing Kind = "configuration_missing"
	KindModelNotFound        Kind = "model_not_found"
	KindAuthentication       Kind = "authentication"
	KindFileNotFound         Kind = "file_not_found"
	KindUnclassified         Kind = "unclassified"
)

// Classify maps err onto the failure kind that decides its diagnostic.
func Classify(err error) Kind {
	var missing *config.MissingError
	switch {
	case errors.As(err, &missing):
		return KindConfigurationMissing
	case errors.Is(err, fs.ErrNotExist):
		return KindFileNotFound
	case docintel.IsNotFound(err):
		return KindModelNotFound
	case docintel.IsAuthentication(err):
		return KindAuthentication
	default:
		return KindUnclassified
	}
}

// Failure is a classified error plus whatever recovery information could be
// gathered for it.
type Failure struct {
	Kind Kind
	Err  error
	// Path is the missing input file for KindFileNotFound.
	Path string
	// Models lists the available model ids after a KindModelNotFound failure.
	Models []string
	// ListErr is set when listing models was attempted and failed.
	ListErr error
}

// HandleFailure classifies err. For a missing model it makes one attempt to
// list the models available to the resource; a listing failure is recorded,
// not returned.
func HandleFailure(ctx context.Context, analyzer docintel.Analyzer, err error) *Failure {
	if err == nil {
		return nil
	}
	f := &Failure{Kind: Classify(err), Err: err}

	switch f.Kind {
	case KindFileNotFound:
		var fileErr *FileError
		if errors.As(err, &fileErr) {
			f.Path = fileErr.Path
		}
	case KindModelNotFound:
		if analyzer == nil {
			f.ListErr = errors.New("no analyzer available")
			return f
		}
		models, listErr := analyzer.ListModels(ctx)
		if listErr != nil {
			f.ListErr = listErr
			return f
		}
		f.Models = make([]string, 0, len(models))
		for _, m := range models {
			f.Models = append(f.Models, m.ModelID)
		}
	}
	return f
}
