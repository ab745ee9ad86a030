package observability

import (
	"errors"
	"strings"

	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/resume"
)

// PrintFailure outputs the diagnostic for a classified failure.
func (p *Printer) PrintFailure(f *resume.Failure) {
	if f == nil {
		return
	}

	switch f.Kind {
	case resume.KindConfigurationMissing:
		names := []string{config.EnvEndpoint, config.EnvAPIKey}
		var missing *config.MissingError
		if errors.As(f.Err, &missing) && len(missing.Variables) > 0 {
			names = missing.Variables
		}
		p.printf("Error: Missing %s in .env file\n", strings.Join(names, " or "))

	case resume.KindModelNotFound:
		p.printf("Error: Model not found. This could be due to:\n")
		p.printf("1. The model name is incorrect\n")
		p.printf("2. The model is not available in your Azure region\n")
		p.printf("3. Your service tier doesn't support this model\n")
		p.printf("\nError details: %v\n", f.Err)
		p.printf("\nTrying to list available models...\n")
		if f.ListErr != nil {
			p.printf("Could not list models: %v\n", f.ListErr)
			return
		}
		p.printf("Available models:\n")
		for _, id := range f.Models {
			p.printf("- %s\n", id)
		}

	case resume.KindAuthentication:
		p.printf("Authentication error: %v\n", f.Err)
		p.printf("Please check your endpoint and key in the .env file\n")

	case resume.KindFileNotFound:
		path := f.Path
		if path == "" {
			path = config.DefaultFile
		}
		p.printf("Error: %s file not found in the current directory\n", path)

	default:
		p.printf("Unexpected error: %v\n", f.Err)
	}
}
