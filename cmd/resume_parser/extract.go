package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/resume"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract resume information from a plain text file",
	Long: "Run the contact, skill and section extraction over a plain text file without calling the " +
		"analysis service.",
	RunE: runExtract,
}

var (
	extractFile         string
	extractStrictSkills bool
	extractJSON         bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "Plain text file to extract from (required)")
	extractCmd.Flags().BoolVar(&extractStrictSkills, "strict-skills", false, "Match skill keywords on word boundaries only")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "Print the extraction as JSON")
	_ = extractCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	text, err := os.ReadFile(extractFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	data := resume.Analyze(string(text), resume.Options{SkillMatch: skillMatch(extractStrictSkills)})
	data.FileName = filepath.Base(extractFile)

	if extractJSON {
		return writeJSON(cmd.OutOrStdout(), data)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintExtraction(data)
	return nil
}
