package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-parser/internal/types"
)

const (
	// excerptBefore is the number of characters kept before the indicator
	excerptBefore = 100
	// excerptAfter is the number of characters kept from the indicator onward
	excerptAfter = 200
)

// ExperienceIndicators are checked in priority order to approximate the work section.
var ExperienceIndicators = []string{"experience", "work history", "employment", "job", "position", "role"}

// EducationIndicators are checked in priority order to approximate the education section.
var EducationIndicators = []string{"education", "degree", "university", "college", "bachelor", "master", "phd"}

// LocateSection finds the first indicator (in list order, not text order) that
// occurs in text and returns the window around its first occurrence.
// It returns nil when no indicator occurs.
func LocateSection(text string, kind types.SectionKind, indicators []string) *types.SectionExcerpt {
	runes := []rune(text)
	lowered := lowerRunes(runes)
	lowerText := string(lowered)

	for _, indicator := range indicators {
		needle := string(lowerRunes([]rune(indicator)))
		if needle == "" {
			continue
		}
		byteIdx := strings.Index(lowerText, needle)
		if byteIdx < 0 {
			continue
		}

		// Per-rune lowering keeps rune positions aligned with the original text.
		offset := utf8.RuneCountInString(lowerText[:byteIdx])
		start := max(0, offset-excerptBefore)
		end := min(len(runes), offset+excerptAfter)

		return &types.SectionExcerpt{
			Kind:      kind,
			Indicator: indicator,
			Offset:    offset,
			Content:   strings.TrimSpace(string(runes[start:end])),
		}
	}
	return nil
}

// LocateExperience locates the experience section with ExperienceIndicators.
func LocateExperience(text string) *types.SectionExcerpt {
	return LocateSection(text, types.SectionWork, ExperienceIndicators)
}

// LocateEducation locates the education section with EducationIndicators.
func LocateEducation(text string) *types.SectionExcerpt {
	return LocateSection(text, types.SectionEducation, EducationIndicators)
}

func lowerRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}
