package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-parser/internal/types"
)

// MatchMode controls how a catalog keyword is matched against resume text.
type MatchMode int

const (
	// MatchSubstring accepts a keyword anywhere in the text, including inside
	// larger words ("go" in "going").
	MatchSubstring MatchMode = iota
	// MatchWordBoundary requires the keyword not to be flanked by letters or digits.
	MatchWordBoundary
)

// SkillCategory is one named group of keywords in a catalog.
type SkillCategory struct {
	Key      string
	Label    string
	Keywords []string
}

// Catalog is an ordered list of skill categories.
type Catalog []SkillCategory

// DefaultCatalog is the built-in technology keyword catalog.
var DefaultCatalog = Catalog{
	{Key: "languages", Label: "Languages", Keywords: []string{
		"python", "java", "javascript", "typescript", "c++", "c#", "php", "ruby", "go", "rust", "swift", "kotlin", "scala",
	}},
	{Key: "frameworks", Label: "Frameworks", Keywords: []string{
		"react", "angular", "vue", "node.js", "express", "django", "flask", "spring", ".net",
	}},
	{Key: "databases", Label: "Databases", Keywords: []string{
		"sql", "mysql", "postgresql", "mongodb", "redis",
	}},
	{Key: "tools", Label: "Tools", Keywords: []string{
		"docker", "kubernetes", "git", "github",
	}},
	{Key: "cloud", Label: "Cloud", Keywords: []string{
		"aws", "azure", "gcp",
	}},
	{Key: "ml_ai", Label: "ML/AI", Keywords: []string{
		"machine learning", "ai", "tensorflow", "pytorch", "scikit-learn", "pandas", "numpy",
	}},
	{Key: "web", Label: "Web", Keywords: []string{
		"html", "css", "bootstrap", "tailwind",
	}},
}

// DetectSkills returns the catalog categories with at least one keyword found
// in text, in catalog order. Matching is case-insensitive.
func DetectSkills(text string, catalog Catalog, mode MatchMode) []types.SkillGroup {
	lower := strings.ToLower(text)

	var groups []types.SkillGroup
	for _, category := range catalog {
		var found []string
		for _, keyword := range category.Keywords {
			if containsKeyword(lower, strings.ToLower(keyword), mode) {
				found = append(found, keyword)
			}
		}
		if len(found) == 0 {
			continue
		}
		groups = append(groups, types.SkillGroup{
			Category: category.Key,
			Label:    category.Label,
			Skills:   found,
		})
	}
	return groups
}

// Keywords returns every keyword of the catalog in category order.
func (c Catalog) Keywords() []string {
	var all []string
	for _, category := range c {
		all = append(all, category.Keywords...)
	}
	return all
}

func containsKeyword(text, keyword string, mode MatchMode) bool {
	if keyword == "" {
		return false
	}
	if mode == MatchSubstring {
		return strings.Contains(text, keyword)
	}

	offset := 0
	for {
		idx := strings.Index(text[offset:], keyword)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(keyword)
		if boundaryBefore(text, start, keyword) && boundaryAfter(text, end, keyword) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

// boundaryBefore reports whether the keyword at start is not glued to a
// preceding word character. Keywords that begin with punctuation (".net")
// carry their own boundary.
func boundaryBefore(text string, start int, keyword string) bool {
	first, _ := utf8.DecodeRuneInString(keyword)
	if !isWordRune(first) || start == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:start])
	return !isWordRune(prev)
}

func boundaryAfter(text string, end int, keyword string) bool {
	last, _ := utf8.DecodeLastRuneInString(keyword)
	if !isWordRune(last) || end >= len(text) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(next)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
