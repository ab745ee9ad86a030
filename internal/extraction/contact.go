// Package extraction derives contact details, skills and section excerpts from
// the flattened text of an analyzed resume. Every function here is pure.
package extraction

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-parser/internal/types"
)

var (
	emailPattern    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern    = regexp.MustCompile(`(\+?1?[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})`)
	linkedinPattern = regexp.MustCompile(`(?i)(?:linkedin\.com|linkedin\.com/in/)[^\s]+`)
	githubPattern   = regexp.MustCompile(`(?i)(?:github\.com/)[^\s]+`)
	websitePattern  = regexp.MustCompile(`(?:https?://)?(?:www\.)?[a-zA-Z0-9-]+\.(?:com|org|net|io|co|me)[^\s]*`)
)

// ExtractContacts runs the five contact searches over text. Each category keeps
// every match in left-to-right order without deduplication.
func ExtractContacts(text string) types.ContactInfo {
	info := types.ContactInfo{
		Emails:   emailPattern.FindAllString(text, -1),
		Phones:   extractPhones(text),
		LinkedIn: linkedinPattern.FindAllString(text, -1),
		GitHub:   githubPattern.FindAllString(text, -1),
		Websites: extractWebsites(text),
	}
	return info
}

// extractPhones returns the concatenated capture groups of each phone match.
// A match counts when the country marker or area code group is non-empty and
// it is not carved out of a longer digit run (an order or ID number).
func extractPhones(text string) []string {
	var phones []string
	for _, m := range phonePattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if isDigitAt(text, start-1) || isDigitAt(text, end) {
			continue
		}

		groups := make([]string, 4)
		for g := 1; g <= 4; g++ {
			if m[2*g] >= 0 {
				groups[g-1] = text[m[2*g]:m[2*g+1]]
			}
		}
		if groups[0] == "" && groups[1] == "" {
			continue
		}

		phone := strings.TrimSpace(strings.Join(groups, ""))
		phones = append(phones, phone)
	}
	return phones
}

func extractWebsites(text string) []string {
	var sites []string
	for _, site := range websitePattern.FindAllString(text, -1) {
		lower := strings.ToLower(site)
		if strings.Contains(lower, "linkedin.com") || strings.Contains(lower, "github.com") {
			continue
		}
		sites = append(sites, site)
	}
	return sites
}

func isDigitAt(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	return s[i] >= '0' && s[i] <= '9'
}
