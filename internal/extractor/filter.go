package extractor

import (
	"regexp"
	"strings"

	"github.com/flashnotes/backend/internal/models"
)

const (
	minQuestionLen = 5
	maxQuestionLen = 500
	// Answers whose non-blank lines are more than this fraction list
	// items are list markup, not prose.
	maxListLineRatio = 0.8
)

var (
	bareHeadingRe  = regexp.MustCompile(`^#{1,6}\s*$`)
	bareListRe     = regexp.MustCompile(`^\s*[-*+]\s*$`)
	nonAlphanumRe  = regexp.MustCompile(`[^a-z0-9]+`)
	listMarkerRe   = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s`)
	navigationOnly = []string{
		"table of contents",
		"back to top",
		"back to index",
		"home",
		"next",
		"previous",
		"navigation",
	}
)

// Validate applies the shared validity filter to a candidate before it may
// be surfaced or stored. Failures are extraction skips, not errors.
func Validate(c models.CandidateCard) bool {
	q := strings.TrimSpace(c.Question)
	a := strings.TrimSpace(c.Answer)

	if len(q) < minQuestionLen || len(q) > maxQuestionLen {
		return false
	}
	if len(a) < minAnswerLen || len(a) > maxAnswerLen {
		return false
	}
	if isBoilerplate(q) || isBoilerplate(a) {
		return false
	}
	if mostlyListMarkup(a) {
		return false
	}
	return true
}

// isBoilerplate rejects structural text: pure navigation phrases, bare
// heading or list markers, and dangling fenced-code markers.
func isBoilerplate(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, nav := range navigationOnly {
		if lower == nav {
			return true
		}
	}
	if bareHeadingRe.MatchString(s) || bareListRe.MatchString(s) {
		return true
	}
	if strings.Count(s, "```")%2 != 0 {
		return true
	}
	return false
}

func mostlyListMarkup(answer string) bool {
	var nonBlank, listLines int
	for _, line := range strings.Split(answer, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonBlank++
		if listMarkerRe.MatchString(line) {
			listLines++
		}
	}
	if nonBlank == 0 {
		return true
	}
	return float64(listLines)/float64(nonBlank) > maxListLineRatio
}

// NormalizeQuestion lower-cases a question and strips everything that is
// not alphanumeric, producing the deduplication key.
func NormalizeQuestion(q string) string {
	return nonAlphanumRe.ReplaceAllString(strings.ToLower(q), "")
}

// Deduplicate keeps the first candidate per normalized question.
func Deduplicate(candidates []models.CandidateCard) []models.CandidateCard {
	seen := make(map[string]bool, len(candidates))
	out := make([]models.CandidateCard, 0, len(candidates))
	for _, c := range candidates {
		key := NormalizeQuestion(c.Question)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
