// Package extractor mines candidate flashcards out of loosely structured
// markdown notes. Extraction is best-effort: candidates that fail the
// validity filter are silently dropped, never surfaced as errors.
package extractor

import (
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/flashnotes/backend/internal/models"
)

// Answer and code-body length windows for candidate mining.
const (
	minAnswerLen   = 20
	maxAnswerLen   = 1500
	minCodeBodyLen = 10
	maxCodeBodyLen = 1000
	lookbackLines  = 15
	minProseLen    = 15
)

var (
	cardHeadingRe = regexp.MustCompile(`^(#{2,3})\s+(.+?)\s*$`)
	anyHeadingRe  = regexp.MustCompile(`^#{1,6}\s+\S`)
	fenceRe       = regexp.MustCompile("^\\s*```")
	listItemRe    = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s+(.*)$`)
	boldLedRe     = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s+\*\*(.+?)\*\*\s*[:\-–—]?\s*(.*)$`)
	boldDefRe     = regexp.MustCompile(`^\*\*(.+?)\*\*\s*:\s*(.+)$`)
	toForRe       = regexp.MustCompile(`(?i)\b(?:to|for)\s+([a-z][a-z0-9][a-z0-9 _/\-]{2,58}[a-z0-9])`)
)

// Extractor converts a block of structured prose into candidate cards.
// The random source only influences template wording (comparison
// questions); inject a seeded *rand.Rand for reproducible output.
type Extractor struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Extractor {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Extractor{rng: rng}
}

// Extract runs the heading, bold-definition, list-item, and code-block
// passes in order, filters out invalid candidates, and deduplicates by
// normalized question, keeping the first occurrence.
func (e *Extractor) Extract(source string) []models.CandidateCard {
	lines := strings.Split(source, "\n")

	var candidates []models.CandidateCard
	candidates = append(candidates, e.extractHeadingBlocks(lines)...)
	candidates = append(candidates, e.extractBoldDefinitions(lines)...)
	candidates = append(candidates, e.extractListItems(lines)...)
	candidates = append(candidates, e.extractCodeBlocks(lines)...)

	valid := candidates[:0]
	for _, c := range candidates {
		if Validate(c) {
			valid = append(valid, c)
		}
	}
	return Deduplicate(valid)
}

// ── Heading blocks ──────────────────────────────────────

func (e *Extractor) extractHeadingBlocks(lines []string) []models.CandidateCard {
	var out []models.CandidateCard

	for i, line := range lines {
		m := cardHeadingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		title := m[2]
		if isStructuralHeading(title) {
			continue
		}

		block := blockAfter(lines, i+1)
		paragraphs := splitParagraphs(block)
		if len(paragraphs) == 0 {
			continue
		}

		answer := paragraphs[0]
		if len(answer) < minAnswerLen && len(paragraphs) > 1 {
			// First paragraph too short on its own; fold the rest in.
			answer = strings.Join(paragraphs, "\n\n")
		}

		out = append(out, models.CandidateCard{
			Question: questionFromHeading(title, e.rng),
			Answer:   answer,
			Origin:   models.OriginHeuristicHeading,
		})
	}
	return out
}

// blockAfter collects lines from start up to the next heading.
func blockAfter(lines []string, start int) []string {
	var block []string
	for _, line := range lines[start:] {
		if anyHeadingRe.MatchString(line) {
			break
		}
		block = append(block, line)
	}
	return block
}

func splitParagraphs(block []string) []string {
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.TrimSpace(strings.Join(current, "\n")))
			current = nil
		}
	}
	for _, line := range block {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return paragraphs
}

// ── Bold definitions ────────────────────────────────────

func (e *Extractor) extractBoldDefinitions(lines []string) []models.CandidateCard {
	var out []models.CandidateCard
	for _, line := range lines {
		if listItemRe.MatchString(line) {
			continue // list pass owns bold-led items
		}
		m := boldDefRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		term, explanation := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if term == "" || len(explanation) < minAnswerLen {
			continue
		}
		out = append(out, models.CandidateCard{
			Question: "What is " + term + "?",
			Answer:   explanation,
			Origin:   models.OriginHeuristicDefinition,
		})
	}
	return out
}

// ── List items ──────────────────────────────────────────

func (e *Extractor) extractListItems(lines []string) []models.CandidateCard {
	var out []models.CandidateCard
	ctx := ctxGeneric

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if m := cardHeadingRe.FindStringSubmatch(line); m != nil {
			ctx = classifyListContext(m[2])
			continue
		}
		if anyHeadingRe.MatchString(line) {
			ctx = ctxGeneric
			continue
		}

		m := boldLedRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		term := strings.TrimSpace(m[1])
		if term == "" {
			continue
		}

		parts := []string{strings.TrimSpace(m[2])}
		// Continuation lines fold into the answer until the next list
		// item or heading.
		for j := i + 1; j < len(lines); j++ {
			next := lines[j]
			if anyHeadingRe.MatchString(next) || listItemRe.MatchString(next) {
				break
			}
			if trimmed := strings.TrimSpace(next); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}

		out = append(out, models.CandidateCard{
			Question: listQuestion(ctx, term),
			Answer:   strings.TrimSpace(strings.Join(parts, " ")),
			Origin:   models.OriginHeuristicList,
		})
	}
	return out
}

// ── Code blocks ─────────────────────────────────────────

func (e *Extractor) extractCodeBlocks(lines []string) []models.CandidateCard {
	var out []models.CandidateCard

	for i := 0; i < len(lines); i++ {
		if !fenceRe.MatchString(lines[i]) {
			continue
		}
		open := i
		closing := -1
		for j := open + 1; j < len(lines); j++ {
			if fenceRe.MatchString(lines[j]) {
				closing = j
				break
			}
		}
		if closing < 0 {
			break // dangling fence, nothing more to mine
		}
		i = closing

		body := strings.Join(lines[open+1:closing], "\n")
		if len(body) < minCodeBodyLen || len(body) > maxCodeBodyLen {
			continue
		}

		question, ok := e.questionForCode(lines, open)
		if !ok {
			continue
		}

		answer := strings.Join(lines[open:closing+1], "\n")
		out = append(out, models.CandidateCard{
			Question: question,
			Answer:   answer,
			Origin:   models.OriginHeuristicCode,
		})
	}
	return out
}

// questionForCode derives a question from the context above a code block:
// the nearest heading within the lookback window wins, else the nearest
// substantial prose line is mined for a "to/for <phrase>" or action verb.
func (e *Extractor) questionForCode(lines []string, fenceIdx int) (string, bool) {
	limit := fenceIdx - lookbackLines
	if limit < 0 {
		limit = 0
	}

	var prose string
	for j := fenceIdx - 1; j >= limit; j-- {
		line := lines[j]
		if m := cardHeadingRe.FindStringSubmatch(line); m != nil {
			title := m[2]
			if containsAny(strings.ToLower(title), antiPatternMarkers...) {
				return "What problem does this code demonstrate?", true
			}
			if strings.HasSuffix(title, "?") {
				return title, true
			}
			return "How do you implement " + stripLeadIns(title) + "?", true
		}
		trimmed := strings.TrimSpace(line)
		if prose == "" && len(trimmed) > minProseLen && !fenceRe.MatchString(line) && !anyHeadingRe.MatchString(line) {
			prose = trimmed
		}
	}

	if prose == "" {
		return "", false
	}
	return questionFromProse(prose)
}

func questionFromProse(line string) (string, bool) {
	if m := toForRe.FindStringSubmatch(line); m != nil {
		phrase := strings.ToLower(strings.TrimSpace(m[1]))
		return "How do you " + phrase + "?", true
	}

	trimmed := strings.TrimRight(strings.TrimSpace(line), ".:;,")
	words := strings.Fields(strings.ToLower(trimmed))
	if len(words) < 2 {
		return "", false
	}
	for _, verb := range actionVerbs {
		if words[0] == verb {
			base := strings.TrimSuffix(verb, "s")
			phrase := base + " " + strings.Join(words[1:], " ")
			return "How do you " + phrase + "?", true
		}
	}
	return "", false
}
