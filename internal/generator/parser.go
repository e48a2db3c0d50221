package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flashnotes/backend/internal/models"
)

// GeneratedBatch is the parsed model output.
type GeneratedBatch struct {
	Cards []GeneratedCard `json:"cards"`
}

type GeneratedCard struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseResponse strips markdown fences, unmarshals the batch, and checks
// its shape. Per-card length and boilerplate rules are applied later by
// the store's candidate filter; this only rejects responses the engine
// cannot work with at all.
func ParseResponse(responseBody string) (*GeneratedBatch, error) {
	cleaned := stripCodeFences(responseBody)

	var batch GeneratedBatch
	if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateBatch(&batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

var validDifficulties = map[string]bool{"": true, "easy": true, "medium": true, "hard": true}

func validateBatch(batch *GeneratedBatch) error {
	var errs []string

	if len(batch.Cards) == 0 {
		return &ValidationError{Errors: []string{"no cards in batch"}}
	}

	for i, c := range batch.Cards {
		num := i + 1
		if strings.TrimSpace(c.Question) == "" {
			errs = append(errs, fmt.Sprintf("card %d: empty question", num))
		}
		if strings.TrimSpace(c.Answer) == "" {
			errs = append(errs, fmt.Sprintf("card %d: empty answer", num))
		}
		if !validDifficulties[c.Difficulty] {
			errs = append(errs, fmt.Sprintf("card %d: invalid difficulty %q", num, c.Difficulty))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Candidates converts the batch into candidate cards carrying the
// generated-externally origin and the model's difficulty hint.
func (b *GeneratedBatch) Candidates() []models.CandidateCard {
	out := make([]models.CandidateCard, 0, len(b.Cards))
	for _, c := range b.Cards {
		cand := models.CandidateCard{
			Question: strings.TrimSpace(c.Question),
			Answer:   strings.TrimSpace(c.Answer),
			Origin:   models.OriginGenerated,
		}
		if hint := models.DifficultyHint(c.Difficulty); models.ValidHints[hint] {
			cand.DifficultyHint = &hint
		}
		out = append(out, cand)
	}
	return out
}
