package generator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/flashnotes/backend/internal/models"
)

func validBatchJSON(count int) string {
	batch := GeneratedBatch{Cards: make([]GeneratedCard, count)}
	for i := 0; i < count; i++ {
		batch.Cards[i] = GeneratedCard{
			Question:   "What does defer do in Go?",
			Answer:     "It schedules a function call to run when the surrounding function returns, in last-in-first-out order.",
			Difficulty: "medium",
		}
	}
	data, _ := json.Marshal(batch)
	return string(data)
}

func TestParseResponse_ValidJSON(t *testing.T) {
	batch, err := ParseResponse(validBatchJSON(3))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(batch.Cards) != 3 {
		t.Errorf("expected 3 cards, got %d", len(batch.Cards))
	}
}

func TestParseResponse_MarkdownFences(t *testing.T) {
	input := "```json\n" + validBatchJSON(2) + "\n```"

	batch, err := ParseResponse(input)
	if err != nil {
		t.Fatalf("expected no error with markdown fences, got: %v", err)
	}
	if len(batch.Cards) != 2 {
		t.Errorf("expected 2 cards, got %d", len(batch.Cards))
	}
}

func TestParseResponse_MalformedJSON(t *testing.T) {
	_, err := ParseResponse("this is not json at all")
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		t.Fatal("expected parse error, not ValidationError")
	}
}

func TestParseResponse_EmptyBatch(t *testing.T) {
	_, err := ParseResponse(`{"cards":[]}`)
	if err == nil {
		t.Fatal("expected error for empty batch")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestParseResponse_EmptyFields(t *testing.T) {
	input := `{"cards":[{"question":"","answer":"something long enough here","difficulty":"easy"}]}`

	_, err := ParseResponse(input)
	if err == nil {
		t.Fatal("expected validation error for empty question")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if !strings.Contains(ve.Errors[0], "empty question") {
		t.Errorf("unexpected errors: %v", ve.Errors)
	}
}

func TestParseResponse_InvalidDifficulty(t *testing.T) {
	input := `{"cards":[{"question":"What is x?","answer":"an answer of sufficient length","difficulty":"brutal"}]}`

	_, err := ParseResponse(input)
	if err == nil {
		t.Fatal("expected validation error for invalid difficulty")
	}
}

func TestCandidates_CarryOriginAndHint(t *testing.T) {
	batch, err := ParseResponse(validBatchJSON(1))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}

	cands := batch.Candidates()
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	c := cands[0]
	if c.Origin != models.OriginGenerated {
		t.Errorf("origin = %q, want %q", c.Origin, models.OriginGenerated)
	}
	if c.DifficultyHint == nil || *c.DifficultyHint != models.HintMedium {
		t.Errorf("difficulty hint = %v, want medium", c.DifficultyHint)
	}
}

func TestCandidates_MissingDifficultyIsNilHint(t *testing.T) {
	batch, err := ParseResponse(`{"cards":[{"question":"What is x?","answer":"an answer of sufficient length"}]}`)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if hint := batch.Candidates()[0].DifficultyHint; hint != nil {
		t.Errorf("difficulty hint = %v, want nil", hint)
	}
}

func TestMockClient_ProducesParseableBatch(t *testing.T) {
	resp, err := NewMockClient().Generate(context.Background(), SystemPrompt(), BuildUserPrompt("notes", 3))
	if err != nil {
		t.Fatalf("mock Generate: %v", err)
	}
	batch, err := ParseResponse(resp.Content)
	if err != nil {
		t.Fatalf("mock output must parse: %v", err)
	}
	if len(batch.Cards) == 0 {
		t.Error("mock batch is empty")
	}
}
