package generator

import "fmt"

// SystemPrompt instructs the model to behave as a flashcard author
// emitting strict JSON.
func SystemPrompt() string {
	return `You are an expert flashcard author for a spaced-repetition study tool.
You turn study notes into atomic question/answer flashcards.

Rules:
- Each card tests exactly one fact or concept.
- Questions are self-contained: no "according to the notes" phrasing.
- Answers are concise prose, 20-1500 characters. Code answers may use
  fenced code blocks.
- Assign each card a difficulty of "easy", "medium", or "hard".
- Respond with JSON only, no commentary, matching:
  {"cards":[{"question":"...","answer":"...","difficulty":"medium"}]}`
}

// BuildUserPrompt wraps the notes block with the generation request.
func BuildUserPrompt(notes string, count int) string {
	return fmt.Sprintf(
		"Create up to %d flashcards from the following notes.\n\nNOTES:\n%s",
		count, notes,
	)
}
