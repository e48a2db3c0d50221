package models

import "time"

type CardOrigin string

const (
	OriginHeuristicHeading    CardOrigin = "heuristic-heading"
	OriginHeuristicDefinition CardOrigin = "heuristic-definition"
	OriginHeuristicList       CardOrigin = "heuristic-list"
	OriginHeuristicCode       CardOrigin = "heuristic-code"
	OriginManual              CardOrigin = "manual"
	OriginImported            CardOrigin = "imported"
	OriginGenerated           CardOrigin = "generated-externally"
)

var ValidOrigins = map[CardOrigin]bool{
	OriginHeuristicHeading:    true,
	OriginHeuristicDefinition: true,
	OriginHeuristicList:       true,
	OriginHeuristicCode:       true,
	OriginManual:              true,
	OriginImported:            true,
	OriginGenerated:           true,
}

type DifficultyHint string

const (
	HintEasy   DifficultyHint = "easy"
	HintMedium DifficultyHint = "medium"
	HintHard   DifficultyHint = "hard"
)

var ValidHints = map[DifficultyHint]bool{
	HintEasy:   true,
	HintMedium: true,
	HintHard:   true,
}

// Confidence bounds (0=Unknown … 5=Mastered).
const (
	MinConfidence = 0
	MaxConfidence = 5
)

// MinEasinessFactor is the floor the easiness factor can never fall below.
const MinEasinessFactor = 1.3

// InitialEasinessFactor is assigned to every new card.
const InitialEasinessFactor = 2.5

// Flashcard is a reviewable question/answer unit plus its scheduling state.
// The card store owns the persisted value; sessions hold only card IDs.
type Flashcard struct {
	ID                string          `json:"id"`
	Question          string          `json:"question"`
	Answer            string          `json:"answer"`
	Origin            CardOrigin      `json:"origin"`
	DifficultyHint    *DifficultyHint `json:"difficulty_hint,omitempty"`
	Confidence        int             `json:"confidence"`
	EasinessFactor    float64         `json:"easiness_factor"`
	IntervalDays      float64         `json:"interval_days"`
	Repetitions       int             `json:"repetitions"`
	LearningStepIndex int             `json:"learning_step_index"`
	IsNew             bool            `json:"is_new"`
	NextReviewAt      time.Time       `json:"next_review_at"`
	ReviewCount       int             `json:"review_count"`
	CorrectCount      int             `json:"correct_count"`
	CreatedAt         time.Time       `json:"created_at"`
	LastReviewedAt    *time.Time      `json:"last_reviewed_at,omitempty"`
}

// IsDue reports whether the card should be shown at the given time.
func (c Flashcard) IsDue(now time.Time) bool {
	return !now.Before(c.NextReviewAt)
}

// CandidateCard is a card proposal from the extractor or an external
// generator, before validity filtering and acceptance into the store.
type CandidateCard struct {
	Question       string          `json:"question"`
	Answer         string          `json:"answer"`
	Origin         CardOrigin      `json:"origin"`
	DifficultyHint *DifficultyHint `json:"difficulty_hint,omitempty"`
}

// ExportFormatVersion identifies the portable backup record layout.
const ExportFormatVersion = 1

// ExportRecord is the portable serialization of one topic's deck.
type ExportRecord struct {
	TopicID       string      `json:"topic_id"`
	Cards         []Flashcard `json:"cards"`
	ExportedAt    time.Time   `json:"exported_at"`
	FormatVersion int         `json:"format_version"`
}
