// Package session drives bounded study sessions: a fixed deck of card ids
// stepped through present → reveal → score, with statistics collected
// along the way. Sessions are ephemeral and hold only ids into the card
// store; every scoring action writes back through the store immediately.
package session

import (
	"math/rand"
	"sort"
	"time"

	"github.com/flashnotes/backend/internal/models"
)

type State string

const (
	StatePresenting State = "presenting"
	StateRevealed   State = "revealed"
	StateComplete   State = "complete"
)

type Mode string

const (
	ModeAll Mode = "all"
	ModeDue Mode = "due"
)

// Summary is the final statistics record returned when a session ends.
type Summary struct {
	Total          int     `json:"total"`
	Correct        int     `json:"correct"`
	Lapses         int     `json:"lapses"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Session is one active study run over a fixed deck. It is not safe for
// concurrent use; the Service serializes access to it.
type Session struct {
	topicID   string
	deck      []string
	cursor    int
	state     State
	correct   int
	lapses    int
	startedAt time.Time
}

// newSession builds the deck from the given cards: sorted ascending by
// nextReviewAt with stable ties, then optionally shuffled uniformly.
// Returns nil if no cards were selected.
func newSession(topicID string, selected []models.Flashcard, shuffle bool, rng *rand.Rand, now time.Time) *Session {
	if len(selected) == 0 {
		return nil
	}

	ordered := make([]models.Flashcard, len(selected))
	copy(ordered, selected)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].NextReviewAt.Before(ordered[j].NextReviewAt)
	})

	deck := make([]string, len(ordered))
	for i, c := range ordered {
		deck[i] = c.ID
	}
	if shuffle {
		rng.Shuffle(len(deck), func(i, j int) {
			deck[i], deck[j] = deck[j], deck[i]
		})
	}

	return &Session{
		topicID:   topicID,
		deck:      deck,
		state:     StatePresenting,
		startedAt: now,
	}
}

// CurrentCardID returns the id of the card at the cursor.
// Precondition: the session is not complete.
func (s *Session) CurrentCardID() (string, bool) {
	if s.state == StateComplete {
		return "", false
	}
	return s.deck[s.cursor], true
}

// Reveal toggles between Presenting and Revealed. Scoring is only valid
// while Revealed.
func (s *Session) Reveal() error {
	switch s.state {
	case StatePresenting:
		s.state = StateRevealed
	case StateRevealed:
		s.state = StatePresenting
	default:
		return models.ErrInvalidTransition
	}
	return nil
}

// Skip advances past the current card without touching its schedule.
func (s *Session) Skip() error {
	if s.state != StatePresenting && s.state != StateRevealed {
		return models.ErrInvalidTransition
	}
	s.advance()
	return nil
}

// RecordOutcome counts a scored card and advances the cursor.
// Precondition: the session is Revealed (enforced by the Service before
// the card store write happens).
func (s *Session) RecordOutcome(pass bool) {
	if pass {
		s.correct++
	} else {
		s.lapses++
	}
	s.advance()
}

func (s *Session) advance() {
	s.cursor++
	if s.cursor >= len(s.deck) {
		s.state = StateComplete
		return
	}
	s.state = StatePresenting
}

// Summary reports the session's statistics as of the given time.
func (s *Session) Summary(now time.Time) Summary {
	return Summary{
		Total:          len(s.deck),
		Correct:        s.correct,
		Lapses:         s.lapses,
		ElapsedSeconds: now.Sub(s.startedAt).Seconds(),
	}
}
