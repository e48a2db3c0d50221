package cards

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flashnotes/backend/internal/extractor"
	"github.com/flashnotes/backend/internal/models"
)

// Export serializes a topic's full card collection into a portable
// backup record.
func (s *Store) Export(topicID string) (models.ExportRecord, error) {
	deck, err := s.Get(topicID)
	if err != nil {
		return models.ExportRecord{}, err
	}
	if deck == nil {
		deck = []models.Flashcard{}
	}
	return models.ExportRecord{
		TopicID:       topicID,
		Cards:         deck,
		ExportedAt:    time.Now().UTC(),
		FormatVersion: models.ExportFormatVersion,
	}, nil
}

// Import merges a backup record into the given topic. Incoming cards keep
// their scheduling state; a card whose normalized question already exists
// for the topic is skipped silently, and an id that would collide with a
// different stored card is reassigned. Returns (added, skipped).
func (s *Store) Import(topicID string, rec models.ExportRecord) (int, int, error) {
	if rec.FormatVersion != models.ExportFormatVersion {
		return 0, 0, fmt.Errorf("unsupported export format version %d", rec.FormatVersion)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deck, err := s.load(topicID)
	if err != nil {
		return 0, 0, err
	}

	seenQuestions := make(map[string]bool, len(deck))
	seenIDs := make(map[string]bool, len(deck))
	for _, c := range deck {
		seenQuestions[extractor.NormalizeQuestion(c.Question)] = true
		seenIDs[c.ID] = true
	}

	next := copyDeck(deck)
	added, skipped := 0, 0
	for _, card := range rec.Cards {
		key := extractor.NormalizeQuestion(card.Question)
		if key == "" || seenQuestions[key] {
			skipped++
			continue
		}
		seenQuestions[key] = true

		if card.ID == "" || seenIDs[card.ID] {
			card.ID = uuid.NewString()
		}
		seenIDs[card.ID] = true

		if !models.ValidOrigins[card.Origin] {
			card.Origin = models.OriginImported
		}
		card = sanitize(card)
		next = append(next, card)
		added++
	}

	if added == 0 {
		return 0, skipped, nil
	}
	if err := s.persist(topicID, next); err != nil {
		return 0, 0, err
	}
	return added, skipped, nil
}
