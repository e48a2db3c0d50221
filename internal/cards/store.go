// Package cards owns persisted flashcard records. Decks are stored as one
// serialized collection per topic in an external key-value collaborator;
// sessions and handlers never hold mutable copies, every change writes
// back through the store immediately.
package cards

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flashnotes/backend/internal/extractor"
	"github.com/flashnotes/backend/internal/models"
)

// KV is the persistence collaborator, keyed by topic. Set returns
// models.ErrStorageCapacityExceeded when a record is too large.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

const configKey = "scheduler-config"

func topicKey(topicID string) string {
	return "topic:" + topicID
}

// Store reads and writes topic decks through a KV collaborator, keeping a
// decoded cache that is only committed after a successful write, so a
// rejected write leaves the in-memory state at its pre-write value.
type Store struct {
	kv    KV
	mu    sync.Mutex
	cache map[string][]models.Flashcard
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv, cache: make(map[string][]models.Flashcard)}
}

// Get returns the topic's deck in stored order. A missing or corrupted
// record degrades to an empty deck, never an error.
func (s *Store) Get(topicID string) ([]models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deck, err := s.load(topicID)
	if err != nil {
		return nil, err
	}
	return copyDeck(deck), nil
}

// GetCard returns a single card by id.
func (s *Store) GetCard(topicID, cardID string) (models.Flashcard, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deck, err := s.load(topicID)
	if err != nil {
		return models.Flashcard{}, false, err
	}
	for _, c := range deck {
		if c.ID == cardID {
			return c, true, nil
		}
	}
	return models.Flashcard{}, false, nil
}

// DueCards returns the subsequence of the deck due at the given time.
func (s *Store) DueCards(topicID string, now time.Time) ([]models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deck, err := s.load(topicID)
	if err != nil {
		return nil, err
	}
	var due []models.Flashcard
	for _, c := range deck {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}
	return due, nil
}

// Put appends the card, or overwrites the existing card with the same id.
// An empty id gets a fresh one assigned. Re-submitting an identical record
// is a no-op write. If the backing write is rejected for capacity the
// in-memory deck is rolled back and the error surfaces to the caller.
func (s *Store) Put(topicID string, card models.Flashcard) (models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, err := s.load(topicID)
	if err != nil {
		return models.Flashcard{}, err
	}

	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	card = sanitize(card)

	next := copyDeck(deck)
	replaced := false
	for i, existing := range next {
		if existing.ID == card.ID {
			next[i] = card
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, card)
	}

	if err := s.persist(topicID, next); err != nil {
		return models.Flashcard{}, err
	}
	return card, nil
}

// Delete removes the card with the given id; deleting an absent card is
// a no-op.
func (s *Store) Delete(topicID, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, err := s.load(topicID)
	if err != nil {
		return err
	}

	next := make([]models.Flashcard, 0, len(deck))
	for _, c := range deck {
		if c.ID != cardID {
			next = append(next, c)
		}
	}
	if len(next) == len(deck) {
		return nil
	}
	return s.persist(topicID, next)
}

// AcceptCandidates runs submitted candidates through the shared validity
// filter and deduplication — both within the batch and against questions
// already stored for the topic — and stores the survivors as new cards
// due immediately. Returns the accepted cards and the skip count.
func (s *Store) AcceptCandidates(topicID string, candidates []models.CandidateCard, now time.Time) ([]models.Flashcard, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, err := s.load(topicID)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[string]bool, len(deck))
	for _, c := range deck {
		seen[extractor.NormalizeQuestion(c.Question)] = true
	}

	next := copyDeck(deck)
	var accepted []models.Flashcard
	skipped := 0
	for _, cand := range candidates {
		key := extractor.NormalizeQuestion(cand.Question)
		if !extractor.Validate(cand) || key == "" || seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		origin := cand.Origin
		if !models.ValidOrigins[origin] {
			origin = models.OriginManual
		}
		card := models.Flashcard{
			ID:             uuid.NewString(),
			Question:       cand.Question,
			Answer:         cand.Answer,
			Origin:         origin,
			DifficultyHint: cand.DifficultyHint,
			EasinessFactor: models.InitialEasinessFactor,
			IsNew:          true,
			NextReviewAt:   now,
			CreatedAt:      now,
		}
		next = append(next, card)
		accepted = append(accepted, card)
	}

	if len(accepted) == 0 {
		return nil, skipped, nil
	}
	if err := s.persist(topicID, next); err != nil {
		return nil, 0, err
	}
	return accepted, skipped, nil
}

// ── Scheduler configuration ─────────────────────────────

// LoadConfig returns the persisted scheduler configuration, falling back
// to the documented defaults when the record is missing or corrupted.
func (s *Store) LoadConfig() models.SchedulerConfig {
	raw, ok, err := s.kv.Get(configKey)
	if err != nil || !ok {
		if err != nil {
			log.Printf("cards: read scheduler config: %v (using defaults)", err)
		}
		return models.DefaultSchedulerConfig()
	}
	var cfg models.SchedulerConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		log.Printf("cards: corrupt scheduler config: %v (using defaults)", err)
		return models.DefaultSchedulerConfig()
	}
	return cfg.Normalize()
}

// SaveConfig persists the configuration. Changes apply only to subsequent
// scheduling computations; stored cards are never rewritten.
func (s *Store) SaveConfig(cfg models.SchedulerConfig) error {
	raw, err := json.Marshal(cfg.Normalize())
	if err != nil {
		return fmt.Errorf("encode scheduler config: %w", err)
	}
	if err := s.kv.Set(configKey, raw); err != nil {
		return fmt.Errorf("save scheduler config: %w", err)
	}
	return nil
}

// ── Internals ───────────────────────────────────────────

// load returns the cached deck, reading through to the KV collaborator on
// a miss. Callers must hold s.mu.
func (s *Store) load(topicID string) ([]models.Flashcard, error) {
	if deck, ok := s.cache[topicID]; ok {
		return deck, nil
	}

	raw, ok, err := s.kv.Get(topicKey(topicID))
	if err != nil {
		return nil, fmt.Errorf("read topic %q: %w", topicID, err)
	}
	if !ok {
		s.cache[topicID] = nil
		return nil, nil
	}

	var deck []models.Flashcard
	if err := json.Unmarshal(raw, &deck); err != nil {
		// Corrupt persisted state degrades to an empty deck.
		log.Printf("cards: corrupt record for topic %q: %v (treating as empty)", topicID, err)
		deck = nil
	}
	s.cache[topicID] = deck
	return deck, nil
}

// persist writes the deck through to the KV collaborator and commits the
// cache only on success. Callers must hold s.mu.
func (s *Store) persist(topicID string, deck []models.Flashcard) error {
	raw, err := json.Marshal(deck)
	if err != nil {
		return fmt.Errorf("encode topic %q: %w", topicID, err)
	}
	if err := s.kv.Set(topicKey(topicID), raw); err != nil {
		return fmt.Errorf("write topic %q: %w", topicID, err)
	}
	s.cache[topicID] = deck
	return nil
}

// sanitize clamps a card back inside its invariants so malformed input
// can never persist an out-of-range record.
func sanitize(card models.Flashcard) models.Flashcard {
	if card.Confidence < models.MinConfidence {
		card.Confidence = models.MinConfidence
	}
	if card.Confidence > models.MaxConfidence {
		card.Confidence = models.MaxConfidence
	}
	if card.EasinessFactor < models.MinEasinessFactor {
		card.EasinessFactor = models.MinEasinessFactor
	}
	if card.IntervalDays < 0 {
		card.IntervalDays = 0
	}
	if card.Repetitions < 0 {
		card.Repetitions = 0
	}
	if card.LearningStepIndex < 0 {
		card.LearningStepIndex = 0
	}
	if !models.ValidOrigins[card.Origin] {
		card.Origin = models.OriginManual
	}
	if card.DifficultyHint != nil && !models.ValidHints[*card.DifficultyHint] {
		card.DifficultyHint = nil
	}
	return card
}

func copyDeck(deck []models.Flashcard) []models.Flashcard {
	if deck == nil {
		return nil
	}
	out := make([]models.Flashcard, len(deck))
	copy(out, deck)
	return out
}
