package session

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/flashnotes/backend/internal/cards"
	"github.com/flashnotes/backend/internal/models"
	"github.com/flashnotes/backend/internal/scheduler"
)

// View is the session state exposed to callers. The answer is only
// populated while the session is Revealed.
type View struct {
	TopicID  string    `json:"topic_id"`
	State    State     `json:"state"`
	Position int       `json:"position"`
	Total    int       `json:"total"`
	Card     *CardView `json:"card,omitempty"`
}

type CardView struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
}

// Service owns the active sessions, one per topic. Starting a session for
// a topic that already has one replaces it, keeping the single-active-
// session assumption enforced in one place.
type Service struct {
	store  *cards.Store
	mu     sync.Mutex
	active map[string]*Session
	rng    *rand.Rand
	now    func() time.Time
}

func NewService(store *cards.Store) *Service {
	return &Service{
		store:  store,
		active: make(map[string]*Session),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
}

// Start builds a deck for the topic and enters Presenting at cursor 0.
// mode=due selects only cards whose nextReviewAt has passed. Returns
// models.ErrEmptyDeck when nothing was selected.
func (s *Service) Start(topicID string, mode Mode, shuffle bool) (View, error) {
	now := s.now()

	var selected []models.Flashcard
	var err error
	switch mode {
	case ModeDue:
		selected, err = s.store.DueCards(topicID, now)
	case ModeAll, "":
		selected, err = s.store.Get(topicID)
	default:
		return View{}, fmt.Errorf("unknown session mode %q", mode)
	}
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newSession(topicID, selected, shuffle, s.rng, now)
	if sess == nil {
		return View{}, models.ErrEmptyDeck
	}
	if _, exists := s.active[topicID]; exists {
		log.Printf("session: replacing active session for topic %q", topicID)
	}
	s.active[topicID] = sess
	return s.view(sess), nil
}

// Current returns the state of the topic's active session.
func (s *Service) Current(topicID string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.active[topicID]
	if !ok {
		return View{}, models.ErrNoSession
	}
	return s.view(sess), nil
}

// Reveal toggles the current card between question and answer sides.
func (s *Service) Reveal(topicID string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.active[topicID]
	if !ok {
		return View{}, models.ErrNoSession
	}
	if err := sess.Reveal(); err != nil {
		return View{}, err
	}
	return s.view(sess), nil
}

// Skip advances past the current card without touching its schedule.
func (s *Service) Skip(topicID string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.active[topicID]
	if !ok {
		return View{}, models.ErrNoSession
	}
	if err := sess.Skip(); err != nil {
		return View{}, err
	}
	return s.view(sess), nil
}

// Score applies a quality judgment to the revealed card: the scheduler
// reschedules it, the outcome bookkeeping runs, and the result is written
// through the card store before the session advances. A storage failure
// leaves the session on the same card so the caller can retry.
func (s *Service) Score(topicID string, quality scheduler.Quality) (View, error) {
	if !quality.Valid() {
		return View{}, fmt.Errorf("quality %d out of range 1-5", quality)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[topicID]
	if !ok {
		return View{}, models.ErrNoSession
	}
	if sess.state != StateRevealed {
		return View{}, models.ErrInvalidTransition
	}

	cardID, _ := sess.CurrentCardID()
	card, found, err := s.store.GetCard(topicID, cardID)
	if err != nil {
		return View{}, err
	}
	if !found {
		// Card deleted mid-session; advance without counting it.
		log.Printf("session: card %q vanished from topic %q, skipping", cardID, topicID)
		sess.Skip()
		return s.view(sess), nil
	}

	now := s.now()
	cfg := s.store.LoadConfig()
	card = scheduler.Review(card, quality, cfg, now)
	card = scheduler.ApplyOutcome(card, quality)

	if _, err := s.store.Put(topicID, card); err != nil {
		return View{}, err
	}

	sess.RecordOutcome(quality.IsPass())
	return s.view(sess), nil
}

// End discards the session from any state and returns its summary.
func (s *Service) End(topicID string) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.active[topicID]
	if !ok {
		return Summary{}, models.ErrNoSession
	}
	delete(s.active, topicID)
	return sess.Summary(s.now()), nil
}

// view resolves the cursor into a caller-facing snapshot. Callers must
// hold s.mu.
func (s *Service) view(sess *Session) View {
	v := View{
		TopicID:  sess.topicID,
		State:    sess.state,
		Position: sess.cursor,
		Total:    len(sess.deck),
	}

	cardID, ok := sess.CurrentCardID()
	if !ok {
		return v
	}
	card, found, err := s.store.GetCard(sess.topicID, cardID)
	if err != nil || !found {
		return v
	}
	cv := &CardView{ID: card.ID, Question: card.Question}
	if sess.state == StateRevealed {
		cv.Answer = card.Answer
	}
	v.Card = cv
	return v
}
